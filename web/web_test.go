package web

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandler(t *testing.T) {
	h, err := Handler()
	require.NoError(t, err)

	tests := []struct {
		path        string
		contentType string
		body        string
	}{
		{"/", "text/html; charset=utf-8", `<div id="root">`},
		{"/dashboard/projects/p1", "text/html; charset=utf-8", `<div id="root">`},
		{"/index.html", "text/html; charset=utf-8", `<div id="root">`},
		{"/assets", "text/html; charset=utf-8", `<div id="root">`},
		{"/assets/app.css", "text/css; charset=utf-8", "font-family"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, tt.path, nil))
			assert.Equal(t, http.StatusOK, rr.Code)
			assert.Equal(t, tt.contentType, rr.Header().Get("Content-Type"))
			assert.Contains(t, rr.Body.String(), tt.body)
		})
	}
}

func TestShellIsNotCached(t *testing.T) {
	h, err := Handler()
	require.NoError(t, err)

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/dashboard", nil))
	assert.Equal(t, "no-store", rr.Header().Get("Cache-Control"))
}
