package api

import (
	"crypto/tls"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestRequestIDGeneratesWhenMissing(t *testing.T) {
	var seen string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = requestID(r.Context())
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	require.NotEmpty(t, seen)
	assert.Equal(t, seen, rr.Header().Get("X-Request-Id"))
}

func TestRequestIDRejectsHostileValues(t *testing.T) {
	for _, id := range []string{strings.Repeat("a", maxRequestIDLen+1), "abc\ndef"} {
		var seen string
		h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = requestID(r.Context())
		}))
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header["X-Request-Id"] = []string{id}
		h.ServeHTTP(httptest.NewRecorder(), req)
		assert.NotEqual(t, id, seen)
		assert.NotEmpty(t, seen)
	}
}

func TestAccessLogRecordsStatus(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	h := AccessLog(zap.New(core).Sugar())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		w.Write([]byte("short and stout"))
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/auth/me", nil))

	entries := logs.FilterMessage("http request").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, int64(http.StatusTeapot), fields["status"])
	assert.Equal(t, int64(len("short and stout")), fields["bytes"])
	assert.Equal(t, "/api/auth/me", fields["path"])
}

func TestAuditNeverLogsCredential(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	al := newAuditLogger(zap.New(core).Sugar(), nil)
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
	req.AddCookie(&http.Cookie{Name: "windback_token", Value: "secret-token"})

	al.logEvent(AuditLoginSuccess, req)
	al.logFailure(AuditLoginFailure, req, "upstream rejected", "status", 401)

	require.Equal(t, 2, logs.Len())
	for _, e := range logs.All() {
		assert.Equal(t, "audit", e.ContextMap()["component"])
		for k, v := range e.ContextMap() {
			if s, ok := v.(string); ok {
				assert.NotContains(t, s, "secret-token", k)
			}
		}
	}
	assert.Equal(t, "failure", logs.All()[1].ContextMap()["outcome"])
}

func TestSecurityHeaders(t *testing.T) {
	h := SecurityHeaders(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/dashboard", nil))
	assert.Equal(t, "nosniff", rr.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rr.Header().Get("X-Frame-Options"))
	assert.Contains(t, rr.Header().Get("Content-Security-Policy"), "https://checkout.stripe.com")
	assert.Empty(t, rr.Header().Get("Cache-Control"))
	assert.Empty(t, rr.Header().Get("Strict-Transport-Security"))

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/auth/me", nil))
	assert.Equal(t, jsonPolicy, rr.Header().Get("Content-Security-Policy"))
	assert.Equal(t, "no-store", rr.Header().Get("Cache-Control"))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.TLS = &tls.ConnectionState{}
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.NotEmpty(t, rr.Header().Get("Strict-Transport-Security"))
}

func TestRequestIsSecure(t *testing.T) {
	tests := []struct {
		name   string
		header http.Header
		want   bool
	}{
		{"plain", http.Header{}, false},
		{"x-forwarded-proto", http.Header{"X-Forwarded-Proto": {"HTTPS"}}, true},
		{"forwarded", http.Header{"Forwarded": {"for=1.2.3.4;proto=https"}}, true},
		{"forwarded http", http.Header{"Forwarded": {"proto=http"}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header = tt.header
			assert.Equal(t, tt.want, requestIsSecure(req))
		})
	}
}

func TestExtractUser(t *testing.T) {
	tests := []struct {
		name string
		data string
		want string
	}{
		{"nested", `{"user":{"id":"u1"}}`, `{"id":"u1"}`},
		{"bare", `{"id":"u1","email":"a@b.co"}`, `{"id":"u1","email":"a@b.co"}`},
		{"null user", `{"user":null,"id":"u1"}`, `{"user":null,"id":"u1"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := extractUser(json.RawMessage(tt.data))
			assert.JSONEq(t, tt.want, string(got))
		})
	}
}

func TestReadBodyTooLarge(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(strings.Repeat("x", 64)))
	rr := httptest.NewRecorder()
	_, ok := readBody(rr, req, 16)
	assert.False(t, ok)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rr.Code)
}
