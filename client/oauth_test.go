package client

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type navCall struct {
	target string
	mode   NavigationMode
}

func recordNav(calls *[]navCall) Navigator {
	return NavigatorFunc(func(target string, mode NavigationMode) {
		*calls = append(*calls, navCall{target, mode})
	})
}

// callbackServer stands in for the BFF callback endpoint.
func callbackServer(t *testing.T, status int) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if r.URL.Path != "/api/auth/oauth/callback" || r.Method != http.MethodPost {
			http.NotFound(w, r)
			return
		}
		var body struct {
			Token string `json:"token"`
		}
		json.NewDecoder(r.Body).Decode(&body)
		w.Header().Set("Content-Type", "application/json")
		if status != http.StatusOK {
			w.WriteHeader(status)
			json.NewEncoder(w).Encode(map[string]string{"error": "nope"})
			return
		}
		http.SetCookie(w, &http.Cookie{Name: "windback_token", Value: body.Token, Path: "/", HttpOnly: true})
		json.NewEncoder(w).Encode(map[string]bool{"ok": true})
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func newTestClient(t *testing.T, base string) *Client {
	t.Helper()
	c, err := New(Config{BaseURL: base})
	require.NoError(t, err)
	return c
}

func TestCallbackFlowSuccess(t *testing.T) {
	tests := []struct {
		name     string
		redirect string
		want     string
	}{
		{"caller redirect", "/dashboard/settings?tab=billing", "/dashboard/settings?tab=billing"},
		{"default", "", DefaultAfterLogin},
		{"absolute url rejected", "https://evil.example/phish", DefaultAfterLogin},
		{"protocol relative rejected", "//evil.example", DefaultAfterLogin},
		{"backslash rejected", "/\\evil.example", DefaultAfterLogin},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := callbackServer(t, http.StatusOK)
			c := newTestClient(t, srv.URL)
			c.Cache().Set(KeyAuthMe, User{ID: "stale"})
			var navs []navCall
			flow := NewCallbackFlow(c, recordNav(&navs))
			assert.Equal(t, Idle, flow.State())

			q := url.Values{"token": {"tok-1"}}
			if tt.redirect != "" {
				q.Set("redirect", tt.redirect)
			}
			assert.Equal(t, Succeeded, flow.Run(t.Context(), q))
			assert.Equal(t, Succeeded, flow.State())
			assert.Equal(t, []navCall{{tt.want, InApp}}, navs)

			_, cached := c.Cache().Get(KeyAuthMe)
			assert.False(t, cached)

			u, _ := url.Parse(srv.URL)
			cookies := c.http.Jar.Cookies(u)
			require.Len(t, cookies, 1)
			assert.Equal(t, "tok-1", cookies[0].Value)
		})
	}
}

func TestCallbackFlowFailuresLookTheSame(t *testing.T) {
	t.Run("missing token", func(t *testing.T) {
		srv, calls := callbackServer(t, http.StatusOK)
		var navs []navCall
		flow := NewCallbackFlow(newTestClient(t, srv.URL), recordNav(&navs))

		assert.Equal(t, Failed, flow.Run(t.Context(), url.Values{"redirect": {"/dashboard"}}))
		assert.Equal(t, []navCall{{OAuthFailedTarget, InApp}}, navs)
		assert.Zero(t, calls.Load())
	})

	t.Run("rejected", func(t *testing.T) {
		srv, _ := callbackServer(t, http.StatusBadRequest)
		var navs []navCall
		flow := NewCallbackFlow(newTestClient(t, srv.URL), recordNav(&navs))

		assert.Equal(t, Failed, flow.Run(t.Context(), url.Values{"token": {"tok"}}))
		assert.Equal(t, []navCall{{OAuthFailedTarget, InApp}}, navs)
	})

	t.Run("network error", func(t *testing.T) {
		srv, _ := callbackServer(t, http.StatusOK)
		c := newTestClient(t, srv.URL)
		srv.Close()
		var navs []navCall
		flow := NewCallbackFlow(c, recordNav(&navs))

		assert.Equal(t, Failed, flow.Run(t.Context(), url.Values{"token": {"tok"}}))
		assert.Equal(t, []navCall{{OAuthFailedTarget, InApp}}, navs)
	})
}

func TestCallbackFlowRunsOnce(t *testing.T) {
	srv, calls := callbackServer(t, http.StatusOK)
	var navs []navCall
	flow := NewCallbackFlow(newTestClient(t, srv.URL), recordNav(&navs))

	q := url.Values{"token": {"tok"}}
	assert.Equal(t, Succeeded, flow.Run(t.Context(), q))
	assert.Equal(t, Succeeded, flow.Run(t.Context(), q))
	assert.Equal(t, int32(1), calls.Load())
	assert.Len(t, navs, 1)
}

func TestCallbackFlowCancelSuppressesNavigation(t *testing.T) {
	entered := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(entered)
		<-r.Context().Done()
	}))
	defer srv.Close()

	var navs []navCall
	flow := NewCallbackFlow(newTestClient(t, srv.URL), recordNav(&navs))
	ctx, cancel := context.WithCancel(t.Context())

	done := make(chan FlowState, 1)
	go func() { done <- flow.Run(ctx, url.Values{"token": {"tok"}}) }()

	select {
	case <-entered:
	case <-time.After(5 * time.Second):
		t.Fatal("callback never reached the server")
	}
	assert.Equal(t, InFlight, flow.State())
	cancel()

	select {
	case s := <-done:
		assert.Equal(t, Failed, s)
	case <-time.After(5 * time.Second):
		t.Fatal("cancel did not abort the flow")
	}
	assert.Empty(t, navs)
}

// cancelAfterResponse buffers each response and then cancels, so the caller
// sees a complete answer on an already cancelled context.
type cancelAfterResponse struct {
	cancel context.CancelFunc
}

func (rt cancelAfterResponse) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := http.DefaultTransport.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return nil, err
	}
	resp.Body = io.NopCloser(bytes.NewReader(body))
	rt.cancel()
	return resp, nil
}

func TestCallbackFlowCancelAfterSuccessCompletes(t *testing.T) {
	srv, _ := callbackServer(t, http.StatusOK)
	ctx, cancel := context.WithCancel(t.Context())
	defer cancel()

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	c, err := New(Config{
		BaseURL:    srv.URL,
		HTTPClient: &http.Client{Jar: jar, Transport: cancelAfterResponse{cancel: cancel}},
	})
	require.NoError(t, err)
	c.Cache().Set(KeyAuthMe, User{ID: "stale"})

	var navs []navCall
	flow := NewCallbackFlow(c, recordNav(&navs))
	state := flow.Run(ctx, url.Values{"token": {"tok"}, "redirect": {"/dashboard/settings"}})

	require.Error(t, ctx.Err())
	assert.Equal(t, Succeeded, state)
	assert.Equal(t, []navCall{{"/dashboard/settings", InApp}}, navs)
	_, cached := c.Cache().Get(KeyAuthMe)
	assert.False(t, cached)
}

func TestFlowStateString(t *testing.T) {
	assert.Equal(t, "idle", Idle.String())
	assert.Equal(t, "in_flight", InFlight.String())
	assert.Equal(t, "succeeded", Succeeded.String())
	assert.Equal(t, "failed", Failed.String())
	assert.Equal(t, "full-page", FullPage.String())
	assert.Equal(t, "in-app", InApp.String())
}
