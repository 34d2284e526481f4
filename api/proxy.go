package api

import (
	"bytes"
	"io"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/windbackhq/windback-bff/session"
	"github.com/windbackhq/windback-bff/upstream"
)

// proxyMethods are the methods accepted under /proxy.
var proxyMethods = []string{
	http.MethodGet,
	http.MethodPost,
	http.MethodPut,
	http.MethodPatch,
	http.MethodDelete,
}

// Proxy handles /proxy/*, forwarding the request to /api/v1/* upstream with
// the session credential. The path is not validated here; upstream rejects
// what it does not serve.
func (a *API) Proxy(w http.ResponseWriter, r *http.Request) {
	a.forward(w, r, r.Method, proxyPath(r))
}

// proxyPath returns the escaped form of the /proxy/* wildcard. chi routes on
// RawPath when the request has one, so the parameter is already escaped;
// otherwise it is decoded and has to be escaped again.
func proxyPath(r *http.Request) string {
	p := chi.URLParam(r, "*")
	if r.URL.RawPath != "" {
		return p
	}
	return (&url.URL{Path: p}).EscapedPath()
}

// forward sends an authenticated request upstream and relays the answer
// verbatim. path must be escaped. Without a session cookie it answers 401
// before reading the body, and upstream is never contacted.
func (a *API) forward(w http.ResponseWriter, r *http.Request, method, path string) {
	credential := session.FromContext(r.Context()).Credential
	if credential == "" {
		a.mapError(w, r, upstream.ErrNoCredential)
		return
	}

	var body io.Reader
	if method != http.MethodGet && method != http.MethodHead {
		b, ok := readBody(w, r, maxBodySize)
		if !ok {
			return
		}
		body = bytes.NewReader(b)
	}
	resp, err := a.upstream.Forward(r.Context(), upstream.Request{
		Method:     method,
		Path:       path,
		RawQuery:   r.URL.RawQuery,
		Body:       body,
		Credential: credential,
		Header:     forwardHeaders(r),
	})
	if err != nil {
		a.mapError(w, r, err)
		return
	}
	a.relay(w, r, resp)
}

func (a *API) relay(w http.ResponseWriter, r *http.Request, resp *http.Response) {
	if err := upstream.Relay(w, resp); err != nil {
		a.log.Warnw("relaying upstream response", "path", r.URL.Path, "request_id", requestID(r.Context()), "error", err)
	}
}

// forwardHeaders selects the inbound headers that travel upstream. Cookies
// and Authorization never do.
func forwardHeaders(r *http.Request) http.Header {
	h := http.Header{}
	if id := requestID(r.Context()); id != "" {
		h.Set("X-Request-Id", id)
	}
	if accept := r.Header.Get("Accept"); accept != "" {
		h.Set("Accept", accept)
	}
	return h
}
