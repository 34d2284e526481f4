// Package upstream forwards BFF requests to the private Windback API.
//
// The upstream is an HTTP service that accepts a bearer credential and answers
// with JSON envelopes ({"data": T} or {"error": string}). The client performs
// no retries and sets no timeout: a slow or failing upstream surfaces directly
// to the caller, and cancelling the request context aborts the call.
package upstream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// APIPrefix is prepended to every forwarded path.
const APIPrefix = "/api/v1/"

// ErrNoCredential is returned by Forward when the request carries no session
// credential. Upstream is not contacted.
var ErrNoCredential = errors.New("not authenticated")

// Config configures a Client.
type Config struct {
	// BaseURL is the upstream origin, e.g. https://api.windback.dev.
	BaseURL string
	// Transport is used for outbound calls. Defaults to http.DefaultTransport.
	Transport http.RoundTripper
	// Metrics is optional.
	Metrics *Metrics
}

// Client talks to the upstream API.
type Client struct {
	base    *url.URL
	http    *http.Client
	metrics *Metrics
}

// New returns a Client for cfg.
func New(cfg Config) (*Client, error) {
	u, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing upstream base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("upstream base url %q must be absolute", cfg.BaseURL)
	}
	transport := cfg.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}
	return &Client{
		base:    u,
		http:    &http.Client{Transport: transport},
		metrics: cfg.Metrics,
	}, nil
}

// Request is one call to the upstream API.
type Request struct {
	Method string
	// Path is an escaped URL path joined verbatim onto APIPrefix. Escapes
	// such as %3F stay escaped on the wire. It is not validated otherwise;
	// upstream rejects unknown paths itself.
	Path string
	// RawQuery is copied onto the upstream URL unchanged.
	RawQuery   string
	Body       io.Reader
	Credential string
	// Header carries extra headers such as X-Request-Id.
	Header http.Header
}

// URL returns the absolute upstream URL for an escaped API path.
func (c *Client) URL(p string) string {
	u, err := c.endpoint(p)
	if err != nil {
		return c.base.String()
	}
	return u.String()
}

// endpoint joins the escaped path p onto the base URL and APIPrefix. Path and
// RawPath are set together so that escaped delimiters never turn into a
// query or fragment.
func (c *Client) endpoint(p string) (*url.URL, error) {
	raw := strings.TrimRight(c.base.EscapedPath(), "/") + APIPrefix + strings.TrimLeft(p, "/")
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid upstream path %q: %w", p, err)
	}
	u := *c.base
	u.Path = decoded
	u.RawPath = raw
	u.RawQuery = ""
	u.Fragment = ""
	return &u, nil
}

// Forward sends an authenticated request. It returns ErrNoCredential without
// any network activity when req.Credential is empty. The caller must close
// the response body.
func (c *Client) Forward(ctx context.Context, req Request) (*http.Response, error) {
	if req.Credential == "" {
		return nil, ErrNoCredential
	}
	return c.do(ctx, req)
}

// Send sends a request that does not require a session (login, register,
// password reset). A credential, if set, is still injected.
func (c *Client) Send(ctx context.Context, req Request) (*http.Response, error) {
	return c.do(ctx, req)
}

func (c *Client) do(ctx context.Context, req Request) (*http.Response, error) {
	u, err := c.endpoint(req.Path)
	if err != nil {
		return nil, err
	}
	u.RawQuery = req.RawQuery

	method := req.Method
	if method == "" {
		method = http.MethodGet
	}
	body := req.Body
	if !carriesBody(method) {
		body = nil
	}
	upReq, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, fmt.Errorf("building upstream request: %w", err)
	}
	for k, vs := range req.Header {
		for _, v := range vs {
			upReq.Header.Add(k, v)
		}
	}
	if req.Credential != "" {
		upReq.Header.Set("Authorization", "Bearer "+req.Credential)
	}
	if carriesBody(method) {
		upReq.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(upReq)
	if err != nil {
		c.metrics.observe(method, "error", time.Since(start))
		return nil, fmt.Errorf("upstream %s %s: %w", method, u.Path, err)
	}
	c.metrics.observe(method, strconv.Itoa(resp.StatusCode), time.Since(start))
	return resp, nil
}

// carriesBody reports whether requests with method send a JSON body.
func carriesBody(method string) bool {
	return method != http.MethodGet && method != http.MethodHead
}

// Relay copies resp to w verbatim: status code and body unchanged, with the
// content type defaulting to application/json. It closes resp.Body.
func Relay(w http.ResponseWriter, resp *http.Response) error {
	defer resp.Body.Close()
	ct := resp.Header.Get("Content-Type")
	if ct == "" {
		ct = "application/json"
	}
	w.Header().Set("Content-Type", ct)
	w.WriteHeader(resp.StatusCode)
	_, err := io.Copy(w, resp.Body)
	return err
}
