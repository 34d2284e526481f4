// Package client is the browser-side half of the BFF flows: it talks to /api
// the way the web app does, keeping the session in a cookie jar and caching
// queries that the identity flows invalidate.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"

	"github.com/windbackhq/windback-bff/upstream"
)

// Config configures a Client.
type Config struct {
	// BaseURL is the BFF origin, e.g. https://app.windback.dev.
	BaseURL string
	// HTTPClient must carry a cookie jar. Defaults to a fresh client with one.
	HTTPClient *http.Client
}

// Client calls the BFF.
type Client struct {
	base  string
	http  *http.Client
	cache *Cache
}

// New returns a Client for cfg.
func New(cfg Config) (*Client, error) {
	u, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("base url %q must be absolute", cfg.BaseURL)
	}
	hc := cfg.HTTPClient
	if hc == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, fmt.Errorf("creating cookie jar: %w", err)
		}
		hc = &http.Client{Jar: jar}
	}
	return &Client{
		base:  strings.TrimRight(cfg.BaseURL, "/"),
		http:  hc,
		cache: NewCache(),
	}, nil
}

// Cache returns the client's query cache.
func (c *Client) Cache() *Cache {
	return c.cache
}

func (c *Client) do(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encoding request: %w", err)
		}
		r = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, r)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	return resp, nil
}

// callEnvelope calls a proxied endpoint whose body is an upstream envelope.
// A non-2xx answer is returned as *upstream.Rejection.
func callEnvelope[T any](ctx context.Context, c *Client, method, path string, body any) (T, error) {
	var zero T
	resp, err := c.do(ctx, method, path, body)
	if err != nil {
		return zero, err
	}
	res, err := upstream.Decode[T](resp)
	if err != nil {
		return zero, err
	}
	if rej := res.Rejection(); rej != nil {
		return zero, rej
	}
	v, _ := res.Value()
	return v, nil
}

// callPlain calls a BFF-owned endpoint that answers with bare JSON, or
// {"error": ...} on failure.
func callPlain[T any](ctx context.Context, c *Client, method, path string, body any) (T, error) {
	var zero T
	resp, err := c.do(ctx, method, path, body)
	if err != nil {
		return zero, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return zero, fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e struct {
			Error string `json:"error"`
		}
		_ = json.Unmarshal(raw, &e)
		return zero, &upstream.Rejection{Status: resp.StatusCode, Message: e.Error}
	}
	var v T
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &v); err != nil {
			return zero, fmt.Errorf("decoding response: %w", err)
		}
	}
	return v, nil
}

// proxyPath maps an upstream API path onto the BFF proxy.
func proxyPath(p string) string {
	return "/api/proxy/" + strings.TrimLeft(p, "/")
}

// checkExternalURL accepts the absolute http(s) URLs hosted payment and
// provider flows hand back.
func checkExternalURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid redirect url: %w", err)
	}
	if (u.Scheme != "https" && u.Scheme != "http") || u.Host == "" {
		return fmt.Errorf("refusing to navigate to %q", raw)
	}
	return nil
}

// redirectURL is the {url} payload of hosted flow endpoints.
type redirectURL struct {
	URL string `json:"url"`
}
