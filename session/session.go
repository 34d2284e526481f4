// Package session owns the browser session credential: the opaque bearer
// token issued by the upstream API and kept in an HttpOnly cookie.
//
// Store is both the credential store (Set, Clear) and the session resolver
// (Resolve, Middleware). It holds no per-session state; the cookie carried by
// each request is the only source of truth.
package session

import (
	"context"
	"net/http"
	"time"
)

// Config describes the session cookie.
type Config struct {
	CookieName string
	MaxAge     time.Duration
	// Secure adds the Secure attribute. Enabled in production only.
	Secure bool
}

// Store reads and writes the session cookie.
type Store struct {
	cfg Config
}

// NewStore returns a Store for cfg.
func NewStore(cfg Config) *Store {
	return &Store{cfg: cfg}
}

// CookieName returns the configured cookie name.
func (s *Store) CookieName() string {
	return s.cfg.CookieName
}

// Set writes the credential cookie on the outgoing response. It has no effect
// on responses whose headers were already written.
func (s *Store) Set(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.cfg.CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(s.cfg.MaxAge / time.Second),
		HttpOnly: true,
		Secure:   s.cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Clear expires the credential cookie.
func (s *Store) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.cfg.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   s.cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Resolve returns the credential carried by r. A missing or empty cookie is a
// valid unauthenticated result, not an error. Request headers such as
// Authorization are never consulted.
func (s *Store) Resolve(r *http.Request) (string, bool) {
	cookie, err := r.Cookie(s.cfg.CookieName)
	if err != nil || cookie.Value == "" {
		return "", false
	}
	return cookie.Value, true
}

// Context is the per-request authentication context.
type Context struct {
	Credential string
}

// Authenticated reports whether a credential is present.
func (c Context) Authenticated() bool {
	return c.Credential != ""
}

type contextKey struct{}

// Middleware resolves the credential once per request and stores it on the
// request context for downstream handlers.
func (s *Store) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, _ := s.Resolve(r)
		ctx := WithContext(r.Context(), Context{Credential: token})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// WithContext returns ctx carrying sc.
func WithContext(ctx context.Context, sc Context) context.Context {
	return context.WithValue(ctx, contextKey{}, sc)
}

// FromContext returns the session context stored by Middleware, or the zero
// (unauthenticated) Context.
func FromContext(ctx context.Context) Context {
	sc, _ := ctx.Value(contextKey{}).(Context)
	return sc
}
