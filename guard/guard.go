// Package guard classifies page paths and redirects navigations before any
// page handler runs.
package guard

import (
	"net/http"
	"net/url"
	"path"
	"strings"
)

// Class is the access class of a path.
type Class int

const (
	// Public paths are always allowed. This is the default class.
	Public Class = iota
	// AuthOnly paths (login, register) are only for visitors without a session.
	AuthOnly
	// Protected paths require a session.
	Protected
)

func (c Class) String() string {
	switch c {
	case AuthOnly:
		return "auth-only"
	case Protected:
		return "protected"
	default:
		return "public"
	}
}

const (
	// LoginPath is where visitors without a session are sent.
	LoginPath = "/login"
	// DashboardPath is where signed-in visitors are sent from auth-only pages.
	DashboardPath = "/dashboard"
)

// Rules is the static path partition consulted on every request.
type Rules struct {
	// ProtectedPrefixes match the prefix itself and everything below it.
	ProtectedPrefixes []string
	// AuthOnlyPaths match exactly.
	AuthOnlyPaths []string
}

// DefaultRules covers /dashboard/:path*, /onboarding, /login and /register.
func DefaultRules() Rules {
	return Rules{
		ProtectedPrefixes: []string{"/dashboard", "/onboarding"},
		AuthOnlyPaths:     []string{"/login", "/register"},
	}
}

// Classify returns the class of p. Every path falls into exactly one class.
func (rules Rules) Classify(p string) Class {
	p = normalize(p)
	for _, ap := range rules.AuthOnlyPaths {
		if p == ap {
			return AuthOnly
		}
	}
	for _, prefix := range rules.ProtectedPrefixes {
		if p == prefix || strings.HasPrefix(p, prefix+"/") {
			return Protected
		}
	}
	return Public
}

// Decision is the outcome of Decide. A zero Target means allow.
type Decision struct {
	Target string
}

// Allowed reports whether the request may proceed unmodified.
func (d Decision) Allowed() bool {
	return d.Target == ""
}

// Decide returns the redirect decision for a navigation to p. The login
// redirect carries the cleaned path.
func (rules Rules) Decide(p string, hasSession bool) Decision {
	p = normalize(p)
	switch rules.Classify(p) {
	case Protected:
		if !hasSession {
			return Decision{Target: LoginPath + "?" + url.Values{"redirect": {p}}.Encode()}
		}
	case AuthOnly:
		if hasSession {
			return Decision{Target: DashboardPath}
		}
	}
	return Decision{}
}

// Resolver reports whether a request carries a session credential.
type Resolver interface {
	Resolve(r *http.Request) (string, bool)
}

// Middleware applies rules to every request before next runs.
func Middleware(rules Rules, resolver Resolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, hasSession := resolver.Resolve(r)
			d := rules.Decide(r.URL.Path, hasSession)
			if !d.Allowed() {
				http.Redirect(w, r, d.Target, http.StatusTemporaryRedirect)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// normalize cleans p so that dot segments, repeated slashes and trailing
// slashes cannot move a path out of its class.
func normalize(p string) string {
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return path.Clean(p)
}
