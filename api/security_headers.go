package api

import (
	"net/http"
	"strings"
)

// Hosted Stripe pages the app shell submits to or navigates into.
var stripeOrigins = []string{
	"https://checkout.stripe.com",
	"https://billing.stripe.com",
	"https://connect.stripe.com",
}

var (
	shellPolicy = "default-src 'self'; script-src 'self'; style-src 'self' 'unsafe-inline'; " +
		"img-src 'self' data: https:; connect-src 'self'; frame-ancestors 'none'; " +
		"form-action 'self' " + strings.Join(stripeOrigins, " ")
	jsonPolicy = "default-src 'none'; frame-ancestors 'none'"
)

// SecurityHeaders sets response hardening headers. Responses under /api/
// carry JSON and credentials, so they get a locked-down policy and are
// never stored by the browser or intermediaries.
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		h.Set("Permissions-Policy", "camera=(), microphone=(), geolocation=(), payment=()")

		if strings.HasPrefix(r.URL.Path, "/api/") {
			h.Set("Content-Security-Policy", jsonPolicy)
			h.Set("Cache-Control", "no-store")
		} else {
			h.Set("Content-Security-Policy", shellPolicy)
		}

		if requestIsSecure(r) {
			h.Set("Strict-Transport-Security", "max-age=63072000; includeSubDomains")
		}

		next.ServeHTTP(w, r)
	})
}
