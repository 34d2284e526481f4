package api

import "net/http"

// BillingCheckout handles POST /billing/checkout. Upstream answers with the
// hosted checkout URL the browser navigates to.
func (a *API) BillingCheckout(w http.ResponseWriter, r *http.Request) {
	a.forward(w, r, http.MethodPost, "billing/checkout")
}

// BillingPortal handles POST /billing/portal.
func (a *API) BillingPortal(w http.ResponseWriter, r *http.Request) {
	a.forward(w, r, http.MethodPost, "billing/portal")
}

// BillingUsage handles GET /billing/usage.
func (a *API) BillingUsage(w http.ResponseWriter, r *http.Request) {
	a.forward(w, r, http.MethodGet, "billing/usage")
}
