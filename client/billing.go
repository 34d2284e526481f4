package client

import (
	"context"
	"net/http"
)

// Usage is the current billing period usage, as upstream reports it.
type Usage map[string]any

// Billing starts hosted Stripe flows.
type Billing struct {
	client *Client
	nav    Navigator
}

// Billing returns the billing controller.
func (c *Client) Billing(nav Navigator) *Billing {
	return &Billing{client: c, nav: nav}
}

// Checkout creates a checkout session for planTier and leaves the app for
// it.
func (b *Billing) Checkout(ctx context.Context, planTier string) error {
	return b.hosted(ctx, "/api/billing/checkout", map[string]string{"plan_tier": planTier})
}

// Portal opens the hosted billing portal.
func (b *Billing) Portal(ctx context.Context) error {
	return b.hosted(ctx, "/api/billing/portal", nil)
}

// Usage reads the current period's usage.
func (b *Billing) Usage(ctx context.Context) (Usage, error) {
	return callEnvelope[Usage](ctx, b.client, http.MethodGet, "/api/billing/usage", nil)
}

func (b *Billing) hosted(ctx context.Context, path string, body any) error {
	res, err := callEnvelope[redirectURL](ctx, b.client, http.MethodPost, path, body)
	if err != nil {
		return err
	}
	if err := checkExternalURL(res.URL); err != nil {
		return err
	}
	b.nav.Navigate(res.URL, FullPage)
	return nil
}
