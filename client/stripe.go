package client

import (
	"context"
	"net/http"
)

// Stripe Connect link states.
const (
	StripeConnected    = "connected"
	StripeNotConnected = "not_connected"
)

// ConnectStatus is the Stripe Connect link of the signed-in account.
type ConnectStatus struct {
	Status    string `json:"status"`
	AccountID string `json:"account_id,omitempty"`
}

// Connected reports whether an account is linked.
func (s ConnectStatus) Connected() bool {
	return s.Status == StripeConnected
}

// StripeConnect links a Stripe account to the workspace.
type StripeConnect struct {
	client *Client
	nav    Navigator
}

// StripeConnect returns the Stripe Connect controller.
func (c *Client) StripeConnect(nav Navigator) *StripeConnect {
	return &StripeConnect{client: c, nav: nav}
}

// AuthorizeURL fetches a fresh authorization URL. It is never cached:
// upstream issues a single-use state with every URL.
func (s *StripeConnect) AuthorizeURL(ctx context.Context) (string, error) {
	res, err := callEnvelope[redirectURL](ctx, s.client, http.MethodGet, proxyPath("stripe/connect/authorize"), nil)
	if err != nil {
		return "", err
	}
	if err := checkExternalURL(res.URL); err != nil {
		return "", err
	}
	return res.URL, nil
}

// Connect fetches an authorization URL and leaves the app for it.
func (s *StripeConnect) Connect(ctx context.Context) error {
	u, err := s.AuthorizeURL(ctx)
	if err != nil {
		return err
	}
	s.nav.Navigate(u, FullPage)
	return nil
}

// Status returns the link status, cached under KeyStripeConnectStatus.
func (s *StripeConnect) Status(ctx context.Context) (ConnectStatus, error) {
	return Fetch(ctx, s.client.cache, KeyStripeConnectStatus, func(ctx context.Context) (ConnectStatus, error) {
		return callEnvelope[ConnectStatus](ctx, s.client, http.MethodGet, proxyPath("stripe/connect/status"), nil)
	})
}

// Disconnect revokes the link upstream and invalidates the cached status.
func (s *StripeConnect) Disconnect(ctx context.Context) error {
	if _, err := callEnvelope[struct{}](ctx, s.client, http.MethodPost, proxyPath("stripe/connect/disconnect"), nil); err != nil {
		return err
	}
	s.client.cache.Invalidate(KeyStripeConnectStatus)
	return nil
}
