package client

import (
	"context"
	"net/http"
)

// Enrollment is the pending TOTP secret issued by Enable.
type Enrollment struct {
	Secret string `json:"secret"`
	QRURL  string `json:"qr_url"`
}

type codeRequest struct {
	Code string `json:"code"`
}

// TwoFactor sequences the TOTP lifecycle. Codes are generated and verified
// upstream; this type only orders the calls and invalidates KeyAuthMe when
// the account's 2FA state changes.
type TwoFactor struct {
	client *Client
}

// TwoFactor returns the 2FA controller.
func (c *Client) TwoFactor() *TwoFactor {
	return &TwoFactor{client: c}
}

// Enable issues a pending secret. The account is not protected until Verify
// succeeds, so no cached state changes.
func (t *TwoFactor) Enable(ctx context.Context) (Enrollment, error) {
	return callEnvelope[Enrollment](ctx, t.client, http.MethodPost, proxyPath("auth/2fa/enable"), nil)
}

// Verify confirms the pending secret with a code. A wrong code leaves the
// enrollment pending and returns the upstream rejection.
func (t *TwoFactor) Verify(ctx context.Context, code string) error {
	return t.transition(ctx, "auth/2fa/verify", code)
}

// Disable turns 2FA off. Upstream requires a valid current code.
func (t *TwoFactor) Disable(ctx context.Context, code string) error {
	return t.transition(ctx, "auth/2fa/disable", code)
}

func (t *TwoFactor) transition(ctx context.Context, path, code string) error {
	if _, err := callEnvelope[struct{}](ctx, t.client, http.MethodPost, proxyPath(path), codeRequest{Code: code}); err != nil {
		return err
	}
	t.client.cache.Invalidate(KeyAuthMe)
	return nil
}
