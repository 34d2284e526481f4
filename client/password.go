package client

import (
	"context"
	"net/http"
)

// ResetRequestedMessage is shown after every password reset request.
const ResetRequestedMessage = "If an account exists for that email, a reset link has been sent."

// RequestPasswordReset asks upstream to email a reset link. The outcome is
// discarded so the answer never reveals whether the account exists.
func (c *Client) RequestPasswordReset(ctx context.Context, email string) string {
	resp, err := c.do(ctx, http.MethodPost, "/api/auth/forgot-password", map[string]string{"email": email})
	if err == nil {
		resp.Body.Close()
	}
	return ResetRequestedMessage
}
