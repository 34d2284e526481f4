package client

import (
	"context"
	"net/http"
)

// User is the signed-in account as the web app sees it.
type User struct {
	ID               string `json:"id"`
	Email            string `json:"email"`
	Name             string `json:"name,omitempty"`
	TwoFactorEnabled bool   `json:"two_factor_enabled"`
}

type userResponse struct {
	User User `json:"user"`
}

// Login signs in with email and password. The session cookie lands in the
// client's jar; the echoed token is ignored.
func (c *Client) Login(ctx context.Context, email, password string) (User, error) {
	res, err := callPlain[userResponse](ctx, c, http.MethodPost, "/api/auth/login", map[string]string{
		"email":    email,
		"password": password,
	})
	if err != nil {
		return User{}, err
	}
	c.cache.Set(KeyAuthMe, res.User)
	return res.User, nil
}

// Logout clears the session cookie and every cached query.
func (c *Client) Logout(ctx context.Context) error {
	_, err := callPlain[struct{}](ctx, c, http.MethodPost, "/api/auth/logout", nil)
	c.cache.Reset()
	return err
}

// Me returns the current account, cached under KeyAuthMe.
func (c *Client) Me(ctx context.Context) (User, error) {
	return Fetch(ctx, c.cache, KeyAuthMe, func(ctx context.Context) (User, error) {
		res, err := callPlain[userResponse](ctx, c, http.MethodGet, "/api/auth/me", nil)
		return res.User, err
	})
}
