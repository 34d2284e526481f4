package api

import "encoding/json"

// User is the upstream account object. The BFF relays it opaquely.
type User = json.RawMessage

// LoginResponse is returned from POST /auth/login. Token duplicates the
// HttpOnly cookie value for non-browser consumers.
type LoginResponse struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}

// MeResponse is returned from GET /auth/me.
type MeResponse struct {
	User User `json:"user"`
}

// RegisterResponse is returned from POST /auth/register. It never carries a
// credential.
type RegisterResponse struct {
	User User `json:"user"`
}

// OAuthCallbackRequest is the JSON body for POST /auth/oauth/callback.
type OAuthCallbackRequest struct {
	Token string `json:"token"`
}

// OKResponse acknowledges a state change with no payload.
type OKResponse struct {
	OK bool `json:"ok"`
}

// ErrorResponse is returned for all error cases.
type ErrorResponse struct {
	Error string `json:"error"`
}

// authPayload is the data the upstream login endpoint answers with.
type authPayload struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}

// userPayload is the data the upstream me and register endpoints answer with.
// Upstream may nest the account under "user" or return it bare.
type userPayload struct {
	User User `json:"user"`
}
