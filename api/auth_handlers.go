package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/windbackhq/windback-bff/session"
	"github.com/windbackhq/windback-bff/upstream"
)

const (
	msgInvalidCredentials = "Invalid email or password"
	msgMissingToken       = "Missing token"
)

// Login handles POST /auth/login. The credentials are exchanged upstream; on
// success the issued token is stored in the session cookie and also echoed in
// the body.
func (a *API) Login(w http.ResponseWriter, r *http.Request) {
	body, ok := readBody(w, r, maxBodySize)
	if !ok {
		return
	}
	resp, err := a.upstream.Send(r.Context(), upstream.Request{
		Method: http.MethodPost,
		Path:   "auth/login",
		Body:   bytes.NewReader(body),
		Header: forwardHeaders(r),
	})
	if err != nil {
		a.mapError(w, r, err)
		return
	}
	res, err := upstream.Decode[authPayload](resp)
	if err != nil {
		a.mapError(w, r, err)
		return
	}
	if rej := res.Rejection(); rej != nil {
		msg := rej.Message
		if msg == "" {
			msg = msgInvalidCredentials
		}
		a.audit.logFailure(AuditLoginFailure, r, "upstream rejected", "status", rej.Status)
		writeError(w, rej.Status, msg)
		return
	}

	data, _ := res.Value()
	if data.Token == "" {
		a.log.Errorw("upstream login succeeded without a token", "request_id", requestID(r.Context()))
		writeError(w, http.StatusBadGateway, msgUpstreamFailed)
		return
	}
	a.sessions.Set(w, data.Token)
	a.audit.logEvent(AuditLoginSuccess, r)
	writeJSON(w, http.StatusOK, LoginResponse{User: data.User, Token: data.Token})
}

// Me handles GET /auth/me.
func (a *API) Me(w http.ResponseWriter, r *http.Request) {
	resp, err := a.upstream.Forward(r.Context(), upstream.Request{
		Method:     http.MethodGet,
		Path:       "auth/me",
		Credential: session.FromContext(r.Context()).Credential,
		Header:     forwardHeaders(r),
	})
	if err != nil {
		a.mapError(w, r, err)
		return
	}
	res, err := upstream.Decode[json.RawMessage](resp)
	if err != nil {
		a.mapError(w, r, err)
		return
	}
	if rej := res.Rejection(); rej != nil {
		msg := rej.Message
		if msg == "" {
			msg = msgNotAuthenticated
		}
		writeError(w, http.StatusUnauthorized, msg)
		return
	}
	data, _ := res.Value()
	writeJSON(w, http.StatusOK, MeResponse{User: extractUser(data)})
}

// Register handles POST /auth/register. A fresh account must sign in
// explicitly: no cookie is set and any token upstream returns is dropped.
func (a *API) Register(w http.ResponseWriter, r *http.Request) {
	body, ok := readBody(w, r, maxBodySize)
	if !ok {
		return
	}
	resp, err := a.upstream.Send(r.Context(), upstream.Request{
		Method: http.MethodPost,
		Path:   "auth/register",
		Body:   bytes.NewReader(body),
		Header: forwardHeaders(r),
	})
	if err != nil {
		a.mapError(w, r, err)
		return
	}
	res, err := upstream.Decode[json.RawMessage](resp)
	if err != nil {
		a.mapError(w, r, err)
		return
	}
	if rej := res.Rejection(); rej != nil {
		writeError(w, rej.Status, rej.Error())
		return
	}
	data, _ := res.Value()
	a.audit.logEvent(AuditRegister, r)
	writeJSON(w, res.Status(), RegisterResponse{User: extractUser(data)})
}

// Onboarding handles POST /auth/onboarding.
func (a *API) Onboarding(w http.ResponseWriter, r *http.Request) {
	a.forward(w, r, http.MethodPost, "auth/onboarding")
}

// Logout handles POST /auth/logout.
func (a *API) Logout(w http.ResponseWriter, r *http.Request) {
	a.sessions.Clear(w)
	a.audit.logEvent(AuditLogout, r)
	writeJSON(w, http.StatusOK, OKResponse{OK: true})
}

// ForgotPassword handles POST /auth/forgot-password. The request is relayed
// without a credential; whether the account exists is for the caller to hide.
func (a *API) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	body, ok := readBody(w, r, maxBodySize)
	if !ok {
		return
	}
	resp, err := a.upstream.Send(r.Context(), upstream.Request{
		Method: http.MethodPost,
		Path:   "auth/forgot-password",
		Body:   bytes.NewReader(body),
		Header: forwardHeaders(r),
	})
	if err != nil {
		a.mapError(w, r, err)
		return
	}
	a.audit.logEvent(AuditPasswordResetRequested, r)
	a.relay(w, r, resp)
}

// OAuthRedirect handles GET /auth/oauth/{provider} by sending the browser to
// the upstream provider-initiation endpoint. No local state is kept.
func (a *API) OAuthRedirect(w http.ResponseWriter, r *http.Request) {
	provider := chi.URLParam(r, "provider")
	http.Redirect(w, r, a.upstream.URL("auth/oauth/"+url.PathEscape(provider)), http.StatusFound)
}

// OAuthCallback handles POST /auth/oauth/callback. Repeating the call with the
// same token rewrites the same cookie and succeeds again.
func (a *API) OAuthCallback(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeJSON[OAuthCallbackRequest](w, r, maxBodySize)
	if !ok {
		return
	}
	if req.Token == "" {
		a.audit.logFailure(AuditOAuthCallback, r, "missing token")
		writeError(w, http.StatusBadRequest, msgMissingToken)
		return
	}
	a.sessions.Set(w, req.Token)
	a.audit.logEvent(AuditOAuthCallback, r)
	writeJSON(w, http.StatusOK, OKResponse{OK: true})
}

// extractUser accepts both {"user": {...}} and a bare account object.
func extractUser(data json.RawMessage) User {
	var p userPayload
	if err := json.Unmarshal(data, &p); err == nil && len(p.User) > 0 && string(p.User) != "null" {
		return p.User
	}
	return User(data)
}
