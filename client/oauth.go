package client

import (
	"context"
	"net/http"
	"net/url"
	"sync"

	"github.com/windbackhq/windback-bff/guard"
)

const (
	// OAuthFailedTarget is where every callback failure lands.
	OAuthFailedTarget = guard.LoginPath + "?error=oauth_failed"
	// DefaultAfterLogin is used when the callback carries no usable redirect.
	DefaultAfterLogin = "/dashboard/projects"
)

// FlowState is the state of a CallbackFlow.
type FlowState int

const (
	// Idle flows have not been run.
	Idle FlowState = iota
	// InFlight flows are waiting for the callback response.
	InFlight
	// Succeeded flows stored the session and navigated to the redirect.
	Succeeded
	// Failed flows end on the login page, or nowhere when cancelled.
	Failed
)

func (s FlowState) String() string {
	switch s {
	case Idle:
		return "idle"
	case InFlight:
		return "in_flight"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// CallbackFlow completes an OAuth sign-in after the provider redirects back
// with ?token=...&redirect=.... It runs at most once.
//
//	Idle --Run--> InFlight --ok--> Succeeded   (navigate to redirect)
//	                       --err-> Failed      (navigate to /login?error=oauth_failed)
//	                       --ctx-> Failed      (no navigation)
//
// Cancellation only counts while the callback is unanswered.
type CallbackFlow struct {
	client *Client
	nav    Navigator

	mu    sync.Mutex
	state FlowState
}

// NewCallbackFlow returns an Idle flow.
func NewCallbackFlow(c *Client, nav Navigator) *CallbackFlow {
	return &CallbackFlow{client: c, nav: nav}
}

// State returns the current state.
func (f *CallbackFlow) State() FlowState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Run drives the flow from Idle to a terminal state and returns it. Calling
// Run again returns the current state without side effects. A missing token,
// a rejected callback and a network error all end in the same failure
// navigation. Cancelling ctx aborts the call and suppresses navigation; once
// the callback has succeeded the flow completes regardless.
func (f *CallbackFlow) Run(ctx context.Context, query url.Values) FlowState {
	f.mu.Lock()
	if f.state != Idle {
		s := f.state
		f.mu.Unlock()
		return s
	}
	f.state = InFlight
	f.mu.Unlock()

	token := query.Get("token")
	if token == "" {
		return f.finish(Failed, OAuthFailedTarget)
	}

	_, err := callPlain[struct{}](ctx, f.client, http.MethodPost, "/api/auth/oauth/callback", map[string]string{"token": token})
	if err != nil {
		if ctx.Err() != nil {
			return f.finish(Failed, "")
		}
		return f.finish(Failed, OAuthFailedTarget)
	}
	f.client.cache.Invalidate(KeyAuthMe)
	return f.finish(Succeeded, guard.SafeRedirect(query.Get("redirect"), DefaultAfterLogin))
}

func (f *CallbackFlow) finish(s FlowState, target string) FlowState {
	f.mu.Lock()
	f.state = s
	f.mu.Unlock()
	if target != "" {
		f.nav.Navigate(target, InApp)
	}
	return s
}
