package client

import (
	"context"
	"sync"

	"github.com/upb/rbac-dashboard/authz"
	"github.com/upb/rbac-dashboard/models"
)

// AuthState is the guard's session lifecycle state
type AuthState int

const (
	// StateInitializing means the stored session has not been restored yet.
	// The guard renders LOADING and never allows or denies prematurely.
	StateInitializing AuthState = iota
	StateAuthenticated
	StateUnauthenticated
)

func (s AuthState) String() string {
	switch s {
	case StateInitializing:
		return "initializing"
	case StateAuthenticated:
		return "authenticated"
	case StateUnauthenticated:
		return "unauthenticated"
	default:
		return "unknown"
	}
}

// RenderState is what a guarded view should show
type RenderState int

const (
	RenderLoading RenderState = iota
	RenderRedirectLogin
	RenderRedirectForbidden
	RenderChildren
)

func (s RenderState) String() string {
	switch s {
	case RenderLoading:
		return "loading"
	case RenderRedirectLogin:
		return "redirect-login"
	case RenderRedirectForbidden:
		return "redirect-forbidden"
	case RenderChildren:
		return "render-children"
	default:
		return "unknown"
	}
}

// RouteGuard gates client-side views on the session state and the shared
// role decision rules. It starts INITIALIZING and moves to AUTHENTICATED or
// UNAUTHENTICATED once Restore settles. The decision is advisory; the server
// re-checks every request.
type RouteGuard struct {
	mu    sync.Mutex
	api   *Client
	state AuthState
}

// NewRouteGuard creates a guard over the client's session
func NewRouteGuard(api *Client) *RouteGuard {
	return &RouteGuard{api: api, state: StateInitializing}
}

// State returns the current lifecycle state
func (g *RouteGuard) State() AuthState {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Restore validates the stored session against GET /api/me and settles the
// guard state. A 401 clears the session (the client's uniform handling) and
// settles UNAUTHENTICATED. Transport errors leave the state untouched so the
// guard keeps rendering LOADING rather than bouncing the user to login.
//
// A result that arrives after the session changed underneath it, because the
// user logged out or logged in again mid-flight, is discarded.
func (g *RouteGuard) Restore(ctx context.Context) error {
	session := g.api.Session()

	if !session.Authenticated() {
		g.settle(StateUnauthenticated)
		return nil
	}

	gen := session.Generation()
	_, err := g.api.Me(ctx)

	if ctx.Err() != nil {
		return ctx.Err()
	}
	if session.Generation() != gen {
		// Stale: the session moved while we were in flight
		return nil
	}

	switch {
	case err == nil:
		g.settle(StateAuthenticated)
		return nil
	case IsUnauthorized(err):
		// Me already cleared the session via the 401 interceptor
		g.settle(StateUnauthenticated)
		return nil
	default:
		return err
	}
}

// SetAuthenticated settles the guard directly after an explicit login
func (g *RouteGuard) SetAuthenticated() {
	g.settle(StateAuthenticated)
}

// SetUnauthenticated settles the guard after an explicit logout
func (g *RouteGuard) SetUnauthenticated() {
	g.settle(StateUnauthenticated)
}

// Evaluate decides what a view requiring at least the given role should
// render, using the same hierarchy rule the server enforces.
func (g *RouteGuard) Evaluate(required models.Role) RenderState {
	return g.render(func(p *models.Principal) authz.Decision {
		return authz.Decide(p, required)
	})
}

// EvaluateAllowList decides by exact role membership instead of rank
func (g *RouteGuard) EvaluateAllowList(allowed ...models.Role) RenderState {
	return g.render(func(p *models.Principal) authz.Decision {
		return authz.DecideAllowList(p, allowed...)
	})
}

func (g *RouteGuard) render(decide func(*models.Principal) authz.Decision) RenderState {
	g.mu.Lock()
	state := g.state
	g.mu.Unlock()

	if state == StateInitializing {
		return RenderLoading
	}

	principal := g.api.Session().Principal()
	decision := decide(principal)
	switch {
	case decision.Allowed:
		return RenderChildren
	case decision.Reason == authz.ReasonUnauthenticated:
		return RenderRedirectLogin
	default:
		return RenderRedirectForbidden
	}
}

func (g *RouteGuard) settle(state AuthState) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.state = state
}
