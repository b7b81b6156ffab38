package middleware

import (
	"context"

	"github.com/upb/rbac-dashboard/models"
)

// Context key type to avoid collisions
type contextKey string

const (
	// principalKey is the context key for the authenticated principal
	principalKey contextKey = "principal"
)

// GetPrincipalFromContext retrieves the authenticated principal from context,
// or nil when the request is unauthenticated
func GetPrincipalFromContext(ctx context.Context) *models.Principal {
	if val := ctx.Value(principalKey); val != nil {
		if p, ok := val.(*models.Principal); ok {
			return p
		}
	}
	return nil
}

// WithPrincipal adds the authenticated principal to the context
func WithPrincipal(ctx context.Context, p *models.Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}
