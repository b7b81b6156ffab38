package middleware

import (
	"errors"
	"net/http"
	"strings"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/upb/rbac-dashboard/authz"
	"github.com/upb/rbac-dashboard/models"
	"github.com/upb/rbac-dashboard/token"
	"github.com/upb/rbac-dashboard/utils"
	"go.uber.org/zap"
)

// User-facing messages for the auth gate. Expired and invalid tokens are
// distinguishable on purpose: 401 tells the client its session ended, 403
// tells it the token was never valid.
const (
	msgNoToken          = "Access denied. No token provided."
	msgTokenExpired     = "Token expired."
	msgInvalidToken     = "Invalid token."
	msgAuthRequired     = "Authentication required."
	msgInsufficientRole = "Access denied. Insufficient permissions."
)

// TokenVerifier defines the interface for verifying session tokens
type TokenVerifier interface {
	// Verify checks signature, structure and expiry and returns the principal
	Verify(tokenStr string) (*models.Principal, error)
}

// AuthMiddleware is the server-side Authorization Gate adapter: it verifies
// session tokens and applies the shared authz decision rule per request.
type AuthMiddleware struct {
	verifier TokenVerifier
	logger   *zap.Logger
}

// NewAuthMiddleware creates a new AuthMiddleware
func NewAuthMiddleware(verifier TokenVerifier, logger *zap.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		verifier: verifier,
		logger:   logger,
	}
}

// RequireAuth is a middleware that requires a valid session token. On success
// the resolved principal is forwarded to downstream handlers via context.
func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		requestID := chimw.GetReqID(ctx)

		tok := extractBearerToken(r)
		if tok == "" {
			m.logger.Warn("missing token",
				zap.String("request_id", requestID),
				zap.String("path", r.URL.Path))
			_ = utils.WriteUnauthorized(w, msgNoToken)
			return
		}

		principal, err := m.verifier.Verify(tok)
		if err != nil {
			m.logger.Warn("token verification failed",
				zap.String("request_id", requestID),
				zap.Error(err))
			if errors.Is(err, token.ErrExpired) {
				_ = utils.WriteUnauthorized(w, msgTokenExpired)
				return
			}
			_ = utils.WriteForbidden(w, msgInvalidToken)
			return
		}

		m.logger.Debug("authentication successful",
			zap.String("request_id", requestID),
			zap.String("subject", principal.ID),
			zap.String("role", principal.Role.String()))

		next.ServeHTTP(w, r.WithContext(WithPrincipal(ctx, principal)))
	})
}

// RequireMinRole applies the minimum-rank rule: the caller's role must rank
// at least as high as the required role. Must run after RequireAuth.
func (m *AuthMiddleware) RequireMinRole(required models.Role) func(http.Handler) http.Handler {
	return m.gate(required.String(), func(p *models.Principal) authz.Decision {
		return authz.Decide(p, required)
	})
}

// RequireAnyRole applies the allow-list rule: the caller's role must be an
// exact member of the given set, independent of the hierarchy. Must run after
// RequireAuth.
func (m *AuthMiddleware) RequireAnyRole(allowed ...models.Role) func(http.Handler) http.Handler {
	names := make([]string, len(allowed))
	for i, role := range allowed {
		names[i] = role.String()
	}
	return m.gate(strings.Join(names, ","), func(p *models.Principal) authz.Decision {
		return authz.DecideAllowList(p, allowed...)
	})
}

func (m *AuthMiddleware) gate(requirement string, decide func(*models.Principal) authz.Decision) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			requestID := chimw.GetReqID(ctx)

			principal := GetPrincipalFromContext(ctx)
			decision := decide(principal)
			if decision.Allowed {
				next.ServeHTTP(w, r)
				return
			}

			if decision.Reason == authz.ReasonUnauthenticated {
				m.logger.Error("principal not found in context",
					zap.String("request_id", requestID))
				_ = utils.WriteUnauthorized(w, msgAuthRequired)
				return
			}

			m.logger.Warn("authorization denied",
				zap.String("request_id", requestID),
				zap.String("subject", principal.ID),
				zap.String("role", principal.Role.String()),
				zap.String("requirement", requirement),
				zap.String("reason", string(decision.Reason)))
			_ = utils.WriteForbidden(w, msgInsufficientRole)
		})
	}
}

// extractBearerToken extracts the Bearer token from the Authorization header
func extractBearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}

	return strings.TrimSpace(parts[1])
}
