package services

import (
	"context"
	"errors"

	"github.com/upb/rbac-dashboard/models"
	"github.com/upb/rbac-dashboard/store"
	"github.com/upb/rbac-dashboard/token"
	"go.uber.org/zap"
)

// TokenIssuer issues session tokens for authenticated principals
type TokenIssuer interface {
	Issue(p models.Principal) (string, error)
}

// AuthService performs credential checks and session token issuance
type AuthService struct {
	creds  store.CredentialVerifier
	tokens TokenIssuer
	logger *zap.Logger
}

// NewAuthService creates a new AuthService
func NewAuthService(creds store.CredentialVerifier, tokens TokenIssuer, logger *zap.Logger) *AuthService {
	return &AuthService{
		creds:  creds,
		tokens: tokens,
		logger: logger,
	}
}

// Login verifies credentials and issues a session token. Credential failures
// map to domain errors; the HTTP layer translates them to status codes.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *models.Principal, error) {
	if email == "" || password == "" {
		return "", nil, ErrMissingCredentials
	}

	principal, err := s.creds.VerifyCredentials(ctx, email, password)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrAccountLocked):
			s.logger.Warn("login rejected, account locked",
				zap.String("email", email))
			return "", nil, ErrAccountLocked
		case errors.Is(err, store.ErrInvalidCredentials):
			s.logger.Debug("login rejected, invalid credentials",
				zap.String("email", email))
			return "", nil, ErrInvalidCredentials
		default:
			return "", nil, WrapInternal("credential check failed", err)
		}
	}

	tok, err := s.tokens.Issue(*principal)
	if err != nil {
		s.logger.Error("token issuance failed",
			zap.String("subject", principal.ID),
			zap.Error(err))
		return "", nil, WrapInternal("token issuance failed", err)
	}

	s.logger.Info("login successful",
		zap.String("subject", principal.ID),
		zap.String("role", principal.Role.String()))

	return tok, principal, nil
}

var _ TokenIssuer = (*token.Service)(nil)
