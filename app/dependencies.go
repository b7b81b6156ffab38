package app

import (
	"fmt"

	"github.com/upb/rbac-dashboard/config"
	"github.com/upb/rbac-dashboard/handlers"
	"github.com/upb/rbac-dashboard/middleware"
	"github.com/upb/rbac-dashboard/services"
	"github.com/upb/rbac-dashboard/store"
	"github.com/upb/rbac-dashboard/token"
	"go.uber.org/zap"
)

// Dependencies holds all application dependencies.
// This is the central wiring point for dependency injection.
type Dependencies struct {
	// Infrastructure
	Config *config.Config
	Logger *zap.Logger

	// Collaborators
	Store        store.Store
	Users        *store.UserDirectory
	TokenService *token.Service

	// Services
	AuthService *services.AuthService

	// HTTP layer
	AuthMiddleware *middleware.AuthMiddleware
	RateLimiter    *middleware.RateLimiter
	AuthHandler    *handlers.AuthHandler
	DataHandler    *handlers.DataHandler
}

// NewDependencies creates and wires up all application dependencies
func NewDependencies(cfg *config.Config, logger *zap.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config: cfg,
		Logger: logger,
	}

	tokenService, err := token.NewService(token.Config{
		Secret:   []byte(cfg.Auth.JWTSecret),
		TTL:      cfg.Auth.TokenTTL,
		Issuer:   cfg.Auth.Issuer,
		Audience: cfg.Auth.Audience,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize token service: %w", err)
	}
	deps.TokenService = tokenService

	users, err := store.NewUserDirectory(store.DemoUsers, cfg.Auth.MaxLoginAttempts, cfg.Auth.LockoutWindow)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize user directory: %w", err)
	}
	deps.Users = users
	deps.Store = store.NewMemoryStore()

	deps.AuthService = services.NewAuthService(users, tokenService, logger)

	deps.AuthMiddleware = middleware.NewAuthMiddleware(tokenService, logger)
	deps.RateLimiter = middleware.NewRateLimiter(cfg.RateLimit.Requests, cfg.RateLimit.Window, logger)

	deps.AuthHandler = handlers.NewAuthHandler(deps.AuthService, users, logger)
	deps.DataHandler = handlers.NewDataHandler(deps.Store, logger)

	logger.Info("all dependencies initialized successfully")
	return deps, nil
}
