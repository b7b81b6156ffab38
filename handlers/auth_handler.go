package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/upb/rbac-dashboard/middleware"
	"github.com/upb/rbac-dashboard/models"
	"github.com/upb/rbac-dashboard/services"
	"github.com/upb/rbac-dashboard/store"
	"github.com/upb/rbac-dashboard/utils"
	"go.uber.org/zap"
)

// LoginRequest represents a login attempt
type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse carries the issued session token and the authenticated user
type LoginResponse struct {
	Token string           `json:"token"`
	User  models.Principal `json:"user"`
}

// MeResponse wraps the current user info
type MeResponse struct {
	User models.DirectoryUser `json:"user"`
}

// AuthHandler handles login, logout and current-user requests
type AuthHandler struct {
	auth   *services.AuthService
	users  *store.UserDirectory
	logger *zap.Logger
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(auth *services.AuthService, users *store.UserDirectory, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		auth:   auth,
		users:  users,
		logger: logger,
	}
}

// HandleLogin handles POST /api/login
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = utils.WriteBadRequest(w, "Email and password are required.", nil)
		return
	}

	if err := utils.ValidateStruct(req); err != nil {
		_ = utils.WriteBadRequest(w, "Email and password are required.", nil)
		return
	}

	tok, principal, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteOK(w, LoginResponse{Token: tok, User: *principal})
}

// HandleMe handles GET /api/me
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	principal := middleware.GetPrincipalFromContext(r.Context())
	if principal == nil {
		_ = utils.WriteUnauthorized(w, "")
		return
	}

	user, ok := h.users.Lookup(r.Context(), principal.ID)
	if !ok {
		HandleServiceError(w, services.ErrUserNotFound, h.logger)
		return
	}

	_ = utils.WriteOK(w, MeResponse{User: user})
}

// HandleLogout handles POST /api/logout. The server keeps no session state;
// discarding the token is the client's bookkeeping.
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	principal := middleware.GetPrincipalFromContext(r.Context())
	if principal != nil {
		h.logger.Info("logout", zap.String("subject", principal.ID))
	}
	_ = utils.WriteOK(w, map[string]string{"message": "Logged out successfully."})
}

// HandleListUsers handles GET /api/users (admin only via route gate)
func (h *AuthHandler) HandleListUsers(w http.ResponseWriter, r *http.Request) {
	_ = utils.WriteOK(w, h.users.Users(r.Context()))
}
