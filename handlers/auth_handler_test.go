package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/upb/rbac-dashboard/middleware"
	"github.com/upb/rbac-dashboard/models"
	"github.com/upb/rbac-dashboard/services"
	"github.com/upb/rbac-dashboard/store"
	"github.com/upb/rbac-dashboard/token"
	"go.uber.org/zap/zaptest"
)

func newAuthHandler(t *testing.T) (*AuthHandler, *store.UserDirectory) {
	t.Helper()

	users, err := store.NewUserDirectory(store.DemoUsers, 5, 15*time.Minute)
	require.NoError(t, err)

	tokens, err := token.NewService(token.Config{
		Secret:   []byte("test-secret"),
		TTL:      10 * time.Minute,
		Issuer:   "rbac-dashboard",
		Audience: "dashboard-users",
	})
	require.NoError(t, err)

	logger := zaptest.NewLogger(t)
	auth := services.NewAuthService(users, tokens, logger)
	return NewAuthHandler(auth, users, logger), users
}

func responseMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Message string `json:"message"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body.Message
}

func TestHandleLogin(t *testing.T) {
	handler, _ := newAuthHandler(t)

	postLogin := func(t *testing.T, body string) *httptest.ResponseRecorder {
		t.Helper()
		req := httptest.NewRequest(http.MethodPost, "/api/login", strings.NewReader(body))
		rec := httptest.NewRecorder()
		handler.HandleLogin(rec, req)
		return rec
	}

	t.Run("valid credentials return token and user", func(t *testing.T) {
		rec := postLogin(t, `{"email":"admin@site.com","password":"admin123"}`)

		require.Equal(t, http.StatusOK, rec.Code)

		var resp LoginResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.NotEmpty(t, resp.Token)
		assert.Equal(t, "admin@site.com", resp.User.Email)
		assert.Equal(t, models.RoleAdmin, resp.User.Role)
	})

	t.Run("wrong password", func(t *testing.T) {
		rec := postLogin(t, `{"email":"admin@site.com","password":"nope"}`)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "Invalid credentials.", responseMessage(t, rec))
	})

	t.Run("unknown email", func(t *testing.T) {
		rec := postLogin(t, `{"email":"ghost@site.com","password":"admin123"}`)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "Invalid credentials.", responseMessage(t, rec))
	})

	t.Run("missing password", func(t *testing.T) {
		rec := postLogin(t, `{"email":"admin@site.com"}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Email and password are required.", responseMessage(t, rec))
	})

	t.Run("missing email", func(t *testing.T) {
		rec := postLogin(t, `{"password":"admin123"}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Email and password are required.", responseMessage(t, rec))
	})

	t.Run("malformed body", func(t *testing.T) {
		rec := postLogin(t, `{not json`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Email and password are required.", responseMessage(t, rec))
	})

	t.Run("lockout after repeated failures", func(t *testing.T) {
		for i := 0; i < 5; i++ {
			rec := postLogin(t, `{"email":"editor@site.com","password":"wrong"}`)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		}

		rec := postLogin(t, `{"email":"editor@site.com","password":"editor123"}`)

		assert.Equal(t, http.StatusTooManyRequests, rec.Code)
		assert.Equal(t, "Too many failed login attempts. Try again later.", responseMessage(t, rec))
	})
}

func TestHandleMe(t *testing.T) {
	handler, _ := newAuthHandler(t)

	t.Run("returns the directory account for the principal", func(t *testing.T) {
		principal := &models.Principal{ID: "2", Email: "editor@site.com", Role: models.RoleEditor}
		req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
		req = req.WithContext(middleware.WithPrincipal(req.Context(), principal))
		rec := httptest.NewRecorder()

		handler.HandleMe(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)

		var resp MeResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.Equal(t, "editor@site.com", resp.User.Email)
		assert.Equal(t, models.RoleEditor, resp.User.Role)
	})

	t.Run("principal no longer in directory", func(t *testing.T) {
		principal := &models.Principal{ID: "999", Email: "gone@site.com", Role: models.RoleViewer}
		req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
		req = req.WithContext(middleware.WithPrincipal(req.Context(), principal))
		rec := httptest.NewRecorder()

		handler.HandleMe(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("no principal in context", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
		rec := httptest.NewRecorder()

		handler.HandleMe(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestHandleLogout(t *testing.T) {
	handler, _ := newAuthHandler(t)

	principal := &models.Principal{ID: "1", Email: "admin@site.com", Role: models.RoleAdmin}
	req := httptest.NewRequest(http.MethodPost, "/api/logout", bytes.NewReader(nil))
	req = req.WithContext(middleware.WithPrincipal(req.Context(), principal))
	rec := httptest.NewRecorder()

	handler.HandleLogout(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Logged out successfully.", responseMessage(t, rec))
}

func TestHandleListUsers(t *testing.T) {
	handler, _ := newAuthHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
	rec := httptest.NewRecorder()

	handler.HandleListUsers(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()

	var users []models.DirectoryUser
	require.NoError(t, json.Unmarshal([]byte(body), &users))
	require.Len(t, users, 3)
	assert.Equal(t, "admin@site.com", users[0].Email)

	// Password hashes never leave the server
	assert.NotContains(t, body, "PasswordHash")
	for _, u := range users {
		assert.Empty(t, u.PasswordHash)
	}
}
