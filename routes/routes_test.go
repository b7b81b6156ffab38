package routes

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/upb/rbac-dashboard/app"
	"github.com/upb/rbac-dashboard/config"
	"github.com/upb/rbac-dashboard/models"
	"github.com/upb/rbac-dashboard/token"
	"go.uber.org/zap/zaptest"
)

const testSecret = "integration-test-secret"

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	cfg := &config.Config{
		Environment: "test",
		Auth: config.AuthConfig{
			JWTSecret:        testSecret,
			TokenTTL:         10 * time.Minute,
			Issuer:           "rbac-dashboard",
			Audience:         "dashboard-users",
			MaxLoginAttempts: 5,
			LockoutWindow:    15 * time.Minute,
		},
		RateLimit: config.RateLimitConfig{
			Requests: 10000,
			Window:   time.Minute,
		},
	}

	deps, err := app.NewDependencies(cfg, zaptest.NewLogger(t))
	require.NoError(t, err)

	srv := httptest.NewServer(SetupRoutes(deps))
	t.Cleanup(srv.Close)
	return srv
}

func login(t *testing.T, srv *httptest.Server, email, password string) string {
	t.Helper()

	body := strings.NewReader(`{"email":"` + email + `","password":"` + password + `"}`)
	resp, err := http.Post(srv.URL+"/api/login", "application/json", body)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var payload struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	require.NotEmpty(t, payload.Token)
	return payload.Token
}

func request(t *testing.T, srv *httptest.Server, method, path, tok, body string) (*http.Response, string) {
	t.Helper()

	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, srv.URL+path, reader)
	require.NoError(t, err)
	if tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var payload struct {
		Message string `json:"message"`
	}
	raw := json.NewDecoder(resp.Body)
	_ = raw.Decode(&payload)
	return resp, payload.Message
}

func TestRoutesPublicEndpoints(t *testing.T) {
	srv := newTestServer(t)

	t.Run("health", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/api/health")
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("unknown endpoint", func(t *testing.T) {
		resp, msg := request(t, srv, http.MethodGet, "/api/nope", "", "")
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "Endpoint not found.", msg)
	})
}

func TestRoutesAuthentication(t *testing.T) {
	srv := newTestServer(t)

	t.Run("missing token", func(t *testing.T) {
		resp, msg := request(t, srv, http.MethodGet, "/api/me", "", "")

		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.Equal(t, "Access denied. No token provided.", msg)
	})

	t.Run("expired token", func(t *testing.T) {
		svc, err := token.NewService(token.Config{
			Secret:   []byte(testSecret),
			TTL:      10 * time.Minute,
			Issuer:   "rbac-dashboard",
			Audience: "dashboard-users",
		})
		require.NoError(t, err)
		past := time.Now().Add(-time.Hour)
		expired, err := svc.WithClock(func() time.Time { return past }).
			Issue(models.Principal{ID: "1", Email: "admin@site.com", Role: models.RoleAdmin})
		require.NoError(t, err)

		resp, msg := request(t, srv, http.MethodGet, "/api/me", expired, "")

		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.Equal(t, "Token expired.", msg)
	})

	t.Run("forged token", func(t *testing.T) {
		svc, err := token.NewService(token.Config{
			Secret:   []byte("some-other-secret"),
			TTL:      10 * time.Minute,
			Issuer:   "rbac-dashboard",
			Audience: "dashboard-users",
		})
		require.NoError(t, err)
		forged, err := svc.Issue(models.Principal{ID: "1", Email: "admin@site.com", Role: models.RoleAdmin})
		require.NoError(t, err)

		resp, msg := request(t, srv, http.MethodGet, "/api/me", forged, "")

		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
		assert.Equal(t, "Invalid token.", msg)
	})

	t.Run("valid token reaches me", func(t *testing.T) {
		tok := login(t, srv, "viewer@site.com", "viewer123")

		resp, _ := request(t, srv, http.MethodGet, "/api/me", tok, "")

		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})
}

func TestRoutesRoleEnforcement(t *testing.T) {
	srv := newTestServer(t)
	adminTok := login(t, srv, "admin@site.com", "admin123")
	editorTok := login(t, srv, "editor@site.com", "editor123")
	viewerTok := login(t, srv, "viewer@site.com", "viewer123")

	t.Run("settings read is admin only", func(t *testing.T) {
		resp, _ := request(t, srv, http.MethodGet, "/api/data/settings", adminTok, "")
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		resp, msg := request(t, srv, http.MethodGet, "/api/data/settings", viewerTok, "")
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
		assert.Equal(t, "Only admins can access settings.", msg)
	})

	t.Run("orders readable by every role", func(t *testing.T) {
		for _, tok := range []string{adminTok, editorTok, viewerTok} {
			resp, _ := request(t, srv, http.MethodGet, "/api/data/orders", tok, "")
			assert.Equal(t, http.StatusOK, resp.StatusCode)
		}
	})

	t.Run("update requires editor rank", func(t *testing.T) {
		resp, msg := request(t, srv, http.MethodPut, "/api/data/orders/1", viewerTok, `{"status":"Shipped"}`)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
		assert.Equal(t, "Access denied. Insufficient permissions.", msg)

		resp, _ = request(t, srv, http.MethodPut, "/api/data/orders/1", editorTok, `{"status":"Shipped"}`)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		// Admin outranks editor on the hierarchy gate
		resp, _ = request(t, srv, http.MethodPut, "/api/data/orders/1", adminTok, `{"status":"Delivered"}`)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("delete is admin only", func(t *testing.T) {
		resp, msg := request(t, srv, http.MethodDelete, "/api/data/orders/2", editorTok, "")
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
		assert.Equal(t, "Access denied. Insufficient permissions.", msg)

		resp, _ = request(t, srv, http.MethodDelete, "/api/data/orders/2", adminTok, "")
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("directory listing is admin only", func(t *testing.T) {
		resp, msg := request(t, srv, http.MethodGet, "/api/users", editorTok, "")
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
		assert.Equal(t, "Access denied. Insufficient permissions.", msg)

		resp, _ = request(t, srv, http.MethodGet, "/api/users", adminTok, "")
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("stats open to every role", func(t *testing.T) {
		resp, _ := request(t, srv, http.MethodGet, "/api/dashboard/stats", viewerTok, "")
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})
}

func TestRoutesLoginFailures(t *testing.T) {
	srv := newTestServer(t)

	t.Run("wrong password", func(t *testing.T) {
		body := strings.NewReader(`{"email":"admin@site.com","password":"wrong"}`)
		resp, err := http.Post(srv.URL+"/api/login", "application/json", body)
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("missing password", func(t *testing.T) {
		body := strings.NewReader(`{"email":"admin@site.com"}`)
		resp, err := http.Post(srv.URL+"/api/login", "application/json", body)
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}
