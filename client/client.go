package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/upb/rbac-dashboard/models"
)

// APIError is a non-2xx response from the dashboard API
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
}

// IsUnauthorized reports whether err is a 401 response
func IsUnauthorized(err error) bool {
	apiErr, ok := err.(*APIError)
	return ok && apiErr.StatusCode == http.StatusUnauthorized
}

// IsForbidden reports whether err is a 403 response
func IsForbidden(err error) bool {
	apiErr, ok := err.(*APIError)
	return ok && apiErr.StatusCode == http.StatusForbidden
}

// Client is an HTTP client for the dashboard API. It attaches the session
// token as a Bearer header on every request and treats every 401 uniformly:
// the stored token is cleared so the caller lands back at login, whether the
// token expired, was tampered with or was never valid.
type Client struct {
	baseURL string
	httpc   *http.Client
	session *Session
}

// NewClient creates a client for the API at baseURL
func NewClient(baseURL string, session *Session) *Client {
	if session == nil {
		session = NewSession()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc:   &http.Client{Timeout: 30 * time.Second},
		session: session,
	}
}

// WithHTTPClient overrides the underlying HTTP client. Intended for tests.
func (c *Client) WithHTTPClient(httpc *http.Client) *Client {
	c.httpc = httpc
	return c
}

// Session returns the session this client authenticates with
func (c *Client) Session() *Session {
	return c.session
}

// LoginResult is the successful login payload
type LoginResult struct {
	Token string           `json:"token"`
	User  models.Principal `json:"user"`
}

// Login authenticates with the API and stores the issued token in the session
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	body := map[string]string{"email": email, "password": password}

	var result LoginResult
	if err := c.do(ctx, http.MethodPost, "/api/login", body, &result); err != nil {
		return nil, err
	}
	if err := c.session.SetToken(result.Token); err != nil {
		return nil, fmt.Errorf("server returned undecodable token: %w", err)
	}
	return &result, nil
}

// Me fetches the current user from the API
func (c *Client) Me(ctx context.Context) (*models.DirectoryUser, error) {
	var resp struct {
		User models.DirectoryUser `json:"user"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/me", nil, &resp); err != nil {
		return nil, err
	}
	return &resp.User, nil
}

// Logout tells the server and clears the session. The session is cleared
// even when the round trip fails; logout is client bookkeeping.
func (c *Client) Logout(ctx context.Context) error {
	err := c.do(ctx, http.MethodPost, "/api/logout", nil, nil)
	c.session.Clear()
	return err
}

// Users fetches the directory user list (admin only)
func (c *Client) Users(ctx context.Context) ([]models.DirectoryUser, error) {
	var users []models.DirectoryUser
	if err := c.do(ctx, http.MethodGet, "/api/users", nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// GetData fetches the records of a data type. The payload shape varies per
// type so it is returned raw.
func (c *Client) GetData(ctx context.Context, resource models.Resource) (json.RawMessage, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, "/api/data/"+string(resource), nil, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// UpdateData patches a record and returns the updated copy
func (c *Client) UpdateData(ctx context.Context, resource models.Resource, id string, patch map[string]any) (json.RawMessage, error) {
	var resp struct {
		Message     string          `json:"message"`
		UpdatedData json.RawMessage `json:"updatedData"`
	}
	path := fmt.Sprintf("/api/data/%s/%s", resource, id)
	if err := c.do(ctx, http.MethodPut, path, patch, &resp); err != nil {
		return nil, err
	}
	return resp.UpdatedData, nil
}

// DeleteData removes a record
func (c *Client) DeleteData(ctx context.Context, resource models.Resource, id string) error {
	path := fmt.Sprintf("/api/data/%s/%s", resource, id)
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

// Stats fetches the aggregate dashboard figures
func (c *Client) Stats(ctx context.Context) (*models.DashboardStats, error) {
	var stats models.DashboardStats
	if err := c.do(ctx, http.MethodGet, "/api/dashboard/stats", nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// do performs one API round trip. Request bodies are JSON-encoded, the
// session token rides in the Authorization header, and a 401 clears the
// session before the error is returned.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if tok := c.session.Token(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if resp.StatusCode == http.StatusUnauthorized {
			c.session.Clear()
		}
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    decodeErrorMessage(resp),
		}
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func decodeErrorMessage(resp *http.Response) string {
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil || payload.Message == "" {
		return http.StatusText(resp.StatusCode)
	}
	return payload.Message
}
