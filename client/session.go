package client

import (
	"sync"
	"time"

	"github.com/upb/rbac-dashboard/models"
	"github.com/upb/rbac-dashboard/token"
)

// Session holds the client-side authentication state: the raw session token,
// its locally decoded claims, and an optional expiry-warning timer. Claims are
// decoded without signature verification and are advisory only; the server
// re-verifies every request.
//
// Every mutation bumps a generation counter. In-flight restores capture the
// generation before their round trip and discard results if it moved, so a
// logout or re-login during a slow request never gets overwritten by stale
// data.
type Session struct {
	mu         sync.Mutex
	token      string
	claims     *token.Claims
	warnTimer  *time.Timer
	generation uint64
	now        func() time.Time
}

// NewSession creates an empty session
func NewSession() *Session {
	return &Session{now: time.Now}
}

// WithClock overrides the session clock. Intended for tests.
func (s *Session) WithClock(now func() time.Time) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
	return s
}

// SetToken stores a session token and its decoded claims. An undecodable
// token is rejected and leaves the session untouched.
func (s *Session) SetToken(tok string) error {
	claims, err := token.DecodeUnverified(tok)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = tok
	s.claims = claims
	s.generation++
	s.stopTimerLocked()
	return nil
}

// Token returns the stored session token, or "" when logged out
func (s *Session) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// Claims returns the locally decoded claim set, or nil when logged out
func (s *Session) Claims() *token.Claims {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.claims
}

// Principal returns the identity decoded from the stored token, or nil.
// Advisory only: drives rendering decisions, never enforcement.
func (s *Session) Principal() *models.Principal {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.claims == nil {
		return nil
	}
	return s.claims.Principal()
}

// Authenticated reports whether a token is currently stored
func (s *Session) Authenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token != ""
}

// Generation returns the current session generation. Callers snapshot it
// before an async round trip and compare after to detect staleness.
func (s *Session) Generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation
}

// Clear drops the token and claims and cancels any pending expiry warning
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.claims = nil
	s.generation++
	s.stopTimerLocked()
}

// ScheduleExpiryWarning arranges for warn to run once, window before the
// stored token expires. A warning already past its fire time runs
// immediately. The timer is cancelled by Clear, SetToken or a later call.
// Returns false when no expiring token is stored.
func (s *Session) ScheduleExpiryWarning(window time.Duration, warn func()) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.claims == nil || s.claims.ExpiresAt == nil {
		return false
	}
	s.stopTimerLocked()

	delay := s.claims.ExpiresAt.Time.Add(-window).Sub(s.now())
	if delay < 0 {
		delay = 0
	}
	s.warnTimer = time.AfterFunc(delay, warn)
	return true
}

// ExpiresWithin reports whether the stored token expires inside the window.
// False when logged out.
func (s *Session) ExpiresWithin(window time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.claims == nil || s.claims.ExpiresAt == nil {
		return false
	}
	return s.claims.ExpiresAt.Time.Sub(s.now()) < window
}

func (s *Session) stopTimerLocked() {
	if s.warnTimer != nil {
		s.warnTimer.Stop()
		s.warnTimer = nil
	}
}
