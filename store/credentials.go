package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/upb/rbac-dashboard/models"
	"golang.org/x/crypto/bcrypt"
)

// SeedUser is a demo account loaded into the directory at startup
type SeedUser struct {
	ID       string
	Email    string
	Password string
	Role     models.Role
}

// DemoUsers are the accounts available in the demo deployment
var DemoUsers = []SeedUser{
	{ID: "1", Email: "admin@site.com", Password: "admin123", Role: models.RoleAdmin},
	{ID: "2", Email: "editor@site.com", Password: "editor123", Role: models.RoleEditor},
	{ID: "3", Email: "viewer@site.com", Password: "viewer123", Role: models.RoleViewer},
}

type attemptState struct {
	failures    int
	lockedUntil time.Time
}

// UserDirectory verifies login credentials against bcrypt password hashes and
// enforces a lockout after maxAttempts consecutive failures. Lookup is by
// lowercased email.
type UserDirectory struct {
	mu            sync.Mutex
	users         map[string]*models.DirectoryUser
	attempts      map[string]*attemptState
	maxAttempts   int
	lockoutWindow time.Duration
	now           func() time.Time
}

// NewUserDirectory creates a directory seeded with the given accounts.
// Plaintext seed passwords are hashed with bcrypt before storage.
func NewUserDirectory(seeds []SeedUser, maxAttempts int, lockoutWindow time.Duration) (*UserDirectory, error) {
	if maxAttempts <= 0 {
		maxAttempts = 5
	}
	if lockoutWindow <= 0 {
		lockoutWindow = 15 * time.Minute
	}

	users := make(map[string]*models.DirectoryUser, len(seeds))
	for _, seed := range seeds {
		hash, err := bcrypt.GenerateFromPassword([]byte(seed.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		users[strings.ToLower(seed.Email)] = &models.DirectoryUser{
			ID:           seed.ID,
			Email:        seed.Email,
			PasswordHash: hash,
			Role:         seed.Role,
			LastLogin:    time.Now(),
		}
	}

	return &UserDirectory{
		users:         users,
		attempts:      make(map[string]*attemptState),
		maxAttempts:   maxAttempts,
		lockoutWindow: lockoutWindow,
		now:           time.Now,
	}, nil
}

// WithClock overrides the directory clock. Intended for tests.
func (d *UserDirectory) WithClock(now func() time.Time) *UserDirectory {
	d.now = now
	return d
}

// VerifyCredentials maps (email, password) to a Principal. Returns
// ErrInvalidCredentials for unknown emails and wrong passwords without
// distinguishing the two, and ErrAccountLocked while a lockout is active.
func (d *UserDirectory) VerifyCredentials(ctx context.Context, email, password string) (*models.Principal, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	key := strings.ToLower(email)
	now := d.now()

	if state, ok := d.attempts[key]; ok && state.lockedUntil.After(now) {
		return nil, ErrAccountLocked
	}

	user, ok := d.users[key]
	if !ok {
		// Unknown emails are tracked too so probing does not bypass lockout
		d.recordFailure(key, now)
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)); err != nil {
		d.recordFailure(key, now)
		return nil, ErrInvalidCredentials
	}

	delete(d.attempts, key)
	user.LastLogin = now

	p := user.Principal()
	return &p, nil
}

// Lookup returns the directory account for a principal id, or false
func (d *UserDirectory) Lookup(ctx context.Context, id string) (models.DirectoryUser, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	for _, user := range d.users {
		if user.ID == id {
			return *user, true
		}
	}
	return models.DirectoryUser{}, false
}

// Users returns all directory accounts ordered by id, hashes excluded by
// the DirectoryUser JSON contract
func (d *UserDirectory) Users(ctx context.Context) []models.DirectoryUser {
	d.mu.Lock()
	defer d.mu.Unlock()

	out := make([]models.DirectoryUser, 0, len(d.users))
	for _, user := range d.users {
		out = append(out, *user)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (d *UserDirectory) recordFailure(key string, now time.Time) {
	state, ok := d.attempts[key]
	if !ok {
		state = &attemptState{}
		d.attempts[key] = state
	}
	state.failures++
	if state.failures >= d.maxAttempts {
		state.lockedUntil = now.Add(d.lockoutWindow)
		state.failures = 0
	}
}
