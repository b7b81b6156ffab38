package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/upb/rbac-dashboard/models"
)

func newTestDirectory(t *testing.T) *UserDirectory {
	t.Helper()
	dir, err := NewUserDirectory(DemoUsers, 5, 15*time.Minute)
	require.NoError(t, err)
	return dir
}

func TestVerifyCredentials(t *testing.T) {
	ctx := context.Background()

	t.Run("valid credentials return the principal", func(t *testing.T) {
		dir := newTestDirectory(t)
		p, err := dir.VerifyCredentials(ctx, "admin@site.com", "admin123")
		require.NoError(t, err)
		assert.Equal(t, "1", p.ID)
		assert.Equal(t, "admin@site.com", p.Email)
		assert.Equal(t, models.RoleAdmin, p.Role)
	})

	t.Run("email lookup is case-insensitive", func(t *testing.T) {
		dir := newTestDirectory(t)
		p, err := dir.VerifyCredentials(ctx, "Viewer@Site.COM", "viewer123")
		require.NoError(t, err)
		assert.Equal(t, models.RoleViewer, p.Role)
	})

	t.Run("wrong password", func(t *testing.T) {
		dir := newTestDirectory(t)
		p, err := dir.VerifyCredentials(ctx, "admin@site.com", "nope")
		assert.Nil(t, p)
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown email is indistinguishable from wrong password", func(t *testing.T) {
		dir := newTestDirectory(t)
		_, err := dir.VerifyCredentials(ctx, "ghost@site.com", "admin123")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("successful login updates lastLogin", func(t *testing.T) {
		dir := newTestDirectory(t)
		at := time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)
		dir.WithClock(func() time.Time { return at })

		_, err := dir.VerifyCredentials(ctx, "editor@site.com", "editor123")
		require.NoError(t, err)

		user, ok := dir.Lookup(ctx, "2")
		require.True(t, ok)
		assert.Equal(t, at, user.LastLogin)
	})
}

func TestLockout(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)

	t.Run("locks after max consecutive failures", func(t *testing.T) {
		dir := newTestDirectory(t).WithClock(func() time.Time { return now })

		for i := 0; i < 5; i++ {
			_, err := dir.VerifyCredentials(ctx, "admin@site.com", "wrong")
			assert.ErrorIs(t, err, ErrInvalidCredentials)
		}

		// Even the correct password is rejected while locked
		_, err := dir.VerifyCredentials(ctx, "admin@site.com", "admin123")
		assert.ErrorIs(t, err, ErrAccountLocked)
	})

	t.Run("lockout expires after the window", func(t *testing.T) {
		clock := now
		dir := newTestDirectory(t).WithClock(func() time.Time { return clock })

		for i := 0; i < 5; i++ {
			_, _ = dir.VerifyCredentials(ctx, "admin@site.com", "wrong")
		}
		_, err := dir.VerifyCredentials(ctx, "admin@site.com", "admin123")
		assert.ErrorIs(t, err, ErrAccountLocked)

		clock = now.Add(16 * time.Minute)
		p, err := dir.VerifyCredentials(ctx, "admin@site.com", "admin123")
		require.NoError(t, err)
		assert.Equal(t, models.RoleAdmin, p.Role)
	})

	t.Run("success resets the failure count", func(t *testing.T) {
		dir := newTestDirectory(t).WithClock(func() time.Time { return now })

		for i := 0; i < 4; i++ {
			_, _ = dir.VerifyCredentials(ctx, "admin@site.com", "wrong")
		}
		_, err := dir.VerifyCredentials(ctx, "admin@site.com", "admin123")
		require.NoError(t, err)

		// Four more failures must not trip the lockout
		for i := 0; i < 4; i++ {
			_, err = dir.VerifyCredentials(ctx, "admin@site.com", "wrong")
			assert.ErrorIs(t, err, ErrInvalidCredentials)
		}
	})

	t.Run("lockout applies per account", func(t *testing.T) {
		dir := newTestDirectory(t).WithClock(func() time.Time { return now })

		for i := 0; i < 5; i++ {
			_, _ = dir.VerifyCredentials(ctx, "admin@site.com", "wrong")
		}
		p, err := dir.VerifyCredentials(ctx, "viewer@site.com", "viewer123")
		require.NoError(t, err)
		assert.Equal(t, models.RoleViewer, p.Role)
	})
}

func TestUsersListing(t *testing.T) {
	dir := newTestDirectory(t)
	users := dir.Users(context.Background())

	require.Len(t, users, 3)
	assert.Equal(t, "1", users[0].ID)
	assert.Equal(t, "2", users[1].ID)
	assert.Equal(t, "3", users[2].ID)
}
