// Package store provides the data-access collaborators consumed by the
// request handlers: a resource store for the dashboard records and a user
// directory for credential verification. Both are in-memory demo
// implementations behind interfaces so they can be swapped out.
package store

import (
	"context"
	"errors"

	"github.com/upb/rbac-dashboard/models"
)

var (
	// ErrResourceNotFound indicates an unknown data type
	ErrResourceNotFound = errors.New("data type not found")

	// ErrRecordNotFound indicates a known data type without a matching record
	ErrRecordNotFound = errors.New("record not found")

	// ErrInvalidCredentials indicates an unknown email or a wrong password
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrAccountLocked indicates too many consecutive failed login attempts
	ErrAccountLocked = errors.New("account locked")
)

// Store is the data-access capability consumed by the data handlers
type Store interface {
	// Get returns all records of the given resource type
	Get(ctx context.Context, resource models.Resource) (any, error)

	// Update applies a partial patch to the record with the given id and
	// returns the updated record. For the settings resource the id is ignored.
	Update(ctx context.Context, resource models.Resource, id string, patch map[string]any) (any, error)

	// Delete removes the record with the given id
	Delete(ctx context.Context, resource models.Resource, id string) error

	// Stats returns aggregate dashboard figures
	Stats(ctx context.Context) (models.DashboardStats, error)
}

// CredentialVerifier maps (email, password) to a Principal or a typed failure
type CredentialVerifier interface {
	VerifyCredentials(ctx context.Context, email, password string) (*models.Principal, error)
}
