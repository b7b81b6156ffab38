package models

import "time"

// Principal represents an authenticated identity with an assigned role.
// A Principal is immutable once a token has been issued for it; role changes
// require issuing a new token.
type Principal struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

// DirectoryUser represents an account in the credential directory.
// PasswordHash is a bcrypt hash and is never serialized.
type DirectoryUser struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash []byte    `json:"-"`
	Role         Role      `json:"role"`
	LastLogin    time.Time `json:"lastLogin"`
}

// Principal returns the authenticated identity for the account
func (u *DirectoryUser) Principal() Principal {
	return Principal{
		ID:    u.ID,
		Email: u.Email,
		Role:  u.Role,
	}
}
