package models

import (
	"time"

	"github.com/google/uuid"
)

// AuthProvider names who verified the user's identity.
type AuthProvider string

const (
	ProviderLocal    AuthProvider = "local"
	ProviderGoogle   AuthProvider = "google"
	ProviderFacebook AuthProvider = "facebook"
)

// User identity record. Email is unique case-insensitively and stored
// lowercase. Hash and salt are nil for accounts authenticated by an
// external provider; such accounts carry ExternalID instead.
type User struct {
	ID           uuid.UUID
	CreatedAt    time.Time
	Email        string
	PasswordHash *string
	PasswordSalt *string
	Provider     AuthProvider
	ExternalID   *string
}

// NewUser is the insertion payload. ID and CreatedAt are assigned by the store.
type NewUser struct {
	Email        string
	PasswordHash *string
	PasswordSalt *string
	Provider     AuthProvider
	ExternalID   *string
}

// HasLocalPassword reports whether the user can be verified against
// a stored credential. External-provider accounts can not.
func (u User) HasLocalPassword() bool {
	return u.PasswordHash != nil && u.PasswordSalt != nil
}
