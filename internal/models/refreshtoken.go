package models

import (
	"time"

	"github.com/google/uuid"
)

// RevokeReason records why a refresh token stopped being usable.
type RevokeReason string

const (
	RevokedRotated        RevokeReason = "rotated"
	RevokedLogout         RevokeReason = "logout"
	RevokedReuseDetected  RevokeReason = "reuse-detected"
	RevokedExpiredCleanup RevokeReason = "expired-cleanup"
)

// RefreshToken is a persisted session credential. Token values are unique
// across all time, revoked and expired rows included, so presenting an old
// value is always detectable.
//
// CreatedByToken points back at the token that was rotated to produce this
// one; ReplacedByToken points forward at its successor. Both nil for a token
// minted at login that was never rotated. A row with ReplacedByToken set is
// always revoked.
type RefreshToken struct {
	ID              uuid.UUID
	UserID          uuid.UUID
	Token           string
	CreatedAt       time.Time
	ExpiresAt       time.Time
	Revoked         bool
	RevokedAt       *time.Time // set iff Revoked
	RevokedReason   *RevokeReason
	CreatedByToken  *string
	ReplacedByToken *string
}

// Expired reports whether the token is past its expiry at the given instant.
// Expiry is a clock comparison, not a stored flag.
func (t RefreshToken) Expired(now time.Time) bool {
	return t.ExpiresAt.Before(now)
}

// Active means the token can still be presented for rotation.
func (t RefreshToken) Active(now time.Time) bool {
	return !t.Revoked && !t.Expired(now)
}
