package models

import (
	"time"

	"github.com/google/uuid"
)

// LoginResult is returned to the caller on login and on every successful
// refresh. Never persisted: the access token is stateless and the refresh
// token is stored separately as a RefreshToken row.
type LoginResult struct {
	UserID                uuid.UUID
	AccessToken           string
	RefreshToken          string
	AccessTokenExpiresAt  time.Time
	RefreshTokenExpiresAt time.Time
}
