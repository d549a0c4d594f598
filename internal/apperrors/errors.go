package apperrors

import (
	"errors"
)

var (
	ErrUserAlreadyExists  = errors.New("user already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidInput       = errors.New("invalid input")

	ErrTokenNotFound = errors.New("refresh token not found")
	ErrTokenExpired  = errors.New("refresh token is expired")
	ErrReuseDetected = errors.New("refresh token reuse detected")

	ErrStorageUnavailable = errors.New("storage unavailable")
)

// Failure codes exposed to callers (the HTTP layer maps them to statuses).
// The set is closed: anything not recognized is reported as an infra fault.
const (
	CodeUserAlreadyExists  = "UserAlreadyExists"
	CodeUserNotFound       = "UserNotFound"
	CodeInvalidCredentials = "InvalidCredentials"
	CodeInvalidInput       = "InvalidInput"
	CodeTokenNotFound      = "TokenNotFound"
	CodeTokenExpired       = "TokenExpired"
	CodeReuseDetected      = "ReuseDetected"
	CodeStorageUnavailable = "StorageUnavailable"
)

// Code maps err (possibly wrapped) onto the closed failure-code set.
func Code(err error) string {
	switch {
	case errors.Is(err, ErrUserAlreadyExists):
		return CodeUserAlreadyExists
	case errors.Is(err, ErrUserNotFound):
		return CodeUserNotFound
	case errors.Is(err, ErrInvalidCredentials):
		return CodeInvalidCredentials
	case errors.Is(err, ErrInvalidInput):
		return CodeInvalidInput
	case errors.Is(err, ErrTokenNotFound):
		return CodeTokenNotFound
	case errors.Is(err, ErrTokenExpired):
		return CodeTokenExpired
	case errors.Is(err, ErrReuseDetected):
		return CodeReuseDetected
	default:
		return CodeStorageUnavailable
	}
}
