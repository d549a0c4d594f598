package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/bookvault/bookvault/internal/models"
	"github.com/bookvault/bookvault/internal/result"
)

// User repository interface
type UserRepo interface {
	// Get user by id
	// Fails with apperrors.ErrUserNotFound if absent
	GetByID(ctx context.Context, id uuid.UUID) result.Result[models.User]

	// Get user by email, matched case-insensitively
	// Fails with apperrors.ErrUserNotFound if absent
	GetByEmail(ctx context.Context, email string) result.Result[models.User]

	// Report whether a user with the email exists
	// Never fails with not-found, only infra faults propagate
	Exists(ctx context.Context, email string) result.Result[bool]

	// Create user
	// The unique-email constraint is enforced by the store itself, not in
	// application logic, so two concurrent registrations can't both win.
	// Fails with apperrors.ErrUserAlreadyExists on violation.
	Create(ctx context.Context, user models.NewUser) result.Result[models.User]

	// Delete user by id
	// Idempotent: deleting an absent user returns Ok(false), not an error
	Delete(ctx context.Context, id uuid.UUID) result.Result[bool]
}

// RefreshToken repository interface
type RefreshTokenRepo interface {
	// Persist a new token row
	// Token values are unique across all time; the store enforces it.
	Save(ctx context.Context, token models.RefreshToken) result.Result[models.RefreshToken]

	// Get token by its value, exact case-sensitive match
	// Fails with apperrors.ErrTokenNotFound if absent
	GetByToken(ctx context.Context, tokenString string) result.Result[models.RefreshToken]

	// Full-record replace keyed by id
	// Ok(false) when no row with that id exists
	Update(ctx context.Context, token models.RefreshToken) result.Result[bool]

	// Set revocation fields only if the row is still unrevoked.
	// Ok(false) means someone else revoked it first: the caller lost the
	// race and must treat the token as reused.
	RevokeIfActive(ctx context.Context, id uuid.UUID, reason models.RevokeReason, at time.Time) result.Result[bool]

	// All tokens owned by the user, any order
	ListByUser(ctx context.Context, userID uuid.UUID) result.Result[[]models.RefreshToken]

	// Purge rows whose expiry has passed. Safe to run concurrently with
	// everything else: an unexpired active token is never touched.
	DeleteExpired(ctx context.Context, olderThan time.Time) result.Result[bool]
}

// Storage bundles the repositories over a single backend and lets several
// writes run in one transaction.
type Storage interface {
	User() UserRepo
	Refresh() RefreshTokenRepo

	// InTx runs fn against a transactional view of the same storage.
	// Returning an error rolls everything back.
	InTx(ctx context.Context, fn func(Storage) error) error
}
