package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/bookvault/bookvault/internal/apperrors"
	"github.com/bookvault/bookvault/internal/models"
	"github.com/bookvault/bookvault/internal/result"
)

type RefreshTokenRepo struct {
	DB DBTX
}

const tokenColumns = `id, user_id, token, created_at, expires_at, is_revoked, revoked_at, revoked_reason, created_by_token, replaced_by_token`

const saveToken = `-- name: SaveRefreshToken
INSERT INTO refresh_tokens (id, user_id, token, created_at, expires_at, is_revoked, revoked_at, revoked_reason, created_by_token, replaced_by_token)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
RETURNING ` + tokenColumns

func (r *RefreshTokenRepo) Save(ctx context.Context, token models.RefreshToken) result.Result[models.RefreshToken] {
	rows, _ := r.DB.Query(ctx, saveToken,
		token.ID, token.UserID, token.Token, token.CreatedAt, token.ExpiresAt,
		token.Revoked, token.RevokedAt, token.RevokedReason, token.CreatedByToken, token.ReplacedByToken,
	)
	saved, err := pgx.CollectOneRow(rows, rowToRefreshToken)
	if err != nil {
		return result.Err[models.RefreshToken](fmt.Errorf("db error: %w", err))
	}
	return result.Ok(saved)
}

const getToken = `-- name: GetRefreshToken
SELECT ` + tokenColumns + `
FROM refresh_tokens
WHERE token = $1
`

// GetByToken matches the value exactly and case-sensitively. Returns the row
// even if it is revoked or expired: the caller needs dead rows to detect reuse.
func (r *RefreshTokenRepo) GetByToken(ctx context.Context, tokenString string) result.Result[models.RefreshToken] {
	rows, _ := r.DB.Query(ctx, getToken, tokenString)
	token, err := pgx.CollectOneRow(rows, rowToRefreshToken)

	switch {
	case err == nil:
		return result.Ok(token)
	case errors.Is(err, pgx.ErrNoRows):
		return result.Err[models.RefreshToken](apperrors.ErrTokenNotFound)
	default:
		return result.Err[models.RefreshToken](fmt.Errorf("db error: %w", err))
	}
}

const updateToken = `-- name: UpdateRefreshToken
UPDATE refresh_tokens
SET user_id = $2, token = $3, created_at = $4, expires_at = $5, is_revoked = $6,
    revoked_at = $7, revoked_reason = $8, created_by_token = $9, replaced_by_token = $10
WHERE id = $1
`

// Update replaces the whole record keyed by id.
func (r *RefreshTokenRepo) Update(ctx context.Context, token models.RefreshToken) result.Result[bool] {
	tag, err := r.DB.Exec(ctx, updateToken,
		token.ID, token.UserID, token.Token, token.CreatedAt, token.ExpiresAt,
		token.Revoked, token.RevokedAt, token.RevokedReason, token.CreatedByToken, token.ReplacedByToken,
	)
	if err != nil {
		return result.Err[bool](fmt.Errorf("db error: %w", err))
	}
	return result.Ok(tag.RowsAffected() > 0)
}

const revokeTokenIfActive = `-- name: RevokeRefreshTokenIfActive
UPDATE refresh_tokens
SET is_revoked = true, revoked_at = $2, revoked_reason = $3
WHERE id = $1 AND is_revoked = false
`

// RevokeIfActive is the optimistic check token rotation depends on: of two
// concurrent refreshes presenting the same token exactly one sees Ok(true).
func (r *RefreshTokenRepo) RevokeIfActive(ctx context.Context, id uuid.UUID, reason models.RevokeReason, at time.Time) result.Result[bool] {
	tag, err := r.DB.Exec(ctx, revokeTokenIfActive, id, at, reason)
	if err != nil {
		return result.Err[bool](fmt.Errorf("db error: %w", err))
	}
	return result.Ok(tag.RowsAffected() > 0)
}

const listTokensByUser = `-- name: ListRefreshTokensByUser
SELECT ` + tokenColumns + `
FROM refresh_tokens
WHERE user_id = $1
`

func (r *RefreshTokenRepo) ListByUser(ctx context.Context, userID uuid.UUID) result.Result[[]models.RefreshToken] {
	rows, _ := r.DB.Query(ctx, listTokensByUser, userID)
	tokens, err := pgx.CollectRows(rows, rowToRefreshToken)
	if err != nil {
		return result.Err[[]models.RefreshToken](fmt.Errorf("db error: %w", err))
	}
	return result.Ok(tokens)
}

const deleteExpiredTokens = `-- name: DeleteExpiredRefreshTokens
DELETE FROM refresh_tokens
WHERE expires_at < $1
`

// DeleteExpired purges dead rows. An active chain tip is unexpired by
// definition, so it is never removed.
func (r *RefreshTokenRepo) DeleteExpired(ctx context.Context, olderThan time.Time) result.Result[bool] {
	tag, err := r.DB.Exec(ctx, deleteExpiredTokens, olderThan)
	if err != nil {
		return result.Err[bool](fmt.Errorf("db error: %w", err))
	}
	return result.Ok(tag.RowsAffected() > 0)
}

func rowToRefreshToken(row pgx.CollectableRow) (models.RefreshToken, error) {
	var t models.RefreshToken
	err := row.Scan(
		&t.ID, &t.UserID, &t.Token, &t.CreatedAt, &t.ExpiresAt,
		&t.Revoked, &t.RevokedAt, &t.RevokedReason, &t.CreatedByToken, &t.ReplacedByToken,
	)
	return t, err
}
