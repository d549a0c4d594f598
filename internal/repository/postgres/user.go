package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/bookvault/bookvault/internal/apperrors"
	"github.com/bookvault/bookvault/internal/models"
	"github.com/bookvault/bookvault/internal/result"
)

type UserRepo struct {
	DB DBTX
}

const createUser = `-- name: CreateUser
INSERT INTO users (id, email, password_hash, password_salt, provider, external_id)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id, created_at, email, password_hash, password_salt, provider, external_id
`

func (r *UserRepo) Create(ctx context.Context, user models.NewUser) result.Result[models.User] {
	rows, _ := r.DB.Query(ctx, createUser, uuid.New(), user.Email, user.PasswordHash, user.PasswordSalt, user.Provider, user.ExternalID)
	created, err := pgx.CollectOneRow(rows, rowToUser)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return result.Err[models.User](apperrors.ErrUserAlreadyExists)
		}
		return result.Err[models.User](fmt.Errorf("db error: %w", err))
	}

	return result.Ok(created)
}

const getUserByID = `-- name: GetUserByID
SELECT id, created_at, email, password_hash, password_salt, provider, external_id
FROM users
WHERE id = $1
`

func (r *UserRepo) GetByID(ctx context.Context, id uuid.UUID) result.Result[models.User] {
	rows, _ := r.DB.Query(ctx, getUserByID, id)
	return collectUser(rows)
}

const getUserByEmail = `-- name: GetUserByEmail
SELECT id, created_at, email, password_hash, password_salt, provider, external_id
FROM users
WHERE lower(email) = lower($1)
`

func (r *UserRepo) GetByEmail(ctx context.Context, email string) result.Result[models.User] {
	rows, _ := r.DB.Query(ctx, getUserByEmail, email)
	return collectUser(rows)
}

const userExists = `-- name: UserExists
SELECT EXISTS (SELECT 1 FROM users WHERE lower(email) = lower($1))
`

func (r *UserRepo) Exists(ctx context.Context, email string) result.Result[bool] {
	rows, _ := r.DB.Query(ctx, userExists, email)
	exists, err := pgx.CollectOneRow(rows, pgx.RowTo[bool])
	if err != nil {
		return result.Err[bool](fmt.Errorf("db error: %w", err))
	}
	return result.Ok(exists)
}

const deleteUser = `-- name: DeleteUser
DELETE FROM users
WHERE id = $1
`

// Delete removes the user; refresh tokens go with it via FK cascade.
// Deleting an absent user is not an error.
func (r *UserRepo) Delete(ctx context.Context, id uuid.UUID) result.Result[bool] {
	tag, err := r.DB.Exec(ctx, deleteUser, id)
	if err != nil {
		return result.Err[bool](fmt.Errorf("db error: %w", err))
	}
	return result.Ok(tag.RowsAffected() > 0)
}

func collectUser(rows pgx.Rows) result.Result[models.User] {
	user, err := pgx.CollectOneRow(rows, rowToUser)

	switch {
	case err == nil:
		return result.Ok(user)
	case errors.Is(err, pgx.ErrNoRows):
		return result.Err[models.User](apperrors.ErrUserNotFound)
	default:
		return result.Err[models.User](fmt.Errorf("db error: %w", err))
	}
}

func rowToUser(row pgx.CollectableRow) (models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.CreatedAt, &u.Email, &u.PasswordHash, &u.PasswordSalt, &u.Provider, &u.ExternalID)
	return u, err
}
