package memory

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/bookvault/bookvault/internal/apperrors"
	"github.com/bookvault/bookvault/internal/models"
	"github.com/bookvault/bookvault/internal/result"
)

type UserRepo struct {
	s *Storage
}

func (r *UserRepo) Create(ctx context.Context, user models.NewUser) result.Result[models.User] {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	key := strings.ToLower(user.Email)
	if _, taken := r.s.emails[key]; taken {
		return result.Err[models.User](apperrors.ErrUserAlreadyExists)
	}

	created := models.User{
		ID:           uuid.New(),
		CreatedAt:    time.Now(),
		Email:        user.Email,
		PasswordHash: user.PasswordHash,
		PasswordSalt: user.PasswordSalt,
		Provider:     user.Provider,
		ExternalID:   user.ExternalID,
	}
	r.s.users[created.ID] = created
	r.s.emails[key] = created.ID

	return result.Ok(created)
}

func (r *UserRepo) GetByID(ctx context.Context, id uuid.UUID) result.Result[models.User] {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	user, ok := r.s.users[id]
	if !ok {
		return result.Err[models.User](apperrors.ErrUserNotFound)
	}
	return result.Ok(user)
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) result.Result[models.User] {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	id, ok := r.s.emails[strings.ToLower(email)]
	if !ok {
		return result.Err[models.User](apperrors.ErrUserNotFound)
	}
	return result.Ok(r.s.users[id])
}

func (r *UserRepo) Exists(ctx context.Context, email string) result.Result[bool] {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	_, ok := r.s.emails[strings.ToLower(email)]
	return result.Ok(ok)
}

func (r *UserRepo) Delete(ctx context.Context, id uuid.UUID) result.Result[bool] {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	user, ok := r.s.users[id]
	if !ok {
		return result.Ok(false)
	}

	delete(r.s.users, id)
	delete(r.s.emails, strings.ToLower(user.Email))

	// Emulate the FK cascade from users to refresh_tokens
	for value, token := range r.s.tokens {
		if token.UserID == id {
			delete(r.s.tokens, value)
			delete(r.s.tokenIDs, token.ID)
		}
	}

	return result.Ok(true)
}
