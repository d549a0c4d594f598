package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/bookvault/bookvault/internal/apperrors"
	"github.com/bookvault/bookvault/internal/models"
	"github.com/bookvault/bookvault/internal/result"
)

type RefreshTokenRepo struct {
	s *Storage
}

func (r *RefreshTokenRepo) Save(ctx context.Context, token models.RefreshToken) result.Result[models.RefreshToken] {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, taken := r.s.tokens[token.Token]; taken {
		return result.Err[models.RefreshToken](fmt.Errorf("db error: token value already exists"))
	}

	r.s.tokens[token.Token] = token
	r.s.tokenIDs[token.ID] = token.Token

	return result.Ok(token)
}

func (r *RefreshTokenRepo) GetByToken(ctx context.Context, tokenString string) result.Result[models.RefreshToken] {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	token, ok := r.s.tokens[tokenString]
	if !ok {
		return result.Err[models.RefreshToken](apperrors.ErrTokenNotFound)
	}
	return result.Ok(token)
}

func (r *RefreshTokenRepo) Update(ctx context.Context, token models.RefreshToken) result.Result[bool] {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	value, ok := r.s.tokenIDs[token.ID]
	if !ok {
		return result.Ok(false)
	}

	// Token value never changes after mint, but a full replace must cope anyway
	if value != token.Token {
		delete(r.s.tokens, value)
		r.s.tokenIDs[token.ID] = token.Token
	}
	r.s.tokens[token.Token] = token

	return result.Ok(true)
}

func (r *RefreshTokenRepo) RevokeIfActive(ctx context.Context, id uuid.UUID, reason models.RevokeReason, at time.Time) result.Result[bool] {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	value, ok := r.s.tokenIDs[id]
	if !ok {
		return result.Ok(false)
	}

	token := r.s.tokens[value]
	if token.Revoked {
		return result.Ok(false)
	}

	token.Revoked = true
	token.RevokedAt = &at
	token.RevokedReason = &reason
	r.s.tokens[value] = token

	return result.Ok(true)
}

func (r *RefreshTokenRepo) ListByUser(ctx context.Context, userID uuid.UUID) result.Result[[]models.RefreshToken] {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	tokens := []models.RefreshToken{}
	for _, token := range r.s.tokens {
		if token.UserID == userID {
			tokens = append(tokens, token)
		}
	}
	return result.Ok(tokens)
}

func (r *RefreshTokenRepo) DeleteExpired(ctx context.Context, olderThan time.Time) result.Result[bool] {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	deleted := false
	for value, token := range r.s.tokens {
		if token.ExpiresAt.Before(olderThan) {
			delete(r.s.tokens, value)
			delete(r.s.tokenIDs, token.ID)
			deleted = true
		}
	}
	return result.Ok(deleted)
}
