package memory

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/bookvault/bookvault/internal/apperrors"
	"github.com/bookvault/bookvault/internal/models"
)

// The memory storage must behave like the postgres schema where the auth
// service can tell the difference: unique constraints, conditional revoke,
// cascade on user delete.
func Test_MemoryStorage(t *testing.T) {
	t.Parallel()

	hash, salt := "stored-hash", "stored-salt"
	newUser := func(email string) models.NewUser {
		return models.NewUser{Email: email, PasswordHash: &hash, PasswordSalt: &salt, Provider: models.ProviderLocal}
	}
	newToken := func(userID uuid.UUID, value string) models.RefreshToken {
		return models.RefreshToken{
			ID:        uuid.New(),
			UserID:    userID,
			Token:     value,
			CreatedAt: time.Now(),
			ExpiresAt: time.Now().Add(time.Hour),
		}
	}

	t.Run("email unique case-insensitively", func(t *testing.T) {
		s := NewStorage()

		require.True(t, s.User().Create(t.Context(), newUser("user@example.com")).IsOk())

		res := s.User().Create(t.Context(), newUser("USER@example.com"))
		require.ErrorIs(t, res.Err(), apperrors.ErrUserAlreadyExists)

		require.True(t, s.User().GetByEmail(t.Context(), "UsEr@example.com").IsOk())
	})

	t.Run("token value unique", func(t *testing.T) {
		s := NewStorage()
		user := s.User().Create(t.Context(), newUser("user@example.com")).Value()

		require.True(t, s.Refresh().Save(t.Context(), newToken(user.ID, "value")).IsOk())
		require.True(t, s.Refresh().Save(t.Context(), newToken(user.ID, "value")).IsErr())
	})

	t.Run("conditional revoke wins once", func(t *testing.T) {
		s := NewStorage()
		user := s.User().Create(t.Context(), newUser("user@example.com")).Value()
		token := newToken(user.ID, "value")
		require.True(t, s.Refresh().Save(t.Context(), token).IsOk())

		now := time.Now()
		require.True(t, s.Refresh().RevokeIfActive(t.Context(), token.ID, models.RevokedRotated, now).Value())
		require.False(t, s.Refresh().RevokeIfActive(t.Context(), token.ID, models.RevokedRotated, now).Value())

		got := s.Refresh().GetByToken(t.Context(), "value").Value()
		require.True(t, got.Revoked)
		require.Equal(t, models.RevokedRotated, *got.RevokedReason)
	})

	t.Run("deleting a user removes their tokens", func(t *testing.T) {
		s := NewStorage()
		user := s.User().Create(t.Context(), newUser("user@example.com")).Value()
		require.True(t, s.Refresh().Save(t.Context(), newToken(user.ID, "value")).IsOk())

		require.True(t, s.User().Delete(t.Context(), user.ID).Value())

		require.ErrorIs(t, s.Refresh().GetByToken(t.Context(), "value").Err(), apperrors.ErrTokenNotFound)
		require.Empty(t, s.Refresh().ListByUser(t.Context(), user.ID).Value())
	})

	t.Run("delete expired", func(t *testing.T) {
		s := NewStorage()
		user := s.User().Create(t.Context(), newUser("user@example.com")).Value()

		expired := newToken(user.ID, "expired")
		expired.ExpiresAt = time.Now().Add(-time.Minute)
		require.True(t, s.Refresh().Save(t.Context(), expired).IsOk())
		require.True(t, s.Refresh().Save(t.Context(), newToken(user.ID, "live")).IsOk())

		require.True(t, s.Refresh().DeleteExpired(t.Context(), time.Now()).Value())

		require.True(t, s.Refresh().GetByToken(t.Context(), "expired").IsErr())
		require.True(t, s.Refresh().GetByToken(t.Context(), "live").IsOk())
	})
}
