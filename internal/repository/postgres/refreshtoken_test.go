package postgres

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookvault/bookvault/internal/apperrors"
	"github.com/bookvault/bookvault/internal/models"
	"github.com/bookvault/bookvault/internal/testutil"
)

func mustParseTime(value string) time.Time {
	dt, err := time.Parse("2006-01-02 15:04:05Z07:00", value)
	if err != nil {
		panic(err)
	}
	return dt
}

func testToken(userID uuid.UUID, value string) models.RefreshToken {
	return models.RefreshToken{
		ID:        uuid.New(),
		UserID:    userID,
		Token:     value,
		CreatedAt: mustParseTime("2024-01-01 19:00:01Z"),
		ExpiresAt: mustParseTime("2200-01-01 03:00:02Z"),
	}
}

func Test_RefreshTokenRepo(t *testing.T) {
	t.Parallel() // It's ok to run in parallel with other tests, but not with subtests

	pg := testutil.StartPostgresContainer(t)
	t.Cleanup(pg.Terminate)

	// Tokens reference users, so every subtest needs an owner row first
	createUser := func(t *testing.T, tx pgx.Tx) models.User {
		t.Helper()
		res := (&UserRepo{DB: tx}).Create(t.Context(), newLocalUser("owner@example.com"))
		require.True(t, res.IsOk(), "user should be created without errors")
		return res.Value()
	}

	t.Run("save token ok", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			repo := RefreshTokenRepo{DB: tx}
			user := createUser(t, tx)
			token := testToken(user.ID, "secret-token")

			res := repo.Save(t.Context(), token)

			require.True(t, res.IsOk())
			got := res.Value()
			require.Equal(t, token.ID, got.ID)
			require.Equal(t, token.UserID, got.UserID)
			require.Equal(t, token.Token, got.Token)
			require.WithinDuration(t, token.CreatedAt, got.CreatedAt, time.Microsecond)
			require.WithinDuration(t, token.ExpiresAt, got.ExpiresAt, time.Microsecond)
			require.False(t, got.Revoked)
			require.Nil(t, got.RevokedAt)
			require.Nil(t, got.RevokedReason)
			require.Nil(t, got.CreatedByToken)
			require.Nil(t, got.ReplacedByToken)
		})
	})

	t.Run("token values are unique forever", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			repo := RefreshTokenRepo{DB: tx}
			user := createUser(t, tx)

			first := testToken(user.ID, "same-value")
			require.True(t, repo.Save(t.Context(), first).IsOk())

			// Even a revoked row keeps its value reserved
			require.True(t, repo.RevokeIfActive(t.Context(), first.ID, models.RevokedLogout, time.Now()).Value())

			res := repo.Save(t.Context(), testToken(user.ID, "same-value"))
			require.True(t, res.IsErr(), "duplicate token value must be rejected by the unique index")
		})
	})

	t.Run("get token exact match", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			repo := RefreshTokenRepo{DB: tx}
			user := createUser(t, tx)
			require.True(t, repo.Save(t.Context(), testToken(user.ID, "Secret-Token")).IsOk())

			got := repo.GetByToken(t.Context(), "Secret-Token")
			require.True(t, got.IsOk())

			otherCase := repo.GetByToken(t.Context(), "secret-token")
			require.ErrorIs(t, otherCase.Err(), apperrors.ErrTokenNotFound, "token match must be case-sensitive")
		})
	})

	t.Run("get missing token", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			repo := RefreshTokenRepo{DB: tx}

			res := repo.GetByToken(t.Context(), "never-issued")

			require.ErrorIs(t, res.Err(), apperrors.ErrTokenNotFound)
		})
	})

	t.Run("revoke if active", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			repo := RefreshTokenRepo{DB: tx}
			user := createUser(t, tx)
			token := testToken(user.ID, "secret-token")
			require.True(t, repo.Save(t.Context(), token).IsOk())

			now := time.Now().Truncate(time.Microsecond)
			first := repo.RevokeIfActive(t.Context(), token.ID, models.RevokedRotated, now)
			require.True(t, first.IsOk())
			require.True(t, first.Value(), "first conditional revoke should win")

			second := repo.RevokeIfActive(t.Context(), token.ID, models.RevokedRotated, now.Add(time.Second))
			require.True(t, second.IsOk())
			require.False(t, second.Value(), "second conditional revoke must report a lost race")

			got := repo.GetByToken(t.Context(), token.Token).Value()
			require.True(t, got.Revoked)
			require.NotNil(t, got.RevokedAt)
			assert.WithinDuration(t, now, *got.RevokedAt, time.Microsecond, "revoked_at must keep the first writer's time")
			require.NotNil(t, got.RevokedReason)
			require.Equal(t, models.RevokedRotated, *got.RevokedReason)
		})
	})

	t.Run("update replaces the whole row", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			repo := RefreshTokenRepo{DB: tx}
			user := createUser(t, tx)
			token := testToken(user.ID, "secret-token")
			require.True(t, repo.Save(t.Context(), token).IsOk())

			now := mustParseTime("2024-06-01 12:00:00Z")
			reason := models.RevokedRotated
			replacedBy := "successor-token"
			token.Revoked = true
			token.RevokedAt = &now
			token.RevokedReason = &reason
			token.ReplacedByToken = &replacedBy

			res := repo.Update(t.Context(), token)
			require.True(t, res.IsOk())
			require.True(t, res.Value())

			got := repo.GetByToken(t.Context(), token.Token).Value()
			require.True(t, got.Revoked)
			require.Equal(t, replacedBy, *got.ReplacedByToken)
			require.WithinDuration(t, now, *got.RevokedAt, time.Microsecond)
		})
	})

	t.Run("update of absent row", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			repo := RefreshTokenRepo{DB: tx}
			user := createUser(t, tx)

			res := repo.Update(t.Context(), testToken(user.ID, "ghost"))

			require.True(t, res.IsOk())
			require.False(t, res.Value())
		})
	})

	t.Run("list by user", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			repo := RefreshTokenRepo{DB: tx}
			user := createUser(t, tx)

			require.True(t, repo.Save(t.Context(), testToken(user.ID, "token-one")).IsOk())
			require.True(t, repo.Save(t.Context(), testToken(user.ID, "token-two")).IsOk())

			res := repo.ListByUser(t.Context(), user.ID)

			require.True(t, res.IsOk())
			require.Len(t, res.Value(), 2)

			empty := repo.ListByUser(t.Context(), uuid.New())
			require.True(t, empty.IsOk())
			require.Empty(t, empty.Value())
		})
	})

	t.Run("delete expired keeps live tokens", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			repo := RefreshTokenRepo{DB: tx}
			user := createUser(t, tx)

			expired := testToken(user.ID, "expired-token")
			expired.ExpiresAt = mustParseTime("2024-01-02 19:00:01Z")
			require.True(t, repo.Save(t.Context(), expired).IsOk())
			require.True(t, repo.Save(t.Context(), testToken(user.ID, "live-token")).IsOk())

			res := repo.DeleteExpired(t.Context(), time.Now())

			require.True(t, res.IsOk())
			require.True(t, res.Value(), "something should have been purged")

			require.ErrorIs(t, repo.GetByToken(t.Context(), "expired-token").Err(), apperrors.ErrTokenNotFound)
			require.True(t, repo.GetByToken(t.Context(), "live-token").IsOk(), "unexpired token must survive the sweep")
		})
	})
}
