package tokenmanager

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_TokenManager(t *testing.T) {
	t.Parallel()

	t.Run("new defaults", func(t *testing.T) {
		m, err := New(Config{SecretKey: "secret"})
		require.NoError(t, err, "token manager should be created without errors")

		require.Equal(t, "secret", m.key, "secret key should be set")
		require.Equal(t, defaultAccessTokenTTL, m.accessTTL, "default access token TTL should be set")
		require.Equal(t, defaultRefreshTokenTTL, m.refreshTTL, "default refresh token TTL")
		require.Equal(t, defaultSigningMethod, m.alg.Alg(), "default signing method should be set")
	})

	t.Run("new without secret fails", func(t *testing.T) {
		_, err := New(Config{})
		require.Error(t, err)
	})

	t.Run("access token", func(t *testing.T) {
		m, err := New(Config{SecretKey: "test-secret-key", AccessTTL: 15 * time.Minute})
		require.NoError(t, err)

		userID := uuid.New()
		now := time.Now().Truncate(time.Second)

		t.Run("mint and parse round-trip", func(t *testing.T) {
			access, expiresAt, err := m.NewAccessToken(userID, now)

			require.NoError(t, err)
			require.NotEmpty(t, access)
			assert.Equal(t, now.Add(15*time.Minute), expiresAt)

			parsed, err := m.ParseAccess(access)
			require.NoError(t, err)
			require.Equal(t, userID, parsed)
		})

		t.Run("claims carry user id and expiry", func(t *testing.T) {
			access, _, err := m.NewAccessToken(userID, now)
			require.NoError(t, err)

			claims := &AccessTokenClaims{}
			_, err = jwt.ParseWithClaims(access, claims, func(token *jwt.Token) (any, error) {
				return []byte("test-secret-key"), nil
			})

			require.NoError(t, err)
			assert.Equal(t, userID, claims.UserID)
			assert.NotEmpty(t, claims.ID, "jti should be set")
			assert.Equal(t, now.Add(15*time.Minute).Unix(), claims.ExpiresAt.Unix())
		})

		t.Run("parse with wrong key fails", func(t *testing.T) {
			access, _, err := m.NewAccessToken(userID, now)
			require.NoError(t, err)

			other, err := New(Config{SecretKey: "other-key"})
			require.NoError(t, err)

			_, err = other.ParseAccess(access)
			require.Error(t, err, "token signed with another key must not verify")
		})

		t.Run("expired token fails to parse", func(t *testing.T) {
			access, _, err := m.NewAccessToken(userID, now.Add(-time.Hour))
			require.NoError(t, err)

			_, err = m.ParseAccess(access)
			require.Error(t, err)
		})
	})

	t.Run("refresh value", func(t *testing.T) {
		m, err := New(Config{SecretKey: "test-secret-key"})
		require.NoError(t, err)

		t.Run("length", func(t *testing.T) {
			value, err := m.NewRefreshValue()

			require.NoError(t, err)
			require.Len(t, value, refreshTokenBytesLen*2, "hex doubles the byte length")
		})

		t.Run("values never repeat", func(t *testing.T) {
			seen := map[string]bool{}
			for range 32 {
				value, err := m.NewRefreshValue()
				require.NoError(t, err)
				require.False(t, seen[value])
				seen[value] = true
			}
		})
	})
}
