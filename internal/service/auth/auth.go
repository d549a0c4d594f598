// Package auth owns the session lifecycle: password verification, token
// issuance, rotation on every refresh, and revocation tracking.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/bookvault/bookvault/internal/apperrors"
	"github.com/bookvault/bookvault/internal/logger"
	"github.com/bookvault/bookvault/internal/models"
	"github.com/bookvault/bookvault/internal/repository"
	"github.com/bookvault/bookvault/internal/result"
	"github.com/bookvault/bookvault/internal/service/auth/tokenmanager"
)

const defaultStoreTimeout = 3 * time.Second

type Config struct {
	// Hasher to use during registration and login
	// Default is Argon2Hasher
	Hasher PasswordHasher

	// Clock source, injectable for tests. Default is time.Now
	Now func() time.Time

	// Upper bound on any single store call so no operation hangs the caller
	// If not set than default is used
	StoreTimeout time.Duration
}

// Input of Register, checked before anything touches the store
type registerInput struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=8"`
}

type AuthService struct {
	tokens  *tokenmanager.TokenManager
	hasher  PasswordHasher
	storage repository.Storage

	validate     *validator.Validate
	logger       logger.Logger
	now          func() time.Time
	storeTimeout time.Duration
}

func NewService(cfg Config, tokens *tokenmanager.TokenManager, storage repository.Storage, log logger.Logger) (*AuthService, error) {
	if tokens == nil || storage == nil {
		return nil, errors.New("token manager and storage must not be nil")
	}

	hasher := cfg.Hasher
	if hasher == nil {
		hasher = DefaultHasher
	}

	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	timeout := cfg.StoreTimeout
	if timeout == 0 {
		timeout = defaultStoreTimeout
	}

	if log == nil {
		log = logger.NewNoOp()
	}

	return &AuthService{
		tokens:       tokens,
		hasher:       hasher,
		storage:      storage,
		validate:     validator.New(),
		logger:       log,
		now:          now,
		storeTimeout: timeout,
	}, nil
}

// NormalizeEmail is how every email enters the system: trimmed and lowercased.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a local-provider user.
func (s *AuthService) Register(ctx context.Context, email string, password string) result.Result[models.User] {
	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	email = NormalizeEmail(email)
	if err := s.validate.Struct(registerInput{Email: email, Password: password}); err != nil {
		return result.Err[models.User](fmt.Errorf("%w: %s", apperrors.ErrInvalidInput, err))
	}

	return result.Then(s.storage.User().Exists(ctx, email), func(taken bool) result.Result[models.User] {
		if taken {
			return result.Err[models.User](apperrors.ErrUserAlreadyExists)
		}

		hash, salt, err := s.hasher.Hash(password)
		if err != nil {
			return result.Err[models.User](fmt.Errorf("can't use this as password, error=%w", err))
		}

		return s.storage.User().Create(ctx, models.NewUser{
			Email:        email,
			PasswordHash: &hash,
			PasswordSalt: &salt,
			Provider:     models.ProviderLocal,
		})
	})
}

// Login verifies credentials and issues a fresh token pair. Every failure
// mode reads the same from outside: wrong password, unknown email and
// external-provider account all come back as ErrInvalidCredentials so the
// response can't be used to enumerate users.
func (s *AuthService) Login(ctx context.Context, email string, password string) result.Result[models.LoginResult] {
	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	userRes := s.storage.User().GetByEmail(ctx, NormalizeEmail(email))
	if userRes.IsErr() {
		if errors.Is(userRes.Err(), apperrors.ErrUserNotFound) {
			return result.Err[models.LoginResult](apperrors.ErrInvalidCredentials)
		}
		return result.Err[models.LoginResult](userRes.Err())
	}

	user := userRes.Value()
	if !user.HasLocalPassword() || !s.hasher.Verify(password, *user.PasswordHash, *user.PasswordSalt) {
		return result.Err[models.LoginResult](apperrors.ErrInvalidCredentials)
	}

	return s.issuePair(ctx, s.storage, user.ID, nil)
}

// Refresh rotates the presented token: the old row is consumed, a linked
// successor is minted. Presenting an already-consumed token is treated as
// theft and burns every active session of the owner.
func (s *AuthService) Refresh(ctx context.Context, presented string) result.Result[models.LoginResult] {
	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	tokenRes := s.storage.Refresh().GetByToken(ctx, presented)
	if tokenRes.IsErr() {
		return result.Err[models.LoginResult](tokenRes.Err())
	}

	token := tokenRes.Value()
	now := s.now()

	if token.Revoked {
		return s.failReused(ctx, token.UserID)
	}
	if token.Expired(now) {
		return result.Err[models.LoginResult](apperrors.ErrTokenExpired)
	}

	var pair result.Result[models.LoginResult]
	err := s.storage.InTx(ctx, func(st repository.Storage) error {
		// Consume the presented token. A failed conditional write means a
		// concurrent refresh got there first: same as replay.
		revoked := st.Refresh().RevokeIfActive(ctx, token.ID, models.RevokedRotated, now)
		if revoked.IsErr() {
			return revoked.Err()
		}
		if !revoked.Value() {
			return apperrors.ErrReuseDetected
		}

		pair = s.issuePair(ctx, st, token.UserID, &token.Token)
		if pair.IsErr() {
			return pair.Err()
		}

		// Forward-link the consumed row to its successor
		reason := models.RevokedRotated
		replacedBy := pair.Value().RefreshToken
		token.Revoked = true
		token.RevokedAt = &now
		token.RevokedReason = &reason
		token.ReplacedByToken = &replacedBy

		return st.Refresh().Update(ctx, token).Err()
	})

	switch {
	case err == nil:
		return pair
	case errors.Is(err, apperrors.ErrReuseDetected):
		return s.failReused(ctx, token.UserID)
	default:
		return result.Err[models.LoginResult](err)
	}
}

// Logout revokes the presented token. Revoking an already-revoked token is
// fine: the caller's goal (token unusable) is met either way.
func (s *AuthService) Logout(ctx context.Context, presented string) result.Result[bool] {
	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	tokenRes := s.storage.Refresh().GetByToken(ctx, presented)
	if tokenRes.IsErr() {
		return result.Err[bool](tokenRes.Err())
	}

	token := tokenRes.Value()
	if token.Revoked {
		return result.Ok(true)
	}

	if res := s.storage.Refresh().RevokeIfActive(ctx, token.ID, models.RevokedLogout, s.now()); res.IsErr() {
		return result.Err[bool](res.Err())
	}

	return result.Ok(true)
}

// RevokeAllForUser is the bulk path behind account deletion and
// "log out everywhere".
func (s *AuthService) RevokeAllForUser(ctx context.Context, userID uuid.UUID) result.Result[bool] {
	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	return s.revokeAllActive(ctx, userID, models.RevokedLogout)
}

// PurgeExpired sweeps dead token rows. Maintenance only, never on the
// request path.
func (s *AuthService) PurgeExpired(ctx context.Context) result.Result[bool] {
	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	return s.storage.Refresh().DeleteExpired(ctx, s.now())
}

// ParseAccess validates an access token and returns the user it names.
// Used by request-authorization middleware; no store lookup involved.
func (s *AuthService) ParseAccess(access string) (uuid.UUID, error) {
	return s.tokens.ParseAccess(access)
}

// issuePair mints an access token and a persisted refresh token for the user.
// createdBy carries the consumed token value during rotation, nil at login.
func (s *AuthService) issuePair(ctx context.Context, st repository.Storage, userID uuid.UUID, createdBy *string) result.Result[models.LoginResult] {
	now := s.now().Truncate(time.Second)

	access, accessExpiresAt, err := s.tokens.NewAccessToken(userID, now)
	if err != nil {
		return result.Err[models.LoginResult](err)
	}

	refresh, err := s.tokens.NewRefreshValue()
	if err != nil {
		return result.Err[models.LoginResult](err)
	}

	row := models.RefreshToken{
		ID:             uuid.New(),
		UserID:         userID,
		Token:          refresh,
		CreatedAt:      now,
		ExpiresAt:      now.Add(s.tokens.RefreshTTL()),
		CreatedByToken: createdBy,
	}
	if saved := st.Refresh().Save(ctx, row); saved.IsErr() {
		return result.Err[models.LoginResult](saved.Err())
	}

	return result.Ok(models.LoginResult{
		UserID:                userID,
		AccessToken:           access,
		RefreshToken:          refresh,
		AccessTokenExpiresAt:  accessExpiresAt,
		RefreshTokenExpiresAt: row.ExpiresAt,
	})
}

// failReused handles the security event: someone presented a consumed token.
// Either the value leaked or two clients share it; both mean the whole
// session family can't be trusted anymore.
func (s *AuthService) failReused(ctx context.Context, userID uuid.UUID) result.Result[models.LoginResult] {
	s.logger.Warn("refresh token reuse detected, revoking all sessions", "user_id", userID)

	if res := s.revokeAllActive(ctx, userID, models.RevokedReuseDetected); res.IsErr() {
		return result.Err[models.LoginResult](res.Err())
	}

	return result.Err[models.LoginResult](apperrors.ErrReuseDetected)
}

func (s *AuthService) revokeAllActive(ctx context.Context, userID uuid.UUID, reason models.RevokeReason) result.Result[bool] {
	now := s.now()

	tokens := s.storage.Refresh().ListByUser(ctx, userID)
	if tokens.IsErr() {
		return result.Err[bool](tokens.Err())
	}

	for _, t := range tokens.Value() {
		if t.Revoked {
			continue
		}
		if res := s.storage.Refresh().RevokeIfActive(ctx, t.ID, reason, now); res.IsErr() {
			return result.Err[bool](res.Err())
		}
	}

	return result.Ok(true)
}
