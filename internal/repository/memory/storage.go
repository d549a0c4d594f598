// Package memory implements the repository interfaces over plain maps.
// It keeps the same constraints the postgres schema enforces (unique email,
// unique token value), which makes it a drop-in stand-in for service tests.
package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/bookvault/bookvault/internal/models"
	"github.com/bookvault/bookvault/internal/repository"
)

type Storage struct {
	mu sync.RWMutex

	users    map[uuid.UUID]models.User
	emails   map[string]uuid.UUID // lower(email) -> user id
	tokens   map[string]models.RefreshToken
	tokenIDs map[uuid.UUID]string // token id -> token value
}

func NewStorage() *Storage {
	return &Storage{
		users:    map[uuid.UUID]models.User{},
		emails:   map[string]uuid.UUID{},
		tokens:   map[string]models.RefreshToken{},
		tokenIDs: map[uuid.UUID]string{},
	}
}

func (s *Storage) User() repository.UserRepo {
	return &UserRepo{s: s}
}

func (s *Storage) Refresh() repository.RefreshTokenRepo {
	return &RefreshTokenRepo{s: s}
}

// InTx just runs fn against the same storage. Per-operation locking gives
// enough atomicity for tests; rollback is not emulated.
func (s *Storage) InTx(ctx context.Context, fn func(repository.Storage) error) error {
	return fn(s)
}
