package main

import (
	"context"
	"fmt"
	"time"

	"github.com/bookvault/bookvault/internal/db"
	"github.com/bookvault/bookvault/internal/logger"
	"github.com/bookvault/bookvault/internal/repository/postgres"
	"github.com/bookvault/bookvault/internal/service/auth"
	"github.com/bookvault/bookvault/internal/service/auth/tokenmanager"
)

// App wires the auth core and keeps the token store tidy. The HTTP surface
// lives elsewhere and consumes Auth through its service interface.
type App struct {
	Auth *auth.AuthService

	log           logger.Logger
	purgeInterval time.Duration
}

func NewApp(ctx context.Context, c *Config) (*App, error) {
	log, err := logger.New(c.Environment, c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("error while initializing logger: %w", err)
	}

	// Connect to the database and run migrations
	pool, err := db.ConnectAndMigrate(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("error while connecting to db. Err: %w", err)
	}

	storage := postgres.NewStorage(pool)

	tokens, err := tokenmanager.New(tokenmanager.Config{
		SecretKey:  c.SecretKey,
		AccessTTL:  c.AccessTokenTTL,
		RefreshTTL: c.RefreshTokenTTL,
	})
	if err != nil {
		return nil, fmt.Errorf("error while creating token manager. Err: %w", err)
	}

	authService, err := auth.NewService(auth.Config{}, tokens, storage, log.With("component", "auth"))
	if err != nil {
		return nil, fmt.Errorf("error while creating auth service. Err: %w", err)
	}

	return &App{
		Auth:          authService,
		log:           log,
		purgeInterval: c.PurgeInterval,
	}, nil
}

// Run sweeps expired refresh tokens until the context is cancelled.
func (a *App) Run(ctx context.Context) error {
	a.log.Info("starting expired token sweep", "interval", a.purgeInterval.String())

	ticker := time.NewTicker(a.purgeInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			a.log.Info("sweep stopped")
			return ctx.Err()
		case <-ticker.C:
			res := a.Auth.PurgeExpired(ctx)
			if res.IsErr() {
				a.log.Error("purge failed", "error", res.Err().Error())
				continue
			}
			if res.Value() {
				a.log.Info("expired refresh tokens purged")
			}
		}
	}
}
