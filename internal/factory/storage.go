package factory

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"

	"github.com/streakedin/streakedin/internal/config"
	storepkg "github.com/streakedin/streakedin/internal/store"
	storemongo "github.com/streakedin/streakedin/internal/store/mongo"
	storepg "github.com/streakedin/streakedin/internal/store/postgres"
	storesqlite "github.com/streakedin/streakedin/internal/store/sqlite"
)

// connectAttempts bounds how often a networked store is dialled at startup.
const connectAttempts = 5

// NewStore opens the store selected by cfg.DBDriver. Networked drivers are
// retried with exponential backoff so the server can start alongside its database.
func NewStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (storepkg.Store, error) {
	switch cfg.DBDriver {
	case config.DriverSQLite:
		s, err := storesqlite.New(cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite %s: %w", cfg.SQLitePath, err)
		}
		log.Info().Str("driver", cfg.DBDriver).Str("path", cfg.SQLitePath).Msg("store ready")
		return s, nil
	case config.DriverPostgres:
		return withRetry(ctx, cfg.DBDriver, log, func(ctx context.Context) (storepkg.Store, error) {
			return storepg.New(ctx, cfg.PostgresDSN)
		})
	case config.DriverMongo:
		return withRetry(ctx, cfg.DBDriver, log, func(ctx context.Context) (storepkg.Store, error) {
			return storemongo.New(ctx, cfg.MongoURI, cfg.MongoDatabase)
		})
	}
	return nil, fmt.Errorf("unknown DB_DRIVER: %s", cfg.DBDriver)
}

func withRetry(ctx context.Context, driver string, log zerolog.Logger, open func(context.Context) (storepkg.Store, error)) (storepkg.Store, error) {
	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = 500 * time.Millisecond
	eb.MaxInterval = 5 * time.Second
	policy := backoff.WithContext(backoff.WithMaxRetries(eb, connectAttempts-1), ctx)

	var s storepkg.Store
	attempt := 0
	err := backoff.Retry(func() error {
		attempt++
		dialCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		var err error
		s, err = open(dialCtx)
		if err != nil {
			log.Warn().Err(err).Str("driver", driver).Int("attempt", attempt).Msg("store connect failed")
		}
		return err
	}, policy)
	if err != nil {
		return nil, fmt.Errorf("connect %s store: %w", driver, err)
	}
	log.Info().Str("driver", driver).Int("attempts", attempt).Msg("store ready")
	return s, nil
}
