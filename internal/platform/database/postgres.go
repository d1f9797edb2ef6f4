package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/srgjo27/showtime_booking/internal/platform/config"
)

const retryDelay = 2 * time.Second

// NewPostgresDB opens the pool and pings until the database answers or the
// retries run out. Postgres often comes up after the API in compose setups.
func NewPostgresDB(ctx context.Context, cfg config.DatabaseConfig, log *zap.Logger) (*sqlx.DB, error) {
	retries := max(cfg.ConnectRetries, 1)

	var lastErr error
	for i := 1; i <= retries; i++ {
		log.Info("connecting to database",
			zap.String("host", cfg.Host),
			zap.String("database", cfg.Name),
			zap.Int("attempt", i),
			zap.Int("max_attempts", retries),
		)

		db, err := sqlx.Open("postgres", cfg.DSN())
		if err == nil {
			pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			err = db.PingContext(pingCtx)
			cancel()
			if err == nil {
				db.SetMaxOpenConns(cfg.MaxOpenConns)
				db.SetMaxIdleConns(cfg.MaxIdleConns)
				db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
				log.Info("database connected")
				return db, nil
			}
			_ = db.Close()
		}
		lastErr = err

		if i == retries {
			break
		}
		log.Warn("database not ready yet", zap.Duration("retry_in", retryDelay), zap.Error(err))
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(retryDelay):
		}
	}

	return nil, fmt.Errorf("could not connect to database after %d attempts: %w", retries, lastErr)
}
