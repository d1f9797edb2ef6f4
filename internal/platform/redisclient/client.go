package redisclient

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/srgjo27/showtime_booking/internal/platform/config"
)

const retryDelay = 2 * time.Second

func NewClient(ctx context.Context, cfg config.RedisConfig, log *zap.Logger) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})

	retries := max(cfg.ConnectRetries, 1)

	var lastErr error
	for i := 1; i <= retries; i++ {
		log.Info("connecting to redis", zap.String("addr", cfg.Addr()), zap.Int("attempt", i))

		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		lastErr = client.Ping(pingCtx).Err()
		cancel()
		if lastErr == nil {
			log.Info("redis connected")
			return client, nil
		}

		if i == retries {
			break
		}
		log.Warn("redis not ready yet", zap.Duration("retry_in", retryDelay), zap.Error(lastErr))
		select {
		case <-ctx.Done():
			_ = client.Close()
			return nil, ctx.Err()
		case <-time.After(retryDelay):
		}
	}

	_ = client.Close()
	return nil, fmt.Errorf("could not connect to redis at %s after %d attempts: %w", cfg.Addr(), retries, lastErr)
}
