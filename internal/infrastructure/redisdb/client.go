package redisdb

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-wallet-verify/internal/config"
	"github.com/redis/go-redis/v9"
)

// NewClient creates a Redis client and pings it once. A failed ping is logged
// but not fatal: the interactive process and the HTTP listener both retry on
// first use, and Redis may come up after us.
func NewClient(cfg *config.Config) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		slog.Warn("redis not reachable at startup", "addr", cfg.RedisAddr, "err", err)
	}
	return client
}
