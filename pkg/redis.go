package pkg

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/SAP-F-2025/refdata-service/internal/config"
	"github.com/redis/go-redis/v9"
)

const (
	redisClientName  = "refdata-service"
	redisPingTimeout = 3 * time.Second
)

// ErrRedisDisabled is returned when REDIS_ENABLED is off; callers run without the export
// cache and the import gate.
var ErrRedisDisabled = errors.New("redis disabled")

// NewRedisClient connects the client backing the export cache and the import gate
func NewRedisClient(cfg *config.Config) (*redis.Client, error) {
	if !cfg.RedisEnabled {
		return nil, ErrRedisDisabled
	}

	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	opt.ClientName = redisClientName

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), redisPingTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}

	return client, nil
}
