package redis

import (
	"context"
	"time"
)

type RedisService interface {
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Get(ctx context.Context, key string, dest interface{}) error
	CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}
