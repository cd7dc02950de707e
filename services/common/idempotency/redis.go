package idempotency

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisGuard stores idempotency keys in Redis with a TTL. Keys only need to
// outlive the channel's redelivery window, so expiry is safe.
type RedisGuard struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisGuard(client *redis.Client, ttl time.Duration) *RedisGuard {
	return &RedisGuard{
		client: client,
		ttl:    ttl,
	}
}

func (g *RedisGuard) getKey(key string) string {
	return "idem:checkout:" + key
}

func (g *RedisGuard) Seen(ctx context.Context, key string) (string, error) {
	val, err := g.client.Get(ctx, g.getKey(key)).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return val, nil
}

func (g *RedisGuard) Record(ctx context.Context, key, orderDate string) error {
	return g.client.Set(ctx, g.getKey(key), orderDate, g.ttl).Err()
}
