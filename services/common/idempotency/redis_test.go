package idempotency_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yashrajoria/shopping-cart-backend/services/common/idempotency"
)

func newTestGuard(t *testing.T) (*idempotency.RedisGuard, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return idempotency.NewRedisGuard(client, time.Hour), mr
}

func TestRedisGuard_UnseenKey(t *testing.T) {
	guard, _ := newTestGuard(t)

	got, err := guard.Seen(context.Background(), "req-1")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestRedisGuard_RecordThenSeen(t *testing.T) {
	guard, _ := newTestGuard(t)
	ctx := context.Background()

	require.NoError(t, guard.Record(ctx, "req-1", "2024-05-01T10:00:00Z"))

	got, err := guard.Seen(ctx, "req-1")
	require.NoError(t, err)
	assert.Equal(t, "2024-05-01T10:00:00Z", got)
}

func TestRedisGuard_KeysExpire(t *testing.T) {
	guard, mr := newTestGuard(t)
	ctx := context.Background()

	require.NoError(t, guard.Record(ctx, "req-1", "2024-05-01T10:00:00Z"))
	mr.FastForward(2 * time.Hour)

	got, err := guard.Seen(ctx, "req-1")
	require.NoError(t, err)
	assert.Empty(t, got)
}
