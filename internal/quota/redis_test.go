package quota

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kiwiz-app/kiwiz-backend/internal/platform/logger"
)

func newTestLimiter(t *testing.T) (*RedisLimiter, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	l := NewRedisLimiter(rdb, "test:", logger.Nop())
	l.now = func() time.Time { return time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC) }
	return l, mr
}

func TestRedisLimiterReserveUntilLimit(t *testing.T) {
	l, mr := newTestLimiter(t)
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		tk, err := l.Reserve(ctx, "ip:1.2.3.4", 3)
		require.NoError(t, err)
		assert.Equal(t, Usage{Used: i, Limit: 3, Remaining: 3 - i}, tk.Usage)
	}

	tk, err := l.Reserve(ctx, "ip:1.2.3.4", 3)
	assert.ErrorIs(t, err, ErrLimitReached)
	assert.Equal(t, Usage{Used: 3, Limit: 3, Remaining: 0}, tk.Usage)
	// A rejected reservation holds nothing to refund.
	require.NoError(t, l.Release(ctx, tk))

	// The rejected reservation was rolled back.
	got, err := mr.Get("test:usage:2026-03-14:ip:1.2.3.4")
	require.NoError(t, err)
	assert.Equal(t, "3", got)
	assert.Greater(t, mr.TTL("test:usage:2026-03-14:ip:1.2.3.4"), 24*time.Hour)

	// Other callers are unaffected.
	_, err = l.Reserve(ctx, "ip:5.6.7.8", 3)
	require.NoError(t, err)
}

func TestRedisLimiterReleaseAndPeek(t *testing.T) {
	l, _ := newTestLimiter(t)
	ctx := context.Background()

	u, err := l.Peek(ctx, "user:1", 5)
	require.NoError(t, err)
	assert.Equal(t, Usage{Used: 0, Limit: 5, Remaining: 5}, u)

	first, err := l.Reserve(ctx, "user:1", 5)
	require.NoError(t, err)
	second, err := l.Reserve(ctx, "user:1", 5)
	require.NoError(t, err)
	require.NoError(t, l.Release(ctx, second))

	u, err = l.Peek(ctx, "user:1", 5)
	require.NoError(t, err)
	assert.Equal(t, 1, u.Used)

	require.NoError(t, l.Release(ctx, first))
	require.NoError(t, l.Release(ctx, first))
	u, err = l.Peek(ctx, "user:1", 5)
	require.NoError(t, err)
	assert.Equal(t, 0, u.Used)
}

func TestRedisLimiterNewDayResets(t *testing.T) {
	l, _ := newTestLimiter(t)
	ctx := context.Background()

	_, err := l.Reserve(ctx, "k", 1)
	require.NoError(t, err)
	_, err = l.Reserve(ctx, "k", 1)
	require.ErrorIs(t, err, ErrLimitReached)

	l.now = func() time.Time { return time.Date(2026, 3, 15, 0, 0, 1, 0, time.UTC) }
	_, err = l.Reserve(ctx, "k", 1)
	require.NoError(t, err)
}

func TestRedisLimiterReleaseAfterMidnightRefundsReservationDay(t *testing.T) {
	l, mr := newTestLimiter(t)
	ctx := context.Background()
	l.now = func() time.Time { return time.Date(2026, 3, 14, 23, 59, 59, 0, time.UTC) }

	tk, err := l.Reserve(ctx, "anon:1.2.3.4", 5)
	require.NoError(t, err)

	l.now = func() time.Time { return time.Date(2026, 3, 15, 0, 0, 1, 0, time.UTC) }
	_, err = l.Reserve(ctx, "anon:1.2.3.4", 5)
	require.NoError(t, err)
	require.NoError(t, l.Release(ctx, tk))

	before, err := mr.Get("test:usage:2026-03-14:anon:1.2.3.4")
	require.NoError(t, err)
	assert.Equal(t, "0", before)
	after, err := mr.Get("test:usage:2026-03-15:anon:1.2.3.4")
	require.NoError(t, err)
	assert.Equal(t, "1", after)
}

func TestUnlimitedAndZeroLimit(t *testing.T) {
	ctx := context.Background()
	tk, err := Unlimited{}.Reserve(ctx, "k", 5)
	require.NoError(t, err)
	assert.Equal(t, -1, tk.Remaining)
	require.NoError(t, Unlimited{}.Release(ctx, tk))

	l, _ := newTestLimiter(t)
	for i := 0; i < 10; i++ {
		tk, err = l.Reserve(ctx, "premium", 0)
		require.NoError(t, err)
	}
	assert.Equal(t, Usage{Used: 10, Limit: 0, Remaining: -1}, tk.Usage)
}

func TestNewRedisClientRequiresAddr(t *testing.T) {
	_, err := NewRedisClient(context.Background(), " ", "", 0)
	require.Error(t, err)

	mr := miniredis.RunT(t)
	rdb, err := NewRedisClient(context.Background(), mr.Addr(), "", 0)
	require.NoError(t, err)
	_ = rdb.Close()
}
