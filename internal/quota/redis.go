package quota

import (
	"context"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/kiwiz-app/kiwiz-backend/internal/platform/logger"
)

// keyTTL outlives the UTC day so late reservations near midnight still
// expire on their own.
const keyTTL = 48 * time.Hour

// NewRedisClient dials addr and pings it before returning.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*goredis.Client, error) {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return nil, fmt.Errorf("missing redis addr")
	}
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		Password:    password,
		DB:          db,
		DialTimeout: 5 * time.Second,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return rdb, nil
}

type RedisLimiter struct {
	rdb    goredis.Cmdable
	prefix string
	log    *logger.Logger
	now    func() time.Time
}

func NewRedisLimiter(rdb goredis.Cmdable, prefix string, baseLog *logger.Logger) *RedisLimiter {
	if prefix == "" {
		prefix = "kiwiz:"
	}
	return &RedisLimiter{
		rdb:    rdb,
		prefix: prefix,
		log:    baseLog.With("service", "RedisLimiter"),
		now:    time.Now,
	}
}

func (l *RedisLimiter) key(key string) string {
	return l.prefix + "usage:" + l.now().UTC().Format("2006-01-02") + ":" + key
}

func (l *RedisLimiter) Reserve(ctx context.Context, key string, limit int) (Ticket, error) {
	k := l.key(key)
	var incr *goredis.IntCmd
	_, err := l.rdb.TxPipelined(ctx, func(p goredis.Pipeliner) error {
		incr = p.Incr(ctx, k)
		p.Expire(ctx, k, keyTTL)
		return nil
	})
	if err != nil {
		return Ticket{}, fmt.Errorf("reserve usage: %w", err)
	}
	used := int(incr.Val())
	if limit > 0 && used > limit {
		if err := l.rdb.Decr(ctx, k).Err(); err != nil {
			l.log.Warn("usage rollback failed", "client_key", key, "error", err)
		}
		return Ticket{Usage: newUsage(limit, limit)}, ErrLimitReached
	}
	return Ticket{Usage: newUsage(used, limit), counter: k}, nil
}

// Release decrements the counter the ticket was taken from, which is not
// necessarily today's.
func (l *RedisLimiter) Release(ctx context.Context, t Ticket) error {
	k := t.counter
	if k == "" {
		return nil
	}
	n, err := l.rdb.Decr(ctx, k).Result()
	if err != nil {
		return fmt.Errorf("release usage: %w", err)
	}
	if n < 0 {
		// Release without a matching reservation; clamp at zero.
		return l.rdb.Set(ctx, k, 0, keyTTL).Err()
	}
	return nil
}

func (l *RedisLimiter) Peek(ctx context.Context, key string, limit int) (Usage, error) {
	n, err := l.rdb.Get(ctx, l.key(key)).Int()
	if err == goredis.Nil {
		return newUsage(0, limit), nil
	}
	if err != nil {
		return Usage{}, fmt.Errorf("peek usage: %w", err)
	}
	return newUsage(n, limit), nil
}
