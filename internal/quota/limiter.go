package quota

import (
	"context"
	"errors"
)

// ErrLimitReached is returned by Reserve when the caller has used up the
// day's allowance. The returned Usage still describes the counter.
var ErrLimitReached = errors.New("daily generation limit reached")

// Usage describes a caller's counter for the current day. Limit 0 means
// unlimited and Remaining is then -1.
type Usage struct {
	Used      int `json:"used"`
	Limit     int `json:"limit"`
	Remaining int `json:"remaining"`
}

func newUsage(used, limit int) Usage {
	if limit <= 0 {
		return Usage{Used: used, Limit: 0, Remaining: -1}
	}
	rem := limit - used
	if rem < 0 {
		rem = 0
	}
	return Usage{Used: used, Limit: limit, Remaining: rem}
}

// Ticket is one counted reservation. It remembers the exact counter it was
// taken from, so a refund after midnight still lands on the right day.
type Ticket struct {
	Usage
	counter string
}

type Limiter interface {
	// Reserve counts one generation against key. A limit <= 0 never rejects.
	Reserve(ctx context.Context, key string, limit int) (Ticket, error)
	// Release refunds one reservation, e.g. after a failed generation.
	Release(ctx context.Context, t Ticket) error
	Peek(ctx context.Context, key string, limit int) (Usage, error)
}

// Unlimited is used when no Redis is configured. It never rejects and
// reports nothing as used.
type Unlimited struct{}

func (Unlimited) Reserve(context.Context, string, int) (Ticket, error) {
	return Ticket{Usage: newUsage(0, 0)}, nil
}
func (Unlimited) Release(context.Context, Ticket) error            { return nil }
func (Unlimited) Peek(context.Context, string, int) (Usage, error) { return newUsage(0, 0), nil }
