package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kiwiz-app/kiwiz-backend/internal/data/repos"
	types "github.com/kiwiz-app/kiwiz-backend/internal/domain"
	"github.com/kiwiz-app/kiwiz-backend/internal/observability"
	"github.com/kiwiz-app/kiwiz-backend/internal/platform/ctxutil"
	"github.com/kiwiz-app/kiwiz-backend/internal/platform/logger"
	"github.com/kiwiz-app/kiwiz-backend/internal/quota"
)

// Reservation is one counted generation that has not been committed or
// refunded yet.
type Reservation struct {
	key    string
	userID uuid.UUID
	ticket quota.Ticket
	Usage  quota.Usage
}

// UsageReport is what the account page shows about today's usage.
type UsageReport struct {
	Plan            types.Plan `json:"plan"`
	GenerationCount int64      `json:"generationCount"`
	quota.Usage
}

type UsageService interface {
	Reserve(ctx context.Context) (*Reservation, error)
	// Commit records a successful generation. Failures are logged only.
	Commit(ctx context.Context, r *Reservation, action, content string)
	Release(ctx context.Context, r *Reservation)
	Current(ctx context.Context) (*UsageReport, error)
}

type usageService struct {
	log       *logger.Logger
	limiter   quota.Limiter
	userRepo  repos.UserRepo
	eventRepo repos.AnalyticsRepo
	freeLimit int
}

func NewUsageService(log *logger.Logger, limiter quota.Limiter, userRepo repos.UserRepo, eventRepo repos.AnalyticsRepo, freeLimit int) UsageService {
	if limiter == nil {
		limiter = quota.Unlimited{}
	}
	if freeLimit <= 0 {
		freeLimit = types.FreeDailyGenerations
	}
	return &usageService{
		log:       log.With("service", "UsageService"),
		limiter:   limiter,
		userRepo:  userRepo,
		eventRepo: eventRepo,
		freeLimit: freeLimit,
	}
}

type caller struct {
	key    string
	userID uuid.UUID
	user   *types.User
	limit  int
}

// resolve picks the metering key and limit. Known accounts are metered by
// user id, verified but unsynced identities by subject, everyone else by
// client key.
func (us *usageService) resolve(ctx context.Context) (caller, error) {
	rd := ctxutil.GetRequestData(ctx)
	c := caller{key: "anon:unknown", limit: us.freeLimit}
	if rd == nil {
		return c, nil
	}
	if rd.ClientKey != "" {
		c.key = "anon:" + rd.ClientKey
	}
	if rd.UserID != uuid.Nil {
		u, err := us.userRepo.GetByID(ctx, nil, rd.UserID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return c, err
		}
		if u != nil {
			c.key = "user:" + u.ID.String()
			c.userID = u.ID
			c.user = u
			if u.Plan.Unlimited() {
				c.limit = 0
			}
			return c, nil
		}
	}
	if rd.Identity != nil && rd.Identity.Subject != "" {
		c.key = "sub:" + rd.Identity.Subject
	}
	return c, nil
}

func (us *usageService) Reserve(ctx context.Context) (*Reservation, error) {
	c, err := us.resolve(ctx)
	if err != nil {
		return nil, err
	}
	tk, err := us.limiter.Reserve(ctx, c.key, c.limit)
	if errors.Is(err, quota.ErrLimitReached) {
		kind := "anonymous"
		if c.userID != uuid.Nil {
			kind = "user"
		}
		observability.Current().IncQuotaRejected(kind)
		us.log.Info("free limit reached", "client_key", c.key, "limit", c.limit)
		return nil, limitReached()
	}
	if err != nil {
		return nil, err
	}
	return &Reservation{key: c.key, userID: c.userID, ticket: tk, Usage: tk.Usage}, nil
}

func (us *usageService) Commit(ctx context.Context, r *Reservation, action, content string) {
	if r == nil {
		return
	}
	ev := &types.AnalyticsEvent{Action: action, Content: content, ClientKey: r.key}
	if r.userID != uuid.Nil {
		uid := r.userID
		ev.UserID = &uid
		if err := us.userRepo.IncrementGenerationCount(ctx, nil, uid); err != nil {
			us.log.Warn("increment generation count failed", "user_id", uid.String(), "error", err)
		}
	}
	if us.eventRepo != nil {
		if err := us.eventRepo.Create(ctx, nil, ev); err != nil {
			us.log.Warn("record generation event failed", "action", action, "error", err)
		}
	}
}

func (us *usageService) Release(ctx context.Context, r *Reservation) {
	if r == nil {
		return
	}
	if err := us.limiter.Release(ctx, r.ticket); err != nil {
		us.log.Warn("usage refund failed", "client_key", r.key, "error", err)
	}
}

func (us *usageService) Current(ctx context.Context) (*UsageReport, error) {
	c, err := us.resolve(ctx)
	if err != nil {
		return nil, err
	}
	u, err := us.limiter.Peek(ctx, c.key, c.limit)
	if err != nil {
		return nil, err
	}
	out := &UsageReport{Plan: types.PlanFree, Usage: u}
	if c.user != nil {
		out.Plan = c.user.Plan
		out.GenerationCount = c.user.GenerationCount
	}
	return out, nil
}
