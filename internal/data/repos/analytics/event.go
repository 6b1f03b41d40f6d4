package analytics

import (
	"context"
	"time"

	"gorm.io/gorm"

	types "github.com/kiwiz-app/kiwiz-backend/internal/domain"
	"github.com/kiwiz-app/kiwiz-backend/internal/platform/logger"
)

type EventRepo interface {
	Create(ctx context.Context, tx *gorm.DB, events ...*types.AnalyticsEvent) error
	CountByAction(ctx context.Context, tx *gorm.DB, actions ...string) (int64, error)
	CountSince(ctx context.Context, tx *gorm.DB, since time.Time, actions ...string) (int64, error)
}

type eventRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewEventRepo(db *gorm.DB, baseLog *logger.Logger) EventRepo {
	return &eventRepo{db: db, log: baseLog.With("repo", "AnalyticsEventRepo")}
}

func (r *eventRepo) conn(ctx context.Context, tx *gorm.DB) *gorm.DB {
	if tx == nil {
		tx = r.db
	}
	return tx.WithContext(ctx)
}

func (r *eventRepo) Create(ctx context.Context, tx *gorm.DB, events ...*types.AnalyticsEvent) error {
	if len(events) == 0 {
		return nil
	}
	return r.conn(ctx, tx).Create(&events).Error
}

func (r *eventRepo) CountByAction(ctx context.Context, tx *gorm.DB, actions ...string) (int64, error) {
	var n int64
	q := r.conn(ctx, tx).Model(&types.AnalyticsEvent{})
	if len(actions) > 0 {
		q = q.Where("action IN ?", actions)
	}
	err := q.Count(&n).Error
	return n, err
}

func (r *eventRepo) CountSince(ctx context.Context, tx *gorm.DB, since time.Time, actions ...string) (int64, error) {
	var n int64
	q := r.conn(ctx, tx).Model(&types.AnalyticsEvent{}).Where("created_at >= ?", since)
	if len(actions) > 0 {
		q = q.Where("action IN ?", actions)
	}
	err := q.Count(&n).Error
	return n, err
}
