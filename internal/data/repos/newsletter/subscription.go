package newsletter

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/kiwiz-app/kiwiz-backend/internal/domain"
	"github.com/kiwiz-app/kiwiz-backend/internal/platform/logger"
)

type SubscriptionRepo interface {
	Subscribe(ctx context.Context, tx *gorm.DB, email string, userID *uuid.UUID) (*types.NewsletterSubscription, error)
	Unsubscribe(ctx context.Context, tx *gorm.DB, email string) error
	CountActive(ctx context.Context, tx *gorm.DB) (int64, error)
}

type subscriptionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSubscriptionRepo(db *gorm.DB, baseLog *logger.Logger) SubscriptionRepo {
	return &subscriptionRepo{db: db, log: baseLog.With("repo", "NewsletterSubscriptionRepo")}
}

func (r *subscriptionRepo) conn(ctx context.Context, tx *gorm.DB) *gorm.DB {
	if tx == nil {
		tx = r.db
	}
	return tx.WithContext(ctx)
}

// Subscribe is idempotent; a previously unsubscribed address is reactivated.
func (r *subscriptionRepo) Subscribe(ctx context.Context, tx *gorm.DB, email string, userID *uuid.UUID) (*types.NewsletterSubscription, error) {
	var out types.NewsletterSubscription
	err := r.conn(ctx, tx).Transaction(func(t *gorm.DB) error {
		err := t.Where("email = ?", email).First(&out).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			out = types.NewsletterSubscription{Email: email, UserID: userID, SubscribedAt: time.Now()}
			return t.Create(&out).Error
		}
		if err != nil {
			return err
		}
		updates := map[string]any{}
		if !out.Active() {
			now := time.Now()
			updates["subscribed_at"] = now
			updates["unsubscribed_at"] = nil
			out.SubscribedAt = now
			out.UnsubscribedAt = nil
		}
		if userID != nil && out.UserID == nil {
			updates["user_id"] = *userID
			out.UserID = userID
		}
		if len(updates) == 0 {
			return nil
		}
		return t.Model(&types.NewsletterSubscription{}).Where("id = ?", out.ID).Updates(updates).Error
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *subscriptionRepo) Unsubscribe(ctx context.Context, tx *gorm.DB, email string) error {
	res := r.conn(ctx, tx).
		Model(&types.NewsletterSubscription{}).
		Where("email = ? AND unsubscribed_at IS NULL", email).
		Update("unsubscribed_at", time.Now())
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *subscriptionRepo) CountActive(ctx context.Context, tx *gorm.DB) (int64, error) {
	var n int64
	err := r.conn(ctx, tx).Model(&types.NewsletterSubscription{}).Where("unsubscribed_at IS NULL").Count(&n).Error
	return n, err
}
