package repos

import (
	"gorm.io/gorm"

	"github.com/kiwiz-app/kiwiz-backend/internal/data/repos/analytics"
	"github.com/kiwiz-app/kiwiz-backend/internal/data/repos/newsletter"
	"github.com/kiwiz-app/kiwiz-backend/internal/data/repos/user"
	"github.com/kiwiz-app/kiwiz-backend/internal/platform/logger"
)

type UserRepo = user.UserRepo
type NewsletterRepo = newsletter.SubscriptionRepo
type AnalyticsRepo = analytics.EventRepo

// ErrNotFound is returned by single-row lookups and targeted updates.
var ErrNotFound = gorm.ErrRecordNotFound

func NewUserRepo(db *gorm.DB, log *logger.Logger) UserRepo { return user.NewUserRepo(db, log) }

func NewNewsletterRepo(db *gorm.DB, log *logger.Logger) NewsletterRepo {
	return newsletter.NewSubscriptionRepo(db, log)
}

func NewAnalyticsRepo(db *gorm.DB, log *logger.Logger) AnalyticsRepo {
	return analytics.NewEventRepo(db, log)
}
