package app

import (
	"gorm.io/gorm"

	"github.com/kiwiz-app/kiwiz-backend/internal/data/repos"
	"github.com/kiwiz-app/kiwiz-backend/internal/platform/logger"
)

type Repos struct {
	User       repos.UserRepo
	Newsletter repos.NewsletterRepo
	Analytics  repos.AnalyticsRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		User:       repos.NewUserRepo(db, log),
		Newsletter: repos.NewNewsletterRepo(db, log),
		Analytics:  repos.NewAnalyticsRepo(db, log),
	}
}
