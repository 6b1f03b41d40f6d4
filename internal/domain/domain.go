package domain

import (
	"github.com/kiwiz-app/kiwiz-backend/internal/domain/analytics"
	"github.com/kiwiz-app/kiwiz-backend/internal/domain/newsletter"
	"github.com/kiwiz-app/kiwiz-backend/internal/domain/user"
)

type User = user.User
type Plan = user.Plan
type PlanInfo = user.PlanInfo

const FreeDailyGenerations = user.FreeDailyGenerations

const (
	PlanFree    = user.PlanFree
	PlanPremium = user.PlanPremium
	PlanFamily  = user.PlanFamily
)

type NewsletterSubscription = newsletter.Subscription

type AnalyticsEvent = analytics.Event

// Models lists every table AutoMigrate manages.
func Models() []any {
	return []any{
		&user.User{},
		&newsletter.Subscription{},
		&analytics.Event{},
	}
}
