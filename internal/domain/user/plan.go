package user

import "strings"

type Plan string

const (
	PlanFree    Plan = "free"
	PlanPremium Plan = "premium"
	PlanFamily  Plan = "family"
)

// FreeDailyGenerations is the default allowance for the free plan and for
// anonymous visitors.
const FreeDailyGenerations = 5

// PlanInfo is what the membership page shows for a plan. DailyLimit 0 means
// unlimited; the free plan's limit is filled from configuration.
type PlanInfo struct {
	Plan        Plan     `json:"plan"`
	Name        string   `json:"name"`
	PriceCents  int      `json:"priceCents"`
	Period      string   `json:"period"`
	Description string   `json:"description"`
	Features    []string `json:"features"`
	DailyLimit  int      `json:"dailyLimit"`
	MaxAccounts int      `json:"maxAccounts"`
	Popular     bool     `json:"popular"`
}

var PlanCatalog = []PlanInfo{
	{
		Plan:        PlanFree,
		Name:        "Free",
		Period:      "forever",
		Description: "Perfect for trying out Kiwiz",
		Features:    []string{"5 generations per day", "Basic coloring pages", "Standard tracing", "Community support"},
		DailyLimit:  FreeDailyGenerations,
		MaxAccounts: 1,
	},
	{
		Plan:        PlanPremium,
		Name:        "Premium",
		PriceCents:  999,
		Period:      "month",
		Description: "Best for regular users",
		Features:    []string{"Unlimited generations", "Premium content", "Advanced features", "Priority support"},
		MaxAccounts: 1,
		Popular:     true,
	},
	{
		Plan:        PlanFamily,
		Name:        "Family",
		PriceCents:  1999,
		Period:      "month",
		Description: "Perfect for families",
		Features:    []string{"Everything in Premium", "Up to 5 accounts", "Family dashboard", "Bulk downloads"},
		MaxAccounts: 5,
	},
}

func ParsePlan(s string) (Plan, bool) {
	switch p := Plan(strings.ToLower(strings.TrimSpace(s))); p {
	case PlanFree, PlanPremium, PlanFamily:
		return p, true
	}
	return "", false
}

// Unlimited reports whether the plan bypasses the daily generation limit.
func (p Plan) Unlimited() bool {
	return p == PlanPremium || p == PlanFamily
}
