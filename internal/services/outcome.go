package services

import (
	"errors"

	"github.com/kiwiz-app/kiwiz-backend/internal/platform/apierr"
	"github.com/kiwiz-app/kiwiz-backend/internal/quota"
)

// outcomeOf labels a failed generation for metrics.
func outcomeOf(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, quota.ErrLimitReached):
		return "limited"
	case errors.Is(err, ErrPromptRequired):
		return "invalid"
	}
	if ae, ok := apierr.As(err); ok && ae.Status < 500 {
		return "rejected"
	}
	return "error"
}
