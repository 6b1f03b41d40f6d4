package services

import (
	"errors"
	"net/http"

	"github.com/kiwiz-app/kiwiz-backend/internal/platform/apierr"
	"github.com/kiwiz-app/kiwiz-backend/internal/quota"
)

var (
	ErrPromptRequired    = errors.New("prompt is required")
	ErrUnauthenticated   = errors.New("authentication required")
	ErrUserNotFound      = errors.New("user not found")
	ErrEmailRequired     = errors.New("an email address is required")
	ErrImagesUnavailable = errors.New("image generation is not configured")
	ErrGenerationFailed  = errors.New("failed to generate coloring page")
	ErrInvalidPlan       = errors.New("unknown membership plan")
	ErrInvalidAction     = errors.New("unknown analytics action")
)

func promptRequired() error {
	return apierr.New(http.StatusBadRequest, "prompt_required", ErrPromptRequired)
}

func limitReached() error {
	return apierr.New(http.StatusPaymentRequired, "free_limit_reached", quota.ErrLimitReached)
}

func unauthenticated() error {
	return apierr.New(http.StatusUnauthorized, "unauthenticated", ErrUnauthenticated)
}

func userNotFound() error {
	return apierr.New(http.StatusNotFound, "user_not_found", ErrUserNotFound)
}
