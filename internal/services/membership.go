package services

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kiwiz-app/kiwiz-backend/internal/data/repos"
	types "github.com/kiwiz-app/kiwiz-backend/internal/domain"
	"github.com/kiwiz-app/kiwiz-backend/internal/domain/user"
	"github.com/kiwiz-app/kiwiz-backend/internal/platform/apierr"
	"github.com/kiwiz-app/kiwiz-backend/internal/platform/logger"
)

type MembershipService interface {
	Plans() []types.PlanInfo
	SetPlan(ctx context.Context, userID uuid.UUID, plan string) (*types.User, error)
}

type membershipService struct {
	log       *logger.Logger
	userRepo  repos.UserRepo
	freeLimit int
}

func NewMembershipService(log *logger.Logger, userRepo repos.UserRepo, freeLimit int) MembershipService {
	if freeLimit <= 0 {
		freeLimit = user.FreeDailyGenerations
	}
	return &membershipService{
		log:       log.With("service", "MembershipService"),
		userRepo:  userRepo,
		freeLimit: freeLimit,
	}
}

// Plans returns a copy of the catalog with the configured free limit.
func (ms *membershipService) Plans() []types.PlanInfo {
	out := make([]types.PlanInfo, len(user.PlanCatalog))
	copy(out, user.PlanCatalog)
	for i := range out {
		if out[i].Plan == types.PlanFree {
			out[i].DailyLimit = ms.freeLimit
		}
	}
	return out
}

func (ms *membershipService) SetPlan(ctx context.Context, userID uuid.UUID, plan string) (*types.User, error) {
	p, ok := user.ParsePlan(plan)
	if !ok {
		return nil, apierr.New(http.StatusBadRequest, "invalid_plan", ErrInvalidPlan)
	}
	if err := ms.userRepo.SetPlan(ctx, nil, userID, p); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, userNotFound()
		}
		return nil, err
	}
	ms.log.Info("plan changed", "user_id", userID.String(), "plan", p)
	return ms.userRepo.GetByID(ctx, nil, userID)
}
