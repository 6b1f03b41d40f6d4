package services

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kiwiz-app/kiwiz-backend/internal/data/repos"
	types "github.com/kiwiz-app/kiwiz-backend/internal/domain"
	"github.com/kiwiz-app/kiwiz-backend/internal/platform/ctxutil"
	"github.com/kiwiz-app/kiwiz-backend/internal/platform/logger"
)

// Me is the trimmed profile the navigation and admin guard read.
type Me struct {
	ID      uuid.UUID `json:"id"`
	Email   string    `json:"email"`
	Name    string    `json:"name"`
	IsAdmin bool      `json:"isAdmin"`
}

type UserService interface {
	// Sync creates or refreshes the account for the verified caller.
	Sync(ctx context.Context) (*types.User, error)
	Me(ctx context.Context) (*Me, error)
	Usage(ctx context.Context) (*UsageReport, error)
}

type userService struct {
	log      *logger.Logger
	userRepo repos.UserRepo
	usage    UsageService
	admins   AdminPolicy
}

func NewUserService(log *logger.Logger, userRepo repos.UserRepo, usage UsageService, admins AdminPolicy) UserService {
	return &userService{
		log:      log.With("service", "UserService"),
		userRepo: userRepo,
		usage:    usage,
		admins:   admins,
	}
}

func identityFrom(ctx context.Context) (*ctxutil.RequestData, error) {
	rd := ctxutil.GetRequestData(ctx)
	if rd == nil || rd.Identity == nil || rd.Identity.Subject == "" {
		return nil, unauthenticated()
	}
	return rd, nil
}

// displayName prefers the given name, then the family name.
func displayName(id *ctxutil.Identity) string {
	if n := strings.TrimSpace(id.GivenName); n != "" {
		return n
	}
	if n := strings.TrimSpace(id.FamilyName); n != "" {
		return n
	}
	return "Guest"
}

func (us *userService) Sync(ctx context.Context) (*types.User, error) {
	rd, err := identityFrom(ctx)
	if err != nil {
		return nil, err
	}
	id := rd.Identity
	u := &types.User{
		ExternalID: id.Subject,
		Email:      strings.TrimSpace(id.Email),
		Name:       displayName(id),
	}
	if pic := strings.TrimSpace(id.Picture); pic != "" {
		u.Image = &pic
	}
	out, err := us.userRepo.UpsertByExternalID(ctx, nil, u)
	if err != nil {
		us.log.Error("user sync failed", "subject", id.Subject, "error", err)
		return nil, err
	}
	rd.UserID = out.ID
	return out, nil
}

func (us *userService) Me(ctx context.Context) (*Me, error) {
	rd, err := identityFrom(ctx)
	if err != nil {
		return nil, err
	}
	u, err := us.userRepo.GetByExternalID(ctx, nil, rd.Identity.Subject)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, userNotFound()
	}
	if err != nil {
		return nil, err
	}
	return &Me{
		ID:      u.ID,
		Email:   u.Email,
		Name:    u.Name,
		IsAdmin: us.admins.IsAdmin(u, rd.Identity.Email),
	}, nil
}

func (us *userService) Usage(ctx context.Context) (*UsageReport, error) {
	if _, err := identityFrom(ctx); err != nil {
		return nil, err
	}
	return us.usage.Current(ctx)
}
