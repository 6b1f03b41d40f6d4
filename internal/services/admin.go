package services

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/kiwiz-app/kiwiz-backend/internal/data/repos"
	types "github.com/kiwiz-app/kiwiz-backend/internal/domain"
	"github.com/kiwiz-app/kiwiz-backend/internal/domain/analytics"
	"github.com/kiwiz-app/kiwiz-backend/internal/platform/logger"
)

const (
	activeWindow   = 7 * 24 * time.Hour
	adminUserLimit = 100
)

type AdminStats struct {
	TotalUsers       int64 `json:"totalUsers"`
	TotalNewsletters int64 `json:"totalNewsletters"`
	ActiveUsers      int64 `json:"activeUsers"`
	TotalGenerations int64 `json:"totalGenerations"`
	GenerationsToday int64 `json:"generationsToday"`
}

type AdminService interface {
	Stats(ctx context.Context) (*AdminStats, error)
	Users(ctx context.Context) ([]*types.User, error)
}

type adminService struct {
	log       *logger.Logger
	userRepo  repos.UserRepo
	subRepo   repos.NewsletterRepo
	eventRepo repos.AnalyticsRepo
	now       func() time.Time
}

func NewAdminService(log *logger.Logger, userRepo repos.UserRepo, subRepo repos.NewsletterRepo, eventRepo repos.AnalyticsRepo) AdminService {
	return &adminService{
		log:       log.With("service", "AdminService"),
		userRepo:  userRepo,
		subRepo:   subRepo,
		eventRepo: eventRepo,
		now:       time.Now,
	}
}

func (as *adminService) Stats(ctx context.Context) (*AdminStats, error) {
	var out AdminStats
	now := as.now()
	utc := now.UTC()
	today := time.Date(utc.Year(), utc.Month(), utc.Day(), 0, 0, 0, 0, time.UTC)
	generations := []string{analytics.ActionGenerateColoring, analytics.ActionGenerateTracing}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		out.TotalUsers, err = as.userRepo.Count(gctx, nil)
		return err
	})
	g.Go(func() (err error) {
		out.TotalNewsletters, err = as.subRepo.CountActive(gctx, nil)
		return err
	})
	g.Go(func() (err error) {
		out.ActiveUsers, err = as.userRepo.CountActiveSince(gctx, nil, now.Add(-activeWindow))
		return err
	})
	g.Go(func() (err error) {
		out.TotalGenerations, err = as.eventRepo.CountByAction(gctx, nil, generations...)
		return err
	})
	g.Go(func() (err error) {
		out.GenerationsToday, err = as.eventRepo.CountSince(gctx, nil, today, generations...)
		return err
	})
	if err := g.Wait(); err != nil {
		as.log.Error("admin stats failed", "error", err)
		return nil, err
	}
	return &out, nil
}

func (as *adminService) Users(ctx context.Context) ([]*types.User, error) {
	return as.userRepo.List(ctx, nil, adminUserLimit)
}
