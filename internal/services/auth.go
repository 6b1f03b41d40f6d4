package services

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/kiwiz-app/kiwiz-backend/internal/data/repos"
	types "github.com/kiwiz-app/kiwiz-backend/internal/domain"
	"github.com/kiwiz-app/kiwiz-backend/internal/platform/ctxutil"
	"github.com/kiwiz-app/kiwiz-backend/internal/platform/logger"
)

// TokenVerifier checks a bearer token issued by the identity provider.
type TokenVerifier interface {
	Verify(ctx context.Context, rawToken string) (*ctxutil.Identity, error)
}

// AdminPolicy decides who may use the admin surface: accounts flagged in
// the database and the configured admin addresses.
type AdminPolicy struct {
	emails map[string]struct{}
}

func NewAdminPolicy(emails []string) AdminPolicy {
	p := AdminPolicy{emails: map[string]struct{}{}}
	for _, e := range emails {
		if e = strings.ToLower(strings.TrimSpace(e)); e != "" {
			p.emails[e] = struct{}{}
		}
	}
	return p
}

func (p AdminPolicy) IsAdmin(u *types.User, identityEmail string) bool {
	if u != nil && u.IsAdmin {
		return true
	}
	for _, e := range []string{identityEmail, emailOf(u)} {
		if _, ok := p.emails[strings.ToLower(strings.TrimSpace(e))]; ok && e != "" {
			return true
		}
	}
	return false
}

func emailOf(u *types.User) string {
	if u == nil {
		return ""
	}
	return u.Email
}

type AuthService interface {
	// SetContextFromToken verifies rawToken and returns ctx carrying the
	// caller's identity. The account row is attached when it already exists.
	SetContextFromToken(ctx context.Context, rawToken string) (context.Context, error)
}

type authService struct {
	log      *logger.Logger
	verifier TokenVerifier
	userRepo repos.UserRepo
	admins   AdminPolicy
}

func NewAuthService(log *logger.Logger, verifier TokenVerifier, userRepo repos.UserRepo, admins AdminPolicy) AuthService {
	return &authService{
		log:      log.With("service", "AuthService"),
		verifier: verifier,
		userRepo: userRepo,
		admins:   admins,
	}
}

func (as *authService) SetContextFromToken(ctx context.Context, rawToken string) (context.Context, error) {
	if as.verifier == nil {
		return ctx, unauthenticated()
	}
	id, err := as.verifier.Verify(ctx, rawToken)
	if err != nil {
		as.log.Debug("token rejected", "error", err)
		return ctx, unauthenticated()
	}

	rd := ctxutil.GetRequestData(ctx)
	next := &ctxutil.RequestData{Identity: id}
	if rd != nil {
		next.ClientKey = rd.ClientKey
	}

	u, err := as.userRepo.GetByExternalID(ctx, nil, id.Subject)
	switch {
	case err == nil:
		next.UserID = u.ID
	case errors.Is(err, gorm.ErrRecordNotFound):
		u = nil
	default:
		return ctx, err
	}
	next.IsAdmin = as.admins.IsAdmin(u, id.Email)
	return ctxutil.WithRequestData(ctx, next), nil
}
