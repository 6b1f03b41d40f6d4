package services

import (
	"context"
	"errors"
	"net/http"
	"time"

	"gorm.io/gorm"

	"github.com/kiwiz-app/kiwiz-backend/internal/data/repos"
	types "github.com/kiwiz-app/kiwiz-backend/internal/domain"
	"github.com/kiwiz-app/kiwiz-backend/internal/platform/apierr"
	"github.com/kiwiz-app/kiwiz-backend/internal/platform/logger"
	"github.com/kiwiz-app/kiwiz-backend/internal/platform/sendgrid"
)

const welcomeMailTimeout = 10 * time.Second

// Mailer delivers the welcome mail. A nil Mailer skips it.
type Mailer interface {
	Send(ctx context.Context, msg sendgrid.Message) error
}

type NewsletterService interface {
	Subscribe(ctx context.Context) (*types.NewsletterSubscription, error)
	Unsubscribe(ctx context.Context) error
}

type newsletterService struct {
	db       *gorm.DB
	log      *logger.Logger
	users    UserService
	userRepo repos.UserRepo
	subRepo  repos.NewsletterRepo
	mailer   Mailer
}

func NewNewsletterService(db *gorm.DB, log *logger.Logger, users UserService, userRepo repos.UserRepo, subRepo repos.NewsletterRepo, mailer Mailer) NewsletterService {
	return &newsletterService{
		db:       db,
		log:      log.With("service", "NewsletterService"),
		users:    users,
		userRepo: userRepo,
		subRepo:  subRepo,
		mailer:   mailer,
	}
}

// Subscribe adds the signed-in user's address. The account is synced first
// so the flag on the user row and the list stay in step.
func (ns *newsletterService) Subscribe(ctx context.Context) (*types.NewsletterSubscription, error) {
	u, err := ns.users.Sync(ctx)
	if err != nil {
		return nil, err
	}
	if u.Email == "" {
		return nil, apierr.New(http.StatusBadRequest, "email_required", ErrEmailRequired)
	}
	wasSubscribed := u.NewsletterSubscribed
	var sub *types.NewsletterSubscription
	err = ns.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		s, err := ns.subRepo.Subscribe(ctx, tx, u.Email, &u.ID)
		if err != nil {
			return err
		}
		sub = s
		return ns.userRepo.SetNewsletterSubscribed(ctx, tx, u.ID, true)
	})
	if err != nil {
		return nil, err
	}
	ns.log.Info("newsletter subscribed", "user_id", u.ID.String())
	if !wasSubscribed {
		ns.sendWelcome(ctx, u)
	}
	return sub, nil
}

// sendWelcome is best effort; the subscription stands when mail fails.
func (ns *newsletterService) sendWelcome(ctx context.Context, u *types.User) {
	if ns.mailer == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), welcomeMailTimeout)
	defer cancel()
	text := "Hi " + u.Name + ",\n\nThanks for subscribing! We'll send new coloring pages, " +
		"tracing worksheets and activity ideas straight to your inbox.\n\nThe Kiwiz team"
	err := ns.mailer.Send(ctx, sendgrid.Message{
		To:         sendgrid.EmailAddress{Email: u.Email, Name: u.Name},
		Subject:    "Welcome to the Kiwiz newsletter",
		Text:       text,
		Categories: []string{"newsletter", "welcome"},
	})
	if err != nil {
		ns.log.Warn("welcome mail failed", "user_id", u.ID.String(), "error", err)
	}
}

func (ns *newsletterService) Unsubscribe(ctx context.Context) error {
	u, err := ns.users.Sync(ctx)
	if err != nil {
		return err
	}
	return ns.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ns.subRepo.Unsubscribe(ctx, tx, u.Email); err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		return ns.userRepo.SetNewsletterSubscribed(ctx, tx, u.ID, false)
	})
}
