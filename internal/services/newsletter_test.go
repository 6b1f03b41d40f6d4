package services

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kiwiz-app/kiwiz-backend/internal/platform/ctxutil"
	"github.com/kiwiz-app/kiwiz-backend/internal/platform/sendgrid"
)

func TestNewsletterSubscribeUnsubscribe(t *testing.T) {
	f := newFixture(t, 5)
	users := NewUserService(f.log, f.users, f.usage, f.admins)
	svc := NewNewsletterService(f.db, f.log, users, f.users, f.subs, nil)
	ctx := identityCtx(&ctxutil.Identity{Subject: "kp_n", Email: "news@example.com"})

	sub, err := svc.Subscribe(ctx)
	require.NoError(t, err)
	assert.Equal(t, "news@example.com", sub.Email)
	assert.True(t, sub.Active())

	u, err := f.users.GetByExternalID(context.Background(), nil, "kp_n")
	require.NoError(t, err)
	assert.True(t, u.NewsletterSubscribed)

	require.NoError(t, svc.Unsubscribe(ctx))
	require.NoError(t, svc.Unsubscribe(ctx))

	u, err = f.users.GetByExternalID(context.Background(), nil, "kp_n")
	require.NoError(t, err)
	assert.False(t, u.NewsletterSubscribed)

	n, err := f.subs.CountActive(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestNewsletterNeedsEmail(t *testing.T) {
	f := newFixture(t, 5)
	users := NewUserService(f.log, f.users, f.usage, f.admins)
	svc := NewNewsletterService(f.db, f.log, users, f.users, f.subs, nil)

	_, err := svc.Subscribe(identityCtx(&ctxutil.Identity{Subject: "kp_noemail"}))
	requireAPIError(t, err, http.StatusBadRequest, "email_required")

	_, err = svc.Subscribe(anonCtx("k"))
	requireAPIError(t, err, http.StatusUnauthorized, "unauthenticated")
}

type recordingMailer struct {
	sent []sendgrid.Message
	err  error
}

func (m *recordingMailer) Send(_ context.Context, msg sendgrid.Message) error {
	m.sent = append(m.sent, msg)
	return m.err
}

func TestNewsletterWelcomeMailOncePerSubscription(t *testing.T) {
	f := newFixture(t, 5)
	users := NewUserService(f.log, f.users, f.usage, f.admins)
	mailer := &recordingMailer{}
	svc := NewNewsletterService(f.db, f.log, users, f.users, f.subs, mailer)
	ctx := identityCtx(&ctxutil.Identity{Subject: "kp_w", Email: "welcome@example.com", GivenName: "Wren"})

	_, err := svc.Subscribe(ctx)
	require.NoError(t, err)
	_, err = svc.Subscribe(ctx)
	require.NoError(t, err)

	require.Len(t, mailer.sent, 1)
	assert.Equal(t, sendgrid.EmailAddress{Email: "welcome@example.com", Name: "Wren"}, mailer.sent[0].To)
	assert.Contains(t, mailer.sent[0].Text, "Hi Wren")

	// A failing provider does not undo the subscription.
	require.NoError(t, svc.Unsubscribe(ctx))
	mailer.err = errors.New("provider down")
	sub, err := svc.Subscribe(ctx)
	require.NoError(t, err)
	assert.True(t, sub.Active())
	assert.Len(t, mailer.sent, 2)
}
