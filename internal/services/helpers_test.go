package services

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/kiwiz-app/kiwiz-backend/internal/data/repos"
	"github.com/kiwiz-app/kiwiz-backend/internal/data/repos/testutil"
	"github.com/kiwiz-app/kiwiz-backend/internal/platform/apierr"
	"github.com/kiwiz-app/kiwiz-backend/internal/platform/ctxutil"
	"github.com/kiwiz-app/kiwiz-backend/internal/platform/logger"
	"github.com/kiwiz-app/kiwiz-backend/internal/platform/openai"
	"github.com/kiwiz-app/kiwiz-backend/internal/quota"
)

type fixture struct {
	db        *gorm.DB
	log       *logger.Logger
	users     repos.UserRepo
	subs      repos.NewsletterRepo
	events    repos.AnalyticsRepo
	limiter   quota.Limiter
	usage     UsageService
	admins    AdminPolicy
	freeLimit int
}

func newFixture(t *testing.T, freeLimit int) *fixture {
	t.Helper()
	db := testutil.DB(t)
	log := testutil.Logger(t)
	mr := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	f := &fixture{
		db:        db,
		log:       log,
		users:     repos.NewUserRepo(db, log),
		subs:      repos.NewNewsletterRepo(db, log),
		events:    repos.NewAnalyticsRepo(db, log),
		limiter:   quota.NewRedisLimiter(rdb, "test:", log),
		admins:    NewAdminPolicy([]string{"Owner@Kiwiz.app"}),
		freeLimit: freeLimit,
	}
	f.usage = NewUsageService(log, f.limiter, f.users, f.events, freeLimit)
	return f
}

func anonCtx(clientKey string) context.Context {
	return ctxutil.WithRequestData(context.Background(), &ctxutil.RequestData{ClientKey: clientKey})
}

func identityCtx(id *ctxutil.Identity) context.Context {
	return ctxutil.WithRequestData(context.Background(), &ctxutil.RequestData{Identity: id, ClientKey: "10.0.0.1"})
}

func requireAPIError(t *testing.T, err error, status int, code string) {
	t.Helper()
	require.Error(t, err)
	ae, ok := apierr.As(err)
	require.True(t, ok, "expected *apierr.Error, got %T: %v", err, err)
	require.Equal(t, status, ae.Status)
	require.Equal(t, code, ae.Code)
}

type fakeImages struct {
	mu    sync.Mutex
	calls []string
	err   error
}

func (f *fakeImages) GenerateImage(_ context.Context, prompt string) (openai.ImageGeneration, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, prompt)
	if f.err != nil {
		return openai.ImageGeneration{}, f.err
	}
	return openai.ImageGeneration{Bytes: []byte("png-bytes"), MimeType: "image/png"}, nil
}

type fakeStore struct {
	objects map[string][]byte
	err     error
}

func (s *fakeStore) Upload(_ context.Context, key, _ string, body io.Reader) error {
	if s.err != nil {
		return s.err
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, body); err != nil {
		return err
	}
	if s.objects == nil {
		s.objects = map[string][]byte{}
	}
	s.objects[key] = buf.Bytes()
	return nil
}

func (s *fakeStore) PublicURL(key string) string { return "https://cdn.test/" + key }

type fakeVerifier struct {
	tokens map[string]*ctxutil.Identity
}

func (v fakeVerifier) Verify(_ context.Context, raw string) (*ctxutil.Identity, error) {
	if id, ok := v.tokens[raw]; ok {
		return id, nil
	}
	return nil, errors.New("bad token")
}
