package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/kiwiz-app/kiwiz-backend/internal/platform/gcp"
	"github.com/kiwiz-app/kiwiz-backend/internal/platform/logger"
	"github.com/kiwiz-app/kiwiz-backend/internal/platform/oidc"
	"github.com/kiwiz-app/kiwiz-backend/internal/platform/openai"
	"github.com/kiwiz-app/kiwiz-backend/internal/platform/sendgrid"
	"github.com/kiwiz-app/kiwiz-backend/internal/quota"
	"github.com/kiwiz-app/kiwiz-backend/internal/services"
)

// Clients holds the external dependencies. Optional ones are nil interfaces
// when not configured.
type Clients struct {
	Redis    *goredis.Client
	Limiter  quota.Limiter
	Images   openai.ImageClient
	Store    services.ObjectStore
	Verifier services.TokenVerifier
	Mailer   services.Mailer

	bucket *gcp.Bucket
}

func wireClients(ctx context.Context, log *logger.Logger, cfg Config) (Clients, error) {
	log.Info("Wiring clients...")
	var out Clients

	// Redis
	out.Limiter = quota.Unlimited{}
	if addr := strings.TrimSpace(cfg.Redis.Addr); addr != "" {
		rdb, err := quota.NewRedisClient(ctx, addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return Clients{}, fmt.Errorf("init redis: %w", err)
		}
		out.Redis = rdb
		out.Limiter = quota.NewRedisLimiter(rdb, cfg.Redis.Prefix, log)
	} else {
		log.Warn("REDIS_ADDR not set; daily free limit is not enforced")
	}

	// Images
	if strings.TrimSpace(cfg.Images.APIKey) != "" {
		images, err := openai.NewClient(log, openai.Config{
			BaseURL:        cfg.Images.BaseURL,
			APIKey:         cfg.Images.APIKey,
			Model:          cfg.Images.Model,
			Size:           cfg.Images.Size,
			MaxRetries:     cfg.Images.MaxRetries,
			Timeout:        cfg.Images.Timeout,
			InitialBackoff: cfg.Images.InitialBackoff,
		})
		if err != nil {
			out.Close()
			return Clients{}, fmt.Errorf("init image client: %w", err)
		}
		out.Images = images
	} else {
		log.Warn("OPENAI_API_KEY not set; coloring generation is disabled")
	}

	// Gcs
	bucket, err := resolveBucket(ctx, log, cfg.Storage.BucketConfig())
	if err != nil {
		out.Close()
		return Clients{}, err
	}
	if bucket != nil {
		out.bucket = bucket
		out.Store = bucket
	}

	// Identity provider
	if strings.TrimSpace(cfg.Auth.Issuer) != "" {
		v, err := oidc.NewVerifier(&http.Client{Timeout: 10 * time.Second}, oidc.Config{
			Issuer:   cfg.Auth.Issuer,
			Audience: cfg.Auth.Audience,
			Leeway:   cfg.Auth.Leeway,
		})
		if err != nil {
			out.Close()
			return Clients{}, fmt.Errorf("init token verifier: %w", err)
		}
		out.Verifier = v
	} else {
		log.Warn("AUTH_ISSUER not set; signed-in routes will reject every request")
	}

	// Mail
	if strings.TrimSpace(cfg.Mail.SendGridAPIKey) != "" {
		mailer, err := sendgrid.New(log, sendgrid.Config{
			APIKey:     cfg.Mail.SendGridAPIKey,
			BaseURL:    cfg.Mail.BaseURL,
			FromEmail:  cfg.Mail.FromEmail,
			FromName:   cfg.Mail.FromName,
			MaxRetries: cfg.Mail.MaxRetries,
		})
		if err != nil {
			out.Close()
			return Clients{}, fmt.Errorf("init mailer: %w", err)
		}
		out.Mailer = mailer
	}

	return out, nil
}

func (c Clients) Close() error {
	var errs []error
	if c.bucket != nil {
		errs = append(errs, c.bucket.Close())
	}
	if c.Redis != nil {
		errs = append(errs, c.Redis.Close())
	}
	return errors.Join(errs...)
}
