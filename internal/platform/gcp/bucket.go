package gcp

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"github.com/kiwiz-app/kiwiz-backend/internal/platform/logger"
)

type StorageMode string

const (
	StorageModeGCS         StorageMode = "gcs"
	StorageModeGCSEmulator StorageMode = "gcs_emulator"
)

type BucketConfig struct {
	Name string
	Mode StorageMode
	// EmulatorHost is required in emulator mode, e.g. http://fake-gcs:4443.
	EmulatorHost string
	// PublicBaseURL overrides the host used in public object URLs (CDN).
	PublicBaseURL string
	Credentials   string
}

func (c BucketConfig) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("bucket name is required")
	}
	switch c.Mode {
	case "", StorageModeGCS:
	case StorageModeGCSEmulator:
		u, err := url.Parse(strings.TrimSpace(c.EmulatorHost))
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("invalid emulator host %q; expected absolute URL like http://localhost:4443", c.EmulatorHost)
		}
	default:
		return fmt.Errorf("unsupported storage mode %q", c.Mode)
	}
	if raw := strings.TrimSpace(c.PublicBaseURL); raw != "" {
		u, err := url.Parse(raw)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("invalid public base url %q", raw)
		}
	}
	return nil
}

// Bucket stores generated pages in a single GCS bucket.
type Bucket struct {
	log           *logger.Logger
	client        *storage.Client
	name          string
	mode          StorageMode
	emulatorHost  string
	publicBaseURL string
}

func NewBucket(ctx context.Context, log *logger.Logger, cfg BucketConfig) (*Bucket, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate bucket config: %w", err)
	}
	if cfg.Mode == "" {
		cfg.Mode = StorageModeGCS
	}
	client, err := newStorageClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	b := &Bucket{
		log:           log.With("service", "Bucket"),
		client:        client,
		name:          cfg.Name,
		mode:          cfg.Mode,
		emulatorHost:  strings.TrimRight(strings.TrimSpace(cfg.EmulatorHost), "/"),
		publicBaseURL: strings.TrimRight(strings.TrimSpace(cfg.PublicBaseURL), "/"),
	}
	b.log.Info("Object storage initialized", "mode", cfg.Mode, "bucket", cfg.Name, "public_base_url", b.publicBaseURL)
	return b, nil
}

func newStorageClient(ctx context.Context, cfg BucketConfig) (*storage.Client, error) {
	if cfg.Mode == StorageModeGCSEmulator {
		// The storage client reads the emulator endpoint from the environment.
		_ = os.Setenv("STORAGE_EMULATOR_HOST", strings.TrimRight(strings.TrimSpace(cfg.EmulatorHost), "/"))
		return storage.NewClient(ctx, option.WithoutAuthentication())
	}
	opts := append(ClientOptions(cfg.Credentials), option.WithScopes(storage.ScopeReadWrite))
	return storage.NewClient(ctx, opts...)
}

func (b *Bucket) Upload(ctx context.Context, key, contentType string, r io.Reader) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	key = strings.TrimLeft(strings.TrimSpace(key), "/")
	w := b.client.Bucket(b.name).Object(key).NewWriter(ctx)
	w.ContentType = contentType
	w.CacheControl = "public, max-age=31536000, immutable"
	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		return fmt.Errorf("failed to write data to GCS: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to close GCS writer: %w", err)
	}
	return nil
}

func (b *Bucket) PublicURL(key string) string {
	key = strings.TrimLeft(strings.TrimSpace(key), "/")
	if b.mode == StorageModeGCSEmulator {
		base := b.publicBaseURL
		if base == "" {
			base = b.emulatorHost
		}
		return fmt.Sprintf("%s/storage/v1/b/%s/o/%s?alt=media", base, url.PathEscape(b.name), url.PathEscape(key))
	}
	if b.publicBaseURL != "" {
		return fmt.Sprintf("%s/%s/%s", b.publicBaseURL, b.name, key)
	}
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", b.name, key)
}

func (b *Bucket) Close() error {
	if b == nil || b.client == nil {
		return nil
	}
	return b.client.Close()
}
