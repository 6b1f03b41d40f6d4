package services

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/kiwiz-app/kiwiz-backend/internal/domain/analytics"
	"github.com/kiwiz-app/kiwiz-backend/internal/observability"
	"github.com/kiwiz-app/kiwiz-backend/internal/platform/apierr"
	"github.com/kiwiz-app/kiwiz-backend/internal/platform/logger"
	"github.com/kiwiz-app/kiwiz-backend/internal/platform/openai"
	"github.com/kiwiz-app/kiwiz-backend/internal/prompts"
)

// ObjectStore keeps generated pages. A nil store makes the service answer
// with data: URLs instead.
type ObjectStore interface {
	Upload(ctx context.Context, key, contentType string, body io.Reader) error
	PublicURL(key string) string
}

type ColoringResult struct {
	Success        bool   `json:"success"`
	ImageURL       string `json:"imageUrl"`
	Prompt         string `json:"prompt"`
	OriginalPrompt string `json:"originalPrompt"`
}

type ColoringService interface {
	Generate(ctx context.Context, prompt string) (*ColoringResult, error)
}

type coloringService struct {
	log     *logger.Logger
	usage   UsageService
	catalog *prompts.Catalog
	images  openai.ImageClient
	store   ObjectStore
	now     func() time.Time
}

func NewColoringService(log *logger.Logger, usage UsageService, catalog *prompts.Catalog, images openai.ImageClient, store ObjectStore) ColoringService {
	return &coloringService{
		log:     log.With("service", "ColoringService"),
		usage:   usage,
		catalog: catalog,
		images:  images,
		store:   store,
		now:     time.Now,
	}
}

func (cs *coloringService) Generate(ctx context.Context, prompt string) (*ColoringResult, error) {
	if prompt == "" {
		return nil, promptRequired()
	}
	if cs.images == nil {
		return nil, apierr.New(http.StatusServiceUnavailable, "image_generation_unavailable", ErrImagesUnavailable)
	}
	res, err := cs.usage.Reserve(ctx)
	if err != nil {
		observability.Current().IncGeneration("coloring", outcomeOf(err))
		return nil, err
	}

	enhanced := cs.catalog.EnhanceColoring(prompt)
	imageURL, err := cs.generate(ctx, enhanced)
	if err != nil {
		cs.usage.Release(ctx, res)
		observability.Current().IncGeneration("coloring", "error")
		cs.log.Error("coloring generation failed", "error", err)
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, apierr.New(http.StatusBadGateway, "generation_failed", fmt.Errorf("%w: %w", ErrGenerationFailed, err))
	}

	observability.Current().IncGeneration("coloring", "ok")
	cs.usage.Commit(ctx, res, analytics.ActionGenerateColoring, prompt)
	return &ColoringResult{
		Success:        true,
		ImageURL:       imageURL,
		Prompt:         enhanced,
		OriginalPrompt: prompt,
	}, nil
}

func (cs *coloringService) generate(ctx context.Context, prompt string) (string, error) {
	img, err := cs.images.GenerateImage(ctx, prompt)
	if err != nil {
		return "", err
	}
	mime := img.MimeType
	if mime == "" {
		mime = "image/png"
	}
	if cs.store == nil {
		return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(img.Bytes), nil
	}
	key := fmt.Sprintf("coloring/%s/%s%s", cs.now().UTC().Format("2006/01/02"), uuid.NewString(), extensionFor(mime))
	if err := cs.store.Upload(ctx, key, mime, bytes.NewReader(img.Bytes)); err != nil {
		return "", fmt.Errorf("store coloring page: %w", err)
	}
	return cs.store.PublicURL(key), nil
}

func extensionFor(mime string) string {
	switch mime {
	case "image/jpeg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	default:
		return ".png"
	}
}
