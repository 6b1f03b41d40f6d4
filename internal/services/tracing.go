package services

import (
	"context"
	"math/rand/v2"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/kiwiz-app/kiwiz-backend/internal/domain/analytics"
	"github.com/kiwiz-app/kiwiz-backend/internal/observability"
	"github.com/kiwiz-app/kiwiz-backend/internal/platform/logger"
	"github.com/kiwiz-app/kiwiz-backend/internal/tracing"
)

// WorksheetPath is where the rendered worksheet for a directive is served.
const WorksheetPath = "/api/worksheets/tracing.png"

type TracingResult struct {
	Success bool `json:"success"`
	tracing.Directive
	OriginalPrompt string `json:"originalPrompt"`
	ImageURL       string `json:"imageUrl"`
	UniqueID       string `json:"uniqueId"`
}

type TracingService interface {
	Generate(ctx context.Context, prompt string) (*TracingResult, error)
}

type tracingService struct {
	log   *logger.Logger
	usage UsageService
	now   func() time.Time
}

func NewTracingService(log *logger.Logger, usage UsageService) TracingService {
	return &tracingService{
		log:   log.With("service", "TracingService"),
		usage: usage,
		now:   time.Now,
	}
}

func (ts *tracingService) Generate(ctx context.Context, prompt string) (*TracingResult, error) {
	if prompt == "" {
		return nil, promptRequired()
	}
	res, err := ts.usage.Reserve(ctx)
	if err != nil {
		observability.Current().IncGeneration("tracing", outcomeOf(err))
		return nil, err
	}

	d, rule := tracing.InterpretWithRule(prompt)
	observability.Current().IncDirective(string(d.Type), string(d.Style), rule)
	observability.Current().IncGeneration("tracing", "ok")

	id := uniqueID(ts.now())
	ts.usage.Commit(ctx, res, analytics.ActionGenerateTracing, prompt)
	ts.log.Debug("tracing directive", "rule", rule, "type", d.Type, "style", d.Style)

	return &TracingResult{
		Success:        true,
		Directive:      d,
		OriginalPrompt: prompt,
		ImageURL:       WorksheetURL(d, id),
		UniqueID:       id,
	}, nil
}

// WorksheetURL is the relative URL that renders d.
func WorksheetURL(d tracing.Directive, id string) string {
	q := url.Values{}
	q.Set("text", d.Content)
	q.Set("type", string(d.Type))
	q.Set("style", string(d.Style))
	if id != "" {
		q.Set("id", id)
	}
	return WorksheetPath + "?" + q.Encode()
}

const idAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// uniqueID is the epoch milliseconds followed by nine random base-36 chars.
func uniqueID(now time.Time) string {
	var b strings.Builder
	b.WriteString(strconv.FormatInt(now.UnixMilli(), 10))
	for i := 0; i < 9; i++ {
		b.WriteByte(idAlphabet[rand.IntN(len(idAlphabet))])
	}
	return b.String()
}
