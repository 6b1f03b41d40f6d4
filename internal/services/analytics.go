package services

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/kiwiz-app/kiwiz-backend/internal/data/repos"
	types "github.com/kiwiz-app/kiwiz-backend/internal/domain"
	"github.com/kiwiz-app/kiwiz-backend/internal/domain/analytics"
	"github.com/kiwiz-app/kiwiz-backend/internal/platform/apierr"
	"github.com/kiwiz-app/kiwiz-backend/internal/platform/ctxutil"
	"github.com/kiwiz-app/kiwiz-backend/internal/platform/logger"
)

const (
	maxEventContent    = 500
	maxEventProperties = 4 << 10
)

// clientActions are the events the browser may report.
var clientActions = map[string]struct{}{
	analytics.ActionDownloadColoring: {},
	analytics.ActionDownloadTracing:  {},
	analytics.ActionPrint:            {},
}

type TrackInput struct {
	Action     string          `json:"action"`
	Content    string          `json:"content"`
	Properties json.RawMessage `json:"properties"`
}

type AnalyticsService interface {
	Track(ctx context.Context, in TrackInput) error
}

type analyticsService struct {
	log       *logger.Logger
	eventRepo repos.AnalyticsRepo
}

func NewAnalyticsService(log *logger.Logger, eventRepo repos.AnalyticsRepo) AnalyticsService {
	return &analyticsService{log: log.With("service", "AnalyticsService"), eventRepo: eventRepo}
}

func (as *analyticsService) Track(ctx context.Context, in TrackInput) error {
	action := strings.ToLower(strings.TrimSpace(in.Action))
	if _, ok := clientActions[action]; !ok {
		return apierr.New(http.StatusBadRequest, "invalid_action", ErrInvalidAction)
	}
	ev := &types.AnalyticsEvent{Action: action, Content: truncate(strings.TrimSpace(in.Content), maxEventContent)}

	if props := in.Properties; len(props) > 0 && string(props) != "null" {
		var obj map[string]any
		if len(props) > maxEventProperties || json.Unmarshal(props, &obj) != nil {
			return apierr.New(http.StatusBadRequest, "invalid_properties", nil)
		}
		ev.Properties = datatypes.JSON(props)
	}

	if rd := ctxutil.GetRequestData(ctx); rd != nil {
		ev.ClientKey = rd.ClientKey
		if rd.UserID != uuid.Nil {
			uid := rd.UserID
			ev.UserID = &uid
		}
	}
	return as.eventRepo.Create(ctx, nil, ev)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	s = s[:n]
	for len(s) > 0 && !utf8.ValidString(s) {
		s = s[:len(s)-1]
	}
	return s
}
