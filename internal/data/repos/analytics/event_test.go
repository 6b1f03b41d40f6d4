package analytics

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/kiwiz-app/kiwiz-backend/internal/data/repos/testutil"
	types "github.com/kiwiz-app/kiwiz-backend/internal/domain"
	"github.com/kiwiz-app/kiwiz-backend/internal/domain/analytics"
)

func TestEventRepoCounts(t *testing.T) {
	db := testutil.DB(t)
	repo := NewEventRepo(db, testutil.Logger(t))
	ctx := context.Background()

	old := time.Now().Add(-48 * time.Hour)
	require.NoError(t, repo.Create(ctx, nil,
		&types.AnalyticsEvent{ClientKey: "ip:1", Action: analytics.ActionGenerateColoring, Content: "A cute puppy", CreatedAt: old},
		&types.AnalyticsEvent{ClientKey: "ip:1", Action: analytics.ActionGenerateTracing, Content: "Trace number 8"},
		&types.AnalyticsEvent{ClientKey: "ip:2", Action: analytics.ActionPrint, Properties: datatypes.JSON(`{"format":"jpg"}`)},
	))
	require.NoError(t, repo.Create(ctx, nil))

	total, err := repo.CountByAction(ctx, nil)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)

	gens, err := repo.CountByAction(ctx, nil, analytics.ActionGenerateColoring, analytics.ActionGenerateTracing)
	require.NoError(t, err)
	assert.EqualValues(t, 2, gens)

	recent, err := repo.CountSince(ctx, nil, time.Now().Add(-time.Hour), analytics.ActionGenerateColoring, analytics.ActionGenerateTracing)
	require.NoError(t, err)
	assert.EqualValues(t, 1, recent)
}
