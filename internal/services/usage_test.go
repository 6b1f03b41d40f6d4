package services

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	types "github.com/kiwiz-app/kiwiz-backend/internal/domain"
)

func TestUsageDefaultsToFreeDailyAllowance(t *testing.T) {
	f := newFixture(t, 0)
	ctx := anonCtx("10.1.1.1")

	report, err := f.usage.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, types.PlanFree, report.Plan)
	assert.Equal(t, types.FreeDailyGenerations, report.Limit)
	assert.Equal(t, types.FreeDailyGenerations, report.Remaining)

	for i := 0; i < types.FreeDailyGenerations; i++ {
		_, err := f.usage.Reserve(ctx)
		require.NoError(t, err)
	}
	_, err = f.usage.Reserve(ctx)
	requireAPIError(t, err, http.StatusPaymentRequired, "free_limit_reached")
}

func TestUsageReleaseRefundsReservation(t *testing.T) {
	f := newFixture(t, 1)
	ctx := anonCtx("10.1.1.2")

	res, err := f.usage.Reserve(ctx)
	require.NoError(t, err)
	f.usage.Release(ctx, res)

	_, err = f.usage.Reserve(ctx)
	require.NoError(t, err)
}
