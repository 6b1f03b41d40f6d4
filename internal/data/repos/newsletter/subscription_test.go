package newsletter

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/kiwiz-app/kiwiz-backend/internal/data/repos/testutil"
)

func TestSubscriptionLifecycle(t *testing.T) {
	db := testutil.DB(t)
	repo := NewSubscriptionRepo(db, testutil.Logger(t))
	ctx := context.Background()

	first, err := repo.Subscribe(ctx, nil, "parent@example.com", nil)
	require.NoError(t, err)
	assert.True(t, first.Active())

	uid := uuid.New()
	again, err := repo.Subscribe(ctx, nil, "parent@example.com", &uid)
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID)
	require.NotNil(t, again.UserID)
	assert.Equal(t, uid, *again.UserID)

	n, err := repo.CountActive(ctx, nil)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	require.NoError(t, repo.Unsubscribe(ctx, nil, "parent@example.com"))
	assert.ErrorIs(t, repo.Unsubscribe(ctx, nil, "parent@example.com"), gorm.ErrRecordNotFound)

	n, err = repo.CountActive(ctx, nil)
	require.NoError(t, err)
	assert.Zero(t, n)

	back, err := repo.Subscribe(ctx, nil, "parent@example.com", nil)
	require.NoError(t, err)
	assert.True(t, back.Active())
	assert.Nil(t, back.UnsubscribedAt)

	n, err = repo.CountActive(ctx, nil)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}
