package connectedaccount

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"opencollective/internal/collective/models"
	id "opencollective/pkg/domain"
	"opencollective/pkg/platform/sentinel"
	txcontext "opencollective/pkg/platform/tx"
)

func newAccount(collectiveID id.CollectiveID, token string, at time.Time) *models.ConnectedAccount {
	return &models.ConnectedAccount{
		ID:           id.ConnectedAccountID(uuid.New()),
		CollectiveID: collectiveID,
		Service:      models.ServiceGitHub,
		Username:     "octocat",
		Token:        token,
		CreatedAt:    at,
	}
}

func TestFindByCollectiveAndService(t *testing.T) {
	ctx := context.Background()
	store := NewInMemory()
	collectiveID := id.CollectiveID(uuid.New())

	_, err := store.FindByCollectiveAndService(ctx, collectiveID, models.ServiceGitHub)
	require.ErrorIs(t, err, sentinel.ErrNotFound)

	now := time.Now()
	require.NoError(t, store.Create(ctx, newAccount(collectiveID, "old", now.Add(-time.Hour))))
	require.NoError(t, store.Create(ctx, newAccount(collectiveID, "new", now)))

	found, err := store.FindByCollectiveAndService(ctx, collectiveID, models.ServiceGitHub)
	require.NoError(t, err)
	assert.Equal(t, "new", found.Token)

	_, err = store.FindByCollectiveAndService(ctx, collectiveID, "twitter")
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
}

func TestCreateRollback(t *testing.T) {
	store := NewInMemory()
	collectiveID := id.CollectiveID(uuid.New())

	txCtx, journal := txcontext.WithJournal(context.Background())
	require.NoError(t, store.Create(txCtx, newAccount(collectiveID, "tok", time.Now())))
	journal.Rollback()

	_, err := store.FindByCollectiveAndService(context.Background(), collectiveID, models.ServiceGitHub)
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
}
