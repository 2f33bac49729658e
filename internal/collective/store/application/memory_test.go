package application

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"opencollective/internal/collective/models"
	id "opencollective/pkg/domain"
	txcontext "opencollective/pkg/platform/tx"
)

func TestCreateAndList(t *testing.T) {
	ctx := context.Background()
	store := NewInMemory()
	collectiveID := id.CollectiveID(uuid.New())

	app := &models.HostApplication{
		ID:           uuid.New(),
		CollectiveID: collectiveID,
		HostID:       id.CollectiveID(uuid.New()),
		Status:       models.ApplicationPending,
		Message:      "please host us",
		CreatedAt:    time.Now(),
	}
	require.NoError(t, store.Create(ctx, app))

	apps, err := store.ListByCollective(ctx, collectiveID)
	require.NoError(t, err)
	require.Len(t, apps, 1)
	assert.Equal(t, "please host us", apps[0].Message)

	other, err := store.ListByCollective(ctx, id.CollectiveID(uuid.New()))
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestRollbackDropsApplication(t *testing.T) {
	store := NewInMemory()
	collectiveID := id.CollectiveID(uuid.New())

	txCtx, journal := txcontext.WithJournal(context.Background())
	require.NoError(t, store.Create(txCtx, &models.HostApplication{ID: uuid.New(), CollectiveID: collectiveID}))
	journal.Rollback()

	apps, err := store.ListByCollective(context.Background(), collectiveID)
	require.NoError(t, err)
	assert.Empty(t, apps)
}
