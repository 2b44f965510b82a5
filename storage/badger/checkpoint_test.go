package badger

import (
	"context"
	"testing"

	"github.com/poiesic/tickerdex/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckpoint_SaveLoad(t *testing.T) {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)
	defer backend.Close()

	repo := NewCheckpointRepository(backend)
	ctx := context.Background()

	missing, err := repo.LoadCheckpoint(ctx, "listings.csv")
	require.NoError(t, err)
	assert.Nil(t, missing)

	err = repo.SaveCheckpoint(ctx, &core.Checkpoint{
		Source:   "listings.csv",
		RunID:    "run-1",
		Rows:     500,
		Accepted: 490,
		Rejected: 10,
	})
	require.NoError(t, err)

	loaded, err := repo.LoadCheckpoint(ctx, "listings.csv")
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, "run-1", loaded.RunID)
	assert.Equal(t, int64(500), loaded.Rows)
	assert.Equal(t, int64(490), loaded.Accepted)
	assert.Equal(t, int64(10), loaded.Rejected)
	assert.False(t, loaded.Completed)
	assert.False(t, loaded.UpdatedAt.IsZero())

	loaded.Completed = true
	require.NoError(t, repo.SaveCheckpoint(ctx, loaded))

	again, err := repo.LoadCheckpoint(ctx, "listings.csv")
	require.NoError(t, err)
	assert.True(t, again.Completed)

	other, err := repo.LoadCheckpoint(ctx, "other.csv")
	require.NoError(t, err)
	assert.Nil(t, other)
}
