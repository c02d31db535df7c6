package memory_test

import (
	"context"
	"testing"

	"github.com/aretw0/archsynth/pkg/adapters/memory"
	"github.com/aretw0/archsynth/pkg/domain"
	"github.com/aretw0/archsynth/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_Contract(t *testing.T) {
	ports.RunSnapshotStoreContract(t, memory.NewStore())
}

func TestMemoryStore_Isolation(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	snap := &domain.Snapshot{ID: "s", Problem: "before"}
	require.NoError(t, store.Save(ctx, "s", snap))
	snap.Problem = "after"

	loaded, err := store.Load(ctx, "s")
	require.NoError(t, err)
	assert.Equal(t, "before", loaded.Problem)

	loaded.Problem = "mutated"
	again, err := store.Load(ctx, "s")
	require.NoError(t, err)
	assert.Equal(t, "before", again.Problem)
}
