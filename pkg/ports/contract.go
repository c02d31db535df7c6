package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/archsynth/pkg/domain"
	"github.com/aretw0/archsynth/pkg/graph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunSnapshotStoreContract runs a suite of tests to verify that a
// SnapshotStore implementation adheres to the interface contract.
func RunSnapshotStoreContract(t *testing.T, store SnapshotStore) {
	ctx := context.Background()
	id := "contract-" + time.Now().Format("20060102150405")

	sample := func(id string) *domain.Snapshot {
		return &domain.Snapshot{
			ID:        id,
			CreatedAt: time.Now().UTC().Truncate(time.Second),
			Report:    domain.Report{Outcome: domain.OutcomeSuccess, Backend: "topological"},
			Layers: []domain.LayerSnapshot{{
				Name:    "functional",
				Objects: []graph.Object{{ID: 1, Kind: graph.KindNode, Type: "component", Name: "x"}},
				Slots: []domain.SlotSnapshot{{
					Object: 1, Param: "platform", Value: "B", HasValue: true,
					Candidates: domain.NewSet("A", "B"), Failed: domain.NewSet("A"),
				}},
			}},
		}
	}

	t.Run("Save and Load", func(t *testing.T) {
		err := store.Save(ctx, id, sample(id))
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, id)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, id, loaded.ID)
		assert.Equal(t, domain.OutcomeSuccess, loaded.Report.Outcome)

		l, ok := loaded.Layer("functional")
		require.True(t, ok)
		require.Len(t, l.Slots, 1)
		assert.Equal(t, "B", l.Slots[0].Value)
		assert.True(t, l.Slots[0].Failed.Contains("A"))
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "missing-"+id)
		assert.ErrorIs(t, err, domain.ErrSnapshotNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, id, sample(id)))
		require.NoError(t, store.Delete(ctx, id), "Delete should not return error")

		_, err := store.Load(ctx, id)
		assert.ErrorIs(t, err, domain.ErrSnapshotNotFound, "Load after Delete should return ErrSnapshotNotFound")
		assert.NoError(t, store.Delete(ctx, id), "deleting twice is not an error")
	})

	t.Run("List", func(t *testing.T) {
		id1, id2 := id+"-1", id+"-2"
		require.NoError(t, store.Save(ctx, id1, sample(id1)))
		require.NoError(t, store.Save(ctx, id2, sample(id2)))
		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		ids, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, ids, id1)
		assert.Contains(t, ids, id2)
	})
}
