package ports

import (
	"context"

	"github.com/aretw0/archsynth/pkg/domain"
)

// SnapshotStore persists captured searches, for inspection or resuming.
type SnapshotStore interface {
	// Save persists the snapshot under id, replacing any previous one.
	Save(ctx context.Context, id string, snap *domain.Snapshot) error

	// Load retrieves a snapshot.
	// Returns domain.ErrSnapshotNotFound if it does not exist.
	Load(ctx context.Context, id string) (*domain.Snapshot, error)

	// Delete removes a snapshot. Deleting a missing one is not an error.
	Delete(ctx context.Context, id string) error

	// List returns the stored snapshot IDs.
	List(ctx context.Context) ([]string, error)
}
