package api

import (
	"context"
	"errors"
	"time"
)

// ErrSnapshotNotFound is returned by SnapshotStore.LoadSnapshot when no
// snapshot exists under the key.
var ErrSnapshotNotFound = errors.New("snapshot not found")

// Snapshot is a persisted, encoded state.
type Snapshot struct {
	Key string

	// Version is the schema version stamped by a version transform.
	// Zero means unversioned.
	Version int

	// SavedAt is stamped by an expire transform. Zero means never expires.
	SavedAt time.Time

	Data []byte
}

// SnapshotStore persists snapshots by key.
type SnapshotStore interface {
	// SaveSnapshot inserts or replaces the snapshot under snap.Key.
	SaveSnapshot(ctx context.Context, snap Snapshot) error
	// LoadSnapshot returns ErrSnapshotNotFound if key is absent.
	LoadSnapshot(ctx context.Context, key string) (*Snapshot, error)
	// DeleteSnapshot is idempotent.
	DeleteSnapshot(ctx context.Context, key string) error
	// ListSnapshotKeys returns all keys in ascending order.
	ListSnapshotKeys(ctx context.Context) ([]string, error)
}
