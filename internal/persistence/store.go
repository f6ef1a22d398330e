package persistence

import (
	"slices"
	"time"

	"github.com/petrijr/asyncvalue/pkg/api"
)

// Ensure every backend implements api.SnapshotStore.
var (
	_ api.SnapshotStore = (*InMemoryStore)(nil)
	_ api.SnapshotStore = (*SQLiteSnapshotStore)(nil)
	_ api.SnapshotStore = (*PostgresSnapshotStore)(nil)
	_ api.SnapshotStore = (*RedisSnapshotStore)(nil)
	_ api.SnapshotStore = (*MongoSnapshotStore)(nil)
	_ api.SnapshotStore = (*S3SnapshotStore)(nil)
)

// cloneSnapshot copies Data so callers cannot alias stored bytes.
func cloneSnapshot(s api.Snapshot) api.Snapshot {
	s.Data = slices.Clone(s.Data)
	return s
}

// savedAtToNanos maps the zero time to 0 so "never expires" survives
// backends that store integers.
func savedAtToNanos(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixNano()
}

func nanosToSavedAt(n int64) time.Time {
	if n == 0 {
		return time.Time{}
	}
	return time.Unix(0, n).UTC()
}
