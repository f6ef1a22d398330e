package persistence

import (
	"context"
	"database/sql"
	"errors"

	"github.com/petrijr/asyncvalue/pkg/api"
)

// SQLiteSnapshotStore is a SnapshotStore backed by SQLite.
//
// It expects an *sql.DB that uses a SQLite driver (for example,
// "modernc.org/sqlite"). The caller is responsible for importing
// the driver, e.g.:
//
//	import _ "modernc.org/sqlite"
type SQLiteSnapshotStore struct {
	db *sql.DB
}

// NewSQLiteSnapshotStore initializes the required schema in the given
// database and returns a new SQLiteSnapshotStore.
func NewSQLiteSnapshotStore(db *sql.DB) (*SQLiteSnapshotStore, error) {
	s := &SQLiteSnapshotStore{db: db}
	if err := s.initSchema(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *SQLiteSnapshotStore) initSchema() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS snapshots (
			key TEXT PRIMARY KEY,
			version INTEGER NOT NULL,
			saved_at INTEGER NOT NULL,
			data BLOB
		);`,
	)
	return err
}

func (s *SQLiteSnapshotStore) SaveSnapshot(ctx context.Context, snap api.Snapshot) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO snapshots (key, version, saved_at, data)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			version = excluded.version,
			saved_at = excluded.saved_at,
			data = excluded.data`,
		snap.Key,
		snap.Version,
		savedAtToNanos(snap.SavedAt),
		snap.Data,
	)
	return err
}

func (s *SQLiteSnapshotStore) LoadSnapshot(ctx context.Context, key string) (*api.Snapshot, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT key, version, saved_at, data
		FROM snapshots
		WHERE key = ?`,
		key,
	)

	var snap api.Snapshot
	var savedAt int64
	if err := row.Scan(&snap.Key, &snap.Version, &savedAt, &snap.Data); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, api.ErrSnapshotNotFound
		}
		return nil, err
	}
	snap.SavedAt = nanosToSavedAt(savedAt)

	return &snap, nil
}

func (s *SQLiteSnapshotStore) DeleteSnapshot(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM snapshots WHERE key = ?`, key)
	return err
}

func (s *SQLiteSnapshotStore) ListSnapshotKeys(ctx context.Context) ([]string, error) {
	return queryKeys(ctx, s.db, `SELECT key FROM snapshots ORDER BY key`)
}

// queryKeys collects a single TEXT column.
func queryKeys(ctx context.Context, db *sql.DB, query string) ([]string, error) {
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	keys := []string{}
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return keys, nil
}
