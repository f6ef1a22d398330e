package persistence

import (
	"context"
	"database/sql"
	"errors"

	"github.com/petrijr/asyncvalue/pkg/api"
)

// PostgresSnapshotStore is a SnapshotStore backed by PostgreSQL.
//
// It expects an *sql.DB that uses a PostgreSQL driver (for example,
// "github.com/jackc/pgx/v5/stdlib" or "github.com/lib/pq").
//
// The caller is responsible for:
//   - importing the driver for its side effects, e.g.:
//     _ "github.com/jackc/pgx/v5/stdlib"
//   - providing a DSN via sql.Open.
type PostgresSnapshotStore struct {
	db *sql.DB
}

// NewPostgresSnapshotStore initializes the required schema in the given
// database and returns a new PostgresSnapshotStore.
func NewPostgresSnapshotStore(db *sql.DB) (*PostgresSnapshotStore, error) {
	s := &PostgresSnapshotStore{db: db}
	if err := s.initSchema(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *PostgresSnapshotStore) initSchema() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS snapshots (
			key TEXT PRIMARY KEY,
			version INTEGER NOT NULL,
			saved_at BIGINT NOT NULL,
			data BYTEA
		);
	`)
	return err
}

func (s *PostgresSnapshotStore) SaveSnapshot(ctx context.Context, snap api.Snapshot) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO snapshots (key, version, saved_at, data)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (key) DO UPDATE SET
			version = EXCLUDED.version,
			saved_at = EXCLUDED.saved_at,
			data = EXCLUDED.data
	`,
		snap.Key,
		snap.Version,
		savedAtToNanos(snap.SavedAt),
		snap.Data,
	)
	return err
}

func (s *PostgresSnapshotStore) LoadSnapshot(ctx context.Context, key string) (*api.Snapshot, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT key, version, saved_at, data
		FROM snapshots
		WHERE key = $1
	`, key)

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

func (s *PostgresSnapshotStore) DeleteSnapshot(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM snapshots WHERE key = $1`, key)
	return err
}

func (s *PostgresSnapshotStore) ListSnapshotKeys(ctx context.Context) ([]string, error) {
	return queryKeys(ctx, s.db, `SELECT key FROM snapshots ORDER BY key`)
}
