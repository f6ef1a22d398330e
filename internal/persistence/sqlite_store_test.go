package persistence

import (
	"context"
	"database/sql"
	"testing"

	_ "modernc.org/sqlite"

	"github.com/petrijr/asyncvalue/pkg/api"
)

func newTestSQLiteStore(t *testing.T) (*SQLiteSnapshotStore, *sql.DB) {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("sql.Open failed: %v", err)
	}
	// Every connection to :memory: is a separate database.
	db.SetMaxOpenConns(1)

	t.Cleanup(func() {
		_ = db.Close()
	})

	store, err := NewSQLiteSnapshotStore(db)
	if err != nil {
		t.Fatalf("NewSQLiteSnapshotStore failed: %v", err)
	}

	return store, db
}

func TestSQLiteSnapshotStore_Contract(t *testing.T) {
	store, _ := newTestSQLiteStore(t)
	exerciseSnapshotStore(t, store)
}

func TestSQLiteSnapshotStore_SchemaInitIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store, db := newTestSQLiteStore(t)

	if err := store.SaveSnapshot(ctx, api.Snapshot{Key: "users", Version: 3, Data: []byte("x")}); err != nil {
		t.Fatalf("SaveSnapshot failed: %v", err)
	}

	again, err := NewSQLiteSnapshotStore(db)
	if err != nil {
		t.Fatalf("second NewSQLiteSnapshotStore failed: %v", err)
	}

	got, err := again.LoadSnapshot(ctx, "users")
	if err != nil {
		t.Fatalf("LoadSnapshot failed: %v", err)
	}
	if got.Version != 3 || string(got.Data) != "x" {
		t.Fatalf("unexpected snapshot after re-init: %+v", got)
	}
}
