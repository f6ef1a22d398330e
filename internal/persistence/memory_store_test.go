package persistence

import (
	"context"
	"testing"

	"github.com/petrijr/asyncvalue/pkg/api"
)

func TestInMemoryStore_Contract(t *testing.T) {
	exerciseSnapshotStore(t, NewInMemoryStore())
}

func TestInMemoryStore_DoesNotAliasData(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()

	data := []byte("abc")
	if err := store.SaveSnapshot(ctx, api.Snapshot{Key: "k", Data: data}); err != nil {
		t.Fatalf("SaveSnapshot failed: %v", err)
	}
	data[0] = 'x'

	got, err := store.LoadSnapshot(ctx, "k")
	if err != nil {
		t.Fatalf("LoadSnapshot failed: %v", err)
	}
	if string(got.Data) != "abc" {
		t.Fatalf("expected stored data to be isolated from caller, got %q", got.Data)
	}

	got.Data[0] = 'y'
	again, _ := store.LoadSnapshot(ctx, "k")
	if string(again.Data) != "abc" {
		t.Fatalf("expected loaded data to be a copy, got %q", again.Data)
	}
}
