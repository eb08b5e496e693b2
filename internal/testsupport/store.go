package testsupport

import (
	"context"
	"testing"
	"time"

	"storyforge/internal/config"
	"storyforge/internal/pipeline"
	"storyforge/internal/stage"
)

// MustOpenStore opens a pipeline.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *pipeline.Store {
	t.Helper()

	store, err := pipeline.Open(cfg)
	if err != nil {
		t.Fatalf("pipeline.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// NewItem creates a discovered item for tests using the provided store.
func NewItem(t testing.TB, store *pipeline.Store, title string) *pipeline.Item {
	t.Helper()

	item, err := store.NewItem(context.Background(), title, "test content", "test-source")
	if err != nil {
		t.Fatalf("store.NewItem: %v", err)
	}
	return item
}

// NewItemAtStage creates an item and moves it directly to the given stage via
// the store's transaction API, recording a single seed audit entry.
func NewItemAtStage(t testing.TB, store *pipeline.Store, title string, target stage.Stage) *pipeline.Item {
	t.Helper()

	item := NewItem(t, store, title)
	if target == stage.StageDiscovered {
		return item
	}

	ctx := context.Background()
	now := time.Now().UTC()
	err := store.WithTx(ctx, func(tx *pipeline.Tx) error {
		if err := tx.SetItemStage(ctx, item.ID, target, now); err != nil {
			return err
		}
		return tx.InsertAudit(ctx, &pipeline.AuditEntry{
			ID:           item.ID + "-seed",
			ItemID:       item.ID,
			OldStage:     stage.StageDiscovered,
			NewStage:     target,
			TriggerEvent: "test-seed",
			CreatedAt:    now,
		})
	})
	if err != nil {
		t.Fatalf("seed stage %s: %v", target, err)
	}

	seeded, err := store.GetByID(ctx, item.ID)
	if err != nil {
		t.Fatalf("reload seeded item: %v", err)
	}
	return seeded
}
