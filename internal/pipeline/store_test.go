package pipeline_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"storyforge/internal/pipeline"
	"storyforge/internal/stage"
	"storyforge/internal/testsupport"
)

func TestNewItemRecordsIngestion(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))

	item, err := store.NewItem(context.Background(), "  Desert Documentary  ", "a film about dunes", "rss-feed")
	if err != nil {
		t.Fatalf("NewItem: %v", err)
	}
	if item.ID == "" {
		t.Fatal("item id not assigned")
	}
	if item.Title != "Desert Documentary" {
		t.Fatalf("title = %q, want trimmed", item.Title)
	}
	if item.Stage != stage.StageDiscovered {
		t.Fatalf("stage = %s, want %s", item.Stage, stage.StageDiscovered)
	}

	reloaded, err := store.GetByID(context.Background(), item.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if reloaded.Title != item.Title || reloaded.Stage != item.Stage {
		t.Fatalf("reloaded item differs: %+v", reloaded)
	}

	history, err := store.History(context.Background(), item.ID, 0)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("history length = %d, want 1", len(history))
	}
	entry := history[0]
	if entry.OldStage != "" || entry.NewStage != stage.StageDiscovered {
		t.Fatalf("ingestion audit stages = %q -> %q", entry.OldStage, entry.NewStage)
	}
	if entry.TriggerEvent != pipeline.TriggerIngest {
		t.Fatalf("ingestion trigger = %q", entry.TriggerEvent)
	}
}

func TestNewItemRequiresTitle(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	if _, err := store.NewItem(context.Background(), "   ", "content", "src"); err == nil {
		t.Fatal("expected error for blank title")
	}
}

func TestGetByIDNotFound(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	_, err := store.GetByID(context.Background(), "missing")
	if !errors.Is(err, pipeline.ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}
}

func TestListFiltersByStage(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	testsupport.NewItem(t, store, "One")
	testsupport.NewItemAtStage(t, store, "Two", stage.StageRendering)
	testsupport.NewItemAtStage(t, store, "Three", stage.StageCompleted)

	all, err := store.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("unfiltered list length = %d", len(all))
	}

	subset, err := store.List(context.Background(), stage.StageRendering, stage.StageCompleted)
	if err != nil {
		t.Fatalf("List filtered: %v", err)
	}
	if len(subset) != 2 {
		t.Fatalf("filtered list length = %d", len(subset))
	}
	for _, item := range subset {
		if item.Stage != stage.StageRendering && item.Stage != stage.StageCompleted {
			t.Fatalf("unexpected stage in filtered list: %s", item.Stage)
		}
	}
}

func TestWithTxRollsBackOnError(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	item := testsupport.NewItem(t, store, "Rollback Target")

	boom := errors.New("boom")
	ctx := context.Background()
	err := store.WithTx(ctx, func(tx *pipeline.Tx) error {
		if err := tx.SetItemStage(ctx, item.ID, stage.StageIdeaSelected, item.UpdatedAt); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("error = %v, want boom", err)
	}

	reloaded, err := store.GetByID(ctx, item.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if reloaded.Stage != stage.StageDiscovered {
		t.Fatalf("stage after rollback = %s", reloaded.Stage)
	}
}

func TestSetItemStageUnknownItem(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()
	err := store.WithTx(ctx, func(tx *pipeline.Tx) error {
		return tx.SetItemStage(ctx, "missing", stage.StageFailed, time.Now().UTC())
	})
	if !errors.Is(err, pipeline.ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}
}
