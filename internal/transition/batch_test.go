package transition_test

import (
	"context"
	"errors"
	"testing"

	"storyforge/internal/pipeline"
	"storyforge/internal/stage"
	"storyforge/internal/testsupport"
	"storyforge/internal/transition"
)

func TestApplyBatchAllSucceed(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	svc := newService(t, store)

	first := testsupport.NewItem(t, store, "First Draft")
	second := testsupport.NewItemAtStage(t, store, "Second Draft", stage.StageAssetsReady)

	results, err := svc.ApplyBatch(context.Background(), []transition.Request{
		{ItemID: first.ID, Target: stage.StageIdeaSelected, Trigger: "editorial-pick"},
		{ItemID: second.ID, Target: stage.StageRendering, Trigger: "render-start"},
	})
	if err != nil {
		t.Fatalf("ApplyBatch: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("results length = %d, want 2", len(results))
	}
	for i, res := range results {
		if !res.Success {
			t.Fatalf("result %d not successful: %+v", i, res)
		}
		if res.AuditEntryID == "" {
			t.Fatalf("result %d missing audit entry id", i)
		}
	}

	got, err := store.GetByID(context.Background(), first.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Stage != stage.StageIdeaSelected {
		t.Fatalf("first item stage = %s", got.Stage)
	}
	got, err = store.GetByID(context.Background(), second.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Stage != stage.StageRendering {
		t.Fatalf("second item stage = %s", got.Stage)
	}
}

func TestApplyBatchRollsBackOnFailure(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	svc := newService(t, store)

	first := testsupport.NewItem(t, store, "Would Have Moved")
	firstHistory, err := store.History(context.Background(), first.ID, 0)
	if err != nil {
		t.Fatalf("History: %v", err)
	}

	results, err := svc.ApplyBatch(context.Background(), []transition.Request{
		{ItemID: first.ID, Target: stage.StageIdeaSelected, Trigger: "editorial-pick"},
		{ItemID: "no-such-item", Target: stage.StageIdeaSelected, Trigger: "editorial-pick"},
	})
	if err == nil {
		t.Fatal("expected batch failure")
	}
	if results != nil {
		t.Fatalf("results should be nil on rollback, got %v", results)
	}

	var batchErr *transition.BatchError
	if !errors.As(err, &batchErr) {
		t.Fatalf("error type = %T, want *BatchError", err)
	}
	if batchErr.Index != 1 || batchErr.ItemID != "no-such-item" {
		t.Fatalf("batch error identifies %d/%s", batchErr.Index, batchErr.ItemID)
	}
	if !errors.Is(err, pipeline.ErrNotFound) {
		t.Fatalf("batch error should wrap ErrNotFound, got %v", err)
	}

	// The first request had succeeded inside the transaction; rollback must
	// leave it byte for byte as before.
	reloaded, err := store.GetByID(context.Background(), first.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if reloaded.Stage != stage.StageDiscovered {
		t.Fatalf("first item stage after rollback = %s", reloaded.Stage)
	}
	after, err := store.History(context.Background(), first.ID, 0)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(after) != len(firstHistory) {
		t.Fatalf("audit history changed after rollback: %d -> %d", len(firstHistory), len(after))
	}
}

func TestApplyBatchSequentialVisibility(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	svc := newService(t, store)

	item := testsupport.NewItem(t, store, "Two Hops")
	results, err := svc.ApplyBatch(context.Background(), []transition.Request{
		{ItemID: item.ID, Target: stage.StageIdeaSelected, Trigger: "editorial-pick"},
		{ItemID: item.ID, Target: stage.StageScriptGenerating, Trigger: "generation-start"},
	})
	if err != nil {
		t.Fatalf("ApplyBatch: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("results length = %d", len(results))
	}
	if results[1].OldStage != stage.StageIdeaSelected {
		t.Fatalf("second request saw stage %s, want %s", results[1].OldStage, stage.StageIdeaSelected)
	}

	got, err := store.GetByID(context.Background(), item.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Stage != stage.StageScriptGenerating {
		t.Fatalf("final stage = %s", got.Stage)
	}
}

func TestApplyBatchInvalidEdgeFails(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	svc := newService(t, store)

	item := testsupport.NewItemAtStage(t, store, "Finished", stage.StageCompleted)
	_, err := svc.ApplyBatch(context.Background(), []transition.Request{
		{ItemID: item.ID, Target: stage.StageRendering, Trigger: "manual"},
	})
	var invalid *transition.InvalidTransitionError
	if !errors.As(err, &invalid) {
		t.Fatalf("error = %v, want invalid transition", err)
	}
}

func TestApplyBatchLimits(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	svc := newService(t, store, transition.WithMaxBatchSize(1))

	results, err := svc.ApplyBatch(context.Background(), nil)
	if err != nil || results != nil {
		t.Fatalf("empty batch: results=%v err=%v", results, err)
	}

	item := testsupport.NewItem(t, store, "Over Limit")
	_, err = svc.ApplyBatch(context.Background(), []transition.Request{
		{ItemID: item.ID, Target: stage.StageIdeaSelected, Trigger: "a"},
		{ItemID: item.ID, Target: stage.StageScriptGenerating, Trigger: "b"},
	})
	if !errors.Is(err, transition.ErrBatchTooLarge) {
		t.Fatalf("error = %v, want ErrBatchTooLarge", err)
	}
}
