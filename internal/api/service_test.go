package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"storyforge/internal/api"
	"storyforge/internal/pipeline"
	"storyforge/internal/stage"
	"storyforge/internal/testsupport"
)

func TestParseStageNormalizesOnce(t *testing.T) {
	st, err := api.ParseStage("Script-Generated")
	if err != nil {
		t.Fatalf("ParseStage: %v", err)
	}
	if st != stage.StageScriptGenerated {
		t.Fatalf("parsed stage = %s", st)
	}

	if _, err := api.ParseStage("warp_drive"); !errors.Is(err, stage.ErrUnknownStage) {
		t.Fatalf("error = %v, want ErrUnknownStage", err)
	}
}

func TestDescribeAndList(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	svc := api.NewItemService(store)

	item := testsupport.NewItemAtStage(t, store, "Volcano Short", stage.StageRendering)
	view, err := svc.Describe(context.Background(), item.ID)
	if err != nil {
		t.Fatalf("Describe: %v", err)
	}
	if view.ID != item.ID || view.Stage != "rendering" {
		t.Fatalf("view = %+v", view)
	}
	if view.StageName != "Rendering" {
		t.Fatalf("stage name = %q", view.StageName)
	}
	if view.CreatedAt == "" || view.UpdatedAt == "" {
		t.Fatalf("timestamps missing: %+v", view)
	}

	if _, err := svc.Describe(context.Background(), "missing"); !errors.Is(err, pipeline.ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}

	testsupport.NewItem(t, store, "Second")
	views, err := svc.List(context.Background(), stage.StageRendering)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(views) != 1 || views[0].ID != item.ID {
		t.Fatalf("filtered views = %+v", views)
	}
}

func TestHistoryAndPageViews(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	svc := api.NewItemService(store)

	item := testsupport.NewItem(t, store, "Traceable")
	entries, err := svc.History(context.Background(), item.ID, 10)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("history length = %d", len(entries))
	}
	if entries[0].NewStage != "discovered" || entries[0].TriggerEvent != pipeline.TriggerIngest {
		t.Fatalf("ingest entry = %+v", entries[0])
	}
	if entries[0].OldStage != "" {
		t.Fatalf("ingest old stage = %q", entries[0].OldStage)
	}

	page, err := svc.Page(context.Background(), stage.StageDiscovered, 1, 10)
	if err != nil {
		t.Fatalf("Page: %v", err)
	}
	if page.TotalCount != 1 || page.HasMore || len(page.Items) != 1 {
		t.Fatalf("page = %+v", page)
	}
}

func TestDistributionOrderedCanonically(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	svc := api.NewItemService(store)
	testsupport.NewItem(t, store, "Only One")

	counts, err := svc.Distribution(context.Background())
	if err != nil {
		t.Fatalf("Distribution: %v", err)
	}
	all := stage.AllStages()
	if len(counts) != len(all) {
		t.Fatalf("distribution length = %d, want %d", len(counts), len(all))
	}
	for i, sc := range counts {
		if sc.Stage != string(all[i]) {
			t.Fatalf("index %d stage = %s, want %s", i, sc.Stage, all[i])
		}
		if sc.Name == "" {
			t.Fatalf("stage %s missing display name", sc.Stage)
		}
	}
	if counts[0].Count != 1 {
		t.Fatalf("discovered count = %d", counts[0].Count)
	}
}

func TestViewsSerializeAsCamelCase(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	svc := api.NewItemService(store)
	item := testsupport.NewItem(t, store, "Wire Format")

	view, err := svc.Describe(context.Background(), item.ID)
	if err != nil {
		t.Fatalf("Describe: %v", err)
	}
	raw, err := json.Marshal(view)
	if err != nil {
		t.Fatalf("marshal view: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unmarshal view: %v", err)
	}
	for _, key := range []string{"id", "title", "stage", "stageName", "createdAt", "updatedAt"} {
		if _, ok := decoded[key]; !ok {
			t.Fatalf("serialized view missing %q: %s", key, raw)
		}
	}
}

func TestCheckExistAndHealthViews(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	svc := api.NewItemService(store)
	a := testsupport.NewItem(t, store, "Known")
	testsupport.NewItemAtStage(t, store, "Finished", stage.StageCompleted)

	check, err := svc.CheckExist(context.Background(), []string{a.ID, "ghost"})
	if err != nil {
		t.Fatalf("CheckExist: %v", err)
	}
	if len(check.Valid) != 1 || len(check.Invalid) != 1 {
		t.Fatalf("check = %+v", check)
	}

	health, err := svc.Health(context.Background())
	if err != nil {
		t.Fatalf("Health: %v", err)
	}
	if health.Total != 2 || health.Completed != 1 {
		t.Fatalf("health = %+v", health)
	}
}
