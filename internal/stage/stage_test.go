package stage_test

import (
	"testing"

	"storyforge/internal/stage"
)

func TestAllStagesReturnsCopy(t *testing.T) {
	first := stage.AllStages()
	first[0] = stage.Stage("mutated")
	second := stage.AllStages()
	if second[0] != stage.StageDiscovered {
		t.Error("AllStages leaked internal state")
	}
}

func TestProcessingStages(t *testing.T) {
	declared := stage.ProcessingStages()
	expected := []stage.Stage{stage.StageScriptGenerating, stage.StageRendering}
	if len(declared) != len(expected) {
		t.Fatalf("expected %v, got %v", expected, declared)
	}
	for i, s := range expected {
		if declared[i] != s {
			t.Fatalf("expected %v, got %v", expected, declared)
		}
	}
	for _, s := range stage.AllStages() {
		want := s == stage.StageScriptGenerating || s == stage.StageRendering
		if stage.IsProcessing(s) != want {
			t.Errorf("IsProcessing(%s) = %v", s, !want)
		}
	}
}

func TestDisplayName(t *testing.T) {
	cases := []struct {
		stage    stage.Stage
		expected string
	}{
		{stage.StageDiscovered, "Discovered"},
		{stage.StageIdeaSelected, "Idea Selected"},
		{stage.StageScriptGenerationFailed, "Script Generation Failed"},
		{stage.StageAssetsReady, "Assets Ready"},
		{stage.Stage("some_legacy_thing"), "Some Legacy Thing"},
		{stage.Stage(""), "Unknown"},
	}
	for _, tc := range cases {
		if got := tc.stage.DisplayName(); got != tc.expected {
			t.Errorf("DisplayName(%q) = %q, expected %q", tc.stage, got, tc.expected)
		}
	}
}

func TestIsCanonical(t *testing.T) {
	if !stage.IsCanonical(stage.StageRendering) {
		t.Error("rendering should be canonical")
	}
	if stage.IsCanonical(stage.Stage("renderin")) {
		t.Error("misspelled stage should not be canonical")
	}
}
