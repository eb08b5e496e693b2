package stage_test

import (
	"errors"
	"testing"

	"storyforge/internal/stage"
)

func TestNormalizeCanonicalValues(t *testing.T) {
	for _, s := range stage.AllStages() {
		got, err := stage.Normalize(string(s))
		if err != nil {
			t.Fatalf("Normalize(%q) failed: %v", s, err)
		}
		if got != s {
			t.Fatalf("Normalize(%q) = %q", s, got)
		}
	}
}

func TestNormalizeVariants(t *testing.T) {
	cases := []struct {
		raw      string
		expected stage.Stage
	}{
		{"idea-selected", stage.StageIdeaSelected},
		{"ideaSelected", stage.StageIdeaSelected},
		{"Idea Selected", stage.StageIdeaSelected},
		{"IDEA_SELECTED", stage.StageIdeaSelected},
		{"  script_generating  ", stage.StageScriptGenerating},
		{"script-generation-failed", stage.StageScriptGenerationFailed},
		{"scriptGenerationFailed", stage.StageScriptGenerationFailed},
		{"REJECTED", stage.StageRejected},
		{"assets-ready", stage.StageAssetsReady},
		{"Completed", stage.StageCompleted},
	}
	for _, tc := range cases {
		got, err := stage.Normalize(tc.raw)
		if err != nil {
			t.Errorf("Normalize(%q) failed: %v", tc.raw, err)
			continue
		}
		if got != tc.expected {
			t.Errorf("Normalize(%q) = %q, expected %q", tc.raw, got, tc.expected)
		}
	}
}

func TestNormalizeLegacyAliases(t *testing.T) {
	cases := []struct {
		raw      string
		expected stage.Stage
	}{
		{"new", stage.StageDiscovered},
		{"pending", stage.StageDiscovered},
		{"approved", stage.StageScriptApproved},
		{"script-ready", stage.StageScriptGenerated},
		{"declined", stage.StageRejected},
		{"done", stage.StageCompleted},
		{"published", stage.StageCompleted},
		{"error", stage.StageFailed},
	}
	for _, tc := range cases {
		got, err := stage.Normalize(tc.raw)
		if err != nil {
			t.Errorf("Normalize(%q) failed: %v", tc.raw, err)
			continue
		}
		if got != tc.expected {
			t.Errorf("Normalize(%q) = %q, expected %q", tc.raw, got, tc.expected)
		}
	}
}

func TestNormalizeIsIdempotent(t *testing.T) {
	inputs := []string{
		"new", "ideaSelected", "script-generation-failed", "DONE", "rendering",
		"assets ready", "error",
	}
	for _, raw := range inputs {
		once, err := stage.Normalize(raw)
		if err != nil {
			t.Fatalf("Normalize(%q) failed: %v", raw, err)
		}
		twice, err := stage.Normalize(string(once))
		if err != nil {
			t.Fatalf("Normalize(Normalize(%q)) failed: %v", raw, err)
		}
		if once != twice {
			t.Fatalf("Normalize not idempotent for %q: %q then %q", raw, once, twice)
		}
	}
}

func TestNormalizeUnknownValues(t *testing.T) {
	for _, raw := range []string{"", "   ", "warp-speed", "completed2", "???"} {
		if _, err := stage.Normalize(raw); !errors.Is(err, stage.ErrUnknownStage) {
			t.Errorf("Normalize(%q): expected ErrUnknownStage, got %v", raw, err)
		}
	}
}
