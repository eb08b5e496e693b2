package stage_test

import (
	"testing"

	"storyforge/internal/stage"
)

func TestAllowedEdges(t *testing.T) {
	cases := []struct {
		from stage.Stage
		to   []stage.Stage
	}{
		{stage.StageDiscovered, []stage.Stage{stage.StageIdeaSelected, stage.StageRejected}},
		{stage.StageIdeaSelected, []stage.Stage{stage.StageScriptGenerating, stage.StageRejected}},
		{stage.StageScriptGenerating, []stage.Stage{stage.StageScriptGenerated, stage.StageScriptGenerationFailed}},
		{stage.StageScriptGenerated, []stage.Stage{stage.StageScriptApproved, stage.StageRejected}},
		{stage.StageScriptApproved, []stage.Stage{stage.StageAssetsReady, stage.StageFailed}},
		{stage.StageAssetsReady, []stage.Stage{stage.StageRendering, stage.StageFailed}},
		{stage.StageRendering, []stage.Stage{stage.StageCompleted, stage.StageFailed}},
		{stage.StageScriptGenerationFailed, []stage.Stage{stage.StageScriptGenerating, stage.StageRejected}},
		{stage.StageRejected, []stage.Stage{stage.StageIdeaSelected}},
		{stage.StageCompleted, nil},
		{stage.StageFailed, nil},
	}

	covered := make(map[stage.Stage]struct{}, len(cases))
	for _, tc := range cases {
		covered[tc.from] = struct{}{}
		allowed := make(map[stage.Stage]struct{}, len(tc.to))
		for _, to := range tc.to {
			allowed[to] = struct{}{}
			if !stage.IsValidTransition(tc.from, to) {
				t.Errorf("expected %s -> %s to be valid", tc.from, to)
			}
		}
		// Every pair absent from the table must be rejected.
		for _, to := range stage.AllStages() {
			if _, ok := allowed[to]; ok {
				continue
			}
			if stage.IsValidTransition(tc.from, to) {
				t.Errorf("expected %s -> %s to be invalid", tc.from, to)
			}
		}
	}
	for _, s := range stage.AllStages() {
		if _, ok := covered[s]; !ok {
			t.Errorf("stage %s has no edge expectations in this test", s)
		}
	}
}

func TestAllowedNextStagesEmptyForTerminal(t *testing.T) {
	for _, s := range []stage.Stage{stage.StageCompleted, stage.StageFailed} {
		if next := stage.AllowedNextStages(s); len(next) != 0 {
			t.Errorf("%s: expected no next stages, got %v", s, next)
		}
		if !stage.IsTerminal(s) {
			t.Errorf("%s: expected terminal", s)
		}
	}
}

func TestNonTerminalStagesHaveOutgoingEdges(t *testing.T) {
	for _, s := range stage.AllStages() {
		if s == stage.StageCompleted || s == stage.StageFailed {
			continue
		}
		if stage.IsTerminal(s) {
			t.Errorf("%s: unexpectedly terminal", s)
		}
		if len(stage.AllowedNextStages(s)) == 0 {
			t.Errorf("%s: expected outgoing edges", s)
		}
	}
}

func TestIsValidTransitionUnknownStages(t *testing.T) {
	if stage.IsValidTransition(stage.Stage("bogus"), stage.StageCompleted) {
		t.Error("unknown from stage should be invalid")
	}
	if stage.IsValidTransition(stage.StageDiscovered, stage.Stage("bogus")) {
		t.Error("unknown target stage should be invalid")
	}
}

func TestSelfTransitionsRejected(t *testing.T) {
	for _, s := range stage.AllStages() {
		if stage.IsValidTransition(s, s) {
			t.Errorf("%s: self transition should be invalid", s)
		}
	}
}

func TestAllowedNextStagesReturnsCopy(t *testing.T) {
	first := stage.AllowedNextStages(stage.StageDiscovered)
	first[0] = stage.StageFailed
	second := stage.AllowedNextStages(stage.StageDiscovered)
	if second[0] == stage.StageFailed {
		t.Error("AllowedNextStages leaked internal state")
	}
}
