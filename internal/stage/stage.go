package stage

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Stage represents the lifecycle position of a content item.
type Stage string

const (
	StageDiscovered             Stage = "discovered"
	StageIdeaSelected           Stage = "idea_selected"
	StageScriptGenerating       Stage = "script_generating"
	StageScriptGenerated        Stage = "script_generated"
	StageScriptApproved         Stage = "script_approved"
	StageScriptGenerationFailed Stage = "script_generation_failed"
	StageRejected               Stage = "rejected"
	StageAssetsReady            Stage = "assets_ready"
	StageRendering              Stage = "rendering"
	StageCompleted              Stage = "completed"
	StageFailed                 Stage = "failed"
)

var allStages = []Stage{
	StageDiscovered,
	StageIdeaSelected,
	StageScriptGenerating,
	StageScriptGenerated,
	StageScriptApproved,
	StageScriptGenerationFailed,
	StageRejected,
	StageAssetsReady,
	StageRendering,
	StageCompleted,
	StageFailed,
}

var stageSet = func() map[Stage]struct{} {
	set := make(map[Stage]struct{}, len(allStages))
	for _, s := range allStages {
		set[s] = struct{}{}
	}
	return set
}()

// processingStages are the stages eligible for stuck-item detection. Only
// stages that represent in-flight work owned by an external worker belong
// here; review states like script_generated do not.
var processingStages = map[Stage]struct{}{
	StageScriptGenerating: {},
	StageRendering:        {},
}

// AllStages returns the ordered list of canonical stages.
func AllStages() []Stage {
	cp := make([]Stage, len(allStages))
	copy(cp, allStages)
	return cp
}

// IsCanonical reports whether value is a known canonical stage.
func IsCanonical(value Stage) bool {
	_, ok := stageSet[value]
	return ok
}

// IsProcessing reports whether a stage represents in-flight work.
func IsProcessing(s Stage) bool {
	_, ok := processingStages[s]
	return ok
}

// ProcessingStages returns the declared set of stages subject to stuck-item
// detection, in canonical order.
func ProcessingStages() []Stage {
	out := make([]Stage, 0, len(processingStages))
	for _, s := range allStages {
		if _, ok := processingStages[s]; ok {
			out = append(out, s)
		}
	}
	return out
}

// IsTerminal reports whether a stage has no outgoing edges under normal flow.
func IsTerminal(s Stage) bool {
	return len(transitions[s]) == 0 && IsCanonical(s)
}

var displayNames = map[Stage]string{
	StageDiscovered:             "Discovered",
	StageIdeaSelected:           "Idea Selected",
	StageScriptGenerating:       "Generating Script",
	StageScriptGenerated:        "Script Generated",
	StageScriptApproved:         "Script Approved",
	StageScriptGenerationFailed: "Script Generation Failed",
	StageRejected:               "Rejected",
	StageAssetsReady:            "Assets Ready",
	StageRendering:              "Rendering",
	StageCompleted:              "Completed",
	StageFailed:                 "Failed",
}

var titleCaser = cases.Title(language.Und)

// DisplayName returns the human-readable label for a stage. Presentation only;
// it never feeds back into validity logic. Unknown values get a best-effort
// title-cased rendering so diagnostic output stays readable.
func (s Stage) DisplayName() string {
	if name, ok := displayNames[s]; ok {
		return name
	}
	cleaned := strings.ReplaceAll(strings.TrimSpace(string(s)), "_", " ")
	if cleaned == "" {
		return "Unknown"
	}
	return titleCaser.String(cleaned)
}

// String implements fmt.Stringer.
func (s Stage) String() string {
	return string(s)
}
