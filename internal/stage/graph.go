package stage

// transitions is the exhaustive adjacency table for lifecycle changes. Every
// allowed edge appears here, including the recovery edges out of failure and
// rejection stages; retries are ordinary validated transitions, not bypasses.
// completed and failed carry no outgoing edges; leaving a terminal stage
// requires the forced-override path.
var transitions = map[Stage][]Stage{
	StageDiscovered:       {StageIdeaSelected, StageRejected},
	StageIdeaSelected:     {StageScriptGenerating, StageRejected},
	StageScriptGenerating: {StageScriptGenerated, StageScriptGenerationFailed},
	StageScriptGenerated:  {StageScriptApproved, StageRejected},
	StageScriptApproved:   {StageAssetsReady, StageFailed},
	StageAssetsReady:      {StageRendering, StageFailed},
	StageRendering:        {StageCompleted, StageFailed},

	// Recovery edges: retry script generation, reconsider a rejected idea.
	StageScriptGenerationFailed: {StageScriptGenerating, StageRejected},
	StageRejected:               {StageIdeaSelected},

	StageCompleted: {},
	StageFailed:    {},
}

// IsValidTransition reports whether the lifecycle graph allows from → to.
func IsValidTransition(from, to Stage) bool {
	allowed, ok := transitions[from]
	if !ok {
		return false
	}
	for _, next := range allowed {
		if next == to {
			return true
		}
	}
	return false
}

// AllowedNextStages returns the stages reachable from the given stage under
// normal flow. Terminal stages and unknown values yield an empty slice.
func AllowedNextStages(from Stage) []Stage {
	allowed, ok := transitions[from]
	if !ok || len(allowed) == 0 {
		return nil
	}
	cp := make([]Stage, len(allowed))
	copy(cp, allowed)
	return cp
}
