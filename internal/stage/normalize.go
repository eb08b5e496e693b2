package stage

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownStage indicates an input matched neither a canonical stage nor a
// known legacy alias. Callers must surface this rather than coerce to a
// default; an unrecognized status at the boundary is a caller bug, not a
// lifecycle event.
var ErrUnknownStage = errors.New("unknown stage")

// legacyAliases maps status strings produced by older ingestion paths onto
// canonical stages. Keys are stored in normalized form (lowercase, separators
// collapsed to underscores) so lookup happens after cheap canonicalization.
var legacyAliases = map[string]Stage{
	"new":            StageDiscovered,
	"pending":        StageDiscovered,
	"scraped":        StageDiscovered,
	"idea":           StageIdeaSelected,
	"selected":       StageIdeaSelected,
	"scripting":      StageScriptGenerating,
	"script_ready":   StageScriptGenerated,
	"script_done":    StageScriptGenerated,
	"approved":       StageScriptApproved,
	"script_failed":  StageScriptGenerationFailed,
	"declined":       StageRejected,
	"denied":         StageRejected,
	"assets":         StageAssetsReady,
	"media_ready":    StageAssetsReady,
	"render":         StageRendering,
	"rendering_busy": StageRendering,
	"done":           StageCompleted,
	"published":      StageCompleted,
	"complete":       StageCompleted,
	"error":          StageFailed,
	"errored":        StageFailed,
}

// Normalize maps a raw status string onto a canonical Stage. It is total over
// canonical values, their case/spacing/separator variants, and the documented
// legacy aliases; anything else returns ErrUnknownStage. Normalize is pure and
// idempotent: feeding a canonical stage back in returns it unchanged.
func Normalize(raw string) (Stage, error) {
	key := normalizeKey(raw)
	if key == "" {
		return "", fmt.Errorf("%w: empty value", ErrUnknownStage)
	}
	if s := Stage(key); IsCanonical(s) {
		return s, nil
	}
	if s, ok := legacyAliases[key]; ok {
		return s, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownStage, raw)
}

// normalizeKey lowercases the input and collapses hyphens, spaces, and
// camelCase boundaries into underscores, e.g. "ideaSelected", "Idea-Selected",
// and "idea selected" all become "idea_selected".
func normalizeKey(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}

	var b strings.Builder
	b.Grow(len(trimmed) + 4)
	prevUnderscore := false
	prevLower := false
	for _, r := range trimmed {
		switch {
		case r == '-' || r == ' ' || r == '_':
			if !prevUnderscore && b.Len() > 0 {
				b.WriteByte('_')
				prevUnderscore = true
			}
			prevLower = false
		case r >= 'A' && r <= 'Z':
			// camelCase boundary: only a lower→upper edge starts a new word,
			// so all-caps inputs collapse cleanly.
			if prevLower {
				b.WriteByte('_')
			}
			b.WriteRune(r + ('a' - 'A'))
			prevUnderscore = false
			prevLower = false
		default:
			b.WriteRune(r)
			prevUnderscore = false
			prevLower = r >= 'a' && r <= 'z' || r >= '0' && r <= '9'
		}
	}
	return strings.Trim(b.String(), "_")
}
