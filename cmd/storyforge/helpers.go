package main

import (
	"fmt"
	"strings"
	"time"

	"storyforge/internal/api"
	"storyforge/internal/stage"
)

// parseStages normalizes caller-supplied stage strings once at the CLI
// boundary.
func parseStages(raw []string) ([]stage.Stage, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	stages := make([]stage.Stage, 0, len(raw))
	for _, value := range raw {
		st, err := api.ParseStage(value)
		if err != nil {
			return nil, fmt.Errorf("stage %q: %w", value, err)
		}
		stages = append(stages, st)
	}
	return stages, nil
}

// truncate shortens long cell values for table rendering.
func truncate(value string, max int) string {
	value = strings.TrimSpace(value)
	if max <= 3 || len(value) <= max {
		return value
	}
	return value[:max-3] + "..."
}

// shortID keeps table output readable; full ids are available via --json.
func shortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}

// formatAge renders the time since t in a compact form, e.g. "2h30m".
func formatAge(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	age := time.Since(t)
	if age < 0 {
		age = 0
	}
	switch {
	case age < time.Minute:
		return fmt.Sprintf("%ds", int(age.Seconds()))
	case age < time.Hour:
		return fmt.Sprintf("%dm", int(age.Minutes()))
	case age < 24*time.Hour:
		return fmt.Sprintf("%dh%02dm", int(age.Hours()), int(age.Minutes())%60)
	default:
		days := int(age.Hours()) / 24
		return fmt.Sprintf("%dd%dh", days, int(age.Hours())%24)
	}
}

// parseViewTime decodes a DTO timestamp for age rendering. Returns the zero
// time when the value is empty or malformed.
func parseViewTime(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}
	}
	return t
}
