package api

import (
	"encoding/json"
	"time"

	"storyforge/internal/pipeline"
	"storyforge/internal/stage"
)

// FromItem converts an item record to its API representation.
func FromItem(item *pipeline.Item) ItemView {
	if item == nil {
		return ItemView{}
	}

	view := ItemView{
		ID:        item.ID,
		Title:     item.Title,
		Content:   item.Content,
		Source:    item.Source,
		Stage:     string(item.Stage),
		StageName: item.Stage.DisplayName(),
	}
	if !item.CreatedAt.IsZero() {
		view.CreatedAt = item.CreatedAt.UTC().Format(dateTimeFormat)
	}
	if !item.UpdatedAt.IsZero() {
		view.UpdatedAt = item.UpdatedAt.UTC().Format(dateTimeFormat)
	}
	if raw := item.MetadataJSON; raw != "" {
		view.Metadata = json.RawMessage(raw)
	}
	return view
}

// FromItems converts a slice of item records into API DTOs.
func FromItems(items []*pipeline.Item) []ItemView {
	if len(items) == 0 {
		return nil
	}
	out := make([]ItemView, 0, len(items))
	for _, item := range items {
		out = append(out, FromItem(item))
	}
	return out
}

// FromAuditEntry converts an audit record to its API representation.
func FromAuditEntry(entry *pipeline.AuditEntry) AuditView {
	if entry == nil {
		return AuditView{}
	}

	view := AuditView{
		ID:           entry.ID,
		ItemID:       entry.ItemID,
		OldStage:     string(entry.OldStage),
		NewStage:     string(entry.NewStage),
		TriggerEvent: entry.TriggerEvent,
		CreatedBy:    entry.CreatedBy,
	}
	if !entry.CreatedAt.IsZero() {
		view.CreatedAt = entry.CreatedAt.UTC().Format(dateTimeFormat)
	}
	if raw := entry.MetadataJSON; raw != "" {
		view.Metadata = json.RawMessage(raw)
	}
	return view
}

// FromAuditEntries converts a slice of audit records into API DTOs.
func FromAuditEntries(entries []*pipeline.AuditEntry) []AuditView {
	if len(entries) == 0 {
		return nil
	}
	out := make([]AuditView, 0, len(entries))
	for _, entry := range entries {
		out = append(out, FromAuditEntry(entry))
	}
	return out
}

// FromPage converts a page of items into its API representation.
func FromPage(page *pipeline.Page) PageView {
	if page == nil {
		return PageView{}
	}
	return PageView{
		Items:      FromItems(page.Items),
		TotalCount: page.TotalCount,
		HasMore:    page.HasMore,
	}
}

// FromDistribution converts a stage distribution map into a deterministic
// slice ordered by the canonical stage sequence.
func FromDistribution(distribution map[stage.Stage]int) []StageCount {
	if len(distribution) == 0 {
		return nil
	}
	out := make([]StageCount, 0, len(distribution))
	for _, st := range stage.AllStages() {
		count, ok := distribution[st]
		if !ok {
			continue
		}
		out = append(out, StageCount{
			Stage: string(st),
			Name:  st.DisplayName(),
			Count: count,
		})
	}
	return out
}

// FromExistenceCheck converts an existence check result into API form.
func FromExistenceCheck(check *pipeline.ExistenceCheck) ExistenceView {
	if check == nil {
		return ExistenceView{}
	}
	return ExistenceView{Valid: check.Valid, Invalid: check.Invalid}
}

// FromHealth converts a health summary into API form.
func FromHealth(health pipeline.HealthSummary) HealthView {
	return HealthView{
		Total:      health.Total,
		Processing: health.Processing,
		Completed:  health.Completed,
		Failed:     health.Failed,
		Rejected:   health.Rejected,
	}
}

// FormatTime converts a time to RFC3339 or returns empty string.
func FormatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(dateTimeFormat)
}
