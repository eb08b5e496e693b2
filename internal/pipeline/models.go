package pipeline

import (
	"time"

	"storyforge/internal/stage"
)

// TriggerIngest is the audit trigger recorded when an item enters the pipeline.
const TriggerIngest = "ingest"

// Item represents a content item persisted in SQLite. The stage field is
// owned by the transition service; collaborators read it but never write it
// directly.
type Item struct {
	ID           string
	Title        string
	Content      string
	Source       string
	Stage        stage.Stage
	MetadataJSON string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsProcessing reports whether the item currently sits in a processing stage.
func (i Item) IsProcessing() bool {
	return stage.IsProcessing(i.Stage)
}

// AuditEntry is one immutable record of an executed stage change.
type AuditEntry struct {
	ID           string
	ItemID       string
	OldStage     stage.Stage
	NewStage     stage.Stage
	TriggerEvent string
	MetadataJSON string
	CreatedAt    time.Time
	CreatedBy    string
}

// Page is one page of items in a given stage.
type Page struct {
	Items      []*Item
	TotalCount int
	HasMore    bool
}

// ExistenceCheck partitions candidate item identifiers into those present in
// the store and those unknown.
type ExistenceCheck struct {
	Valid   []string
	Invalid []string
}

// HealthSummary describes aggregated item counts per key lifecycle groupings.
type HealthSummary struct {
	Total      int
	Processing int
	Completed  int
	Failed     int
	Rejected   int
}
