package api

import "encoding/json"

// dateTimeFormat is used for RFC3339 timestamps in API payloads.
const dateTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// ItemView describes a content item in a transport-friendly format.
type ItemView struct {
	ID        string          `json:"id"`
	Title     string          `json:"title"`
	Content   string          `json:"content,omitempty"`
	Source    string          `json:"source,omitempty"`
	Stage     string          `json:"stage"`
	StageName string          `json:"stageName"`
	Metadata  json.RawMessage `json:"metadata,omitempty"`
	CreatedAt string          `json:"createdAt,omitempty"`
	UpdatedAt string          `json:"updatedAt,omitempty"`
}

// AuditView describes one immutable audit entry.
type AuditView struct {
	ID           string          `json:"id"`
	ItemID       string          `json:"itemId"`
	OldStage     string          `json:"oldStage,omitempty"`
	NewStage     string          `json:"newStage"`
	TriggerEvent string          `json:"triggerEvent"`
	Metadata     json.RawMessage `json:"metadata,omitempty"`
	CreatedAt    string          `json:"createdAt,omitempty"`
	CreatedBy    string          `json:"createdBy,omitempty"`
}

// PageView wraps one page of items together with pagination facts.
type PageView struct {
	Items      []ItemView `json:"items"`
	TotalCount int        `json:"totalCount"`
	HasMore    bool       `json:"hasMore"`
}

// StageCount pairs a stage with its item count for distribution output.
type StageCount struct {
	Stage string `json:"stage"`
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// ExistenceView partitions candidate item ids into known and unknown sets.
type ExistenceView struct {
	Valid   []string `json:"valid"`
	Invalid []string `json:"invalid"`
}

// HealthView summarizes pipeline state for status output.
type HealthView struct {
	Total      int `json:"total"`
	Processing int `json:"processing"`
	Completed  int `json:"completed"`
	Failed     int `json:"failed"`
	Rejected   int `json:"rejected"`
}
