package pipeline

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"storyforge/internal/stage"
)

// History returns the audit entries for one item, newest first, bounded by
// limit. A limit of zero or less falls back to a sane default.
func (s *Store) History(ctx context.Context, itemID string, limit int) ([]*AuditEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT `+auditColumns+` FROM audit_entries WHERE item_id = ? ORDER BY created_at DESC, rowid DESC LIMIT ?`,
		itemID,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var entries []*AuditEntry
	for rows.Next() {
		entry, err := scanAudit(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// ListByStage returns one page of items in the given stage, ordered by
// last-updated descending (id breaks ties so pagination stays deterministic).
// Pages are 1-based.
func (s *Store) ListByStage(ctx context.Context, st stage.Stage, page, pageSize int) (*Page, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM items WHERE stage = ?`, st).Scan(&total); err != nil {
		return nil, fmt.Errorf("count items by stage: %w", err)
	}

	offset := (page - 1) * pageSize
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT `+itemColumns+` FROM items WHERE stage = ? ORDER BY updated_at DESC, id LIMIT ? OFFSET ?`,
		st,
		pageSize,
		offset,
	)
	if err != nil {
		return nil, fmt.Errorf("query items by stage: %w", err)
	}
	defer rows.Close()

	result := &Page{TotalCount: total}
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		result.Items = append(result.Items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	result.HasMore = offset+len(result.Items) < total
	return result, nil
}

// StageDistribution returns a count of items for every canonical stage.
// Stages with no items are present with a zero count so callers can render a
// fixed set of buckets.
func (s *Store) StageDistribution(ctx context.Context) (map[stage.Stage]int, error) {
	distribution := make(map[stage.Stage]int, len(stage.AllStages()))
	for _, st := range stage.AllStages() {
		distribution[st] = 0
	}

	rows, err := s.db.QueryContext(ctx, `SELECT stage, COUNT(1) FROM items GROUP BY stage`)
	if err != nil {
		return nil, fmt.Errorf("stage distribution: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var st stage.Stage
		var count int
		if err := rows.Scan(&st, &count); err != nil {
			return nil, err
		}
		distribution[st] = count
	}
	return distribution, rows.Err()
}

// StuckItems returns items that have sat in a processing stage longer than
// threshold, oldest first. Detection is restricted to the declared processing
// set; review and terminal stages never count as stuck.
func (s *Store) StuckItems(ctx context.Context, threshold time.Duration) ([]*Item, error) {
	processing := stage.ProcessingStages()
	placeholders := makePlaceholders(len(processing))
	args := make([]any, 0, len(processing)+1)
	for _, st := range processing {
		args = append(args, st)
	}
	cutoff := time.Now().UTC().Add(-threshold)
	args = append(args, cutoff.Format(time.RFC3339Nano))

	query := `SELECT ` + itemColumns + ` FROM items WHERE stage IN (` + placeholders + `) AND updated_at < ? ORDER BY updated_at, id`
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query stuck items: %w", err)
	}
	defer rows.Close()

	var items []*Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// CheckItemsExist partitions candidate identifiers into known and unknown
// sets, preserving input order within each partition.
func (s *Store) CheckItemsExist(ctx context.Context, ids []string) (*ExistenceCheck, error) {
	result := &ExistenceCheck{}
	if len(ids) == 0 {
		return result, nil
	}

	placeholders := makePlaceholders(len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM items WHERE id IN (`+placeholders+`)`, args...)
	if err != nil {
		return nil, fmt.Errorf("check items exist: %w", err)
	}
	defer rows.Close()

	found := make(map[string]struct{}, len(ids))
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		found[id] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if _, ok := found[id]; ok {
			result.Valid = append(result.Valid, id)
		} else {
			result.Invalid = append(result.Invalid, id)
		}
	}
	return result, nil
}

// Health aggregates item state for diagnostic output.
func (s *Store) Health(ctx context.Context) (HealthSummary, error) {
	distribution, err := s.StageDistribution(ctx)
	if err != nil {
		return HealthSummary{}, err
	}
	health := HealthSummary{}
	for st, count := range distribution {
		health.Total += count
		switch st {
		case stage.StageCompleted:
			health.Completed += count
		case stage.StageFailed:
			health.Failed += count
		case stage.StageRejected:
			health.Rejected += count
		default:
			if stage.IsProcessing(st) {
				health.Processing += count
			}
		}
	}
	return health, nil
}

const auditColumns = "id, item_id, old_stage, new_stage, trigger_event, metadata_json, created_at, created_by"

func scanAudit(scanner interface{ Scan(dest ...any) error }) (*AuditEntry, error) {
	var (
		id         string
		itemID     string
		oldStage   string
		newStage   string
		trigger    string
		metadata   sql.NullString
		createdRaw string
		createdBy  sql.NullString
	)

	if err := scanner.Scan(
		&id,
		&itemID,
		&oldStage,
		&newStage,
		&trigger,
		&metadata,
		&createdRaw,
		&createdBy,
	); err != nil {
		return nil, err
	}

	entry := &AuditEntry{
		ID:           id,
		ItemID:       itemID,
		OldStage:     stage.Stage(oldStage),
		NewStage:     stage.Stage(newStage),
		TriggerEvent: trigger,
		MetadataJSON: metadata.String,
		CreatedBy:    createdBy.String,
	}
	if created, err := parseTimeString(createdRaw); err == nil {
		entry.CreatedAt = created
	}
	return entry, nil
}
