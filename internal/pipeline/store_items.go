package pipeline

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"storyforge/internal/stage"
)

// NewItem inserts a discovered content item together with its ingestion audit
// entry in one transaction.
func (s *Store) NewItem(ctx context.Context, title, content, source string) (*Item, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, errors.New("title is required")
	}

	now := time.Now().UTC()
	item := &Item{
		ID:        uuid.NewString(),
		Title:     title,
		Content:   content,
		Source:    strings.TrimSpace(source),
		Stage:     stage.StageDiscovered,
		CreatedAt: now,
		UpdatedAt: now,
	}
	entry := &AuditEntry{
		ID:           uuid.NewString(),
		ItemID:       item.ID,
		OldStage:     "",
		NewStage:     stage.StageDiscovered,
		TriggerEvent: TriggerIngest,
		CreatedAt:    now,
	}

	err := s.WithTx(ctx, func(tx *Tx) error {
		if err := tx.InsertItem(ctx, item); err != nil {
			return err
		}
		return tx.InsertAudit(ctx, entry)
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

// GetByID fetches an item by identifier. Returns ErrNotFound for unknown ids.
func (s *Store) GetByID(ctx context.Context, id string) (*Item, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+itemColumns+` FROM items WHERE id = ?`, id)
	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("item %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}
	return item, nil
}

// List returns items filtered by stage set (or all items when no stage is
// provided), ordered by creation time.
func (s *Store) List(ctx context.Context, stages ...stage.Stage) ([]*Item, error) {
	var (
		rows *sql.Rows
		err  error
	)

	baseQuery := `SELECT ` + itemColumns + ` FROM items`
	orderClause := ` ORDER BY created_at, id`

	if len(stages) == 0 {
		rows, err = s.db.QueryContext(ctx, baseQuery+orderClause)
	} else {
		placeholders := makePlaceholders(len(stages))
		args := make([]any, len(stages))
		for i, st := range stages {
			args[i] = st
		}
		query := baseQuery + ` WHERE stage IN (` + placeholders + `)` + orderClause
		rows, err = s.db.QueryContext(ctx, query, args...)
	}
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
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

const itemColumns = "id, title, content, source, stage, metadata_json, created_at, updated_at"

func scanItem(scanner interface{ Scan(dest ...any) error }) (*Item, error) {
	var (
		id         string
		title      string
		content    sql.NullString
		source     sql.NullString
		stageStr   string
		metadata   sql.NullString
		createdRaw string
		updatedRaw string
	)

	if err := scanner.Scan(
		&id,
		&title,
		&content,
		&source,
		&stageStr,
		&metadata,
		&createdRaw,
		&updatedRaw,
	); err != nil {
		return nil, err
	}

	item := &Item{
		ID:           id,
		Title:        title,
		Content:      content.String,
		Source:       source.String,
		Stage:        stage.Stage(stageStr),
		MetadataJSON: metadata.String,
	}
	if created, err := parseTimeString(createdRaw); err == nil {
		item.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw); err == nil {
		item.UpdatedAt = updated
	}
	return item, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}

func makePlaceholders(count int) string {
	if count <= 0 {
		return ""
	}
	placeholders := make([]byte, 0, count*2)
	for i := 0; i < count; i++ {
		if i > 0 {
			placeholders = append(placeholders, ',')
		}
		placeholders = append(placeholders, '?')
	}
	return string(placeholders)
}
