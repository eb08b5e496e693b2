package pipeline

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"storyforge/internal/stage"
)

// Tx exposes the mutating operations available inside one transaction scope.
// The stage update and its audit insert travel through the same Tx so they
// commit or roll back as a unit.
type Tx struct {
	tx *sql.Tx
}

// WithTx runs fn inside a database transaction. A nil return commits; any
// error rolls everything back and is returned unchanged. The whole function
// is retried when SQLite reports the database busy, so fn must be safe to
// re-execute from scratch; every attempt re-reads its own state.
func (s *Store) WithTx(ctx context.Context, fn func(tx *Tx) error) error {
	ctx = ensureContext(ctx)
	return retryOnBusy(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin tx: %w", err)
		}
		defer func() { _ = tx.Rollback() }()

		if err := fn(&Tx{tx: tx}); err != nil {
			return err
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit tx: %w", err)
		}
		return nil
	})
}

// ItemByID fetches an item inside the transaction, observing any writes the
// same transaction already performed. Returns ErrNotFound for unknown ids.
func (t *Tx) ItemByID(ctx context.Context, id string) (*Item, error) {
	row := t.tx.QueryRowContext(ctx, `SELECT `+itemColumns+` FROM items WHERE id = ?`, id)
	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("item %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}
	return item, nil
}

// InsertItem persists a new item.
func (t *Tx) InsertItem(ctx context.Context, item *Item) error {
	if item == nil {
		return errors.New("item is nil")
	}
	_, err := t.tx.ExecContext(
		ctx,
		`INSERT INTO items (id, title, content, source, stage, metadata_json, created_at, updated_at)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		item.ID,
		item.Title,
		nullableString(item.Content),
		nullableString(item.Source),
		item.Stage,
		nullableString(item.MetadataJSON),
		item.CreatedAt.UTC().Format(time.RFC3339Nano),
		item.UpdatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert item: %w", err)
	}
	return nil
}

// SetItemStage updates an item's stage and last-updated timestamp.
func (t *Tx) SetItemStage(ctx context.Context, id string, target stage.Stage, now time.Time) error {
	res, err := t.tx.ExecContext(
		ctx,
		`UPDATE items SET stage = ?, updated_at = ? WHERE id = ?`,
		target,
		now.UTC().Format(time.RFC3339Nano),
		id,
	)
	if err != nil {
		return fmt.Errorf("update stage: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("item %s: %w", id, ErrNotFound)
	}
	return nil
}

// InsertAudit appends one audit entry. Audit rows are never updated or
// deleted afterwards.
func (t *Tx) InsertAudit(ctx context.Context, entry *AuditEntry) error {
	if entry == nil {
		return errors.New("audit entry is nil")
	}
	_, err := t.tx.ExecContext(
		ctx,
		`INSERT INTO audit_entries (id, item_id, old_stage, new_stage, trigger_event, metadata_json, created_at, created_by)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID,
		entry.ItemID,
		entry.OldStage,
		entry.NewStage,
		entry.TriggerEvent,
		nullableString(entry.MetadataJSON),
		entry.CreatedAt.UTC().Format(time.RFC3339Nano),
		nullableString(entry.CreatedBy),
	)
	if err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}
