// Package pipeline persists content items and their audit trail in SQLite.
//
// The Store manages the database connection, schema initialization, and the
// read-side queries (history, stage pagination, distribution, stuck-item
// detection, existence checks). Stage mutations never happen through ad-hoc
// updates: callers compose them inside WithTx so the stage update and its
// audit insert commit or roll back together. The audit_entries table is
// append-only; nothing in this package updates or deletes audit rows.
//
// Treat this package as the single source of truth for persistence semantics;
// when the item or audit shape changes, update schema.sql and bump
// schemaVersion.
package pipeline
