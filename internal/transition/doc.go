// Package transition executes validated, audited lifecycle stage changes.
//
// The Service is the only writer of the item stage field. Each transition
// loads the item, normalizes its stored stage, validates the requested edge
// against the stage graph, and commits the stage update together with exactly
// one audit entry in a single SQLite transaction; a rejected request mutates
// nothing. ForceTransition bypasses graph validation for operator recovery
// but remains transactional and audited with forced metadata. ApplyBatch runs
// an ordered request list inside one transaction and rolls the whole list
// back on the first failure.
//
// Construct the Service with an explicit store handle; the optional notifier
// fires strictly after commit and can never affect a transition's outcome.
package transition
