// Package stage defines the canonical content lifecycle stages, the directed
// graph of allowed transitions between them, and the boundary normalizer that
// maps legacy status strings onto canonical values.
//
// Everything in this package is pure and synchronous. The transition graph is
// the single source of truth for stage-change validity; persistence and
// service layers consult it and never embed their own edge rules. Normalize is
// the only place raw strings become Stage values; deeper layers operate on
// the typed enum exclusively.
package stage
