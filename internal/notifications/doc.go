// Package notifications delivers lifecycle events via pluggable notifiers.
//
// The default implementation publishes to ntfy using the topic configured in
// config.toml and gracefully degrades to a no-op when notifications are
// disabled. The transition service and CLI depend only on the Service
// interface; delivery failures are reported to the caller and never affect
// the outcome of the lifecycle operation that triggered them.
package notifications
