// Package logging builds the process-wide slog logger.
//
// Two output formats are supported: "console", a compact timestamp/level/
// key=value line format, and "json" via slog's JSON handler with normalized
// attribute keys. Output fans out to stdout plus a log file under the
// configured log directory. Components attach a "component" attribute via
// WithComponent so console lines stay attributable.
package logging
