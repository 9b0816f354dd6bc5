// Package logging assembles structured slog loggers and formatting helpers used
// across nexus.
//
// It owns the console and JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so pipeline code can tag log
// lines with run IDs, stages, and chunk positions. Console output goes to
// stderr; when a log directory is configured every record is also appended to
// a JSON log file at debug level. The package also provides a no-op logger for
// tests and wiring code that cannot fail.
package logging
