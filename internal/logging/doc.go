// Package logging assembles structured slog loggers used across sysctlr.
//
// It owns the console and JSON handlers, maps configured levels, optionally
// mirrors records to a JSON log file under paths.log_dir, and exposes
// context helpers so every line of one reconciliation carries the same
// correlation id. A no-op logger is provided for tests and wiring code that
// cannot fail.
package logging
