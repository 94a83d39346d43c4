// Package logging assembles structured slog loggers and formatting helpers used
// across vttgen.
//
// It owns the console/JSON handlers, centralizes level and output plumbing,
// and exposes helpers that tag log lines with the run identifier so every line
// from one invocation can be correlated. Logs are written to stderr by default
// because stdout is reserved for the metadata record.
//
// The package also provides a no-op logger for tests and wiring code that
// cannot fail.
package logging
