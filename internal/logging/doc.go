// Package logging assembles the structured slog loggers shared by the bs CLI
// and its internal packages.
//
// It owns the console and JSON handlers, centralizes level parsing and output
// plumbing, and exposes attribute helper constructors plus the standardized
// field names used across the codebase. A no-op logger is provided for tests
// and wiring code that cannot fail.
//
// Prefer these constructors over hand-rolled slog setup so every component
// emits data with the same shape.
package logging
