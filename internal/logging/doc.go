// Package logging configures the process-wide slog logger with console and
// JSON handlers, and provides attribute helpers plus context-derived fields
// for record and request correlation.
package logging
