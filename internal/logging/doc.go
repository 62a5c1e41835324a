// Package logging constructs the toolkit's slog loggers. The console format
// writes compact single-line output for interactive use; the json format
// emits one object per record for machine consumption.
package logging
