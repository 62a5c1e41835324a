// Package diag collects structured diagnostic events raised while operating
// on an archive. Operations receive an explicit *Reporter instead of writing
// to shared logger state, so batch workflows can continue past per-file
// failures and tests can assert on exact event kinds rather than log text.
package diag

import (
	"log/slog"
	"sync"
)

// Kind classifies a diagnostic event.
type Kind string

const (
	// KindStructuralParse marks a tag file whose text could not be parsed.
	// Fatal for that file's load, never for the surrounding scan.
	KindStructuralParse Kind = "structural_parse_error"
	// KindIdentityAmbiguity marks a filename identifier that disagrees with
	// a caller-supplied one. The filename wins.
	KindIdentityAmbiguity Kind = "identity_ambiguity"
	// KindRenameConflict marks an on-disk rename that was abandoned while
	// in-memory components had already been computed.
	KindRenameConflict Kind = "rename_conflict"
	// KindConversionSoftSuccess marks a converter that exited nonzero yet
	// produced a usable target file.
	KindConversionSoftSuccess Kind = "conversion_soft_success"
	// KindConversionFailure marks a converter that exited nonzero with no
	// target produced.
	KindConversionFailure Kind = "conversion_failure"
	// KindConversionTimeout marks a converter cancelled by its deadline.
	KindConversionTimeout Kind = "conversion_timeout"
)

// Event is one recorded diagnostic.
type Event struct {
	Kind   Kind
	Path   string
	Detail string
	Err    error
}

// Reporter accumulates events and mirrors them to an optional logger. A nil
// Reporter is valid and drops everything, so deeply nested helpers never
// need to guard.
type Reporter struct {
	logger *slog.Logger

	mu     sync.Mutex
	events []Event
}

// NewReporter returns a reporter mirroring events to the given logger.
// The logger may be nil.
func NewReporter(logger *slog.Logger) *Reporter {
	return &Reporter{logger: logger}
}

// Report records one event.
func (r *Reporter) Report(evt Event) {
	if r == nil {
		return
	}
	r.mu.Lock()
	r.events = append(r.events, evt)
	r.mu.Unlock()

	if r.logger == nil {
		return
	}
	attrs := []any{slog.String("kind", string(evt.Kind))}
	if evt.Path != "" {
		attrs = append(attrs, slog.String("path", evt.Path))
	}
	if evt.Err != nil {
		attrs = append(attrs, slog.Any("error", evt.Err))
	}
	switch evt.Kind {
	case KindConversionSoftSuccess:
		r.logger.Warn(evt.Detail, attrs...)
	default:
		r.logger.Error(evt.Detail, attrs...)
	}
}

// Events returns a copy of everything recorded so far.
func (r *Reporter) Events() []Event {
	if r == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// ByKind returns the recorded events of one kind.
func (r *Reporter) ByKind(kind Kind) []Event {
	if r == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Event
	for _, evt := range r.events {
		if evt.Kind == kind {
			out = append(out, evt)
		}
	}
	return out
}
