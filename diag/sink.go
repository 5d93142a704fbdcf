package diag

import (
	"fmt"
	"log/slog"
	"sync"
)

// Sink is the diagnostic sink collaborator sketched in spec §6: report is
// total and never fails. It is safe for concurrent use by the worker pool
// workers of a single pass (§5).
type Sink struct {
	mu   sync.Mutex
	errs []Diagnostic
}

// NewSink returns an empty Sink. The zero value is usable directly too.
func NewSink() *Sink {
	return &Sink{}
}

// Report records d. It never returns an error and never panics.
func (s *Sink) Report(d Diagnostic) {
	if s == nil || d == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errs = append(s.errs, d)
}

// Merge absorbs all diagnostics from other into s.
func (s *Sink) Merge(other *Sink) {
	if s == nil || other == nil {
		return
	}
	other.mu.Lock()
	borrowed := append([]Diagnostic(nil), other.errs...)
	other.mu.Unlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.errs = append(s.errs, borrowed...)
}

func (s *Sink) Diagnostics() []Diagnostic {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Diagnostic(nil), s.errs...)
}

// HasFatal reports whether any diagnostic reported so far is fatal. The
// driver consults this at the end of every pass (spec §7) to decide
// whether to abort.
func (s *Sink) HasFatal() bool {
	if s == nil {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, d := range s.errs {
		if d.Severity() == SeverityFatal {
			return true
		}
	}
	return false
}

// HasError reports whether any diagnostic is error severity or worse.
func (s *Sink) HasError() bool {
	if s == nil {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, d := range s.errs {
		if d.Severity() >= SeverityError {
			return true
		}
	}
	return false
}

func (s *Sink) LogValue() slog.Value {
	diags := s.Diagnostics()
	vals := make([]slog.Attr, 0, len(diags))
	for i, d := range diags {
		vals = append(vals, slog.Attr{
			Key:   fmt.Sprint("d", i),
			Value: slog.StringValue(FormatWithCode(d)),
		})
	}
	return slog.GroupValue(vals...)
}
