// Package diag implements the diagnostic sink described in spec §7: a
// small hierarchy of typed diagnostics (one per error kind the engine can
// raise), plus an accumulator that the driver consults at pass boundaries.
package diag

import (
	"fmt"
	"runtime/debug"
	"strings"
)

// enableDebugStacks makes diagnostics include their capture stacktrace when printed.
const enableDebugStacks = false

type Severity int

const (
	SeverityWarning Severity = iota
	SeverityError
	SeverityFatal
)

func (s Severity) String() string {
	switch s {
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	case SeverityFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

type Code int

const (
	None Code = iota
	// InvariantViolation: an assertion internal to the engine failed.
	InvariantViolation
	// UnresolvedReference: live bytecode references a symbol absent from
	// both program and library, and not covered by a dontWarn rule.
	UnresolvedReference
	// RuleConflict: two keep rules demand incompatible treatments for the
	// same symbol.
	RuleConflict
	// BudgetExceeded: the class inliner's combined-size estimate exceeded
	// the configured ceiling for a candidate.
	BudgetExceeded
	// FormatLimit: the writer could not serialize the result.
	FormatLimit
	// MergeGroupDiscarded: a horizontal-merge group failed to fuse and was
	// dropped without contributing a lens entry.
	MergeGroupDiscarded
)

// Diagnostic is the interface every reported diagnostic satisfies. It
// mirrors the teacher's IleError: a typed code, a severity, and an
// optionally-captured stack for debugging, without ever being thrown as a
// Go panic — per spec §6 the diagnostic sink "never throws".
type Diagnostic interface {
	error
	Code() Code
	Severity() Severity

	withStack([]byte) Diagnostic
	getStack() []byte
}

// New attaches a capture-time stack to a freshly constructed diagnostic.
func New[D Diagnostic](d D) Diagnostic {
	return d.withStack(debug.Stack())
}

func FormatWithCode(d Diagnostic) string {
	if enableDebugStacks && d.getStack() != nil {
		lines := strings.Split(string(d.getStack()), "\n")
		frame := ""
		if len(lines) > 6 {
			frame = lines[6]
		}
		return fmt.Sprintf("%s:(%s E%03d) %s", frame, d.Severity(), d.Code(), d.Error())
	}
	return fmt.Sprintf("(%s E%03d) %s", d.Severity(), d.Code(), d.Error())
}

// Unclassified wraps an arbitrary error (typically from an external
// collaborator, §6) as a Diagnostic with no particular Code.
type Unclassified struct {
	From  error
	stack []byte
}

func (e Unclassified) Error() string           { return fmt.Sprintf("unclassified error: %v", e.From) }
func (e Unclassified) Code() Code               { return None }
func (e Unclassified) Severity() Severity       { return SeverityError }
func (e Unclassified) getStack() []byte         { return e.stack }
func (e Unclassified) withStack(s []byte) Diagnostic {
	e.stack = s
	return e
}

type NewInvariantViolation struct {
	Invariant string
	Detail    string
	stack     []byte
}

func (e NewInvariantViolation) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("invariant violated: %s", e.Invariant)
	}
	return fmt.Sprintf("invariant violated: %s: %s", e.Invariant, e.Detail)
}
func (e NewInvariantViolation) Code() Code         { return InvariantViolation }
func (e NewInvariantViolation) Severity() Severity { return SeverityFatal }
func (e NewInvariantViolation) getStack() []byte   { return e.stack }
func (e NewInvariantViolation) withStack(s []byte) Diagnostic {
	e.stack = s
	return e
}

type NewUnresolvedReference struct {
	Reference string
	Suppressed bool
	stack     []byte
}

func (e NewUnresolvedReference) Error() string {
	return fmt.Sprintf("unresolved reference to %s", e.Reference)
}
func (e NewUnresolvedReference) Code() Code { return UnresolvedReference }
func (e NewUnresolvedReference) Severity() Severity {
	if e.Suppressed {
		return SeverityWarning
	}
	return SeverityError
}
func (e NewUnresolvedReference) getStack() []byte { return e.stack }
func (e NewUnresolvedReference) withStack(s []byte) Diagnostic {
	e.stack = s
	return e
}

type NewRuleConflict struct {
	Symbol    string
	FirstRule string
	SecondRule string
	stack     []byte
}

func (e NewRuleConflict) Error() string {
	return fmt.Sprintf("conflicting keep rules for %s: %q and %q", e.Symbol, e.FirstRule, e.SecondRule)
}
func (e NewRuleConflict) Code() Code         { return RuleConflict }
func (e NewRuleConflict) Severity() Severity { return SeverityError }
func (e NewRuleConflict) getStack() []byte   { return e.stack }
func (e NewRuleConflict) withStack(s []byte) Diagnostic {
	e.stack = s
	return e
}

type NewBudgetExceeded struct {
	Candidate string
	Estimated int
	Ceiling   int
	stack     []byte
}

func (e NewBudgetExceeded) Error() string {
	return fmt.Sprintf("class-inlining candidate %s exceeds size budget (%d > %d)", e.Candidate, e.Estimated, e.Ceiling)
}
func (e NewBudgetExceeded) Code() Code         { return BudgetExceeded }
func (e NewBudgetExceeded) Severity() Severity { return SeverityWarning }
func (e NewBudgetExceeded) getStack() []byte   { return e.stack }
func (e NewBudgetExceeded) withStack(s []byte) Diagnostic {
	e.stack = s
	return e
}

// NewMergeGroupDiscarded reports that a horizontal-merge group could not be
// fused (a field/method collision, a dispatcher construction failure, or
// any other invariant Fuse checks). Per spec §4.3, "discarding a group
// never fails the compilation" — this is always a warning, never fatal.
type NewMergeGroupDiscarded struct {
	Target string
	Reason string
	stack  []byte
}

func (e NewMergeGroupDiscarded) Error() string {
	return fmt.Sprintf("merge group targeting %s discarded: %s", e.Target, e.Reason)
}
func (e NewMergeGroupDiscarded) Code() Code         { return MergeGroupDiscarded }
func (e NewMergeGroupDiscarded) Severity() Severity { return SeverityWarning }
func (e NewMergeGroupDiscarded) getStack() []byte   { return e.stack }
func (e NewMergeGroupDiscarded) withStack(s []byte) Diagnostic {
	e.stack = s
	return e
}

type NewFormatLimit struct {
	Detail string
	stack  []byte
}

func (e NewFormatLimit) Error() string {
	return fmt.Sprintf("output exceeds target format limit: %s", e.Detail)
}
func (e NewFormatLimit) Code() Code         { return FormatLimit }
func (e NewFormatLimit) Severity() Severity { return SeverityFatal }
func (e NewFormatLimit) getStack() []byte   { return e.stack }
func (e NewFormatLimit) withStack(s []byte) Diagnostic {
	e.stack = s
	return e
}
