package driver

import (
	"fmt"
	"log/slog"

	"github.com/weg2020/r8/classdef"
	"github.com/weg2020/r8/diag"
	"github.com/weg2020/r8/internal/log"
	"github.com/weg2020/r8/keep"
	"github.com/weg2020/r8/lens"
	"github.com/weg2020/r8/options"
	"github.com/weg2020/r8/symbol"
)

// Step names the fixed pass order of spec §4.5. A Step whose Pass is nil
// reserves its position in the order without running anything: vertical
// class merging, enum unboxing, proto normalization, and minification sit
// outside this module's §1 scope, but the driver still sequences their slot
// so a caller that does implement them plugs in without reordering anything
// else.
type Step struct {
	Name string
	Pass Pass
}

// Driver sequences Steps in order, rebuilding the application view after
// every lens-producing step and sweeping empty, unpinned classes after each
// one (spec §8 boundary behavior, "a class with no remaining members after
// optimization is removed outright unless pinned").
type Driver struct {
	Options options.Options
	Oracle  *keep.Oracle
	Steps   []Step
}

// NewDriver builds the seven pass steps of spec §4.5's fixed order; the
// final writer handoff is left to the caller of Run. Any of verticalMerge,
// enumUnboxing, protoNormalize, or minify may be nil — this module implements
// tree shaking, horizontal merging, and class inlining; the others are
// external collaborators' slots.
func NewDriver(opts options.Options, oracle *keep.Oracle, treeShake, verticalMerge, horizontalMerge, enumUnboxing, protoNormalize, classInline, minify Pass) *Driver {
	return &Driver{
		Options: opts,
		Oracle:  oracle,
		Steps: []Step{
			{Name: "tree-shaking", Pass: treeShake},
			{Name: "vertical-class-merging", Pass: verticalMerge},
			{Name: "horizontal-class-merging", Pass: horizontalMerge},
			{Name: "enum-unboxing", Pass: enumUnboxing},
			{Name: "proto-normalization", Pass: protoNormalize},
			{Name: "ir-optimizations", Pass: classInline},
			{Name: "minification", Pass: minify},
		},
	}
}

// Run executes every enabled, non-nil step in order and returns the final
// view, the accumulated diagnostics, and phase timings. It aborts (without
// running later steps) the moment a step's Run returns an error or reports a
// fatal diagnostic (spec §7's abort-on-fatal rule).
func (d *Driver) Run(view *classdef.ApplicationView) (*classdef.ApplicationView, *diag.Sink, *Timings, error) {
	sink := diag.NewSink()
	timings := &Timings{}

	for _, step := range d.Steps {
		if step.Pass == nil || !d.Options.PassEnabled(step.Name) {
			continue
		}

		var stepLens *lens.Lens
		var newProgram map[symbol.Type]*classdef.ClassDefinition

		err := timings.Record(step.Name, func() error {
			var runErr error
			stepLens, newProgram, runErr = step.Pass.Run(view, sink)
			return runErr
		})
		if err != nil {
			return view, sink, timings, fmt.Errorf("pass %q: %w", step.Name, err)
		}
		if sink.HasFatal() {
			return view, sink, timings, fmt.Errorf("pass %q: aborted after fatal diagnostic", step.Name)
		}

		if newProgram != nil {
			newProgram = d.sweepEmptyClasses(newProgram)
			if stepLens != nil {
				next, err := view.Rebuild(stepLens, newProgram)
				if err != nil {
					return view, sink, timings, fmt.Errorf("pass %q: rebuilding view: %w", step.Name, err)
				}
				view = next
			} else {
				view = view.WithProgram(newProgram)
			}
		}

		log.DefaultLogger.Debug("pass complete",
			slog.String("section", "driver"),
			slog.String("step", step.Name),
			slog.Int("programClasses", view.ProgramClassCount()))
	}

	timings.Log()
	return view, sink, timings, nil
}

// sweepEmptyClasses drops every unpinned class with no remaining fields or
// methods, per spec §8's removal boundary behavior.
func (d *Driver) sweepEmptyClasses(program map[symbol.Type]*classdef.ClassDefinition) map[symbol.Type]*classdef.ClassDefinition {
	out := make(map[symbol.Type]*classdef.ClassDefinition, len(program))
	for t, c := range program {
		if c.IsEmpty() && d.Oracle.QueryType(c.Type).MayRemove() {
			continue
		}
		out[t] = c
	}
	return out
}
