package inline

import (
	"github.com/weg2020/r8/classdef"
	"github.com/weg2020/r8/diag"
	"github.com/weg2020/r8/keep"
	"github.com/weg2020/r8/lens"
	"github.com/weg2020/r8/options"
	"github.com/weg2020/r8/symbol"
)

// Pass implements the driver's uniform capability (spec §9) for class
// inlining. It never renames anything — every transformation happens inside
// a method's own SSA body — so it always returns a nil lens and the
// (in-place mutated) program map, matching merge.Pass's shape for a
// renaming pass structurally but taking the nil-lens branch documented on
// driver.Pass.
type Pass struct {
	Oracle  *keep.Oracle
	Options options.Options
}

func NewPass(oracle *keep.Oracle, opts options.Options) *Pass {
	return &Pass{Oracle: oracle, Options: opts}
}

// Name satisfies driver.Pass by structural typing — this package never
// imports driver.
func (p *Pass) Name() string { return "class-inlining" }

// Run analyzes every program class once (AnalyzeProgram), then processes
// every program method's body independently. Per-method work is
// embarrassingly parallel — no method's candidates interact with another
// method's — so the driver's worker pool is free to fan this out; Run
// itself just iterates, leaving pool dispatch to the caller the way
// merge.Pass's own per-group loop does.
func (p *Pass) Run(view *classdef.ApplicationView, sink *diag.Sink) (*lens.Lens, map[symbol.Type]*classdef.ClassDefinition, error) {
	AnalyzeProgram(view)

	newProgram := make(map[symbol.Type]*classdef.ClassDefinition, view.ProgramClassCount())
	for _, class := range view.ProgramClasses() {
		newProgram[class.Type] = class
		for _, m := range class.Methods {
			if m.Body == nil {
				continue
			}
			ProcessMethod(view, p.Oracle, p.Options, m.Body, sink)
		}
	}

	return nil, newProgram, nil
}
