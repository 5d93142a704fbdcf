// Package driver implements the whole-program driver of spec §4.5: it
// sequences passes in the fixed order, rebuilds the application view after
// each lens-producing pass, and exposes the generic worker pool passes
// dispatch per-method or per-class work through (spec §5).
package driver

import (
	"github.com/weg2020/r8/classdef"
	"github.com/weg2020/r8/diag"
	"github.com/weg2020/r8/lens"
	"github.com/weg2020/r8/symbol"
)

// Pass is the uniform capability every optimization pass implements (spec
// §9, "passes implement a uniform interface run(view, scheduler) →
// lens_or_none"). A pass that renames, moves, or changes the prototype of
// any symbol returns a non-nil lens and the rebuilt program map; a pass that
// only mutates class contents in place (no renaming) returns a nil lens and
// the mutated program map; a pass with nothing to do returns (nil, nil,
// nil).
//
// Any concrete pass type satisfies this interface structurally — the driver
// never imports a specific pass package, only registers Pass values built
// by the caller (spec §9, "no runtime reflection").
type Pass interface {
	Name() string
	Run(view *classdef.ApplicationView, sink *diag.Sink) (*lens.Lens, map[symbol.Type]*classdef.ClassDefinition, error)
}

// PassFunc adapts a bare function to Pass, for steps with no state beyond
// their run function.
type PassFunc struct {
	PassName string
	RunFunc  func(view *classdef.ApplicationView, sink *diag.Sink) (*lens.Lens, map[symbol.Type]*classdef.ClassDefinition, error)
}

func (p PassFunc) Name() string { return p.PassName }
func (p PassFunc) Run(view *classdef.ApplicationView, sink *diag.Sink) (*lens.Lens, map[symbol.Type]*classdef.ClassDefinition, error) {
	return p.RunFunc(view, sink)
}
