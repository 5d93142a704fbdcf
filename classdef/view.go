package classdef

import (
	"github.com/weg2020/r8/lens"
	"github.com/weg2020/r8/symbol"
)

// ApplicationView is the snapshot visible to a pass (spec §3). It is shared
// read-only within a pass (spec §5): no pass ever mutates the maps held
// here directly. A lens-producing pass instead builds a new class map and
// hands it, plus its lens, to Rebuild, which returns a fresh ApplicationView
// for the driver to install for the next pass.
type ApplicationView struct {
	Pool *symbol.Pool

	program map[symbol.Type]*ClassDefinition
	library map[symbol.Type]*ClassDefinition

	lens *lens.Stack
}

// NewApplicationView builds the initial view handed to the first pass. pool
// must be the same Pool used to intern every Type reachable from program or
// library.
func NewApplicationView(pool *symbol.Pool, program, library map[symbol.Type]*ClassDefinition) *ApplicationView {
	return &ApplicationView{
		Pool:    pool,
		program: program,
		library: library,
		lens:    lens.NewStack(),
	}
}

func (v *ApplicationView) Lens() *lens.Stack { return v.lens }

// Resolve looks up t's ClassDefinition, in program then library.
func (v *ApplicationView) Resolve(t symbol.Type) (*ClassDefinition, bool) {
	if c, ok := v.program[t]; ok {
		return c, true
	}
	if c, ok := v.library[t]; ok {
		return c, true
	}
	return nil, false
}

func (v *ApplicationView) IsProgramClass(t symbol.Type) bool {
	_, ok := v.program[t]
	return ok
}

func (v *ApplicationView) IsLibraryClass(t symbol.Type) bool {
	_, ok := v.library[t]
	return ok
}

// ProgramClasses returns every program class, for passes that need to
// iterate the whole program (tree shaking, the merger's candidate scan).
func (v *ApplicationView) ProgramClasses() []*ClassDefinition {
	out := make([]*ClassDefinition, 0, len(v.program))
	for _, c := range v.program {
		out = append(out, c)
	}
	return out
}

func (v *ApplicationView) ProgramClassCount() int { return len(v.program) }

// Rebuild returns a new ApplicationView with newLens pushed onto the lens
// stack and program replaced by newProgram. newProgram's keys must already
// be post-lens Types; the caller (a lens-producing pass) is responsible for
// having produced a class map consistent with newLens, since the invariant
// "every reference resolves via the current lens" (spec §3) is established
// by construction, not re-derived here. It fails if newLens conflicts with
// an earlier lens already on the stack (spec §4.1's composition rule).
func (v *ApplicationView) Rebuild(newLens *lens.Lens, newProgram map[symbol.Type]*ClassDefinition) (*ApplicationView, error) {
	next, err := v.lens.Push(newLens)
	if err != nil {
		return nil, err
	}
	return &ApplicationView{
		Pool:    v.Pool,
		program: newProgram,
		library: v.library,
		lens:    next,
	}, nil
}

// WithProgram returns a copy of v with only its program map replaced,
// emitting no lens — used by passes that mutate class contents in place
// (e.g. removing empty classes) without renaming anything.
func (v *ApplicationView) WithProgram(newProgram map[symbol.Type]*ClassDefinition) *ApplicationView {
	return &ApplicationView{
		Pool:    v.Pool,
		program: newProgram,
		library: v.library,
		lens:    v.lens,
	}
}
