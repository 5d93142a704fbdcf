package driver

import (
	"github.com/hashicorp/go-set/v3"

	"github.com/weg2020/r8/classdef"
	"github.com/weg2020/r8/diag"
	"github.com/weg2020/r8/keep"
	"github.com/weg2020/r8/lens"
	"github.com/weg2020/r8/ssa"
	"github.com/weg2020/r8/symbol"
	"github.com/weg2020/r8/util"
)

// TreeShakePass implements step 1 of the fixed pass order (spec §4.5,
// "Initial tree shaking (mark live symbols)"): a mark-and-sweep reachability
// analysis seeded at every pinned program class, walking direct references
// (allocations, invokes, field/static accesses, superclass/interface edges)
// recorded in method IR. It emits no lens — dead classes are dropped outright,
// never renamed.
//
// This is a deliberately direct-reference walk, not a virtual-dispatch-aware
// call graph: resolving which override a given invoke-virtual may reach at
// runtime is whole-program call-graph construction, outside this module's §4
// scope. The walk is therefore conservative in the safe direction — it can
// retain more than a full call-graph analysis would, never less, since every
// class with a live reference anywhere in a live method's body is kept.
type TreeShakePass struct {
	Oracle *keep.Oracle
}

func NewTreeShakePass(oracle *keep.Oracle) *TreeShakePass {
	return &TreeShakePass{Oracle: oracle}
}

func (p *TreeShakePass) Name() string { return "tree-shaking" }

func (p *TreeShakePass) Run(view *classdef.ApplicationView, sink *diag.Sink) (*lens.Lens, map[symbol.Type]*classdef.ClassDefinition, error) {
	live := set.New[symbol.Type](view.ProgramClassCount())
	var worklist util.Stack[symbol.Type]

	for _, c := range view.ProgramClasses() {
		if p.Oracle.QueryType(c.Type).Pinned {
			live.Insert(c.Type)
			worklist.Push(c.Type)
		}
	}

	for worklist.Len() > 0 {
		t, _ := worklist.Pop()

		class, ok := view.Resolve(t)
		if !ok {
			continue
		}
		for _, ref := range referencedTypes(class) {
			if !view.IsProgramClass(ref) || live.Contains(ref) {
				continue
			}
			live.Insert(ref)
			worklist.Push(ref)
		}
	}

	newProgram := make(map[symbol.Type]*classdef.ClassDefinition, live.Size())
	for _, c := range view.ProgramClasses() {
		if live.Contains(c.Type) {
			newProgram[c.Type] = c
		}
	}
	return nil, newProgram, nil
}

// referencedTypes returns every type class directly references: its
// superclass, its interfaces, and every type mentioned by an instruction in
// any method body (allocated, invoked-on, or field/static-accessed).
func referencedTypes(class *classdef.ClassDefinition) []symbol.Type {
	var out []symbol.Type
	if !class.Super.IsZero() {
		out = append(out, class.Super)
	}
	out = append(out, class.Interfaces...)

	for _, m := range class.Methods {
		if m.Body == nil {
			continue
		}
		for _, block := range m.Body.Blocks {
			for _, inst := range block.Instructions {
				out = append(out, instructionReferences(inst)...)
			}
		}
	}
	return out
}

func instructionReferences(inst ssa.Instruction) []symbol.Type {
	switch i := inst.(type) {
	case *ssa.NewInstance:
		return []symbol.Type{i.Class}
	case *ssa.InvokeMethod:
		return []symbol.Type{i.Method.Holder}
	case *ssa.FieldGet:
		return []symbol.Type{i.Field.Holder}
	case *ssa.FieldPut:
		return []symbol.Type{i.Field.Holder}
	case *ssa.StaticGet:
		return []symbol.Type{i.Field.Holder}
	case *ssa.StaticPut:
		return []symbol.Type{i.Field.Holder}
	default:
		return nil
	}
}
