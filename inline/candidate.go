package inline

import (
	"github.com/weg2020/r8/classdef"
	"github.com/weg2020/r8/keep"
	"github.com/weg2020/r8/ssa"
	"github.com/weg2020/r8/symbol"
)

// ctorArgLiteral is one constant argument of a trivial class initializer's
// constructor call (spec §4.4, "constant or class-literal arguments").
type ctorArgLiteral struct {
	isNull bool
	intVal int64
}

// instruction builds the constant-producing instruction for lit, defining
// result.
func (lit ctorArgLiteral) instruction(result ssa.Value) ssa.Instruction {
	if lit.isNull {
		return &ssa.ConstNull{Result: result}
	}
	return &ssa.ConstInt{Result: result, Int: lit.intVal}
}

// Candidate is one inlining root within a single method body (spec §4.4,
// "Candidate selection"): either a `new T(...)` immediately followed by its
// constructor call, or a `static-get` of a field a trivial class
// initializer populates.
//
// RootInst identifies the root's defining instruction by object identity
// rather than a (block, index) pair: the transform splices and splits
// blocks as it runs, so any cached position goes stale after the first
// force-inline step. locateInstruction re-finds it fresh on every processor
// iteration instead.
type Candidate struct {
	Root     ssa.Value
	Class    *classdef.ClassDefinition
	RootInst ssa.Instruction

	// CtorCall is the constructor InvokeMethod immediately following a
	// NewInstance root. Nil for a static-get root, which has no constructor
	// call of its own within this method — CtorRef/CtorArgs describe the
	// trivial initializer's constructor call instead, to be synthesized at
	// the static-get site on first use.
	CtorCall *ssa.InvokeMethod
	CtorRef  symbol.MethodReference
	CtorArgs []ctorArgLiteral
}

// findCandidates scans method for inlining roots whose class is
// class-eligible. It does not check usage eligibility — that is usage.go's
// job, re-run by the processor after every successful force-inline.
func findCandidates(view *classdef.ApplicationView, oracle *keep.Oracle, method *ssa.Method) []*Candidate {
	var out []*Candidate
	for _, block := range method.Blocks {
		for idx, inst := range block.Instructions {
			switch v := inst.(type) {
			case *ssa.NewInstance:
				ctorCall, ok := findImmediateConstructorCall(block, idx, v.Result)
				if !ok {
					continue
				}
				class, ok := view.Resolve(v.Class)
				if !ok || !view.IsProgramClass(v.Class) || !ClassEligible(view, oracle, class) {
					continue
				}
				out = append(out, &Candidate{
					Root:     v.Result,
					Class:    class,
					RootInst: v,
					CtorCall: ctorCall,
				})
			case *ssa.StaticGet:
				class, ok := view.Resolve(v.Field.Holder)
				if !ok || !view.IsProgramClass(v.Field.Holder) || !ClassEligible(view, oracle, class) {
					continue
				}
				clinit := class.StaticInitializer()
				if clinit == nil {
					continue
				}
				trivialField, known := clinit.Info.TrivialClassInitializerField()
				if !known || !trivialField.Equal(v.Field) {
					continue
				}
				ctorRef, args, ok := trivialCtorOf(class, clinit)
				if !ok {
					continue
				}
				out = append(out, &Candidate{
					Root:     v.Result,
					Class:    class,
					RootInst: v,
					CtorRef:  ctorRef,
					CtorArgs: args,
				})
			}
		}
	}
	return out
}

// findImmediateConstructorCall finds the InvokeMethod that directly follows
// the NewInstance at newIdx and targets newResult as its receiver — spec
// §4.4's "immediately followed by its constructor call". The search allows
// intervening argument-materializing instructions (e.g. ConstInt) since
// those compute the constructor's arguments, but rejects anything that
// reads or writes newResult before the constructor call runs.
func findImmediateConstructorCall(block *ssa.Block, newIdx int, newResult ssa.Value) (*ssa.InvokeMethod, bool) {
	for i := newIdx + 1; i < len(block.Instructions); i++ {
		inst := block.Instructions[i]
		if call, ok := inst.(*ssa.InvokeMethod); ok && call.Receiver == newResult && call.Method.Name == "<init>" {
			return call, true
		}
		for _, u := range inst.Uses() {
			if u == newResult {
				return nil, false
			}
		}
	}
	return nil, false
}

// trivialCtorOf re-derives the trivial class initializer's constructor
// reference and literal arguments from clinit's body — the same pattern
// analyzeTrivialInitializer matched to cache the field fact, re-walked here
// to recover the constructor call itself for synthesis at the static-get
// site.
func trivialCtorOf(class *classdef.ClassDefinition, clinit *classdef.MethodDefinition) (symbol.MethodReference, []ctorArgLiteral, bool) {
	if clinit.Body == nil || len(clinit.Body.Blocks) != 1 {
		return symbol.MethodReference{}, nil, false
	}
	block := clinit.Body.Blocks[0]
	var newInst *ssa.NewInstance
	for _, inst := range block.Instructions {
		if v, ok := inst.(*ssa.NewInstance); ok && v.Class.Equal(class.Type) {
			newInst = v
			break
		}
	}
	if newInst == nil {
		return symbol.MethodReference{}, nil, false
	}
	for _, inst := range block.Instructions {
		call, ok := inst.(*ssa.InvokeMethod)
		if !ok || call.Receiver != newInst.Result || call.Method.Name != "<init>" {
			continue
		}
		args := make([]ctorArgLiteral, len(call.Args))
		for i, a := range call.Args {
			lit, ok := constantValueOf(block, a)
			if !ok {
				return symbol.MethodReference{}, nil, false
			}
			args[i] = lit
		}
		return call.Method, args, true
	}
	return symbol.MethodReference{}, nil, false
}

func constantValueOf(block *ssa.Block, v ssa.Value) (ctorArgLiteral, bool) {
	for _, inst := range block.Instructions {
		switch c := inst.(type) {
		case *ssa.ConstInt:
			if c.Result == v {
				return ctorArgLiteral{intVal: c.Int}, true
			}
		case *ssa.ConstNull:
			if c.Result == v {
				return ctorArgLiteral{isNull: true}, true
			}
		}
	}
	return ctorArgLiteral{}, false
}
