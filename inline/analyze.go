package inline

import (
	"log/slog"

	"github.com/weg2020/r8/classdef"
	"github.com/weg2020/r8/internal/log"
	"github.com/weg2020/r8/ssa"
)

var logger = log.DefaultLogger.With("section", "inline")

// AnalyzeProgram runs, once per driver pass, the analyses spec §4.4 requires
// before any per-method inlining work starts: each class's trivial class
// initializer (if it has one) and each method's receiver-eligibility and
// unused-parameter facts. ClassInliner.java confirms this triviality check
// is computed once and cached rather than redone per candidate, which is why
// this is a whole-program pass rather than something the processor calls
// lazily.
func AnalyzeProgram(view *classdef.ApplicationView) {
	for _, class := range view.ProgramClasses() {
		analyzeTrivialInitializer(class)
		for _, m := range class.Methods {
			analyzeMethod(class, m)
		}
	}
}

// analyzeTrivialInitializer detects the pattern of spec §4.4's "Trivial
// class initializer": a <clinit> consisting solely of allocating an
// instance of the enclosing class, calling its constructor with constant
// arguments, and storing the result into a static final field.
func analyzeTrivialInitializer(class *classdef.ClassDefinition) {
	clinit := class.StaticInitializer()
	if clinit == nil || clinit.Body == nil || len(clinit.Body.Blocks) != 1 {
		return
	}
	block := clinit.Body.Blocks[0]

	var newInst *ssa.NewInstance
	var ctorCall *ssa.InvokeMethod
	var store *ssa.StaticPut

	for _, inst := range block.Instructions {
		switch v := inst.(type) {
		case *ssa.NewInstance:
			if newInst != nil || !v.Class.Equal(class.Type) {
				return
			}
			newInst = v
		case *ssa.InvokeMethod:
			if ctorCall != nil || newInst == nil || v.Receiver != newInst.Result {
				return
			}
			if !v.Method.Holder.Equal(class.Type) || v.Method.Name != "<init>" {
				return
			}
			for _, a := range v.Args {
				if !isConstant(block, a) {
					return
				}
			}
			ctorCall = v
		case *ssa.StaticPut:
			if store != nil || ctorCall == nil || v.Value != newInst.Result {
				return
			}
			if !v.Field.Holder.Equal(class.Type) {
				return
			}
			field, ok := class.FindField(v.Field.Name)
			if !ok || !field.IsStaticFinal() {
				return
			}
			store = v
		case *ssa.ConstInt, *ssa.ConstNull:
			// materializes a constructor argument; isConstant checks its use.
		case *ssa.Return:
			// permitted trailer; nothing to record.
		default:
			return
		}
	}

	if newInst != nil && ctorCall != nil && store != nil {
		clinit.Info.RefineTrivialClassInitializerField(store.Field)
		logger.Debug("trivial class initializer", slog.String("class", class.Type.Descriptor()), slog.String("field", store.Field.Name))
	}
}

// isConstant reports whether v is produced by a constant-materializing
// instruction within block — the only argument shape a trivial class
// initializer's constructor call may use (spec §4.4, "constant or
// class-literal arguments").
func isConstant(block *ssa.Block, v ssa.Value) bool {
	for _, inst := range block.Instructions {
		switch c := inst.(type) {
		case *ssa.ConstInt:
			if c.Result == v {
				return true
			}
		case *ssa.ConstNull:
			if c.Result == v {
				return true
			}
		}
	}
	return false
}

// analyzeMethod refines m's eligibility-as-callee fact and its
// unused-parameter bitset. Static methods and abstract methods carry no
// receiver and are never eligibility-annotated; the inliner only ever
// force-inlines instance methods invoked on a root.
func analyzeMethod(class *classdef.ClassDefinition, m *classdef.MethodDefinition) {
	if m.Body == nil {
		return
	}

	hasReceiver := !m.Access.IsStatic()
	if hasReceiver && len(m.Body.Params) > 0 {
		this := m.Body.Params[0]
		doesNotLeak, returnsReceiverOnly := classifyReceiverEscape(m.Body, this)
		switch {
		case doesNotLeak:
			m.Info.RefineEligibility(classdef.DoesNotLeakReceiver)
		case returnsReceiverOnly:
			m.Info.RefineEligibility(classdef.ReturnsReceiverUnused)
			m.Info.RefineReturnsReceiver(true)
		default:
			m.Info.RefineEligibility(classdef.NotEligible)
		}
	}

	m.Info.RefineUnusedParameters(unusedParamBitset(m.Body, hasReceiver))
}

// classifyReceiverEscape walks every instruction in body and classifies how
// `this` is used. A field access through this is always permitted; any
// other use (argument, stored into another object's field, branch
// condition, ...) is an escape. A method whose only uses of this are field
// accesses never leaks its receiver; a method whose only uses are field
// accesses plus returning this from every return statement returns its
// receiver without otherwise leaking it.
func classifyReceiverEscape(body *ssa.Method, this ssa.Value) (doesNotLeak, returnsReceiverOnly bool) {
	leaks := false
	sawReturn := false
	returnsThis := false
	allReturnsAreReceiver := true

	for _, b := range body.Blocks {
		for _, inst := range b.Instructions {
			switch v := inst.(type) {
			case *ssa.FieldGet:
				// a field read through any receiver never leaks this.
			case *ssa.FieldPut:
				if v.Value == this && v.Receiver != this {
					leaks = true
				}
			case *ssa.Return:
				sawReturn = true
				if v.Value == this {
					returnsThis = true
				} else {
					allReturnsAreReceiver = false
				}
			default:
				for _, u := range inst.Uses() {
					if u == this {
						leaks = true
					}
				}
			}
		}
	}

	if leaks || (returnsThis && !allReturnsAreReceiver) {
		return false, false
	}
	if sawReturn && allReturnsAreReceiver {
		return false, true
	}
	return true, false
}

// unusedParamBitset computes, for every non-receiver parameter, whether the
// method body ever uses it — the fact spec §4.4's transformation step 1
// ("replace that argument with a null constant") consults. Bit i corresponds
// to Args[i] of a call against this method, which is why a receiver (if any)
// is skipped rather than counted.
func unusedParamBitset(body *ssa.Method, hasReceiver bool) uint64 {
	var bits uint64
	offset := 0
	if hasReceiver {
		offset = 1
	}
	for i := offset; i < len(body.Params); i++ {
		if !body.ReferencesValue(body.Params[i]) {
			bits |= 1 << uint(i-offset)
		}
	}
	return bits
}
