package inline

import (
	"github.com/weg2020/r8/classdef"
	"github.com/weg2020/r8/keep"
	"github.com/weg2020/r8/ssa"
)

// argNullSite is one place an eligible-but-unused argument occurrence of a
// root must be replaced with a null constant (spec §4.4 transform step 1).
type argNullSite struct {
	call  *ssa.InvokeMethod
	index int
}

// usageScan is the result of checking every use of one candidate's root
// against spec §4.4's usage-eligibility rules.
type usageScan struct {
	eligible bool

	// forceInline lists every call on the root itself (the constructor, plus
	// any eligibility-annotated method call) that must be flattened into the
	// owning method before field-read replacement can proceed.
	forceInline []*ssa.InvokeMethod

	// nullifyArgs lists every occurrence of the root passed as an argument
	// whose receiving parameter is provably unused.
	nullifyArgs []argNullSite
}

// scanUsage walks every instruction of method looking for uses of c.Root,
// classifying each against spec §4.4's usage-eligibility list. It is rerun
// by the processor after every force-inline step, since flattening one call
// can turn a previously-ineligible use into an eligible one (an argument
// that only fed one further eligibility-annotated call becomes directly
// checkable once that call's body is spliced in) — InlineCandidateProcessor
// confirms this re-check is not optional.
func scanUsage(view *classdef.ApplicationView, oracle *keep.Oracle, method *ssa.Method, c *Candidate) usageScan {
	scan := usageScan{eligible: true}

	for _, block := range method.Blocks {
		for _, inst := range block.Instructions {
			if inst == c.RootInst {
				continue // the root-defining instruction itself
			}
			if c.CtorCall != nil && inst == c.CtorCall {
				scan.forceInline = append(scan.forceInline, c.CtorCall)
				continue
			}

			switch v := inst.(type) {
			case *ssa.FieldGet:
				if v.Receiver == c.Root {
					if !fieldIsOwnInstanceField(c.Class, v.Field.Name) {
						scan.eligible = false
					}
				}
			case *ssa.FieldPut:
				switch {
				case v.Value == c.Root && v.Receiver != c.Root:
					scan.eligible = false // root stored into a foreign object, an escape
				case v.Receiver == c.Root && !fieldIsOwnInstanceField(c.Class, v.Field.Name):
					scan.eligible = false
				}
			case *ssa.InvokeMethod:
				if v.Receiver == c.Root {
					if !scanEligibleMethodCall(method, oracle, c, v) {
						scan.eligible = false
					} else {
						scan.forceInline = append(scan.forceInline, v)
					}
					continue
				}
				for argIdx, a := range v.Args {
					if a != c.Root {
						continue
					}
					if !scanEligibleArgumentUse(view, v, argIdx) {
						scan.eligible = false
					} else {
						scan.nullifyArgs = append(scan.nullifyArgs, argNullSite{call: v, index: argIdx})
					}
				}
			default:
				for _, u := range inst.Uses() {
					if u == c.Root {
						scan.eligible = false
					}
				}
			}
			if !scan.eligible {
				return scan
			}
		}
	}
	return scan
}

func fieldIsOwnInstanceField(class *classdef.ClassDefinition, name string) bool {
	f, ok := class.FindField(name)
	return ok && !f.Access.IsStatic()
}

// scanEligibleMethodCall implements spec §4.4's second usage-eligibility
// bullet: call must resolve to exactly one target on c.Class, eligibility-
// annotated as either "does not leak receiver" or "returns receiver but the
// return value is unused here".
func scanEligibleMethodCall(method *ssa.Method, oracle *keep.Oracle, c *Candidate, call *ssa.InvokeMethod) bool {
	target, ok := c.Class.FindMethod(call.Method.MethodSignature)
	if !ok || target.Body == nil {
		return false
	}
	if !oracle.QueryMethod(target.Ref).MayInline() {
		return false
	}
	kind, known := target.Info.Eligibility()
	if !known {
		return false
	}
	switch kind {
	case classdef.DoesNotLeakReceiver:
		return true
	case classdef.ReturnsReceiverUnused:
		return call.Result.IsNone() || !method.ReferencesValue(call.Result)
	default:
		return false
	}
}

// scanEligibleArgumentUse implements spec §4.4's third usage-eligibility
// bullet for the "parameter is unused" case. The "used only to invoke one
// further eligibility-annotated method on it" alternative requires tracking
// the parameter's uses inside the callee and is left to the force-inline
// worklist: if the callee is itself small enough and gets force-inlined by a
// later pass of the owning method, the argument use disappears and this
// check is re-run from scratch.
func scanEligibleArgumentUse(view *classdef.ApplicationView, call *ssa.InvokeMethod, argIdx int) bool {
	callee, ok := view.Resolve(call.Method.Holder)
	if !ok {
		return false
	}
	target, ok := callee.FindMethod(call.Method.MethodSignature)
	if !ok {
		return false
	}
	return target.Info.ParamUnused(argIdx)
}
