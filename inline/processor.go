package inline

import (
	"log/slog"

	"github.com/weg2020/r8/classdef"
	"github.com/weg2020/r8/diag"
	"github.com/weg2020/r8/keep"
	"github.com/weg2020/r8/options"
	"github.com/weg2020/r8/ssa"
	"github.com/weg2020/r8/util"
)

// ProcessMethod runs spec §4.4's per-candidate worklist against every
// inlining root found in method: collect uses, force-inline the ones usage
// eligibility allows, and re-scan until either nothing eligible remains (so
// the candidate is finalized) or an ineligible use is found (so the
// candidate is abandoned and the method is left exactly as it was up to
// that point). InlineCandidateProcessor.processInlining is the model for
// this re-check-after-every-step shape — eligibility is never decided once
// up front.
func ProcessMethod(view *classdef.ApplicationView, oracle *keep.Oracle, opts options.Options, method *ssa.Method, sink *diag.Sink) {
	var worklist util.Stack[*Candidate]
	for _, c := range findCandidates(view, oracle, method) {
		worklist.Push(c)
	}
	for worklist.Len() > 0 {
		c, _ := worklist.Pop()
		processCandidate(view, oracle, opts, method, c, sink)
	}
}

// processCandidate drives one candidate's worklist to completion or
// abandonment. A static-get root has no constructor call of its own to
// force-inline; its first step instead synthesizes one (synthesizeCtorCall)
// so the rest of the loop can treat it exactly like a `new T(...)` root.
func processCandidate(view *classdef.ApplicationView, oracle *keep.Oracle, opts options.Options, method *ssa.Method, c *Candidate, sink *diag.Sink) {
	if c.CtorCall == nil {
		synthesizeCtorCall(method, c)
	}

	for {
		scan := scanUsage(view, oracle, method, c)
		if !scan.eligible {
			return
		}

		if len(scan.nullifyArgs) == 0 && len(scan.forceInline) == 0 {
			finalizeCandidate(method, c)
			logger.Debug("inlined candidate",
				slog.String("class", c.Class.Type.Descriptor()),
				slog.Int("instructions", method.InstructionCount()))
			return
		}

		for _, site := range scan.nullifyArgs {
			nullifyArgument(method, site)
		}

		progressed := false
		for _, call := range scan.forceInline {
			callee, ok := resolveCalleeBody(c, call)
			if !ok {
				return
			}
			estimated := method.InstructionCount() + callee.InstructionCount()
			if opts.InlinerSizeCeiling > 0 && estimated > opts.InlinerSizeCeiling {
				sink.Report(diag.New(diag.NewBudgetExceeded{
					Candidate: c.Class.Type.Descriptor(),
					Estimated: estimated,
					Ceiling:   opts.InlinerSizeCeiling,
				}))
				return
			}
			if !forceInlineCall(method, call, callee) {
				return
			}
			progressed = true
			break // re-scan: splicing renumbers blocks, stale calls in scan.forceInline are unsafe to reuse.
		}
		if !progressed && len(scan.nullifyArgs) == 0 {
			return
		}
	}
}

// resolveCalleeBody finds call's single resolution target's body: either
// c's own constructor (for CtorCall) or an eligibility-annotated instance
// method declared directly on c.Class, which is the only shape scanUsage
// ever adds to forceInline.
func resolveCalleeBody(c *Candidate, call *ssa.InvokeMethod) (*ssa.Method, bool) {
	target, ok := c.Class.FindMethod(call.Method.MethodSignature)
	if !ok || target.Body == nil {
		return nil, false
	}
	return target.Body, true
}

// nullifyArgument implements spec §4.4 transform step 1: an argument
// occurrence whose receiving parameter is provably unused is replaced with
// a fresh null constant rather than the root value, so the root's identity
// no longer flows into that call.
func nullifyArgument(method *ssa.Method, site argNullSite) {
	v := method.FreshValue()
	block, idx, ok := locateInstruction(method, site.call)
	if !ok {
		return
	}
	block.InsertBefore(idx, &ssa.ConstNull{Result: v})
	site.call.Args[site.index] = v
}
