package classdef

import (
	"sync"

	"github.com/weg2020/r8/symbol"
)

// EligibilityKind is the eligibility annotation of spec §4.4: a fact about
// how a virtual/interface method treats its receiver, consulted by the
// class inliner when deciding whether a use of a candidate root is safe to
// flatten.
type EligibilityKind uint8

const (
	// NotEligible means this method resolution target does not qualify for
	// either eligibility annotation below; uses of it on a would-be root are
	// not inlinable.
	NotEligible EligibilityKind = iota
	// DoesNotLeakReceiver means the method never lets its receiver escape
	// (store it, return it and have the value observed, pass it onward
	// except to other eligibility-annotated calls).
	DoesNotLeakReceiver
	// ReturnsReceiverUnused means the method returns its receiver, but every
	// call site considered here discards the return value.
	ReturnsReceiverUnused
)

// OptimizationInfo is the per-method record described in spec §3: a
// fixed-shape collection of Facts, each a lattice, refined by Join and never
// weakened between lens-producing passes. It is written by at most one pass
// at a time (spec §5); mu guards that.
type OptimizationInfo struct {
	mu sync.Mutex

	// UnusedParameters records, for methods whose body has been analyzed,
	// which parameter slots are provably never read.
	unusedParameters Fact[uint64] // bitset, one bit per parameter slot

	// ReturnsReceiver records whether a virtual/instance method's every
	// return statement returns `this` unmodified.
	returnsReceiver Fact[bool]

	// Eligibility is the class-inliner eligibility annotation for this
	// method as a callee (spec §4.4).
	eligibility Fact[EligibilityKind]

	// TrivialClassInitializerField is populated on a class's <clinit>
	// MethodDefinition: if known, its value is the static final field that
	// the class initializer trivially allocates-and-stores into (spec §4.4,
	// "Trivial class initializer"). A zero symbol.FieldReference with known
	// true can never occur because FieldReference always carries a holder.
	trivialClassInitializerField Fact[symbol.FieldReference]
}

func NewOptimizationInfo() *OptimizationInfo {
	return &OptimizationInfo{}
}

func (o *OptimizationInfo) UnusedParameters() (uint64, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.unusedParameters.Value()
}

func (o *OptimizationInfo) RefineUnusedParameters(bitset uint64) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.unusedParameters = o.unusedParameters.Join(KnownFact(bitset))
}

func (o *OptimizationInfo) ParamUnused(index int) bool {
	bits, ok := o.UnusedParameters()
	return ok && bits&(1<<uint(index)) != 0
}

func (o *OptimizationInfo) ReturnsReceiver() (bool, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.returnsReceiver.Value()
}

func (o *OptimizationInfo) RefineReturnsReceiver(v bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.returnsReceiver = o.returnsReceiver.Join(KnownFact(v))
}

func (o *OptimizationInfo) Eligibility() (EligibilityKind, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.eligibility.Value()
}

func (o *OptimizationInfo) RefineEligibility(kind EligibilityKind) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.eligibility = o.eligibility.Join(KnownFact(kind))
}

func (o *OptimizationInfo) TrivialClassInitializerField() (symbol.FieldReference, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.trivialClassInitializerField.Value()
}

func (o *OptimizationInfo) RefineTrivialClassInitializerField(f symbol.FieldReference) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.trivialClassInitializerField = o.trivialClassInitializerField.Join(KnownFact(f))
}
