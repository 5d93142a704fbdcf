package merge

import (
	"github.com/weg2020/r8/classdef"
	"github.com/weg2020/r8/keep"
	"github.com/weg2020/r8/symbol"
)

// NotPinned rejects a candidate the keep oracle has pinned or has
// constrained with an explicit no-merge rule (spec §4.3). Grounded on the
// corpus's NotPinned-equivalent policies, which are always first in the
// pipeline so every later policy only ever sees mergeable candidates.
func NotPinned(oracle *keep.Oracle) SingleClassPolicy {
	return singleClassPolicyFunc{
		name: "NotPinned",
		fn: func(_ *classdef.ApplicationView, class *classdef.ClassDefinition) bool {
			return oracle.QueryType(class.Type).MayMerge()
		},
	}
}

// NoInnerClasses rejects a candidate with any inner-class attribute entry.
// Grounded verbatim on horizontalclassmerging.policies.NoInnerClasses: the
// merger does not yet rewrite inner-class attributes consistently with a
// fused identity.
func NoInnerClasses() SingleClassPolicy {
	return singleClassPolicyFunc{
		name: "NoInnerClasses",
		fn: func(_ *classdef.ApplicationView, class *classdef.ClassDefinition) bool {
			return len(class.InnerClasses) == 0
		},
	}
}

// VerticalMergeState reports which program types a prior vertical-merging
// pass has already folded into a subtype. The horizontal merger consults it
// so it never re-merges a class the vertical merger has already consumed.
type VerticalMergeState interface {
	HasBeenMergedIntoSubtype(t symbol.Type) bool
}

type noVerticalMergeState struct{}

func (noVerticalMergeState) HasBeenMergedIntoSubtype(symbol.Type) bool { return false }

// NoVerticalMergeState is the VerticalMergeState to pass when no vertical
// merging pass has run yet (or vertical merging is disabled).
var NoVerticalMergeState VerticalMergeState = noVerticalMergeState{}

// NotVerticallyMergedIntoSubtype rejects a candidate the vertical-merging
// pass already folded into one of its subtypes. Grounded on
// horizontalclassmerging.policies.NotVerticallyMergedIntoSubtype, which
// treats a nil vertically-merged-classes collaborator as "nothing merged".
func NotVerticallyMergedIntoSubtype(state VerticalMergeState) SingleClassPolicy {
	return singleClassPolicyFunc{
		name: "NotVerticallyMergedIntoSubtype",
		fn: func(_ *classdef.ApplicationView, class *classdef.ClassDefinition) bool {
			return !state.HasBeenMergedIntoSubtype(class.Type)
		},
	}
}

// RuntimeTypeCheckInfo reports whether live bytecode performs an
// instanceof/checkcast/reflective-name check directly against a type. Built
// by an earlier whole-program analysis pass (out of this module's scope);
// the merger only consumes it.
type RuntimeTypeCheckInfo interface {
	IsRuntimeCheckType(t symbol.Type) bool
}

type noRuntimeTypeChecks struct{}

func (noRuntimeTypeChecks) IsRuntimeCheckType(symbol.Type) bool { return false }

var NoRuntimeTypeChecks RuntimeTypeCheckInfo = noRuntimeTypeChecks{}

// NoDirectRuntimeTypeChecks rejects a candidate targeted by a direct
// instanceof/checkcast/reflective-name check, since fusing it would change
// the result of that check. Grounded on
// horizontalclassmerging.policies.NoDirectRuntimeTypeChecks.
func NoDirectRuntimeTypeChecks(info RuntimeTypeCheckInfo) SingleClassPolicy {
	return singleClassPolicyFunc{
		name: "NoDirectRuntimeTypeChecks",
		fn: func(_ *classdef.ApplicationView, class *classdef.ClassDefinition) bool {
			return !info.IsRuntimeCheckType(class.Type)
		},
	}
}

// MainDexPartitions maps a type to the integer main-dex partition it is
// required to be loadable from before the primary dex has finished loading
// secondary dexes; classes outside any main-dex requirement report 0.
type MainDexPartitions interface {
	RequiredPartition(t symbol.Type) int
}

type unpartitionedMainDex struct{}

func (unpartitionedMainDex) RequiredPartition(symbol.Type) int { return 0 }

var NoMainDexPartitions MainDexPartitions = unpartitionedMainDex{}

// MainDexCompatible splits a candidate group by required main-dex
// partition: classes bound for different partitions can never be fused,
// since a merge target must be loadable everywhere its sources were (spec
// §4.3's MainDexCompatible policy).
func MainDexCompatible(partitions MainDexPartitions) MultiClassPolicy {
	return mainDexPolicy{partitions: partitions}
}

type mainDexPolicy struct {
	partitions MainDexPartitions
}

func (mainDexPolicy) Name() string { return "MainDexCompatible" }

func (p mainDexPolicy) Partition(_ *classdef.ApplicationView, group []*classdef.ClassDefinition) [][]*classdef.ClassDefinition {
	buckets := map[int][]*classdef.ClassDefinition{}
	var order []int
	for _, c := range group {
		part := p.partitions.RequiredPartition(c.Type)
		if _, ok := buckets[part]; !ok {
			order = append(order, part)
		}
		buckets[part] = append(buckets[part], c)
	}
	out := make([][]*classdef.ClassDefinition, 0, len(order))
	for _, part := range order {
		out = append(out, buckets[part])
	}
	return out
}
