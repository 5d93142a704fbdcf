// Package merge implements the horizontal class merger of spec §4.3: an
// ordered battery of policies partitions candidate classes into merge
// groups, then a deterministic fusion step relocates fields, synthesizes a
// dispatcher constructor and trampolines, and emits a lens.
package merge

import "github.com/weg2020/r8/classdef"

// SingleClassPolicy is a pure predicate over one class, mirroring the
// teacher corpus's horizontalclassmerging.SingleClassPolicy shape: a name
// for diagnostics and a canMerge check. Policies never mutate the class
// they examine.
type SingleClassPolicy interface {
	Name() string
	CanMerge(view *classdef.ApplicationView, class *classdef.ClassDefinition) bool
}

// MultiClassPolicy is a pure predicate over an unordered candidate group,
// applied after single-class policies have pruned individually-ineligible
// classes. It returns the partition of group into sub-groups that remain
// mergeable among themselves (a policy may split, never merge, groups).
type MultiClassPolicy interface {
	Name() string
	Partition(view *classdef.ApplicationView, group []*classdef.ClassDefinition) [][]*classdef.ClassDefinition
}

// singleClassPolicyFunc adapts a bare function to SingleClassPolicy, for
// the handful of policies with no state beyond their predicate.
type singleClassPolicyFunc struct {
	name string
	fn   func(*classdef.ApplicationView, *classdef.ClassDefinition) bool
}

func (p singleClassPolicyFunc) Name() string { return p.name }
func (p singleClassPolicyFunc) CanMerge(view *classdef.ApplicationView, class *classdef.ClassDefinition) bool {
	return p.fn(view, class)
}
