// Package inline implements the class inliner of spec §4.4: it finds
// short-lived allocations whose identity never escapes a single method and
// flattens them away, replacing field accesses with the values a local
// value-flow analysis computes directly.
package inline

import (
	"github.com/weg2020/r8/classdef"
	"github.com/weg2020/r8/keep"
)

// ClassEligible reports whether class may ever be the type of an inlining
// root, per spec §4.4's class-eligibility checks. It never looks at how the
// class is used — only at its own shape.
func ClassEligible(view *classdef.ApplicationView, oracle *keep.Oracle, class *classdef.ClassDefinition) bool {
	if view.IsLibraryClass(class.Type) {
		return false
	}
	if class.Access.IsAbstract() || class.Access.IsInterface() {
		return false
	}
	if !oracle.QueryType(class.Type).MayInline() {
		return false
	}
	if !class.DirectlyExtendsObject() {
		return false
	}
	if class.DeclaresFinalizer() {
		return false
	}
	if triggersForeignStaticInit(view, class) {
		return false
	}
	return true
}

// triggersForeignStaticInit approximates spec §4.4's "loading T does not
// trigger any static initializer beyond T's own": since class-eligible
// types directly extend Object, the only other source of a loading-time
// class initializer is an implemented interface that itself carries one
// (a default-method interface with static fields).
func triggersForeignStaticInit(view *classdef.ApplicationView, class *classdef.ClassDefinition) bool {
	for _, iface := range class.Interfaces {
		ifaceClass, ok := view.Resolve(iface)
		if !ok {
			continue
		}
		if ifaceClass.StaticInitializer() != nil {
			return true
		}
	}
	return false
}
