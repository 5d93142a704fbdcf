// Package ssa implements the per-method intermediate representation named
// in spec §3: an SSA-form basic-block graph. It is the representation the
// class inliner (spec §4.4) mutates directly, and the representation every
// other per-method pass reads through classdef.MethodDefinition.Body.
package ssa

import "fmt"

// Value is an SSA register: the result of exactly one defining instruction,
// or a method parameter. Values are numbered densely within one Method and
// are only meaningful relative to that Method.
type Value uint32

// NoValue is the sentinel returned by instructions with no result (e.g. a
// void invoke, a field write, a branch).
const NoValue Value = 1<<32 - 1

func (v Value) IsNone() bool  { return v == NoValue }
func (v Value) String() string {
	if v.IsNone() {
		return "<none>"
	}
	return fmt.Sprintf("v%d", uint32(v))
}

// BlockID identifies a BasicBlock within one Method.
type BlockID uint32

func (b BlockID) String() string { return fmt.Sprintf("b%d", uint32(b)) }
