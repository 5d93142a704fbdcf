package classdef

// Fact is a single-step lattice: either Top (unknown/unpopulated, the least
// informative value) or a known value. Per spec §9 ("Optimization-info as a
// sum of monotonically accumulating facts"), optimization-info fields are
// refined by Join and never weakened: once a Fact is known, joining it with
// Top leaves it unchanged, and joining it with a second, different known
// value is a programmer error — two analyses disagreeing about the same
// method is an InvariantViolation, not a fact to silently overwrite.
type Fact[T comparable] struct {
	known bool
	value T
}

func Top[T comparable]() Fact[T] { return Fact[T]{} }

func KnownFact[T comparable](v T) Fact[T] { return Fact[T]{known: true, value: v} }

func (f Fact[T]) IsKnown() bool { return f.known }

// Value returns the known value and true, or the zero value and false if
// this Fact is Top. Callers must treat Top as "no information", never as a
// default false/zero.
func (f Fact[T]) Value() (T, bool) { return f.value, f.known }

// Join refines f with other. It panics if both are known and disagree,
// since that indicates two passes computed contradictory facts about the
// same symbol, which InvariantViolation is meant to catch (spec §7).
func (f Fact[T]) Join(other Fact[T]) Fact[T] {
	if !f.known {
		return other
	}
	if !other.known {
		return f
	}
	if f.value != other.value {
		panic("classdef: conflicting optimization-info facts")
	}
	return f
}
