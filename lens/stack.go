package lens

import (
	"fmt"

	"github.com/benbjohnson/immutable"
	"github.com/weg2020/r8/ssa"
	"github.com/weg2020/r8/symbol"
)

// Stack is the ordered composition of lenses described in spec §4.1: the
// driver pushes one lens per lens-producing pass, and every symbol lookup
// thereafter folds across the whole stack, oldest lens first. A Stack is
// immutable; Push returns a new one.
type Stack struct {
	lenses []*Lens

	// activeProtoChangeTargets holds, for every method that already carries
	// a prototype change from some lens in the stack, that method's
	// reference as it exists in the "current" frame (i.e. as a caller one
	// level up the stack would see it going into the next Push). Push uses
	// this set to reject a new lens that tries to attach a second
	// prototype change to the same method, per spec §4.1's composition
	// rule and spec §8 property 5.
	activeProtoChangeTargets *immutable.Map[symbol.MethodReference, struct{}]
}

func NewStack() *Stack {
	return &Stack{activeProtoChangeTargets: immutable.NewMap[symbol.MethodReference, struct{}](symbol.MethodReferenceHasher)}
}

func (s *Stack) Len() int { return len(s.lenses) }

// Push composes next onto the top of the stack. It fails if next attaches a
// prototype change to a method that already has one from an earlier lens in
// the stack — spec §4.1's single-prototype-change-per-method rule, enforced
// here at build time rather than deferred to query time.
func (s *Stack) Push(next *Lens) (*Stack, error) {
	it := s.activeProtoChangeTargets.Iterator()
	for !it.Done() {
		target, _, _ := it.Next()
		if _, conflict := next.prototypeChanges.Get(target); conflict {
			return nil, fmt.Errorf("lens %q: prototype change for %s conflicts with an earlier lens in the stack", next.name, target)
		}
	}

	newActive := immutable.NewMap[symbol.MethodReference, struct{}](symbol.MethodReferenceHasher)
	activeIt := s.activeProtoChangeTargets.Iterator()
	for !activeIt.Done() {
		target, _, _ := activeIt.Next()
		newActive = newActive.Set(forwardMethod(next, target), struct{}{})
	}
	pcIt := next.prototypeChanges.Iterator()
	for !pcIt.Done() {
		target, _, _ := pcIt.Next()
		newActive = newActive.Set(forwardMethod(next, target), struct{}{})
	}

	lenses := make([]*Lens, len(s.lenses)+1)
	copy(lenses, s.lenses)
	lenses[len(s.lenses)] = next

	return &Stack{lenses: lenses, activeProtoChangeTargets: newActive}, nil
}

// forwardMethod rewrites m by a single lens's method map, or, absent an
// explicit entry, by rewriting its holder/parameter/return types through the
// lens's type map. It performs no prototype-change or invoke-kind lookup: it
// exists only to carry a method identity forward one lens level.
func forwardMethod(l *Lens, m symbol.MethodReference) symbol.MethodReference {
	if mapped, ok := l.methodMap.Get(m); ok {
		return mapped
	}
	return m.WithHolder(mapTypeThroughLens(l, m.Holder)).
		WithSignature(m.MethodSignature.WithParams(mapTypesThroughLens(l, m.Params)).WithReturn(mapTypeThroughLens(l, m.Return)))
}

func mapTypeThroughLens(l *Lens, t symbol.Type) symbol.Type {
	if mapped, ok := l.typeMap.Get(t); ok {
		return mapped
	}
	return t
}

func mapTypesThroughLens(l *Lens, ts []symbol.Type) []symbol.Type {
	if len(ts) == 0 {
		return ts
	}
	out := make([]symbol.Type, len(ts))
	for i, t := range ts {
		out[i] = mapTypeThroughLens(l, t)
	}
	return out
}

// MapType folds t through every lens on the stack, oldest first.
func (s *Stack) MapType(t symbol.Type) symbol.Type {
	for _, l := range s.lenses {
		t = mapTypeThroughLens(l, t)
	}
	return t
}

// MapField folds f through every lens on the stack. At each level, an
// explicit fieldMap entry takes precedence; absent one, the field's holder
// and type are carried forward through that lens's type map, so a field on
// a class that was renamed (but not itself explicitly remapped) still
// resolves correctly.
func (s *Stack) MapField(f symbol.FieldReference) symbol.FieldReference {
	for _, l := range s.lenses {
		if mapped, ok := l.fieldMap.Get(f); ok {
			f = mapped
			continue
		}
		f = symbol.NewFieldReference(mapTypeThroughLens(l, f.Holder), f.Name, mapTypeThroughLens(l, f.Type))
	}
	return f
}

// MapMethod folds m through every lens on the stack and returns the final
// method reference together with the single PrototypeChange attached to it
// anywhere in the stack, if any (spec §4.1 composition rule guarantees at
// most one lens carries one, so the first found is definitive).
func (s *Stack) MapMethod(m symbol.MethodReference) (symbol.MethodReference, *PrototypeChange) {
	var change *PrototypeChange
	for _, l := range s.lenses {
		if pc, ok := l.prototypeChanges.Get(m); ok {
			change = pc
		}
		m = forwardMethod(l, m)
	}
	return m, change
}

// TranslateInvokeKind folds an invoke-instruction's (method, kind) pair
// through the stack, applying any invoke-kind override recorded against the
// method's identity at the level it was recorded (spec §4.1, "some
// rewritings promote virtual calls to static").
func (s *Stack) TranslateInvokeKind(m symbol.MethodReference, kind ssa.InvokeKind) ssa.InvokeKind {
	for _, l := range s.lenses {
		if ov, ok := l.invokeKindOverrides.Get(m); ok && ov.From == kind {
			kind = ov.To
		}
		m = forwardMethod(l, m)
	}
	return kind
}
