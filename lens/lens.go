// Package lens implements the graph lens stack of spec §4.1: the only
// mechanism by which an optimization pass communicates symbol rewritings to
// the rest of the pipeline. A Lens is immutable once built; a Stack composes
// an ordered sequence of them.
package lens

import (
	"fmt"

	"github.com/benbjohnson/immutable"
	"github.com/pkg/errors"
	"github.com/weg2020/r8/ssa"
	"github.com/weg2020/r8/symbol"
)

// InvokeKindOverride records that, for the method keyed by the map it lives
// in, an invoke of kind From must be rewritten to kind To (spec §4.1,
// "some rewritings promote virtual calls to static").
type InvokeKindOverride struct {
	From, To ssa.InvokeKind
}

// Lens holds one optimization pass's symbol rewritings: three partial maps
// (Type, FieldReference, MethodReference) plus per-method prototype-change
// and invoke-kind-override side tables. A Lens is immutable once returned by
// Builder.Build.
type Lens struct {
	name string

	typeMap   *immutable.Map[symbol.Type, symbol.Type]
	fieldMap  *immutable.Map[symbol.FieldReference, symbol.FieldReference]
	methodMap *immutable.Map[symbol.MethodReference, symbol.MethodReference]

	// prototypeChanges and invokeKindOverrides are keyed by the method
	// reference as it exists going into this lens (i.e. after this lens's
	// own type-map rewrite is applied to holder/params/return, but before
	// this lens's own method rename) — the same lookup key methodMap uses.
	prototypeChanges    *immutable.Map[symbol.MethodReference, *PrototypeChange]
	invokeKindOverrides *immutable.Map[symbol.MethodReference, InvokeKindOverride]
}

func (l *Lens) Name() string { return l.name }

// EachType calls fn once per type renamed by l.
func (l *Lens) EachType(fn func(from, to symbol.Type)) {
	it := l.typeMap.Iterator()
	for !it.Done() {
		k, v, _ := it.Next()
		fn(k, v)
	}
}

// EachField calls fn once per field explicitly renamed by l.
func (l *Lens) EachField(fn func(from, to symbol.FieldReference)) {
	it := l.fieldMap.Iterator()
	for !it.Done() {
		k, v, _ := it.Next()
		fn(k, v)
	}
}

// EachMethod calls fn once per method this lens has anything to say about:
// every explicit rename, plus every prototype change or invoke-kind override
// attached to a method whose reference is otherwise unchanged (e.g. the
// merge target's own constructor, which keeps its holder and name but gains
// a parameter) — everything a caller folding l's entries into another
// builder needs in one pass. to equals from when only a side table entry
// exists.
func (l *Lens) EachMethod(fn func(from, to symbol.MethodReference, change *PrototypeChange, override *InvokeKindOverride)) {
	visited := immutable.NewMap[symbol.MethodReference, struct{}](symbol.MethodReferenceHasher)
	it := l.methodMap.Iterator()
	for !it.Done() {
		k, v, _ := it.Next()
		visited = visited.Set(k, struct{}{})
		pc, _ := l.prototypeChanges.Get(k)
		fn(k, v, pc, invokeOverridePtr(l.invokeKindOverrides, k))
	}
	pcIt := l.prototypeChanges.Iterator()
	for !pcIt.Done() {
		k, pc, _ := pcIt.Next()
		if _, ok := visited.Get(k); ok {
			continue
		}
		fn(k, k, pc, invokeOverridePtr(l.invokeKindOverrides, k))
	}
	ovIt := l.invokeKindOverrides.Iterator()
	for !ovIt.Done() {
		k, ov, _ := ovIt.Next()
		if _, ok := visited.Get(k); ok {
			continue
		}
		if _, ok := l.prototypeChanges.Get(k); ok {
			continue
		}
		o := ov
		fn(k, k, nil, &o)
	}
}

func invokeOverridePtr(m *immutable.Map[symbol.MethodReference, InvokeKindOverride], k symbol.MethodReference) *InvokeKindOverride {
	if ov, ok := m.Get(k); ok {
		return &ov
	}
	return nil
}

// Builder accumulates one pass's rewritings. It is not safe for concurrent
// use; a single pass builds its lens sequentially after its (possibly
// concurrent) analysis phase has finished.
type Builder struct {
	name string

	typeMap   *immutable.Map[symbol.Type, symbol.Type]
	fieldMap  *immutable.Map[symbol.FieldReference, symbol.FieldReference]
	methodMap *immutable.Map[symbol.MethodReference, symbol.MethodReference]

	prototypeChanges    *immutable.Map[symbol.MethodReference, *PrototypeChange]
	invokeKindOverrides *immutable.Map[symbol.MethodReference, InvokeKindOverride]
}

func NewBuilder(name string) *Builder {
	return &Builder{
		name:                name,
		typeMap:             immutable.NewMap[symbol.Type, symbol.Type](symbol.TypeHasher),
		fieldMap:            immutable.NewMap[symbol.FieldReference, symbol.FieldReference](symbol.FieldReferenceHasher),
		methodMap:           immutable.NewMap[symbol.MethodReference, symbol.MethodReference](symbol.MethodReferenceHasher),
		prototypeChanges:    immutable.NewMap[symbol.MethodReference, *PrototypeChange](symbol.MethodReferenceHasher),
		invokeKindOverrides: immutable.NewMap[symbol.MethodReference, InvokeKindOverride](symbol.MethodReferenceHasher),
	}
}

func (b *Builder) RenameType(from, to symbol.Type) *Builder {
	b.typeMap = b.typeMap.Set(from, to)
	return b
}

func (b *Builder) RenameField(from, to symbol.FieldReference) *Builder {
	b.fieldMap = b.fieldMap.Set(from, to)
	return b
}

func (b *Builder) RenameMethod(from, to symbol.MethodReference) *Builder {
	b.methodMap = b.methodMap.Set(from, to)
	return b
}

// SetPrototypeChange records change for the method identified by preImage
// (the reference as seen entering this lens, i.e. before this lens's own
// rename is applied).
func (b *Builder) SetPrototypeChange(preImage symbol.MethodReference, change *PrototypeChange) *Builder {
	b.prototypeChanges = b.prototypeChanges.Set(preImage, change)
	return b
}

func (b *Builder) SetInvokeKindOverride(preImage symbol.MethodReference, from, to ssa.InvokeKind) *Builder {
	b.invokeKindOverrides = b.invokeKindOverrides.Set(preImage, InvokeKindOverride{From: from, To: to})
	return b
}

// Build validates and returns the finished Lens. Per spec §4.1's failure
// semantics, a build-time check rejects field renames that are not
// injective. The type and method maps are deliberately exempt: horizontal
// class merging (spec §4.3) renames every source in a MergeGroup to the
// same target type, collapses every member's matching constructor onto one
// dispatcher, and unifies structurally-identical virtual methods onto one
// implementation. All three are many-to-one by design once a group has
// three or more members, not collisions to reject. Field relocation has no
// such fan-in: FreshDescriptor gives every relocated field a name unique
// across the whole group, so the field map stays genuinely injective and a
// violation there does indicate an accidental collision.
func (b *Builder) Build() (*Lens, error) {
	if err := checkInjectiveField(b.fieldMap); err != nil {
		return nil, errors.Wrapf(err, "lens %q: field map not injective", b.name)
	}
	return &Lens{
		name:                b.name,
		typeMap:             b.typeMap,
		fieldMap:            b.fieldMap,
		methodMap:           b.methodMap,
		prototypeChanges:    b.prototypeChanges,
		invokeKindOverrides: b.invokeKindOverrides,
	}, nil
}

func checkInjectiveField(m *immutable.Map[symbol.FieldReference, symbol.FieldReference]) error {
	seen := make(map[symbol.FieldReference]symbol.FieldReference, m.Len())
	it := m.Iterator()
	for !it.Done() {
		k, v, _ := it.Next()
		if prior, ok := seen[v]; ok && !prior.Equal(k) {
			return fmt.Errorf("both %s and %s map to %s", prior, k, v)
		}
		seen[v] = k
	}
	return nil
}

