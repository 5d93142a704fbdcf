package lens

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/weg2020/r8/ssa"
	"github.com/weg2020/r8/symbol"
)

func intType(pool *symbol.Pool) symbol.Type { return pool.Intern("I", symbol.KindPrimitive) }

func TestStack_EmptyStackIsIdentity(t *testing.T) {
	pool := symbol.NewPool()
	x := pool.Intern("Lcom/example/X;", symbol.KindClass)
	sig := symbol.NewMethodSignature("foo", []symbol.Type{intType(pool), intType(pool)}, pool.Intern("V", symbol.KindPrimitive))
	ref := symbol.NewMethodReference(x, sig)

	stack := NewStack()
	mapped, change := stack.MapMethod(ref)

	assert.True(t, mapped.Equal(ref))
	assert.True(t, change.IsEmpty())
	assert.True(t, stack.MapType(x).Equal(x))
}

func TestStack_SingleLensRenamesMethod(t *testing.T) {
	pool := symbol.NewPool()
	x := pool.Intern("Lcom/example/X;", symbol.KindClass)
	v := pool.Intern("V", symbol.KindPrimitive)
	i := intType(pool)

	fooSig := symbol.NewMethodSignature("foo", []symbol.Type{i, i}, v)
	barSig := fooSig.WithName("bar")
	fooRef := symbol.NewMethodReference(x, fooSig)
	barRef := symbol.NewMethodReference(x, barSig)

	l, err := NewBuilder("rename-foo-to-bar").RenameMethod(fooRef, barRef).Build()
	require.NoError(t, err)

	stack, err := NewStack().Push(l)
	require.NoError(t, err)

	mapped, change := stack.MapMethod(fooRef)
	assert.True(t, mapped.Equal(barRef))
	assert.True(t, change.IsEmpty())
}

func TestStack_RejectsNonInjectiveMethodMap(t *testing.T) {
	pool := symbol.NewPool()
	x := pool.Intern("Lcom/example/X;", symbol.KindClass)
	v := pool.Intern("V", symbol.KindPrimitive)

	fooRef := symbol.NewMethodReference(x, symbol.NewMethodSignature("foo", nil, v))
	barRef := symbol.NewMethodReference(x, symbol.NewMethodSignature("bar", nil, v))
	bazRef := symbol.NewMethodReference(x, symbol.NewMethodSignature("baz", nil, v))

	_, err := NewBuilder("collide").
		RenameMethod(fooRef, bazRef).
		RenameMethod(barRef, bazRef).
		Build()

	assert.Error(t, err)
}

// TestStack_ComposesAcrossTwoLenses reproduces spec §8 scenario D: pass 1
// renames X.foo(II)V to X.bar(II)V; pass 2 is an enum-unboxing-style pass
// that rewrites parameter 1 of the (already renamed) method from an enum
// type to int, recording a single-entry prototype change keyed by the
// method as it exists entering pass 2 (i.e. post-rename).
func TestStack_ComposesAcrossTwoLenses(t *testing.T) {
	pool := symbol.NewPool()
	x := pool.Intern("Lcom/example/X;", symbol.KindClass)
	v := pool.Intern("V", symbol.KindPrimitive)
	i := intType(pool)
	e := pool.Intern("Lcom/example/E;", symbol.KindClass)

	fooSig := symbol.NewMethodSignature("foo", []symbol.Type{i, e}, v)
	barSig := fooSig.WithName("bar")
	fooRef := symbol.NewMethodReference(x, fooSig)
	barRef := symbol.NewMethodReference(x, barSig)

	renameLens, err := NewBuilder("rename-pass").RenameMethod(fooRef, barRef).Build()
	require.NoError(t, err)

	unboxedSig := barSig.WithParams([]symbol.Type{i, i})
	unboxedRef := symbol.NewMethodReference(x, unboxedSig)
	change := &PrototypeChange{RewrittenArgs: map[int]symbol.Type{1: i}}

	unboxLens, err := NewBuilder("enum-unboxing-pass").
		RenameMethod(barRef, unboxedRef).
		SetPrototypeChange(barRef, change).
		Build()
	require.NoError(t, err)

	stack, err := NewStack().Push(renameLens)
	require.NoError(t, err)
	stack, err = stack.Push(unboxLens)
	require.NoError(t, err)

	mapped, gotChange := stack.MapMethod(fooRef)
	assert.True(t, mapped.Equal(unboxedRef))
	require.False(t, gotChange.IsEmpty())
	assert.Equal(t, i, gotChange.RewrittenArgs[1])
}

func TestStack_RejectsSecondPrototypeChangeForSameMethod(t *testing.T) {
	pool := symbol.NewPool()
	x := pool.Intern("Lcom/example/X;", symbol.KindClass)
	v := pool.Intern("V", symbol.KindPrimitive)
	i := intType(pool)

	ref := symbol.NewMethodReference(x, symbol.NewMethodSignature("foo", []symbol.Type{i}, v))

	firstLens, err := NewBuilder("first").SetPrototypeChange(ref, &PrototypeChange{ExtraNullParams: 1}).Build()
	require.NoError(t, err)
	stack, err := NewStack().Push(firstLens)
	require.NoError(t, err)

	secondLens, err := NewBuilder("second").SetPrototypeChange(ref, &PrototypeChange{ExtraNullParams: 2}).Build()
	require.NoError(t, err)

	_, err = stack.Push(secondLens)
	assert.Error(t, err)
}

func TestStack_TranslatesInvokeKind(t *testing.T) {
	pool := symbol.NewPool()
	x := pool.Intern("Lcom/example/X;", symbol.KindClass)
	v := pool.Intern("V", symbol.KindPrimitive)

	ref := symbol.NewMethodReference(x, symbol.NewMethodSignature("foo", nil, v))

	l, err := NewBuilder("devirtualize").
		SetInvokeKindOverride(ref, ssa.InvokeVirtual, ssa.InvokeStatic).
		Build()
	require.NoError(t, err)

	stack, err := NewStack().Push(l)
	require.NoError(t, err)

	assert.Equal(t, ssa.InvokeStatic, stack.TranslateInvokeKind(ref, ssa.InvokeVirtual))
	assert.Equal(t, ssa.InvokeInterface, stack.TranslateInvokeKind(ref, ssa.InvokeInterface))
}

func TestStack_FieldRenameFallsBackToTypeMapForUnrenamedFields(t *testing.T) {
	pool := symbol.NewPool()
	x := pool.Intern("Lcom/example/X;", symbol.KindClass)
	y := pool.Intern("Lcom/example/Y;", symbol.KindClass)
	i := intType(pool)

	field := symbol.NewFieldReference(x, "count", i)

	l, err := NewBuilder("merge-x-into-y").RenameType(x, y).Build()
	require.NoError(t, err)
	stack, err := NewStack().Push(l)
	require.NoError(t, err)

	mapped := stack.MapField(field)
	assert.True(t, mapped.Holder.Equal(y))
	assert.Equal(t, "count", mapped.Name)
}
