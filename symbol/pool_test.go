package symbol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPool_InternIsIdempotent(t *testing.T) {
	pool := NewPool()
	a := pool.Intern("Lcom/example/Foo;", KindClass)
	b := pool.Intern("Lcom/example/Foo;", KindClass)

	assert.True(t, a.Equal(b))
	assert.Equal(t, a.Hash(), b.Hash())
}

func TestPool_DistinctDescriptorsAreDistinct(t *testing.T) {
	pool := NewPool()
	a := pool.Intern("Lcom/example/Foo;", KindClass)
	b := pool.Intern("Lcom/example/Bar;", KindClass)

	assert.False(t, a.Equal(b))
}

func TestPool_LookupMissing(t *testing.T) {
	pool := NewPool()
	_, ok := pool.Lookup("Lnot/interned/Yet;")
	require.False(t, ok)

	pool.Intern("Lnot/interned/Yet;", KindClass)
	found, ok := pool.Lookup("Lnot/interned/Yet;")
	require.True(t, ok)
	assert.Equal(t, "Lnot/interned/Yet;", found.Descriptor())
}

func TestType_PackageName(t *testing.T) {
	pool := NewPool()
	foo := pool.Intern("Lcom/example/Foo;", KindClass)
	assert.Equal(t, "com/example", foo.PackageName())

	primitive := pool.Intern("I", KindPrimitive)
	assert.Equal(t, "", primitive.PackageName())
}

func TestMethodSignature_StructuralEquality(t *testing.T) {
	pool := NewPool()
	intT := pool.Intern("I", KindPrimitive)
	voidT := pool.Intern("V", KindPrimitive)

	a := NewMethodSignature("foo", []Type{intT, intT}, voidT)
	b := NewMethodSignature("foo", []Type{intT, intT}, voidT)

	assert.True(t, a.Equal(b))
	assert.Equal(t, a.Hash(), b.Hash())
	assert.Equal(t, "foo(II)V", b.String())
}
