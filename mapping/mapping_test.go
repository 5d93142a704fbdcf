package mapping

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/weg2020/r8/classdef"
	"github.com/weg2020/r8/lens"
	"github.com/weg2020/r8/symbol"
)

func buildSimpleClass(pool *symbol.Pool, descriptor string) *classdef.ClassDefinition {
	intType := pool.Intern("I", symbol.KindPrimitive)
	objType := pool.Intern("Ljava/lang/Object;", symbol.KindClass)
	t := pool.Intern(descriptor, symbol.KindClass)

	xField := symbol.NewFieldReference(t, "x", intType)
	getXRef := symbol.NewMethodReference(t, symbol.NewMethodSignature("getX", nil, intType))

	return &classdef.ClassDefinition{
		Type:  t,
		Super: objType,
		Fields: []*classdef.FieldDefinition{
			{Ref: xField, Access: classdef.AccPrivate},
		},
		Methods: []*classdef.MethodDefinition{
			classdef.NewMethodDefinition(getXRef, classdef.AccPublic),
		},
	}
}

func TestGenerate_IdentityMappingWhenNoLensPushed(t *testing.T) {
	pool := symbol.NewPool()
	point := buildSimpleClass(pool, "Lapp/Point;")

	program := map[symbol.Type]*classdef.ClassDefinition{point.Type: point}
	view := classdef.NewApplicationView(pool, program, nil)

	rm := Generate(program, view)
	require.Len(t, rm.Classes, 1)
	assert.True(t, rm.Classes[0].Original.Equal(rm.Classes[0].Obfuscated))
	assert.Len(t, rm.Classes[0].Methods, 1)
	assert.Len(t, rm.Classes[0].Fields, 1)

	out := rm.String()
	assert.True(t, strings.Contains(out, "app.Point -> app.Point:"))
	assert.True(t, strings.Contains(out, "int getX() -> getX"))
	assert.True(t, strings.Contains(out, "int x -> x"))
}

func TestGenerate_ReflectsRenameLens(t *testing.T) {
	pool := symbol.NewPool()
	point := buildSimpleClass(pool, "Lapp/Point;")
	program := map[symbol.Type]*classdef.ClassDefinition{point.Type: point}
	view := classdef.NewApplicationView(pool, program, nil)

	renamed := pool.Intern("La;", symbol.KindClass)
	b := lens.NewBuilder("minification")
	b.RenameType(point.Type, renamed)
	built, err := b.Build()
	require.NoError(t, err)

	renamedClass := &classdef.ClassDefinition{
		Type:    renamed,
		Super:   point.Super,
		Fields:  point.Fields,
		Methods: point.Methods,
	}
	newProgram := map[symbol.Type]*classdef.ClassDefinition{renamed: renamedClass}

	nextView, err := view.Rebuild(built, newProgram)
	require.NoError(t, err)

	rm := Generate(program, nextView)
	require.Len(t, rm.Classes, 1)
	assert.Equal(t, "app.Point", javaName(rm.Classes[0].Original.Descriptor()))
	assert.Equal(t, "a", javaName(rm.Classes[0].Obfuscated.Descriptor()))
	assert.True(t, strings.Contains(rm.String(), "app.Point -> a:"))
}

func TestGenerate_OmitsRemovedClass(t *testing.T) {
	pool := symbol.NewPool()
	point := buildSimpleClass(pool, "Lapp/Point;")
	dead := buildSimpleClass(pool, "Lapp/Dead;")
	program := map[symbol.Type]*classdef.ClassDefinition{point.Type: point, dead.Type: dead}
	view := classdef.NewApplicationView(pool, program, nil)

	afterShake := view.WithProgram(map[symbol.Type]*classdef.ClassDefinition{point.Type: point})

	rm := Generate(program, afterShake)
	require.Len(t, rm.Classes, 1)
	assert.Equal(t, "app.Point", javaName(rm.Classes[0].Original.Descriptor()))
}

func TestJavaName_ConvertsDescriptors(t *testing.T) {
	assert.Equal(t, "int", javaName("I"))
	assert.Equal(t, "int[]", javaName("[I"))
	assert.Equal(t, "com.example.Foo", javaName("Lcom/example/Foo;"))
}
