package merge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/weg2020/r8/classdef"
	"github.com/weg2020/r8/lens"
	"github.com/weg2020/r8/ssa"
	"github.com/weg2020/r8/symbol"
)

// buildValueHolder constructs a class "descriptor" with a single instance
// int field "value", a one-arg constructor that stores its argument into
// that field, and a getter "get()I" that reads it back.
func buildValueHolder(pool *symbol.Pool, descriptor string) *classdef.ClassDefinition {
	objType := pool.Intern("Ljava/lang/Object;", symbol.KindClass)
	classType := pool.Intern(descriptor, symbol.KindClass)
	intType := pool.Intern("I", symbol.KindPrimitive)
	voidType := pool.Intern("V", symbol.KindPrimitive)

	fieldRef := symbol.NewFieldReference(classType, "value", intType)
	field := &classdef.FieldDefinition{Ref: fieldRef, Access: classdef.AccPrivate}

	ctorRef := symbol.NewMethodReference(classType, symbol.NewMethodSignature("<init>", []symbol.Type{intType}, voidType))
	ctorBody := ssa.NewMethod(2) // this, value
	ctorEntry := ctorBody.AddBlock()
	ctorEntry.Instructions = []ssa.Instruction{
		&ssa.FieldPut{Receiver: ctorBody.Params[0], Field: fieldRef, Value: ctorBody.Params[1]},
		&ssa.Return{Value: ssa.NoValue},
	}
	ctor := &classdef.MethodDefinition{
		Ref:    ctorRef,
		Access: classdef.AccPublic | classdef.AccConstructor,
		Body:   ctorBody,
		Info:   classdef.NewOptimizationInfo(),
	}

	getterRef := symbol.NewMethodReference(classType, symbol.NewMethodSignature("get", nil, intType))
	getterBody := ssa.NewMethod(1) // this
	getterEntry := getterBody.AddBlock()
	resultVal := getterBody.FreshValue()
	getterEntry.Instructions = []ssa.Instruction{
		&ssa.FieldGet{Result: resultVal, Receiver: getterBody.Params[0], Field: fieldRef},
		&ssa.Return{Value: resultVal},
	}
	getter := &classdef.MethodDefinition{
		Ref:    getterRef,
		Access: classdef.AccPublic,
		Body:   getterBody,
		Info:   classdef.NewOptimizationInfo(),
	}

	return &classdef.ClassDefinition{
		Type:    classType,
		Super:   objType,
		Access:  classdef.AccPublic | classdef.AccFinal,
		Fields:  []*classdef.FieldDefinition{field},
		Methods: []*classdef.MethodDefinition{ctor, getter},
	}
}

func TestFuse_TwoValueHoldersShareClassIDField(t *testing.T) {
	pool := symbol.NewPool()
	target := buildValueHolder(pool, "Lapp/A;")
	source := buildValueHolder(pool, "Lapp/B;")

	group := MergeGroup{Target: target, Sources: []*classdef.ClassDefinition{source}}
	fused, builtLens, err := Fuse(pool, group)
	require.NoError(t, err)
	require.NotNil(t, builtLens)

	_, ok := fused.FindField(ClassIDFieldName)
	assert.True(t, ok, "fused class must carry the synthetic class-id field")

	_, ok = fused.FindField("value")
	assert.True(t, ok, "target's own field must survive under its own name")

	// the source's "value" field was relocated to a fresh name to avoid
	// colliding with the target's field of the same name.
	foundRelocated := false
	for _, f := range fused.Fields {
		if f.Ref.Name != "value" && f.Ref.Type.Descriptor() == "I" && f.Ref.Name != ClassIDFieldName {
			foundRelocated = true
		}
	}
	assert.True(t, foundRelocated, "source's colliding field must be relocated under a fresh name")
}

func TestFuse_ConstructorDispatcherGainsClassIDParam(t *testing.T) {
	pool := symbol.NewPool()
	target := buildValueHolder(pool, "Lapp/A;")
	source := buildValueHolder(pool, "Lapp/B;")

	group := MergeGroup{Target: target, Sources: []*classdef.ClassDefinition{source}}
	fused, _, err := Fuse(pool, group)
	require.NoError(t, err)

	ctors := fused.Constructors()
	require.Len(t, ctors, 1, "both members declared the same constructor signature, so they fuse into one dispatcher")
	assert.Len(t, ctors[0].Ref.Params, 2, "the dispatcher gains a trailing class-id int parameter")
	assert.Equal(t, "I", ctors[0].Ref.Params[len(ctors[0].Ref.Params)-1].Descriptor())

	require.NotNil(t, ctors[0].Body)
	assert.Greater(t, len(ctors[0].Body.Blocks), 1, "the dispatcher branches on the class-id")
}

func TestFuse_IdenticalGettersUnifyWithoutTrampoline(t *testing.T) {
	pool := symbol.NewPool()
	target := buildValueHolder(pool, "Lapp/A;")
	source := buildValueHolder(pool, "Lapp/B;")

	group := MergeGroup{Target: target, Sources: []*classdef.ClassDefinition{source}}
	fused, builtLens, err := Fuse(pool, group)
	require.NoError(t, err)

	getterSig := symbol.NewMethodSignature("get", nil, pool.Intern("I", symbol.KindPrimitive))
	_, ok := fused.FindMethod(getterSig)
	require.True(t, ok, "fused class keeps exactly one get()I — both bodies were structurally identical")

	stack, err := lens.NewStack().Push(builtLens)
	require.NoError(t, err)

	sourceGetterRef := symbol.NewMethodReference(source.Type, getterSig)
	targetGetterRef := symbol.NewMethodReference(target.Type, getterSig)
	mapped, _ := stack.MapMethod(sourceGetterRef)
	assert.True(t, mapped.Equal(targetGetterRef), "the source's getter must resolve to the target's unified getter")
}

func TestFuse_ThreeMemberGroupFusesSuccessfully(t *testing.T) {
	// A group with 2+ sources (3+ total members) renames every source type
	// to the same target type, and collapses every member's matching
	// constructor and identical getter onto one dispatcher/implementation —
	// all three rename maps are many-to-one here, which must not be rejected
	// as an injectivity violation.
	pool := symbol.NewPool()
	target := buildValueHolder(pool, "Lapp/A;")
	sourceB := buildValueHolder(pool, "Lapp/B;")
	sourceC := buildValueHolder(pool, "Lapp/C;")

	group := MergeGroup{Target: target, Sources: []*classdef.ClassDefinition{sourceB, sourceC}}
	fused, builtLens, err := Fuse(pool, group)
	require.NoError(t, err)
	require.NotNil(t, builtLens)

	_, ok := fused.FindField(ClassIDFieldName)
	assert.True(t, ok)

	ctors := fused.Constructors()
	require.Len(t, ctors, 1, "all three members declared the same constructor signature, so they fuse into one dispatcher")

	getterSig := symbol.NewMethodSignature("get", nil, pool.Intern("I", symbol.KindPrimitive))
	_, ok = fused.FindMethod(getterSig)
	require.True(t, ok, "all three getters were structurally identical, so they unify onto one implementation")

	stack, err := lens.NewStack().Push(builtLens)
	require.NoError(t, err)
	targetGetterRef := symbol.NewMethodReference(target.Type, getterSig)
	for _, src := range []*classdef.ClassDefinition{sourceB, sourceC} {
		sourceGetterRef := symbol.NewMethodReference(src.Type, getterSig)
		mapped, _ := stack.MapMethod(sourceGetterRef)
		assert.True(t, mapped.Equal(targetGetterRef), "each source's getter must resolve to the unified target getter")
	}
}

func TestFuse_SingleMemberGroupNeverCalled(t *testing.T) {
	// Pipeline.Bucket is responsible for never handing Fuse a group of size
	// one; this just documents that Members() on such a group would still be
	// well-formed if it were ever misused.
	pool := symbol.NewPool()
	target := buildValueHolder(pool, "Lapp/A;")
	group := MergeGroup{Target: target}
	assert.Len(t, group.Members(), 1)
}
