package main

import (
	"github.com/weg2020/r8/classdef"
	"github.com/weg2020/r8/keep"
	"github.com/weg2020/r8/ssa"
	"github.com/weg2020/r8/symbol"
)

// buildSampleProgram is the in-memory stand-in for the reader collaborator
// (spec §6): a small, fixed five-class program exercising every pass this
// module implements — a value class for the inliner (app/Point), two
// structurally identical classes for the horizontal merger (app/Shape1,
// app/Shape2), a class with no live reference anywhere (app/Dead) for tree
// shaking, and a pinned entry point (app/Main) tying them together. It is
// not a dex/class-file reader; it exists only so `d8`/`r8` have a program to
// run against without this module owning a real parser.
func buildSampleProgram() (*symbol.Pool, map[symbol.Type]*classdef.ClassDefinition, keep.RuleSet) {
	pool := symbol.NewPool()
	intType := pool.Intern("I", symbol.KindPrimitive)
	voidType := pool.Intern("V", symbol.KindPrimitive)
	objectType := pool.Intern(classdef.ObjectDescriptor, symbol.KindClass)

	point := buildPointClass(pool, objectType, intType, voidType)
	shape1 := buildShapeClass(pool, objectType, intType, voidType, "Lapp/Shape1;")
	shape2 := buildShapeClass(pool, objectType, intType, voidType, "Lapp/Shape2;")
	dead := buildDeadClass(pool, objectType, intType)
	main := buildMainClass(pool, objectType, intType, voidType, point, shape1, shape2)

	program := map[symbol.Type]*classdef.ClassDefinition{
		point.Type:  point,
		shape1.Type: shape1,
		shape2.Type: shape2,
		dead.Type:   dead,
		main.Type:   main,
	}

	rules := keep.NewRuleSet(keep.Rule{
		Matcher:          keep.ExactClass(main.Type.Descriptor()),
		Pinned:           true,
		AppliesToMembers: true,
	})
	return pool, program, rules
}

func buildPointClass(pool *symbol.Pool, objectType, intType, voidType symbol.Type) *classdef.ClassDefinition {
	t := pool.Intern("Lapp/Point;", symbol.KindClass)
	xField := symbol.NewFieldReference(t, "x", intType)
	yField := symbol.NewFieldReference(t, "y", intType)

	ctorRef := symbol.NewMethodReference(t, symbol.NewMethodSignature("<init>", []symbol.Type{intType, intType}, voidType))
	ctorBody := ssa.NewMethod(3) // this, x, y
	ctorEntry := ctorBody.AddBlock()
	ctorEntry.Instructions = []ssa.Instruction{
		&ssa.FieldPut{Receiver: ctorBody.Params[0], Field: xField, Value: ctorBody.Params[1]},
		&ssa.FieldPut{Receiver: ctorBody.Params[0], Field: yField, Value: ctorBody.Params[2]},
		&ssa.Return{Value: ssa.NoValue},
	}
	ctor := classdef.NewMethodDefinition(ctorRef, classdef.AccPublic|classdef.AccConstructor)
	ctor.Body = ctorBody

	getX := buildGetter(t, "getX", xField, intType)
	getY := buildGetter(t, "getY", yField, intType)

	return &classdef.ClassDefinition{
		Type:    t,
		Super:   objectType,
		Access:  classdef.AccPublic | classdef.AccFinal,
		Fields:  []*classdef.FieldDefinition{{Ref: xField, Access: classdef.AccPrivate | classdef.AccFinal}, {Ref: yField, Access: classdef.AccPrivate | classdef.AccFinal}},
		Methods: []*classdef.MethodDefinition{ctor, getX, getY},
	}
}

func buildGetter(holder symbol.Type, name string, field symbol.FieldReference, retType symbol.Type) *classdef.MethodDefinition {
	ref := symbol.NewMethodReference(holder, symbol.NewMethodSignature(name, nil, retType))
	body := ssa.NewMethod(1)
	entry := body.AddBlock()
	result := body.FreshValue()
	entry.Instructions = []ssa.Instruction{
		&ssa.FieldGet{Result: result, Receiver: body.Params[0], Field: field},
		&ssa.Return{Value: result},
	}
	m := classdef.NewMethodDefinition(ref, classdef.AccPublic)
	m.Body = body
	return m
}

// buildShapeClass builds a class with one int field and one "area" getter
// over it — structurally identical across every call, by design: the
// horizontal merger's bucketKey (same superclass, no interfaces, same
// access, same field-type layout) groups app/Shape1 and app/Shape2 together.
func buildShapeClass(pool *symbol.Pool, objectType, intType, voidType symbol.Type, descriptor string) *classdef.ClassDefinition {
	t := pool.Intern(descriptor, symbol.KindClass)
	valueField := symbol.NewFieldReference(t, "value", intType)

	ctorRef := symbol.NewMethodReference(t, symbol.NewMethodSignature("<init>", []symbol.Type{intType}, voidType))
	ctorBody := ssa.NewMethod(2)
	ctorEntry := ctorBody.AddBlock()
	ctorEntry.Instructions = []ssa.Instruction{
		&ssa.FieldPut{Receiver: ctorBody.Params[0], Field: valueField, Value: ctorBody.Params[1]},
		&ssa.Return{Value: ssa.NoValue},
	}
	ctor := classdef.NewMethodDefinition(ctorRef, classdef.AccPublic|classdef.AccConstructor)
	ctor.Body = ctorBody

	area := buildGetter(t, "area", valueField, intType)

	return &classdef.ClassDefinition{
		Type:    t,
		Super:   objectType,
		Access:  classdef.AccPublic | classdef.AccFinal,
		Fields:  []*classdef.FieldDefinition{{Ref: valueField, Access: classdef.AccPrivate | classdef.AccFinal}},
		Methods: []*classdef.MethodDefinition{ctor, area},
	}
}

// buildDeadClass builds a class no live method ever references — the
// tree-shaker's removal candidate.
func buildDeadClass(pool *symbol.Pool, objectType, intType symbol.Type) *classdef.ClassDefinition {
	t := pool.Intern("Lapp/Dead;", symbol.KindClass)
	ghostField := symbol.NewFieldReference(t, "ghost", intType)
	getGhost := buildGetter(t, "getGhost", ghostField, intType)

	return &classdef.ClassDefinition{
		Type:    t,
		Super:   objectType,
		Access:  classdef.AccPublic,
		Fields:  []*classdef.FieldDefinition{{Ref: ghostField, Access: classdef.AccPrivate}},
		Methods: []*classdef.MethodDefinition{getGhost},
	}
}

func buildMainClass(pool *symbol.Pool, objectType, intType, voidType symbol.Type, point, shape1, shape2 *classdef.ClassDefinition) *classdef.ClassDefinition {
	t := pool.Intern("Lapp/Main;", symbol.KindClass)

	pointCtor, _ := point.FindMethod(symbol.NewMethodSignature("<init>", []symbol.Type{intType, intType}, voidType))
	getX, _ := point.FindMethod(symbol.NewMethodSignature("getX", nil, intType))
	shape1Ctor, _ := shape1.FindMethod(symbol.NewMethodSignature("<init>", []symbol.Type{intType}, voidType))
	shape1Area, _ := shape1.FindMethod(symbol.NewMethodSignature("area", nil, intType))
	shape2Ctor, _ := shape2.FindMethod(symbol.NewMethodSignature("<init>", []symbol.Type{intType}, voidType))
	shape2Area, _ := shape2.FindMethod(symbol.NewMethodSignature("area", nil, intType))

	runRef := symbol.NewMethodReference(t, symbol.NewMethodSignature("run", nil, intType))
	body := ssa.NewMethod(0)
	entry := body.AddBlock()

	pointVal := body.FreshValue()
	arg1 := body.FreshValue()
	arg2 := body.FreshValue()
	xVal := body.FreshValue()
	shape1Val := body.FreshValue()
	shape1Arg := body.FreshValue()
	shape1AreaVal := body.FreshValue()
	shape2Val := body.FreshValue()
	shape2Arg := body.FreshValue()
	shape2AreaVal := body.FreshValue()

	entry.Instructions = []ssa.Instruction{
		&ssa.NewInstance{Result: pointVal, Class: point.Type},
		&ssa.ConstInt{Result: arg1, Int: 1},
		&ssa.ConstInt{Result: arg2, Int: 2},
		&ssa.InvokeMethod{Result: ssa.NoValue, Kind: ssa.InvokeDirect, Method: pointCtor.Ref, Receiver: pointVal, Args: []ssa.Value{arg1, arg2}},
		&ssa.InvokeMethod{Result: xVal, Kind: ssa.InvokeVirtual, Method: getX.Ref, Receiver: pointVal, Args: nil},

		&ssa.NewInstance{Result: shape1Val, Class: shape1.Type},
		&ssa.ConstInt{Result: shape1Arg, Int: 10},
		&ssa.InvokeMethod{Result: ssa.NoValue, Kind: ssa.InvokeDirect, Method: shape1Ctor.Ref, Receiver: shape1Val, Args: []ssa.Value{shape1Arg}},
		&ssa.InvokeMethod{Result: shape1AreaVal, Kind: ssa.InvokeVirtual, Method: shape1Area.Ref, Receiver: shape1Val, Args: nil},

		&ssa.NewInstance{Result: shape2Val, Class: shape2.Type},
		&ssa.ConstInt{Result: shape2Arg, Int: 20},
		&ssa.InvokeMethod{Result: ssa.NoValue, Kind: ssa.InvokeDirect, Method: shape2Ctor.Ref, Receiver: shape2Val, Args: []ssa.Value{shape2Arg}},
		&ssa.InvokeMethod{Result: shape2AreaVal, Kind: ssa.InvokeVirtual, Method: shape2Area.Ref, Receiver: shape2Val, Args: nil},

		&ssa.Return{Value: xVal},
	}

	run := classdef.NewMethodDefinition(runRef, classdef.AccPublic|classdef.AccStatic)
	run.Body = body

	return &classdef.ClassDefinition{
		Type:    t,
		Super:   objectType,
		Access:  classdef.AccPublic | classdef.AccFinal,
		Methods: []*classdef.MethodDefinition{run},
	}
}
