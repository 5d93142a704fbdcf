package inline

import (
	"github.com/weg2020/r8/classdef"
	"github.com/weg2020/r8/ssa"
	"github.com/weg2020/r8/symbol"
)

// buildPoint constructs a minimal, class-eligible value type: two private
// instance int fields, a two-arg constructor that stores them, and a getter
// for each that does nothing but read its own field back — both getters
// qualify for the DoesNotLeakReceiver eligibility annotation.
func buildPoint(pool *symbol.Pool, descriptor string) (*classdef.ClassDefinition, symbol.FieldReference, symbol.FieldReference) {
	objType := pool.Intern("Ljava/lang/Object;", symbol.KindClass)
	classType := pool.Intern(descriptor, symbol.KindClass)
	intType := pool.Intern("I", symbol.KindPrimitive)
	voidType := pool.Intern("V", symbol.KindPrimitive)

	xField := symbol.NewFieldReference(classType, "x", intType)
	yField := symbol.NewFieldReference(classType, "y", intType)

	ctorRef := symbol.NewMethodReference(classType, symbol.NewMethodSignature("<init>", []symbol.Type{intType, intType}, voidType))
	ctorBody := ssa.NewMethod(3) // this, x, y
	ctorEntry := ctorBody.AddBlock()
	ctorEntry.Instructions = []ssa.Instruction{
		&ssa.FieldPut{Receiver: ctorBody.Params[0], Field: xField, Value: ctorBody.Params[1]},
		&ssa.FieldPut{Receiver: ctorBody.Params[0], Field: yField, Value: ctorBody.Params[2]},
		&ssa.Return{Value: ssa.NoValue},
	}
	ctor := classdef.NewMethodDefinition(ctorRef, classdef.AccPublic|classdef.AccConstructor)
	ctor.Body = ctorBody

	getX := buildGetter(classType, "getX", xField, intType)
	getY := buildGetter(classType, "getY", yField, intType)

	class := &classdef.ClassDefinition{
		Type:    classType,
		Super:   objType,
		Access:  classdef.AccPublic | classdef.AccFinal,
		Fields:  []*classdef.FieldDefinition{{Ref: xField, Access: classdef.AccPrivate}, {Ref: yField, Access: classdef.AccPrivate}},
		Methods: []*classdef.MethodDefinition{ctor, getX, getY},
	}
	return class, xField, yField
}

func buildGetter(classType symbol.Type, name string, field symbol.FieldReference, retType symbol.Type) *classdef.MethodDefinition {
	ref := symbol.NewMethodReference(classType, symbol.NewMethodSignature(name, nil, retType))
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

// buildTrivialSingleton constructs a class carrying a <clinit> matching
// spec §4.4's trivial class initializer shape: allocate the class's own
// type, call its one-arg constructor with a constant argument, store the
// result into a static final field.
func buildTrivialSingleton(pool *symbol.Pool, descriptor string) (*classdef.ClassDefinition, symbol.FieldReference) {
	objType := pool.Intern("Ljava/lang/Object;", symbol.KindClass)
	classType := pool.Intern(descriptor, symbol.KindClass)
	intType := pool.Intern("I", symbol.KindPrimitive)
	voidType := pool.Intern("V", symbol.KindPrimitive)

	valueField := symbol.NewFieldReference(classType, "value", intType)
	instanceField := symbol.NewFieldReference(classType, "INSTANCE", classType)

	ctorRef := symbol.NewMethodReference(classType, symbol.NewMethodSignature("<init>", []symbol.Type{intType}, voidType))
	ctorBody := ssa.NewMethod(2)
	ctorEntry := ctorBody.AddBlock()
	ctorEntry.Instructions = []ssa.Instruction{
		&ssa.FieldPut{Receiver: ctorBody.Params[0], Field: valueField, Value: ctorBody.Params[1]},
		&ssa.Return{Value: ssa.NoValue},
	}
	ctor := classdef.NewMethodDefinition(ctorRef, classdef.AccPublic|classdef.AccConstructor)
	ctor.Body = ctorBody

	getValue := buildGetter(classType, "getValue", valueField, intType)

	clinitRef := symbol.NewMethodReference(classType, symbol.NewMethodSignature("<clinit>", nil, voidType))
	clinitBody := ssa.NewMethod(0)
	clinitEntry := clinitBody.AddBlock()
	newResult := clinitBody.FreshValue()
	constArg := clinitBody.FreshValue()
	clinitEntry.Instructions = []ssa.Instruction{
		&ssa.NewInstance{Result: newResult, Class: classType},
		&ssa.ConstInt{Result: constArg, Int: 7},
		&ssa.InvokeMethod{Result: ssa.NoValue, Kind: ssa.InvokeDirect, Method: ctorRef, Receiver: newResult, Args: []ssa.Value{constArg}},
		&ssa.StaticPut{Field: instanceField, Value: newResult},
		&ssa.Return{Value: ssa.NoValue},
	}
	clinit := classdef.NewMethodDefinition(clinitRef, classdef.AccStatic)
	clinit.Body = clinitBody

	class := &classdef.ClassDefinition{
		Type:    classType,
		Super:   objType,
		Access:  classdef.AccPublic | classdef.AccFinal,
		Fields:  []*classdef.FieldDefinition{{Ref: valueField, Access: classdef.AccPrivate}, {Ref: instanceField, Access: classdef.AccStatic | classdef.AccFinal}},
		Methods: []*classdef.MethodDefinition{ctor, getValue, clinit},
	}
	return class, instanceField
}
