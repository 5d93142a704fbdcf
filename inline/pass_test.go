package inline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/weg2020/r8/classdef"
	"github.com/weg2020/r8/diag"
	"github.com/weg2020/r8/keep"
	"github.com/weg2020/r8/options"
	"github.com/weg2020/r8/ssa"
	"github.com/weg2020/r8/symbol"
)

func TestPass_RunReturnsNilLensAndMutatesMethodBodiesInPlace(t *testing.T) {
	pool := symbol.NewPool()
	point, _, _ := buildPoint(pool, "Lapp/Point;")

	intType := pool.Intern("I", symbol.KindPrimitive)
	callerRef := symbol.NewMethodReference(point.Type, symbol.NewMethodSignature("sum", nil, intType))
	callerBody := buildSumMethod(pool, point)
	caller := classdef.NewMethodDefinition(callerRef, classdef.AccPublic|classdef.AccStatic)
	caller.Body = callerBody
	point.Methods = append(point.Methods, caller)

	program := map[symbol.Type]*classdef.ClassDefinition{point.Type: point}
	view := classdef.NewApplicationView(pool, program, nil)

	oracle := keep.NewOracle(options.Default(), keep.NewRuleSet())
	pass := NewPass(oracle, options.Default())
	sink := diag.NewSink()

	builtLens, newProgram, err := pass.Run(view, sink)
	require.NoError(t, err)
	assert.Nil(t, builtLens, "class inlining never renames anything")
	assert.False(t, sink.HasError())

	mutated, ok := newProgram[point.Type]
	require.True(t, ok)
	found, _ := mutated.FindMethod(symbol.NewMethodSignature("sum", nil, intType))
	require.NotNil(t, found)
	for _, b := range found.Body.Blocks {
		for _, inst := range b.Instructions {
			if ni, ok := inst.(*ssa.NewInstance); ok {
				t.Fatalf("pass left %s uninlined", ni.Class.Descriptor())
			}
		}
	}
}
