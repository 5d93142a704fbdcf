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

func TestProcessMethod_InlinesConstructedValueEntirely(t *testing.T) {
	pool := symbol.NewPool()
	point, _, _ := buildPoint(pool, "Lapp/Point;")
	view := classdef.NewApplicationView(pool, map[symbol.Type]*classdef.ClassDefinition{point.Type: point}, nil)
	oracle := keep.NewOracle(options.Default(), keep.NewRuleSet())
	AnalyzeProgram(view)

	method := buildSumMethod(pool, point)
	sink := diag.NewSink()
	ProcessMethod(view, oracle, options.Default(), method, sink)

	assert.False(t, sink.HasError())
	for _, b := range method.Blocks {
		for _, inst := range b.Instructions {
			if ni, ok := inst.(*ssa.NewInstance); ok {
				t.Fatalf("root allocation of %s survived inlining", ni.Class.Descriptor())
			}
		}
	}

	// the final return must carry a constant derived from the inlined
	// constructor's first argument (1), not a field read off the Point.
	last := method.Blocks[len(method.Blocks)-1]
	ret, ok := last.Terminator().(*ssa.Return)
	require.True(t, ok)
	assert.False(t, ret.Value.IsNone())
}

func TestProcessMethod_SkipsCandidateWhenBudgetExceeded(t *testing.T) {
	pool := symbol.NewPool()
	point, _, _ := buildPoint(pool, "Lapp/Point;")
	view := classdef.NewApplicationView(pool, map[symbol.Type]*classdef.ClassDefinition{point.Type: point}, nil)
	oracle := keep.NewOracle(options.Default(), keep.NewRuleSet())
	AnalyzeProgram(view)

	method := buildSumMethod(pool, point)
	sink := diag.NewSink()

	tightOpts := options.Default()
	tightOpts.InlinerSizeCeiling = 1
	ProcessMethod(view, oracle, tightOpts, method, sink)

	assert.True(t, sink.HasError() == false && len(sink.Diagnostics()) > 0, "budget rejection is a warning, not an error")

	foundAllocation := false
	for _, b := range method.Blocks {
		for _, inst := range b.Instructions {
			if _, ok := inst.(*ssa.NewInstance); ok {
				foundAllocation = true
			}
		}
	}
	assert.True(t, foundAllocation, "candidate must be left untouched once its budget is exceeded")
}

func TestProcessMethod_InlinesTrivialSingletonStaticGet(t *testing.T) {
	pool := symbol.NewPool()
	singleton, instanceField := buildTrivialSingleton(pool, "Lapp/Singleton;")
	view := classdef.NewApplicationView(pool, map[symbol.Type]*classdef.ClassDefinition{singleton.Type: singleton}, nil)
	oracle := keep.NewOracle(options.Default(), keep.NewRuleSet())
	AnalyzeProgram(view)

	intType := pool.Intern("I", symbol.KindPrimitive)
	getValueRef, _ := singleton.FindMethod(symbol.NewMethodSignature("getValue", nil, intType))

	body := ssa.NewMethod(0)
	entry := body.AddBlock()
	staticResult := body.FreshValue()
	getResult := body.FreshValue()
	entry.Instructions = []ssa.Instruction{
		&ssa.StaticGet{Result: staticResult, Field: instanceField},
		&ssa.InvokeMethod{Result: getResult, Kind: ssa.InvokeVirtual, Method: getValueRef.Ref, Receiver: staticResult, Args: nil},
		&ssa.Return{Value: getResult},
	}

	sink := diag.NewSink()
	ProcessMethod(view, oracle, options.Default(), body, sink)

	assert.False(t, sink.HasError())
	for _, b := range body.Blocks {
		for _, inst := range b.Instructions {
			if sg, ok := inst.(*ssa.StaticGet); ok {
				t.Fatalf("static-get of %s survived inlining", sg.Field)
			}
		}
	}
}
