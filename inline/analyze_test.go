package inline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/weg2020/r8/classdef"
	"github.com/weg2020/r8/ssa"
	"github.com/weg2020/r8/symbol"
)

func TestAnalyzeProgram_DetectsTrivialClassInitializer(t *testing.T) {
	pool := symbol.NewPool()
	singleton, instanceField := buildTrivialSingleton(pool, "Lapp/Singleton;")
	view := classdef.NewApplicationView(pool, map[symbol.Type]*classdef.ClassDefinition{singleton.Type: singleton}, nil)

	AnalyzeProgram(view)

	clinit := singleton.StaticInitializer()
	field, known := clinit.Info.TrivialClassInitializerField()
	assert.True(t, known)
	assert.True(t, field.Equal(instanceField))
}

func TestAnalyzeProgram_GetterIsEligibleAsDoesNotLeakReceiver(t *testing.T) {
	pool := symbol.NewPool()
	point, _, _ := buildPoint(pool, "Lapp/Point;")
	view := classdef.NewApplicationView(pool, map[symbol.Type]*classdef.ClassDefinition{point.Type: point}, nil)

	AnalyzeProgram(view)

	getX, ok := point.FindMethod(symbol.NewMethodSignature("getX", nil, pool.Intern("I", symbol.KindPrimitive)))
	assert.True(t, ok)
	kind, known := getX.Info.Eligibility()
	assert.True(t, known)
	assert.Equal(t, classdef.DoesNotLeakReceiver, kind)
}

func TestAnalyzeMethod_MarksUnreferencedParameter(t *testing.T) {
	pool := symbol.NewPool()
	point, xField, _ := buildPoint(pool, "Lapp/Point;")
	intType := pool.Intern("I", symbol.KindPrimitive)
	voidType := pool.Intern("V", symbol.KindPrimitive)

	// A two-arg method that stores only the first argument; the second is
	// never referenced.
	ref := symbol.NewMethodReference(point.Type, symbol.NewMethodSignature("setXIgnoreY", []symbol.Type{intType, intType}, voidType))
	body := ssa.NewMethod(3) // this, x, y
	entry := body.AddBlock()
	entry.Instructions = []ssa.Instruction{
		&ssa.FieldPut{Receiver: body.Params[0], Field: xField, Value: body.Params[1]},
		&ssa.Return{Value: ssa.NoValue},
	}
	m := classdef.NewMethodDefinition(ref, classdef.AccPublic)
	m.Body = body

	analyzeMethod(point, m)
	assert.False(t, m.Info.ParamUnused(0), "x is stored, not unused")
	assert.True(t, m.Info.ParamUnused(1), "y is never referenced")
}
