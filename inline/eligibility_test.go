package inline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/weg2020/r8/classdef"
	"github.com/weg2020/r8/keep"
	"github.com/weg2020/r8/options"
	"github.com/weg2020/r8/symbol"
)

func TestClassEligible_AcceptsPlainValueType(t *testing.T) {
	pool := symbol.NewPool()
	point, _, _ := buildPoint(pool, "Lapp/Point;")
	view := classdef.NewApplicationView(pool, map[symbol.Type]*classdef.ClassDefinition{point.Type: point}, nil)
	oracle := keep.NewOracle(options.Default(), keep.NewRuleSet())

	assert.True(t, ClassEligible(view, oracle, point))
}

func TestClassEligible_RejectsPinnedClass(t *testing.T) {
	pool := symbol.NewPool()
	point, _, _ := buildPoint(pool, "Lapp/Point;")
	view := classdef.NewApplicationView(pool, map[symbol.Type]*classdef.ClassDefinition{point.Type: point}, nil)

	rules := keep.NewRuleSet(keep.Rule{Matcher: keep.ExactClass("Lapp/Point;"), Pinned: true})
	oracle := keep.NewOracle(options.Default(), rules)

	assert.False(t, ClassEligible(view, oracle, point))
}

func TestClassEligible_RejectsAbstractClass(t *testing.T) {
	pool := symbol.NewPool()
	point, _, _ := buildPoint(pool, "Lapp/Point;")
	point.Access |= classdef.AccAbstract
	view := classdef.NewApplicationView(pool, map[symbol.Type]*classdef.ClassDefinition{point.Type: point}, nil)
	oracle := keep.NewOracle(options.Default(), keep.NewRuleSet())

	assert.False(t, ClassEligible(view, oracle, point))
}

func TestClassEligible_RejectsInterface(t *testing.T) {
	pool := symbol.NewPool()
	point, _, _ := buildPoint(pool, "Lapp/Point;")
	point.Access |= classdef.AccInterface
	view := classdef.NewApplicationView(pool, map[symbol.Type]*classdef.ClassDefinition{point.Type: point}, nil)
	oracle := keep.NewOracle(options.Default(), keep.NewRuleSet())

	assert.False(t, ClassEligible(view, oracle, point))
}

func TestClassEligible_RejectsLibraryClass(t *testing.T) {
	pool := symbol.NewPool()
	point, _, _ := buildPoint(pool, "Lapp/Point;")
	view := classdef.NewApplicationView(pool, nil, map[symbol.Type]*classdef.ClassDefinition{point.Type: point})
	oracle := keep.NewOracle(options.Default(), keep.NewRuleSet())

	assert.False(t, ClassEligible(view, oracle, point))
}
