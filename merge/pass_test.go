package merge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/weg2020/r8/classdef"
	"github.com/weg2020/r8/diag"
	"github.com/weg2020/r8/keep"
	"github.com/weg2020/r8/options"
	"github.com/weg2020/r8/symbol"
)

func TestPass_RunMergesEligiblePairAndEmitsLens(t *testing.T) {
	pool := symbol.NewPool()
	a := buildValueHolder(pool, "Lapp/A;")
	b := buildValueHolder(pool, "Lapp/B;")

	program := map[symbol.Type]*classdef.ClassDefinition{a.Type: a, b.Type: b}
	view := classdef.NewApplicationView(pool, program, nil)

	oracle := keep.NewOracle(options.Default(), keep.NewRuleSet())
	pass := NewPass(oracle)
	sink := diag.NewSink()

	built, newProgram, err := pass.Run(view, sink)
	require.NoError(t, err)
	require.NotNil(t, built)
	assert.False(t, sink.HasError())

	assert.Len(t, newProgram, 1, "the pair fuses down to a single surviving class")
	_, targetSurvives := newProgram[a.Type]
	assert.True(t, targetSurvives, "the lexicographically smaller descriptor is the target")
	_, sourceSurvives := newProgram[b.Type]
	assert.False(t, sourceSurvives)
}

func TestPass_RunIsNoOpWhenNothingIsEligible(t *testing.T) {
	pool := symbol.NewPool()
	a := buildValueHolder(pool, "Lapp/A;")

	program := map[symbol.Type]*classdef.ClassDefinition{a.Type: a}
	view := classdef.NewApplicationView(pool, program, nil)

	oracle := keep.NewOracle(options.Default(), keep.NewRuleSet())
	pass := NewPass(oracle)
	sink := diag.NewSink()

	built, newProgram, err := pass.Run(view, sink)
	require.NoError(t, err)
	assert.Nil(t, built)
	assert.Nil(t, newProgram)
}

func TestPass_RunRespectsPinnedClasses(t *testing.T) {
	pool := symbol.NewPool()
	a := buildValueHolder(pool, "Lapp/A;")
	b := buildValueHolder(pool, "Lapp/B;")

	program := map[symbol.Type]*classdef.ClassDefinition{a.Type: a, b.Type: b}
	view := classdef.NewApplicationView(pool, program, nil)

	rules := keep.NewRuleSet(keep.Rule{Matcher: keep.ExactClass("Lapp/A;"), Pinned: true})
	oracle := keep.NewOracle(options.Default(), rules)
	pass := NewPass(oracle)
	sink := diag.NewSink()

	built, newProgram, err := pass.Run(view, sink)
	require.NoError(t, err)
	assert.Nil(t, built, "a pinned class can never be a merge candidate, so no group survives bucketing")
	assert.Nil(t, newProgram)
}
