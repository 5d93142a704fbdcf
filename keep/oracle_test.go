package keep

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/weg2020/r8/options"
	"github.com/weg2020/r8/symbol"
)

func TestOracle_PinnedClassPinsItsMembers(t *testing.T) {
	pool := symbol.NewPool()
	x := pool.Intern("Lcom/example/X;", symbol.KindClass)

	rules := NewRuleSet(Rule{Matcher: ExactClass("Lcom/example/X;"), Pinned: true, AppliesToMembers: true})
	oracle := NewOracle(options.Default(), rules)

	sig := symbol.NewMethodSignature("m", nil, pool.Intern("V", symbol.KindPrimitive))
	ref := symbol.NewMethodReference(x, sig)

	effect := oracle.QueryMethod(ref)
	assert.True(t, effect.Pinned)
	assert.False(t, effect.MayRename())
	assert.False(t, effect.MayInline())
}

func TestOracle_UnmatchedSymbolIsUnconstrained(t *testing.T) {
	pool := symbol.NewPool()
	y := pool.Intern("Lcom/example/Y;", symbol.KindClass)

	oracle := NewOracle(options.Default(), NewRuleSet())
	effect := oracle.QueryType(y)

	assert.True(t, effect.MayRename())
	assert.True(t, effect.MayMerge())
	assert.True(t, effect.MayInline())
	assert.True(t, effect.MayRemove())
}

func TestOracle_NoMergeDoesNotBlockInlining(t *testing.T) {
	pool := symbol.NewPool()
	z := pool.Intern("Lcom/example/Z;", symbol.KindClass)

	rules := NewRuleSet(Rule{Matcher: ExactClass("Lcom/example/Z;"), NoMerge: true})
	oracle := NewOracle(options.Default(), rules)

	effect := oracle.QueryType(z)
	assert.False(t, effect.MayMerge())
	assert.True(t, effect.MayInline())
	assert.True(t, effect.MayRename())
}

func TestOracle_DontWarnIsVisibleOnUnresolvedReference(t *testing.T) {
	pool := symbol.NewPool()
	missing := pool.Intern("Lcom/example/Missing;", symbol.KindClass)

	rules := NewRuleSet(Rule{Matcher: PackagePrefix("com/example"), DontWarn: true})
	oracle := NewOracle(options.Default(), rules)

	assert.True(t, oracle.IsDontWarn(missing))
}

func TestOracle_CachesResultsBySymbolIdentity(t *testing.T) {
	pool := symbol.NewPool()
	a := pool.Intern("Lcom/example/A;", symbol.KindClass)

	rules := NewRuleSet(Rule{Matcher: ExactClass("Lcom/example/A;"), Pinned: true})
	oracle := NewOracle(options.Default(), rules)

	first := oracle.QueryType(a)
	second := oracle.QueryType(a)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, oracle.typeCache.Len())
}
