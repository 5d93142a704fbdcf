package keep

import (
	"github.com/weg2020/r8/options"
	"github.com/weg2020/r8/symbol"
	"github.com/weg2020/r8/util"
)

// Oracle answers keep/pinning queries. It is a pure function of
// (symbol, Options, RuleSet): construction captures the option set and rule
// set once, and every Query* method is safe to call concurrently from many
// passes' worker-pool items, backed by a per-symbol-kind compute-if-absent
// cache (spec §4.2, §5).
type Oracle struct {
	opts  options.Options
	rules RuleSet

	typeCache   *util.ComputeCache[symbol.Type, Effect]
	methodCache *util.ComputeCache[symbol.MethodReference, Effect]
	fieldCache  *util.ComputeCache[symbol.FieldReference, Effect]
}

func NewOracle(opts options.Options, rules RuleSet) *Oracle {
	return &Oracle{
		opts:        opts,
		rules:       rules,
		typeCache:   util.NewComputeCache[symbol.Type, Effect](symbol.TypeHasher),
		methodCache: util.NewComputeCache[symbol.MethodReference, Effect](symbol.MethodReferenceHasher),
		fieldCache:  util.NewComputeCache[symbol.FieldReference, Effect](symbol.FieldReferenceHasher),
	}
}

// QueryType returns the class-level Effect for t.
func (o *Oracle) QueryType(t symbol.Type) Effect {
	return o.typeCache.ComputeIfAbsent(t, func() Effect {
		return o.computeClassEffect(t.Descriptor())
	})
}

func (o *Oracle) computeClassEffect(descriptor string) Effect {
	var e Effect
	for _, r := range o.rules.matchingClassRules(descriptor) {
		e = e.or(r)
	}
	return e
}

// QueryMethod returns the Effect for a method, combining its own matching
// rules with its holder class's Effect: a pinned class pins every member
// (spec §3 ApplicationView invariant "for every pinned symbol, no lens
// currently in effect renames or removes it" extends transitively to
// members of a pinned class).
func (o *Oracle) QueryMethod(m symbol.MethodReference) Effect {
	return o.methodCache.ComputeIfAbsent(m, func() Effect {
		e := o.QueryType(m.Holder)
		for _, r := range o.rules.matchingMemberRules(m.Holder.Descriptor(), m.Name) {
			e = e.or(r)
		}
		return e
	})
}

func (o *Oracle) QueryField(f symbol.FieldReference) Effect {
	return o.fieldCache.ComputeIfAbsent(f, func() Effect {
		e := o.QueryType(f.Holder)
		for _, r := range o.rules.matchingMemberRules(f.Holder.Descriptor(), f.Name) {
			e = e.or(r)
		}
		return e
	})
}

// IsDontWarn reports whether an unresolved reference to t is covered by a
// dontWarn rule (spec §7 UnresolvedReference severity downgrade).
func (o *Oracle) IsDontWarn(t symbol.Type) bool {
	return o.QueryType(t).DontWarn
}
