// Package keep implements the Keep/Pinning Oracle of spec §4.2: a pure
// function of (symbol, option-set, rule-set) answering whether a symbol must
// retain its identity, prototype, and presence, or is subject to weaker
// constraints. Keep-rule parsing itself is an external collaborator (spec
// §1, §6); this package consumes an already-built RuleSet, it does not
// parse rule text.
package keep

import "strings"

// Rule is one already-parsed keep directive. Matcher reports whether a
// class descriptor is covered by the rule; MemberMatcher, if non-nil,
// additionally restricts the rule to members (methods/fields) whose name it
// accepts — a nil MemberMatcher means the rule covers the class itself and,
// if AppliesToMembers is set, every member.
type Rule struct {
	Matcher          func(classDescriptor string) bool
	MemberMatcher    func(memberName string) bool
	AppliesToMembers bool

	Pinned       bool
	IdentityOnly bool
	NoMerge      bool
	NoInline     bool

	// DontWarn suppresses UnresolvedReference diagnostics for symbols this
	// rule covers (spec §7).
	DontWarn bool
}

// ExactClass matches classDescriptor exactly, e.g. "Lcom/example/Foo;".
func ExactClass(descriptor string) func(string) bool {
	return func(d string) bool { return d == descriptor }
}

// PackagePrefix matches any class descriptor in the given package or a
// subpackage of it, e.g. PackagePrefix("com/example") matches
// "Lcom/example/Foo;" and "Lcom/example/sub/Bar;".
func PackagePrefix(pkg string) func(string) bool {
	prefix := "L" + strings.TrimSuffix(pkg, "/") + "/"
	return func(d string) bool { return strings.HasPrefix(d, prefix) }
}

// RuleSet is an ordered collection of Rules. Order is preserved but queries
// OR every matching rule's constraints together (the most restrictive
// applicable rule always wins; keep rules never relax an earlier rule).
type RuleSet struct {
	Rules []Rule
}

func NewRuleSet(rules ...Rule) RuleSet {
	return RuleSet{Rules: append([]Rule(nil), rules...)}
}

func (rs RuleSet) matchingClassRules(classDescriptor string) []Rule {
	var out []Rule
	for _, r := range rs.Rules {
		if r.Matcher != nil && r.Matcher(classDescriptor) {
			out = append(out, r)
		}
	}
	return out
}

func (rs RuleSet) matchingMemberRules(classDescriptor, memberName string) []Rule {
	var out []Rule
	for _, r := range rs.Rules {
		if r.Matcher == nil || !r.Matcher(classDescriptor) {
			continue
		}
		switch {
		case r.MemberMatcher != nil:
			if r.MemberMatcher(memberName) {
				out = append(out, r)
			}
		case r.AppliesToMembers:
			out = append(out, r)
		}
	}
	return out
}
