package merge

import (
	"sort"
	"strings"

	"github.com/weg2020/r8/classdef"
	"github.com/weg2020/r8/symbol"
	"github.com/weg2020/r8/util"
	"github.com/weg2020/r8/util/hset"
	"github.com/xtgo/set"
)

// MergeGroup is a non-empty set of classes selected for horizontal fusion
// plus one designated target (spec §3). A group of size one carries no
// lens entry and is never constructed by Bucket.
type MergeGroup struct {
	Target  *classdef.ClassDefinition
	Sources []*classdef.ClassDefinition // excludes Target
}

// Members returns every class in the group, target first.
func (g MergeGroup) Members() []*classdef.ClassDefinition {
	out := make([]*classdef.ClassDefinition, 0, len(g.Sources)+1)
	out = append(out, g.Target)
	out = append(out, g.Sources...)
	return out
}

// bucketKey groups classes that could conceivably be fused: same
// superclass, same transitive interface set, equivalent access modifiers,
// and compatible instance-field layout (spec §4.3 "Grouping").
func bucketKey(view *classdef.ApplicationView, c *classdef.ClassDefinition) string {
	var b strings.Builder
	b.WriteString(c.Super.Descriptor())
	b.WriteByte('|')
	b.WriteString(interfaceSetKey(transitiveInterfaces(view, c)))
	b.WriteByte('|')
	b.WriteString(accessEquivalenceKey(c.Access))
	b.WriteByte('|')
	b.WriteString(fieldLayoutKey(c))
	return b.String()
}

// transitiveInterfaces walks c's superclass chain collecting every
// interface implemented anywhere in it, not just the ones c declares
// directly: two classes that both (transitively) implement the same
// interface are equally affected by a fusion that drops one subclass's
// identity, so bucketing must compare the whole inherited set. Interfaces
// are deduplicated by identity as they're collected, since the same
// interface can reappear at more than one level of the hierarchy.
func transitiveInterfaces(view *classdef.ApplicationView, c *classdef.ClassDefinition) []symbol.Type {
	seen := hset.New[symbol.Type](symbol.TypeHasher)
	for _, iface := range c.Interfaces {
		seen.Add(iface)
	}

	var ancestors util.Stack[symbol.Type]
	if !c.Super.IsZero() {
		ancestors.Push(c.Super)
	}
	for ancestors.Len() > 0 {
		t, _ := ancestors.Pop()
		super, ok := view.Resolve(t)
		if !ok {
			continue
		}
		for _, iface := range super.Interfaces {
			seen.Add(iface)
		}
		if !super.Super.IsZero() {
			ancestors.Push(super.Super)
		}
	}

	out := make([]symbol.Type, 0, seen.Len())
	for t := range seen.All() {
		out = append(out, t)
	}
	return out
}

// interfaceSetKey renders a class's interface set as a sorted,
// deduplicated descriptor list. A class can declare the same interface
// twice via distinct generic-signature instantiations; xtgo/set's
// sort-then-uniq algorithm collapses that deterministically without
// allocating a hash set for what is normally a handful of elements.
func interfaceSetKey(interfaces []symbol.Type) string {
	descriptors := make(sort.StringSlice, len(interfaces))
	for i, t := range interfaces {
		descriptors[i] = t.Descriptor()
	}
	sort.Sort(descriptors)
	uniq := descriptors[:set.Uniq(descriptors)]
	return strings.Join(uniq, ",")
}

// accessEquivalenceKey buckets by the access flags the merged class must
// share: public visibility, finality, and abstractness. Abstract classes
// therefore only bucket with other abstract classes.
func accessEquivalenceKey(access classdef.AccessFlags) string {
	var b strings.Builder
	if access.IsPublic() {
		b.WriteByte('P')
	}
	if access.IsFinal() {
		b.WriteByte('F')
	}
	if access.IsAbstract() {
		b.WriteByte('A')
	}
	return b.String()
}

func fieldLayoutKey(c *classdef.ClassDefinition) string {
	fields := c.InstanceFields()
	descriptors := make([]string, len(fields))
	for i, f := range fields {
		descriptors[i] = f.Ref.Type.Descriptor()
	}
	sort.Strings(descriptors)
	return strings.Join(descriptors, ",")
}
