package merge

import (
	"sort"

	"github.com/weg2020/r8/classdef"
	"github.com/weg2020/r8/util"
)

// Pipeline is the ordered battery of policies spec §4.3 requires: single-
// class policies run first (each a pure predicate over one class), then
// multi-class policies split the surviving buckets further. Order matters:
// later policies may assume earlier ones have already pruned ineligible
// classes.
type Pipeline struct {
	Single []SingleClassPolicy
	Multi  []MultiClassPolicy
}

// Bucket runs the full grouping algorithm of spec §4.3 over candidates and
// returns every resulting MergeGroup of size ≥ 2 (a group of size one
// carries no lens entry per the boundary behavior in spec §8 and is
// dropped here, not passed on for the caller to special-case).
func (p Pipeline) Bucket(view *classdef.ApplicationView, candidates []*classdef.ClassDefinition) []MergeGroup {
	survivors := make([]*classdef.ClassDefinition, 0, len(candidates))
	for _, c := range candidates {
		if p.survivesSinglePolicies(view, c) {
			survivors = append(survivors, c)
		}
	}

	// buckets holds one Pair per distinct key, in first-seen order; index
	// looks up a key's position in buckets without a linear scan.
	index := map[string]int{}
	var buckets []util.Pair[string, []*classdef.ClassDefinition]
	for _, c := range survivors {
		key := bucketKey(view, c)
		i, ok := index[key]
		if !ok {
			i = len(buckets)
			index[key] = i
			buckets = append(buckets, util.NewPair(key, []*classdef.ClassDefinition(nil)))
		}
		buckets[i].Snd = append(buckets[i].Snd, c)
	}

	var groups [][]*classdef.ClassDefinition
	for _, bucket := range buckets {
		groups = append(groups, bucket.Snd)
	}

	for _, policy := range p.Multi {
		var next [][]*classdef.ClassDefinition
		for _, group := range groups {
			next = append(next, policy.Partition(view, group)...)
		}
		groups = next
	}

	var result []MergeGroup
	for _, group := range groups {
		if len(group) < 2 {
			continue
		}
		result = append(result, newMergeGroup(group))
	}
	return result
}

func (p Pipeline) survivesSinglePolicies(view *classdef.ApplicationView, c *classdef.ClassDefinition) bool {
	for _, policy := range p.Single {
		if !policy.CanMerge(view, c) {
			return false
		}
	}
	return true
}

// newMergeGroup picks the target deterministically: the lexicographically
// smallest descriptor (spec §4.3 "Grouping", "the target ... is chosen
// deterministically").
func newMergeGroup(classes []*classdef.ClassDefinition) MergeGroup {
	sorted := append([]*classdef.ClassDefinition(nil), classes...)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Type.Descriptor() < sorted[j].Type.Descriptor()
	})
	return MergeGroup{Target: sorted[0], Sources: sorted[1:]}
}
