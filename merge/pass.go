package merge

import (
	"github.com/weg2020/r8/classdef"
	"github.com/weg2020/r8/diag"
	"github.com/weg2020/r8/keep"
	"github.com/weg2020/r8/lens"
	"github.com/weg2020/r8/symbol"
)

// Pass implements the driver's uniform `run(view, scheduler) → lens_or_none`
// capability (spec §9) for horizontal class merging: it buckets candidates,
// fuses every surviving group, and folds the per-group lens fragments into
// one lens for the driver to push.
type Pass struct {
	Pipeline Pipeline
	Oracle   *keep.Oracle
}

// Name satisfies driver.Pass by structural typing — this package never
// imports driver.
func (p *Pass) Name() string { return "horizontal-class-merging" }

// NewPass builds the fixed single/multi-class policy battery of spec §4.3
// over oracle.
func NewPass(oracle *keep.Oracle) *Pass {
	return &Pass{
		Pipeline: Pipeline{
			Single: []SingleClassPolicy{
				NotPinned(oracle),
				NoInnerClasses(),
				NotVerticallyMergedIntoSubtype(NoVerticalMergeState),
				NoDirectRuntimeTypeChecks(NoRuntimeTypeChecks),
			},
			Multi: []MultiClassPolicy{
				MainDexCompatible(NoMainDexPartitions),
			},
		},
		Oracle: oracle,
	}
}

// Run buckets view's program classes into merge groups, fuses each
// independently, and composes every group's lens fragment onto one combined
// builder. A group whose fusion violates an invariant is discarded wholesale
// (spec §4.3's per-group failure semantics) and reported to sink rather than
// aborting the whole pass.
//
// Run returns (nil, nil) if no group survived bucketing or every group
// failed to fuse — the driver treats a nil lens as "no-op pass".
func (p *Pass) Run(view *classdef.ApplicationView, sink *diag.Sink) (*lens.Lens, map[symbol.Type]*classdef.ClassDefinition, error) {
	groups := p.Pipeline.Bucket(view, view.ProgramClasses())
	if len(groups) == 0 {
		return nil, nil, nil
	}

	newProgram := make(map[symbol.Type]*classdef.ClassDefinition, view.ProgramClassCount())
	for _, c := range view.ProgramClasses() {
		newProgram[c.Type] = c
	}

	combined := lens.NewBuilder("horizontal-class-merging")
	fusedAny := false
	for _, group := range groups {
		fusedTarget, groupLens, err := Fuse(view.Pool, group)
		if err != nil {
			sink.Report(diag.New(diag.NewMergeGroupDiscarded{
				Target: group.Target.Type.Descriptor(),
				Reason: err.Error(),
			}))
			continue
		}

		newProgram[fusedTarget.Type] = fusedTarget
		for _, src := range group.Sources {
			delete(newProgram, src.Type)
		}
		mergeLensInto(combined, groupLens)
		fusedAny = true
	}

	if !fusedAny {
		return nil, nil, nil
	}

	built, err := combined.Build()
	if err != nil {
		return nil, nil, err
	}
	return built, newProgram, nil
}

// mergeLensInto copies every entry of a per-group lens fragment into dest.
// Groups partition the candidate set disjointly (spec §4.3's bucketing never
// lets one class appear in two groups), so no two fragments ever collide on
// the same key; Build's injectivity check is the final guard either way.
func mergeLensInto(dest *lens.Builder, fragment *lens.Lens) {
	fragment.EachType(func(from, to symbol.Type) { dest.RenameType(from, to) })
	fragment.EachField(func(from, to symbol.FieldReference) { dest.RenameField(from, to) })
	fragment.EachMethod(func(from, to symbol.MethodReference, change *lens.PrototypeChange, override *lens.InvokeKindOverride) {
		if !from.Equal(to) {
			dest.RenameMethod(from, to)
		}
		if change != nil {
			dest.SetPrototypeChange(from, change)
		}
		if override != nil {
			dest.SetInvokeKindOverride(from, override.From, override.To)
		}
	})
}
