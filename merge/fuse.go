package merge

import (
	"sort"

	"github.com/weg2020/r8/classdef"
	"github.com/weg2020/r8/lens"
	"github.com/weg2020/r8/ssa"
	"github.com/weg2020/r8/symbol"
	"github.com/weg2020/r8/util"
)

// ClassIDFieldName is the synthetic instance field the fused target carries
// to remember, at runtime, which source class a given instance originated
// from (spec §4.3 step 2, "class-id").
const ClassIDFieldName = "$r8$classId"

// Fuse performs the merge action of spec §4.3 for one group: it relocates
// every source's instance fields onto the target, synthesizes a dispatcher
// constructor per distinct original constructor signature, unifies or
// trampolines virtual methods, and returns the rebuilt target together with
// the lens fragment this group contributes. pool is used only to intern the
// int and void types of the class-id field and the dispatcher constructors.
//
// Fuse never partially applies: on any invariant violation it returns a
// non-nil error and the caller (Pass.Run) discards the whole group, per
// spec §4.3's failure semantics.
func Fuse(pool *symbol.Pool, group MergeGroup) (*classdef.ClassDefinition, *lens.Lens, error) {
	members := group.Members()
	intType := pool.Intern("I", symbol.KindPrimitive)
	voidType := pool.Intern("V", symbol.KindPrimitive)

	builder := lens.NewBuilder("horizontal-merge:" + group.Target.Type.Descriptor())
	for _, src := range group.Sources {
		builder.RenameType(src.Type, group.Target.Type)
	}

	target := cloneClassShallow(group.Target)

	usedFieldNames := map[string]bool{}
	for _, f := range target.Fields {
		usedFieldNames[f.Ref.Name] = true
	}
	fieldRelocation := map[symbol.FieldReference]symbol.FieldReference{}

	for _, src := range group.Sources {
		for _, f := range src.Fields {
			newName := util.FreshDescriptor(f.Ref.Name, func(candidate string) bool { return usedFieldNames[candidate] })
			usedFieldNames[newName] = true
			newRef := f.Ref.WithHolder(target.Type).WithName(newName)
			fieldRelocation[f.Ref] = newRef
			relocated := *f
			relocated.Ref = newRef
			target.Fields = append(target.Fields, &relocated)
			if !newRef.Equal(f.Ref) || !f.Ref.Holder.Equal(target.Type) {
				builder.RenameField(f.Ref, newRef)
			}
		}
	}

	classIDField := &classdef.FieldDefinition{
		Ref:    symbol.NewFieldReference(target.Type, ClassIDFieldName, intType),
		Access: classdef.AccPrivate | classdef.AccFinal,
	}
	target.Fields = append(target.Fields, classIDField)

	classID := make(map[symbol.Type]int, len(members))
	for i, m := range members {
		classID[m.Type] = i
	}

	if err := fuseConstructors(pool, target, members, classID, fieldRelocation, builder, voidType); err != nil {
		return nil, nil, err
	}
	if err := fuseVirtualMethods(target, members, classID, fieldRelocation, builder); err != nil {
		return nil, nil, err
	}

	built, err := builder.Build()
	if err != nil {
		return nil, nil, err
	}
	return target, built, nil
}

func cloneClassShallow(c *classdef.ClassDefinition) *classdef.ClassDefinition {
	clone := *c
	clone.Fields = append([]*classdef.FieldDefinition(nil), c.Fields...)
	clone.Methods = append([]*classdef.MethodDefinition(nil), c.Methods...)
	return &clone
}

func rewriteFieldRefs(inst ssa.Instruction, relocation map[symbol.FieldReference]symbol.FieldReference) ssa.Instruction {
	switch i := inst.(type) {
	case *ssa.FieldGet:
		if mapped, ok := relocation[i.Field]; ok {
			i.Field = mapped
		}
	case *ssa.FieldPut:
		if mapped, ok := relocation[i.Field]; ok {
			i.Field = mapped
		}
	case *ssa.StaticGet:
		if mapped, ok := relocation[i.Field]; ok {
			i.Field = mapped
		}
	case *ssa.StaticPut:
		if mapped, ok := relocation[i.Field]; ok {
			i.Field = mapped
		}
	}
	return inst
}

// spliceBody clones body into dest at destEntry, binding body's receiver
// and argument parameters to thisVal/argVals and rewriting every relocated
// field reference along the way.
func spliceBody(dest *ssa.Method, destEntry ssa.BlockID, body *ssa.Method, thisVal ssa.Value, argVals []ssa.Value, relocation map[symbol.FieldReference]symbol.FieldReference) {
	remapper := ssa.NewRemapper(dest)
	if len(body.Params) > 0 {
		remapper.BindValue(body.Params[0], thisVal)
	}
	for j, p := range body.Params[1:] {
		remapper.BindValue(p, argVals[j])
	}
	remapper.BindBlock(body.Blocks[0].ID, destEntry)

	for _, b := range body.Blocks {
		destID := remapper.CloneBlockInto(dest, b)
		destBlock := dest.Block(destID)
		for idx, inst := range destBlock.Instructions {
			destBlock.Instructions[idx] = rewriteFieldRefs(inst, relocation)
		}
	}
}

// dispatchOnClassID lays out the if/else-if chain used by both the
// dispatcher constructor and virtual-method trampolines: for every entry but
// the last, compare classIDVal against ids[index] and branch to a fresh
// block for emit to fill in; the last entry's case occupies the fallthrough
// block directly, needing no comparison, since the instance's class-id is
// guaranteed to be one of ids by construction.
//
// ids holds the actual class-id value for each entry, not its position:
// when a given constructor or method signature is not declared by every
// member of the group, the present members' class-ids may have gaps.
func dispatchOnClassID(dispatcher *ssa.Method, entry *ssa.Block, classIDVal ssa.Value, ids []int, emit func(index int, block *ssa.Block)) {
	current := entry
	for idx, id := range ids {
		if idx == len(ids)-1 {
			emit(idx, current)
			return
		}
		constVal := dispatcher.FreshValue()
		cmpVal := dispatcher.FreshValue()
		current.Instructions = append(current.Instructions,
			&ssa.ConstInt{Result: constVal, Int: int64(id)},
			&ssa.CmpEq{Result: cmpVal, A: classIDVal, B: constVal},
		)
		trueBlock := dispatcher.AddBlock()
		falseBlock := dispatcher.AddBlock()
		current.Instructions = append(current.Instructions, &ssa.If{Cond: cmpVal, True: trueBlock.ID, False: falseBlock.ID})
		emit(idx, trueBlock)
		current = falseBlock
	}
}

type ctorGroup struct {
	paramKey string
	params   []symbol.Type
	byOwner  map[symbol.Type]*classdef.MethodDefinition
}

func fuseConstructors(
	pool *symbol.Pool,
	target *classdef.ClassDefinition,
	members []*classdef.ClassDefinition,
	classID map[symbol.Type]int,
	fieldRelocation map[symbol.FieldReference]symbol.FieldReference,
	builder *lens.Builder,
	voidType symbol.Type,
) error {
	groups := map[string]*ctorGroup{}
	var order []string
	for _, m := range members {
		for _, ctor := range m.Constructors() {
			key := ctor.Ref.Descriptor()
			g, ok := groups[key]
			if !ok {
				g = &ctorGroup{paramKey: key, params: ctor.Ref.Params, byOwner: map[symbol.Type]*classdef.MethodDefinition{}}
				groups[key] = g
				order = append(order, key)
			}
			g.byOwner[m.Type] = ctor
		}
	}

	var fusedConstructors []*classdef.MethodDefinition
	for _, key := range order {
		g := groups[key]

		newParams := append(append([]symbol.Type(nil), g.params...), pool.Intern("I", symbol.KindPrimitive))
		newSig := symbol.NewMethodSignature("<init>", newParams, voidType)
		newRef := symbol.NewMethodReference(target.Type, newSig)

		dispatcher := ssa.NewMethod(1 + len(newParams))
		thisVal := dispatcher.Params[0]
		argVals := dispatcher.Params[1 : 1+len(g.params)]
		classIDVal := dispatcher.Params[len(dispatcher.Params)-1]
		entry := dispatcher.AddBlock()
		entry.Instructions = append(entry.Instructions, &ssa.FieldPut{Receiver: thisVal, Field: symbol.NewFieldReference(target.Type, ClassIDFieldName, classIDFieldType(target)), Value: classIDVal})

		presentMembers := membersWithConstructor(members, g)
		ids := make([]int, len(presentMembers))
		for i, owner := range presentMembers {
			ids[i] = classID[owner.Type]
		}
		dispatchOnClassID(dispatcher, entry, classIDVal, ids, func(idx int, block *ssa.Block) {
			owner := presentMembers[idx]
			ctor := g.byOwner[owner.Type]
			if ctor.Body != nil {
				spliceBody(dispatcher, block.ID, ctor.Body, thisVal, argVals, fieldRelocation)
			} else {
				block.Instructions = append(block.Instructions, &ssa.Return{Value: ssa.NoValue})
			}
		})

		fusedConstructors = append(fusedConstructors, &classdef.MethodDefinition{
			Ref:    newRef,
			Access: classdef.AccPublic | classdef.AccConstructor,
			Body:   dispatcher,
			Info:   classdef.NewOptimizationInfo(),
		})

		for _, owner := range presentMembers {
			id := classID[owner.Type]
			prototypeChange := &lens.PrototypeChange{AppendedClassID: &id}
			oldCtor := g.byOwner[owner.Type]
			if !owner.Type.Equal(target.Type) {
				builder.RenameMethod(oldCtor.Ref, newRef)
			}
			builder.SetPrototypeChange(oldCtor.Ref, prototypeChange)
		}
	}

	kept := make([]*classdef.MethodDefinition, 0, len(target.Methods))
	for _, m := range target.Methods {
		if !m.IsInstanceInitializer() {
			kept = append(kept, m)
		}
	}
	target.Methods = append(kept, fusedConstructors...)
	return nil
}

// membersWithConstructor returns, sorted by descriptor, every member that
// declares a constructor in g — classes that inherit their constructor
// from a superclass never contribute a branch.
func membersWithConstructor(members []*classdef.ClassDefinition, g *ctorGroup) []*classdef.ClassDefinition {
	var out []*classdef.ClassDefinition
	for _, m := range members {
		if _, ok := g.byOwner[m.Type]; ok {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Type.Descriptor() < out[j].Type.Descriptor() })
	return out
}

func fuseVirtualMethods(
	target *classdef.ClassDefinition,
	members []*classdef.ClassDefinition,
	classID map[symbol.Type]int,
	fieldRelocation map[symbol.FieldReference]symbol.FieldReference,
	builder *lens.Builder,
) error {
	bySig := map[string][]ownedMethod{}
	var order []string
	for _, m := range members {
		for _, method := range m.Methods {
			if method.IsInstanceInitializer() || method.IsStaticInitializer() || method.Access.IsStatic() {
				continue
			}
			key := method.Ref.Name + method.Ref.Descriptor()
			if _, ok := bySig[key]; !ok {
				order = append(order, key)
			}
			bySig[key] = append(bySig[key], ownedMethod{owner: m, def: method})
		}
	}

	for _, key := range order {
		owners := bySig[key]
		if len(owners) == 1 && owners[0].owner.Type.Equal(target.Type) {
			continue
		}

		if allBodiesEquivalent(owners) {
			canonical := owners[0].def
			if !owners[0].owner.Type.Equal(target.Type) {
				// the target does not declare this signature: carry the first source's method over.
				moved := *canonical
				moved.Ref = canonical.Ref.WithHolder(target.Type)
				if moved.Body != nil {
					for _, block := range moved.Body.Blocks {
						for i, inst := range block.Instructions {
							block.Instructions[i] = rewriteFieldRefs(inst, fieldRelocation)
						}
					}
				}
				replaceOrAddMethod(target, &moved)
				builder.RenameMethod(canonical.Ref, moved.Ref)
				canonical = &moved
			}
			for _, o := range owners[1:] {
				builder.RenameMethod(o.def.Ref, canonical.Ref)
			}
			continue
		}

		trampoline := buildTrampoline(target, owners, classID, fieldRelocation)
		replaceOrAddMethod(target, trampoline.method)
		for _, impl := range trampoline.implementations {
			replaceOrAddMethod(target, impl.def)
			builder.RenameMethod(impl.original.Ref, impl.def.Ref)
		}
	}

	return nil
}

type ownedMethod struct {
	owner *classdef.ClassDefinition
	def   *classdef.MethodDefinition
}

// allBodiesEquivalent is a conservative structural heuristic, not full
// semantic equality: bodies are considered equivalent only when every
// owner's method has the same block count and the same per-block
// instruction count. A false negative here just costs an extra trampoline;
// a false positive would be a correctness bug, so the check stays strict.
func allBodiesEquivalent(owners []ownedMethod) bool {
	if len(owners) <= 1 {
		return true
	}
	first := owners[0].def.Body
	if first == nil {
		return false
	}
	for _, o := range owners[1:] {
		b := o.def.Body
		if b == nil || len(b.Blocks) != len(first.Blocks) {
			return false
		}
		for i := range b.Blocks {
			if len(b.Blocks[i].Instructions) != len(first.Blocks[i].Instructions) {
				return false
			}
		}
	}
	return true
}

type implementation struct {
	owner    *classdef.ClassDefinition
	original *classdef.MethodDefinition
	def      *classdef.MethodDefinition
}

type trampolineResult struct {
	method          *classdef.MethodDefinition
	implementations []implementation
}

// buildTrampoline synthesizes the target's method at the original shared
// signature as a classId-keyed dispatcher (spec §4.3 step 3, "dispatched
// through a synthesized trampoline keyed on the class-id field"), and
// renames each owner's original implementation to a fresh private name so
// the trampoline can invoke it directly.
func buildTrampoline(
	target *classdef.ClassDefinition,
	owners []ownedMethod,
	classID map[symbol.Type]int,
	fieldRelocation map[symbol.FieldReference]symbol.FieldReference,
) trampolineResult {
	sig := owners[0].def.Ref.MethodSignature
	trampolineRef := symbol.NewMethodReference(target.Type, sig)

	sorted := append([]ownedMethod(nil), owners...)
	sort.Slice(sorted, func(i, j int) bool { return classID[sorted[i].owner.Type] < classID[sorted[j].owner.Type] })

	implementations := make([]implementation, 0, len(sorted))
	usedNames := map[string]bool{}
	for _, m := range target.Methods {
		usedNames[m.Ref.Name] = true
	}

	for _, o := range sorted {
		implName := util.FreshDescriptor(o.def.Ref.Name+"$impl", func(candidate string) bool { return usedNames[candidate] })
		usedNames[implName] = true
		implRef := symbol.NewMethodReference(target.Type, sig.WithName(implName))
		implDef := &classdef.MethodDefinition{
			Ref:    implRef,
			Access: classdef.AccPrivate,
			Body:   o.def.Body,
			Info:   classdef.NewOptimizationInfo(),
		}
		implementations = append(implementations, implementation{owner: o.owner, original: o.def, def: implDef})
	}

	dispatcher := ssa.NewMethod(1 + len(sig.Params))
	thisVal := dispatcher.Params[0]
	argVals := dispatcher.Params[1:]
	classIDField := symbol.NewFieldReference(target.Type, ClassIDFieldName, classIDFieldType(target))
	classIDVal := dispatcher.FreshValue()
	entry := dispatcher.AddBlock()
	entry.Instructions = append(entry.Instructions, &ssa.FieldGet{Result: classIDVal, Receiver: thisVal, Field: classIDField})

	implIDs := make([]int, len(implementations))
	for i, impl := range implementations {
		implIDs[i] = classID[impl.owner.Type]
	}
	dispatchOnClassID(dispatcher, entry, classIDVal, implIDs, func(idx int, block *ssa.Block) {
		impl := implementations[idx]
		resultVal := ssa.NoValue
		if !sig.Return.IsZero() && sig.Return.Descriptor() != "V" {
			resultVal = dispatcher.FreshValue()
		}
		block.Instructions = append(block.Instructions, &ssa.InvokeMethod{
			Result:   resultVal,
			Kind:     ssa.InvokeDirect,
			Method:   impl.def.Ref,
			Receiver: thisVal,
			Args:     argVals,
		})
		block.Instructions = append(block.Instructions, &ssa.Return{Value: resultVal})
	})

	method := &classdef.MethodDefinition{
		Ref:    trampolineRef,
		Access: owners[0].def.Access,
		Body:   dispatcher,
		Info:   classdef.NewOptimizationInfo(),
	}

	for _, impl := range implementations {
		for _, block := range impl.def.Body.Blocks {
			for i, inst := range block.Instructions {
				block.Instructions[i] = rewriteFieldRefs(inst, fieldRelocation)
			}
		}
	}

	return trampolineResult{method: method, implementations: implementations}
}

func classIDFieldType(target *classdef.ClassDefinition) symbol.Type {
	for _, f := range target.Fields {
		if f.Ref.Name == ClassIDFieldName {
			return f.Ref.Type
		}
	}
	return symbol.Type{}
}

func replaceOrAddMethod(target *classdef.ClassDefinition, m *classdef.MethodDefinition) {
	for i, existing := range target.Methods {
		if existing.Ref.Descriptor() == m.Ref.Descriptor() && existing.Ref.Name == m.Ref.Name {
			target.Methods[i] = m
			return
		}
	}
	target.Methods = append(target.Methods, m)
}
