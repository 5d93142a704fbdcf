package inline

import (
	"github.com/weg2020/r8/ssa"
	"github.com/weg2020/r8/util"
)

// locateInstruction finds inst's current (block, index) by object identity.
// The transform splits and splices blocks as it runs, so any position a
// candidate cached at discovery time goes stale after the first step; every
// step that needs a position re-derives it instead of trusting a cache.
func locateInstruction(method *ssa.Method, inst ssa.Instruction) (*ssa.Block, int, bool) {
	for _, b := range method.Blocks {
		for i, cur := range b.Instructions {
			if cur == inst {
				return b, i, true
			}
		}
	}
	return nil, 0, false
}

// synthesizeCtorCall inserts, immediately after c's static-get, an
// InvokeMethod matching the trivial class initializer's own constructor
// call, with fresh constant-materializing instructions for its literal
// arguments. This is what lets the force-inline step treat a static-get
// root exactly like a `new T(...)` root: semantically, reading the
// singleton field is indistinguishable from running its constructor again,
// since the class initializer's only effect spec §4.4 allows is exactly
// that one allocate-construct-store sequence. It only changes this one use
// site — the singleton field and every other reader of it are untouched.
func synthesizeCtorCall(method *ssa.Method, c *Candidate) {
	block, idx, ok := locateInstruction(method, c.RootInst)
	if !ok {
		return
	}
	args := make([]ssa.Value, len(c.CtorArgs))
	insert := make([]ssa.Instruction, 0, len(c.CtorArgs)+1)
	for i, lit := range c.CtorArgs {
		v := method.FreshValue()
		insert = append(insert, lit.instruction(v))
		args[i] = v
	}
	call := &ssa.InvokeMethod{
		Result:   ssa.NoValue,
		Kind:     ssa.InvokeDirect,
		Method:   c.CtorRef,
		Receiver: c.Root,
		Args:     args,
	}
	insert = append(insert, call)
	block.InsertBefore(idx+1, insert...)
	c.CtorCall = call
}

// forceInlineCall splices callee's body into method in place of call,
// rewiring control flow: the call's block is split at the call site, the
// callee's body is cloned into the gap with its parameters bound to the
// call's receiver/arguments, every Return becomes a Goto into the
// continuation block, and the call's result value (if used) is replaced by
// the value(s) flowing out of the callee's exit(s) — a Phi if the callee has
// more than one.
func forceInlineCall(method *ssa.Method, call *ssa.InvokeMethod, callee *ssa.Method) bool {
	block, idx, ok := locateInstruction(method, call)
	if !ok {
		return false
	}

	cont := method.AddBlock()
	cont.Instructions = append([]ssa.Instruction(nil), block.Instructions[idx+1:]...)
	cont.Succs = append([]ssa.BlockID(nil), block.Succs...)
	for _, succID := range cont.Succs {
		succ := method.Block(succID)
		succ.Preds = replaceBlockID(succ.Preds, block.ID, cont.ID)
	}
	block.Instructions = block.Instructions[:idx]
	block.Succs = nil

	remapper := ssa.NewRemapper(method)
	bindCalleeParams(remapper, callee, call)
	remapper.BindBlock(callee.Blocks[0].ID, block.ID)

	var exitBlocks []ssa.BlockID
	exitValues := map[ssa.BlockID]ssa.Value{}

	for _, cb := range callee.Blocks {
		destID := remapper.Block(cb.ID)
		dest := method.Block(destID)
		for _, inst := range cb.Instructions {
			if ret, ok := inst.(*ssa.Return); ok {
				if !ret.Value.IsNone() {
					exitValues[destID] = remapper.Value(ret.Value)
				}
				dest.Instructions = append(dest.Instructions, &ssa.Goto{Target: cont.ID})
				exitBlocks = append(exitBlocks, destID)
				continue
			}
			dest.Instructions = append(dest.Instructions, remapper.CloneInstruction(inst))
		}
	}

	for _, destID := range allTouchedBlocks(remapper, callee, block.ID) {
		linkSuccessors(method, method.Block(destID))
	}
	linkSuccessors(method, cont)

	if !call.Result.IsNone() {
		resolveCallResult(method, cont, call.Result, exitBlocks, exitValues)
	}

	return true
}

// bindCalleeParams binds callee's receiver (if any) and arguments to call's
// actual operands before cloning its body.
func bindCalleeParams(remapper *ssa.Remapper, callee *ssa.Method, call *ssa.InvokeMethod) {
	if call.Receiver.IsNone() {
		for j, p := range callee.Params {
			remapper.BindValue(p, call.Args[j])
		}
		return
	}
	remapper.BindValue(callee.Params[0], call.Receiver)
	for j, p := range callee.Params[1:] {
		remapper.BindValue(p, call.Args[j])
	}
}

// allTouchedBlocks returns the destination BlockIDs every callee block was
// cloned into, entry block included.
func allTouchedBlocks(remapper *ssa.Remapper, callee *ssa.Method, entryDest ssa.BlockID) []ssa.BlockID {
	out := make([]ssa.BlockID, 0, len(callee.Blocks))
	out = append(out, entryDest)
	for _, cb := range callee.Blocks[1:] {
		out = append(out, remapper.Block(cb.ID))
	}
	return out
}

// linkSuccessors recomputes b's Succs from its own terminator and registers
// b as a predecessor of each of them.
func linkSuccessors(method *ssa.Method, b *ssa.Block) {
	switch t := b.Terminator().(type) {
	case *ssa.Goto:
		b.Succs = []ssa.BlockID{t.Target}
	case *ssa.If:
		b.Succs = []ssa.BlockID{t.True, t.False}
	case *ssa.Return:
		b.Succs = nil
	}
	for _, succID := range b.Succs {
		succ := method.Block(succID)
		if !containsBlockID(succ.Preds, b.ID) {
			succ.Preds = append(succ.Preds, b.ID)
		}
	}
}

// resolveCallResult replaces every remaining use of result with whatever
// value the inlined callee's exit(s) actually produced: directly, if the
// callee had exactly one exit, or through a freshly inserted Phi at cont's
// head if it had several.
func resolveCallResult(method *ssa.Method, cont *ssa.Block, result ssa.Value, exitBlocks []ssa.BlockID, exitValues map[ssa.BlockID]ssa.Value) {
	if len(exitBlocks) == 1 {
		if v, ok := exitValues[exitBlocks[0]]; ok {
			substituteValue(method, result, v)
		}
		return
	}
	inputs := make(map[ssa.BlockID]ssa.Value, len(exitBlocks))
	for _, eb := range exitBlocks {
		if v, ok := exitValues[eb]; ok {
			inputs[eb] = v
		}
	}
	if len(inputs) == 0 {
		return
	}
	phiVal := method.FreshValue()
	cont.Instructions = append([]ssa.Instruction{&ssa.Phi{Result: phiVal, Inputs: inputs}}, cont.Instructions...)
	substituteValue(method, result, phiVal)
}

// substituteValue rewrites every use of old to new across every instruction
// in method. It never touches Defs — old's defining instruction is being
// removed by the caller, not renamed.
func substituteValue(method *ssa.Method, old, new ssa.Value) {
	if old.IsNone() || old == new {
		return
	}
	for _, b := range method.Blocks {
		for i, inst := range b.Instructions {
			b.Instructions[i] = substituteInInstruction(inst, old, new)
		}
	}
}

func substituteInInstruction(inst ssa.Instruction, old, new ssa.Value) ssa.Instruction {
	switch v := inst.(type) {
	case *ssa.InvokeMethod:
		if v.Receiver == old {
			v.Receiver = new
		}
		for i, a := range v.Args {
			if a == old {
				v.Args[i] = new
			}
		}
	case *ssa.FieldGet:
		if v.Receiver == old {
			v.Receiver = new
		}
	case *ssa.FieldPut:
		if v.Receiver == old {
			v.Receiver = new
		}
		if v.Value == old {
			v.Value = new
		}
	case *ssa.StaticPut:
		if v.Value == old {
			v.Value = new
		}
	case *ssa.CmpEq:
		if v.A == old {
			v.A = new
		}
		if v.B == old {
			v.B = new
		}
	case *ssa.Return:
		if v.Value == old {
			v.Value = new
		}
	case *ssa.If:
		if v.Cond == old {
			v.Cond = new
		}
	case *ssa.Phi:
		for b, val := range v.Inputs {
			if val == old {
				v.Inputs[b] = new
			}
		}
	}
	return inst
}

func replaceBlockID(ids []ssa.BlockID, old, new ssa.BlockID) []ssa.BlockID {
	out := make([]ssa.BlockID, len(ids))
	for i, id := range ids {
		if id == old {
			out[i] = new
		} else {
			out[i] = id
		}
	}
	return out
}

func containsBlockID(ids []ssa.BlockID, target ssa.BlockID) bool {
	for _, id := range ids {
		if id == target {
			return true
		}
	}
	return false
}

// finalizeCandidate performs spec §4.4 transform steps 3-4 once every use
// of c.Root is a field read, a field write, or the root allocation itself:
// it replaces field reads with the value a local value-flow analysis
// computes, then removes the writes and the allocation.
func finalizeCandidate(method *ssa.Method, c *Candidate) {
	replaceFieldReads(method, c)
	removeRootInstructions(method, c)
}

// replaceFieldReads runs a small per-field SSA-construction pass: for every
// instance field accessed through c.Root, it computes the value live at
// every point in the CFG (a write defines it going forward; a join of
// differing incoming values gets a Phi) and rewrites every FieldGet through
// c.Root accordingly, in place of the field storage itself — spec §4.4 step
// 3.
func replaceFieldReads(method *ssa.Method, c *Candidate) {
	fields := util.NewEmptySet[string]()
	for _, b := range method.Blocks {
		for _, inst := range b.Instructions {
			switch v := inst.(type) {
			case *ssa.FieldGet:
				if v.Receiver == c.Root {
					fields.Add(v.Field.Name)
				}
			case *ssa.FieldPut:
				if v.Receiver == c.Root {
					fields.Add(v.Field.Name)
				}
			}
		}
	}
	for name := range fields.All() {
		replaceOneField(method, c, name)
	}
}

// replaceOneField promotes one field of c.Root to SSA form: blockIn[b] is
// the value flowing into b (a Phi if predecessors disagree), blockOut[b] is
// the last value written in b (or blockIn[b] if b writes nothing).
func replaceOneField(method *ssa.Method, c *Candidate, fieldName string) {
	blockIn := map[ssa.BlockID]ssa.Value{}
	blockOut := map[ssa.BlockID]ssa.Value{}
	phis := map[ssa.BlockID]*ssa.Phi{}

	order := reversePostorder(method)

	for pass := 0; pass < len(method.Blocks)+1; pass++ {
		changed := false
		for _, b := range order {
			in, ok := mergeIncoming(method, b, blockOut, phis)
			if ok && blockIn[b.ID] != in {
				blockIn[b.ID] = in
				changed = true
			}
			out := in
			for _, inst := range b.Instructions {
				if put, ok := inst.(*ssa.FieldPut); ok && put.Receiver == c.Root && put.Field.Name == fieldName {
					out = put.Value
				}
			}
			if blockOut[b.ID] != out {
				blockOut[b.ID] = out
				changed = true
			}
		}
		if !changed {
			break
		}
	}

	for _, b := range method.Blocks {
		running := blockIn[b.ID]
		for i, inst := range b.Instructions {
			if get, ok := inst.(*ssa.FieldGet); ok && get.Receiver == c.Root && get.Field.Name == fieldName {
				substituteValue(method, get.Result, running)
				b.Instructions[i] = nil
				continue
			}
			if put, ok := inst.(*ssa.FieldPut); ok && put.Receiver == c.Root && put.Field.Name == fieldName {
				running = put.Value
			}
		}
	}
	compactBlocks(method)
}

// mergeIncoming computes b's incoming value for one field from its
// predecessors' outgoing values, allocating (and keeping stable across
// passes) a Phi if predecessors disagree. It returns false until every
// predecessor has produced an outgoing value at least once.
func mergeIncoming(method *ssa.Method, b *ssa.Block, blockOut map[ssa.BlockID]ssa.Value, phis map[ssa.BlockID]*ssa.Phi) (ssa.Value, bool) {
	if len(b.Preds) == 0 {
		return ssa.NoValue, true
	}
	var first ssa.Value
	haveFirst := false
	uniform := true
	seenAny := false
	for _, p := range b.Preds {
		v, ok := blockOut[p]
		if !ok {
			continue
		}
		seenAny = true
		if !haveFirst {
			first = v
			haveFirst = true
			continue
		}
		if v != first {
			uniform = false
		}
	}
	if !seenAny {
		return ssa.NoValue, false
	}
	if uniform {
		return first, true
	}
	phi, ok := phis[b.ID]
	if !ok {
		phi = &ssa.Phi{Result: method.FreshValue(), Inputs: map[ssa.BlockID]ssa.Value{}}
		phis[b.ID] = phi
		b.Instructions = append([]ssa.Instruction{phi}, b.Instructions...)
	}
	for _, p := range b.Preds {
		if v, ok := blockOut[p]; ok {
			phi.Inputs[p] = v
		}
	}
	return phi.Result, true
}

// reversePostorder is a cheap approximation good enough for the
// fixed-point iteration above: Blocks is already emitted in roughly
// forward program order by every producer in this module (the reader,
// the merger's dispatcher synthesis, force-inline's own splicing), so a
// handful of fixed-point passes over that order converges even in the
// presence of back edges.
func reversePostorder(method *ssa.Method) []*ssa.Block {
	return method.Blocks
}

// removeRootInstructions deletes every field write to c.Root, the root's
// defining instruction (c.RootInst), and any nil instruction slot left by
// earlier steps — step 4 of spec §4.4's transformation. It removes no call
// instruction: by the time the processor reaches this, force-inlining has
// already replaced the constructor call, and scanUsage reports no remaining
// uses beyond field access and allocation.
func removeRootInstructions(method *ssa.Method, c *Candidate) {
	for _, b := range method.Blocks {
		b.RemoveInstructionsWhere(func(inst ssa.Instruction) bool {
			if inst == nil {
				return true
			}
			if put, ok := inst.(*ssa.FieldPut); ok && put.Receiver == c.Root {
				return true
			}
			return inst == c.RootInst
		})
	}
}

func compactBlocks(method *ssa.Method) {
	for _, b := range method.Blocks {
		kept := b.Instructions[:0:0]
		for _, inst := range b.Instructions {
			if inst != nil {
				kept = append(kept, inst)
			}
		}
		b.Instructions = kept
	}
}
