package ssa

// Remapper translates Values and BlockIDs while an instruction (or a whole
// method body) is spliced into a new context — the shared primitive behind
// the class inliner's force-inline step (spec §4.4 step 2) and the
// horizontal merger's dispatcher-constructor synthesis (spec §4.3 step 2):
// both need to take one method body's instructions and re-host them under
// fresh Value/BlockID numbering in a different method.
type Remapper struct {
	values *Method
	vals   map[Value]Value
	blocks map[BlockID]BlockID
}

// NewRemapper allocates fresh values from dest as Value/BlockID returns
// values it has not seen before.
func NewRemapper(dest *Method) *Remapper {
	return &Remapper{
		values: dest,
		vals:   map[Value]Value{},
		blocks: map[BlockID]BlockID{},
	}
}

// BindValue forces old to map to new, without consulting dest's allocator.
// Used to bind a source method's parameter values to the spliced-in call's
// actual argument values before cloning its body.
func (r *Remapper) BindValue(old, new Value) { r.vals[old] = new }

// BindBlock forces old to map to new — used when the caller has already
// allocated the entry block for a spliced region.
func (r *Remapper) BindBlock(old, new BlockID) { r.blocks[old] = new }

func (r *Remapper) Value(old Value) Value {
	if old.IsNone() {
		return NoValue
	}
	if mapped, ok := r.vals[old]; ok {
		return mapped
	}
	fresh := r.values.FreshValue()
	r.vals[old] = fresh
	return fresh
}

// Block returns old's image under r, allocating a fresh block in the
// destination method on first sight.
func (r *Remapper) Block(old BlockID) BlockID {
	if mapped, ok := r.blocks[old]; ok {
		return mapped
	}
	fresh := r.values.AddBlock().ID
	r.blocks[old] = fresh
	return fresh
}

// CloneInstruction returns a copy of inst with every Value and BlockID it
// mentions passed through r. Def values are remapped exactly like use
// values (Remapper.Value allocates on first sight regardless of which side
// of an instruction it appears on), so callers should clone a block's
// instructions in order for a def to be visible to later uses within the
// same clone.
func (r *Remapper) CloneInstruction(inst Instruction) Instruction {
	switch i := inst.(type) {
	case *NewInstance:
		return &NewInstance{Result: r.Value(i.Result), Class: i.Class}
	case *InvokeMethod:
		args := make([]Value, len(i.Args))
		for j, a := range i.Args {
			args[j] = r.Value(a)
		}
		return &InvokeMethod{
			Result:   r.Value(i.Result),
			Kind:     i.Kind,
			Method:   i.Method,
			Receiver: r.Value(i.Receiver),
			Args:     args,
		}
	case *FieldGet:
		return &FieldGet{Result: r.Value(i.Result), Receiver: r.Value(i.Receiver), Field: i.Field}
	case *FieldPut:
		return &FieldPut{Receiver: r.Value(i.Receiver), Field: i.Field, Value: r.Value(i.Value)}
	case *StaticGet:
		return &StaticGet{Result: r.Value(i.Result), Field: i.Field}
	case *StaticPut:
		return &StaticPut{Field: i.Field, Value: r.Value(i.Value)}
	case *CmpEq:
		return &CmpEq{Result: r.Value(i.Result), A: r.Value(i.A), B: r.Value(i.B)}
	case *ConstNull:
		return &ConstNull{Result: r.Value(i.Result)}
	case *ConstInt:
		return &ConstInt{Result: r.Value(i.Result), Int: i.Int}
	case *Return:
		return &Return{Value: r.Value(i.Value)}
	case *Goto:
		return &Goto{Target: r.Block(i.Target)}
	case *If:
		return &If{Cond: r.Value(i.Cond), True: r.Block(i.True), False: r.Block(i.False)}
	case *Phi:
		inputs := make(map[BlockID]Value, len(i.Inputs))
		for b, v := range i.Inputs {
			inputs[r.Block(b)] = r.Value(v)
		}
		return &Phi{Result: r.Value(i.Result), Inputs: inputs}
	default:
		panic("ssa: CloneInstruction: unhandled instruction type")
	}
}

// CloneBlockInto clones src's instructions into dest, remapping every Value
// and BlockID through r, and returns the destination block's ID. If the
// caller has already bound src.ID to an existing destination block (via
// BindBlock), the clone is appended there; otherwise a fresh block is
// allocated in dest.
func (r *Remapper) CloneBlockInto(dest *Method, src *Block) BlockID {
	destID := r.Block(src.ID)
	target := dest.Block(destID)
	for _, inst := range src.Instructions {
		target.Instructions = append(target.Instructions, r.CloneInstruction(inst))
	}
	return destID
}
