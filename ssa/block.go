package ssa

// Block is a basic block: a straight-line run of instructions ending in
// exactly one control-flow instruction (Goto, If, or Return).
type Block struct {
	ID           BlockID
	Instructions []Instruction
	Preds        []BlockID
	Succs        []BlockID
}

func (b *Block) RemoveInstructionsWhere(pred func(Instruction) bool) {
	kept := b.Instructions[:0:0]
	for _, inst := range b.Instructions {
		if !pred(inst) {
			kept = append(kept, inst)
		}
	}
	b.Instructions = kept
}

// ReplaceInstruction swaps the instruction at index idx for replacement. A
// nil replacement deletes the instruction.
func (b *Block) ReplaceInstruction(idx int, replacement Instruction) {
	if replacement == nil {
		b.Instructions = append(b.Instructions[:idx], b.Instructions[idx+1:]...)
		return
	}
	b.Instructions[idx] = replacement
}

// InsertBefore inserts insts immediately before the instruction at idx.
func (b *Block) InsertBefore(idx int, insts ...Instruction) {
	tail := append([]Instruction(nil), b.Instructions[idx:]...)
	b.Instructions = append(b.Instructions[:idx], insts...)
	b.Instructions = append(b.Instructions, tail...)
}

// Terminator returns the block's final, control-flow instruction.
func (b *Block) Terminator() Instruction {
	if len(b.Instructions) == 0 {
		return nil
	}
	return b.Instructions[len(b.Instructions)-1]
}
