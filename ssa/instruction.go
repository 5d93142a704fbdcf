package ssa

import (
	"fmt"
	"strings"

	"github.com/weg2020/r8/symbol"
)

// InvokeKind is the dispatch kind of an InvokeMethod instruction. Graph
// lenses may translate one kind into another when a rewriting changes how a
// call must be dispatched (spec §4.1, invoke_kind translation) — e.g. an
// instance method moved to a companion class and statified turns
// InvokeVirtual into InvokeStatic.
type InvokeKind uint8

const (
	InvokeVirtual InvokeKind = iota
	InvokeInterface
	InvokeStatic
	InvokeDirect // constructors and private instance methods
	InvokeSuper
)

func (k InvokeKind) String() string {
	switch k {
	case InvokeVirtual:
		return "invoke-virtual"
	case InvokeInterface:
		return "invoke-interface"
	case InvokeStatic:
		return "invoke-static"
	case InvokeDirect:
		return "invoke-direct"
	case InvokeSuper:
		return "invoke-super"
	default:
		return "invoke-unknown"
	}
}

// Instruction is the closed sum of IR node kinds this module's passes need
// to reason about: allocation, dispatch, field/static access, control flow,
// and phis. It intentionally does not model every Dalvik opcode — the
// surrounding reader/writer own the full instruction set (spec §6); this is
// the subset the lens stack, merger, and inliner must pattern-match on.
type Instruction interface {
	fmt.Stringer
	// Defs returns the SSA values this instruction defines (zero or one).
	Defs() []Value
	// Uses returns the SSA values this instruction reads.
	Uses() []Value

	isInstruction()
}

type baseInstruction struct{}

func (baseInstruction) isInstruction() {}

// NewInstance is `new T` without its constructor call; spec §4.4 treats
// `new T(...)` immediately followed by the constructor invoke as the root.
type NewInstance struct {
	baseInstruction
	Result Value
	Class  symbol.Type
}

func (i *NewInstance) Defs() []Value { return []Value{i.Result} }
func (i *NewInstance) Uses() []Value { return nil }
func (i *NewInstance) String() string {
	return fmt.Sprintf("%s = new-instance %s", i.Result, i.Class)
}

// InvokeMethod calls Method with Kind dispatch. Receiver is NoValue for
// InvokeStatic. Result is NoValue for a void call or when the result is
// discarded.
type InvokeMethod struct {
	baseInstruction
	Result   Value
	Kind     InvokeKind
	Method   symbol.MethodReference
	Receiver Value
	Args     []Value
}

func (i *InvokeMethod) Defs() []Value {
	if i.Result.IsNone() {
		return nil
	}
	return []Value{i.Result}
}
func (i *InvokeMethod) Uses() []Value {
	uses := make([]Value, 0, len(i.Args)+1)
	if !i.Receiver.IsNone() {
		uses = append(uses, i.Receiver)
	}
	uses = append(uses, i.Args...)
	return uses
}
func (i *InvokeMethod) String() string {
	args := make([]string, len(i.Args))
	for j, a := range i.Args {
		args[j] = a.String()
	}
	recv := ""
	if !i.Receiver.IsNone() {
		recv = i.Receiver.String() + ", "
	}
	prefix := ""
	if !i.Result.IsNone() {
		prefix = i.Result.String() + " = "
	}
	return fmt.Sprintf("%s%s %s(%s%s)", prefix, i.Kind, i.Method, recv, strings.Join(args, ", "))
}

// FieldGet reads an instance field.
type FieldGet struct {
	baseInstruction
	Result   Value
	Receiver Value
	Field    symbol.FieldReference
}

func (i *FieldGet) Defs() []Value { return []Value{i.Result} }
func (i *FieldGet) Uses() []Value { return []Value{i.Receiver} }
func (i *FieldGet) String() string {
	return fmt.Sprintf("%s = field-get %s, %s", i.Result, i.Receiver, i.Field)
}

// FieldPut writes an instance field.
type FieldPut struct {
	baseInstruction
	Receiver Value
	Field    symbol.FieldReference
	Value    Value
}

func (i *FieldPut) Defs() []Value { return nil }
func (i *FieldPut) Uses() []Value { return []Value{i.Receiver, i.Value} }
func (i *FieldPut) String() string {
	return fmt.Sprintf("field-put %s, %s, %s", i.Receiver, i.Field, i.Value)
}

// StaticGet reads a static field. A root candidate of spec §4.4's second
// flavor ("static-get of a final field initialized by a trivial class
// initializer") is exactly a StaticGet of a static-final field.
type StaticGet struct {
	baseInstruction
	Result Value
	Field  symbol.FieldReference
}

func (i *StaticGet) Defs() []Value { return []Value{i.Result} }
func (i *StaticGet) Uses() []Value { return nil }
func (i *StaticGet) String() string {
	return fmt.Sprintf("%s = static-get %s", i.Result, i.Field)
}

// StaticPut writes a static field; this is how a trivial class initializer
// stores its singleton.
type StaticPut struct {
	baseInstruction
	Field symbol.FieldReference
	Value Value
}

func (i *StaticPut) Defs() []Value { return nil }
func (i *StaticPut) Uses() []Value { return []Value{i.Value} }
func (i *StaticPut) String() string {
	return fmt.Sprintf("static-put %s, %s", i.Field, i.Value)
}

// ConstNull materializes the null constant, used by the class inliner when
// replacing an unused-parameter argument (spec §4.4 step 1).
type ConstNull struct {
	baseInstruction
	Result Value
}

func (i *ConstNull) Defs() []Value   { return []Value{i.Result} }
func (i *ConstNull) Uses() []Value   { return nil }
func (i *ConstNull) String() string  { return fmt.Sprintf("%s = const-null", i.Result) }

// ConstInt materializes an integer constant.
type ConstInt struct {
	baseInstruction
	Result Value
	Int    int64
}

func (i *ConstInt) Defs() []Value { return []Value{i.Result} }
func (i *ConstInt) Uses() []Value { return nil }
func (i *ConstInt) String() string {
	return fmt.Sprintf("%s = const-int %d", i.Result, i.Int)
}

// CmpEq computes the integer equality of A and B, for the branch conditions
// synthesized by the horizontal merger's dispatcher constructors and
// trampolines (spec §4.3, "branches selected by the class-id").
type CmpEq struct {
	baseInstruction
	Result Value
	A, B   Value
}

func (i *CmpEq) Defs() []Value { return []Value{i.Result} }
func (i *CmpEq) Uses() []Value { return []Value{i.A, i.B} }
func (i *CmpEq) String() string {
	return fmt.Sprintf("%s = cmp-eq %s, %s", i.Result, i.A, i.B)
}

// Return ends a method. Value is NoValue for a void return.
type Return struct {
	baseInstruction
	Value Value
}

func (i *Return) Defs() []Value { return nil }
func (i *Return) Uses() []Value {
	if i.Value.IsNone() {
		return nil
	}
	return []Value{i.Value}
}
func (i *Return) String() string {
	if i.Value.IsNone() {
		return "return-void"
	}
	return fmt.Sprintf("return %s", i.Value)
}

// Goto is an unconditional branch.
type Goto struct {
	baseInstruction
	Target BlockID
}

func (i *Goto) Defs() []Value  { return nil }
func (i *Goto) Uses() []Value  { return nil }
func (i *Goto) String() string { return fmt.Sprintf("goto %s", i.Target) }

// If is a conditional branch on a boolean Value.
type If struct {
	baseInstruction
	Cond  Value
	True  BlockID
	False BlockID
}

func (i *If) Defs() []Value { return nil }
func (i *If) Uses() []Value { return []Value{i.Cond} }
func (i *If) String() string {
	return fmt.Sprintf("if %s then %s else %s", i.Cond, i.True, i.False)
}

// Phi merges values from predecessor blocks. The class inliner's field-read
// replacement step (spec §4.4 step 3) inserts Phis where control flow merges
// incompatible field values.
type Phi struct {
	baseInstruction
	Result Value
	Inputs map[BlockID]Value
}

func (i *Phi) Defs() []Value { return []Value{i.Result} }
func (i *Phi) Uses() []Value {
	uses := make([]Value, 0, len(i.Inputs))
	for _, v := range i.Inputs {
		uses = append(uses, v)
	}
	return uses
}
func (i *Phi) String() string {
	parts := make([]string, 0, len(i.Inputs))
	for b, v := range i.Inputs {
		parts = append(parts, fmt.Sprintf("%s: %s", b, v))
	}
	return fmt.Sprintf("%s = phi(%s)", i.Result, strings.Join(parts, ", "))
}

var (
	_ Instruction = (*NewInstance)(nil)
	_ Instruction = (*InvokeMethod)(nil)
	_ Instruction = (*FieldGet)(nil)
	_ Instruction = (*FieldPut)(nil)
	_ Instruction = (*StaticGet)(nil)
	_ Instruction = (*StaticPut)(nil)
	_ Instruction = (*CmpEq)(nil)
	_ Instruction = (*ConstNull)(nil)
	_ Instruction = (*ConstInt)(nil)
	_ Instruction = (*Return)(nil)
	_ Instruction = (*Goto)(nil)
	_ Instruction = (*If)(nil)
	_ Instruction = (*Phi)(nil)
)
