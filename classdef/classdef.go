package classdef

import "github.com/weg2020/r8/symbol"

// InnerClassEntry is one entry of a class's inner-classes attribute (spec
// §3). Its presence on a class is what the horizontal merger's
// NoInnerClasses policy (spec §4.3) rejects on.
type InnerClassEntry struct {
	Inner  symbol.Type
	Outer  symbol.Type
	Name   string
	Access AccessFlags
}

// ClassDefinition owns everything spec §3 lists: superclass, interfaces,
// access flags, fields, methods, inner classes, and an optional
// Kotlin-metadata blob. It is created by the reader, mutated by passes, and
// destroyed only when the application is finalized for writing (spec §3).
type ClassDefinition struct {
	Type       symbol.Type
	Super      symbol.Type
	Interfaces []symbol.Type
	Access     AccessFlags

	Fields  []*FieldDefinition
	Methods []*MethodDefinition

	InnerClasses []InnerClassEntry

	// KotlinMetadata is nil if the class carries no Kotlin metadata
	// annotation; opaque otherwise (owned by the reader/writer, spec §6).
	KotlinMetadata []byte
}

// ObjectDescriptor is the standard descriptor of the platform root type.
// The class inliner's "directly extends the root object type" eligibility
// check (spec §4.4) compares Super against this.
const ObjectDescriptor = "Ljava/lang/Object;"

func (c *ClassDefinition) DirectlyExtendsObject() bool {
	return c.Super.Descriptor() == ObjectDescriptor
}

func (c *ClassDefinition) DeclaresFinalizer() bool {
	for _, m := range c.Methods {
		if m.DeclaresFinalizer() {
			return true
		}
	}
	return false
}

// InstanceFields returns the non-static fields declared directly by c, in
// declaration order.
func (c *ClassDefinition) InstanceFields() []*FieldDefinition {
	var out []*FieldDefinition
	for _, f := range c.Fields {
		if !f.Access.IsStatic() {
			out = append(out, f)
		}
	}
	return out
}

func (c *ClassDefinition) Constructors() []*MethodDefinition {
	var out []*MethodDefinition
	for _, m := range c.Methods {
		if m.IsInstanceInitializer() {
			out = append(out, m)
		}
	}
	return out
}

func (c *ClassDefinition) StaticInitializer() *MethodDefinition {
	for _, m := range c.Methods {
		if m.IsStaticInitializer() {
			return m
		}
	}
	return nil
}

// FindMethod returns the MethodDefinition matching sig directly declared on
// c, if any.
func (c *ClassDefinition) FindMethod(sig symbol.MethodSignature) (*MethodDefinition, bool) {
	for _, m := range c.Methods {
		if m.Ref.MethodSignature.Equal(sig) {
			return m, true
		}
	}
	return nil, false
}

func (c *ClassDefinition) FindField(name string) (*FieldDefinition, bool) {
	for _, f := range c.Fields {
		if f.Ref.Name == name {
			return f, true
		}
	}
	return nil, false
}

// IsEmpty reports whether c has no remaining members — the removal
// condition of spec §8 boundary behaviors ("A class with no remaining
// members after optimization is removed outright unless pinned").
func (c *ClassDefinition) IsEmpty() bool {
	return len(c.Fields) == 0 && len(c.Methods) == 0
}
