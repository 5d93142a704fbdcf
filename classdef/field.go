package classdef

import "github.com/weg2020/r8/symbol"

// FieldDefinition is a field declared by a ClassDefinition (spec §3).
type FieldDefinition struct {
	Ref    symbol.FieldReference
	Access AccessFlags

	// Annotations carries the field's declared annotations; nil if none.
	Annotations []Annotation
}

func (f *FieldDefinition) IsStaticFinal() bool {
	return f.Access.Has(AccStatic) && f.Access.Has(AccFinal)
}

// Annotation is a minimal stand-in for the reader-owned annotation model
// (spec §6): enough for the merger and inliner to ask "is there an
// annotation of this type", without re-implementing the full annotation
// value grammar the reader owns.
type Annotation struct {
	Type   symbol.Type
	Values map[string]string
}
