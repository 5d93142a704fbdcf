package classdef

import (
	"github.com/weg2020/r8/ssa"
	"github.com/weg2020/r8/symbol"
)

// MethodDefinition is a method declared by a ClassDefinition (spec §3).
type MethodDefinition struct {
	Ref    symbol.MethodReference
	Access AccessFlags

	// Body is nil for abstract and native methods.
	Body *ssa.Method

	ParamAnnotations [][]Annotation
	GenericSignature string

	Info *OptimizationInfo
}

func NewMethodDefinition(ref symbol.MethodReference, access AccessFlags) *MethodDefinition {
	return &MethodDefinition{
		Ref:    ref,
		Access: access,
		Info:   NewOptimizationInfo(),
	}
}

func (m *MethodDefinition) IsStaticInitializer() bool {
	return m.Ref.Name == "<clinit>" && m.Access.IsStatic()
}

func (m *MethodDefinition) IsInstanceInitializer() bool {
	return m.Ref.Name == "<init>"
}

func (m *MethodDefinition) IsAbstract() bool { return m.Body == nil }

// DeclaresFinalizer reports whether this definition is the no-arg, void
// `finalize` override the class-inliner's eligibility check forbids (spec
// §4.4, "Declares no finalizer override").
func (m *MethodDefinition) DeclaresFinalizer() bool {
	return m.Ref.Name == "finalize" &&
		len(m.Ref.Params) == 0 &&
		m.Ref.Return.Descriptor() == "V"
}
