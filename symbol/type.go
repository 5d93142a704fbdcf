// Package symbol implements the content-addressed symbol model of spec §3:
// Type, MethodSignature, MethodReference, and FieldReference, plus the Pool
// that interns them. Types reference each other via these small handles, not
// pointers into class definitions — the mapping from Type to its
// ClassDefinition is owned by classdef.ApplicationView (spec §9, "cyclic
// object graph of class definitions").
package symbol

import (
	"hash/fnv"
	"strings"
)

type Kind uint8

const (
	KindClass Kind = iota
	KindInterface
	KindArray
	KindPrimitive
)

func (k Kind) String() string {
	switch k {
	case KindClass:
		return "class"
	case KindInterface:
		return "interface"
	case KindArray:
		return "array"
	case KindPrimitive:
		return "primitive"
	default:
		return "invalid"
	}
}

// Type is an interned identifier for a reference type or primitive, in
// standard JVM descriptor form (e.g. "Lcom/example/Foo;", "[I", "I").
// Equality is identity: two Types are equal iff they were produced by the
// same Pool for the same descriptor, so Type is safe to compare with ==.
type Type struct {
	entry *typeEntry
}

type typeEntry struct {
	descriptor string
	kind       Kind
}

// Descriptor returns the JVM-style type descriptor this Type was interned from.
func (t Type) Descriptor() string {
	if t.entry == nil {
		return ""
	}
	return t.entry.descriptor
}

func (t Type) Kind() Kind {
	if t.entry == nil {
		return KindPrimitive
	}
	return t.entry.kind
}

func (t Type) IsZero() bool { return t.entry == nil }

func (t Type) String() string { return t.Descriptor() }

// Hash is the FNV-1a hash of the descriptor; TypeHasher uses it so Type can
// key immutable.Map/Set.
func (t Type) Hash() uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(t.Descriptor()))
	return h.Sum32()
}

func (t Type) Equal(other Type) bool { return t.entry == other.entry }

// PackageName is the slash-separated package portion of a class descriptor,
// e.g. "Lcom/example/Foo;" -> "com/example".
func (t Type) PackageName() string {
	d := t.Descriptor()
	if !strings.HasPrefix(d, "L") {
		return ""
	}
	inner := strings.TrimSuffix(strings.TrimPrefix(d, "L"), ";")
	idx := strings.LastIndex(inner, "/")
	if idx < 0 {
		return ""
	}
	return inner[:idx]
}

// typeHasher implements immutable.Hasher[Type].
type typeHasher struct{}

func (typeHasher) Hash(key Type) uint32            { return key.Hash() }
func (typeHasher) Equal(a, b Type) bool             { return a.Equal(b) }

var TypeHasher = typeHasher{}
