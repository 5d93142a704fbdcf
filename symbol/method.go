package symbol

import (
	"encoding/binary"
	"fmt"
	"hash/fnv"
	"strings"
)

// MethodSignature is a triple (name, parameter-type sequence, return type).
// Equality is structural (spec §3), so two MethodSignatures built from the
// same name/params/return compare equal even if not pointer-identical.
type MethodSignature struct {
	Name    string
	Params  []Type
	Return  Type
}

func NewMethodSignature(name string, params []Type, ret Type) MethodSignature {
	return MethodSignature{Name: name, Params: append([]Type(nil), params...), Return: ret}
}

func (s MethodSignature) Equal(other MethodSignature) bool {
	if s.Name != other.Name || len(s.Params) != len(other.Params) {
		return false
	}
	if !s.Return.Equal(other.Return) {
		return false
	}
	for i, p := range s.Params {
		if !p.Equal(other.Params[i]) {
			return false
		}
	}
	return true
}

func (s MethodSignature) Hash() uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte("MethodSignature"))
	_, _ = h.Write([]byte(s.Name))
	arr := make([]byte, 0, 8*(len(s.Params)+1))
	for _, p := range s.Params {
		arr = binary.LittleEndian.AppendUint32(arr, p.Hash())
	}
	arr = binary.LittleEndian.AppendUint32(arr, s.Return.Hash())
	_, _ = h.Write(arr)
	return h.Sum64()
}

// Descriptor renders the signature in standard JVM form, e.g. "(II)V".
func (s MethodSignature) Descriptor() string {
	var b strings.Builder
	b.WriteByte('(')
	for _, p := range s.Params {
		b.WriteString(p.Descriptor())
	}
	b.WriteByte(')')
	b.WriteString(s.Return.Descriptor())
	return b.String()
}

func (s MethodSignature) String() string {
	return fmt.Sprintf("%s%s", s.Name, s.Descriptor())
}

// WithParams returns a copy of s with Params replaced, used when building a
// prototype-change description's post-image signature.
func (s MethodSignature) WithParams(params []Type) MethodSignature {
	return MethodSignature{Name: s.Name, Params: append([]Type(nil), params...), Return: s.Return}
}

func (s MethodSignature) WithName(name string) MethodSignature {
	return MethodSignature{Name: name, Params: s.Params, Return: s.Return}
}

func (s MethodSignature) WithReturn(ret Type) MethodSignature {
	return MethodSignature{Name: s.Name, Params: s.Params, Return: ret}
}

// MethodReference is a MethodSignature bound to a holder Type.
type MethodReference struct {
	Holder Type
	MethodSignature
}

func NewMethodReference(holder Type, sig MethodSignature) MethodReference {
	return MethodReference{Holder: holder, MethodSignature: sig}
}

func (m MethodReference) Equal(other MethodReference) bool {
	return m.Holder.Equal(other.Holder) && m.MethodSignature.Equal(other.MethodSignature)
}

func (m MethodReference) Hash() uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte("MethodReference"))
	arr := binary.LittleEndian.AppendUint32(nil, m.Holder.Hash())
	arr = binary.LittleEndian.AppendUint64(arr, m.MethodSignature.Hash())
	_, _ = h.Write(arr)
	return h.Sum64()
}

func (m MethodReference) String() string {
	return fmt.Sprintf("%s->%s", m.Holder, m.MethodSignature)
}

func (m MethodReference) WithHolder(holder Type) MethodReference {
	return MethodReference{Holder: holder, MethodSignature: m.MethodSignature}
}

func (m MethodReference) WithSignature(sig MethodSignature) MethodReference {
	return MethodReference{Holder: m.Holder, MethodSignature: sig}
}

// methodRefHasher implements immutable.Hasher[MethodReference].
type methodRefHasher struct{}

func (methodRefHasher) Hash(key MethodReference) uint32 {
	return uint32(key.Hash())
}
func (methodRefHasher) Equal(a, b MethodReference) bool { return a.Equal(b) }

var MethodReferenceHasher = methodRefHasher{}
