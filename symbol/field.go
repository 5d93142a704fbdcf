package symbol

import (
	"encoding/binary"
	"fmt"
	"hash/fnv"
)

// FieldReference is a triple (holder Type, name, Type), per spec §3.
type FieldReference struct {
	Holder Type
	Name   string
	Type   Type
}

func NewFieldReference(holder Type, name string, t Type) FieldReference {
	return FieldReference{Holder: holder, Name: name, Type: t}
}

func (f FieldReference) Equal(other FieldReference) bool {
	return f.Holder.Equal(other.Holder) && f.Name == other.Name && f.Type.Equal(other.Type)
}

func (f FieldReference) Hash() uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte("FieldReference"))
	_, _ = h.Write([]byte(f.Name))
	arr := binary.LittleEndian.AppendUint32(nil, f.Holder.Hash())
	arr = binary.LittleEndian.AppendUint32(arr, f.Type.Hash())
	_, _ = h.Write(arr)
	return h.Sum64()
}

func (f FieldReference) String() string {
	return fmt.Sprintf("%s->%s:%s", f.Holder, f.Name, f.Type)
}

func (f FieldReference) WithHolder(holder Type) FieldReference {
	return FieldReference{Holder: holder, Name: f.Name, Type: f.Type}
}

func (f FieldReference) WithName(name string) FieldReference {
	return FieldReference{Holder: f.Holder, Name: name, Type: f.Type}
}

type fieldRefHasher struct{}

func (fieldRefHasher) Hash(key FieldReference) uint32     { return uint32(key.Hash()) }
func (fieldRefHasher) Equal(a, b FieldReference) bool      { return a.Equal(b) }

var FieldReferenceHasher = fieldRefHasher{}
