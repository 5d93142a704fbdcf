// Package mapping implements the residual rename map of spec §6: the
// composition of every lens still in effect, expressed as text in the
// standard line-oriented proguard-style mapping format. It is a pure
// consumer of classdef and lens.Stack — no reader/writer collaborator of its
// own, since serialization to dex bytes is out of this module's scope (spec
// §1).
package mapping

import (
	"sort"
	"strings"

	"github.com/weg2020/r8/classdef"
	"github.com/weg2020/r8/lens"
	"github.com/weg2020/r8/symbol"
)

// ClassEntry is one class's residual mapping: its original and current
// (post-lens-composition) descriptor, plus every member of the original
// class that still exists in the current program under some name.
type ClassEntry struct {
	Original   symbol.Type
	Obfuscated symbol.Type
	Methods    []MemberEntry
	Fields     []MemberEntry
}

// MemberEntry is one method or field's residual mapping.
type MemberEntry struct {
	OriginalSignature   string // e.g. "int getX()" or "int x"
	ObfuscatedName      string
}

// ResidualMap is the full program-wide residual rename map: one ClassEntry
// per original class still present (possibly under a different identity,
// e.g. as a horizontal-merge target) in the final program.
type ResidualMap struct {
	Classes []ClassEntry
}

// Generate folds every class in originalProgram through finalView's lens
// stack and records, for each one still resolvable as a program class in
// finalView, its residual class/method/field renames. A class absorbed by
// horizontal merging is listed with its merge target as its current
// identity; a class no longer resolvable as a program class (e.g. removed by
// tree shaking) is absent from the result — spec §6 only describes the
// surviving mapping, not a deletion log.
func Generate(originalProgram map[symbol.Type]*classdef.ClassDefinition, finalView *classdef.ApplicationView) *ResidualMap {
	stack := finalView.Lens()

	originals := make([]symbol.Type, 0, len(originalProgram))
	for t := range originalProgram {
		originals = append(originals, t)
	}
	sort.Slice(originals, func(i, j int) bool { return originals[i].Descriptor() < originals[j].Descriptor() })

	out := &ResidualMap{}
	for _, origType := range originals {
		origClass := originalProgram[origType]
		mappedType := stack.MapType(origType)
		finalClass, ok := finalView.Resolve(mappedType)
		if !ok || !finalView.IsProgramClass(mappedType) {
			continue
		}

		entry := ClassEntry{Original: origType, Obfuscated: mappedType}
		entry.Methods = methodEntries(stack, origClass, finalClass)
		entry.Fields = fieldEntries(stack, origClass, finalClass)
		out.Classes = append(out.Classes, entry)
	}
	return out
}

func methodEntries(stack *lens.Stack, origClass, finalClass *classdef.ClassDefinition) []MemberEntry {
	var out []MemberEntry
	for _, m := range origClass.Methods {
		origRef := symbol.NewMethodReference(origClass.Type, m.Ref.MethodSignature)
		mappedRef, _ := stack.MapMethod(origRef)
		if _, stillPresent := finalClass.FindMethod(mappedRef.MethodSignature); !stillPresent {
			continue
		}
		out = append(out, MemberEntry{
			OriginalSignature: javaMethodSignature(m.Ref.MethodSignature),
			ObfuscatedName:    mappedRef.Name,
		})
	}
	return out
}

func fieldEntries(stack *lens.Stack, origClass, finalClass *classdef.ClassDefinition) []MemberEntry {
	var out []MemberEntry
	for _, f := range origClass.Fields {
		mapped := stack.MapField(f.Ref)
		if _, stillPresent := finalClass.FindField(mapped.Name); !stillPresent {
			continue
		}
		out = append(out, MemberEntry{
			OriginalSignature: javaFieldSignature(f.Ref),
			ObfuscatedName:    mapped.Name,
		})
	}
	return out
}

// Write renders m in the proguard mapping text format:
//
//	originalClass -> obfuscatedClass:
//	    fieldType originalField -> obfuscatedField
//	    returnType originalMethod(params) -> obfuscatedMethod
func (m *ResidualMap) Write(w *strings.Builder) {
	for _, c := range m.Classes {
		w.WriteString(javaName(c.Original.Descriptor()))
		w.WriteString(" -> ")
		w.WriteString(javaName(c.Obfuscated.Descriptor()))
		w.WriteString(":\n")
		for _, f := range c.Fields {
			w.WriteString("    ")
			w.WriteString(f.OriginalSignature)
			w.WriteString(" -> ")
			w.WriteString(f.ObfuscatedName)
			w.WriteString("\n")
		}
		for _, mm := range c.Methods {
			w.WriteString("    ")
			w.WriteString(mm.OriginalSignature)
			w.WriteString(" -> ")
			w.WriteString(mm.ObfuscatedName)
			w.WriteString("\n")
		}
	}
}

// String renders m via Write.
func (m *ResidualMap) String() string {
	var b strings.Builder
	m.Write(&b)
	return b.String()
}

func javaMethodSignature(sig symbol.MethodSignature) string {
	params := make([]string, len(sig.Params))
	for i, p := range sig.Params {
		params[i] = javaName(p.Descriptor())
	}
	return javaName(sig.Return.Descriptor()) + " " + sig.Name + "(" + strings.Join(params, ",") + ")"
}

func javaFieldSignature(f symbol.FieldReference) string {
	return javaName(f.Type.Descriptor()) + " " + f.Name
}

// javaName converts a JVM type descriptor into its proguard-style source
// name: "Lcom/example/Foo;" -> "com.example.Foo", "[I" -> "int[]", "I" ->
// "int".
func javaName(descriptor string) string {
	switch {
	case strings.HasPrefix(descriptor, "["):
		return javaName(descriptor[1:]) + "[]"
	case strings.HasPrefix(descriptor, "L") && strings.HasSuffix(descriptor, ";"):
		inner := strings.TrimSuffix(strings.TrimPrefix(descriptor, "L"), ";")
		return strings.ReplaceAll(inner, "/", ".")
	default:
		return primitiveName(descriptor)
	}
}

func primitiveName(descriptor string) string {
	switch descriptor {
	case "B":
		return "byte"
	case "C":
		return "char"
	case "D":
		return "double"
	case "F":
		return "float"
	case "I":
		return "int"
	case "J":
		return "long"
	case "S":
		return "short"
	case "Z":
		return "boolean"
	case "V":
		return "void"
	default:
		return descriptor
	}
}
