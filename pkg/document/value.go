// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package document models parameter documents as a tree of ordered mappings,
// sequences, and scalars, plus the two paramsweep tag markers (!get and
// !eval) that exist only before resolution.
//
// # Value Model
//
// Value is a closed tagged union. The concrete types are:
//
//   - *Mapping  — string-keyed, insertion-order preserving
//   - *Sequence — ordered list
//   - Int, Float, String, Bool, Null — scalars
//   - GetTag, EvalTag — unresolved tag markers
//
// Containers are pointer types and share mutable state when aliased;
// use Copy for an independent tree.
//
// # Ownership Model
//
// Decoding produces a fresh tree owned by the caller. Copy is deep: no
// Value reachable from a copy is reachable from the original.
package document

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind discriminates the concrete type behind a Value.
type Kind int

const (
	KindMapping Kind = iota
	KindSequence
	KindInt
	KindFloat
	KindString
	KindBool
	KindNull
	KindGetTag
	KindEvalTag
)

// String returns the lowercase name of the kind.
func (k Kind) String() string {
	switch k {
	case KindMapping:
		return "mapping"
	case KindSequence:
		return "sequence"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindBool:
		return "bool"
	case KindNull:
		return "null"
	case KindGetTag:
		return "get tag"
	case KindEvalTag:
		return "eval tag"
	default:
		return "unknown"
	}
}

// Value is one node of a document tree.
//
// The set of implementations is closed; consumers dispatch with a type
// switch or via Kind.
type Value interface {
	Kind() Kind

	// Copy returns a deep, independent copy of the value.
	Copy() Value
}

// Mapping is an ordered string-keyed mapping.
//
// Keys keep their first-insertion position; Set on an existing key
// replaces the value in place.
type Mapping struct {
	keys    []string
	entries map[string]Value
}

// NewMapping creates an empty mapping.
func NewMapping() *Mapping {
	return &Mapping{entries: make(map[string]Value)}
}

// Kind implements Value.
func (m *Mapping) Kind() Kind { return KindMapping }

// Len returns the number of entries.
func (m *Mapping) Len() int { return len(m.keys) }

// Keys returns the keys in insertion order. The slice is a copy.
func (m *Mapping) Keys() []string {
	out := make([]string, len(m.keys))
	copy(out, m.keys)
	return out
}

// Get looks up a key.
func (m *Mapping) Get(key string) (Value, bool) {
	v, ok := m.entries[key]
	return v, ok
}

// Has reports whether the key exists.
func (m *Mapping) Has(key string) bool {
	_, ok := m.entries[key]
	return ok
}

// Set inserts or replaces an entry. New keys append to the key order.
func (m *Mapping) Set(key string, v Value) {
	if _, ok := m.entries[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.entries[key] = v
}

// Delete removes an entry, reporting whether it existed.
func (m *Mapping) Delete(key string) bool {
	if _, ok := m.entries[key]; !ok {
		return false
	}
	delete(m.entries, key)
	for i, k := range m.keys {
		if k == key {
			m.keys = append(m.keys[:i], m.keys[i+1:]...)
			break
		}
	}
	return true
}

// Copy implements Value with a deep copy.
func (m *Mapping) Copy() Value {
	cp := NewMapping()
	for _, k := range m.keys {
		cp.Set(k, m.entries[k].Copy())
	}
	return cp
}

func (m *Mapping) String() string {
	var b strings.Builder
	b.WriteString("{")
	for i, k := range m.keys {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s: %v", k, m.entries[k])
	}
	b.WriteString("}")
	return b.String()
}

// Sequence is an ordered list of values.
type Sequence struct {
	items []Value
}

// NewSequence creates a sequence holding the given items.
func NewSequence(items ...Value) *Sequence {
	return &Sequence{items: items}
}

// Kind implements Value.
func (s *Sequence) Kind() Kind { return KindSequence }

// Len returns the number of items.
func (s *Sequence) Len() int { return len(s.items) }

// At returns the item at index i. The index must be in range.
func (s *Sequence) At(i int) Value { return s.items[i] }

// SetAt replaces the item at index i. The index must be in range.
func (s *Sequence) SetAt(i int, v Value) { s.items[i] = v }

// Append adds an item at the end.
func (s *Sequence) Append(v Value) { s.items = append(s.items, v) }

// Remove deletes the item at index i. The index must be in range.
func (s *Sequence) Remove(i int) {
	s.items = append(s.items[:i], s.items[i+1:]...)
}

// Copy implements Value with a deep copy.
func (s *Sequence) Copy() Value {
	items := make([]Value, len(s.items))
	for i, v := range s.items {
		items[i] = v.Copy()
	}
	return &Sequence{items: items}
}

func (s *Sequence) String() string {
	parts := make([]string, len(s.items))
	for i, v := range s.items {
		parts[i] = fmt.Sprintf("%v", v)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// Int is an integer scalar.
type Int int64

// Kind implements Value.
func (Int) Kind() Kind { return KindInt }

// Copy implements Value.
func (v Int) Copy() Value { return v }

func (v Int) String() string { return strconv.FormatInt(int64(v), 10) }

// Float is a floating-point scalar.
type Float float64

// Kind implements Value.
func (Float) Kind() Kind { return KindFloat }

// Copy implements Value.
func (v Float) Copy() Value { return v }

func (v Float) String() string { return strconv.FormatFloat(float64(v), 'g', -1, 64) }

// String is a string scalar.
type String string

// Kind implements Value.
func (String) Kind() Kind { return KindString }

// Copy implements Value.
func (v String) Copy() Value { return v }

// Bool is a boolean scalar.
type Bool bool

// Kind implements Value.
func (Bool) Kind() Kind { return KindBool }

// Copy implements Value.
func (v Bool) Copy() Value { return v }

// Null is the null scalar.
type Null struct{}

// Kind implements Value.
func (Null) Kind() Kind { return KindNull }

// Copy implements Value.
func (v Null) Copy() Value { return v }

func (Null) String() string { return "null" }

// GetTag is an unresolved namespace reference (!get NAME).
//
// No GetTag survives resolution; it only appears in freshly decoded or
// verbatim-loaded documents.
type GetTag struct {
	Name string
}

// Kind implements Value.
func (GetTag) Kind() Kind { return KindGetTag }

// Copy implements Value.
func (v GetTag) Copy() Value { return v }

func (v GetTag) String() string { return "!get " + v.Name }

// EvalTag is an unresolved expression (!eval EXPR).
//
// The expression text is opaque to this package; the resolve package hands
// it to an Evaluator.
type EvalTag struct {
	Expr string
}

// Kind implements Value.
func (EvalTag) Kind() Kind { return KindEvalTag }

// Copy implements Value.
func (v EvalTag) Copy() Value { return v }

func (v EvalTag) String() string { return "!eval " + v.Expr }

// AsFloat extracts a numeric value as float64.
//
// Returns false for anything that is not Int or Float.
func AsFloat(v Value) (float64, bool) {
	switch n := v.(type) {
	case Int:
		return float64(n), true
	case Float:
		return float64(n), true
	default:
		return 0, false
	}
}

// IsNumeric reports whether v is Int or Float.
func IsNumeric(v Value) bool {
	_, ok := AsFloat(v)
	return ok
}

// Equal reports deep structural equality of two trees.
//
// Int and Float compare as distinct kinds: Int(1) is not Equal to
// Float(1.0). Tag markers compare by their raw text.
func Equal(a, b Value) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Kind() != b.Kind() {
		return false
	}
	switch av := a.(type) {
	case *Mapping:
		bv := b.(*Mapping)
		if av.Len() != bv.Len() {
			return false
		}
		for i, k := range av.keys {
			if bv.keys[i] != k {
				return false
			}
			if !Equal(av.entries[k], bv.entries[k]) {
				return false
			}
		}
		return true
	case *Sequence:
		bv := b.(*Sequence)
		if av.Len() != bv.Len() {
			return false
		}
		for i, v := range av.items {
			if !Equal(v, bv.items[i]) {
				return false
			}
		}
		return true
	default:
		return a == b
	}
}
