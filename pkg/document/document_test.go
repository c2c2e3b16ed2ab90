// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package document

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestDecode_Scalars verifies every YAML scalar kind maps onto the right
// Value type.
func TestDecode_Scalars(t *testing.T) {
	doc := []byte(`
count: 3
ratio: 0.5
name: probe
enabled: true
missing: null
`)
	m, err := DecodeMapping(doc)
	require.NoError(t, err)

	v, ok := m.Get("count")
	require.True(t, ok)
	assert.Equal(t, Int(3), v)

	v, _ = m.Get("ratio")
	assert.Equal(t, Float(0.5), v)

	v, _ = m.Get("name")
	assert.Equal(t, String("probe"), v)

	v, _ = m.Get("enabled")
	assert.Equal(t, Bool(true), v)

	v, _ = m.Get("missing")
	assert.Equal(t, Null{}, v)
}

// TestDecode_Tags verifies the reference and expression markers, including
// the legacy short spellings, decode to tag values without being resolved.
func TestDecode_Tags(t *testing.T) {
	doc := []byte(`
a: !get base
b: !cc base
c: !eval "get.base * 2"
d: !ee "get.base * 2"
`)
	m, err := DecodeMapping(doc)
	require.NoError(t, err)

	v, _ := m.Get("a")
	assert.Equal(t, GetTag{Name: "base"}, v)
	v, _ = m.Get("b")
	assert.Equal(t, GetTag{Name: "base"}, v)
	v, _ = m.Get("c")
	assert.Equal(t, EvalTag{Expr: "get.base * 2"}, v)
	v, _ = m.Get("d")
	assert.Equal(t, EvalTag{Expr: "get.base * 2"}, v)
}

// TestDecode_UnsupportedTag verifies unknown local tags are rejected rather
// than silently stringified.
func TestDecode_UnsupportedTag(t *testing.T) {
	_, err := DecodeMapping([]byte(`a: !vault secret`))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnsupportedTag)
}

// TestDecode_RootNotMapping verifies DecodeMapping rejects sequence roots.
func TestDecode_RootNotMapping(t *testing.T) {
	_, err := DecodeMapping([]byte(`[1, 2, 3]`))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotMapping)
}

// TestMapping_Order verifies keys keep insertion order through Set,
// replacement, and Delete.
func TestMapping_Order(t *testing.T) {
	m := NewMapping()
	m.Set("z", Int(1))
	m.Set("a", Int(2))
	m.Set("m", Int(3))
	assert.Equal(t, []string{"z", "a", "m"}, m.Keys())

	// Replacing a value must not move the key.
	m.Set("a", Int(20))
	assert.Equal(t, []string{"z", "a", "m"}, m.Keys())

	require.True(t, m.Delete("a"))
	assert.Equal(t, []string{"z", "m"}, m.Keys())
	assert.False(t, m.Delete("a"), "second delete should report missing")
}

// TestRoundTrip verifies encode(decode(x)) == decode(x) structurally,
// including tags and key order.
func TestRoundTrip(t *testing.T) {
	doc := []byte(`
regularValue: 10
nestedValue:
    foo: 2
    bar: 0
items:
    - 1
    - 2.5
    - deep:
          val: !eval "get.a + 1"
ref: !get a
`)
	v1, err := DecodeMapping(doc)
	require.NoError(t, err)

	out, err := Encode(v1)
	require.NoError(t, err)

	v2, err := DecodeMapping(out)
	require.NoError(t, err)
	assert.True(t, Equal(v1, v2), "round trip changed the tree:\n%s", out)
}

// TestEncode_FloatStaysFloat verifies whole floats do not degrade to ints
// across an encode/decode cycle.
func TestEncode_FloatStaysFloat(t *testing.T) {
	m := NewMapping()
	m.Set("v", Float(2))
	data, err := Encode(m)
	require.NoError(t, err)

	m2, err := DecodeMapping(data)
	require.NoError(t, err)
	v, _ := m2.Get("v")
	assert.Equal(t, Float(2), v)
}

// TestCopy_Independence verifies deep copies share no mutable state.
func TestCopy_Independence(t *testing.T) {
	m, err := DecodeMapping([]byte(`
nested:
    list:
        - a: 1
`))
	require.NoError(t, err)

	cp := m.Copy().(*Mapping)
	nested, _ := cp.Get("nested")
	list, _ := nested.(*Mapping).Get("list")
	inner := list.(*Sequence).At(0).(*Mapping)
	inner.Set("a", Int(99))

	origNested, _ := m.Get("nested")
	origList, _ := origNested.(*Mapping).Get("list")
	origInner := origList.(*Sequence).At(0).(*Mapping)
	v, _ := origInner.Get("a")
	assert.Equal(t, Int(1), v, "mutating the copy leaked into the original")
}

// TestEqual_KindsAreDistinct verifies Int and Float never compare equal.
func TestEqual_KindsAreDistinct(t *testing.T) {
	assert.False(t, Equal(Int(1), Float(1)))
	assert.True(t, Equal(Int(1), Int(1)))
	assert.True(t, Equal(Null{}, Null{}))
	assert.False(t, Equal(String("1"), Int(1)))
}

// TestAsFloat covers the numeric extraction helper.
func TestAsFloat(t *testing.T) {
	f, ok := AsFloat(Int(4))
	require.True(t, ok)
	assert.Equal(t, 4.0, f)

	f, ok = AsFloat(Float(2.5))
	require.True(t, ok)
	assert.Equal(t, 2.5, f)

	_, ok = AsFloat(String("4"))
	assert.False(t, ok)
}
