// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package address implements slash-delimited paths into document trees.
//
// An address like "nestedValue/bar/0/foobar" is a sequence of steps, each
// either a mapping key or a non-negative sequence index. A segment made
// entirely of digits is an index step; everything else is a key step.
//
// # Resolution Modes
//
//   - Get navigates read-only and fails on any missing or mistyped step.
//   - Set creates missing intermediate mappings, but never creates or
//     grows sequences: an index step must land inside an existing
//     sequence, in every mode.
//   - Delete navigates read-only and removes the final slot.
package address

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/AleutianAI/paramsweep/pkg/document"
)

// Step is one navigation step: a mapping key or a sequence index.
type Step struct {
	key     string
	index   int
	isIndex bool
}

// Key creates a mapping-key step.
func Key(k string) Step { return Step{key: k} }

// Index creates a sequence-index step.
func Index(i int) Step { return Step{index: i, isIndex: true} }

// IsIndex reports whether the step is a sequence index.
func (s Step) IsIndex() bool { return s.isIndex }

// Key returns the mapping key. Only meaningful when !IsIndex().
func (s Step) Key() string { return s.key }

// Index returns the sequence index. Only meaningful when IsIndex().
func (s Step) Index() int { return s.index }

// String returns the segment as it appears in an address string.
func (s Step) String() string {
	if s.isIndex {
		return strconv.Itoa(s.index)
	}
	return s.key
}

// Address is a parsed path. The zero value addresses the tree root.
type Address struct {
	steps []Step
}

// Parse splits an address string on "/" into steps.
//
// Empty segments are dropped, so "a//b" and "/a/b/" both equal "a/b".
// Parsing never fails: a segment of digits is an index, anything else a
// key.
func Parse(s string) Address {
	var steps []Step
	for _, seg := range strings.Split(s, "/") {
		if seg == "" {
			continue
		}
		if idx, err := strconv.Atoi(seg); err == nil && idx >= 0 && isDigits(seg) {
			steps = append(steps, Index(idx))
		} else {
			steps = append(steps, Key(seg))
		}
	}
	return Address{steps: steps}
}

// New builds an address from explicit steps.
func New(steps ...Step) Address {
	return Address{steps: steps}
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}

// Steps returns the parsed steps. The slice is a copy.
func (a Address) Steps() []Step {
	out := make([]Step, len(a.steps))
	copy(out, a.steps)
	return out
}

// IsRoot reports whether the address has no steps.
func (a Address) IsRoot() bool { return len(a.steps) == 0 }

// String reassembles the canonical address string.
func (a Address) String() string {
	parts := make([]string, len(a.steps))
	for i, s := range a.steps {
		parts[i] = s.String()
	}
	return strings.Join(parts, "/")
}

// Equal reports structural equality of two addresses.
func (a Address) Equal(b Address) bool {
	if len(a.steps) != len(b.steps) {
		return false
	}
	for i, s := range a.steps {
		if s != b.steps[i] {
			return false
		}
	}
	return true
}

// Get navigates the address from root and returns the addressed value.
func (a Address) Get(root document.Value) (document.Value, error) {
	cur := root
	for i, step := range a.steps {
		next, err := descend(cur, step)
		if err != nil {
			return nil, a.errAt(i, err)
		}
		cur = next
	}
	return cur, nil
}

// Set writes a value at the address, creating missing intermediate
// mappings. The root address cannot be set.
func (a Address) Set(root document.Value, v document.Value) error {
	if len(a.steps) == 0 {
		return fmt.Errorf("address %q: %w", a.String(), ErrRootWrite)
	}
	cur := root
	for i, step := range a.steps[:len(a.steps)-1] {
		next, err := descendOrCreate(cur, step)
		if err != nil {
			return a.errAt(i, err)
		}
		cur = next
	}
	last := a.steps[len(a.steps)-1]
	switch c := cur.(type) {
	case *document.Mapping:
		if last.IsIndex() {
			return a.errAt(len(a.steps)-1, ErrTypeMismatch)
		}
		c.Set(last.Key(), v)
		return nil
	case *document.Sequence:
		if !last.IsIndex() {
			return a.errAt(len(a.steps)-1, ErrTypeMismatch)
		}
		if last.Index() >= c.Len() {
			return a.errAt(len(a.steps)-1, ErrIndexOutOfRange)
		}
		c.SetAt(last.Index(), v)
		return nil
	default:
		return a.errAt(len(a.steps)-1, ErrTypeMismatch)
	}
}

// Delete removes the addressed slot. It fails if the slot is absent.
func (a Address) Delete(root document.Value) error {
	if len(a.steps) == 0 {
		return fmt.Errorf("address %q: %w", a.String(), ErrRootWrite)
	}
	cur := root
	for i, step := range a.steps[:len(a.steps)-1] {
		next, err := descend(cur, step)
		if err != nil {
			return a.errAt(i, err)
		}
		cur = next
	}
	last := a.steps[len(a.steps)-1]
	switch c := cur.(type) {
	case *document.Mapping:
		if last.IsIndex() {
			return a.errAt(len(a.steps)-1, ErrTypeMismatch)
		}
		if !c.Delete(last.Key()) {
			return a.errAt(len(a.steps)-1, ErrNotFound)
		}
		return nil
	case *document.Sequence:
		if !last.IsIndex() {
			return a.errAt(len(a.steps)-1, ErrTypeMismatch)
		}
		if last.Index() >= c.Len() {
			return a.errAt(len(a.steps)-1, ErrIndexOutOfRange)
		}
		c.Remove(last.Index())
		return nil
	default:
		return a.errAt(len(a.steps)-1, ErrTypeMismatch)
	}
}

func descend(cur document.Value, step Step) (document.Value, error) {
	switch c := cur.(type) {
	case *document.Mapping:
		if step.IsIndex() {
			return nil, ErrTypeMismatch
		}
		v, ok := c.Get(step.Key())
		if !ok {
			return nil, ErrNotFound
		}
		return v, nil
	case *document.Sequence:
		if !step.IsIndex() {
			return nil, ErrTypeMismatch
		}
		if step.Index() >= c.Len() {
			return nil, ErrIndexOutOfRange
		}
		return c.At(step.Index()), nil
	default:
		return nil, ErrTypeMismatch
	}
}

// descendOrCreate is the write-mode step: missing mapping keys grow a new
// mapping, sequence steps must already resolve.
func descendOrCreate(cur document.Value, step Step) (document.Value, error) {
	if m, ok := cur.(*document.Mapping); ok && !step.IsIndex() {
		if v, ok := m.Get(step.Key()); ok {
			return v, nil
		}
		child := document.NewMapping()
		m.Set(step.Key(), child)
		return child, nil
	}
	return descend(cur, step)
}

func (a Address) errAt(i int, err error) error {
	return fmt.Errorf("address %q: step %q: %w", a.String(), a.steps[i].String(), err)
}
