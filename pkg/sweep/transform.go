// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package sweep

import (
	"fmt"
	"strings"

	"github.com/AleutianAI/paramsweep/pkg/address"
	"github.com/AleutianAI/paramsweep/pkg/document"
)

// Transform mutates a ParameterSet in place. Copy-before-mutate is the
// caller's job: Range and the sweep stages copy a set before applying a
// transform so siblings never observe each other's changes.
//
// WithOperand returns a variant of the transform carrying a new operand
// value; Range uses it to stamp one tuple element per transform. Transforms
// that take no operand (copy, delete) return themselves unchanged.
type Transform interface {
	Apply(ps *ParameterSet) error
	WithOperand(v document.Value) Transform
	Describe() string
}

// SetValue writes its operand at a target address, replacing whatever is
// there and creating intermediate mappings as needed.
type SetValue struct {
	pathTo  address.Address
	operand document.Value
}

// NewSetValue returns a transform writing value at pathTo.
func NewSetValue(pathTo string, value document.Value) SetValue {
	return SetValue{pathTo: address.Parse(pathTo), operand: value}
}

// Apply implements Transform.
func (t SetValue) Apply(ps *ParameterSet) error {
	if t.operand == nil {
		return fmt.Errorf("set %s: no operand", t.pathTo)
	}
	if err := ps.Set(t.pathTo, t.operand.Copy()); err != nil {
		return err
	}
	ps.recordTransform(t.Describe())
	return nil
}

// WithOperand implements Transform.
func (t SetValue) WithOperand(v document.Value) Transform {
	return SetValue{pathTo: t.pathTo, operand: v}
}

// Describe implements Transform.
func (t SetValue) Describe() string {
	return fmt.Sprintf("set %s = %s", t.pathTo, describeValue(t.operand))
}

// AddValue adds its numeric operand to the value at a source address and
// writes the sum at the target address. By default source and target are
// the same; From redirects the read so a set can derive one parameter from
// another.
type AddValue struct {
	pathTo   address.Address
	pathFrom address.Address
	hasFrom  bool
	operand  document.Value
}

// NewAddValue returns a transform adding value to the number at pathTo.
func NewAddValue(pathTo string, value document.Value) AddValue {
	return AddValue{pathTo: address.Parse(pathTo), operand: value}
}

// From redirects the transform to read its input from pathFrom while still
// writing the result at the target address.
func (t AddValue) From(pathFrom string) AddValue {
	t.pathFrom = address.Parse(pathFrom)
	t.hasFrom = true
	return t
}

// Apply implements Transform.
func (t AddValue) Apply(ps *ParameterSet) error {
	res, err := combineNumeric(ps, t.source(), t.operand, "add", addOp)
	if err != nil {
		return err
	}
	if err := ps.Set(t.pathTo, res); err != nil {
		return err
	}
	ps.recordTransform(t.Describe())
	return nil
}

// WithOperand implements Transform.
func (t AddValue) WithOperand(v document.Value) Transform {
	t.operand = v
	return t
}

// Describe implements Transform.
func (t AddValue) Describe() string {
	if t.hasFrom {
		return fmt.Sprintf("add %s to %s -> %s",
			describeValue(t.operand), t.pathFrom, t.pathTo)
	}
	return fmt.Sprintf("add %s to %s", describeValue(t.operand), t.pathTo)
}

func (t AddValue) source() address.Address {
	if t.hasFrom {
		return t.pathFrom
	}
	return t.pathTo
}

// FactorValue multiplies the value at a source address by its numeric
// operand and writes the product at the target address.
type FactorValue struct {
	pathTo   address.Address
	pathFrom address.Address
	hasFrom  bool
	operand  document.Value
}

// NewFactorValue returns a transform multiplying the number at pathTo by
// value.
func NewFactorValue(pathTo string, value document.Value) FactorValue {
	return FactorValue{pathTo: address.Parse(pathTo), operand: value}
}

// From redirects the transform to read its input from pathFrom while still
// writing the result at the target address.
func (t FactorValue) From(pathFrom string) FactorValue {
	t.pathFrom = address.Parse(pathFrom)
	t.hasFrom = true
	return t
}

// Apply implements Transform.
func (t FactorValue) Apply(ps *ParameterSet) error {
	res, err := combineNumeric(ps, t.source(), t.operand, "factor", mulOp)
	if err != nil {
		return err
	}
	if err := ps.Set(t.pathTo, res); err != nil {
		return err
	}
	ps.recordTransform(t.Describe())
	return nil
}

// WithOperand implements Transform.
func (t FactorValue) WithOperand(v document.Value) Transform {
	t.operand = v
	return t
}

// Describe implements Transform.
func (t FactorValue) Describe() string {
	if t.hasFrom {
		return fmt.Sprintf("factor %s by %s -> %s",
			t.pathFrom, describeValue(t.operand), t.pathTo)
	}
	return fmt.Sprintf("factor %s by %s", t.pathTo, describeValue(t.operand))
}

func (t FactorValue) source() address.Address {
	if t.hasFrom {
		return t.pathFrom
	}
	return t.pathTo
}

// CopyValue deep-copies the value at one address to another. It takes no
// operand.
type CopyValue struct {
	pathFrom address.Address
	pathTo   address.Address
}

// NewCopyValue returns a transform copying the value at pathFrom to pathTo.
func NewCopyValue(pathFrom, pathTo string) CopyValue {
	return CopyValue{pathFrom: address.Parse(pathFrom), pathTo: address.Parse(pathTo)}
}

// Apply implements Transform.
func (t CopyValue) Apply(ps *ParameterSet) error {
	v, err := ps.Get(t.pathFrom)
	if err != nil {
		return err
	}
	if err := ps.Set(t.pathTo, v.Copy()); err != nil {
		return err
	}
	ps.recordTransform(t.Describe())
	return nil
}

// WithOperand implements Transform. CopyValue takes no operand.
func (t CopyValue) WithOperand(document.Value) Transform { return t }

// Describe implements Transform.
func (t CopyValue) Describe() string {
	return fmt.Sprintf("copy %s -> %s", t.pathFrom, t.pathTo)
}

// DeleteValues removes the values at a list of addresses. Addresses that
// do not resolve are skipped. It takes no operand.
type DeleteValues struct {
	paths []address.Address
}

// NewDeleteValues returns a transform deleting every listed path.
func NewDeleteValues(paths ...string) DeleteValues {
	t := DeleteValues{paths: make([]address.Address, 0, len(paths))}
	for _, p := range paths {
		t.paths = append(t.paths, address.Parse(p))
	}
	return t
}

// Apply implements Transform.
func (t DeleteValues) Apply(ps *ParameterSet) error {
	for _, p := range t.paths {
		if !ps.Has(p) {
			continue
		}
		if err := ps.Delete(p); err != nil {
			return err
		}
	}
	ps.recordTransform(t.Describe())
	return nil
}

// WithOperand implements Transform. DeleteValues takes no operand.
func (t DeleteValues) WithOperand(document.Value) Transform { return t }

// Describe implements Transform.
func (t DeleteValues) Describe() string {
	parts := make([]string, 0, len(t.paths))
	for _, p := range t.paths {
		parts = append(parts, p.String())
	}
	return "delete " + strings.Join(parts, ", ")
}

type numericOp func(ai, bi int64, af, bf float64, bothInt bool) document.Value

func addOp(ai, bi int64, af, bf float64, bothInt bool) document.Value {
	if bothInt {
		return document.Int(ai + bi)
	}
	return document.Float(af + bf)
}

func mulOp(ai, bi int64, af, bf float64, bothInt bool) document.Value {
	if bothInt {
		return document.Int(ai * bi)
	}
	return document.Float(af * bf)
}

// combineNumeric reads the current value at src and combines it with the
// operand. Both sides must be numeric; the result stays an integer only
// when both inputs are.
func combineNumeric(ps *ParameterSet, src address.Address, operand document.Value, verb string, op numericOp) (document.Value, error) {
	if operand == nil {
		return nil, fmt.Errorf("%s %s: no operand", verb, src)
	}
	cur, err := ps.Get(src)
	if err != nil {
		return nil, err
	}
	if !document.IsNumeric(cur) {
		return nil, fmt.Errorf("%s %s: current value %s: %w",
			verb, src, describeValue(cur), ErrTypeMismatch)
	}
	if !document.IsNumeric(operand) {
		return nil, fmt.Errorf("%s %s: operand %s: %w",
			verb, src, describeValue(operand), ErrTypeMismatch)
	}
	ci, curInt := cur.(document.Int)
	oi, opInt := operand.(document.Int)
	cf, _ := document.AsFloat(cur)
	of, _ := document.AsFloat(operand)
	return op(int64(ci), int64(oi), cf, of, curInt && opInt), nil
}

func describeValue(v document.Value) string {
	if v == nil {
		return "<nil>"
	}
	switch t := v.(type) {
	case document.Int:
		return fmt.Sprintf("%d", int64(t))
	case document.Float:
		return fmt.Sprintf("%g", float64(t))
	case document.String:
		return fmt.Sprintf("%q", string(t))
	case document.Bool:
		return fmt.Sprintf("%t", bool(t))
	case document.Null:
		return "null"
	default:
		return v.Kind().String()
	}
}
