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

	"github.com/AleutianAI/paramsweep/pkg/document"
)

// Range fans one parameter set out into one derived set per value tuple.
// Each tuple carries one operand per transform; for every tuple the input
// set is copied and each transform is applied with its matching element.
// The input set itself is never mutated.
type Range struct {
	transforms []Transform
	tuples     [][]document.Value
}

// NewRange builds a range from transforms and value tuples. Every tuple
// must have exactly one element per transform; a mismatch fails with
// ErrTupleArity.
func NewRange(transforms []Transform, tuples ...[]document.Value) (*Range, error) {
	if len(transforms) == 0 {
		return nil, fmt.Errorf("range needs at least one transform")
	}
	for i, tup := range tuples {
		if len(tup) != len(transforms) {
			return nil, fmt.Errorf("tuple %d has %d values for %d transforms: %w",
				i, len(tup), len(transforms), ErrTupleArity)
		}
	}
	return &Range{transforms: transforms, tuples: tuples}, nil
}

// NewSingleRange builds a range over one transform, one derived set per
// value. It is the common case and cannot fail the arity check.
func NewSingleRange(t Transform, values ...document.Value) *Range {
	tuples := make([][]document.Value, 0, len(values))
	for _, v := range values {
		tuples = append(tuples, []document.Value{v})
	}
	r, _ := NewRange([]Transform{t}, tuples...)
	return r
}

// Expand implements Generator. It returns one derived set per tuple, in
// tuple order.
func (r *Range) Expand(ps *ParameterSet) ([]*ParameterSet, error) {
	out := make([]*ParameterSet, 0, len(r.tuples))
	for i, tup := range r.tuples {
		cp := ps.Copy()
		for j, tr := range r.transforms {
			if err := tr.WithOperand(tup[j]).Apply(cp); err != nil {
				return nil, fmt.Errorf("range tuple %d: %w", i, err)
			}
		}
		out = append(out, cp)
	}
	return out, nil
}
