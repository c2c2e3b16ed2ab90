// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package eval

import (
	"fmt"
	"math"

	"github.com/AleutianAI/paramsweep/pkg/document"
)

// The numeric library exposed under np. Old parameter files used a real
// array library here; this surface covers the subset those files actually
// relied on: elementwise math, reductions, shape queries, and ramps.

type libFunc func(args []document.Value) (document.Value, error)

var npConsts = map[string]float64{
	"pi": math.Pi,
	"e":  math.E,
}

var npFuncs map[string]libFunc

var builtins map[string]libFunc

func init() {
	npFuncs = map[string]libFunc{
		"abs":      mapUnary(math.Abs),
		"sqrt":     mapUnary(math.Sqrt),
		"exp":      mapUnary(math.Exp),
		"log":      mapUnary(math.Log),
		"log10":    mapUnary(math.Log10),
		"floor":    mapUnary(math.Floor),
		"ceil":     mapUnary(math.Ceil),
		"round":    mapUnary(math.Round),
		"min":      reduceFunc("min", math.Min),
		"max":      reduceFunc("max", math.Max),
		"sum":      reduceFunc("sum", func(a, b float64) float64 { return a + b }),
		"mean":     meanFunc,
		"size":     sizeFunc,
		"linspace": linspaceFunc,
		"arange":   arangeFunc,
	}
	builtins = map[string]libFunc{
		"len":   lenFunc,
		"abs":   absBuiltin,
		"min":   reduceFunc("min", math.Min),
		"max":   reduceFunc("max", math.Max),
		"sum":   reduceFunc("sum", func(a, b float64) float64 { return a + b }),
		"round": roundBuiltin,
		"int":   intBuiltin,
		"float": floatBuiltin,
	}
}

// mapUnary lifts a float function over scalars and sequences.
func mapUnary(f func(float64) float64) libFunc {
	return func(args []document.Value) (document.Value, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("want 1 argument, got %d: %w", len(args), ErrArgument)
		}
		return applyUnary(args[0], f)
	}
}

func applyUnary(v document.Value, f func(float64) float64) (document.Value, error) {
	if seq, ok := v.(*document.Sequence); ok {
		out := document.NewSequence()
		for i := 0; i < seq.Len(); i++ {
			r, err := applyUnary(seq.At(i), f)
			if err != nil {
				return nil, err
			}
			out.Append(r)
		}
		return out, nil
	}
	x, ok := document.AsFloat(v)
	if !ok {
		return nil, fmt.Errorf("not numeric: %s: %w", v.Kind(), ErrArgument)
	}
	return document.Float(f(x)), nil
}

// reduceFunc folds over one sequence argument or over the arguments
// themselves, like the Python builtins min/max/sum.
func reduceFunc(name string, f func(a, b float64) float64) libFunc {
	return func(args []document.Value) (document.Value, error) {
		vals, err := numericOperands(args)
		if err != nil {
			return nil, err
		}
		if len(vals) == 0 {
			return nil, fmt.Errorf("%s of empty sequence: %w", name, ErrArgument)
		}
		acc := vals[0]
		for _, v := range vals[1:] {
			acc = f(acc, v)
		}
		return document.Float(acc), nil
	}
}

func meanFunc(args []document.Value) (document.Value, error) {
	vals, err := numericOperands(args)
	if err != nil {
		return nil, err
	}
	if len(vals) == 0 {
		return nil, fmt.Errorf("mean of empty sequence: %w", ErrArgument)
	}
	total := 0.0
	for _, v := range vals {
		total += v
	}
	return document.Float(total / float64(len(vals))), nil
}

// numericOperands flattens either a single sequence argument or a varargs
// call into a float slice.
func numericOperands(args []document.Value) ([]float64, error) {
	if len(args) == 1 {
		if seq, ok := args[0].(*document.Sequence); ok {
			out := make([]float64, 0, seq.Len())
			for i := 0; i < seq.Len(); i++ {
				x, ok := document.AsFloat(seq.At(i))
				if !ok {
					return nil, fmt.Errorf("element %d is %s: %w", i, seq.At(i).Kind(), ErrArgument)
				}
				out = append(out, x)
			}
			return out, nil
		}
	}
	out := make([]float64, 0, len(args))
	for i, a := range args {
		x, ok := document.AsFloat(a)
		if !ok {
			return nil, fmt.Errorf("argument %d is %s: %w", i, a.Kind(), ErrArgument)
		}
		out = append(out, x)
	}
	return out, nil
}

func sizeFunc(args []document.Value) (document.Value, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("want 1 argument, got %d: %w", len(args), ErrArgument)
	}
	seq, ok := args[0].(*document.Sequence)
	if !ok {
		return nil, fmt.Errorf("not a sequence: %s: %w", args[0].Kind(), ErrArgument)
	}
	return document.Int(seq.Len()), nil
}

func linspaceFunc(args []document.Value) (document.Value, error) {
	if len(args) != 3 {
		return nil, fmt.Errorf("want (start, stop, num), got %d arguments: %w", len(args), ErrArgument)
	}
	start, ok1 := document.AsFloat(args[0])
	stop, ok2 := document.AsFloat(args[1])
	num, ok3 := args[2].(document.Int)
	if !ok1 || !ok2 || !ok3 {
		return nil, fmt.Errorf("linspace arguments must be (number, number, int): %w", ErrArgument)
	}
	n := int(num)
	if n <= 0 {
		return nil, fmt.Errorf("num must be positive, got %d: %w", n, ErrArgument)
	}
	out := document.NewSequence()
	if n == 1 {
		out.Append(document.Float(start))
		return out, nil
	}
	step := (stop - start) / float64(n-1)
	for i := 0; i < n; i++ {
		out.Append(document.Float(start + float64(i)*step))
	}
	return out, nil
}

func arangeFunc(args []document.Value) (document.Value, error) {
	if len(args) < 1 || len(args) > 3 {
		return nil, fmt.Errorf("want 1 to 3 arguments, got %d: %w", len(args), ErrArgument)
	}
	nums := make([]float64, len(args))
	for i, a := range args {
		x, ok := document.AsFloat(a)
		if !ok {
			return nil, fmt.Errorf("arange arguments must be numeric: %w", ErrArgument)
		}
		nums[i] = x
	}
	start, stop, step := 0.0, nums[0], 1.0
	if len(nums) >= 2 {
		start, stop = nums[0], nums[1]
	}
	if len(nums) == 3 {
		step = nums[2]
	}
	if step == 0 {
		return nil, fmt.Errorf("step must not be zero: %w", ErrArgument)
	}
	out := document.NewSequence()
	for x := start; (step > 0 && x < stop) || (step < 0 && x > stop); x += step {
		out.Append(document.Float(x))
	}
	return out, nil
}

func lenFunc(args []document.Value) (document.Value, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("want 1 argument, got %d: %w", len(args), ErrArgument)
	}
	switch v := args[0].(type) {
	case *document.Sequence:
		return document.Int(v.Len()), nil
	case *document.Mapping:
		return document.Int(v.Len()), nil
	case document.String:
		return document.Int(len(v)), nil
	default:
		return nil, fmt.Errorf("len of %s: %w", args[0].Kind(), ErrArgument)
	}
}

// absBuiltin keeps integers integral, unlike np.abs.
func absBuiltin(args []document.Value) (document.Value, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("want 1 argument, got %d: %w", len(args), ErrArgument)
	}
	switch v := args[0].(type) {
	case document.Int:
		if v < 0 {
			return -v, nil
		}
		return v, nil
	case document.Float:
		return document.Float(math.Abs(float64(v))), nil
	default:
		return nil, fmt.Errorf("abs of %s: %w", args[0].Kind(), ErrArgument)
	}
}

func roundBuiltin(args []document.Value) (document.Value, error) {
	if len(args) < 1 || len(args) > 2 {
		return nil, fmt.Errorf("want 1 or 2 arguments, got %d: %w", len(args), ErrArgument)
	}
	x, ok := document.AsFloat(args[0])
	if !ok {
		return nil, fmt.Errorf("round of %s: %w", args[0].Kind(), ErrArgument)
	}
	if len(args) == 1 {
		return document.Int(int64(math.Round(x))), nil
	}
	digits, ok := args[1].(document.Int)
	if !ok {
		return nil, fmt.Errorf("digit count must be an int: %w", ErrArgument)
	}
	scale := math.Pow(10, float64(digits))
	return document.Float(math.Round(x*scale) / scale), nil
}

func intBuiltin(args []document.Value) (document.Value, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("want 1 argument, got %d: %w", len(args), ErrArgument)
	}
	x, ok := document.AsFloat(args[0])
	if !ok {
		return nil, fmt.Errorf("int of %s: %w", args[0].Kind(), ErrArgument)
	}
	return document.Int(int64(math.Trunc(x))), nil
}

func floatBuiltin(args []document.Value) (document.Value, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("want 1 argument, got %d: %w", len(args), ErrArgument)
	}
	x, ok := document.AsFloat(args[0])
	if !ok {
		return nil, fmt.Errorf("float of %s: %w", args[0].Kind(), ErrArgument)
	}
	return document.Float(x), nil
}
