// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package eval is the default expression sandbox for !eval tags.
//
// It implements a restricted one-line expression language evaluated
// against a read-only namespace view, replacing the arbitrary host-language
// eval of the original parameter files with a closed grammar:
//
//   - literals: integers, floats, strings, true/false, null
//     (Python spellings True/False/None are accepted for old files)
//   - namespace access: get.NAME (legacy alias cc.NAME)
//   - arithmetic: + - * / // % ** with parentheses
//   - comparisons: == != < <= > >=
//   - sequence indexing, including negative indices
//   - builtins: len, abs, min, max, sum, round, int, float
//   - a numeric helper library under np (see numlib.go)
//
// Arithmetic on two integers stays integral where the result is exact;
// true division falls back to a float when it is not. Binary arithmetic
// broadcasts elementwise when either operand is a sequence.
//
// The package satisfies resolve.Evaluator; any other sandbox can be wired
// into the resolver instead.
package eval

import (
	"fmt"
	"math"

	"github.com/AleutianAI/paramsweep/pkg/document"
	"github.com/AleutianAI/paramsweep/pkg/resolve"
)

// Evaluator evaluates restricted expressions. The zero value is ready to
// use; it is stateless and safe for reuse across documents.
type Evaluator struct{}

// New creates an Evaluator.
func New() *Evaluator { return &Evaluator{} }

// Evaluate implements resolve.Evaluator.
func (e *Evaluator) Evaluate(src string, ns *resolve.Namespace) (document.Value, error) {
	ast, err := parse(src)
	if err != nil {
		return nil, err
	}
	obj, err := evalNode(ast, ns)
	if err != nil {
		return nil, err
	}
	v, ok := obj.(document.Value)
	if !ok {
		return nil, fmt.Errorf("expression does not produce a value: %w", ErrType)
	}
	return v, nil
}

// object is a document value or one of the internal sandbox handles
// (namespace view, np library, callable).
type object interface{}

type nsHandle struct{ ns *resolve.Namespace }
type libHandle struct{}
type callable struct {
	name string
	fn   func(args []document.Value) (document.Value, error)
}

func evalNode(e expr, ns *resolve.Namespace) (object, error) {
	switch n := e.(type) {
	case intLit:
		return document.Int(n.v), nil
	case floatLit:
		return document.Float(n.v), nil
	case stringLit:
		return document.String(n.v), nil
	case boolLit:
		return document.Bool(n.v), nil
	case nullLit:
		return document.Null{}, nil
	case ident:
		switch n.name {
		case "get", "cc":
			return nsHandle{ns: ns}, nil
		case "np":
			return libHandle{}, nil
		}
		if fn, ok := builtins[n.name]; ok {
			return callable{name: n.name, fn: fn}, nil
		}
		return nil, fmt.Errorf("%q: %w", n.name, ErrUnknownName)
	case member:
		return evalMember(n, ns)
	case indexExpr:
		return evalIndex(n, ns)
	case call:
		return evalCall(n, ns)
	case unary:
		return evalUnary(n, ns)
	case binary:
		return evalBinary(n, ns)
	default:
		return nil, fmt.Errorf("unhandled expression node %T: %w", e, ErrSyntax)
	}
}

func evalMember(n member, ns *resolve.Namespace) (object, error) {
	recv, err := evalNode(n.recv, ns)
	if err != nil {
		return nil, err
	}
	switch h := recv.(type) {
	case nsHandle:
		v, ok := h.ns.Get(n.name)
		if !ok {
			return nil, fmt.Errorf("name %q: %w", n.name, resolve.ErrUnknownReference)
		}
		return v.Copy(), nil
	case libHandle:
		if fn, ok := npFuncs[n.name]; ok {
			return callable{name: "np." + n.name, fn: fn}, nil
		}
		if c, ok := npConsts[n.name]; ok {
			return document.Float(c), nil
		}
		return nil, fmt.Errorf("np.%s: %w", n.name, ErrUnknownName)
	default:
		return nil, fmt.Errorf("%v has no attribute %q: %w", recv, n.name, ErrType)
	}
}

func evalIndex(n indexExpr, ns *resolve.Namespace) (object, error) {
	recv, err := evalNode(n.recv, ns)
	if err != nil {
		return nil, err
	}
	idxObj, err := evalNode(n.idx, ns)
	if err != nil {
		return nil, err
	}
	idx, ok := idxObj.(document.Int)
	if !ok {
		return nil, fmt.Errorf("index must be an integer: %w", ErrIndex)
	}
	seq, ok := recv.(*document.Sequence)
	if !ok {
		return nil, fmt.Errorf("cannot index %T: %w", recv, ErrType)
	}
	i := int(idx)
	if i < 0 {
		i += seq.Len()
	}
	if i < 0 || i >= seq.Len() {
		return nil, fmt.Errorf("index %d with length %d: %w", int(idx), seq.Len(), ErrIndex)
	}
	return seq.At(i).Copy(), nil
}

func evalCall(n call, ns *resolve.Namespace) (object, error) {
	fnObj, err := evalNode(n.fn, ns)
	if err != nil {
		return nil, err
	}
	fn, ok := fnObj.(callable)
	if !ok {
		return nil, fmt.Errorf("%T is not callable: %w", fnObj, ErrType)
	}
	args := make([]document.Value, len(n.args))
	for i, a := range n.args {
		obj, err := evalNode(a, ns)
		if err != nil {
			return nil, err
		}
		v, ok := obj.(document.Value)
		if !ok {
			return nil, fmt.Errorf("argument %d of %s is not a value: %w", i, fn.name, ErrType)
		}
		args[i] = v
	}
	v, err := fn.fn(args)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", fn.name, err)
	}
	return v, nil
}

func evalUnary(n unary, ns *resolve.Namespace) (object, error) {
	obj, err := evalNode(n.x, ns)
	if err != nil {
		return nil, err
	}
	v, ok := obj.(document.Value)
	if !ok {
		return nil, fmt.Errorf("unary %q on %T: %w", n.op, obj, ErrType)
	}
	if n.op == "+" {
		if !document.IsNumeric(v) && v.Kind() != document.KindSequence {
			return nil, fmt.Errorf("unary + on %s: %w", v.Kind(), ErrType)
		}
		return v, nil
	}
	return negate(v)
}

func negate(v document.Value) (document.Value, error) {
	switch x := v.(type) {
	case document.Int:
		return document.Int(-x), nil
	case document.Float:
		return document.Float(-x), nil
	case *document.Sequence:
		out := document.NewSequence()
		for i := 0; i < x.Len(); i++ {
			nv, err := negate(x.At(i))
			if err != nil {
				return nil, err
			}
			out.Append(nv)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unary - on %s: %w", v.Kind(), ErrType)
	}
}

func evalBinary(n binary, ns *resolve.Namespace) (object, error) {
	lObj, err := evalNode(n.l, ns)
	if err != nil {
		return nil, err
	}
	rObj, err := evalNode(n.r, ns)
	if err != nil {
		return nil, err
	}
	l, lok := lObj.(document.Value)
	r, rok := rObj.(document.Value)
	if !lok || !rok {
		return nil, fmt.Errorf("operator %q on sandbox handle: %w", n.op, ErrType)
	}
	switch n.op {
	case "==", "!=", "<", "<=", ">", ">=":
		return compare(n.op, l, r)
	default:
		return arith(n.op, l, r)
	}
}

// arith applies one arithmetic operator, broadcasting over sequences.
func arith(op string, l, r document.Value) (document.Value, error) {
	if ls, ok := l.(*document.Sequence); ok {
		return broadcastLeft(op, ls, r)
	}
	if rs, ok := r.(*document.Sequence); ok {
		return broadcastRight(op, l, rs)
	}
	if op == "+" {
		if a, ok := l.(document.String); ok {
			if b, ok := r.(document.String); ok {
				return a + b, nil
			}
		}
	}
	li, lIsInt := l.(document.Int)
	ri, rIsInt := r.(document.Int)
	if lIsInt && rIsInt {
		return intArith(op, int64(li), int64(ri))
	}
	lf, lok := document.AsFloat(l)
	rf, rok := document.AsFloat(r)
	if !lok || !rok {
		return nil, fmt.Errorf("operator %q on %s and %s: %w", op, l.Kind(), r.Kind(), ErrType)
	}
	return floatArith(op, lf, rf)
}

func intArith(op string, a, b int64) (document.Value, error) {
	switch op {
	case "+":
		return document.Int(a + b), nil
	case "-":
		return document.Int(a - b), nil
	case "*":
		return document.Int(a * b), nil
	case "/":
		if b == 0 {
			return nil, fmt.Errorf("division by zero: %w", ErrType)
		}
		if a%b == 0 {
			return document.Int(a / b), nil
		}
		return document.Float(float64(a) / float64(b)), nil
	case "//":
		if b == 0 {
			return nil, fmt.Errorf("division by zero: %w", ErrType)
		}
		q := a / b
		if (a%b != 0) && ((a < 0) != (b < 0)) {
			q-- // floor, not truncate
		}
		return document.Int(q), nil
	case "%":
		if b == 0 {
			return nil, fmt.Errorf("modulo by zero: %w", ErrType)
		}
		m := a % b
		if m != 0 && ((a < 0) != (b < 0)) {
			m += b
		}
		return document.Int(m), nil
	case "**":
		if b >= 0 {
			out := int64(1)
			for i := int64(0); i < b; i++ {
				out *= a
			}
			return document.Int(out), nil
		}
		return document.Float(math.Pow(float64(a), float64(b))), nil
	default:
		return nil, fmt.Errorf("operator %q: %w", op, ErrSyntax)
	}
}

func floatArith(op string, a, b float64) (document.Value, error) {
	switch op {
	case "+":
		return document.Float(a + b), nil
	case "-":
		return document.Float(a - b), nil
	case "*":
		return document.Float(a * b), nil
	case "/":
		if b == 0 {
			return nil, fmt.Errorf("division by zero: %w", ErrType)
		}
		return document.Float(a / b), nil
	case "//":
		if b == 0 {
			return nil, fmt.Errorf("division by zero: %w", ErrType)
		}
		return document.Float(math.Floor(a / b)), nil
	case "%":
		if b == 0 {
			return nil, fmt.Errorf("modulo by zero: %w", ErrType)
		}
		m := math.Mod(a, b)
		if m != 0 && (m < 0) != (b < 0) {
			m += b
		}
		return document.Float(m), nil
	case "**":
		return document.Float(math.Pow(a, b)), nil
	default:
		return nil, fmt.Errorf("operator %q: %w", op, ErrSyntax)
	}
}

func broadcastLeft(op string, l *document.Sequence, r document.Value) (document.Value, error) {
	if rs, ok := r.(*document.Sequence); ok {
		if l.Len() != rs.Len() {
			return nil, fmt.Errorf("sequence lengths %d and %d differ: %w", l.Len(), rs.Len(), ErrType)
		}
		out := document.NewSequence()
		for i := 0; i < l.Len(); i++ {
			v, err := arith(op, l.At(i), rs.At(i))
			if err != nil {
				return nil, err
			}
			out.Append(v)
		}
		return out, nil
	}
	out := document.NewSequence()
	for i := 0; i < l.Len(); i++ {
		v, err := arith(op, l.At(i), r)
		if err != nil {
			return nil, err
		}
		out.Append(v)
	}
	return out, nil
}

func broadcastRight(op string, l document.Value, r *document.Sequence) (document.Value, error) {
	out := document.NewSequence()
	for i := 0; i < r.Len(); i++ {
		v, err := arith(op, l, r.At(i))
		if err != nil {
			return nil, err
		}
		out.Append(v)
	}
	return out, nil
}

func compare(op string, l, r document.Value) (document.Value, error) {
	if lf, ok := document.AsFloat(l); ok {
		if rf, ok := document.AsFloat(r); ok {
			return document.Bool(compareOrdered(op, lf, rf)), nil
		}
	}
	if ls, ok := l.(document.String); ok {
		if rs, ok := r.(document.String); ok {
			return document.Bool(compareOrdered(op, string(ls), string(rs))), nil
		}
	}
	switch op {
	case "==":
		return document.Bool(document.Equal(l, r)), nil
	case "!=":
		return document.Bool(!document.Equal(l, r)), nil
	}
	return nil, fmt.Errorf("cannot order %s and %s: %w", l.Kind(), r.Kind(), ErrType)
}

func compareOrdered[T int64 | float64 | string](op string, a, b T) bool {
	switch op {
	case "==":
		return a == b
	case "!=":
		return a != b
	case "<":
		return a < b
	case "<=":
		return a <= b
	case ">":
		return a > b
	default:
		return a >= b
	}
}
