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

import "fmt"

// Expression AST. Nodes are built once per Evaluate call; the trees are
// small enough that caching parsed expressions is not worth the bookkeeping.
type expr interface{ exprNode() }

type intLit struct{ v int64 }
type floatLit struct{ v float64 }
type stringLit struct{ v string }
type boolLit struct{ v bool }
type nullLit struct{}
type ident struct{ name string }
type member struct {
	recv expr
	name string
}
type indexExpr struct {
	recv expr
	idx  expr
}
type call struct {
	fn   expr
	args []expr
}
type unary struct {
	op string
	x  expr
}
type binary struct {
	op   string
	l, r expr
}

func (intLit) exprNode()    {}
func (floatLit) exprNode()  {}
func (stringLit) exprNode() {}
func (boolLit) exprNode()   {}
func (nullLit) exprNode()   {}
func (ident) exprNode()     {}
func (member) exprNode()    {}
func (indexExpr) exprNode() {}
func (call) exprNode()      {}
func (unary) exprNode()     {}
func (binary) exprNode()    {}

// Binding powers, loosest to tightest. Power is right-associative, all
// other binary operators are left-associative.
func bindingPower(op string) int {
	switch op {
	case "==", "!=", "<", "<=", ">", ">=":
		return 10
	case "+", "-":
		return 20
	case "*", "/", "//", "%":
		return 30
	case "**":
		return 40
	default:
		return 0
	}
}

type parser struct {
	toks []token
	pos  int
}

func parse(src string) (expr, error) {
	toks, err := scan(src)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks}
	e, err := p.parseExpr(0)
	if err != nil {
		return nil, err
	}
	if p.peek().typ != tokEOF {
		return nil, p.errorf("trailing input")
	}
	return e, nil
}

func (p *parser) peek() token {
	if p.pos >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[p.pos]
}
func (p *parser) next() token { t := p.toks[p.pos]; p.pos++; return t }
func (p *parser) errorf(format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	return fmt.Errorf("col %d: %s: %w", p.peek().pos, msg, ErrSyntax)
}

func (p *parser) parseExpr(minBP int) (expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		t := p.peek()
		if t.typ != tokOp {
			return left, nil
		}
		bp := bindingPower(t.lit)
		if bp == 0 || bp < minBP {
			return left, nil
		}
		p.next()
		nextBP := bp + 1
		if t.lit == "**" {
			nextBP = bp // right-associative
		}
		right, err := p.parseExpr(nextBP)
		if err != nil {
			return nil, err
		}
		left = binary{op: t.lit, l: left, r: right}
	}
}

func (p *parser) parseUnary() (expr, error) {
	if t := p.peek(); t.typ == tokOp && (t.lit == "-" || t.lit == "+") {
		p.next()
		// Unary sign binds tighter than * but looser than **, so that
		// -2 ** 2 reads as -(2 ** 2).
		x, err := p.parseExpr(bindingPower("**") - 5)
		if err != nil {
			return nil, err
		}
		return unary{op: t.lit, x: x}, nil
	}
	return p.parsePostfix()
}

func (p *parser) parsePostfix() (expr, error) {
	e, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		switch p.peek().typ {
		case tokDot:
			p.next()
			name := p.next()
			if name.typ != tokIdent {
				return nil, p.errorf("expected name after '.'")
			}
			e = member{recv: e, name: name.lit}
		case tokLBracket:
			p.next()
			idx, err := p.parseExpr(0)
			if err != nil {
				return nil, err
			}
			if p.next().typ != tokRBracket {
				return nil, p.errorf("expected ']'")
			}
			e = indexExpr{recv: e, idx: idx}
		case tokLParen:
			p.next()
			var args []expr
			for p.peek().typ != tokRParen {
				a, err := p.parseExpr(0)
				if err != nil {
					return nil, err
				}
				args = append(args, a)
				if p.peek().typ == tokComma {
					p.next()
					continue
				}
				break
			}
			if p.next().typ != tokRParen {
				return nil, p.errorf("expected ')'")
			}
			e = call{fn: e, args: args}
		default:
			return e, nil
		}
	}
}

func (p *parser) parsePrimary() (expr, error) {
	t := p.next()
	switch t.typ {
	case tokInt:
		return intLit{v: t.i}, nil
	case tokFloat:
		return floatLit{v: t.f}, nil
	case tokString:
		return stringLit{v: t.s}, nil
	case tokIdent:
		switch t.lit {
		case "true", "True":
			return boolLit{v: true}, nil
		case "false", "False":
			return boolLit{v: false}, nil
		case "null", "None":
			return nullLit{}, nil
		}
		return ident{name: t.lit}, nil
	case tokLParen:
		e, err := p.parseExpr(0)
		if err != nil {
			return nil, err
		}
		if p.next().typ != tokRParen {
			return nil, p.errorf("expected ')'")
		}
		return e, nil
	default:
		p.pos--
		return nil, p.errorf("unexpected token")
	}
}
