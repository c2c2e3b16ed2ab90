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
	"strconv"
	"strings"
)

type tokenType int

const (
	tokEOF tokenType = iota
	tokInt
	tokFloat
	tokString
	tokIdent
	tokOp // + - * / % ** == != < <= > >=
	tokLParen
	tokRParen
	tokLBracket
	tokRBracket
	tokDot
	tokComma
)

type token struct {
	typ tokenType
	lit string  // operator or identifier text
	i   int64   // value when typ == tokInt
	f   float64 // value when typ == tokFloat
	s   string  // value when typ == tokString
	pos int
}

// scan splits a one-line expression into tokens.
func scan(src string) ([]token, error) {
	var toks []token
	i := 0
	for i < len(src) {
		c := src[i]
		switch {
		case c == ' ' || c == '\t':
			i++
		case c >= '0' && c <= '9', c == '.' && i+1 < len(src) && isDigit(src[i+1]):
			tok, n, err := scanNumber(src, i)
			if err != nil {
				return nil, err
			}
			toks = append(toks, tok)
			i += n
		case isIdentStart(c):
			start := i
			for i < len(src) && isIdentPart(src[i]) {
				i++
			}
			toks = append(toks, token{typ: tokIdent, lit: src[start:i], pos: start})
		case c == '"' || c == '\'':
			end := strings.IndexByte(src[i+1:], c)
			if end < 0 {
				return nil, fmt.Errorf("col %d: unterminated string: %w", i, ErrSyntax)
			}
			toks = append(toks, token{typ: tokString, s: src[i+1 : i+1+end], pos: i})
			i += end + 2
		case c == '(':
			toks = append(toks, token{typ: tokLParen, pos: i})
			i++
		case c == ')':
			toks = append(toks, token{typ: tokRParen, pos: i})
			i++
		case c == '[':
			toks = append(toks, token{typ: tokLBracket, pos: i})
			i++
		case c == ']':
			toks = append(toks, token{typ: tokRBracket, pos: i})
			i++
		case c == '.':
			toks = append(toks, token{typ: tokDot, pos: i})
			i++
		case c == ',':
			toks = append(toks, token{typ: tokComma, pos: i})
			i++
		default:
			op, n := scanOperator(src, i)
			if n == 0 {
				return nil, fmt.Errorf("col %d: unexpected character %q: %w", i, c, ErrSyntax)
			}
			toks = append(toks, token{typ: tokOp, lit: op, pos: i})
			i += n
		}
	}
	return append(toks, token{typ: tokEOF, pos: len(src)}), nil
}

func scanOperator(src string, i int) (string, int) {
	two := ""
	if i+1 < len(src) {
		two = src[i : i+2]
	}
	switch two {
	case "**", "==", "!=", "<=", ">=", "//":
		return two, 2
	}
	switch src[i] {
	case '+', '-', '*', '/', '%', '<', '>':
		return src[i : i+1], 1
	}
	return "", 0
}

// scanNumber accepts integers, decimals, and exponent notation.
func scanNumber(src string, start int) (token, int, error) {
	i := start
	isFloat := false
	for i < len(src) && isDigit(src[i]) {
		i++
	}
	if i < len(src) && src[i] == '.' {
		isFloat = true
		i++
		for i < len(src) && isDigit(src[i]) {
			i++
		}
	}
	if i < len(src) && (src[i] == 'e' || src[i] == 'E') {
		j := i + 1
		if j < len(src) && (src[j] == '+' || src[j] == '-') {
			j++
		}
		if j < len(src) && isDigit(src[j]) {
			isFloat = true
			i = j
			for i < len(src) && isDigit(src[i]) {
				i++
			}
		}
	}
	text := src[start:i]
	if isFloat {
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return token{}, 0, fmt.Errorf("col %d: bad number %q: %w", start, text, ErrSyntax)
		}
		return token{typ: tokFloat, f: f, pos: start}, i - start, nil
	}
	n, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return token{}, 0, fmt.Errorf("col %d: bad number %q: %w", start, text, ErrSyntax)
	}
	return token{typ: tokInt, i: n, pos: start}, i - start, nil
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool { return isIdentStart(c) || isDigit(c) }
