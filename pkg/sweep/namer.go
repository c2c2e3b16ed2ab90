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

// Namer derives one name fragment from the values of a parameter set.
// Fragments from several namers are joined with "-" to build folder and
// file names, so a fragment must not contain "-" or "/" of its own.
type Namer interface {
	Format(ps *ParameterSet) (string, error)
}

// NamerFunc adapts a plain function to the Namer interface.
type NamerFunc func(ps *ParameterSet) (string, error)

// Format implements Namer.
func (f NamerFunc) Format(ps *ParameterSet) (string, error) { return f(ps) }

// FormattedNamer renders the value at one address as "<label>_<value>",
// with the value formatted by a printf-style verb.
type FormattedNamer struct {
	path  address.Address
	label string
	verb  string
}

// NewFormatted returns a namer reading the value at path and rendering it
// with verb (a printf verb without the leading '%', e.g. "d", ".2f", "g",
// "s"). Integer verbs accept floats only when they are whole; float verbs
// accept integers.
func NewFormatted(path, label, verb string) FormattedNamer {
	return FormattedNamer{path: address.Parse(path), label: label, verb: verb}
}

// Format implements Namer. Same set in, same fragment out: formatting
// reads only the addressed value.
func (n FormattedNamer) Format(ps *ParameterSet) (string, error) {
	v, err := ps.Get(n.path)
	if err != nil {
		return "", fmt.Errorf("namer %q: %w", n.label, err)
	}
	s, err := formatValue(v, n.verb)
	if err != nil {
		return "", fmt.Errorf("namer %q at %s: %w", n.label, n.path, err)
	}
	return n.label + "_" + s, nil
}

// Join combines namers into one, joining their fragments with sep.
func Join(namers []Namer, sep string) Namer {
	return NamerFunc(func(ps *ParameterSet) (string, error) {
		parts := make([]string, 0, len(namers))
		for _, n := range namers {
			s, err := n.Format(ps)
			if err != nil {
				return "", err
			}
			parts = append(parts, s)
		}
		return strings.Join(parts, sep), nil
	})
}

func formatValue(v document.Value, verb string) (string, error) {
	if verb == "" {
		verb = "v"
	}
	spec := "%" + verb
	switch verb[len(verb)-1] {
	case 'd', 'b', 'o', 'x', 'X':
		switch t := v.(type) {
		case document.Int:
			return fmt.Sprintf(spec, int64(t)), nil
		case document.Float:
			if float64(int64(t)) == float64(t) {
				return fmt.Sprintf(spec, int64(t)), nil
			}
			return "", fmt.Errorf("%g is not integral: %w", float64(t), ErrFormat)
		default:
			return "", fmt.Errorf("%s is not an integer: %w", describeValue(v), ErrFormat)
		}
	case 'e', 'E', 'f', 'F', 'g', 'G':
		f, ok := document.AsFloat(v)
		if !ok {
			return "", fmt.Errorf("%s is not numeric: %w", describeValue(v), ErrFormat)
		}
		return fmt.Sprintf(spec, f), nil
	case 's', 'q', 'v':
		return fmt.Sprintf(spec, displayValue(v)), nil
	default:
		return "", fmt.Errorf("unsupported verb %q: %w", verb, ErrFormat)
	}
}

// displayValue unwraps scalars so %s and %v render them without their
// Go type names.
func displayValue(v document.Value) any {
	switch t := v.(type) {
	case document.Int:
		return int64(t)
	case document.Float:
		return float64(t)
	case document.String:
		return string(t)
	case document.Bool:
		return bool(t)
	case document.Null:
		return "null"
	default:
		return v
	}
}
