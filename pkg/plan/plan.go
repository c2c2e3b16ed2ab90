// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package plan loads declarative sweep plans from YAML and compiles them
// into executable sweep pipelines.
//
// # Plan Format
//
// A plan lists pipeline stages in the order they run, plus the namers that
// place each generated parameter set in the output tree:
//
//	out: sweeps
//	stages:
//	    - range:
//	          transforms:
//	              - kind: factor
//	                path: network/rate
//	          tuples:
//	              - [2]
//	              - [4]
//	    - filter:
//	          path: network/rate
//	          max: 100
//	folders:
//	    - [{path: network/rate, label: rate, format: g}]
//	file:
//	    - {path: network/rate, label: rate, format: g}
//	    - {path: seed, label: seed, format: d}
//
// Each stage holds exactly one of transform, range, or filter. Structural
// constraints are checked with struct validation tags; cross-field rules
// (exactly-one-of, filter bounds) are checked during Compile.
package plan

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/AleutianAI/paramsweep/pkg/address"
	"github.com/AleutianAI/paramsweep/pkg/document"
	"github.com/AleutianAI/paramsweep/pkg/sweep"
)

// ErrInvalidPlan classifies every plan validation failure.
var ErrInvalidPlan = errors.New("invalid sweep plan")

// planValidate is the shared validator instance for plan documents.
var planValidate = validator.New()

// =============================================================================
// Plan Types
// =============================================================================

// Plan is a parsed sweep plan document.
type Plan struct {
	// Out is the default output folder; the CLI may override it.
	Out string `yaml:"out"`

	// Stages run in order; each holds exactly one stage kind.
	Stages []Stage `yaml:"stages" validate:"dive"`

	// Folders lists one namer group per output folder level.
	Folders [][]NamerSpec `yaml:"folders" validate:"dive,min=1,dive"`

	// File names the output file; required, since without it every
	// generated set would collapse onto one path.
	File []NamerSpec `yaml:"file" validate:"required,min=1,dive"`
}

// Stage is one pipeline step. Exactly one field must be set.
type Stage struct {
	Transform *TransformSpec `yaml:"transform"`
	Range     *RangeSpec     `yaml:"range"`
	Filter    *FilterSpec    `yaml:"filter"`
}

// TransformSpec describes a single transform.
type TransformSpec struct {
	// Kind selects the transform operation.
	Kind string `yaml:"kind" validate:"required,oneof=set add factor copy delete"`

	// Path is the target address. Delete uses Paths instead.
	Path string `yaml:"path"`

	// From redirects add/factor to read from a different address, and is
	// the source address for copy.
	From string `yaml:"from"`

	// Value is the operand for set/add/factor. Inside a range the tuples
	// supply operands and Value stays empty.
	Value *Node `yaml:"value"`

	// Paths lists the addresses removed by delete.
	Paths []string `yaml:"paths"`
}

// RangeSpec describes a range stage: transforms plus the value tuples
// fanned across them.
type RangeSpec struct {
	Transforms []TransformSpec `yaml:"transforms" validate:"required,min=1,dive"`
	Tuples     [][]Node        `yaml:"tuples" validate:"required,min=1"`
}

// FilterSpec keeps only parameter sets whose value at Path satisfies all
// given bounds. At least one of Min, Max, or Equals must be set; Min and
// Max apply to numeric values only.
type FilterSpec struct {
	Path   string   `yaml:"path" validate:"required"`
	Min    *float64 `yaml:"min"`
	Max    *float64 `yaml:"max"`
	Equals *Node    `yaml:"equals"`
}

// NamerSpec describes one name fragment: the value at Path rendered with
// Format and prefixed with Label.
type NamerSpec struct {
	Path   string `yaml:"path" validate:"required"`
	Label  string `yaml:"label" validate:"required"`
	Format string `yaml:"format"`
}

// Node carries an arbitrary YAML value through plan unmarshalling into the
// document value model.
type Node struct {
	Value document.Value
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (n *Node) UnmarshalYAML(node *yaml.Node) error {
	v, err := document.FromNode(node)
	if err != nil {
		return err
	}
	n.Value = v
	return nil
}

// =============================================================================
// Loading and Compilation
// =============================================================================

// Load reads and validates the plan at path.
func Load(path string) (*Plan, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load plan %q: %w", path, err)
	}
	return Parse(raw)
}

// Parse decodes and validates a plan document.
func Parse(raw []byte) (*Plan, error) {
	var p Plan
	if err := yaml.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("parse plan: %w", err)
	}
	if err := planValidate.Struct(&p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPlan, err)
	}
	return &p, nil
}

// Compile turns the plan into an executable sweep pipeline.
func (p *Plan) Compile() (*sweep.Sweep, error) {
	sw := sweep.New()
	for i, st := range p.Stages {
		if err := compileStage(sw, st); err != nil {
			return nil, fmt.Errorf("%w: stage %d: %v", ErrInvalidPlan, i, err)
		}
	}
	for _, group := range p.Folders {
		sw.AddNamersFolder(compileNamers(group)...)
	}
	sw.SetNamersFile(compileNamers(p.File)...)
	return sw, nil
}

func compileStage(sw *sweep.Sweep, st Stage) error {
	set := 0
	for _, present := range []bool{st.Transform != nil, st.Range != nil, st.Filter != nil} {
		if present {
			set++
		}
	}
	if set != 1 {
		return fmt.Errorf("needs exactly one of transform, range, filter; got %d", set)
	}

	switch {
	case st.Transform != nil:
		tr, err := compileTransform(*st.Transform, false)
		if err != nil {
			return err
		}
		sw.AddTransform(tr)
	case st.Range != nil:
		r, err := compileRange(*st.Range)
		if err != nil {
			return err
		}
		sw.Add(r)
	default:
		f, err := compileFilter(*st.Filter)
		if err != nil {
			return err
		}
		sw.AddFilter(f)
	}
	return nil
}

// compileTransform builds one transform. Inside a range (inRange), set,
// add, and factor leave their operand to the tuples; standalone they
// require a value.
func compileTransform(spec TransformSpec, inRange bool) (sweep.Transform, error) {
	operand := func() (document.Value, error) {
		if spec.Value != nil {
			return spec.Value.Value, nil
		}
		if inRange {
			return nil, nil
		}
		return nil, fmt.Errorf("transform %q at %q needs a value", spec.Kind, spec.Path)
	}

	switch spec.Kind {
	case "set":
		if spec.Path == "" {
			return nil, fmt.Errorf("set needs a path")
		}
		v, err := operand()
		if err != nil {
			return nil, err
		}
		return sweep.NewSetValue(spec.Path, v), nil
	case "add", "factor":
		if spec.Path == "" {
			return nil, fmt.Errorf("%s needs a path", spec.Kind)
		}
		v, err := operand()
		if err != nil {
			return nil, err
		}
		if spec.Kind == "add" {
			t := sweep.NewAddValue(spec.Path, v)
			if spec.From != "" {
				t = t.From(spec.From)
			}
			return t, nil
		}
		t := sweep.NewFactorValue(spec.Path, v)
		if spec.From != "" {
			t = t.From(spec.From)
		}
		return t, nil
	case "copy":
		if spec.From == "" || spec.Path == "" {
			return nil, fmt.Errorf("copy needs from and path")
		}
		return sweep.NewCopyValue(spec.From, spec.Path), nil
	case "delete":
		if len(spec.Paths) == 0 {
			return nil, fmt.Errorf("delete needs paths")
		}
		return sweep.NewDeleteValues(spec.Paths...), nil
	default:
		return nil, fmt.Errorf("unknown transform kind %q", spec.Kind)
	}
}

func compileRange(spec RangeSpec) (*sweep.Range, error) {
	transforms := make([]sweep.Transform, 0, len(spec.Transforms))
	for _, ts := range spec.Transforms {
		tr, err := compileTransform(ts, true)
		if err != nil {
			return nil, err
		}
		transforms = append(transforms, tr)
	}
	tuples := make([][]document.Value, 0, len(spec.Tuples))
	for _, tup := range spec.Tuples {
		vals := make([]document.Value, 0, len(tup))
		for _, n := range tup {
			vals = append(vals, n.Value)
		}
		tuples = append(tuples, vals)
	}
	return sweep.NewRange(transforms, tuples...)
}

func compileFilter(spec FilterSpec) (sweep.Filter, error) {
	if spec.Min == nil && spec.Max == nil && spec.Equals == nil {
		return nil, fmt.Errorf("filter at %q needs min, max, or equals", spec.Path)
	}
	addr := address.Parse(spec.Path)
	var want document.Value
	if spec.Equals != nil {
		want = spec.Equals.Value
	}
	lo, hi := spec.Min, spec.Max

	return func(ps *sweep.ParameterSet) (bool, error) {
		v, err := ps.Get(addr)
		if err != nil {
			return false, err
		}
		if want != nil && !document.Equal(v, want) {
			return false, nil
		}
		if lo != nil || hi != nil {
			f, ok := document.AsFloat(v)
			if !ok {
				return false, fmt.Errorf("filter at %q: %s is not numeric",
					spec.Path, v.Kind())
			}
			if lo != nil && f < *lo {
				return false, nil
			}
			if hi != nil && f > *hi {
				return false, nil
			}
		}
		return true, nil
	}, nil
}

func compileNamers(group []NamerSpec) []sweep.Namer {
	namers := make([]sweep.Namer, 0, len(group))
	for _, ns := range group {
		format := ns.Format
		if format == "" {
			format = "v"
		}
		namers = append(namers, sweep.NewFormatted(ns.Path, ns.Label, format))
	}
	return namers
}
