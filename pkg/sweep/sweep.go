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
	"os"
	"path/filepath"
)

// FragmentSep joins name fragments within one folder or file name.
const FragmentSep = "-"

// OutputExt is the suffix appended to every generated file name.
const OutputExt = ".yaml"

// Generator expands one parameter set into zero or more derived sets.
// A generator that derives several sets must hand out independent copies;
// Range does this per tuple.
type Generator interface {
	Expand(ps *ParameterSet) ([]*ParameterSet, error)
}

// GeneratorFunc adapts a plain function to the Generator interface.
type GeneratorFunc func(ps *ParameterSet) ([]*ParameterSet, error)

// Expand implements Generator.
func (f GeneratorFunc) Expand(ps *ParameterSet) ([]*ParameterSet, error) { return f(ps) }

// Filter decides whether a generated parameter set survives. Filters in a
// sweep are conjunctive: a set must pass every filter registered before
// the end of the pipeline.
type Filter func(ps *ParameterSet) (bool, error)

// transformStage lifts a single Transform into a one-in-one-out generator.
type transformStage struct {
	t Transform
}

func (g transformStage) Expand(ps *ParameterSet) ([]*ParameterSet, error) {
	cp := ps.Copy()
	if err := g.t.Apply(cp); err != nil {
		return nil, err
	}
	return []*ParameterSet{cp}, nil
}

type stage struct {
	gen    Generator
	filter Filter
}

// Sweep is an ordered pipeline of generator and filter stages plus the
// namers that place each generated set in the output tree. Stages run in
// registration order; interleaving a filter between generators prunes the
// working population before the next fan-out.
type Sweep struct {
	stages       []stage
	folderNamers []Namer
	fileNamer    Namer
}

// New returns an empty sweep.
func New() *Sweep {
	return &Sweep{}
}

// Add appends a generator stage.
func (s *Sweep) Add(g Generator) *Sweep {
	s.stages = append(s.stages, stage{gen: g})
	return s
}

// AddTransform appends a stage applying t to a copy of every working set.
func (s *Sweep) AddTransform(t Transform) *Sweep {
	return s.Add(transformStage{t: t})
}

// AddFilter appends a filter stage. Sets failing f are dropped.
func (s *Sweep) AddFilter(f Filter) *Sweep {
	s.stages = append(s.stages, stage{filter: f})
	return s
}

// AddNamersFolder appends one folder level to each output path. The level's
// name is the namers' fragments joined with "-".
func (s *Sweep) AddNamersFolder(namers ...Namer) *Sweep {
	s.folderNamers = append(s.folderNamers, Join(namers, FragmentSep))
	return s
}

// SetNamersFile sets the namers producing the file name, replacing any
// previous ones. The file name is the fragments joined with "-" plus the
// ".yaml" suffix.
func (s *Sweep) SetNamersFile(namers ...Namer) *Sweep {
	s.fileNamer = Join(namers, FragmentSep)
	return s
}

// Generate runs the stage pipeline on base and returns every surviving
// parameter set. The base set itself is never mutated; with no stages the
// result is the base alone.
func (s *Sweep) Generate(base *ParameterSet) ([]*ParameterSet, error) {
	working := []*ParameterSet{base}
	for i, st := range s.stages {
		if st.gen != nil {
			var next []*ParameterSet
			for _, ps := range working {
				derived, err := st.gen.Expand(ps)
				if err != nil {
					return nil, fmt.Errorf("stage %d: %w", i, err)
				}
				next = append(next, derived...)
			}
			working = next
			continue
		}
		kept := working[:0:0]
		for _, ps := range working {
			ok, err := st.filter(ps)
			if err != nil {
				return nil, fmt.Errorf("stage %d: %w", i, err)
			}
			if ok {
				kept = append(kept, ps)
			}
		}
		working = kept
	}
	return working, nil
}

// OutputPath returns ps's output path relative to the dump folder: one
// path element per registered folder level, then the file name.
func (s *Sweep) OutputPath(ps *ParameterSet) (string, error) {
	if s.fileNamer == nil {
		return "", ErrNoFileNamer
	}
	elems := make([]string, 0, len(s.folderNamers)+1)
	for _, n := range s.folderNamers {
		name, err := n.Format(ps)
		if err != nil {
			return "", err
		}
		elems = append(elems, name)
	}
	file, err := s.fileNamer.Format(ps)
	if err != nil {
		return "", err
	}
	elems = append(elems, file+OutputExt)
	return filepath.Join(elems...), nil
}

// WriteFunc persists one encoded document at path. The default
// implementation creates parent directories and writes the file.
type WriteFunc func(path string, data []byte) error

func defaultWrite(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// DumpOptions controls Dump.
type DumpOptions struct {
	// Basefolder is prepended to every output path.
	Basefolder string

	// WriteFiles enables writing. When false Dump only plans: it names
	// every set and reports the counts without touching the filesystem.
	WriteFiles bool

	// Write persists one file; nil selects the default writer.
	Write WriteFunc
}

// Outcome statuses reported by Dump.
const (
	StatusPlanned = "planned"
	StatusWritten = "written"
	StatusFailed  = "failed"
)

// Outcome records what happened to one generated parameter set.
type Outcome struct {
	Path   string
	Status string
}

// DumpReport summarizes a Dump run. Unique < Total means distinct sets
// collided on a name.
type DumpReport struct {
	Total    int
	Unique   int
	Outcomes []Outcome
}

// Collisions returns the number of sets that shared a path with an
// earlier set.
func (r *DumpReport) Collisions() int { return r.Total - r.Unique }

// Dump generates every parameter set from base and writes each one under
// its derived path. Naming happens before any write: when two sets map to
// the same path, Dump returns the report plus a NamingCollisionError and
// writes nothing. A write failure aborts the run but files already written
// stay on disk; the report's outcomes show how far it got.
func (s *Sweep) Dump(base *ParameterSet, opts DumpOptions) (*DumpReport, error) {
	sets, err := s.Generate(base)
	if err != nil {
		return nil, err
	}

	report := &DumpReport{Total: len(sets)}
	seen := make(map[string]bool, len(sets))
	paths := make([]string, 0, len(sets))
	for _, ps := range sets {
		rel, err := s.OutputPath(ps)
		if err != nil {
			return nil, err
		}
		full := filepath.Join(opts.Basefolder, rel)
		if !seen[full] {
			seen[full] = true
			report.Unique++
		}
		paths = append(paths, full)
	}

	if !opts.WriteFiles {
		for _, p := range paths {
			report.Outcomes = append(report.Outcomes, Outcome{Path: p, Status: StatusPlanned})
		}
		return report, nil
	}
	if report.Unique < report.Total {
		return report, &NamingCollisionError{Total: report.Total, Unique: report.Unique}
	}

	write := opts.Write
	if write == nil {
		write = defaultWrite
	}
	for i, ps := range sets {
		data, err := ps.Encode()
		if err == nil {
			err = write(paths[i], data)
		}
		if err != nil {
			report.Outcomes = append(report.Outcomes, Outcome{Path: paths[i], Status: StatusFailed})
			return report, fmt.Errorf("write %q: %w", paths[i], err)
		}
		report.Outcomes = append(report.Outcomes, Outcome{Path: paths[i], Status: StatusWritten})
	}
	return report, nil
}
