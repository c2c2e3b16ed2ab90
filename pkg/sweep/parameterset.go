// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package sweep fans a single base parameter document out into a family of
// derived documents.
//
// # Pipeline
//
// A Sweep is an ordered list of stages. Generator stages expand each working
// parameter set into one or more derived sets; filter stages drop sets that
// fail a predicate. Stages run in registration order, so a filter only sees
// the sets produced by the generators before it.
//
// A ParameterSet wraps one document and gives path-addressed access to its
// values. Transforms mutate a set in place; Range applies a transform per
// element of a value tuple, copying the set before each application so the
// originals stay untouched.
//
// Namers derive folder and file names from the values inside each set, and
// Dump writes every generated set under those names, refusing to write
// anything when two sets collide on a name.
package sweep

import (
	"fmt"
	"os"

	"github.com/AleutianAI/paramsweep/pkg/address"
	"github.com/AleutianAI/paramsweep/pkg/document"
	"github.com/AleutianAI/paramsweep/pkg/resolve"
)

// Metainfo keys recorded by Load and by transforms on loaded sets.
const (
	// MetainfoKey is the top-level mapping key holding provenance data.
	MetainfoKey = "_metainfo"

	// MetainfoOriginalFile records the path the set was loaded from.
	MetainfoOriginalFile = "original_file"

	// MetainfoTransforms is the sequence of transform descriptions applied
	// to the set since it was loaded.
	MetainfoTransforms = "transforms"
)

// ParameterSet wraps a parameter document and provides path-addressed
// reads and writes against it.
//
// A ParameterSet owns its document: Copy produces a fully independent
// set, and transforms applied to one set never affect another.
type ParameterSet struct {
	data *document.Mapping
}

// NewParameterSet wraps doc in a ParameterSet without copying it.
// A nil doc yields an empty set.
func NewParameterSet(doc *document.Mapping) *ParameterSet {
	if doc == nil {
		doc = document.NewMapping()
	}
	return &ParameterSet{data: doc}
}

// Load reads the YAML document at path, resolves its prelude and tags with
// r, and wraps the result. The returned set carries a _metainfo mapping
// recording the source path and an empty transform log.
func Load(path string, r *resolve.Resolver) (*ParameterSet, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load %q: %w", path, err)
	}
	doc, err := document.DecodeMapping(raw)
	if err != nil {
		return nil, fmt.Errorf("load %q: %w", path, err)
	}
	resolved, _, err := r.Resolve(doc)
	if err != nil {
		return nil, fmt.Errorf("load %q: %w", path, err)
	}

	meta := document.NewMapping()
	meta.Set(MetainfoOriginalFile, document.String(path))
	meta.Set(MetainfoTransforms, document.NewSequence())
	resolved.Set(MetainfoKey, meta)

	return &ParameterSet{data: resolved}, nil
}

// Get returns the value at addr. It fails with an address error when any
// step of the path is missing or traverses a scalar.
func (ps *ParameterSet) Get(addr address.Address) (document.Value, error) {
	return addr.Get(ps.data)
}

// Set writes v at addr, creating intermediate mappings as needed.
func (ps *ParameterSet) Set(addr address.Address, v document.Value) error {
	return addr.Set(ps.data, v)
}

// Delete removes the value at addr.
func (ps *ParameterSet) Delete(addr address.Address) error {
	return addr.Delete(ps.data)
}

// GetPath is Get with an unparsed address string.
func (ps *ParameterSet) GetPath(path string) (document.Value, error) {
	return ps.Get(address.Parse(path))
}

// SetPath is Set with an unparsed address string.
func (ps *ParameterSet) SetPath(path string, v document.Value) error {
	return ps.Set(address.Parse(path), v)
}

// DeletePath is Delete with an unparsed address string.
func (ps *ParameterSet) DeletePath(path string) error {
	return ps.Delete(address.Parse(path))
}

// Has reports whether addr resolves to a value.
func (ps *ParameterSet) Has(addr address.Address) bool {
	_, err := addr.Get(ps.data)
	return err == nil
}

// Copy returns a deep copy of the set. Mutations of the copy never show
// through to the original and vice versa.
func (ps *ParameterSet) Copy() *ParameterSet {
	return &ParameterSet{data: ps.data.Copy().(*document.Mapping)}
}

// Document returns the underlying document. Callers that mutate it bypass
// the transform log.
func (ps *ParameterSet) Document() *document.Mapping {
	return ps.data
}

// Encode serializes the set's document to YAML.
func (ps *ParameterSet) Encode() ([]byte, error) {
	return document.Encode(ps.data)
}

// recordTransform appends desc to the _metainfo transform log. Sets that
// carry no _metainfo (built in memory rather than loaded) are left alone.
func (ps *ParameterSet) recordTransform(desc string) {
	meta, ok := ps.data.Get(MetainfoKey)
	if !ok {
		return
	}
	mm, ok := meta.(*document.Mapping)
	if !ok {
		return
	}
	log, ok := mm.Get(MetainfoTransforms)
	seq, isSeq := log.(*document.Sequence)
	if !ok || !isSeq {
		seq = document.NewSequence()
		mm.Set(MetainfoTransforms, seq)
	}
	seq.Append(document.String(desc))
}
