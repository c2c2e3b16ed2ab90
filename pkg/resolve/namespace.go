// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package resolve

import (
	"fmt"

	"github.com/AleutianAI/paramsweep/pkg/document"
)

// Namespace is the flat, write-once mapping from prelude names to their
// resolved values.
//
// Names keep definition order so the resolved prelude can be re-embedded
// in the output document deterministically. Define never overwrites; a
// second definition of a name is ErrDuplicateName.
//
// Namespace is not safe for concurrent mutation; resolution is a
// single-threaded batch computation.
type Namespace struct {
	names  []string
	values map[string]document.Value
}

// NewNamespace creates an empty namespace.
func NewNamespace() *Namespace {
	return &Namespace{values: make(map[string]document.Value)}
}

// Define adds a name. It fails with ErrDuplicateName if the name exists.
func (ns *Namespace) Define(name string, v document.Value) error {
	if _, ok := ns.values[name]; ok {
		return fmt.Errorf("name %q: %w", name, ErrDuplicateName)
	}
	ns.names = append(ns.names, name)
	ns.values[name] = v
	return nil
}

// Get looks up a name.
func (ns *Namespace) Get(name string) (document.Value, bool) {
	v, ok := ns.values[name]
	return v, ok
}

// Has reports whether a name is defined.
func (ns *Namespace) Has(name string) bool {
	_, ok := ns.values[name]
	return ok
}

// Len returns the number of defined names.
func (ns *Namespace) Len() int { return len(ns.names) }

// Names returns all defined names in definition order. The slice is a copy.
func (ns *Namespace) Names() []string {
	out := make([]string, len(ns.names))
	copy(out, ns.names)
	return out
}

// Mapping renders the namespace as an ordered document mapping. Values are
// deep-copied so the caller cannot alias namespace state.
func (ns *Namespace) Mapping() *document.Mapping {
	m := document.NewMapping()
	for _, name := range ns.names {
		m.Set(name, ns.values[name].Copy())
	}
	return m
}
