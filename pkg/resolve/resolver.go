// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package resolve evaluates the prelude of a parameter document and
// rewrites every reference and expression tag in place.
//
// # Algorithm
//
// The prelude lives under the first matching top-level key (the default
// keys are "__prelude__" and the legacy "cache") and is an ordered
// sequence of mapping fragments (a bare mapping counts as one fragment).
// Fragments evaluate strictly in order. Every key of a fragment resolves
// against the namespace built from earlier fragments only — keys of the
// same fragment never see each other, so a sibling reference fails as an
// unknown reference rather than being silently order-dependent. After a
// fragment finishes, its results merge into the namespace; redefining a
// name is an error.
//
// The document body is then rebuilt in one pass with the complete, frozen
// namespace. Each tag is resolved exactly once; a nested tag marker inside
// a tag's own text is not expanded further.
//
// # Expression Sandbox
//
// Expression text is opaque to this package. An injected Evaluator turns
// "!eval" strings into values against a read-only namespace view. The eval
// package provides the default implementation; any sandbox satisfying the
// one-method interface can be wired in instead.
package resolve

import (
	"fmt"

	"github.com/AleutianAI/paramsweep/pkg/document"
)

// DefaultPreludeKeys are the top-level keys probed for the prelude
// section, in order. "cache" is the historical name.
var DefaultPreludeKeys = []string{"__prelude__", "cache"}

// Evaluator is the sandboxed expression capability.
//
// Evaluate must treat the namespace as read-only and expose every defined
// name to the expression. The resolver never inspects expression syntax.
type Evaluator interface {
	Evaluate(expr string, ns *Namespace) (document.Value, error)
}

// Resolver rewrites reference and expression tags across a document.
type Resolver struct {
	eval        Evaluator
	preludeKeys []string
}

// New creates a Resolver using the given expression sandbox and the
// default prelude keys.
func New(eval Evaluator) *Resolver {
	return &Resolver{eval: eval, preludeKeys: DefaultPreludeKeys}
}

// WithPreludeKeys overrides the probed prelude keys.
func (r *Resolver) WithPreludeKeys(keys ...string) *Resolver {
	r.preludeKeys = keys
	return r
}

// Resolve evaluates the prelude and rebuilds the document with every tag
// replaced by its value.
//
// The input document is not mutated. The returned document carries the
// resolved namespace re-embedded under the prelude key as a flat mapping,
// which makes re-resolving the output a no-op. The returned namespace is
// the complete prelude state.
func (r *Resolver) Resolve(doc *document.Mapping) (*document.Mapping, *Namespace, error) {
	ns := NewNamespace()

	preludeKey, fragments, err := r.preludeFragments(doc)
	if err != nil {
		return nil, nil, err
	}

	for i, frag := range fragments {
		if err := r.resolveFragment(frag, ns); err != nil {
			return nil, nil, fmt.Errorf("prelude fragment %d: %w", i, err)
		}
	}

	out := document.NewMapping()
	if preludeKey != "" {
		out.Set(preludeKey, ns.Mapping())
	}
	for _, key := range doc.Keys() {
		if key == preludeKey {
			continue
		}
		raw, _ := doc.Get(key)
		v, err := r.resolveValue(raw, ns)
		if err != nil {
			return nil, nil, fmt.Errorf("body key %q: %w", key, err)
		}
		out.Set(key, v)
	}
	return out, ns, nil
}

// preludeFragments locates the prelude section and normalizes it to a
// fragment list. A missing section yields no fragments and no key.
func (r *Resolver) preludeFragments(doc *document.Mapping) (string, []*document.Mapping, error) {
	for _, key := range r.preludeKeys {
		raw, ok := doc.Get(key)
		if !ok {
			continue
		}
		switch section := raw.(type) {
		case *document.Mapping:
			return key, []*document.Mapping{section}, nil
		case *document.Sequence:
			fragments := make([]*document.Mapping, 0, section.Len())
			for i := 0; i < section.Len(); i++ {
				frag, ok := section.At(i).(*document.Mapping)
				if !ok {
					return "", nil, fmt.Errorf("key %q, entry %d is %s: %w",
						key, i, section.At(i).Kind(), ErrBadPrelude)
				}
				fragments = append(fragments, frag)
			}
			return key, fragments, nil
		default:
			return "", nil, fmt.Errorf("key %q is %s: %w", key, raw.Kind(), ErrBadPrelude)
		}
	}
	return "", nil, nil
}

// resolveFragment evaluates one fragment against the namespace as it
// stood before the fragment, then merges the results.
func (r *Resolver) resolveFragment(frag *document.Mapping, ns *Namespace) error {
	keys := frag.Keys()
	staged := make([]document.Value, len(keys))
	for i, key := range keys {
		raw, _ := frag.Get(key)
		v, err := r.resolveValue(raw, ns)
		if err != nil {
			return fmt.Errorf("entry %q: %w", key, err)
		}
		staged[i] = v
	}
	for i, key := range keys {
		if err := ns.Define(key, staged[i]); err != nil {
			return err
		}
	}
	return nil
}

// resolveValue rebuilds one value with all tags replaced. It never
// mutates ns.
func (r *Resolver) resolveValue(v document.Value, ns *Namespace) (document.Value, error) {
	switch val := v.(type) {
	case document.GetTag:
		resolved, ok := ns.Get(val.Name)
		if !ok {
			return nil, fmt.Errorf("!get %q: %w", val.Name, ErrUnknownReference)
		}
		return resolved.Copy(), nil
	case document.EvalTag:
		resolved, err := r.eval.Evaluate(val.Expr, ns)
		if err != nil {
			return nil, fmt.Errorf("!eval %q: %w", val.Expr, err)
		}
		return resolved, nil
	case *document.Mapping:
		out := document.NewMapping()
		for _, key := range val.Keys() {
			child, _ := val.Get(key)
			cv, err := r.resolveValue(child, ns)
			if err != nil {
				return nil, err
			}
			out.Set(key, cv)
		}
		return out, nil
	case *document.Sequence:
		out := document.NewSequence()
		for i := 0; i < val.Len(); i++ {
			cv, err := r.resolveValue(val.At(i), ns)
			if err != nil {
				return nil, err
			}
			out.Append(cv)
		}
		return out, nil
	default:
		return v.Copy(), nil
	}
}
