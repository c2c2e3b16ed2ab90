// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package sortnames orders sweep output filenames by the values embedded
// in their names.
//
// A sweep names a file from "<label>_<value>" fragments joined by "-",
// so a listing like rate_20-seed_3.yaml carries enough structure to sort
// by any label. Sorting is stable and multi-key: the labels are sorted
// last-to-first, so the first label in the order dominates.
package sortnames

import (
	"errors"
	"fmt"
	"hash/fnv"
	"path"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Sentinel errors for name sorting.
var (
	// ErrInconsistentKeys is returned when the filenames do not all carry
	// the same set of labels.
	ErrInconsistentKeys = errors.New("filenames carry different label sets")

	// ErrUnknownKey is returned when a first/last/reverse label does not
	// appear in the filenames.
	ErrUnknownKey = errors.New("label not present in filenames")

	// ErrDuplicateKey is returned when a label appears in both the first
	// and last lists.
	ErrDuplicateKey = errors.New("label listed in both first and last")
)

// fragment matches one "<label>_<value>" pair. Values are integers,
// floats (plain or scientific), or bare words.
var fragment = regexp.MustCompile(`([^-/]+?)_(\d+\.?\d*(?:e(?:\+|-|)\d+)?|[A-Za-z]+)(?:-|$|/)`)

// Spec controls the sort order.
type Spec struct {
	// First lists labels to sort by before all others, in the given order.
	First []string

	// Last lists labels to sort by after all others, in the given order.
	Last []string

	// Reverse toggles descending order for the listed labels. Under
	// ReverseAll a label listed here sorts ascending again.
	Reverse []string

	// ReverseAll sorts every label descending by default.
	ReverseAll bool
}

// Sort orders filenames by the values of their name fragments and returns
// the sorted copy. Every filename must carry the same labels; non-numeric
// values order by a stable hash rather than lexically, matching numeric
// values in behavior (arbitrary but consistent).
func Sort(filenames []string, spec Spec) ([]string, error) {
	if len(filenames) == 0 {
		return nil, nil
	}

	values := make(map[string]map[string]float64, len(filenames))
	for _, fn := range filenames {
		values[fn] = parseFragments(fn)
	}

	keySet := make(map[string]bool)
	count := -1
	for fn, vals := range values {
		if count >= 0 && len(vals) != count {
			return nil, fmt.Errorf("%q has %d labels, expected %d: %w",
				fn, len(vals), count, ErrInconsistentKeys)
		}
		count = len(vals)
		for k := range vals {
			keySet[k] = true
		}
	}
	if len(keySet) != count {
		return nil, fmt.Errorf("%d distinct labels across %d per filename: %w",
			len(keySet), count, ErrInconsistentKeys)
	}

	pinned := make(map[string]bool, len(spec.First)+len(spec.Last))
	for _, k := range append(append([]string{}, spec.First...), spec.Last...) {
		if pinned[k] {
			return nil, fmt.Errorf("%q: %w", k, ErrDuplicateKey)
		}
		pinned[k] = true
		if !keySet[k] {
			return nil, fmt.Errorf("%q: %w", k, ErrUnknownKey)
		}
	}

	descending := make(map[string]bool, len(keySet))
	for k := range keySet {
		descending[k] = spec.ReverseAll
	}
	for _, k := range spec.Reverse {
		if !keySet[k] {
			return nil, fmt.Errorf("%q: %w", k, ErrUnknownKey)
		}
		descending[k] = !descending[k]
	}

	// Natural order comes from the first filename; pinned labels move to
	// the front or back.
	var order []string
	for _, m := range fragment.FindAllStringSubmatch(stripExt(filenames[0]), -1) {
		if !pinned[m[1]] {
			order = append(order, m[1])
		}
	}
	order = append(append(append([]string{}, spec.First...), order...), spec.Last...)

	sorted := append([]string{}, filenames...)
	for i := len(order) - 1; i >= 0; i-- {
		key := order[i]
		desc := descending[key]
		sort.SliceStable(sorted, func(a, b int) bool {
			va, vb := values[sorted[a]][key], values[sorted[b]][key]
			if desc {
				return va > vb
			}
			return va < vb
		})
	}
	return sorted, nil
}

// stripExt removes a trailing file extension so the last fragment's value
// is not glued to it. Numeric "extensions" like the ".5" of rate_0.5 are
// part of the value and stay.
func stripExt(fn string) string {
	ext := path.Ext(fn)
	if ext == "" {
		return fn
	}
	if _, err := strconv.ParseFloat(ext[1:], 64); err == nil {
		return fn
	}
	return strings.TrimSuffix(fn, ext)
}

// parseFragments extracts the label/value pairs of one filename. A label
// appearing twice keeps its last value.
func parseFragments(fn string) map[string]float64 {
	out := make(map[string]float64)
	for _, m := range fragment.FindAllStringSubmatch(stripExt(fn), -1) {
		label, raw := m[1], m[2]
		if f, err := strconv.ParseFloat(raw, 64); err == nil {
			out[label] = f
		} else {
			out[label] = stableHash(raw)
		}
	}
	return out
}

// stableHash maps a non-numeric value onto the float domain. FNV-32 fits
// a float64 exactly, so distinct words never collapse by rounding.
func stableHash(s string) float64 {
	h := fnv.New32a()
	h.Write([]byte(s))
	return float64(h.Sum32())
}
