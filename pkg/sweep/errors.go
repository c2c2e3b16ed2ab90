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
	"errors"
	"fmt"
)

// Sentinel errors for the sweep pipeline.
var (
	// ErrTypeMismatch is returned when a numeric transform (add, factor)
	// finds a non-numeric value at its target address, or is given a
	// non-numeric operand.
	ErrTypeMismatch = errors.New("transform requires a numeric value")

	// ErrTupleArity is returned when a range tuple's length differs from
	// the number of transforms in the range.
	ErrTupleArity = errors.New("range tuple arity does not match transform count")

	// ErrNoFileNamer is returned by Dump when no file namers were set;
	// without them every output would collapse onto one name.
	ErrNoFileNamer = errors.New("sweep has no file namers")

	// ErrFormat is returned when a namer's format verb cannot represent
	// the addressed value (e.g. "d" on a non-integral float).
	ErrFormat = errors.New("value does not fit namer format")

	// ErrNamingCollision is the classification target for
	// NamingCollisionError; use errors.Is against this.
	ErrNamingCollision = errors.New("naming collision between parameter sets")
)

// NamingCollisionError reports that distinct generated parameter sets
// mapped onto the same output path. Dump fails with it before writing any
// file when write_files is requested.
type NamingCollisionError struct {
	// Total is the number of generated parameter sets.
	Total int

	// Unique is the number of distinct output paths they produced.
	Unique int
}

// Error implements the error interface.
func (e *NamingCollisionError) Error() string {
	return fmt.Sprintf("%d parameter sets map to %d unique names (%d collisions)",
		e.Total, e.Unique, e.Total-e.Unique)
}

// Unwrap classifies the error as ErrNamingCollision.
func (e *NamingCollisionError) Unwrap() error { return ErrNamingCollision }
