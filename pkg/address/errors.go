// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package address

import "errors"

// Sentinel errors for address resolution. All errors returned by Get, Set,
// and Delete wrap one of these together with the address and failing step.
var (
	// ErrNotFound is returned when a mapping key named by a step is absent.
	ErrNotFound = errors.New("address not found")

	// ErrTypeMismatch is returned when a step does not fit the container it
	// lands on: an index step on a mapping, a key step on a sequence, or
	// any step on a scalar.
	ErrTypeMismatch = errors.New("address step does not match container type")

	// ErrIndexOutOfRange is returned when an index step points past the end
	// of a sequence. Sequences are never grown, in any mode.
	ErrIndexOutOfRange = errors.New("sequence index out of range")

	// ErrRootWrite is returned when writing or deleting the empty address.
	ErrRootWrite = errors.New("cannot write to the document root")
)
