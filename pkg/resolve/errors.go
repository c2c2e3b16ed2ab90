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

import "errors"

// Sentinel errors for document resolution.
var (
	// ErrUnknownReference is returned when a !get tag or an expression
	// names a namespace entry that is not defined at the time of lookup.
	// There is no deferred resolution: the prelude evaluates strictly
	// top to bottom and a miss is always fatal.
	ErrUnknownReference = errors.New("unknown namespace reference")

	// ErrDuplicateName is returned when a prelude fragment defines a name
	// that an earlier fragment already defined. Namespace entries are
	// write-once.
	ErrDuplicateName = errors.New("namespace name defined twice")

	// ErrBadPrelude is returned when the prelude section is neither a
	// mapping nor a sequence of mappings.
	ErrBadPrelude = errors.New("prelude must be a mapping or a sequence of mappings")
)
