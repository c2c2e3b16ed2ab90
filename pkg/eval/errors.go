// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package eval

import "errors"

// Sentinel errors for expression evaluation.
var (
	// ErrSyntax is returned for expressions that do not parse.
	ErrSyntax = errors.New("expression syntax error")

	// ErrType is returned when an operation is applied to operand types it
	// does not support.
	ErrType = errors.New("expression type error")

	// ErrUnknownName is returned for identifiers outside the sandbox
	// surface (the namespace handles, the np library, and the builtins).
	ErrUnknownName = errors.New("unknown name in expression")

	// ErrArgument is returned when a function receives the wrong number or
	// kind of arguments.
	ErrArgument = errors.New("bad function argument")

	// ErrIndex is returned for out-of-range or non-integer indexing.
	ErrIndex = errors.New("bad sequence index")
)
