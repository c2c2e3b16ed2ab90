// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeInput(t *testing.T, src string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "in.yaml")
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))
	return path
}

func TestResolveFile(t *testing.T) {
	path := writeInput(t, `
__prelude__:
    - a: 2
    - b: !eval "get.a * 3"
v: !get b
`)
	out, err := resolveFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(out), "v: 6")
	assert.Contains(t, string(out), "b: 6",
		"resolved prelude values are embedded in the output")
}

func TestResolveFileSameFragmentSibling(t *testing.T) {
	// Keys of one fragment only see strictly earlier fragments, so a
	// sibling reference inside the same mapping is rejected.
	path := writeInput(t, `
__prelude__:
    a: 2
    b: !eval "get.a * 3"
v: !get b
`)
	_, err := resolveFile(path)
	require.Error(t, err)
}

func TestResolveFileVerbatim(t *testing.T) {
	path := writeInput(t, "b:   2\na: !get b\n")
	verbatim = true
	defer func() { verbatim = false }()

	out, err := resolveFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(out), "!get b",
		"verbatim mode must not resolve tags")
}

func TestResolveFileCustomPreludeKey(t *testing.T) {
	path := writeInput(t, "params:\n    a: 1\nv: !get a\n")
	preludeKey = "params"
	defer func() { preludeKey = "" }()

	out, err := resolveFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(out), "v: 1")
}

func TestResolveFileErrors(t *testing.T) {
	_, err := resolveFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)

	path := writeInput(t, "v: !get nowhere\n")
	_, err = resolveFile(path)
	require.Error(t, err, "unknown reference must fail the resolve")
}
