// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package ux

import (
	"bytes"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// captureStdout runs f and returns what it wrote to stdout.
func captureStdout(t *testing.T, f func()) string {
	t.Helper()
	old := os.Stdout
	r, w, err := os.Pipe()
	require.NoError(t, err)
	os.Stdout = w

	f()

	require.NoError(t, w.Close())
	os.Stdout = old
	var buf bytes.Buffer
	_, err = io.Copy(&buf, r)
	require.NoError(t, err)
	return buf.String()
}

func TestPlainModeOutput(t *testing.T) {
	SetPlain(true)
	defer SetPlain(false)

	out := captureStdout(t, func() {
		Success("done")
		Info("detail")
		Summary(3, 0, 3)
		FileStatus("out/v_2.yaml", IconSuccess, "")
	})

	assert.Contains(t, out, "OK: done")
	assert.Contains(t, out, "detail")
	assert.Contains(t, out, "SUMMARY: written=3 collisions=0 total=3")
	assert.Contains(t, out, "out/v_2.yaml")
	assert.NotContains(t, out, "\x1b[", "plain mode must not emit ANSI escapes")
}

func TestPlainModeSuppressesDecoration(t *testing.T) {
	SetPlain(true)
	defer SetPlain(false)

	out := captureStdout(t, func() {
		Title("big header")
		Muted("aside")
	})
	assert.Empty(t, strings.TrimSpace(out),
		"titles and muted text are decoration only")
}

func TestStyledOutputCarriesText(t *testing.T) {
	SetPlain(false)
	out := captureStdout(t, func() {
		Success("wrote 4 files")
		FileStatus("out/v_2.yaml", IconSuccess, "written")
		Summary(4, 0, 4)
	})
	assert.Contains(t, out, "wrote 4 files")
	assert.Contains(t, out, "out/v_2.yaml")
	assert.Contains(t, out, "written")
}

func TestIconRender(t *testing.T) {
	for _, icon := range []Icon{IconSuccess, IconWarning, IconError, IconPending, IconArrow} {
		assert.Contains(t, icon.Render(), string(icon))
	}
}
