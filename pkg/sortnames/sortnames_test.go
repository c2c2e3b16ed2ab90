// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package sortnames

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSortSingleKey(t *testing.T) {
	names := []string{"v_30.yaml", "v_2.yaml", "v_10.yaml"}
	got, err := Sort(names, Spec{})
	require.NoError(t, err)
	assert.Equal(t, []string{"v_2.yaml", "v_10.yaml", "v_30.yaml"}, got,
		"values must sort numerically, not lexically")
	assert.Equal(t, []string{"v_30.yaml", "v_2.yaml", "v_10.yaml"}, names,
		"input slice must stay untouched")
}

func TestSortMultiKeyOrder(t *testing.T) {
	names := []string{
		"a_2-b_1.yaml",
		"a_1-b_2.yaml",
		"a_1-b_1.yaml",
		"a_2-b_2.yaml",
	}
	got, err := Sort(names, Spec{})
	require.NoError(t, err)
	assert.Equal(t, []string{
		"a_1-b_1.yaml",
		"a_1-b_2.yaml",
		"a_2-b_1.yaml",
		"a_2-b_2.yaml",
	}, got, "leftmost label in the name dominates")
}

func TestSortFirstPromotesKey(t *testing.T) {
	names := []string{
		"a_1-b_2.yaml",
		"a_2-b_1.yaml",
	}
	got, err := Sort(names, Spec{First: []string{"b"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"a_2-b_1.yaml", "a_1-b_2.yaml"}, got)
}

func TestSortLastDemotesKey(t *testing.T) {
	names := []string{
		"a_2-b_1.yaml",
		"a_1-b_2.yaml",
		"a_1-b_1.yaml",
	}
	got, err := Sort(names, Spec{Last: []string{"a"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"a_1-b_1.yaml", "a_2-b_1.yaml", "a_1-b_2.yaml"}, got)
}

func TestSortReverse(t *testing.T) {
	names := []string{"v_1.yaml", "v_3.yaml", "v_2.yaml"}

	got, err := Sort(names, Spec{Reverse: []string{"v"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"v_3.yaml", "v_2.yaml", "v_1.yaml"}, got)

	got, err = Sort(names, Spec{ReverseAll: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"v_3.yaml", "v_2.yaml", "v_1.yaml"}, got)

	// Reverse under ReverseAll toggles the key back to ascending.
	got, err = Sort(names, Spec{ReverseAll: true, Reverse: []string{"v"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"v_1.yaml", "v_2.yaml", "v_3.yaml"}, got)
}

func TestSortScientificNotation(t *testing.T) {
	names := []string{"r_1e+2.yaml", "r_5.yaml", "r_2.5e-1.yaml"}
	got, err := Sort(names, Spec{})
	require.NoError(t, err)
	assert.Equal(t, []string{"r_2.5e-1.yaml", "r_5.yaml", "r_1e+2.yaml"}, got)
}

func TestSortWordValuesAreStable(t *testing.T) {
	names := []string{"mode_fast-v_2.yaml", "mode_slow-v_1.yaml", "mode_fast-v_1.yaml"}
	first, err := Sort(names, Spec{First: []string{"mode"}})
	require.NoError(t, err)
	again, err := Sort(names, Spec{First: []string{"mode"}})
	require.NoError(t, err)
	assert.Equal(t, first, again, "word ordering must be deterministic")

	// Same mode groups together and sorts by v within the group.
	assert.Contains(t, [][]string{
		{"mode_fast-v_1.yaml", "mode_fast-v_2.yaml", "mode_slow-v_1.yaml"},
		{"mode_slow-v_1.yaml", "mode_fast-v_1.yaml", "mode_fast-v_2.yaml"},
	}, first)
}

func TestSortPathsWithFolders(t *testing.T) {
	names := []string{"a_2/b_1.yaml", "a_1/b_2.yaml"}
	got, err := Sort(names, Spec{})
	require.NoError(t, err)
	assert.Equal(t, []string{"a_1/b_2.yaml", "a_2/b_1.yaml"}, got,
		"folder separators must delimit fragments like dashes do")
}

func TestSortErrors(t *testing.T) {
	_, err := Sort([]string{"a_1.yaml", "a_1-b_2.yaml"}, Spec{})
	require.ErrorIs(t, err, ErrInconsistentKeys, "label count must agree")

	_, err = Sort([]string{"a_1.yaml", "b_2.yaml"}, Spec{})
	require.ErrorIs(t, err, ErrInconsistentKeys, "label identity must agree")

	_, err = Sort([]string{"a_1.yaml"}, Spec{First: []string{"zz"}})
	require.ErrorIs(t, err, ErrUnknownKey)

	_, err = Sort([]string{"a_1.yaml"}, Spec{Reverse: []string{"zz"}})
	require.ErrorIs(t, err, ErrUnknownKey)

	_, err = Sort([]string{"a_1-b_2.yaml"}, Spec{First: []string{"a"}, Last: []string{"a"}})
	require.ErrorIs(t, err, ErrDuplicateKey)
}

func TestSortEmpty(t *testing.T) {
	got, err := Sort(nil, Spec{})
	require.NoError(t, err)
	assert.Nil(t, got)
}
