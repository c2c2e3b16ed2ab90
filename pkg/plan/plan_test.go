// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package plan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/paramsweep/pkg/address"
	"github.com/AleutianAI/paramsweep/pkg/document"
	"github.com/AleutianAI/paramsweep/pkg/sweep"
)

const samplePlan = `
out: sweeps
stages:
    - range:
          transforms:
              - kind: factor
                path: rate
          tuples:
              - [2]
              - [4]
              - [8]
    - filter:
          path: rate
          max: 50
folders:
    - [{path: rate, label: rate, format: d}]
file:
    - {path: rate, label: rate, format: d}
    - {path: seed, label: seed, format: d}
`

func compileSample(t *testing.T, src string) *sweep.Sweep {
	t.Helper()
	p, err := Parse([]byte(src))
	require.NoError(t, err)
	sw, err := p.Compile()
	require.NoError(t, err)
	return sw
}

func baseSet(t *testing.T, yamlSrc string) *sweep.ParameterSet {
	t.Helper()
	doc, err := document.DecodeMapping([]byte(yamlSrc))
	require.NoError(t, err)
	return sweep.NewParameterSet(doc)
}

func TestParseAndCompile(t *testing.T) {
	sw := compileSample(t, samplePlan)
	out, err := sw.Generate(baseSet(t, "rate: 10\nseed: 1\n"))
	require.NoError(t, err)

	// rate 10 fans to 20, 40, 80; the filter keeps <= 50.
	require.Len(t, out, 2)
	rates := []document.Value{}
	for _, ps := range out {
		v, err := ps.Get(address.Parse("rate"))
		require.NoError(t, err)
		rates = append(rates, v)
	}
	assert.Equal(t, []document.Value{document.Int(20), document.Int(40)}, rates)

	path, err := sw.OutputPath(out[0])
	require.NoError(t, err)
	assert.Equal(t, "rate_20/rate_20-seed_1.yaml", path)
}

func TestParseKeepsOut(t *testing.T) {
	p, err := Parse([]byte(samplePlan))
	require.NoError(t, err)
	assert.Equal(t, "sweeps", p.Out)
}

func TestTransformStage(t *testing.T) {
	sw := compileSample(t, `
stages:
    - transform:
          kind: set
          path: mode
          value: fast
    - transform:
          kind: add
          path: count
          value: 5
file:
    - {path: mode, label: mode, format: s}
`)
	out, err := sw.Generate(baseSet(t, "mode: slow\ncount: 1\n"))
	require.NoError(t, err)
	require.Len(t, out, 1)

	v, err := out[0].Get(address.Parse("mode"))
	require.NoError(t, err)
	assert.Equal(t, document.String("fast"), v)
	v, err = out[0].Get(address.Parse("count"))
	require.NoError(t, err)
	assert.Equal(t, document.Int(6), v)
}

func TestCopyAndDeleteStages(t *testing.T) {
	sw := compileSample(t, `
stages:
    - transform:
          kind: copy
          from: template
          path: live
    - transform:
          kind: delete
          paths: [template, scratch]
file:
    - {path: live/a, label: a, format: d}
`)
	out, err := sw.Generate(baseSet(t, "template:\n    a: 1\nscratch: x\n"))
	require.NoError(t, err)
	require.Len(t, out, 1)

	v, err := out[0].Get(address.Parse("live/a"))
	require.NoError(t, err)
	assert.Equal(t, document.Int(1), v)
	_, err = out[0].Get(address.Parse("template"))
	assert.Error(t, err, "delete stage must remove the template")
}

func TestEqualsFilter(t *testing.T) {
	sw := compileSample(t, `
stages:
    - range:
          transforms:
              - kind: set
                path: mode
          tuples:
              - [fast]
              - [slow]
    - filter:
          path: mode
          equals: fast
file:
    - {path: mode, label: mode, format: s}
`)
	out, err := sw.Generate(baseSet(t, "mode: none\n"))
	require.NoError(t, err)
	require.Len(t, out, 1)
}

func TestRejectsInvalidPlans(t *testing.T) {
	cases := []struct {
		name string
		src  string
	}{
		{"missing file namers", "stages: []\n"},
		{"empty stage", "stages:\n    - {}\nfile:\n    - {path: a, label: a}\n"},
		{"two stage kinds", `
stages:
    - transform: {kind: set, path: a, value: 1}
      filter: {path: a, min: 0}
file:
    - {path: a, label: a}
`},
		{"bad transform kind", `
stages:
    - transform: {kind: divide, path: a, value: 1}
file:
    - {path: a, label: a}
`},
		{"filter without bounds", `
stages:
    - filter: {path: a}
file:
    - {path: a, label: a}
`},
		{"standalone transform without value", `
stages:
    - transform: {kind: set, path: a}
file:
    - {path: a, label: a}
`},
		{"tuple arity mismatch", `
stages:
    - range:
          transforms:
              - {kind: set, path: a}
          tuples:
              - [1, 2]
file:
    - {path: a, label: a}
`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p, err := Parse([]byte(tc.src))
			if err == nil {
				_, err = p.Compile()
			}
			require.Error(t, err)
		})
	}
}
