// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package sweep

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/paramsweep/pkg/address"
	"github.com/AleutianAI/paramsweep/pkg/document"
	"github.com/AleutianAI/paramsweep/pkg/eval"
	"github.com/AleutianAI/paramsweep/pkg/resolve"
)

func baseSet(t *testing.T, yamlSrc string) *ParameterSet {
	t.Helper()
	doc, err := document.DecodeMapping([]byte(yamlSrc))
	require.NoError(t, err, "test document must decode")
	return NewParameterSet(doc)
}

func mustGet(t *testing.T, ps *ParameterSet, path string) document.Value {
	t.Helper()
	v, err := ps.GetPath(path)
	require.NoError(t, err, "value at %q must exist", path)
	return v
}

func TestParameterSetCopyIsIndependent(t *testing.T) {
	ps := baseSet(t, "a: 1\nnested:\n    b: 2\n")
	cp := ps.Copy()

	require.NoError(t, cp.Set(address.Parse("nested/b"), document.Int(99)))
	require.NoError(t, cp.Set(address.Parse("fresh/leaf"), document.String("x")))

	assert.Equal(t, document.Int(2), mustGet(t, ps, "nested/b"),
		"original must not see the copy's write")
	assert.False(t, ps.Has(address.Parse("fresh/leaf")),
		"original must not grow keys created on the copy")
	assert.Equal(t, document.Int(99), mustGet(t, cp, "nested/b"))
}

func TestLoadRecordsMetainfo(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "base.yaml")
	src := "__prelude__:\n    a: 2\nv: !get a\n"
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))

	ps, err := Load(path, resolve.New(eval.New()))
	require.NoError(t, err)

	assert.Equal(t, document.Int(2), mustGet(t, ps, "v"), "tag must resolve on load")
	assert.Equal(t, document.String(path), mustGet(t, ps, "_metainfo/original_file"))

	require.NoError(t, NewSetValue("v", document.Int(7)).Apply(ps))
	log := mustGet(t, ps, "_metainfo/transforms")
	seq, ok := log.(*document.Sequence)
	require.True(t, ok, "transform log must be a sequence")
	require.Equal(t, 1, seq.Len())
	assert.Equal(t, document.String("set v = 7"), seq.At(0))
}

func TestSetValue(t *testing.T) {
	ps := baseSet(t, "a: 1\n")
	tr := NewSetValue("deep/leaf", document.String("hello"))

	require.NoError(t, tr.Apply(ps))
	assert.Equal(t, document.String("hello"), mustGet(t, ps, "deep/leaf"),
		"set must create intermediate mappings")
	assert.Equal(t, document.Int(1), mustGet(t, ps, "a"))
}

func TestAddValue(t *testing.T) {
	ps := baseSet(t, "n: 10\nf: 1.5\n")

	require.NoError(t, NewAddValue("n", document.Int(5)).Apply(ps))
	assert.Equal(t, document.Int(15), mustGet(t, ps, "n"),
		"int plus int must stay an integer")

	require.NoError(t, NewAddValue("f", document.Int(1)).Apply(ps))
	assert.Equal(t, document.Float(2.5), mustGet(t, ps, "f"),
		"mixed addition must widen to float")
}

func TestAddValueFrom(t *testing.T) {
	ps := baseSet(t, "src: 100\n")
	tr := NewAddValue("derived", document.Int(1)).From("src")

	require.NoError(t, tr.Apply(ps))
	assert.Equal(t, document.Int(101), mustGet(t, ps, "derived"))
	assert.Equal(t, document.Int(100), mustGet(t, ps, "src"),
		"source must be left untouched")
}

func TestFactorValue(t *testing.T) {
	ps := baseSet(t, "v: 10\n")
	require.NoError(t, NewFactorValue("v", document.Int(3)).Apply(ps))
	assert.Equal(t, document.Int(30), mustGet(t, ps, "v"))

	require.NoError(t, NewFactorValue("v", document.Float(0.5)).Apply(ps))
	assert.Equal(t, document.Float(15), mustGet(t, ps, "v"))
}

func TestNumericTransformTypeMismatch(t *testing.T) {
	ps := baseSet(t, "s: hello\nn: 1\n")

	err := NewAddValue("s", document.Int(1)).Apply(ps)
	require.ErrorIs(t, err, ErrTypeMismatch, "adding to a string must fail")

	err = NewFactorValue("n", document.String("x")).Apply(ps)
	require.ErrorIs(t, err, ErrTypeMismatch, "non-numeric operand must fail")

	assert.Equal(t, document.Int(1), mustGet(t, ps, "n"),
		"failed transform must not write")
}

func TestCopyValue(t *testing.T) {
	ps := baseSet(t, "src:\n    inner: 1\n")
	require.NoError(t, NewCopyValue("src", "dst").Apply(ps))

	require.NoError(t, ps.Set(address.Parse("dst/inner"), document.Int(2)))
	assert.Equal(t, document.Int(1), mustGet(t, ps, "src/inner"),
		"copy must be deep, not aliased")
}

func TestDeleteValues(t *testing.T) {
	ps := baseSet(t, "a: 1\nb: 2\n")
	tr := NewDeleteValues("a", "missing", "b")

	require.NoError(t, tr.Apply(ps), "absent paths must be skipped")
	assert.False(t, ps.Has(address.Parse("a")))
	assert.False(t, ps.Has(address.Parse("b")))
}

func TestRangeExpand(t *testing.T) {
	ps := baseSet(t, "v: 10\n")
	r := NewSingleRange(NewFactorValue("v", nil),
		document.Int(2), document.Int(3))

	out, err := r.Expand(ps)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, document.Int(20), mustGet(t, out[0], "v"))
	assert.Equal(t, document.Int(30), mustGet(t, out[1], "v"))
	assert.Equal(t, document.Int(10), mustGet(t, ps, "v"),
		"expansion must not touch the input set")
}

func TestRangeTupleArity(t *testing.T) {
	_, err := NewRange(
		[]Transform{NewSetValue("a", nil), NewSetValue("b", nil)},
		[]document.Value{document.Int(1)},
	)
	require.ErrorIs(t, err, ErrTupleArity)
}

func TestRangeMultiTransform(t *testing.T) {
	ps := baseSet(t, "a: 0\nb: 0\n")
	r, err := NewRange(
		[]Transform{NewSetValue("a", nil), NewSetValue("b", nil)},
		[]document.Value{document.Int(1), document.Int(10)},
		[]document.Value{document.Int(2), document.Int(20)},
	)
	require.NoError(t, err)

	out, err := r.Expand(ps)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, document.Int(1), mustGet(t, out[0], "a"))
	assert.Equal(t, document.Int(10), mustGet(t, out[0], "b"))
	assert.Equal(t, document.Int(2), mustGet(t, out[1], "a"))
	assert.Equal(t, document.Int(20), mustGet(t, out[1], "b"))
}

func TestGenerateFanOutAndFilter(t *testing.T) {
	ps := baseSet(t, "x: 0\ny: 0\n")
	sw := New().
		Add(NewSingleRange(NewSetValue("x", nil),
			document.Int(1), document.Int(2))).
		Add(NewSingleRange(NewSetValue("y", nil),
			document.Int(1), document.Int(2), document.Int(3))).
		AddFilter(func(ps *ParameterSet) (bool, error) {
			y, err := ps.Get(address.Parse("y"))
			if err != nil {
				return false, err
			}
			return y != document.Int(3), nil
		})

	out, err := sw.Generate(ps)
	require.NoError(t, err)
	assert.Len(t, out, 4, "two ranges fan out 2x3, filter drops y=3")
}

func TestGenerateStageOrder(t *testing.T) {
	// The filter sits between the two ranges, so it prunes before the
	// second fan-out and never sees the second range's output.
	ps := baseSet(t, "x: 0\n")
	sw := New().
		Add(NewSingleRange(NewSetValue("x", nil),
			document.Int(1), document.Int(2), document.Int(3), document.Int(4))).
		AddFilter(func(ps *ParameterSet) (bool, error) {
			x, _ := ps.Get(address.Parse("x"))
			return x != document.Int(2), nil
		}).
		Add(NewSingleRange(NewSetValue("tag", nil),
			document.String("a"), document.String("b")))

	out, err := sw.Generate(ps)
	require.NoError(t, err)
	assert.Len(t, out, 6, "3 survivors times 2 tags")
}

func TestGenerateNoStages(t *testing.T) {
	ps := baseSet(t, "a: 1\n")
	out, err := New().Generate(ps)
	require.NoError(t, err)
	require.Len(t, out, 1)
}

func TestFormattedNamer(t *testing.T) {
	ps := baseSet(t, "rate: 0.25\ncount: 7\nname: run\n")

	cases := []struct {
		path, label, verb string
		want              string
	}{
		{"count", "n", "d", "n_7"},
		{"count", "n", "03d", "n_007"},
		{"rate", "r", ".2f", "r_0.25"},
		{"rate", "r", "g", "r_0.25"},
		{"count", "c", "g", "c_7"},
		{"name", "id", "s", "id_run"},
	}
	for _, tc := range cases {
		got, err := NewFormatted(tc.path, tc.label, tc.verb).Format(ps)
		require.NoError(t, err, "verb %q", tc.verb)
		assert.Equal(t, tc.want, got)
	}

	_, err := NewFormatted("rate", "r", "d").Format(ps)
	require.ErrorIs(t, err, ErrFormat, "fractional float must not format as d")

	_, err = NewFormatted("missing", "m", "d").Format(ps)
	require.ErrorIs(t, err, address.ErrNotFound, "missing address is a hard error")
}

func TestOutputPath(t *testing.T) {
	ps := baseSet(t, "a: 1\nb: 2.5\n")
	sw := New().
		AddNamersFolder(NewFormatted("a", "a", "d")).
		SetNamersFile(NewFormatted("a", "a", "d"), NewFormatted("b", "b", "g"))

	path, err := sw.OutputPath(ps)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("a_1", "a_1-b_2.5.yaml"), path)
}

func TestOutputPathRequiresFileNamer(t *testing.T) {
	_, err := New().OutputPath(baseSet(t, "a: 1\n"))
	require.ErrorIs(t, err, ErrNoFileNamer)
}

func TestDumpWritesUniqueSets(t *testing.T) {
	ps := baseSet(t, "v: 10\n")
	sw := New().
		Add(NewSingleRange(NewFactorValue("v", nil),
			document.Int(2), document.Int(3))).
		SetNamersFile(NewFormatted("v", "v", "d"))

	files := map[string][]byte{}
	report, err := sw.Dump(ps, DumpOptions{
		Basefolder: "out",
		WriteFiles: true,
		Write: func(path string, data []byte) error {
			files[path] = data
			return nil
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, report.Total)
	assert.Equal(t, 2, report.Unique)
	assert.Zero(t, report.Collisions())

	require.Contains(t, files, filepath.Join("out", "v_20.yaml"))
	require.Contains(t, files, filepath.Join("out", "v_30.yaml"))

	got, err := document.DecodeMapping(files[filepath.Join("out", "v_20.yaml")])
	require.NoError(t, err)
	v, _ := got.Get("v")
	assert.Equal(t, document.Int(20), v)
}

func TestDumpCollisionWritesNothing(t *testing.T) {
	ps := baseSet(t, "v: 10\nother: 0\n")
	// Both derived sets keep v=10, so both map onto v_10.yaml.
	sw := New().
		Add(NewSingleRange(NewSetValue("other", nil),
			document.Int(1), document.Int(2))).
		SetNamersFile(NewFormatted("v", "v", "d"))

	writes := 0
	report, err := sw.Dump(ps, DumpOptions{
		WriteFiles: true,
		Write: func(string, []byte) error {
			writes++
			return nil
		},
	})
	require.ErrorIs(t, err, ErrNamingCollision)
	assert.Zero(t, writes, "collision must be detected before any write")

	var collision *NamingCollisionError
	require.ErrorAs(t, err, &collision)
	assert.Equal(t, 2, collision.Total)
	assert.Equal(t, 1, collision.Unique)
	assert.Equal(t, 2, report.Total)
	assert.Equal(t, 1, report.Unique)
}

func TestDumpDryRun(t *testing.T) {
	ps := baseSet(t, "v: 10\n")
	sw := New().
		Add(NewSingleRange(NewFactorValue("v", nil),
			document.Int(2), document.Int(3))).
		SetNamersFile(NewFormatted("v", "v", "d"))

	report, err := sw.Dump(ps, DumpOptions{Basefolder: "out"})
	require.NoError(t, err)
	require.Len(t, report.Outcomes, 2)
	for _, o := range report.Outcomes {
		assert.Equal(t, StatusPlanned, o.Status)
	}
	assert.Equal(t, filepath.Join("out", "v_20.yaml"), report.Outcomes[0].Path)
}

func TestDumpToDisk(t *testing.T) {
	dir := t.TempDir()
	ps := baseSet(t, "v: 10\n")
	sw := New().
		AddNamersFolder(NewFormatted("v", "v", "d")).
		Add(NewSingleRange(NewFactorValue("v", nil), document.Int(2))).
		SetNamersFile(NewFormatted("v", "v", "d"))

	report, err := sw.Dump(ps, DumpOptions{Basefolder: dir, WriteFiles: true})
	require.NoError(t, err)
	require.Len(t, report.Outcomes, 1)
	assert.Equal(t, StatusWritten, report.Outcomes[0].Status)

	data, err := os.ReadFile(filepath.Join(dir, "v_20", "v_20.yaml"))
	require.NoError(t, err, "default writer must create the folder level")
	assert.Contains(t, string(data), "v: 20")
}

func TestNamingIsDeterministic(t *testing.T) {
	ps := baseSet(t, "a: 3\nb: 1.5\n")
	n := Join([]Namer{
		NewFormatted("a", "a", "d"),
		NewFormatted("b", "b", "g"),
	}, FragmentSep)

	first, err := n.Format(ps)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := n.Format(ps)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
	assert.Equal(t, "a_3-b_1.5", first)
}
