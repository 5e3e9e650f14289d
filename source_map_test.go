// Copyright 2024, Shulhan <ms@kilabit.info>. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package asciidoc

import (
	"testing"

	"github.com/shuLhan/share/lib/test"
)

func TestSourceMapOffsets(t *testing.T) {
	smap := newSourceMap()
	ctx := smap.Context(0)

	// Simulate "{v}" (3 bytes) expanded to "1.0" (3 bytes) at offset 8,
	// then "{title}" (7 bytes) expanded to "My Title" (8 bytes).
	//
	//	original:     "Version {v} of {title}"
	//	preprocessed: "Version 1.0 of My Title"
	smap.AddOffset(ctx, 8+3, 0)
	smap.AddOpaque(ctx, 8, 11)
	smap.AddOffset(ctx, 15+8, -1)
	smap.AddOpaque(ctx, 15, 23)

	cases := []struct {
		pos int
		exp int
	}{
		{0, 0},   // before any change
		{8, 8},   // start of the first expansion
		{9, 8},   // inside an expansion: left boundary
		{12, 12}, // " of " after the equal length expansion
		{15, 15}, // start of the second expansion
		{20, 15}, // inside the second expansion
	}
	for _, c := range cases {
		test.Assert(t, "MapOffset", c.exp, smap.MapOffset(ctx, c.pos), true)
	}
}

func TestSourceMapMergedOffsets(t *testing.T) {
	smap := newSourceMap()
	ctx := smap.Context(0)

	smap.AddOffset(ctx, 10, 2)
	smap.AddOffset(ctx, 10, 3)
	smap.AddOffset(ctx, 5, 1)

	test.Assert(t, "merged count", 2, len(smap.contexts[ctx].offsets), true)
	test.Assert(t, "cumulative", 10+1+5, smap.MapOffset(ctx, 10), true)
}

func TestSourceMapResolve(t *testing.T) {
	smap := newSourceMap()
	rootID := smap.AddFile("doc.adoc")
	incID := smap.AddFile("part.adoc")

	smap.addLine("first line", rootID, 1)
	smap.addLine("spliced", incID, 3)
	smap.addLine("last", rootID, 2)

	cases := []struct {
		desc    string
		off     int
		expFile int
		expLine int
		expCol  int
	}{
		{"start of file", 0, rootID, 1, 1},
		{"inside first line", 5, rootID, 1, 6},
		{"start of spliced line", 11, incID, 3, 1},
		{"inside spliced line", 14, incID, 3, 4},
		{"after include", 19, rootID, 2, 1},
	}
	for _, c := range cases {
		file, line, col := smap.resolve(c.off)
		test.Assert(t, c.desc+" file", c.expFile, file, true)
		test.Assert(t, c.desc+" line", c.expLine, line, true)
		test.Assert(t, c.desc+" col", c.expCol, col, true)
	}
}

func TestSourceMapAddFileDedup(t *testing.T) {
	smap := newSourceMap()
	a := smap.AddFile("a.adoc")
	b := smap.AddFile("b.adoc")
	test.Assert(t, "same id", a, smap.AddFile("a.adoc"), true)
	test.Assert(t, "distinct id", true, a != b, true)
}
