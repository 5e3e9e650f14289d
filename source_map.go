// Copyright 2024, Shulhan <ms@kilabit.info>. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package asciidoc

import "sort"

// Position is a line and column, both 1-based, in one source file.
type Position struct {
	Line   int
	Column int
}

// Location is the source range of a node, in coordinates of the original
// file identified by File (an index into the document's SourceMap files).
type Location struct {
	File     int
	AbsStart int
	AbsEnd   int
	Start    Position
	End      Position
}

// sourceLine is one line of the resolved stream with its origin.
type sourceLine struct {
	text string
	file int // index into SourceMap.files
	line int // 1-based line number in the original file
}

// mapOffset is one step of the piecewise linear mapping from preprocessed
// byte offsets back to resolved byte offsets: all preprocessed positions at
// or after pos are shifted by delta.
type mapOffset struct {
	pos   int
	delta int
}

// contextMap is the byte level mapping of one preprocessed inline context:
// the absolute offset where the context starts in the resolved stream, the
// shifts introduced by attribute expansion and passthrough extraction, and
// the opaque ranges (expansions and placeholders) whose interior maps to
// their left boundary.
type contextMap struct {
	base    int
	offsets []mapOffset
	opaques [][2]int
}

// SourceMap maps positions in preprocessed text back to the original
// source.  It composes three transforms, applied in this order: include
// splicing (line level), attribute expansion, and passthrough extraction
// (both byte level, per inline context).
//
// The map is total: every byte of every preprocessed context has an
// answer.
type SourceMap struct {
	files []string

	// lines describe the resolved stream: for each line, the file it
	// was spliced from and its line number there.
	lines []sourceLine

	// lineStarts[x] is the byte offset in the resolved stream where
	// line x begins.
	lineStarts []int

	contexts []*contextMap
}

func newSourceMap() *SourceMap {
	return &SourceMap{}
}

// AddFile register a file and return its identifier.
func (smap *SourceMap) AddFile(path string) int {
	for x, have := range smap.files {
		if have == path {
			return x
		}
	}
	smap.files = append(smap.files, path)
	return len(smap.files) - 1
}

// File return the path registered for the identifier.
func (smap *SourceMap) File(id int) string {
	if id < 0 || id >= len(smap.files) {
		return ""
	}
	return smap.files[id]
}

// addLine append one resolved line and keep the byte index current.
func (smap *SourceMap) addLine(text string, file, line int) {
	var start int
	if n := len(smap.lines); n > 0 {
		start = smap.lineStarts[n-1] + len(smap.lines[n-1].text) + 1
	}
	smap.lines = append(smap.lines, sourceLine{text: text, file: file, line: line})
	smap.lineStarts = append(smap.lineStarts, start)
}

// Context register a preprocessed inline context that starts at the given
// absolute offset of the resolved stream, and return its identifier.
// AST nodes built from the context keep this identifier.
func (smap *SourceMap) Context(base int) int {
	smap.contexts = append(smap.contexts, &contextMap{base: base})
	return len(smap.contexts) - 1
}

// AddOffset record that preprocessed positions of the context at or after
// pos map delta bytes away in the resolved stream.  Offsets at the same
// position accumulate; the list stays sorted and merged.
func (smap *SourceMap) AddOffset(ctx, pos, delta int) {
	cmap := smap.contexts[ctx]
	cmap.offsets = append(cmap.offsets, mapOffset{pos: pos, delta: delta})
	sort.Slice(cmap.offsets, func(i, j int) bool {
		return cmap.offsets[i].pos < cmap.offsets[j].pos
	})

	var merged []mapOffset
	for _, off := range cmap.offsets {
		n := len(merged)
		if n > 0 && merged[n-1].pos == off.pos {
			merged[n-1].delta += off.delta
			continue
		}
		merged = append(merged, off)
	}
	cmap.offsets = merged
}

// AddOpaque record that the half open preprocessed range [start, end) of
// the context is opaque: every position inside maps to the range's left
// boundary.  Expansion sites and passthrough placeholders are opaque.
func (smap *SourceMap) AddOpaque(ctx, start, end int) {
	cmap := smap.contexts[ctx]
	cmap.opaques = append(cmap.opaques, [2]int{start, end})
}

// MapOffset translate a byte offset in the preprocessed text of the
// context to the absolute byte offset in the resolved stream.
func (smap *SourceMap) MapOffset(ctx, pos int) int {
	cmap := smap.contexts[ctx]
	for _, opaque := range cmap.opaques {
		if pos > opaque[0] && pos < opaque[1] {
			pos = opaque[0]
			break
		}
	}
	var delta int
	for _, off := range cmap.offsets {
		if pos >= off.pos {
			delta += off.delta
		} else {
			break
		}
	}
	orig := cmap.base + pos + delta
	if orig < 0 {
		orig = 0
	}
	return orig
}

// MapPosition translate a byte offset in the preprocessed text of the
// context all the way back to a file identifier, line, and column in the
// original source.
func (smap *SourceMap) MapPosition(ctx, pos int) (file, line, col int) {
	return smap.resolve(smap.MapOffset(ctx, pos))
}

// resolve translate a byte offset of the resolved stream into original
// file coordinates using the line table.
func (smap *SourceMap) resolve(off int) (file, line, col int) {
	if len(smap.lines) == 0 {
		return 0, 1, off + 1
	}
	x := sort.Search(len(smap.lineStarts), func(i int) bool {
		return smap.lineStarts[i] > off
	}) - 1
	if x < 0 {
		x = 0
	}
	src := smap.lines[x]
	col = off - smap.lineStarts[x] + 1
	if max := len(src.text) + 1; col > max {
		col = max
	}
	return src.file, src.line, col
}

// locate build a Location from two absolute byte offsets of the resolved
// stream.
func (smap *SourceMap) locate(start, end int) (loc Location) {
	loc.AbsStart = start
	loc.AbsEnd = end
	loc.File, loc.Start.Line, loc.Start.Column = smap.resolve(start)
	_, loc.End.Line, loc.End.Column = smap.resolve(end)
	return loc
}

// lineStart return the absolute byte offset where resolved line x begins.
func (smap *SourceMap) lineStart(x int) int {
	if x < 0 || x >= len(smap.lineStarts) {
		if n := len(smap.lines); n > 0 {
			return smap.lineStarts[n-1] + len(smap.lines[n-1].text) + 1
		}
		return 0
	}
	return smap.lineStarts[x]
}
