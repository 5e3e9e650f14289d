// Copyright 2024, Shulhan <ms@kilabit.info>. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package asciidoc

import (
	"strconv"
	"strings"
)

// maxAttributeDepth bounds recursion when attribute values reference other
// attributes.
const maxAttributeDepth = 5

// placeholderMark is the rune framing a passthrough placeholder in
// preprocessed text.  It cannot be introduced by the source: the
// preprocessor rewrites any U+FFFD on input.
const placeholderMark = "���"

// Pass is one extracted passthrough: its original text, the substitution
// list a converter must apply to it, and its span in the original source.
type Pass struct {
	Text     string
	Subs     []Substitution
	Location Location
}

// ProcessedText is the result of preprocessing one inline context:
// the substituted text in which passthroughs are replaced by placeholders,
// the passthrough side table, and the source map context that maps byte
// offsets of Text back to the original source.
type ProcessedText struct {
	Text         string
	Passthroughs []*Pass
	Ctx          int

	smap *SourceMap
}

// mapOffset translate an offset in Text to the absolute resolved offset.
func (ptext *ProcessedText) mapOffset(pos int) int {
	return ptext.smap.MapOffset(ptext.Ctx, pos)
}

// locate build a Location for the half open range [start, end) of Text.
func (ptext *ProcessedText) locate(start, end int) Location {
	return ptext.smap.locate(ptext.mapOffset(start), ptext.mapOffset(end))
}

// preprocessor runs on each inline context (paragraph text, section title,
// cell content, list principal) before the inline grammar.  It extracts
// passthroughs and expands attribute references, keeping the source map
// current so every emitted node can still report original coordinates.
type preprocessor struct {
	store *AttributeStore
	smap  *SourceMap
	diags *diagnostics
}

// process scan text left to right, recognizing in priority order the
// triple plus passthrough, the pass macro, the double plus passthrough,
// the constrained single plus passthrough, and attribute references.
// base is the absolute offset of text in the resolved stream.
func (pre *preprocessor) process(text string, base int) (ptext *ProcessedText) {
	ptext = &ProcessedText{
		Ctx:  pre.smap.Context(base),
		smap: pre.smap,
	}

	var sb strings.Builder
	sb.Grow(len(text))

	x := 0
	for x < len(text) {
		c := text[x]

		if c == '\\' && x+1 < len(text) &&
			(text[x+1] == '{' || text[x+1] == '+') {
			// The backslash suppresses recognition and is
			// dropped.
			pre.smap.AddOffset(ptext.Ctx, sb.Len(), 1)
			sb.WriteByte(text[x+1])
			x += 2
			continue
		}

		if strings.HasPrefix(text[x:], "�") {
			// U+FFFD is reserved for placeholders; rewrite it so
			// the source cannot forge one.
			sb.WriteByte('?')
			x += len("�")
			continue
		}

		if strings.HasPrefix(text[x:], "+++") {
			if end := strings.Index(text[x+3:], "+++"); end >= 0 {
				content := text[x+3 : x+3+end]
				pre.extract(ptext, &sb, x, x+end+6, content, SubsNone)
				x += end + 6
				continue
			}
		}

		if strings.HasPrefix(text[x:], "pass:") {
			if n := pre.passMacro(ptext, &sb, text, x); n > 0 {
				x += n
				continue
			}
		}

		if strings.HasPrefix(text[x:], "++") && !strings.HasPrefix(text[x:], "+++") {
			if end := strings.Index(text[x+2:], "++"); end >= 0 {
				content := text[x+2 : x+2+end]
				pre.extract(ptext, &sb, x, x+end+4, content,
					[]Substitution{SubSpecialChars})
				x += end + 4
				continue
			}
		}

		if c == '+' {
			if n := pre.constrainedPlus(ptext, &sb, text, x); n > 0 {
				x += n
				continue
			}
		}

		if c == '{' {
			if n := pre.attributeRef(ptext, &sb, text, x, base); n > 0 {
				x += n
				continue
			}
		}

		sb.WriteByte(c)
		x++
	}

	ptext.Text = sb.String()
	return ptext
}

// extract record one passthrough spanning [start, end) of the context
// input and write its placeholder.
func (pre *preprocessor) extract(ptext *ProcessedText, sb *strings.Builder,
	start, end int, content string, subs []Substitution,
) {
	idx := len(ptext.Passthroughs)
	placeholder := placeholderMark + strconv.Itoa(idx) + placeholderMark

	pos := sb.Len()
	sb.WriteString(placeholder)

	pre.smap.AddOffset(ptext.Ctx, pos+len(placeholder), (end-start)-len(placeholder))
	pre.smap.AddOpaque(ptext.Ctx, pos, pos+len(placeholder))

	ptext.Passthroughs = append(ptext.Passthroughs, &Pass{
		Text:     content,
		Subs:     subs,
		Location: ptext.smap.locate(ptext.mapOffset(pos), ptext.mapOffset(pos)+(end-start)),
	})
}

// passMacro try to match "pass:subs[content]" at position x.
// It returns the number of input bytes consumed, or zero.
func (pre *preprocessor) passMacro(ptext *ProcessedText, sb *strings.Builder,
	text string, x int,
) int {
	rest := text[x+5:]
	lb := strings.IndexByte(rest, '[')
	if lb < 0 {
		return 0
	}
	subsSpec := rest[:lb]
	for y := 0; y < len(subsSpec); y++ {
		c := subsSpec[y]
		if !(c >= 'a' && c <= 'z') && c != ',' && c != '_' {
			return 0
		}
	}

	// Find the closing bracket, honoring "\]" escapes.
	var (
		content strings.Builder
		y       = lb + 1
		closed  bool
	)
	for y < len(rest) {
		if rest[y] == '\\' && y+1 < len(rest) && rest[y+1] == ']' {
			content.WriteByte(']')
			y += 2
			continue
		}
		if rest[y] == ']' {
			closed = true
			break
		}
		content.WriteByte(rest[y])
		y++
	}
	if !closed {
		return 0
	}

	var subs []Substitution
	if len(subsSpec) > 0 {
		for _, name := range strings.Split(subsSpec, ",") {
			subs = append(subs, parseSubstitution(name)...)
		}
	}

	ctext := content.String()
	for _, sub := range subs {
		if sub == SubAttributes {
			ctext = pre.store.expandValue(ctext, 1)
			break
		}
	}

	total := 5 + y + 1
	pre.extract(ptext, sb, x, x+total, ctext, subs)
	return total
}

// constrainedPlus try to match a single plus passthrough at position x.
// Constrained means the opening marker sits at a word boundary and the
// content has no spaces touching the markers.
func (pre *preprocessor) constrainedPlus(ptext *ProcessedText, sb *strings.Builder,
	text string, x int,
) int {
	if x > 0 && !isSpanBoundary(text[x-1]) {
		return 0
	}
	end := strings.IndexByte(text[x+1:], '+')
	if end < 0 {
		return 0
	}
	content := text[x+1 : x+1+end]
	if len(content) == 0 || strings.ContainsAny(content, "\n") {
		return 0
	}
	if content[0] == ' ' || content[len(content)-1] == ' ' {
		return 0
	}
	close := x + 1 + end
	if close+1 < len(text) && !isSpanBoundary(text[close+1]) {
		return 0
	}
	pre.extract(ptext, sb, x, close+1, content,
		[]Substitution{SubSpecialChars})
	return end + 2
}

// attributeRef try to match "{name}" at position x.  It returns the number
// of input bytes consumed, or zero when the braces are not a reference.
func (pre *preprocessor) attributeRef(ptext *ProcessedText, sb *strings.Builder,
	text string, x, base int,
) int {
	end := strings.IndexByte(text[x:], '}')
	if end < 0 {
		return 0
	}
	name := text[x+1 : x+end]
	if !isAttributeName(name) {
		return 0
	}

	value, ok := pre.store.Get(name)
	if !ok {
		missing, _ := pre.store.Get("attribute-missing")
		switch missing {
		case attrMissingDrop, attrMissingDropLine:
			// Remove the reference.  drop-line is handled the
			// same way: the rest of the line is kept.
			pre.smap.AddOffset(ptext.Ctx, sb.Len(), end+1)
			return end + 1
		default:
			file, line, col := pre.smap.MapPosition(ptext.Ctx, sb.Len())
			pre.diags.warn(DiagAttributeMissing,
				pre.smap.File(file), line, col,
				"skipping reference to missing attribute %q", name)
			return 0
		}
	}

	value = pre.store.expandValue(value, 1)

	pos := sb.Len()
	sb.WriteString(value)
	pre.smap.AddOffset(ptext.Ctx, pos+len(value), (end+1)-len(value))
	pre.smap.AddOpaque(ptext.Ctx, pos, pos+len(value))
	return end + 1
}

// isSpanBoundary report whether the byte may sit next to a constrained
// span marker: whitespace or one of a fixed set of ASCII punctuation.
func isSpanBoundary(c byte) bool {
	switch c {
	case ' ', '\t', '\n':
		return true
	case '.', ',', ';', '!', '?', ':', '"', '\'',
		'(', ')', '[', ']', '{', '}', '^', '~', '|':
		return true
	}
	return false
}
