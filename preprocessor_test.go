// Copyright 2024, Shulhan <ms@kilabit.info>. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package asciidoc

import (
	"testing"

	"github.com/shuLhan/share/lib/test"
)

func newTestPreprocessor() (*preprocessor, *diagnostics) {
	diags := newDiagnostics(false)
	pre := &preprocessor{
		store: newAttributeStore(),
		smap:  newSourceMap(),
		diags: diags,
	}
	return pre, diags
}

func placeholder(idx int) string {
	return placeholderMark + string(rune('0'+idx)) + placeholderMark
}

func TestPreprocessPassthroughs(t *testing.T) {
	pre, _ := newTestPreprocessor()
	pre.store.Set("meh", "1.0")

	input := "1 +2+, ++3++ {meh} and +++4+++ are all numbers."
	ptext := pre.process(input, 0)

	exp := "1 " + placeholder(0) + ", " + placeholder(1) + " 1.0 and " +
		placeholder(2) + " are all numbers."
	test.Assert(t, "substituted text", exp, ptext.Text, true)
	test.Assert(t, "passthrough count", 3, len(ptext.Passthroughs), true)

	test.Assert(t, "pass 0 text", "2", ptext.Passthroughs[0].Text, true)
	test.Assert(t, "pass 1 text", "3", ptext.Passthroughs[1].Text, true)
	test.Assert(t, "pass 2 text", "4", ptext.Passthroughs[2].Text, true)

	// Single and double plus passthroughs carry specialchars; triple
	// plus carries the empty substitution list.
	test.Assert(t, "pass 0 subs",
		[]Substitution{SubSpecialChars}, ptext.Passthroughs[0].Subs, true)
	test.Assert(t, "pass 2 subs", 0, len(ptext.Passthroughs[2].Subs), true)

	// The first Raw maps to the original offset of the opening "+" of
	// "+2+".
	test.Assert(t, "pass 0 abs start", 2,
		ptext.Passthroughs[0].Location.AbsStart, true)

	// The expanded "{meh}" is opaque: positions inside "1.0" map to the
	// "{".
	attrOut := len("1 ") + len(placeholder(0)) + len(", ") +
		len(placeholder(1)) + len(" ")
	test.Assert(t, "expansion start", 13, ptext.mapOffset(attrOut), true)
	test.Assert(t, "inside expansion", 13, ptext.mapOffset(attrOut+2), true)
	// The " " after the expansion maps past the whole "{meh}".
	test.Assert(t, "after expansion", 18, ptext.mapOffset(attrOut+3), true)
}

func TestPreprocessPassMacro(t *testing.T) {
	pre, _ := newTestPreprocessor()
	pre.store.Set("docname", "test-doc")

	input := "The text pass:q,a[<u>_{docname}_</u>] is underlined."
	ptext := pre.process(input, 0)

	test.Assert(t, "substituted text",
		"The text "+placeholder(0)+" is underlined.", ptext.Text, true)
	test.Assert(t, "count", 1, len(ptext.Passthroughs), true)

	pass := ptext.Passthroughs[0]
	// The "a" substitution expands attribute references inside the
	// content at extraction time.
	test.Assert(t, "content", "<u>_test-doc_</u>", pass.Text, true)
	test.Assert(t, "subs",
		[]Substitution{SubQuotes, SubAttributes}, pass.Subs, true)
}

func TestPreprocessPassMacroNone(t *testing.T) {
	pre, _ := newTestPreprocessor()

	ptext := pre.process("a pass:[<b>] b", 0)
	test.Assert(t, "text", "a "+placeholder(0)+" b", ptext.Text, true)
	test.Assert(t, "empty subs", 0, len(ptext.Passthroughs[0].Subs), true)
}

func TestPreprocessNestedNotRecognized(t *testing.T) {
	pre, _ := newTestPreprocessor()
	pre.store.Set("nested1", "{version}")

	// Passthroughs inside expansions are not recognized, and attribute
	// references inside passthroughs stay literal.
	ptext := pre.process("a +literal {nested1}+ b", 0)
	test.Assert(t, "text", "a "+placeholder(0)+" b", ptext.Text, true)
	test.Assert(t, "content", "literal {nested1}",
		ptext.Passthroughs[0].Text, true)
}

func TestPreprocessConstrained(t *testing.T) {
	pre, _ := newTestPreprocessor()

	// The opening "+" of a constrained passthrough needs a word
	// boundary on its left; "a+b+" has none.
	ptext := pre.process("a+b+ c", 0)
	test.Assert(t, "no boundary", "a+b+ c", ptext.Text, true)

	ptext = pre.process("a +b+ c", 0)
	test.Assert(t, "boundary", "a "+placeholder(0)+" c", ptext.Text, true)
}

func TestPreprocessMissingAttribute(t *testing.T) {
	pre, diags := newTestPreprocessor()

	// Default attribute-missing=skip keeps the reference literal and
	// warns at the column of the "{".
	ptext := pre.process("a {nope} b", 0)
	test.Assert(t, "literal text", "a {nope} b", ptext.Text, true)
	test.Assert(t, "warning count", 1, len(diags.list), true)
	test.Assert(t, "warning kind", DiagAttributeMissing,
		diags.list[0].Kind, true)
	test.Assert(t, "warning column", 3, diags.list[0].Column, true)
}

func TestPreprocessEscapes(t *testing.T) {
	pre, _ := newTestPreprocessor()
	pre.store.Set("meh", "1.0")

	ptext := pre.process(`\{meh} and \+x+`, 0)
	test.Assert(t, "escaped", "{meh} and +x+", ptext.Text, true)
	test.Assert(t, "no passthroughs", 0, len(ptext.Passthroughs), true)
}

func TestPreprocessForgedPlaceholder(t *testing.T) {
	pre, _ := newTestPreprocessor()

	// U+FFFD cannot be introduced by the source.
	ptext := pre.process("a � b", 0)
	test.Assert(t, "rewritten", "a ? b", ptext.Text, true)
}
