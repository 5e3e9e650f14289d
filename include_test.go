// Copyright 2024, Shulhan <ms@kilabit.info>. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package asciidoc

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shuLhan/share/lib/test"
)

func writeTestFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func paragraphTexts(doc *Document) (texts []string) {
	var walk func(el *Element)
	walk = func(el *Element) {
		for child := el.FirstChild; child != nil; child = child.NextSibling {
			if child.Kind == KindParagraph {
				texts = append(texts, InlinesText(child.Text))
			}
			walk(child)
		}
	}
	walk(doc.Root)
	return texts
}

func TestIncludeBasic(t *testing.T) {
	dir := t.TempDir()
	writeTestFile(t, dir, "part.adoc", "from the part\n")
	root := writeTestFile(t, dir, "root.adoc",
		"before\n\ninclude::part.adoc[]\n\nafter\n")

	doc, err := ParseFile(root, nil)
	if err != nil {
		t.Fatal(err)
	}
	test.Assert(t, "paragraphs",
		[]string{"before", "from the part", "after"},
		paragraphTexts(doc), true)
	test.Assert(t, "no diagnostics", 0, len(doc.Diagnostics), true)

	// Diagnostics and positions inside the part point at the part.
	para := childElements(doc.Root)[1]
	loc := para.Meta.SourceRange
	test.Assert(t, "included file",
		filepath.Join(dir, "part.adoc"),
		doc.SourceMap.File(loc.File), true)
	test.Assert(t, "included line", 1, loc.Start.Line, true)
}

func TestIncludeMissing(t *testing.T) {
	dir := t.TempDir()
	root := writeTestFile(t, dir, "root.adoc",
		"include::nope.adoc[]\n")

	doc, err := ParseFile(root, nil)
	if err != nil {
		t.Fatal(err)
	}

	var found bool
	for _, diag := range doc.Diagnostics {
		if diag.Kind == DiagIncludeError {
			found = true
		}
	}
	test.Assert(t, "include warning", true, found, true)

	// The offending line is replaced by an error placeholder block.
	texts := paragraphTexts(doc)
	test.Assert(t, "placeholder count", 1, len(texts), true)
	test.Assert(t, "placeholder text",
		"Unresolved directive in root.adoc - include::nope.adoc[]",
		texts[0], true)
}

func TestIncludeCircular(t *testing.T) {
	dir := t.TempDir()
	writeTestFile(t, dir, "a.adoc", "in a\n\ninclude::b.adoc[]\n")
	writeTestFile(t, dir, "b.adoc", "in b\n\ninclude::a.adoc[]\n")
	root := writeTestFile(t, dir, "root.adoc", "include::a.adoc[]\n")

	doc, err := ParseFile(root, nil)
	if err != nil {
		t.Fatal(err)
	}

	var found bool
	for _, diag := range doc.Diagnostics {
		if diag.Kind == DiagIncludeError {
			found = true
		}
	}
	test.Assert(t, "circular warning", true, found, true)
}

func TestIncludeSecureMode(t *testing.T) {
	dir := t.TempDir()
	writeTestFile(t, dir, "part.adoc", "secret\n")
	root := writeTestFile(t, dir, "root.adoc", "include::part.adoc[]\n")

	doc, err := ParseFile(root, &Options{SafeMode: SafeModeSecure})
	if err != nil {
		t.Fatal(err)
	}

	var found bool
	for _, diag := range doc.Diagnostics {
		if diag.Kind == DiagIncludeError {
			found = true
		}
	}
	test.Assert(t, "secure mode warning", true, found, true)
	for _, text := range paragraphTexts(doc) {
		test.Assert(t, "content not included", true, text != "secret", true)
	}
}

func TestIncludeLines(t *testing.T) {
	dir := t.TempDir()
	writeTestFile(t, dir, "part.adoc",
		"one\n\ntwo\n\nthree\n\nfour\n")
	root := writeTestFile(t, dir, "root.adoc",
		"include::part.adoc[lines=\"3..5\"]\n")

	doc, err := ParseFile(root, nil)
	if err != nil {
		t.Fatal(err)
	}
	test.Assert(t, "selected lines", []string{"two", "three"},
		paragraphTexts(doc), true)
}

func TestIncludeLinesOpenEnd(t *testing.T) {
	dir := t.TempDir()
	writeTestFile(t, dir, "part.adoc", "one\n\ntwo\n\nthree\n")
	root := writeTestFile(t, dir, "root.adoc",
		"include::part.adoc[lines=\"3..-1\"]\n")

	doc, err := ParseFile(root, nil)
	if err != nil {
		t.Fatal(err)
	}
	test.Assert(t, "open end", []string{"two", "three"},
		paragraphTexts(doc), true)
}

func TestIncludeTags(t *testing.T) {
	dir := t.TempDir()
	writeTestFile(t, dir, "part.adoc",
		"outside\n"+
			"// tag::wanted[]\n"+
			"inside wanted\n"+
			"// end::wanted[]\n"+
			"// tag::other[]\n"+
			"inside other\n"+
			"// end::other[]\n")
	root := writeTestFile(t, dir, "root.adoc",
		"include::part.adoc[tags=wanted]\n")

	doc, err := ParseFile(root, nil)
	if err != nil {
		t.Fatal(err)
	}
	test.Assert(t, "tag selection", []string{"inside wanted"},
		paragraphTexts(doc), true)
}

func TestIncludeTagsNegation(t *testing.T) {
	dir := t.TempDir()
	writeTestFile(t, dir, "part.adoc",
		"outside\n"+
			"// tag::skip[]\n"+
			"inside skip\n"+
			"// end::skip[]\n"+
			"also outside\n")
	root := writeTestFile(t, dir, "root.adoc",
		"include::part.adoc[tags=!skip]\n")

	doc, err := ParseFile(root, nil)
	if err != nil {
		t.Fatal(err)
	}
	// Only negations: everything outside the negated tag stays; the
	// two surviving lines are adjacent and join into one paragraph.
	texts := paragraphTexts(doc)
	test.Assert(t, "negation", []string{"outside\nalso outside"}, texts, true)
}

func TestIncludeTagMissing(t *testing.T) {
	dir := t.TempDir()
	writeTestFile(t, dir, "part.adoc", "text\n")
	root := writeTestFile(t, dir, "root.adoc",
		"include::part.adoc[tag=nope]\n")

	doc, err := ParseFile(root, nil)
	if err != nil {
		t.Fatal(err)
	}
	var found bool
	for _, diag := range doc.Diagnostics {
		if diag.Kind == DiagIncludeError {
			found = true
		}
	}
	test.Assert(t, "missing tag warning", true, found, true)
}

func TestIncludeLevelOffset(t *testing.T) {
	dir := t.TempDir()
	writeTestFile(t, dir, "chapter.adoc", "== Chapter Section\n\nBody.\n")
	root := writeTestFile(t, dir, "root.adoc",
		"== Outer\n\ninclude::chapter.adoc[leveloffset=+1]\n\n== Next\n")

	doc, err := ParseFile(root, nil)
	if err != nil {
		t.Fatal(err)
	}

	outer := childElements(doc.Root)[0]
	test.Assert(t, "outer level", 1, outer.Level, true)

	var inner *Element
	for _, el := range childElements(outer) {
		if el.Kind == KindSection {
			inner = el
		}
	}
	test.Assert(t, "included section level", 2, inner.Level, true)

	// The offset is restored after the include.
	next := childElements(doc.Root)[1]
	test.Assert(t, "next level", 1, next.Level, true)
}

func TestIncludeEscaped(t *testing.T) {
	dir := t.TempDir()
	root := writeTestFile(t, dir, "root.adoc",
		"\\include::just-an-example.ext[]\n")

	doc, err := ParseFile(root, nil)
	if err != nil {
		t.Fatal(err)
	}
	test.Assert(t, "escaped stays literal",
		[]string{"include::just-an-example.ext[]"},
		paragraphTexts(doc), true)
	test.Assert(t, "no diagnostics", 0, len(doc.Diagnostics), true)
}

func TestConditionalDirectives(t *testing.T) {
	dir := t.TempDir()
	root := writeTestFile(t, dir, "root.adoc",
		":flag:\n\n"+
			"ifdef::flag[]\nflag is set\nendif::[]\n\n"+
			"ifndef::flag[]\nflag is not set\nendif::[]\n\n"+
			"ifdef::other[single line content]\n\n"+
			"ifeval::[{flag-count} > 2]\ncounted\nendif::[]\n")

	doc, err := ParseFile(root, &Options{
		Attributes: map[string]string{"flag-count": "3"},
	})
	if err != nil {
		t.Fatal(err)
	}
	test.Assert(t, "conditionals",
		[]string{"flag is set", "counted"}, paragraphTexts(doc), true)
}

func TestParseLineRanges(t *testing.T) {
	ranges := parseLineRanges("1..2,5;7..-1")

	cases := []struct {
		line int
		exp  bool
	}{
		{1, true}, {2, true}, {3, false}, {5, true},
		{6, false}, {7, true}, {10, true},
	}
	for _, c := range cases {
		test.Assert(t, "contains", c.exp,
			ranges.contains(c.line, 10), true)
	}
}

func TestTagSelector(t *testing.T) {
	cases := []struct {
		spec  string
		stack []string
		exp   bool
	}{
		{"**", nil, true},
		{"*", nil, false},
		{"*", []string{"any"}, true},
		{"a", []string{"a"}, true},
		{"a", []string{"b"}, false},
		{"a", nil, false},
		{"!a", nil, true},
		{"!a", []string{"a"}, false},
		{"**;!a", []string{"b"}, true},
		{"**;!a", []string{"a"}, false},
	}
	for _, c := range cases {
		sel := parseTagSelector(c.spec)
		test.Assert(t, c.spec, c.exp, sel.match(c.stack), true)
	}
}
