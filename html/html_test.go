// Copyright 2024, Shulhan <ms@kilabit.info>. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package html

import (
	"bytes"
	"strings"
	"testing"

	"github.com/shuLhan/share/lib/test"

	"github.com/shuLhan/asciidoc"
)

func render(t *testing.T, input string, opts *asciidoc.Options) string {
	t.Helper()
	doc := asciidoc.Parse("test.adoc", []byte(input), opts)

	var buf bytes.Buffer
	conv := NewConverter(&buf)
	conv.Standalone = false
	if err := asciidoc.Convert(doc, conv); err != nil {
		t.Fatal(err)
	}
	return buf.String()
}

func TestConvertSection(t *testing.T) {
	got := render(t, "== Title\n\nPara.\n", nil)

	cases := []string{
		`<div class="sect1">`,
		`<h2 id="_title">Title</h2>`,
		`<div class="paragraph">`,
		"<p>Para.</p>",
	}
	for _, exp := range cases {
		test.Assert(t, exp, true, strings.Contains(got, exp), true)
	}
}

func TestConvertInlineFormatting(t *testing.T) {
	got := render(t, "*bold* and _italic_ and `mono`\n", nil)

	cases := []string{
		"<strong>bold</strong>",
		"<em>italic</em>",
		"<code>mono</code>",
	}
	for _, exp := range cases {
		test.Assert(t, exp, true, strings.Contains(got, exp), true)
	}
}

func TestConvertSpecialChars(t *testing.T) {
	got := render(t, "a <b> & c\n", nil)
	test.Assert(t, "escaped", true,
		strings.Contains(got, "a &lt;b&gt; &amp; c"), true)
}

func TestConvertPassthroughLiteral(t *testing.T) {
	// Triple plus content carries the empty substitution list: no
	// escaping, no typography.
	got := render(t, "raw +++<u>x</u> -> y+++ here\n", nil)
	test.Assert(t, "unescaped", true,
		strings.Contains(got, "<u>x</u> -> y"), true)

	// Single plus carries specialchars only: escaped but no
	// typography.
	got = render(t, "esc +<u> -> v+ here\n", nil)
	test.Assert(t, "escaped", true,
		strings.Contains(got, "&lt;u&gt; -> v"), true)
}

func TestConvertTypography(t *testing.T) {
	got := render(t, "a -> b\n", nil)
	test.Assert(t, "arrow", true, strings.Contains(got, "a → b"), true)
}

func TestConvertTable(t *testing.T) {
	got := render(t, "[cols=\"2,^2\"]\n|===\n|a |b\n|c |d\n|===\n", nil)

	cases := []string{
		"<table class=\"tableblock",
		"halign-center",
		`<p class="tableblock">a</p>`,
	}
	for _, exp := range cases {
		test.Assert(t, exp, true, strings.Contains(got, exp), true)
	}
}

func TestConvertListingHighlight(t *testing.T) {
	got := render(t, "[source,go]\n----\nfunc main() {}\n----\n", nil)
	test.Assert(t, "language class", true,
		strings.Contains(got, `class="language-go"`), true)
}

func TestConvertAdmonition(t *testing.T) {
	got := render(t, "NOTE: Careful.\n", nil)

	cases := []string{
		`<div class="admonitionblock note">`,
		`<div class="title">Note</div>`,
		"Careful.",
	}
	for _, exp := range cases {
		test.Assert(t, exp, true, strings.Contains(got, exp), true)
	}
}

func TestConvertSectnums(t *testing.T) {
	input := ":sectnums:\n\n== One\n\n=== Inner\n\n== Two\n"
	got := render(t, input, nil)

	cases := []string{
		">1. One<",
		">1.1. Inner<",
		">2. Two<",
	}
	for _, exp := range cases {
		test.Assert(t, exp, true, strings.Contains(got, exp), true)
	}
}

func TestConvertXref(t *testing.T) {
	got := render(t, "== Intro\n\nSee <<_intro>>.\n", nil)
	test.Assert(t, "resolved label", true,
		strings.Contains(got, `<a href="#_intro">Intro</a>`), true)
}

func TestConvertFootnotes(t *testing.T) {
	got := render(t, "fact footnote:[the source]\n", nil)

	cases := []string{
		`<sup class="footnote">`,
		`<div id="footnotes">`,
		"the source",
	}
	for _, exp := range cases {
		test.Assert(t, exp, true, strings.Contains(got, exp), true)
	}
}
