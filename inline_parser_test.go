// Copyright 2024, Shulhan <ms@kilabit.info>. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package asciidoc

import (
	"testing"

	"github.com/shuLhan/share/lib/test"
)

func parseTestInlines(input string) []*Inline {
	pre, _ := newTestPreprocessor()
	return parseInlines(pre.process(input, 0))
}

// kindsOf return the top level kinds for compact assertions.
func kindsOf(nodes []*Inline) (kinds []InlineKind) {
	for _, node := range nodes {
		kinds = append(kinds, node.Kind)
	}
	return kinds
}

func TestInlineConstrained(t *testing.T) {
	cases := []struct {
		input    string
		expKinds []InlineKind
		expText  string
	}{{
		input:    "*bold* text",
		expKinds: []InlineKind{InlineBold, InlinePlainText},
		expText:  "bold text",
	}, {
		input:    "a _italic_ b",
		expKinds: []InlineKind{InlinePlainText, InlineItalic, InlinePlainText},
		expText:  "a italic b",
	}, {
		input:    "a `mono` b",
		expKinds: []InlineKind{InlinePlainText, InlineMonospace, InlinePlainText},
		expText:  "a mono b",
	}, {
		input:    "a #mark# b",
		expKinds: []InlineKind{InlinePlainText, InlineHighlight, InlinePlainText},
		expText:  "a mark b",
	}, {
		// No word boundary before the opener: stays literal.
		input:    "not*bold*",
		expKinds: []InlineKind{InlinePlainText},
		expText:  "not*bold*",
	}, {
		// Whitespace after the opener: stays literal.
		input:    "a * b * c",
		expKinds: []InlineKind{InlinePlainText},
		expText:  "a * b * c",
	}}
	for _, c := range cases {
		nodes := parseTestInlines(c.input)
		test.Assert(t, c.input+" kinds", c.expKinds, kindsOf(nodes), true)
		test.Assert(t, c.input+" text", c.expText, InlinesText(nodes), true)
	}
}

func TestInlineUnconstrained(t *testing.T) {
	nodes := parseTestInlines("in**bold**side")
	test.Assert(t, "kinds",
		[]InlineKind{InlinePlainText, InlineBold, InlinePlainText},
		kindsOf(nodes), true)
	test.Assert(t, "inner", "bold", InlinesText(nodes[1].Child), true)
}

func TestInlineNested(t *testing.T) {
	nodes := parseTestInlines("*bold _both_*")
	test.Assert(t, "outer", []InlineKind{InlineBold}, kindsOf(nodes), true)
	test.Assert(t, "inner kinds",
		[]InlineKind{InlinePlainText, InlineItalic},
		kindsOf(nodes[0].Child), true)
}

func TestInlineSuperSub(t *testing.T) {
	nodes := parseTestInlines("E = mc^2^ and H~2~O")
	var sup, sub *Inline
	for _, node := range nodes {
		switch node.Kind {
		case InlineSuperscript:
			sup = node
		case InlineSubscript:
			sub = node
		}
	}
	test.Assert(t, "superscript", "2", InlinesText(sup.Child), true)
	test.Assert(t, "subscript", "2", InlinesText(sub.Child), true)
}

func TestInlineAutolink(t *testing.T) {
	cases := []struct {
		input     string
		expTarget string
	}{{
		input:     "see https://example.com/p.",
		expTarget: "https://example.com/p",
	}, {
		input:     "(see https://example.com/p)",
		expTarget: "https://example.com/p",
	}, {
		input:     "see https://example.com/x(y) now",
		expTarget: "https://example.com/x(y)",
	}, {
		input:     "<https://example.com/q>",
		expTarget: "https://example.com/q",
	}}
	for _, c := range cases {
		nodes := parseTestInlines(c.input)
		var link *Inline
		for _, node := range nodes {
			if node.Kind == InlineAutolink {
				link = node
			}
		}
		test.Assert(t, c.input, c.expTarget, link.Target, true)
	}
}

func TestInlineURLMacroForm(t *testing.T) {
	nodes := parseTestInlines("https://example.com[the site] rest")
	test.Assert(t, "kind", InlineURL, nodes[0].Kind, true)
	test.Assert(t, "target", "https://example.com", nodes[0].Target, true)
	test.Assert(t, "label", "the site", InlinesText(nodes[0].Child), true)
}

func TestInlineCrossReference(t *testing.T) {
	nodes := parseTestInlines("see <<_intro>> and <<_usage,the usage>>")

	var refs []*Inline
	for _, node := range nodes {
		if node.Kind == InlineCrossReference {
			refs = append(refs, node)
		}
	}
	test.Assert(t, "ref count", 2, len(refs), true)
	test.Assert(t, "target 1", "_intro", refs[0].Target, true)
	test.Assert(t, "target 2", "_usage", refs[1].Target, true)
	test.Assert(t, "label 2", "the usage", InlinesText(refs[1].Child), true)
}

func TestInlineXrefMacro(t *testing.T) {
	nodes := parseTestInlines("xref:_intro[Introduction]")
	test.Assert(t, "kind", InlineCrossReference, nodes[0].Kind, true)
	test.Assert(t, "target", "_intro", nodes[0].Target, true)
	test.Assert(t, "label", "Introduction", InlinesText(nodes[0].Child), true)
}

func TestInlineMacros(t *testing.T) {
	nodes := parseTestInlines("kbd:[Ctrl+T] btn:[OK] menu:File[Save > All]")

	var kbd, btn, menu *Inline
	for _, node := range nodes {
		switch node.Kind {
		case InlineKeyboard:
			kbd = node
		case InlineButton:
			btn = node
		case InlineMenu:
			menu = node
		}
	}
	test.Assert(t, "kbd", "Ctrl+T", kbd.Text, true)
	test.Assert(t, "btn", "OK", btn.Text, true)
	test.Assert(t, "menu target", "File", menu.Target, true)
	test.Assert(t, "menu items", "Save > All", menu.Text, true)
}

func TestInlineFootnote(t *testing.T) {
	nodes := parseTestInlines(
		"fact footnote:[source here] and again footnote:note[]")

	var def, ref *Inline
	for _, node := range nodes {
		switch node.Kind {
		case InlineFootnote:
			def = node
		case InlineFootnoteRef:
			ref = node
		}
	}
	test.Assert(t, "definition", "source here", InlinesText(def.Child), true)
	test.Assert(t, "reference id", "note", ref.ID, true)
}

func TestInlineImageAndIcon(t *testing.T) {
	nodes := parseTestInlines("image:logo.png[Logo] icon:heart[]")

	var img, icon *Inline
	for _, node := range nodes {
		switch node.Kind {
		case InlineImage:
			img = node
		case InlineIcon:
			icon = node
		}
	}
	test.Assert(t, "image target", "logo.png", img.Target, true)
	alt, _ := img.Attr("alt")
	test.Assert(t, "image alt", "Logo", alt, true)
	test.Assert(t, "icon target", "heart", icon.Target, true)
}

func TestInlineCurvedQuotes(t *testing.T) {
	nodes := parseTestInlines("\"`curved`\" and '`single`'")

	test.Assert(t, "kinds",
		[]InlineKind{InlineCurvedQuotation, InlinePlainText,
			InlineCurvedApostrophe},
		kindsOf(nodes), true)
	test.Assert(t, "double inner", "curved",
		InlinesText(nodes[0].Child), true)
	test.Assert(t, "single inner", "single",
		InlinesText(nodes[2].Child), true)
}

func TestInlineIndexTerms(t *testing.T) {
	nodes := parseTestInlines("((visible)) and (((a,b,c)))")

	var visible, hidden *Inline
	for _, node := range nodes {
		if node.Kind == InlineIndexTerm {
			if _, ok := node.Attr("visible"); ok {
				visible = node
			} else {
				hidden = node
			}
		}
	}
	test.Assert(t, "visible term", "visible", visible.Text, true)
	test.Assert(t, "hidden terms", "a,b,c", hidden.Text, true)
}

func TestInlineLineBreak(t *testing.T) {
	nodes := parseTestInlines("first +\nsecond")
	test.Assert(t, "kinds",
		[]InlineKind{InlinePlainText, InlineLineBreak, InlinePlainText},
		kindsOf(nodes), true)
}

func TestInlineAnchor(t *testing.T) {
	nodes := parseTestInlines("[[target]]word")
	test.Assert(t, "kinds",
		[]InlineKind{InlineAnchor, InlinePlainText}, kindsOf(nodes), true)
	test.Assert(t, "id", "target", nodes[0].ID, true)
}

func TestInlineEscapes(t *testing.T) {
	nodes := parseTestInlines(`\*literal* and \<<no-ref>>`)
	test.Assert(t, "all plain text", "*literal* and <<no-ref>>",
		InlinesText(nodes), true)
	for _, node := range nodes {
		test.Assert(t, "kind", InlinePlainText, node.Kind, true)
	}
}
