// Copyright 2024, Shulhan <ms@kilabit.info>. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package asciidoc

import (
	"testing"

	"github.com/shuLhan/share/lib/test"
)

// childElements return the direct children of el as a slice.
func childElements(el *Element) (children []*Element) {
	for child := el.FirstChild; child != nil; child = child.NextSibling {
		children = append(children, child)
	}
	return children
}

func TestParseSection(t *testing.T) {
	doc := Parse("test.adoc", []byte("== Title\n\nPara.\n"), nil)

	blocks := childElements(doc.Root)
	test.Assert(t, "block count", 1, len(blocks), true)

	sect := blocks[0]
	test.Assert(t, "kind", KindSection, sect.Kind, true)
	test.Assert(t, "level", 1, sect.Level, true)
	test.Assert(t, "id", "_title", sect.Meta.ID, true)
	test.Assert(t, "title", "Title", InlinesText(sect.Text), true)

	children := childElements(sect)
	test.Assert(t, "child count", 1, len(children), true)
	test.Assert(t, "child kind", KindParagraph, children[0].Kind, true)
	test.Assert(t, "child text", "Para.", InlinesText(children[0].Text), true)
}

func TestParseSectionIDConflict(t *testing.T) {
	doc := Parse("test.adoc",
		[]byte("== Title\n\nA.\n\n== Title\n\nB.\n\n== Title\n\nC.\n"), nil)

	blocks := childElements(doc.Root)
	test.Assert(t, "section count", 3, len(blocks), true)
	test.Assert(t, "first id", "_title", blocks[0].Meta.ID, true)
	test.Assert(t, "second id", "_title_2", blocks[1].Meta.ID, true)
	test.Assert(t, "third id", "_title_3", blocks[2].Meta.ID, true)
}

func TestParseSectionNesting(t *testing.T) {
	doc := Parse("test.adoc",
		[]byte("== One\n\n=== Two\n\n== Three\n"), nil)

	blocks := childElements(doc.Root)
	test.Assert(t, "top sections", 2, len(blocks), true)
	test.Assert(t, "nested level", 2,
		childElements(blocks[0])[0].Level, true)
}

func TestParseSectionLevelSkip(t *testing.T) {
	doc := Parse("test.adoc", []byte("== One\n\n==== Deep\n"), nil)

	blocks := childElements(doc.Root)
	nested := childElements(blocks[0])[0]
	// The level is clamped to one deeper than the parent, with a
	// warning.
	test.Assert(t, "clamped level", 2, nested.Level, true)

	var found bool
	for _, diag := range doc.Diagnostics {
		if diag.Kind == DiagSectionLevel {
			found = true
		}
	}
	test.Assert(t, "section level warning", true, found, true)
}

func TestParseUnorderedListNesting(t *testing.T) {
	doc := Parse("test.adoc", []byte("* one\n** two\n* three\n"), nil)

	blocks := childElements(doc.Root)
	test.Assert(t, "block count", 1, len(blocks), true)

	list := blocks[0]
	test.Assert(t, "kind", KindList, list.Kind, true)
	test.Assert(t, "variant", ListUnordered, list.ListKind, true)

	items := childElements(list)
	test.Assert(t, "item count", 2, len(items), true)
	test.Assert(t, "item 1", "one", InlinesText(items[0].Text), true)
	test.Assert(t, "item 2", "three", InlinesText(items[1].Text), true)

	var nested *Element
	for _, child := range childElements(items[0]) {
		if child.Kind == KindList {
			nested = child
		}
	}
	test.Assert(t, "nested list", true, nested != nil, true)
	nestedItems := childElements(nested)
	test.Assert(t, "nested count", 1, len(nestedItems), true)
	test.Assert(t, "nested item", "two", InlinesText(nestedItems[0].Text), true)
}

func TestParseDescriptionList(t *testing.T) {
	doc := Parse("test.adoc",
		[]byte("term one:: definition one\nterm two:: definition two\n"), nil)

	list := childElements(doc.Root)[0]
	test.Assert(t, "kind", KindList, list.Kind, true)
	test.Assert(t, "variant", ListDescription, list.ListKind, true)

	items := childElements(list)
	test.Assert(t, "item count", 2, len(items), true)
	test.Assert(t, "term", "term one", InlinesText(items[0].Term), true)
	test.Assert(t, "principal", "definition one",
		InlinesText(items[0].Text), true)
}

func TestParseListContinuation(t *testing.T) {
	doc := Parse("test.adoc",
		[]byte("* one\n+\n----\nattached\n----\n* two\n"), nil)

	list := childElements(doc.Root)[0]
	items := childElements(list)
	test.Assert(t, "item count", 2, len(items), true)

	attached := childElements(items[0])
	test.Assert(t, "attached count", 1, len(attached), true)
	test.Assert(t, "attached kind", KindListing, attached[0].Kind, true)
	test.Assert(t, "attached content", "attached",
		attached[0].Content(), true)
}

func TestParseListingWithCallouts(t *testing.T) {
	input := "[source,rust]\n----\nlet x = 1; <1>\n----\n<1> binding\n"
	doc := Parse("test.adoc", []byte(input), nil)

	blocks := childElements(doc.Root)
	test.Assert(t, "block count", 2, len(blocks), true)

	listing := blocks[0]
	test.Assert(t, "kind", KindListing, listing.Kind, true)
	test.Assert(t, "style", "source", listing.Meta.Style, true)
	lang, _ := listing.Meta.Attr("language")
	test.Assert(t, "language", "rust", lang, true)

	var refs []int
	for _, node := range listing.Text {
		if node.Kind == InlineCalloutRef {
			refs = append(refs, node.Number)
		}
	}
	test.Assert(t, "callout refs", []int{1}, refs, true)

	colist := blocks[1]
	test.Assert(t, "colist kind", KindCalloutList, colist.Kind, true)
	items := childElements(colist)
	test.Assert(t, "colist count", 1, len(items), true)
	test.Assert(t, "item number", 1, items[0].Number, true)
	test.Assert(t, "item text", "binding", InlinesText(items[0].Text), true)
}

func TestParseCalloutAutoNumber(t *testing.T) {
	input := "----\na <.>\nb <.>\n----\n"
	doc := Parse("test.adoc", []byte(input), nil)

	listing := childElements(doc.Root)[0]
	var refs []int
	for _, node := range listing.Text {
		if node.Kind == InlineCalloutRef {
			refs = append(refs, node.Number)
		}
	}
	test.Assert(t, "auto numbered", []int{1, 2}, refs, true)
}

func TestParseCalloutMismatch(t *testing.T) {
	input := "----\na <1>\nb <2>\n----\n<1> only one\n"
	doc := Parse("test.adoc", []byte(input), nil)

	var found bool
	for _, diag := range doc.Diagnostics {
		if diag.Kind == DiagCalloutMismatch {
			found = true
		}
	}
	test.Assert(t, "mismatch warning", true, found, true)
}

func TestParseMissingAttribute(t *testing.T) {
	doc := Parse("test.adoc", []byte("Some {nope} here.\n"), nil)

	para := childElements(doc.Root)[0]
	test.Assert(t, "literal reference", "Some {nope} here.",
		InlinesText(para.Text), true)

	var diag *Diagnostic
	for x := range doc.Diagnostics {
		if doc.Diagnostics[x].Kind == DiagAttributeMissing {
			diag = &doc.Diagnostics[x]
		}
	}
	test.Assert(t, "warning emitted", true, diag != nil, true)
	test.Assert(t, "column of brace", 6, diag.Column, true)
}

func TestParseHeader(t *testing.T) {
	input := "= The Title: A Subtitle\nJane M. Doe <jane@example.com>; John Roe\nv1.2, 2024-01-01: First draft\n:custom: value\n\nBody.\n"
	doc := Parse("test.adoc", []byte(input), nil)

	test.Assert(t, "title main", "The Title", doc.Title.Main, true)
	test.Assert(t, "subtitle", "A Subtitle", doc.Title.Subtitle, true)

	test.Assert(t, "author count", 2, len(doc.Authors), true)
	test.Assert(t, "first author", "Jane M. Doe",
		doc.Authors[0].FullName(), true)
	test.Assert(t, "author email", "jane@example.com",
		doc.Authors[0].Email, true)
	test.Assert(t, "initials", "JMD", doc.Authors[0].Initials(), true)

	test.Assert(t, "rev number", "1.2", doc.Revision.Number, true)
	test.Assert(t, "rev date", "2024-01-01", doc.Revision.Date, true)
	test.Assert(t, "rev remark", "First draft", doc.Revision.Remark, true)

	custom, _ := doc.Attributes.Get("custom")
	test.Assert(t, "header attribute", "value", custom, true)
	doctitle, _ := doc.Attributes.Get("doctitle")
	test.Assert(t, "doctitle", "The Title", doctitle, true)
}

func TestParseAdmonitionParagraph(t *testing.T) {
	doc := Parse("test.adoc", []byte("NOTE: Remember this.\n"), nil)

	el := childElements(doc.Root)[0]
	test.Assert(t, "kind", KindAdmonition, el.Kind, true)
	test.Assert(t, "variant", "NOTE", el.Admonition, true)
	test.Assert(t, "text", "Remember this.", InlinesText(el.Text), true)
}

func TestParseDelimitedNesting(t *testing.T) {
	input := "====\nouter\n\n=====\ninner\n=====\n====\n"
	doc := Parse("test.adoc", []byte(input), nil)

	outer := childElements(doc.Root)[0]
	test.Assert(t, "outer kind", KindExample, outer.Kind, true)

	children := childElements(outer)
	test.Assert(t, "outer children", 2, len(children), true)
	test.Assert(t, "inner kind", KindExample, children[1].Kind, true)
	test.Assert(t, "inner content", "inner",
		InlinesText(childElements(children[1])[0].Text), true)
}

func TestParseBlockMetadata(t *testing.T) {
	input := "[[custom-id]]\n.A Title\n[quote.keep%collapsible, Someone]\n____\nwords\n____\n"
	doc := Parse("test.adoc", []byte(input), nil)

	el := childElements(doc.Root)[0]
	test.Assert(t, "kind", KindQuote, el.Kind, true)
	test.Assert(t, "id", "custom-id", el.Meta.ID, true)
	test.Assert(t, "style", "quote", el.Meta.Style, true)
	test.Assert(t, "roles", []string{"keep"}, el.Meta.Roles, true)
	test.Assert(t, "options", []string{"collapsible"}, el.Meta.Options, true)
	test.Assert(t, "title", "A Title", InlinesText(el.Meta.Title), true)

	who, _ := el.Meta.Attr("attribution")
	test.Assert(t, "attribution", "Someone", who, true)
}

func TestParseAnchorConflict(t *testing.T) {
	input := "[[dup]]\nOne.\n\n[[dup]]\nTwo.\n"
	doc := Parse("test.adoc", []byte(input), nil)

	var found bool
	for _, diag := range doc.Diagnostics {
		if diag.Kind == DiagAnchorConflict {
			found = true
		}
	}
	test.Assert(t, "conflict warning", true, found, true)

	// The later definition wins.
	el := doc.Anchor("dup")
	test.Assert(t, "later wins", "Two.", InlinesText(el.Text), true)
}

func TestParseSetext(t *testing.T) {
	input := "Heading\n-------\n\nBody.\n"

	doc := Parse("test.adoc", []byte(input), &Options{Setext: true})
	blocks := childElements(doc.Root)
	test.Assert(t, "setext section", KindSection, blocks[0].Kind, true)
	test.Assert(t, "setext level", 1, blocks[0].Level, true)

	// Without the option the title line is a plain paragraph and the
	// underline opens a listing block.
	doc = Parse("test.adoc", []byte(input), nil)
	blocks = childElements(doc.Root)
	test.Assert(t, "no setext", KindParagraph, blocks[0].Kind, true)
}

func TestParseThematicAndPageBreak(t *testing.T) {
	doc := Parse("test.adoc", []byte("before\n\n'''\n\n<<<\n\nafter\n"), nil)

	blocks := childElements(doc.Root)
	test.Assert(t, "count", 4, len(blocks), true)
	test.Assert(t, "thematic", KindThematicBreak, blocks[1].Kind, true)
	test.Assert(t, "page", KindPageBreak, blocks[2].Kind, true)
}

func TestParseImageBlock(t *testing.T) {
	doc := Parse("test.adoc",
		[]byte("image::shapes/circle.png[A circle,100,200]\n"), nil)

	el := childElements(doc.Root)[0]
	test.Assert(t, "kind", KindImage, el.Kind, true)
	test.Assert(t, "target", "shapes/circle.png", el.Target, true)
	alt, _ := el.Meta.Attr("alt")
	test.Assert(t, "alt", "A circle", alt, true)
	width, _ := el.Meta.Attr("width")
	test.Assert(t, "width", "100", width, true)
}

func TestParseLevelOffset(t *testing.T) {
	input := "= Doc\n\n== A\n\n:leveloffset: +1\n\n== B\n\nBody.\n"
	doc := Parse("test.adoc", []byte(input), nil)

	sectA := childElements(doc.Root)[0]
	test.Assert(t, "outer level", 1, sectA.Level, true)

	var sectB *Element
	for _, el := range childElements(sectA) {
		if el.Kind == KindSection {
			sectB = el
		}
	}
	test.Assert(t, "shifted level", 2, sectB.Level, true)
}

func TestParseDocumentEmpty(t *testing.T) {
	doc := Parse("test.adoc", nil, nil)
	test.Assert(t, "no blocks", true, doc.Root.FirstChild == nil, true)
	test.Assert(t, "no diagnostics", 0, len(doc.Diagnostics), true)
}

func TestParseInlineDoctype(t *testing.T) {
	doc := Parse("test.adoc", []byte("just *bold* text\n"),
		&Options{Doctype: DoctypeInline})

	el := childElements(doc.Root)[0]
	test.Assert(t, "kind", KindParagraph, el.Kind, true)
	test.Assert(t, "text", "just bold text", InlinesText(el.Text), true)
}
