// Copyright 2024, Shulhan <ms@kilabit.info>. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package asciidoc

import "strconv"

// InlineKind is the variant tag of an Inline node.
type InlineKind int

const (
	InlineUnknown InlineKind = iota
	InlinePlainText
	InlineRaw // Literal content carrying its own substitution list.
	InlineBold
	InlineItalic
	InlineMonospace
	InlineHighlight
	InlineSuperscript
	InlineSubscript
	InlineCurvedQuotation  // 9: "`...`"
	InlineCurvedApostrophe // '`...`'
	InlineLink             // link:target[text]
	InlineURL              // url macro with explicit scheme target
	InlineMailto           // mailto:addr[text]
	InlineAutolink         // bare or bracketed URL
	InlineCrossReference   // <<id,text>> or xref:id[text]
	InlineImage            // image:target[alt]
	InlineIcon             // icon:name[]
	InlineKeyboard         // kbd:[keys]
	InlineButton           // 19: btn:[label]
	InlineMenu             // menu:name[item > item]
	InlineFootnote         // footnote:[text] or footnote:id[text]
	InlineFootnoteRef      // footnote:id[] referring to a defined footnote
	InlineStem             // stem:[expr], latexmath:[], asciimath:[]
	InlineIndexTerm        // ((term)) or (((primary,secondary)))
	InlineCalloutRef       // <1> inside verbatim content
	InlineLineBreak        // trailing " +"
	InlineAnchor           // [[id]] or [#id] inline anchor
)

func (kind InlineKind) String() string {
	switch kind {
	case InlinePlainText:
		return "text"
	case InlineRaw:
		return "raw"
	case InlineBold:
		return "bold"
	case InlineItalic:
		return "italic"
	case InlineMonospace:
		return "monospace"
	case InlineHighlight:
		return "highlight"
	case InlineSuperscript:
		return "superscript"
	case InlineSubscript:
		return "subscript"
	case InlineCurvedQuotation:
		return "curved_quotation"
	case InlineCurvedApostrophe:
		return "curved_apostrophe"
	case InlineLink:
		return "link"
	case InlineURL:
		return "url"
	case InlineMailto:
		return "mailto"
	case InlineAutolink:
		return "autolink"
	case InlineCrossReference:
		return "cross_reference"
	case InlineImage:
		return "inline_image"
	case InlineIcon:
		return "icon"
	case InlineKeyboard:
		return "keyboard"
	case InlineButton:
		return "button"
	case InlineMenu:
		return "menu"
	case InlineFootnote:
		return "footnote"
	case InlineFootnoteRef:
		return "footnote_reference"
	case InlineStem:
		return "stem"
	case InlineIndexTerm:
		return "index_term"
	case InlineCalloutRef:
		return "callout_reference"
	case InlineLineBreak:
		return "line_break"
	case InlineAnchor:
		return "anchor"
	}
	return "unknown(" + strconv.Itoa(int(kind)) + ")"
}

// Inline is one node of the span-level tree inside a paragraph, title, or
// cell.  The variant is selected by Kind; fields that do not apply stay
// zero.  Location always refers to the original source.
type Inline struct {
	Kind InlineKind

	// Child spans of a formatting node, or the parsed text of a macro
	// label.
	Child []*Inline

	// Text is the literal content of a PlainText or Raw node, the
	// unparsed target text of a stem node, or the label of a button.
	Text string

	// Subs is the substitution list of a Raw node, recorded by the
	// preprocessor.
	Subs []Substitution

	// Target of a macro or link: URL, path, reference identifier.
	Target string

	// Attrs are the macro attributes in source order.
	Attrs []Attr

	// ID of an anchor or footnote.
	ID string

	// Number of a callout reference.
	Number int

	Location Location
}

// Attr return the value of the named macro attribute.
func (node *Inline) Attr(key string) (val string, ok bool) {
	for _, attr := range node.Attrs {
		if attr.Key == key {
			return attr.Val, true
		}
	}
	return "", false
}

// plainText append the textual content of the node and its children to
// dst, ignoring markup.
func (node *Inline) plainText(dst []byte) []byte {
	switch node.Kind {
	case InlinePlainText, InlineRaw:
		dst = append(dst, node.Text...)
	case InlineLineBreak:
		dst = append(dst, '\n')
	}
	for _, child := range node.Child {
		dst = child.plainText(dst)
	}
	return dst
}

// InlinesText return the concatenated plain text of a span list, with all
// markup dropped.  Backends use it for alt texts and metadata.
func InlinesText(nodes []*Inline) string {
	var dst []byte
	for _, node := range nodes {
		dst = node.plainText(dst)
	}
	return string(dst)
}
