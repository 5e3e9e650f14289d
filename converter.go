// Copyright 2024, Shulhan <ms@kilabit.info>. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package asciidoc

import (
	"fmt"
	"strconv"
)

// Converter is the contract a backend implements to render a document.
// There is one method per block variant and one per inline variant, plus
// enter and leave hooks for sections, lists, and table rows, so adding a
// node variant forces an update in every backend.
//
// Methods of container variants receive the element and render its
// children themselves, usually through ConvertChildren or ConvertInlines.
// The backend is responsible for applying the element's SubstitutionSpec,
// through ResolveSubstitutions, when computing rendered text.
type Converter interface {
	DocumentBegin(doc *Document) error
	DocumentEnd(doc *Document) error

	SectionEnter(el *Element) error
	SectionLeave(el *Element) error
	ListEnter(el *Element) error
	ListLeave(el *Element) error
	TableRowEnter(table *Element, row *Row) error
	TableRowLeave(table *Element, row *Row) error

	Paragraph(el *Element) error
	Listing(el *Element) error
	Literal(el *Element) error
	Example(el *Element) error
	Sidebar(el *Element) error
	Quote(el *Element) error
	Verse(el *Element) error
	Open(el *Element) error
	PassBlock(el *Element) error
	Comment(el *Element) error
	ListItem(el *Element) error
	Table(el *Element) error
	TableCell(table *Element, cell *Cell) error
	ImageBlock(el *Element) error
	AudioBlock(el *Element) error
	VideoBlock(el *Element) error
	ThematicBreak(el *Element) error
	PageBreak(el *Element) error
	Admonition(el *Element) error
	Toc(el *Element) error
	StemBlock(el *Element) error
	IndexBlock(el *Element) error
	CalloutList(el *Element) error
	DiscreteHeading(el *Element) error

	TextNode(node *Inline) error
	RawNode(node *Inline) error
	BoldNode(node *Inline) error
	ItalicNode(node *Inline) error
	MonospaceNode(node *Inline) error
	HighlightNode(node *Inline) error
	SuperscriptNode(node *Inline) error
	SubscriptNode(node *Inline) error
	CurvedQuotationNode(node *Inline) error
	CurvedApostropheNode(node *Inline) error
	LinkNode(node *Inline) error
	URLNode(node *Inline) error
	MailtoNode(node *Inline) error
	AutolinkNode(node *Inline) error
	CrossReferenceNode(node *Inline) error
	ImageNode(node *Inline) error
	IconNode(node *Inline) error
	KeyboardNode(node *Inline) error
	ButtonNode(node *Inline) error
	MenuNode(node *Inline) error
	FootnoteNode(node *Inline) error
	FootnoteRefNode(node *Inline) error
	StemNode(node *Inline) error
	IndexTermNode(node *Inline) error
	CalloutRefNode(node *Inline) error
	LineBreakNode(node *Inline) error
	AnchorNode(node *Inline) error
}

// Convert drive the converter over the whole document.
func Convert(doc *Document, conv Converter) (err error) {
	if err = conv.DocumentBegin(doc); err != nil {
		return err
	}
	if err = ConvertChildren(doc.Root, conv); err != nil {
		return err
	}
	return conv.DocumentEnd(doc)
}

// ConvertChildren dispatch every child block of el to the converter.
func ConvertChildren(el *Element, conv Converter) (err error) {
	for child := el.FirstChild; child != nil; child = child.NextSibling {
		if err = ConvertBlock(child, conv); err != nil {
			return err
		}
	}
	return nil
}

// ConvertBlock dispatch one block element to its converter method.
// Sections and lists are driven here so every backend gets the same
// enter/leave ordering.
func ConvertBlock(el *Element, conv Converter) (err error) {
	switch el.Kind {
	case KindSection:
		if err = conv.SectionEnter(el); err != nil {
			return err
		}
		if err = ConvertChildren(el, conv); err != nil {
			return err
		}
		return conv.SectionLeave(el)

	case KindList:
		if err = conv.ListEnter(el); err != nil {
			return err
		}
		for item := el.FirstChild; item != nil; item = item.NextSibling {
			if err = ConvertBlock(item, conv); err != nil {
				return err
			}
		}
		return conv.ListLeave(el)

	case KindListItem:
		return conv.ListItem(el)
	case KindParagraph:
		return conv.Paragraph(el)
	case KindListing:
		return conv.Listing(el)
	case KindLiteral:
		return conv.Literal(el)
	case KindExample:
		return conv.Example(el)
	case KindSidebar:
		return conv.Sidebar(el)
	case KindQuote:
		return conv.Quote(el)
	case KindVerse:
		return conv.Verse(el)
	case KindOpen:
		return conv.Open(el)
	case KindPass:
		return conv.PassBlock(el)
	case KindComment:
		return conv.Comment(el)
	case KindTable:
		return conv.Table(el)
	case KindImage:
		return conv.ImageBlock(el)
	case KindAudio:
		return conv.AudioBlock(el)
	case KindVideo:
		return conv.VideoBlock(el)
	case KindThematicBreak:
		return conv.ThematicBreak(el)
	case KindPageBreak:
		return conv.PageBreak(el)
	case KindAdmonition:
		return conv.Admonition(el)
	case KindToc:
		return conv.Toc(el)
	case KindStem:
		return conv.StemBlock(el)
	case KindIndex:
		return conv.IndexBlock(el)
	case KindCalloutList:
		return conv.CalloutList(el)
	case KindDiscreteHeading:
		return conv.DiscreteHeading(el)
	case KindAttributeEntry, KindPreamble, KindCalloutItem:
		return nil
	}
	return fmt.Errorf("ConvertBlock: unhandled element kind %s", el.Kind)
}

// ConvertTableRows drive the table row hooks and cell dispatch; the
// Table method of a backend calls this after emitting its own framing.
func ConvertTableRows(el *Element, conv Converter) (err error) {
	if el.TableData == nil {
		return nil
	}
	for _, row := range el.TableData.Rows {
		if err = conv.TableRowEnter(el, row); err != nil {
			return err
		}
		for _, cell := range row.Cells {
			if err = conv.TableCell(el, cell); err != nil {
				return err
			}
		}
		if err = conv.TableRowLeave(el, row); err != nil {
			return err
		}
	}
	return nil
}

// ConvertInlines dispatch every inline node to its converter method.
func ConvertInlines(nodes []*Inline, conv Converter) (err error) {
	for _, node := range nodes {
		if err = ConvertInline(node, conv); err != nil {
			return err
		}
	}
	return nil
}

// ConvertInline dispatch one inline node.
func ConvertInline(node *Inline, conv Converter) error {
	switch node.Kind {
	case InlinePlainText:
		return conv.TextNode(node)
	case InlineRaw:
		return conv.RawNode(node)
	case InlineBold:
		return conv.BoldNode(node)
	case InlineItalic:
		return conv.ItalicNode(node)
	case InlineMonospace:
		return conv.MonospaceNode(node)
	case InlineHighlight:
		return conv.HighlightNode(node)
	case InlineSuperscript:
		return conv.SuperscriptNode(node)
	case InlineSubscript:
		return conv.SubscriptNode(node)
	case InlineCurvedQuotation:
		return conv.CurvedQuotationNode(node)
	case InlineCurvedApostrophe:
		return conv.CurvedApostropheNode(node)
	case InlineLink:
		return conv.LinkNode(node)
	case InlineURL:
		return conv.URLNode(node)
	case InlineMailto:
		return conv.MailtoNode(node)
	case InlineAutolink:
		return conv.AutolinkNode(node)
	case InlineCrossReference:
		return conv.CrossReferenceNode(node)
	case InlineImage:
		return conv.ImageNode(node)
	case InlineIcon:
		return conv.IconNode(node)
	case InlineKeyboard:
		return conv.KeyboardNode(node)
	case InlineButton:
		return conv.ButtonNode(node)
	case InlineMenu:
		return conv.MenuNode(node)
	case InlineFootnote:
		return conv.FootnoteNode(node)
	case InlineFootnoteRef:
		return conv.FootnoteRefNode(node)
	case InlineStem:
		return conv.StemNode(node)
	case InlineIndexTerm:
		return conv.IndexTermNode(node)
	case InlineCalloutRef:
		return conv.CalloutRefNode(node)
	case InlineLineBreak:
		return conv.LineBreakNode(node)
	case InlineAnchor:
		return conv.AnchorNode(node)
	}
	return fmt.Errorf("ConvertInline: unhandled inline kind %s", node.Kind)
}

// SectionNumbers assign dotted section numbers ("1.", "1.2.") to every
// section of the document in traversal order, honoring the sectnumlevels
// attribute.  Numbering is a function of the traversal; it is never
// stored on the tree.
func SectionNumbers(doc *Document) map[*Element]string {
	numbers := make(map[*Element]string)
	maxLevel := 3
	if v, ok := doc.Attributes.Get("sectnumlevels"); ok {
		if n, err := strconv.Atoi(v); err == nil {
			maxLevel = n
		}
	}
	var walk func(el *Element, prefix string)
	walk = func(el *Element, prefix string) {
		counter := 0
		for child := el.FirstChild; child != nil; child = child.NextSibling {
			if child.Kind != KindSection {
				continue
			}
			if child.Level > maxLevel {
				continue
			}
			counter++
			number := prefix + strconv.Itoa(counter) + "."
			numbers[child] = number
			walk(child, number)
		}
	}
	walk(doc.Root, "")
	return numbers
}
