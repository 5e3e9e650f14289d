// Copyright 2024, Shulhan <ms@kilabit.info>. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package asciidoc

import (
	"bytes"
	"strconv"
	"strings"
)

// ElementKind is the variant tag of an Element.
type ElementKind int

const (
	KindUnknown ElementKind = iota
	KindDocument
	KindPreamble        // Wrapper for blocks between header and first section.
	KindSection         // Line started with one or more "="
	KindParagraph       //
	KindListing         // Block delimited with "----"
	KindLiteral         // Block delimited with "....", or indented paragraph
	KindExample         // Block delimited with "===="
	KindSidebar         // 8: Block delimited with "****"
	KindQuote           // Block delimited with "____"
	KindVerse           // Quote block with style "verse"
	KindOpen            // Block delimited with "--"
	KindPass            // Block delimited with "++++"
	KindComment         // Block delimited with "////"
	KindList            // Wrapper for list items.
	KindListItem        //
	KindTable           // Block delimited with "|===", ",===", ":===", "!==="
	KindImage           // "image::target[]"
	KindAudio           // 18: "audio::target[]"
	KindVideo           // "video::target[]"
	KindThematicBreak   // "'''"
	KindPageBreak       // "<<<"
	KindAdmonition      // "NOTE: ..." or "[NOTE]" block
	KindToc             // "toc::[]"
	KindStem            // "[stem]" block
	KindIndex           // "[index]" section style
	KindCalloutList     // "<1> ..." lines after a verbatim block
	KindCalloutItem     //
	KindAttributeEntry  // ":name: value" at block level
	KindDiscreteHeading // 29: "[discrete]" heading
)

func (kind ElementKind) String() string {
	switch kind {
	case KindDocument:
		return "document"
	case KindPreamble:
		return "preamble"
	case KindSection:
		return "section"
	case KindParagraph:
		return "paragraph"
	case KindListing:
		return "listing"
	case KindLiteral:
		return "literal"
	case KindExample:
		return "example"
	case KindSidebar:
		return "sidebar"
	case KindQuote:
		return "quote"
	case KindVerse:
		return "verse"
	case KindOpen:
		return "open"
	case KindPass:
		return "pass"
	case KindComment:
		return "comment"
	case KindList:
		return "list"
	case KindListItem:
		return "list_item"
	case KindTable:
		return "table"
	case KindImage:
		return "image"
	case KindAudio:
		return "audio"
	case KindVideo:
		return "video"
	case KindThematicBreak:
		return "thematic_break"
	case KindPageBreak:
		return "page_break"
	case KindAdmonition:
		return "admonition"
	case KindToc:
		return "toc"
	case KindStem:
		return "stem"
	case KindIndex:
		return "index"
	case KindCalloutList:
		return "callout_list"
	case KindCalloutItem:
		return "callout_item"
	case KindAttributeEntry:
		return "attribute_entry"
	case KindDiscreteHeading:
		return "discrete_heading"
	}
	return "unknown(" + strconv.Itoa(int(kind)) + ")"
}

// ListKind is the variant of a KindList element.
type ListKind int

const (
	ListUnordered ListKind = iota
	ListOrdered
	ListDescription
)

// Attr is one named attribute of a block or macro, in source order.
type Attr struct {
	Key string
	Val string
}

// BlockMetadata is the metadata every block carries: identity, styling,
// substitution control, and the range of original source it was parsed
// from.
type BlockMetadata struct {
	// ID is unique within the document, user supplied or derived from
	// the title.
	ID string

	// Title holds the parsed block title (".Title" line).
	Title []*Inline

	// Roles in order of first occurrence, without duplicates.
	Roles []string

	// Options from "%opt" shorthands and "opts" attributes.
	Options []string

	// Style is the first positional attribute.
	Style string

	// Attrs are the named attributes in source order.
	Attrs []Attr

	// Subs is the parsed "subs" attribute.
	Subs SubstitutionSpec

	// SourceRange is the start and end of the block in the original
	// source.
	SourceRange Location
}

// Attr return the value of the named attribute and whether it is present.
func (meta *BlockMetadata) Attr(key string) (val string, ok bool) {
	for _, attr := range meta.Attrs {
		if attr.Key == key {
			return attr.Val, true
		}
	}
	return "", false
}

// HasOption report whether the option is present.
func (meta *BlockMetadata) HasOption(opt string) bool {
	for _, have := range meta.Options {
		if have == opt {
			return true
		}
	}
	return false
}

func (meta *BlockMetadata) addRole(role string) {
	for _, have := range meta.Roles {
		if have == role {
			return
		}
	}
	meta.Roles = append(meta.Roles, role)
}

func (meta *BlockMetadata) addOption(opt string) {
	for _, have := range meta.Options {
		if have == opt {
			return
		}
	}
	meta.Options = append(meta.Options, opt)
}

// Element is one block node of the document tree.  The variant is selected
// by Kind; fields that do not apply to a variant stay zero.
//
// Elements form a tree through the exported navigation pointers, in the
// manner of golang.org/x/net/html Node.
type Element struct {
	Parent      *Element
	FirstChild  *Element
	LastChild   *Element
	PrevSibling *Element
	NextSibling *Element

	Kind ElementKind
	Meta BlockMetadata

	// Level of a section (0-5), or the marker depth of a list item.
	Level int

	// Marker of a list or list item: "*", "**", ".", "1.", "::", ...
	Marker string

	// ListKind of a KindList element.
	ListKind ListKind

	// Text holds the parsed inline content: the paragraph body, the list
	// item principal, the section title, or the verbatim lines with
	// callout references.
	Text []*Inline

	// Term holds the parsed description list term of a list item.
	Term []*Inline

	// Raw is the unparsed source text of the block body.
	Raw []byte

	// Target of a block macro (image, audio, video, include
	// placeholder).
	Target string

	// TableData of a KindTable element.
	TableData *Table

	// Admonition variant: "NOTE", "TIP", "IMPORTANT", "WARNING",
	// "CAUTION".
	Admonition string

	// Number of a callout item.
	Number int
}

// AppendChild add child as the last child of el.
func (el *Element) AppendChild(child *Element) {
	child.Parent = el
	child.PrevSibling = el.LastChild
	child.NextSibling = nil
	if el.LastChild != nil {
		el.LastChild.NextSibling = child
	} else {
		el.FirstChild = child
	}
	el.LastChild = child
}

// RemoveChild detach child from el.
func (el *Element) RemoveChild(child *Element) {
	if child.Parent != el {
		return
	}
	if el.FirstChild == child {
		el.FirstChild = child.NextSibling
	}
	if el.LastChild == child {
		el.LastChild = child.PrevSibling
	}
	if child.PrevSibling != nil {
		child.PrevSibling.NextSibling = child.NextSibling
	}
	if child.NextSibling != nil {
		child.NextSibling.PrevSibling = child.PrevSibling
	}
	child.Parent = nil
	child.PrevSibling = nil
	child.NextSibling = nil
}

// Content return the raw block body with surrounding space trimmed.
func (el *Element) Content() string {
	return strings.TrimSpace(string(el.Raw))
}

// IsVerbatim report whether the block content skips normal markup.
func (el *Element) IsVerbatim() bool {
	switch el.Kind {
	case KindListing, KindLiteral, KindPass:
		return true
	}
	return false
}

func (el *Element) debug(buf *bytes.Buffer, depth int) {
	for x := 0; x < depth; x++ {
		buf.WriteByte('\t')
	}
	buf.WriteString(el.Kind.String())
	if len(el.Meta.ID) > 0 {
		buf.WriteString(" #" + el.Meta.ID)
	}
	buf.WriteByte('\n')
	for child := el.FirstChild; child != nil; child = child.NextSibling {
		child.debug(buf, depth+1)
	}
}

// generateID derive a section identifier from its title text: lowercase,
// runs of non-alphanumerics collapsed to the idseparator, the idprefix
// prepended.
func generateID(store *AttributeStore, str string) string {
	prefix, ok := store.Get("idprefix")
	if !ok {
		prefix = "_"
	}
	sep, ok := store.Get("idseparator")
	if !ok {
		sep = "_"
	}
	var sepRune rune = '_'
	if len(sep) > 0 {
		sepRune = []rune(sep)[0]
	}

	// Non-ASCII alphanumerics collapse to the separator like any other
	// punctuation.
	id := make([]rune, 0, len(str)+1)
	for _, c := range strings.ToLower(str) {
		if (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') {
			id = append(id, c)
			continue
		}
		if len(id) > 0 && id[len(id)-1] == sepRune {
			continue
		}
		id = append(id, sepRune)
	}
	out := strings.TrimRight(string(id), string(sepRune))
	return prefix + out
}
