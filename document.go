// Copyright 2024, Shulhan <ms@kilabit.info>. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package asciidoc

import (
	"strconv"
	"strings"
)

// DocumentTitle is the parsed main title of a document: the head text, the
// optional subtitle split on the last ": ", and the parsed inline tree of
// the head.
type DocumentTitle struct {
	Main     string
	Subtitle string
	Inlines  []*Inline
}

// Author is one entry of the document author line.
type Author struct {
	FirstName  string
	MiddleName string
	LastName   string
	Email      string
}

// FullName return the space joined name parts.
func (author *Author) FullName() string {
	parts := make([]string, 0, 3)
	for _, part := range []string{author.FirstName, author.MiddleName, author.LastName} {
		if len(part) > 0 {
			parts = append(parts, part)
		}
	}
	return strings.Join(parts, " ")
}

// Initials return the upper case first letters of the name parts.
func (author *Author) Initials() string {
	var sb strings.Builder
	for _, part := range []string{author.FirstName, author.MiddleName, author.LastName} {
		if len(part) > 0 {
			sb.WriteString(strings.ToUpper(part[:1]))
		}
	}
	return sb.String()
}

// Revision is the parsed revision line "v1.2, 2024-01-01: remark".
type Revision struct {
	Number string
	Date   string
	Remark string
}

// Document is the root of a parsed AsciiDoc tree.  It owns the attribute
// store, the source map, the passthrough tables referenced by Raw nodes,
// and the diagnostics collected during parsing; converters borrow all of
// them immutably.
type Document struct {
	// Root is the KindDocument element whose children are the top
	// level blocks.
	Root *Element

	Title    *DocumentTitle
	Authors  []*Author
	Revision *Revision

	Attributes  *AttributeStore
	SourceMap   *SourceMap
	Diagnostics []Diagnostic

	Doctype Doctype

	// anchors maps every identifier in the tree to its element, for
	// late bound cross reference lookup.
	anchors map[string]*Element
}

func newDocument(doctype Doctype, store *AttributeStore, smap *SourceMap) *Document {
	return &Document{
		Root: &Element{
			Kind: KindDocument,
		},
		Attributes: store,
		SourceMap:  smap,
		Doctype:    doctype,
		anchors:    make(map[string]*Element),
	}
}

// Anchor return the element registered under the identifier.
func (doc *Document) Anchor(id string) *Element {
	return doc.anchors[id]
}

// registerAnchor bind id to el.  A duplicate explicit identifier raises an
// AnchorConflict warning and the later definition wins.
func (doc *Document) registerAnchor(id string, el *Element, diags *diagnostics, explicit bool) {
	if len(id) == 0 {
		return
	}
	if _, ok := doc.anchors[id]; ok && explicit && diags != nil {
		loc := el.Meta.SourceRange
		diags.warn(DiagAnchorConflict, doc.SourceMap.File(loc.File),
			loc.Start.Line, loc.Start.Column,
			"duplicate id %q, the later definition wins", id)
	}
	doc.anchors[id] = el
}

// uniqueID disambiguate a derived identifier by appending "_2", "_3", ...
// in traversal order until it is free.
func (doc *Document) uniqueID(id string) string {
	if _, ok := doc.anchors[id]; !ok {
		return id
	}
	for x := 2; ; x++ {
		candidate := id + "_" + strconv.Itoa(x)
		if _, ok := doc.anchors[candidate]; !ok {
			return candidate
		}
	}
}

// parseDocumentTitle split the raw title line into head and subtitle on
// the last ": " separator.
func parseDocumentTitle(raw string) *DocumentTitle {
	title := &DocumentTitle{Main: raw}
	if x := strings.LastIndex(raw, ": "); x > 0 {
		title.Main = raw[:x]
		title.Subtitle = strings.TrimSpace(raw[x+2:])
	}
	return title
}

// parseAuthorLine split "First [Middle] [Last] [<email>]" entries
// separated by ";".
func parseAuthorLine(line string) (authors []*Author) {
	for _, entry := range strings.Split(line, ";") {
		entry = strings.TrimSpace(entry)
		if len(entry) == 0 {
			continue
		}
		author := &Author{}
		if x := strings.IndexByte(entry, '<'); x >= 0 {
			if y := strings.IndexByte(entry[x:], '>'); y > 0 {
				author.Email = entry[x+1 : x+y]
			}
			entry = strings.TrimSpace(entry[:x])
		}
		parts := strings.Fields(entry)
		switch len(parts) {
		case 0:
			continue
		case 1:
			author.FirstName = parts[0]
		case 2:
			author.FirstName = parts[0]
			author.LastName = parts[1]
		default:
			author.FirstName = parts[0]
			author.MiddleName = strings.Join(parts[1:len(parts)-1], " ")
			author.LastName = parts[len(parts)-1]
		}
		// Underscores join multi-word name parts.
		author.FirstName = strings.ReplaceAll(author.FirstName, "_", " ")
		author.MiddleName = strings.ReplaceAll(author.MiddleName, "_", " ")
		author.LastName = strings.ReplaceAll(author.LastName, "_", " ")
		authors = append(authors, author)
	}
	return authors
}

// isAuthorLine report whether line can be a document author line: it must
// start with a letter or underscore.
func isAuthorLine(line string) bool {
	if len(line) == 0 {
		return false
	}
	c := line[0]
	return (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z') || c == '_'
}

// parseRevisionLine parse "v1.2, 2024-01-01: remark".  The leading "v" is
// required only when the line carries neither date nor remark.
func parseRevisionLine(line string) (rev *Revision, ok bool) {
	rev = &Revision{}
	rest := line
	if x := strings.IndexByte(rest, ','); x >= 0 {
		rev.Number = strings.TrimSpace(rest[:x])
		rest = strings.TrimSpace(rest[x+1:])
		if y := strings.IndexByte(rest, ':'); y >= 0 {
			rev.Date = strings.TrimSpace(rest[:y])
			rev.Remark = strings.TrimSpace(rest[y+1:])
		} else {
			rev.Date = rest
		}
	} else if x := strings.IndexByte(rest, ':'); x >= 0 {
		rev.Number = strings.TrimSpace(rest[:x])
		rev.Remark = strings.TrimSpace(rest[x+1:])
	} else {
		rev.Number = strings.TrimSpace(rest)
	}

	if len(rev.Number) > 0 && rev.Number[0] == 'v' {
		rev.Number = rev.Number[1:]
		return rev, len(rev.Number) > 0
	}
	if len(rev.Number) == 0 || (len(rev.Date) == 0 && len(rev.Remark) == 0) {
		return nil, false
	}
	for x := 0; x < len(rev.Number); x++ {
		c := rev.Number[x]
		if !(c >= '0' && c <= '9') && c != '.' {
			return nil, false
		}
	}
	return rev, true
}
