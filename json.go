// Copyright 2024, Shulhan <ms@kilabit.info>. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package asciidoc

import (
	"bufio"
	"io"
	"strconv"
)

// WriteJSON serialize the document tree into its canonical JSON form for
// tooling consumption.  Every node emits {"name": <variant>, "location":
// {...}, ...}; callout references serialize with "name":
// "callout_reference".  The reverse direction is not supported: the
// canonical way to load a tree is to parse the source.
func WriteJSON(w io.Writer, doc *Document) error {
	enc := &jsonEncoder{
		w:    bufio.NewWriter(w),
		smap: doc.SourceMap,
	}
	enc.beginObject()
	enc.field("name")
	enc.str("document")
	if doc.Title != nil {
		enc.field("title")
		enc.beginObject()
		enc.field("main")
		enc.str(doc.Title.Main)
		if len(doc.Title.Subtitle) > 0 {
			enc.field("subtitle")
			enc.str(doc.Title.Subtitle)
		}
		enc.field("inlines")
		enc.inlines(doc.Title.Inlines)
		enc.endObject()
	}
	if len(doc.Authors) > 0 {
		enc.field("authors")
		enc.beginList()
		for _, author := range doc.Authors {
			enc.beginObject()
			enc.field("name")
			enc.str(author.FullName())
			if len(author.Email) > 0 {
				enc.field("email")
				enc.str(author.Email)
			}
			enc.endObject()
		}
		enc.endList()
	}
	if doc.Revision != nil {
		enc.field("revision")
		enc.beginObject()
		enc.field("number")
		enc.str(doc.Revision.Number)
		enc.field("date")
		enc.str(doc.Revision.Date)
		enc.field("remark")
		enc.str(doc.Revision.Remark)
		enc.endObject()
	}
	enc.field("attributes")
	enc.beginObject()
	for _, name := range doc.Attributes.Names() {
		value, _ := doc.Attributes.Get(name)
		enc.field(name)
		enc.str(value)
	}
	enc.endObject()

	enc.field("blocks")
	enc.blocks(doc.Root)
	enc.endObject()
	return enc.w.Flush()
}

type jsonEncoder struct {
	w    *bufio.Writer
	smap *SourceMap

	// comma tracks whether the next value at each nesting depth needs a
	// leading comma.
	comma []bool
}

func (enc *jsonEncoder) sep() {
	if n := len(enc.comma); n > 0 {
		if enc.comma[n-1] {
			enc.w.WriteByte(',')
		}
		enc.comma[n-1] = true
	}
}

func (enc *jsonEncoder) beginObject() {
	enc.sep()
	enc.w.WriteByte('{')
	enc.comma = append(enc.comma, false)
}

func (enc *jsonEncoder) endObject() {
	enc.comma = enc.comma[:len(enc.comma)-1]
	enc.w.WriteByte('}')
}

func (enc *jsonEncoder) beginList() {
	enc.sep()
	enc.w.WriteByte('[')
	enc.comma = append(enc.comma, false)
}

func (enc *jsonEncoder) endList() {
	enc.comma = enc.comma[:len(enc.comma)-1]
	enc.w.WriteByte(']')
}

func (enc *jsonEncoder) field(name string) {
	enc.sep()
	enc.w.WriteString(strconv.Quote(name))
	enc.w.WriteByte(':')
	// The value that follows must not emit another comma.
	if n := len(enc.comma); n > 0 {
		enc.comma[n-1] = false
	}
}

func (enc *jsonEncoder) str(s string) {
	enc.sep()
	enc.w.WriteString(strconv.Quote(s))
}

func (enc *jsonEncoder) num(n int) {
	enc.sep()
	enc.w.WriteString(strconv.Itoa(n))
}

func (enc *jsonEncoder) location(loc Location) {
	enc.field("location")
	enc.beginObject()
	enc.field("file")
	enc.str(enc.smap.File(loc.File))
	enc.field("start")
	enc.position(loc.Start)
	enc.field("end")
	enc.position(loc.End)
	enc.endObject()
}

func (enc *jsonEncoder) position(pos Position) {
	enc.beginObject()
	enc.field("line")
	enc.num(pos.Line)
	enc.field("col")
	enc.num(pos.Column)
	enc.endObject()
}

func (enc *jsonEncoder) metadata(meta *BlockMetadata) {
	if len(meta.ID) > 0 {
		enc.field("id")
		enc.str(meta.ID)
	}
	if len(meta.Style) > 0 {
		enc.field("style")
		enc.str(meta.Style)
	}
	if len(meta.Roles) > 0 {
		enc.field("roles")
		enc.beginList()
		for _, role := range meta.Roles {
			enc.str(role)
		}
		enc.endList()
	}
	if len(meta.Options) > 0 {
		enc.field("options")
		enc.beginList()
		for _, opt := range meta.Options {
			enc.str(opt)
		}
		enc.endList()
	}
	if len(meta.Attrs) > 0 {
		enc.field("attributes")
		enc.beginObject()
		for _, attr := range meta.Attrs {
			enc.field(attr.Key)
			enc.str(attr.Val)
		}
		enc.endObject()
	}
	if len(meta.Title) > 0 {
		enc.field("title")
		enc.inlines(meta.Title)
	}
	enc.location(meta.SourceRange)
}

func (enc *jsonEncoder) blocks(parent *Element) {
	enc.beginList()
	for el := parent.FirstChild; el != nil; el = el.NextSibling {
		enc.block(el)
	}
	enc.endList()
}

func (enc *jsonEncoder) block(el *Element) {
	enc.beginObject()
	enc.field("name")
	enc.str(el.Kind.String())

	switch el.Kind {
	case KindSection:
		enc.field("level")
		enc.num(el.Level)
		enc.field("title")
		enc.inlines(el.Text)

	case KindList:
		enc.field("variant")
		switch el.ListKind {
		case ListOrdered:
			enc.str("ordered")
		case ListDescription:
			enc.str("description")
		default:
			enc.str("unordered")
		}
		enc.field("marker")
		enc.str(el.Marker)

	case KindListItem:
		if len(el.Term) > 0 {
			enc.field("term")
			enc.inlines(el.Term)
		}
		enc.field("principal")
		enc.inlines(el.Text)

	case KindTable:
		enc.table(el.TableData)

	case KindImage, KindAudio, KindVideo, KindToc:
		enc.field("target")
		enc.str(el.Target)

	case KindAdmonition:
		enc.field("variant")
		enc.str(el.Admonition)

	case KindCalloutItem:
		enc.field("number")
		enc.num(el.Number)
	}

	if el.IsVerbatim() || el.Kind == KindStem || el.Kind == KindVerse {
		enc.field("content")
		enc.str(string(el.Raw))
	}
	if len(el.Text) > 0 && el.Kind != KindSection && el.Kind != KindListItem {
		enc.field("inlines")
		enc.inlines(el.Text)
	}
	if el.FirstChild != nil {
		enc.field("blocks")
		enc.blocks(el)
	}
	enc.metadata(&el.Meta)
	enc.endObject()
}

func (enc *jsonEncoder) table(table *Table) {
	if table == nil {
		return
	}
	enc.field("columns")
	enc.beginList()
	for _, col := range table.Columns {
		enc.beginObject()
		enc.field("width")
		enc.num(col.Width)
		if col.HAlign != 0 {
			enc.field("halign")
			enc.str(alignName(col.HAlign))
		}
		if col.VAlign != 0 {
			enc.field("valign")
			enc.str(alignName(col.VAlign))
		}
		if col.Style != 0 {
			enc.field("style")
			enc.str(string(col.Style))
		}
		enc.endObject()
	}
	enc.endList()

	enc.field("rows")
	enc.beginList()
	for _, row := range table.Rows {
		enc.beginList()
		for _, cell := range row.Cells {
			enc.beginObject()
			enc.field("name")
			enc.str("table_cell")
			if cell.ColSpan > 1 {
				enc.field("colspan")
				enc.num(cell.ColSpan)
			}
			if cell.RowSpan > 1 {
				enc.field("rowspan")
				enc.num(cell.RowSpan)
			}
			if cell.Style != 0 {
				enc.field("style")
				enc.str(string(cell.Style))
			}
			if cell.Doc != nil {
				enc.field("blocks")
				enc.blocks(cell.Doc.Root)
			} else {
				enc.field("inlines")
				enc.inlines(cell.Text)
			}
			enc.location(cell.Location)
			enc.endObject()
		}
		enc.endList()
	}
	enc.endList()
}

func alignName(c byte) string {
	switch c {
	case '<':
		return "start"
	case '^':
		return "center"
	case '>':
		return "end"
	}
	return ""
}

func (enc *jsonEncoder) inlines(nodes []*Inline) {
	enc.beginList()
	for _, node := range nodes {
		enc.inline(node)
	}
	enc.endList()
}

func (enc *jsonEncoder) inline(node *Inline) {
	enc.beginObject()
	enc.field("name")
	enc.str(node.Kind.String())

	if len(node.Text) > 0 {
		enc.field("value")
		enc.str(node.Text)
	}
	if len(node.Target) > 0 {
		enc.field("target")
		enc.str(node.Target)
	}
	if len(node.ID) > 0 {
		enc.field("id")
		enc.str(node.ID)
	}
	if node.Kind == InlineCalloutRef {
		enc.field("number")
		enc.num(node.Number)
	}
	if node.Kind == InlineRaw && len(node.Subs) > 0 {
		enc.field("substitutions")
		enc.beginList()
		for _, sub := range node.Subs {
			enc.str(sub.String())
		}
		enc.endList()
	}
	if len(node.Attrs) > 0 {
		enc.field("attributes")
		enc.beginObject()
		for _, attr := range node.Attrs {
			enc.field(attr.Key)
			enc.str(attr.Val)
		}
		enc.endObject()
	}
	if len(node.Child) > 0 {
		enc.field("inlines")
		enc.inlines(node.Child)
	}
	enc.location(node.Location)
	enc.endObject()
}
