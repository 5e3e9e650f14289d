// Copyright 2024, Shulhan <ms@kilabit.info>. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

//
// Package html renders a parsed AsciiDoc document into HTML5, with output
// modeled on asciidoctor's structural markup.
//
package html

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/shuLhan/asciidoc"
)

// interface check
var _ asciidoc.Converter = (*Converter)(nil)

// Converter implements asciidoc.Converter for HTML5 output.
type Converter struct {
	w   *bufio.Writer
	doc *asciidoc.Document

	numbers   map[*asciidoc.Element]string
	footnotes []*asciidoc.Inline

	// Standalone emits the full page shell; without it only the body
	// fragment is written.
	Standalone bool

	// CodeStyle is the chroma style used for source listings.
	CodeStyle string
}

// NewConverter create an HTML converter writing to w.
func NewConverter(w io.Writer) *Converter {
	return &Converter{
		w:          bufio.NewWriter(w),
		Standalone: true,
		CodeStyle:  "github",
	}
}

// Convert render the whole document to w as a standalone page.
func Convert(doc *asciidoc.Document, w io.Writer) error {
	return asciidoc.Convert(doc, NewConverter(w))
}

func (conv *Converter) out(args ...any) {
	for _, arg := range args {
		switch v := arg.(type) {
		case string:
			conv.w.WriteString(v)
		case []byte:
			conv.w.Write(v)
		default:
			fmt.Fprint(conv.w, v)
		}
	}
}

func (conv *Converter) DocumentBegin(doc *asciidoc.Document) error {
	conv.doc = doc
	if doc.Attributes.IsSet("sectnums") {
		conv.numbers = asciidoc.SectionNumbers(doc)
	}
	if !conv.Standalone {
		return nil
	}

	var title string
	if doc.Title != nil {
		title = doc.Title.Main
	} else if v, ok := doc.Attributes.Get("untitled-label"); ok {
		title = v
	}

	conv.out(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<meta name="generator" content="asciidoc-go">
`)
	for _, author := range doc.Authors {
		conv.out(`<meta name="author" content="`, escape(author.FullName()), "\">\n")
		break
	}
	conv.out("<title>", escape(title), "</title>\n</head>\n")
	conv.out(`<body class="`, doc.Doctype.String(), "\">\n")

	conv.out(`<div id="header">` + "\n")
	if doc.Title != nil {
		conv.out("<h1>")
		asciidoc.ConvertInlines(doc.Title.Inlines, conv)
		if len(doc.Title.Subtitle) > 0 {
			conv.out(": ", escape(doc.Title.Subtitle))
		}
		conv.out("</h1>\n")
	}
	if len(doc.Authors) > 0 || doc.Revision != nil {
		conv.out(`<div class="details">` + "\n")
		for x, author := range doc.Authors {
			conv.out(`<span id="author`, suffixNum(x),
				`" class="author">`, escape(author.FullName()),
				"</span><br>\n")
			if len(author.Email) > 0 {
				conv.out(`<span id="email`, suffixNum(x),
					`" class="email"><a href="mailto:`,
					escape(author.Email), `">`,
					escape(author.Email), "</a></span><br>\n")
			}
		}
		if rev := doc.Revision; rev != nil {
			if len(rev.Number) > 0 {
				conv.out(`<span id="revnumber">version `,
					escape(rev.Number))
				if len(rev.Date) > 0 {
					conv.out(",")
				}
				conv.out("</span>\n")
			}
			if len(rev.Date) > 0 {
				conv.out(`<span id="revdate">`, escape(rev.Date),
					"</span>\n")
			}
			if len(rev.Remark) > 0 {
				conv.out(`<br><span id="revremark">`,
					escape(rev.Remark), "</span>\n")
			}
		}
		conv.out("</div>\n")
	}
	conv.out("</div>\n")
	conv.out(`<div id="content">` + "\n")
	return nil
}

func suffixNum(x int) string {
	if x == 0 {
		return ""
	}
	return fmt.Sprintf("%d", x+1)
}

func (conv *Converter) DocumentEnd(doc *asciidoc.Document) error {
	if len(conv.footnotes) > 0 {
		conv.out(`<div id="footnotes">`, "\n<hr>\n")
		for x, note := range conv.footnotes {
			conv.out(`<div class="footnote" id="_footnotedef_`,
				x+1, "\">\n")
			conv.out(`<a href="#_footnoteref_`, x+1, `">`, x+1,
				"</a>. ")
			asciidoc.ConvertInlines(note.Child, conv)
			conv.out("\n</div>\n")
		}
		conv.out("</div>\n")
	}
	if !conv.Standalone {
		return conv.w.Flush()
	}
	conv.out("</div>\n")

	conv.out(`<div id="footer">`, "\n", `<div id="footer-text">`, "\n")
	if rev := doc.Revision; rev != nil && len(rev.Number) > 0 {
		label, _ := doc.Attributes.Get("version-label")
		conv.out(escape(label), " ", escape(rev.Number), "<br>\n")
	}
	conv.out("</div>\n</div>\n</body>\n</html>\n")
	return conv.w.Flush()
}

func (conv *Converter) blockTitle(el *asciidoc.Element) {
	if len(el.Meta.Title) > 0 {
		conv.out(`<div class="title">`)
		asciidoc.ConvertInlines(el.Meta.Title, conv)
		conv.out("</div>\n")
	}
}

// openBlock emit the wrapping div of a block with its id, class, and
// roles.
func (conv *Converter) openBlock(el *asciidoc.Element, class string) {
	conv.out("<div")
	if len(el.Meta.ID) > 0 {
		conv.out(` id="`, escape(el.Meta.ID), `"`)
	}
	conv.out(` class="`, class)
	for _, role := range el.Meta.Roles {
		conv.out(" ", escape(role))
	}
	conv.out("\">\n")
}

func (conv *Converter) SectionEnter(el *asciidoc.Element) error {
	level := el.Level
	if level < 1 {
		level = 1
	}
	conv.out(fmt.Sprintf("<div class=\"sect%d\">\n", level))
	conv.out(fmt.Sprintf("<h%d", level+1))
	if len(el.Meta.ID) > 0 {
		conv.out(` id="`, escape(el.Meta.ID), `"`)
	}
	conv.out(">")
	if number, ok := conv.numbers[el]; ok {
		conv.out(number, " ")
	}
	asciidoc.ConvertInlines(el.Text, conv)
	conv.out(fmt.Sprintf("</h%d>\n", level+1))
	if level == 1 {
		conv.out(`<div class="sectionbody">` + "\n")
	}
	return nil
}

func (conv *Converter) SectionLeave(el *asciidoc.Element) error {
	if el.Level <= 1 {
		conv.out("</div>\n")
	}
	conv.out("</div>\n")
	return nil
}

func (conv *Converter) Paragraph(el *asciidoc.Element) error {
	conv.openBlock(el, "paragraph")
	conv.blockTitle(el)
	conv.out("<p>")
	asciidoc.ConvertInlines(el.Text, conv)
	conv.out("</p>\n</div>\n")
	return nil
}

func (conv *Converter) Listing(el *asciidoc.Element) error {
	conv.openBlock(el, "listingblock")
	conv.blockTitle(el)
	conv.out(`<div class="content">` + "\n")

	lang, _ := el.Meta.Attr("language")
	if el.Meta.Style == "source" && len(lang) > 0 {
		conv.highlight(el, lang)
	} else {
		conv.out("<pre>")
		conv.verbatim(el)
		conv.out("</pre>\n")
	}
	conv.out("</div>\n</div>\n")
	return nil
}

// verbatim emit the inline list of a verbatim block: raw segments escaped
// per their substitution list, callout markers as conums.
func (conv *Converter) verbatim(el *asciidoc.Element) {
	for _, node := range el.Text {
		switch node.Kind {
		case asciidoc.InlineCalloutRef:
			conv.out(`<b class="conum">(`, node.Number, ")</b>")
		default:
			asciidoc.ConvertInline(node, conv)
		}
	}
}

func (conv *Converter) Literal(el *asciidoc.Element) error {
	conv.openBlock(el, "literalblock")
	conv.blockTitle(el)
	conv.out(`<div class="content">`, "\n<pre>")
	conv.verbatim(el)
	conv.out("</pre>\n</div>\n</div>\n")
	return nil
}

func (conv *Converter) Example(el *asciidoc.Element) error {
	conv.openBlock(el, "exampleblock")
	conv.blockTitle(el)
	conv.out(`<div class="content">` + "\n")
	asciidoc.ConvertChildren(el, conv)
	conv.out("</div>\n</div>\n")
	return nil
}

func (conv *Converter) Sidebar(el *asciidoc.Element) error {
	conv.openBlock(el, "sidebarblock")
	conv.out(`<div class="content">` + "\n")
	conv.blockTitle(el)
	asciidoc.ConvertChildren(el, conv)
	conv.out("</div>\n</div>\n")
	return nil
}

func (conv *Converter) Quote(el *asciidoc.Element) error {
	conv.openBlock(el, "quoteblock")
	conv.blockTitle(el)
	conv.out("<blockquote>\n")
	asciidoc.ConvertChildren(el, conv)
	conv.out("</blockquote>\n")
	conv.attribution(el)
	conv.out("</div>\n")
	return nil
}

func (conv *Converter) attribution(el *asciidoc.Element) {
	who, ok := el.Meta.Attr("attribution")
	if !ok {
		return
	}
	conv.out(`<div class="attribution">`, "\n&#8212; ", escape(who))
	if cite, ok := el.Meta.Attr("citetitle"); ok {
		conv.out("<br>\n<cite>", escape(cite), "</cite>")
	}
	conv.out("\n</div>\n")
}

func (conv *Converter) Verse(el *asciidoc.Element) error {
	conv.openBlock(el, "verseblock")
	conv.blockTitle(el)
	conv.out(`<pre class="content">`)
	asciidoc.ConvertInlines(el.Text, conv)
	conv.out("</pre>\n")
	conv.attribution(el)
	conv.out("</div>\n")
	return nil
}

func (conv *Converter) Open(el *asciidoc.Element) error {
	conv.openBlock(el, "openblock")
	conv.blockTitle(el)
	conv.out(`<div class="content">` + "\n")
	asciidoc.ConvertChildren(el, conv)
	conv.out("</div>\n</div>\n")
	return nil
}

func (conv *Converter) PassBlock(el *asciidoc.Element) error {
	// Pass content is emitted untouched.
	conv.out(string(el.Raw), "\n")
	return nil
}

func (conv *Converter) Comment(el *asciidoc.Element) error {
	return nil
}

func (conv *Converter) ListEnter(el *asciidoc.Element) error {
	switch el.ListKind {
	case asciidoc.ListOrdered:
		conv.openBlock(el, "olist arabic")
		conv.blockTitle(el)
		conv.out(`<ol class="arabic">` + "\n")
	case asciidoc.ListDescription:
		conv.openBlock(el, "dlist")
		conv.blockTitle(el)
		conv.out("<dl>\n")
	default:
		conv.openBlock(el, "ulist")
		conv.blockTitle(el)
		conv.out("<ul>\n")
	}
	return nil
}

func (conv *Converter) ListLeave(el *asciidoc.Element) error {
	switch el.ListKind {
	case asciidoc.ListOrdered:
		conv.out("</ol>\n</div>\n")
	case asciidoc.ListDescription:
		conv.out("</dl>\n</div>\n")
	default:
		conv.out("</ul>\n</div>\n")
	}
	return nil
}

func (conv *Converter) ListItem(el *asciidoc.Element) error {
	if el.Parent != nil && el.Parent.ListKind == asciidoc.ListDescription {
		conv.out(`<dt class="hdlist1">`)
		asciidoc.ConvertInlines(el.Term, conv)
		conv.out("</dt>\n<dd>\n")
		if len(el.Text) > 0 {
			conv.out("<p>")
			asciidoc.ConvertInlines(el.Text, conv)
			conv.out("</p>\n")
		}
		asciidoc.ConvertChildren(el, conv)
		conv.out("</dd>\n")
		return nil
	}
	conv.out("<li>\n<p>")
	asciidoc.ConvertInlines(el.Text, conv)
	conv.out("</p>\n")
	asciidoc.ConvertChildren(el, conv)
	conv.out("</li>\n")
	return nil
}

func (conv *Converter) Table(el *asciidoc.Element) error {
	table := el.TableData
	if table == nil {
		return nil
	}
	conv.out(`<table class="tableblock frame-all grid-all stretch"`)
	if len(el.Meta.ID) > 0 {
		conv.out(` id="`, escape(el.Meta.ID), `"`)
	}
	conv.out(">\n")
	if len(el.Meta.Title) > 0 {
		conv.out("<caption>")
		asciidoc.ConvertInlines(el.Meta.Title, conv)
		conv.out("</caption>\n")
	}

	var total int
	for _, col := range table.Columns {
		total += col.Width
	}
	conv.out("<colgroup>\n")
	for _, col := range table.Columns {
		if col.Autowidth || total == 0 {
			conv.out("<col>\n")
			continue
		}
		conv.out(fmt.Sprintf("<col style=\"width: %d%%;\">\n",
			col.Width*100/total))
	}
	conv.out("</colgroup>\n")

	if err := asciidoc.ConvertTableRows(el, conv); err != nil {
		return err
	}
	if len(table.Rows) == 0 {
		conv.out("</table>\n")
	}
	return nil
}

func (conv *Converter) TableRowEnter(el *asciidoc.Element, row *asciidoc.Row) error {
	table := el.TableData
	if table.HasHeader && len(table.Rows) > 0 && row == table.Rows[0] {
		conv.out("<thead>\n")
	}
	conv.out("<tr>\n")
	return nil
}

func (conv *Converter) TableRowLeave(el *asciidoc.Element, row *asciidoc.Row) error {
	conv.out("</tr>\n")
	table := el.TableData
	if table.HasHeader && len(table.Rows) > 0 && row == table.Rows[0] {
		conv.out("</thead>\n")
	}
	if row == table.Rows[len(table.Rows)-1] {
		conv.out("</table>\n")
	}
	return nil
}

func (conv *Converter) TableCell(el *asciidoc.Element, cell *asciidoc.Cell) error {
	tag := "td"
	if cell.Style == 'h' {
		tag = "th"
	}
	conv.out("<", tag, ` class="tableblock halign-`,
		alignClass(cell.HAlign), " valign-", valignClass(cell.VAlign),
		`"`)
	if cell.ColSpan > 1 {
		conv.out(fmt.Sprintf(" colspan=\"%d\"", cell.ColSpan))
	}
	if cell.RowSpan > 1 {
		conv.out(fmt.Sprintf(" rowspan=\"%d\"", cell.RowSpan))
	}
	conv.out(">")

	switch {
	case cell.Doc != nil:
		sub := NewConverter(conv.w)
		sub.Standalone = false
		asciidoc.Convert(cell.Doc, sub)
	case cell.Style == 'e':
		conv.out("<em>")
		asciidoc.ConvertInlines(cell.Text, conv)
		conv.out("</em>")
	case cell.Style == 's':
		conv.out("<strong>")
		asciidoc.ConvertInlines(cell.Text, conv)
		conv.out("</strong>")
	case cell.Style == 'm':
		conv.out("<code>")
		asciidoc.ConvertInlines(cell.Text, conv)
		conv.out("</code>")
	case cell.Style == 'l':
		conv.out(`<div class="literal"><pre>`)
		asciidoc.ConvertInlines(cell.Text, conv)
		conv.out("</pre></div>")
	case cell.Style == 'h':
		asciidoc.ConvertInlines(cell.Text, conv)
	default:
		conv.out(`<p class="tableblock">`)
		asciidoc.ConvertInlines(cell.Text, conv)
		conv.out("</p>")
	}
	conv.out("</", tag, ">\n")
	return nil
}

func alignClass(c byte) string {
	switch c {
	case '^':
		return "center"
	case '>':
		return "right"
	}
	return "left"
}

func valignClass(c byte) string {
	switch c {
	case '^':
		return "middle"
	case '>':
		return "bottom"
	}
	return "top"
}

func (conv *Converter) ImageBlock(el *asciidoc.Element) error {
	conv.openBlock(el, "imageblock")
	conv.out(`<div class="content">`, "\n<img src=\"",
		escape(el.Target), `"`)
	if alt, ok := el.Meta.Attr("alt"); ok {
		conv.out(` alt="`, escape(alt), `"`)
	}
	if width, ok := el.Meta.Attr("width"); ok {
		conv.out(` width="`, escape(width), `"`)
	}
	if height, ok := el.Meta.Attr("height"); ok {
		conv.out(` height="`, escape(height), `"`)
	}
	conv.out(">\n</div>\n")
	conv.blockTitle(el)
	conv.out("</div>\n")
	return nil
}

func (conv *Converter) AudioBlock(el *asciidoc.Element) error {
	conv.openBlock(el, "audioblock")
	conv.blockTitle(el)
	conv.out(`<div class="content">`, "\n<audio src=\"",
		escape(el.Target), `" controls>`,
		"\nYour browser does not support the audio tag.\n",
		"</audio>\n</div>\n</div>\n")
	return nil
}

func (conv *Converter) VideoBlock(el *asciidoc.Element) error {
	conv.openBlock(el, "videoblock")
	conv.blockTitle(el)
	conv.out(`<div class="content">`, "\n<video src=\"",
		escape(el.Target), `" controls>`,
		"\nYour browser does not support the video tag.\n",
		"</video>\n</div>\n</div>\n")
	return nil
}

func (conv *Converter) ThematicBreak(el *asciidoc.Element) error {
	conv.out("<hr>\n")
	return nil
}

func (conv *Converter) PageBreak(el *asciidoc.Element) error {
	conv.out(`<div style="page-break-after: always;"></div>` + "\n")
	return nil
}

func (conv *Converter) Admonition(el *asciidoc.Element) error {
	variant := strings.ToLower(el.Admonition)
	if len(variant) == 0 {
		variant = strings.ToLower(el.Meta.Style)
	}
	caption, _ := conv.doc.Attributes.Get(variant + "-caption")

	conv.openBlock(el, "admonitionblock "+variant)
	conv.out("<table>\n<tr>\n", `<td class="icon">`, "\n",
		`<div class="title">`, escape(caption), "</div>\n</td>\n",
		`<td class="content">`, "\n")
	conv.blockTitle(el)
	if len(el.Text) > 0 {
		asciidoc.ConvertInlines(el.Text, conv)
	}
	asciidoc.ConvertChildren(el, conv)
	conv.out("\n</td>\n</tr>\n</table>\n</div>\n")
	return nil
}

func (conv *Converter) Toc(el *asciidoc.Element) error {
	title, _ := conv.doc.Attributes.Get("toc-title")
	conv.out(`<div id="toc" class="toc">`, "\n",
		`<div id="toctitle">`, escape(title), "</div>\n")
	conv.tocLevel(conv.doc.Root, 1, conv.tocDepth())
	conv.out("</div>\n")
	return nil
}

func (conv *Converter) tocDepth() int {
	if v, ok := conv.doc.Attributes.Get("toclevels"); ok {
		var n int
		if _, err := fmt.Sscanf(v, "%d", &n); err == nil {
			return n
		}
	}
	return 2
}

func (conv *Converter) tocLevel(parent *asciidoc.Element, level, depth int) {
	var open bool
	for el := parent.FirstChild; el != nil; el = el.NextSibling {
		if el.Kind != asciidoc.KindSection || el.Level > depth {
			continue
		}
		if !open {
			conv.out(fmt.Sprintf("<ul class=\"sectlevel%d\">\n", level))
			open = true
		}
		conv.out(`<li><a href="#`, escape(el.Meta.ID), `">`)
		if number, ok := conv.numbers[el]; ok {
			conv.out(number, " ")
		}
		conv.out(escape(asciidoc.InlinesText(el.Text)), "</a>")
		conv.tocLevel(el, level+1, depth)
		conv.out("</li>\n")
	}
	if open {
		conv.out("</ul>\n")
	}
}

func (conv *Converter) StemBlock(el *asciidoc.Element) error {
	conv.openBlock(el, "stemblock")
	conv.blockTitle(el)
	conv.out(`<div class="content">`, "\n\\$", string(el.Raw),
		"\\$\n</div>\n</div>\n")
	return nil
}

func (conv *Converter) IndexBlock(el *asciidoc.Element) error {
	conv.openBlock(el, "indexblock")
	asciidoc.ConvertChildren(el, conv)
	conv.out("</div>\n")
	return nil
}

func (conv *Converter) CalloutList(el *asciidoc.Element) error {
	conv.openBlock(el, "colist arabic")
	conv.out("<ol>\n")
	for item := el.FirstChild; item != nil; item = item.NextSibling {
		conv.out("<li>\n<p>")
		asciidoc.ConvertInlines(item.Text, conv)
		conv.out("</p>\n</li>\n")
	}
	conv.out("</ol>\n</div>\n")
	return nil
}

func (conv *Converter) DiscreteHeading(el *asciidoc.Element) error {
	level := el.Level
	if level < 1 {
		level = 1
	}
	conv.out(fmt.Sprintf("<h%d", level+1))
	if len(el.Meta.ID) > 0 {
		conv.out(` id="`, escape(el.Meta.ID), `"`)
	}
	conv.out(` class="discrete">`)
	asciidoc.ConvertInlines(el.Text, conv)
	conv.out(fmt.Sprintf("</h%d>\n", level+1))
	return nil
}
