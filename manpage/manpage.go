// Copyright 2024, Shulhan <ms@kilabit.info>. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

//
// Package manpage renders a parsed AsciiDoc document, normally one with
// the manpage doctype, into roff man macros.
//
package manpage

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shuLhan/asciidoc"
)

// interface check
var _ asciidoc.Converter = (*Converter)(nil)

// Converter implements asciidoc.Converter for roff output.
type Converter struct {
	w   *bufio.Writer
	doc *asciidoc.Document
}

// NewConverter create a manpage converter writing to w.
func NewConverter(w io.Writer) *Converter {
	return &Converter{w: bufio.NewWriter(w)}
}

// Convert render the whole document to w.
func Convert(doc *asciidoc.Document, w io.Writer) error {
	return asciidoc.Convert(doc, NewConverter(w))
}

func (conv *Converter) out(args ...any) {
	for _, arg := range args {
		switch v := arg.(type) {
		case string:
			conv.w.WriteString(v)
		default:
			fmt.Fprint(conv.w, v)
		}
	}
}

// escape protect roff control characters: a leading dot or quote, and
// backslashes anywhere.
func escape(text string) string {
	text = strings.ReplaceAll(text, `\`, `\e`)
	if strings.HasPrefix(text, ".") || strings.HasPrefix(text, "'") {
		text = `\&` + text
	}
	return text
}

func (conv *Converter) DocumentBegin(doc *asciidoc.Document) error {
	conv.doc = doc

	// "name(volume)" from the document title; volume 1 when the title
	// does not conform.
	name := "untitled"
	volume := "1"
	if doc.Title != nil {
		name = doc.Title.Main
		if x := strings.IndexByte(name, '('); x > 0 &&
			strings.HasSuffix(name, ")") {
			volume = name[x+1 : len(name)-1]
			name = name[:x]
		}
	}
	// The parser does not seed wall-clock attributes; the backend
	// supplies the date unless the document overrides it.
	date, ok := doc.Attributes.Get("docdate")
	if !ok {
		date = time.Now().Format("2006-01-02")
	}

	conv.out(".TH \"", strings.ToUpper(escape(name)), "\" \"", volume,
		"\" \"", date, "\" \"", manSource(doc), "\"\n")
	conv.out(".ie \\n(.g .ds Aq \\(aq\n.el .ds Aq '\n")
	conv.out(".nh\n.ad l\n")
	return nil
}

func manSource(doc *asciidoc.Document) string {
	if v, ok := doc.Attributes.Get("mansource"); ok {
		return v
	}
	if rev := doc.Revision; rev != nil {
		return rev.Number
	}
	return ""
}

func (conv *Converter) DocumentEnd(doc *asciidoc.Document) error {
	return conv.w.Flush()
}

func (conv *Converter) SectionEnter(el *asciidoc.Element) error {
	title := asciidoc.InlinesText(el.Text)
	if el.Level <= 1 {
		conv.out(".SH \"", strings.ToUpper(escape(title)), "\"\n")
	} else {
		conv.out(".SS \"", escape(title), "\"\n")
	}
	return nil
}

func (conv *Converter) SectionLeave(el *asciidoc.Element) error { return nil }

func (conv *Converter) Paragraph(el *asciidoc.Element) error {
	conv.out(".sp\n")
	asciidoc.ConvertInlines(el.Text, conv)
	conv.out("\n")
	return nil
}

func (conv *Converter) verbatim(el *asciidoc.Element) error {
	conv.out(".sp\n.if n .RS 4\n.nf\n")
	for _, node := range el.Text {
		switch node.Kind {
		case asciidoc.InlineRaw:
			conv.out(escape(node.Text))
		case asciidoc.InlineCalloutRef:
			conv.out(" (", node.Number, ")")
		}
	}
	conv.out("\n.fi\n.if n .RE\n")
	return nil
}

func (conv *Converter) Listing(el *asciidoc.Element) error { return conv.verbatim(el) }
func (conv *Converter) Literal(el *asciidoc.Element) error { return conv.verbatim(el) }

func (conv *Converter) container(el *asciidoc.Element) error {
	conv.out(".RS 4\n")
	asciidoc.ConvertChildren(el, conv)
	conv.out(".RE\n")
	return nil
}

func (conv *Converter) Example(el *asciidoc.Element) error { return conv.container(el) }
func (conv *Converter) Sidebar(el *asciidoc.Element) error { return conv.container(el) }
func (conv *Converter) Quote(el *asciidoc.Element) error   { return conv.container(el) }
func (conv *Converter) Open(el *asciidoc.Element) error {
	asciidoc.ConvertChildren(el, conv)
	return nil
}

func (conv *Converter) Verse(el *asciidoc.Element) error {
	conv.out(".sp\n.nf\n")
	asciidoc.ConvertInlines(el.Text, conv)
	conv.out("\n.fi\n")
	return nil
}

func (conv *Converter) PassBlock(el *asciidoc.Element) error {
	// Raw passthrough content is meaningless to roff; emit as-is.
	conv.out(string(el.Raw), "\n")
	return nil
}

func (conv *Converter) Comment(el *asciidoc.Element) error { return nil }

func (conv *Converter) ListEnter(el *asciidoc.Element) error { return nil }
func (conv *Converter) ListLeave(el *asciidoc.Element) error { return nil }

func (conv *Converter) ListItem(el *asciidoc.Element) error {
	list := el.Parent
	if list != nil && list.ListKind == asciidoc.ListDescription {
		conv.out(".sp\n")
		asciidoc.ConvertInlines(el.Term, conv)
		conv.out("\n.RS 4\n")
		asciidoc.ConvertInlines(el.Text, conv)
		conv.out("\n")
		asciidoc.ConvertChildren(el, conv)
		conv.out(".RE\n")
		return nil
	}
	marker := `\(bu`
	if list != nil && list.ListKind == asciidoc.ListOrdered {
		n := 1
		for sib := el.PrevSibling; sib != nil; sib = sib.PrevSibling {
			n++
		}
		marker = fmt.Sprintf("%d.", n)
	}
	conv.out(".IP ", marker, " 4\n")
	asciidoc.ConvertInlines(el.Text, conv)
	conv.out("\n")
	asciidoc.ConvertChildren(el, conv)
	return nil
}

func (conv *Converter) Table(el *asciidoc.Element) error {
	// Tables degrade to tab separated rows.
	return asciidoc.ConvertTableRows(el, conv)
}

func (conv *Converter) TableRowEnter(el *asciidoc.Element, row *asciidoc.Row) error {
	conv.out(".sp\n")
	return nil
}

func (conv *Converter) TableRowLeave(el *asciidoc.Element, row *asciidoc.Row) error {
	conv.out("\n")
	return nil
}

func (conv *Converter) TableCell(el *asciidoc.Element, cell *asciidoc.Cell) error {
	asciidoc.ConvertInlines(cell.Text, conv)
	conv.out("\t")
	return nil
}

func (conv *Converter) ImageBlock(el *asciidoc.Element) error {
	conv.out(".sp\n[image: ", escape(el.Target), "]\n")
	return nil
}

func (conv *Converter) AudioBlock(el *asciidoc.Element) error {
	conv.out(".sp\n[audio: ", escape(el.Target), "]\n")
	return nil
}

func (conv *Converter) VideoBlock(el *asciidoc.Element) error {
	conv.out(".sp\n[video: ", escape(el.Target), "]\n")
	return nil
}

func (conv *Converter) ThematicBreak(el *asciidoc.Element) error {
	conv.out(".sp\n----\n")
	return nil
}

func (conv *Converter) PageBreak(el *asciidoc.Element) error {
	conv.out(".bp\n")
	return nil
}

func (conv *Converter) Admonition(el *asciidoc.Element) error {
	caption, _ := conv.doc.Attributes.Get(
		strings.ToLower(el.Admonition) + "-caption")
	conv.out(".sp\n\\fB", escape(caption), "\\fR: ")
	asciidoc.ConvertInlines(el.Text, conv)
	conv.out("\n")
	asciidoc.ConvertChildren(el, conv)
	return nil
}

func (conv *Converter) Toc(el *asciidoc.Element) error       { return nil }
func (conv *Converter) IndexBlock(el *asciidoc.Element) error { return nil }

func (conv *Converter) StemBlock(el *asciidoc.Element) error {
	conv.out(".sp\n.nf\n", escape(string(el.Raw)), "\n.fi\n")
	return nil
}

func (conv *Converter) CalloutList(el *asciidoc.Element) error {
	for item := el.FirstChild; item != nil; item = item.NextSibling {
		conv.out(".IP (", item.Number, ") 4\n")
		asciidoc.ConvertInlines(item.Text, conv)
		conv.out("\n")
	}
	return nil
}

func (conv *Converter) DiscreteHeading(el *asciidoc.Element) error {
	conv.out(".SS \"", escape(asciidoc.InlinesText(el.Text)), "\"\n")
	return nil
}

func (conv *Converter) TextNode(node *asciidoc.Inline) error {
	conv.out(escape(node.Text))
	return nil
}

func (conv *Converter) RawNode(node *asciidoc.Inline) error {
	conv.out(escape(node.Text))
	return nil
}

func (conv *Converter) font(code string, node *asciidoc.Inline) error {
	conv.out(`\f`, code)
	asciidoc.ConvertInlines(node.Child, conv)
	conv.out(`\fR`)
	return nil
}

func (conv *Converter) BoldNode(node *asciidoc.Inline) error      { return conv.font("B", node) }
func (conv *Converter) ItalicNode(node *asciidoc.Inline) error    { return conv.font("I", node) }
func (conv *Converter) MonospaceNode(node *asciidoc.Inline) error { return conv.font("B", node) }
func (conv *Converter) HighlightNode(node *asciidoc.Inline) error { return conv.font("B", node) }

func (conv *Converter) plainChildren(node *asciidoc.Inline) error {
	asciidoc.ConvertInlines(node.Child, conv)
	return nil
}

func (conv *Converter) SuperscriptNode(node *asciidoc.Inline) error {
	return conv.plainChildren(node)
}

func (conv *Converter) SubscriptNode(node *asciidoc.Inline) error {
	return conv.plainChildren(node)
}

func (conv *Converter) CurvedQuotationNode(node *asciidoc.Inline) error {
	conv.out(`\(lq`)
	asciidoc.ConvertInlines(node.Child, conv)
	conv.out(`\(rq`)
	return nil
}

func (conv *Converter) CurvedApostropheNode(node *asciidoc.Inline) error {
	conv.out(`\(oq`)
	asciidoc.ConvertInlines(node.Child, conv)
	conv.out(`\(cq`)
	return nil
}

func (conv *Converter) link(node *asciidoc.Inline) error {
	if len(node.Child) > 0 {
		asciidoc.ConvertInlines(node.Child, conv)
		conv.out(" <", escape(node.Target), ">")
		return nil
	}
	conv.out(escape(node.Target))
	return nil
}

func (conv *Converter) LinkNode(node *asciidoc.Inline) error     { return conv.link(node) }
func (conv *Converter) URLNode(node *asciidoc.Inline) error      { return conv.link(node) }
func (conv *Converter) MailtoNode(node *asciidoc.Inline) error   { return conv.link(node) }
func (conv *Converter) AutolinkNode(node *asciidoc.Inline) error { return conv.link(node) }

func (conv *Converter) CrossReferenceNode(node *asciidoc.Inline) error {
	if len(node.Child) > 0 {
		return conv.plainChildren(node)
	}
	conv.out(escape(node.Target))
	return nil
}

func (conv *Converter) ImageNode(node *asciidoc.Inline) error {
	conv.out("[image: ", escape(node.Target), "]")
	return nil
}

func (conv *Converter) IconNode(node *asciidoc.Inline) error {
	conv.out("[", escape(node.Target), "]")
	return nil
}

func (conv *Converter) KeyboardNode(node *asciidoc.Inline) error {
	conv.out(`\fB`, escape(node.Text), `\fR`)
	return nil
}

func (conv *Converter) ButtonNode(node *asciidoc.Inline) error {
	conv.out(`\fB`, escape(node.Text), `\fR`)
	return nil
}

func (conv *Converter) MenuNode(node *asciidoc.Inline) error {
	conv.out(`\fB`, escape(node.Target))
	for _, item := range strings.Split(node.Text, ">") {
		item = strings.TrimSpace(item)
		if len(item) > 0 {
			conv.out(" > ", escape(item))
		}
	}
	conv.out(`\fR`)
	return nil
}

func (conv *Converter) FootnoteNode(node *asciidoc.Inline) error {
	conv.out(" [")
	asciidoc.ConvertInlines(node.Child, conv)
	conv.out("]")
	return nil
}

func (conv *Converter) FootnoteRefNode(node *asciidoc.Inline) error {
	conv.out(" [", escape(node.ID), "]")
	return nil
}

func (conv *Converter) StemNode(node *asciidoc.Inline) error {
	conv.out(escape(node.Text))
	return nil
}

func (conv *Converter) IndexTermNode(node *asciidoc.Inline) error {
	if _, visible := node.Attr("visible"); visible {
		conv.out(escape(node.Text))
	}
	return nil
}

func (conv *Converter) CalloutRefNode(node *asciidoc.Inline) error {
	conv.out(" (", node.Number, ")")
	return nil
}

func (conv *Converter) LineBreakNode(node *asciidoc.Inline) error {
	conv.out("\n.br\n")
	return nil
}

func (conv *Converter) AnchorNode(node *asciidoc.Inline) error { return nil }
