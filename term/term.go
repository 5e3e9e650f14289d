// Copyright 2024, Shulhan <ms@kilabit.info>. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

//
// Package term renders a parsed AsciiDoc document for a rich terminal,
// using ANSI styling.
//
package term

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/shuLhan/asciidoc"
)

// interface check
var _ asciidoc.Converter = (*Converter)(nil)

// Converter implements asciidoc.Converter for ANSI terminal output.
type Converter struct {
	w   *bufio.Writer
	doc *asciidoc.Document

	styleTitle   lipgloss.Style
	styleHeading lipgloss.Style
	styleBold    lipgloss.Style
	styleItalic  lipgloss.Style
	styleCode    lipgloss.Style
	styleDim     lipgloss.Style
	styleConum   lipgloss.Style

	// indent is the current left margin, grown by nested lists and
	// container blocks.
	indent int
}

// NewConverter create a terminal converter writing to w.
func NewConverter(w io.Writer) *Converter {
	return &Converter{
		w:            bufio.NewWriter(w),
		styleTitle:   lipgloss.NewStyle().Bold(true).Underline(true),
		styleHeading: lipgloss.NewStyle().Bold(true),
		styleBold:    lipgloss.NewStyle().Bold(true),
		styleItalic:  lipgloss.NewStyle().Italic(true),
		styleCode:    lipgloss.NewStyle().Foreground(lipgloss.Color("6")),
		styleDim:     lipgloss.NewStyle().Faint(true),
		styleConum:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("3")),
	}
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

func (conv *Converter) margin() string {
	return strings.Repeat(" ", conv.indent)
}

func (conv *Converter) DocumentBegin(doc *asciidoc.Document) error {
	conv.doc = doc
	if doc.Title != nil {
		conv.out(conv.styleTitle.Render(doc.Title.Main), "\n")
		if len(doc.Title.Subtitle) > 0 {
			conv.out(conv.styleDim.Render(doc.Title.Subtitle), "\n")
		}
		conv.out("\n")
	}
	return nil
}

func (conv *Converter) DocumentEnd(doc *asciidoc.Document) error {
	return conv.w.Flush()
}

func (conv *Converter) SectionEnter(el *asciidoc.Element) error {
	marker := strings.Repeat("=", el.Level+1)
	conv.out(conv.styleHeading.Render(marker+" "+
		asciidoc.InlinesText(el.Text)), "\n\n")
	return nil
}

func (conv *Converter) SectionLeave(el *asciidoc.Element) error { return nil }

func (conv *Converter) Paragraph(el *asciidoc.Element) error {
	conv.out(conv.margin())
	asciidoc.ConvertInlines(el.Text, conv)
	conv.out("\n\n")
	return nil
}

func (conv *Converter) verbatim(el *asciidoc.Element) error {
	for _, line := range conv.verbatimLines(el) {
		conv.out(conv.margin(), "    ", line, "\n")
	}
	conv.out("\n")
	return nil
}

// verbatimLines style the inline list of a verbatim block line by line.
func (conv *Converter) verbatimLines(el *asciidoc.Element) (lines []string) {
	var sb strings.Builder
	flush := func() {
		lines = append(lines, sb.String())
		sb.Reset()
	}
	for _, node := range el.Text {
		switch node.Kind {
		case asciidoc.InlineRaw:
			text := node.Text
			for len(text) > 0 {
				nl := strings.IndexByte(text, '\n')
				if nl < 0 {
					sb.WriteString(conv.styleCode.Render(text))
					break
				}
				sb.WriteString(conv.styleCode.Render(text[:nl]))
				flush()
				text = text[nl+1:]
			}
		case asciidoc.InlineCalloutRef:
			sb.WriteString(" " + conv.styleConum.Render(
				fmt.Sprintf("(%d)", node.Number)))
		}
	}
	flush()
	return lines
}

func (conv *Converter) Listing(el *asciidoc.Element) error { return conv.verbatim(el) }
func (conv *Converter) Literal(el *asciidoc.Element) error { return conv.verbatim(el) }

func (conv *Converter) container(el *asciidoc.Element) error {
	conv.indent += 2
	asciidoc.ConvertChildren(el, conv)
	conv.indent -= 2
	return nil
}

func (conv *Converter) Example(el *asciidoc.Element) error { return conv.container(el) }
func (conv *Converter) Sidebar(el *asciidoc.Element) error { return conv.container(el) }
func (conv *Converter) Open(el *asciidoc.Element) error    { return conv.container(el) }

func (conv *Converter) Quote(el *asciidoc.Element) error {
	conv.indent += 2
	asciidoc.ConvertChildren(el, conv)
	if who, ok := el.Meta.Attr("attribution"); ok {
		conv.out(conv.margin(), conv.styleDim.Render("-- "+who), "\n\n")
	}
	conv.indent -= 2
	return nil
}

func (conv *Converter) Verse(el *asciidoc.Element) error {
	for _, line := range strings.Split(string(el.Raw), "\n") {
		conv.out(conv.margin(), "  ", conv.styleItalic.Render(line), "\n")
	}
	conv.out("\n")
	return nil
}

func (conv *Converter) PassBlock(el *asciidoc.Element) error {
	conv.out(string(el.Raw), "\n")
	return nil
}

func (conv *Converter) Comment(el *asciidoc.Element) error { return nil }

func (conv *Converter) ListEnter(el *asciidoc.Element) error {
	conv.indent += 2
	return nil
}

func (conv *Converter) ListLeave(el *asciidoc.Element) error {
	conv.indent -= 2
	if conv.indent == 0 {
		conv.out("\n")
	}
	return nil
}

func (conv *Converter) ListItem(el *asciidoc.Element) error {
	list := el.Parent
	if list != nil && list.ListKind == asciidoc.ListDescription {
		conv.out(conv.margin(), conv.styleBold.Render(
			asciidoc.InlinesText(el.Term)), "\n")
		conv.out(conv.margin(), "  ")
		asciidoc.ConvertInlines(el.Text, conv)
		conv.out("\n")
		asciidoc.ConvertChildren(el, conv)
		return nil
	}

	marker := "•"
	if list != nil && list.ListKind == asciidoc.ListOrdered {
		n := 1
		for sib := el.PrevSibling; sib != nil; sib = sib.PrevSibling {
			n++
		}
		marker = fmt.Sprintf("%d.", n)
	}
	conv.out(conv.margin(), marker, " ")
	asciidoc.ConvertInlines(el.Text, conv)
	conv.out("\n")
	asciidoc.ConvertChildren(el, conv)
	return nil
}

func (conv *Converter) Table(el *asciidoc.Element) error {
	return asciidoc.ConvertTableRows(el, conv)
}

func (conv *Converter) TableRowEnter(el *asciidoc.Element, row *asciidoc.Row) error {
	conv.out(conv.margin(), "| ")
	return nil
}

func (conv *Converter) TableRowLeave(el *asciidoc.Element, row *asciidoc.Row) error {
	conv.out("\n")
	if row == el.TableData.Rows[len(el.TableData.Rows)-1] {
		conv.out("\n")
	}
	return nil
}

func (conv *Converter) TableCell(el *asciidoc.Element, cell *asciidoc.Cell) error {
	if cell.Style == 'h' {
		conv.out(conv.styleBold.Render(asciidoc.InlinesText(cell.Text)))
	} else {
		asciidoc.ConvertInlines(cell.Text, conv)
	}
	conv.out(" | ")
	return nil
}

func (conv *Converter) ImageBlock(el *asciidoc.Element) error {
	conv.out(conv.margin(), conv.styleDim.Render("[image] "+el.Target), "\n\n")
	return nil
}

func (conv *Converter) AudioBlock(el *asciidoc.Element) error {
	conv.out(conv.margin(), conv.styleDim.Render("[audio] "+el.Target), "\n\n")
	return nil
}

func (conv *Converter) VideoBlock(el *asciidoc.Element) error {
	conv.out(conv.margin(), conv.styleDim.Render("[video] "+el.Target), "\n\n")
	return nil
}

func (conv *Converter) ThematicBreak(el *asciidoc.Element) error {
	conv.out(conv.styleDim.Render(strings.Repeat("─", 40)), "\n\n")
	return nil
}

func (conv *Converter) PageBreak(el *asciidoc.Element) error {
	conv.out("\f")
	return nil
}

func (conv *Converter) Admonition(el *asciidoc.Element) error {
	caption, _ := conv.doc.Attributes.Get(
		strings.ToLower(el.Admonition) + "-caption")
	conv.out(conv.margin(), conv.styleBold.Render(caption+": "))
	asciidoc.ConvertInlines(el.Text, conv)
	conv.out("\n")
	asciidoc.ConvertChildren(el, conv)
	conv.out("\n")
	return nil
}

func (conv *Converter) Toc(el *asciidoc.Element) error        { return nil }
func (conv *Converter) IndexBlock(el *asciidoc.Element) error { return nil }

func (conv *Converter) StemBlock(el *asciidoc.Element) error {
	conv.out(conv.margin(), "    ", conv.styleCode.Render(string(el.Raw)),
		"\n\n")
	return nil
}

func (conv *Converter) CalloutList(el *asciidoc.Element) error {
	for item := el.FirstChild; item != nil; item = item.NextSibling {
		conv.out(conv.margin(), conv.styleConum.Render(
			fmt.Sprintf("(%d)", item.Number)), " ")
		asciidoc.ConvertInlines(item.Text, conv)
		conv.out("\n")
	}
	conv.out("\n")
	return nil
}

func (conv *Converter) DiscreteHeading(el *asciidoc.Element) error {
	conv.out(conv.styleHeading.Render(asciidoc.InlinesText(el.Text)), "\n\n")
	return nil
}

func (conv *Converter) TextNode(node *asciidoc.Inline) error {
	conv.out(asciidoc.ApplyTypography(node.Text))
	return nil
}

func (conv *Converter) RawNode(node *asciidoc.Inline) error {
	conv.out(node.Text)
	return nil
}

func (conv *Converter) styled(style lipgloss.Style, node *asciidoc.Inline) error {
	conv.out(style.Render(asciidoc.InlinesText(node.Child)))
	return nil
}

func (conv *Converter) BoldNode(node *asciidoc.Inline) error {
	return conv.styled(conv.styleBold, node)
}

func (conv *Converter) ItalicNode(node *asciidoc.Inline) error {
	return conv.styled(conv.styleItalic, node)
}

func (conv *Converter) MonospaceNode(node *asciidoc.Inline) error {
	return conv.styled(conv.styleCode, node)
}

func (conv *Converter) HighlightNode(node *asciidoc.Inline) error {
	return conv.styled(lipgloss.NewStyle().Reverse(true), node)
}

func (conv *Converter) SuperscriptNode(node *asciidoc.Inline) error {
	conv.out("^")
	asciidoc.ConvertInlines(node.Child, conv)
	return nil
}

func (conv *Converter) SubscriptNode(node *asciidoc.Inline) error {
	conv.out("~")
	asciidoc.ConvertInlines(node.Child, conv)
	return nil
}

func (conv *Converter) CurvedQuotationNode(node *asciidoc.Inline) error {
	conv.out("“")
	asciidoc.ConvertInlines(node.Child, conv)
	conv.out("”")
	return nil
}

func (conv *Converter) CurvedApostropheNode(node *asciidoc.Inline) error {
	conv.out("‘")
	asciidoc.ConvertInlines(node.Child, conv)
	conv.out("’")
	return nil
}

func (conv *Converter) link(node *asciidoc.Inline) error {
	if len(node.Child) > 0 {
		asciidoc.ConvertInlines(node.Child, conv)
		conv.out(" ", conv.styleDim.Render("<"+node.Target+">"))
		return nil
	}
	conv.out(conv.styleCode.Render(node.Target))
	return nil
}

func (conv *Converter) LinkNode(node *asciidoc.Inline) error     { return conv.link(node) }
func (conv *Converter) URLNode(node *asciidoc.Inline) error      { return conv.link(node) }
func (conv *Converter) MailtoNode(node *asciidoc.Inline) error   { return conv.link(node) }
func (conv *Converter) AutolinkNode(node *asciidoc.Inline) error { return conv.link(node) }

func (conv *Converter) CrossReferenceNode(node *asciidoc.Inline) error {
	if len(node.Child) > 0 {
		asciidoc.ConvertInlines(node.Child, conv)
		return nil
	}
	conv.out(conv.styleDim.Render("[" + node.Target + "]"))
	return nil
}

func (conv *Converter) ImageNode(node *asciidoc.Inline) error {
	conv.out(conv.styleDim.Render("[image] " + node.Target))
	return nil
}

func (conv *Converter) IconNode(node *asciidoc.Inline) error {
	conv.out(conv.styleDim.Render("[" + node.Target + "]"))
	return nil
}

func (conv *Converter) KeyboardNode(node *asciidoc.Inline) error {
	conv.out(conv.styleCode.Render("[" + node.Text + "]"))
	return nil
}

func (conv *Converter) ButtonNode(node *asciidoc.Inline) error {
	conv.out(conv.styleBold.Render("[" + node.Text + "]"))
	return nil
}

func (conv *Converter) MenuNode(node *asciidoc.Inline) error {
	conv.out(conv.styleBold.Render(node.Target))
	for _, item := range strings.Split(node.Text, ">") {
		item = strings.TrimSpace(item)
		if len(item) > 0 {
			conv.out(" › ", conv.styleBold.Render(item))
		}
	}
	return nil
}

func (conv *Converter) FootnoteNode(node *asciidoc.Inline) error {
	conv.out(" [")
	asciidoc.ConvertInlines(node.Child, conv)
	conv.out("]")
	return nil
}

func (conv *Converter) FootnoteRefNode(node *asciidoc.Inline) error {
	conv.out(conv.styleDim.Render("[" + node.ID + "]"))
	return nil
}

func (conv *Converter) StemNode(node *asciidoc.Inline) error {
	conv.out(conv.styleCode.Render(node.Text))
	return nil
}

func (conv *Converter) IndexTermNode(node *asciidoc.Inline) error {
	if _, visible := node.Attr("visible"); visible {
		conv.out(node.Text)
	}
	return nil
}

func (conv *Converter) CalloutRefNode(node *asciidoc.Inline) error {
	conv.out(" ", conv.styleConum.Render(fmt.Sprintf("(%d)", node.Number)))
	return nil
}

func (conv *Converter) LineBreakNode(node *asciidoc.Inline) error {
	conv.out("\n", conv.margin())
	return nil
}

func (conv *Converter) AnchorNode(node *asciidoc.Inline) error { return nil }
