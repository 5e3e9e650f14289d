// Copyright 2024, Shulhan <ms@kilabit.info>. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package html

import (
	"strings"

	"github.com/alecthomas/chroma/v2"
	hlhtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"

	"github.com/shuLhan/asciidoc"
)

// escape apply the specialchars substitution for HTML output.
func escape(text string) string {
	var sb strings.Builder
	sb.Grow(len(text))
	for x := 0; x < len(text); x++ {
		switch text[x] {
		case '&':
			sb.WriteString("&amp;")
		case '<':
			sb.WriteString("&lt;")
		case '>':
			sb.WriteString("&gt;")
		default:
			sb.WriteByte(text[x])
		}
	}
	return sb.String()
}

// highlight render a source listing through chroma.  The block's callout
// references are appended together after the highlighted code.
func (conv *Converter) highlight(el *asciidoc.Element, lang string) {
	content := string(el.Raw)

	lexer := lexers.Get(lang)
	if lexer == nil {
		lexer = lexers.Analyse(content)
	}
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	style := styles.Get(conv.CodeStyle)
	formatter := hlhtml.New(hlhtml.Standalone(false),
		hlhtml.PreventSurroundingPre(true), hlhtml.WithClasses(false))

	iterator, err := lexer.Tokenise(nil, stripCallouts(el))
	if err != nil {
		conv.out("<pre>")
		conv.verbatim(el)
		conv.out("</pre>\n")
		return
	}

	conv.out(`<pre class="highlight"><code class="language-`,
		escape(lang), `" data-lang="`, escape(lang), `">`)
	if err = formatter.Format(conv.w, style, iterator); err != nil {
		conv.out(escape(content))
	}
	conv.appendCallouts(el)
	conv.out("</code></pre>\n")
}

// stripCallouts return the raw text of a verbatim block without its
// callout markers, for the highlighter.
func stripCallouts(el *asciidoc.Element) string {
	var sb strings.Builder
	for _, node := range el.Text {
		if node.Kind == asciidoc.InlineRaw {
			sb.WriteString(node.Text)
		}
	}
	return sb.String()
}

// appendCallouts emit the conum markers that the highlighter could not
// carry inline.
func (conv *Converter) appendCallouts(el *asciidoc.Element) {
	for _, node := range el.Text {
		if node.Kind == asciidoc.InlineCalloutRef {
			conv.out(` <b class="conum">(`, node.Number, ")</b>")
		}
	}
}

func (conv *Converter) TextNode(node *asciidoc.Inline) error {
	conv.out(escape(asciidoc.ApplyTypography(node.Text)))
	return nil
}

// RawNode emit literal content according to the substitution list the
// preprocessor recorded for it.
func (conv *Converter) RawNode(node *asciidoc.Inline) error {
	text := node.Text
	for _, sub := range node.Subs {
		switch sub {
		case asciidoc.SubSpecialChars:
			text = escape(text)
		case asciidoc.SubReplacements:
			text = asciidoc.ApplyTypography(text)
		}
	}
	conv.out(text)
	return nil
}

func (conv *Converter) span(tag string, node *asciidoc.Inline) error {
	conv.out("<", tag, ">")
	asciidoc.ConvertInlines(node.Child, conv)
	conv.out("</", tag, ">")
	return nil
}

func (conv *Converter) BoldNode(node *asciidoc.Inline) error {
	return conv.span("strong", node)
}

func (conv *Converter) ItalicNode(node *asciidoc.Inline) error {
	return conv.span("em", node)
}

func (conv *Converter) MonospaceNode(node *asciidoc.Inline) error {
	return conv.span("code", node)
}

func (conv *Converter) HighlightNode(node *asciidoc.Inline) error {
	return conv.span("mark", node)
}

func (conv *Converter) SuperscriptNode(node *asciidoc.Inline) error {
	return conv.span("sup", node)
}

func (conv *Converter) SubscriptNode(node *asciidoc.Inline) error {
	return conv.span("sub", node)
}

func (conv *Converter) CurvedQuotationNode(node *asciidoc.Inline) error {
	conv.out("&#8220;")
	asciidoc.ConvertInlines(node.Child, conv)
	conv.out("&#8221;")
	return nil
}

func (conv *Converter) CurvedApostropheNode(node *asciidoc.Inline) error {
	conv.out("&#8216;")
	asciidoc.ConvertInlines(node.Child, conv)
	conv.out("&#8217;")
	return nil
}

func (conv *Converter) linkNode(node *asciidoc.Inline, href string) error {
	conv.out(`<a href="`, escape(href), `">`)
	if len(node.Child) > 0 {
		asciidoc.ConvertInlines(node.Child, conv)
	} else if len(node.Text) > 0 {
		conv.out(escape(node.Text))
	} else {
		conv.out(escape(node.Target))
	}
	conv.out("</a>")
	return nil
}

func (conv *Converter) LinkNode(node *asciidoc.Inline) error {
	return conv.linkNode(node, node.Target)
}

func (conv *Converter) URLNode(node *asciidoc.Inline) error {
	return conv.linkNode(node, node.Target)
}

func (conv *Converter) MailtoNode(node *asciidoc.Inline) error {
	return conv.linkNode(node, "mailto:"+node.Target)
}

func (conv *Converter) AutolinkNode(node *asciidoc.Inline) error {
	return conv.linkNode(node, node.Target)
}

func (conv *Converter) CrossReferenceNode(node *asciidoc.Inline) error {
	conv.out(`<a href="#`, escape(node.Target), `">`)
	switch {
	case len(node.Child) > 0:
		asciidoc.ConvertInlines(node.Child, conv)
	case conv.doc != nil && conv.doc.Anchor(node.Target) != nil:
		ref := conv.doc.Anchor(node.Target)
		if len(ref.Text) > 0 {
			conv.out(escape(asciidoc.InlinesText(ref.Text)))
		} else {
			conv.out("[", escape(node.Target), "]")
		}
	default:
		conv.out("[", escape(node.Target), "]")
	}
	conv.out("</a>")
	return nil
}

func (conv *Converter) ImageNode(node *asciidoc.Inline) error {
	conv.out(`<span class="image"><img src="`, escape(node.Target), `"`)
	if alt, ok := node.Attr("alt"); ok {
		conv.out(` alt="`, escape(alt), `"`)
	}
	conv.out("></span>")
	return nil
}

func (conv *Converter) IconNode(node *asciidoc.Inline) error {
	conv.out(`<span class="icon icon-`, escape(node.Target), `"></span>`)
	return nil
}

func (conv *Converter) KeyboardNode(node *asciidoc.Inline) error {
	keys := strings.Split(node.Text, "+")
	if len(keys) == 1 {
		conv.out("<kbd>", escape(strings.TrimSpace(keys[0])), "</kbd>")
		return nil
	}
	conv.out(`<span class="keyseq">`)
	for x, key := range keys {
		if x > 0 {
			conv.out("+")
		}
		conv.out("<kbd>", escape(strings.TrimSpace(key)), "</kbd>")
	}
	conv.out("</span>")
	return nil
}

func (conv *Converter) ButtonNode(node *asciidoc.Inline) error {
	conv.out("<b class=\"button\">", escape(node.Text), "</b>")
	return nil
}

func (conv *Converter) MenuNode(node *asciidoc.Inline) error {
	conv.out(`<span class="menuseq"><b class="menu">`,
		escape(node.Target), "</b>")
	for _, item := range strings.Split(node.Text, ">") {
		item = strings.TrimSpace(item)
		if len(item) == 0 {
			continue
		}
		conv.out("&#160;&#9656;&#160;<b class=\"menuitem\">",
			escape(item), "</b>")
	}
	conv.out("</span>")
	return nil
}

func (conv *Converter) FootnoteNode(node *asciidoc.Inline) error {
	conv.footnotes = append(conv.footnotes, node)
	n := len(conv.footnotes)
	conv.out(`<sup class="footnote"><a id="_footnoteref_`, n,
		`" href="#_footnotedef_`, n, `">`, n, "</a></sup>")
	return nil
}

func (conv *Converter) FootnoteRefNode(node *asciidoc.Inline) error {
	// Find the earlier definition with the same identifier.
	for x, note := range conv.footnotes {
		if note.ID == node.ID {
			conv.out(`<sup class="footnote"><a href="#_footnotedef_`,
				x+1, `">`, x+1, "</a></sup>")
			return nil
		}
	}
	conv.out(`<sup class="footnote">[`, escape(node.ID), "]</sup>")
	return nil
}

func (conv *Converter) StemNode(node *asciidoc.Inline) error {
	conv.out("\\$", escape(node.Text), "\\$")
	return nil
}

func (conv *Converter) IndexTermNode(node *asciidoc.Inline) error {
	if _, visible := node.Attr("visible"); visible {
		conv.out(escape(node.Text))
	}
	return nil
}

func (conv *Converter) CalloutRefNode(node *asciidoc.Inline) error {
	conv.out(`<b class="conum">(`, node.Number, ")</b>")
	return nil
}

func (conv *Converter) LineBreakNode(node *asciidoc.Inline) error {
	conv.out("<br>\n")
	return nil
}

func (conv *Converter) AnchorNode(node *asciidoc.Inline) error {
	conv.out(`<a id="`, escape(node.ID), `"></a>`)
	return nil
}
