// Copyright 2024, Shulhan <ms@kilabit.info>. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package asciidoc

import (
	"strconv"
	"strings"

	"github.com/shuLhan/share/lib/ascii"
)

// inlineMacroNames are the macros the inline grammar recognizes, checked
// in order; "indexterm2" comes before "indexterm" so it wins.
var inlineMacroNames = []string{
	"indexterm2", "indexterm", "latexmath", "asciimath", "footnote",
	"mailto", "image", "icon", "menu", "xref", "link", "stem", "kbd",
	"btn", "pass",
}

var autolinkSchemes = []string{
	"https://", "http://", "ftp://", "irc://",
}

// inlineParser runs the span level grammar over one preprocessed context,
// or a sub range of it when parsing nested markup.
type inlineParser struct {
	ptext *ProcessedText
	text  string

	// lo and hi bound the range being parsed; x is the cursor and
	// mark the start of pending plain text.
	lo, hi int
	x      int
	mark   int

	nodes []*Inline
}

// parseInlines run the inline grammar over the preprocessed context.
func parseInlines(ptext *ProcessedText) []*Inline {
	ip := &inlineParser{
		ptext: ptext,
		text:  ptext.Text,
		hi:    len(ptext.Text),
	}
	return ip.run()
}

func (ip *inlineParser) sub(lo, hi int) []*Inline {
	sp := &inlineParser{
		ptext: ip.ptext,
		text:  ip.text,
		lo:    lo,
		hi:    hi,
		x:     lo,
		mark:  lo,
	}
	return sp.run()
}

func (ip *inlineParser) run() []*Inline {
	for ip.x < ip.hi {
		c := ip.text[ip.x]

		if c == '\\' && ip.x+1 < ip.hi && isMarkupByte(ip.text[ip.x+1]) {
			// Drop the backslash, keep the marker literal.
			ip.flush(ip.x)
			ip.emitText(ip.x+1, ip.x+2)
			ip.x += 2
			ip.mark = ip.x
			continue
		}

		switch {
		case strings.HasPrefix(ip.text[ip.x:ip.hi], placeholderMark):
			if ip.placeholder() {
				continue
			}
		case c == ' ' && ip.lineBreak():
			continue
		case c == '[' && ip.anchor():
			continue
		case c == '(' && ip.indexTerm():
			continue
		case c == '<' && ip.crossRef():
			continue
		case c == '<' && ip.bracketedAutolink():
			continue
		case (c == '"' || c == '\'') && ip.curvedQuote():
			continue
		case ascii.IsAlpha(c) && ip.macroOrAutolink():
			continue
		case isFormatByte(c) && ip.formatted():
			continue
		}

		ip.x++
	}
	ip.flush(ip.hi)
	return ip.nodes
}

// flush emit the pending plain text up to end.
func (ip *inlineParser) flush(end int) {
	if ip.mark < end {
		ip.emitText(ip.mark, end)
	}
	ip.mark = end
}

func (ip *inlineParser) emitText(start, end int) {
	ip.nodes = append(ip.nodes, &Inline{
		Kind:     InlinePlainText,
		Text:     ip.text[start:end],
		Location: ip.ptext.locate(start, end),
	})
}

func (ip *inlineParser) emit(node *Inline, start, end int) {
	ip.flush(start)
	if node.Location.AbsEnd == 0 {
		node.Location = ip.ptext.locate(start, end)
	}
	ip.nodes = append(ip.nodes, node)
	ip.x = end
	ip.mark = end
}

// placeholder translate the passthrough placeholder back into a Raw node
// carrying the original content and its substitution list.
func (ip *inlineParser) placeholder() bool {
	start := ip.x
	y := start + len(placeholderMark)
	d := y
	for d < ip.hi && ip.text[d] >= '0' && ip.text[d] <= '9' {
		d++
	}
	if d == y || !strings.HasPrefix(ip.text[d:ip.hi], placeholderMark) {
		return false
	}
	idx, err := strconv.Atoi(ip.text[y:d])
	if err != nil || idx >= len(ip.ptext.Passthroughs) {
		return false
	}
	pass := ip.ptext.Passthroughs[idx]
	ip.emit(&Inline{
		Kind:     InlineRaw,
		Text:     pass.Text,
		Subs:     pass.Subs,
		Location: pass.Location,
	}, start, d+len(placeholderMark))
	return true
}

// lineBreak match the trailing " +" hard break at end of line.
func (ip *inlineParser) lineBreak() bool {
	if !strings.HasPrefix(ip.text[ip.x:ip.hi], " +") {
		return false
	}
	end := ip.x + 2
	if end < ip.hi && ip.text[end] != '\n' {
		return false
	}
	if end < ip.hi {
		end++ // consume the newline
	}
	ip.emit(&Inline{Kind: InlineLineBreak}, ip.x, end)
	return true
}

// anchor match "[[id]]" and "[#id]" inline anchors.
func (ip *inlineParser) anchor() bool {
	rest := ip.text[ip.x:ip.hi]
	if strings.HasPrefix(rest, "[[") {
		end := strings.Index(rest, "]]")
		if end < 0 {
			return false
		}
		inner := rest[2:end]
		name, label, _ := strings.Cut(inner, ",")
		if !isAttributeName(name) {
			return false
		}
		node := &Inline{Kind: InlineAnchor, ID: name, Text: label}
		ip.emit(node, ip.x, ip.x+end+2)
		return true
	}
	if strings.HasPrefix(rest, "[#") {
		end := strings.IndexByte(rest, ']')
		if end < 0 {
			return false
		}
		name := rest[2:end]
		if !isAttributeName(name) {
			return false
		}
		ip.emit(&Inline{Kind: InlineAnchor, ID: name}, ip.x, ip.x+end+1)
		return true
	}
	return false
}

// indexTerm match "(((primary,secondary,tertiary)))" (hidden) and
// "((term))" (visible).
func (ip *inlineParser) indexTerm() bool {
	rest := ip.text[ip.x:ip.hi]
	if strings.HasPrefix(rest, "(((") {
		end := strings.Index(rest, ")))")
		if end < 0 {
			return false
		}
		inner := rest[3:end]
		node := &Inline{Kind: InlineIndexTerm, Text: inner}
		for _, part := range strings.Split(inner, ",") {
			node.Attrs = append(node.Attrs, Attr{
				Key: "term", Val: strings.TrimSpace(part),
			})
		}
		ip.emit(node, ip.x, ip.x+end+3)
		return true
	}
	if strings.HasPrefix(rest, "((") {
		end := strings.Index(rest, "))")
		if end < 0 {
			return false
		}
		inner := rest[2:end]
		if strings.ContainsRune(inner, '\n') {
			return false
		}
		node := &Inline{Kind: InlineIndexTerm, Text: inner}
		node.Attrs = append(node.Attrs, Attr{Key: "visible", Val: "true"})
		ip.emit(node, ip.x, ip.x+end+2)
		return true
	}
	return false
}

// crossRef match the shorthand "<<id>>" and "<<id,text>>".
func (ip *inlineParser) crossRef() bool {
	rest := ip.text[ip.x:ip.hi]
	if !strings.HasPrefix(rest, "<<") {
		return false
	}
	end := strings.Index(rest, ">>")
	if end < 0 {
		return false
	}
	inner := rest[2:end]
	if strings.ContainsAny(inner, "\n<") {
		return false
	}
	target, label, hasLabel := strings.Cut(inner, ",")
	node := &Inline{
		Kind:   InlineCrossReference,
		Target: strings.TrimSpace(target),
	}
	if hasLabel {
		// The label is itself a mini inline parse.
		labelLo := ip.x + 2 + len(target) + 1
		node.Child = ip.sub(labelLo, ip.x+2+len(inner))
		node.Text = strings.TrimSpace(label)
	}
	ip.emit(node, ip.x, ip.x+end+2)
	return true
}

// bracketedAutolink match "<scheme://...>".
func (ip *inlineParser) bracketedAutolink() bool {
	rest := ip.text[ip.x:ip.hi]
	if len(rest) < 3 || rest[0] != '<' {
		return false
	}
	end := strings.IndexByte(rest, '>')
	if end < 0 {
		return false
	}
	url := rest[1:end]
	if !hasAutolinkScheme(url) {
		return false
	}
	ip.emit(&Inline{Kind: InlineAutolink, Target: url},
		ip.x, ip.x+end+1)
	return true
}

// curvedQuote match `"` + "`...`" + `"` (curved double quotes) and
// "'" + "`...`" + "'" (curved apostrophes).
func (ip *inlineParser) curvedQuote() bool {
	rest := ip.text[ip.x:ip.hi]
	outer := rest[0]
	if len(rest) < 5 || rest[1] != '`' {
		return false
	}
	closer := "`" + string(outer)
	end := strings.Index(rest[2:], closer)
	if end < 0 {
		return false
	}
	kind := InlineCurvedQuotation
	if outer == '\'' {
		kind = InlineCurvedApostrophe
	}
	node := &Inline{Kind: kind}
	node.Child = ip.sub(ip.x+2, ip.x+2+end)
	ip.emit(node, ip.x, ip.x+2+end+2)
	return true
}

// macroOrAutolink try an inline macro "name:target[attrs]" or a bare URL.
func (ip *inlineParser) macroOrAutolink() bool {
	rest := ip.text[ip.x:ip.hi]

	for _, scheme := range autolinkSchemes {
		if strings.HasPrefix(rest, scheme) {
			return ip.bareURL()
		}
	}

	for _, name := range inlineMacroNames {
		if strings.HasPrefix(rest, name+":") {
			if ip.macro(name) {
				return true
			}
		}
	}
	return false
}

// macro parse "name:target[attrlist]" at the cursor.
func (ip *inlineParser) macro(name string) bool {
	start := ip.x
	rest := ip.text[start:ip.hi]
	body := rest[len(name)+1:]

	lb := strings.IndexByte(body, '[')
	if lb < 0 {
		return false
	}
	target := body[:lb]
	if strings.ContainsAny(target, " \t\n") {
		return false
	}
	rb := findAttrListEnd(body, lb+1)
	if rb < 0 {
		return false
	}
	content := body[lb+1 : rb]
	end := start + len(name) + 1 + rb + 1

	list := parseAttrList(content)
	node := &Inline{Target: target}

	switch name {
	case "image":
		node.Kind = InlineImage
		if alt := list.positional(1); len(alt) > 0 {
			node.Attrs = append(node.Attrs, Attr{Key: "alt", Val: alt})
		}
	case "icon":
		node.Kind = InlineIcon
		node.Attrs = list.named
	case "kbd":
		if len(target) > 0 {
			return false
		}
		node.Kind = InlineKeyboard
		node.Text = content
	case "btn":
		if len(target) > 0 {
			return false
		}
		node.Kind = InlineButton
		node.Text = content
	case "menu":
		node.Kind = InlineMenu
		node.Text = content
	case "footnote":
		node.ID = target
		if len(target) > 0 && len(content) == 0 {
			node.Kind = InlineFootnoteRef
		} else {
			node.Kind = InlineFootnote
			contentLo := start + len(name) + 1 + lb + 1
			node.Child = ip.sub(contentLo, contentLo+len(content))
		}
	case "xref":
		node.Kind = InlineCrossReference
		if len(content) > 0 {
			contentLo := start + len(name) + 1 + lb + 1
			node.Child = ip.sub(contentLo, contentLo+len(content))
			node.Text = content
		}
	case "stem", "latexmath", "asciimath":
		node.Kind = InlineStem
		node.Text = content
		node.Attrs = append(node.Attrs, Attr{Key: "notation", Val: name})
	case "indexterm":
		node.Kind = InlineIndexTerm
		node.Text = content
		for _, part := range strings.Split(content, ",") {
			node.Attrs = append(node.Attrs, Attr{
				Key: "term", Val: strings.TrimSpace(part),
			})
		}
	case "indexterm2":
		node.Kind = InlineIndexTerm
		node.Text = content
		node.Attrs = append(node.Attrs,
			Attr{Key: "term", Val: strings.TrimSpace(content)},
			Attr{Key: "visible", Val: "true"})
	case "mailto":
		node.Kind = InlineMailto
		if len(target) == 0 {
			return false
		}
		if text := list.positional(1); len(text) > 0 {
			node.Text = text
		}
	case "link":
		node.Kind = InlineLink
		if len(target) == 0 {
			return false
		}
		if len(content) > 0 {
			contentLo := start + len(name) + 1 + lb + 1
			node.Child = ip.sub(contentLo, contentLo+len(content))
			node.Text = content
		}
	case "pass":
		// Normally extracted by the preprocessor; reaching here
		// means the macro sat inside content the preprocessor did
		// not see.
		node.Kind = InlineRaw
		node.Text = content
		node.Subs = SubsNone
		if len(target) > 0 {
			for _, sub := range strings.Split(target, ",") {
				node.Subs = append(node.Subs,
					parseSubstitution(sub)...)
			}
		}
	default:
		return false
	}
	ip.emit(node, start, end)
	return true
}

// bareURL consume a URL starting at the cursor.  Trailing sentence
// punctuation and unmatched closing parentheses are excluded.
func (ip *inlineParser) bareURL() bool {
	start := ip.x
	y := start
	for y < ip.hi && !isURLStop(ip.text[y]) {
		y++
	}
	url := ip.text[start:y]

	// A bracket right after the URL is a link macro without the "link:"
	// prefix: "https://example.com[text]".
	if y < ip.hi && ip.text[y] == '[' {
		rb := findAttrListEnd(ip.text[:ip.hi], y+1)
		if rb >= 0 {
			content := ip.text[y+1 : rb]
			node := &Inline{Kind: InlineURL, Target: url}
			if len(content) > 0 {
				node.Child = ip.sub(y+1, rb)
				node.Text = content
			}
			ip.emit(node, start, rb+1)
			return true
		}
	}

	url = trimURLTail(url)
	if len(url) <= len("https://") {
		return false
	}
	ip.emit(&Inline{Kind: InlineAutolink, Target: url},
		start, start+len(url))
	return true
}

// formatted parse constrained and unconstrained formatting pairs.
func (ip *inlineParser) formatted() bool {
	c := ip.text[ip.x]
	kind := formatKind(c)

	double := ip.x+1 < ip.hi && ip.text[ip.x+1] == c

	if double {
		// Unconstrained: greedy shortest inner match, no boundary
		// requirements.
		closer := string([]byte{c, c})
		end := strings.Index(ip.text[ip.x+2:ip.hi], closer)
		if end >= 0 && end > 0 {
			node := &Inline{Kind: kind}
			node.Child = ip.sub(ip.x+2, ip.x+2+end)
			ip.emit(node, ip.x, ip.x+2+end+2)
			return true
		}
		return false
	}

	// Superscript and subscript use a single marker with no inner
	// spaces; the others are constrained pairs.
	if c == '^' || c == '~' {
		end := strings.IndexByte(ip.text[ip.x+1:ip.hi], c)
		if end <= 0 {
			return false
		}
		inner := ip.text[ip.x+1 : ip.x+1+end]
		if strings.ContainsAny(inner, " \t\n") {
			return false
		}
		node := &Inline{Kind: kind}
		node.Child = ip.sub(ip.x+1, ip.x+1+end)
		ip.emit(node, ip.x, ip.x+1+end+1)
		return true
	}

	// Constrained: the opener must sit at a word boundary and must not
	// be followed by whitespace.
	if ip.x > 0 && !isSpanBoundary(ip.text[ip.x-1]) {
		return false
	}
	if ip.x+1 >= ip.hi || ip.text[ip.x+1] == ' ' || ip.text[ip.x+1] == '\t' {
		return false
	}
	y := ip.x + 1
	for y < ip.hi {
		z := strings.IndexByte(ip.text[y:ip.hi], c)
		if z < 0 {
			return false
		}
		y += z
		// The closer must not follow whitespace and must be followed
		// by a boundary.
		if ip.text[y-1] == ' ' || ip.text[y-1] == '\t' || ip.text[y-1] == '\n' {
			y++
			continue
		}
		if y+1 < ip.hi && !isSpanBoundary(ip.text[y+1]) {
			y++
			continue
		}
		break
	}
	if y >= ip.hi {
		return false
	}
	node := &Inline{Kind: kind}
	node.Child = ip.sub(ip.x+1, y)
	ip.emit(node, ip.x, y+1)
	return true
}

func formatKind(c byte) InlineKind {
	switch c {
	case '*':
		return InlineBold
	case '_':
		return InlineItalic
	case '`':
		return InlineMonospace
	case '#':
		return InlineHighlight
	case '^':
		return InlineSuperscript
	case '~':
		return InlineSubscript
	}
	return InlineUnknown
}

func isFormatByte(c byte) bool {
	return formatKind(c) != InlineUnknown
}

func isMarkupByte(c byte) bool {
	switch c {
	case '*', '_', '`', '#', '^', '~', '<', '[', '(', '\'', '"', '\\':
		return true
	}
	return false
}

// findAttrListEnd return the index of the closing bracket matching the
// attribute list that starts at lo, or -1.  A "\]" escape does not close.
func findAttrListEnd(text string, lo int) int {
	for x := lo; x < len(text); x++ {
		switch text[x] {
		case '\\':
			x++
		case '\n':
			return -1
		case ']':
			return x
		}
	}
	return -1
}

func hasAutolinkScheme(url string) bool {
	for _, scheme := range autolinkSchemes {
		if strings.HasPrefix(url, scheme) {
			return true
		}
	}
	return false
}

func isURLStop(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '<', '>', '[':
		return true
	}
	return false
}

// trimURLTail drop trailing sentence punctuation and unmatched closing
// parentheses from an autolink.
func trimURLTail(url string) string {
	for len(url) > 0 {
		c := url[len(url)-1]
		switch c {
		case '.', ',', ';', '!', '?', ':':
			url = url[:len(url)-1]
			continue
		case ')':
			if strings.Count(url, ")") > strings.Count(url, "(") {
				url = url[:len(url)-1]
				continue
			}
		}
		break
	}
	return url
}
