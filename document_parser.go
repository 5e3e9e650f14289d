// Copyright 2024, Shulhan <ms@kilabit.info>. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package asciidoc

import (
	"strconv"
	"strings"
)

// admonitionNames in paragraph prefix and block style positions.
var admonitionNames = []string{"NOTE", "TIP", "IMPORTANT", "WARNING", "CAUTION"}

// documentParser recognizes the block level grammar over the resolved line
// stream: document header, sections, delimited blocks, lists, tables,
// paragraphs, macros, and directives.
type documentParser struct {
	opts  *Options
	store *AttributeStore
	smap  *SourceMap
	diags *diagnostics
	pre   *preprocessor
	doc   *Document

	// x is the current line index into the resolved stream.  The
	// grammar walks smap.lines directly rather than scanning one flat
	// string: every resolved line carries the file and line it was
	// spliced from, and each position query depends on that origin.
	x int

	// levelOffset is the current ":leveloffset:" shift applied to
	// section markers.
	levelOffset int

	// pending metadata collected from attribute list lines, anchors,
	// and a ".Title" line preceding the next block.
	pending      BlockMetadata
	pendingTitle string
	pendingSet   bool
	pendingLine  int
}

func newDocumentParser(opts *Options, store *AttributeStore, smap *SourceMap,
	diags *diagnostics,
) *documentParser {
	docp := &documentParser{
		opts:  opts,
		store: store,
		smap:  smap,
		diags: diags,
	}
	docp.pre = &preprocessor{
		store: store,
		smap:  smap,
		diags: diags,
	}
	return docp
}

func (docp *documentParser) eof() bool {
	return docp.x >= len(docp.smap.lines)
}

func (docp *documentParser) line() string {
	if docp.eof() {
		return ""
	}
	return docp.smap.lines[docp.x].text
}

func (docp *documentParser) peek(n int) (line string, ok bool) {
	if docp.x+n >= len(docp.smap.lines) {
		return "", false
	}
	return docp.smap.lines[docp.x+n].text, true
}

// warnAt report a warning at the start of the resolved line.
func (docp *documentParser) warnAt(kind DiagKind, lineIdx int, format string, args ...any) {
	file, line, col := docp.smap.resolve(docp.smap.lineStart(lineIdx))
	docp.diags.warn(kind, docp.smap.File(file), line, col, format, args...)
}

// parse run the grammar over the whole stream and return the document.
func (docp *documentParser) parse() *Document {
	docp.doc = newDocument(docp.opts.Doctype, docp.store, docp.smap)

	defer func() {
		docp.doc.Diagnostics = docp.diags.sorted()
	}()

	if docp.opts.Doctype == DoctypeInline {
		docp.parseInlineDocument()
		return docp.doc
	}

	docp.parseHeader()
	docp.parseBlocks(docp.doc.Root, nil)
	return docp.doc
}

// parseInlineDocument treat the whole stream as one inline context wrapped
// in a single paragraph.
func (docp *documentParser) parseInlineDocument() {
	var lines []string
	for ; !docp.eof(); docp.x++ {
		lines = append(lines, docp.line())
	}
	raw := strings.TrimSpace(strings.Join(lines, "\n"))
	if len(raw) == 0 {
		return
	}
	el := &Element{
		Kind: KindParagraph,
		Raw:  []byte(raw),
	}
	el.Text = docp.parseInlineText(raw, 0)
	el.Meta.SourceRange = docp.smap.locate(0, len(raw))
	docp.doc.Root.AppendChild(el)
}

// parseInlineText run the preprocessor and the inline grammar over one
// inline context that starts at the absolute offset base.
func (docp *documentParser) parseInlineText(text string, base int) []*Inline {
	ptext := docp.pre.process(text, base)
	return parseInlines(ptext)
}

// parseHeader recognize the optional document header: title line, author
// line, revision line, interleaved with attribute entries.
func (docp *documentParser) parseHeader() {
	for !docp.eof() {
		line := docp.line()
		switch {
		case len(strings.TrimSpace(line)) == 0:
			docp.x++
			continue
		case strings.HasPrefix(line, "////"):
			docp.skipCommentBlock(line)
			continue
		case strings.HasPrefix(line, "//"):
			docp.x++
			continue
		case len(line) > 1 && line[0] == ':':
			if docp.parseAttributeEntry(line, nil) {
				docp.x++
				continue
			}
		}
		break
	}
	if docp.eof() {
		return
	}

	line := docp.line()
	if !isTitleLine(line) {
		return
	}

	base := docp.smap.lineStart(docp.x)
	rawTitle := strings.TrimSpace(line[2:])
	docp.doc.Title = parseDocumentTitle(rawTitle)
	docp.doc.Title.Inlines = docp.parseInlineText(docp.doc.Title.Main,
		base+strings.Index(line, rawTitle))
	docp.store.Set("doctitle", docp.doc.Title.Main)
	docp.x++

	// Author and revision lines end at the first blank line.
	state := 0
	for !docp.eof() {
		line = docp.line()
		if len(strings.TrimSpace(line)) == 0 {
			break
		}
		if strings.HasPrefix(line, "////") {
			docp.skipCommentBlock(line)
			continue
		}
		if strings.HasPrefix(line, "//") {
			docp.x++
			continue
		}
		if len(line) > 1 && line[0] == ':' {
			if docp.parseAttributeEntry(line, nil) {
				docp.x++
				continue
			}
		}
		switch state {
		case 0:
			if !isAuthorLine(line) {
				return
			}
			docp.doc.Authors = parseAuthorLine(line)
			if len(docp.doc.Authors) > 0 {
				docp.store.Set("author", docp.doc.Authors[0].FullName())
				docp.store.Set("authorinitials", docp.doc.Authors[0].Initials())
				if len(docp.doc.Authors[0].Email) > 0 {
					docp.store.Set("email", docp.doc.Authors[0].Email)
				}
			}
			state = 1
		case 1:
			rev, ok := parseRevisionLine(line)
			if !ok {
				return
			}
			docp.doc.Revision = rev
			docp.store.Set("revnumber", rev.Number)
			docp.store.Set("revdate", rev.Date)
			docp.store.Set("revremark", rev.Remark)
			state = 2
		default:
			return
		}
		docp.x++
	}
}

// parseAttributeEntry recognize ":name: value", ":name!:", and continuation
// lines ending with a backslash or " +".  When parent is not nil, the
// entry is also recorded in the tree as a block.
func (docp *documentParser) parseAttributeEntry(line string, parent *Element) bool {
	if len(line) < 2 || line[0] != ':' {
		return false
	}
	rest := line[1:]
	end := strings.IndexByte(rest, ':')
	if end <= 0 {
		return false
	}
	name := rest[:end]
	value := strings.TrimSpace(rest[end+1:])

	var unset bool
	if strings.HasSuffix(name, "!") {
		name = name[:len(name)-1]
		unset = true
	} else if strings.HasPrefix(name, "!") {
		name = name[1:]
		unset = true
	}
	if !isAttributeName(name) {
		return false
	}

	// Continuation lines.
	for strings.HasSuffix(value, "\\") || strings.HasSuffix(value, " +") {
		value = strings.TrimSuffix(value, "\\")
		value = strings.TrimSuffix(value, " +")
		value = strings.TrimSpace(value)
		next, ok := docp.peek(1)
		if !ok {
			break
		}
		docp.x++
		value = value + " " + strings.TrimSpace(next)
	}

	name = strings.ToLower(name)
	if name == "leveloffset" {
		docp.applyLevelOffset(value, unset)
	}
	if unset {
		docp.store.Unset(name)
	} else {
		docp.store.Set(name, value)
	}

	if parent != nil {
		el := &Element{
			Kind:   KindAttributeEntry,
			Target: name,
			Raw:    []byte(value),
		}
		base := docp.smap.lineStart(docp.x)
		el.Meta.SourceRange = docp.smap.locate(base, base+len(line))
		parent.AppendChild(el)
	}
	return true
}

func (docp *documentParser) applyLevelOffset(value string, unset bool) {
	if unset || len(value) == 0 {
		docp.levelOffset = 0
		return
	}
	n, err := strconv.Atoi(strings.TrimPrefix(value, "+"))
	if err != nil {
		return
	}
	if value[0] == '+' || value[0] == '-' {
		docp.levelOffset += n
	} else {
		docp.levelOffset = n
	}
}

func (docp *documentParser) skipCommentBlock(opener string) {
	docp.x++
	for !docp.eof() {
		if docp.line() == opener {
			docp.x++
			return
		}
		docp.x++
	}
}

// takePending return the collected block metadata and reset it.
func (docp *documentParser) takePending() (meta BlockMetadata, title string) {
	meta = docp.pending
	title = docp.pendingTitle
	docp.pending = BlockMetadata{}
	docp.pendingTitle = ""
	docp.pendingSet = false
	return meta, title
}

// collectMeta consume attribute list lines, block anchors, block titles,
// comments, and attribute entries.  It returns false at EOF or when the
// next line starts a real block.
func (docp *documentParser) collectMeta(parent *Element) bool {
	for !docp.eof() {
		line := docp.line()
		trimmed := strings.TrimSpace(line)

		switch {
		case len(trimmed) == 0:
			docp.x++
			continue

		case strings.HasPrefix(line, "////"):
			docp.skipCommentBlock(line)
			continue

		case strings.HasPrefix(line, "//") && !strings.HasPrefix(line, "///"):
			docp.x++
			continue

		case strings.HasPrefix(line, "[[") && strings.HasSuffix(trimmed, "]]"):
			inner := trimmed[2 : len(trimmed)-2]
			name, _, _ := strings.Cut(inner, ",")
			if len(docp.pending.ID) == 0 {
				docp.pending.ID = name
			}
			docp.markPending()
			docp.x++
			continue

		case isAttrListLine(trimmed):
			list := parseAttrList(trimmed[1 : len(trimmed)-1])
			list.applyTo(&docp.pending)
			docp.markPending()
			docp.x++
			continue

		case len(line) > 1 && line[0] == ':' && docp.parseAttributeEntry(line, parent):
			docp.x++
			continue

		case len(line) > 1 && line[0] == '.' && line[1] != ' ' && line[1] != '.':
			docp.pendingTitle = strings.TrimSpace(line[1:])
			docp.markPending()
			docp.x++
			continue
		}
		return true
	}
	return false
}

func (docp *documentParser) markPending() {
	if !docp.pendingSet {
		docp.pendingSet = true
		docp.pendingLine = docp.x
	}
}

// isAttrListLine report whether the whole line is an attribute list.
// Lines like "[1]" at paragraph start are still attribute lists; a
// trailing text disqualifies.
func isAttrListLine(trimmed string) bool {
	return len(trimmed) >= 2 && trimmed[0] == '[' &&
		trimmed[len(trimmed)-1] == ']' &&
		!strings.HasPrefix(trimmed, "[[")
}

// parseBlocks parse a run of blocks as children of parent until EOF or
// the stop line (a closing delimiter).  Sections nest through an ancestor
// chain kept local to this call, so a section inside a delimited block
// stays inside it.
func (docp *documentParser) parseBlocks(parent *Element, stop func(string) bool) {
	current := parent

	for {
		if !docp.collectMeta(current) {
			return
		}
		line := docp.line()
		if stop != nil && stop(line) {
			docp.x++
			return
		}

		if level, title, ok := docp.sectionLine(line); ok {
			current = docp.openSection(parent, current, level, title)
			docp.x++
			continue
		}

		if docp.opts.Setext {
			if next, ok := docp.peek(1); ok {
				trimmed := strings.TrimSpace(line)
				level, ok2 := setextLevel(trimmed, strings.TrimSpace(next))
				if ok2 {
					current = docp.openSection(parent, current,
						level+docp.levelOffset, trimmed)
					docp.x += 2
					continue
				}
			}
		}

		el := docp.parseBlock(current, line)
		if el != nil {
			current.AppendChild(el)
		}
	}
}

// sectionLine match "(=|#){1..6} SPACE title".  The returned level already
// includes the current leveloffset.
func (docp *documentParser) sectionLine(line string) (level int, title string, ok bool) {
	if len(line) == 0 || (line[0] != '=' && line[0] != '#') {
		return 0, "", false
	}
	marker := line[0]
	n := 0
	for n < len(line) && line[n] == marker {
		n++
	}
	if n > 6 || n >= len(line) || (line[n] != ' ' && line[n] != '\t') {
		return 0, "", false
	}
	title = strings.TrimSpace(line[n:])
	if len(title) == 0 {
		return 0, "", false
	}
	return n - 1 + docp.levelOffset, title, true
}

// openSection create a section at the requested level under the proper
// ancestor and return it as the new insertion point.  A child section must
// be exactly one level deeper than its parent; anything else is clamped
// and reported.
func (docp *documentParser) openSection(root, current *Element, level int, title string) *Element {
	if level == 0 && docp.opts.Doctype != DoctypeBook {
		docp.warnAt(DiagSectionLevel, docp.x,
			"level 0 sections are only allowed in the book doctype")
		level = 1
	}

	// Walk up to the section that can own this level.
	anchor := current
	for anchor != root && anchor.Kind == KindSection && anchor.Level >= level {
		anchor = anchor.Parent
	}
	parentLevel := 0
	if anchor.Kind == KindSection {
		parentLevel = anchor.Level
	}
	if level > parentLevel+1 {
		docp.warnAt(DiagSectionLevel, docp.x,
			"section level %d not allowed here, expecting %d",
			level, parentLevel+1)
		level = parentLevel + 1
	}

	meta, _ := docp.takePending()

	sect := &Element{
		Kind:  KindSection,
		Level: level,
		Meta:  meta,
	}
	base := docp.smap.lineStart(docp.x)
	line := docp.line()
	titleOff := base + (len(line) - len(title))
	sect.Text = docp.parseInlineText(title, titleOff)
	sect.Meta.SourceRange = docp.smap.locate(base, base+len(line))

	if sect.Meta.Style == "discrete" {
		sect.Kind = KindDiscreteHeading
		anchor.AppendChild(sect)
		return current
	}

	explicit := len(sect.Meta.ID) > 0
	if !explicit && docp.store.IsSet("sectids") {
		sect.Meta.ID = docp.doc.uniqueID(generateID(docp.store, title))
	}
	docp.doc.registerAnchor(sect.Meta.ID, sect, docp.diags, explicit)

	anchor.AppendChild(sect)
	return sect
}

// parseBlock dispatch on the current line and parse exactly one block.
func (docp *documentParser) parseBlock(parent *Element, line string) *Element {
	trimmed := strings.TrimSpace(line)

	if delim, kind, ok := delimitedOpener(trimmed); ok {
		return docp.parseDelimited(delim, kind)
	}
	if sep, ok := tableOpener(trimmed); ok {
		return docp.parseTableBlock(sep, trimmed)
	}
	if trimmed == "'''" || trimmed == "---" || trimmed == "***" {
		return docp.breakBlock(KindThematicBreak, line)
	}
	if trimmed == "<<<" {
		return docp.breakBlock(KindPageBreak, line)
	}
	if el := docp.blockMacro(line); el != nil {
		return el
	}
	if _, _, ok := listMarker(line); ok {
		return docp.parseList()
	}
	if _, _, ok := calloutItemLine(line); ok {
		return docp.parseCalloutList(parent)
	}
	if len(line) > 0 && (line[0] == ' ' || line[0] == '\t') &&
		!docp.pendingSet {
		return docp.parseLiteralParagraph()
	}
	return docp.parseParagraph()
}

func (docp *documentParser) breakBlock(kind ElementKind, line string) *Element {
	meta, _ := docp.takePending()
	el := &Element{Kind: kind, Meta: meta}
	base := docp.smap.lineStart(docp.x)
	el.Meta.SourceRange = docp.smap.locate(base, base+len(line))
	docp.x++
	return el
}

// delimitedOpener recognize a delimited block opening line and its default
// kind.  A longer run of the same character still opens the same kind,
// which is how blocks of one kind nest.
func delimitedOpener(trimmed string) (delim string, kind ElementKind, ok bool) {
	if trimmed == "--" {
		return trimmed, KindOpen, true
	}
	if len(trimmed) < 4 {
		return "", 0, false
	}
	c := trimmed[0]
	for x := 1; x < len(trimmed); x++ {
		if trimmed[x] != c {
			return "", 0, false
		}
	}
	switch c {
	case '/':
		return trimmed, KindComment, true
	case '=':
		return trimmed, KindExample, true
	case '-':
		return trimmed, KindListing, true
	case '.':
		return trimmed, KindLiteral, true
	case '*':
		return trimmed, KindSidebar, true
	case '_':
		return trimmed, KindQuote, true
	case '+':
		return trimmed, KindPass, true
	}
	return "", 0, false
}

// tableOpener recognize "|===", ",===", ":===", "!===".
func tableOpener(trimmed string) (sep byte, ok bool) {
	if len(trimmed) < 4 {
		return 0, false
	}
	c := trimmed[0]
	if c != '|' && c != ',' && c != ':' && c != '!' {
		return 0, false
	}
	for x := 1; x < len(trimmed); x++ {
		if trimmed[x] != '=' {
			return 0, false
		}
	}
	return c, true
}

// parseDelimited parse one delimited block.  The style from the pending
// attribute list may retype the block (source, verse, admonition, stem).
func (docp *documentParser) parseDelimited(delim string, kind ElementKind) *Element {
	meta, title := docp.takePending()
	startLine := docp.x
	base := docp.smap.lineStart(docp.x)
	docp.x++

	kind = restyleDelimited(kind, &meta)

	el := &Element{Kind: kind, Meta: meta}
	if kind == KindAdmonition {
		el.Admonition = meta.Style
	}
	if len(title) > 0 {
		el.Meta.Title = docp.parseInlineText(title,
			docp.smap.lineStart(docp.pendingLine))
	}

	switch kind {
	case KindComment:
		docp.rawUntil(el, delim)

	case KindListing, KindLiteral, KindStem:
		docp.rawUntil(el, delim)
		docp.parseCallouts(el, startLine+1)

	case KindPass:
		docp.rawUntil(el, delim)
		el.Text = []*Inline{{
			Kind:     InlineRaw,
			Text:     string(el.Raw),
			Subs:     SubsNone,
			Location: el.Meta.SourceRange,
		}}

	default:
		// Example, sidebar, quote, open, admonition: nested blocks
		// parse recursively.  Verse content is read raw and parsed
		// as one inline text.
		if kind == KindVerse {
			docp.rawUntil(el, delim)
			el.Text = docp.parseInlineText(string(el.Raw),
				docp.smap.lineStart(startLine+1))
		} else {
			docp.parseBlocks(el, func(line string) bool {
				return strings.TrimSpace(line) == delim
			})
		}
	}

	end := docp.smap.lineStart(docp.x) - 1
	if end < base {
		end = base
	}
	el.Meta.SourceRange = docp.smap.locate(base, end)
	docp.registerBlockAnchor(el)
	return el
}

// restyleDelimited apply the style attribute to the default kind of a
// delimited block.
func restyleDelimited(kind ElementKind, meta *BlockMetadata) ElementKind {
	switch meta.Style {
	case "source":
		return KindListing
	case "listing":
		return KindListing
	case "literal":
		return KindLiteral
	case "verse":
		return KindVerse
	case "quote":
		return KindQuote
	case "pass":
		return KindPass
	case "stem", "latexmath", "asciimath":
		return KindStem
	case "comment":
		return KindComment
	case "index":
		return KindIndex
	}
	for _, name := range admonitionNames {
		if meta.Style == name {
			return KindAdmonition
		}
	}
	return kind
}

// rawUntil collect lines verbatim until the exact closing delimiter.
func (docp *documentParser) rawUntil(el *Element, delim string) {
	var lines []string
	for !docp.eof() {
		line := docp.line()
		if strings.TrimSpace(line) == delim {
			docp.x++
			break
		}
		lines = append(lines, line)
		docp.x++
	}
	el.Raw = []byte(strings.Join(lines, "\n"))
}

// parseCallouts scan the verbatim content of el for callout markers <N>
// and <.> at end of line, building the inline list of Raw segments and
// callout references.  startLine is the resolved line index of the first
// content line.
func (docp *documentParser) parseCallouts(el *Element, startLine int) {
	lines := strings.Split(string(el.Raw), "\n")
	var (
		nodes []*Inline
		auto  int
	)
	for x, line := range lines {
		text, refs := cutCalloutRefs(line, &auto)
		textLen := len(text)
		if x > 0 {
			text = "\n" + text
		}
		base := docp.smap.lineStart(startLine + x)
		nodes = append(nodes, &Inline{
			Kind:     InlineRaw,
			Text:     text,
			Subs:     SubsVerbatim,
			Location: docp.smap.locate(base, base+textLen),
		})
		for _, num := range refs {
			nodes = append(nodes, &Inline{
				Kind:     InlineCalloutRef,
				Number:   num,
				Location: docp.smap.locate(base+textLen, base+len(line)),
			})
		}
	}
	el.Text = nodes
}

// cutCalloutRefs strip trailing callout markers from a verbatim line.
// "<.>" auto numbers by counting prior callouts in the same block.
func cutCalloutRefs(line string, auto *int) (text string, refs []int) {
	text = line
	for {
		trimmed := strings.TrimRight(text, " \t")
		if !strings.HasSuffix(trimmed, ">") {
			break
		}
		lt := strings.LastIndexByte(trimmed, '<')
		if lt < 0 {
			break
		}
		spec := trimmed[lt+1 : len(trimmed)-1]
		var num int
		if spec == "." {
			*auto++
			num = *auto
		} else {
			n, err := strconv.Atoi(spec)
			if err != nil || n <= 0 {
				break
			}
			if n > *auto {
				*auto = n
			}
			num = n
		}
		refs = append([]int{num}, refs...)
		text = trimmed[:lt]
	}
	return strings.TrimRight(text, " \t"), refs
}

// parseCalloutList parse a run of "<N> text" lines following a verbatim
// block.
func (docp *documentParser) parseCalloutList(parent *Element) *Element {
	meta, _ := docp.takePending()
	list := &Element{Kind: KindCalloutList, Meta: meta}
	base := docp.smap.lineStart(docp.x)

	for !docp.eof() {
		line := docp.line()
		num, text, ok := calloutItemLine(line)
		if !ok {
			break
		}
		lineIdx := docp.x
		docp.x++

		// Continuation lines of the item text.
		for !docp.eof() {
			next := docp.line()
			trimmedNext := strings.TrimSpace(next)
			if len(trimmedNext) == 0 {
				break
			}
			if _, _, isItem := calloutItemLine(next); isItem {
				break
			}
			if _, _, isList := listMarker(next); isList {
				break
			}
			text += " " + trimmedNext
			docp.x++
		}

		item := &Element{
			Kind:   KindCalloutItem,
			Number: num,
		}
		itemBase := docp.smap.lineStart(lineIdx)
		item.Text = docp.parseInlineText(text,
			itemBase+(len(line)-len(text)))
		item.Meta.SourceRange = docp.smap.locate(itemBase, itemBase+len(line))
		list.AppendChild(item)
	}

	end := docp.smap.lineStart(docp.x) - 1
	if end < base {
		end = base
	}
	list.Meta.SourceRange = docp.smap.locate(base, end)
	docp.verifyCallouts(list, parent)
	return list
}

// verifyCallouts compare the callout list against the callouts of the
// nearest preceding verbatim block.  The list is not attached yet, so the
// search starts from the last block of its future parent.
func (docp *documentParser) verifyCallouts(list, parent *Element) {
	var verbatim *Element
	for el := parent.LastChild; el != nil; el = el.PrevSibling {
		if el.Kind == KindListing || el.Kind == KindLiteral {
			verbatim = el
			break
		}
	}
	if verbatim == nil {
		return
	}
	var inBlock int
	for _, node := range verbatim.Text {
		if node.Kind == InlineCalloutRef {
			inBlock++
		}
	}
	var items int
	for item := list.FirstChild; item != nil; item = item.NextSibling {
		items++
	}
	if inBlock != items {
		loc := list.Meta.SourceRange
		docp.diags.warn(DiagCalloutMismatch,
			docp.smap.File(loc.File), loc.Start.Line, loc.Start.Column,
			"callout list has %d items but the block has %d callouts",
			items, inBlock)
	}
}

// calloutItemLine match "<N> text" and "<.> text".
func calloutItemLine(line string) (num int, text string, ok bool) {
	if len(line) < 4 || line[0] != '<' {
		return 0, "", false
	}
	gt := strings.IndexByte(line, '>')
	if gt < 2 || gt+1 >= len(line) || line[gt+1] != ' ' {
		return 0, "", false
	}
	spec := line[1:gt]
	if spec == "." {
		num = 0
	} else {
		n, err := strconv.Atoi(spec)
		if err != nil || n <= 0 {
			return 0, "", false
		}
		num = n
	}
	return num, strings.TrimSpace(line[gt+1:]), true
}

// blockMacro match "name::target[attrs]" block macros.
func (docp *documentParser) blockMacro(line string) *Element {
	trimmed := strings.TrimSpace(line)
	x := strings.Index(trimmed, "::")
	if x <= 0 {
		return nil
	}
	name := trimmed[:x]
	var kind ElementKind
	switch name {
	case "image":
		kind = KindImage
	case "audio":
		kind = KindAudio
	case "video":
		kind = KindVideo
	case "toc":
		kind = KindToc
	default:
		return nil
	}
	rest := trimmed[x+2:]
	lb := strings.IndexByte(rest, '[')
	if lb < 0 || !strings.HasSuffix(rest, "]") {
		return nil
	}
	target := docp.store.expandValue(rest[:lb], 1)
	if strings.ContainsAny(target, " \t") && kind != KindToc {
		return nil
	}

	meta, title := docp.takePending()
	el := &Element{Kind: kind, Meta: meta, Target: target}
	list := parseAttrList(rest[lb+1 : len(rest)-1])
	list.applyTo(&el.Meta)
	if kind == KindImage {
		if alt := list.positional(1); len(alt) > 0 {
			el.Meta.Attrs = append(el.Meta.Attrs, Attr{Key: "alt", Val: alt})
		}
		if width := list.positional(2); len(width) > 0 {
			el.Meta.Attrs = append(el.Meta.Attrs, Attr{Key: "width", Val: width})
		}
		if height := list.positional(3); len(height) > 0 {
			el.Meta.Attrs = append(el.Meta.Attrs, Attr{Key: "height", Val: height})
		}
		// The style slot of a block image is its alt text when no
		// "alt=" is given.
		el.Meta.Style = ""
	}
	if len(title) > 0 {
		el.Meta.Title = docp.parseInlineText(title,
			docp.smap.lineStart(docp.pendingLine))
	}
	base := docp.smap.lineStart(docp.x)
	el.Meta.SourceRange = docp.smap.locate(base, base+len(line))
	docp.registerBlockAnchor(el)
	docp.x++
	return el
}

func (docp *documentParser) registerBlockAnchor(el *Element) {
	if len(el.Meta.ID) > 0 {
		docp.doc.registerAnchor(el.Meta.ID, el, docp.diags, true)
	}
}

// parseLiteralParagraph parse a run of indented lines as a literal block.
func (docp *documentParser) parseLiteralParagraph() *Element {
	meta, _ := docp.takePending()
	el := &Element{Kind: KindLiteral, Meta: meta}
	base := docp.smap.lineStart(docp.x)

	var lines []string
	for !docp.eof() {
		line := docp.line()
		if len(strings.TrimSpace(line)) == 0 {
			break
		}
		if line[0] != ' ' && line[0] != '\t' {
			break
		}
		lines = append(lines, line)
		docp.x++
	}
	el.Raw = []byte(strings.Join(lines, "\n"))
	end := docp.smap.lineStart(docp.x) - 1
	el.Meta.SourceRange = docp.smap.locate(base, end)
	return el
}

// parseParagraph accumulate lines until a blank line or a block opener.
// The style attribute may retype the paragraph into a verbatim or quote
// block; an admonition label prefix retypes it into an admonition.
func (docp *documentParser) parseParagraph() *Element {
	meta, title := docp.takePending()
	startLine := docp.x
	base := docp.smap.lineStart(docp.x)

	var lines []string
	for !docp.eof() {
		line := docp.line()
		trimmed := strings.TrimSpace(line)
		if len(trimmed) == 0 {
			break
		}
		if len(lines) > 0 {
			// A block opener ends the paragraph.
			if _, _, ok := delimitedOpener(trimmed); ok {
				break
			}
			if _, ok := tableOpener(trimmed); ok {
				break
			}
			if _, _, ok := docp.sectionLine(line); ok {
				break
			}
			if isAttrListLine(trimmed) {
				break
			}
			if _, _, ok := listMarker(line); ok {
				break
			}
		}
		lines = append(lines, trimmed)
		docp.x++
	}
	if len(lines) == 0 {
		docp.x++
		return nil
	}

	raw := strings.Join(lines, "\n")
	el := &Element{Kind: KindParagraph, Meta: meta, Raw: []byte(raw)}

	switch meta.Style {
	case "listing", "source":
		el.Kind = KindListing
		el.Raw = []byte(raw)
	case "literal":
		el.Kind = KindLiteral
	case "verse":
		el.Kind = KindVerse
	case "quote":
		el.Kind = KindQuote
	case "pass":
		el.Kind = KindPass
	case "stem", "latexmath", "asciimath":
		el.Kind = KindStem
	case "comment":
		el.Kind = KindComment
	default:
		for _, name := range admonitionNames {
			if meta.Style == name {
				el.Kind = KindAdmonition
				el.Admonition = name
				break
			}
		}
	}

	// "NOTE: text" prefix form.
	if el.Kind == KindParagraph {
		for _, name := range admonitionNames {
			prefix := name + ": "
			if strings.HasPrefix(raw, prefix) {
				el.Kind = KindAdmonition
				el.Admonition = name
				raw = raw[len(prefix):]
				base += len(prefix)
				break
			}
		}
	}

	switch el.Kind {
	case KindListing, KindLiteral, KindStem:
		docp.parseCallouts(el, startLine)
	case KindPass:
		el.Text = []*Inline{{
			Kind: InlineRaw,
			Text: raw,
			Subs: SubsNone,
		}}
	case KindComment:
		// Dropped content; keep the raw text only.
	default:
		el.Text = docp.parseInlineText(raw, base)
	}

	if len(title) > 0 {
		el.Meta.Title = docp.parseInlineText(title,
			docp.smap.lineStart(docp.pendingLine))
	}
	end := docp.smap.lineStart(docp.x) - 1
	if end < base {
		end = base
	}
	el.Meta.SourceRange = docp.smap.locate(docp.smap.lineStart(startLine), end)
	docp.registerBlockAnchor(el)
	return el
}

// setextLevel match an underline of "=", "-", "~", "^", or "+" whose
// length is within one character of the title.
func setextLevel(title, underline string) (level int, ok bool) {
	if len(underline) < 2 || len(title) == 0 {
		return 0, false
	}
	c := underline[0]
	for x := 1; x < len(underline); x++ {
		if underline[x] != c {
			return 0, false
		}
	}
	diff := len(title) - len(underline)
	if diff < -1 || diff > 1 {
		return 0, false
	}
	switch c {
	case '=':
		return 0, true
	case '-':
		return 1, true
	case '~':
		return 2, true
	case '^':
		return 3, true
	case '+':
		return 4, true
	}
	return 0, false
}

func isTitleLine(line string) bool {
	return strings.HasPrefix(line, "= ") || strings.HasPrefix(line, "=\t") ||
		strings.HasPrefix(line, "# ") || strings.HasPrefix(line, "#\t")
}
