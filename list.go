// Copyright 2024, Shulhan <ms@kilabit.info>. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package asciidoc

import (
	"strings"
)

// listMarker recognize a list item line and split it into the marker and
// the principal text.  Markers may be indented; nesting is decided by
// marker identity and ancestor context, never by indentation.
//
// Unordered markers are runs of "*" or a single "-"; ordered markers are
// runs of "." or an explicit number "N." (normalized to "."); description
// markers are "::", ":::", "::::", or ";;" at the end of the term.
func listMarker(line string) (marker, rest string, ok bool) {
	trimmed := strings.TrimLeft(line, " \t")

	if len(trimmed) >= 2 {
		c := trimmed[0]
		if c == '*' || c == '.' || c == '-' {
			n := 0
			for n < len(trimmed) && trimmed[n] == c {
				n++
			}
			if c == '-' && n != 1 {
				return "", "", false
			}
			if n < len(trimmed) && (trimmed[n] == ' ' || trimmed[n] == '\t') {
				return trimmed[:n], strings.TrimSpace(trimmed[n:]), true
			}
			return "", "", false
		}
		if c >= '0' && c <= '9' {
			n := 0
			for n < len(trimmed) && trimmed[n] >= '0' && trimmed[n] <= '9' {
				n++
			}
			if n+1 < len(trimmed) && trimmed[n] == '.' &&
				(trimmed[n+1] == ' ' || trimmed[n+1] == '\t') {
				return ".", strings.TrimSpace(trimmed[n+1:]), true
			}
			return "", "", false
		}
	}

	if term, sep, principal, ok := descriptionMarker(trimmed); ok {
		// Description items return the separator as marker; the term
		// rides along in rest as "term\x00principal".
		return sep, term + "\x00" + principal, true
	}
	return "", "", false
}

// descriptionMarker find the "::" family separator of a description item:
// the term must be non-empty and the separator must be followed by space,
// tab, or end of line.
func descriptionMarker(trimmed string) (term, sep, principal string, ok bool) {
	for x := 1; x < len(trimmed); x++ {
		var n int
		switch trimmed[x] {
		case ':':
			for x+n < len(trimmed) && trimmed[x+n] == ':' {
				n++
			}
			if n < 2 || n > 4 {
				x += n
				continue
			}
		case ';':
			for x+n < len(trimmed) && trimmed[x+n] == ';' {
				n++
			}
			if n != 2 {
				x += n
				continue
			}
		default:
			continue
		}
		end := x + n
		if end == len(trimmed) {
			return trimmed[:x], trimmed[x:end], "", true
		}
		if trimmed[end] == ' ' || trimmed[end] == '\t' {
			return trimmed[:x], trimmed[x:end],
				strings.TrimSpace(trimmed[end:]), true
		}
		x = end
	}
	return "", "", "", false
}

func listKindOf(marker string) ListKind {
	switch marker[0] {
	case '*', '-':
		return ListUnordered
	case '.':
		return ListOrdered
	}
	return ListDescription
}

// parseList parse a contiguous run of list item lines, building nested
// lists by marker identity: a marker that has not appeared in any ancestor
// opens a nested list under the current item, a marker seen before closes
// back to the list that owns it.
func (docp *documentParser) parseList() *Element {
	meta, title := docp.takePending()

	type openList struct {
		marker string
		list   *Element
		item   *Element
	}
	var stack []openList

	base := docp.smap.lineStart(docp.x)

	for !docp.eof() {
		line := docp.line()
		trimmed := strings.TrimSpace(line)

		if len(trimmed) == 0 {
			// A blank line ends the list unless the next content
			// line is another list item (other than a callout
			// item) or a continuation marker.
			save := docp.x
			for !docp.eof() && len(strings.TrimSpace(docp.line())) == 0 {
				docp.x++
			}
			if docp.eof() {
				break
			}
			next := docp.line()
			nextTrim := strings.TrimSpace(next)
			if nextTrim == "+" {
				continue
			}
			_, _, isItem := listMarker(next)
			_, _, isCallout := calloutItemLine(next)
			if isItem && !isCallout && len(stack) > 0 {
				continue
			}
			docp.x = save
			break
		}

		// "//" and "[]" on their own lines separate two lists using
		// the same marker.
		if trimmed == "[]" || strings.HasPrefix(trimmed, "//") {
			docp.x++
			break
		}

		if trimmed == "+" {
			// Attach the next block to the current item.
			docp.x++
			if len(stack) == 0 {
				continue
			}
			item := stack[len(stack)-1].item
			if !docp.collectMeta(item) {
				break
			}
			if attached := docp.parseBlock(item, docp.line()); attached != nil {
				item.AppendChild(attached)
			}
			continue
		}

		marker, rest, ok := listMarker(line)
		if !ok {
			if len(stack) == 0 {
				break
			}
			// Adjacent line joins the principal of the current
			// item.
			item := stack[len(stack)-1].item
			if item != nil && len(item.Raw) > 0 {
				item.Raw = append(item.Raw, ' ')
				item.Raw = append(item.Raw, trimmed...)
				docp.x++
				continue
			}
			break
		}
		if _, _, isCallout := calloutItemLine(line); isCallout {
			break
		}

		// Find the list this marker belongs to.
		depth := -1
		for x := range stack {
			if stack[x].marker == marker {
				depth = x
				break
			}
		}
		switch {
		case depth >= 0:
			stack = stack[:depth+1]
		case len(stack) == 0:
			list := &Element{
				Kind:     KindList,
				ListKind: listKindOf(marker),
				Marker:   marker,
				Level:    1,
				Meta:     meta,
			}
			stack = append(stack, openList{marker: marker, list: list})
		default:
			// A new marker nests under the current item.
			parentItem := stack[len(stack)-1].item
			list := &Element{
				Kind:     KindList,
				ListKind: listKindOf(marker),
				Marker:   marker,
				Level:    len(stack) + 1,
			}
			if parentItem != nil {
				parentItem.AppendChild(list)
			}
			stack = append(stack, openList{marker: marker, list: list})
		}

		top := &stack[len(stack)-1]
		item := docp.newListItem(top.list, marker, rest, line)
		top.list.AppendChild(item)
		top.item = item
		docp.x++
	}

	if len(stack) == 0 {
		docp.x++
		return nil
	}

	root := stack[0].list
	if len(title) > 0 {
		root.Meta.Title = docp.parseInlineText(title,
			docp.smap.lineStart(docp.pendingLine))
	}
	end := docp.smap.lineStart(docp.x) - 1
	if end < base {
		end = base
	}
	root.Meta.SourceRange = docp.smap.locate(base, end)
	docp.finishListText(root)
	docp.registerBlockAnchor(root)
	return root
}

// newListItem build one KindListItem.  For description items rest carries
// "term\x00principal".
func (docp *documentParser) newListItem(list *Element, marker, rest, line string) *Element {
	item := &Element{
		Kind:   KindListItem,
		Marker: marker,
		Level:  list.Level,
	}
	lineBase := docp.smap.lineStart(docp.x)
	item.Meta.SourceRange = docp.smap.locate(lineBase, lineBase+len(line))

	if list.ListKind == ListDescription {
		term, principal, _ := strings.Cut(rest, "\x00")
		termOff := lineBase + strings.Index(line, term)
		item.Term = docp.parseInlineText(term, termOff)
		item.Raw = []byte(principal)
		return item
	}
	item.Raw = []byte(rest)
	return item
}

// finishListText parse the accumulated principal text of every item in the
// tree.  Principals are parsed late so adjacent continuation lines are
// already joined.
func (docp *documentParser) finishListText(list *Element) {
	for item := list.FirstChild; item != nil; item = item.NextSibling {
		if item.Kind == KindListItem {
			if len(item.Raw) > 0 {
				base := item.Meta.SourceRange.AbsStart
				principal := string(item.Raw)
				line := docp.lineTextAt(item.Meta.SourceRange.AbsStart)
				if off := strings.Index(line, principal); off > 0 {
					base += off
				}
				item.Text = docp.parseInlineText(principal, base)
			}
			for child := item.FirstChild; child != nil; child = child.NextSibling {
				if child.Kind == KindList {
					docp.finishListText(child)
				}
			}
		}
	}
}

// lineTextAt return the resolved line that contains the absolute offset.
func (docp *documentParser) lineTextAt(off int) string {
	for x := range docp.smap.lines {
		start := docp.smap.lineStarts[x]
		if off >= start && off <= start+len(docp.smap.lines[x].text) {
			return docp.smap.lines[x].text
		}
	}
	return ""
}
