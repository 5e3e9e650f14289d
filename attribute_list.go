// Copyright 2024, Shulhan <ms@kilabit.info>. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package asciidoc

import (
	"strings"

	"github.com/shuLhan/share/lib/parser"
)

// attrList is the parsed form of an attribute list "[...]" on a block or
// inline macro: positional entries, named entries in source order, and the
// shorthands for identifier, roles, and options.
type attrList struct {
	id      string
	pos     []string
	named   []Attr
	roles   []string
	options []string
}

// parseAttrList parse the content of an attribute list, without the
// surrounding brackets.
//
//	ATTRS  = ATTR *("," ATTR)
//	ATTR   = NAME "=" (DQUOTE VALUE DQUOTE / VALUE) / POSITIONAL
//
// The first positional entry may carry the "#id", ".role", and "%option"
// shorthands after the style name.  A value that contains comma or the
// closing bracket must be wrapped in double quotes; the quotes are removed
// from the stored value.
func parseAttrList(content string) (list *attrList) {
	list = &attrList{}
	entries := splitAttrEntries(content)
	for x, entry := range entries {
		key, val, found := cutAttrEntry(entry)
		if found {
			key = strings.TrimSpace(key)
			switch key {
			case "id":
				list.id = unquoteAttr(val)
			case "role":
				for _, role := range strings.Fields(unquoteAttr(val)) {
					list.roles = append(list.roles, role)
				}
			case "opts", "options":
				for _, opt := range strings.Split(unquoteAttr(val), ",") {
					opt = strings.TrimSpace(opt)
					if len(opt) > 0 {
						list.options = append(list.options, opt)
					}
				}
			default:
				list.named = append(list.named, Attr{
					Key: key,
					Val: unquoteAttr(val),
				})
			}
			continue
		}

		entry = strings.TrimSpace(entry)
		if x == 0 {
			list.parseShorthands(entry)
			continue
		}
		list.pos = append(list.pos, unquoteAttr(entry))
	}
	return list
}

// parseShorthands split the first positional entry into the style name and
// its "#id", ".role", "%option" shorthands.
func (list *attrList) parseShorthands(entry string) {
	var (
		style strings.Builder
		x     int
	)
	for x < len(entry) {
		c := entry[x]
		if c != '#' && c != '.' && c != '%' {
			style.WriteByte(c)
			x++
			continue
		}
		end := x + 1
		for end < len(entry) && entry[end] != '#' &&
			entry[end] != '.' && entry[end] != '%' {
			end++
		}
		word := entry[x+1 : end]
		switch c {
		case '#':
			if len(list.id) == 0 {
				list.id = word
			}
		case '.':
			list.roles = append(list.roles, word)
		case '%':
			list.options = append(list.options, word)
		}
		x = end
	}
	list.pos = append(list.pos, unquoteAttr(style.String()))
}

// splitAttrEntries split on commas that are outside double quotes.
func splitAttrEntries(content string) (entries []string) {
	var (
		p        = parser.New(content, `",`)
		sb       strings.Builder
		inQuotes bool
	)
	for {
		tok, c := p.Token()
		sb.WriteString(tok)
		switch c {
		case '"':
			inQuotes = !inQuotes
			sb.WriteByte('"')
		case ',':
			if inQuotes {
				sb.WriteByte(',')
				continue
			}
			entries = append(entries, sb.String())
			sb.Reset()
		default:
			entries = append(entries, sb.String())
			return entries
		}
	}
}

// cutAttrEntry split "key=value", honoring quotes: an '=' inside a quoted
// value does not split.
func cutAttrEntry(entry string) (key, val string, found bool) {
	var (
		p        = parser.New(entry, `"=`)
		sb       strings.Builder
		inQuotes bool
	)
	for {
		tok, c := p.Token()
		sb.WriteString(tok)
		switch c {
		case '"':
			inQuotes = !inQuotes
			sb.WriteByte('"')
		case '=':
			if inQuotes || found {
				sb.WriteByte('=')
				continue
			}
			key = sb.String()
			sb.Reset()
			found = true
		default:
			if found {
				return key, sb.String(), true
			}
			return sb.String(), "", false
		}
	}
}

func unquoteAttr(val string) string {
	val = strings.TrimSpace(val)
	if len(val) >= 2 && val[0] == '"' && val[len(val)-1] == '"' {
		val = val[1 : len(val)-1]
	}
	return val
}

// applyTo merge the parsed list into block metadata.  The first positional
// entry becomes the style; named entries, roles, and options accumulate.
func (list *attrList) applyTo(meta *BlockMetadata) {
	if len(list.id) > 0 && len(meta.ID) == 0 {
		meta.ID = list.id
	}
	if len(list.pos) > 0 && len(list.pos[0]) > 0 && len(meta.Style) == 0 {
		meta.Style = list.pos[0]
	}
	for _, role := range list.roles {
		meta.addRole(role)
	}
	for _, opt := range list.options {
		meta.addOption(opt)
	}
	for _, attr := range list.named {
		if attr.Key == "subs" {
			meta.Subs = parseSubstitutionSpec(attr.Val)
			continue
		}
		meta.Attrs = append(meta.Attrs, attr)
	}

	// Well known positional slots of styled blocks.
	switch meta.Style {
	case "source":
		if lang := list.positional(2); len(lang) > 0 {
			if _, ok := meta.Attr("language"); !ok {
				meta.Attrs = append(meta.Attrs,
					Attr{Key: "language", Val: lang})
			}
		}
	case "quote", "verse":
		if attribution := list.positional(2); len(attribution) > 0 {
			meta.Attrs = append(meta.Attrs,
				Attr{Key: "attribution", Val: attribution})
		}
		if cite := list.positional(3); len(cite) > 0 {
			meta.Attrs = append(meta.Attrs,
				Attr{Key: "citetitle", Val: cite})
		}
	}
}

// positional return the 1-based positional attribute, or an empty string.
func (list *attrList) positional(x int) string {
	if x < 1 || x > len(list.pos) {
		return ""
	}
	return list.pos[x-1]
}

// attr return the value of a named attribute.
func (list *attrList) attr(key string) (val string, ok bool) {
	for _, attr := range list.named {
		if attr.Key == key {
			return attr.Val, true
		}
	}
	return "", false
}
