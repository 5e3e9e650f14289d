// Copyright 2024, Shulhan <ms@kilabit.info>. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package asciidoc

import (
	"strings"
)

// Behaviors of a reference to a missing attribute, selected by the
// "attribute-missing" attribute.
const (
	attrMissingSkip     = "skip"      // keep the reference literal, warn
	attrMissingDrop     = "drop"      // remove the reference
	attrMissingDropLine = "drop-line" // handled like drop: remove the reference only
)

type attributeEntry struct {
	name  string
	value string
	unset bool
}

// AttributeStore is an append ordered mapping from attribute name to its
// resolved string value.
// Names are case folded to lowercase on insertion and lookup.  Writes
// overwrite, and an explicit unset is remembered so that it shadows any
// built-in value.
type AttributeStore struct {
	index   map[string]int
	entries []attributeEntry

	// locked is not set anywhere in this package, and neither writes nor
	// reference expansion consult it.
	locked bool
}

func newAttributeStore() *AttributeStore {
	return &AttributeStore{
		index: make(map[string]int),
	}
}

// Set store value under the case folded name.
// Attribute references inside value are resolved now, at definition time,
// not when the attribute is referenced later.
func (store *AttributeStore) Set(name, value string) {
	name = strings.ToLower(strings.TrimSpace(name))
	if len(name) == 0 {
		return
	}
	value = store.expandValue(value, 0)
	if x, ok := store.index[name]; ok {
		store.entries[x].value = value
		store.entries[x].unset = false
		return
	}
	store.index[name] = len(store.entries)
	store.entries = append(store.entries, attributeEntry{
		name:  name,
		value: value,
	})
}

// Unset mark the attribute as explicitly not set.
func (store *AttributeStore) Unset(name string) {
	name = strings.ToLower(strings.TrimSpace(name))
	if x, ok := store.index[name]; ok {
		store.entries[x].value = ""
		store.entries[x].unset = true
		return
	}
	store.index[name] = len(store.entries)
	store.entries = append(store.entries, attributeEntry{
		name:  name,
		unset: true,
	})
}

// Get return the resolved value of the attribute and whether it is set.
func (store *AttributeStore) Get(name string) (value string, ok bool) {
	name = strings.ToLower(name)
	x, ok := store.index[name]
	if !ok || store.entries[x].unset {
		return "", false
	}
	return store.entries[x].value, true
}

// IsSet report whether name has a value, honoring explicit unset markers.
func (store *AttributeStore) IsSet(name string) bool {
	_, ok := store.Get(name)
	return ok
}

// Names return the attribute names in insertion order, excluding the ones
// that are unset.
func (store *AttributeStore) Names() (names []string) {
	for _, entry := range store.entries {
		if !entry.unset {
			names = append(names, entry.name)
		}
	}
	return names
}

// expandValue resolve "{name}" references inside an attribute value.
// Only references to already defined attributes are expanded; unknown
// references stay literal.  The depth guard stops reference cycles.
func (store *AttributeStore) expandValue(value string, depth int) string {
	if depth >= maxAttributeDepth || !strings.Contains(value, "{") {
		return value
	}
	var sb strings.Builder
	x := 0
	for x < len(value) {
		if value[x] != '{' {
			sb.WriteByte(value[x])
			x++
			continue
		}
		end := strings.IndexByte(value[x:], '}')
		if end < 0 {
			sb.WriteString(value[x:])
			break
		}
		name := value[x+1 : x+end]
		if !isAttributeName(name) {
			sb.WriteByte(value[x])
			x++
			continue
		}
		ref, ok := store.Get(name)
		if !ok {
			sb.WriteString(value[x : x+end+1])
			x += end + 1
			continue
		}
		sb.WriteString(store.expandValue(ref, depth+1))
		x += end + 1
	}
	return sb.String()
}

// isAttributeName report whether name is a valid attribute name: it starts
// with an alphanumeric and contains only alphanumerics, '-', and '_'.
func isAttributeName(name string) bool {
	if len(name) == 0 {
		return false
	}
	for x := 0; x < len(name); x++ {
		c := name[x]
		switch {
		case c >= 'a' && c <= 'z':
		case c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9':
		case c == '-' || c == '_':
			if x == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// seedBuiltins populate the store with the attributes every document starts
// with, before user overrides and the header pass.
func (store *AttributeStore) seedBuiltins(opts *Options) {
	builtins := []attributeEntry{
		// Character replacement attributes.
		{name: "sp", value: " "},
		{name: "blank", value: ""},
		{name: "empty", value: ""},
		{name: "nbsp", value: " "},
		{name: "zwsp", value: "​"},
		{name: "wj", value: "⁠"},
		{name: "apos", value: "'"},
		{name: "quot", value: "\""},
		{name: "lsquo", value: "‘"},
		{name: "rsquo", value: "’"},
		{name: "ldquo", value: "“"},
		{name: "rdquo", value: "”"},
		{name: "lt", value: "<"},
		{name: "gt", value: ">"},
		{name: "amp", value: "&"},
		{name: "startsb", value: "["},
		{name: "endsb", value: "]"},
		{name: "vbar", value: "|"},
		{name: "caret", value: "^"},
		{name: "tilde", value: "~"},
		{name: "plus", value: "+"},
		{name: "backslash", value: "\\"},
		{name: "backtick", value: "`"},
		{name: "asterisk", value: "*"},
		{name: "two-colons", value: "::"},
		{name: "two-semicolons", value: ";;"},
		{name: "cpp", value: "C++"},
		{name: "cxx", value: "C++"},
		{name: "pp", value: "++"},
		{name: "deg", value: "°"},
		{name: "brvbar", value: "¦"},

		// Admonition captions.
		{name: "note-caption", value: "Note"},
		{name: "tip-caption", value: "Tip"},
		{name: "important-caption", value: "Important"},
		{name: "warning-caption", value: "Warning"},
		{name: "caution-caption", value: "Caution"},

		// Block captions.
		{name: "example-caption", value: "Example"},
		{name: "figure-caption", value: "Figure"},
		{name: "table-caption", value: "Table"},
		{name: "appendix-caption", value: "Appendix"},

		// UI labels.
		{name: "toc-title", value: "Table of Contents"},
		{name: "untitled-label", value: "Untitled"},
		{name: "version-label", value: "Version"},
		{name: "last-update-label", value: "Last updated"},

		// Reference signifiers.
		{name: "chapter-refsig", value: "Chapter"},
		{name: "section-refsig", value: "Section"},
		{name: "part-refsig", value: "Part"},
		{name: "appendix-refsig", value: "Appendix"},

		// Structural settings.
		{name: "toclevels", value: "2"},
		{name: "sectnumlevels", value: "3"},
		{name: "idprefix", value: "_"},
		{name: "idseparator", value: "_"},
		{name: "sectids", value: ""},

		// Attribute processing compliance.
		{name: "attribute-missing", value: attrMissingSkip},
		{name: "attribute-undefined", value: attrMissingDropLine},
	}
	for _, entry := range builtins {
		store.Set(entry.name, entry.value)
	}

	// docdate, doctime, and docdatetime are deliberately not seeded: a
	// parse is a pure function of its inputs, so wall-clock attributes
	// are supplied by the backends (or by an explicit override).
	store.Set("doctype", opts.Doctype.String())
	store.Set("safe-mode-name", strings.ToLower(opts.SafeMode.String()))
	if opts.SafeMode >= SafeModeSecure {
		store.Unset("docdir")
		store.Unset("docfile")
	}
}
