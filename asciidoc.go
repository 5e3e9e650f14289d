// Copyright 2024, Shulhan <ms@kilabit.info>. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

//
// Package asciidoc implements an AsciiDoc parser and converter framework.
//
// The parser turns markup source into a position annotated syntax tree in
// two layers: an inline preprocessor extracts passthroughs and expands
// attribute references while keeping a source map back to original byte
// positions, and a block grammar consumes the preprocessed stream and
// emits the typed tree of sections, blocks, and inline nodes.  Converters
// walk the tree through the Converter visitor contract.
//
// A parse is a pure function from source bytes and options to a document
// plus diagnostics; two documents may be parsed in parallel with no
// coordination.
//
package asciidoc

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Doctype select the section discipline and built-in attributes of the
// document.
type Doctype int

const (
	DoctypeArticle Doctype = iota
	DoctypeBook
	DoctypeManpage
	DoctypeInline
)

func (doctype Doctype) String() string {
	switch doctype {
	case DoctypeBook:
		return "book"
	case DoctypeManpage:
		return "manpage"
	case DoctypeInline:
		return "inline"
	}
	return "article"
}

// ParseDoctype translate the doctype name.
func ParseDoctype(name string) (Doctype, error) {
	switch strings.ToLower(name) {
	case "", "article":
		return DoctypeArticle, nil
	case "book":
		return DoctypeBook, nil
	case "manpage":
		return DoctypeManpage, nil
	case "inline":
		return DoctypeInline, nil
	}
	return DoctypeArticle, fmt.Errorf("invalid doctype %q", name)
}

// SafeMode gates the file system access of the include resolver.
// The modes are ordered: a higher mode is more restrictive.
type SafeMode int

const (
	// SafeModeUnsafe allows any include target.
	SafeModeUnsafe SafeMode = iota

	// SafeModeSafe allows only targets under the document root.
	SafeModeSafe

	// SafeModeServer additionally refuses parent directory traversal.
	SafeModeServer

	// SafeModeSecure disables include resolution entirely.
	SafeModeSecure
)

func (mode SafeMode) String() string {
	switch mode {
	case SafeModeSafe:
		return "Safe"
	case SafeModeServer:
		return "Server"
	case SafeModeSecure:
		return "Secure"
	}
	return "Unsafe"
}

// ParseSafeMode translate the safe mode name, case insensitively.
func ParseSafeMode(name string) (SafeMode, error) {
	switch strings.ToLower(name) {
	case "", "unsafe":
		return SafeModeUnsafe, nil
	case "safe":
		return SafeModeSafe, nil
	case "server":
		return SafeModeServer, nil
	case "secure":
		return SafeModeSecure, nil
	}
	return SafeModeUnsafe, fmt.Errorf(
		"invalid safe mode %q, expecting unsafe, safe, server, or secure",
		name)
}

// Options control a parse.  The zero value is a usable default: article
// doctype, unsafe mode, no overrides.
type Options struct {
	// Attributes are overrides applied before the header pass.
	// An entry with an empty value sets the attribute; map a name to
	// "!" to unset it.
	Attributes map[string]string

	// RootDir is the document root that SafeModeSafe confines include
	// targets to.  It defaults to the directory of the parsed file.
	RootDir string

	Doctype  Doctype
	SafeMode SafeMode

	// Strict promotes warnings about malformed tables and skipped
	// section levels to errors.  The list grammar reports no warnings,
	// so malformed lists are not affected.
	Strict bool

	// Setext also recognizes two line underlined section titles.
	Setext bool
}

// Parse parse src as one AsciiDoc document.  The path is used for
// diagnostics and to resolve relative include targets.
//
// Parse always returns a document; parse problems are reported through
// Document.Diagnostics.  Only a top level grammar failure yields the
// fatal ParseError diagnostic together with an empty document.
func Parse(path string, src []byte, opts *Options) (doc *Document) {
	if opts == nil {
		opts = &Options{}
	}
	if len(opts.RootDir) == 0 && len(path) > 0 {
		opts.RootDir = filepath.Dir(path)
	}

	smap := newSourceMap()
	diags := newDiagnostics(opts.Strict)
	store := newAttributeStore()
	store.seedBuiltins(opts)
	// Secure mode hides the host filesystem from the document.
	if opts.SafeMode < SafeModeSecure {
		store.Set("docfile", path)
		store.Set("docdir", filepath.Dir(path))
	}
	store.Set("docname", strings.TrimSuffix(filepath.Base(path),
		filepath.Ext(path)))

	for name, value := range opts.Attributes {
		if value == "!" || strings.HasSuffix(name, "!") {
			store.Unset(strings.TrimSuffix(name, "!"))
			continue
		}
		store.Set(name, value)
	}

	resolver := newIncludeResolver(opts, store, smap, diags)
	resolver.resolve(path, src, true)

	docp := newDocumentParser(opts, store, smap, diags)
	doc = docp.parse()
	return doc
}

// ParseFile read and parse the file.
func ParseFile(path string, opts *Options) (doc *Document, err error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("asciidoc.ParseFile %s: %w", path, err)
	}
	return Parse(path, src, opts), nil
}
