// Copyright 2024, Shulhan <ms@kilabit.info>. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package asciidoc

import "strings"

// Substitution is a single named substitution step that a converter (or the
// parser itself, for attributes) applies to raw text.
type Substitution int

const (
	SubSpecialChars Substitution = iota
	SubQuotes
	SubAttributes
	SubReplacements
	SubMacros
	SubPostReplacements
	SubCallouts
)

// The substitution groups. A group name inside "subs=" expands to its
// members before being applied.
var (
	// SubsNormal is the baseline for paragraphs and other normal content.
	SubsNormal = []Substitution{
		SubSpecialChars, SubQuotes, SubAttributes,
		SubReplacements, SubMacros, SubPostReplacements,
	}

	// SubsVerbatim is the baseline for listing and literal blocks.
	SubsVerbatim = []Substitution{SubSpecialChars, SubCallouts}

	// SubsHeader is applied to metadata lines in the document header.
	SubsHeader = []Substitution{SubSpecialChars, SubAttributes}

	// SubsNone is the empty list carried by triple-plus passthroughs.
	SubsNone = []Substitution{}
)

// String returns the canonical name of the substitution, as used in the
// "subs" block attribute.
func (sub Substitution) String() string {
	switch sub {
	case SubSpecialChars:
		return "specialchars"
	case SubQuotes:
		return "quotes"
	case SubAttributes:
		return "attributes"
	case SubReplacements:
		return "replacements"
	case SubMacros:
		return "macros"
	case SubPostReplacements:
		return "post_replacements"
	case SubCallouts:
		return "callouts"
	}
	return "unknown"
}

// parseSubstitution translate the name or its single letter alias into a
// list of substitutions.
// A group name ("normal", "verbatim", "none") expands to its members.
// Unknown names return nil.
func parseSubstitution(name string) []Substitution {
	switch name {
	case "specialchars", "c":
		return []Substitution{SubSpecialChars}
	case "quotes", "q":
		return []Substitution{SubQuotes}
	case "attributes", "a":
		return []Substitution{SubAttributes}
	case "replacements", "r":
		return []Substitution{SubReplacements}
	case "macros", "m":
		return []Substitution{SubMacros}
	case "post_replacements", "p":
		return []Substitution{SubPostReplacements}
	case "callouts":
		return []Substitution{SubCallouts}
	case "normal", "n":
		return append([]Substitution{}, SubsNormal...)
	case "verbatim", "v":
		return append([]Substitution{}, SubsVerbatim...)
	case "none":
		return []Substitution{}
	}
	return nil
}

// SubstitutionSpec is the parsed value of a "subs" block attribute.
// It is either a full replacement list or a sequence of incremental
// "+name" / "-name" operations applied to a block kind baseline.
type SubstitutionSpec struct {
	// Replace holds the replacement list when Incremental is false.
	Replace []Substitution

	// Add and Remove hold the "+name" and "-name" operations, in source
	// order, when Incremental is true.
	Add    []Substitution
	Remove []Substitution

	Incremental bool

	// set is true once a "subs" attribute has been parsed for the block.
	set bool
}

// IsSet reports whether the block carried an explicit "subs" attribute.
func (spec *SubstitutionSpec) IsSet() bool {
	return spec.set
}

// parseSubstitutionSpec parse the comma separated value of a "subs"
// attribute.  Mixing plain names with "+"/"-" operations makes the whole
// spec incremental: plain names are then treated as additions, which is how
// asciidoctor behaves.
func parseSubstitutionSpec(value string) (spec SubstitutionSpec) {
	spec.set = true
	names := strings.Split(value, ",")
	for _, name := range names {
		name = strings.TrimSpace(name)
		if len(name) == 0 {
			continue
		}
		switch name[0] {
		case '+':
			spec.Incremental = true
			spec.Add = append(spec.Add, parseSubstitution(name[1:])...)
		case '-':
			spec.Incremental = true
			spec.Remove = append(spec.Remove, parseSubstitution(name[1:])...)
		default:
			if spec.Incremental {
				spec.Add = append(spec.Add, parseSubstitution(name)...)
			} else {
				spec.Replace = append(spec.Replace, parseSubstitution(name)...)
			}
		}
	}
	if spec.Incremental && len(spec.Replace) > 0 {
		// Plain names seen before the first operation are additions
		// too, kept ahead of the later ones.
		spec.Add = append(spec.Replace, spec.Add...)
		spec.Replace = nil
	}
	return spec
}

// ResolveSubstitutions compute the effective substitution list for a block:
// the replacement list itself, or the baseline with the incremental
// operations applied.  The baseline is SubsNormal for normal content and
// SubsVerbatim for listing or literal content.
func ResolveSubstitutions(spec SubstitutionSpec, baseline []Substitution) (subs []Substitution) {
	if spec.set && !spec.Incremental {
		return append(subs, spec.Replace...)
	}
	subs = append(subs, baseline...)
	if !spec.set {
		return subs
	}
	for _, sub := range spec.Add {
		var found bool
		for _, have := range subs {
			if have == sub {
				found = true
				break
			}
		}
		if !found {
			subs = append(subs, sub)
		}
	}
	for _, sub := range spec.Remove {
		for x := 0; x < len(subs); x++ {
			if subs[x] == sub {
				subs = append(subs[:x], subs[x+1:]...)
				x--
			}
		}
	}
	return subs
}

// typography replacement pairs, applied in order wherever the form on the
// left occurs; no surrounding context is required for any of them.
var typographyReplacements = []struct {
	from string
	to   string
}{
	{"(C)", "©"},
	{"(TM)", "™"},
	{"(R)", "®"},
	{"...", "…​"},
	{"<->", "⇔"},
	{"<-", "←"},
	{"->", "→"},
	{"<=>", "⇔"},
	{"=>", "⇒"},
	{"<=", "⇐"},
	{"--", "—"},
}

// ApplyTypography perform the "replacements" substitution group on text:
// arrows, em-dash, ellipsis, copyright, trademark, registered, and the
// smart apostrophe in word context.
func ApplyTypography(text string) string {
	for _, rep := range typographyReplacements {
		text = strings.ReplaceAll(text, rep.from, rep.to)
	}

	// Smart apostrophe: a straight quote between two letters.
	var sb strings.Builder
	sb.Grow(len(text))
	runes := []rune(text)
	for x, c := range runes {
		if c == '\'' && x > 0 && x < len(runes)-1 &&
			isWordRune(runes[x-1]) && isWordRune(runes[x+1]) {
			sb.WriteRune('’')
			continue
		}
		sb.WriteRune(c)
	}
	return sb.String()
}

func isWordRune(c rune) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') ||
		(c >= '0' && c <= '9')
}
