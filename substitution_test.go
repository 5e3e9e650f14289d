// Copyright 2024, Shulhan <ms@kilabit.info>. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package asciidoc

import (
	"testing"

	"github.com/shuLhan/share/lib/test"
)

func TestParseSubstitutionSpec(t *testing.T) {
	spec := parseSubstitutionSpec("specialchars,quotes")
	test.Assert(t, "replacement list",
		[]Substitution{SubSpecialChars, SubQuotes}, spec.Replace, true)
	test.Assert(t, "not incremental", false, spec.Incremental, true)

	spec = parseSubstitutionSpec("-callouts,+attributes")
	test.Assert(t, "incremental", true, spec.Incremental, true)
	test.Assert(t, "add", []Substitution{SubAttributes}, spec.Add, true)
	test.Assert(t, "remove", []Substitution{SubCallouts}, spec.Remove, true)

	spec = parseSubstitutionSpec("normal")
	test.Assert(t, "group expansion", len(SubsNormal),
		len(spec.Replace), true)
}

func TestResolveSubstitutions(t *testing.T) {
	// No spec: the baseline passes through.
	var spec SubstitutionSpec
	got := ResolveSubstitutions(spec, SubsVerbatim)
	test.Assert(t, "baseline", SubsVerbatim, got, true)

	// Replacement list wins over the baseline.
	spec = parseSubstitutionSpec("quotes")
	got = ResolveSubstitutions(spec, SubsVerbatim)
	test.Assert(t, "replace", []Substitution{SubQuotes}, got, true)

	// Incremental operations edit the baseline.
	spec = parseSubstitutionSpec("-callouts,+quotes")
	got = ResolveSubstitutions(spec, SubsVerbatim)
	test.Assert(t, "incremental",
		[]Substitution{SubSpecialChars, SubQuotes}, got, true)
}

func TestApplyTypography(t *testing.T) {
	cases := []struct {
		in  string
		exp string
	}{
		{"a -> b", "a → b"},
		{"a <- b", "a ← b"},
		{"a => b", "a ⇒ b"},
		{"(C) (TM) (R)", "© ™ ®"},
		{"it's done", "it’s done"},
		{"'quoted'", "'quoted'"}, // not in word context
	}
	for _, c := range cases {
		test.Assert(t, c.in, c.exp, ApplyTypography(c.in), true)
	}
}
