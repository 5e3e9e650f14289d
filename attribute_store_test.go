// Copyright 2024, Shulhan <ms@kilabit.info>. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package asciidoc

import (
	"testing"

	"github.com/shuLhan/share/lib/test"
)

func TestAttributeStoreSetGet(t *testing.T) {
	store := newAttributeStore()

	store.Set("Meh", "1.0")

	got, ok := store.Get("MEH")
	test.Assert(t, "case folded value", "1.0", got, true)
	test.Assert(t, "case folded ok", true, ok, true)

	store.Set("meh", "2.0")
	got, _ = store.Get("meh")
	test.Assert(t, "overwrite", "2.0", got, true)

	store.Unset("meh")
	test.Assert(t, "unset", false, store.IsSet("meh"), true)
	got, ok = store.Get("meh")
	test.Assert(t, "unset value", "", got, true)
	test.Assert(t, "unset ok", false, ok, true)
}

func TestAttributeStoreDefinitionTime(t *testing.T) {
	store := newAttributeStore()

	// Values containing references are resolved at definition time,
	// not at reference time.
	store.Set("a", "1")
	store.Set("b", "value {a}")
	store.Set("a", "2")

	got, _ := store.Get("b")
	test.Assert(t, "definition time resolution", "value 1", got, true)
}

func TestAttributeStoreUnknownReference(t *testing.T) {
	store := newAttributeStore()

	store.Set("b", "keep {missing} as-is")
	got, _ := store.Get("b")
	test.Assert(t, "unknown reference", "keep {missing} as-is", got, true)
}

func TestAttributeStoreNames(t *testing.T) {
	store := newAttributeStore()

	store.Set("zeta", "1")
	store.Set("alpha", "2")
	store.Set("mid", "3")
	store.Unset("mid")

	test.Assert(t, "insertion order", []string{"zeta", "alpha"},
		store.Names(), true)
}

func TestSeedBuiltinsPure(t *testing.T) {
	// Wall-clock attributes are backend concerns; seeding them here
	// would make two parses of the same input differ.
	store := newAttributeStore()
	store.seedBuiltins(&Options{})

	test.Assert(t, "no docdate", false, store.IsSet("docdate"), true)
	test.Assert(t, "no doctime", false, store.IsSet("doctime"), true)
	test.Assert(t, "no docdatetime", false, store.IsSet("docdatetime"), true)
	test.Assert(t, "doctype seeded", true, store.IsSet("doctype"), true)
}

func TestIsAttributeName(t *testing.T) {
	cases := []struct {
		name string
		exp  bool
	}{
		{"meh", true},
		{"attribute-missing", true},
		{"a_b", true},
		{"1a", true},
		{"-leading", false},
		{"has space", false},
		{"", false},
	}
	for _, c := range cases {
		test.Assert(t, c.name, c.exp, isAttributeName(c.name), true)
	}
}
