// Copyright 2024, Shulhan <ms@kilabit.info>. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package asciidoc

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/shuLhan/share/lib/test"
)

func TestWriteJSON(t *testing.T) {
	input := "= Doc\n\n== Section\n\nPara with *bold*.\n\n----\ncode <1>\n----\n<1> note\n"
	doc := Parse("test.adoc", []byte(input), nil)

	var buf bytes.Buffer
	err := WriteJSON(&buf, doc)
	if err != nil {
		t.Fatal(err)
	}

	// The output is well formed JSON.
	var decoded map[string]any
	if err = json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("invalid JSON: %s", err)
	}
	test.Assert(t, "root name", "document", decoded["name"], true)

	out := buf.String()
	test.Assert(t, "section variant", true,
		strings.Contains(out, `"name":"section"`), true)
	test.Assert(t, "bold variant", true,
		strings.Contains(out, `"name":"bold"`), true)
	test.Assert(t, "callout serialization", true,
		strings.Contains(out, `"name":"callout_reference"`), true)
	test.Assert(t, "location present", true,
		strings.Contains(out, `"location"`), true)
}

func TestWriteJSONDeterministic(t *testing.T) {
	input := "== A\n\n|===\n|a |b\n|===\n"

	var outs []string
	for x := 0; x < 2; x++ {
		doc := Parse("test.adoc", []byte(input), nil)
		var buf bytes.Buffer
		if err := WriteJSON(&buf, doc); err != nil {
			t.Fatal(err)
		}
		outs = append(outs, buf.String())
	}
	test.Assert(t, "identical across runs", outs[0], outs[1], true)
}
