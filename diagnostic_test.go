// Copyright 2024, Shulhan <ms@kilabit.info>. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package asciidoc

import (
	"testing"

	"github.com/shuLhan/share/lib/test"
)

func TestDiagnosticsDedup(t *testing.T) {
	diags := newDiagnostics(false)

	// The grammar backtracks, so the same warning arrives many times.
	for x := 0; x < 5; x++ {
		diags.warn(DiagTableMalformed, "doc.adoc", 3, 1, "bad row")
	}
	diags.warn(DiagTableMalformed, "doc.adoc", 3, 2, "bad row")

	test.Assert(t, "deduplicated", 2, len(diags.list), true)
}

func TestDiagnosticsSorted(t *testing.T) {
	diags := newDiagnostics(false)
	diags.warn(DiagAttributeMissing, "b.adoc", 1, 1, "late file")
	diags.warn(DiagTableMalformed, "a.adoc", 9, 1, "later line")
	diags.warn(DiagAttributeMissing, "a.adoc", 2, 5, "early")

	sorted := diags.sorted()
	test.Assert(t, "first", "early", sorted[0].Message, true)
	test.Assert(t, "second", "later line", sorted[1].Message, true)
	test.Assert(t, "third", "late file", sorted[2].Message, true)
}

func TestDiagnosticsStrict(t *testing.T) {
	diags := newDiagnostics(true)
	diags.warn(DiagTableMalformed, "doc.adoc", 1, 1, "bad table")
	diags.warn(DiagAttributeMissing, "doc.adoc", 2, 1, "missing")

	test.Assert(t, "promoted", SeverityError, diags.list[0].Severity, true)
	test.Assert(t, "not promoted", SeverityWarning,
		diags.list[1].Severity, true)
}

func TestDiagnosticString(t *testing.T) {
	diag := Diagnostic{
		Severity: SeverityWarning,
		Kind:     DiagAttributeMissing,
		File:     "doc.adoc",
		Line:     3,
		Column:   7,
		Message:  "skipping reference",
	}
	test.Assert(t, "format",
		"doc.adoc:3:7: warning: AttributeMissing: skipping reference",
		diag.String(), true)
}
