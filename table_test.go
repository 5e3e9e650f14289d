// Copyright 2024, Shulhan <ms@kilabit.info>. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package asciidoc

import (
	"testing"

	"github.com/shuLhan/share/lib/test"
)

func cellText(cell *Cell) string {
	return InlinesText(cell.Text)
}

func TestTableBasic(t *testing.T) {
	input := "[cols=\"2,^2\"]\n|===\n|a |b\n|c |d\n|===\n"
	doc := Parse("test.adoc", []byte(input), nil)

	el := childElements(doc.Root)[0]
	test.Assert(t, "kind", KindTable, el.Kind, true)

	table := el.TableData
	test.Assert(t, "column count", 2, len(table.Columns), true)
	test.Assert(t, "col 2 halign", byte('^'), table.Columns[1].HAlign, true)
	test.Assert(t, "col 2 width", 2, table.Columns[1].Width, true)

	test.Assert(t, "row count", 2, len(table.Rows), true)
	test.Assert(t, "cell a", "a", cellText(table.Rows[0].Cells[0]), true)
	test.Assert(t, "cell b", "b", cellText(table.Rows[0].Cells[1]), true)
	test.Assert(t, "cell c", "c", cellText(table.Rows[1].Cells[0]), true)
	test.Assert(t, "cell d", "d", cellText(table.Rows[1].Cells[1]), true)
	test.Assert(t, "no header", false, table.HasHeader, true)
}

func TestTableInferredColumnsAndHeader(t *testing.T) {
	input := "|===\n|Name |Value\n\n|x |1\n|y |2\n|===\n"
	doc := Parse("test.adoc", []byte(input), nil)

	table := childElements(doc.Root)[0].TableData
	test.Assert(t, "inferred columns", 2, len(table.Columns), true)
	test.Assert(t, "header", true, table.HasHeader, true)
	test.Assert(t, "header style", byte('h'),
		table.Rows[0].Cells[0].Style, true)
	test.Assert(t, "row count", 3, len(table.Rows), true)
}

func TestTableCellSpec(t *testing.T) {
	cases := []struct {
		in  string
		exp cellSpec
		ok  bool
	}{{
		in: "2.3+^.^s",
		exp: cellSpec{
			colspan: 2, rowspan: 3,
			halign: '^', valign: '^', style: 's',
		},
		ok: true,
	}, {
		in:  "3*",
		exp: cellSpec{duplicate: 3},
		ok:  true,
	}, {
		in:  "2+",
		exp: cellSpec{colspan: 2},
		ok:  true,
	}, {
		in:  ".2+",
		exp: cellSpec{rowspan: 2},
		ok:  true,
	}, {
		in:  ">.>m",
		exp: cellSpec{halign: '>', valign: '>', style: 'm'},
		ok:  true,
	}, {
		in:  "a",
		exp: cellSpec{style: 'a'},
		ok:  true,
	}, {
		in: "word",
		ok: false,
	}}
	for _, c := range cases {
		got, ok := matchCellSpec(c.in)
		test.Assert(t, c.in+" ok", c.ok, ok, true)
		if c.ok {
			test.Assert(t, c.in, c.exp, got, true)
		}
	}
}

func TestTableColumnSpecs(t *testing.T) {
	cols := parseColumnSpecs("2,^3m,.<s")

	test.Assert(t, "count", 3, len(cols), true)
	test.Assert(t, "col 1 width", 2, cols[0].Width, true)
	test.Assert(t, "col 2 halign", byte('^'), cols[1].HAlign, true)
	test.Assert(t, "col 2 width", 3, cols[1].Width, true)
	test.Assert(t, "col 2 style", byte('m'), cols[1].Style, true)
	test.Assert(t, "col 3 valign", byte('<'), cols[2].VAlign, true)
	test.Assert(t, "col 3 style", byte('s'), cols[2].Style, true)

	cols = parseColumnSpecs("3*1")
	test.Assert(t, "repeat count", 3, len(cols), true)
	test.Assert(t, "repeat width", 1, cols[2].Width, true)
}

func TestTableDuplicator(t *testing.T) {
	input := "[cols=\"3\"]\n|===\n3*|same\n|===\n"
	doc := Parse("test.adoc", []byte(input), nil)

	table := childElements(doc.Root)[0].TableData
	test.Assert(t, "row count", 1, len(table.Rows), true)
	test.Assert(t, "cell count", 3, len(table.Rows[0].Cells), true)
	for _, cell := range table.Rows[0].Cells {
		test.Assert(t, "duplicated", "same", cellText(cell), true)
	}
}

func TestTableSpans(t *testing.T) {
	// Cell "a" spans two rows; the second row supplies only the second
	// column.
	input := "[cols=\"2\"]\n|===\n.2+|a |b\n|c\n|===\n"
	doc := Parse("test.adoc", []byte(input), nil)

	table := childElements(doc.Root)[0].TableData
	test.Assert(t, "row count", 2, len(table.Rows), true)
	test.Assert(t, "row 1 cells", 2, len(table.Rows[0].Cells), true)
	test.Assert(t, "rowspan", 2, table.Rows[0].Cells[0].RowSpan, true)
	test.Assert(t, "row 2 cells", 1, len(table.Rows[1].Cells), true)
	test.Assert(t, "row 2 content", "c",
		cellText(table.Rows[1].Cells[0]), true)

	// Property: colspans plus rowspan holes fill every column.
	carried := 0
	if table.Rows[0].Cells[0].RowSpan > 1 {
		carried = 1
	}
	sum := 0
	for _, cell := range table.Rows[1].Cells {
		sum += cell.ColSpan
	}
	test.Assert(t, "cell count invariant", 2, sum+carried, true)
}

func TestTableColspan(t *testing.T) {
	input := "[cols=\"2\"]\n|===\n2+|wide\n|a |b\n|===\n"
	doc := Parse("test.adoc", []byte(input), nil)

	table := childElements(doc.Root)[0].TableData
	test.Assert(t, "row count", 2, len(table.Rows), true)
	test.Assert(t, "colspan", 2, table.Rows[0].Cells[0].ColSpan, true)
	test.Assert(t, "row 1 cells", 1, len(table.Rows[0].Cells), true)
}

func TestTableCSV(t *testing.T) {
	input := ",===\na,\"quoted, comma\"\nc,d\n,===\n"
	doc := Parse("test.adoc", []byte(input), nil)

	table := childElements(doc.Root)[0].TableData
	test.Assert(t, "columns", 2, len(table.Columns), true)
	test.Assert(t, "rows", 2, len(table.Rows), true)
	test.Assert(t, "quoted cell", "quoted, comma",
		cellText(table.Rows[0].Cells[1]), true)
}

func TestTableDSV(t *testing.T) {
	input := ":===\na:b\\:c\nd:e\n:===\n"
	doc := Parse("test.adoc", []byte(input), nil)

	table := childElements(doc.Root)[0].TableData
	test.Assert(t, "columns", 2, len(table.Columns), true)
	test.Assert(t, "escaped separator", "b:c",
		cellText(table.Rows[0].Cells[1]), true)
}

func TestTableMultilineCell(t *testing.T) {
	input := "[cols=\"2\"]\n|===\n|first\nstill first |second\n|===\n"
	doc := Parse("test.adoc", []byte(input), nil)

	table := childElements(doc.Root)[0].TableData
	test.Assert(t, "rows", 1, len(table.Rows), true)
	test.Assert(t, "multi-line content", "first\nstill first",
		cellText(table.Rows[0].Cells[0]), true)
}

func TestTableNestedAsciiDocCell(t *testing.T) {
	input := "[cols=\"2\"]\n|===\na|!===\n!x !y\n!===\n|plain\n|===\n"
	doc := Parse("test.adoc", []byte(input), nil)

	table := childElements(doc.Root)[0].TableData
	cell := table.Rows[0].Cells[0]
	test.Assert(t, "style", byte('a'), cell.Style, true)
	test.Assert(t, "sub document", true, cell.Doc != nil, true)

	inner := childElements(cell.Doc.Root)[0]
	test.Assert(t, "inner kind", KindTable, inner.Kind, true)
	test.Assert(t, "inner cell", "x",
		cellText(inner.TableData.Rows[0].Cells[0]), true)
}

func TestTableMalformedWarning(t *testing.T) {
	input := "[cols=\"3\"]\n|===\n|a |b\n|===\n"
	doc := Parse("test.adoc", []byte(input), nil)

	var found bool
	for _, diag := range doc.Diagnostics {
		if diag.Kind == DiagTableMalformed {
			found = true
		}
	}
	test.Assert(t, "short row warning", true, found, true)
}
