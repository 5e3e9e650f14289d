// Copyright 2024, Shulhan <ms@kilabit.info>. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package asciidoc

import (
	"encoding/csv"
	"strconv"
	"strings"
)

// Column is the parsed per column default of a table: relative width,
// alignments, and cell style, from the "cols=" attribute.
type Column struct {
	Width     int
	Autowidth bool
	HAlign    byte // '<', '^', '>', or 0 for default
	VAlign    byte // '<', '^', '>', or 0 for default
	Style     byte // 's','e','m','h','l','d','a', or 0
}

// Cell is one table cell: its specifier, its raw text span, the parsed
// inline content, and for AsciiDoc style cells the nested sub document.
type Cell struct {
	ColSpan int
	RowSpan int
	HAlign  byte
	VAlign  byte
	Style   byte

	Raw  string
	Text []*Inline
	Doc  *Document

	Location Location
}

// Row is an ordered vector of cells.
type Row struct {
	Cells []*Cell
}

// Table is the parsed body of a table block.
type Table struct {
	Columns   []*Column
	Rows      []*Row
	Separator byte
	HasHeader bool
}

// parseTableBlock parse one table delimited block, from the opening
// delimiter line to its match.
func (docp *documentParser) parseTableBlock(sep byte, delim string) *Element {
	meta, title := docp.takePending()
	base := docp.smap.lineStart(docp.x)
	docp.x++

	startLine := docp.x
	var lines []string
	for !docp.eof() {
		line := docp.line()
		if strings.TrimSpace(line) == delim {
			docp.x++
			break
		}
		lines = append(lines, line)
		docp.x++
	}

	el := &Element{Kind: KindTable, Meta: meta}
	if len(title) > 0 {
		el.Meta.Title = docp.parseInlineText(title,
			docp.smap.lineStart(docp.pendingLine))
	}

	tp := &tableParser{
		docp:      docp,
		meta:      &el.Meta,
		startLine: startLine,
		lines:     lines,
		sep:       sep,
	}
	el.TableData = tp.parse()

	end := docp.smap.lineStart(docp.x) - 1
	if end < base {
		end = base
	}
	el.Meta.SourceRange = docp.smap.locate(base, end)
	docp.registerBlockAnchor(el)
	return el
}

type tableParser struct {
	docp      *documentParser
	meta      *BlockMetadata
	lines     []string
	startLine int
	sep       byte
}

// rawCell is one tokenized cell before row assembly: the specifier, the
// accumulated text, and the absolute offset of the content start.
type rawCell struct {
	spec      cellSpec
	text      []string
	start     int
	firstLine bool // the cell opened on the first body line
}

type cellSpec struct {
	duplicate int
	colspan   int
	rowspan   int
	halign    byte
	valign    byte
	style     byte
}

func (tp *tableParser) parse() *Table {
	table := &Table{Separator: tp.sep}

	if cols, ok := tp.meta.Attr("cols"); ok {
		table.Columns = parseColumnSpecs(cols)
	}

	var cells []*rawCell
	switch tp.sep {
	case ',':
		cells = tp.tokenizeCSV()
	case ':':
		cells = tp.tokenizeDSV()
	default:
		cells = tp.tokenizePSV()
	}

	// Missing cols= is inferred from the first row's cell count.
	if len(table.Columns) == 0 {
		var n int
		for _, cell := range cells {
			if !cell.firstLine {
				break
			}
			n += cell.spec.colspanOr(1) * cell.spec.duplicateOr(1)
		}
		if n == 0 && len(cells) > 0 {
			n = 1
		}
		for x := 0; x < n; x++ {
			table.Columns = append(table.Columns, &Column{Width: 1})
		}
	}

	tp.assembleRows(table, cells)
	tp.decideHeader(table)
	tp.finishCells(table)
	return table
}

func (spec *cellSpec) colspanOr(def int) int {
	if spec.colspan > 0 {
		return spec.colspan
	}
	return def
}

func (spec *cellSpec) duplicateOr(def int) int {
	if spec.duplicate > 0 {
		return spec.duplicate
	}
	return def
}

// parseColumnSpecs parse the "cols=" attribute: a comma separated list of
// "(repeat*)?(halign)?(valign)?(width)?(style)?" entries.
func parseColumnSpecs(value string) (cols []*Column) {
	// A bare integer is a column count: cols=3 means three equal
	// columns.
	if n, err := strconv.Atoi(strings.TrimSpace(value)); err == nil && n > 0 {
		for x := 0; x < n; x++ {
			cols = append(cols, &Column{Width: 1})
		}
		return cols
	}
	for _, entry := range strings.Split(value, ",") {
		entry = strings.TrimSpace(entry)
		repeat := 1
		if x := strings.IndexByte(entry, '*'); x > 0 {
			if n, err := strconv.Atoi(entry[:x]); err == nil && n > 0 {
				repeat = n
				entry = entry[x+1:]
			}
		}
		col := &Column{Width: 1}
		rest := entry
		for len(rest) > 0 {
			switch {
			case rest[0] == '.' && len(rest) > 1 &&
				(rest[1] == '<' || rest[1] == '^' || rest[1] == '>'):
				col.VAlign = rest[1]
				rest = rest[2:]
			case rest[0] == '<' || rest[0] == '^' || rest[0] == '>':
				col.HAlign = rest[0]
				rest = rest[1:]
			case rest[0] == '~':
				col.Autowidth = true
				rest = rest[1:]
			case rest[0] >= '0' && rest[0] <= '9':
				n := 0
				for n < len(rest) && rest[n] >= '0' && rest[n] <= '9' {
					n++
				}
				width, _ := strconv.Atoi(rest[:n])
				col.Width = width
				rest = rest[n:]
				if len(rest) > 0 && rest[0] == '%' {
					rest = rest[1:]
				}
			case isCellStyle(rest[0]):
				col.Style = rest[0]
				rest = rest[1:]
			default:
				rest = rest[1:]
			}
		}
		for x := 0; x < repeat; x++ {
			dup := *col
			cols = append(cols, &dup)
		}
	}
	return cols
}

func isCellStyle(c byte) bool {
	switch c {
	case 's', 'e', 'm', 'h', 'l', 'd', 'a':
		return true
	}
	return false
}

// parseCellSpec split a chunk of text that precedes a separator into the
// content belonging to the previous cell and the trailing cell specifier:
//
//	(multiplier* | colspan.rowspan+)? (halign)? (.valign)? (style)?
//
// The specifier must sit immediately before the separator, at the chunk
// start or after whitespace.
func parseCellSpec(chunk string) (before string, spec cellSpec) {
	for start := 0; start < len(chunk); start++ {
		if chunk[start] == ' ' || chunk[start] == '\t' {
			continue
		}
		if start > 0 && chunk[start-1] != ' ' && chunk[start-1] != '\t' {
			continue
		}
		if s, ok := matchCellSpec(chunk[start:]); ok {
			return chunk[:start], s
		}
	}
	return chunk, spec
}

// matchCellSpec report whether the whole candidate matches the specifier
// grammar.
func matchCellSpec(cand string) (spec cellSpec, ok bool) {
	rest := cand

	// Leading digits followed by '*' (duplicate) or '+' (colspan) or
	// '.M+' (with rowspan).
	if n := digitRun(rest); n > 0 {
		num, _ := strconv.Atoi(rest[:n])
		switch {
		case n < len(rest) && rest[n] == '*':
			spec.duplicate = num
			rest = rest[n+1:]
		case n < len(rest) && rest[n] == '+':
			spec.colspan = num
			rest = rest[n+1:]
		case n < len(rest) && rest[n] == '.':
			m := digitRun(rest[n+1:])
			if m == 0 || n+1+m >= len(rest) || rest[n+1+m] != '+' {
				return spec, false
			}
			rownum, _ := strconv.Atoi(rest[n+1 : n+1+m])
			spec.colspan = num
			spec.rowspan = rownum
			rest = rest[n+1+m+1:]
		default:
			return spec, false
		}
	} else if strings.HasPrefix(rest, ".") {
		m := digitRun(rest[1:])
		if m > 0 && 1+m < len(rest) && rest[1+m] == '+' {
			rownum, _ := strconv.Atoi(rest[1 : 1+m])
			spec.rowspan = rownum
			rest = rest[1+m+1:]
		}
	}

	if len(rest) > 0 && (rest[0] == '<' || rest[0] == '^' || rest[0] == '>') {
		spec.halign = rest[0]
		rest = rest[1:]
	}
	if len(rest) > 1 && rest[0] == '.' &&
		(rest[1] == '<' || rest[1] == '^' || rest[1] == '>') {
		spec.valign = rest[1]
		rest = rest[2:]
	}
	if len(rest) == 1 && isCellStyle(rest[0]) {
		spec.style = rest[0]
		rest = rest[1:]
	}
	if len(rest) != 0 {
		return spec, false
	}
	return spec, true
}

func digitRun(s string) int {
	n := 0
	for n < len(s) && s[n] >= '0' && s[n] <= '9' {
		n++
	}
	return n
}

// tokenizePSV scan the body lines for separator characters, honoring
// backslash escapes.  A cell opens at each separator; text before the
// first separator of a line continues the previous, multi-line cell.
func (tp *tableParser) tokenizePSV() (cells []*rawCell) {
	var current *rawCell
	for lx, line := range tp.lines {
		lineBase := tp.docp.smap.lineStart(tp.startLine + lx)
		pos := 0
		for pos <= len(line) {
			x := indexUnescaped(line[pos:], tp.sep)
			if x < 0 {
				break
			}
			x += pos
			chunk := line[pos:x]
			before, spec := parseCellSpec(chunk)
			if current != nil {
				current.text = append(current.text, before)
			}
			current = &rawCell{
				spec:      spec,
				start:     lineBase + x + 1,
				firstLine: lx == 0,
			}
			cells = append(cells, current)
			pos = x + 1
		}
		if current != nil && pos <= len(line) {
			// Text after the last separator, or a whole line with
			// no separator, continues the current cell.
			current.text = append(current.text, line[pos:])
		}
	}
	return cells
}

func indexUnescaped(s string, sep byte) int {
	for x := 0; x < len(s); x++ {
		if s[x] == '\\' {
			x++
			continue
		}
		if s[x] == sep {
			return x
		}
	}
	return -1
}

// tokenizeCSV parse the body as RFC 4180 comma separated values, one row
// per record.
func (tp *tableParser) tokenizeCSV() (cells []*rawCell) {
	body := strings.Join(tp.lines, "\n")
	reader := csv.NewReader(strings.NewReader(body))
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		tp.docp.warnAt(DiagTableMalformed, tp.startLine,
			"malformed CSV table body: %s", err)
		return nil
	}
	for rx, record := range records {
		for _, field := range record {
			cells = append(cells, &rawCell{
				spec:      cellSpec{colspan: 1, rowspan: 1},
				text:      []string{field},
				start:     tp.docp.smap.lineStart(tp.startLine + rx),
				firstLine: rx == 0,
			})
		}
	}
	return cells
}

// tokenizeDSV split each line on the separator, honoring backslash
// escapes; one line is one row.
func (tp *tableParser) tokenizeDSV() (cells []*rawCell) {
	for lx, line := range tp.lines {
		if len(strings.TrimSpace(line)) == 0 {
			continue
		}
		lineBase := tp.docp.smap.lineStart(tp.startLine + lx)
		var field strings.Builder
		fieldStart := 0
		flush := func(end int) {
			cells = append(cells, &rawCell{
				spec:      cellSpec{colspan: 1, rowspan: 1},
				text:      []string{field.String()},
				start:     lineBase + fieldStart,
				firstLine: lx == 0,
			})
			field.Reset()
			fieldStart = end + 1
		}
		for x := 0; x < len(line); x++ {
			c := line[x]
			if c == '\\' && x+1 < len(line) {
				field.WriteByte(line[x+1])
				x++
				continue
			}
			if c == tp.sep {
				flush(x)
				continue
			}
			field.WriteByte(c)
		}
		flush(len(line))
	}
	return cells
}

// assembleRows grow cells into rows of the column count, duplicating "N*"
// cells and filling the holes left by rowspans from above.
func (tp *tableParser) assembleRows(table *Table, cells []*rawCell) {
	ncols := len(table.Columns)
	if ncols == 0 {
		return
	}

	// carry[x] is the number of further rows that column x is covered
	// for by a rowspan from above.
	carry := make([]int, ncols)

	var row *Row
	col := 0

	advance := func() {
		for col < ncols && carry[col] > 0 {
			carry[col]--
			col++
		}
	}
	closeRow := func() {
		table.Rows = append(table.Rows, row)
		row = nil
		col = 0
	}

	for _, raw := range cells {
		dup := raw.spec.duplicateOr(1)
		for d := 0; d < dup; d++ {
			if row == nil {
				row = &Row{}
				advance()
			}
			cell := &Cell{
				ColSpan: raw.spec.colspanOr(1),
				RowSpan: raw.spec.rowspan,
				HAlign:  raw.spec.halign,
				VAlign:  raw.spec.valign,
				Style:   raw.spec.style,
				Raw:     strings.TrimSpace(strings.Join(raw.text, "\n")),
			}
			if cell.RowSpan == 0 {
				cell.RowSpan = 1
			}
			cell.Location = tp.docp.smap.locate(raw.start,
				raw.start+len(cell.Raw))
			row.Cells = append(row.Cells, cell)

			if cell.RowSpan > 1 {
				for s := 0; s < cell.ColSpan && col+s < ncols; s++ {
					carry[col+s] = cell.RowSpan - 1
				}
			}
			col += cell.ColSpan
			advance()

			if col >= ncols {
				if col > ncols {
					loc := cell.Location
					tp.docp.diags.warn(DiagTableMalformed,
						tp.docp.smap.File(loc.File),
						loc.Start.Line, loc.Start.Column,
						"cell spans exceed the %d columns of the table",
						ncols)
				}
				closeRow()
			}
		}
	}
	if row != nil && len(row.Cells) > 0 {
		loc := row.Cells[0].Location
		tp.docp.diags.warn(DiagTableMalformed,
			tp.docp.smap.File(loc.File),
			loc.Start.Line, loc.Start.Column,
			"table row has %d of %d columns", len(row.Cells), ncols)
		closeRow()
	}
}

// decideHeader mark the first row as header when the block options ask
// for it, or when the first body line held a complete row followed by a
// blank line.
func (tp *tableParser) decideHeader(table *Table) {
	if tp.meta.HasOption("header") {
		table.HasHeader = len(table.Rows) > 0
		return
	}
	if tp.meta.HasOption("noheader") {
		return
	}
	if len(tp.lines) > 1 && len(table.Rows) > 1 &&
		len(strings.TrimSpace(tp.lines[1])) == 0 {
		var n int
		for _, cell := range table.Rows[0].Cells {
			n += cell.ColSpan
		}
		table.HasHeader = n == len(table.Columns)
	}
}

// finishCells apply column defaults and parse cell content according to
// the effective style.
func (tp *tableParser) finishCells(table *Table) {
	for rx, row := range table.Rows {
		colIdx := 0
		for _, cell := range row.Cells {
			var col *Column
			if colIdx < len(table.Columns) {
				col = table.Columns[colIdx]
			} else {
				col = &Column{}
			}
			if cell.HAlign == 0 {
				cell.HAlign = col.HAlign
			}
			if cell.VAlign == 0 {
				cell.VAlign = col.VAlign
			}
			if cell.Style == 0 {
				cell.Style = col.Style
			}
			if table.HasHeader && rx == 0 {
				cell.Style = 'h'
			}

			switch cell.Style {
			case 'a':
				subOpts := *tp.docp.opts
				subOpts.Doctype = DoctypeArticle
				cell.Doc = Parse("", []byte(cell.Raw), &subOpts)
			case 'l':
				cell.Text = []*Inline{{
					Kind:     InlineRaw,
					Text:     cell.Raw,
					Subs:     SubsVerbatim,
					Location: cell.Location,
				}}
			default:
				cell.Text = tp.docp.parseInlineText(cell.Raw,
					cell.Location.AbsStart)
			}
			colIdx += cell.ColSpan
		}
	}
}
