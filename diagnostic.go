// Copyright 2024, Shulhan <ms@kilabit.info>. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package asciidoc

import (
	"fmt"
	"sort"
)

// Severity of a diagnostic.
type Severity int

const (
	SeverityWarning Severity = iota
	SeverityError
)

func (sev Severity) String() string {
	if sev == SeverityError {
		return "error"
	}
	return "warning"
}

// DiagKind classifies a diagnostic.
type DiagKind int

const (
	DiagParseFatal DiagKind = iota
	DiagIncludeError
	DiagAttributeMissing
	DiagTableMalformed
	DiagAnchorConflict
	DiagCalloutMismatch
	DiagSectionLevel
)

func (kind DiagKind) String() string {
	switch kind {
	case DiagParseFatal:
		return "ParseFatal"
	case DiagIncludeError:
		return "IncludeError"
	case DiagAttributeMissing:
		return "AttributeMissing"
	case DiagTableMalformed:
		return "TableMalformed"
	case DiagAnchorConflict:
		return "AnchorConflict"
	case DiagCalloutMismatch:
		return "CalloutMismatch"
	case DiagSectionLevel:
		return "SectionLevel"
	}
	return "Unknown"
}

// Diagnostic is one structured warning or error with its primary source
// location, already resolved through the source map.
type Diagnostic struct {
	Message  string
	File     string
	Severity Severity
	Kind     DiagKind
	Line     int
	Column   int
}

func (diag Diagnostic) String() string {
	return fmt.Sprintf("%s:%d:%d: %s: %s: %s", diag.File, diag.Line,
		diag.Column, diag.Severity, diag.Kind, diag.Message)
}

// diagnostics accumulates Diagnostic values and suppresses duplicates.
// The grammar backtracks, so the same warning may be reported many times;
// deduplication by (kind, file, line, column, message) is a correctness
// requirement, not an optimization.
type diagnostics struct {
	seen map[string]bool
	list []Diagnostic

	// strict promotes warnings about malformed tables and skipped
	// section levels to errors.
	strict bool
}

func newDiagnostics(strict bool) *diagnostics {
	return &diagnostics{
		seen:   make(map[string]bool),
		strict: strict,
	}
}

// warn record a warning diagnostic at the resolved location.
func (diags *diagnostics) warn(kind DiagKind, file string, line, col int, format string, args ...any) {
	sev := SeverityWarning
	if diags.strict && (kind == DiagTableMalformed || kind == DiagSectionLevel) {
		sev = SeverityError
	}
	diags.add(Diagnostic{
		Severity: sev,
		Kind:     kind,
		File:     file,
		Line:     line,
		Column:   col,
		Message:  fmt.Sprintf(format, args...),
	})
}

// error record an error diagnostic at the resolved location.
func (diags *diagnostics) error(kind DiagKind, file string, line, col int, format string, args ...any) {
	diags.add(Diagnostic{
		Severity: SeverityError,
		Kind:     kind,
		File:     file,
		Line:     line,
		Column:   col,
		Message:  fmt.Sprintf(format, args...),
	})
}

func (diags *diagnostics) add(diag Diagnostic) {
	key := fmt.Sprintf("%d\x00%s\x00%d\x00%d\x00%s", diag.Kind, diag.File,
		diag.Line, diag.Column, diag.Message)
	if diags.seen[key] {
		return
	}
	diags.seen[key] = true
	diags.list = append(diags.list, diag)
}

// sorted return the diagnostics in source order: by file, line, column, and
// finally kind, so that the output is deterministic across runs.
func (diags *diagnostics) sorted() []Diagnostic {
	list := make([]Diagnostic, len(diags.list))
	copy(list, diags.list)
	sort.SliceStable(list, func(i, j int) bool {
		a, b := list[i], list[j]
		if a.File != b.File {
			return a.File < b.File
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		if a.Column != b.Column {
			return a.Column < b.Column
		}
		return a.Kind < b.Kind
	})
	return list
}
