// Copyright 2024, Shulhan <ms@kilabit.info>. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package asciidoc

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/shuLhan/share/lib/parser"
	"golang.org/x/text/encoding/ianaindex"
)

// includeResolver loads and splices files referenced by include directives
// into one resolved line stream, recording for every line the file and
// line number it came from.
type includeResolver struct {
	opts     *Options
	store    *AttributeStore
	smap     *SourceMap
	diags    *diagnostics
	visiting map[string]bool

	// conds is the stack of open conditional directives; a false on top
	// drops lines.
	conds []bool
}

func newIncludeResolver(opts *Options, store *AttributeStore, smap *SourceMap,
	diags *diagnostics,
) *includeResolver {
	return &includeResolver{
		opts:     opts,
		store:    store,
		smap:     smap,
		diags:    diags,
		visiting: make(map[string]bool),
	}
}

// resolve splice the source of path into the stream.  isRoot marks the
// main document, whose tag anchor lines are kept verbatim.
func (res *includeResolver) resolve(path string, src []byte, isRoot bool) {
	if isRoot {
		full := filepath.Clean(path)
		res.visiting[full] = true
		defer delete(res.visiting, full)
	}
	fileID := res.smap.AddFile(path)

	text := string(stripBOM(src))
	lines := strings.Split(text, "\n")
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}

	for x, line := range lines {
		line = strings.TrimSuffix(line, "\r")
		lineNum := x + 1

		if isConditionalLine(line) {
			if res.conditional(line, path, lineNum) {
				continue
			}
		}
		if len(res.conds) > 0 && !res.conds[len(res.conds)-1] {
			continue
		}

		if !isRoot && isTagAnchorLine(line) {
			continue
		}

		if strings.HasPrefix(line, "\\include::") {
			res.smap.addLine(line[1:], fileID, lineNum)
			continue
		}
		if strings.HasPrefix(line, "include::") {
			res.include(line, path, fileID, lineNum)
			continue
		}

		res.applyAttrLine(line)
		res.smap.addLine(line, fileID, lineNum)
	}
}

// applyAttrLine track attribute entries while resolving, so that later
// conditionals and include targets can already see them.  The grammar
// applies the same entries again, in the same order, during parsing.
func (res *includeResolver) applyAttrLine(line string) {
	if len(line) < 3 || line[0] != ':' {
		return
	}
	rest := line[1:]
	end := strings.IndexByte(rest, ':')
	if end <= 0 {
		return
	}
	name := rest[:end]
	value := strings.TrimSpace(rest[end+1:])

	var unset bool
	if strings.HasSuffix(name, "!") {
		name = name[:len(name)-1]
		unset = true
	} else if strings.HasPrefix(name, "!") {
		name = name[1:]
		unset = true
	}
	if !isAttributeName(name) {
		return
	}
	if unset {
		res.store.Unset(name)
		return
	}
	res.store.Set(name, value)
}

// include process one "include::target[attrs]" directive found in file
// path at line lineNum.
func (res *includeResolver) include(line, path string, fileID, lineNum int) {
	target, list, ok := parseIncludeDirective(line, res.store)
	if !ok {
		res.includeError(line, path, fileID, lineNum,
			"invalid include directive")
		return
	}

	if strings.HasPrefix(target, "http://") || strings.HasPrefix(target, "https://") {
		res.includeError(line, path, fileID, lineNum,
			"URI include %q requires allow-uri-read, skipping", target)
		return
	}

	if res.opts.SafeMode >= SafeModeSecure {
		res.includeError(line, path, fileID, lineNum,
			"include %q dropped by secure mode", target)
		return
	}

	// The target is resolved relative to the including file, not the
	// root document.
	full := target
	if !filepath.IsAbs(full) {
		full = filepath.Join(filepath.Dir(path), target)
	}
	full = filepath.Clean(full)

	if res.opts.SafeMode >= SafeModeServer &&
		strings.Contains(filepath.ToSlash(target), "../") {
		res.includeError(line, path, fileID, lineNum,
			"include %q escapes the document directory", target)
		return
	}
	if res.opts.SafeMode >= SafeModeSafe && len(res.opts.RootDir) > 0 {
		rel, err := filepath.Rel(res.opts.RootDir, full)
		if err != nil || strings.HasPrefix(filepath.ToSlash(rel), "../") {
			res.includeError(line, path, fileID, lineNum,
				"include %q is outside the document root", target)
			return
		}
	}

	if res.visiting[full] {
		res.includeError(line, path, fileID, lineNum,
			"circular include of %q", target)
		return
	}

	content, err := os.ReadFile(full)
	if err != nil {
		res.includeError(line, path, fileID, lineNum,
			"include target %q not found", target)
		return
	}

	if enc, ok := list.attr("encoding"); ok {
		content = decodeEncoding(content, enc)
	}

	levelOffset, _ := list.attr("leveloffset")
	if len(levelOffset) > 0 {
		res.smap.addLine(":leveloffset: "+levelOffset, fileID, lineNum)
	}

	sub := &includeResolver{
		opts:     res.opts,
		store:    res.store,
		smap:     res.smap,
		diags:    res.diags,
		visiting: res.visiting,
	}
	res.visiting[full] = true
	sub.spliceFiltered(full, content, list)
	delete(res.visiting, full)

	if len(levelOffset) > 0 {
		// Restore the previous offset: invert a relative bump, drop
		// an absolute one.  A blank line first ends any paragraph the
		// included content left open, so the entry is not read as
		// paragraph text.
		res.smap.addLine("", fileID, lineNum)
		switch levelOffset[0] {
		case '+':
			res.smap.addLine(":leveloffset: -"+levelOffset[1:], fileID, lineNum)
		case '-':
			res.smap.addLine(":leveloffset: +"+levelOffset[1:], fileID, lineNum)
		default:
			res.smap.addLine(":leveloffset!:", fileID, lineNum)
		}
	}
}

// spliceFiltered resolve the included file, applying the lines= or tags=
// selection from the directive attributes.
func (res *includeResolver) spliceFiltered(path string, content []byte, list *attrList) {
	linesSpec, hasLines := list.attr("lines")
	tagSpec, hasTags := list.attr("tags")
	if !hasTags {
		tagSpec, hasTags = list.attr("tag")
	}

	if !hasLines && !hasTags {
		res.resolve(path, content, false)
		return
	}

	fileID := res.smap.AddFile(path)
	text := string(stripBOM(content))
	lines := strings.Split(text, "\n")
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}

	if hasLines {
		ranges := parseLineRanges(linesSpec)
		for x, line := range lines {
			if ranges.contains(x+1, len(lines)) {
				res.spliceLine(line, path, fileID, x+1)
			}
		}
		return
	}

	selector := parseTagSelector(tagSpec)
	var stack []string
	for x, line := range lines {
		if name, start, ok := parseTagAnchor(line); ok {
			if start {
				stack = append(stack, name)
			} else if n := len(stack); n > 0 && stack[n-1] == name {
				stack = stack[:n-1]
			}
			continue
		}
		if selector.match(stack) {
			res.spliceLine(line, path, fileID, x+1)
		}
	}
	for _, miss := range selector.unmatched() {
		res.diags.warn(DiagIncludeError, path, 1, 1,
			"tag %q not found in include target", miss)
	}
}

// spliceLine add one selected line, still honoring nested includes and
// conditionals inside the selection.
func (res *includeResolver) spliceLine(line, path string, fileID, lineNum int) {
	line = strings.TrimSuffix(line, "\r")
	if isConditionalLine(line) {
		if res.conditional(line, path, lineNum) {
			return
		}
	}
	if len(res.conds) > 0 && !res.conds[len(res.conds)-1] {
		return
	}
	if strings.HasPrefix(line, "include::") {
		res.include(line, path, fileID, lineNum)
		return
	}
	res.applyAttrLine(line)
	res.smap.addLine(line, fileID, lineNum)
}

// includeError report the problem and substitute the offending line with
// an error placeholder so the failure stays visible in the tree.
func (res *includeResolver) includeError(line, path string, fileID, lineNum int,
	format string, args ...any,
) {
	res.diags.warn(DiagIncludeError, path, lineNum, 1, format, args...)
	res.smap.addLine("Unresolved directive in "+filepath.Base(path)+
		" - "+line, fileID, lineNum)
}

// parseIncludeDirective split "include::target[attrs]".  Attribute
// references in the target are expanded first, since targets are routinely
// assembled from attributes like {docdir}.
func parseIncludeDirective(line string, store *AttributeStore) (target string, list *attrList, ok bool) {
	rest := strings.TrimPrefix(line, "include::")
	lb := strings.IndexByte(rest, '[')
	if lb <= 0 || !strings.HasSuffix(rest, "]") {
		return "", nil, false
	}
	target = store.expandValue(rest[:lb], 1)
	if strings.ContainsAny(target, " \t") {
		return "", nil, false
	}
	list = parseAttrList(rest[lb+1 : len(rest)-1])
	return target, list, true
}

// lineRanges is a parsed "lines=" selection.
type lineRanges []struct {
	start int
	end   int // -1 is an open end
}

// parseLineRanges parse 1-based ranges with ".." endpoints and an optional
// "..-1" open end, delimited by comma or semicolon.
func parseLineRanges(spec string) (ranges lineRanges) {
	p := parser.New(spec, ",;")
	for {
		part, c := p.Token()
		part = strings.TrimSpace(part)
		if len(part) > 0 {
			var r struct {
				start int
				end   int
			}
			if before, after, found := strings.Cut(part, ".."); found {
				r.start, _ = strconv.Atoi(before)
				r.end, _ = strconv.Atoi(after)
			} else {
				r.start, _ = strconv.Atoi(part)
				r.end = r.start
			}
			if r.start > 0 {
				ranges = append(ranges, r)
			}
		}
		if c == 0 {
			break
		}
	}
	return ranges
}

func (ranges lineRanges) contains(line, total int) bool {
	for _, r := range ranges {
		end := r.end
		if end < 0 {
			end = total
		}
		if line >= r.start && line <= end {
			return true
		}
	}
	return false
}

// tagSelector is a parsed "tags=" selection: expressions in order, where
// later expressions override earlier ones.
type tagSelector struct {
	exprs []tagExpr
	found map[string]bool
}

type tagExpr struct {
	name    string
	negated bool
}

func parseTagSelector(spec string) *tagSelector {
	sel := &tagSelector{found: make(map[string]bool)}
	p := parser.New(spec, ",;")
	for {
		part, c := p.Token()
		part = strings.TrimSpace(part)
		if len(part) > 0 {
			expr := tagExpr{name: part}
			if part[0] == '!' {
				expr.negated = true
				expr.name = part[1:]
			}
			sel.exprs = append(sel.exprs, expr)
		}
		if c == 0 {
			break
		}
	}
	return sel
}

// match report whether a line inside the given tag stack is selected.
// "**" matches every line, "*" matches lines inside any tag, a name
// matches lines inside that tag; the last matching expression wins.
// Lines outside all tags are selected only when the selection carries no
// positive tag name.
func (sel *tagSelector) match(stack []string) bool {
	selected := true
	for _, expr := range sel.exprs {
		if !expr.negated && expr.name != "**" {
			selected = false
			break
		}
	}
	for _, expr := range sel.exprs {
		var hit bool
		switch expr.name {
		case "**":
			hit = true
		case "*":
			hit = len(stack) > 0
		default:
			for _, tag := range stack {
				if tag == expr.name {
					hit = true
					sel.found[expr.name] = true
					break
				}
			}
		}
		if hit {
			selected = !expr.negated
		}
	}
	return selected
}

// unmatched return the positive tag names that never matched a region.
func (sel *tagSelector) unmatched() (missing []string) {
	for _, expr := range sel.exprs {
		if expr.negated || expr.name == "*" || expr.name == "**" {
			continue
		}
		if !sel.found[expr.name] {
			missing = append(missing, expr.name)
		}
	}
	return missing
}

// parseTagAnchor match "// tag::name[]" and "// end::name[]" lines.
func parseTagAnchor(line string) (name string, start, ok bool) {
	trimmed := strings.TrimSpace(line)
	x := strings.Index(trimmed, "// tag::")
	if x >= 0 && strings.HasSuffix(trimmed, "[]") {
		return trimmed[x+8 : len(trimmed)-2], true, true
	}
	x = strings.Index(trimmed, "// end::")
	if x >= 0 && strings.HasSuffix(trimmed, "[]") {
		return trimmed[x+8 : len(trimmed)-2], false, true
	}
	return "", false, false
}

func isTagAnchorLine(line string) bool {
	_, _, ok := parseTagAnchor(line)
	return ok
}

// Conditional directives filter lines before the block grammar runs.

func isConditionalLine(line string) bool {
	return strings.HasPrefix(line, "ifdef::") ||
		strings.HasPrefix(line, "ifndef::") ||
		strings.HasPrefix(line, "ifeval::") ||
		strings.HasPrefix(line, "endif::")
}

// conditional evaluate one preprocessor conditional.  It returns true when
// the line itself must be dropped from the stream.
func (res *includeResolver) conditional(line, path string, lineNum int) bool {
	switch {
	case strings.HasPrefix(line, "endif::"):
		if n := len(res.conds); n > 0 {
			res.conds = res.conds[:n-1]
		}
		return true

	case strings.HasPrefix(line, "ifeval::"):
		expr, ok := cutDirectiveBody(line, "ifeval::")
		if !ok {
			return false
		}
		res.conds = append(res.conds, res.evalCondition(expr))
		return true

	case strings.HasPrefix(line, "ifdef::"), strings.HasPrefix(line, "ifndef::"):
		prefix := "ifdef::"
		negate := false
		if strings.HasPrefix(line, "ifndef::") {
			prefix = "ifndef::"
			negate = true
		}
		rest := strings.TrimPrefix(line, prefix)
		lb := strings.IndexByte(rest, '[')
		if lb < 0 || !strings.HasSuffix(rest, "]") {
			return false
		}
		names := rest[:lb]
		body := rest[lb+1 : len(rest)-1]

		set := res.anyAttrSet(names)
		if negate {
			set = !set
		}

		if len(body) > 0 {
			// Single line form: the body replaces the directive
			// when the condition holds.
			if set && (len(res.conds) == 0 || res.conds[len(res.conds)-1]) {
				fileID := res.smap.AddFile(path)
				res.smap.addLine(body, fileID, lineNum)
			}
			return true
		}
		res.conds = append(res.conds, set)
		return true
	}
	return false
}

// anyAttrSet evaluate the attribute name list of ifdef/ifndef: names
// separated by "," mean any, by "+" mean all.
func (res *includeResolver) anyAttrSet(names string) bool {
	if strings.ContainsRune(names, '+') {
		for _, name := range strings.Split(names, "+") {
			if !res.store.IsSet(name) {
				return false
			}
		}
		return true
	}
	for _, name := range strings.Split(names, ",") {
		if res.store.IsSet(name) {
			return true
		}
	}
	return false
}

// evalCondition evaluate a simple "left op right" comparison after
// attribute expansion of both operands.
func (res *includeResolver) evalCondition(expr string) bool {
	expr = res.store.expandValue(expr, 1)
	for _, op := range []string{"==", "!=", "<=", ">=", "<", ">"} {
		x := strings.Index(expr, op)
		if x < 0 {
			continue
		}
		left := strings.TrimSpace(expr[:x])
		right := strings.TrimSpace(expr[x+len(op):])
		left = strings.Trim(left, "\"'")
		right = strings.Trim(right, "\"'")

		lnum, lerr := strconv.ParseFloat(left, 64)
		rnum, rerr := strconv.ParseFloat(right, 64)
		if lerr == nil && rerr == nil {
			switch op {
			case "==":
				return lnum == rnum
			case "!=":
				return lnum != rnum
			case "<=":
				return lnum <= rnum
			case ">=":
				return lnum >= rnum
			case "<":
				return lnum < rnum
			case ">":
				return lnum > rnum
			}
		}
		switch op {
		case "==":
			return left == right
		case "!=":
			return left != right
		case "<=":
			return left <= right
		case ">=":
			return left >= right
		case "<":
			return left < right
		case ">":
			return left > right
		}
	}
	return false
}

func cutDirectiveBody(line, prefix string) (body string, ok bool) {
	rest := strings.TrimPrefix(line, prefix)
	if !strings.HasPrefix(rest, "[") || !strings.HasSuffix(rest, "]") {
		return "", false
	}
	return rest[1 : len(rest)-1], true
}

// decodeEncoding convert content from the named character encoding to
// UTF-8.  Unknown names leave the content untouched.
func decodeEncoding(content []byte, name string) []byte {
	enc, err := ianaindex.IANA.Encoding(name)
	if err != nil || enc == nil {
		return content
	}
	decoded, err := enc.NewDecoder().Bytes(content)
	if err != nil {
		return content
	}
	return decoded
}

// stripBOM remove a UTF-8 byte order mark at offset 0.
func stripBOM(src []byte) []byte {
	if len(src) >= 3 && src[0] == 0xef && src[1] == 0xbb && src[2] == 0xbf {
		return src[3:]
	}
	return src
}
