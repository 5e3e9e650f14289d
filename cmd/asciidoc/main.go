// Copyright 2024, Shulhan <ms@kilabit.info>. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Command asciidoc converts AsciiDoc (and sibling Markdown) files into
// HTML, roff manpage, terminal output, or the canonical JSON tree.
package main

import (
	"bytes"
	"fmt"
	"os"
	"path"
	"strings"

	"github.com/urfave/cli/v2"
	"github.com/yuin/goldmark"
	meta "github.com/yuin/goldmark-meta"
	"github.com/yuin/goldmark/parser"
	"go.uber.org/zap"

	"github.com/shuLhan/asciidoc"
	"github.com/shuLhan/asciidoc/html"
	"github.com/shuLhan/asciidoc/manpage"
	"github.com/shuLhan/asciidoc/term"
)

func main() {
	app := &cli.App{
		Name:  "asciidoc",
		Usage: "convert an AsciiDoc document to another format",
		UsageText: "asciidoc [options] INPUT_FILE\n" +
			"   Markdown input (.md) is converted through goldmark.",
		Version: "v0.1.0",
		Authors: []*cli.Author{
			{
				Name:  "Shulhan",
				Email: "ms@kilabit.info",
			},
		},
		Action: process,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "backend",
				Aliases: []string{"b"},
				Value:   "html",
				Usage:   "output `FORMAT`: html, manpage, term, json",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "write output to `FILE` (default input name with new extension)",
			},
			&cli.StringFlag{
				Name:  "safe-mode",
				Value: "unsafe",
				Usage: "include resolution `MODE`: unsafe, safe, server, secure",
			},
			&cli.StringFlag{
				Name:  "doctype",
				Value: "article",
				Usage: "document `TYPE`: article, book, manpage, inline",
			},
			&cli.StringSliceFlag{
				Name:    "attribute",
				Aliases: []string{"a"},
				Usage:   "set a document attribute `NAME=VALUE` (repeatable)",
			},
			&cli.BoolFlag{
				Name:  "strict",
				Usage: "treat malformed tables and skipped section levels as errors",
			},
			&cli.BoolFlag{
				Name:    "debug",
				Aliases: []string{"d"},
				Usage:   "run in debug mode",
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func process(c *cli.Context) error {
	var (
		z   *zap.Logger
		err error
	)
	if c.Bool("debug") {
		z, err = zap.NewDevelopment()
	} else {
		z, err = zap.NewProduction()
	}
	if err != nil {
		return err
	}
	sugar := z.Sugar()
	defer sugar.Sync()

	if !c.Args().Present() {
		return fmt.Errorf("no input file provided")
	}
	input := c.Args().First()
	backend := c.String("backend")

	output := c.String("output")
	if len(output) == 0 {
		output = replaceExt(input, backendExt(backend))
	}

	if strings.HasSuffix(input, ".md") {
		return processMarkdown(sugar, input, output)
	}

	safeMode, err := asciidoc.ParseSafeMode(c.String("safe-mode"))
	if err != nil {
		return err
	}
	doctype, err := asciidoc.ParseDoctype(c.String("doctype"))
	if err != nil {
		return err
	}

	opts := &asciidoc.Options{
		SafeMode:   safeMode,
		Doctype:    doctype,
		Strict:     c.Bool("strict"),
		Attributes: make(map[string]string),
	}
	for _, entry := range c.StringSlice("attribute") {
		name, value, _ := strings.Cut(entry, "=")
		opts.Attributes[name] = value
	}

	sugar.Infow("parsing", "input", input, "backend", backend)

	doc, err := asciidoc.ParseFile(input, opts)
	if err != nil {
		return err
	}
	for _, diag := range doc.Diagnostics {
		if diag.Severity == asciidoc.SeverityError {
			sugar.Errorw(diag.Message, "file", diag.File,
				"line", diag.Line, "kind", diag.Kind.String())
		} else {
			sugar.Warnw(diag.Message, "file", diag.File,
				"line", diag.Line, "kind", diag.Kind.String())
		}
	}
	if c.Bool("strict") {
		for _, diag := range doc.Diagnostics {
			if diag.Severity == asciidoc.SeverityError {
				return fmt.Errorf("strict mode: %s", diag)
			}
		}
	}

	out, err := os.Create(output)
	if err != nil {
		return err
	}
	defer out.Close()

	switch backend {
	case "html":
		err = html.Convert(doc, out)
	case "manpage":
		err = manpage.Convert(doc, out)
	case "term":
		err = term.Convert(doc, out)
	case "json":
		err = asciidoc.WriteJSON(out, doc)
	default:
		err = fmt.Errorf("unknown backend %q", backend)
	}
	if err != nil {
		return err
	}

	sugar.Infow("wrote", "output", output)
	return nil
}

// processMarkdown convert a sibling Markdown file through goldmark, with
// YAML frontmatter support.
func processMarkdown(sugar *zap.SugaredLogger, input, output string) error {
	src, err := os.ReadFile(input)
	if err != nil {
		return err
	}

	md := goldmark.New(
		goldmark.WithExtensions(meta.Meta),
	)
	var buf bytes.Buffer
	ctx := parser.NewContext()
	if err = md.Convert(src, &buf, parser.WithContext(ctx)); err != nil {
		return err
	}

	var title string
	if metaData := meta.Get(ctx); metaData != nil {
		if v, ok := metaData["title"].(string); ok {
			title = v
		}
	}

	var page bytes.Buffer
	fmt.Fprintf(&page, `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<title>%s</title>
</head>
<body>
`, title)
	page.Write(buf.Bytes())
	page.WriteString("</body>\n</html>\n")

	if err = os.WriteFile(output, page.Bytes(), 0644); err != nil {
		return err
	}
	sugar.Infow("wrote", "output", output)
	return nil
}

func backendExt(backend string) string {
	switch backend {
	case "manpage":
		return ".1"
	case "term":
		return ".txt"
	case "json":
		return ".json"
	}
	return ".html"
}

func replaceExt(input, newExt string) string {
	ext := path.Ext(input)
	if len(ext) == 0 {
		return input + newExt
	}
	return strings.TrimSuffix(input, ext) + newExt
}
