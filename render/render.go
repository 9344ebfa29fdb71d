// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package render renders an include graph with graphviz.
package render

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/emicklei/dot"

	"go.chromium.org/infra/build/incmap/build"
	"go.chromium.org/infra/build/incmap/classify"
	"go.chromium.org/infra/build/incmap/execute"
	"go.chromium.org/infra/build/incmap/includegraph"
	"go.chromium.org/infra/build/incmap/o11y/clog"
)

// Error is an error to render the graph.
type Error struct {
	// Path is the output file that was not written.
	Path string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("failed to render %s: %v", e.Path, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Options are options for Render.
type Options struct {
	// Dot is the graphviz dot command. default "dot".
	Dot string
	// Format is the output format. default "pdf".
	Format string
	// Dir is the output directory. default current directory.
	Dir string
}

// BaseName returns the base name of the graph file for source.
func BaseName(source string) string {
	return "IncludeMap_" + filepath.Base(source) + ".gv"
}

var legend = []struct {
	label    string
	category classify.Category
}{
	{"Generated Files", classify.Generated},
	{"Toolchain Files", classify.ToolchainHeader},
	{"In-Project Files", classify.ProjectNative},
	{"Out-of-Project Files", classify.External},
	{"Starting File", classify.StartingFile},
}

// Document returns the graphviz document of the graph.
// Files with the same label are drawn as one node.
// Nodes are declared in the order they were first seen in the graph,
// and the legend nodes follow them.
func Document(g *includegraph.Graph, bctx *build.Context) *dot.Graph {
	d := dot.NewGraph(dot.Directed)
	d.Attr("comment", "Include Map for "+bctx.Source)
	// dot.Graph writes nodes sorted by id, so ids are sequence numbers.
	nodes := make(map[string]dot.Node)
	node := func(path string) dot.Node {
		c := classify.Classify(path, bctx)
		if n, ok := nodes[c.Label]; ok {
			return n
		}
		n := declare(d, fmt.Sprintf("f%06d", len(nodes)), c.Label, c.Style)
		nodes[c.Label] = n
		return n
	}
	// Walk never fails since the callback doesn't return error.
	_ = g.Walk(func(from string, to []string) error {
		f := node(from)
		for _, t := range to {
			d.Edge(f, node(t))
		}
		return nil
	})

	// legend ids sort after file ids.
	for i, l := range legend {
		s := classify.Styles[l.category]
		s.FontName = "bold"
		declare(d, fmt.Sprintf("legend%d", i), l.label, s)
	}
	return d
}

func declare(d *dot.Graph, id, label string, s classify.Style) dot.Node {
	n := d.Node(id).Label(label)
	n.Attr("color", s.Color)
	n.Attr("shape", s.Shape)
	n.Attr("style", s.Style)
	if s.FontName != "" {
		n.Attr("fontname", s.FontName)
	}
	return n
}

// Render writes the graph to IncludeMap_<base>.gv in opts.Dir, and runs
// dot to render it to IncludeMap_<base>.gv.<format>.
// It returns the path of the rendered file.
func Render(ctx context.Context, ex execute.Executor, g *includegraph.Graph, bctx *build.Context, opts Options) (string, error) {
	if opts.Dot == "" {
		opts.Dot = "dot"
	}
	if opts.Format == "" {
		opts.Format = "pdf"
	}
	dir := opts.Dir
	if dir == "" {
		dir = "."
	}
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", &Error{Path: opts.Dir, Err: err}
	}
	gv := filepath.Join(dir, BaseName(bctx.Source))
	out := gv + "." + opts.Format

	s := time.Now()
	doc := Document(g, bctx)
	err = os.WriteFile(gv, []byte(doc.String()), 0644)
	if err != nil {
		return "", &Error{Path: out, Err: err}
	}
	cmd := &execute.Cmd{
		ID:   "render " + filepath.Base(gv),
		Args: []string{opts.Dot, "-T" + opts.Format, "-o", out, gv},
		Dir:  dir,
	}
	err = ex.Run(ctx, cmd)
	if err != nil {
		return "", &Error{Path: out, Err: fmt.Errorf("%s: %w\n%s", cmd, err, cmd.Stderr())}
	}
	clog.Infof(ctx, "rendered %s in %s", out, time.Since(s))
	return out, nil
}
