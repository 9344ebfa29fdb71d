// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package includegraph reconstructs the include graph of a source file
// from the line markers in its preprocessed text.
package includegraph

import (
	"bufio"
	"fmt"
	"io"
	"slices"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

type successors struct {
	list []string
	seen map[string]bool
}

// Graph is an include graph.
// It maps an includer to the files it directly includes.
// Includers are kept in the order they first included a file, and
// included files in the order they were first included.
type Graph struct {
	m *orderedmap.OrderedMap[string, *successors]
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{
		m: orderedmap.New[string, *successors](),
	}
}

// AddEdge adds an edge from -> to, unless it already exists.
func (g *Graph) AddEdge(from, to string) {
	s, ok := g.m.Get(from)
	if !ok {
		s = &successors{seen: make(map[string]bool)}
		g.m.Set(from, s)
	}
	if s.seen[to] {
		return
	}
	s.seen[to] = true
	s.list = append(s.list, to)
}

// Len returns the number of includers.
func (g *Graph) Len() int {
	return g.m.Len()
}

// Nodes returns includers in order.
func (g *Graph) Nodes() []string {
	nodes := make([]string, 0, g.m.Len())
	for p := g.m.Oldest(); p != nil; p = p.Next() {
		nodes = append(nodes, p.Key)
	}
	return nodes
}

// Successors returns files directly included by n.
func (g *Graph) Successors(n string) []string {
	s, ok := g.m.Get(n)
	if !ok {
		return nil
	}
	return slices.Clone(s.list)
}

// Walk calls fn for each includer and its successors, in order.
func (g *Graph) Walk(fn func(from string, to []string) error) error {
	for p := g.m.Oldest(); p != nil; p = p.Next() {
		err := fn(p.Key, p.Value.list)
		if err != nil {
			return err
		}
	}
	return nil
}

// All returns all files in the graph, in the order of first appearance
// as an includer or an included file.
func (g *Graph) All() []string {
	var all []string
	seen := make(map[string]bool)
	add := func(n string) {
		if seen[n] {
			return
		}
		seen[n] = true
		all = append(all, n)
	}
	for p := g.m.Oldest(); p != nil; p = p.Next() {
		add(p.Key)
		for _, n := range p.Value.list {
			add(n)
		}
	}
	return all
}

// Equal reports whether g and o have the same includers and successors
// in the same order.
func (g *Graph) Equal(o *Graph) bool {
	if g.Len() != o.Len() {
		return false
	}
	p, q := g.m.Oldest(), o.m.Oldest()
	for ; p != nil && q != nil; p, q = p.Next(), q.Next() {
		if p.Key != q.Key || !slices.Equal(p.Value.list, q.Value.list) {
			return false
		}
	}
	return p == nil && q == nil
}

// Map returns the graph as a map, for tests and debugging.
func (g *Graph) Map() map[string][]string {
	m := make(map[string][]string, g.m.Len())
	for p := g.m.Oldest(); p != nil; p = p.Next() {
		m[p.Key] = slices.Clone(p.Value.list)
	}
	return m
}

// WriteTo writes the graph in digraph format, i.e. each line has an
// includer followed by files it includes.
// https://pkg.go.dev/golang.org/x/tools/cmd/digraph
func (g *Graph) WriteTo(w io.Writer) (int64, error) {
	bw := bufio.NewWriter(w)
	var written int64
	err := g.Walk(func(from string, to []string) error {
		fields := make([]string, 0, 1+len(to))
		fields = append(fields, quote(from))
		for _, n := range to {
			fields = append(fields, quote(n))
		}
		n, err := fmt.Fprintln(bw, strings.Join(fields, " "))
		written += int64(n)
		return err
	})
	if err != nil {
		return written, err
	}
	return written, bw.Flush()
}

// quote quotes path for digraph if it has spaces or quotes.
func quote(path string) string {
	if !strings.ContainsAny(path, " \t\"") {
		return path
	}
	return fmt.Sprintf("%q", path)
}
