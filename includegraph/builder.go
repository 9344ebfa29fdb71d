// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package includegraph

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"

	log "github.com/golang/glog"

	"go.chromium.org/infra/build/incmap/o11y/clog"
)

// ErrUnbalanced is returned in strict mode when a return marker
// appears while only the source file is on the include stack.
var ErrUnbalanced = errors.New("unbalanced line markers")

// Stats is statistics of a Build.
type Stats struct {
	Lines      int
	Markers    int
	Enters     int
	Returns    int
	Underflows int
	MaxDepth   int
}

// Builder builds an include graph from preprocessed text.
type Builder struct {
	// Start is the canonical path of the source file.
	Start string

	// Resolve converts a path in a line marker to a canonical path.
	// nil uses the path as is.
	Resolve func(string) string

	// Strict makes an unbalanced return marker an error.
	// Otherwise, it is counted in Stats.Underflows and ignored.
	Strict bool
}

// Build reads preprocessed text from r and returns the include graph.
// Text without any line marker results in an empty graph.
func (b Builder) Build(ctx context.Context, r io.Reader) (*Graph, Stats, error) {
	var stats Stats
	resolve := b.Resolve
	if resolve == nil {
		resolve = func(p string) string { return p }
	}
	g := New()
	stack := []string{b.Start}
	stats.MaxDepth = 1

	br := bufio.NewReaderSize(r, 64*1024)
	bol := true
	for {
		line, isPrefix, err := br.ReadLine()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, stats, fmt.Errorf("failed to read preprocessed text: %w", err)
		}
		atBOL := bol
		bol = !isPrefix
		if !atBOL {
			continue
		}
		stats.Lines++
		if stats.Lines%4096 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, stats, err
			}
		}
		if len(line) == 0 || line[0] != '#' {
			continue
		}
		m, ok := ParseMarker(line)
		if !ok {
			continue
		}
		stats.Markers++
		switch m.Kind() {
		case Enter:
			stats.Enters++
			from := stack[len(stack)-1]
			to := resolve(m.Path)
			g.AddEdge(from, to)
			stack = append(stack, to)
			if len(stack) > stats.MaxDepth {
				stats.MaxDepth = len(stack)
			}
			if log.V(2) {
				clog.Infof(ctx, "%d: enter %s -> %s", stats.Lines, from, to)
			}
		case Return:
			stats.Returns++
			if len(stack) == 1 {
				stats.Underflows++
				if b.Strict {
					return nil, stats, fmt.Errorf("line %d: return to %q: %w", stats.Lines, m.Path, ErrUnbalanced)
				}
				clog.Warningf(ctx, "line %d: return to %q with no included file; ignored", stats.Lines, m.Path)
				continue
			}
			stack = stack[:len(stack)-1]
			if log.V(2) {
				clog.Infof(ctx, "%d: return to %s", stats.Lines, stack[len(stack)-1])
			}
		}
	}
	if len(stack) > 1 {
		clog.Warningf(ctx, "%d files not returned at the end; truncated preprocessed text?", len(stack)-1)
	}
	return g, stats, nil
}
