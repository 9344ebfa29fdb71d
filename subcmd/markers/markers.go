// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package markers is graph subcommand to show the include graph of
// a preprocessed file.
package markers

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/maruel/subcommands"

	"go.chromium.org/luci/common/cli"

	"go.chromium.org/infra/build/incmap/build"
	"go.chromium.org/infra/build/incmap/includegraph"
)

const usage = `show include graph of a preprocessed file

 $ incmap graph -i <preprocessed file> -start <source> [-C <dir>]

prints the include graph reconstructed from the line markers in
<preprocessed file> (e.g. the output of gcc -E) in digraph format.
Each line contains an includer followed by the files it directly
includes. Relative paths in the line markers are resolved against <dir>,
i.e. the directory where the preprocessor ran.

This output can be passed to digraph command, installed by
 $ go install golang.org/x/tools/cmd/digraph@latest
`

// Cmd returns the Command for the `graph` subcommand provided by this package.
func Cmd() *subcommands.Command {
	return &subcommands.Command{
		UsageLine: "graph -i <file> -start <source> [-C <dir>]",
		ShortDesc: "show include graph of a preprocessed file",
		LongDesc:  usage,
		Advanced:  true,
		CommandRun: func() subcommands.CommandRun {
			c := &run{
				out: os.Stdout,
				err: os.Stderr,
			}
			c.init()
			return c
		},
	}
}

type run struct {
	subcommands.CommandRunBase

	input  string
	start  string
	dir    string
	strict bool
	stats  bool

	out, err io.Writer
}

func (c *run) init() {
	c.Flags.StringVar(&c.input, "i", "", "preprocessed file")
	c.Flags.StringVar(&c.start, "start", "", "source file of the preprocessed file")
	c.Flags.StringVar(&c.dir, "C", ".", "directory where the preprocessor ran")
	c.Flags.BoolVar(&c.strict, "strict", false, "fail on unbalanced line markers")
	c.Flags.BoolVar(&c.stats, "stats", false, "print stats to stderr")
}

func (c *run) Run(a subcommands.Application, args []string, env subcommands.Env) int {
	ctx := cli.GetContext(a, c, env)
	err := c.run(ctx, args)
	if err != nil {
		switch {
		case errors.Is(err, flag.ErrHelp):
			fmt.Fprintf(os.Stderr, "%v\n%s\n", err, usage)
			return 2
		default:
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		return 1
	}
	return 0
}

func (c *run) run(ctx context.Context, args []string) error {
	if len(args) > 0 {
		return fmt.Errorf("unexpected arguments %q: %w", args, flag.ErrHelp)
	}
	if c.input == "" || c.start == "" {
		return fmt.Errorf("-i and -start are required: %w", flag.ErrHelp)
	}
	start, err := build.Canonicalize(c.start)
	if err != nil {
		return fmt.Errorf("bad start %q: %w", c.start, err)
	}
	dir, err := build.Canonicalize(c.dir)
	if err != nil {
		return fmt.Errorf("bad dir %q: %w", c.dir, err)
	}
	resolver, err := build.NewResolver(dir, build.DefaultResolverCacheSize)
	if err != nil {
		return err
	}
	f, err := os.Open(c.input)
	if err != nil {
		return err
	}
	defer f.Close()
	b := includegraph.Builder{
		Start:   start,
		Resolve: resolver.Resolve,
		Strict:  c.strict,
	}
	g, stats, err := b.Build(ctx, f)
	if err != nil {
		return err
	}
	_, err = g.WriteTo(c.out)
	if err != nil {
		return err
	}
	if c.stats {
		fmt.Fprintf(c.err, "lines=%d markers=%d enters=%d returns=%d underflows=%d max_depth=%d files=%d\n",
			stats.Lines, stats.Markers, stats.Enters, stats.Returns, stats.Underflows, stats.MaxDepth, len(g.All()))
	}
	return nil
}
