// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package buildargs is args subcommand to show how a source file is
// compiled in build.ninja.
package buildargs

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
	"go.chromium.org/infra/build/incmap/toolsupport/shutil"
)

const usage = `show compile args

 $ incmap args -z <project dir> -b <build dir> [-t <gcc>] <source>

prints DEFINES, INCLUDES and FLAGS of <source> in <build dir>/build.ninja,
the include search paths, and the preprocessor command line that
"incmap map" would run.
`

// Cmd returns the Command for the `args` subcommand provided by this package.
func Cmd() *subcommands.Command {
	return &subcommands.Command{
		UsageLine: "args -z <dir> -b <dir> [-t <gcc>] [<source>]",
		ShortDesc: "show compile args of a source file",
		LongDesc:  usage,
		CommandRun: func() subcommands.CommandRun {
			c := &run{out: os.Stdout}
			c.init()
			return c
		},
	}
}

type run struct {
	subcommands.CommandRunBase

	flags build.Flags
	out   io.Writer
}

func (c *run) init() {
	c.flags.Register(&c.Flags)
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
	opts, _, err := c.flags.Load(args)
	if err != nil {
		return err
	}
	if opts.Compiler == "" {
		opts.Compiler = "gcc"
	}
	bctx, err := build.LoadContext(ctx, opts)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "[Ninja build file found:]\n%s\n", bctx.Manifest)
	fmt.Fprintf(c.out, "DEFINES=%s\n", bctx.RawDefines)
	fmt.Fprintf(c.out, "INCLUDES=%s\n", bctx.RawIncludes)
	fmt.Fprintf(c.out, "FLAGS=%s\n", bctx.RawFlags)
	fmt.Fprintf(c.out, "[The include search paths:]\n")
	for _, p := range bctx.SearchPaths() {
		fmt.Fprintln(c.out, p)
	}
	fmt.Fprintf(c.out, "[Preprocess command in %s:]\n%s\n", bctx.BuildDir, shutil.Join(bctx.PreprocessArgs()))
	return nil
}
