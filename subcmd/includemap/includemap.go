// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package includemap is map subcommand to generate the include map of
// a source file.
package includemap

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/maruel/subcommands"

	"go.chromium.org/luci/common/cli"

	"go.chromium.org/infra/build/incmap/build"
	"go.chromium.org/infra/build/incmap/execute"
	"go.chromium.org/infra/build/incmap/execute/localexec"
	"go.chromium.org/infra/build/incmap/includegraph"
	"go.chromium.org/infra/build/incmap/o11y/clog"
	"go.chromium.org/infra/build/incmap/render"
	"go.chromium.org/infra/build/incmap/toolsupport/gccutil"
	"go.chromium.org/infra/build/incmap/toolsupport/ninjautil"
	"go.chromium.org/infra/build/incmap/ui"
)

const usage = `generate include map

 $ incmap map -z <project dir> -b <build dir> -t <gcc> <source>

runs <gcc> -E for <source> with DEFINES, INCLUDES and FLAGS of
<source> in <build dir>/build.ninja, and draws the include graph
reconstructed from the line markers of the preprocessed text.

The graph is saved as IncludeMap_<source basename>.gv and rendered
by graphviz dot to IncludeMap_<source basename>.gv.pdf in the current
directory. Scratch files (pp.*) in the current directory are removed.

e.g.
 $ incmap map -z ~/zephyr -b ~/zephyr/build \
     -t ~/zephyr-sdk/arm-zephyr-eabi/bin/arm-zephyr-eabi-gcc \
     ~/zephyr/samples/drivers/uart/echo_bot/src/main.c
`

// Cmd returns the Command for the `map` subcommand provided by this package.
func Cmd() *subcommands.Command {
	return &subcommands.Command{
		UsageLine: "map -z <dir> -b <dir> -t <gcc> [<source>]",
		ShortDesc: "generate include map of a source file",
		LongDesc:  usage,
		CommandRun: func() subcommands.CommandRun {
			c := &run{
				exec: localexec.LocalExec{},
				out:  os.Stdout,
			}
			c.init()
			return c
		},
	}
}

type run struct {
	subcommands.CommandRunBase

	flags  build.Flags
	strict bool
	opts   build.Options

	exec execute.Executor
	out  io.Writer
}

func (c *run) init() {
	c.flags.Register(&c.Flags)
	c.Flags.BoolVar(&c.strict, "strict", false, "fail on unbalanced line markers")
}

func (c *run) Run(a subcommands.Application, args []string, env subcommands.Env) int {
	ctx := cli.GetContext(a, c, env)
	return c.exitCode(c.run(ctx, args))
}

// exitCode reports err to the user, and returns the exit code for it.
func (c *run) exitCode(err error) int {
	if err == nil {
		return 0
	}
	var rerr *render.Error
	switch {
	case errors.Is(err, flag.ErrHelp):
		fmt.Fprintf(os.Stderr, "%v\n%s\n", err, usage)
		return 2
	case errors.Is(err, build.ErrConfigurationNotFound):
		fmt.Fprintf(c.out, "%q file cannot be found at [%s].\n", build.ManifestName, c.opts.BuildDir)
		fmt.Fprintf(c.out, "Did you specify a wrong build folder?\n")
	case errors.Is(err, ninjautil.ErrTargetNotInBuild):
		fmt.Fprintf(c.out, "The source file [%s] is not part of the build.\n", c.opts.Source)
	case errors.As(err, &rerr):
		fmt.Fprintf(c.out, "Failed to render the graph.\n")
		fmt.Fprintf(c.out, "Is the file [%s] writable?\n", rerr.Path)
	}
	fmt.Fprintf(c.out, "Error: %v\n", err)
	return 1
}

func (c *run) run(ctx context.Context, args []string) error {
	opts, cfg, err := c.flags.Load(args)
	if err != nil {
		return err
	}
	c.opts = opts
	if opts.Compiler == "" {
		return fmt.Errorf("no compiler: %w", flag.ErrHelp)
	}
	wd, err := os.Getwd()
	if err != nil {
		return err
	}
	// scratch files are removed on every exit path.
	defer func() {
		err := gccutil.RemoveScratch(wd)
		if err != nil {
			clog.Warningf(ctx, "failed to remove scratch files: %v", err)
		}
	}()

	ctx = clog.NewSpan(ctx, uuid.New().String(), "map", map[string]string{
		"source": filepath.Base(opts.Source),
	})
	src, err := build.Canonicalize(opts.Source)
	if err != nil {
		return fmt.Errorf("bad source %q: %w", opts.Source, err)
	}
	fmt.Fprintf(c.out, "[Start generating include map for:]\n%s\n", src)

	bctx, err := build.LoadContext(ctx, opts)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "[Ninja build file found:]\n%s\n", bctx.Manifest)

	scratch := filepath.Join(wd, gccutil.ScratchName(bctx.Source))
	spin := ui.Default.NewSpinner()
	spin.Start("preprocessing %s", filepath.Base(bctx.Source))
	err = gccutil.Preprocess(ctx, c.exec, bctx.PreprocessArgs(), bctx.BuildDir, scratch)
	spin.Stop(err)
	if err != nil {
		return err
	}

	g, err := c.buildGraph(ctx, bctx, scratch)
	if err != nil {
		return err
	}

	spin = ui.Default.NewSpinner()
	spin.Start("rendering %s", render.BaseName(bctx.Source))
	out, err := render.Render(ctx, c.exec, g, bctx, render.Options{
		Dot:    cfg.Dot,
		Format: cfg.Format,
		Dir:    wd,
	})
	spin.Stop(err)
	if err != nil {
		return err
	}

	fmt.Fprintf(c.out, "[The include search paths:]\n%s\n", strings.Join(bctx.SearchPaths(), "\n"))
	fmt.Fprintf(c.out, "[Include map saved as:]\n%s\n", out)
	return nil
}

func (c *run) buildGraph(ctx context.Context, bctx *build.Context, scratch string) (*includegraph.Graph, error) {
	f, err := os.Open(scratch)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	resolver, err := build.NewResolver(bctx.BuildDir, build.DefaultResolverCacheSize)
	if err != nil {
		return nil, err
	}
	b := includegraph.Builder{
		Start:   bctx.Source,
		Resolve: resolver.Resolve,
		Strict:  c.strict,
	}
	g, stats, err := b.Build(ctx, f)
	if err != nil {
		return nil, err
	}
	clog.Infof(ctx, "graph: files=%d includers=%d stats=%+v", len(g.All()), g.Len(), stats)
	if stats.Underflows > 0 {
		ui.Default.Warningf("%d unbalanced line markers in %s were ignored", stats.Underflows, filepath.Base(scratch))
	}
	if g.Len() == 0 {
		ui.Default.Warningf("no include found in %s", filepath.Base(scratch))
	}
	return g, nil
}
