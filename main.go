// Copyright 2023 The Chromium Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// incmap generates the include map of a C source file in a ninja build,
// e.g. Zephyr RTOS.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"runtime"
	"runtime/debug"
	"strings"

	log "github.com/golang/glog"
	"github.com/maruel/subcommands"
	"go.chromium.org/luci/common/cli"
	"go.chromium.org/luci/common/system/signals"

	"go.chromium.org/infra/build/incmap/subcmd/buildargs"
	"go.chromium.org/infra/build/incmap/subcmd/help"
	"go.chromium.org/infra/build/incmap/subcmd/includemap"
	"go.chromium.org/infra/build/incmap/subcmd/markers"
	"go.chromium.org/infra/build/incmap/subcmd/version"
)

const incmapVersion = "v0.23.0"

func main() {
	flag.Usage = func() {
		out := flag.CommandLine.Output()
		fmt.Fprintf(out, "Usage of %s:\n", os.Args[0])
		fmt.Fprintf(out, "global flags:\n")
		flag.PrintDefaults()
	}
	flag.Parse()
	os.Exit(incmapMain(context.Background(), flag.Args()))
}

func getApplication(ctx context.Context) *cli.Application {
	return &cli.Application{
		Name:  "incmap",
		Title: "include map generator for C sources in a ninja build",
		Context: func(context.Context) context.Context {
			return ctx
		},
		Commands: []*subcommands.Command{
			includemap.Cmd(),
			buildargs.Cmd(),
			markers.Cmd(),

			help.Cmd(),
			version.Cmd(incmapVersion),
		},
		EnvVars: map[string]subcommands.EnvVarDefinition{},
	}
}

func incmapMain(ctx context.Context, args []string) int {
	ctx, cancel := context.WithCancel(ctx)
	defer signals.HandleInterrupt(cancel)()

	// Flush the log on exit to not lose any messages.
	defer log.Flush()

	// Print a stack trace when a panic occurs.
	defer func() {
		if r := recover(); r != nil {
			const size = 64 << 10
			buf := make([]byte, size)
			buf = buf[:runtime.Stack(buf, false)]
			log.Fatalf("panic: %v\n%s", r, buf)
		}
	}()

	// Print build information to the log.
	buildinfo, ok := debug.ReadBuildInfo()
	if ok {
		log.Infof("main module: %s %s", moduleInfo(&buildinfo.Main), vcsInfo(buildinfo))
		if log.V(1) {
			for _, m := range buildinfo.Deps {
				log.Infof("deps module: %s", moduleInfo(m))
			}
		}
	}
	if len(args) == 0 {
		args = []string{"help"}
	}
	return subcommands.Run(getApplication(ctx), args)
}

func moduleInfo(m *debug.Module) string {
	if m == nil {
		return "<nil>"
	}
	return fmt.Sprintf("path:%s version:%s sum:%s replace:%s", m.Path, m.Version, m.Sum, moduleInfo(m.Replace))
}

func vcsInfo(buildinfo *debug.BuildInfo) string {
	m := make(map[string]string)
	for _, bs := range buildinfo.Settings {
		if strings.HasPrefix(bs.Key, "vcs.") {
			m[bs.Key] = bs.Value
		}
	}
	return fmt.Sprintf("vcs[revision=%s time=%s modified=%s]", m["vcs.revision"], m["vcs.time"], m["vcs.modified"])
}
