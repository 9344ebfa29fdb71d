// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package build

import (
	"flag"
	"fmt"
)

// Flags are command line flags to specify how a source file is built.
type Flags struct {
	ConfigFile string
	Source     string

	flags Config
}

// Register registers flags in fs.
// Short names are aliases of long names.
func (f *Flags) Register(fs *flag.FlagSet) {
	for _, name := range []string{"project", "z"} {
		fs.StringVar(&f.flags.ProjectDir, name, "", "project root dir (e.g. zephyr dir)")
	}
	for _, name := range []string{"build", "b"} {
		fs.StringVar(&f.flags.BuildDir, name, "", "build dir where build.ninja is located")
	}
	for _, name := range []string{"compiler", "t"} {
		fs.StringVar(&f.flags.Compiler, name, "", "gcc used to build the project")
	}
	fs.StringVar(&f.Source, "s", "", "source file to map. same as the positional argument")
	fs.StringVar(&f.flags.ToolchainDir, "toolchain_dir", "", "root dir of the toolchain headers (optional)")
	fs.StringVar(&f.flags.Dot, "dot", "", `graphviz dot command (default "dot")`)
	fs.StringVar(&f.flags.Format, "format", "", `output format of dot (default "pdf")`)
	fs.StringVar(&f.ConfigFile, "config", "", "config file (toml). flags take precedence over it")
}

// Load returns options and config by the config file and flags.
// args are positional arguments; the source file may be given
// as the only one.
func (f *Flags) Load(args []string) (Options, Config, error) {
	source := f.Source
	switch {
	case len(args) == 1 && source == "":
		source = args[0]
	case len(args) > 0:
		return Options{}, Config{}, fmt.Errorf("unexpected arguments %q: %w", args, flag.ErrHelp)
	}
	if source == "" {
		return Options{}, Config{}, fmt.Errorf("no source file: %w", flag.ErrHelp)
	}
	var cfg Config
	if f.ConfigFile != "" {
		var err error
		cfg, err = LoadConfig(f.ConfigFile)
		if err != nil {
			return Options{}, Config{}, err
		}
	}
	cfg = cfg.Merge(f.flags)
	if cfg.ProjectDir == "" {
		return Options{}, Config{}, fmt.Errorf("no project dir: %w", flag.ErrHelp)
	}
	if cfg.BuildDir == "" {
		return Options{}, Config{}, fmt.Errorf("no build dir: %w", flag.ErrHelp)
	}
	return Options{
		ProjectDir:   cfg.ProjectDir,
		BuildDir:     cfg.BuildDir,
		Compiler:     cfg.Compiler,
		Source:       source,
		ToolchainDir: cfg.ToolchainDir,
	}, cfg, nil
}
