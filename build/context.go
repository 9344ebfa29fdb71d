// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package build resolves how a source file is compiled in a ninja build.
package build

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	log "github.com/golang/glog"

	"go.chromium.org/infra/build/incmap/o11y/clog"
	"go.chromium.org/infra/build/incmap/toolsupport/cmdutil"
	"go.chromium.org/infra/build/incmap/toolsupport/gccutil"
	"go.chromium.org/infra/build/incmap/toolsupport/ninjautil"
	"go.chromium.org/infra/build/incmap/toolsupport/shutil"
)

// ErrConfigurationNotFound is returned when the build dir has no
// build.ninja.
var ErrConfigurationNotFound = errors.New("build.ninja not found")

// ManifestName is the ninja manifest filename in the build dir.
const ManifestName = "build.ninja"

// Options are the inputs to LoadContext.
type Options struct {
	ProjectDir   string
	BuildDir     string
	Compiler     string
	Source       string
	ToolchainDir string
}

// Context is how the source file is compiled.
// Paths are canonical (see Canonicalize).
// It is created by LoadContext, and must not be modified.
type Context struct {
	ProjectDir string
	BuildDir   string
	Compiler   string
	Source     string

	// ToolchainDir is the root of the compiler's own headers.
	// Empty if not configured.
	ToolchainDir string

	// Manifest is the path of build.ninja.
	Manifest string

	// Raw values of DEFINES, INCLUDES and FLAGS in build.ninja.
	RawDefines  string
	RawIncludes string
	RawFlags    string

	// Defines and Flags are args of RawDefines and RawFlags.
	// Includes are include search path args (see gccutil.IncludeArgs).
	Defines  []string
	Includes []string
	Flags    []string

	// NeedsShell is true if RawDefines or RawFlags need /bin/sh to
	// be interpreted. Defines and Flags are nil in this case.
	NeedsShell bool
}

// LoadContext reads build.ninja in opts.BuildDir, and returns how
// opts.Source is compiled.
func LoadContext(ctx context.Context, opts Options) (*Context, error) {
	bctx := &Context{}
	var err error
	for _, p := range []struct {
		name     string
		in       string
		out      *string
		optional bool
	}{
		{name: "project dir", in: opts.ProjectDir, out: &bctx.ProjectDir},
		{name: "build dir", in: opts.BuildDir, out: &bctx.BuildDir},
		{name: "source", in: opts.Source, out: &bctx.Source},
		{name: "toolchain dir", in: opts.ToolchainDir, out: &bctx.ToolchainDir, optional: true},
	} {
		if p.in == "" {
			if p.optional {
				continue
			}
			return nil, fmt.Errorf("%s is not specified", p.name)
		}
		*p.out, err = Canonicalize(p.in)
		if err != nil {
			return nil, fmt.Errorf("bad %s %q: %w", p.name, p.in, err)
		}
	}
	bctx.Compiler = opts.Compiler
	if strings.ContainsRune(filepath.ToSlash(opts.Compiler), '/') {
		bctx.Compiler, err = Canonicalize(opts.Compiler)
		if err != nil {
			return nil, fmt.Errorf("bad compiler %q: %w", opts.Compiler, err)
		}
	}

	bctx.Manifest = filepath.Join(bctx.BuildDir, ManifestName)
	buf, err := os.ReadFile(bctx.Manifest)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", bctx.BuildDir, ErrConfigurationNotFound)
	}
	if err != nil {
		return nil, err
	}

	relPath, ok := Rel(bctx.ProjectDir, bctx.Source)
	if !ok {
		relPath = filepath.ToSlash(bctx.Source)
	}
	frag, err := ninjautil.Locate(buf, relPath)
	if err != nil {
		return nil, fmt.Errorf("%s in %s: %w", bctx.Source, bctx.Manifest, err)
	}
	clog.Infof(ctx, "found %q in %s", frag.Header(), bctx.Manifest)
	if log.V(1) {
		for _, line := range frag.Lines() {
			clog.Infof(ctx, "fragment: %s", line)
		}
	}
	bctx.RawDefines = frag.Value(ninjautil.Defines)
	bctx.RawIncludes = frag.Value(ninjautil.Includes)
	bctx.RawFlags = frag.Value(ninjautil.Flags)

	includes, err := cmdutil.SplitFlags(bctx.RawIncludes)
	if err != nil {
		clog.Warningf(ctx, "failed to parse %s=%q: %v", ninjautil.Includes, bctx.RawIncludes, err)
		includes = strings.Fields(bctx.RawIncludes)
	}
	bctx.Includes = gccutil.IncludeArgs(includes, bctx.BuildDir)

	bctx.Defines, err = cmdutil.SplitFlags(bctx.RawDefines)
	if err == nil {
		bctx.Flags, err = cmdutil.SplitFlags(bctx.RawFlags)
	}
	switch {
	case errors.Is(err, shutil.ErrNeedsShell):
		clog.Infof(ctx, "use /bin/sh for %s/%s: %v", ninjautil.Defines, ninjautil.Flags, err)
		bctx.Defines = nil
		bctx.Flags = nil
		bctx.NeedsShell = true
	case err != nil:
		return nil, fmt.Errorf("bad compile flags for %s: %w", bctx.Source, err)
	}
	return bctx, nil
}

// PreprocessArgs returns command line args to preprocess the source.
func (c *Context) PreprocessArgs() []string {
	if c.NeedsShell {
		return gccutil.ShellArgs(c.Compiler, c.RawDefines, c.Includes, c.RawFlags, c.Source)
	}
	return gccutil.PreprocessArgs(c.Compiler, c.Defines, c.Includes, c.Flags, c.Source)
}

// SearchPaths returns include search paths for display.
func (c *Context) SearchPaths() []string {
	return gccutil.SearchPaths(c.Includes)
}
