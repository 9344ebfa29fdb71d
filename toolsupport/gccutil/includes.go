// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package gccutil provides utilities of gcc.
package gccutil

import (
	"path/filepath"
	"strings"
)

// IncludeArgs returns include search path args for the INCLUDES value
// of a build statement.
//
// `-I<dir>` and `-I <dir>` become `-I<abs dir>`, where a relative dir
// is resolved against buildDir and the result is cleaned (so "-I." and
// "-Ifoo/." lose the trailing "."). They come first, in order.
// Other args (e.g. `-isystem <dir>`) are passed through unchanged after
// them.
func IncludeArgs(args []string, buildDir string) []string {
	var incs, rest []string
	for i := 0; i < len(args); i++ {
		arg := args[i]
		var dir string
		switch {
		case arg == "-I":
			if i+1 >= len(args) {
				continue
			}
			i++
			dir = args[i]
		case strings.HasPrefix(arg, "-I"):
			dir = strings.TrimPrefix(arg, "-I")
		default:
			rest = append(rest, arg)
			continue
		}
		if !filepath.IsAbs(dir) {
			dir = filepath.Join(buildDir, dir)
		}
		incs = append(incs, "-I"+filepath.Clean(dir))
	}
	return append(incs, rest...)
}

// SearchPaths returns include search paths in args, one entry
// per search path, for display.
// e.g. "-I/zephyr/include", "-isystem /sdk/include".
func SearchPaths(args []string) []string {
	var paths []string
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch arg {
		case "-I", "-isystem", "-iquote", "-idirafter":
			if i+1 >= len(args) {
				continue
			}
			i++
			if arg == "-I" {
				paths = append(paths, arg+args[i])
				continue
			}
			paths = append(paths, arg+" "+args[i])
			continue
		}
		for _, prefix := range []string{"-I", "-isystem", "-iquote", "-idirafter"} {
			if strings.HasPrefix(arg, prefix) {
				paths = append(paths, arg)
				break
			}
		}
	}
	return paths
}
