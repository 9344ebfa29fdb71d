// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package cmdutil splits compile flags in build.ninja into args.
package cmdutil

import (
	"runtime"
	"strings"

	"go.chromium.org/infra/build/incmap/toolsupport/shutil"
)

// SplitFlags splits a binding value (e.g. DEFINES) of build.ninja into
// args, as the command would be split when ninja runs it:
// by /bin/sh on unix, by CommandLineToArgv on windows.
// On unix, it returns an error wrapping shutil.ErrNeedsShell if the
// value uses shell features.
func SplitFlags(s string) ([]string, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	if runtime.GOOS != "windows" {
		return shutil.Split(s)
	}
	// the first arg is parsed as a program name, which has
	// different quoting rules.
	args, err := Split("cc " + s)
	if err != nil {
		return nil, err
	}
	return args[1:], nil
}
