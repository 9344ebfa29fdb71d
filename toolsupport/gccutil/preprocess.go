// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package gccutil

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	log "github.com/golang/glog"

	"go.chromium.org/infra/build/incmap/execute"
	"go.chromium.org/infra/build/incmap/o11y/clog"
	"go.chromium.org/infra/build/incmap/toolsupport/shutil"
)

// PreprocessArgs returns command line args to preprocess source.
// i.e. `compiler -E defines... includes... flags... source`.
// Output and dependency file flags are dropped from flags, so the
// preprocessed text goes to stdout.
func PreprocessArgs(compiler string, defines, includes, flags []string, source string) []string {
	args := make([]string, 0, 3+len(defines)+len(includes)+len(flags))
	args = append(args, compiler, "-E")
	args = append(args, defines...)
	args = append(args, includes...)
	args = append(args, filterFlags(flags)...)
	args = append(args, source)
	return args
}

// ShellArgs is like PreprocessArgs, but defines and flags are raw
// binding values that are interpreted by /bin/sh.
// Output and dependency file flags are dropped from flags unless flags
// has quotes or backslashes, in which case flags is used as is.
func ShellArgs(compiler, defines string, includes []string, flags, source string) []string {
	flags = filterShellFlags(flags)
	var words []string
	words = append(words, shutil.Quote(compiler), "-E")
	if defines != "" {
		words = append(words, defines)
	}
	if len(includes) > 0 {
		words = append(words, shutil.Join(includes))
	}
	if flags != "" {
		words = append(words, flags)
	}
	words = append(words, shutil.Quote(source))
	return []string{"/bin/sh", "-c", strings.Join(words, " ")}
}

// filterShellFlags applies filterFlags to the words of a raw flags
// string. Words are separated by whitespace only, so flags with quotes
// or backslashes are returned unchanged.
func filterShellFlags(flags string) string {
	if strings.ContainsAny(flags, `'"\`) {
		return flags
	}
	return strings.Join(filterFlags(strings.Fields(flags)), " ")
}

func filterFlags(flags []string) []string {
	var fargs []string
	skip := false
	for _, arg := range flags {
		if skip {
			skip = false
			continue
		}
		switch arg {
		case "-E", "-M", "-MM", "-MD", "-MMD", "-MP", "-c":
			continue
		case "-MF", "-MT", "-MQ", "-o":
			skip = true
			continue
		}
		if strings.HasPrefix(arg, "-MF") || strings.HasPrefix(arg, "-MT") || strings.HasPrefix(arg, "-MQ") {
			continue
		}
		if strings.HasPrefix(arg, "-o") {
			continue
		}
		fargs = append(fargs, arg)
	}
	return fargs
}

// ScratchName returns the name of the scratch file for the preprocessed
// text of source.
func ScratchName(source string) string {
	return "pp." + filepath.Base(source)
}

// RemoveScratch removes all scratch files in dir.
func RemoveScratch(dir string) error {
	matches, err := filepath.Glob(filepath.Join(dir, "pp.*"))
	if err != nil {
		return err
	}
	var errs []error
	for _, m := range matches {
		err := os.Remove(m)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Preprocess runs args in dir with ex, and writes its stdout to the
// scratch file.
// Non-zero exit of the preprocessor is logged, but it is not an error;
// the scratch file will have whatever the preprocessor emitted.
// It returns an error if it fails to create the scratch file or to run
// the preprocessor.
func Preprocess(ctx context.Context, ex execute.Executor, args []string, dir, scratch string) error {
	f, err := os.Create(scratch)
	if err != nil {
		return fmt.Errorf("failed to create scratch file: %w", err)
	}
	defer f.Close()
	w := bufio.NewWriter(f)
	cmd := &execute.Cmd{
		ID:     "preprocess " + filepath.Base(scratch),
		Args:   args,
		Dir:    dir,
		Output: w,
	}
	if log.V(1) {
		clog.Infof(ctx, "run %s", cmd)
	}
	s := time.Now()
	err = ex.Run(ctx, cmd)
	var eerr execute.ExitError
	switch {
	case errors.As(err, &eerr):
		if ctx.Err() != nil {
			return ctx.Err()
		}
		clog.Warningf(ctx, "preprocessor %s: %v\n%s", cmd, err, cmd.Stderr())
	case err != nil:
		return fmt.Errorf("failed to preprocess: %w", err)
	}
	err = w.Flush()
	if err != nil {
		return fmt.Errorf("failed to write scratch file: %w", err)
	}
	err = f.Close()
	if err != nil {
		return fmt.Errorf("failed to close scratch file: %w", err)
	}
	clog.Infof(ctx, "preprocessed %s in %s", scratch, time.Since(s))
	return nil
}
