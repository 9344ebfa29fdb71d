// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package includemap

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"go.chromium.org/infra/build/incmap/build"
	"go.chromium.org/infra/build/incmap/execute"
)

type testSetup struct {
	wd, project, buildDir, source, kernelH, autoconfH string
}

func setup(t *testing.T) testSetup {
	t.Helper()
	dir, err := build.Canonicalize(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	s := testSetup{
		wd:        filepath.Join(dir, "wd"),
		project:   filepath.Join(dir, "zephyr"),
		buildDir:  filepath.Join(dir, "zephyr", "build"),
		source:    filepath.Join(dir, "zephyr", "samples", "hello", "main.c"),
		kernelH:   filepath.Join(dir, "zephyr", "include", "kernel.h"),
		autoconfH: filepath.Join(dir, "zephyr", "build", "zephyr", "include", "generated", "autoconf.h"),
	}
	for _, f := range []string{s.source, s.kernelH, s.autoconfH} {
		err := os.MkdirAll(filepath.Dir(f), 0755)
		if err != nil {
			t.Fatal(err)
		}
		err = os.WriteFile(f, nil, 0644)
		if err != nil {
			t.Fatal(err)
		}
	}
	err = os.MkdirAll(s.wd, 0755)
	if err != nil {
		t.Fatal(err)
	}
	manifest := `build zephyr/CMakeFiles/app.dir/main.c.obj: C_COMPILER ../samples/hello/main.c
  DEFINES = -DKERNEL
  FLAGS = -Os -imacros zephyr/include/generated/autoconf.h
  INCLUDES = -I../include -Izephyr/include/generated
`
	err = os.WriteFile(filepath.Join(s.buildDir, build.ManifestName), []byte(manifest), 0644)
	if err != nil {
		t.Fatal(err)
	}
	t.Chdir(s.wd)
	return s
}

// fakeTools runs gcc and dot.
// gcc emits line markers for main.c -> autoconf.h, main.c -> kernel.h -> autoconf.h.
func fakeTools(t *testing.T, s testSetup, dotErr error) execute.ExecutorFunc {
	return func(ctx context.Context, cmd *execute.Cmd) error {
		switch cmd.Args[0] {
		case "gcc":
			w := cmd.StdoutWriter()
			fmt.Fprintf(w, "# 1 %q\n", s.source)
			fmt.Fprintf(w, "# 1 %q 1\n", "zephyr/include/generated/autoconf.h")
			fmt.Fprintf(w, "# 1 %q 2\n", s.source)
			fmt.Fprintf(w, "# 1 %q 1\n", s.kernelH)
			fmt.Fprintf(w, "# 1 %q 1\n", "zephyr/include/generated/autoconf.h")
			fmt.Fprintf(w, "# 2 %q 2\n", s.kernelH)
			fmt.Fprintf(w, "# 2 %q 2\n", s.source)
			return nil
		case "dot":
			if dotErr != nil {
				return dotErr
			}
			return os.WriteFile(cmd.Args[3], []byte("%PDF"), 0644)
		}
		t.Errorf("unexpected command %q", cmd.Args)
		return execute.ExitError{ExitCode: 127}
	}
}

func TestRun(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses unix paths")
	}
	ctx := context.Background()
	s := setup(t)
	var out bytes.Buffer
	c := &run{exec: fakeTools(t, s, nil), out: &out}
	c.init()
	err := c.Flags.Parse([]string{"-z", s.project, "-b", s.buildDir, "-t", "gcc", s.source})
	if err != nil {
		t.Fatal(err)
	}
	err = c.run(ctx, c.Flags.Args())
	if err != nil {
		t.Fatalf("run=%v; want nil error\n%s", err, out.String())
	}
	gv := filepath.Join(s.wd, "IncludeMap_main.c.gv")
	for _, want := range []string{
		"[Start generating include map for:]\n" + s.source + "\n",
		"[Ninja build file found:]\n" + filepath.Join(s.buildDir, "build.ninja") + "\n",
		"[The include search paths:]\n-I" + filepath.Join(s.project, "include") + "\n",
		"[Include map saved as:]\n" + gv + ".pdf\n",
	} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output doesn't contain %q\n%s", want, out.String())
		}
	}
	buf, err := os.ReadFile(gv)
	if err != nil {
		t.Fatal(err)
	}
	for _, label := range []string{"kernel.h", "autoconf.h", "main.c"} {
		if !strings.Contains(string(buf), label) {
			t.Errorf("%s doesn't contain %q\n%s", gv, label, buf)
		}
	}
	matches, err := filepath.Glob(filepath.Join(s.wd, "pp.*"))
	if err != nil || len(matches) != 0 {
		t.Errorf("scratch files=%q, %v; want none", matches, err)
	}
}

func TestRun_Errors(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses unix paths")
	}
	ctx := context.Background()
	for _, tc := range []struct {
		name    string
		flags   func(s testSetup) []string
		dotErr  error
		gccOut  string
		want    string
	}{
		{
			name: "no build.ninja",
			flags: func(s testSetup) []string {
				return []string{"-z", s.project, "-b", s.project, "-t", "gcc", s.source}
			},
			want: "Did you specify a wrong build folder?",
		},
		{
			name: "not in build",
			flags: func(s testSetup) []string {
				return []string{"-z", s.project, "-b", s.buildDir, "-t", "gcc", s.kernelH}
			},
			want: "is not part of the build.",
		},
		{
			name: "render failure",
			flags: func(s testSetup) []string {
				return []string{"-z", s.project, "-b", s.buildDir, "-t", "gcc", s.source}
			},
			dotErr: execute.ExitError{ExitCode: 1},
			want:   "Failed to render the graph.\nIs the file [",
		},
		{
			name: "unbalanced",
			flags: func(s testSetup) []string {
				return []string{"-z", s.project, "-b", s.buildDir, "-t", "gcc", "-strict", s.source}
			},
			gccOut: "# 1 \"a.h\" 2\n",
			want:   "unbalanced line markers",
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			s := setup(t)
			var out bytes.Buffer
			c := &run{exec: fakeTools(t, s, tc.dotErr), out: &out}
			if tc.gccOut != "" {
				c.exec = execute.ExecutorFunc(func(ctx context.Context, cmd *execute.Cmd) error {
					fmt.Fprint(cmd.StdoutWriter(), tc.gccOut)
					return nil
				})
			}
			c.init()
			err := c.Flags.Parse(tc.flags(s))
			if err != nil {
				t.Fatal(err)
			}
			code := c.exitCode(c.run(ctx, c.Flags.Args()))
			if code != 1 {
				t.Errorf("exit code=%d; want 1", code)
			}
			if !strings.Contains(out.String(), tc.want) {
				t.Errorf("output doesn't contain %q\n%s", tc.want, out.String())
			}
			matches, err := filepath.Glob(filepath.Join(s.wd, "pp.*"))
			if err != nil || len(matches) != 0 {
				t.Errorf("scratch files=%q, %v; want none", matches, err)
			}
		})
	}
}
