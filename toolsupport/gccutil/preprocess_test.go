// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package gccutil_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"

	"go.chromium.org/infra/build/incmap/execute"
	"go.chromium.org/infra/build/incmap/toolsupport/gccutil"
)

func TestPreprocessArgs(t *testing.T) {
	for _, tc := range []struct {
		name  string
		flags []string
		want  []string
	}{
		{
			name:  "order",
			flags: []string{"-Os", "-imacros", "/b/autoconf.h"},
			want: []string{
				"/sdk/bin/gcc", "-E",
				"-DKERNEL", "-D__ZEPHYR__=1",
				"-I/z/include", "-isystem", "/sdk/include",
				"-Os", "-imacros", "/b/autoconf.h",
				"/z/lib/os/printk.c",
			},
		},
		{
			name: "separateFlag",
			flags: []string{
				"-Os", "-MD", "-MT", "out.o", "-MF", "out.o.d",
				"-o", "out.o", "-c", "-g",
			},
			want: []string{
				"/sdk/bin/gcc", "-E",
				"-DKERNEL", "-D__ZEPHYR__=1",
				"-I/z/include", "-isystem", "/sdk/include",
				"-Os", "-g",
				"/z/lib/os/printk.c",
			},
		},
		{
			name:  "joinedFlag",
			flags: []string{"-MMD", "-MFout.o.d", "-oout.o", "-MQout.o", "-Wall"},
			want: []string{
				"/sdk/bin/gcc", "-E",
				"-DKERNEL", "-D__ZEPHYR__=1",
				"-I/z/include", "-isystem", "/sdk/include",
				"-Wall",
				"/z/lib/os/printk.c",
			},
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			got := gccutil.PreprocessArgs(
				"/sdk/bin/gcc",
				[]string{"-DKERNEL", "-D__ZEPHYR__=1"},
				[]string{"-I/z/include", "-isystem", "/sdk/include"},
				tc.flags,
				"/z/lib/os/printk.c")
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("gccutil.PreprocessArgs(..., %q, ...): diff (-want +got):\n%s", tc.flags, diff)
			}
		})
	}
}

func TestShellArgs(t *testing.T) {
	got := gccutil.ShellArgs("/sdk/bin/gcc", `-DNAME=\"$BOARD\"`, []string{"-I/my dir"}, "", "/z/main.c")
	want := []string{"/bin/sh", "-c", `/sdk/bin/gcc -E -DNAME=\"$BOARD\" '-I/my dir' /z/main.c`}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("gccutil.ShellArgs: diff (-want +got):\n%s", diff)
	}
}

func TestShellArgs_Flags(t *testing.T) {
	for _, tc := range []struct {
		name  string
		flags string
		want  string
	}{
		{
			name:  "output and depfile",
			flags: "-Os -MD -MT obj/main.c.obj -MF obj/main.c.obj.d -o obj/main.c.obj -c $(EXTRA)",
			want:  "/sdk/bin/gcc -E -Os $(EXTRA) /z/main.c",
		},
		{
			name:  "joined",
			flags: "-Os -oobj/main.c.obj -MFobj/main.c.obj.d `cat extra.flags`",
			want:  "/sdk/bin/gcc -E -Os `cat extra.flags` /z/main.c",
		},
		{
			name:  "quoted",
			flags: `-Os -D'X=a -o b' -o obj/main.c.obj`,
			want:  `/sdk/bin/gcc -E -Os -D'X=a -o b' -o obj/main.c.obj /z/main.c`,
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			got := gccutil.ShellArgs("/sdk/bin/gcc", "", nil, tc.flags, "/z/main.c")
			want := []string{"/bin/sh", "-c", tc.want}
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("gccutil.ShellArgs(flags=%q): diff (-want +got):\n%s", tc.flags, diff)
			}
		})
	}
}

func TestScratchName(t *testing.T) {
	if got, want := gccutil.ScratchName("/z/lib/os/printk.c"), "pp.printk.c"; got != want {
		t.Errorf("gccutil.ScratchName=%q; want=%q", got, want)
	}
}

func TestRemoveScratch(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"pp.main.c", "pp.printk.c", "main.c", "IncludeMap_main.c.gv"} {
		err := os.WriteFile(filepath.Join(dir, name), nil, 0644)
		if err != nil {
			t.Fatal(err)
		}
	}
	err := gccutil.RemoveScratch(dir)
	if err != nil {
		t.Fatalf("gccutil.RemoveScratch(%q)=%v; want nil", dir, err)
	}
	ents, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	var got []string
	for _, ent := range ents {
		got = append(got, ent.Name())
	}
	sort.Strings(got)
	want := []string{"IncludeMap_main.c.gv", "main.c"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("files after RemoveScratch: diff (-want +got):\n%s", diff)
	}
}

func TestPreprocess(t *testing.T) {
	ctx := context.Background()
	const out = "# 1 \"main.c\"\n# 1 \"a.h\" 1\n# 2 \"main.c\" 2\nint main() {}\n"
	for _, tc := range []struct {
		name    string
		run     execute.ExecutorFunc
		want    string
		wantErr bool
	}{
		{
			name: "ok",
			run: func(ctx context.Context, cmd *execute.Cmd) error {
				fmt.Fprint(cmd.StdoutWriter(), out)
				return nil
			},
			want: out,
		},
		{
			name: "exitError",
			run: func(ctx context.Context, cmd *execute.Cmd) error {
				fmt.Fprint(cmd.StdoutWriter(), "# 1 \"main.c\"\n")
				fmt.Fprint(cmd.StderrWriter(), "main.c:1: fatal error: a.h: No such file or directory\n")
				return execute.ExitError{ExitCode: 1}
			},
			want: "# 1 \"main.c\"\n",
		},
		{
			name: "startError",
			run: func(ctx context.Context, cmd *execute.Cmd) error {
				return errors.New("exec: \"gcc\": executable file not found in $PATH")
			},
			wantErr: true,
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			dir := t.TempDir()
			scratch := filepath.Join(dir, gccutil.ScratchName("main.c"))
			args := []string{"gcc", "-E", "main.c"}
			var gotCmd *execute.Cmd
			ex := execute.ExecutorFunc(func(ctx context.Context, cmd *execute.Cmd) error {
				gotCmd = cmd
				return tc.run(ctx, cmd)
			})
			err := gccutil.Preprocess(ctx, ex, args, dir, scratch)
			if tc.wantErr {
				if err == nil {
					t.Errorf("gccutil.Preprocess=nil; want error")
				}
				return
			}
			if err != nil {
				t.Fatalf("gccutil.Preprocess=%v; want nil", err)
			}
			if diff := cmp.Diff(args, gotCmd.Args); diff != "" {
				t.Errorf("cmd.Args: diff (-want +got):\n%s", diff)
			}
			if gotCmd.Dir != dir {
				t.Errorf("cmd.Dir=%q; want=%q", gotCmd.Dir, dir)
			}
			buf, err := os.ReadFile(scratch)
			if err != nil {
				t.Fatal(err)
			}
			if got := string(buf); got != tc.want {
				t.Errorf("scratch=%q; want=%q", got, tc.want)
			}
		})
	}
}
