// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package classify

import (
	"runtime"
	"testing"

	"github.com/google/go-cmp/cmp"

	"go.chromium.org/infra/build/incmap/build"
)

func TestClassify(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses unix paths")
	}
	bctx := &build.Context{
		ProjectDir:   "/home/foo",
		BuildDir:     "/home/foo/build",
		Source:       "/home/foo/samples/hello/src/main.c",
		ToolchainDir: "/opt/zephyr-sdk",
	}
	for _, tc := range []struct {
		node string
		want Classification
	}{
		{
			node: "/home/foo/build/zephyr/include/generated/autoconf.h",
			want: Classification{
				Category: Generated,
				Label:    "zephyr/\ninclude/\ngenerated/\nautoconf.h",
				Style:    Style{Color: "orange", Shape: "oval", Style: "filled"},
			},
		},
		{
			node: "/home/foo/samples/hello/src/main.c",
			want: Classification{
				Category: StartingFile,
				Label:    "samples/\nhello/\nsrc/\nmain.c",
				Style:    Style{Color: "green", Shape: "box", Style: "filled", FontName: "bold"},
			},
		},
		{
			node: "/opt/zephyr-sdk/arm-zephyr-eabi/include/stdint.h",
			want: Classification{
				Category: ToolchainHeader,
				Label:    "arm-zephyr-eabi/\ninclude/\nstdint.h",
				Style:    Style{Color: "lightgrey", Shape: "diamond", Style: "filled"},
			},
		},
		{
			node: "/home/foo/include/zephyr/kernel.h",
			want: Classification{
				Category: ProjectNative,
				Label:    "include/\nzephyr/\nkernel.h",
				Style:    Style{Color: "lightblue", Shape: "oval", Style: "filled"},
			},
		},
		{
			node: "/home/foobar/include/other.h",
			want: Classification{
				Category: External,
				Label:    "/home/foobar/include/other.h",
				Style:    Style{Color: "black", Shape: "oval"},
			},
		},
		{
			node: "/home/foo/buildx/a.h",
			want: Classification{
				Category: ProjectNative,
				Label:    "buildx/\na.h",
				Style:    Style{Color: "lightblue", Shape: "oval", Style: "filled"},
			},
		},
		{
			node: "<built-in>",
			want: Classification{
				Category: External,
				Label:    "<built-in>",
				Style:    Style{Color: "black", Shape: "oval"},
			},
		},
	} {
		got := Classify(tc.node, bctx)
		if diff := cmp.Diff(tc.want, got); diff != "" {
			t.Errorf("Classify(%q) diff -want +got:\n%s", tc.node, diff)
		}
	}
}

func TestClassify_NoToolchainDir(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses unix paths")
	}
	bctx := &build.Context{
		ProjectDir: "/home/foo",
		BuildDir:   "/tmp/build",
		Source:     "/home/foo/main.c",
	}
	got := Classify("/opt/zephyr-sdk/include/stdint.h", bctx)
	if got.Category != External {
		t.Errorf("Classify=%v; want %v", got.Category, External)
	}
}

func TestClassify_SourceInBuildDir(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses unix paths")
	}
	bctx := &build.Context{
		ProjectDir: "/home/foo",
		BuildDir:   "/home/foo/build",
		Source:     "/home/foo/build/gen/main.c",
	}
	got := Classify("/home/foo/build/gen/main.c", bctx)
	if got.Category != Generated {
		t.Errorf("Classify=%v; want %v", got.Category, Generated)
	}
}
