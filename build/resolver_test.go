// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package build

import (
	"os"
	"path/filepath"
	"testing"
)

func TestResolver(t *testing.T) {
	dir, err := Canonicalize(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	err = os.MkdirAll(filepath.Join(dir, "out", "gen"), 0755)
	if err != nil {
		t.Fatal(err)
	}
	err = os.WriteFile(filepath.Join(dir, "out", "gen", "autoconf.h"), nil, 0644)
	if err != nil {
		t.Fatal(err)
	}
	r, err := NewResolver(filepath.Join(dir, "out"), 0)
	if err != nil {
		t.Fatal(err)
	}

	for _, tc := range []struct {
		in   string
		want string
	}{
		{
			in:   "gen/autoconf.h",
			want: filepath.Join(dir, "out", "gen", "autoconf.h"),
		},
		{
			in:   filepath.Join(dir, "out", "..", "out", "gen", "autoconf.h"),
			want: filepath.Join(dir, "out", "gen", "autoconf.h"),
		},
		{
			in:   "<built-in>",
			want: "<built-in>",
		},
		{
			in:   "/nonexistent/sdk/include/stdint.h",
			want: "/nonexistent/sdk/include/stdint.h",
		},
	} {
		// twice to exercise the cache.
		for i := 0; i < 2; i++ {
			got := r.Resolve(tc.in)
			if got != tc.want {
				t.Errorf("Resolve(%q)=%q; want %q", tc.in, got, tc.want)
			}
		}
	}
}
