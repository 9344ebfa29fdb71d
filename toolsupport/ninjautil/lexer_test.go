// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package ninjautil

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestFindNextLine(t *testing.T) {
	for _, tc := range []struct {
		name string
		buf  string
		want []string
	}{
		{
			name: "simple",
			buf:  "a\nb\n",
			want: []string{"a\n", "b\n"},
		},
		{
			name: "no trailing newline",
			buf:  "a\nb",
			want: []string{"a\n", "b"},
		},
		{
			name: "continuation",
			buf:  "  FLAGS = -O2 $\n    -g\nx\n",
			want: []string{"  FLAGS = -O2 $\n    -g\n", "x\n"},
		},
		{
			name: "crlf continuation",
			buf:  "a $\r\n b\r\nc\r\n",
			want: []string{"a $\r\n b\r\n", "c\r\n"},
		},
		{
			name: "escaped dollar",
			buf:  "a $$\nb\n",
			want: []string{"a $$\n", "b\n"},
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			buf := []byte(tc.buf)
			var got []string
			for s := 0; s < len(buf); {
				n := findNextLine(buf, s)
				got = append(got, string(buf[s:n]))
				s = n
			}
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("findNextLine(%q) diff -want +got:\n%s", tc.buf, diff)
			}
		})
	}
}

func TestIsStatement(t *testing.T) {
	for _, tc := range []struct {
		line string
		want int
		ok   bool
	}{
		{line: "build out: cc in", want: 6, ok: true},
		{line: "build\tout: cc in", want: 6, ok: true},
		{line: "builder = x", want: -1},
		{line: "build", want: -1},
		{line: "  build x: y", want: -1},
	} {
		got, ok := isStatement([]byte(tc.line), 0, []byte("build"))
		if got != tc.want || ok != tc.ok {
			t.Errorf("isStatement(%q)=%d, %t; want %d, %t", tc.line, got, ok, tc.want, tc.ok)
		}
	}
}
