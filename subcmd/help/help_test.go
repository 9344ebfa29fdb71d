// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package help

import (
	"bytes"
	"flag"
	"io"
	"strings"
	"testing"

	"github.com/maruel/subcommands"
)

type testApp struct {
	*subcommands.DefaultApplication
	out bytes.Buffer
}

func (a *testApp) GetOut() io.Writer { return &a.out }

func TestHelp(t *testing.T) {
	a := &testApp{
		DefaultApplication: &subcommands.DefaultApplication{
			Name:     "incmap",
			Title:    "test",
			Commands: []*subcommands.Command{Cmd()},
		},
	}
	t.Cleanup(func() {
		flag.CommandLine.SetOutput(nil)
	})
	r := Cmd().CommandRun()
	if got := r.Run(a, nil, nil); got != 0 {
		t.Fatalf("Run=%d; want 0", got)
	}
	got := a.out.String()
	want := example + "Common flags accepted by all commands:\n"
	if !strings.Contains(got, want) {
		t.Errorf("help output=%q; want to contain %q", got, want)
	}
}
