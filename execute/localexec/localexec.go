// Copyright 2023 The Chromium Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package localexec implements local command execution.
package localexec

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"syscall"
	"time"

	log "github.com/golang/glog"

	"go.chromium.org/infra/build/incmap/execute"
	"go.chromium.org/infra/build/incmap/o11y/clog"
)

// LocalExec implements execute.Executor interface that runs commands locally.
type LocalExec struct{}

// Run runs cmd with LocalExec.
func Run(ctx context.Context, cmd *execute.Cmd) error {
	return LocalExec{}.Run(ctx, cmd)
}

// Run runs a cmd.
// It has no timeout; it returns when the process exits or ctx is cancelled.
// A non-zero exit is reported as execute.ExitError.
func (LocalExec) Run(ctx context.Context, cmd *execute.Cmd) error {
	if len(cmd.Args) == 0 {
		return fmt.Errorf("no arguments in the command. ID: %s", cmd.ID)
	}
	c := exec.CommandContext(ctx, cmd.Args[0], cmd.Args[1:]...)
	c.Env = cmd.Env
	c.Dir = cmd.Dir
	c.Stdout = cmd.StdoutWriter()
	c.Stderr = cmd.StderrWriter()
	s := time.Now()
	err := c.Run()
	code := exitCode(err)
	if log.V(1) {
		clog.Infof(ctx, "%s exit=%d stderr=%d %s: %v", cmd.ID, code, len(cmd.Stderr()), time.Since(s), err)
	}
	if err != nil && code < 0 {
		// failed to start the process.
		return fmt.Errorf("failed to run %q: %w", cmd.Args, err)
	}
	if code != 0 {
		return execute.ExitError{ExitCode: code}
	}
	return nil
}

func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var eerr *exec.ExitError
	if !errors.As(err, &eerr) {
		return -1
	}
	if w, ok := eerr.ProcessState.Sys().(syscall.WaitStatus); ok {
		if w.Signaled() {
			return 128 + int(w.Signal())
		}
		return w.ExitStatus()
	}
	return 1
}
