// Copyright 2023 The Chromium Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package execute runs commands.
package execute

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"go.chromium.org/infra/build/incmap/toolsupport/shutil"
)

// Executor is an interface to run the cmd.
type Executor interface {
	Run(ctx context.Context, cmd *Cmd) error
}

// ExecutorFunc adapts an ordinary function to Executor.
type ExecutorFunc func(ctx context.Context, cmd *Cmd) error

// Run calls f(ctx, cmd).
func (f ExecutorFunc) Run(ctx context.Context, cmd *Cmd) error {
	return f(ctx, cmd)
}

// Cmd includes all the information required to run an external tool
// (the preprocessor or the graph renderer).
type Cmd struct {
	// ID is used as an identifier for this command in logs.
	// Example: "preprocess main.c"
	ID string

	// Args holds command line arguments.
	Args []string

	// Env specifies the environment of the process.
	// nil means the current process's environment.
	Env []string

	// Dir specifies the working directory of the cmd.
	// Empty means the current directory.
	Dir string

	// Output receives the standard output byte-for-byte.
	// If nil, it is captured in memory and available by Stdout().
	Output io.Writer

	stdoutBuffer, stderrBuffer bytes.Buffer
}

func (c *Cmd) String() string {
	return fmt.Sprintf("%s: %s", c.ID, shutil.Join(c.Args))
}

// StdoutWriter returns the writer for the standard output.
func (c *Cmd) StdoutWriter() io.Writer {
	if c.Output != nil {
		return c.Output
	}
	return &c.stdoutBuffer
}

// StderrWriter returns the writer for the standard error.
func (c *Cmd) StderrWriter() io.Writer {
	return &c.stderrBuffer
}

// Stdout returns the captured standard output, if Output was nil.
func (c *Cmd) Stdout() []byte {
	return c.stdoutBuffer.Bytes()
}

// Stderr returns the captured standard error.
func (c *Cmd) Stderr() []byte {
	return c.stderrBuffer.Bytes()
}

// ExitError is an error of cmd exit.
type ExitError struct {
	ExitCode int
}

func (e ExitError) Error() string {
	return fmt.Sprintf("exit=%d", e.ExitCode)
}
