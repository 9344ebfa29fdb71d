// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package build

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// Config is the content of a config file (e.g. incmap.toml).
// Command line flags take precedence over it.
//
//	project_dir = "~/zephyr"
//	build_dir = "build"
//	compiler = "/opt/zephyr-sdk/arm-zephyr-eabi/bin/arm-zephyr-eabi-gcc"
//	toolchain_dir = "/opt/zephyr-sdk"
//	dot = "dot"
//	format = "pdf"
type Config struct {
	ProjectDir   string `toml:"project_dir"`
	BuildDir     string `toml:"build_dir"`
	Compiler     string `toml:"compiler"`
	ToolchainDir string `toml:"toolchain_dir"`
	Dot          string `toml:"dot"`
	Format       string `toml:"format"`
}

// LoadConfig loads a config file.
// Relative paths in the file are relative to the directory of the file.
// Unknown keys are an error.
func LoadConfig(fname string) (Config, error) {
	var cfg Config
	buf, err := os.ReadFile(fname)
	if err != nil {
		return cfg, err
	}
	err = toml.NewDecoder(bytes.NewReader(buf)).DisallowUnknownFields().Decode(&cfg)
	if err != nil {
		return cfg, fmt.Errorf("failed to parse %s: %w", fname, err)
	}
	dir := filepath.Dir(fname)
	cfg.ProjectDir = resolveDir(dir, cfg.ProjectDir)
	cfg.BuildDir = resolveDir(dir, cfg.BuildDir)
	cfg.ToolchainDir = resolveDir(dir, cfg.ToolchainDir)
	cfg.Compiler = resolveCommand(dir, cfg.Compiler)
	cfg.Dot = resolveCommand(dir, cfg.Dot)
	return cfg, nil
}

// Merge returns cfg overridden by the non-empty fields of o.
func (cfg Config) Merge(o Config) Config {
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&cfg.ProjectDir, o.ProjectDir)
	set(&cfg.BuildDir, o.BuildDir)
	set(&cfg.Compiler, o.Compiler)
	set(&cfg.ToolchainDir, o.ToolchainDir)
	set(&cfg.Dot, o.Dot)
	set(&cfg.Format, o.Format)
	return cfg
}

func resolveDir(base, dir string) string {
	if dir == "" {
		return ""
	}
	if home, ok := strings.CutPrefix(dir, "~/"); ok {
		if h, err := os.UserHomeDir(); err == nil {
			return filepath.Join(h, home)
		}
	}
	if filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(base, dir)
}

// resolveCommand resolves cmd as a path only if it has a directory
// part, so a bare "gcc" is still looked up in PATH.
func resolveCommand(base, cmd string) string {
	if !strings.ContainsRune(filepath.ToSlash(cmd), '/') {
		return cmd
	}
	return resolveDir(base, cmd)
}
