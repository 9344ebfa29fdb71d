// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package build

import (
	"path/filepath"
	"runtime"
	"strings"
)

// Canonicalize returns the canonical form of path: absolute, symlinks
// resolved, cleaned, and lower-cased on windows.
// If path doesn't exist, it returns the cleaned absolute path (still
// lower-cased on windows) with the error.
func Canonicalize(path string) (string, error) {
	p, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	r, err := filepath.EvalSymlinks(p)
	if err != nil {
		return foldCase(filepath.Clean(p)), err
	}
	return foldCase(filepath.Clean(r)), nil
}

func foldCase(path string) string {
	if runtime.GOOS == "windows" {
		return strings.ToLower(path)
	}
	return path
}

// IsUnder reports whether path is root or lies under root.
// Both must be canonical. It compares whole path segments, so
// "/home/foobar" is not under "/home/foo".
func IsUnder(path, root string) bool {
	if root == "" {
		return false
	}
	if path == root {
		return true
	}
	prefix := root
	if !strings.HasSuffix(prefix, string(filepath.Separator)) {
		prefix += string(filepath.Separator)
	}
	return strings.HasPrefix(path, prefix)
}

// Rel returns path relative to root, slash-separated.
// It returns false if path is not under root.
func Rel(root, path string) (string, bool) {
	if !IsUnder(path, root) {
		return "", false
	}
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return "", false
	}
	return filepath.ToSlash(rel), true
}
