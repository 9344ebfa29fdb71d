// Copyright 2023 The Chromium Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package shutil

import "strings"

// Join joins command line args to a single string that Split
// (and /bin/sh) parses back into the same args.
func Join(args []string) string {
	quoted := make([]string, 0, len(args))
	for _, arg := range args {
		quoted = append(quoted, Quote(arg))
	}
	return strings.Join(quoted, " ")
}

// Quote quotes arg for /bin/sh if needed.
func Quote(arg string) string {
	if arg == "" {
		return `''`
	}
	if !strings.ContainsAny(arg, " \t\n\"'\\;&|<>$#`*?()[]{}~") {
		return arg
	}
	return "'" + strings.ReplaceAll(arg, "'", `'\''`) + "'"
}
