// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package shutil provides shell-like command line utilities.
package shutil

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNeedsShell is returned by Split when the cmdline uses shell features
// (pipes, redirects, expansions, ...) that can't be expressed as plain args.
var ErrNeedsShell = errors.New("cmdline needs shell")

// Split splits a command line into args.
// It supports single quotes, double quotes and backslash escapes.
// It returns an error wrapping ErrNeedsShell for shell metachars.
func Split(cmdline string) ([]string, error) {
	var args []string
	var sb strings.Builder
	inword := false
	var quote rune
	escaped := false
	for _, ch := range cmdline {
		if escaped {
			if quote == '"' && !strings.ContainsRune(`"\$`+"`", ch) {
				sb.WriteByte('\\')
			}
			sb.WriteRune(ch)
			escaped = false
			continue
		}
		switch quote {
		case '\'':
			if ch == '\'' {
				quote = 0
				continue
			}
			sb.WriteRune(ch)
			continue
		case '"':
			switch ch {
			case '"':
				quote = 0
			case '\\':
				escaped = true
			case '$', '`':
				return nil, fmt.Errorf("failed to split: %w: expansion %c in double quote", ErrNeedsShell, ch)
			default:
				sb.WriteRune(ch)
			}
			continue
		}
		switch ch {
		case ' ', '\t', '\n':
			if inword {
				args = append(args, sb.String())
				sb.Reset()
				inword = false
			}
			continue
		case '\\':
			escaped = true
		case '\'', '"':
			quote = ch
		case '#':
			if !inword {
				return nil, fmt.Errorf("failed to split: %w: comment", ErrNeedsShell)
			}
			sb.WriteRune(ch)
		case ';', '&', '|', '<', '>', '$', '`':
			return nil, fmt.Errorf("failed to split: %w: metachar %c", ErrNeedsShell, ch)
		default:
			sb.WriteRune(ch)
		}
		inword = true
	}
	if escaped {
		return nil, fmt.Errorf("failed to split: trailing backslash in %q", cmdline)
	}
	if quote != 0 {
		return nil, fmt.Errorf("failed to split: unterminated %c in %q", quote, cmdline)
	}
	if inword {
		args = append(args, sb.String())
	}
	return args, nil
}
