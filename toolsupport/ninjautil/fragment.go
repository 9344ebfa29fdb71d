// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package ninjautil

import (
	"bytes"
	"errors"
	"fmt"
	"runtime"
	"strings"
)

// ErrTargetNotInBuild is returned when no build statement in the
// manifest compiles the requested source file.
var ErrTargetNotInBuild = errors.New("target file is not part of this build")

// Binding names of the compile variables in a build statement.
const (
	Includes = "INCLUDES"
	Defines  = "DEFINES"
	Flags    = "FLAGS"
)

// Fragment is the part of a ninja manifest that describes how one source
// file is compiled: the lines after its build statement, up to the next
// build statement.
type Fragment struct {
	header string
	lines  []string
}

// Header returns the build statement line that matched.
func (f *Fragment) Header() string { return f.header }

// Lines returns the logical lines of the fragment, verbatim.
// A line continued with "$\n" is a single logical line.
func (f *Fragment) Lines() []string { return f.lines }

// Value returns the value of the first line containing marker,
// i.e. the text after the leftmost '=' followed by whitespace.
// It returns "" if no line contains marker or the line has no value.
// Line continuations are folded and ninja escapes ($$, "$ ", $:) are
// decoded; variable references are left as is.
func (f *Fragment) Value(marker string) string {
	for _, line := range f.lines {
		if !strings.Contains(line, marker) {
			continue
		}
		return bindingValue(line)
	}
	return ""
}

func bindingValue(line string) string {
	for i := 0; i < len(line)-1; i++ {
		if line[i] != '=' {
			continue
		}
		switch line[i+1] {
		case ' ', '\t':
			return unescape(strings.TrimSpace(foldLines(line[i+1:])))
		}
	}
	return ""
}

// foldLines joins "$\n" (or "$\r\n") continuations, dropping the
// indentation of the continued line.
func foldLines(s string) string {
	var sb strings.Builder
	for {
		i := strings.Index(s, "$\n")
		j := strings.Index(s, "$\r\n")
		if i < 0 && j < 0 {
			sb.WriteString(s)
			return sb.String()
		}
		n := 2
		if i < 0 || (j >= 0 && j < i) {
			i = j
			n = 3
		}
		if !isContinuation(s[:i+1]) {
			// "$$" followed by newline: escaped '$' at the end of line.
			sb.WriteString(s[:i+1])
			s = s[i+1:]
			continue
		}
		sb.WriteString(s[:i])
		s = strings.TrimLeft(s[i+n:], " \t")
	}
}

// isContinuation reports whether the '$' at the end of s is unescaped.
func isContinuation(s string) bool {
	n := 0
	for i := len(s) - 1; i >= 0 && s[i] == '$'; i-- {
		n++
	}
	return n%2 == 1
}

// unescape decodes ninja's "$$", "$ " and "$:" escapes.
func unescape(s string) string {
	if !strings.Contains(s, "$") {
		return s
	}
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '$' && i+1 < len(s) {
			switch s[i+1] {
			case '$', ' ', ':':
				sb.WriteByte(s[i+1])
				i++
				continue
			}
		}
		sb.WriteByte(s[i])
	}
	return sb.String()
}

// Locate finds the build statement that compiles relPath in a ninja
// manifest buf, and returns the lines after it up to the next build
// statement (or the end of buf).
//
// relPath is the source file relative to the project root, with '/'
// separators. A build statement matches if one of its explicit inputs
// is relPath or ends with "/"+relPath. The first match wins.
// On windows, paths are compared case-insensitively.
func Locate(buf []byte, relPath string) (*Fragment, error) {
	return locate(buf, relPath, runtime.GOOS == "windows")
}

func locate(buf []byte, relPath string, fold bool) (*Fragment, error) {
	var frag *Fragment
	for s := 0; s < len(buf); {
		n := findNextLine(buf, s)
		line := trimEOL(buf[s:n])
		s = n
		if frag == nil {
			if matchBuild(line, relPath, fold) {
				frag = &Fragment{header: string(line)}
			}
			continue
		}
		if _, ok := buildColon(line); ok {
			break
		}
		frag.lines = append(frag.lines, string(line))
	}
	if frag == nil || len(frag.lines) == 0 {
		return nil, fmt.Errorf("%s: %w", relPath, ErrTargetNotInBuild)
	}
	return frag, nil
}

func trimEOL(line []byte) []byte {
	line = bytes.TrimSuffix(line, []byte("\n"))
	return bytes.TrimSuffix(line, []byte("\r"))
}

// buildColon returns the offset of the first unescaped ':' if line is
// a build statement.
func buildColon(line []byte) (int, bool) {
	i, ok := isStatement(line, 0, []byte("build"))
	if !ok {
		return -1, false
	}
	for ; i < len(line); i++ {
		switch line[i] {
		case '$':
			i++
		case ':':
			return i, true
		}
	}
	return -1, false
}

func matchBuild(line []byte, relPath string, fold bool) bool {
	i, ok := buildColon(line)
	if !ok {
		return false
	}
	paths := splitPaths(string(line[i+1:]))
	if len(paths) == 0 {
		return false
	}
	// paths[0] is the rule name.
	for _, p := range paths[1:] {
		if p == "|" || p == "||" || p == "|@" {
			break
		}
		if matchPath(p, relPath, fold) {
			return true
		}
	}
	return false
}

// matchPath reports whether p is relPath or ends with "/"+relPath.
func matchPath(p, relPath string, fold bool) bool {
	if !fold {
		return p == relPath || strings.HasSuffix(p, "/"+relPath)
	}
	if len(p) < len(relPath) {
		return false
	}
	tail := p[len(p)-len(relPath):]
	if !strings.EqualFold(tail, relPath) {
		return false
	}
	return len(p) == len(relPath) || p[len(p)-len(relPath)-1] == '/'
}

// splitPaths splits a build statement's rule name and paths, decoding
// ninja escapes.
func splitPaths(s string) []string {
	var paths []string
	var sb strings.Builder
	flush := func() {
		if sb.Len() > 0 {
			paths = append(paths, sb.String())
			sb.Reset()
		}
	}
	for i := 0; i < len(s); i++ {
		ch := s[i]
		switch ch {
		case ' ', '\t', '\r', '\n':
			flush()
			continue
		case '$':
			if i+1 >= len(s) {
				continue
			}
			i++
			switch s[i] {
			case '\r', '\n':
				// line continuation.
				flush()
			default:
				sb.WriteByte(s[i])
			}
			continue
		}
		sb.WriteByte(ch)
	}
	flush()
	return paths
}
