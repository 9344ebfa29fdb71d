// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package includegraph

import (
	"strconv"
	"strings"
)

// Kind is a kind of line marker.
type Kind int

const (
	// Other is a marker that doesn't change the include stack,
	// e.g. `# 1 "<built-in>"` or `# 12 "foo.h" 3`.
	Other Kind = iota
	// Enter is a marker for entering an included file (flag 1).
	Enter
	// Return is a marker for returning to the includer (flag 2).
	Return
)

func (k Kind) String() string {
	switch k {
	case Enter:
		return "enter"
	case Return:
		return "return"
	}
	return "other"
}

// Marker is a line marker in preprocessed text.
//
//	# <line> "<path>" <flags>...
//
// See https://gcc.gnu.org/onlinedocs/cpp/Preprocessor-Output.html
type Marker struct {
	Line  int
	Path  string
	Flags []int
}

// Kind returns the kind of the marker, determined by the first flag.
func (m Marker) Kind() Kind {
	if len(m.Flags) == 0 {
		return Other
	}
	switch m.Flags[0] {
	case 1:
		return Enter
	case 2:
		return Return
	}
	return Other
}

// ParseMarker parses line as a line marker.
// It returns false if line is not a line marker.
func ParseMarker(line []byte) (Marker, bool) {
	var m Marker
	if len(line) < 2 || line[0] != '#' {
		return m, false
	}
	i := skipSpaces(line, 1)
	if i == 1 {
		// "#include", "#pragma" etc.
		return m, false
	}
	j := i
	for j < len(line) && line[j] >= '0' && line[j] <= '9' {
		j++
	}
	if j == i {
		return m, false
	}
	n, err := strconv.Atoi(string(line[i:j]))
	if err != nil {
		return m, false
	}
	m.Line = n
	i = skipSpaces(line, j)
	if i == j || i >= len(line) || line[i] != '"' {
		return m, false
	}
	path, k, ok := unquote(line, i+1)
	if !ok {
		return m, false
	}
	m.Path = path
	for _, f := range strings.Fields(string(line[k:])) {
		v, err := strconv.Atoi(f)
		if err != nil || v < 0 {
			return m, false
		}
		m.Flags = append(m.Flags, v)
	}
	return m, true
}

func skipSpaces(line []byte, i int) int {
	for i < len(line) && (line[i] == ' ' || line[i] == '\t') {
		i++
	}
	return i
}

// unquote decodes the quoted string in line starting at i (after the
// opening '"'), and returns it with the offset after the closing '"'.
// Backslash escapes are `\\`, `\"` and octal `\ooo`.
func unquote(line []byte, i int) (string, int, bool) {
	var sb strings.Builder
	for ; i < len(line); i++ {
		ch := line[i]
		switch ch {
		case '"':
			return sb.String(), i + 1, true
		case '\\':
			i++
			if i >= len(line) {
				return "", 0, false
			}
			if isOctal(line[i]) {
				v := 0
				n := 0
				for ; n < 3 && i < len(line) && isOctal(line[i]); n++ {
					v = v*8 + int(line[i]-'0')
					i++
				}
				i--
				sb.WriteByte(byte(v))
				continue
			}
			sb.WriteByte(line[i])
		default:
			sb.WriteByte(ch)
		}
	}
	return "", 0, false
}

func isOctal(ch byte) bool {
	return ch >= '0' && ch <= '7'
}
