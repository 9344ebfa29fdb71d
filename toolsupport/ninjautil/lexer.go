// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package ninjautil provides utilities for ninja manifests (build.ninja).
package ninjautil

import "bytes"

// findNextLine returns offset of next logical line from buf[s:].
// i.e. for `n := findNextLine(buf, s)`, buf[n:] will be next logical line,
// or end of buf. "$\n" and "$\r\n" continue the logical line, unless
// the '$' itself is escaped as "$$".
func findNextLine(buf []byte, s int) int {
	for {
		i := bytes.IndexByte(buf[s:], '\n')
		if i < 0 {
			return len(buf)
		}
		end := s + i
		if end > s && buf[end-1] == '\r' {
			end--
		}
		if dollars(buf[s:end])%2 == 1 {
			s = s + i + 1
			continue
		}
		return s + i + 1
	}
}

// dollars counts '$' at the end of b.
func dollars(b []byte) int {
	n := 0
	for i := len(b) - 1; i >= 0 && b[i] == '$'; i-- {
		n++
	}
	return n
}

// isStatement checks buf[i:] is a statement for name, and
// returns position after name if so.
func isStatement(buf []byte, i int, name []byte) (int, bool) {
	if !bytes.HasPrefix(buf[i:], name) {
		return -1, false
	}
	j := i + len(name)
	if j >= len(buf) {
		return -1, false
	}
	switch buf[j] {
	case ' ', '\t':
		return j + 1, true
	}
	return -1, false
}
