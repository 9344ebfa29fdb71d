// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package classify classifies files in an include graph for display.
package classify

import (
	"strings"

	"go.chromium.org/infra/build/incmap/build"
)

// Category is a category of a file.
type Category int

const (
	// External is a file outside of any known root.
	External Category = iota
	// Generated is a file in the build dir.
	Generated
	// StartingFile is the source file.
	StartingFile
	// ToolchainHeader is a file in the toolchain dir.
	ToolchainHeader
	// ProjectNative is a file in the project dir.
	ProjectNative
)

func (c Category) String() string {
	switch c {
	case Generated:
		return "generated"
	case StartingFile:
		return "start"
	case ToolchainHeader:
		return "toolchain"
	case ProjectNative:
		return "project"
	}
	return "external"
}

// Style is how a category is drawn.
type Style struct {
	Color    string
	Shape    string
	Style    string
	FontName string
}

// Styles are styles of categories.
var Styles = map[Category]Style{
	Generated:       {Color: "orange", Shape: "oval", Style: "filled"},
	StartingFile:    {Color: "green", Shape: "box", Style: "filled", FontName: "bold"},
	ToolchainHeader: {Color: "lightgrey", Shape: "diamond", Style: "filled"},
	ProjectNative:   {Color: "lightblue", Shape: "oval", Style: "filled"},
	External:        {Color: "black", Shape: "oval"},
}

// Rule matches a file to a category.
// Root returns the root dir the label is relative to, or "" to use the
// file path as is.
type Rule struct {
	Category Category
	Match    func(node string, bctx *build.Context) bool
	Root     func(bctx *build.Context) string
}

// Rules are evaluated in order, and the first match wins.
// A generated file may also be under the project dir, so Generated
// must come before ProjectNative.
var Rules = []Rule{
	{
		Category: Generated,
		Match: func(node string, bctx *build.Context) bool {
			return build.IsUnder(node, bctx.BuildDir)
		},
		Root: func(bctx *build.Context) string { return bctx.BuildDir },
	},
	{
		Category: StartingFile,
		Match: func(node string, bctx *build.Context) bool {
			return node == bctx.Source
		},
		Root: func(bctx *build.Context) string { return bctx.ProjectDir },
	},
	{
		Category: ToolchainHeader,
		Match: func(node string, bctx *build.Context) bool {
			return bctx.ToolchainDir != "" && build.IsUnder(node, bctx.ToolchainDir)
		},
		Root: func(bctx *build.Context) string { return bctx.ToolchainDir },
	},
	{
		Category: ProjectNative,
		Match: func(node string, bctx *build.Context) bool {
			return build.IsUnder(node, bctx.ProjectDir)
		},
		Root: func(bctx *build.Context) string { return bctx.ProjectDir },
	},
}

// Classification is a category of a file and how to draw it.
type Classification struct {
	Category Category
	Label    string
	Style
}

// Classify classifies node, a canonical path (or an unresolved path
// reported by the preprocessor).
func Classify(node string, bctx *build.Context) Classification {
	for _, r := range Rules {
		if !r.Match(node, bctx) {
			continue
		}
		return Classification{
			Category: r.Category,
			Label:    label(node, r.Root(bctx)),
			Style:    Styles[r.Category],
		}
	}
	return Classification{
		Category: External,
		Label:    node,
		Style:    Styles[External],
	}
}

// label returns node relative to root, with a line break after
// each '/'.
func label(node, root string) string {
	rel, ok := build.Rel(root, node)
	if !ok {
		return node
	}
	return strings.ReplaceAll(rel, "/", "/\n")
}
