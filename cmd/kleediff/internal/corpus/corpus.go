// Copyright (C) 2026 Kleelab (maintainers@kleelab.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package corpus discovers benchmark programs for an experiment pass.
package corpus

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Entry identifies one benchmark in the corpus.
//
// Entries are read-only value objects; the scheduler shares them across a
// whole pass without copying state into them.
type Entry struct {
	// Path is the absolute or root-relative path to the benchmark file.
	Path string

	// Name is the file name, e.g. "echo.bc".
	Name string
}

// ToolID is the benchmark's canonical tool identifier: the file name with
// its extension stripped ("echo.bc" -> "echo"). Symbolic parameter profiles
// are keyed by this identifier.
func (e Entry) ToolID() string {
	return strings.TrimSuffix(e.Name, filepath.Ext(e.Name))
}

// Discover enumerates benchmarks in root with the given extension.
//
// Hidden entries and directories are skipped. The returned order is the
// directory's lexical order and is the iteration order of a pass; no
// reordering happens downstream.
//
// Inputs:
//
//	root - benchmarks directory
//	ext - required extension including the dot, e.g. ".bc"
//
// Outputs:
//
//	[]Entry - discovered benchmarks, possibly empty
//	error - non-nil if the directory cannot be read
func Discover(root, ext string) ([]Entry, error) {
	dirents, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("scan benchmarks root %s: %w", root, err)
	}

	var entries []Entry
	for _, de := range dirents {
		name := de.Name()
		if de.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}
		if !strings.HasSuffix(name, ext) {
			continue
		}
		entries = append(entries, Entry{
			Path: filepath.Join(root, name),
			Name: name,
		})
	}
	return entries, nil
}
