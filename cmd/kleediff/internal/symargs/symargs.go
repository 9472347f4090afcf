// Copyright (C) 2026 Kleelab (maintainers@kleelab.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package symargs defines per-tool symbolic parameter profiles.
//
// A profile describes how many symbolic command-line arguments, files and
// standard-input bytes are synthesized for one analyzed tool. Profiles are
// keyed by the benchmark's tool identifier and fall back to a shared
// default, so a lookup can never fail. The table is defined once at process
// start and never mutated afterwards, which makes it safe to share without
// locking.
package symargs

import "strconv"

// ArgSpec is one symbolic argument group: between Min and Max arguments of
// at most Size bytes each.
type ArgSpec struct {
	Min  int
	Max  int
	Size int
}

// FileSpec describes symbolic files: Count files of Size bytes each.
type FileSpec struct {
	Count int
	Size  int
}

// Profile is the symbolic parameter specification for one tool.
//
// Profiles are immutable value objects; Tokens never mutates its receiver.
type Profile struct {
	// Args are the independent symbolic argument groups.
	Args []ArgSpec

	// Files, when non-nil, adds symbolic file inputs.
	Files *FileSpec

	// StdinSize, when positive, adds symbolic standard input of that
	// many bytes.
	StdinSize int
}

// Tokens renders the profile as argv tokens for the analysis tool.
//
// Each argument group becomes "--sym-args MIN MAX SIZE"; symbolic files
// become "--sym-files COUNT SIZE"; stdin becomes "--sym-stdin SIZE".
// Symbolic stdout is always requested last.
func (p Profile) Tokens() []string {
	var tokens []string
	for _, a := range p.Args {
		tokens = append(tokens,
			"--sym-args",
			strconv.Itoa(a.Min),
			strconv.Itoa(a.Max),
			strconv.Itoa(a.Size),
		)
	}
	if p.Files != nil {
		tokens = append(tokens,
			"--sym-files",
			strconv.Itoa(p.Files.Count),
			strconv.Itoa(p.Files.Size),
		)
	}
	if p.StdinSize > 0 {
		tokens = append(tokens, "--sym-stdin", strconv.Itoa(p.StdinSize))
	}
	return append(tokens, "--sym-stdout")
}

// Table maps tool identifiers to profiles with a guaranteed fallback.
type Table struct {
	profiles map[string]Profile
	fallback Profile
}

// NewTable builds a lookup table over the given profiles.
//
// The map is copied so later mutation of the argument cannot alias into
// the table.
func NewTable(profiles map[string]Profile, fallback Profile) *Table {
	copied := make(map[string]Profile, len(profiles))
	for k, v := range profiles {
		copied[k] = v
	}
	return &Table{profiles: copied, fallback: fallback}
}

// Lookup returns the profile for toolID, or the fallback when no specific
// entry exists. The two-step lookup keeps the table read-only: absence of
// a key never inserts anything.
func (t *Table) Lookup(toolID string) Profile {
	if p, ok := t.profiles[toolID]; ok {
		return p
	}
	return t.fallback
}

// Coreutils returns the stock table for GNU coreutils experiments.
//
// Sizes follow the published coreutils experiment setup
// (https://klee.github.io/docs/coreutils-experiments/); everything not
// listed gets the fallback profile.
func Coreutils() *Table {
	fallback := Profile{
		Args:      []ArgSpec{{0, 1, 10}, {0, 2, 2}},
		Files:     &FileSpec{1, 8},
		StdinSize: 8,
	}
	return NewTable(map[string]Profile{
		"dd":        {Args: []ArgSpec{{0, 3, 10}}, Files: &FileSpec{1, 8}, StdinSize: 8},
		"dircolors": {Args: []ArgSpec{{0, 3, 10}}, Files: &FileSpec{2, 12}, StdinSize: 12},
		"echo":      {Args: []ArgSpec{{0, 4, 300}}, Files: &FileSpec{2, 30}, StdinSize: 30},
		"expr":      {Args: []ArgSpec{{0, 1, 10}, {0, 3, 2}}},
		"mknod":     {Args: []ArgSpec{{0, 1, 10}, {0, 3, 2}}, Files: &FileSpec{1, 8}, StdinSize: 8},
		"od":        {Args: []ArgSpec{{0, 3, 10}}, Files: &FileSpec{2, 12}, StdinSize: 12},
		"pathchk":   {Args: []ArgSpec{{0, 1, 2}, {0, 1, 300}}, Files: &FileSpec{1, 8}, StdinSize: 8},
		"printf":    {Args: []ArgSpec{{0, 3, 10}}, Files: &FileSpec{2, 12}, StdinSize: 12},
	}, fallback)
}
