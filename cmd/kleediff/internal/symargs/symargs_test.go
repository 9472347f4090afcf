// Copyright (C) 2026 Kleelab (maintainers@kleelab.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package symargs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfile_Tokens_Full(t *testing.T) {
	p := Profile{
		Args:      []ArgSpec{{0, 1, 10}, {0, 2, 2}},
		Files:     &FileSpec{1, 8},
		StdinSize: 8,
	}
	assert.Equal(t, []string{
		"--sym-args", "0", "1", "10",
		"--sym-args", "0", "2", "2",
		"--sym-files", "1", "8",
		"--sym-stdin", "8",
		"--sym-stdout",
	}, p.Tokens())
}

func TestProfile_Tokens_ArgsOnly(t *testing.T) {
	p := Profile{Args: []ArgSpec{{0, 3, 10}}}
	assert.Equal(t, []string{
		"--sym-args", "0", "3", "10",
		"--sym-stdout",
	}, p.Tokens())
}

func TestProfile_Tokens_AlwaysSymStdout(t *testing.T) {
	assert.Equal(t, []string{"--sym-stdout"}, Profile{}.Tokens())
}

func TestTable_Lookup_SpecificEntry(t *testing.T) {
	table := Coreutils()
	p := table.Lookup("echo")
	require.Len(t, p.Args, 1)
	assert.Equal(t, ArgSpec{0, 4, 300}, p.Args[0])
	require.NotNil(t, p.Files)
	assert.Equal(t, FileSpec{2, 30}, *p.Files)
	assert.Equal(t, 30, p.StdinSize)
}

func TestTable_Lookup_FallbackForUnknown(t *testing.T) {
	table := Coreutils()

	// A tool with no specific entry gets exactly the fallback tokens.
	got := table.Lookup("no-such-tool").Tokens()
	want := []string{
		"--sym-args", "0", "1", "10",
		"--sym-args", "0", "2", "2",
		"--sym-files", "1", "8",
		"--sym-stdin", "8",
		"--sym-stdout",
	}
	assert.Equal(t, want, got)

	// Lookups never insert: a second lookup of the same unknown key
	// still matches the fallback, and known keys are unaffected.
	assert.Equal(t, want, table.Lookup("no-such-tool").Tokens())
	assert.NotEqual(t, want, table.Lookup("echo").Tokens())
}

func TestNewTable_CopiesProfiles(t *testing.T) {
	src := map[string]Profile{"x": {Args: []ArgSpec{{0, 1, 1}}}}
	table := NewTable(src, Profile{})
	delete(src, "x")
	assert.Len(t, table.Lookup("x").Args, 1)
}

func TestTable_Lookup_ExprHasNoFilesOrStdin(t *testing.T) {
	p := Coreutils().Lookup("expr")
	assert.Nil(t, p.Files)
	assert.Zero(t, p.StdinSize)
	assert.Equal(t, []string{
		"--sym-args", "0", "1", "10",
		"--sym-args", "0", "3", "2",
		"--sym-stdout",
	}, p.Tokens())
}
