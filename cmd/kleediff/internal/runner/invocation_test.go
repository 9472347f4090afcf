// Copyright (C) 2026 Kleelab (maintainers@kleelab.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package runner

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kleelab/kleediff/cmd/kleediff/config"
	"github.com/kleelab/kleediff/cmd/kleediff/internal/corpus"
	"github.com/kleelab/kleediff/cmd/kleediff/internal/symargs"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	root := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.Benchmarks.Root = root
	cfg.Tool.KleeBin = "/usr/local/bin/klee"
	cfg.Tool.EnvFile = filepath.Join(root, "test.env")
	cfg.Tool.SandboxDir = filepath.Join(root, "sandbox")
	cfg.Log.File = filepath.Join(root, "kleediff.log")
	require.NoError(t, cfg.Validate())
	return cfg
}

func testEntry(t *testing.T, cfg *config.Config, name string) corpus.Entry {
	t.Helper()
	path := filepath.Join(cfg.Benchmarks.Root, name)
	require.NoError(t, os.WriteFile(path, []byte("bc"), 0o644))
	return corpus.Entry{Path: path, Name: name}
}

func TestNewBuilder_NilConfig(t *testing.T) {
	_, err := NewBuilder(nil, symargs.Coreutils())
	assert.ErrorIs(t, err, ErrNilConfig)
}

func TestBuild_CommandLine(t *testing.T) {
	cfg := testConfig(t)
	b, err := NewBuilder(cfg, symargs.Coreutils())
	require.NoError(t, err)

	bench := testEntry(t, cfg, "echo.bc")
	v := Variant{Name: "candidate", ExtraFlags: []string{"--disable-blacklist"}}

	inv, err := b.Build(v, bench)
	require.NoError(t, err)

	assert.Equal(t, cfg.Tool.KleeBin, inv.Binary)
	assert.Equal(t, cfg.Benchmarks.Root, inv.Dir)

	wantOut := filepath.Join(bench.Path+"-klee-out", "candidate")
	assert.Equal(t, wantOut, inv.OutputDir)

	assert.Equal(t, "--simplify-sym-indices", inv.Args[0])
	assert.Contains(t, inv.Args, "--max-memory=1000")
	assert.Contains(t, inv.Args, "--max-solver-time=15s")
	assert.Contains(t, inv.Args, "--max-time=60")
	assert.Contains(t, inv.Args, "--env-file="+cfg.Tool.EnvFile)
	assert.Contains(t, inv.Args, "--run-in-dir="+cfg.Tool.SandboxDir)
	assert.Contains(t, inv.Args, "--output-dir="+wantOut)

	// Variant flags sit after the baseline set and before the benchmark
	// path, so repeating a baseline flag lets the later value win.
	flagIdx := indexOf(t, inv.Args, "--disable-blacklist")
	benchIdx := indexOf(t, inv.Args, bench.Path)
	outIdx := indexOf(t, inv.Args, "--output-dir="+wantOut)
	assert.Greater(t, flagIdx, outIdx)
	assert.Greater(t, benchIdx, flagIdx)

	// Symbolic parameters follow the benchmark path. echo has a dedicated
	// profile; every profile ends with --sym-stdout.
	assert.Greater(t, indexOf(t, inv.Args, "--sym-args"), benchIdx)
	assert.Equal(t, "--sym-stdout", inv.Args[len(inv.Args)-1])
}

func TestBuild_SameInputsSameCommand(t *testing.T) {
	cfg := testConfig(t)
	b, err := NewBuilder(cfg, symargs.Coreutils())
	require.NoError(t, err)

	bench := testEntry(t, cfg, "od.bc")
	v := Variant{Name: "baseline"}

	first, err := b.Build(v, bench)
	require.NoError(t, err)
	second, err := b.Build(v, bench)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestBuild_ClearsStaleOutputDir(t *testing.T) {
	cfg := testConfig(t)
	b, err := NewBuilder(cfg, symargs.Coreutils())
	require.NoError(t, err)

	bench := testEntry(t, cfg, "dd.bc")
	v := Variant{Name: "baseline"}

	stale := filepath.Join(bench.Path+"-klee-out", "baseline")
	require.NoError(t, os.MkdirAll(stale, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(stale, "info"), []byte("old"), 0o644))

	inv, err := b.Build(v, bench)
	require.NoError(t, err)

	// The tool creates its own output directory, so after Build the path
	// must not exist but its parent must.
	_, statErr := os.Stat(inv.OutputDir)
	assert.True(t, os.IsNotExist(statErr))
	parent, statErr := os.Stat(filepath.Dir(inv.OutputDir))
	require.NoError(t, statErr)
	assert.True(t, parent.IsDir())
}

func TestBuild_ResetsSandbox(t *testing.T) {
	cfg := testConfig(t)
	b, err := NewBuilder(cfg, symargs.Coreutils())
	require.NoError(t, err)

	bench := testEntry(t, cfg, "expr.bc")

	require.NoError(t, os.MkdirAll(cfg.Tool.SandboxDir, 0o755))
	leftover := filepath.Join(cfg.Tool.SandboxDir, "A")
	require.NoError(t, os.WriteFile(leftover, []byte("x"), 0o644))

	_, err = b.Build(Variant{Name: "baseline"}, bench)
	require.NoError(t, err)

	entries, err := os.ReadDir(cfg.Tool.SandboxDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestVariantsFromConfig(t *testing.T) {
	cfg := testConfig(t)
	variants := VariantsFromConfig(cfg)
	require.Len(t, variants, 2)
	assert.Equal(t, "baseline", variants[0].Name)
	assert.Equal(t, "candidate", variants[1].Name)
	assert.Equal(t, []string{"--disable-blacklist"}, variants[1].ExtraFlags)
}

func TestOutputBaseDir(t *testing.T) {
	assert.Equal(t, "/corpus/echo.bc-klee-out", OutputBaseDir("/corpus/echo.bc", "klee-out"))
}

func indexOf(t *testing.T, args []string, want string) int {
	t.Helper()
	for i, a := range args {
		if a == want {
			return i
		}
	}
	t.Fatalf("argument %q not found in %v", want, args)
	return -1
}
