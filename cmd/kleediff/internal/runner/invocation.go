// Copyright (C) 2026 Kleelab (maintainers@kleelab.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package runner

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/kleelab/kleediff/cmd/kleediff/config"
	"github.com/kleelab/kleediff/cmd/kleediff/internal/corpus"
	"github.com/kleelab/kleediff/cmd/kleediff/internal/symargs"
)

// Variant is one tool configuration under comparison.
type Variant struct {
	// Name is the output subdirectory segment for this configuration.
	Name string

	// ExtraFlags are appended after the baseline flag set, before the
	// benchmark path.
	ExtraFlags []string
}

// VariantsFromConfig converts the configured variant list.
func VariantsFromConfig(cfg *config.Config) []Variant {
	variants := make([]Variant, 0, len(cfg.Variants))
	for _, vc := range cfg.Variants {
		variants = append(variants, Variant{Name: vc.Name, ExtraFlags: vc.ExtraFlags})
	}
	return variants
}

// OutputBaseDir is the per-benchmark output tree, shared by all variants:
// <benchmark path>-<suffix>.
func OutputBaseDir(benchPath, suffix string) string {
	return benchPath + "-" + suffix
}

// OutputDir is this variant's subtree of the benchmark's output base.
func (v Variant) OutputDir(baseDir string) string {
	return filepath.Join(baseDir, v.Name)
}

// Invocation is a fully resolved tool command, ready to supervise.
type Invocation struct {
	// Binary is the tool executable.
	Binary string

	// Args is the complete argument vector, excluding the binary name.
	Args []string

	// Dir is the child's working directory.
	Dir string

	// OutputDir is where the tool will write its results. The builder
	// guarantees its parent exists and the path itself does not; the tool
	// creates it.
	OutputDir string

	// Variant and Benchmark identify the run for logging and reporting.
	Variant   string
	Benchmark corpus.Entry
}

// String renders the command line the way a shell would see it.
func (inv Invocation) String() string {
	return inv.Binary + " " + strings.Join(inv.Args, " ")
}

// Builder deterministically maps (variant, benchmark) pairs to invocations.
//
// Build has filesystem side effects: it resets the shared sandbox and clears
// the run's output directory. Both must happen immediately before the run,
// so construction and execution are not separable steps.
type Builder struct {
	cfg      *config.Config
	profiles *symargs.Table
}

// NewBuilder returns a Builder over the given configuration and symbolic
// parameter profiles.
func NewBuilder(cfg *config.Config, profiles *symargs.Table) (*Builder, error) {
	if cfg == nil {
		return nil, ErrNilConfig
	}
	if profiles == nil {
		profiles = symargs.Coreutils()
	}
	return &Builder{cfg: cfg, profiles: profiles}, nil
}

// Build prepares the filesystem for one run and returns its invocation.
//
// The output directory is removed if it exists; the tool refuses to start
// into a pre-existing --output-dir and creates it itself. Its parent base
// directory is created so sibling variants can coexist. The shared sandbox
// is recreated empty. Any failure here is fatal to the experiment pass:
// running against a half-reset sandbox would corrupt the comparison.
func (b *Builder) Build(v Variant, bench corpus.Entry) (Invocation, error) {
	base := OutputBaseDir(bench.Path, b.cfg.Benchmarks.OutputSuffix)
	outDir := v.OutputDir(base)

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return Invocation{}, fmt.Errorf("prepare output base %s: %w", base, err)
	}
	if err := os.RemoveAll(outDir); err != nil {
		return Invocation{}, fmt.Errorf("clear output dir %s: %w", outDir, err)
	}

	if err := os.RemoveAll(b.cfg.Tool.SandboxDir); err != nil {
		return Invocation{}, fmt.Errorf("clear sandbox %s: %w", b.cfg.Tool.SandboxDir, err)
	}
	if err := os.MkdirAll(b.cfg.Tool.SandboxDir, 0o755); err != nil {
		return Invocation{}, fmt.Errorf("create sandbox %s: %w", b.cfg.Tool.SandboxDir, err)
	}

	args := b.baselineFlags(outDir)
	args = append(args, v.ExtraFlags...)
	args = append(args, bench.Path)
	args = append(args, b.profiles.Lookup(bench.ToolID()).Tokens()...)

	return Invocation{
		Binary:    b.cfg.Tool.KleeBin,
		Args:      args,
		Dir:       b.cfg.Benchmarks.Root,
		OutputDir: outDir,
		Variant:   v.Name,
		Benchmark: bench,
	}, nil
}

// baselineFlags is the flag set shared by every variant. Variant flags are
// appended after it, so a variant can override a baseline setting by
// repeating the flag.
func (b *Builder) baselineFlags(outDir string) []string {
	t := b.cfg.Tool
	l := b.cfg.Limits
	return []string{
		"--simplify-sym-indices",
		fmt.Sprintf("--max-memory=%d", t.MaxMemoryMB),
		"--optimize",
		"--libc=uclibc",
		"--posix-runtime",
		"--external-calls=all",
		"--only-output-states-covering-new",
		"--env-file=" + t.EnvFile,
		"--run-in-dir=" + t.SandboxDir,
		fmt.Sprintf("--max-sym-array-size=%d", t.MaxSymArraySize),
		"--max-solver-time=" + l.MaxSolverTime.Std().String(),
		fmt.Sprintf("--max-time=%d", int(l.MaxTime.Std().Seconds())),
		"--watchdog",
		"--max-static-fork-pct=1",
		"--max-static-solve-pct=1",
		"--max-static-cpfork-pct=1",
		"--switch-type=internal",
		"--output-dir=" + outDir,
	}
}
