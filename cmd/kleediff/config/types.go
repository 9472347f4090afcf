// Copyright (C) 2026 Kleelab (maintainers@kleelab.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration with YAML support for values like "60s".
type Duration time.Duration

// UnmarshalYAML parses a duration string ("60s", "2m", "1h30m").
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML renders the duration in time.Duration string form.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Config is the complete experiment configuration.
//
// One Config is built at process start and threaded by reference into the
// builder, the supervisor and the scheduler; there are no mutable package
// globals holding experiment settings.
type Config struct {
	// Benchmarks locates the corpus.
	Benchmarks BenchmarksConfig `yaml:"benchmarks"`

	// Tool holds the analysis tool binaries and their fixed inputs.
	Tool ToolConfig `yaml:"tool"`

	// Limits are the per-run time and resource budgets.
	Limits LimitsConfig `yaml:"limits"`

	// Variants are the two tool configurations under comparison.
	Variants []VariantConfig `yaml:"variants" validate:"len=2,dive"`

	// Compare selects and tunes the comparison strategy.
	Compare CompareConfig `yaml:"compare"`

	// Log configures the experiment log.
	Log LogConfig `yaml:"log"`
}

// BenchmarksConfig locates and filters the benchmark corpus.
type BenchmarksConfig struct {
	// Root is the directory scanned for benchmarks. It is also the
	// working directory of every supervised tool process.
	Root string `yaml:"root" validate:"required"`

	// Extension filters corpus entries, e.g. ".bc" for LLVM bitcode.
	// Default: ".bc"
	Extension string `yaml:"extension"`

	// OutputSuffix names per-benchmark output trees: <path>-<suffix>.
	// Default: "klee-out"
	OutputSuffix string `yaml:"output_suffix"`
}

// ToolConfig holds the executables and fixed invocation inputs.
type ToolConfig struct {
	// KleeBin is the analysis tool executable.
	KleeBin string `yaml:"klee_bin" validate:"required"`

	// KleeStatsBin is the statistics companion executable. Only used by
	// the "stats" comparison strategy.
	KleeStatsBin string `yaml:"klee_stats_bin"`

	// EnvFile is passed to the tool as --env-file.
	// Default: <benchmarks.root>/test.env
	EnvFile string `yaml:"env_file"`

	// SandboxDir is the shared working directory the tool runs inside
	// (--run-in-dir). It is destructively reset before every run, which
	// is why runs are strictly sequential.
	// Default: /tmp/kleediff-sandbox
	SandboxDir string `yaml:"sandbox_dir"`

	// MaxMemoryMB caps the tool's memory (--max-memory).
	// Default: 1000
	MaxMemoryMB int `yaml:"max_memory_mb"`

	// MaxSymArraySize caps symbolic array sizes (--max-sym-array-size).
	// Default: 4096
	MaxSymArraySize int `yaml:"max_sym_array_size"`
}

// LimitsConfig holds the per-run time budgets.
type LimitsConfig struct {
	// MaxTime is the tool's own wall-clock budget (--max-time) and the
	// base of the supervisor's wait window.
	// Default: 60s
	MaxTime Duration `yaml:"max_time"`

	// MaxSolverTime is the per-query solver budget (--max-solver-time).
	// Default: 15s
	MaxSolverTime Duration `yaml:"max_solver_time"`

	// KillScale multiplies MaxTime into the supervisor's wait window. A
	// run still alive after MaxTime * KillScale is forcibly killed.
	// Default: 2, minimum: 1
	KillScale int `yaml:"kill_scale"`
}

// VariantConfig names one tool configuration under comparison.
type VariantConfig struct {
	// Name is used as an output subdirectory segment, so it must be a
	// single path element.
	Name string `yaml:"name" validate:"required,pathsegment"`

	// ExtraFlags are appended after the baseline flag set.
	ExtraFlags []string `yaml:"extra_flags"`
}

// CompareConfig selects the comparison strategy.
type CompareConfig struct {
	// Strategy is "stats" (diff klee-stats output) or "info" (diff the
	// raw info files).
	// Default: "stats"
	Strategy string `yaml:"strategy" validate:"omitempty,oneof=info stats"`

	// ContextLines is the unified diff context width.
	// Default: 3
	ContextLines int `yaml:"context_lines"`
}

// LogConfig configures the experiment log.
type LogConfig struct {
	// File is the experiment log path.
	// Default: <benchmarks.root>/kleediff.log
	File string `yaml:"file"`

	// Level is debug, info, warn or error.
	// Default: "info"
	Level string `yaml:"level" validate:"omitempty,oneof=debug info warn error"`
}

// validate is the validator instance for config types.
// Initialized in init() with the pathsegment custom validator.
var validate *validator.Validate

func init() {
	validate = validator.New()
	// pathsegment accepts names usable as a single directory name.
	_ = validate.RegisterValidation("pathsegment", func(fl validator.FieldLevel) bool {
		name := fl.Field().String()
		if name == "" || name == "." || name == ".." {
			return false
		}
		return !strings.ContainsAny(name, "/\\\x00")
	})
}

// DefaultConfig returns a Config with the stock coreutils experiment
// settings. Paths default under /tmp so a generated file is runnable after
// editing only benchmarks.root and tool.klee_bin.
func DefaultConfig() *Config {
	return &Config{
		Benchmarks: BenchmarksConfig{
			Root:         "/tmp",
			Extension:    ".bc",
			OutputSuffix: "klee-out",
		},
		Tool: ToolConfig{
			KleeBin:         "/usr/local/bin/klee",
			KleeStatsBin:    "/usr/local/bin/klee-stats",
			SandboxDir:      "/tmp/kleediff-sandbox",
			MaxMemoryMB:     1000,
			MaxSymArraySize: 4096,
		},
		Limits: LimitsConfig{
			MaxTime:       Duration(60 * time.Second),
			MaxSolverTime: Duration(15 * time.Second),
			KillScale:     2,
		},
		Variants: []VariantConfig{
			{Name: "baseline"},
			{Name: "candidate", ExtraFlags: []string{"--disable-blacklist"}},
		},
		Compare: CompareConfig{
			Strategy:     "stats",
			ContextLines: 3,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Validate checks the configuration and fills derived defaults.
//
// Structural problems (missing required fields, unsafe variant names,
// duplicate variant names) are errors; merely-missing tunables are clamped
// to their defaults.
func (c *Config) Validate() error {
	if c.Benchmarks.Extension == "" {
		c.Benchmarks.Extension = ".bc"
	}
	if !strings.HasPrefix(c.Benchmarks.Extension, ".") {
		c.Benchmarks.Extension = "." + c.Benchmarks.Extension
	}
	if c.Benchmarks.OutputSuffix == "" {
		c.Benchmarks.OutputSuffix = "klee-out"
	}
	if c.Tool.EnvFile == "" && c.Benchmarks.Root != "" {
		c.Tool.EnvFile = filepath.Join(c.Benchmarks.Root, "test.env")
	}
	if c.Tool.SandboxDir == "" {
		c.Tool.SandboxDir = "/tmp/kleediff-sandbox"
	}
	if c.Tool.MaxMemoryMB <= 0 {
		c.Tool.MaxMemoryMB = 1000
	}
	if c.Tool.MaxSymArraySize <= 0 {
		c.Tool.MaxSymArraySize = 4096
	}
	if c.Limits.MaxTime <= 0 {
		c.Limits.MaxTime = Duration(60 * time.Second)
	}
	if c.Limits.MaxSolverTime <= 0 {
		c.Limits.MaxSolverTime = Duration(15 * time.Second)
	}
	if c.Limits.KillScale < 1 {
		c.Limits.KillScale = 2
	}
	if c.Compare.Strategy == "" {
		c.Compare.Strategy = "stats"
	}
	if c.Compare.ContextLines <= 0 {
		c.Compare.ContextLines = 3
	}
	if c.Log.File == "" && c.Benchmarks.Root != "" {
		c.Log.File = filepath.Join(c.Benchmarks.Root, "kleediff.log")
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}

	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	// Variant names double as directory names under one output base, so
	// they must be distinct.
	seen := make(map[string]struct{}, len(c.Variants))
	for _, v := range c.Variants {
		if _, dup := seen[v.Name]; dup {
			return fmt.Errorf("invalid configuration: duplicate variant name %q", v.Name)
		}
		seen[v.Name] = struct{}{}
	}
	return nil
}

// WaitBudget is the supervisor's total wait window for one run.
func (c *Config) WaitBudget() time.Duration {
	return c.Limits.MaxTime.Std() * time.Duration(c.Limits.KillScale)
}
