// Copyright (C) 2026 Kleelab (maintainers@kleelab.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package compare

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/kleelab/kleediff/cmd/kleediff/config"
)

// Strategy extracts comparable content from one variant's output directory.
type Strategy interface {
	// Lines returns the directory's comparable content split with line
	// endings kept, plus a label identifying the content's source for the
	// diff header.
	Lines(ctx context.Context, outDir string) ([]string, string, error)

	// ArtifactName is the diff artifact's base name, without extension.
	// It differs per strategy so that switching strategies restarts the
	// corpus rather than silently reusing the other strategy's markers.
	ArtifactName() string
}

// NewStrategy builds the configured strategy.
func NewStrategy(cfg *config.Config, logger *slog.Logger) (Strategy, error) {
	switch cfg.Compare.Strategy {
	case "info":
		return &InfoFiles{}, nil
	case "stats":
		if cfg.Tool.KleeStatsBin == "" {
			return nil, ErrNoStatsBinary
		}
		return NewStatsTool(cfg.Tool.KleeStatsBin, nil, logger), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, cfg.Compare.Strategy)
	}
}

// ====== INFO FILE STRATEGY ======

// InfoFiles compares the tool's raw info files verbatim.
type InfoFiles struct{}

// Compile-time interface check.
var _ Strategy = (*InfoFiles)(nil)

// Lines reads <outDir>/info. A missing or unreadable info file is an
// error: the run is supposed to have produced one even when killed, and a
// diff of fabricated content would be worse than no artifact.
func (s *InfoFiles) Lines(ctx context.Context, outDir string) ([]string, string, error) {
	if ctx == nil {
		return nil, "", ErrNilContext
	}
	path := filepath.Join(outDir, "info")
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("read info file: %w", err)
	}
	return difflib.SplitLines(string(raw)), path, nil
}

// ArtifactName implements Strategy.
func (s *InfoFiles) ArtifactName() string { return "info" }

// ====== STATS TOOL STRATEGY ======

// CommandRunner abstracts capturing a command's stdout so the stats
// strategy is testable without the real statistics binary.
type CommandRunner interface {
	// Output runs the command and returns its stdout.
	Output(ctx context.Context, name string, args ...string) ([]byte, error)
}

// DefaultCommandRunner executes commands with os/exec.
type DefaultCommandRunner struct{}

// Compile-time interface check.
var _ CommandRunner = (*DefaultCommandRunner)(nil)

// Output implements CommandRunner.
func (r *DefaultCommandRunner) Output(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

// MockCommandRunner records calls and plays back canned results.
type MockCommandRunner struct {
	// Calls records every invocation as the full argv.
	Calls [][]string

	// Results maps the first argument (the target directory) to canned
	// stdout. Unmapped targets use Err.
	Results map[string][]byte

	// Err is returned for targets missing from Results.
	Err error
}

// Compile-time interface check.
var _ CommandRunner = (*MockCommandRunner)(nil)

// Output implements CommandRunner.
func (r *MockCommandRunner) Output(ctx context.Context, name string, args ...string) ([]byte, error) {
	r.Calls = append(r.Calls, append([]string{name}, args...))
	if len(args) > 0 {
		if out, ok := r.Results[args[0]]; ok {
			return out, nil
		}
	}
	return nil, r.Err
}

// StatsTool compares the derived output of the statistics companion binary
// rather than the raw files, which filters out noise like absolute paths
// and timestamps that differ between runs of identical behavior.
type StatsTool struct {
	bin    string
	run    CommandRunner
	logger *slog.Logger
}

// Compile-time interface check.
var _ Strategy = (*StatsTool)(nil)

// NewStatsTool returns a StatsTool strategy invoking bin. A nil runner
// gets the default os/exec runner.
func NewStatsTool(bin string, run CommandRunner, logger *slog.Logger) *StatsTool {
	if run == nil {
		run = &DefaultCommandRunner{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &StatsTool{bin: bin, run: run, logger: logger}
}

// Lines runs the statistics binary over outDir and returns its stdout. A
// failing statistics run degrades rather than aborts: the failure is
// logged and whatever stdout was captured is compared, so one corrupted
// output directory costs a noisy artifact instead of the whole pass.
func (s *StatsTool) Lines(ctx context.Context, outDir string) ([]string, string, error) {
	if ctx == nil {
		return nil, "", ErrNilContext
	}
	// Label with the bare binary name so artifacts do not vary with where
	// the binary happens to be installed.
	label := filepath.Base(s.bin) + " " + outDir
	out, err := s.run.Output(ctx, s.bin, outDir)
	if err != nil {
		s.logger.Warn("stats binary failed, comparing partial output",
			"binary", s.bin,
			"dir", outDir,
			"error", err)
	}
	return difflib.SplitLines(string(out)), label, nil
}

// ArtifactName implements Strategy.
func (s *StatsTool) ArtifactName() string { return "klee_stats_diff" }
