// Copyright (C) 2026 Kleelab (maintainers@kleelab.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package sched

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/kleelab/kleediff/cmd/kleediff/config"
	"github.com/kleelab/kleediff/cmd/kleediff/internal/compare"
	"github.com/kleelab/kleediff/cmd/kleediff/internal/corpus"
	"github.com/kleelab/kleediff/cmd/kleediff/internal/runner"
)

var (
	// ErrNilContext is returned when a nil context is passed to Run.
	ErrNilContext = errors.New("context cannot be nil")

	// ErrNilConfig is returned when New receives a nil config.
	ErrNilConfig = errors.New("config cannot be nil")
)

// InvocationBuilder maps a (variant, benchmark) pair to a runnable
// invocation, preparing the filesystem as a side effect.
type InvocationBuilder interface {
	Build(v runner.Variant, bench corpus.Entry) (runner.Invocation, error)
}

// ToolRunner executes one invocation under supervision.
type ToolRunner interface {
	Run(ctx context.Context, inv runner.Invocation) (runner.Result, error)
}

// Comparer writes the diff artifact for two variant output directories.
type Comparer interface {
	Compare(ctx context.Context, aDir, bDir, artifact string) error
}

// Stats summarizes one pass.
type Stats struct {
	// Total is the corpus size.
	Total int

	// Skipped counts benchmarks whose artifact already existed.
	Skipped int

	// Completed counts benchmarks whose artifact was written this pass.
	Completed int

	// Failed counts benchmarks whose comparison failed; they keep no
	// artifact and will be retried by the next pass.
	Failed int

	// TimedOutRuns counts individual variant runs that were killed.
	TimedOutRuns int

	// Elapsed is the pass wall-clock time.
	Elapsed time.Duration
}

// Estimate is the pass duration forecast shown before running.
type Estimate struct {
	// Total and Remaining count benchmarks; Remaining excludes those whose
	// artifact already exists.
	Total     int
	Remaining int

	// Expected assumes every remaining run uses its full time budget.
	Expected time.Duration

	// Worst additionally assumes every run has to be killed at the end of
	// its wait window.
	Worst time.Duration
}

// Scheduler runs one experiment pass.
type Scheduler struct {
	cfg      *config.Config
	variants []runner.Variant
	builder  InvocationBuilder
	tool     ToolRunner
	comparer Comparer
	strategy compare.Strategy
	logger   *slog.Logger

	// Progress, when set, is called after each benchmark is skipped,
	// completed or failed.
	Progress func(done, total int)
}

// New wires a Scheduler. The variants come from the configuration so the
// run order matches the configured order.
func New(
	cfg *config.Config,
	builder InvocationBuilder,
	tool ToolRunner,
	comparer Comparer,
	strategy compare.Strategy,
	logger *slog.Logger,
) (*Scheduler, error) {
	if cfg == nil {
		return nil, ErrNilConfig
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		cfg:      cfg,
		variants: runner.VariantsFromConfig(cfg),
		builder:  builder,
		tool:     tool,
		comparer: comparer,
		strategy: strategy,
		logger:   logger,
	}, nil
}

// artifactFor is the benchmark's diff artifact path under the current
// strategy.
func (s *Scheduler) artifactFor(bench corpus.Entry) (base, artifact string) {
	base = runner.OutputBaseDir(bench.Path, s.cfg.Benchmarks.OutputSuffix)
	return base, compare.ArtifactPath(base, s.strategy)
}

// Estimate forecasts the pass duration for the given corpus without
// running anything.
func (s *Scheduler) Estimate(entries []corpus.Entry) Estimate {
	est := Estimate{Total: len(entries)}
	for _, bench := range entries {
		if _, artifact := s.artifactFor(bench); !fileExists(artifact) {
			est.Remaining++
		}
	}
	perBench := s.cfg.Limits.MaxTime.Std() * time.Duration(len(s.variants))
	est.Expected = time.Duration(est.Remaining) * perBench
	est.Worst = est.Expected * time.Duration(s.cfg.Limits.KillScale)
	return est
}

// Run executes one pass over the corpus.
func (s *Scheduler) Run(ctx context.Context, entries []corpus.Entry) (Stats, error) {
	if ctx == nil {
		return Stats{}, ErrNilContext
	}

	stats := Stats{Total: len(entries)}
	start := time.Now()
	done := 0
	remaining := s.Estimate(entries).Remaining
	perBench := s.cfg.Limits.MaxTime.Std() * time.Duration(len(s.variants))

	for _, bench := range entries {
		base, artifact := s.artifactFor(bench)

		if fileExists(artifact) {
			s.logger.Debug("artifact exists, skipping", "benchmark", bench.Name, "artifact", artifact)
			stats.Skipped++
			done++
			s.report(done, stats.Total)
			continue
		}

		eta := time.Duration(remaining) * perBench
		s.logger.Info("benchmark starting",
			"benchmark", bench.Name,
			"position", fmt.Sprintf("%d/%d", done+1, stats.Total),
			"time_left", eta,
			"time_left_worst", eta*time.Duration(s.cfg.Limits.KillScale))
		remaining--

		dirs := make([]string, 0, len(s.variants))
		for _, v := range s.variants {
			inv, err := s.builder.Build(v, bench)
			if err != nil {
				stats.Elapsed = time.Since(start)
				return stats, fmt.Errorf("build %s/%s: %w", bench.Name, v.Name, err)
			}
			res, err := s.tool.Run(ctx, inv)
			if err != nil {
				stats.Elapsed = time.Since(start)
				return stats, fmt.Errorf("run %s/%s: %w", bench.Name, v.Name, err)
			}
			if res.TimedOut {
				stats.TimedOutRuns++
			}
			dirs = append(dirs, inv.OutputDir)
		}

		if err := s.comparer.Compare(ctx, dirs[0], dirs[1], artifact); err != nil {
			s.logger.Error("comparison failed, benchmark will be retried next pass",
				"benchmark", bench.Name,
				"base", base,
				"error", err)
			stats.Failed++
		} else {
			stats.Completed++
		}
		done++
		s.report(done, stats.Total)
	}

	stats.Elapsed = time.Since(start)
	return stats, nil
}

func (s *Scheduler) report(done, total int) {
	if s.Progress != nil {
		s.Progress(done, total)
	}
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
