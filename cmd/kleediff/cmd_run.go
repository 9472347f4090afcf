// Copyright (C) 2026 Kleelab (maintainers@kleelab.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/kleelab/kleediff/cmd/kleediff/internal/compare"
	"github.com/kleelab/kleediff/cmd/kleediff/internal/corpus"
	"github.com/kleelab/kleediff/cmd/kleediff/internal/proclock"
	"github.com/kleelab/kleediff/cmd/kleediff/internal/runner"
	"github.com/kleelab/kleediff/cmd/kleediff/internal/sched"
	"github.com/kleelab/kleediff/cmd/kleediff/internal/symargs"
	"github.com/kleelab/kleediff/pkg/logging"
)

// runPass executes one experiment pass: discover the corpus, forecast the
// duration, run every incomplete benchmark under both variants and compare
// the results.
func runPass(cmd *cobra.Command, args []string) error {
	logger, err := logging.New(logging.Config{
		Level:   logging.ParseLevel(cfg.Log.Level),
		LogFile: cfg.Log.File,
		Service: "kleediff",
		Quiet:   quietMode,
	})
	if err != nil {
		return err
	}
	defer logger.Close()

	// Every pass gets its own ID so interleaved passes in one experiment
	// log can be told apart.
	passLog := logger.With("pass_id", uuid.New().String())

	// Runs share a sandbox directory, so two concurrent passes over the
	// same sandbox would corrupt each other. The lock lives next to the
	// sandbox (not inside it, the sandbox gets reset every run), so passes
	// with disjoint sandboxes do not serialize.
	lock := proclock.New(filepath.Dir(cfg.Tool.SandboxDir))
	if err := lock.Acquire(); err != nil {
		return err
	}
	defer lock.Release()

	entries, err := corpus.Discover(cfg.Benchmarks.Root, cfg.Benchmarks.Extension)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		passLog.Warn("no benchmarks found",
			"root", cfg.Benchmarks.Root,
			"extension", cfg.Benchmarks.Extension)
		fmt.Printf("No %s benchmarks under %s, nothing to do.\n",
			cfg.Benchmarks.Extension, cfg.Benchmarks.Root)
		return nil
	}

	scheduler, err := buildScheduler(passLog)
	if err != nil {
		return err
	}

	est := scheduler.Estimate(entries)
	printEstimate(est)
	passLog.Info("pass starting",
		"benchmarks", est.Total,
		"remaining", est.Remaining,
		"expected", est.Expected,
		"worst_case", est.Worst)

	if !noProgress && !quietMode {
		bar := progressbar.NewOptions(len(entries),
			progressbar.OptionSetDescription("Benchmarks"),
			progressbar.OptionSetWidth(40),
			progressbar.OptionShowCount(),
		)
		scheduler.Progress = func(done, total int) {
			_ = bar.Set(done)
		}
	}

	stats, err := scheduler.Run(context.Background(), entries)
	if !quietMode {
		fmt.Println()
		printSummary(stats)
	}
	if err != nil {
		passLog.Error("pass aborted", "error", err)
		return err
	}

	passLog.Info("pass finished",
		"completed", stats.Completed,
		"skipped", stats.Skipped,
		"failed", stats.Failed,
		"timed_out_runs", stats.TimedOutRuns,
		"elapsed", stats.Elapsed)

	if stats.Failed > 0 {
		passHadFailures = true
	}
	return nil
}

// buildScheduler wires the pass components against the loaded config.
func buildScheduler(logger *logging.Logger) (*sched.Scheduler, error) {
	strategy, err := compare.NewStrategy(cfg, logger.Slog())
	if err != nil {
		return nil, err
	}

	builder, err := runner.NewBuilder(cfg, symargs.Coreutils())
	if err != nil {
		return nil, err
	}

	supervisor := runner.NewSupervisor(cfg.WaitBudget(), logger.Sink(), logger.Slog())
	comparer := compare.NewComparator(strategy, cfg.Compare.ContextLines)

	return sched.New(cfg, builder, supervisor, comparer, strategy, logger.Slog())
}
