// Copyright (C) 2026 Kleelab (maintainers@kleelab.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"github.com/kleelab/kleediff/cmd/kleediff/internal/sched"
)

// printEstimate renders the pass forecast before anything runs, so the
// operator can decide whether to start a multi-hour pass now.
func printEstimate(est sched.Estimate) {
	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Benchmarks", "Remaining", "Expected", "Worst Case")
	_ = table.Append(
		strconv.Itoa(est.Total),
		strconv.Itoa(est.Remaining),
		est.Expected.Round(time.Second).String(),
		est.Worst.Round(time.Second).String(),
	)
	if err := table.Render(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to render estimate: %v\n", err)
	}
}

// printSummary renders the end-of-pass report.
func printSummary(stats sched.Stats) {
	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Total", "Completed", "Skipped", "Failed", "Timed-Out Runs", "Elapsed")
	_ = table.Append(
		strconv.Itoa(stats.Total),
		strconv.Itoa(stats.Completed),
		strconv.Itoa(stats.Skipped),
		strconv.Itoa(stats.Failed),
		strconv.Itoa(stats.TimedOutRuns),
		stats.Elapsed.Round(time.Second).String(),
	)
	if err := table.Render(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to render summary: %v\n", err)
	}

	switch {
	case stats.Failed > 0:
		color.Yellow("%d benchmark(s) failed comparison and will be retried next pass.", stats.Failed)
	case stats.Completed == 0 && stats.Skipped == stats.Total:
		color.Green("Corpus already complete, nothing ran.")
	default:
		color.Green("Pass complete.")
	}
}
