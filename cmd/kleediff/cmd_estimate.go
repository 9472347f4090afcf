// Copyright (C) 2026 Kleelab (maintainers@kleelab.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kleelab/kleediff/cmd/kleediff/internal/corpus"
	"github.com/kleelab/kleediff/pkg/logging"
)

// runEstimate forecasts a pass without running anything. It only inspects
// which diff artifacts already exist, so it is safe to run while a pass is
// in flight.
func runEstimate(cmd *cobra.Command, args []string) error {
	entries, err := corpus.Discover(cfg.Benchmarks.Root, cfg.Benchmarks.Extension)
	if err != nil {
		return err
	}

	scheduler, err := buildScheduler(logging.Default())
	if err != nil {
		return err
	}

	est := scheduler.Estimate(entries)
	printEstimate(est)
	if est.Remaining == 0 && est.Total > 0 {
		fmt.Println("All benchmarks already have artifacts; a pass would be a no-op.")
	}
	return nil
}
