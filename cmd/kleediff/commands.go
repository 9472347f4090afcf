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

	"github.com/spf13/cobra"

	"github.com/kleelab/kleediff/cmd/kleediff/config"
)

// Exit codes for CLI commands.
const (
	CLIExitSuccess  = 0 // Pass completed, every benchmark has an artifact
	CLIExitFindings = 1 // Pass completed but some benchmarks failed comparison
	CLIExitError    = 2 // Pass aborted
)

// --- Global Command Variables ---
var (
	cfgPath    string
	quietMode  bool
	noProgress bool

	// cfg is loaded by the root PersistentPreRunE before any subcommand
	// runs.
	cfg *config.Config

	// passHadFailures is set by the run command when some benchmarks were
	// left without artifacts; Execute turns it into the findings exit code.
	passHadFailures bool

	rootCmd = &cobra.Command{
		Use:   "kleediff",
		Short: "Compare two symbolic execution configurations across a benchmark corpus",
		Long: `kleediff runs an analysis tool twice per benchmark, once per configured
variant, and records the behavioral difference between the two runs as a
unified diff artifact next to the benchmark's outputs.

Interrupted passes are resumable: benchmarks that already have a diff
artifact are skipped, so rerunning 'kleediff run' picks up where the last
pass stopped.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := config.Load(cfgPath)
			if err != nil {
				return err
			}
			cfg = loaded
			return nil
		},
	}

	runCmd = &cobra.Command{
		Use:   "run",
		Short: "Run one experiment pass over the benchmark corpus",
		RunE:  runPass, // Defined in cmd_run.go
	}

	estimateCmd = &cobra.Command{
		Use:   "estimate",
		Short: "Forecast how long a pass over the remaining corpus would take",
		RunE:  runEstimate, // Defined in cmd_estimate.go
	}
)

// init wires flags and the command tree.
func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "kleediff.yaml",
		"Path to the experiment configuration (created on first run)")

	rootCmd.AddCommand(runCmd)
	runCmd.Flags().BoolVar(&quietMode, "quiet", false,
		"Suppress harness diagnostics on stderr (the experiment log still gets everything)")
	runCmd.Flags().BoolVar(&noProgress, "no-progress", false,
		"Disable the progress bar (useful for CI logs)")

	rootCmd.AddCommand(estimateCmd)
}

// Execute runs the CLI and returns the process exit code.
func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return CLIExitError
	}
	if passHadFailures {
		return CLIExitFindings
	}
	return CLIExitSuccess
}
