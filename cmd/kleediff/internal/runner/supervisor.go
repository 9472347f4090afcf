// Copyright (C) 2026 Kleelab (maintainers@kleelab.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"syscall"
	"time"
)

// Result describes one supervised run.
type Result struct {
	// ExitCode is the child's exit status, or -1 when it was killed or the
	// status could not be determined. Nonzero codes are outcomes, not
	// errors; the tool exits nonzero for many benchmarks it still analyzed.
	ExitCode int

	// TimedOut is true when the run outlived the wait window and was
	// forcibly killed.
	TimedOut bool

	// Duration is the wall-clock time from spawn to reaped.
	Duration time.Duration
}

// Supervisor runs invocations under a bounded wait window.
//
// The window is the tool's own wall-clock budget scaled by the kill factor,
// giving a well-behaved tool time to wind down on its own. A run still alive
// when the window elapses is killed outright and always reaped before the
// next run starts, because the next run will reset the shared sandbox.
type Supervisor struct {
	wait   time.Duration
	sink   io.Writer
	logger *slog.Logger
}

// NewSupervisor returns a Supervisor with the given wait window. Child
// stdout and stderr both go to sink; the tool is chatty on stderr and the
// experiment log is the only place that output is wanted.
func NewSupervisor(wait time.Duration, sink io.Writer, logger *slog.Logger) *Supervisor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Supervisor{wait: wait, sink: sink, logger: logger}
}

// Run spawns the invocation and waits for it, killing it when the wait
// window elapses or ctx is cancelled.
//
// A spawn failure is an error. Everything after a successful spawn is a
// Result: exit status and timeouts are experimental outcomes.
func (s *Supervisor) Run(ctx context.Context, inv Invocation) (Result, error) {
	if ctx == nil {
		return Result{}, ErrNilContext
	}

	cmd := exec.Command(inv.Binary, inv.Args...)
	cmd.Dir = inv.Dir
	cmd.Stdout = s.sink
	cmd.Stderr = s.sink
	// The tool forks helpers (its watchdog runs the real analysis in a
	// child). Give the run its own process group so a kill reaches every
	// descendant; an orphan would keep using the sandbox and hold the
	// output streams open past the wait window.
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	s.logger.Info("starting run",
		"benchmark", inv.Benchmark.Name,
		"variant", inv.Variant,
		"command", inv.String())

	start := time.Now()
	if err := cmd.Start(); err != nil {
		return Result{}, fmt.Errorf("start %s: %w", inv.Binary, err)
	}

	done := make(chan error, 1)
	go func() {
		done <- cmd.Wait()
	}()

	timer := time.NewTimer(s.wait)
	defer timer.Stop()

	select {
	case waitErr := <-done:
		res := Result{
			ExitCode: exitCode(waitErr),
			Duration: time.Since(start),
		}
		s.logger.Info("run finished",
			"benchmark", inv.Benchmark.Name,
			"variant", inv.Variant,
			"exit_code", res.ExitCode,
			"duration", res.Duration)
		return res, nil

	case <-timer.C:
		s.logger.Warn("run exceeded wait window, killing",
			"benchmark", inv.Benchmark.Name,
			"variant", inv.Variant,
			"wait", s.wait)
		killGroup(cmd)
		// Reap unconditionally. SIGKILL cannot be caught, so this returns
		// promptly, and the sandbox must not be reset under a live child.
		<-done
		return Result{ExitCode: -1, TimedOut: true, Duration: time.Since(start)}, nil

	case <-ctx.Done():
		killGroup(cmd)
		<-done
		return Result{ExitCode: -1, Duration: time.Since(start)}, ctx.Err()
	}
}

// killGroup delivers SIGKILL to the child's whole process group. Killing
// only the direct child would leave forked descendants alive in the
// sandbox and holding the output streams, so Wait would not return until
// they exit on their own.
func killGroup(cmd *exec.Cmd) {
	if err := syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL); err != nil {
		_ = cmd.Process.Kill()
	}
}

// exitCode maps cmd.Wait's error to an exit status. Wait errors that carry
// no status (output copy failures) are folded into -1.
func exitCode(waitErr error) int {
	if waitErr == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(waitErr, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}
