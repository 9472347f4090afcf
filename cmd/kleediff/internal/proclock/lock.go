// Copyright (C) 2026 Kleelab (maintainers@kleelab.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package proclock prevents two experiment passes from running at once.
//
// All tool processes share one sandbox directory that each run
// destructively resets, so a second concurrent pass would silently corrupt
// the first pass's results. The lock is advisory flock(2) on a file in the
// lock directory; the OS drops it automatically if the process dies, so a
// crashed pass never wedges the next one.
package proclock

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
)

// Locker is the single-instance guard the CLI acquires before a pass.
type Locker interface {
	// Acquire takes the lock non-blocking. Returns *HeldError when another
	// pass holds it.
	Acquire() error

	// Release drops the lock. Safe to call twice or without Acquire.
	Release() error

	// IsHeld reports whether this process holds the lock.
	IsHeld() bool
}

// HeldError reports that another pass holds the lock.
type HeldError struct {
	// HolderPID is the other pass's PID, or 0 when unknown.
	HolderPID int

	// LockPath is the contended lock file.
	LockPath string
}

// Error implements the error interface.
func (e *HeldError) Error() string {
	if e.HolderPID > 0 {
		return fmt.Sprintf("another experiment pass is running (PID %d)", e.HolderPID)
	}
	return fmt.Sprintf("another experiment pass is running (check: lsof %s)", e.LockPath)
}

// FileLock implements Locker with flock(2).
//
// Not safe for concurrent use from multiple goroutines; the lock
// synchronizes processes, not goroutines. Use it from main.
type FileLock struct {
	lockPath string
	pidPath  string
	file     *os.File
	held     bool
}

// New returns a FileLock rooted in dir, or the system temp directory when
// dir is empty. The lock does not start held.
func New(dir string) *FileLock {
	if dir == "" {
		dir = os.TempDir()
	}
	return &FileLock{
		lockPath: filepath.Join(dir, "kleediff.lock"),
		pidPath:  filepath.Join(dir, "kleediff.pid"),
	}
}

// Compile-time interface satisfaction check
var _ Locker = (*FileLock)(nil)

// Acquire takes the lock without blocking. The PID file is written purely
// for the error message a losing pass prints; losing it is not fatal.
func (l *FileLock) Acquire() error {
	if l.held {
		return nil
	}

	f, err := os.OpenFile(l.lockPath, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return fmt.Errorf("create lock file %s: %w", l.lockPath, err)
	}

	if err := syscall.Flock(int(f.Fd()), syscall.LOCK_EX|syscall.LOCK_NB); err != nil {
		f.Close()
		if err == syscall.EWOULDBLOCK {
			return &HeldError{HolderPID: l.readHolderPID(), LockPath: l.lockPath}
		}
		return fmt.Errorf("acquire lock: %w", err)
	}

	l.file = f
	l.held = true
	_ = os.WriteFile(l.pidPath, []byte(fmt.Sprintf("%d\n", os.Getpid())), 0o644)
	return nil
}

// Release drops the lock if held. The lock file itself is left behind for
// faster reacquisition.
func (l *FileLock) Release() error {
	if !l.held || l.file == nil {
		return nil
	}

	os.Remove(l.pidPath)
	err := syscall.Flock(int(l.file.Fd()), syscall.LOCK_UN)
	l.file.Close()
	l.file = nil
	l.held = false

	if err != nil {
		return fmt.Errorf("release lock: %w", err)
	}
	return nil
}

// IsHeld reports whether this process holds the lock. Local state only.
func (l *FileLock) IsHeld() bool {
	return l.held
}

// LockPath returns the lock file path, for error messages.
func (l *FileLock) LockPath() string {
	return l.lockPath
}

func (l *FileLock) readHolderPID() int {
	data, err := os.ReadFile(l.pidPath)
	if err != nil {
		return 0
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0
	}
	return pid
}
