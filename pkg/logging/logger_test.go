// Copyright (C) 2026 Kleelab (maintainers@kleelab.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package logging

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// =============================================================================
// Level Tests
// =============================================================================

func TestLevel_String(t *testing.T) {
	tests := []struct {
		level Level
		want  string
	}{
		{LevelDebug, "DEBUG"},
		{LevelInfo, "INFO"},
		{LevelWarn, "WARN"},
		{LevelError, "ERROR"},
		{Level(99), "UNKNOWN"},
		{Level(-1), "UNKNOWN"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			got := tt.level.String()
			if got != tt.want {
				t.Errorf("Level.String() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want Level
	}{
		{"debug", LevelDebug},
		{"info", LevelInfo},
		{"warn", LevelWarn},
		{"error", LevelError},
		{"", LevelInfo},
		{"verbose", LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ParseLevel(tt.in); got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestLevel_toSlogLevel(t *testing.T) {
	tests := []struct {
		level Level
		want  slog.Level
	}{
		{LevelDebug, slog.LevelDebug},
		{LevelInfo, slog.LevelInfo},
		{LevelWarn, slog.LevelWarn},
		{LevelError, slog.LevelError},
		{Level(99), slog.LevelInfo}, // Unknown defaults to Info
	}

	for _, tt := range tests {
		t.Run(tt.level.String(), func(t *testing.T) {
			got := tt.level.toSlogLevel()
			if got != tt.want {
				t.Errorf("Level.toSlogLevel() = %v, want %v", got, tt.want)
			}
		})
	}
}

// =============================================================================
// Logger Constructor Tests
// =============================================================================

func TestNew_DefaultConfig(t *testing.T) {
	logger, err := New(Config{})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if logger == nil {
		t.Fatal("New() returned nil")
	}
	if logger.slog == nil {
		t.Error("logger.slog is nil")
	}
	if logger.file != nil {
		t.Error("logger.file should be nil without LogFile")
	}
}

func TestNew_LogFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "kleediff.log")

	logger, err := New(Config{
		Level:   LevelInfo,
		LogFile: path,
		Service: "test",
		Quiet:   true,
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	logger.Info("pass started", "benchmarks", 3)
	if err := logger.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}
	content := string(data)
	if !strings.Contains(content, "pass started") {
		t.Errorf("log file missing message, got: %s", content)
	}
	if !strings.Contains(content, `"service":"test"`) {
		t.Errorf("log file missing service attribute, got: %s", content)
	}
}

func TestNew_LogFileAppends(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "kleediff.log")

	for i := 0; i < 2; i++ {
		logger, err := New(Config{LogFile: path, Quiet: true})
		if err != nil {
			t.Fatalf("New() error = %v", err)
		}
		logger.Info("run", "i", i)
		if err := logger.Close(); err != nil {
			t.Fatalf("Close() error = %v", err)
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}
	if got := strings.Count(string(data), `"msg":"run"`); got != 2 {
		t.Errorf("expected 2 appended entries, got %d: %s", got, data)
	}
}

func TestNew_LogFileOpenError(t *testing.T) {
	dir := t.TempDir()
	// A missing parent directory must fail loudly, not fall back silently.
	path := filepath.Join(dir, "missing", "kleediff.log")

	if _, err := New(Config{LogFile: path}); err == nil {
		t.Fatal("expected error for unopenable log file")
	}
}

// =============================================================================
// Sink Tests
// =============================================================================

func TestSink_FileWhenConfigured(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "kleediff.log")

	logger, err := New(Config{LogFile: path, Quiet: true})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer logger.Close()

	if logger.Sink() != logger.file {
		t.Error("Sink() should return the experiment log handle")
	}

	// A child process writing to the sink lands in the same file.
	if _, err := logger.Sink().Write([]byte("KLEE: done\n")); err != nil {
		t.Fatalf("writing to sink: %v", err)
	}
}

func TestSink_StderrWithoutFile(t *testing.T) {
	logger := Default()
	defer logger.Close()

	if logger.Sink() != os.Stderr {
		t.Error("Sink() should fall back to stderr without a log file")
	}
}

// =============================================================================
// Lifecycle Tests
// =============================================================================

func TestClose_NoFile(t *testing.T) {
	logger := Default()
	if err := logger.Close(); err != nil {
		t.Errorf("Close() without file should be nil, got %v", err)
	}
	// Second close is a no-op.
	if err := logger.Close(); err != nil {
		t.Errorf("second Close() should be nil, got %v", err)
	}
}

func TestWith_SharesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "kleediff.log")

	logger, err := New(Config{LogFile: path, Quiet: true})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer logger.Close()

	child := logger.With("benchmark", "echo.bc")
	child.Info("variant finished", "variant", "baseline")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}
	content := string(data)
	if !strings.Contains(content, "echo.bc") || !strings.Contains(content, "baseline") {
		t.Errorf("child logger attributes missing: %s", content)
	}
}
