// Copyright (C) 2026 Kleelab (maintainers@kleelab.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package proclock

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAcquireRelease(t *testing.T) {
	l := New(t.TempDir())

	require.NoError(t, l.Acquire())
	assert.True(t, l.IsHeld())

	require.NoError(t, l.Release())
	assert.False(t, l.IsHeld())
}

func TestAcquire_Reentrant(t *testing.T) {
	l := New(t.TempDir())
	require.NoError(t, l.Acquire())
	require.NoError(t, l.Acquire())
	require.NoError(t, l.Release())
}

func TestRelease_WithoutAcquire(t *testing.T) {
	l := New(t.TempDir())
	assert.NoError(t, l.Release())
	assert.NoError(t, l.Release())
}

func TestAcquire_WritesPID(t *testing.T) {
	dir := t.TempDir()
	l := New(dir)
	require.NoError(t, l.Acquire())
	defer l.Release()

	data, err := os.ReadFile(filepath.Join(dir, "kleediff.pid"))
	require.NoError(t, err)
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	require.NoError(t, err)
	assert.Equal(t, os.Getpid(), pid)
}

func TestRelease_RemovesPIDFile(t *testing.T) {
	dir := t.TempDir()
	l := New(dir)
	require.NoError(t, l.Acquire())
	require.NoError(t, l.Release())

	_, err := os.Stat(filepath.Join(dir, "kleediff.pid"))
	assert.True(t, os.IsNotExist(err))
}

func TestReacquireAfterRelease(t *testing.T) {
	l := New(t.TempDir())
	require.NoError(t, l.Acquire())
	require.NoError(t, l.Release())
	require.NoError(t, l.Acquire())
	require.NoError(t, l.Release())
}

func TestAcquire_ContendedInSameDir(t *testing.T) {
	dir := t.TempDir()

	first := New(dir)
	require.NoError(t, first.Acquire())
	defer first.Release()

	second := New(dir)
	err := second.Acquire()
	require.Error(t, err)

	var held *HeldError
	require.ErrorAs(t, err, &held)
	assert.Equal(t, os.Getpid(), held.HolderPID)
	assert.False(t, second.IsHeld())
}

func TestAcquire_DisjointDirsDoNotContend(t *testing.T) {
	a := New(t.TempDir())
	b := New(t.TempDir())

	require.NoError(t, a.Acquire())
	defer a.Release()
	require.NoError(t, b.Acquire())
	defer b.Release()
}

func TestNew_DefaultsToTempDir(t *testing.T) {
	l := New("")
	assert.Equal(t, filepath.Join(os.TempDir(), "kleediff.lock"), l.LockPath())
}

func TestHeldError_Message(t *testing.T) {
	err := &HeldError{HolderPID: 1234}
	assert.Contains(t, err.Error(), "1234")

	err = &HeldError{LockPath: "/tmp/kleediff.lock"}
	assert.Contains(t, err.Error(), "/tmp/kleediff.lock")
}
