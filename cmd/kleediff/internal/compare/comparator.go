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
	"os"
	"path/filepath"

	"github.com/pmezard/go-difflib/difflib"
)

// DiffExt is the diff artifact file extension.
const DiffExt = ".patch"

// ArtifactPath is the diff artifact location for one benchmark's output
// base directory under the given strategy.
func ArtifactPath(baseDir string, s Strategy) string {
	return filepath.Join(baseDir, s.ArtifactName()+DiffExt)
}

// Comparator produces unified diff artifacts from two variant output trees.
type Comparator struct {
	strategy Strategy
	context  int
}

// NewComparator returns a Comparator using the given strategy and unified
// diff context width.
func NewComparator(strategy Strategy, contextLines int) *Comparator {
	if contextLines <= 0 {
		contextLines = 3
	}
	return &Comparator{strategy: strategy, context: contextLines}
}

// Compare extracts both variants' content, diffs them and writes the
// artifact. The artifact is written even when the diff is empty because
// its existence marks the benchmark as done.
//
// The write is atomic (temp file then rename) so an interrupted pass never
// leaves a torn artifact that a resumed pass would mistake for completion.
func (c *Comparator) Compare(ctx context.Context, aDir, bDir, artifact string) error {
	if ctx == nil {
		return ErrNilContext
	}

	aLines, aLabel, err := c.strategy.Lines(ctx, aDir)
	if err != nil {
		return fmt.Errorf("extract %s: %w", aDir, err)
	}
	bLines, bLabel, err := c.strategy.Lines(ctx, bDir)
	if err != nil {
		return fmt.Errorf("extract %s: %w", bDir, err)
	}

	text, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        aLines,
		B:        bLines,
		FromFile: aLabel,
		ToFile:   bLabel,
		Context:  c.context,
	})
	if err != nil {
		return fmt.Errorf("compute diff: %w", err)
	}

	return writeAtomic(artifact, []byte(text))
}

// writeAtomic writes data to path via a temp file in the same directory
// followed by a rename.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp artifact: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write artifact: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close artifact: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("publish artifact: %w", err)
	}
	return nil
}
