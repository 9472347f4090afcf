// Copyright (C) 2026 Kleelab (maintainers@kleelab.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

/*
Package compare turns two variant output trees into a unified diff artifact.

A Strategy extracts comparable lines from one variant's output directory.
Two strategies exist:

  - info: the tool's raw info file, read as-is
  - stats: the output of the statistics companion binary run over the
    directory

The Comparator runs one strategy against both variant directories and
writes a unified diff to the benchmark's output base. The artifact is
written atomically and unconditionally, even when the variants agree: its
existence is the durable marker that the benchmark's experiment completed,
which is what makes interrupted passes resumable.
*/
package compare
