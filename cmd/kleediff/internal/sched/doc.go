// Copyright (C) 2026 Kleelab (maintainers@kleelab.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

/*
Package sched drives one experiment pass over a benchmark corpus.

For each benchmark the scheduler runs every configured variant in order,
then compares the variants' outputs into a diff artifact. Benchmarks whose
artifact already exists are skipped, which makes an interrupted pass
resumable by simply rerunning it.

Runs are strictly sequential because all tool processes share a sandbox
directory that is destructively reset before each run.

Error policy per benchmark:

  - building or spawning a run fails: the pass aborts; the harness itself
    is broken, not the benchmark
  - a run times out or exits nonzero: recorded and the pass continues
  - the comparison fails: the benchmark is counted failed and left without
    an artifact, so the next pass retries it
*/
package sched
