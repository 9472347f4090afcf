// Copyright (C) 2026 Kleelab (maintainers@kleelab.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

/*
Package runner builds and supervises analysis tool invocations.

# Overview

This package contains two main components:

  - Builder: deterministically maps (variant, benchmark) to a complete
    command line, preparing the output and sandbox directories as a side
    effect
  - Supervisor: executes a built invocation with a bounded wait window and
    escalates to a forced kill when the window elapses

# Execution Model

Runs are strictly sequential. Every invocation shares one sandbox working
directory that Builder destructively resets, so two supervised processes
must never be alive at the same time. The supervisor enforces nothing about
ordering; the scheduler guarantees it by driving runs one at a time.

# Failure Semantics

Directory preparation failures and spawn failures are fatal: a run must not
proceed with a sandbox in unknown state, and an unlaunchable tool aborts the
experiment. A child's nonzero exit status is an experimental outcome, not a
harness error, and is only recorded. A run that outlives the wait window is
killed and reported as timed out, also without error.
*/
package runner
