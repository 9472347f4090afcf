// Copyright (C) 2026 Kleelab (maintainers@kleelab.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package compare

import "errors"

var (
	// ErrNilContext is returned when a nil context is passed to Lines or
	// Compare.
	ErrNilContext = errors.New("context cannot be nil")

	// ErrUnknownStrategy is returned by NewStrategy for an unrecognized
	// strategy name.
	ErrUnknownStrategy = errors.New("unknown comparison strategy")

	// ErrNoStatsBinary is returned when the stats strategy is selected but
	// no statistics binary is configured.
	ErrNoStatsBinary = errors.New("stats strategy requires tool.klee_stats_bin")
)
