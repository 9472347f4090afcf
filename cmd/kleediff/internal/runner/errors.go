// Copyright (C) 2026 Kleelab (maintainers@kleelab.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package runner

import "errors"

var (
	// ErrNilContext is returned when a nil context is passed to Run.
	ErrNilContext = errors.New("context cannot be nil")

	// ErrNilConfig is returned when a constructor receives a nil config.
	ErrNilConfig = errors.New("config cannot be nil")
)
