// Copyright (C) 2025 Wood and Wire (maintainers@woodandwire.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package fingering

import "errors"

// Sentinel errors for the fingering package.
var (
	// ErrInvalidPatternText indicates pattern text that cannot be parsed.
	ErrInvalidPatternText = errors.New("invalid pattern text")

	// ErrInvalidConfig indicates configuration outside the supported range.
	ErrInvalidConfig = errors.New("invalid configuration")
)
