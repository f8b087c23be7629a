// Copyright (C) 2025 Wood and Wire (maintainers@woodandwire.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package survey

import "errors"

var (
	// ErrInvalidOptions indicates the run options failed validation.
	ErrInvalidOptions = errors.New("invalid survey options")

	// ErrNilCatalog indicates a Runner was constructed without a catalog.
	ErrNilCatalog = errors.New("catalog must not be nil")
)
