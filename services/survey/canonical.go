// Copyright (C) 2025 Wood and Wire (maintainers@woodandwire.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package survey

import (
	"crypto/md5"
	"encoding/hex"
	"sort"
	"strconv"
	"strings"

	"github.com/woodandwire/ChordMaker/services/fingering"
)

// Canonical keys deliberately drop string identity: the (indicator, fret)
// pairs are sorted, so two patterns that place the same multiset of
// assignments on different strings share one key and are treated as the
// same shape. The duplicate key includes muted strings; the cache key
// excludes them, which conflates patterns further (a muted string versus
// an absent one). Both behaviors are load-bearing for compatibility with
// the existing catalogs and are pinned by tests.

// dedupKey returns the hex digest gating pattern emission.
func dedupKey(pattern fingering.ChordPattern) string {
	pairs := canonicalPairs(pattern, true)
	sum := md5.Sum([]byte(strings.Join(pairs, ";")))
	return hex.EncodeToString(sum[:])
}

// cacheKey returns the memoization key for validation results.
func cacheKey(pattern fingering.ChordPattern) string {
	return strings.Join(canonicalPairs(pattern, false), ";")
}

func canonicalPairs(pattern fingering.ChordPattern, includeMuted bool) []string {
	pairs := make([]string, 0, len(pattern))
	for _, a := range pattern {
		if !includeMuted && a.Finger == fingering.FingerMuted {
			continue
		}
		pairs = append(pairs, string(a.Finger)+":"+strconv.Itoa(a.Fret))
	}
	sort.Strings(pairs)
	return pairs
}
