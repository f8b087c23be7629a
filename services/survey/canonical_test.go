// Copyright (C) 2025 Wood and Wire (maintainers@woodandwire.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package survey

import "testing"

// Canonicalization drops string identity on purpose: patterns carrying the
// same multiset of (indicator, fret) pairs on different strings collide.
// These tests pin that conflation so a future change to it is loud.

func TestDedupKey_StringPermutationsCollide(t *testing.T) {
	a := mustParse(t, "X,3:3,2:2,O,1:1,O")
	b := mustParse(t, "O,1:1,O,2:2,3:3,X")
	if dedupKey(a) != dedupKey(b) {
		t.Error("permuted patterns must share a duplicate key")
	}

	c := mustParse(t, "X,3:3,2:2,O,1:2,O")
	if dedupKey(a) == dedupKey(c) {
		t.Error("patterns with different assignments must not collide")
	}
}

func TestDedupKey_MutedStringsMatter(t *testing.T) {
	// The duplicate key includes muted strings, so muting an extra string
	// produces a distinct pattern.
	a := mustParse(t, "X,3:3,2:2,O,1:1,O")
	b := mustParse(t, "X,3:3,2:2,X,1:1,O")
	if dedupKey(a) == dedupKey(b) {
		t.Error("different mute sets must not collide in the duplicate key")
	}
}

func TestCacheKey_IgnoresMutedStringPlacement(t *testing.T) {
	// The cache key drops muted strings but keeps everything else, opens
	// included. Moving the mute to a different string leaves the non-muted
	// multiset intact, so the patterns share a memoized result.
	a := mustParse(t, "X,3:3,2:2,O,1:1,O")
	b := mustParse(t, "O,3:3,2:2,X,1:1,O")
	if cacheKey(a) != cacheKey(b) {
		t.Errorf("cache keys differ: %q vs %q", cacheKey(a), cacheKey(b))
	}

	// Muting an open string removes an O:0 pair from the multiset.
	c := mustParse(t, "X,3:3,2:2,O,1:1,X")
	if cacheKey(a) == cacheKey(c) {
		t.Error("dropping a sounding string must change the cache key")
	}
}

func TestDeduper_SuppressesRepeats(t *testing.T) {
	d := newDeduper()
	pattern := mustParse(t, "X,3:3,2:2,O,1:1,O")

	if d.Seen(pattern) {
		t.Fatal("first emission must not be a duplicate")
	}
	if !d.Seen(pattern) {
		t.Fatal("second emission must be a duplicate")
	}
	if d.Len() != 1 {
		t.Errorf("expected 1 recorded pattern, got %d", d.Len())
	}

	permuted := mustParse(t, "O,1:1,O,2:2,3:3,X")
	if !d.Seen(permuted) {
		t.Error("canonically equal permutation must be a duplicate")
	}
}

func TestResultCache_RoundTrip(t *testing.T) {
	c := newResultCache()
	pattern := mustParse(t, "X,3:3,2:2,O,1:1,O")
	key := cacheKey(pattern)

	if _, ok := c.Get(key); ok {
		t.Fatal("empty cache must miss")
	}
	c.Put(key, nil)
	if _, ok := c.Get(key); !ok {
		t.Fatal("stored key must hit")
	}
	if c.Len() != 1 {
		t.Errorf("expected 1 entry, got %d", c.Len())
	}
}
