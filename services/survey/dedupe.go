// Copyright (C) 2025 Wood and Wire (maintainers@woodandwire.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package survey

import (
	"sync"

	"github.com/woodandwire/ChordMaker/services/fingering"
)

// deduper suppresses re-emission of canonically equal patterns within one
// run. Safe for concurrent use.
type deduper struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

func newDeduper() *deduper {
	return &deduper{seen: make(map[string]struct{})}
}

// Seen records the pattern and reports whether its canonical key had
// already been recorded.
func (d *deduper) Seen(pattern fingering.ChordPattern) bool {
	key := dedupKey(pattern)
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.seen[key]; ok {
		return true
	}
	d.seen[key] = struct{}{}
	return false
}

// Len returns the number of distinct patterns recorded.
func (d *deduper) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.seen)
}

// resultCache memoizes full validation results by canonical key for the
// lifetime of a run. Configuration is fixed per run, so entries are never
// invalidated. Safe for concurrent use.
type resultCache struct {
	mu      sync.RWMutex
	results map[string]*fingering.ValidationResult
}

func newResultCache() *resultCache {
	return &resultCache{results: make(map[string]*fingering.ValidationResult)}
}

// Get returns the memoized result for the pattern's canonical key, if any.
func (c *resultCache) Get(key string) (*fingering.ValidationResult, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	result, ok := c.results[key]
	return result, ok
}

// Put stores a result. Later writers for the same key win; results for one
// key are interchangeable because validation is pure.
func (c *resultCache) Put(key string, result *fingering.ValidationResult) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.results[key] = result
}

// Len returns the number of cached results.
func (c *resultCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.results)
}
