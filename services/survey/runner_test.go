// Copyright (C) 2025 Wood and Wire (maintainers@woodandwire.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package survey

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memoryCatalog collects records in memory for assertions. The persistent
// catalog lives in storage/badger; it cannot be used here without an
// import cycle.
type memoryCatalog struct {
	mu       sync.Mutex
	valid    []PatternRecord
	failed   []PatternRecord
	analyses []AnalysisSummary
}

func (c *memoryCatalog) StoreValid(record PatternRecord) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.valid = append(c.valid, record)
	return nil
}

func (c *memoryCatalog) LogFailure(record PatternRecord) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failed = append(c.failed, record)
	return nil
}

func (c *memoryCatalog) SaveAnalysis(summary AnalysisSummary) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.analyses = append(c.analyses, summary)
	return nil
}

func testOptions() Options {
	opts := DefaultOptions()
	opts.MaxFret = 1
	opts.MinSoundingStrings = 5
	opts.MaxPatterns = 300
	return opts
}

func TestNewRunner_Validation(t *testing.T) {
	catalog := &memoryCatalog{}

	_, err := NewRunner(testOptions(), nil, nil)
	require.ErrorIs(t, err, ErrNilCatalog)

	bad := testOptions()
	bad.MinFret = 5
	bad.MaxFret = 2
	_, err = NewRunner(bad, catalog, nil)
	require.ErrorIs(t, err, ErrInvalidOptions)

	bad = testOptions()
	bad.Workers = 0
	_, err = NewRunner(bad, catalog, nil)
	require.ErrorIs(t, err, ErrInvalidOptions)

	_, err = NewRunner(testOptions(), catalog, nil)
	require.NoError(t, err)
}

func TestRunner_Run_CatalogsEveryPattern(t *testing.T) {
	catalog := &memoryCatalog{}
	runner, err := NewRunner(testOptions(), catalog, nil)
	require.NoError(t, err)

	stats, err := runner.Run(context.Background())
	require.NoError(t, err)

	assert.Positive(t, stats.TotalGenerated)
	assert.LessOrEqual(t, stats.TotalGenerated, int64(300))
	assert.Equal(t, stats.TotalGenerated, stats.ValidPatterns+stats.InvalidPatterns)
	assert.Equal(t, stats.TotalGenerated, int64(len(catalog.valid)+len(catalog.failed)))
	assert.Equal(t, int64(len(catalog.valid)), stats.ValidPatterns)
	require.Len(t, catalog.analyses, 1)
	assert.Equal(t, stats.RunID, catalog.analyses[0].Metadata.RunID)
	assert.Equal(t, stats.TotalGenerated, catalog.analyses[0].Metadata.TotalPatterns)

	// Pattern IDs are assigned sequentially after deduplication; every
	// cataloged record carries a unique ID.
	seen := make(map[int64]bool)
	for _, record := range append(catalog.valid, catalog.failed...) {
		assert.False(t, seen[record.PatternID], "duplicate pattern ID %d", record.PatternID)
		seen[record.PatternID] = true
	}
}

func TestRunner_Run_ParallelMatchesSerial(t *testing.T) {
	serial := &memoryCatalog{}
	runner, err := NewRunner(testOptions(), serial, nil)
	require.NoError(t, err)
	serialStats, err := runner.Run(context.Background())
	require.NoError(t, err)

	opts := testOptions()
	opts.Workers = 4
	parallel := &memoryCatalog{}
	runner, err = NewRunner(opts, parallel, nil)
	require.NoError(t, err)
	parallelStats, err := runner.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, serialStats.TotalGenerated, parallelStats.TotalGenerated)
	assert.Equal(t, serialStats.ValidPatterns, parallelStats.ValidPatterns)
	assert.Equal(t, serialStats.InvalidPatterns, parallelStats.InvalidPatterns)
	assert.Equal(t, serialStats.QuickRejects, parallelStats.QuickRejects)
	assert.Equal(t, serialStats.Duplicates, parallelStats.Duplicates)
	assert.Equal(t, serialStats.RejectionReasons, parallelStats.RejectionReasons)
}

func TestRunner_Run_Cancellation(t *testing.T) {
	opts := DefaultOptions()
	opts.MaxFret = 12
	opts.Workers = 2

	catalog := &memoryCatalog{}
	runner, err := NewRunner(opts, catalog, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = runner.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

func TestRunner_Run_DuplicateSuppression(t *testing.T) {
	// Within one run, a canonical pattern is validated and cataloged at
	// most once even though the generator structurally revisits shapes.
	catalog := &memoryCatalog{}
	runner, err := NewRunner(testOptions(), catalog, nil)
	require.NoError(t, err)

	stats, err := runner.Run(context.Background())
	require.NoError(t, err)
	assert.Positive(t, stats.Duplicates, "the enumerated space revisits canonical shapes")

	keys := make(map[string]int)
	for _, record := range append(catalog.valid, catalog.failed...) {
		keys[record.Pattern]++
	}
	for pattern, count := range keys {
		assert.Equal(t, 1, count, "pattern %s cataloged %d times", pattern, count)
	}
}
