// Copyright (C) 2025 Wood and Wire (maintainers@woodandwire.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package survey enumerates the fingering pattern space and drives the
// validation rule engine over it at scale.
//
// # Description
//
// The pipeline is: Generator emits candidate patterns, the quick-reject
// prefilter discards obvious failures cheaply, the duplicate detector drops
// repeats, the validation cache returns memoized results or invokes the
// full rule engine, and every surviving pattern is handed to a Catalog.
// A run never aborts over one pattern: valid patterns go to the catalog's
// valid store, invalid ones to its failure log, and the run continues
// until the space or the pattern cutoff is exhausted.
//
// # Thread Safety
//
// The Generator is single-threaded. Runner fans validation out across
// workers; the duplicate set, cache, and statistics are synchronized, so
// aggregate counts are exact regardless of interleaving. Catalog
// implementations must be safe for concurrent use.
package survey

import (
	"time"

	"github.com/woodandwire/ChordMaker/services/fingering"
)

// Options configures a pattern survey run. The zero value is not usable;
// start from DefaultOptions.
type Options struct {
	// MinFret and MaxFret bound the enumerated base fret positions.
	MinFret int `yaml:"min_fret" validate:"gte=0,lte=24"`
	MaxFret int `yaml:"max_fret" validate:"gte=0,lte=24"`

	// MinSoundingStrings is the minimum number of unmuted strings a
	// generated pattern must have.
	MinSoundingStrings int `yaml:"min_sounding_strings" validate:"gte=1,lte=6"`

	// ThumbReach is passed through to the validator configuration.
	ThumbReach int `yaml:"thumb_reach" validate:"gte=0,lte=6"`

	// MaxPatterns stops the run after this many patterns have been
	// validated and cataloged. Zero means unlimited.
	MaxPatterns int64 `yaml:"max_patterns" validate:"gte=0"`

	// Workers is the number of concurrent validation workers.
	Workers int `yaml:"workers" validate:"gte=1"`

	// ProgressInterval throttles interim progress logging.
	ProgressInterval time.Duration `yaml:"progress_interval"`
}

// DefaultOptions returns the standard survey configuration: first twelve
// frets, at least one sounding string, no thumb fretting, single worker.
func DefaultOptions() Options {
	return Options{
		MinFret:            0,
		MaxFret:            12,
		MinSoundingStrings: 1,
		ThumbReach:         0,
		Workers:            1,
		ProgressInterval:   5 * time.Second,
	}
}

// PatternRecord is the catalog entry for one validated pattern.
type PatternRecord struct {
	PatternID   int64                         `json:"pattern_id"`
	PatternName string                        `json:"pattern_name"`
	Pattern     string                        `json:"pattern"`
	IsValid     bool                          `json:"is_valid"`
	StatusCode  fingering.StatusCode          `json:"status_code"`
	StatusName  string                        `json:"status_name"`
	Messages    []fingering.ValidationMessage `json:"messages"`
}

// RunStats is a snapshot of the aggregate counters for a run.
type RunStats struct {
	RunID           string           `json:"run_id"`
	TotalGenerated  int64            `json:"total_generated"`
	ValidPatterns   int64            `json:"valid_patterns"`
	InvalidPatterns int64            `json:"invalid_patterns"`
	QuickRejects    int64            `json:"quick_rejects"`
	Duplicates      int64            `json:"duplicates"`
	CacheHits       int64            `json:"cache_hits"`
	// RejectionReasons counts invalid patterns by status name.
	RejectionReasons map[string]int64 `json:"rejection_reasons"`
	StartTime        time.Time        `json:"start_time"`
	EndTime          time.Time        `json:"end_time"`
}

// ValidationRate returns the percentage of validated patterns that were
// playable.
func (s RunStats) ValidationRate() float64 {
	if s.TotalGenerated == 0 {
		return 0
	}
	return float64(s.ValidPatterns) / float64(s.TotalGenerated) * 100
}

// AnalysisSummary is the persisted end-of-run analysis record.
type AnalysisSummary struct {
	Metadata         AnalysisMetadata `json:"study_metadata"`
	RejectionReasons map[string]int64 `json:"rejection_reasons"`
}

// AnalysisMetadata describes the run parameters and headline outcomes.
type AnalysisMetadata struct {
	RunID                 string  `json:"run_id"`
	TotalPatterns         int64   `json:"total_patterns"`
	ValidPatterns         int64   `json:"valid_patterns"`
	InvalidPatterns       int64   `json:"invalid_patterns"`
	ValidationRate        float64 `json:"validation_rate"`
	ProcessingTimeSeconds float64 `json:"processing_time_seconds"`
	FretRange             string  `json:"fret_range"`
	MinSoundingStrings    int     `json:"min_sounding_strings"`
}

// Catalog receives the output of a survey run. Valid patterns and failures
// are kept separately; the analysis summary is written once at the end.
type Catalog interface {
	// StoreValid persists a playable pattern record.
	StoreValid(record PatternRecord) error

	// LogFailure records an unplayable pattern and its failure status.
	LogFailure(record PatternRecord) error

	// SaveAnalysis persists the end-of-run summary.
	SaveAnalysis(summary AnalysisSummary) error
}
