// Copyright (C) 2025 Wood and Wire (maintainers@woodandwire.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package survey

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/woodandwire/ChordMaker/services/fingering"
)

// Runner drives the full survey pipeline: generate, prefilter, dedupe,
// cache or validate, catalog. One Runner performs one run; construct a new
// one per run so the duplicate set and cache start empty.
type Runner struct {
	opts      Options
	validator *fingering.Validator
	prefilter *Prefilter
	catalog   Catalog
	logger    *slog.Logger
}

var optionsValidator = validator.New(validator.WithRequiredStructEnabled())

// NewRunner validates the options and builds a run pipeline.
//
// # Inputs
//   - opts: run configuration; see DefaultOptions
//   - catalog: destination for valid patterns, failures, and the analysis
//     summary; must not be nil
//   - logger: run progress logging; nil disables it
//
// # Outputs
//   - *Runner: ready to Run once
//   - error: ErrNilCatalog or ErrInvalidOptions with field details
func NewRunner(opts Options, catalog Catalog, logger *slog.Logger) (*Runner, error) {
	if catalog == nil {
		return nil, ErrNilCatalog
	}
	if opts.MaxFret < opts.MinFret {
		return nil, fmt.Errorf("%w: max_fret %d below min_fret %d", ErrInvalidOptions, opts.MaxFret, opts.MinFret)
	}
	if err := optionsValidator.Struct(opts); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidOptions, err)
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	cfg := fingering.DefaultConfig()
	cfg.ThumbReachStrings = opts.ThumbReach

	return &Runner{
		opts:      opts,
		validator: fingering.NewValidator(cfg),
		prefilter: NewPrefilter(cfg),
		catalog:   catalog,
		logger:    logger,
	}, nil
}

// job is one deduplicated pattern awaiting validation.
type job struct {
	id      int64
	pattern fingering.ChordPattern
}

// counters aggregates run statistics. All fields are exact regardless of
// worker interleaving.
type counters struct {
	generated atomic.Int64
	valid     atomic.Int64
	invalid   atomic.Int64
	quickRej  atomic.Int64
	dupes     atomic.Int64
	cacheHits atomic.Int64

	mu      sync.Mutex
	reasons map[string]int64
}

func (c *counters) addReason(name string) {
	c.mu.Lock()
	c.reasons[name]++
	c.mu.Unlock()
}

// Run enumerates the pattern space and catalogs every surviving pattern.
// A single pattern's validation or catalog failure never aborts the run;
// Run returns early only on context cancellation. The returned stats are
// final and exact.
func (r *Runner) Run(ctx context.Context) (*RunStats, error) {
	runID := uuid.NewString()
	ctx, span := tracer.Start(ctx, "survey.Run")
	defer span.End()
	span.SetAttributes(attribute.String("survey.run_id", runID))

	r.logger.Info("starting pattern survey",
		slog.String("run_id", runID),
		slog.Int("min_fret", r.opts.MinFret),
		slog.Int("max_fret", r.opts.MaxFret),
		slog.Int("min_sounding_strings", r.opts.MinSoundingStrings),
		slog.Int("thumb_reach", r.opts.ThumbReach),
		slog.Int64("max_patterns", r.opts.MaxPatterns),
		slog.Int("workers", r.opts.Workers),
	)

	stats := &counters{reasons: make(map[string]int64)}
	dedupe := newDeduper()
	cache := newResultCache()
	start := time.Now()

	progress := &rate.Sometimes{Interval: r.opts.ProgressInterval}
	if r.opts.ProgressInterval <= 0 {
		progress.Interval = 5 * time.Second
	}

	jobs := make(chan job, r.opts.Workers*2)
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer close(jobs)
		return r.produce(gCtx, stats, dedupe, jobs)
	})

	for w := 0; w < r.opts.Workers; w++ {
		g.Go(func() error {
			for j := range jobs {
				if err := gCtx.Err(); err != nil {
					return err
				}
				r.process(gCtx, j, stats, cache)
				progress.Do(func() {
					r.logProgress(stats, cache, start)
				})
			}
			return nil
		})
	}

	runErr := g.Wait()
	end := time.Now()

	final := r.snapshot(runID, stats, start, end)
	r.logger.Info("pattern survey complete",
		slog.String("run_id", runID),
		slog.Int64("total", final.TotalGenerated),
		slog.Int64("valid", final.ValidPatterns),
		slog.Int64("invalid", final.InvalidPatterns),
		slog.Int64("quick_rejects", final.QuickRejects),
		slog.Int64("duplicates", final.Duplicates),
		slog.Int64("cache_hits", final.CacheHits),
		slog.Float64("validation_rate_pct", final.ValidationRate()),
		slog.Duration("elapsed", end.Sub(start)),
	)

	if err := r.catalog.SaveAnalysis(r.buildAnalysis(final)); err != nil {
		r.logger.Error("saving analysis summary failed", slog.String("error", err.Error()))
	}

	if runErr != nil {
		return final, runErr
	}
	return final, nil
}

// produce walks the generated space, applies the prefilter and duplicate
// detector, and hands surviving patterns to the workers. Pattern IDs are
// assigned here, sequentially after deduplication, so IDs are stable for
// a given option set regardless of worker count.
func (r *Runner) produce(ctx context.Context, stats *counters, dedupe *deduper, jobs chan<- job) error {
	if err := initSurveyMetrics(); err != nil {
		r.logger.Warn("survey metrics unavailable", slog.String("error", err.Error()))
	}
	var nextID int64

	for pattern := range NewGenerator(r.opts).Patterns() {
		if err := ctx.Err(); err != nil {
			return err
		}

		if reason, rejected := r.prefilter.Reject(pattern); rejected {
			stats.quickRej.Add(1)
			if quickRejectCounter != nil {
				quickRejectCounter.Add(ctx, 1, metric.WithAttributes(
					attribute.String("reason", reason.Name()),
				))
			}
			continue
		}

		if dedupe.Seen(pattern) {
			stats.dupes.Add(1)
			continue
		}

		nextID++
		select {
		case jobs <- job{id: nextID, pattern: pattern}:
		case <-ctx.Done():
			return ctx.Err()
		}

		if r.opts.MaxPatterns > 0 && nextID >= r.opts.MaxPatterns {
			return nil
		}
	}
	return nil
}

// process validates one pattern (through the cache) and catalogs the
// outcome. Catalog failures are logged and swallowed: the run continues.
func (r *Runner) process(ctx context.Context, j job, stats *counters, cache *resultCache) {
	stats.generated.Add(1)

	key := cacheKey(j.pattern)
	result, hit := cache.Get(key)
	if hit {
		stats.cacheHits.Add(1)
	} else {
		result = r.validator.Validate(ctx, j.pattern)
		cache.Put(key, result)
	}

	record := PatternRecord{
		PatternID:   j.id,
		PatternName: fmt.Sprintf("pattern_%06d", j.id),
		Pattern:     j.pattern.String(),
		IsValid:     result.IsValid,
		StatusCode:  result.StatusCode,
		StatusName:  result.StatusName,
		Messages:    result.Messages,
	}

	var err error
	if record.IsValid {
		stats.valid.Add(1)
		err = r.catalog.StoreValid(record)
	} else {
		stats.invalid.Add(1)
		stats.addReason(record.StatusName)
		err = r.catalog.LogFailure(record)
	}
	if err != nil {
		r.logger.Error("cataloging pattern failed",
			slog.String("pattern", record.Pattern),
			slog.Int64("pattern_id", record.PatternID),
			slog.String("error", err.Error()),
		)
	}
	if patternCounter != nil {
		patternCounter.Add(ctx, 1, metric.WithAttributes(
			attribute.String("status", record.StatusName),
			attribute.Bool("is_valid", record.IsValid),
		))
	}
}

func (r *Runner) logProgress(stats *counters, cache *resultCache, start time.Time) {
	total := stats.generated.Load()
	elapsed := time.Since(start).Seconds()
	perSec := 0.0
	if elapsed > 0 {
		perSec = float64(total) / elapsed
	}
	r.logger.Info("survey progress",
		slog.Int64("patterns", total),
		slog.Int64("valid", stats.valid.Load()),
		slog.Int64("invalid", stats.invalid.Load()),
		slog.Int64("quick_rejects", stats.quickRej.Load()),
		slog.Int("cache_entries", cache.Len()),
		slog.Float64("patterns_per_sec", perSec),
	)
}

func (r *Runner) snapshot(runID string, stats *counters, start, end time.Time) *RunStats {
	stats.mu.Lock()
	reasons := make(map[string]int64, len(stats.reasons))
	for k, v := range stats.reasons {
		reasons[k] = v
	}
	stats.mu.Unlock()

	return &RunStats{
		RunID:            runID,
		TotalGenerated:   stats.generated.Load(),
		ValidPatterns:    stats.valid.Load(),
		InvalidPatterns:  stats.invalid.Load(),
		QuickRejects:     stats.quickRej.Load(),
		Duplicates:       stats.dupes.Load(),
		CacheHits:        stats.cacheHits.Load(),
		RejectionReasons: reasons,
		StartTime:        start,
		EndTime:          end,
	}
}

func (r *Runner) buildAnalysis(stats *RunStats) AnalysisSummary {
	return AnalysisSummary{
		Metadata: AnalysisMetadata{
			RunID:                 stats.RunID,
			TotalPatterns:         stats.TotalGenerated,
			ValidPatterns:         stats.ValidPatterns,
			InvalidPatterns:       stats.InvalidPatterns,
			ValidationRate:        stats.ValidationRate(),
			ProcessingTimeSeconds: stats.EndTime.Sub(stats.StartTime).Seconds(),
			FretRange:             fmt.Sprintf("%d-%d", r.opts.MinFret, r.opts.MaxFret),
			MinSoundingStrings:    r.opts.MinSoundingStrings,
		},
		RejectionReasons: stats.RejectionReasons,
	}
}
