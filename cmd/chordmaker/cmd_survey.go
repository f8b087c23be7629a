// Copyright (C) 2025 Wood and Wire (maintainers@woodandwire.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/woodandwire/ChordMaker/pkg/telemetry"
	"github.com/woodandwire/ChordMaker/services/survey"
	badgerstore "github.com/woodandwire/ChordMaker/services/survey/storage/badger"
)

var (
	surveyEstimate    bool   // Print the raw space size and exit
	surveyInMemory    bool   // Use an in-memory catalog (results discarded)
	surveyMetricsPort int    // Serve /metrics on this port, 0 disables
	surveyTraces      string // Trace exporter: otlp, stdout, none
)

// surveyCmd enumerates the pattern space and catalogs every outcome.
//
// # Description
//
// Generates every fingering pattern within the configured fret window,
// runs the quick-reject prefilter, deduplicates, validates survivors
// through the full rule engine, and writes valid patterns and failures
// to a Badger catalog. A final analysis summary is persisted with the
// run and printed to stdout.
//
// # Examples
//
//	chordmaker survey --max-fret 3 --min-sounding 4
//	chordmaker survey --max-patterns 100000 --workers 4 --db shapes.db
//	chordmaker survey --estimate --max-fret 12
//
// # Limitations
//
//   - The raw space grows super-exponentially with the fret window; use
//     --estimate before committing to a large run.
var surveyCmd = &cobra.Command{
	Use:   "survey",
	Short: "Enumerate and validate the fingering pattern space",
	Long: `Surveys the combinatorial fingering pattern space.

Every candidate pattern within the fret window is generated, cheaply
prefiltered, deduplicated, validated by the full rule engine, and
cataloged: playable patterns into the valid store, unplayable ones into
the failure log. The run summary is persisted alongside the catalog.

Examples:
  chordmaker survey --max-fret 3 --min-sounding 4
  chordmaker survey --max-patterns 100000 --workers 4
  chordmaker survey --estimate --max-fret 12   # Size the space first`,
	RunE: runSurveyCommand,
}

func init() {
	surveyCmd.Flags().Int("min-fret", 0, "Lowest base fret to enumerate")
	surveyCmd.Flags().Int("max-fret", 12, "Highest fret to enumerate")
	surveyCmd.Flags().Int("min-sounding", 1, "Minimum sounding (unmuted) strings per pattern")
	surveyCmd.Flags().Int("thumb-reach", 0, "Strings reachable by a wrapped thumb (0 disables)")
	surveyCmd.Flags().Int64("max-patterns", 0, "Stop after this many validated patterns (0 = unlimited)")
	surveyCmd.Flags().Int("workers", 1, "Concurrent validation workers")
	surveyCmd.Flags().Duration("progress-interval", 5*time.Second, "Interval between progress log lines")
	surveyCmd.Flags().String("db", "", "Catalog database path (defaults to config db_path)")
	surveyCmd.Flags().BoolVar(&surveyEstimate, "estimate", false,
		"Print the raw combination count for the window and exit")
	surveyCmd.Flags().BoolVar(&surveyInMemory, "in-memory", false,
		"Keep the catalog in memory (useful for dry runs)")
	surveyCmd.Flags().IntVar(&surveyMetricsPort, "metrics-port", 0,
		"Serve Prometheus metrics on this port (0 disables)")
	surveyCmd.Flags().StringVar(&surveyTraces, "traces", "none",
		"Trace exporter: otlp, stdout, none")

	rootCmd.AddCommand(surveyCmd)
}

// surveyOptions layers explicit flags over the config file values.
func surveyOptions(cmd *cobra.Command) survey.Options {
	sc := config.Survey
	opts := survey.Options{
		MinFret:            sc.MinFret,
		MaxFret:            sc.MaxFret,
		MinSoundingStrings: sc.MinSoundingStrings,
		ThumbReach:         sc.ThumbReach,
		MaxPatterns:        sc.MaxPatterns,
		Workers:            sc.Workers,
		ProgressInterval:   sc.ProgressInterval,
	}

	flags := cmd.Flags()
	if flags.Changed("min-fret") {
		opts.MinFret, _ = flags.GetInt("min-fret")
	}
	if flags.Changed("max-fret") {
		opts.MaxFret, _ = flags.GetInt("max-fret")
	}
	if flags.Changed("min-sounding") {
		opts.MinSoundingStrings, _ = flags.GetInt("min-sounding")
	}
	if flags.Changed("thumb-reach") {
		opts.ThumbReach, _ = flags.GetInt("thumb-reach")
	}
	if flags.Changed("max-patterns") {
		opts.MaxPatterns, _ = flags.GetInt64("max-patterns")
	}
	if flags.Changed("workers") {
		opts.Workers, _ = flags.GetInt("workers")
	}
	if flags.Changed("progress-interval") {
		opts.ProgressInterval, _ = flags.GetDuration("progress-interval")
	}
	return opts
}

func runSurveyCommand(cmd *cobra.Command, args []string) error {
	opts := surveyOptions(cmd)

	if surveyEstimate {
		total := survey.EstimateSpace(opts.MaxFret, opts.ThumbReach)
		fmt.Printf("Fret window 0-%d, thumb reach %d\n", opts.MaxFret, opts.ThumbReach)
		fmt.Printf("Raw combination space: %d patterns\n", total)
		fmt.Println("Quick-reject pruning and deduplication reduce the validated set substantially.")
		return nil
	}

	ctx := cmd.Context()

	shutdown, err := initSurveyTelemetry(ctx)
	if err != nil {
		return fmt.Errorf("init telemetry: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			logger.Warn("telemetry shutdown", "error", err)
		}
	}()

	store, err := openCatalog(cmd)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Warn("closing catalog", "error", err)
		}
	}()

	runner, err := survey.NewRunner(opts, store, logger.Slog())
	if err != nil {
		return err
	}

	stats, err := runner.Run(ctx)
	if err != nil {
		return err
	}

	printSummary(stats)
	return nil
}

// initSurveyTelemetry configures exporters from the survey flags. The
// prometheus endpoint is served on a background goroutine; a survey run
// owns the process, so the listener dies with it.
func initSurveyTelemetry(ctx context.Context) (func(context.Context) error, error) {
	tcfg := telemetry.DefaultConfig()
	tcfg.ServiceName = "chordmaker-survey"
	tcfg.TraceExporter = surveyTraces
	if surveyMetricsPort > 0 {
		tcfg.MetricExporter = "prometheus"
		tcfg.PrometheusPort = surveyMetricsPort
	}

	shutdown, err := telemetry.Init(ctx, tcfg)
	if err != nil {
		return nil, err
	}

	if handler := telemetry.MetricsHandler(); handler != nil && surveyMetricsPort > 0 {
		mux := http.NewServeMux()
		mux.Handle("/metrics", handler)
		addr := fmt.Sprintf(":%d", surveyMetricsPort)
		go func() {
			if err := http.ListenAndServe(addr, mux); err != nil {
				logger.Warn("metrics endpoint stopped", "error", err)
			}
		}()
		logger.Info("serving metrics", "addr", addr+"/metrics")
	}

	return shutdown, nil
}

// openCatalog builds the Badger-backed catalog from flags and config.
func openCatalog(cmd *cobra.Command) (*badgerstore.Store, error) {
	if surveyInMemory {
		return badgerstore.OpenInMemory()
	}

	path := config.Survey.DBPath
	if cmd.Flags().Changed("db") {
		path, _ = cmd.Flags().GetString("db")
	}

	scfg := badgerstore.DefaultConfig()
	scfg.Path = path
	scfg.Logger = logger.Slog()
	store, err := badgerstore.Open(scfg)
	if err != nil {
		return nil, fmt.Errorf("opening catalog at %s: %w", path, err)
	}
	return store, nil
}

// sortedReasonNames returns the rejection reason names in sorted order
// so the summary is stable across runs.
func sortedReasonNames(reasons map[string]int64) []string {
	names := make([]string, 0, len(reasons))
	for name := range reasons {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// printSummary renders the end-of-run statistics.
func printSummary(stats *survey.RunStats) {
	elapsed := stats.EndTime.Sub(stats.StartTime)

	fmt.Println("Survey complete.")
	fmt.Printf("  Run ID:          %s\n", stats.RunID)
	fmt.Printf("  Validated:       %d\n", stats.TotalGenerated)
	fmt.Printf("  Valid:           %d (%.2f%%)\n", stats.ValidPatterns, stats.ValidationRate())
	fmt.Printf("  Invalid:         %d\n", stats.InvalidPatterns)
	fmt.Printf("  Quick rejects:   %d\n", stats.QuickRejects)
	fmt.Printf("  Duplicates:      %d\n", stats.Duplicates)
	fmt.Printf("  Cache hits:      %d\n", stats.CacheHits)
	fmt.Printf("  Elapsed:         %s\n", elapsed.Round(time.Millisecond))
	if elapsed > 0 {
		rate := float64(stats.TotalGenerated) / elapsed.Seconds()
		fmt.Printf("  Rate:            %.0f patterns/s\n", rate)
	}

	if len(stats.RejectionReasons) > 0 {
		fmt.Println("  Rejection reasons:")
		for _, name := range sortedReasonNames(stats.RejectionReasons) {
			fmt.Printf("    %-25s %d\n", name, stats.RejectionReasons[name])
		}
	}
}
