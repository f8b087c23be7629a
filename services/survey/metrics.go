// Copyright (C) 2025 Wood and Wire (maintainers@woodandwire.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package survey

import (
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// Package-level tracer and meter for survey runs.
var (
	tracer = otel.Tracer("chordmaker.survey")
	meter  = otel.Meter("chordmaker.survey")
)

// Metrics for the generation pipeline.
var (
	patternCounter     metric.Int64Counter
	quickRejectCounter metric.Int64Counter

	surveyMetricsOnce sync.Once
	surveyMetricsErr  error
)

// initSurveyMetrics initializes the metrics. Safe to call multiple times.
func initSurveyMetrics() error {
	surveyMetricsOnce.Do(func() {
		var err error

		patternCounter, err = meter.Int64Counter(
			"survey_patterns_total",
			metric.WithDescription("Patterns validated and cataloged per run"),
		)
		if err != nil {
			surveyMetricsErr = err
			return
		}

		quickRejectCounter, err = meter.Int64Counter(
			"survey_quick_rejects_total",
			metric.WithDescription("Patterns rejected by the prefilter before validation"),
		)
		if err != nil {
			surveyMetricsErr = err
			return
		}
	})
	return surveyMetricsErr
}
