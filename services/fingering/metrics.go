// Copyright (C) 2025 Wood and Wire (maintainers@woodandwire.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package fingering

import (
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// Package-level tracer and meter for validation operations.
var (
	tracer = otel.Tracer("chordmaker.fingering")
	meter  = otel.Meter("chordmaker.fingering")
)

// Metrics for pattern validation operations.
var (
	validationCounter  metric.Int64Counter
	validationDuration metric.Float64Histogram

	metricsOnce sync.Once
	metricsErr  error
)

// initMetrics initializes the metrics. Safe to call multiple times.
func initMetrics() error {
	metricsOnce.Do(func() {
		var err error

		validationCounter, err = meter.Int64Counter(
			"fingering_validations_total",
			metric.WithDescription("Total number of pattern validations"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		validationDuration, err = meter.Float64Histogram(
			"fingering_validation_duration_seconds",
			metric.WithDescription("Duration of pattern validations"),
			metric.WithUnit("s"),
		)
		if err != nil {
			metricsErr = err
			return
		}
	})
	return metricsErr
}
