// Copyright (C) 2025 Wood and Wire (maintainers@woodandwire.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package fingering

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Validator evaluates fingering patterns against the rule set. It holds
// configuration only; every call builds its own accumulator, so a single
// Validator is safe for concurrent use.
type Validator struct {
	cfg Config
}

// NewValidator returns a Validator using cfg. cfg values of zero are
// replaced with defaults so a zero Config behaves like DefaultConfig.
func NewValidator(cfg Config) *Validator {
	def := DefaultConfig()
	if cfg.MaxFretSpan == 0 {
		cfg.MaxFretSpan = def.MaxFretSpan
	}
	if cfg.MaxFingerStretch == 0 {
		cfg.MaxFingerStretch = def.MaxFingerStretch
	}
	if cfg.MaxSimultaneousFingers == 0 {
		cfg.MaxSimultaneousFingers = def.MaxSimultaneousFingers
	}
	return &Validator{cfg: cfg}
}

// Config returns the effective configuration.
func (v *Validator) Config() Config {
	return v.cfg
}

// Validate runs the full rule set against pattern and returns a complete
// result. It never returns an error: malformed input yields a 400-class
// result and an internal rule panic yields a 500-class result, so callers
// enumerating large pattern spaces can treat every outcome uniformly.
//
// # Inputs
//   - ctx: carries the trace span; may be context.Background()
//   - pattern: exactly six string specifications, string 1 (treble) first
//
// # Outputs
//   - *ValidationResult: never nil
func (v *Validator) Validate(ctx context.Context, pattern ChordPattern) (result *ValidationResult) {
	ctx, span := tracer.Start(ctx, "fingering.Validate")
	defer span.End()
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			result = engineErrorResult(fmt.Errorf("%v", r))
		}
		recordValidation(ctx, result, time.Since(start))
		span.SetAttributes(
			attribute.Int("fingering.status_code", int(result.StatusCode)),
			attribute.Bool("fingering.is_valid", result.IsValid),
		)
	}()

	positions, fatal := parsePattern(pattern)
	if fatal != nil {
		return &ValidationResult{
			StatusCode: fatal.Code,
			StatusName: fatal.Code.Name(),
			Messages:   []ValidationMessage{*fatal},
		}
	}

	hand := calculateHandPosition(positions)
	eval := &evaluation{cfg: v.cfg, positions: positions, hand: hand}
	for _, rule := range rules {
		rule.apply(eval)
	}

	return buildResult(positions, hand, eval.messages)
}

// ValidateText parses a comma-separated pattern like "X,3:3,2:2,O,1:1,O"
// and validates it.
func (v *Validator) ValidateText(ctx context.Context, text string) (*ValidationResult, error) {
	pattern, err := ParsePatternText(text)
	if err != nil {
		return nil, err
	}
	return v.Validate(ctx, pattern), nil
}

// resolve folds the accumulated messages into an outcome. The first error
// message in rule-execution order decides the reason for invalid patterns;
// later errors are still reported in Messages but do not change the status.
func resolve(messages []ValidationMessage) Outcome {
	hasWarnings := false
	for _, msg := range messages {
		switch msg.Severity {
		case SeverityError:
			return Outcome{Verdict: VerdictInvalid, Reason: msg.Code}
		case SeverityWarning:
			hasWarnings = true
		}
	}
	if hasWarnings {
		return Outcome{Verdict: VerdictValidWithWarnings}
	}
	return Outcome{Verdict: VerdictValid}
}

func buildResult(positions []FingerPosition, hand HandPosition, messages []ValidationMessage) *ValidationResult {
	outcome := resolve(messages)
	status := outcome.Status()
	if messages == nil {
		messages = []ValidationMessage{}
	}
	// HasWarnings reports the presence of warning messages independently of
	// the verdict: an invalid pattern with warnings still carries them.
	hasWarnings := false
	for _, msg := range messages {
		if msg.Severity == SeverityWarning {
			hasWarnings = true
			break
		}
	}
	return &ValidationResult{
		StatusCode:      status,
		StatusName:      status.Name(),
		IsValid:         outcome.Verdict != VerdictInvalid,
		HasWarnings:     hasWarnings,
		Messages:        messages,
		FingerPositions: positions,
		HandPosition:    &hand,
	}
}

func engineErrorResult(err error) *ValidationResult {
	return &ValidationResult{
		StatusCode: StatusValidationEngineError,
		StatusName: StatusValidationEngineError.Name(),
		Messages: []ValidationMessage{{
			Code:     StatusValidationEngineError,
			Severity: SeverityError,
			Message:  fmt.Sprintf("Validation engine error: %v", err),
			Rule:     "system",
		}},
	}
}

func recordValidation(ctx context.Context, result *ValidationResult, elapsed time.Duration) {
	if err := initMetrics(); err != nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.Int("status_code", int(result.StatusCode)),
		attribute.Bool("is_valid", result.IsValid),
	)
	validationCounter.Add(ctx, 1, attrs)
	validationDuration.Record(ctx, elapsed.Seconds(), attrs)
}
