// Copyright (C) 2025 Wood and Wire (maintainers@woodandwire.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package fingering validates six-string fingering patterns for physical
// playability.
//
// # Description
//
// This package implements a rule-based validation engine over a fixed
// six-string layout. A pattern assigns each string a finger indicator and a
// fret; the engine derives the hand position (span, thumb, barre) and runs
// seven independent anatomical and ergonomic rules, each contributing
// severity-tagged messages. Results carry HTTP-style status codes for
// compatibility with the legacy catalog format.
//
// The engine reasons purely about hand mechanics. It knows nothing about
// keys, scales, or chord names.
//
// # Thread Safety
//
// Validator is stateless apart from its configuration and is safe for
// concurrent use. Every call to Validate works on a fresh accumulator.
package fingering

import "fmt"

// StringCount is the number of strings on the instrument.
const StringCount = 6

// MaxFretNumber is the highest fret the model accepts.
const MaxFretNumber = 24

// Finger identifies what is assigned to a string.
type Finger string

const (
	// FingerMuted marks a string that is not played.
	FingerMuted Finger = "X"

	// FingerOpen marks a string played without fretting.
	FingerOpen Finger = "O"

	// FingerIndex through FingerPinky are the numbered fretting fingers.
	FingerIndex  Finger = "1"
	FingerMiddle Finger = "2"
	FingerRing   Finger = "3"
	FingerPinky  Finger = "4"

	// FingerThumb is a thumb wrapped over the neck.
	FingerThumb Finger = "T"
)

// IsNumbered reports whether the finger is one of the four fretting fingers.
func (f Finger) IsNumbered() bool {
	switch f {
	case FingerIndex, FingerMiddle, FingerRing, FingerPinky:
		return true
	}
	return false
}

// Number returns the finger number (1-4) for numbered fingers, 0 otherwise.
func (f Finger) Number() int {
	if f.IsNumbered() {
		return int(f[0] - '0')
	}
	return 0
}

// FingerAssignment is the per-string input: an indicator plus a fret.
// Muted and open strings carry fret 0.
type FingerAssignment struct {
	Finger Finger `json:"finger"`
	Fret   int    `json:"fret"`
}

// ChordPattern is an ordered list of exactly StringCount assignments.
// Index 0 is the lowest (6th) string, index 5 the highest (1st). String
// numbers reported in positions and messages are index+1.
type ChordPattern []FingerAssignment

// FingerPosition is a fretted position derived from a pattern. Muted and
// open strings are excluded, so Fret is always positive for valid input.
type FingerPosition struct {
	Finger Finger `json:"finger"`
	String int    `json:"string"`
	Fret   int    `json:"fret"`
}

// HandPosition is the derived overall hand placement. It is recomputed per
// validation and never mutated afterward.
type HandPosition struct {
	MinFret  int `json:"min_fret"`
	MaxFret  int `json:"max_fret"`
	FretSpan int `json:"fret_span"`

	// ThumbFret is the thumb's fret, nil when the thumb is unused.
	ThumbFret *int `json:"thumb_fret"`

	// BarreFret is the fret of the recognized barre group, nil when no
	// group qualifies.
	BarreFret *int `json:"barre_fret"`

	// BarreStrings are the strings covered by the recognized barre.
	// Empty (never nil) when BarreFret is nil.
	BarreStrings []int `json:"barre_strings"`
}

// HasBarre reports whether a qualifying barre group was recognized.
func (h HandPosition) HasBarre() bool {
	return h.BarreFret != nil
}

// Severity indicates the importance of a validation message.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// StatusCode is the legacy HTTP-style classification code. Codes below 400
// are playable; 4xx codes name the mechanical violation; 500 is an internal
// engine fault.
type StatusCode int

const (
	StatusValid                 StatusCode = 200
	StatusValidWithWarnings     StatusCode = 201
	StatusInvalidInput          StatusCode = 400
	StatusPhysicallyImpossible  StatusCode = 401
	StatusExcessiveStretch      StatusCode = 402
	StatusFingerCollision       StatusCode = 403
	StatusThumbPositionError    StatusCode = 404
	StatusTooManyFingers        StatusCode = 405
	StatusInconsistentBarre     StatusCode = 406
	StatusValidationEngineError StatusCode = 500
)

// Name returns the symbolic name of the status code.
func (s StatusCode) Name() string {
	switch s {
	case StatusValid:
		return "VALID"
	case StatusValidWithWarnings:
		return "VALID_WITH_WARNINGS"
	case StatusInvalidInput:
		return "INVALID_INPUT"
	case StatusPhysicallyImpossible:
		return "PHYSICALLY_IMPOSSIBLE"
	case StatusExcessiveStretch:
		return "EXCESSIVE_STRETCH"
	case StatusFingerCollision:
		return "FINGER_COLLISION"
	case StatusThumbPositionError:
		return "THUMB_POSITION_ERROR"
	case StatusTooManyFingers:
		return "TOO_MANY_FINGERS"
	case StatusInconsistentBarre:
		return "INCONSISTENT_BARRE"
	case StatusValidationEngineError:
		return "VALIDATION_ENGINE_ERROR"
	default:
		return "UNKNOWN"
	}
}

// Verdict classifies a validation outcome independent of the legacy codes.
type Verdict int

const (
	// VerdictValid means no rule produced an error or warning.
	VerdictValid Verdict = iota

	// VerdictValidWithWarnings means the pattern is playable with caveats.
	VerdictValidWithWarnings

	// VerdictInvalid means at least one rule produced an error.
	VerdictInvalid
)

// Outcome is the resolver's tagged result. Reason is set only for
// VerdictInvalid and holds the code of the first error message in
// rule-execution order.
type Outcome struct {
	Verdict Verdict
	Reason  StatusCode
}

// Status maps the outcome to its legacy wire code.
func (o Outcome) Status() StatusCode {
	switch o.Verdict {
	case VerdictValidWithWarnings:
		return StatusValidWithWarnings
	case VerdictInvalid:
		return o.Reason
	default:
		return StatusValid
	}
}

// ValidationMessage is one finding from a rule.
type ValidationMessage struct {
	// Code is the status classification for this finding.
	Code StatusCode `json:"code"`

	// Severity is error, warning, or info.
	Severity Severity `json:"severity"`

	// Message is the human-readable description.
	Message string `json:"message"`

	// Rule names the rule that produced the finding.
	Rule string `json:"rule"`

	// AffectedStrings lists the string numbers involved, if any.
	AffectedStrings []int `json:"affected_strings"`
}

// ValidationResult is the full outcome of validating one pattern.
// Produced fresh per call and never shared mutably.
type ValidationResult struct {
	StatusCode      StatusCode          `json:"status_code"`
	StatusName      string              `json:"status_name"`
	IsValid         bool                `json:"is_valid"`
	HasWarnings     bool                `json:"has_warnings"`
	Messages        []ValidationMessage `json:"messages"`
	FingerPositions []FingerPosition    `json:"finger_positions"`
	HandPosition    *HandPosition       `json:"hand_position"`
}

// Config holds the validator's physical limits. Immutable for a run.
type Config struct {
	// ThumbReachStrings is how many strings, counted from the bass side,
	// a wrapped thumb can fret. 0 disallows thumb fretting entirely.
	ThumbReachStrings int `yaml:"thumb_reach_strings" validate:"min=0,max=6"`

	// MaxFretSpan is the widest fret range most players can cover.
	MaxFretSpan int `yaml:"max_fret_span" validate:"min=1"`

	// MaxFingerStretch is the widest fret distance between any two fingers.
	MaxFingerStretch int `yaml:"max_finger_stretch" validate:"min=1"`

	// MaxSimultaneousFingers caps distinct numbered fingers in a pattern.
	MaxSimultaneousFingers int `yaml:"max_simultaneous_fingers" validate:"min=1,max=4"`
}

// DefaultConfig returns the standard limits for an average adult hand.
func DefaultConfig() Config {
	return Config{
		ThumbReachStrings:      1,
		MaxFretSpan:            4,
		MaxFingerStretch:       5,
		MaxSimultaneousFingers: 4,
	}
}

// Validate checks the limits against their supported ranges. NewValidator
// fills zero values with defaults; callers taking limits from external
// input should Validate first so out-of-range values are rejected rather
// than silently applied.
func (c Config) Validate() error {
	if c.ThumbReachStrings < 0 || c.ThumbReachStrings > StringCount {
		return fmt.Errorf("%w: thumb reach %d outside 0-%d", ErrInvalidConfig, c.ThumbReachStrings, StringCount)
	}
	if c.MaxFretSpan < 0 || c.MaxFretSpan > MaxFretNumber {
		return fmt.Errorf("%w: max fret span %d outside 0-%d", ErrInvalidConfig, c.MaxFretSpan, MaxFretNumber)
	}
	if c.MaxFingerStretch < 0 || c.MaxFingerStretch > MaxFretNumber {
		return fmt.Errorf("%w: max finger stretch %d outside 0-%d", ErrInvalidConfig, c.MaxFingerStretch, MaxFretNumber)
	}
	if c.MaxSimultaneousFingers < 0 || c.MaxSimultaneousFingers > 4 {
		return fmt.Errorf("%w: max simultaneous fingers %d outside 0-4", ErrInvalidConfig, c.MaxSimultaneousFingers)
	}
	return nil
}
