// Copyright (C) 2025 Wood and Wire (maintainers@woodandwire.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package survey

import "github.com/woodandwire/ChordMaker/services/fingering"

// Prefilter is a cheap, intentionally incomplete re-check of hard failure
// conditions, used to skip full validation and hashing during generation.
//
// Contract: if Reject returns ok=true, full validation of the same pattern
// under the same configuration is guaranteed to report is_valid=false.
// Letting an invalid pattern through is fine (it fails full validation
// anyway); rejecting a pattern full validation would accept is a defect.
// Each predicate below is gated accordingly: in particular, stretch-based
// rejections only apply below the 7th fret, where the rule engine never
// downgrades stretch errors to warnings.
type Prefilter struct {
	cfg fingering.Config
}

// NewPrefilter returns a Prefilter matched to the validator configuration
// the run uses. The pairing matters: the soundness contract only holds
// when both see the same limits.
func NewPrefilter(cfg fingering.Config) *Prefilter {
	return &Prefilter{cfg: cfg}
}

// Reject reports whether the pattern is certain to fail full validation,
// and the status that validation would class it under.
func (p *Prefilter) Reject(pattern fingering.ChordPattern) (fingering.StatusCode, bool) {
	if fingerOnFretZero(pattern) {
		return fingering.StatusInvalidInput, true
	}
	if splitFinger(pattern) {
		return fingering.StatusPhysicallyImpossible, true
	}
	if anatomicalGapViolation(pattern) {
		return fingering.StatusPhysicallyImpossible, true
	}
	if unplayableSpan(pattern) {
		return fingering.StatusExcessiveStretch, true
	}
	if tooManyFingers(pattern, p.cfg.MaxSimultaneousFingers) {
		return fingering.StatusTooManyFingers, true
	}
	return 0, false
}

// fingerOnFretZero reports a numbered finger or thumb assigned to fret 0;
// parsing rejects these as malformed input.
func fingerOnFretZero(pattern fingering.ChordPattern) bool {
	for _, a := range pattern {
		if a.Finger != fingering.FingerMuted && a.Finger != fingering.FingerOpen && a.Fret == 0 {
			return true
		}
	}
	return false
}

// splitFinger reports one numbered finger assigned to two distinct frets.
// The rule engine treats any such split as an error regardless of the
// distance, so rejecting every split is sound.
func splitFinger(pattern fingering.ChordPattern) bool {
	frets := make(map[fingering.Finger]int)
	for _, a := range pattern {
		if !a.Finger.IsNumbered() {
			continue
		}
		if prev, ok := frets[a.Finger]; ok && prev != a.Fret {
			return true
		}
		frets[a.Finger] = a.Fret
	}
	return false
}

// anatomicalGapViolation reports adjacent finger numbers separated by more
// frets than the anatomical table allows, in a position where the rule
// engine cannot downgrade the error.
func anatomicalGapViolation(pattern fingering.ChordPattern) bool {
	frets := make(map[int]int)
	minFret := 0
	for _, a := range pattern {
		if !a.Finger.IsNumbered() {
			continue
		}
		frets[a.Finger.Number()] = a.Fret
		if minFret == 0 || a.Fret < minFret {
			minFret = a.Fret
		}
	}
	if minFret >= 7 {
		return false
	}
	for lower := 1; lower <= 3; lower++ {
		f1, ok1 := frets[lower]
		f2, ok2 := frets[lower+1]
		if !ok1 || !ok2 {
			continue
		}
		gap := f2 - f1
		if gap < 0 {
			gap = -gap
		}
		if gap > fingering.MaxAdjacentFingerGap(lower) {
			return true
		}
	}
	return false
}

// unplayableSpan reports a span between numbered fingers wide enough that
// the pairwise stretch rule is guaranteed to emit an error. A 5-fret span
// between two numbered fingers always scores past the stretch limit; the
// error survives unless the whole hand (thumb included) sits at or above
// the 7th fret with an overall span no wider than 5. Thumb-only spans are
// never rejected here: the rule engine only warns about them.
func unplayableSpan(pattern fingering.ChordPattern) bool {
	numberedMin, numberedMax := 0, 0
	handMin, handMax := 0, 0
	for _, a := range pattern {
		if a.Finger == fingering.FingerMuted || a.Finger == fingering.FingerOpen {
			continue
		}
		if handMin == 0 || a.Fret < handMin {
			handMin = a.Fret
		}
		if a.Fret > handMax {
			handMax = a.Fret
		}
		if !a.Finger.IsNumbered() {
			continue
		}
		if numberedMin == 0 || a.Fret < numberedMin {
			numberedMin = a.Fret
		}
		if a.Fret > numberedMax {
			numberedMax = a.Fret
		}
	}
	if numberedMax-numberedMin < 5 {
		return false
	}
	discounted := handMin >= 7 && handMax-handMin <= 5
	return !discounted
}

// tooManyFingers reports more distinct numbered fingers than the validator
// allows simultaneously.
func tooManyFingers(pattern fingering.ChordPattern, limit int) bool {
	distinct := make(map[fingering.Finger]struct{})
	for _, a := range pattern {
		if a.Finger.IsNumbered() {
			distinct[a.Finger] = struct{}{}
		}
	}
	return len(distinct) > limit
}
