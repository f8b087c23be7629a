// Copyright (C) 2025 Wood and Wire (maintainers@woodandwire.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package fingering

import (
	"fmt"
	"sort"
	"strings"
)

// evaluation is the per-call accumulator threaded through every rule.
// Rules communicate only by appending messages; they never fail for
// expected domain conditions.
type evaluation struct {
	cfg       Config
	positions []FingerPosition
	hand      HandPosition
	messages  []ValidationMessage
}

func (e *evaluation) add(msg ValidationMessage) {
	e.messages = append(e.messages, msg)
}

// rules lists the validation rules in execution order. Order matters: the
// resolver reports the code of the first error message, so changing this
// table changes the overall status of multi-fault patterns.
var rules = []struct {
	name  string
	apply func(*evaluation)
}{
	{"basic_validation", (*evaluation).ruleBasicValidation},
	{"fret_span_check", (*evaluation).ruleFretSpanCheck},
	{"finger_stretch_check", (*evaluation).ruleFingerStretchCheck},
	{"finger_collision_check", (*evaluation).ruleFingerCollisionCheck},
	{"thumb_position_check", (*evaluation).ruleThumbPositionCheck},
	{"barre_consistency_check", (*evaluation).ruleBarreConsistencyCheck},
	{"ergonomic_assessment", (*evaluation).ruleErgonomicAssessment},
}

// anatomicalGapLimits is the maximum fret distance between adjacent finger
// pairs, indexed by the lower finger number. The ring-pinky pair is the
// most restrictive.
var anatomicalGapLimits = [4]int{0, 4, 3, 2}

// MaxAdjacentFingerGap returns the largest playable fret distance between
// fingers lower and lower+1. Gaps beyond it fail validation outright unless
// the whole shape sits high on the neck. lower must be 1, 2, or 3.
func MaxAdjacentFingerGap(lower int) int {
	return anatomicalGapLimits[lower]
}

// ruleBasicValidation covers finger count, split fingers, and gross
// ordering problems.
func (e *evaluation) ruleBasicValidation() {
	const ruleName = "basic_validation"

	// Fret 0 is rejected at parse time; this re-check guards internal
	// callers that construct positions directly.
	for _, pos := range e.positions {
		if pos.Fret == 0 {
			e.add(ValidationMessage{
				Code:     StatusPhysicallyImpossible,
				Severity: SeverityError,
				Message: fmt.Sprintf("Finger %s cannot be placed on fret 0 (open string) on string %d",
					pos.Finger, pos.String),
				Rule:            ruleName,
				AffectedStrings: []int{pos.String},
			})
		}
	}

	distinct := make(map[Finger]bool)
	for _, pos := range e.positions {
		if pos.Finger != FingerThumb {
			distinct[pos.Finger] = true
		}
	}
	if len(distinct) > e.cfg.MaxSimultaneousFingers {
		e.add(ValidationMessage{
			Code:     StatusTooManyFingers,
			Severity: SeverityError,
			Message: fmt.Sprintf("Using %d fingers exceeds maximum of %d",
				len(distinct), e.cfg.MaxSimultaneousFingers),
			Rule: ruleName,
		})
	}

	// One finger cannot hold two different frets at once.
	fretsByFinger := make(map[Finger][]int)
	var fingerOrder []Finger
	for _, pos := range e.positions {
		if _, seen := fretsByFinger[pos.Finger]; !seen {
			fingerOrder = append(fingerOrder, pos.Finger)
		}
		fretsByFinger[pos.Finger] = append(fretsByFinger[pos.Finger], pos.Fret)
	}
	for _, finger := range fingerOrder {
		unique := uniqueSorted(fretsByFinger[finger])
		if len(unique) > 1 {
			e.add(ValidationMessage{
				Code:     StatusPhysicallyImpossible,
				Severity: SeverityError,
				Message: fmt.Sprintf("Finger %s cannot be on multiple different frets: %v",
					finger, unique),
				Rule: ruleName,
			})
		}
	}

	// Ordering heuristic: a higher-numbered finger far behind a
	// lower-numbered one is suspicious but not impossible, hence warning.
	byNumber := numberedFingerFrets(e.positions)
	numbers := sortedKeys(byNumber)
	for i := 0; i < len(numbers)-1; i++ {
		finger, fret := numbers[i], byNumber[numbers[i]]
		nextFinger, nextFret := numbers[i+1], byNumber[numbers[i+1]]
		if nextFret < fret-2 {
			e.add(ValidationMessage{
				Code:     StatusPhysicallyImpossible,
				Severity: SeverityWarning,
				Message: fmt.Sprintf("Finger %d on fret %d is unusually far behind finger %d on fret %d",
					nextFinger, nextFret, finger, fret),
				Rule: ruleName,
			})
		}
	}
}

// ruleFretSpanCheck flags spans beyond human reach.
func (e *evaluation) ruleFretSpanCheck() {
	const ruleName = "fret_span_check"

	span := e.hand.FretSpan
	if span > e.cfg.MaxFretSpan {
		severity := SeverityWarning
		verb := "approaches"
		if span > e.cfg.MaxFretSpan+2 {
			severity = SeverityError
			verb = "exceeds"
		}
		e.add(ValidationMessage{
			Code:     StatusExcessiveStretch,
			Severity: severity,
			Message: fmt.Sprintf("Fret span of %d %s maximum of %d",
				span, verb, e.cfg.MaxFretSpan),
			Rule: ruleName,
		})
	}

	// Wide shapes near the nut demand more reach; frets are widest there.
	if span >= e.cfg.MaxFretSpan && e.hand.MinFret <= 3 && span > 0 {
		e.add(ValidationMessage{
			Code:     StatusExcessiveStretch,
			Severity: SeverityWarning,
			Message: fmt.Sprintf("Wide span (%d frets) in lower positions may be difficult for beginners",
				span),
			Rule: ruleName,
		})
	}
}

// ruleFingerStretchCheck applies the per-pair anatomical gap table, a
// composite stretch score over all finger pairs, and a diagonal check.
//
// The position discount is decided before any message is emitted: past the
// 7th fret the frets sit close enough together that a stretch error
// becomes a warning, provided the span stays moderate.
func (e *evaluation) ruleFingerStretchCheck() {
	const ruleName = "finger_stretch_check"

	easier := e.hand.MinFret >= 7 && e.hand.FretSpan <= 5

	addStretch := func(severity Severity, code StatusCode, text string, affected []int) {
		if severity == SeverityError && easier {
			severity = SeverityWarning
			text += " (easier in higher fret positions)"
		}
		e.add(ValidationMessage{
			Code:            code,
			Severity:        severity,
			Message:         text,
			Rule:            ruleName,
			AffectedStrings: affected,
		})
	}

	byNumber := numberedFingerPositions(e.positions)

	// Adjacent pairs against the anatomical table.
	for lower := 1; lower <= 3; lower++ {
		p1, ok1 := byNumber[lower]
		p2, ok2 := byNumber[lower+1]
		if !ok1 || !ok2 {
			continue
		}
		gap := absInt(p2.Fret - p1.Fret)
		limit := anatomicalGapLimits[lower]
		switch {
		case gap > limit:
			addStretch(SeverityError, StatusPhysicallyImpossible,
				fmt.Sprintf("Anatomically impossible: %d-fret gap between adjacent fingers %d-%d (max %d frets)",
					gap, lower, lower+1, limit),
				[]int{p1.String, p2.String})
		case gap == limit && gap > 0:
			addStretch(SeverityWarning, StatusExcessiveStretch,
				fmt.Sprintf("%d-fret gap between fingers %d-%d is at anatomical limit",
					gap, lower, lower+1),
				[]int{p1.String, p2.String})
		case gap == limit-1 && gap > 0:
			addStretch(SeverityWarning, StatusExcessiveStretch,
				fmt.Sprintf("%d-fret gap between fingers %d-%d is challenging",
					gap, lower, lower+1),
				[]int{p1.String, p2.String})
		}
	}

	// Composite difficulty over every finger pair catches combinations the
	// adjacent table cannot see.
	numbers := sortedKeysPos(byNumber)
	for i := 0; i < len(numbers); i++ {
		for j := i + 1; j < len(numbers); j++ {
			p1, p2 := byNumber[numbers[i]], byNumber[numbers[j]]
			difficulty := float64(absInt(p2.Fret-p1.Fret)) + 0.5*float64(absInt(p2.String-p1.String))
			switch {
			case difficulty > 4:
				addStretch(SeverityError, StatusExcessiveStretch,
					fmt.Sprintf("Excessive stretch between finger %d (string %d, fret %d) and finger %d (string %d, fret %d)",
						numbers[i], p1.String, p1.Fret, numbers[j], p2.String, p2.Fret),
					[]int{p1.String, p2.String})
			case difficulty > 3:
				addStretch(SeverityWarning, StatusExcessiveStretch,
					fmt.Sprintf("Challenging stretch between finger %d and finger %d",
						numbers[i], numbers[j]),
					[]int{p1.String, p2.String})
			}
		}
	}

	// Diagonal stretches across both axes are harder than either alone.
	for i := 0; i < len(e.positions); i++ {
		for j := i + 1; j < len(e.positions); j++ {
			p1, p2 := e.positions[i], e.positions[j]
			if !p1.Finger.IsNumbered() || !p2.Finger.IsNumbered() || p1.Finger == p2.Finger {
				continue
			}
			if absInt(p1.String-p2.String) >= 3 && absInt(p1.Fret-p2.Fret) >= 3 {
				addStretch(SeverityWarning, StatusExcessiveStretch,
					fmt.Sprintf("Large diagonal stretch between finger %s and finger %s",
						p1.Finger, p2.Finger),
					[]int{p1.String, p2.String})
			}
		}
	}
}

// ruleFingerCollisionCheck flags fingers competing for the same physical
// space and fingers likely to damp neighboring strings.
func (e *evaluation) ruleFingerCollisionCheck() {
	const ruleName = "finger_collision_check"

	for i := 0; i < len(e.positions); i++ {
		for j := i + 1; j < len(e.positions); j++ {
			p1, p2 := e.positions[i], e.positions[j]
			stringDiff := absInt(p1.String - p2.String)
			fretDiff := absInt(p1.Fret - p2.Fret)

			if stringDiff == 1 && fretDiff == 0 && p1.Finger != p2.Finger {
				e.add(ValidationMessage{
					Code:     StatusFingerCollision,
					Severity: SeverityWarning,
					Message: fmt.Sprintf("Potential finger collision: finger %s and %s both on fret %d on adjacent strings",
						p1.Finger, p2.Finger, p1.Fret),
					Rule:            ruleName,
					AffectedStrings: []int{p1.String, p2.String},
				})
			}

			if stringDiff == 1 && fretDiff == 1 {
				ahead := p1
				if p2.Fret > p1.Fret {
					ahead = p2
				}
				lowerString := p1.String
				if p2.String < lowerString {
					lowerString = p2.String
				}
				e.add(ValidationMessage{
					Code:     StatusFingerCollision,
					Severity: SeverityInfo,
					Message: fmt.Sprintf("Finger %s might interfere with string %d - ensure clean fretting",
						ahead.Finger, lowerString),
					Rule:            ruleName,
					AffectedStrings: []int{p1.String, p2.String},
				})
			}
		}
	}

	// A fretted finger arches over its neighbors; an adjacent string with
	// no assignment of its own may get damped.
	for _, pos := range e.positions {
		for _, adj := range []int{pos.String - 1, pos.String + 1} {
			if adj < 1 || adj > StringCount {
				continue
			}
			if stringIsFretted(adj, e.positions) {
				continue
			}
			e.add(ValidationMessage{
				Code:     StatusFingerCollision,
				Severity: SeverityInfo,
				Message: fmt.Sprintf("Finger %s on string %d might accidentally mute string %d - ensure finger arch",
					pos.Finger, pos.String, adj),
				Rule:            ruleName,
				AffectedStrings: []int{pos.String, adj},
			})
		}
	}
}

// thumbReachDescriptions maps the reach setting to a user-facing phrase.
var thumbReachDescriptions = map[int]string{
	0: "no thumb fretting",
	1: "6th string only",
	2: "6th and 5th strings",
	3: "6th, 5th, and 4th strings",
	4: "6th through 3rd strings",
	5: "6th through 2nd strings",
	6: "all strings",
}

// ruleThumbPositionCheck validates thumb usage against the configured reach.
func (e *evaluation) ruleThumbPositionCheck() {
	const ruleName = "thumb_position_check"

	var thumbs []FingerPosition
	for _, pos := range e.positions {
		if pos.Finger == FingerThumb {
			thumbs = append(thumbs, pos)
		}
	}
	if len(thumbs) == 0 {
		return
	}

	if e.cfg.ThumbReachStrings == 0 {
		affected := make([]int, len(thumbs))
		for i, pos := range thumbs {
			affected[i] = pos.String
		}
		e.add(ValidationMessage{
			Code:            StatusThumbPositionError,
			Severity:        SeverityError,
			Message:         "Thumb fretting is not allowed in current configuration",
			Rule:            ruleName,
			AffectedStrings: affected,
		})
		return
	}

	minReachable := 7 - e.cfg.ThumbReachStrings
	if minReachable < 1 {
		minReachable = 1
	}

	for _, thumb := range thumbs {
		if thumb.String < minReachable {
			desc, ok := thumbReachDescriptions[e.cfg.ThumbReachStrings]
			if !ok {
				desc = fmt.Sprintf("%d strings from bass", e.cfg.ThumbReachStrings)
			}
			e.add(ValidationMessage{
				Code:     StatusThumbPositionError,
				Severity: SeverityError,
				Message: fmt.Sprintf("Thumb cannot reach string %d with current reach setting (%s)",
					thumb.String, desc),
				Rule:            ruleName,
				AffectedStrings: []int{thumb.String},
			})
		} else if thumb.String == minReachable && e.cfg.ThumbReachStrings < 6 {
			e.add(ValidationMessage{
				Code:     StatusThumbPositionError,
				Severity: SeverityWarning,
				Message: fmt.Sprintf("Thumb on string %d is at maximum reach - may be difficult for some players",
					thumb.String),
				Rule:            ruleName,
				AffectedStrings: []int{thumb.String},
			})
		}

		if thumb.Fret > e.hand.MaxFret {
			e.add(ValidationMessage{
				Code:     StatusThumbPositionError,
				Severity: SeverityWarning,
				Message: fmt.Sprintf("Thumb on fret %d is ahead of hand position (max fret %d)",
					thumb.Fret, e.hand.MaxFret),
				Rule:            ruleName,
				AffectedStrings: []int{thumb.String},
			})
		}

		// A wrapped thumb near a finger at a distant fret twists the wrist.
		for _, pos := range e.positions {
			if pos.Finger == FingerThumb || pos.String < 4 {
				continue
			}
			if absInt(thumb.String-pos.String) <= 2 && absInt(thumb.Fret-pos.Fret) > 2 {
				e.add(ValidationMessage{
					Code:     StatusThumbPositionError,
					Severity: SeverityWarning,
					Message: fmt.Sprintf("Thumb position may interfere with finger %s - check hand comfort",
						pos.Finger),
					Rule:            ruleName,
					AffectedStrings: []int{thumb.String, pos.String},
				})
			}
		}
	}
}

// ruleBarreConsistencyCheck validates barre shapes: interior gaps, spread,
// interference from fingers behind the barre, strength demands, and
// blocking between stacked barres.
func (e *evaluation) ruleBarreConsistencyCheck() {
	const ruleName = "barre_consistency_check"

	groups := barreGroups(e.positions)

	// (a) Any multi-string group that sandwiches a completely unfretted
	// string is impossible regardless of which group was recognized as
	// the hand's barre.
	for _, g := range groups {
		if len(g.strings) < 2 || g.finger == FingerThumb {
			continue
		}
		sorted := append([]int(nil), g.strings...)
		sort.Ints(sorted)
		for i := 0; i < len(sorted)-1; i++ {
			if sorted[i+1]-sorted[i] <= 1 {
				continue
			}
			var gapStrings []int
			for s := sorted[i] + 1; s < sorted[i+1]; s++ {
				if !stringIsFretted(s, e.positions) {
					gapStrings = append(gapStrings, s)
				}
			}
			if len(gapStrings) > 0 {
				e.add(ValidationMessage{
					Code:     StatusInconsistentBarre,
					Severity: SeverityError,
					Message: fmt.Sprintf("Invalid barre: finger %s cannot span strings %d-%d with open/muted strings %v in between",
						g.finger, sorted[0], sorted[len(sorted)-1], gapStrings),
					Rule:            ruleName,
					AffectedStrings: append(append([]int(nil), g.strings...), gapStrings...),
				})
			}
		}
	}

	// (c) Blocking interference between barres on different fingers: the
	// finger nearer the nut is occluded when another finger barres well
	// ahead of it on overlapping or neighboring strings.
	var barres []barreGroup
	for _, g := range groups {
		if len(g.strings) >= 2 && g.finger.IsNumbered() {
			barres = append(barres, g)
		}
	}
	for i := 0; i < len(barres); i++ {
		for j := i + 1; j < len(barres); j++ {
			lower, higher := barres[i], barres[j]
			if lower.finger.Number() > higher.finger.Number() {
				lower, higher = higher, lower
			}
			if lower.finger == higher.finger {
				continue
			}
			gap := higher.fret - lower.fret
			threshold := 4
			if higher.finger.Number()-lower.finger.Number() == 1 {
				threshold = 3
			}
			if gap >= threshold && stringSetsTouch(lower.strings, higher.strings) {
				e.add(ValidationMessage{
					Code:     StatusPhysicallyImpossible,
					Severity: SeverityError,
					Message: fmt.Sprintf("Barre blocking: fingers %d-%d with %d-fret gap creates impossible hand position",
						lower.finger.Number(), higher.finger.Number(), gap),
					Rule:            ruleName,
					AffectedStrings: append(append([]int(nil), lower.strings...), higher.strings...),
				})
			}
		}
	}

	// (b) Checks against the recognized barre only.
	if !e.hand.HasBarre() {
		return
	}
	barreFret := *e.hand.BarreFret
	barreStrings := e.hand.BarreStrings

	if len(barreStrings) < 2 {
		e.add(ValidationMessage{
			Code:     StatusInconsistentBarre,
			Severity: SeverityWarning,
			Message: fmt.Sprintf("Barre chord detected but only spans %d string(s) - consider if barre is necessary",
				len(barreStrings)),
			Rule:            ruleName,
			AffectedStrings: barreStrings,
		})
	} else if len(barreStrings) > StringCount {
		e.add(ValidationMessage{
			Code:            StatusInconsistentBarre,
			Severity:        SeverityError,
			Message:         fmt.Sprintf("Barre cannot span more than %d strings", StringCount),
			Rule:            ruleName,
			AffectedStrings: barreStrings,
		})
	}

	if len(barreStrings) > 2 {
		sorted := append([]int(nil), barreStrings...)
		sort.Ints(sorted)
		for i := 0; i < len(sorted)-1; i++ {
			if sorted[i+1]-sorted[i] > 2 {
				e.add(ValidationMessage{
					Code:            StatusInconsistentBarre,
					Severity:        SeverityWarning,
					Message:         "Barre chord has large gaps between strings - ensure proper finger placement",
					Rule:            ruleName,
					AffectedStrings: barreStrings,
				})
				break
			}
		}
	}

	var barreFinger Finger
	for _, pos := range e.positions {
		if pos.Fret == barreFret && containsInt(barreStrings, pos.String) {
			barreFinger = pos.Finger
			break
		}
	}
	if barreFinger != "" {
		for _, pos := range e.positions {
			if pos.Finger == barreFinger || pos.Fret >= barreFret {
				continue
			}
			minDist := StringCount
			for _, s := range barreStrings {
				if d := absInt(pos.String - s); d < minDist {
					minDist = d
				}
			}
			if minDist <= 1 {
				e.add(ValidationMessage{
					Code:     StatusInconsistentBarre,
					Severity: SeverityWarning,
					Message: fmt.Sprintf("Finger %s behind barre might interfere - ensure proper hand position",
						pos.Finger),
					Rule:            ruleName,
					AffectedStrings: append([]int{pos.String}, barreStrings...),
				})
			}
		}
	}

	// Barres covering five or more strings demand real strength, and the
	// demand peaks near the nut where string tension is highest.
	if len(barreStrings) >= 5 {
		severity := SeverityWarning
		positionDesc := "higher position"
		if barreFret <= 3 {
			severity = SeverityError
			positionDesc = "low position"
		}
		e.add(ValidationMessage{
			Code:     StatusInconsistentBarre,
			Severity: severity,
			Message: fmt.Sprintf("Full barre in %s (fret %d) requires significant finger strength",
				positionDesc, barreFret),
			Rule:            ruleName,
			AffectedStrings: barreStrings,
		})
	}
}

// difficulty level boundaries for the ergonomic score.
const (
	difficultyEasyMax        = 1.0
	difficultyModerateMax    = 2.5
	difficultyChallengingMax = 4.0
)

// ruleErgonomicAssessment scores overall playability. It never gates the
// verdict on its own: it emits info and warning messages only.
func (e *evaluation) ruleErgonomicAssessment() {
	const ruleName = "ergonomic_assessment"

	score := 0.0
	var factors []string

	spanFactor := float64(e.hand.FretSpan) / float64(e.cfg.MaxFretSpan)
	score += spanFactor * 2
	if spanFactor > 0.8 {
		factors = append(factors, fmt.Sprintf("wide fret span (%d)", e.hand.FretSpan))
	}

	if e.hand.HasBarre() && *e.hand.BarreFret <= 3 {
		score += 1.5
		factors = append(factors, "low position barre")
	}

	if e.hand.MinFret > 12 {
		score += 0.5
		factors = append(factors, "very high position")
	}

	distinct := make(map[Finger]bool)
	for _, pos := range e.positions {
		if pos.Finger != FingerThumb {
			distinct[pos.Finger] = true
		}
	}
	fingerCount := len(distinct)
	if fingerCount >= 4 {
		score += 1.0
		factors = append(factors, "uses all four fingers")
	}

	thumbUsed := false
	for _, pos := range e.positions {
		if pos.Finger == FingerThumb {
			thumbUsed = true
			break
		}
	}
	if thumbUsed {
		score += 1.0
		factors = append(factors, "thumb fretting required")
	}

	var problematic []string

	if e.hand.FretSpan > 3 && e.hand.HasBarre() {
		problematic = append(problematic, "wide stretch with barre")
		score += 1.0
	}

	countByFret := make(map[int]int)
	for _, pos := range e.positions {
		if pos.Fret > 0 {
			countByFret[pos.Fret]++
		}
	}
	var crowded []int
	for fret, count := range countByFret {
		if count > 2 {
			crowded = append(crowded, fret)
		}
	}
	sort.Ints(crowded)
	if len(crowded) > 0 {
		problematic = append(problematic, fmt.Sprintf("finger crowding on fret(s) %v", crowded))
		score += 0.5 * float64(len(crowded))
	}

	for _, pos := range e.positions {
		if pos.Finger == FingerPinky && pos.String >= 5 {
			problematic = append(problematic, "pinky on bass strings")
			score += 0.5
			break
		}
	}

	var level string
	severity := SeverityInfo
	switch {
	case score <= difficultyEasyMax:
		level = "Easy"
	case score <= difficultyModerateMax:
		level = "Moderate"
	case score <= difficultyChallengingMax:
		level = "Challenging"
		severity = SeverityWarning
	default:
		level = "Very Difficult"
		severity = SeverityWarning
	}

	text := fmt.Sprintf("Chord difficulty: %s (score: %.1f)", level, score)
	if len(factors) > 0 {
		text += " - Factors: " + strings.Join(factors, ", ")
	}
	code := StatusValid
	if severity == SeverityWarning {
		code = StatusValidWithWarnings
	}
	e.add(ValidationMessage{Code: code, Severity: severity, Message: text, Rule: ruleName})

	if len(problematic) > 0 {
		e.add(ValidationMessage{
			Code:     StatusValidWithWarnings,
			Severity: SeverityWarning,
			Message:  "Problematic patterns detected: " + strings.Join(problematic, ", "),
			Rule:     ruleName,
		})
	}

	if score > 3.0 {
		var suggestions []string
		if e.hand.FretSpan > e.cfg.MaxFretSpan {
			suggestions = append(suggestions, "try capo to reduce fret span")
		}
		if e.hand.HasBarre() && *e.hand.BarreFret <= 2 {
			suggestions = append(suggestions, "consider partial barre instead of full barre")
		}
		if fingerCount >= 4 {
			suggestions = append(suggestions, "look for simplified chord voicing")
		}
		if len(suggestions) > 0 {
			e.add(ValidationMessage{
				Code:     StatusValidWithWarnings,
				Severity: SeverityInfo,
				Message:  "Suggestions: " + strings.Join(suggestions, ", "),
				Rule:     ruleName,
			})
		}
	}

	if score > 2.5 {
		e.add(ValidationMessage{
			Code:     StatusValid,
			Severity: SeverityInfo,
			Message:  "Consider chord context - difficult chords may be acceptable in slow songs or specific musical styles",
			Rule:     ruleName,
		})
	}
}

// numberedFingerFrets maps finger number to fret; the last position in
// string order wins when a finger covers several strings.
func numberedFingerFrets(positions []FingerPosition) map[int]int {
	out := make(map[int]int)
	for _, pos := range positions {
		if pos.Finger.IsNumbered() {
			out[pos.Finger.Number()] = pos.Fret
		}
	}
	return out
}

// numberedFingerPositions maps finger number to its last position in
// string order.
func numberedFingerPositions(positions []FingerPosition) map[int]FingerPosition {
	out := make(map[int]FingerPosition)
	for _, pos := range positions {
		if pos.Finger.IsNumbered() {
			out[pos.Finger.Number()] = pos
		}
	}
	return out
}

// stringSetsTouch reports whether two string sets overlap or sit on
// adjacent strings.
func stringSetsTouch(a, b []int) bool {
	for _, s1 := range a {
		for _, s2 := range b {
			if absInt(s1-s2) <= 1 {
				return true
			}
		}
	}
	return false
}

func containsInt(list []int, v int) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}

func sortedKeys(m map[int]int) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}

func sortedKeysPos(m map[int]FingerPosition) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}

func uniqueSorted(values []int) []int {
	seen := make(map[int]bool, len(values))
	var out []int
	for _, v := range values {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	sort.Ints(out)
	return out
}

func absInt(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
