// Copyright (C) 2025 Wood and Wire (maintainers@woodandwire.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package fingering

import (
	"fmt"
	"strconv"
	"strings"
)

const ruleInputValidation = "input_validation"

// parsePattern checks the raw pattern shape and extracts fretted positions.
//
// Returns the finger positions (muted and open strings excluded) and nil,
// or nil and the fatal input message. Parsing stops at the first problem:
// input errors are fatal to the call and produce no partial result.
func parsePattern(pattern ChordPattern) ([]FingerPosition, *ValidationMessage) {
	if len(pattern) != StringCount {
		return nil, &ValidationMessage{
			Code:     StatusInvalidInput,
			Severity: SeverityError,
			Message:  fmt.Sprintf("Chord data must contain exactly %d string specifications", StringCount),
			Rule:     ruleInputValidation,
		}
	}

	var positions []FingerPosition

	for i, a := range pattern {
		stringNum := i + 1

		// Muted and open strings carry no finger position.
		if a.Finger == FingerMuted || a.Finger == FingerOpen {
			continue
		}

		if !a.Finger.IsNumbered() && a.Finger != FingerThumb {
			return nil, &ValidationMessage{
				Code:            StatusInvalidInput,
				Severity:        SeverityError,
				Message:         fmt.Sprintf("Invalid finger indicator '%s' on string %d", a.Finger, stringNum),
				Rule:            ruleInputValidation,
				AffectedStrings: []int{stringNum},
			}
		}

		if a.Fret < 0 || a.Fret > MaxFretNumber {
			return nil, &ValidationMessage{
				Code:            StatusInvalidInput,
				Severity:        SeverityError,
				Message:         fmt.Sprintf("Invalid fret number %d on string %d", a.Fret, stringNum),
				Rule:            ruleInputValidation,
				AffectedStrings: []int{stringNum},
			}
		}

		if a.Fret == 0 {
			return nil, &ValidationMessage{
				Code:     StatusInvalidInput,
				Severity: SeverityError,
				Message: fmt.Sprintf(
					"Invalid input: finger '%s' specified for fret 0 on string %d. Use 'O' for open strings instead.",
					a.Finger, stringNum),
				Rule:            ruleInputValidation,
				AffectedStrings: []int{stringNum},
			}
		}

		positions = append(positions, FingerPosition{
			Finger: a.Finger,
			String: stringNum,
			Fret:   a.Fret,
		})
	}

	return positions, nil
}

// ParsePatternText parses the compact CLI form of a pattern: six
// comma-separated tokens, each "X", "O", or "finger:fret".
//
// Example: "X,3:3,2:2,O,1:1,O" is the standard C major shape.
func ParsePatternText(text string) (ChordPattern, error) {
	tokens := strings.Split(text, ",")
	pattern := make(ChordPattern, 0, len(tokens))

	for i, tok := range tokens {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			return nil, fmt.Errorf("%w: empty token at position %d", ErrInvalidPatternText, i+1)
		}

		indicator, fretText, hasFret := strings.Cut(tok, ":")
		finger := Finger(strings.ToUpper(indicator))

		fret := 0
		if hasFret {
			n, err := strconv.Atoi(fretText)
			if err != nil {
				return nil, fmt.Errorf("%w: bad fret %q at position %d", ErrInvalidPatternText, fretText, i+1)
			}
			fret = n
		} else if finger != FingerMuted && finger != FingerOpen {
			return nil, fmt.Errorf("%w: finger %q at position %d needs a fret, e.g. %q",
				ErrInvalidPatternText, indicator, i+1, indicator+":1")
		}

		pattern = append(pattern, FingerAssignment{Finger: finger, Fret: fret})
	}

	if len(pattern) != StringCount {
		return nil, fmt.Errorf("%w: expected %d tokens, got %d", ErrInvalidPatternText, StringCount, len(pattern))
	}

	return pattern, nil
}

// String renders a pattern in the same compact form ParsePatternText reads.
func (p ChordPattern) String() string {
	parts := make([]string, len(p))
	for i, a := range p {
		if a.Finger == FingerMuted || a.Finger == FingerOpen {
			parts[i] = string(a.Finger)
		} else {
			parts[i] = fmt.Sprintf("%s:%d", a.Finger, a.Fret)
		}
	}
	return strings.Join(parts, ",")
}
