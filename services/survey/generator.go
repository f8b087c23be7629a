// Copyright (C) 2025 Wood and Wire (maintainers@woodandwire.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package survey

import (
	"iter"

	"github.com/woodandwire/ChordMaker/services/fingering"
)

// Generator lazily enumerates the fingering pattern space. The enumeration
// order is fixed so runs are reproducible; the order itself carries no
// meaning. Nothing is materialized: memory use is bounded regardless of
// the size of the space.
type Generator struct {
	opts Options
}

// NewGenerator returns a Generator for the given options.
func NewGenerator(opts Options) *Generator {
	return &Generator{opts: opts}
}

// Patterns returns the lazy sequence of candidate patterns.
//
// The nesting mirrors the structure of the space: base fret, span, mute
// mask (which strings are silenced), open mask (which sounding strings
// ring open), then finger and fret assignments for the remaining fretted
// strings. Fingers repeat freely so barres are reachable. Two heuristics
// prune finger assignments whose ordering across strings is wildly
// implausible; they are approximations, not anatomical laws, and may
// exclude some valid exotic fingerings.
func (g *Generator) Patterns() iter.Seq[fingering.ChordPattern] {
	return func(yield func(fingering.ChordPattern) bool) {
		for baseFret := g.opts.MinFret; baseFret <= g.opts.MaxFret; baseFret++ {
			maxSpan := g.opts.MaxFret - baseFret + 1
			if maxSpan > 6 {
				maxSpan = 6
			}
			for span := 0; span < maxSpan; span++ {
				if !g.emitMuteMasks(baseFret, span, yield) {
					return
				}
			}
		}
	}
}

func (g *Generator) emitMuteMasks(baseFret, span int, yield func(fingering.ChordPattern) bool) bool {
	for muteMask := 0; muteMask < 1<<fingering.StringCount; muteMask++ {
		sounding := fingering.StringCount - popcount(muteMask)
		if sounding < g.opts.MinSoundingStrings {
			continue
		}
		for openMask := 0; openMask < 1<<sounding; openMask++ {
			if !g.emitAssignments(baseFret, span, muteMask, openMask, yield) {
				return false
			}
		}
	}
	return true
}

func (g *Generator) emitAssignments(baseFret, span, muteMask, openMask int, yield func(fingering.ChordPattern) bool) bool {
	base := make(fingering.ChordPattern, fingering.StringCount)
	var fretted []int

	soundingIdx := 0
	for s := 0; s < fingering.StringCount; s++ {
		switch {
		case muteMask&(1<<s) != 0:
			base[s] = fingering.FingerAssignment{Finger: fingering.FingerMuted}
		case openMask&(1<<soundingIdx) != 0:
			base[s] = fingering.FingerAssignment{Finger: fingering.FingerOpen}
			soundingIdx++
		default:
			fretted = append(fretted, s)
			soundingIdx++
		}
	}

	if len(fretted) == 0 {
		return yield(base)
	}
	// More fretted strings than fingers can never validate without barres
	// on every finger; beyond four the space is pure waste.
	if len(fretted) > 4 {
		return true
	}

	effectiveSpan := span
	if effectiveSpan > 4 {
		effectiveSpan = 4
	}

	fingerCombo := make([]int, len(fretted))
	for {
		if plausibleFingerIntro(fingerCombo) {
			if !g.emitFretCombos(base, fretted, fingerCombo, baseFret, effectiveSpan, yield) {
				return false
			}
		}
		if !advance(fingerCombo, 4) {
			return true
		}
	}
}

func (g *Generator) emitFretCombos(base fingering.ChordPattern, fretted, fingerCombo []int, baseFret, effectiveSpan int, yield func(fingering.ChordPattern) bool) bool {
	fretCombo := make([]int, len(fretted))
	for {
		pattern := make(fingering.ChordPattern, fingering.StringCount)
		copy(pattern, base)
		for i, s := range fretted {
			pattern[s] = fingering.FingerAssignment{
				Finger: fingering.Finger('1' + byte(fingerCombo[i])),
				Fret:   baseFret + fretCombo[i],
			}
		}
		if !implausibleFingerOrder(pattern) {
			if !yield(pattern) {
				return false
			}
		}
		if !advance(fretCombo, effectiveSpan+1) {
			return true
		}
	}
}

// plausibleFingerIntro prunes finger assignments whose first occurrences
// across strings skip backwards by more than one finger number. Shapes
// like 3-1 (ring introduced before index, two apart) are pruned; 2-1 is
// kept. Heuristic only: full validation never sees pruned combos.
func plausibleFingerIntro(fingerCombo []int) bool {
	var introOrder []int
	seen := [4]bool{}
	for _, f := range fingerCombo {
		if !seen[f] {
			seen[f] = true
			introOrder = append(introOrder, f)
		}
	}
	for i := 0; i < len(introOrder)-1; i++ {
		if introOrder[i] > introOrder[i+1]+1 {
			return false
		}
	}
	return true
}

// implausibleFingerOrder prunes fully formed patterns where a
// higher-numbered finger sits two or more frets behind a lower-numbered
// one. Full validation only warns about such ordering, so this is a search
// heuristic rather than a correctness filter.
func implausibleFingerOrder(pattern fingering.ChordPattern) bool {
	frets := make(map[int]int)
	for _, a := range pattern {
		if a.Finger.IsNumbered() {
			frets[a.Finger.Number()] = a.Fret
		}
	}
	for lower := 1; lower <= 3; lower++ {
		f1, ok1 := frets[lower]
		if !ok1 {
			continue
		}
		for higher := lower + 1; higher <= 4; higher++ {
			f2, ok2 := frets[higher]
			if !ok2 {
				continue
			}
			if f2 < f1-1 {
				return true
			}
			break
		}
	}
	return false
}

// advance increments a little-endian odometer over digits [0, radix).
// Returns false when the odometer wraps back to all zeros.
func advance(digits []int, radix int) bool {
	for i := range digits {
		digits[i]++
		if digits[i] < radix {
			return true
		}
		digits[i] = 0
	}
	return false
}

func popcount(mask int) int {
	n := 0
	for mask != 0 {
		n += mask & 1
		mask >>= 1
	}
	return n
}

// EstimateSpace computes the raw per-string combination count before any
// pruning: each string is muted, open, or fretted at one of maxFret+1
// positions by one of the available fingers (five where the thumb
// reaches, four elsewhere). This is the unstructured upper bound the
// generator's nesting cuts down.
func EstimateSpace(maxFret, thumbReach int) int64 {
	frets := int64(maxFret + 1)
	total := int64(1)
	for idx := 0; idx < fingering.StringCount; idx++ {
		fingers := int64(4)
		if idx < thumbReach {
			fingers = 5
		}
		total *= 2 + frets*fingers
	}
	return total
}
