// Copyright (C) 2025 Wood and Wire (maintainers@woodandwire.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package survey

import (
	"testing"

	"github.com/woodandwire/ChordMaker/services/fingering"
)

// collect gathers up to limit patterns from the generator.
func collect(opts Options, limit int) []fingering.ChordPattern {
	var out []fingering.ChordPattern
	for pattern := range NewGenerator(opts).Patterns() {
		out = append(out, pattern)
		if len(out) >= limit {
			break
		}
	}
	return out
}

func smallOptions() Options {
	opts := DefaultOptions()
	opts.MaxFret = 2
	opts.MinSoundingStrings = 5
	return opts
}

func TestGenerator_PatternShape(t *testing.T) {
	patterns := collect(smallOptions(), 5000)
	if len(patterns) == 0 {
		t.Fatal("generator produced nothing")
	}
	for _, pat := range patterns {
		if len(pat) != fingering.StringCount {
			t.Fatalf("pattern %s has %d strings", pat, len(pat))
		}
		sounding := 0
		fretted := 0
		for _, a := range pat {
			switch a.Finger {
			case fingering.FingerMuted:
			case fingering.FingerOpen:
				sounding++
			default:
				sounding++
				fretted++
				if a.Fret < 0 || a.Fret > 2 {
					t.Fatalf("pattern %s: fret %d out of range", pat, a.Fret)
				}
			}
		}
		if sounding < 5 {
			t.Fatalf("pattern %s has %d sounding strings, want >= 5", pat, sounding)
		}
		if fretted > 4 {
			t.Fatalf("pattern %s has %d fretted strings", pat, fretted)
		}
	}
}

func TestGenerator_Deterministic(t *testing.T) {
	first := collect(smallOptions(), 500)
	second := collect(smallOptions(), 500)
	if len(first) != len(second) {
		t.Fatalf("lengths differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].String() != second[i].String() {
			t.Fatalf("pattern %d differs: %s vs %s", i, first[i], second[i])
		}
	}
}

func TestGenerator_StopsWhenYieldReturnsFalse(t *testing.T) {
	count := 0
	for range NewGenerator(smallOptions()).Patterns() {
		count++
		if count == 10 {
			break
		}
	}
	if count != 10 {
		t.Fatalf("expected 10 patterns, got %d", count)
	}
}

func TestPlausibleFingerIntro(t *testing.T) {
	cases := []struct {
		name  string
		combo []int // zero-based finger indices
		want  bool
	}{
		{"single finger", []int{0}, true},
		{"barre same finger", []int{0, 0, 0}, true},
		{"ascending", []int{0, 1, 2}, true},
		{"one step back", []int{1, 0}, true},
		{"two steps back", []int{2, 0}, false},
		{"pinky before index", []int{3, 0}, false},
		{"pinky before middle", []int{3, 1}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := plausibleFingerIntro(tc.combo); got != tc.want {
				t.Errorf("plausibleFingerIntro(%v) = %v, want %v", tc.combo, got, tc.want)
			}
		})
	}
}

func TestImplausibleFingerOrder(t *testing.T) {
	mk := func(tokens string) fingering.ChordPattern {
		pat, err := fingering.ParsePatternText(tokens)
		if err != nil {
			t.Fatalf("bad test pattern %q: %v", tokens, err)
		}
		return pat
	}

	cases := []struct {
		name    string
		pattern fingering.ChordPattern
		want    bool
	}{
		{"ascending frets", mk("X,1:1,2:2,3:3,O,O"), false},
		{"one fret behind tolerated", mk("X,1:3,2:2,O,O,O"), false},
		{"two frets behind pruned", mk("X,1:4,2:2,O,O,O"), true},
		{"no numbered fingers", mk("X,O,O,O,O,O"), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := implausibleFingerOrder(tc.pattern); got != tc.want {
				t.Errorf("implausibleFingerOrder(%s) = %v, want %v", tc.pattern, got, tc.want)
			}
		})
	}
}

func TestEstimateSpace(t *testing.T) {
	// Six frets (0-5), thumb on two bass strings: 2+6*5=32 options there,
	// 2+6*4=26 elsewhere.
	got := EstimateSpace(5, 2)
	want := int64(32) * 32 * 26 * 26 * 26 * 26
	if got != want {
		t.Errorf("EstimateSpace(5, 2) = %d, want %d", got, want)
	}

	if EstimateSpace(0, 0) != int64(6*6*6*6*6*6) {
		t.Errorf("EstimateSpace(0, 0) = %d, want %d", EstimateSpace(0, 0), 6*6*6*6*6*6)
	}
}
