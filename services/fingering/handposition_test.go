// Copyright (C) 2025 Wood and Wire (maintainers@woodandwire.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package fingering

import (
	"reflect"
	"testing"
)

func positionsOf(t *testing.T, pat ChordPattern) []FingerPosition {
	t.Helper()
	positions, fatal := parsePattern(pat)
	if fatal != nil {
		t.Fatalf("unexpected parse failure: %+v", fatal)
	}
	return positions
}

func TestCalculateHandPosition_NoFrettedStrings(t *testing.T) {
	hand := calculateHandPosition(nil)
	if hand.MinFret != 0 || hand.MaxFret != 0 || hand.FretSpan != 0 {
		t.Errorf("expected zero hand position, got %+v", hand)
	}
	if hand.HasBarre() {
		t.Error("expected no barre")
	}
	if hand.BarreStrings == nil || len(hand.BarreStrings) != 0 {
		t.Errorf("expected empty barre strings, got %v", hand.BarreStrings)
	}
}

func TestCalculateHandPosition_SpanAndBounds(t *testing.T) {
	positions := positionsOf(t, ChordPattern{
		{Finger: FingerMuted}, {Finger: FingerRing, Fret: 3}, {Finger: FingerMiddle, Fret: 2},
		{Finger: FingerOpen}, {Finger: FingerIndex, Fret: 1}, {Finger: FingerOpen},
	})
	hand := calculateHandPosition(positions)
	if hand.MinFret != 1 || hand.MaxFret != 3 {
		t.Errorf("expected fret bounds [1,3], got [%d,%d]", hand.MinFret, hand.MaxFret)
	}
	if hand.FretSpan != 2 {
		t.Errorf("expected span 2, got %d", hand.FretSpan)
	}
}

func TestCalculateHandPosition_FullBarre(t *testing.T) {
	positions := positionsOf(t, ChordPattern{
		{Finger: FingerIndex, Fret: 1}, {Finger: FingerIndex, Fret: 1}, {Finger: FingerMiddle, Fret: 2},
		{Finger: FingerRing, Fret: 3}, {Finger: FingerRing, Fret: 3}, {Finger: FingerIndex, Fret: 1},
	})
	hand := calculateHandPosition(positions)
	if !hand.HasBarre() {
		t.Fatal("expected barre")
	}
	if *hand.BarreFret != 1 {
		t.Errorf("expected barre fret 1, got %d", *hand.BarreFret)
	}
	if !reflect.DeepEqual(hand.BarreStrings, []int{1, 2, 6}) {
		t.Errorf("expected barre strings [1 2 6], got %v", hand.BarreStrings)
	}
}

func TestCalculateHandPosition_GapDisqualifiesBarre(t *testing.T) {
	// Finger 1 covers strings 1 and 3 but string 2 is open, so the group
	// cannot be a barre.
	positions := positionsOf(t, ChordPattern{
		{Finger: FingerIndex, Fret: 2}, {Finger: FingerOpen}, {Finger: FingerIndex, Fret: 2},
		{Finger: FingerOpen}, {Finger: FingerOpen}, {Finger: FingerOpen},
	})
	hand := calculateHandPosition(positions)
	if hand.HasBarre() {
		t.Errorf("expected no barre, got fret %d strings %v", *hand.BarreFret, hand.BarreStrings)
	}
}

func TestCalculateHandPosition_GapFrettedByOtherFinger(t *testing.T) {
	// An interior string fretted by a different finger does not break the
	// barre.
	positions := positionsOf(t, ChordPattern{
		{Finger: FingerIndex, Fret: 1}, {Finger: FingerMiddle, Fret: 2}, {Finger: FingerIndex, Fret: 1},
		{Finger: FingerOpen}, {Finger: FingerOpen}, {Finger: FingerOpen},
	})
	hand := calculateHandPosition(positions)
	if !hand.HasBarre() {
		t.Fatal("expected barre across strings 1 and 3")
	}
	if !reflect.DeepEqual(hand.BarreStrings, []int{1, 3}) {
		t.Errorf("expected barre strings [1 3], got %v", hand.BarreStrings)
	}
}

func TestCalculateHandPosition_ThumbNotABarre(t *testing.T) {
	positions := []FingerPosition{
		{Finger: FingerThumb, String: 5, Fret: 2},
		{Finger: FingerThumb, String: 6, Fret: 2},
	}
	hand := calculateHandPosition(positions)
	if hand.HasBarre() {
		t.Error("thumb group must not be recognized as a barre")
	}
	if hand.ThumbFret == nil || *hand.ThumbFret != 2 {
		t.Error("expected thumb fret 2")
	}
}

func TestParsePattern_Errors(t *testing.T) {
	cases := []struct {
		name string
		pat  ChordPattern
	}{
		{"wrong length", ChordPattern{{Finger: FingerOpen}}},
		{"bad finger", ChordPattern{
			{Finger: "Q", Fret: 1}, {Finger: FingerOpen}, {Finger: FingerOpen},
			{Finger: FingerOpen}, {Finger: FingerOpen}, {Finger: FingerOpen},
		}},
		{"negative fret", ChordPattern{
			{Finger: FingerIndex, Fret: -1}, {Finger: FingerOpen}, {Finger: FingerOpen},
			{Finger: FingerOpen}, {Finger: FingerOpen}, {Finger: FingerOpen},
		}},
		{"fret beyond neck", ChordPattern{
			{Finger: FingerIndex, Fret: MaxFretNumber + 1}, {Finger: FingerOpen}, {Finger: FingerOpen},
			{Finger: FingerOpen}, {Finger: FingerOpen}, {Finger: FingerOpen},
		}},
		{"numbered finger on fret zero", ChordPattern{
			{Finger: FingerIndex, Fret: 0}, {Finger: FingerOpen}, {Finger: FingerOpen},
			{Finger: FingerOpen}, {Finger: FingerOpen}, {Finger: FingerOpen},
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, fatal := parsePattern(tc.pat)
			if fatal == nil {
				t.Fatal("expected fatal message")
			}
			if fatal.Code != StatusInvalidInput {
				t.Errorf("expected code 400, got %d", fatal.Code)
			}
		})
	}
}

func TestParsePattern_SkipsOpenAndMuted(t *testing.T) {
	positions := positionsOf(t, ChordPattern{
		{Finger: FingerMuted}, {Finger: FingerOpen}, {Finger: FingerIndex, Fret: 5},
		{Finger: FingerOpen}, {Finger: FingerMuted}, {Finger: FingerOpen},
	})
	if len(positions) != 1 {
		t.Fatalf("expected 1 position, got %d", len(positions))
	}
	if positions[0].String != 3 || positions[0].Fret != 5 {
		t.Errorf("unexpected position %+v", positions[0])
	}
}

func TestParsePatternText_RoundTrip(t *testing.T) {
	const text = "X,3:3,2:2,O,1:1,O"
	pat, err := ParsePatternText(text)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := pat.String(); got != text {
		t.Errorf("expected %q, got %q", text, got)
	}
}

func TestParsePatternText_Invalid(t *testing.T) {
	for _, text := range []string{"", "X,X,X", "X,3:3,2:2,O,1:1,O,O", "X,3:abc,2:2,O,1:1,O", "1,O,O,O,O,O"} {
		if _, err := ParsePatternText(text); err == nil {
			t.Errorf("expected error for %q", text)
		}
	}
}
