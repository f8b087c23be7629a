// Copyright (C) 2025 Wood and Wire (maintainers@woodandwire.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package fingering

import "sort"

// barreGroup is a set of strings a single finger covers at one fret.
type barreGroup struct {
	finger  Finger
	fret    int
	strings []int
}

// barreGroups groups finger positions by (finger, fret) in discovery order.
// Thumb positions are included; callers filter them where the thumb cannot
// barre.
func barreGroups(positions []FingerPosition) []barreGroup {
	type groupKey struct {
		finger Finger
		fret   int
	}
	idx := make(map[groupKey]int)
	var groups []barreGroup

	for _, pos := range positions {
		key := groupKey{pos.Finger, pos.Fret}
		i, ok := idx[key]
		if !ok {
			i = len(groups)
			idx[key] = i
			groups = append(groups, barreGroup{finger: pos.Finger, fret: pos.Fret})
		}
		groups[i].strings = append(groups[i].strings, pos.String)
	}

	return groups
}

// hasGapStrings reports whether any string strictly between the group's
// covered strings carries no finger position at all. Such gaps disqualify
// the group as a barre: a barred finger cannot leave an interior string
// open to ring.
func hasGapStrings(sortedStrings []int, positions []FingerPosition) bool {
	for i := 0; i < len(sortedStrings)-1; i++ {
		for s := sortedStrings[i] + 1; s < sortedStrings[i+1]; s++ {
			if !stringIsFretted(s, positions) {
				return true
			}
		}
	}
	return false
}

func stringIsFretted(stringNum int, positions []FingerPosition) bool {
	for _, pos := range positions {
		if pos.String == stringNum {
			return true
		}
	}
	return false
}

// calculateHandPosition derives the span, thumb, and recognized barre from
// the fretted positions. The first qualifying barre group in discovery order
// wins; later groups are still examined by the barre consistency rule.
func calculateHandPosition(positions []FingerPosition) HandPosition {
	hand := HandPosition{BarreStrings: []int{}}

	var frets []int
	for _, pos := range positions {
		if pos.Fret > 0 {
			frets = append(frets, pos.Fret)
		}
	}
	if len(frets) == 0 {
		return hand
	}

	minFret, maxFret := frets[0], frets[0]
	for _, f := range frets[1:] {
		if f < minFret {
			minFret = f
		}
		if f > maxFret {
			maxFret = f
		}
	}
	hand.MinFret = minFret
	hand.MaxFret = maxFret
	hand.FretSpan = maxFret - minFret

	for _, g := range barreGroups(positions) {
		if len(g.strings) < 2 || g.finger == FingerThumb {
			continue
		}
		sorted := append([]int(nil), g.strings...)
		sort.Ints(sorted)
		if hasGapStrings(sorted, positions) {
			continue
		}
		fret := g.fret
		hand.BarreFret = &fret
		hand.BarreStrings = append([]int(nil), g.strings...)
		break
	}

	for _, pos := range positions {
		if pos.Finger == FingerThumb {
			fret := pos.Fret
			hand.ThumbFret = &fret
			break
		}
	}

	return hand
}
