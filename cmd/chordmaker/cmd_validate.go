// Copyright (C) 2025 Wood and Wire (maintainers@woodandwire.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/woodandwire/ChordMaker/services/fingering"
)

var (
	validateJSONOutput bool // Output the full result as JSON
	validateThumbReach int  // Strings reachable by a wrapped thumb
)

// validateCmd checks a single fingering pattern for playability.
//
// # Description
//
// Parses a comma-separated six-string pattern (treble string first) and
// runs it through the full rule engine. The process exits 0 when the
// pattern is playable and 1 when it is not, so the command composes in
// shell pipelines.
//
// # Examples
//
//	chordmaker validate "O,1:1,O,2:2,3:3,O"
//	chordmaker validate --json "X,3:3,2:2,O,1:1,O"
//	chordmaker validate --thumb-reach 2 "O,O,O,O,O,T:2"
var validateCmd = &cobra.Command{
	Use:   "validate [pattern]",
	Short: "Validate a single fingering pattern for playability",
	Long: `Validates one six-string fingering pattern against the biomechanical
rule engine.

The pattern is six comma-separated string indicators, treble string first:
  O      open string
  X      muted string
  N:F    finger N (1-4) on fret F
  T:F    thumb on fret F

Examples:
  chordmaker validate "O,1:1,O,2:2,3:3,O"     # A minor shape
  chordmaker validate --json "X,3:3,2:2,O,1:1,O"`,
	Args: cobra.ExactArgs(1),
	RunE: runValidateCommand,
}

func init() {
	validateCmd.Flags().BoolVar(&validateJSONOutput, "json", false,
		"Output the full validation result as JSON")
	validateCmd.Flags().IntVar(&validateThumbReach, "thumb-reach", 1,
		"How many strings (from the bass side) a wrapped thumb can fret, 0 disallows the thumb")

	rootCmd.AddCommand(validateCmd)
}

func runValidateCommand(cmd *cobra.Command, args []string) error {
	cfg := fingering.DefaultConfig()
	cfg.ThumbReachStrings = validateThumbReach
	if err := cfg.Validate(); err != nil {
		return err
	}

	v := fingering.NewValidator(cfg)
	result, err := v.ValidateText(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	logger.Debug("pattern validated",
		"pattern", args[0],
		"status_code", int(result.StatusCode),
		"is_valid", result.IsValid,
	)

	if validateJSONOutput {
		out, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding result: %w", err)
		}
		fmt.Println(string(out))
	} else {
		printResult(args[0], result)
	}

	if !result.IsValid {
		os.Exit(1)
	}
	return nil
}

// printResult renders a human-readable validation report.
func printResult(pattern string, result *fingering.ValidationResult) {
	fmt.Printf("Pattern: %s\n", pattern)
	fmt.Printf("Status:  %d %s\n", int(result.StatusCode), result.StatusName)
	if result.IsValid {
		if result.HasWarnings {
			fmt.Println("Playable with warnings.")
		} else {
			fmt.Println("Playable.")
		}
	} else {
		fmt.Println("Not playable.")
	}

	// Parse failures carry no hand position.
	hand := result.HandPosition
	if hand != nil && hand.MaxFret > 0 {
		fmt.Printf("Hand:    frets %d-%d (span %d)\n", hand.MinFret, hand.MaxFret, hand.FretSpan)
		if hand.HasBarre() {
			fmt.Printf("Barre:   fret %d across strings %v\n", *hand.BarreFret, hand.BarreStrings)
		}
	}

	if len(result.Messages) > 0 {
		fmt.Println("Messages:")
		for _, msg := range result.Messages {
			fmt.Printf("  [%s] %s: %s\n", msg.Severity, msg.Rule, msg.Message)
		}
	}
}
