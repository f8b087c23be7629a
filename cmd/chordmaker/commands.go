// Copyright (C) 2025 Wood and Wire (maintainers@woodandwire.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/woodandwire/ChordMaker/pkg/logging"
)

// Config is the optional config.yaml surface. Every field has a flag
// equivalent; flags that were set explicitly override the file.
type Config struct {
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level" validate:"omitempty,oneof=debug info warn error"`

	// LogDir enables file logging when set. Supports ~ expansion.
	LogDir string `yaml:"log_dir"`

	// JSONLogs switches stderr logs to JSON format.
	JSONLogs bool `yaml:"json_logs"`

	// Survey carries the defaults for the survey command.
	Survey SurveyConfig `yaml:"survey"`
}

// SurveyConfig mirrors the survey command's flags.
type SurveyConfig struct {
	MinFret            int           `yaml:"min_fret" validate:"gte=0,lte=24"`
	MaxFret            int           `yaml:"max_fret" validate:"gte=0,lte=24"`
	MinSoundingStrings int           `yaml:"min_sounding_strings" validate:"gte=1,lte=6"`
	ThumbReach         int           `yaml:"thumb_reach" validate:"gte=0,lte=6"`
	MaxPatterns        int64         `yaml:"max_patterns" validate:"gte=0"`
	Workers            int           `yaml:"workers" validate:"gte=1"`
	ProgressInterval   time.Duration `yaml:"progress_interval"`
	DBPath             string        `yaml:"db_path"`
}

// DefaultCLIConfig returns the defaults applied before config.yaml and
// flags are layered on top.
func DefaultCLIConfig() Config {
	return Config{
		LogLevel: "info",
		Survey: SurveyConfig{
			MinFret:            0,
			MaxFret:            12,
			MinSoundingStrings: 1,
			ThumbReach:         0,
			MaxPatterns:        0,
			Workers:            1,
			ProgressInterval:   5 * time.Second,
			DBPath:             "chordmaker.db",
		},
	}
}

var (
	config     = DefaultCLIConfig()
	configPath string

	logger *logging.Logger

	rootCmd = &cobra.Command{
		Use:   "chordmaker",
		Short: "Validate and catalog fretted-instrument fingering patterns",
		Long: `ChordMaker checks six-string fingering patterns against a set of
biomechanical playability rules, and can survey the full combinatorial
pattern space into a local catalog of playable shapes.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

var configValidator = validator.New(validator.WithRequiredStructEnabled())

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config.yaml",
		"Path to the optional YAML configuration file")
	rootCmd.PersistentFlags().String("log-level", "",
		"Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("log-dir", "",
		"Directory for JSON log files (disabled when empty)")
	rootCmd.PersistentFlags().Bool("json-logs", false,
		"Emit stderr logs as JSON")

	rootCmd.PersistentPreRunE = loadConfiguration
}

// loadConfiguration layers config.yaml (if present) over the defaults,
// then explicit flags over the file, and builds the process logger.
func loadConfiguration(cmd *cobra.Command, args []string) error {
	if data, err := os.ReadFile(configPath); err == nil {
		if err := yaml.Unmarshal(data, &config); err != nil {
			return fmt.Errorf("parsing %s: %w", configPath, err)
		}
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("reading %s: %w", configPath, err)
	}

	if cmd.Flags().Changed("log-level") {
		config.LogLevel, _ = cmd.Flags().GetString("log-level")
	}
	if cmd.Flags().Changed("log-dir") {
		config.LogDir, _ = cmd.Flags().GetString("log-dir")
	}
	if cmd.Flags().Changed("json-logs") {
		config.JSONLogs, _ = cmd.Flags().GetBool("json-logs")
	}

	if err := configValidator.Struct(config); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	level, err := logging.ParseLevel(config.LogLevel)
	if err != nil {
		return err
	}
	logger = logging.New(logging.Config{
		Level:   level,
		LogDir:  config.LogDir,
		Service: cmd.Name(),
		JSON:    config.JSONLogs,
	})
	return nil
}
