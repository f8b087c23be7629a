// Copyright (C) 2025 Wood and Wire (maintainers@woodandwire.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/woodandwire/ChordMaker/services/survey"
	badgerstore "github.com/woodandwire/ChordMaker/services/survey/storage/badger"
)

var (
	catalogShowFailed bool  // List failures instead of valid patterns
	catalogLimit      int64 // Cap on listed records
	catalogRunID      string
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Inspect a survey catalog database",
}

// catalogStatsCmd prints the record counts and, when --run is given,
// the persisted analysis summary for that run.
var catalogStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show catalog record counts and run analysis",
	RunE:  runCatalogStats,
}

// catalogListCmd dumps cataloged pattern records as JSON lines.
var catalogListCmd = &cobra.Command{
	Use:   "list",
	Short: "List cataloged pattern records",
	Long: `Lists cataloged pattern records as JSON lines, valid patterns by
default.

Examples:
  chordmaker catalog list --db shapes.db --limit 20
  chordmaker catalog list --db shapes.db --failed`,
	RunE: runCatalogList,
}

func init() {
	catalogCmd.PersistentFlags().String("db", "", "Catalog database path (defaults to config db_path)")

	catalogStatsCmd.Flags().StringVar(&catalogRunID, "run", "",
		"Also print the analysis summary for this run ID")
	catalogListCmd.Flags().BoolVar(&catalogShowFailed, "failed", false,
		"List the failure log instead of valid patterns")
	catalogListCmd.Flags().Int64Var(&catalogLimit, "limit", 50,
		"Maximum records to list (0 = all)")

	catalogCmd.AddCommand(catalogStatsCmd)
	catalogCmd.AddCommand(catalogListCmd)
	rootCmd.AddCommand(catalogCmd)
}

// openCatalogReadOnly opens the catalog named by --db or the config file.
func openCatalogReadOnly(cmd *cobra.Command) (*badgerstore.Store, error) {
	path := config.Survey.DBPath
	if cmd.Flags().Changed("db") {
		path, _ = cmd.Flags().GetString("db")
	}

	scfg := badgerstore.DefaultConfig()
	scfg.Path = path
	scfg.GCInterval = 0 // Short-lived process; skip the GC goroutine
	store, err := badgerstore.Open(scfg)
	if err != nil {
		return nil, fmt.Errorf("opening catalog at %s: %w", path, err)
	}
	return store, nil
}

func runCatalogStats(cmd *cobra.Command, args []string) error {
	store, err := openCatalogReadOnly(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	valid, failed, err := store.Counts()
	if err != nil {
		return fmt.Errorf("counting records: %w", err)
	}
	fmt.Printf("Valid patterns:   %d\n", valid)
	fmt.Printf("Logged failures:  %d\n", failed)

	if catalogRunID != "" {
		summary, err := store.GetAnalysis(catalogRunID)
		if err != nil {
			return fmt.Errorf("loading analysis for run %s: %w", catalogRunID, err)
		}
		out, err := json.MarshalIndent(summary, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
	}
	return nil
}

// errListDone stops record iteration once the limit is reached.
var errListDone = errors.New("list limit reached")

func runCatalogList(cmd *cobra.Command, args []string) error {
	store, err := openCatalogReadOnly(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	var listed int64
	emit := func(record survey.PatternRecord) error {
		out, err := json.Marshal(record)
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		listed++
		if catalogLimit > 0 && listed >= catalogLimit {
			return errListDone
		}
		return nil
	}

	if catalogShowFailed {
		err = store.EachFailure(emit)
	} else {
		err = store.EachValid(emit)
	}
	if err != nil && !errors.Is(err, errListDone) {
		return err
	}
	return nil
}
