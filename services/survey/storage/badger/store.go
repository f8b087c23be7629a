// Copyright (C) 2025 Wood and Wire (maintainers@woodandwire.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package badger provides a BadgerDB-backed survey catalog.
//
// BadgerDB is used for local embedded storage with low-latency writes,
// which suits survey runs that catalog millions of small records. Valid
// patterns, failures, and analysis summaries live under separate key
// prefixes in one database.
//
// License: BadgerDB is Apache 2.0 licensed (github.com/dgraph-io/badger).
package badger

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/woodandwire/ChordMaker/services/survey"
)

// Key prefixes partitioning the catalog.
const (
	prefixValid    = "valid/"
	prefixFailed   = "failed/"
	prefixAnalysis = "analysis/"
)

// Config holds configuration for the catalog database.
type Config struct {
	// Path is the directory for database files.
	// Required unless InMemory is true.
	Path string

	// InMemory enables in-memory mode (no disk persistence).
	// Useful for testing.
	InMemory bool

	// SyncWrites enables synchronous writes for durability. Survey runs
	// are restartable from scratch, so async writes are acceptable for
	// throughput when durability is not required.
	SyncWrites bool

	// Logger receives BadgerDB's internal log output.
	// If nil, internal logging is disabled.
	Logger *slog.Logger

	// GCInterval is how often to run value log garbage collection.
	// Set to 0 to disable.
	GCInterval time.Duration

	// GCDiscardRatio is the minimum ratio of discardable data before GC.
	GCDiscardRatio float64
}

// DefaultConfig returns a production configuration: synchronous writes and
// periodic garbage collection.
func DefaultConfig() Config {
	return Config{
		SyncWrites:     true,
		GCInterval:     5 * time.Minute,
		GCDiscardRatio: 0.5,
	}
}

// InMemoryConfig returns a configuration for testing: in-memory, no sync,
// no GC.
func InMemoryConfig() Config {
	return Config{InMemory: true}
}

// badgerLogger adapts slog.Logger to BadgerDB's Logger interface.
type badgerLogger struct {
	logger *slog.Logger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Info(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

// Store is a BadgerDB-backed survey catalog.
//
// Thread Safety: safe for concurrent use; BadgerDB transactions provide
// the isolation.
type Store struct {
	db     *badger.DB
	stopGC chan struct{}
	doneGC chan struct{}
}

var _ survey.Catalog = (*Store)(nil)

// Open creates and opens the catalog database.
//
// # Inputs
//   - cfg: database configuration; Path is required unless InMemory
//
// # Outputs
//   - *Store: the opened catalog; call Close when done
//   - error: non-nil if the path is invalid or the database cannot open
func Open(cfg Config) (*Store, error) {
	if !cfg.InMemory && cfg.Path == "" {
		return nil, errors.New("path is required for persistent catalog")
	}

	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(cfg.Path, 0750); err != nil {
			return nil, fmt.Errorf("create catalog directory %s: %w", cfg.Path, err)
		}
		opts = badger.DefaultOptions(cfg.Path)
	}
	opts = opts.WithSyncWrites(cfg.SyncWrites)

	if cfg.Logger != nil {
		opts = opts.WithLogger(&badgerLogger{logger: cfg.Logger})
	} else {
		opts = opts.WithLogger(nil)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open catalog database: %w", err)
	}

	s := &Store{db: db}
	if cfg.GCInterval > 0 && !cfg.InMemory {
		s.stopGC = make(chan struct{})
		s.doneGC = make(chan struct{})
		go s.runGC(cfg.GCInterval, cfg.GCDiscardRatio, cfg.Logger)
	}
	return s, nil
}

// OpenInMemory opens an in-memory catalog for testing. Data is lost when
// closed.
func OpenInMemory() (*Store, error) {
	return Open(InMemoryConfig())
}

// Close stops garbage collection and closes the database. Safe to call
// once.
func (s *Store) Close() error {
	if s.stopGC != nil {
		close(s.stopGC)
		<-s.doneGC
	}
	return s.db.Close()
}

func (s *Store) runGC(interval time.Duration, ratio float64, logger *slog.Logger) {
	defer close(s.doneGC)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopGC:
			return
		case <-ticker.C:
			err := s.db.RunValueLogGC(ratio)
			if err != nil && !errors.Is(err, badger.ErrNoRewrite) && logger != nil {
				logger.Warn("catalog value log GC error", slog.String("error", err.Error()))
			}
		}
	}
}

// StoreValid persists a playable pattern record under the valid keyspace.
func (s *Store) StoreValid(record survey.PatternRecord) error {
	return s.putJSON(prefixValid+record.PatternName, record)
}

// LogFailure persists an unplayable pattern record under the failed
// keyspace.
func (s *Store) LogFailure(record survey.PatternRecord) error {
	return s.putJSON(prefixFailed+record.PatternName, record)
}

// SaveAnalysis persists the end-of-run analysis summary keyed by run ID.
func (s *Store) SaveAnalysis(summary survey.AnalysisSummary) error {
	return s.putJSON(prefixAnalysis+summary.Metadata.RunID, summary)
}

func (s *Store) putJSON(key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), data)
	})
	if err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}

// GetAnalysis loads a persisted analysis summary by run ID.
func (s *Store) GetAnalysis(runID string) (*survey.AnalysisSummary, error) {
	var summary survey.AnalysisSummary
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(prefixAnalysis + runID))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &summary)
		})
	})
	if err != nil {
		return nil, fmt.Errorf("read analysis %s: %w", runID, err)
	}
	return &summary, nil
}

// EachValid iterates all stored valid pattern records in key order. The
// callback returning an error stops the iteration and propagates it.
func (s *Store) EachValid(fn func(record survey.PatternRecord) error) error {
	return s.eachRecord(prefixValid, fn)
}

// EachFailure iterates all stored failure records in key order.
func (s *Store) EachFailure(fn func(record survey.PatternRecord) error) error {
	return s.eachRecord(prefixFailed, fn)
}

func (s *Store) eachRecord(prefix string, fn func(record survey.PatternRecord) error) error {
	return s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(prefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			var record survey.PatternRecord
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &record)
			})
			if err != nil {
				return fmt.Errorf("decode %s: %w", it.Item().Key(), err)
			}
			if err := fn(record); err != nil {
				return err
			}
		}
		return nil
	})
}

// Counts returns the number of stored valid and failure records.
func (s *Store) Counts() (valid, failed int64, err error) {
	err = s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		validPrefix := []byte(prefixValid)
		failedPrefix := []byte(prefixFailed)
		for it.Rewind(); it.Valid(); it.Next() {
			key := it.Item().Key()
			switch {
			case bytes.HasPrefix(key, validPrefix):
				valid++
			case bytes.HasPrefix(key, failedPrefix):
				failed++
			}
		}
		return nil
	})
	return valid, failed, err
}
