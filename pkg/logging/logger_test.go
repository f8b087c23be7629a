// Copyright (C) 2025 Wood and Wire (maintainers@woodandwire.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestLevel_String(t *testing.T) {
	tests := []struct {
		level Level
		want  string
	}{
		{LevelDebug, "DEBUG"},
		{LevelInfo, "INFO"},
		{LevelWarn, "WARN"},
		{LevelError, "ERROR"},
		{Level(99), "UNKNOWN"},
		{Level(-1), "UNKNOWN"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			got := tt.level.String()
			if got != tt.want {
				t.Errorf("Level.String() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLevel_toSlogLevel(t *testing.T) {
	tests := []struct {
		level Level
		want  slog.Level
	}{
		{LevelDebug, slog.LevelDebug},
		{LevelInfo, slog.LevelInfo},
		{LevelWarn, slog.LevelWarn},
		{LevelError, slog.LevelError},
		{Level(99), slog.LevelInfo}, // Unknown defaults to Info
	}

	for _, tt := range tests {
		t.Run(tt.level.String(), func(t *testing.T) {
			got := tt.level.toSlogLevel()
			if got != tt.want {
				t.Errorf("Level.toSlogLevel() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name    string
		want    Level
		wantErr bool
	}{
		{"debug", LevelDebug, false},
		{"INFO", LevelInfo, false},
		{"warn", LevelWarn, false},
		{"warning", LevelWarn, false},
		{"error", LevelError, false},
		{"", LevelInfo, false},
		{"verbose", LevelInfo, true},
	}

	for _, tt := range tests {
		t.Run("name="+tt.name, func(t *testing.T) {
			got, err := ParseLevel(tt.name)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseLevel(%q) error = %v, wantErr %v", tt.name, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.name, got, tt.want)
			}
		})
	}
}

func TestNew_DefaultConfig(t *testing.T) {
	logger := New(Config{})
	if logger == nil {
		t.Fatal("New() returned nil")
	}
	if logger.slog == nil {
		t.Error("logger.slog is nil")
	}
	defer logger.Close()
}

func TestNew_QuietWithoutFile(t *testing.T) {
	logger := New(Config{Quiet: true})
	defer logger.Close()

	// Must not panic even though no destination is configured.
	logger.Info("discarded")
	logger.Error("also discarded")
}

func TestNew_FileLogging(t *testing.T) {
	dir := t.TempDir()
	logger := New(Config{
		Level:   LevelDebug,
		LogDir:  dir,
		Service: "survey",
		Quiet:   true,
	})

	logger.Info("pattern cataloged", "pattern_id", "pattern_000001")
	if err := logger.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	filename := "survey_" + time.Now().Format("2006-01-02") + ".log"
	data, err := os.ReadFile(filepath.Join(dir, filename))
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}

	// File logs are JSON, one object per line.
	line := strings.TrimSpace(string(data))
	var entry map[string]any
	if err := json.Unmarshal([]byte(line), &entry); err != nil {
		t.Fatalf("log line is not valid JSON: %v\nline: %s", err, line)
	}
	if entry["msg"] != "pattern cataloged" {
		t.Errorf("msg = %v, want %q", entry["msg"], "pattern cataloged")
	}
	if entry["service"] != "survey" {
		t.Errorf("service = %v, want %q", entry["service"], "survey")
	}
	if entry["pattern_id"] != "pattern_000001" {
		t.Errorf("pattern_id = %v, want %q", entry["pattern_id"], "pattern_000001")
	}
}

func TestNew_FileLoggingCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "logs")
	logger := New(Config{LogDir: dir, Service: "cli", Quiet: true})
	logger.Info("hello")
	if err := logger.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("log directory not created: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 log file, got %d", len(entries))
	}
	if !strings.HasPrefix(entries[0].Name(), "cli_") {
		t.Errorf("log file %q does not carry the service prefix", entries[0].Name())
	}
}

func TestLogger_LevelFiltering(t *testing.T) {
	dir := t.TempDir()
	logger := New(Config{
		Level:   LevelWarn,
		LogDir:  dir,
		Service: "filter",
		Quiet:   true,
	})

	logger.Debug("hidden debug")
	logger.Info("hidden info")
	logger.Warn("visible warn")
	logger.Error("visible error")
	if err := logger.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "filter_"+time.Now().Format("2006-01-02")+".log"))
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}
	out := string(data)

	if strings.Contains(out, "hidden debug") || strings.Contains(out, "hidden info") {
		t.Errorf("log contains messages below the configured level:\n%s", out)
	}
	if !strings.Contains(out, "visible warn") || !strings.Contains(out, "visible error") {
		t.Errorf("log missing messages at or above the configured level:\n%s", out)
	}
}

func TestLogger_With(t *testing.T) {
	dir := t.TempDir()
	logger := New(Config{LogDir: dir, Service: "with", Quiet: true})

	child := logger.With("run_id", "abc-123")
	child.Info("scoped message")
	logger.Info("unscoped message")
	if err := logger.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "with_"+time.Now().Format("2006-01-02")+".log"))
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}

	for _, line := range strings.Split(strings.TrimSpace(string(data)), "\n") {
		var entry map[string]any
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			t.Fatalf("invalid JSON line: %v", err)
		}
		_, hasRunID := entry["run_id"]
		switch entry["msg"] {
		case "scoped message":
			if !hasRunID {
				t.Error("child logger message missing run_id attribute")
			}
		case "unscoped message":
			if hasRunID {
				t.Error("parent logger message unexpectedly carries run_id")
			}
		}
	}
}

func TestLogger_CloseIdempotent(t *testing.T) {
	logger := New(Config{LogDir: t.TempDir(), Quiet: true})
	if err := logger.Close(); err != nil {
		t.Fatalf("first Close() error = %v", err)
	}
	if err := logger.Close(); err != nil {
		t.Errorf("second Close() error = %v, want nil", err)
	}
}

func TestLogger_ConcurrentUse(t *testing.T) {
	logger := New(Config{LogDir: t.TempDir(), Service: "conc", Quiet: true})
	defer logger.Close()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				logger.Info("concurrent write", "goroutine", n, "iteration", j)
			}
		}(i)
	}
	wg.Wait()
}

func TestLogger_Slog(t *testing.T) {
	logger := New(Config{Quiet: true})
	defer logger.Close()

	if logger.Slog() == nil {
		t.Fatal("Slog() returned nil")
	}
}

func TestDefault(t *testing.T) {
	logger := Default()
	defer logger.Close()

	if logger.config.Service != "chordmaker" {
		t.Errorf("Default() service = %q, want %q", logger.config.Service, "chordmaker")
	}
	if logger.config.Level != LevelInfo {
		t.Errorf("Default() level = %v, want %v", logger.config.Level, LevelInfo)
	}
}

func TestMultiHandler_FansOut(t *testing.T) {
	var bufA, bufB bytes.Buffer
	h := &multiHandler{handlers: []slog.Handler{
		slog.NewTextHandler(&bufA, nil),
		slog.NewJSONHandler(&bufB, nil),
	}}

	logger := slog.New(h)
	logger.Info("fan out", "key", "value")

	if !strings.Contains(bufA.String(), "fan out") {
		t.Errorf("text handler missing record: %q", bufA.String())
	}
	if !strings.Contains(bufB.String(), "fan out") {
		t.Errorf("JSON handler missing record: %q", bufB.String())
	}
}

func TestMultiHandler_RespectsLevels(t *testing.T) {
	var debugBuf, warnBuf bytes.Buffer
	h := &multiHandler{handlers: []slog.Handler{
		slog.NewTextHandler(&debugBuf, &slog.HandlerOptions{Level: slog.LevelDebug}),
		slog.NewTextHandler(&warnBuf, &slog.HandlerOptions{Level: slog.LevelWarn}),
	}}

	if !h.Enabled(context.Background(), slog.LevelDebug) {
		t.Error("Enabled(debug) = false, want true when any handler accepts it")
	}

	logger := slog.New(h)
	logger.Debug("debug only")
	logger.Warn("warn everywhere")

	if !strings.Contains(debugBuf.String(), "debug only") {
		t.Error("debug handler missing debug record")
	}
	if strings.Contains(warnBuf.String(), "debug only") {
		t.Error("warn handler received a debug record")
	}
	if !strings.Contains(warnBuf.String(), "warn everywhere") {
		t.Error("warn handler missing warn record")
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("no home directory: %v", err)
	}

	got := expandPath("~/.chordmaker/logs")
	want := filepath.Join(home, ".chordmaker/logs")
	if got != want {
		t.Errorf("expandPath() = %q, want %q", got, want)
	}

	if got := expandPath("/var/log"); got != "/var/log" {
		t.Errorf("expandPath(/var/log) = %q, want unchanged", got)
	}
}
