// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package logging configures structured logging for Aleutian
// components on top of Go's standard slog package.
//
// Default output is stderr, following Unix CLI conventions. Services
// typically enable JSON for machine-readable logs; the CLI keeps the
// text handler. An optional log directory adds a JSON file named
// {service}_{date}.log alongside the primary output.
//
// This package does NOT redact sensitive data. Callers must ensure
// PII, tokens, and secrets are not logged.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Config controls logger construction.
type Config struct {
	// Level is the minimum severity: "debug", "info", "warn",
	// "error". Empty consults FORGE_LOG_LEVEL, then defaults to info.
	Level string

	// Service names the component; used in the log file name and
	// attached to every record as "service".
	Service string

	// JSON selects the JSON handler for the primary output.
	JSON bool

	// LogDir, when set, enables file logging. The directory is
	// created if missing. Supports a leading "~".
	LogDir string
}

// Setup builds a logger from config and installs it as the slog
// default. Call once at startup.
func Setup(cfg Config) error {
	logger, err := New(cfg)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)
	return nil
}

// New builds a logger from config without installing it.
func New(cfg Config) (*slog.Logger, error) {
	opts := &slog.HandlerOptions{Level: parseLevel(cfg.Level)}

	writer := io.Writer(os.Stderr)
	if cfg.LogDir != "" {
		file, err := openLogFile(cfg.LogDir, cfg.Service)
		if err != nil {
			return nil, err
		}
		writer = io.MultiWriter(os.Stderr, file)
	}

	var handler slog.Handler
	if cfg.JSON {
		handler = slog.NewJSONHandler(writer, opts)
	} else {
		handler = slog.NewTextHandler(writer, opts)
	}

	logger := slog.New(handler)
	if cfg.Service != "" {
		logger = logger.With("service", cfg.Service)
	}
	return logger, nil
}

// parseLevel maps a level name to its slog level, consulting
// FORGE_LOG_LEVEL when the name is empty. Unknown names mean info.
func parseLevel(name string) slog.Level {
	if name == "" {
		name = os.Getenv("FORGE_LOG_LEVEL")
	}
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// openLogFile creates the log directory if needed and opens the
// dated service log for appending.
func openLogFile(dir, service string) (*os.File, error) {
	if strings.HasPrefix(dir, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("expand log dir: %w", err)
		}
		dir = filepath.Join(home, strings.TrimPrefix(dir, "~"))
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}

	if service == "" {
		service = "aleutian"
	}
	name := fmt.Sprintf("%s_%s.log", service, time.Now().Format("2006-01-02"))
	file, err := os.OpenFile(filepath.Join(dir, name), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o640)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return file, nil
}
