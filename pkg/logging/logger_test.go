// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package logging

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want slog.Level
	}{
		{"debug", "debug", slog.LevelDebug},
		{"info", "info", slog.LevelInfo},
		{"warn", "warn", slog.LevelWarn},
		{"warning alias", "WARNING", slog.LevelWarn},
		{"error", "error", slog.LevelError},
		{"unknown defaults to info", "trace", slog.LevelInfo},
		{"whitespace tolerated", "  Debug ", slog.LevelDebug},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parseLevel(tt.in))
		})
	}
}

func TestParseLevelFromEnv(t *testing.T) {
	t.Setenv("FORGE_LOG_LEVEL", "error")
	assert.Equal(t, slog.LevelError, parseLevel(""))
}

func TestNewWithLogDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")

	logger, err := New(Config{Service: "forge", JSON: true, LogDir: dir})
	require.NoError(t, err)

	logger.Info("hello", "key", "value")

	name := "forge_" + time.Now().Format("2006-01-02") + ".log"
	data, err := os.ReadFile(filepath.Join(dir, name))
	require.NoError(t, err)

	content := string(data)
	assert.Contains(t, content, `"msg":"hello"`)
	assert.Contains(t, content, `"service":"forge"`)
	assert.True(t, strings.Contains(content, `"key":"value"`))
}

func TestNewWithoutLogDir(t *testing.T) {
	logger, err := New(Config{Service: "cli"})
	require.NoError(t, err)
	assert.NotNil(t, logger)
}
