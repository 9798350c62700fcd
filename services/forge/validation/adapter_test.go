// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package validation

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/AleutianForge/services/forge/datatypes"
)

const goSample = "package main\n\nfunc main() {}\n"

// fakeTool writes an executable shell script that stands in for
// golangci-lint.
func fakeTool(t *testing.T, script string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell-script fake tool requires a POSIX shell")
	}
	path := filepath.Join(t.TempDir(), "golangci-lint")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+script), 0o755))
	return path
}

func TestValidateEmptySource(t *testing.T) {
	a := NewAdapter(Config{ToolPath: "/nonexistent"})

	report := a.Validate(context.Background(), "   \n", "go")

	assert.Equal(t, 0.0, report.QualityScore)
	assert.False(t, report.Passed)
	assert.True(t, report.HasIssues)
	require.Len(t, report.Issues, 1)
	assert.Contains(t, report.Issues[0], "empty")
}

func TestValidateNonGoSource(t *testing.T) {
	a := NewAdapter(Config{ToolPath: "/nonexistent"})

	t.Run("explicit hint", func(t *testing.T) {
		report := a.Validate(context.Background(), "print('hi')", "python")
		assert.Equal(t, datatypes.NeutralScore, report.QualityScore)
		assert.True(t, report.Passed)
		assert.False(t, report.HasIssues)
	})

	t.Run("detection without hint", func(t *testing.T) {
		report := a.Validate(context.Background(), "def foo(): pass", "")
		assert.True(t, report.Passed)
		assert.False(t, report.HasIssues)
	})
}

func TestValidateCleanRun(t *testing.T) {
	tool := fakeTool(t, `echo '{"Issues":[]}'`)
	a := NewAdapter(Config{ToolPath: tool})

	report := a.Validate(context.Background(), goSample, "go")

	assert.Equal(t, 1.0, report.QualityScore)
	assert.True(t, report.Passed)
	assert.False(t, report.HasIssues)
	assert.False(t, report.ToolUnavailable)
}

func TestValidateIssuesFound(t *testing.T) {
	// Exit code 1 is the tool's "issues found" signal, not a failure.
	// printf '%s\n' keeps the backslash escapes in the payload literal;
	// dash's echo would expand them and corrupt the JSON.
	tool := fakeTool(t, `printf '%s\n' '{"Issues":[`+
		`{"FromLinter":"typecheck","Text":"undefined: foo","Pos":{"Filename":"candidate.go","Line":5,"Column":2}},`+
		`{"FromLinter":"typecheck","Text":"main.go:9:6: x declared and not used\nmain.go:12:1: undefined: bar","Pos":{"Filename":"candidate.go","Line":9,"Column":6}}`+
		`]}'; exit 1`)
	a := NewAdapter(Config{ToolPath: tool})

	report := a.Validate(context.Background(), goSample, "go")

	// 1 + 2 sub-lines = 3 weighted issues.
	assert.Equal(t, 3, report.IssueCount)
	assert.InDelta(t, 0.76, report.QualityScore, 1e-9)
	assert.True(t, report.Passed)
	assert.True(t, report.HasIssues)
	require.Len(t, report.Issues, 2)
	assert.Contains(t, report.Issues[0], "candidate.go:5:2")
	assert.Contains(t, report.Issues[0], "typecheck")
}

func TestValidateToolMissingDegrades(t *testing.T) {
	a := NewAdapter(Config{ToolPath: "/nonexistent/golangci-lint"})

	report := a.Validate(context.Background(), goSample, "go")

	assert.True(t, report.ToolUnavailable)
	assert.False(t, report.Passed)
	assert.True(t, report.HasIssues)
	assert.Equal(t, datatypes.NeutralScore, report.QualityScore)
	assert.NotEmpty(t, report.FailureReason)
}

func TestValidateUnparsableOutputDegrades(t *testing.T) {
	tool := fakeTool(t, `echo 'panic: runtime error'`)
	a := NewAdapter(Config{ToolPath: tool})

	report := a.Validate(context.Background(), goSample, "go")

	assert.True(t, report.ToolUnavailable)
	assert.Contains(t, report.FailureReason, "unparsable")
}

func TestValidateCrashDegrades(t *testing.T) {
	tool := fakeTool(t, `exit 3`)
	a := NewAdapter(Config{ToolPath: tool})

	report := a.Validate(context.Background(), goSample, "go")

	assert.True(t, report.ToolUnavailable)
	assert.False(t, report.Passed)
}

func TestParseToolOutput(t *testing.T) {
	issues, count, err := parseToolOutput([]byte(`{"Issues":[{"FromLinter":"govet","Text":"shadowed variable","Pos":{"Filename":"candidate.go","Line":3,"Column":1}}]}`))
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	require.Len(t, issues, 1)
	assert.Equal(t, "candidate.go:3:1: shadowed variable (govet)", issues[0])

	_, _, err = parseToolOutput([]byte("not json"))
	assert.Error(t, err)
}
