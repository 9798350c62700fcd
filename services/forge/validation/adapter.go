// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package validation runs external lint tooling on generated Go code
// and normalizes the result into a ValidationReport. The adapter never
// returns an error: a broken tool degrades into a report that says so.
package validation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"go.opentelemetry.io/otel"

	"github.com/AleutianAI/AleutianForge/services/forge/datatypes"
)

var tracer = otel.Tracer("aleutian.forge.validation")

// DefaultToolTimeout bounds one lint run. Large candidates on a cold
// module cache can take minutes.
const DefaultToolTimeout = 650 * time.Second

const candidateFileName = "candidate.go"

// Config tunes the adapter.
type Config struct {
	// ToolPath is the golangci-lint binary. Empty means $PATH lookup.
	ToolPath string

	// Timeout bounds one lint run; zero means DefaultToolTimeout.
	Timeout time.Duration

	// RetainWorkspaces keeps temp workspaces on disk for debugging.
	RetainWorkspaces bool
}

// Adapter validates generated source with golangci-lint in an
// isolated temp workspace per call. Safe for concurrent use.
type Adapter struct {
	toolPath string
	timeout  time.Duration
	retain   bool
}

// NewAdapter builds an adapter from config.
func NewAdapter(cfg Config) *Adapter {
	toolPath := cfg.ToolPath
	if toolPath == "" {
		toolPath = "golangci-lint"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultToolTimeout
	}
	return &Adapter{toolPath: toolPath, timeout: timeout, retain: cfg.RetainWorkspaces}
}

// Validate lints one artifact and returns the normalized report.
//
// Non-Go artifacts (by hint or by detection) get a neutral passing
// report: the tool cannot judge them, and an unjudged artifact must
// not be punished. Empty artifacts fail outright. Tool failures take
// the degrade path described on DegradedValidationReport.
func (a *Adapter) Validate(ctx context.Context, source, languageHint string) datatypes.ValidationReport {
	ctx, span := tracer.Start(ctx, "validate_artifact")
	defer span.End()

	if strings.TrimSpace(source) == "" {
		return datatypes.ValidationReport{
			QualityScore: 0.0,
			Issues:       []string{"artifact is empty"},
			IssueCount:   1,
			Passed:       false,
			HasIssues:    true,
		}
	}

	if !isGoSource(source, languageHint) {
		return datatypes.ValidationReport{
			QualityScore: datatypes.NeutralScore,
			Passed:       true,
		}
	}

	dir, err := a.prepareWorkspace(source)
	if err != nil {
		slog.Error("validator workspace setup failed", "error", err)
		return datatypes.DegradedValidationReport("workspace setup: " + err.Error())
	}
	if !a.retain {
		defer os.RemoveAll(dir)
	}

	output, err := a.runTool(ctx, dir)
	if err != nil {
		slog.Error("validator tool failed", "tool", a.toolPath, "error", err)
		return datatypes.DegradedValidationReport(err.Error())
	}

	issues, count, err := parseToolOutput(output)
	if err != nil {
		slog.Error("validator output unparsable", "error", err)
		return datatypes.DegradedValidationReport("unparsable tool output: " + err.Error())
	}

	return datatypes.NewValidationReport(issues, count)
}

// isGoSource applies the hint first, falling back to a cheap
// structural sniff.
func isGoSource(source, hint string) bool {
	switch strings.ToLower(strings.TrimSpace(hint)) {
	case "go", "golang":
		return true
	case "":
		return strings.Contains(source, "package ") && strings.Contains(source, "func ")
	default:
		return false
	}
}

// prepareWorkspace writes the candidate and a minimal go.mod into a
// fresh temp directory.
func (a *Adapter) prepareWorkspace(source string) (string, error) {
	dir, err := os.MkdirTemp("", "forge-validate-*")
	if err != nil {
		return "", fmt.Errorf("create temp dir: %w", err)
	}

	goMod := "module candidate\n\ngo 1.25\n"
	if err := os.WriteFile(filepath.Join(dir, "go.mod"), []byte(goMod), 0o644); err != nil {
		os.RemoveAll(dir)
		return "", fmt.Errorf("write go.mod: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, candidateFileName), []byte(source), 0o644); err != nil {
		os.RemoveAll(dir)
		return "", fmt.Errorf("write candidate: %w", err)
	}
	return dir, nil
}

// runTool executes golangci-lint and returns its stdout. Exit code 1
// means "issues found" and is not a failure; anything else is.
func (a *Adapter) runTool(ctx context.Context, dir string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, a.toolPath, "run", "--out-format=json", "./...")
	cmd.Dir = dir

	output, err := cmd.Output()
	if ctx.Err() != nil {
		return nil, fmt.Errorf("lint timed out after %s", a.timeout)
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && exitErr.ExitCode() == 1 {
			return output, nil
		}
		return nil, fmt.Errorf("run %s: %w", a.toolPath, err)
	}
	return output, nil
}

// toolOutput mirrors the fields of the golangci-lint JSON report the
// adapter needs.
type toolOutput struct {
	Issues []struct {
		FromLinter string `json:"FromLinter"`
		Text       string `json:"Text"`
		Pos        struct {
			Filename string `json:"Filename"`
			Line     int    `json:"Line"`
			Column   int    `json:"Column"`
		} `json:"Pos"`
	} `json:"Issues"`
}

// parseToolOutput converts the JSON report into issue strings and a
// weighted issue count.
func parseToolOutput(output []byte) ([]string, int, error) {
	var parsed toolOutput
	if err := json.Unmarshal(output, &parsed); err != nil {
		return nil, 0, err
	}

	issues := make([]string, 0, len(parsed.Issues))
	count := 0
	for _, issue := range parsed.Issues {
		issues = append(issues, fmt.Sprintf("%s:%d:%d: %s (%s)",
			issue.Pos.Filename, issue.Pos.Line, issue.Pos.Column,
			strings.TrimSpace(issue.Text), issue.FromLinter))
		count += CountIssueLines(issue.Text)
	}
	return issues, count, nil
}
