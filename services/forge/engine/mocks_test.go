// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package engine

import (
	"context"
	"sync"

	"github.com/AleutianAI/AleutianForge/services/forge/datatypes"
	"github.com/AleutianAI/AleutianForge/services/llm"
)

// scriptedBackend replays a fixed sequence of completion results,
// then keeps returning the last one.
type scriptedBackend struct {
	name    string
	mu      sync.Mutex
	calls   int
	results []llm.CompletionResult
	errs    []error
	// requests records every request for assertions.
	requests []llm.CompletionRequest
}

func (b *scriptedBackend) Name() string          { return b.name }
func (b *scriptedBackend) Kind() llm.BackendKind { return llm.KindChat }

func (b *scriptedBackend) Complete(_ context.Context, req llm.CompletionRequest) (*llm.CompletionResult, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	idx := b.calls
	if idx >= len(b.results) {
		idx = len(b.results) - 1
	}
	b.calls++
	b.requests = append(b.requests, req)

	if idx < len(b.errs) && b.errs[idx] != nil {
		return nil, b.errs[idx]
	}
	r := b.results[idx]
	return &r, nil
}

// scriptedValidator replays a fixed sequence of reports, then keeps
// returning the last one.
type scriptedValidator struct {
	mu      sync.Mutex
	calls   int
	reports []datatypes.ValidationReport
	// sources records validated artifacts for assertions.
	sources []string
}

func (v *scriptedValidator) Validate(_ context.Context, source, _ string) datatypes.ValidationReport {
	v.mu.Lock()
	defer v.mu.Unlock()

	idx := v.calls
	if idx >= len(v.reports) {
		idx = len(v.reports) - 1
	}
	v.calls++
	v.sources = append(v.sources, source)
	return v.reports[idx]
}

func reportWithIssues(n int) datatypes.ValidationReport {
	issues := make([]string, n)
	for i := range issues {
		issues[i] = "main.go:10:2: something wrong"
	}
	return datatypes.NewValidationReport(issues, n)
}
