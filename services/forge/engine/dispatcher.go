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
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/AleutianAI/AleutianForge/services/forge/datatypes"
	"github.com/AleutianAI/AleutianForge/services/llm"
)

var tracer = otel.Tracer("aleutian.forge.engine")

// maxDispatchWorkers bounds the fan-out pool regardless of how many
// backends are configured.
const maxDispatchWorkers = 3

// Validator turns an artifact into a normalized report. It never
// returns an error; tool failures degrade inside the report.
type Validator interface {
	Validate(ctx context.Context, source, languageHint string) datatypes.ValidationReport
}

// Dispatcher fans one generation request out to every configured
// backend, validates each artifact, and collects the results.
type Dispatcher struct {
	backends  []llm.Backend
	generator *Generator
	validator Validator
}

// NewDispatcher wires a dispatcher. The backend slice is copied so
// the roster cannot change under a running dispatch.
func NewDispatcher(backends []llm.Backend, generator *Generator, validator Validator) *Dispatcher {
	owned := make([]llm.Backend, len(backends))
	copy(owned, backends)
	return &Dispatcher{backends: owned, generator: generator, validator: validator}
}

// DispatchAll runs the request on every backend through a bounded
// worker pool and returns one CandidateResult per backend, in backend
// order.
//
// A backend failure never drops the slot: the worker emits a
// diagnostic placeholder candidate instead, so callers always see the
// full roster. ErrNoCandidates is returned, together with the
// placeholder results, only when every backend failed.
func (d *Dispatcher) DispatchAll(ctx context.Context, req datatypes.GenerationRequest) ([]datatypes.CandidateResult, error) {
	if len(d.backends) == 0 {
		return nil, ErrNoBackends
	}
	if req.Query == "" {
		return nil, ErrEmptyQuery
	}

	ctx, span := tracer.Start(ctx, "dispatch_all")
	defer span.End()
	span.SetAttributes(attribute.Int("backends", len(d.backends)))

	workers := len(d.backends)
	if workers > maxDispatchWorkers {
		workers = maxDispatchWorkers
	}
	sem := make(chan struct{}, workers)

	type indexed struct {
		idx    int
		result datatypes.CandidateResult
	}
	resultCh := make(chan indexed, len(d.backends))

	var wg sync.WaitGroup
	for i, backend := range d.backends {
		i, backend := i, backend
		wg.Add(1)
		go func() {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			resultCh <- indexed{idx: i, result: d.runOne(ctx, backend, req)}
		}()
	}

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	results := make([]datatypes.CandidateResult, len(d.backends))
	failed := 0
	for ir := range resultCh {
		results[ir.idx] = ir.result
		if ir.result.Generation.Failed {
			failed++
		}
	}

	if failed == len(results) {
		slog.Error("all backends failed", "backends", len(results))
		return results, ErrNoCandidates
	}

	return results, nil
}

// runOne generates and validates a single candidate. All failure
// modes collapse into a placeholder candidate; workers never panic a
// dispatch.
func (d *Dispatcher) runOne(ctx context.Context, backend llm.Backend, req datatypes.GenerationRequest) datatypes.CandidateResult {
	ctx, span := tracer.Start(ctx, "generate_candidate")
	defer span.End()
	span.SetAttributes(attribute.String("backend", backend.Name()))

	start := time.Now()
	artifact, meta, err := d.generator.Generate(ctx, backend, req)
	elapsed := time.Since(start)

	if err != nil {
		slog.Warn("backend produced no artifact",
			"backend", backend.Name(), "error", err)
		meta.Failed = true
		meta.FailureReason = err.Error()
		return datatypes.CandidateResult{
			Generation: meta,
			Validation: datatypes.ValidationReport{
				Issues:     []string{"generation failed: " + err.Error()},
				IssueCount: 1,
				HasIssues:  true,
			},
			Elapsed: elapsed,
		}
	}

	report := d.validator.Validate(ctx, artifact, "go")

	slog.Info("candidate ready",
		"backend", backend.Name(),
		"elapsed", elapsed,
		"quality", report.QualityScore,
		"issues", report.IssueCount,
		"truncated", meta.WasTruncated)

	return datatypes.CandidateResult{
		Artifact:   artifact,
		Generation: meta,
		Validation: report,
		Elapsed:    elapsed,
	}
}
