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

	"go.opentelemetry.io/otel/attribute"

	"github.com/AleutianAI/AleutianForge/services/forge/datatypes"
	"github.com/AleutianAI/AleutianForge/services/llm"
)

// DefaultRefinementBudget is the maximum number of repair iterations
// per candidate.
const DefaultRefinementBudget = 3

// Refiner iteratively repairs a candidate using the backend that
// produced it, re-validating after every repair.
type Refiner struct {
	budget    int
	generator *Generator
	validator Validator
}

// NewRefiner builds a refiner. Budgets below 1 fall back to the
// default.
func NewRefiner(budget int, generator *Generator, validator Validator) *Refiner {
	if budget < 1 {
		budget = DefaultRefinementBudget
	}
	return &Refiner{budget: budget, generator: generator, validator: validator}
}

// Refine runs the repair loop on a candidate. The candidate itself is
// never mutated; the session carries the repaired artifact and the
// full iteration history.
//
// Stop conditions are checked in a fixed order after each iteration:
// zero issues wins over no-improvement, which wins over budget
// exhaustion. The latest repaired artifact is always adopted, so the
// session's final artifact reflects the last validation performed.
func (r *Refiner) Refine(ctx context.Context, backend llm.Backend, candidate datatypes.CandidateResult, query string) datatypes.RefinementSession {
	ctx, span := tracer.Start(ctx, "refine_candidate")
	defer span.End()
	span.SetAttributes(attribute.String("backend", backend.Name()))

	session := datatypes.RefinementSession{
		InitialIssues: candidate.Validation.IssueCount,
		FinalArtifact: candidate.Artifact,
		FinalReport:   candidate.Validation,
	}

	if !candidate.Validation.HasIssues {
		session.Outcome = datatypes.RefinementSkipped
		return session
	}

	currentArtifact := candidate.Artifact
	currentReport := candidate.Validation

	for i := 1; i <= r.budget; i++ {
		req := BuildRepairRequest(query, currentArtifact, currentReport.Issues)

		repaired, _, err := r.generator.Generate(ctx, backend, req)
		if err != nil {
			slog.Warn("repair generation failed, stopping refinement",
				"backend", backend.Name(), "iteration", i, "error", err)
			session.Outcome = stalledOutcome(session.InitialIssues, currentReport.IssueCount)
			break
		}

		report := r.validator.Validate(ctx, repaired, "go")
		improvement := currentReport.IssueCount - report.IssueCount

		session.Iterations = append(session.Iterations, datatypes.IterationRecord{
			Iteration:    i,
			IssuesBefore: currentReport.IssueCount,
			IssuesAfter:  report.IssueCount,
			Report:       report,
		})

		slog.Info("refinement iteration",
			"backend", backend.Name(),
			"iteration", i,
			"issues_before", currentReport.IssueCount,
			"issues_after", report.IssueCount)

		currentArtifact = repaired
		currentReport = report

		if report.IssueCount == 0 {
			session.Outcome = datatypes.RefinementConverged
			break
		}
		if i > 1 && improvement <= 0 {
			session.Outcome = datatypes.RefinementNoImprovement
			break
		}
		if i == r.budget {
			session.Outcome = stalledOutcome(session.InitialIssues, report.IssueCount)
		}
	}

	session.FinalArtifact = currentArtifact
	session.FinalReport = currentReport
	session.FinalIssues = currentReport.IssueCount
	return session
}

// stalledOutcome classifies a stop with issues remaining: a net
// reduction since entry counts as partial improvement.
func stalledOutcome(initial, final int) datatypes.RefinementOutcome {
	if final < initial {
		return datatypes.RefinementPartialImprovement
	}
	if final == initial {
		return datatypes.RefinementNoImprovement
	}
	return datatypes.RefinementBudgetExhausted
}
