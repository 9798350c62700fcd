// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package datatypes

// RefinementOutcome is the terminal state of a refinement session.
type RefinementOutcome string

const (
	// RefinementConverged means the artifact reached zero issues.
	RefinementConverged RefinementOutcome = "converged"

	// RefinementNoImprovement means an iteration after the first
	// failed to reduce the issue count, so the loop stopped early.
	RefinementNoImprovement RefinementOutcome = "no_improvement"

	// RefinementBudgetExhausted means the iteration budget ran out
	// with issues remaining and no net reduction.
	RefinementBudgetExhausted RefinementOutcome = "budget_exhausted"

	// RefinementPartialImprovement means the loop stopped with issues
	// remaining, but fewer than it started with.
	RefinementPartialImprovement RefinementOutcome = "partial_improvement"

	// RefinementSkipped means the candidate had no issues, so no
	// repair was attempted.
	RefinementSkipped RefinementOutcome = "skipped"
)

// IterationRecord captures one repair attempt.
type IterationRecord struct {
	// Iteration is 1-based.
	Iteration int `json:"iteration"`

	// IssuesBefore and IssuesAfter bracket this iteration's repair.
	IssuesBefore int `json:"issues_before"`
	IssuesAfter  int `json:"issues_after"`

	// Report is the validation of the repaired artifact.
	Report ValidationReport `json:"report"`
}

// RefinementSession is the full provenance of a refinement run.
// The original candidate is never mutated; FinalArtifact holds the
// repaired code from the last successful iteration.
type RefinementSession struct {
	Outcome RefinementOutcome `json:"outcome"`

	// InitialIssues is the issue count of the artifact entering the
	// loop; FinalIssues is the count when the loop stopped.
	InitialIssues int `json:"initial_issues"`
	FinalIssues   int `json:"final_issues"`

	Iterations []IterationRecord `json:"iterations,omitempty"`

	// FinalArtifact is the best artifact the session produced. When
	// no iteration improved anything this is the original artifact.
	FinalArtifact string `json:"final_artifact,omitempty"`

	// FinalReport validates FinalArtifact.
	FinalReport ValidationReport `json:"final_report"`
}
