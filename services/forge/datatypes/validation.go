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

// IssueWeight is how much each counted lint issue subtracts from a
// perfect quality score. Thirteen or more issues clamp the score to 0.
const IssueWeight = 0.08

// PassThreshold is the minimum quality score for a candidate to pass
// validation. With IssueWeight 0.08 this allows at most 6 issues.
const PassThreshold = 0.5

// NeutralScore is the fixed quality score assigned when the validator
// itself could not run (tool missing, timeout, unparsable output).
// It is deliberately distinct from 1.0 so a broken tool is never
// mistaken for a clean run.
const NeutralScore = 0.5

// ValidationReport is the normalized output of the validation adapter.
//
// A report is immutable after creation. Every CandidateResult that
// reaches the ranker carries a completed report, never a partial one.
type ValidationReport struct {
	// QualityScore is in [0.0, 1.0]; 1.0 means zero issues found.
	QualityScore float64 `json:"quality_score"`

	// Issues holds human-readable issue descriptions in tool order.
	Issues []string `json:"issues,omitempty"`

	// IssueCount is the total weighted issue count. It can exceed
	// len(Issues) when the tool groups several errors into one blob.
	IssueCount int `json:"issue_count"`

	// Passed is true when QualityScore >= PassThreshold and the tool
	// actually ran.
	Passed bool `json:"passed"`

	// HasIssues is true when at least one issue was found or the tool
	// was unusable.
	HasIssues bool `json:"has_issues"`

	// ToolUnavailable marks the degrade path: the validator crashed,
	// timed out, or produced unparsable output. QualityScore is then
	// NeutralScore rather than a measurement.
	ToolUnavailable bool `json:"tool_unavailable,omitempty"`

	// FailureReason describes why the tool was unusable.
	FailureReason string `json:"failure_reason,omitempty"`
}

// QualityScore computes the lint quality score for an issue count.
// Monotonically non-increasing, clamped at 0.0.
func QualityScore(issueCount int) float64 {
	score := 1.0 - float64(issueCount)*IssueWeight
	if score < 0.0 {
		return 0.0
	}
	return score
}

// NewValidationReport builds a report from counted issues. The score
// and passed flag are derived; zero issues always yields score 1.0.
func NewValidationReport(issues []string, issueCount int) ValidationReport {
	if issueCount < 0 {
		issueCount = 0
	}
	score := QualityScore(issueCount)
	return ValidationReport{
		QualityScore: score,
		Issues:       issues,
		IssueCount:   issueCount,
		Passed:       score >= PassThreshold,
		HasIssues:    issueCount > 0,
	}
}

// DegradedValidationReport builds the report for the degrade path.
// The reason is surfaced as a single synthetic issue so downstream
// consumers see why the candidate could not be measured.
func DegradedValidationReport(reason string) ValidationReport {
	return ValidationReport{
		QualityScore:    NeutralScore,
		Issues:          []string{"validator unavailable: " + reason},
		IssueCount:      1,
		Passed:          false,
		HasIssues:       true,
		ToolUnavailable: true,
		FailureReason:   reason,
	}
}
