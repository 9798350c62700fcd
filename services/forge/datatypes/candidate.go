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

import "time"

// PassageKind distinguishes the two granularities of indexed reference
// material used during prompt assembly.
type PassageKind string

const (
	// PassageFullReference is a complete reference file.
	PassageFullReference PassageKind = "full_reference"

	// PassageChunk is a single top-level declaration extracted from a
	// reference file.
	PassageChunk PassageKind = "chunk"
)

// Passage is one unit of retrieved reference context.
type Passage struct {
	Kind     PassageKind `json:"kind"`
	FilePath string      `json:"file_path"`
	Symbol   string      `json:"symbol,omitempty"`
	Content  string      `json:"content"`
}

// GenerationRequest describes a single generation task handed to the
// dispatcher. The same request is sent to every configured backend.
type GenerationRequest struct {
	// Query is the user's natural-language request.
	Query string `json:"query"`

	// SystemPrompt and UserPrompt are the fully assembled prompts,
	// context passages already interpolated.
	SystemPrompt string `json:"-"`
	UserPrompt   string `json:"-"`

	// MaxTokens, Temperature, and TopP apply to every backend call
	// made for this request, continuations included.
	MaxTokens   int     `json:"max_tokens,omitempty"`
	Temperature float32 `json:"temperature,omitempty"`
	TopP        float32 `json:"top_p,omitempty"`
}

// GenerationMetadata records how an artifact was produced.
type GenerationMetadata struct {
	// Backend is the name of the backend that produced the artifact.
	Backend string `json:"backend"`

	// CallCount is the number of LLM calls used, continuations
	// included.
	CallCount int `json:"call_count"`

	// WasTruncated is true if any call stopped on a length limit.
	WasTruncated bool `json:"was_truncated"`

	// BudgetExhausted is true if the final call was still truncated
	// when the continuation budget ran out.
	BudgetExhausted bool `json:"budget_exhausted,omitempty"`

	// TotalTokens is the summed token usage across all calls, when
	// the backend reports it.
	TotalTokens int `json:"total_tokens,omitempty"`

	// Failed marks a candidate whose backend produced nothing. Such
	// candidates stay in the ranked list as diagnostics.
	Failed bool `json:"failed,omitempty"`

	// FailureReason describes the backend failure when Failed is set.
	FailureReason string `json:"failure_reason,omitempty"`
}

// CandidateResult is one backend's finished, validated artifact.
type CandidateResult struct {
	// Artifact is the cleaned generated source code.
	Artifact string `json:"artifact"`

	// Generation records backend provenance.
	Generation GenerationMetadata `json:"generation"`

	// Validation is the normalized validator output.
	Validation ValidationReport `json:"validation"`

	// Elapsed is the wall-clock generation time, validation excluded.
	Elapsed time.Duration `json:"elapsed_ns"`

	// CombinedScore is filled in by the ranker.
	CombinedScore float64 `json:"combined_score"`
}
