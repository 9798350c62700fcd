// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package llm abstracts the generation backends AleutianForge fans out
// to. Every backend speaks an OpenAI-compatible wire protocol; the two
// implementations differ in which API surface they call (chat vs legacy
// completion) and how the endpoint is addressed (plain base URL vs
// Azure deployment).
package llm

import (
	"context"
	"errors"
)

// BackendKind selects the API surface a backend uses.
type BackendKind string

const (
	// KindChat uses the chat completions API.
	KindChat BackendKind = "chat"

	// KindDirect uses the legacy text completions API, addressed as
	// an Azure-style deployment.
	KindDirect BackendKind = "direct"
)

// StopReason normalizes the finish reason across API surfaces.
type StopReason string

const (
	// StopNatural means the model finished on its own.
	StopNatural StopReason = "stop"

	// StopLength means the completion hit the token limit and the
	// text is truncated.
	StopLength StopReason = "length"

	// StopOther covers everything else (content filter, tool call,
	// empty reason from lenient servers).
	StopOther StopReason = "other"
)

// ErrEmptyResponse is returned when a backend answered successfully
// but produced no choices.
var ErrEmptyResponse = errors.New("backend returned no choices")

// CompletionRequest is a single generation call. Continuation calls
// made by the generator reuse the same parameters with new prompts.
type CompletionRequest struct {
	System      string
	User        string
	MaxTokens   int
	Temperature float32
	TopP        float32
}

// CompletionResult is the normalized backend answer.
type CompletionResult struct {
	Text        string
	StopReason  StopReason
	TotalTokens int
}

// Backend is one configured generation endpoint.
//
// Implementations must be safe for concurrent use; the dispatcher
// calls them from a worker pool.
type Backend interface {
	// Name identifies the backend in logs, metrics, and results.
	Name() string

	// Kind reports which API surface the backend uses.
	Kind() BackendKind

	// Complete performs one generation call.
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResult, error)
}

// normalizeStopReason maps a raw finish reason string onto the three
// values the engine cares about.
func normalizeStopReason(raw string) StopReason {
	switch raw {
	case "stop":
		return StopNatural
	case "length":
		return StopLength
	default:
		return StopOther
	}
}
