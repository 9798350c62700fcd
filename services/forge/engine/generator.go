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
	"fmt"
	"log/slog"
	"strings"

	"github.com/AleutianAI/AleutianForge/services/forge/datatypes"
	"github.com/AleutianAI/AleutianForge/services/llm"
)

// DefaultContinuationBudget is the maximum number of LLM calls a
// single generation may use, the initial call included.
const DefaultContinuationBudget = 3

const continuationSystemPrompt = "You are continuing code generation. " +
	"Continue EXACTLY from where the code was cut off. Do not repeat " +
	"any code that was already generated. Do not add explanations or " +
	"markdown fences. Output only the remaining code."

// Generator drives one backend through a complete generation,
// following up with continuation calls while the backend reports a
// length-limited stop and budget remains.
type Generator struct {
	budget int
}

// NewGenerator builds a generator with the given continuation budget.
// Budgets below 1 fall back to the default.
func NewGenerator(budget int) *Generator {
	if budget < 1 {
		budget = DefaultContinuationBudget
	}
	return &Generator{budget: budget}
}

// Generate produces one cleaned artifact from the backend.
//
// An error is returned only when the very first call fails and nothing
// was accumulated. A failure after partial accumulation returns the
// partial artifact with the error logged; truncation that survives
// budget exhaustion is recorded in metadata, never treated as failure.
func (g *Generator) Generate(ctx context.Context, backend llm.Backend, req datatypes.GenerationRequest) (string, datatypes.GenerationMetadata, error) {
	meta := datatypes.GenerationMetadata{Backend: backend.Name()}

	var accumulated strings.Builder
	system := req.SystemPrompt
	user := req.UserPrompt

	for call := 1; call <= g.budget; call++ {
		result, err := backend.Complete(ctx, llm.CompletionRequest{
			System:      system,
			User:        user,
			MaxTokens:   req.MaxTokens,
			Temperature: req.Temperature,
			TopP:        req.TopP,
		})
		if err != nil {
			if accumulated.Len() == 0 {
				return "", meta, fmt.Errorf("generate on %q: %w", backend.Name(), err)
			}
			slog.Warn("continuation call failed, keeping partial artifact",
				"backend", backend.Name(), "call", call, "error", err)
			break
		}

		meta.CallCount = call
		meta.TotalTokens += result.TotalTokens
		accumulated.WriteString(result.Text)

		if result.StopReason != llm.StopLength {
			break
		}

		meta.WasTruncated = true
		if call == g.budget {
			meta.BudgetExhausted = true
			slog.Warn("continuation budget exhausted with truncated output",
				"backend", backend.Name(), "calls", call)
			break
		}

		system = continuationSystemPrompt
		user = "The code generated so far:\n\n" + accumulated.String() +
			"\n\nContinue from exactly where it was cut off."
	}

	return CleanArtifact(accumulated.String()), meta, nil
}
