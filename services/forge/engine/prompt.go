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
	"strings"

	"github.com/AleutianAI/AleutianForge/services/forge/datatypes"
)

// Prompt assembly limits. Full reference files carry the most signal
// but also the most tokens, so they are capped harder than chunks.
const (
	maxFullReferences = 2
	maxChunks         = 8

	// maxRepairIssues caps how many issues a repair prompt lists.
	maxRepairIssues = 10
)

// Default generation parameters.
const (
	DefaultMaxTokens   = 6000
	DefaultTemperature = 0.15
	DefaultTopP        = 0.95

	// RefinementTemperature is lower than generation temperature so
	// repairs stay close to the existing code.
	RefinementTemperature = 0.1
)

const generationSystemPrompt = `You are an expert Go code generator specializing in Kubernetes.

CRITICAL RULES:
1. Output ONLY valid Go code. No explanations, no markdown prose.
2. The code must be a complete, compilable file starting with a package clause.
3. Follow the structure, naming, and style of the reference code provided.
4. Include all necessary imports.
5. Handle errors explicitly; never discard them.`

// ContextRetriever supplies reference passages for a query. The
// engine depends only on this interface; the Weaviate-backed index
// implements it.
type ContextRetriever interface {
	Retrieve(ctx context.Context, query string, limit int) ([]datatypes.Passage, error)
}

// BuildGenerationRequest assembles the prompts for a query from the
// retrieved passages and fills in default generation parameters.
//
// At most 2 full reference files and 8 chunks are used, in retrieval
// order. With no passages at all the prompt still works; the model
// just generates without examples.
func BuildGenerationRequest(query string, passages []datatypes.Passage) datatypes.GenerationRequest {
	var sb strings.Builder

	fullRefs := 0
	chunks := 0
	for _, p := range passages {
		switch p.Kind {
		case datatypes.PassageFullReference:
			if fullRefs >= maxFullReferences {
				continue
			}
			fullRefs++
		case datatypes.PassageChunk:
			if chunks >= maxChunks {
				continue
			}
			chunks++
		default:
			continue
		}
		sb.WriteString(p.Content)
		sb.WriteString("\n\n")
	}

	var user strings.Builder
	if sb.Len() > 0 {
		user.WriteString("REFERENCE CODE:\n\n")
		user.WriteString(sb.String())
	}
	user.WriteString("TASK:\n")
	user.WriteString(query)
	user.WriteString("\n\nGenerate the complete Go source file.")

	return datatypes.GenerationRequest{
		Query:        query,
		SystemPrompt: generationSystemPrompt,
		UserPrompt:   user.String(),
		MaxTokens:    DefaultMaxTokens,
		Temperature:  DefaultTemperature,
		TopP:         DefaultTopP,
	}
}

// BuildRepairRequest assembles the prompt for one refinement
// iteration: the issues to fix (first 10) plus the current source.
func BuildRepairRequest(query, artifact string, issues []string) datatypes.GenerationRequest {
	if len(issues) > maxRepairIssues {
		issues = issues[:maxRepairIssues]
	}

	var user strings.Builder
	user.WriteString("Here is source code that has some errors. Fix these errors ")
	user.WriteString("while retaining the same format, structure, and style of the original code.\n\n")
	user.WriteString("ERRORS TO FIX:\n")
	for _, issue := range issues {
		fmt.Fprintf(&user, "- %s\n", issue)
	}
	user.WriteString("\nSOURCE CODE TO FIX:\n\n")
	user.WriteString(artifact)
	user.WriteString("\n\nOutput the complete corrected file.")

	return datatypes.GenerationRequest{
		Query:        query,
		SystemPrompt: generationSystemPrompt,
		UserPrompt:   user.String(),
		MaxTokens:    DefaultMaxTokens,
		Temperature:  RefinementTemperature,
		TopP:         DefaultTopP,
	}
}
