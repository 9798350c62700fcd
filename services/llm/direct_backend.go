// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package llm

import (
	"context"
	"fmt"
	"log/slog"

	openai "github.com/sashabaranov/go-openai"
)

// DirectCompletionBackend calls the legacy text completions API on an
// Azure-style deployment. The system and user prompts are folded into
// a single prompt string because the surface has no message roles.
type DirectCompletionBackend struct {
	name       string
	deployment string
	client     *openai.Client
}

// NewDirectCompletionBackend builds a direct completion backend.
//
// # Inputs
//   - name: Identifier used in logs and results. Required.
//   - endpoint: Azure resource endpoint, e.g. https://res.openai.azure.com. Required.
//   - deployment: Deployment (model) name. Required.
//   - apiKey: API key for the resource. Required.
//   - apiVersion: API version string; empty keeps the client default.
func NewDirectCompletionBackend(name, endpoint, deployment, apiKey, apiVersion string) (*DirectCompletionBackend, error) {
	if name == "" {
		return nil, fmt.Errorf("direct backend: name is required")
	}
	if endpoint == "" || deployment == "" {
		return nil, fmt.Errorf("direct backend %q: endpoint and deployment are required", name)
	}
	if apiKey == "" {
		return nil, fmt.Errorf("direct backend %q: api key is required", name)
	}

	cfg := openai.DefaultAzureConfig(apiKey, endpoint)
	if apiVersion != "" {
		cfg.APIVersion = apiVersion
	}

	return &DirectCompletionBackend{
		name:       name,
		deployment: deployment,
		client:     openai.NewClientWithConfig(cfg),
	}, nil
}

func (b *DirectCompletionBackend) Name() string      { return b.name }
func (b *DirectCompletionBackend) Kind() BackendKind { return KindDirect }

// Complete performs one text completion call.
func (b *DirectCompletionBackend) Complete(ctx context.Context, req CompletionRequest) (*CompletionResult, error) {
	prompt := req.User
	if req.System != "" {
		prompt = req.System + "\n\n" + req.User
	}

	apiReq := openai.CompletionRequest{
		Model:       b.deployment,
		Prompt:      prompt,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
		TopP:        req.TopP,
	}

	resp, err := b.client.CreateCompletion(ctx, apiReq)
	if err != nil {
		return nil, fmt.Errorf("direct backend %q: %w", b.name, err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("direct backend %q: %w", b.name, ErrEmptyResponse)
	}

	choice := resp.Choices[0]
	slog.Debug("direct completion finished",
		"backend", b.name,
		"finish_reason", choice.FinishReason,
		"total_tokens", resp.Usage.TotalTokens)

	return &CompletionResult{
		Text:        choice.Text,
		StopReason:  normalizeStopReason(choice.FinishReason),
		TotalTokens: resp.Usage.TotalTokens,
	}, nil
}
