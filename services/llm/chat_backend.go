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

// ChatCompletionBackend calls the chat completions API of any
// OpenAI-compatible server (vLLM, llama.cpp, Ollama's OpenAI shim,
// OpenAI itself).
type ChatCompletionBackend struct {
	name   string
	model  string
	client *openai.Client
}

// NewChatCompletionBackend builds a chat backend.
//
// # Inputs
//   - name: Identifier used in logs and results. Required.
//   - model: Model name sent with every request. Required.
//   - endpoint: Base URL override. Empty means api.openai.com.
//   - apiKey: Bearer token. May be empty for local servers.
//
// # Outputs
//   - *ChatCompletionBackend: Ready to use.
//   - error: Non-nil if name or model is empty.
func NewChatCompletionBackend(name, model, endpoint, apiKey string) (*ChatCompletionBackend, error) {
	if name == "" {
		return nil, fmt.Errorf("chat backend: name is required")
	}
	if model == "" {
		return nil, fmt.Errorf("chat backend %q: model is required", name)
	}

	cfg := openai.DefaultConfig(apiKey)
	if endpoint != "" {
		cfg.BaseURL = endpoint
	}

	return &ChatCompletionBackend{
		name:   name,
		model:  model,
		client: openai.NewClientWithConfig(cfg),
	}, nil
}

func (b *ChatCompletionBackend) Name() string      { return b.name }
func (b *ChatCompletionBackend) Kind() BackendKind { return KindChat }

// Complete performs one chat completion call.
func (b *ChatCompletionBackend) Complete(ctx context.Context, req CompletionRequest) (*CompletionResult, error) {
	apiReq := openai.ChatCompletionRequest{
		Model: b.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: req.System},
			{Role: openai.ChatMessageRoleUser, Content: req.User},
		},
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
		TopP:        req.TopP,
	}

	resp, err := b.client.CreateChatCompletion(ctx, apiReq)
	if err != nil {
		return nil, fmt.Errorf("chat backend %q: %w", b.name, err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("chat backend %q: %w", b.name, ErrEmptyResponse)
	}

	choice := resp.Choices[0]
	slog.Debug("chat completion finished",
		"backend", b.name,
		"finish_reason", choice.FinishReason,
		"total_tokens", resp.Usage.TotalTokens)

	return &CompletionResult{
		Text:        choice.Message.Content,
		StopReason:  normalizeStopReason(string(choice.FinishReason)),
		TotalTokens: resp.Usage.TotalTokens,
	}, nil
}
