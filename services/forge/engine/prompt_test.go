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
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/AleutianAI/AleutianForge/services/forge/datatypes"
)

func passage(kind datatypes.PassageKind, content string) datatypes.Passage {
	return datatypes.Passage{Kind: kind, FilePath: "ref.go", Content: content}
}

func TestBuildGenerationRequest(t *testing.T) {
	t.Run("caps full references at 2 and chunks at 8", func(t *testing.T) {
		var passages []datatypes.Passage
		for i := 0; i < 4; i++ {
			passages = append(passages, passage(datatypes.PassageFullReference, fmt.Sprintf("FULL_%d", i)))
		}
		for i := 0; i < 12; i++ {
			passages = append(passages, passage(datatypes.PassageChunk, fmt.Sprintf("CHUNK_%d", i)))
		}

		req := BuildGenerationRequest("make a deployment controller", passages)

		assert.Contains(t, req.UserPrompt, "FULL_0")
		assert.Contains(t, req.UserPrompt, "FULL_1")
		assert.NotContains(t, req.UserPrompt, "FULL_2")
		assert.Contains(t, req.UserPrompt, "CHUNK_7")
		assert.NotContains(t, req.UserPrompt, "CHUNK_8")
	})

	t.Run("no passages still yields a usable prompt", func(t *testing.T) {
		req := BuildGenerationRequest("make a pod lister", nil)

		assert.NotContains(t, req.UserPrompt, "REFERENCE CODE:")
		assert.Contains(t, req.UserPrompt, "TASK:\nmake a pod lister")
		assert.Contains(t, req.SystemPrompt, "Go code generator")
	})

	t.Run("defaults applied", func(t *testing.T) {
		req := BuildGenerationRequest("q", nil)
		assert.Equal(t, "q", req.Query)
		assert.Equal(t, DefaultMaxTokens, req.MaxTokens)
		assert.InDelta(t, DefaultTemperature, req.Temperature, 1e-6)
		assert.InDelta(t, DefaultTopP, req.TopP, 1e-6)
	})

	t.Run("unknown passage kinds skipped", func(t *testing.T) {
		req := BuildGenerationRequest("q", []datatypes.Passage{
			{Kind: "mystery", Content: "SHOULD_NOT_APPEAR"},
		})
		assert.NotContains(t, req.UserPrompt, "SHOULD_NOT_APPEAR")
	})
}

func TestBuildRepairRequest(t *testing.T) {
	t.Run("lists issues and source", func(t *testing.T) {
		req := BuildRepairRequest("q", "package main", []string{"a.go:1:1: bad"})

		assert.Contains(t, req.UserPrompt, "- a.go:1:1: bad")
		assert.Contains(t, req.UserPrompt, "SOURCE CODE TO FIX:")
		assert.Contains(t, req.UserPrompt, "package main")
		assert.InDelta(t, RefinementTemperature, req.Temperature, 1e-6)
	})

	t.Run("caps issues at 10", func(t *testing.T) {
		issues := make([]string, 15)
		for i := range issues {
			issues[i] = fmt.Sprintf("a.go:%d:1: issue number %d", i, i)
		}
		req := BuildRepairRequest("q", "src", issues)

		assert.Contains(t, req.UserPrompt, "issue number 9")
		assert.NotContains(t, req.UserPrompt, "issue number 10")
		assert.Equal(t, 10, strings.Count(req.UserPrompt, "\n- "))
	})
}
