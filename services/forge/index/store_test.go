// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package index

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/weaviate/weaviate/entities/models"

	"github.com/AleutianAI/AleutianForge/services/forge/datatypes"
)

func TestNewStore(t *testing.T) {
	t.Run("requires host", func(t *testing.T) {
		_, err := NewStore("", "http")
		assert.Error(t, err)
	})

	t.Run("defaults scheme to http", func(t *testing.T) {
		s, err := NewStore("localhost:8080", "")
		require.NoError(t, err)
		assert.Equal(t, "localhost:8080", s.Host())
	})
}

func TestParsePassages(t *testing.T) {
	t.Run("unpacks rows", func(t *testing.T) {
		resp := &models.GraphQLResponse{
			Data: map[string]models.JSONObject{
				"Get": map[string]interface{}{
					ClassName: []interface{}{
						map[string]interface{}{
							"kind":     "chunk",
							"filePath": "pkg/a.go",
							"symbol":   "Add",
							"content":  "func Add() {}",
						},
						map[string]interface{}{
							"kind":     "full_reference",
							"filePath": "pkg/a.go",
							"content":  "package a",
						},
					},
				},
			},
		}

		passages, err := parsePassages(resp)
		require.NoError(t, err)
		require.Len(t, passages, 2)
		assert.Equal(t, datatypes.PassageChunk, passages[0].Kind)
		assert.Equal(t, "Add", passages[0].Symbol)
		assert.Equal(t, datatypes.PassageFullReference, passages[1].Kind)
		assert.Empty(t, passages[1].Symbol)
	})

	t.Run("missing class yields empty", func(t *testing.T) {
		resp := &models.GraphQLResponse{
			Data: map[string]models.JSONObject{
				"Get": map[string]interface{}{},
			},
		}
		passages, err := parsePassages(resp)
		require.NoError(t, err)
		assert.Empty(t, passages)
	})

	t.Run("malformed response errors", func(t *testing.T) {
		resp := &models.GraphQLResponse{Data: map[string]models.JSONObject{"Get": "nope"}}
		_, err := parsePassages(resp)
		assert.Error(t, err)
	})
}
