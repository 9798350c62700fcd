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
	"context"
	"fmt"
	"log/slog"

	"github.com/weaviate/weaviate-go-client/v5/weaviate"
	"github.com/weaviate/weaviate-go-client/v5/weaviate/filters"
	"github.com/weaviate/weaviate-go-client/v5/weaviate/graphql"
	"github.com/weaviate/weaviate/entities/models"

	"github.com/AleutianAI/AleutianForge/services/forge/datatypes"
)

// ClassName is the Weaviate class holding reference passages.
const ClassName = "ReferencePassage"

// Retrieval caps per query: full files carry more tokens, so fewer of
// them are fetched.
const (
	fullReferenceLimit = 2
	insertBatchSize    = 50
)

// Store persists passages in Weaviate and retrieves them by BM25.
// Vectorizer is "none": retrieval is keyword-based, no embedding
// pipeline required.
type Store struct {
	client *weaviate.Client
	host   string
}

// NewStore connects to a Weaviate instance.
func NewStore(host, scheme string) (*Store, error) {
	if host == "" {
		return nil, fmt.Errorf("weaviate host is required")
	}
	if scheme == "" {
		scheme = "http"
	}
	client, err := weaviate.NewClient(weaviate.Config{Host: host, Scheme: scheme})
	if err != nil {
		return nil, fmt.Errorf("create weaviate client: %w", err)
	}
	return &Store{client: client, host: host}, nil
}

// Host returns the configured Weaviate host.
func (s *Store) Host() string { return s.host }

// Ready reports whether Weaviate answers its readiness check.
func (s *Store) Ready(ctx context.Context) bool {
	ready, err := s.client.Misc().ReadyChecker().Do(ctx)
	if err != nil {
		slog.Warn("weaviate readiness check failed", "host", s.host, "error", err)
		return false
	}
	return ready
}

// EnsureSchema creates the passage class if it does not exist.
// Idempotent.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.client.Schema().ClassGetter().WithClassName(ClassName).Do(ctx); err == nil {
		return nil
	}

	class := &models.Class{
		Class:       ClassName,
		Description: "One unit of reference code: a complete file or a single top-level declaration",
		Vectorizer:  "none",
		Properties: []*models.Property{
			{Name: "kind", DataType: []string{"text"}},
			{Name: "filePath", DataType: []string{"text"}},
			{Name: "symbol", DataType: []string{"text"}},
			{Name: "content", DataType: []string{"text"}},
		},
	}
	if err := s.client.Schema().ClassCreator().WithClass(class).Do(ctx); err != nil {
		return fmt.Errorf("create class %s: %w", ClassName, err)
	}
	slog.Info("weaviate class created", "class", ClassName)
	return nil
}

// Reset drops and recreates the passage class. Used when rebuilding
// the index from a new reference directory.
func (s *Store) Reset(ctx context.Context) error {
	if _, err := s.client.Schema().ClassGetter().WithClassName(ClassName).Do(ctx); err == nil {
		if err := s.client.Schema().ClassDeleter().WithClassName(ClassName).Do(ctx); err != nil {
			return fmt.Errorf("delete class %s: %w", ClassName, err)
		}
	}
	return s.EnsureSchema(ctx)
}

// InsertPassages writes passages in batches.
func (s *Store) InsertPassages(ctx context.Context, passages []datatypes.Passage) error {
	for start := 0; start < len(passages); start += insertBatchSize {
		end := start + insertBatchSize
		if end > len(passages) {
			end = len(passages)
		}

		objects := make([]*models.Object, 0, end-start)
		for _, p := range passages[start:end] {
			objects = append(objects, &models.Object{
				Class: ClassName,
				Properties: map[string]interface{}{
					"kind":     string(p.Kind),
					"filePath": p.FilePath,
					"symbol":   p.Symbol,
					"content":  p.Content,
				},
			})
		}

		resp, err := s.client.Batch().ObjectsBatcher().WithObjects(objects...).Do(ctx)
		if err != nil {
			return fmt.Errorf("batch insert passages: %w", err)
		}
		for _, obj := range resp {
			if obj.Result != nil && obj.Result.Errors != nil && len(obj.Result.Errors.Error) > 0 {
				return fmt.Errorf("batch insert passages: %s", obj.Result.Errors.Error[0].Message)
			}
		}
	}
	return nil
}

// Retrieve runs BM25 retrieval for a query: up to 2 complete files
// followed by up to limit declaration chunks.
func (s *Store) Retrieve(ctx context.Context, query string, limit int) ([]datatypes.Passage, error) {
	if limit <= 0 {
		limit = 8
	}

	fullRefs, err := s.retrieveKind(ctx, query, datatypes.PassageFullReference, fullReferenceLimit)
	if err != nil {
		return nil, err
	}
	chunks, err := s.retrieveKind(ctx, query, datatypes.PassageChunk, limit)
	if err != nil {
		return nil, err
	}
	return append(fullRefs, chunks...), nil
}

func (s *Store) retrieveKind(ctx context.Context, query string, kind datatypes.PassageKind, limit int) ([]datatypes.Passage, error) {
	where := filters.Where().
		WithPath([]string{"kind"}).
		WithOperator(filters.Equal).
		WithValueText(string(kind))

	result, err := s.client.GraphQL().Get().
		WithClassName(ClassName).
		WithFields(
			graphql.Field{Name: "kind"},
			graphql.Field{Name: "filePath"},
			graphql.Field{Name: "symbol"},
			graphql.Field{Name: "content"},
		).
		WithBM25(s.client.GraphQL().Bm25ArgBuilder().WithQuery(query)).
		WithWhere(where).
		WithLimit(limit).
		Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("bm25 query: %w", err)
	}
	if len(result.Errors) > 0 {
		return nil, fmt.Errorf("bm25 query: %s", result.Errors[0].Message)
	}

	return parsePassages(result)
}

// parsePassages unpacks a GraphQL Get response into passages.
func parsePassages(result *models.GraphQLResponse) ([]datatypes.Passage, error) {
	get, ok := result.Data["Get"].(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("unexpected graphql response shape")
	}
	rows, ok := get[ClassName].([]interface{})
	if !ok {
		return nil, nil
	}

	passages := make([]datatypes.Passage, 0, len(rows))
	for _, row := range rows {
		props, ok := row.(map[string]interface{})
		if !ok {
			continue
		}
		passages = append(passages, datatypes.Passage{
			Kind:     datatypes.PassageKind(stringProp(props, "kind")),
			FilePath: stringProp(props, "filePath"),
			Symbol:   stringProp(props, "symbol"),
			Content:  stringProp(props, "content"),
		})
	}
	return passages, nil
}

func stringProp(props map[string]interface{}, key string) string {
	if v, ok := props[key].(string); ok {
		return v
	}
	return ""
}
