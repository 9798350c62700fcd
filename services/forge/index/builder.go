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
	"time"
)

// Builder rebuilds the reference index from a source directory.
type Builder struct {
	store *Store
}

// NewBuilder wires a builder to its store.
func NewBuilder(store *Store) *Builder {
	return &Builder{store: store}
}

// Build parses the directory, resets the passage class, and inserts
// everything. Returns the number of files parsed and passages stored.
func (b *Builder) Build(ctx context.Context, dir string) (int, int, error) {
	start := time.Now()

	passages, files, err := ParseDirectory(ctx, dir)
	if err != nil {
		return 0, 0, err
	}
	if len(passages) == 0 {
		return 0, 0, fmt.Errorf("no reference material found in %s", dir)
	}

	if err := b.store.Reset(ctx); err != nil {
		return 0, 0, fmt.Errorf("reset index: %w", err)
	}
	if err := b.store.InsertPassages(ctx, passages); err != nil {
		return 0, 0, fmt.Errorf("store passages: %w", err)
	}

	slog.Info("reference index built",
		"dir", dir,
		"files", files,
		"passages", len(passages),
		"elapsed", time.Since(start))
	return files, len(passages), nil
}
