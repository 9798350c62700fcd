// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package handlers implements the HTTP surface of the Forge service.
// Handlers are constructor closures over an explicit Deps value; no
// package-level state beyond the handlers themselves.
package handlers

import (
	"context"
	"sync"

	"github.com/AleutianAI/AleutianForge/services/forge/datatypes"
	"github.com/AleutianAI/AleutianForge/services/forge/engine"
	"github.com/AleutianAI/AleutianForge/services/forge/observability"
	"github.com/AleutianAI/AleutianForge/services/llm"
)

// Dispatcher fans a generation request out to all backends.
type Dispatcher interface {
	DispatchAll(ctx context.Context, req datatypes.GenerationRequest) ([]datatypes.CandidateResult, error)
}

// Refiner iteratively repairs a candidate on its own backend.
type Refiner interface {
	Refine(ctx context.Context, backend llm.Backend, candidate datatypes.CandidateResult, query string) datatypes.RefinementSession
}

// Indexer rebuilds the reference index from a directory, returning
// file and passage counts.
type Indexer interface {
	Build(ctx context.Context, dir string) (int, int, error)
}

// StoreStatus reports index store health for the status endpoint.
type StoreStatus interface {
	Host() string
	Ready(ctx context.Context) bool
}

// Deps carries everything the handlers need. Built once in main and
// passed by reference.
type Deps struct {
	Dispatcher Dispatcher
	Refiner    Refiner
	Retriever  engine.ContextRetriever
	Indexer    Indexer
	Backends   []llm.Backend
	Store      StoreStatus
	Metrics    *observability.ForgeMetrics
	State      *IndexState
}

// backendByName resolves a candidate's backend for refinement.
func (d *Deps) backendByName(name string) llm.Backend {
	for _, b := range d.Backends {
		if b.Name() == name {
			return b
		}
	}
	return nil
}

// IndexState tracks whether an index has been built this process and
// how big it is. Safe for concurrent use.
type IndexState struct {
	mu        sync.RWMutex
	built     bool
	files     int
	passages  int
	sourceDir string
}

// Set records a completed index build.
func (s *IndexState) Set(dir string, files, passages int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.built = true
	s.sourceDir = dir
	s.files = files
	s.passages = passages
}

// Built reports whether an index exists.
func (s *IndexState) Built() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.built
}

// Snapshot returns the current state values.
func (s *IndexState) Snapshot() (built bool, dir string, files, passages int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.built, s.sourceDir, s.files, s.passages
}
