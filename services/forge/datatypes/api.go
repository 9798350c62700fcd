// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package datatypes

// IndexRequest asks the service to (re)build the reference index from
// a directory of source files.
type IndexRequest struct {
	Directory string `json:"directory" binding:"required"`
}

// IndexResponse reports the result of an index build.
type IndexResponse struct {
	Status   string `json:"status"`
	Files    int    `json:"files"`
	Passages int    `json:"passages"`
}

// QueryRequest asks for code generation against the current index.
type QueryRequest struct {
	Query string `json:"query" binding:"required"`
}

// CandidateSummary is the per-backend view returned by the compare
// endpoint and embedded in query responses.
type CandidateSummary struct {
	Backend       string             `json:"backend"`
	Artifact      string             `json:"artifact,omitempty"`
	CombinedScore float64            `json:"combined_score"`
	ElapsedMS     int64              `json:"elapsed_ms"`
	Validation    ValidationReport   `json:"validation"`
	Generation    GenerationMetadata `json:"generation"`
}

// QueryResponse is the answer to /v1/query: the winning artifact plus
// the provenance of how it was selected and repaired.
type QueryResponse struct {
	RequestID  string             `json:"request_id"`
	Artifact   string             `json:"artifact"`
	Backend    string             `json:"backend"`
	Validation ValidationReport   `json:"validation"`
	Refinement *RefinementSession `json:"refinement,omitempty"`
	Candidates []CandidateSummary `json:"candidates"`
}

// CompareResponse is the answer to /v1/query/compare: every backend's
// candidate, ranked, no refinement applied.
type CompareResponse struct {
	RequestID  string             `json:"request_id"`
	Candidates []CandidateSummary `json:"candidates"`
}

// StatusResponse describes the current index and backend roster.
type StatusResponse struct {
	IndexBuilt    bool     `json:"index_built"`
	IndexedFiles  int      `json:"indexed_files"`
	Passages      int      `json:"passages"`
	SourceDir     string   `json:"source_dir,omitempty"`
	Backends      []string `json:"backends"`
	WeaviateHost  string   `json:"weaviate_host,omitempty"`
	WeaviateReady bool     `json:"weaviate_ready"`
}

// ErrorResponse is the uniform error body.
type ErrorResponse struct {
	Error string `json:"error"`
}
