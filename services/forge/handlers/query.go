// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/AleutianAI/AleutianForge/services/forge/datatypes"
	"github.com/AleutianAI/AleutianForge/services/forge/engine"
)

// retrievalChunkLimit is how many declaration chunks are fetched per
// query; prompt assembly enforces its own caps on top.
const retrievalChunkLimit = 8

// HandleQuery serves POST /v1/query: retrieve context, fan out to all
// backends, rank, refine the winner when it has issues, and return the
// best artifact with full provenance.
func HandleQuery(deps *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req datatypes.QueryRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			deps.Metrics.RequestsTotal.WithLabelValues("query", "error").Inc()
			c.JSON(http.StatusBadRequest, datatypes.ErrorResponse{Error: "invalid request body: " + err.Error()})
			return
		}
		if !deps.State.Built() {
			deps.Metrics.RequestsTotal.WithLabelValues("query", "error").Inc()
			c.JSON(http.StatusBadRequest, datatypes.ErrorResponse{Error: "index not built; POST /v1/index first"})
			return
		}

		requestID := uuid.NewString()
		log := slog.With("request_id", requestID, "query_len", len(req.Query))

		ranked, status, errMsg := generateRanked(c, deps, req.Query, log)
		if errMsg != "" {
			deps.Metrics.RequestsTotal.WithLabelValues("query", "error").Inc()
			c.JSON(status, datatypes.ErrorResponse{Error: errMsg})
			return
		}

		best := ranked[0]
		artifact := best.Artifact
		report := best.Validation

		var session *datatypes.RefinementSession
		if best.Validation.HasIssues && !best.Generation.Failed {
			if backend := deps.backendByName(best.Generation.Backend); backend != nil {
				s := deps.Refiner.Refine(c.Request.Context(), backend, best, req.Query)
				session = &s
				artifact = s.FinalArtifact
				report = s.FinalReport
				deps.Metrics.RefinementOutcomesTotal.WithLabelValues(string(s.Outcome)).Inc()
				deps.Metrics.RefinementIterations.Observe(float64(len(s.Iterations)))
			} else {
				log.Warn("refinement skipped, backend not found", "backend", best.Generation.Backend)
			}
		}

		log.Info("query served",
			"backend", best.Generation.Backend,
			"quality", report.QualityScore,
			"refined", session != nil)

		deps.Metrics.RequestsTotal.WithLabelValues("query", "success").Inc()
		c.JSON(http.StatusOK, datatypes.QueryResponse{
			RequestID:  requestID,
			Artifact:   artifact,
			Backend:    best.Generation.Backend,
			Validation: report,
			Refinement: session,
			Candidates: summarize(ranked, false),
		})
	}
}

// HandleCompare serves POST /v1/query/compare: the full ranked
// candidate set with artifacts, no refinement.
func HandleCompare(deps *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req datatypes.QueryRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			deps.Metrics.RequestsTotal.WithLabelValues("compare", "error").Inc()
			c.JSON(http.StatusBadRequest, datatypes.ErrorResponse{Error: "invalid request body: " + err.Error()})
			return
		}
		if !deps.State.Built() {
			deps.Metrics.RequestsTotal.WithLabelValues("compare", "error").Inc()
			c.JSON(http.StatusBadRequest, datatypes.ErrorResponse{Error: "index not built; POST /v1/index first"})
			return
		}

		requestID := uuid.NewString()
		log := slog.With("request_id", requestID, "query_len", len(req.Query))

		ranked, status, errMsg := generateRanked(c, deps, req.Query, log)
		if errMsg != "" {
			deps.Metrics.RequestsTotal.WithLabelValues("compare", "error").Inc()
			c.JSON(status, datatypes.ErrorResponse{Error: errMsg})
			return
		}

		deps.Metrics.RequestsTotal.WithLabelValues("compare", "success").Inc()
		c.JSON(http.StatusOK, datatypes.CompareResponse{
			RequestID:  requestID,
			Candidates: summarize(ranked, true),
		})
	}
}

// generateRanked runs retrieval, dispatch, and ranking. Returns the
// ranked candidates, or an HTTP status and message on failure.
func generateRanked(c *gin.Context, deps *Deps, query string, log *slog.Logger) ([]datatypes.CandidateResult, int, string) {
	ctx := c.Request.Context()

	passages, err := deps.Retriever.Retrieve(ctx, query, retrievalChunkLimit)
	if err != nil {
		// Retrieval failure degrades to generation without examples.
		log.Warn("context retrieval failed", "error", err)
		passages = nil
	}

	genReq := engine.BuildGenerationRequest(query, passages)

	results, err := deps.Dispatcher.DispatchAll(ctx, genReq)
	if err != nil {
		switch {
		case errors.Is(err, engine.ErrNoCandidates):
			log.Error("all backends failed")
			return nil, http.StatusBadGateway, err.Error()
		case errors.Is(err, engine.ErrNoBackends), errors.Is(err, engine.ErrEmptyQuery):
			return nil, http.StatusBadRequest, err.Error()
		default:
			log.Error("dispatch failed", "error", err)
			return nil, http.StatusInternalServerError, err.Error()
		}
	}

	for _, r := range results {
		deps.Metrics.GenerationDurationSeconds.WithLabelValues(r.Generation.Backend).Observe(r.Elapsed.Seconds())
		if r.Generation.Failed {
			deps.Metrics.BackendFailuresTotal.WithLabelValues(r.Generation.Backend).Inc()
			continue
		}
		deps.Metrics.CandidateQuality.WithLabelValues(r.Generation.Backend).Observe(r.Validation.QualityScore)
	}

	return engine.Rank(results), 0, ""
}

// summarize flattens candidates for the response. Artifacts are
// included only when asked for; the query response already carries
// the winning artifact at top level.
func summarize(ranked []datatypes.CandidateResult, withArtifacts bool) []datatypes.CandidateSummary {
	out := make([]datatypes.CandidateSummary, 0, len(ranked))
	for _, r := range ranked {
		s := datatypes.CandidateSummary{
			Backend:       r.Generation.Backend,
			CombinedScore: r.CombinedScore,
			ElapsedMS:     r.Elapsed.Milliseconds(),
			Validation:    r.Validation,
			Generation:    r.Generation,
		}
		if withArtifacts {
			s.Artifact = r.Artifact
		}
		out = append(out, s)
	}
	return out
}
