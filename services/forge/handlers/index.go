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
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/AleutianAI/AleutianForge/services/forge/datatypes"
	"github.com/AleutianAI/AleutianForge/services/llm"
)

// HandleIndex serves POST /v1/index: rebuild the reference index from
// a directory on the server's filesystem.
func HandleIndex(deps *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req datatypes.IndexRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			deps.Metrics.RequestsTotal.WithLabelValues("index", "error").Inc()
			c.JSON(http.StatusBadRequest, datatypes.ErrorResponse{Error: "invalid request body: " + err.Error()})
			return
		}

		files, passages, err := deps.Indexer.Build(c.Request.Context(), req.Directory)
		if err != nil {
			slog.Error("index build failed", "directory", req.Directory, "error", err)
			deps.Metrics.RequestsTotal.WithLabelValues("index", "error").Inc()
			c.JSON(http.StatusBadRequest, datatypes.ErrorResponse{Error: err.Error()})
			return
		}

		deps.State.Set(req.Directory, files, passages)
		deps.Metrics.IndexedPassages.Set(float64(passages))
		deps.Metrics.RequestsTotal.WithLabelValues("index", "success").Inc()

		c.JSON(http.StatusOK, datatypes.IndexResponse{
			Status:   "indexed",
			Files:    files,
			Passages: passages,
		})
	}
}

// HandleStatus serves GET /v1/status: index state, backend roster,
// and store health.
func HandleStatus(deps *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		built, dir, files, passages := deps.State.Snapshot()

		resp := datatypes.StatusResponse{
			IndexBuilt:   built,
			IndexedFiles: files,
			Passages:     passages,
			SourceDir:    dir,
			Backends:     backendNames(deps.Backends),
		}
		if deps.Store != nil {
			resp.WeaviateHost = deps.Store.Host()
			resp.WeaviateReady = deps.Store.Ready(c.Request.Context())
		}

		deps.Metrics.RequestsTotal.WithLabelValues("status", "success").Inc()
		c.JSON(http.StatusOK, resp)
	}
}

// HandleHealth serves GET /health.
func HandleHealth() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}

func backendNames(backends []llm.Backend) []string {
	names := make([]string, 0, len(backends))
	for _, b := range backends {
		names = append(names, b.Name())
	}
	return names
}
