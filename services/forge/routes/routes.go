// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package routes wires the HTTP surface of the Forge service.
package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/AleutianAI/AleutianForge/services/forge/handlers"
)

// SetupRoutes registers every endpoint on the router.
func SetupRoutes(router *gin.Engine, deps *handlers.Deps) {
	router.GET("/health", handlers.HandleHealth())
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/v1")
	{
		v1.POST("/index", handlers.HandleIndex(deps))
		v1.GET("/status", handlers.HandleStatus(deps))
		v1.POST("/query", handlers.HandleQuery(deps))
		v1.POST("/query/compare", handlers.HandleCompare(deps))
	}
}
