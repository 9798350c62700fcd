// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package observability provides Prometheus metrics for the Forge
// service: request counters, per-backend generation latency, candidate
// quality, and refinement behavior.
//
// Metrics are exposed via the /metrics endpoint. All operations are
// thread-safe via Prometheus's internal locking.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Namespace for all metrics
const metricsNamespace = "aleutian"

// Subsystem for forge metrics
const forgeSubsystem = "forge"

// ForgeMetrics holds all Prometheus metrics for the generation
// pipeline. Initialize once at startup via InitMetrics().
type ForgeMetrics struct {
	// RequestsTotal counts HTTP requests by endpoint and status.
	// Labels: endpoint (index, query, compare, status), status (success, error)
	RequestsTotal *prometheus.CounterVec

	// GenerationDurationSeconds measures per-backend generation time.
	// Labels: backend
	GenerationDurationSeconds *prometheus.HistogramVec

	// CandidateQuality observes the quality score of each validated
	// candidate. Labels: backend
	CandidateQuality *prometheus.HistogramVec

	// BackendFailuresTotal counts backends that produced no artifact.
	// Labels: backend
	BackendFailuresTotal *prometheus.CounterVec

	// RefinementIterations observes how many repair iterations each
	// refinement session used.
	RefinementIterations prometheus.Histogram

	// RefinementOutcomesTotal counts refinement sessions by outcome.
	// Labels: outcome (converged, no_improvement, budget_exhausted,
	// partial_improvement, skipped)
	RefinementOutcomesTotal *prometheus.CounterVec

	// IndexedPassages tracks the size of the current reference index.
	IndexedPassages prometheus.Gauge
}

// DefaultMetrics is the singleton instance of ForgeMetrics.
// Initialized by InitMetrics().
var DefaultMetrics *ForgeMetrics

// InitMetrics creates and registers all Prometheus metrics. Call once
// at startup; a second call panics on duplicate registration.
func InitMetrics() *ForgeMetrics {
	DefaultMetrics = &ForgeMetrics{
		RequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: forgeSubsystem,
				Name:      "requests_total",
				Help:      "Total HTTP requests by endpoint and status",
			},
			[]string{"endpoint", "status"},
		),

		GenerationDurationSeconds: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Subsystem: forgeSubsystem,
				Name:      "generation_duration_seconds",
				Help:      "Per-backend artifact generation time in seconds",
				Buckets:   []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120},
			},
			[]string{"backend"},
		),

		CandidateQuality: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Subsystem: forgeSubsystem,
				Name:      "candidate_quality",
				Help:      "Quality score of validated candidates",
				Buckets:   []float64{0.0, 0.25, 0.5, 0.75, 0.9, 1.0},
			},
			[]string{"backend"},
		),

		BackendFailuresTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: forgeSubsystem,
				Name:      "backend_failures_total",
				Help:      "Backends that produced no artifact for a request",
			},
			[]string{"backend"},
		),

		RefinementIterations: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Subsystem: forgeSubsystem,
				Name:      "refinement_iterations",
				Help:      "Repair iterations used per refinement session",
				Buckets:   []float64{0, 1, 2, 3},
			},
		),

		RefinementOutcomesTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: forgeSubsystem,
				Name:      "refinement_outcomes_total",
				Help:      "Refinement sessions by terminal outcome",
			},
			[]string{"outcome"},
		),

		IndexedPassages: promauto.NewGauge(
			prometheus.GaugeOpts{
				Namespace: metricsNamespace,
				Subsystem: forgeSubsystem,
				Name:      "indexed_passages",
				Help:      "Passages in the current reference index",
			},
		),
	}
	return DefaultMetrics
}
