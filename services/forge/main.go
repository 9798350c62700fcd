// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"

	"github.com/AleutianAI/AleutianForge/pkg/logging"
	"github.com/AleutianAI/AleutianForge/services/forge/engine"
	"github.com/AleutianAI/AleutianForge/services/forge/handlers"
	"github.com/AleutianAI/AleutianForge/services/forge/index"
	"github.com/AleutianAI/AleutianForge/services/forge/observability"
	"github.com/AleutianAI/AleutianForge/services/forge/routes"
	"github.com/AleutianAI/AleutianForge/services/forge/validation"
	"github.com/AleutianAI/AleutianForge/services/llm"
)

func initTracer() (func(context.Context), error) {
	ctx := context.Background()

	otelEndpoint := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
	if otelEndpoint == "" {
		otelEndpoint = "aleutian-otel-collector:4317"
	}
	conn, err := grpc.NewClient(otelEndpoint,
		grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, err
	}
	traceExporter, err := otlptracegrpc.New(ctx, otlptracegrpc.WithGRPCConn(conn))
	if err != nil {
		return nil, err
	}
	res, err := resource.New(ctx,
		resource.WithAttributes(semconv.ServiceNameKey.String("forge-service")))
	if err != nil {
		return nil, err
	}
	bsp := sdktrace.NewBatchSpanProcessor(traceExporter)
	traceProvider := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		sdktrace.WithResource(res),
		sdktrace.WithSpanProcessor(bsp))
	otel.SetTracerProvider(traceProvider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.
		TraceContext{}, propagation.Baggage{}))

	return func(ctx context.Context) {
		ctx, cancel := context.WithTimeout(ctx, time.Second*5)
		defer cancel()
		if err := traceExporter.Shutdown(ctx); err != nil {
			slog.Error("failed to shutdown OTLP exporter", "error", err)
		}
	}, nil
}

func envInt(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		slog.Warn("invalid integer env var, using default", "key", key, "value", raw, "default", fallback)
		return fallback
	}
	return v
}

func loadBackendConfigs() []llm.BackendConfig {
	if path := os.Getenv("FORGE_BACKENDS_FILE"); path != "" {
		configs, err := llm.LoadConfigsFromYAML(path)
		if err != nil {
			log.Fatalf("failed to load backend config file: %v", err)
		}
		return configs
	}
	return llm.LoadConfigsFromEnv()
}

func main() {
	port := os.Getenv("FORGE_PORT")
	if port == "" {
		port = "12240"
	}

	if err := logging.Setup(logging.Config{Service: "forge", JSON: true}); err != nil {
		log.Fatalf("failed to set up logging: %v", err)
	}

	cleanup, err := initTracer()
	if err != nil {
		log.Fatalf("failed to setup the OTLP tracer: %v", err)
	}
	defer cleanup(context.Background())

	metrics := observability.InitMetrics()

	configs := loadBackendConfigs()
	if len(configs) == 0 {
		log.Fatalf("no generation backends configured: set FORGE_BACKEND_1_* or FORGE_BACKENDS_FILE")
	}
	registry, err := llm.NewRegistry(configs)
	if err != nil {
		log.Fatalf("failed to build backend registry: %v", err)
	}
	slog.Info("backends configured", "backends", registry.Names())

	weaviateHost := strings.Trim(os.Getenv("WEAVIATE_HOST"), "\"' ")
	if weaviateHost == "" {
		weaviateHost = "localhost:8080"
		slog.Warn("WEAVIATE_HOST not set, defaulting", "host", weaviateHost)
	}
	store, err := index.NewStore(weaviateHost, os.Getenv("WEAVIATE_SCHEME"))
	if err != nil {
		log.Fatalf("failed to create weaviate client: %v", err)
	}
	if err := store.EnsureSchema(context.Background()); err != nil {
		slog.Warn("could not ensure weaviate schema at startup", "error", err)
	}

	validator := validation.NewAdapter(validation.Config{
		ToolPath: os.Getenv("FORGE_LINT_TOOL"),
	})

	generator := engine.NewGenerator(envInt("FORGE_MAX_CONTINUATIONS", engine.DefaultContinuationBudget))
	dispatcher := engine.NewDispatcher(registry.Backends(), generator, validator)
	refiner := engine.NewRefiner(envInt("FORGE_MAX_REFINEMENT_ITERATIONS", engine.DefaultRefinementBudget), generator, validator)

	deps := &handlers.Deps{
		Dispatcher: dispatcher,
		Refiner:    refiner,
		Retriever:  store,
		Indexer:    index.NewBuilder(store),
		Backends:   registry.Backends(),
		Store:      store,
		Metrics:    metrics,
		State:      &handlers.IndexState{},
	}

	router := gin.Default()
	router.Use(otelgin.Middleware("forge-service"))
	routes.SetupRoutes(router, deps)

	slog.Info("starting the forge server", "port", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
