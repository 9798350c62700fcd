// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package llm

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"golang.org/x/time/rate"
	"gopkg.in/yaml.v3"
)

// maxEnvBackends bounds the numbered FORGE_BACKEND_n_* scan.
const maxEnvBackends = 5

// BackendConfig describes one backend slot. Slots come either from a
// YAML file or from numbered environment variables.
type BackendConfig struct {
	Name              string      `yaml:"name"`
	Kind              BackendKind `yaml:"kind"`
	Model             string      `yaml:"model"`
	Endpoint          string      `yaml:"endpoint"`
	APIKey            string      `yaml:"api_key"`
	Deployment        string      `yaml:"deployment"`
	APIVersion        string      `yaml:"api_version"`
	RequestsPerSecond float64     `yaml:"requests_per_second"`
}

// Registry holds the configured backends. It is immutable after
// construction; callers receive it by reference and never modify it.
type Registry struct {
	backends []Backend
	names    []string
}

// NewRegistry builds every configured backend. A slot that fails to
// build aborts the whole load so misconfiguration is caught at
// startup, not at first request.
func NewRegistry(configs []BackendConfig) (*Registry, error) {
	backends := make([]Backend, 0, len(configs))
	names := make([]string, 0, len(configs))

	for i, cfg := range configs {
		b, err := buildBackend(cfg)
		if err != nil {
			return nil, fmt.Errorf("backend slot %d: %w", i+1, err)
		}
		if cfg.RequestsPerSecond > 0 {
			b = newRateLimitedBackend(b, cfg.RequestsPerSecond)
		}
		backends = append(backends, b)
		names = append(names, b.Name())
	}

	return &Registry{backends: backends, names: names}, nil
}

// Backends returns the configured backends in slot order.
func (r *Registry) Backends() []Backend {
	out := make([]Backend, len(r.backends))
	copy(out, r.backends)
	return out
}

// Names returns the backend names in slot order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

// Len reports the number of configured backends.
func (r *Registry) Len() int { return len(r.backends) }

func buildBackend(cfg BackendConfig) (Backend, error) {
	switch cfg.Kind {
	case KindChat, "":
		return NewChatCompletionBackend(cfg.Name, cfg.Model, cfg.Endpoint, cfg.APIKey)
	case KindDirect:
		return NewDirectCompletionBackend(cfg.Name, cfg.Endpoint, cfg.Deployment, cfg.APIKey, cfg.APIVersion)
	default:
		return nil, fmt.Errorf("unknown backend kind %q", cfg.Kind)
	}
}

// LoadConfigsFromYAML reads backend slots from a YAML file with a
// top-level "backends" list.
func LoadConfigsFromYAML(path string) ([]BackendConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read backend config: %w", err)
	}

	var doc struct {
		Backends []BackendConfig `yaml:"backends"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse backend config %s: %w", path, err)
	}
	return doc.Backends, nil
}

// LoadConfigsFromEnv scans FORGE_BACKEND_1_* through FORGE_BACKEND_5_*
// for backend slots. A slot exists when its _NAME variable is set;
// gaps in the numbering are skipped with a warning.
//
// Recognized suffixes: NAME, KIND, MODEL, ENDPOINT, API_KEY,
// DEPLOYMENT, API_VERSION, RPS.
func LoadConfigsFromEnv() []BackendConfig {
	var configs []BackendConfig

	for i := 1; i <= maxEnvBackends; i++ {
		prefix := fmt.Sprintf("FORGE_BACKEND_%d_", i)
		name := os.Getenv(prefix + "NAME")
		if name == "" {
			continue
		}

		cfg := BackendConfig{
			Name:       name,
			Kind:       BackendKind(strings.ToLower(os.Getenv(prefix + "KIND"))),
			Model:      os.Getenv(prefix + "MODEL"),
			Endpoint:   os.Getenv(prefix + "ENDPOINT"),
			APIKey:     os.Getenv(prefix + "API_KEY"),
			Deployment: os.Getenv(prefix + "DEPLOYMENT"),
			APIVersion: os.Getenv(prefix + "API_VERSION"),
		}
		if raw := os.Getenv(prefix + "RPS"); raw != "" {
			rps, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				slog.Warn("ignoring invalid backend rate limit",
					"slot", i, "value", raw, "error", err)
			} else {
				cfg.RequestsPerSecond = rps
			}
		}
		configs = append(configs, cfg)
	}

	return configs
}

// rateLimitedBackend wraps a backend with a token-bucket limiter so
// continuation bursts do not trip upstream rate limits.
type rateLimitedBackend struct {
	inner   Backend
	limiter *rate.Limiter
}

func newRateLimitedBackend(inner Backend, rps float64) Backend {
	return &rateLimitedBackend{
		inner:   inner,
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
	}
}

func (b *rateLimitedBackend) Name() string      { return b.inner.Name() }
func (b *rateLimitedBackend) Kind() BackendKind { return b.inner.Kind() }

func (b *rateLimitedBackend) Complete(ctx context.Context, req CompletionRequest) (*CompletionResult, error) {
	if err := b.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait for %q: %w", b.inner.Name(), err)
	}
	return b.inner.Complete(ctx, req)
}
