// Package model implements the embedding providers. Providers register
// themselves by name; which names are present depends on build tags, so
// selecting a provider that was not compiled in is a typed error instead of a
// silent fallback.
package model

import (
	"context"
	"fmt"
	"sort"

	"rag/config"
	"rag/types"
)

// Embedder converts text into a fixed-length vector.
type Embedder interface {
	Name() string
	Model() string
	Embed(ctx context.Context, text string) ([]float32, error)
}

type factory func(cfg *config.EmbeddingConfig) Embedder

var registry = map[string]factory{}

func register(name string, f factory) {
	registry[name] = f
}

// New resolves the provider named in cfg. The snapshot is captured here, so a
// later config switch does not affect the returned embedder.
func New(cfg *config.EmbeddingConfig) (Embedder, error) {
	f, ok := registry[cfg.Provider]
	if !ok {
		if cfg.Provider == config.ProviderOllama || cfg.Provider == config.ProviderGoogle {
			return nil, fmt.Errorf("%w: %s", types.ErrCapabilityMissing, cfg.Provider)
		}
		return nil, fmt.Errorf("%w: %q", types.ErrInvalidProvider, cfg.Provider)
	}
	return f(cfg), nil
}

// Registered reports whether a provider implementation is compiled in.
func Registered(name string) bool {
	_, ok := registry[name]
	return ok
}

// Providers lists the compiled-in provider names.
func Providers() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GoogleAvailable reports whether the google provider is part of this build.
func GoogleAvailable() bool {
	return googleAvailable
}
