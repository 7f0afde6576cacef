// Package config owns the process-wide embedding and storage configuration.
// Both are immutable snapshots behind atomic pointers: readers take the
// current snapshot at the start of an operation, updates build a fresh struct
// and swap it in. An in-flight operation keeps the snapshot it started with.
package config

import (
	"fmt"
	"os"
	"sync/atomic"

	"rag/types"
)

const (
	ProviderOllama = "ollama"
	ProviderGoogle = "google"

	StoragePostgres = "postgres"
	StorageSQLite   = "sqlite"
)

const (
	defaultOllamaURL   = "http://localhost:11434/api/embeddings"
	defaultOllamaModel = "nomic-embed-text"
	defaultGoogleModel = "text-embedding-004"
	defaultSQLitePath  = "rag.db"
)

// EmbeddingConfig selects the active embedding provider.
type EmbeddingConfig struct {
	Provider     string
	GoogleAPIKey string
	OllamaURL    string
	OllamaModel  string
	GoogleModel  string
}

// StorageConfig selects the active vector store backend.
type StorageConfig struct {
	Provider    string
	PostgresDSN string
	SQLitePath  string
}

// Runtime holds the current configuration. Zero value is not usable; build it
// with Load.
type Runtime struct {
	embedding atomic.Pointer[EmbeddingConfig]
	storage   atomic.Pointer[StorageConfig]
}

// Load builds a Runtime from environment variables, falling back to the
// ollama provider and the sqlite backend when nothing is set.
func Load() *Runtime {
	emb := &EmbeddingConfig{
		Provider:     envOr("EMBEDDING_PROVIDER", ProviderOllama),
		GoogleAPIKey: os.Getenv("GOOGLE_API_KEY"),
		OllamaURL:    envOr("OLLAMA_EMBEDDING_URL", defaultOllamaURL),
		OllamaModel:  envOr("OLLAMA_EMBEDDING_MODEL", defaultOllamaModel),
		GoogleModel:  envOr("GOOGLE_EMBEDDING_MODEL", defaultGoogleModel),
	}

	stor := &StorageConfig{
		Provider:    envOr("STORAGE_PROVIDER", StorageSQLite),
		PostgresDSN: postgresDSNFromEnv(),
		SQLitePath:  envOr("SQLITE_PATH", defaultSQLitePath),
	}

	r := &Runtime{}
	r.embedding.Store(emb)
	r.storage.Store(stor)
	return r
}

// Embedding returns the current embedding snapshot.
func (r *Runtime) Embedding() *EmbeddingConfig {
	return r.embedding.Load()
}

// Storage returns the current storage snapshot.
func (r *Runtime) Storage() *StorageConfig {
	return r.storage.Load()
}

// SetEmbedding swaps in a new embedding configuration. The provider name must
// be a known variant; a nil apiKey leaves the stored key untouched.
func (r *Runtime) SetEmbedding(provider string, apiKey *string) (*EmbeddingConfig, error) {
	if provider != ProviderOllama && provider != ProviderGoogle {
		return nil, fmt.Errorf("%w: %q, use %q or %q",
			types.ErrInvalidProvider, provider, ProviderOllama, ProviderGoogle)
	}

	cur := r.embedding.Load()
	next := *cur
	next.Provider = provider
	if apiKey != nil {
		next.GoogleAPIKey = *apiKey
	}
	r.embedding.Store(&next)
	return &next, nil
}

// MergedStorage validates a storage update and merges it over the current
// snapshot without committing it. Empty connection params keep their previous
// values so a provider flip alone is enough to switch back to an already
// configured backend. The caller commits the candidate with CommitStorage
// once the new backend has been opened.
func (r *Runtime) MergedStorage(provider, postgresDSN, sqlitePath string) (*StorageConfig, error) {
	if provider != StoragePostgres && provider != StorageSQLite {
		return nil, fmt.Errorf("%w: %q, use %q or %q",
			types.ErrInvalidProvider, provider, StoragePostgres, StorageSQLite)
	}

	cur := r.storage.Load()
	next := *cur
	next.Provider = provider
	if postgresDSN != "" {
		next.PostgresDSN = postgresDSN
	}
	if sqlitePath != "" {
		next.SQLitePath = sqlitePath
	}
	return &next, nil
}

// CommitStorage swaps in a candidate produced by MergedStorage.
func (r *Runtime) CommitStorage(cfg *StorageConfig) {
	r.storage.Store(cfg)
}

// postgresDSNFromEnv prefers POSTGRES_DSN and otherwise composes the DSN from
// the individual PG_* variables.
func postgresDSNFromEnv() string {
	if dsn := os.Getenv("POSTGRES_DSN"); dsn != "" {
		return dsn
	}
	host := os.Getenv("PG_HOST")
	if host == "" {
		return ""
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		host, envOr("PG_PORT", "5432"), os.Getenv("PG_USER"), os.Getenv("PG_PASS"), os.Getenv("PG_DB_NAME"))
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
