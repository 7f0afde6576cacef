// Package store persists chunks and answers similarity queries. Two backends
// implement the same contract: postgres with the pgvector extension and a
// pure-Go sqlite file with a brute-force scan.
package store

import (
	"context"

	"rag/types"
)

// VectorStorer is the storage contract the pipeline depends on. Similarity is
// cosine for both backends; Search returns chunks in descending similarity
// with ties broken by lowest id, and silently skips rows whose embedding
// width differs from the query's.
type VectorStorer interface {
	// Init creates the schema required by the backend. Safe to call twice.
	Init(ctx context.Context) error
	// Ping verifies connectivity without touching data.
	Ping(ctx context.Context) error
	// AddChunk appends a chunk and returns its freshly assigned id. Nothing
	// is deduplicated; re-ingesting a title appends more chunks.
	AddChunk(ctx context.Context, title, content string, index int, embedding []float32) (int64, error)
	// ListChunks returns every stored chunk without embeddings.
	ListChunks(ctx context.Context) ([]types.Chunk, error)
	// DeleteDocument removes all chunks with exactly this title and returns
	// how many were removed.
	DeleteDocument(ctx context.Context, title string) (int64, error)
	// Search returns the limit most similar chunks. limit <= 0 means none.
	Search(ctx context.Context, embedding []float32, limit int) ([]types.Chunk, error)
	// Count returns the total number of stored chunks.
	Count(ctx context.Context) (int64, error)
	Close() error
}
