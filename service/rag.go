// Package service wires the chunker, the embedding providers and the vector
// store into the ingestion and retrieval pipeline.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/pkoukk/tiktoken-go"

	"rag/chunker"
	"rag/config"
	"rag/model"
	"rag/store"
	"rag/types"
)

// DefaultSearchLimit is used when a search request carries no limit.
const DefaultSearchLimit = 3

// RAG executes the core pipeline against whatever provider and backend the
// runtime config names at the moment an operation starts. Later switches do
// not affect operations already in flight.
type RAG struct {
	cfg    *config.Runtime
	stores *store.Manager
	logger *slog.Logger

	// embedderFor is swapped in tests for a deterministic provider.
	embedderFor func(*config.EmbeddingConfig) (model.Embedder, error)
}

func New(cfg *config.Runtime, stores *store.Manager) *RAG {
	return &RAG{
		cfg:         cfg,
		stores:      stores,
		logger:      slog.Default(),
		embedderFor: model.New,
	}
}

// IngestDocument chunks content, embeds every chunk and appends the result
// under title. Chunks are embedded and stored strictly in chunker order so
// the stored chunk_index values form 0..N-1. A failure partway through leaves
// the chunks stored so far in place; nothing is rolled back.
func (r *RAG) IngestDocument(ctx context.Context, title, content string) (*types.IngestResult, error) {
	chunks, err := chunker.Split(content, chunker.DefaultChunkSize, chunker.DefaultOverlap)
	if err != nil {
		return nil, err
	}
	if len(chunks) == 0 {
		return nil, types.ErrEmptyDocument
	}

	embedder, err := r.embedderFor(r.cfg.Embedding())
	if err != nil {
		return nil, err
	}
	st := r.stores.Current()

	ids := make([]int64, 0, len(chunks))
	for i, chunk := range chunks {
		embedding, err := embedder.Embed(ctx, chunk)
		if err != nil {
			return nil, fmt.Errorf("embedding chunk %d of %q: %w", i, title, err)
		}
		id, err := st.AddChunk(ctx, title, chunk, i, embedding)
		if err != nil {
			return nil, fmt.Errorf("storing chunk %d of %q: %w", i, title, err)
		}
		ids = append(ids, id)
	}

	r.logger.Info("document ingested",
		"title", title, "chunks", len(chunks), "provider", embedder.Name())

	return &types.IngestResult{
		Title:    title,
		Chunks:   len(chunks),
		IDs:      ids,
		Tokens:   countTokens(content),
		Provider: embedder.Name(),
	}, nil
}

// Search embeds the query with the active provider and returns the limit
// most similar chunks. limit <= 0 yields no results; a zero limit from the
// transport layer is replaced by DefaultSearchLimit there, not here.
func (r *RAG) Search(ctx context.Context, query string, limit int) ([]types.Chunk, string, error) {
	embedder, err := r.embedderFor(r.cfg.Embedding())
	if err != nil {
		return nil, "", err
	}

	embedding, err := embedder.Embed(ctx, query)
	if err != nil {
		return nil, "", err
	}

	chunks, err := r.stores.Current().Search(ctx, embedding, limit)
	if err != nil {
		return nil, "", err
	}
	return chunks, embedder.Name(), nil
}

// Embed returns the raw embedding of text under the active provider.
func (r *RAG) Embed(ctx context.Context, text string) ([]float32, string, error) {
	embedder, err := r.embedderFor(r.cfg.Embedding())
	if err != nil {
		return nil, "", err
	}
	embedding, err := embedder.Embed(ctx, text)
	if err != nil {
		return nil, "", err
	}
	return embedding, embedder.Name(), nil
}

var (
	encodingOnce sync.Once
	encoding     *tiktoken.Tiktoken
)

// countTokens reports the cl100k_base token count of text. Loading the BPE
// ranks can fail offline; token counts are informational, so 0 is returned
// instead of failing the ingestion.
func countTokens(text string) int {
	encodingOnce.Do(func() {
		enc, err := tiktoken.GetEncoding(tiktoken.MODEL_CL100K_BASE)
		if err != nil {
			slog.Default().Warn("token encoding unavailable", "error", err)
			return
		}
		encoding = enc
	})
	if encoding == nil {
		return 0
	}
	return len(encoding.Encode(text, nil, nil))
}
