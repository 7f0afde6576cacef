//go:build !nogoogle

package model

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/genai"

	"rag/config"
	"rag/types"
)

const googleAvailable = true

const googleTimeout = 30 * time.Second

func init() {
	register(config.ProviderGoogle, newGoogleEmbedder)
}

// GoogleEmbedder produces embeddings through the Gemini API. Switching to the
// google provider is allowed without a key; the missing key surfaces on the
// first Embed call instead.
type GoogleEmbedder struct {
	apiKey string
	model  string
}

func newGoogleEmbedder(cfg *config.EmbeddingConfig) Embedder {
	return &GoogleEmbedder{
		apiKey: cfg.GoogleAPIKey,
		model:  cfg.GoogleModel,
	}
}

func (e *GoogleEmbedder) Name() string  { return config.ProviderGoogle }
func (e *GoogleEmbedder) Model() string { return e.model }

func (e *GoogleEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if e.apiKey == "" {
		return nil, fmt.Errorf("%w: set a google API key first", types.ErrAuthenticationMissing)
	}

	ctx, cancel := context.WithTimeout(ctx, googleTimeout)
	defer cancel()

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  e.apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: google client: %v", types.ErrProviderUnavailable, err)
	}

	contents := []*genai.Content{genai.NewContentFromText(text, genai.RoleUser)}
	result, err := client.Models.EmbedContent(ctx, e.model, contents, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: google embedding: %v", types.ErrProviderUnavailable, err)
	}
	if result == nil || len(result.Embeddings) == 0 || len(result.Embeddings[0].Values) == 0 {
		return nil, fmt.Errorf("%w: google returned no embedding", types.ErrProviderUnavailable)
	}

	return result.Embeddings[0].Values, nil
}
