package model

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"

	"rag/config"
	"rag/types"
)

const ollamaTimeout = 30 * time.Second

func init() {
	register(config.ProviderOllama, newOllamaEmbedder)
}

// OllamaEmbedder produces embeddings through a locally running Ollama server.
type OllamaEmbedder struct {
	apiURL string
	model  string
	client *http.Client
}

type ollamaEmbeddingRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type ollamaEmbeddingResponse struct {
	Embedding []float64 `json:"embedding"`
}

func newOllamaEmbedder(cfg *config.EmbeddingConfig) Embedder {
	return &OllamaEmbedder{
		apiURL: cfg.OllamaURL,
		model:  cfg.OllamaModel,
		client: &http.Client{Timeout: ollamaTimeout},
	}
}

func (e *OllamaEmbedder) Name() string  { return config.ProviderOllama }
func (e *OllamaEmbedder) Model() string { return e.model }

func (e *OllamaEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	body, err := json.Marshal(ollamaEmbeddingRequest{Model: e.model, Prompt: text})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, ollamaTimeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.apiURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v, make sure Ollama is running", types.ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%w: ollama status %d, body: %s",
			types.ErrProviderUnavailable, resp.StatusCode, string(respBody))
	}

	var ollamaResp ollamaEmbeddingResponse
	if err := json.NewDecoder(resp.Body).Decode(&ollamaResp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	if len(ollamaResp.Embedding) == 0 {
		return nil, fmt.Errorf("%w: ollama returned an empty embedding", types.ErrProviderUnavailable)
	}

	return normalize(ollamaResp.Embedding), nil
}

// normalize scales the vector to unit length and narrows it to float32.
// Cosine ranking is unaffected; this only keeps stored magnitudes uniform.
func normalize(vec []float64) []float32 {
	var sum float64
	for _, v := range vec {
		sum += v * v
	}
	norm := math.Sqrt(sum)
	if norm == 0 {
		norm = 1
	}

	out := make([]float32, len(vec))
	for i, v := range vec {
		out[i] = float32(v / norm)
	}
	return out
}
