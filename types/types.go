package types

// Chunk is the atomic stored unit: a contiguous segment of a document's text
// together with its embedding. Documents have no record of their own; a title
// exists as long as at least one chunk carries it.
type Chunk struct {
	ID         int64     `json:"id"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	Index      int       `json:"chunk_index"`
	Embedding  []float32 `json:"-"`
	Similarity float64   `json:"similarity,omitempty"`
}

// IngestResult reports what a single document upload produced.
type IngestResult struct {
	Title    string  `json:"title"`
	Chunks   int     `json:"chunks"`
	IDs      []int64 `json:"ids"`
	Tokens   int     `json:"tokens,omitempty"`
	Provider string  `json:"embedding_provider"`
}

// ExtractResult is the outcome of text extraction from an uploaded file.
// Units counts pages, paragraphs or slides depending on Type.
type ExtractResult struct {
	Content string `json:"content"`
	Units   int    `json:"units"`
	Type    string `json:"type"`
}

// TestResult reports a storage connectivity probe.
type TestResult struct {
	Success bool   `json:"success"`
	Detail  string `json:"detail"`
}

type EmbeddingSettings struct {
	Provider           string   `json:"provider"`
	GoogleConfigured   bool     `json:"google_configured"`
	GoogleAvailable    bool     `json:"google_available"`
	AvailableProviders []string `json:"available_providers"`
	OllamaModel        string   `json:"ollama_model"`
	GoogleModel        string   `json:"google_model"`
}

type StorageSettings struct {
	Provider       string      `json:"provider"`
	PostgresDSN    string      `json:"postgres_dsn,omitempty"`
	SQLitePath     string      `json:"sqlite_path,omitempty"`
	ConnectionTest *TestResult `json:"connection_test,omitempty"`
}
