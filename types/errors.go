package types

import "errors"

// Error kinds surfaced by the core. Handlers match them with errors.Is to pick
// a status code; everything else is an internal failure.
var (
	// ErrInvalidProvider means a settings update named a provider that does
	// not exist at all.
	ErrInvalidProvider = errors.New("invalid provider")

	// ErrCapabilityMissing means the named provider exists but its
	// implementation is not compiled into this binary.
	ErrCapabilityMissing = errors.New("provider not available in this build")

	// ErrAuthenticationMissing means a cloud provider was used without a
	// configured API key.
	ErrAuthenticationMissing = errors.New("API key not configured")

	// ErrProviderUnavailable wraps transient failures reaching an embedding
	// backend: connection refused, timeout, non-2xx, quota.
	ErrProviderUnavailable = errors.New("embedding provider unavailable")

	// ErrStorageUnavailable wraps transient failures reaching the vector store.
	ErrStorageUnavailable = errors.New("vector store unavailable")

	// ErrDimensionMismatch means an embedding's width is inconsistent with
	// what an operation requires.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrNotFound means a delete targeted a title with no stored chunks.
	ErrNotFound = errors.New("document not found")

	// ErrInvalidChunking means the chunker was configured so the scan could
	// not advance (overlap >= chunk size, or a non-positive size).
	ErrInvalidChunking = errors.New("invalid chunking configuration")

	// ErrEmptyDocument means chunking produced nothing to ingest.
	ErrEmptyDocument = errors.New("document is empty or too short")

	// ErrUnsupportedFormat means an uploaded file has no extractor.
	ErrUnsupportedFormat = errors.New("unsupported file type, use PDF, DOCX or PPTX")

	// ErrExtractionFailed means a recognised file yielded no text.
	ErrExtractionFailed = errors.New("could not extract text from file")
)
