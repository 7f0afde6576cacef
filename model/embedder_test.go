package model

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rag/config"
	"rag/types"
)

func TestNewUnknownProvider(t *testing.T) {
	_, err := New(&config.EmbeddingConfig{Provider: "tfidf"})
	assert.ErrorIs(t, err, types.ErrInvalidProvider)
}

func TestProvidersRegistered(t *testing.T) {
	assert.True(t, Registered(config.ProviderOllama))
	assert.Contains(t, Providers(), config.ProviderOllama)
}

func TestGoogleEmbedWithoutKey(t *testing.T) {
	if !GoogleAvailable() {
		t.Skip("google provider not compiled in")
	}

	// Selecting google without a key is allowed; the missing key surfaces
	// on the embed call.
	e, err := New(&config.EmbeddingConfig{
		Provider:    config.ProviderGoogle,
		GoogleModel: "text-embedding-004",
	})
	require.NoError(t, err)

	_, err = e.Embed(context.Background(), "hello")
	assert.ErrorIs(t, err, types.ErrAuthenticationMissing)
}
