package openai

import (
	"fmt"
	"testing"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docsqa/internal/domain"
)

func TestNewClientRequiresAPIKey(t *testing.T) {
	_, err := NewClient(Config{})
	assert.ErrorIs(t, err, domain.ErrConfiguration)
}

func TestNewClientDefaults(t *testing.T) {
	client, err := NewClient(Config{APIKey: "test-key"})
	require.NoError(t, err)

	assert.Equal(t, DefaultModel, client.model)
	assert.Equal(t, DefaultDimension, client.Dimension())
	assert.Equal(t, DefaultTimeout, client.timeout)
	assert.Equal(t, DefaultBatchSize, client.batchSize)
}

func TestNewClientOverrides(t *testing.T) {
	client, err := NewClient(Config{
		APIKey:    "test-key",
		Model:     "text-embedding-3-large",
		Dimension: 256,
		Timeout:   5 * time.Second,
		BatchSize: 16,
	})
	require.NoError(t, err)

	assert.Equal(t, "text-embedding-3-large", client.model)
	assert.Equal(t, 256, client.Dimension())
	assert.Equal(t, 16, client.batchSize)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"unauthorized", &openai.Error{StatusCode: 401}, domain.KindAuth},
		{"forbidden", &openai.Error{StatusCode: 403}, domain.KindAuth},
		{"rate limited", &openai.Error{StatusCode: 429}, domain.KindRateLimit},
		{"context length", &openai.Error{StatusCode: 400, Code: "context_length_exceeded"}, domain.KindContextLength},
		{"server error", &openai.Error{StatusCode: 500}, domain.KindUnavailable},
		{"plain error", fmt.Errorf("connection refused"), domain.KindUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, classify(tt.err))
		})
	}
}

func TestProviderErrorMatchesSentinel(t *testing.T) {
	err := &domain.ProviderError{Service: domain.ServiceEmbedding, Kind: domain.KindRateLimit, Err: fmt.Errorf("429")}
	assert.ErrorIs(t, err, domain.ErrEmbeddingProvider)
	assert.NotErrorIs(t, err, domain.ErrGenerationProvider)
}
