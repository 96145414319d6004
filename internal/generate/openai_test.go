package generate

import (
	"fmt"
	"testing"

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
	assert.InDelta(t, DefaultTemperature, client.temperature, 1e-9)
	assert.Equal(t, DefaultTimeout, client.timeout)
}

func TestNewClientExplicitZeroTemperature(t *testing.T) {
	zero := 0.0
	client, err := NewClient(Config{APIKey: "test-key", Temperature: &zero})
	require.NoError(t, err)
	assert.Zero(t, client.temperature, "explicit zero must not fall back to the default")
}

func TestNewClientNegativeTemperature(t *testing.T) {
	negative := -0.5
	_, err := NewClient(Config{APIKey: "test-key", Temperature: &negative})
	assert.ErrorIs(t, err, domain.ErrConfiguration)
}

func TestToParamsPreservesOrder(t *testing.T) {
	messages := []domain.Message{
		{Role: domain.RoleSystem, Content: "instructions"},
		{Role: domain.RoleUser, Content: "how do i log images?"},
		{Role: domain.RoleAssistant, Content: "use the log call."},
		{Role: domain.RoleUser, Content: "what about videos?"},
	}
	params := toParams(messages)
	require.Len(t, params, 4)
	assert.NotNil(t, params[0].OfSystem)
	assert.NotNil(t, params[1].OfUser)
	assert.NotNil(t, params[2].OfAssistant)
	assert.NotNil(t, params[3].OfUser)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"unauthorized", &openai.Error{StatusCode: 401}, domain.KindAuth},
		{"rate limited", &openai.Error{StatusCode: 429}, domain.KindRateLimit},
		{"context length", &openai.Error{StatusCode: 400, Code: "context_length_exceeded"}, domain.KindContextLength},
		{"plain error", fmt.Errorf("boom"), domain.KindUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, classify(tt.err))
		})
	}
}
