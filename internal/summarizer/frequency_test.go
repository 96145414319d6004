package summarizer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarizeShortTextPassesThrough(t *testing.T) {
	s := NewFrequencySummarizer()
	out, err := s.Summarize("Logging works. Metrics too.", 3)
	require.NoError(t, err)
	assert.Equal(t, "Logging works. Metrics too.", out)
}

func TestSummarizePicksFrequentSentencesInOrder(t *testing.T) {
	s := NewFrequencySummarizer()
	text := "Experiments track metrics over time. " +
		"Cats sleep. " +
		"Metrics and experiments need tracking. " +
		"Tracking experiments produces metrics dashboards. " +
		"Dogs bark."

	out, err := s.Summarize(text, 2)
	require.NoError(t, err)

	sentences := strings.Split(out, ". ")
	require.Len(t, sentences, 2)
	assert.Contains(t, out, "metrics")
	assert.NotContains(t, out, "Cats")
	assert.True(t, strings.Index(text, sentences[0]) < strings.Index(text, strings.TrimSuffix(sentences[1], ".")),
		"summary keeps original sentence order")
}

func TestSummarizeEmptyText(t *testing.T) {
	s := NewFrequencySummarizer()
	out, err := s.Summarize("   ", 3)
	require.NoError(t, err)
	assert.Empty(t, out)
}
