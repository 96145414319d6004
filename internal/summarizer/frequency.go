// Package summarizer produces a short extractive summary of the ingested
// corpus, shown to the operator after an ingestion run.
package summarizer

import (
	"regexp"
	"sort"
	"strings"

	"docsqa/internal/domain"
)

var (
	sentencePattern = regexp.MustCompile(`(?m)(?U)([^.!?]+[.!?])`)
	tokenPattern    = regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*`)
)

// FrequencySummarizer ranks sentences by stopword-filtered token frequency
// and returns the best ones in their original order.
type FrequencySummarizer struct {
	stopwords map[string]struct{}
}

// NewFrequencySummarizer creates a frequency-based sentence ranker.
func NewFrequencySummarizer() *FrequencySummarizer {
	return &FrequencySummarizer{stopwords: defaultStopwords()}
}

// Summarize returns up to maxSentences sentences from text.
func (s *FrequencySummarizer) Summarize(text string, maxSentences int) (string, error) {
	if maxSentences <= 0 {
		maxSentences = 3
	}
	sentences := sentencePattern.FindAllString(text, -1)
	if len(sentences) == 0 {
		return strings.TrimSpace(text), nil
	}
	if len(sentences) <= maxSentences {
		return joinTrimmed(sentences), nil
	}

	freq := map[string]float64{}
	for _, sent := range sentences {
		for _, tok := range s.tokens(sent) {
			freq[tok]++
		}
	}

	type ranked struct {
		index int
		score float64
	}
	scores := make([]ranked, len(sentences))
	for i, sent := range sentences {
		toks := s.tokens(sent)
		var sum float64
		for _, tok := range toks {
			sum += freq[tok]
		}
		if len(toks) > 0 {
			sum /= float64(len(toks))
		}
		scores[i] = ranked{index: i, score: sum}
	}
	sort.SliceStable(scores, func(i, j int) bool { return scores[i].score > scores[j].score })

	picked := scores[:maxSentences]
	sort.Slice(picked, func(i, j int) bool { return picked[i].index < picked[j].index })

	out := make([]string, len(picked))
	for i, p := range picked {
		out[i] = sentences[p.index]
	}
	return joinTrimmed(out), nil
}

func (s *FrequencySummarizer) tokens(text string) []string {
	raw := tokenPattern.FindAllString(strings.ToLower(text), -1)
	toks := raw[:0]
	for _, tok := range raw {
		if _, skip := s.stopwords[tok]; skip {
			continue
		}
		toks = append(toks, tok)
	}
	return toks
}

func joinTrimmed(sentences []string) string {
	parts := make([]string, len(sentences))
	for i, sent := range sentences {
		parts[i] = strings.TrimSpace(sent)
	}
	return strings.Join(parts, " ")
}

func defaultStopwords() map[string]struct{} {
	words := []string{
		"a", "an", "and", "are", "as", "at", "be", "by", "can", "for",
		"from", "has", "have", "if", "in", "is", "it", "its", "of", "on",
		"or", "that", "the", "this", "to", "was", "will", "with", "you",
		"your",
	}
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

var _ domain.Summarizer = (*FrequencySummarizer)(nil)
