package summarize

import (
	"context"
	"errors"
	"strings"
	"testing"

	"smart-search-be/pkg/llm"
	"smart-search-be/pkg/llm/llmtest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isMerge(prompt string) bool {
	return strings.HasPrefix(prompt, "You previously summarized")
}

func TestSummarizer_ChunksAndMerges(t *testing.T) {
	fake := &llmtest.Fake{Respond: func(_ context.Context, p string, _ llm.Options) (string, error) {
		if isMerge(p) {
			return "final summary", nil
		}
		return "part", nil
	}}
	s := NewSummarizer(fake)

	text := strings.Repeat("x", 13000)
	out, err := s.Summarize(context.Background(), text, Options{MaxWords: 250, Title: "topic"})

	require.NoError(t, err)
	assert.Equal(t, "final summary", out)

	calls := fake.Calls()
	// 13000 chars with 6000/400 windows => 3 chunks + 1 merge
	require.Len(t, calls, 4)
	assert.Equal(t, 800, calls[0].Options.MaxTokens)
	assert.Equal(t, 600, calls[3].Options.MaxTokens)
	assert.Contains(t, calls[3].Prompt, "~250 words")
	assert.Contains(t, calls[3].Prompt, "Title/Topic to anchor: topic")
}

func TestSummarizer_EmptyMergeFallsBackToParts(t *testing.T) {
	fake := &llmtest.Fake{Respond: func(_ context.Context, p string, _ llm.Options) (string, error) {
		if isMerge(p) {
			return "   ", nil
		}
		return "part", nil
	}}

	out, err := NewSummarizer(fake).Summarize(context.Background(), strings.Repeat("y", 7000), Options{})
	require.NoError(t, err)
	assert.Equal(t, "part\n\npart", out)
}

func TestSummarizer_NoParts(t *testing.T) {
	out, err := NewSummarizer(llmtest.Static("", nil)).Summarize(context.Background(), "short", Options{})
	require.NoError(t, err)
	assert.Equal(t, NoSummary, out)
}

func TestSummarizer_ProviderError(t *testing.T) {
	_, err := NewSummarizer(llmtest.Static("", errors.New("boom"))).Summarize(context.Background(), "text", Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}

func TestOptionsNormalized(t *testing.T) {
	assert.Equal(t, DefaultMaxWords, Options{}.normalized().MaxWords)
	assert.Equal(t, MinWords, Options{MaxWords: 10}.normalized().MaxWords)
	assert.Equal(t, MaxWords, Options{MaxWords: 5000}.normalized().MaxWords)
	assert.Equal(t, "balanced", Options{}.normalized().Style)
}
