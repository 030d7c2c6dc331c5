package summarize

import (
	"context"
	"fmt"
	"strings"

	"smart-search-be/pkg/llm"
	"smart-search-be/pkg/prompt"
	"smart-search-be/pkg/utils"
)

const (
	ChunkSize    = 6000
	ChunkOverlap = 400

	DefaultMaxWords = 200
	MinWords        = 50
	MaxWords        = 1200

	NoSummary = "No summary could be generated."

	chunkMaxTokens = 800
	mergeMaxTokens = 600
	temperature    = 0.2
)

type Options struct {
	MaxWords       int
	Language       string // "vi", "en" or "" for auto
	Style          string // "concise" | "balanced" | "detailed"
	IncludeBullets bool
	Title          string
}

// Summarizer runs a map/merge summarization over arbitrarily long text.
type Summarizer struct {
	provider llm.LLMProvider
}

func NewSummarizer(provider llm.LLMProvider) *Summarizer {
	return &Summarizer{provider: provider}
}

func (o Options) normalized() Options {
	switch {
	case o.MaxWords == 0:
		o.MaxWords = DefaultMaxWords
	case o.MaxWords < MinWords:
		o.MaxWords = MinWords
	case o.MaxWords > MaxWords:
		o.MaxWords = MaxWords
	}
	if o.Style == "" {
		o.Style = "balanced"
	}
	return o
}

// Summarize splits text into overlapping windows, summarizes each and merges
// the partial results. When the merge step yields nothing the partials are
// returned joined by blank lines. A failing provider call aborts the run.
func (s *Summarizer) Summarize(ctx context.Context, text string, opts Options) (string, error) {
	opts = opts.normalized()

	var parts []string
	for i, chunk := range utils.SplitText(text, ChunkSize, ChunkOverlap) {
		out, err := s.provider.Generate(ctx,
			prompt.ChunkSummary(chunk, opts.Language, opts.Style, opts.IncludeBullets),
			llm.WithTemperature(temperature),
			llm.WithMaxTokens(chunkMaxTokens),
		)
		if err != nil {
			return "", fmt.Errorf("summarize chunk %d: %w", i, err)
		}
		if out = strings.TrimSpace(out); out != "" {
			parts = append(parts, out)
		}
	}

	if len(parts) == 0 {
		return NoSummary, nil
	}

	merged, err := s.provider.Generate(ctx,
		prompt.MergeSummaries(parts, opts.Language, opts.MaxWords, opts.Title, opts.IncludeBullets),
		llm.WithTemperature(temperature),
		llm.WithMaxTokens(mergeMaxTokens),
	)
	if err != nil {
		return "", fmt.Errorf("merge summaries: %w", err)
	}
	if merged = strings.TrimSpace(merged); merged != "" {
		return merged, nil
	}
	return strings.Join(parts, "\n\n"), nil
}
