package rewrite

import (
	"context"
	"fmt"
	"strings"

	"smart-search-be/pkg/llm"
	"smart-search-be/pkg/preference"
	"smart-search-be/pkg/prompt"
)

const maxOutputTokens = 64

// Rewriter turns a natural-language question into a keyword search query.
type Rewriter struct {
	provider llm.LLMProvider
}

func NewRewriter(provider llm.LLMProvider) *Rewriter {
	return &Rewriter{provider: provider}
}

// Rewrite returns the trimmed rewritten query. An empty string is a valid
// result and means the caller should search with the original query.
func (r *Rewriter) Rewrite(ctx context.Context, query string, prefs preference.Preferences) (string, error) {
	out, err := r.provider.Generate(ctx, prompt.Rewrite(query, prefs),
		llm.WithTemperature(0),
		llm.WithMaxTokens(maxOutputTokens),
	)
	if err != nil {
		return "", fmt.Errorf("rewrite query: %w", err)
	}
	return strings.TrimSpace(out), nil
}
