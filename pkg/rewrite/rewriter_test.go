package rewrite

import (
	"context"
	"errors"
	"testing"

	"smart-search-be/pkg/llm/llmtest"
	"smart-search-be/pkg/preference"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRewriter_Rewrite(t *testing.T) {
	fake := llmtest.Static("  llm safety survey site:arxiv.org \n", nil)
	r := NewRewriter(fake)

	out, err := r.Rewrite(context.Background(), "latest research on LLM safety", preference.Preferences{PreferAcademic: true})

	require.NoError(t, err)
	assert.Equal(t, "llm safety survey site:arxiv.org", out)

	calls := fake.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, float64(0), calls[0].Options.Temperature)
	assert.Equal(t, 64, calls[0].Options.MaxTokens)
	assert.Contains(t, calls[0].Prompt, "latest research on LLM safety")
}

func TestRewriter_ProviderError(t *testing.T) {
	r := NewRewriter(llmtest.Static("", errors.New("quota exceeded")))

	_, err := r.Rewrite(context.Background(), "q", preference.Preferences{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota exceeded")
}
