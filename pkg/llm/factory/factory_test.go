package factory

import (
	"context"
	"testing"

	"smart-search-be/pkg/llm/claude"
	"smart-search-be/pkg/llm/ollama"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLLMProvider(t *testing.T) {
	ctx := context.Background()

	p, err := NewLLMProvider(ctx, Config{Provider: "ollama", Model: "llama3"})
	require.NoError(t, err)
	o, ok := p.(*ollama.OllamaProvider)
	require.True(t, ok)
	assert.Equal(t, "http://localhost:11434", o.BaseURL)

	p, err = NewLLMProvider(ctx, Config{Provider: "claude", AnthropicKey: "sk-test"})
	require.NoError(t, err)
	assert.IsType(t, &claude.ClaudeProvider{}, p)

	_, err = NewLLMProvider(ctx, Config{Provider: "gemini"})
	assert.Error(t, err, "missing api key must fail")

	_, err = NewLLMProvider(ctx, Config{Provider: "gpt-nope"})
	assert.EqualError(t, err, "unsupported LLM provider: gpt-nope")
}
