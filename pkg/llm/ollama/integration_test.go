package ollama

import (
	"context"
	"os"
	"testing"
	"time"

	"smart-search-be/pkg/llm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Runs against a local Ollama: OLLAMA_INTEGRATION=1 OLLAMA_MODEL=gemma:2b go test ./pkg/llm/ollama
func TestOllamaProvider_Live(t *testing.T) {
	if os.Getenv("OLLAMA_INTEGRATION") != "1" {
		t.Skip("Skipping integration test: OLLAMA_INTEGRATION not set")
	}
	baseURL := os.Getenv("OLLAMA_BASE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	model := os.Getenv("OLLAMA_MODEL")
	if model == "" {
		model = "gemma:2b"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	p := NewOllamaProvider(baseURL, model)
	out, err := p.Chat(ctx, []llm.Message{
		{Role: "system", Content: "Reply with a single short web search query and nothing else."},
		{Role: "user", Content: "latest go release notes"},
	}, llm.WithTemperature(0), llm.WithMaxTokens(32))
	require.NoError(t, err)
	assert.NotEmpty(t, out)
	t.Logf("model replied: %q", out)
}
