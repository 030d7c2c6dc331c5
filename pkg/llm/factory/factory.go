package factory

import (
	"context"
	"fmt"

	"smart-search-be/pkg/llm"
	"smart-search-be/pkg/llm/claude"
	"smart-search-be/pkg/llm/gemini"
	"smart-search-be/pkg/llm/huggingface"
	"smart-search-be/pkg/llm/ollama"
)

type Config struct {
	Provider       string // "gemini" | "claude" | "ollama" | "huggingface"
	Model          string
	OllamaBaseURL  string
	GeminiAPIKey   string
	AnthropicKey   string
	HuggingFaceKey string
}

func NewLLMProvider(ctx context.Context, cfg Config) (llm.LLMProvider, error) {
	switch cfg.Provider {
	case "gemini", "":
		return gemini.NewGeminiProvider(ctx, cfg.GeminiAPIKey, cfg.Model)
	case "claude", "anthropic":
		return claude.NewClaudeProvider(cfg.AnthropicKey, cfg.Model)
	case "ollama":
		baseURL := cfg.OllamaBaseURL
		if baseURL == "" {
			baseURL = "http://localhost:11434" // Default
		}
		return ollama.NewOllamaProvider(baseURL, cfg.Model), nil
	case "huggingface":
		return huggingface.NewHuggingFaceProvider(cfg.HuggingFaceKey, "", cfg.Model), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Provider)
	}
}
