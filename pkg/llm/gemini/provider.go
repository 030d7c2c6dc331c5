package gemini

import (
	"context"
	"fmt"
	"strings"

	"smart-search-be/pkg/llm"

	"google.golang.org/genai"
)

const DefaultModel = "gemini-2.5-pro"

type GeminiProvider struct {
	client    *genai.Client
	modelName string
}

var _ llm.LLMProvider = &GeminiProvider{}

func NewGeminiProvider(ctx context.Context, apiKey, modelName string) (*GeminiProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	if modelName == "" {
		modelName = DefaultModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	return &GeminiProvider{client: client, modelName: modelName}, nil
}

func toContents(history []llm.Message) ([]*genai.Content, string) {
	contents := make([]*genai.Content, 0, len(history))
	var system string
	for _, msg := range history {
		if msg.Role == "system" {
			if system == "" {
				system = msg.Content
			}
			continue
		}

		role := genai.RoleUser
		if msg.Role == "assistant" || msg.Role == "model" {
			role = genai.RoleModel
		}
		contents = append(contents, &genai.Content{
			Role:  role,
			Parts: []*genai.Part{genai.NewPartFromText(msg.Content)},
		})
	}
	return contents, system
}

func (g *GeminiProvider) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	options := llm.Apply(llm.Options{Temperature: 0.7, Model: g.modelName}, opts...)

	contents, system := toContents(history)
	if len(contents) == 0 {
		return "", fmt.Errorf("gemini: no user content to send")
	}

	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(float32(options.Temperature)),
	}
	if options.MaxTokens > 0 {
		config.MaxOutputTokens = int32(options.MaxTokens)
	}
	if system != "" {
		config.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}

	resp, err := g.client.Models.GenerateContent(ctx, options.Model, contents, config)
	if err != nil {
		return "", fmt.Errorf("gemini generate content: %w", err)
	}

	var out strings.Builder
	if resp != nil {
		for _, candidate := range resp.Candidates {
			if candidate.Content == nil {
				continue
			}
			for _, part := range candidate.Content.Parts {
				out.WriteString(part.Text)
			}
			if out.Len() > 0 {
				break
			}
		}
	}

	if out.Len() == 0 {
		return "", llm.ErrEmptyResponse
	}
	return out.String(), nil
}

func (g *GeminiProvider) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	return g.Chat(ctx, []llm.Message{{Role: "user", Content: prompt}}, opts...)
}
