package claude

import (
	"context"
	"fmt"
	"strings"

	"smart-search-be/pkg/llm"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const (
	DefaultModel     = "claude-sonnet-4-5"
	defaultMaxTokens = 1024
)

type ClaudeProvider struct {
	client    anthropic.Client
	modelName string
}

var _ llm.LLMProvider = &ClaudeProvider{}

func NewClaudeProvider(apiKey, modelName string, reqOpts ...option.RequestOption) (*ClaudeProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("anthropic api key is required")
	}
	if modelName == "" {
		modelName = DefaultModel
	}

	reqOpts = append([]option.RequestOption{option.WithAPIKey(apiKey)}, reqOpts...)
	return &ClaudeProvider{
		client:    anthropic.NewClient(reqOpts...),
		modelName: modelName,
	}, nil
}

func (c *ClaudeProvider) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	options := llm.Apply(llm.Options{Temperature: 0.7, Model: c.modelName, MaxTokens: defaultMaxTokens}, opts...)

	messages := make([]anthropic.MessageParam, 0, len(history))
	var system string
	for _, msg := range history {
		switch msg.Role {
		case "system":
			if system == "" {
				system = msg.Content
			}
		case "assistant", "model":
			messages = append(messages, anthropic.NewAssistantMessage(anthropic.NewTextBlock(msg.Content)))
		default:
			messages = append(messages, anthropic.NewUserMessage(anthropic.NewTextBlock(msg.Content)))
		}
	}
	if len(messages) == 0 {
		return "", fmt.Errorf("claude: no user content to send")
	}

	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(options.Model),
		MaxTokens:   int64(options.MaxTokens),
		Messages:    messages,
		Temperature: anthropic.Float(options.Temperature),
	}
	if system != "" {
		params.System = []anthropic.TextBlockParam{{Text: system}}
	}

	resp, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("claude messages api: %w", err)
	}

	var out strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			out.WriteString(block.Text)
		}
	}
	if out.Len() == 0 {
		return "", llm.ErrEmptyResponse
	}
	return out.String(), nil
}

func (c *ClaudeProvider) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	return c.Chat(ctx, []llm.Message{{Role: "user", Content: prompt}}, opts...)
}
