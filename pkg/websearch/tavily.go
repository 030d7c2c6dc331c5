package websearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	TavilyEndpoint = "https://api.tavily.com/search"
	tavilyTimeout  = 20 * time.Second
)

type Tavily struct {
	apiKey   string
	endpoint string
	client   *http.Client
}

var _ Searcher = &Tavily{}

type TavilyOption func(*Tavily)

// WithEndpoint points the client at another URL (used by tests).
func WithEndpoint(url string) TavilyOption {
	return func(t *Tavily) { t.endpoint = url }
}

func WithHTTPClient(c *http.Client) TavilyOption {
	return func(t *Tavily) { t.client = c }
}

func NewTavily(apiKey string, opts ...TavilyOption) *Tavily {
	t := &Tavily{
		apiKey:   apiKey,
		endpoint: TavilyEndpoint,
		client:   &http.Client{Timeout: tavilyTimeout},
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *Tavily) Name() string { return "tavily" }

func (t *Tavily) Search(ctx context.Context, query string) (*Result, error) {
	if t.apiKey == "" {
		return nil, fmt.Errorf("tavily: TAVILY_API_KEY is not set")
	}

	body, err := json.Marshal(map[string]any{"query": query})
	if err != nil {
		return nil, fmt.Errorf("tavily: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("tavily: create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+t.apiKey)
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := t.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tavily: request failed: %w", err)
	}
	defer resp.Body.Close()
	latency := time.Since(start).Milliseconds()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("tavily: read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("tavily: status %d: %s", resp.StatusCode, truncateBody(data))
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("tavily: decode response: %w", err)
	}

	return &Result{Raw: raw, LatencyMs: latency}, nil
}

func truncateBody(b []byte) string {
	const max = 512
	if len(b) > max {
		return string(b[:max]) + "..."
	}
	return string(b)
}
