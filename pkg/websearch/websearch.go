package websearch

import "context"

// Result is the provider's untouched JSON body plus how long the call took.
type Result struct {
	Raw       map[string]any `json:"raw"`
	LatencyMs int64          `json:"latency_ms"`
}

// Searcher issues one web search. Any error means the search produced nothing usable.
type Searcher interface {
	Search(ctx context.Context, query string) (*Result, error)
	Name() string
}

// ExtractTopURLs returns up to n URLs from the first n hits of a raw result,
// reading hits from "results" (or "data") and each URL from "url" (or "link").
// Hits without a URL are skipped; order is preserved.
func ExtractTopURLs(raw map[string]any, n int) []string {
	urls := []string{}
	if raw == nil {
		return urls
	}

	hits, ok := raw["results"].([]any)
	if !ok || len(hits) == 0 {
		hits, _ = raw["data"].([]any)
	}

	for i, h := range hits {
		if i >= n {
			break
		}
		hit, ok := h.(map[string]any)
		if !ok {
			continue
		}
		if u := str(hit["url"]); u != "" {
			urls = append(urls, u)
		} else if u := str(hit["link"]); u != "" {
			urls = append(urls, u)
		}
	}
	return urls
}

func str(v any) string {
	s, _ := v.(string)
	return s
}
