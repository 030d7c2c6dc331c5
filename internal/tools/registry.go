// Package tools exposes the search services as named tools with JSON input
// schemas. The HTTP, line protocol and MCP transports all dispatch through
// Registry.
package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"smart-search-be/internal/dto"
	"smart-search-be/internal/pkg/serverutils"
	"smart-search-be/internal/service"
)

const (
	SmartSearch  = "smart_search"
	TavilySearch = "tavily_search"
	GetContext   = "get_context"
	ClearContext = "clear_context"
)

type Registry struct {
	search   service.ISmartSearchService
	contexts service.IContextService
}

func NewRegistry(search service.ISmartSearchService, contexts service.IContextService) *Registry {
	return &Registry{search: search, contexts: contexts}
}

func sessionSchema() map[string]interface{} {
	return object(map[string]interface{}{
		"session_id": prop("string", "Conversation/session identifier"),
	}, "session_id")
}

func (r *Registry) List() []dto.ToolDescriptor {
	return []dto.ToolDescriptor{
		{
			Name: SmartSearch,
			Description: "One-shot search with session memory: infer preferences, rewrite the query, " +
				"search the web, scrape the top results and summarize them together with recent history.",
			InputSchema: object(map[string]interface{}{
				"session_id":      prop("string", "Conversation/session identifier to persist context"),
				"query":           prop("string", "User's original query"),
				"prefer_academic": prop("boolean", "Prefer academic or scholarly sources"),
				"time_range":      prop("string", "Limit search to a time range, e.g. 'past_year' or '2024..2025'"),
				"extra_sites": map[string]interface{}{
					"type":        "array",
					"items":       map[string]interface{}{"type": "string"},
					"description": "Additional websites to prioritize",
				},
				"filetype_pdf":    prop("boolean", "Limit results to PDF files"),
				"target_language": prop("string", "Summary language code, e.g. 'en' or 'vi'"),
			}, "session_id", "query"),
			Streaming: true,
		},
		{
			Name:        TavilySearch,
			Description: "Raw web search. Returns the provider response and its latency.",
			InputSchema: object(map[string]interface{}{
				"query": prop("string", "Search query"),
			}, "query"),
		},
		{
			Name:        GetContext,
			Description: "Return the stored turns of a session.",
			InputSchema: sessionSchema(),
		},
		{
			Name:        ClearContext,
			Description: "Forget all stored turns of a session.",
			InputSchema: sessionSchema(),
		},
	}
}

// Lookup reports whether name is a registered tool.
func (r *Registry) Lookup(name string) (dto.ToolDescriptor, bool) {
	for _, t := range r.List() {
		if t.Name == name {
			return t, true
		}
	}
	return dto.ToolDescriptor{}, false
}

// Invoke runs a tool. A non-nil sink selects streaming mode for tools that
// support it; other tools ignore it.
func (r *Registry) Invoke(ctx context.Context, name string, args map[string]interface{}, sink service.EventSink) (interface{}, error) {
	switch name {
	case SmartSearch:
		var req dto.SmartSearchRequest
		if err := decode(args, &req); err != nil {
			return nil, err
		}
		if sink != nil {
			return r.search.SearchStream(ctx, req, sink)
		}
		return r.search.Search(ctx, req)

	case TavilySearch:
		var req dto.TavilySearchRequest
		if err := decode(args, &req); err != nil {
			return nil, err
		}
		return r.search.WebSearch(ctx, req)

	case GetContext:
		var req dto.SessionRequest
		if err := decode(args, &req); err != nil {
			return nil, err
		}
		return r.contexts.GetContext(ctx, req.SessionId)

	case ClearContext:
		var req dto.SessionRequest
		if err := decode(args, &req); err != nil {
			return nil, err
		}
		return r.contexts.ClearContext(ctx, req.SessionId)
	}
	return nil, fmt.Errorf("%w: %s", service.ErrUnknownTool, name)
}

func decode(args map[string]interface{}, out interface{}) error {
	if args == nil {
		args = map[string]interface{}{}
	}
	raw, err := json.Marshal(args)
	if err == nil {
		err = json.Unmarshal(raw, out)
	}
	if err == nil {
		err = serverutils.ValidateRequest(out)
	}
	if err != nil {
		return fmt.Errorf("%w: Invalid arguments: %v", service.ErrInvalidRequest, err)
	}
	return nil
}

func object(props map[string]interface{}, required ...string) map[string]interface{} {
	schema := map[string]interface{}{
		"type":       "object",
		"properties": props,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

func prop(typ, description string) map[string]interface{} {
	return map[string]interface{}{"type": typ, "description": description}
}
