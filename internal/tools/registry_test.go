package tools

import (
	"context"
	"encoding/json"
	"testing"

	"smart-search-be/internal/dto"
	"smart-search-be/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSearch struct {
	lastReq  dto.SmartSearchRequest
	streamed bool
}

func (s *stubSearch) Search(_ context.Context, req dto.SmartSearchRequest) (*dto.SmartSearchResponse, error) {
	s.lastReq = req
	return &dto.SmartSearchResponse{UsedQuery: req.Query, StateMeta: dto.StateMeta{SessionId: req.SessionId, TurnCount: 1}}, nil
}

func (s *stubSearch) SearchStream(ctx context.Context, req dto.SmartSearchRequest, sink service.EventSink) (*dto.SmartSearchResponse, error) {
	s.streamed = true
	sink.Emit(ctx, dto.SearchEvent{Event: dto.EventStart, SessionId: req.SessionId, Progress: 1, Level: "info"})
	return s.Search(ctx, req)
}

func (s *stubSearch) WebSearch(_ context.Context, req dto.TavilySearchRequest) (*dto.TavilySearchResponse, error) {
	return &dto.TavilySearchResponse{Raw: map[string]interface{}{"query": req.Query}, LatencyMs: 5}, nil
}

type stubContexts struct{}

func (stubContexts) GetContext(_ context.Context, sessionId string) (*dto.ContextResponse, error) {
	if sessionId == "" {
		return nil, service.ErrInvalidRequest
	}
	return &dto.ContextResponse{SessionId: sessionId, Turns: []dto.TurnDTO{}}, nil
}

func (stubContexts) ClearContext(_ context.Context, sessionId string) (*dto.ClearContextResponse, error) {
	return &dto.ClearContextResponse{Cleared: true, SessionId: sessionId}, nil
}

func (stubContexts) ListTurns(context.Context, string, dto.TurnQuery) (*dto.TurnListResponse, error) {
	return &dto.TurnListResponse{}, nil
}

func (stubContexts) GetTurn(context.Context, string, uuid.UUID) (*dto.TurnDTO, error) {
	return nil, nil
}

func (stubContexts) ListLogs(context.Context, dto.LogQuery) (*dto.LogListResponse, error) {
	return &dto.LogListResponse{}, nil
}

func TestRegistry_List(t *testing.T) {
	reg := NewRegistry(&stubSearch{}, stubContexts{})
	tools := reg.List()

	names := make([]string, len(tools))
	for i, tool := range tools {
		names[i] = tool.Name
		assert.Equal(t, "object", tool.InputSchema["type"])
	}
	assert.Equal(t, []string{"smart_search", "tavily_search", "get_context", "clear_context"}, names)

	smart, ok := reg.Lookup(SmartSearch)
	require.True(t, ok)
	assert.True(t, smart.Streaming)
	assert.Equal(t, []string{"session_id", "query"}, smart.InputSchema["required"])

	_, ok = reg.Lookup("nope")
	assert.False(t, ok)
}

func TestRegistry_Invoke(t *testing.T) {
	search := &stubSearch{}
	reg := NewRegistry(search, stubContexts{})
	ctx := context.Background()

	out, err := reg.Invoke(ctx, SmartSearch, map[string]interface{}{
		"session_id":  "s1",
		"query":       "q",
		"extra_sites": []interface{}{"a.org"},
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, "q", out.(*dto.SmartSearchResponse).UsedQuery)
	assert.Equal(t, []string{"a.org"}, search.lastReq.ExtraSites)
	assert.False(t, search.streamed)

	var events []dto.SearchEvent
	_, err = reg.Invoke(ctx, SmartSearch, map[string]interface{}{"session_id": "s1", "query": "q"},
		service.SinkFunc(func(_ context.Context, ev dto.SearchEvent) { events = append(events, ev) }))
	require.NoError(t, err)
	assert.True(t, search.streamed)
	assert.Len(t, events, 1)

	out, err = reg.Invoke(ctx, TavilySearch, map[string]interface{}{"query": "raw"}, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(5), out.(*dto.TavilySearchResponse).LatencyMs)

	out, err = reg.Invoke(ctx, ClearContext, map[string]interface{}{"session_id": "s1"}, nil)
	require.NoError(t, err)
	assert.True(t, out.(*dto.ClearContextResponse).Cleared)

	_, err = reg.Invoke(ctx, GetContext, nil, nil)
	assert.ErrorIs(t, err, service.ErrInvalidRequest)
}

func TestRegistry_InvokeErrors(t *testing.T) {
	reg := NewRegistry(&stubSearch{}, stubContexts{})

	_, err := reg.Invoke(context.Background(), "does_not_exist", nil, nil)
	assert.ErrorIs(t, err, service.ErrUnknownTool)

	_, err = reg.Invoke(context.Background(), SmartSearch, map[string]interface{}{"session_id": 12}, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, service.ErrInvalidRequest)
	assert.Contains(t, err.Error(), "Invalid arguments")

	_, err = reg.Invoke(context.Background(), SmartSearch, map[string]interface{}{"session_id": "s1"}, nil)
	assert.ErrorIs(t, err, service.ErrInvalidRequest, "missing query fails before the pipeline runs")
}

func TestNewMCPServer(t *testing.T) {
	srv, err := NewMCPServer(NewRegistry(&stubSearch{}, stubContexts{}), "smart-search", "test")
	require.NoError(t, err)
	ctx := context.Background()

	list := srv.HandleMessage(ctx, json.RawMessage(`{"jsonrpc":"2.0","id":1,"method":"tools/list"}`))
	raw, err := json.Marshal(list)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"smart_search"`)
	assert.Contains(t, string(raw), `"clear_context"`)

	call := srv.HandleMessage(ctx, json.RawMessage(
		`{"jsonrpc":"2.0","id":2,"method":"tools/call","params":{"name":"get_context","arguments":{"session_id":"s9"}}}`))
	raw, err = json.Marshal(call)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `s9`)
	assert.NotContains(t, string(raw), `"isError":true`)
}
