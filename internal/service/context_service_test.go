package service

import (
	"context"
	"fmt"
	"testing"

	"smart-search-be/internal/dto"
	"smart-search-be/internal/entity"
	"smart-search-be/internal/pkg/logger"
	"smart-search-be/internal/repository/memory"
	"smart-search-be/pkg/keylock"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLogReader struct {
	entries []logger.LogEntry
	level   string
	module  string
}

func (r *fakeLogReader) GetLogs(level, module string, limit, offset int) ([]logger.LogEntry, error) {
	r.level, r.module = level, module
	return r.entries, nil
}

func seededState(t *testing.T, sessionId string, n int) *memory.StateRepository {
	t.Helper()
	store := memory.NewStateRepository(0)
	state := entity.NewSearchState(sessionId)
	for i := 0; i < n; i++ {
		state.Turns = append(state.Turns, entity.SearchTurn{
			Id:            uuid.New(),
			SessionId:     sessionId,
			OriginalQuery: fmt.Sprintf("query %d", i),
			UsedQuery:     fmt.Sprintf("used %d", i),
			Provider:      "tavily",
		})
	}
	require.NoError(t, store.Set(context.Background(), state))
	return store
}

func TestContextService_GetAndClear(t *testing.T) {
	store := seededState(t, "s1", 2)
	pub := &fakeEventPublisher{}
	svc := NewContextService(store, keylock.New(), nil, nil, pub, logger.NewNopLogger())
	ctx := context.Background()

	got, err := svc.GetContext(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, got.Turns, 2)
	assert.Equal(t, "query 0", got.Turns[0].OriginalQuery)

	missing, err := svc.GetContext(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, missing.Turns)
	assert.NotNil(t, missing.Turns)

	cleared, err := svc.ClearContext(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, &dto.ClearContextResponse{Cleared: true, SessionId: "s1"}, cleared)
	assert.Equal(t, []string{"SESSION_CLEARED"}, pub.types())

	_, ok := store.Get(ctx, "s1")
	assert.False(t, ok)

	_, err = svc.ClearContext(ctx, "never-existed")
	assert.NoError(t, err)

	_, err = svc.GetContext(ctx, "")
	assert.ErrorIs(t, err, ErrInvalidRequest)
}

func TestContextService_ListTurnsFromState(t *testing.T) {
	store := seededState(t, "s1", 5)
	svc := NewContextService(store, keylock.New(), nil, nil, nil, logger.NewNopLogger())
	ctx := context.Background()

	resp, err := svc.ListTurns(ctx, "s1", dto.TurnQuery{ListQuery: dto.ListQuery{Limit: 2, Offset: 1}})
	require.NoError(t, err)
	assert.Equal(t, int64(5), resp.Total)
	require.Len(t, resp.Turns, 2)
	assert.Equal(t, "query 3", resp.Turns[0].OriginalQuery, "newest first")
	assert.Equal(t, "query 2", resp.Turns[1].OriginalQuery)

	filtered, err := svc.ListTurns(ctx, "s1", dto.TurnQuery{Q: "USED 4"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), filtered.Total)

	_, err = svc.ListTurns(ctx, "s1", dto.TurnQuery{ListQuery: dto.ListQuery{Limit: 1000}})
	assert.ErrorIs(t, err, ErrInvalidRequest)
}

func TestContextService_ListTurnsFromDatabase(t *testing.T) {
	db := &fakeStore{}
	for i := 0; i < 3; i++ {
		db.turns = append(db.turns, &entity.SearchTurn{Id: uuid.New(), SessionId: "s1", OriginalQuery: "q"})
	}
	svc := NewContextService(memory.NewStateRepository(0), keylock.New(), db, nil, nil, logger.NewNopLogger())

	resp, err := svc.ListTurns(context.Background(), "s1", dto.TurnQuery{})
	require.NoError(t, err)
	assert.Equal(t, int64(3), resp.Total)
	assert.Len(t, resp.Turns, 3)

	turn, err := svc.GetTurn(context.Background(), "s1", db.turns[0].Id)
	require.NoError(t, err)
	require.NotNil(t, turn)
	assert.Equal(t, db.turns[0].Id, turn.Id)
}

func TestContextService_GetTurnFromState(t *testing.T) {
	store := seededState(t, "s1", 2)
	svc := NewContextService(store, keylock.New(), nil, nil, nil, logger.NewNopLogger())
	state, _ := store.Get(context.Background(), "s1")

	turn, err := svc.GetTurn(context.Background(), "s1", state.Turns[1].Id)
	require.NoError(t, err)
	require.NotNil(t, turn)
	assert.Equal(t, "query 1", turn.OriginalQuery)

	none, err := svc.GetTurn(context.Background(), "s1", uuid.New())
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestContextService_ListLogsFromFile(t *testing.T) {
	reader := &fakeLogReader{entries: []logger.LogEntry{
		{Id: "3", Timestamp: "2025-03-01T10:00:02.000Z", Level: "WARN", Message: "empty content", Details: map[string]interface{}{"session_id": "s1", "request_id": "r1"}},
		{Id: "2", Timestamp: "2025-03-01T10:00:01.000Z", Level: "INFO", Message: "searching", Details: map[string]interface{}{"session_id": "s2"}},
		{Id: "1", Timestamp: "2025-03-01T10:00:00.000Z", Level: "INFO", Message: "start", Details: map[string]interface{}{"session_id": "s1", "request_id": "r1"}},
	}}
	svc := NewContextService(memory.NewStateRepository(0), keylock.New(), nil, reader, nil, logger.NewNopLogger())

	resp, err := svc.ListLogs(context.Background(), dto.LogQuery{SessionId: "s1"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), resp.Total)
	require.Len(t, resp.Logs, 2)
	assert.Equal(t, "warning", resp.Logs[0].Level)
	require.NotNil(t, resp.Logs[0].RequestId)
	assert.Equal(t, "r1", *resp.Logs[0].RequestId)
	assert.Equal(t, 2025, resp.Logs[0].Timestamp.Year())
	assert.Equal(t, auditModule, reader.module)

	_, err = svc.ListLogs(context.Background(), dto.LogQuery{Level: "warn"})
	require.NoError(t, err)
	assert.Equal(t, "warn", reader.level)

	_, err = svc.ListLogs(context.Background(), dto.LogQuery{Level: "loud"})
	assert.ErrorIs(t, err, ErrInvalidRequest)
}

func TestContextService_ListLogsFromDatabase(t *testing.T) {
	db := &fakeStore{}
	audit := NewAuditLogger(logger.NewNopLogger(), db)
	audit.Log(context.Background(), "warn", "s1", "r1", "empty content", map[string]interface{}{"url": "https://x"})
	audit.Log(context.Background(), "info", "", "", "no session", nil)

	svc := NewContextService(memory.NewStateRepository(0), keylock.New(), db, nil, nil, logger.NewNopLogger())
	resp, err := svc.ListLogs(context.Background(), dto.LogQuery{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), resp.Total)
	require.Len(t, resp.Logs, 2)
	assert.Equal(t, "warning", resp.Logs[0].Level)
	require.NotNil(t, resp.Logs[0].SessionId)
	assert.Equal(t, "s1", *resp.Logs[0].SessionId)
	assert.Nil(t, resp.Logs[1].SessionId)
}
