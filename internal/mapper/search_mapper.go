package mapper

import (
	"encoding/json"

	"smart-search-be/internal/entity"
	"smart-search-be/internal/model"

	"gorm.io/datatypes"
)

type SearchMapper struct{}

func NewSearchMapper() *SearchMapper {
	return &SearchMapper{}
}

func toJSON(v interface{}) datatypes.JSON {
	b, err := json.Marshal(v)
	if err != nil {
		return datatypes.JSON("{}")
	}
	return datatypes.JSON(b)
}

// Turn Mappers

func (m *SearchMapper) SearchTurnToModel(t *entity.SearchTurn) *model.SearchTurn {
	if t == nil {
		return nil
	}
	return &model.SearchTurn{
		Id:             t.Id,
		Ts:             t.Timestamp,
		SessionId:      t.SessionId,
		OriginalQuery:  t.OriginalQuery,
		RewrittenQuery: t.RewrittenQuery,
		UsedQuery:      t.UsedQuery,
		Provider:       t.Provider,
		InferredPrefs:  toJSON(t.InferredPrefs),
		ResultMeta:     toJSON(t.ResultMeta),
	}
}

func (m *SearchMapper) SearchTurnToEntity(t *model.SearchTurn) *entity.SearchTurn {
	if t == nil {
		return nil
	}
	e := &entity.SearchTurn{
		Id:             t.Id,
		SessionId:      t.SessionId,
		Timestamp:      t.Ts,
		OriginalQuery:  t.OriginalQuery,
		RewrittenQuery: t.RewrittenQuery,
		UsedQuery:      t.UsedQuery,
		Provider:       t.Provider,
	}
	// Malformed JSON columns leave the zero value rather than failing the read.
	_ = json.Unmarshal(t.InferredPrefs, &e.InferredPrefs)
	_ = json.Unmarshal(t.ResultMeta, &e.ResultMeta)
	return e
}

func (m *SearchMapper) SearchTurnsToEntities(models []*model.SearchTurn) []*entity.SearchTurn {
	out := make([]*entity.SearchTurn, len(models))
	for i, t := range models {
		out[i] = m.SearchTurnToEntity(t)
	}
	return out
}

// Log Mappers

func (m *SearchMapper) McpLogToModel(l *entity.McpLog) *model.McpLog {
	if l == nil {
		return nil
	}
	meta := l.Meta
	if meta == nil {
		meta = map[string]interface{}{}
	}
	return &model.McpLog{
		Id:        l.Id,
		Ts:        l.Timestamp,
		SessionId: l.SessionId,
		RequestId: l.RequestId,
		Level:     entity.NormalizeLogLevel(l.Level),
		Message:   l.Message,
		Meta:      toJSON(meta),
	}
}

func (m *SearchMapper) McpLogToEntity(l *model.McpLog) *entity.McpLog {
	if l == nil {
		return nil
	}
	e := &entity.McpLog{
		Id:        l.Id,
		Timestamp: l.Ts,
		SessionId: l.SessionId,
		RequestId: l.RequestId,
		Level:     l.Level,
		Message:   l.Message,
	}
	_ = json.Unmarshal(l.Meta, &e.Meta)
	return e
}

func (m *SearchMapper) McpLogsToEntities(models []*model.McpLog) []*entity.McpLog {
	out := make([]*entity.McpLog, len(models))
	for i, l := range models {
		out[i] = m.McpLogToEntity(l)
	}
	return out
}
