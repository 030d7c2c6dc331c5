package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"smart-search-be/internal/dto"
	"smart-search-be/internal/entity"
	"smart-search-be/internal/pkg/logger"
	"smart-search-be/internal/pkg/serverutils"
	"smart-search-be/internal/repository/contract"
	"smart-search-be/internal/repository/specification"
	"smart-search-be/internal/repository/unitofwork"
	"smart-search-be/pkg/events"
	"smart-search-be/pkg/keylock"

	"github.com/google/uuid"
)

const defaultPageSize = 20

type IContextService interface {
	GetContext(ctx context.Context, sessionId string) (*dto.ContextResponse, error)
	ClearContext(ctx context.Context, sessionId string) (*dto.ClearContextResponse, error)
	ListTurns(ctx context.Context, sessionId string, q dto.TurnQuery) (*dto.TurnListResponse, error)
	GetTurn(ctx context.Context, sessionId string, turnId uuid.UUID) (*dto.TurnDTO, error)
	ListLogs(ctx context.Context, q dto.LogQuery) (*dto.LogListResponse, error)
}

type contextService struct {
	state          contract.SearchStateRepository
	locks          *keylock.KeyedMutex
	uowFactory     unitofwork.RepositoryFactory // nil without a database
	logReader      logger.LogReader
	eventPublisher events.Publisher
	log            logger.ILogger
}

// NewContextService reads live state from the store and history from the
// database. When uowFactory is nil turns come from live state and logs from
// logReader.
func NewContextService(
	state contract.SearchStateRepository,
	locks *keylock.KeyedMutex,
	uowFactory unitofwork.RepositoryFactory,
	logReader logger.LogReader,
	eventPublisher events.Publisher,
	log logger.ILogger,
) IContextService {
	return &contextService{
		state:          state,
		locks:          locks,
		uowFactory:     uowFactory,
		logReader:      logReader,
		eventPublisher: eventPublisher,
		log:            log,
	}
}

func validateSession(sessionId string) error {
	if err := serverutils.ValidateRequest(dto.SessionRequest{SessionId: sessionId}); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	return nil
}

func (c *contextService) GetContext(ctx context.Context, sessionId string) (*dto.ContextResponse, error) {
	if err := validateSession(sessionId); err != nil {
		return nil, err
	}

	state, ok := c.state.Get(ctx, sessionId)
	if !ok {
		state = entity.NewSearchState(sessionId)
	}
	return &dto.ContextResponse{
		SessionId: sessionId,
		Turns:     toTurnDTOs(state.Turns),
		UserNotes: state.UserNotes,
	}, nil
}

func (c *contextService) ClearContext(ctx context.Context, sessionId string) (*dto.ClearContextResponse, error) {
	if err := validateSession(sessionId); err != nil {
		return nil, err
	}

	unlock := c.locks.Lock(sessionId)
	err := c.state.Clear(ctx, sessionId)
	unlock()
	if err != nil {
		return nil, fmt.Errorf("clear session %s: %w", sessionId, err)
	}

	c.log.Info("ContextService", "Session cleared", map[string]interface{}{"session_id": sessionId})
	if c.eventPublisher != nil {
		evt := events.New(events.SessionCleared, map[string]interface{}{"session_id": sessionId})
		if err := c.eventPublisher.Publish(ctx, evt); err != nil {
			c.log.Warn("ContextService", "Failed to publish SESSION_CLEARED event", map[string]interface{}{"error": err.Error()})
		}
	}

	return &dto.ClearContextResponse{Cleared: true, SessionId: sessionId}, nil
}

func (c *contextService) ListTurns(ctx context.Context, sessionId string, q dto.TurnQuery) (*dto.TurnListResponse, error) {
	if err := validateSession(sessionId); err != nil {
		return nil, err
	}
	if err := serverutils.ValidateRequest(q); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	limit := q.Limit
	if limit == 0 {
		limit = defaultPageSize
	}

	if c.uowFactory == nil {
		return c.listStateTurns(ctx, sessionId, q.Q, limit, q.Offset), nil
	}

	filters := []specification.Specification{specification.BySessionID{SessionID: sessionId}}
	if q.Q != "" {
		filters = append(filters, specification.ByUsedQuery{Query: q.Q})
	}

	uow := c.uowFactory.NewUnitOfWork(ctx)
	total, err := uow.SearchTurnRepository().Count(ctx, filters...)
	if err != nil {
		return nil, fmt.Errorf("count turns: %w", err)
	}
	turns, err := uow.SearchTurnRepository().FindAll(ctx, append(filters,
		specification.OrderBy{Field: "ts", Desc: true},
		specification.Pagination{Limit: limit, Offset: q.Offset},
	)...)
	if err != nil {
		return nil, fmt.Errorf("find turns: %w", err)
	}

	out := make([]dto.TurnDTO, 0, len(turns))
	for _, t := range turns {
		out = append(out, toTurnDTO(*t))
	}
	return &dto.TurnListResponse{SessionId: sessionId, Total: total, Turns: out}, nil
}

// listStateTurns pages over live state, newest first.
func (c *contextService) listStateTurns(ctx context.Context, sessionId, query string, limit, offset int) *dto.TurnListResponse {
	resp := &dto.TurnListResponse{SessionId: sessionId, Turns: []dto.TurnDTO{}}
	state, ok := c.state.Get(ctx, sessionId)
	if !ok {
		return resp
	}

	var matched []entity.SearchTurn
	for i := len(state.Turns) - 1; i >= 0; i-- {
		t := state.Turns[i]
		if query != "" && !strings.Contains(strings.ToLower(t.UsedQuery), strings.ToLower(query)) {
			continue
		}
		matched = append(matched, t)
	}
	resp.Total = int64(len(matched))
	resp.Turns = toTurnDTOs(page(matched, limit, offset))
	return resp
}

func (c *contextService) GetTurn(ctx context.Context, sessionId string, turnId uuid.UUID) (*dto.TurnDTO, error) {
	if err := validateSession(sessionId); err != nil {
		return nil, err
	}

	if c.uowFactory == nil {
		if state, ok := c.state.Get(ctx, sessionId); ok {
			for _, t := range state.Turns {
				if t.Id == turnId {
					out := toTurnDTO(t)
					return &out, nil
				}
			}
		}
		return nil, nil
	}

	uow := c.uowFactory.NewUnitOfWork(ctx)
	turn, err := uow.SearchTurnRepository().FindOne(ctx,
		specification.ByID{ID: turnId},
		specification.BySessionID{SessionID: sessionId},
	)
	if err != nil {
		return nil, fmt.Errorf("find turn: %w", err)
	}
	if turn == nil {
		return nil, nil
	}
	out := toTurnDTO(*turn)
	return &out, nil
}

func (c *contextService) ListLogs(ctx context.Context, q dto.LogQuery) (*dto.LogListResponse, error) {
	if err := serverutils.ValidateRequest(q); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	limit := q.Limit
	if limit == 0 {
		limit = defaultPageSize
	}

	if c.uowFactory == nil {
		return c.listFileLogs(q, limit)
	}

	var filters []specification.Specification
	if q.SessionId != "" {
		filters = append(filters, specification.BySessionID{SessionID: q.SessionId})
	}
	if q.RequestId != "" {
		filters = append(filters, specification.ByRequestID{RequestID: q.RequestId})
	}
	if q.Level != "" {
		filters = append(filters, specification.ByLevel{Level: q.Level})
	}

	uow := c.uowFactory.NewUnitOfWork(ctx)
	total, err := uow.McpLogRepository().Count(ctx, filters...)
	if err != nil {
		return nil, fmt.Errorf("count logs: %w", err)
	}
	rows, err := uow.McpLogRepository().FindAll(ctx, append(filters,
		specification.OrderBy{Field: "ts", Desc: true},
		specification.Pagination{Limit: limit, Offset: q.Offset},
	)...)
	if err != nil {
		return nil, fmt.Errorf("find logs: %w", err)
	}

	logs := make([]dto.LogDTO, 0, len(rows))
	for _, l := range rows {
		logs = append(logs, dto.LogDTO{
			Id:        l.Id.String(),
			Timestamp: l.Timestamp,
			SessionId: l.SessionId,
			RequestId: l.RequestId,
			Level:     l.Level,
			Message:   l.Message,
			Meta:      l.Meta,
		})
	}
	return &dto.LogListResponse{Total: total, Logs: logs}, nil
}

// listFileLogs serves the audit log from the rotated JSON log file.
func (c *contextService) listFileLogs(q dto.LogQuery, limit int) (*dto.LogListResponse, error) {
	resp := &dto.LogListResponse{Logs: []dto.LogDTO{}}
	if c.logReader == nil {
		return resp, nil
	}

	level := ""
	if q.Level != "" {
		// the file uses zap's level names
		level = entity.NormalizeLogLevel(q.Level)
		if level == entity.LogLevelWarning {
			level = "warn"
		}
	}
	entries, err := c.logReader.GetLogs(level, auditModule, 0, 0)
	if err != nil {
		return nil, fmt.Errorf("read log file: %w", err)
	}

	var matched []dto.LogDTO
	for _, e := range entries {
		sessionId, _ := e.Details["session_id"].(string)
		requestId, _ := e.Details["request_id"].(string)
		if q.SessionId != "" && sessionId != q.SessionId {
			continue
		}
		if q.RequestId != "" && requestId != q.RequestId {
			continue
		}
		ts, _ := time.Parse("2006-01-02T15:04:05.000Z0700", e.Timestamp)
		row := dto.LogDTO{
			Id:        e.Id,
			Timestamp: ts,
			Level:     entity.NormalizeLogLevel(strings.ToLower(e.Level)),
			Message:   e.Message,
			Meta:      e.Details,
		}
		if sessionId != "" {
			row.SessionId = &sessionId
		}
		if requestId != "" {
			row.RequestId = &requestId
		}
		matched = append(matched, row)
	}

	resp.Total = int64(len(matched))
	resp.Logs = append(resp.Logs, page(matched, limit, q.Offset)...)
	return resp, nil
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return nil
	}
	end := offset + limit
	if limit <= 0 || end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}

func toTurnDTO(t entity.SearchTurn) dto.TurnDTO {
	return dto.TurnDTO{
		Id:             t.Id,
		Timestamp:      t.Timestamp,
		OriginalQuery:  t.OriginalQuery,
		InferredPrefs:  t.InferredPrefs,
		RewrittenQuery: t.RewrittenQuery,
		UsedQuery:      t.UsedQuery,
		Provider:       t.Provider,
		ResultMeta: dto.ResultMetaDTO{
			TopUrls:   t.ResultMeta.TopUrls,
			LatencyMs: t.ResultMeta.LatencyMs,
			Summary:   t.ResultMeta.Summary,
		},
	}
}

func toTurnDTOs(turns []entity.SearchTurn) []dto.TurnDTO {
	out := make([]dto.TurnDTO, 0, len(turns))
	for _, t := range turns {
		out = append(out, toTurnDTO(t))
	}
	return out
}
