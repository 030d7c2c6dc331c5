package contract

import (
	"context"

	"smart-search-be/internal/entity"
	"smart-search-be/internal/repository/specification"
)

// SearchStateRepository holds live conversational state per session.
type SearchStateRepository interface {
	// Get returns a private copy of the state. ok is false when the session has none.
	Get(ctx context.Context, sessionId string) (state *entity.SearchState, ok bool)
	// Set replaces the whole state for state.SessionId.
	Set(ctx context.Context, state *entity.SearchState) error
	// Clear removes the session. Clearing an unknown session is not an error.
	Clear(ctx context.Context, sessionId string) error
}

type SearchTurnRepository interface {
	Create(ctx context.Context, turn *entity.SearchTurn) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.SearchTurn, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.SearchTurn, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}

type McpLogRepository interface {
	Create(ctx context.Context, log *entity.McpLog) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.McpLog, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
