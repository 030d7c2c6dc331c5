package unitofwork

import (
	"context"

	"smart-search-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	SearchTurnRepository() contract.SearchTurnRepository
	McpLogRepository() contract.McpLogRepository
}
