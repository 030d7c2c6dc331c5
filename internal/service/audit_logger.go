package service

import (
	"context"
	"time"

	"smart-search-be/internal/entity"
	"smart-search-be/internal/pkg/logger"
	"smart-search-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

const auditModule = "SmartSearch"

// AuditLogger writes pipeline log lines to zap and, when a database is
// configured, to the mcp_logs table. Table writes never fail the caller.
type AuditLogger struct {
	log        logger.ILogger
	uowFactory unitofwork.RepositoryFactory
	timeout    time.Duration
}

func NewAuditLogger(log logger.ILogger, uowFactory unitofwork.RepositoryFactory) *AuditLogger {
	return &AuditLogger{log: log, uowFactory: uowFactory, timeout: 2 * time.Second}
}

func (a *AuditLogger) Log(ctx context.Context, level, sessionId, requestId, message string, meta map[string]interface{}) {
	level = entity.NormalizeLogLevel(level)

	details := make(map[string]interface{}, len(meta)+2)
	for k, v := range meta {
		details[k] = v
	}
	if sessionId != "" {
		details["session_id"] = sessionId
	}
	if requestId != "" {
		details["request_id"] = requestId
	}

	switch level {
	case entity.LogLevelDebug:
		a.log.Debug(auditModule, message, details)
	case entity.LogLevelWarning:
		a.log.Warn(auditModule, message, details)
	case entity.LogLevelError:
		a.log.Error(auditModule, message, details)
	default:
		a.log.Info(auditModule, message, details)
	}

	if a.uowFactory == nil {
		return
	}

	row := &entity.McpLog{
		Id:        uuid.New(),
		Timestamp: time.Now().UTC(),
		Level:     level,
		Message:   message,
		Meta:      meta,
	}
	if sessionId != "" {
		row.SessionId = &sessionId
	}
	if requestId != "" {
		row.RequestId = &requestId
	}

	// the row outlives a cancelled request
	dbCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.timeout)
	defer cancel()
	uow := a.uowFactory.NewUnitOfWork(dbCtx)
	if err := uow.McpLogRepository().Create(dbCtx, row); err != nil {
		a.log.Debug(auditModule, "Failed to persist log row", map[string]interface{}{"error": err.Error()})
	}
}
