package entity

import (
	"time"

	"github.com/google/uuid"
)

const (
	LogLevelDebug   = "debug"
	LogLevelInfo    = "info"
	LogLevelWarning = "warning"
	LogLevelError   = "error"
)

type McpLog struct {
	Id        uuid.UUID
	Timestamp time.Time
	SessionId *string
	RequestId *string
	Level     string
	Message   string
	Meta      map[string]interface{}
}

// NormalizeLogLevel maps aliases such as "warn" onto the stored level names.
func NormalizeLogLevel(level string) string {
	switch level {
	case "debug":
		return LogLevelDebug
	case "warn", "warning":
		return LogLevelWarning
	case "error":
		return LogLevelError
	default:
		return LogLevelInfo
	}
}
