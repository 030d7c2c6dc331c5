package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type McpLog struct {
	Id        uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Ts        time.Time      `gorm:"default:now();not null;index"`
	SessionId *string        `gorm:"type:varchar(128);index"`
	RequestId *string        `gorm:"type:varchar(64);index"`
	Level     string         `gorm:"type:varchar(16);not null;default:'info';index"`
	Message   string         `gorm:"type:text;not null"`
	Meta      datatypes.JSON `gorm:"type:jsonb"`
}

func (McpLog) TableName() string {
	return "mcp_logs"
}
