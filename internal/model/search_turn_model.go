package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type SearchTurn struct {
	Id             uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Ts             time.Time      `gorm:"default:now();not null;index"`
	SessionId      string         `gorm:"type:varchar(128);not null;index"`
	OriginalQuery  string         `gorm:"type:text;not null"`
	RewrittenQuery *string        `gorm:"type:text"`
	UsedQuery      string         `gorm:"type:text;not null"`
	Provider       string         `gorm:"type:varchar(32);not null;default:'tavily'"`
	InferredPrefs  datatypes.JSON `gorm:"type:jsonb"`
	ResultMeta     datatypes.JSON `gorm:"type:jsonb"`
}

func (SearchTurn) TableName() string {
	return "search_turns"
}
