package specification

import (
	"smart-search-be/internal/entity"

	"gorm.io/gorm"
)

type BySessionID struct {
	SessionID string
}

func (s BySessionID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("session_id = ?", s.SessionID)
}

type ByRequestID struct {
	RequestID string
}

func (s ByRequestID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("request_id = ?", s.RequestID)
}

// ByLevel accepts aliases like "warn".
type ByLevel struct {
	Level string
}

func (s ByLevel) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("level = ?", entity.NormalizeLogLevel(s.Level))
}

// ByUsedQuery does a case-insensitive substring match on the query that was searched.
type ByUsedQuery struct {
	Query string
}

func (s ByUsedQuery) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("used_query ILIKE ?", "%"+s.Query+"%")
}
