package dto

import (
	"time"

	"smart-search-be/pkg/preference"

	"github.com/google/uuid"
)

type SmartSearchRequest struct {
	SessionId string `json:"session_id" validate:"required,max=128"`
	Query     string `json:"query" validate:"required,max=2000"`
	preference.Request
}

type StateMeta struct {
	SessionId     string   `json:"session_id"`
	TurnCount     int      `json:"turn_count"`
	LatestTopUrls []string `json:"latest_top_urls"`
	LatencyMs     int64    `json:"latency_ms"`
}

type SmartSearchResponse struct {
	RewrittenQuery *string                `json:"rewritten_query"`
	UsedQuery      string                 `json:"used_query"`
	Result         map[string]interface{} `json:"result"`
	Summary        *string                `json:"summary"`
	StateMeta      StateMeta              `json:"state_meta"`
}

type TavilySearchRequest struct {
	Query string `json:"query" validate:"required,max=2000"`
}

type TavilySearchResponse struct {
	Raw       map[string]interface{} `json:"raw"`
	LatencyMs int64                  `json:"latency_ms"`
}

type SessionRequest struct {
	SessionId string `json:"session_id" validate:"required,max=128"`
}

type ContextResponse struct {
	SessionId string                 `json:"session_id"`
	Turns     []TurnDTO              `json:"turns"`
	UserNotes map[string]interface{} `json:"user_notes,omitempty"`
}

type ClearContextResponse struct {
	Cleared   bool   `json:"cleared"`
	SessionId string `json:"session_id"`
}

type ResultMetaDTO struct {
	TopUrls   []string `json:"top_urls"`
	LatencyMs int64    `json:"latency_ms"`
	Summary   *string  `json:"summary"`
}

type TurnDTO struct {
	Id             uuid.UUID              `json:"id"`
	Timestamp      time.Time              `json:"ts"`
	OriginalQuery  string                 `json:"original_query"`
	InferredPrefs  preference.Preferences `json:"inferred_prefs"`
	RewrittenQuery *string                `json:"rewritten_query"`
	UsedQuery      string                 `json:"used_query"`
	Provider       string                 `json:"provider"`
	ResultMeta     ResultMetaDTO          `json:"result_meta"`
}

type ListQuery struct {
	Limit  int `query:"limit" validate:"omitempty,min=1,max=200"`
	Offset int `query:"offset" validate:"omitempty,min=0"`
}

type TurnQuery struct {
	ListQuery
	Q string `query:"q" validate:"omitempty,max=200"`
}

type TurnListResponse struct {
	SessionId string    `json:"session_id"`
	Total     int64     `json:"total"`
	Turns     []TurnDTO `json:"turns"`
}

type LogQuery struct {
	ListQuery
	SessionId string `query:"session_id"`
	RequestId string `query:"request_id"`
	Level     string `query:"level" validate:"omitempty,oneof=debug info warn warning error"`
}

type LogDTO struct {
	Id        string                 `json:"id"`
	Timestamp time.Time              `json:"ts"`
	SessionId *string                `json:"session_id,omitempty"`
	RequestId *string                `json:"request_id,omitempty"`
	Level     string                 `json:"level"`
	Message   string                 `json:"message"`
	Meta      map[string]interface{} `json:"meta,omitempty"`
}

type LogListResponse struct {
	Total int64    `json:"total"`
	Logs  []LogDTO `json:"logs"`
}
