package dto

// Pipeline event names, in the order a successful run emits them.
const (
	EventStart           = "start"
	EventStateLoaded     = "state_loaded"
	EventPrefsInferred   = "prefs_inferred"
	EventRewriteStarted  = "rewrite_started"
	EventRewriteDone     = "rewrite_done"
	EventRewriteFailed   = "rewrite_failed"
	EventSearchStarted   = "search_started"
	EventSearchDone      = "search_done"
	EventSearchFailed    = "search_failed"
	EventScrapeStarted   = "scrape_started"
	EventScrapeURL       = "scrape_url"
	EventScrapeChunk     = "scrape_chunk"
	EventScrapeDone      = "scrape_done"
	EventScrapeEmpty     = "scrape_empty"
	EventScrapeFailed    = "scrape_failed"
	EventCombineDone     = "combine_done"
	EventSummarizeStart  = "summarize_started"
	EventSummaryChunk    = "summary_chunk"
	EventSummarizeDone   = "summarize_done"
	EventSummarizeFailed = "summarize_failed"
	EventPersisted       = "persisted"
	EventEnd             = "end"
	EventError           = "error"
)

// SearchEvent is one progress notification of a streaming run.
type SearchEvent struct {
	Event     string                 `json:"event"`
	RequestId string                 `json:"request_id"`
	SessionId string                 `json:"session_id"`
	Progress  int                    `json:"progress"`
	Level     string                 `json:"level"`
	Message   string                 `json:"message,omitempty"`
	Data      map[string]interface{} `json:"data,omitempty"`
	Final     *SmartSearchResponse   `json:"final,omitempty"`
	Error     string                 `json:"error,omitempty"`
}

type ToolDescriptor struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"input_schema"`
	Streaming   bool                   `json:"streaming"`
}

type ToolListResponse struct {
	Tools []ToolDescriptor `json:"tools"`
}

type ToolInvokeRequest struct {
	Name      string                 `json:"name" validate:"required"`
	Arguments map[string]interface{} `json:"arguments"`
}

type ToolInvokeResponse struct {
	Content interface{} `json:"content"`
	IsError bool        `json:"isError"`
}
