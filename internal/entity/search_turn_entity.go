package entity

import (
	"time"

	"smart-search-be/pkg/preference"

	"github.com/google/uuid"
)

type ResultMeta struct {
	TopUrls   []string `json:"top_urls"`
	LatencyMs int64    `json:"latency_ms"`
	Summary   *string  `json:"summary"`
}

// SearchTurn is one completed pipeline run. It is never modified after it is appended.
type SearchTurn struct {
	Id             uuid.UUID              `json:"id"`
	SessionId      string                 `json:"session_id"`
	Timestamp      time.Time              `json:"ts"`
	OriginalQuery  string                 `json:"original_query"`
	InferredPrefs  preference.Preferences `json:"inferred_prefs"`
	RewrittenQuery *string                `json:"rewritten_query"`
	UsedQuery      string                 `json:"used_query"`
	Provider       string                 `json:"provider"`
	ResultMeta     ResultMeta             `json:"result_meta"`
}

// HistoryLine renders the turn as "original → rewritten", falling back to the
// original query when there was no rewrite.
func (t SearchTurn) HistoryLine() string {
	rewritten := t.OriginalQuery
	if t.RewrittenQuery != nil && *t.RewrittenQuery != "" {
		rewritten = *t.RewrittenQuery
	}
	return t.OriginalQuery + " → " + rewritten
}

type SearchState struct {
	SessionId string                 `json:"session_id"`
	Turns     []SearchTurn           `json:"turns"`
	UserNotes map[string]interface{} `json:"user_notes"`
}

func NewSearchState(sessionId string) *SearchState {
	return &SearchState{
		SessionId: sessionId,
		Turns:     []SearchTurn{},
		UserNotes: map[string]interface{}{},
	}
}

// Clone copies the state deeply enough that appending to or editing the
// copy never reaches the original.
func (s *SearchState) Clone() *SearchState {
	if s == nil {
		return nil
	}
	out := &SearchState{
		SessionId: s.SessionId,
		Turns:     make([]SearchTurn, len(s.Turns)),
		UserNotes: make(map[string]interface{}, len(s.UserNotes)),
	}
	for i, t := range s.Turns {
		t.InferredPrefs.ExtraSites = append([]string{}, t.InferredPrefs.ExtraSites...)
		t.ResultMeta.TopUrls = append([]string{}, t.ResultMeta.TopUrls...)
		out.Turns[i] = t
	}
	for k, v := range s.UserNotes {
		out.UserNotes[k] = v
	}
	return out
}

// RecentTurns returns at most n of the latest turns, oldest first.
func (s *SearchState) RecentTurns(n int) []SearchTurn {
	if n <= 0 || len(s.Turns) <= n {
		return s.Turns
	}
	return s.Turns[len(s.Turns)-n:]
}
