package mapper

import (
	"testing"
	"time"

	"smart-search-be/internal/entity"
	"smart-search-be/internal/model"
	"smart-search-be/pkg/preference"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func TestSearchTurnToModel_StoresJSONColumns(t *testing.T) {
	m := NewSearchMapper()
	summary := "short summary"

	out := m.SearchTurnToModel(&entity.SearchTurn{
		Id:            uuid.New(),
		SessionId:     "s1",
		Timestamp:     time.Now(),
		OriginalQuery: "q",
		UsedQuery:     "q",
		Provider:      "tavily",
		InferredPrefs: preference.Preferences{ExtraSites: []string{"who.int"}, TargetLanguage: "en"},
		ResultMeta:    entity.ResultMeta{TopUrls: []string{"https://a"}, LatencyMs: 12, Summary: &summary},
	})

	require.NotNil(t, out)
	assert.JSONEq(t, `{"prefer_academic":false,"time_range":null,"extra_sites":["who.int"],"filetype_pdf":false,"target_language":"en"}`, string(out.InferredPrefs))
	assert.JSONEq(t, `{"top_urls":["https://a"],"latency_ms":12,"summary":"short summary"}`, string(out.ResultMeta))
}

func TestSearchTurnToEntity_ToleratesBadJSON(t *testing.T) {
	e := NewSearchMapper().SearchTurnToEntity(&model.SearchTurn{
		SessionId:     "s1",
		OriginalQuery: "q",
		InferredPrefs: datatypes.JSON("not json"),
		ResultMeta:    datatypes.JSON(`{"top_urls":["u"]}`),
	})

	require.NotNil(t, e)
	assert.Equal(t, []string{"u"}, e.ResultMeta.TopUrls)
	assert.Equal(t, "", e.InferredPrefs.TargetLanguage)
}

func TestMcpLogToModel_NormalizesLevel(t *testing.T) {
	out := NewSearchMapper().McpLogToModel(&entity.McpLog{Level: "warn", Message: "m"})
	assert.Equal(t, "warning", out.Level)
	assert.JSONEq(t, `{}`, string(out.Meta))
}
