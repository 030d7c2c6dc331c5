package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFromEnv_Defaults(t *testing.T) {
	t.Setenv("LLM_PROVIDER", "gemini")
	t.Setenv("SCRAPE_TIMEOUT", "not-a-duration")

	cfg := FromEnv()

	assert.Equal(t, "gemini", cfg.Ai.LLMProvider)
	assert.Equal(t, 15*time.Second, cfg.Scrape.Timeout)
	assert.Equal(t, 10000, cfg.Scrape.MaxChars)
	assert.Equal(t, "text", cfg.Scrape.Mode)
	assert.Equal(t, 250, cfg.Search.SummaryMaxWords)
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("STATE_STORE", "redis")
	t.Setenv("STATE_TTL", "2h")
	t.Setenv("SEARCH_MAX_RETAINED_TURNS", "20")
	t.Setenv("SCRAPE_RATE_PER_SECOND", "2.5")
	t.Setenv("GOOGLE_GEMINI_API_KEY", "")
	t.Setenv("GEMINI_API_KEY", "g-key")
	t.Setenv("GO_ENV", "production")

	cfg := FromEnv()

	assert.Equal(t, "redis", cfg.Search.StateStore)
	assert.Equal(t, 2*time.Hour, cfg.Search.StateTTL)
	assert.Equal(t, 20, cfg.Search.MaxRetainedTurns)
	assert.Equal(t, 2.5, cfg.Scrape.RatePerSecond)
	assert.Equal(t, "g-key", cfg.Keys.GoogleGemini)
	assert.True(t, cfg.App.IsProduction())
}
