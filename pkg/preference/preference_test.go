package preference

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func boolPtr(b bool) *bool { return &b }
func strPtr(s string) *string { return &s }

func TestInfer(t *testing.T) {
	now := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		query    string
		req      Request
		academic bool
		timeRng  *string
		sites    []string
		pdf      bool
		lang     string
	}{
		{
			name:     "academic keyword implies pdf",
			query:    "latest research on LLM safety",
			academic: true,
			timeRng:  strPtr("2025..2026"),
			sites:    []string{},
			pdf:      true,
			lang:     "en",
		},
		{
			name:  "plain query",
			query: "how to bake bread",
			sites: []string{},
			lang:  "en",
		},
		{
			name:  "vietnamese with who",
			query: "khuyến nghị của WHO về vắc-xin",
			sites: []string{"who.int"},
			lang:  "vi",
		},
		{
			name:  "eu word boundary",
			query: "EU AI Act transparency report",
			sites: []string{"europa.eu"},
			pdf:   true,
			lang:  "en",
		},
		{
			name:  "eu inside another word is ignored",
			query: "neural network museum guide",
			sites: []string{},
			lang:  "en",
		},
		{
			name:  "override wins",
			query: "latest research paper",
			req: Request{
				PreferAcademic: boolPtr(false),
				TimeRange:      strPtr("2020..2021"),
				FiletypePdf:    boolPtr(false),
				TargetLanguage: strPtr("vi"),
			},
			timeRng: strPtr("2020..2021"),
			sites:   []string{},
			lang:    "vi",
		},
		{
			name:  "extra sites keep order and dedupe",
			query: "european union who guidelines",
			req:   Request{ExtraSites: []string{"b.org", "a.org", "b.org"}},
			sites: []string{"b.org", "a.org", "europa.eu", "who.int"},
			lang:  "en",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Infer(tt.query, tt.req, now)

			assert.Equal(t, tt.academic, p.PreferAcademic)
			assert.Equal(t, tt.timeRng, p.TimeRange)
			assert.Equal(t, tt.sites, p.ExtraSites)
			assert.Equal(t, tt.pdf, p.FiletypePdf)
			assert.Equal(t, tt.lang, p.TargetLanguage)
		})
	}
}

func TestInfer_EmptyLanguageOverrideFallsBackToDetection(t *testing.T) {
	p := Infer("tin tức mới nhất", Request{TargetLanguage: strPtr("")}, time.Now())
	assert.Equal(t, "vi", p.TargetLanguage)
	assert.NotNil(t, p.TimeRange)
}

func TestDetectLanguage(t *testing.T) {
	assert.Equal(t, "en", DetectLanguage("hello world"))
	assert.Equal(t, "vi", DetectLanguage("Xin chào thế giới"))
	assert.Equal(t, "vi", DetectLanguage("ĐÀ NẴNG"))
}
