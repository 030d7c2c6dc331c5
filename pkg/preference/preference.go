package preference

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

const (
	LanguageEnglish    = "en"
	LanguageVietnamese = "vi"
)

// Request carries the caller's explicit overrides. A nil field means "infer it".
type Request struct {
	PreferAcademic *bool    `json:"prefer_academic,omitempty"`
	TimeRange      *string  `json:"time_range,omitempty"`
	ExtraSites     []string `json:"extra_sites,omitempty"`
	FiletypePdf    *bool    `json:"filetype_pdf,omitempty"`
	TargetLanguage *string  `json:"target_language,omitempty"`
}

// Preferences is the resolved set of search hints for a single turn.
type Preferences struct {
	PreferAcademic bool     `json:"prefer_academic"`
	TimeRange      *string  `json:"time_range"`
	ExtraSites     []string `json:"extra_sites"`
	FiletypePdf    bool     `json:"filetype_pdf"`
	TargetLanguage string   `json:"target_language"`
}

var (
	academicKeywords = []string{
		"paper", "research", "survey", "sota", "benchmark", "peer-reviewed",
		"arxiv", "doi", "regulation", "law", "standard",
	}
	recencyKeywords = []string{"latest", "recent", "gần đây", "mới nhất", "this year"}
	pdfKeywords     = []string{"paper", "report", "whitepaper"}

	euPattern  = regexp.MustCompile(`\beu\b`)
	whoPattern = regexp.MustCompile(`\bwho\b`)
	viPattern  = regexp.MustCompile(`[àáảãạâầấẩẫậăằắẳẵặđèéẻẽẹêềếểễệìíỉĩịòóỏõọôồốổỗộơờớởỡợùúủũụưừứửữựỳýỷỹỵ]`)
)

// Infer derives preferences from the query text, letting any explicit
// override in req win over the heuristic. now is used for the recency window.
func Infer(query string, req Request, now time.Time) Preferences {
	q := strings.ToLower(query)

	academic := containsAny(q, academicKeywords)
	if req.PreferAcademic != nil {
		academic = *req.PreferAcademic
	}

	var timeRange *string
	if req.TimeRange != nil {
		tr := *req.TimeRange
		timeRange = &tr
	} else if containsAny(q, recencyKeywords) {
		tr := fmt.Sprintf("%d..%d", now.Year(), now.Year()+1)
		timeRange = &tr
	}

	sites := newOrderedSet()
	for _, s := range req.ExtraSites {
		sites.add(s)
	}
	if euPattern.MatchString(q) || strings.Contains(q, "european union") || strings.Contains(q, "eu ai act") {
		sites.add("europa.eu")
	}
	if whoPattern.MatchString(q) {
		sites.add("who.int")
	}

	pdf := academic || containsAny(q, pdfKeywords)
	if req.FiletypePdf != nil {
		pdf = *req.FiletypePdf
	}

	lang := DetectLanguage(query)
	if req.TargetLanguage != nil && *req.TargetLanguage != "" {
		lang = *req.TargetLanguage
	}

	return Preferences{
		PreferAcademic: academic,
		TimeRange:      timeRange,
		ExtraSites:     sites.items,
		FiletypePdf:    pdf,
		TargetLanguage: lang,
	}
}

// DetectLanguage reports "vi" when the text carries Vietnamese diacritics, "en" otherwise.
func DetectLanguage(text string) string {
	if viPattern.MatchString(strings.ToLower(text)) {
		return LanguageVietnamese
	}
	return LanguageEnglish
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}

type orderedSet struct {
	seen  map[string]struct{}
	items []string
}

func newOrderedSet() *orderedSet {
	return &orderedSet{seen: make(map[string]struct{}), items: []string{}}
}

func (s *orderedSet) add(v string) {
	v = strings.TrimSpace(v)
	if v == "" {
		return
	}
	if _, ok := s.seen[v]; ok {
		return
	}
	s.seen[v] = struct{}{}
	s.items = append(s.items, v)
}
