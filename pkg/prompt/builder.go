package prompt

import (
	"fmt"
	"strings"

	"smart-search-be/pkg/preference"
)

var academicSites = []string{
	"site:gov", "site:edu", "site:arxiv.org", "site:nih.gov",
	"site:nature.com", "site:acm.org", "site:ieee.org", "site:aclweb.org",
}

const rewriteBase = `You are a query rewriting assistant for web search engines (e.g., Tavily/Google).
Your task: convert a natural-language question into a concise, keyword-optimized search query.

Rules:
- Keep only high-signal keywords and entities. Remove filler words ("how", "what", "does", etc.).
- Prefer nouns and key verb phrases; include common synonyms if helpful.
- %s
- When academic bias is ON, consider adding site filters and filetype:pdf for research papers.
- Keep the query under ~15 words where possible.
- Do NOT answer the question. Output only the rewritten query text.
- Language: %s.

If helpful, add:
- time filters (e.g., "2023..2025")
- domain constraints (site:gov, site:edu or provided sites)
- format filters (filetype:pdf)

Examples:
User: "How does AI help agriculture?"
Output: AI applications in agriculture site:gov site:edu filetype:pdf

User: "Latest research about large language models safety"
Output: large language models safety survey site:arxiv.org site:acm.org 2023..2025 filetype:pdf

User: "What are European Union regulations on AI transparency?"
Output: EU AI Act transparency requirements site:europa.eu 2023..2025

User: "Best practices for RAG evaluation"
Output: retrieval augmented generation evaluation best practices site:arxiv.org site:aclweb.org filetype:pdf`

// Rewrite builds the query-rewriting prompt for a user query and its preferences.
func Rewrite(query string, prefs preference.Preferences) string {
	bias := "Use general high-quality sources."
	if prefs.PreferAcademic {
		bias = "Bias toward academic sources (e.g., site:gov, site:edu, arxiv.org, aclweb.org, nih.gov, nature.com)."
	}
	lang := "keep the output in the same language as the user's query"
	if prefs.TargetLanguage != "" {
		lang = "use the specified target language: " + prefs.TargetLanguage
	}

	return fmt.Sprintf(rewriteBase, bias, lang) + "\n" +
		"Now rewrite this query for web search:\n" +
		fmt.Sprintf("%q\n\n", query) +
		fmt.Sprintf("If useful, you may append: %q.\n", Hints(prefs)) +
		"Return only the rewritten query."
}

// Hints renders the site/time/filetype operators implied by prefs, e.g.
// "site:arxiv.org site:europa.eu 2025..2026 filetype:pdf".
func Hints(prefs preference.Preferences) string {
	var sites []string
	if prefs.PreferAcademic {
		sites = append(sites, academicSites...)
	}
	for _, s := range prefs.ExtraSites {
		if !strings.HasPrefix(s, "site:") {
			s = "site:" + s
		}
		sites = append(sites, s)
	}

	parts := dedupe(sites)
	if prefs.TimeRange != nil && *prefs.TimeRange != "" {
		parts = append(parts, *prefs.TimeRange)
	}
	if prefs.FiletypePdf || prefs.PreferAcademic {
		parts = append(parts, "filetype:pdf")
	}
	return strings.Join(parts, " ")
}

var styleLines = map[string]string{
	"concise":  "Be highly concise, only critical points.",
	"balanced": "Be concise but keep key context and facts.",
	"detailed": "Be more detailed, but avoid redundancy.",
}

// ChunkSummary builds the per-window summarization prompt.
func ChunkSummary(chunk, language, style string, includeBullets bool) string {
	langLine := "Write the summary in the same language as the input."
	switch language {
	case preference.LanguageVietnamese:
		langLine = "Write the summary in Vietnamese."
	case preference.LanguageEnglish:
		langLine = "Write the summary in English."
	}
	styleLine, ok := styleLines[style]
	if !ok {
		styleLine = styleLines["balanced"]
	}
	bullets := "Do not add bullet lists."
	if includeBullets {
		bullets = "Add a short bullet list of key takeaways at the end."
	}

	var b strings.Builder
	b.WriteString("You are a professional summarization assistant.\n")
	b.WriteString("Summarize the following content faithfully with no hallucinations.\n\n")
	b.WriteString("Rules:\n")
	fmt.Fprintf(&b, "- %s\n- %s\n", langLine, styleLine)
	b.WriteString("- Keep names, figures, citations if present.\n")
	b.WriteString("- Do not invent facts; if unsure, say 'unknown' or omit.\n")
	b.WriteString("- Preserve important entities (people, orgs, dates, numbers).\n")
	b.WriteString("- Use neutral tone and avoid opinions.\n")
	fmt.Fprintf(&b, "- %s\n\n", bullets)
	fmt.Fprintf(&b, "Content:\n\"\"\"%s\"\"\"\n", chunk)
	return b.String()
}

// MergeSummaries builds the prompt that fuses partial summaries into one of about maxWords words.
func MergeSummaries(parts []string, language string, maxWords int, title string, includeBullets bool) string {
	langLine := "Use the same language as the input."
	switch language {
	case preference.LanguageVietnamese:
		langLine = "Write the final summary in Vietnamese."
	case preference.LanguageEnglish:
		langLine = "Write the final summary in English."
	}
	bullets := "Do not include bullet lists."
	if includeBullets {
		bullets = "Include a brief bullet list of key takeaways at the end."
	}

	var b strings.Builder
	b.WriteString("You previously summarized multiple parts of a long document. Merge them into ONE coherent summary\n")
	fmt.Fprintf(&b, "of no more than ~%d words.\n\n", maxWords)
	if title != "" {
		fmt.Fprintf(&b, "Title/Topic to anchor: %s\n\n", title)
	}
	b.WriteString("Guidelines:\n")
	fmt.Fprintf(&b, "- %s\n", langLine)
	b.WriteString("- Keep chronology and logical flow.\n")
	b.WriteString("- Remove duplicates and contradictions across parts.\n")
	b.WriteString("- Prefer facts over opinions; avoid hallucinations.\n")
	b.WriteString("- If there are numbers/dates, keep them accurate.\n")
	fmt.Fprintf(&b, "- %s\n\n", bullets)
	fmt.Fprintf(&b, "Partial summaries:\n\"\"\"%s\"\"\"\n", strings.Join(parts, "\n\n---\n\n"))
	return b.String()
}

func dedupe(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, v := range in {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
