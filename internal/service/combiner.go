package service

import (
	"strings"

	"smart-search-be/internal/entity"
)

const historyTurns = 3

// CombineContext builds the summarizer input from the last three prior turns
// and the scraped page texts.
func CombineContext(prior []entity.SearchTurn, scraped []string) string {
	if len(prior) > historyTurns {
		prior = prior[len(prior)-historyTurns:]
	}

	content := strings.Join(scraped, "\n\n")
	if len(prior) == 0 {
		return content
	}

	lines := make([]string, len(prior))
	for i, t := range prior {
		lines[i] = t.HistoryLine()
	}
	return "Previous search context:\n" + strings.Join(lines, "\n\n") + "\n\nCurrent content:\n" + content
}
