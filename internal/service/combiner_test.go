package service

import (
	"testing"

	"smart-search-be/internal/entity"

	"github.com/stretchr/testify/assert"
)

func turnOf(original string, rewritten *string) entity.SearchTurn {
	return entity.SearchTurn{OriginalQuery: original, RewrittenQuery: rewritten}
}

func TestCombineContext(t *testing.T) {
	r := "rewritten"
	empty := ""

	tests := []struct {
		name    string
		prior   []entity.SearchTurn
		scraped []string
		want    string
	}{
		{
			name:    "no history",
			scraped: []string{"page one", "page two"},
			want:    "page one\n\npage two",
		},
		{
			name: "no history no content",
			want: "",
		},
		{
			name:    "rewrite or original",
			prior:   []entity.SearchTurn{turnOf("a", &r), turnOf("b", nil), turnOf("c", &empty)},
			scraped: []string{"page"},
			want:    "Previous search context:\na → rewritten\n\nb → b\n\nc → c\n\nCurrent content:\npage",
		},
		{
			name:  "only last three turns",
			prior: []entity.SearchTurn{turnOf("1", nil), turnOf("2", nil), turnOf("3", nil), turnOf("4", nil)},
			want:  "Previous search context:\n2 → 2\n\n3 → 3\n\n4 → 4\n\nCurrent content:\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CombineContext(tt.prior, tt.scraped))
		})
	}
}
