package respond

import (
	"testing"

	"github.com/hyperjump/manabu/internal/models"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		name string
		fact *models.Fact
		want string
	}{
		{
			name: "html tag sentence when content omits the term",
			fact: &models.Fact{Term: "div", Category: models.CategoryHTML, Content: "a generic block container"},
			want: "The div tag is a generic block container",
		},
		{
			name: "html content naming the term passes through",
			fact: &models.Fact{Term: "div", Category: models.CategoryHTML, Content: "the div tag is a generic block container"},
			want: "the div tag is a generic block container",
		},
		{
			name: "geography gets the term prefix",
			fact: &models.Fact{Term: "brazil", Category: models.CategoryGeography, Content: "the capital of Brazil is Brasília"},
			want: "brazil: the capital of Brazil is Brasília",
		},
		{
			name: "politics gets the term prefix",
			fact: &models.Fact{Term: "france", Category: models.CategoryPolitics, Content: "the president of France is Jacques"},
			want: "france: the president of France is Jacques",
		},
		{
			name: "default strips markup and collapses whitespace",
			fact: &models.Fact{Category: models.CategoryDefinition, Content: "<p>gravity   means <b>attraction</b></p>"},
			want: "gravity means attraction",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Format(tt.fact); got != tt.want {
				t.Errorf("Format = %q, want %q", got, tt.want)
			}
		})
	}
}
