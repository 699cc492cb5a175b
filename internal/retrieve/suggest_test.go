package retrieve

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"github.com/hyperjump/manabu/internal/models"
)

func TestEditDistance(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"abc", "abc", 0},
		{"abc", "", 3},
		{"gravity", "gravty", 1},
		{"kitten", "sitting", 3},
		{"brazil", "brasil", 1},
	}
	for _, tt := range tests {
		if got := editDistance(tt.a, tt.b); got != tt.want {
			t.Errorf("editDistance(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestSuggest(t *testing.T) {
	store := &memStore{facts: []*models.Fact{
		{ID: "1", Content: "the capital of Brazil is Brasília", Term: "brazil"},
		{ID: "2", Content: "gravity means attraction", Term: "gravity"},
	}}
	r := New(store, nil, Config{}, zap.NewNop())

	got, err := r.Suggest(context.Background(), "what about brasil")
	if err != nil {
		t.Fatalf("Suggest: %v", err)
	}
	if got != "brazil" {
		t.Errorf("Suggest = %q, want %q", got, "brazil")
	}
}

func TestSuggestNoCloseTerm(t *testing.T) {
	store := &memStore{facts: []*models.Fact{
		{ID: "1", Content: "the capital of Brazil is Brasília", Term: "brazil"},
	}}
	r := New(store, nil, Config{}, zap.NewNop())

	got, err := r.Suggest(context.Background(), "photosynthesis")
	if err != nil {
		t.Fatalf("Suggest: %v", err)
	}
	if got != "" {
		t.Errorf("Suggest = %q, want empty", got)
	}
}

func TestSuggestExactTermNotSuggested(t *testing.T) {
	store := &memStore{facts: []*models.Fact{
		{ID: "1", Content: "gravity means attraction", Term: "gravity"},
	}}
	r := New(store, nil, Config{}, zap.NewNop())

	got, err := r.Suggest(context.Background(), "gravity")
	if err != nil {
		t.Fatalf("Suggest: %v", err)
	}
	if got != "" {
		t.Errorf("Suggest for exact term = %q, want empty", got)
	}
}
