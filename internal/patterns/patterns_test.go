package patterns

import (
	"testing"

	"github.com/hyperjump/manabu/internal/models"
)

func TestMatchArithmetic(t *testing.T) {
	lib := NewLibrary()

	tests := []struct {
		name        string
		msg         string
		wantTerm    string
		wantClaimed float64
		wantPath    string
	}{
		{name: "addition", msg: "5 + 3 = 8", wantTerm: "5+3", wantClaimed: 8, wantPath: "addition"},
		{name: "multiplication with x", msg: "6 x 7 = 42", wantTerm: "6*7", wantClaimed: 42, wantPath: "multiplication"},
		{name: "chained", msg: "2 + 3 * 4 = 20", wantTerm: "2+3*4", wantClaimed: 20, wantPath: "addition"},
		{name: "no spaces", msg: "10-4=6", wantTerm: "10-4", wantClaimed: 6, wantPath: "subtraction"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ex := lib.Match(tt.msg)
			if ex == nil {
				t.Fatalf("Match(%q) = nil", tt.msg)
			}
			if ex.Category != models.CategoryMath || ex.Type != "calculation" {
				t.Errorf("category/type: got %s/%s", ex.Category, ex.Type)
			}
			if ex.Term != tt.wantTerm {
				t.Errorf("term: got %q, want %q", ex.Term, tt.wantTerm)
			}
			if ex.ClaimedResult != tt.wantClaimed {
				t.Errorf("claimed: got %v, want %v", ex.ClaimedResult, tt.wantClaimed)
			}
			if ex.Path != tt.wantPath {
				t.Errorf("path: got %q, want %q", ex.Path, tt.wantPath)
			}
		})
	}
}

func TestMatchCapital(t *testing.T) {
	lib := NewLibrary()

	ex := lib.Match("the capital of Brazil is Brasília")
	if ex == nil {
		t.Fatal("Match = nil")
	}
	if ex.Term != "brazil" {
		t.Errorf("term: got %q, want %q", ex.Term, "brazil")
	}
	if ex.Value != "Brasília" {
		t.Errorf("value: got %q, want %q", ex.Value, "Brasília")
	}
	if ex.Category != models.CategoryGeography || ex.Type != "capital" {
		t.Errorf("category/type: got %s/%s", ex.Category, ex.Type)
	}
}

func TestMatchLeader(t *testing.T) {
	lib := NewLibrary()

	tests := []struct {
		msg      string
		wantTerm string
	}{
		{"The president of France is Emmanuel Macron.", "france"},
		{"the leader of Canada is the prime minister", "canada"},
	}
	for _, tt := range tests {
		ex := lib.Match(tt.msg)
		if ex == nil {
			t.Fatalf("Match(%q) = nil", tt.msg)
		}
		if ex.Term != tt.wantTerm {
			t.Errorf("term: got %q, want %q", ex.Term, tt.wantTerm)
		}
		if ex.Category != models.CategoryPolitics {
			t.Errorf("category: got %s", ex.Category)
		}
	}
}

func TestMatchDefinition(t *testing.T) {
	lib := NewLibrary()

	tests := []struct {
		msg      string
		wantTerm string
	}{
		{"what is a closure?", "closure"},
		{"gravity means the attraction between masses", "gravity"},
		{"recursion is defined as a function calling itself", "recursion"},
	}
	for _, tt := range tests {
		ex := lib.Match(tt.msg)
		if ex == nil {
			t.Fatalf("Match(%q) = nil", tt.msg)
		}
		if ex.Term != tt.wantTerm {
			t.Errorf("Match(%q) term: got %q, want %q", tt.msg, ex.Term, tt.wantTerm)
		}
		if ex.Category != models.CategoryDefinition {
			t.Errorf("category: got %s", ex.Category)
		}
		if ex.Value != tt.msg {
			t.Errorf("value should be the full message, got %q", ex.Value)
		}
	}
}

func TestMatchPriorityOrder(t *testing.T) {
	lib := NewLibrary()

	// An arithmetic equation also contains "is"-free text that could fall
	// into later rules; the first rule must win.
	ex := lib.Match("5 + 3 = 8")
	if ex == nil || ex.Category != models.CategoryMath {
		t.Fatalf("arithmetic rule should win, got %+v", ex)
	}

	// Capital-of outranks the generic definition rule.
	ex = lib.Match("the capital of Japan is Tokyo")
	if ex == nil || ex.Category != models.CategoryGeography {
		t.Fatalf("capital rule should win, got %+v", ex)
	}
}

func TestMatchNoRule(t *testing.T) {
	lib := NewLibrary()

	for _, msg := range []string{
		"hello there",
		"the weather was nice yesterday",
		"",
	} {
		if ex := lib.Match(msg); ex != nil {
			t.Errorf("Match(%q) = %+v, want nil", msg, ex)
		}
	}
}

func TestMatchMalformedArithmeticFallsThrough(t *testing.T) {
	lib := NewLibrary()

	// Claimed result is not a number the arithmetic rule accepts; no other
	// rule should panic on arbitrary input either.
	if ex := lib.Match("5 + = 8"); ex != nil && ex.Category == models.CategoryMath {
		t.Errorf("malformed equation matched arithmetic rule: %+v", ex)
	}
}
