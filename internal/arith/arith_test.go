package arith

import (
	"errors"
	"testing"
)

func TestEvaluateLeftToRight(t *testing.T) {
	tests := []struct {
		name string
		expr string
		want float64
	}{
		{name: "addition", expr: "7 + 2", want: 9},
		{name: "subtraction", expr: "10 - 4", want: 6},
		{name: "multiplication", expr: "6 * 7", want: 42},
		{name: "x as multiply", expr: "6 x 7", want: 42},
		{name: "division", expr: "20 / 5", want: 4},
		// No operator precedence: evaluation is strictly left to right.
		{name: "add then multiply", expr: "2 + 3 * 4", want: 20},
		{name: "multiply then add", expr: "3 * 4 + 2", want: 14},
		{name: "chained subtraction", expr: "10 - 2 - 3", want: 5},
		{name: "parentheses", expr: "2 * (3 + 4)", want: 14},
		{name: "nested parentheses", expr: "((2 + 2)) * 3", want: 12},
		{name: "no spaces", expr: "7+2", want: 9},
		{name: "decimals", expr: "1.5 + 2.5", want: 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Evaluate(tt.expr)
			if err != nil {
				t.Fatalf("Evaluate(%q) error: %v", tt.expr, err)
			}
			if got != tt.want {
				t.Errorf("Evaluate(%q) = %v, want %v", tt.expr, got, tt.want)
			}
		})
	}
}

func TestEvaluateInvalid(t *testing.T) {
	tests := []struct {
		name string
		expr string
	}{
		{name: "letters", expr: "two + two"},
		{name: "disallowed character", expr: "2 + 2; rm -rf"},
		{name: "empty", expr: ""},
		{name: "trailing operator", expr: "2 +"},
		{name: "leading operator", expr: "+ 2"},
		{name: "unclosed paren", expr: "(2 + 3"},
		{name: "double operator", expr: "2 + * 3"},
		{name: "equation not expression", expr: "2 + 2 = 4 extra ="},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Evaluate(tt.expr)
			if !errors.Is(err, ErrInvalidExpression) {
				t.Errorf("Evaluate(%q) error = %v, want ErrInvalidExpression", tt.expr, err)
			}
		})
	}
}

func TestEvaluateDivisionByZero(t *testing.T) {
	got, err := Evaluate("5 / 0")
	if err != nil {
		t.Fatalf("Evaluate error: %v", err)
	}
	if IsFinite(got) {
		t.Errorf("Evaluate(5/0) = %v, want non-finite", got)
	}
}

func TestIsExpression(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"7 + 2", true},
		{"2*(3+4)", true},
		{"5 + 3 = 8", false}, // taught equation, not a calculation
		{"what is go", false},
		{"42", false}, // no operator
		{"+ -", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := IsExpression(tt.in); got != tt.want {
			t.Errorf("IsExpression(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestValidateEquation(t *testing.T) {
	tests := []struct {
		name    string
		left    string
		claimed float64
		want    bool
	}{
		{name: "correct sum", left: "5 + 3", claimed: 8, want: true},
		{name: "wrong sum", left: "5 + 3", claimed: 9, want: false},
		{name: "left to right chain", left: "2 + 3 * 4", claimed: 20, want: true},
		{name: "precedence answer rejected", left: "2 + 3 * 4", claimed: 14, want: false},
		{name: "division by zero never validates", left: "1 / 0", claimed: 0, want: false},
		{name: "unparseable left side", left: "five + 3", claimed: 8, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValidateEquation(tt.left, tt.claimed); got != tt.want {
				t.Errorf("ValidateEquation(%q, %v) = %v, want %v", tt.left, tt.claimed, got, tt.want)
			}
		})
	}
}

func TestFormatResult(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{9, "9"},
		{4.5, "4.5"},
		{-3, "-3"},
	}
	for _, tt := range tests {
		if got := FormatResult(tt.in); got != tt.want {
			t.Errorf("FormatResult(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCompact(t *testing.T) {
	if got := Compact("5 + 3"); got != "5+3" {
		t.Errorf("Compact = %q, want %q", got, "5+3")
	}
	if got := Compact("6 x 7"); got != "6*7" {
		t.Errorf("Compact = %q, want %q", got, "6*7")
	}
}
