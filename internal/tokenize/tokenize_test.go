package tokenize

import (
	"reflect"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{
			name: "punctuation stripped",
			in:   "Hello, World!!",
			want: []string{"hello", "world"},
		},
		{
			name: "whitespace collapsed",
			in:   "  the\tcapital \n of   Brazil ",
			want: []string{"the", "capital", "of", "brazil"},
		},
		{
			name: "digits kept",
			in:   "5 + 3 = 8",
			want: []string{"5", "3", "8"},
		},
		{
			name: "empty input",
			in:   "",
			want: nil,
		},
		{
			name: "only punctuation",
			in:   "?!...,;",
			want: nil,
		},
		{
			name: "unicode letters kept",
			in:   "Brasília é linda",
			want: []string{"brasília", "é", "linda"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.in)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Normalize(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalizeDeterministic(t *testing.T) {
	in := "The Capital of BRAZIL is Brasília!"
	first := Normalize(in)
	second := Normalize(in)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("Normalize not deterministic: %v vs %v", first, second)
	}
}

func TestSearchTerms(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{
			name: "short tokens dropped",
			in:   "what is an atom",
			want: []string{"what", "atom"},
		},
		{
			name: "all short",
			in:   "a b cd",
			want: []string{},
		},
		{
			name: "three-char boundary excluded at two",
			in:   "an tag div",
			want: []string{"tag", "div"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SearchTerms(tt.in)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("SearchTerms(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestStripHTML(t *testing.T) {
	in := "<p>The <b>div</b> element is   a container.</p>"
	want := "The div element is a container."
	if got := StripHTML(in); got != want {
		t.Errorf("StripHTML = %q, want %q", got, want)
	}
}

func TestCollapseWhitespace(t *testing.T) {
	in := "  spaced \t out\n\ncontent  "
	want := "spaced out content"
	if got := CollapseWhitespace(in); got != want {
		t.Errorf("CollapseWhitespace = %q, want %q", got, want)
	}
}
