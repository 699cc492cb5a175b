// Package tokenize provides text normalization and tokenization shared by the
// classifier and the retriever, so that scoring is comparable across both.
package tokenize

import (
	"regexp"
	"strings"
)

var (
	nonWord    = regexp.MustCompile(`[^\p{L}\p{N}\s]+`)
	whitespace = regexp.MustCompile(`\s+`)
	htmlTag    = regexp.MustCompile(`<[^>]*>`)
)

// Normalize lower-cases text, strips all characters outside the word/space
// class, collapses whitespace, and splits on whitespace, dropping empty
// tokens. It is deterministic and total: any input yields a (possibly empty)
// token slice, never an error.
func Normalize(text string) []string {
	normalized := NormalizeString(text)
	if normalized == "" {
		return nil
	}
	return strings.Split(normalized, " ")
}

// NormalizeString returns the normalized form of text as a single
// space-separated string.
func NormalizeString(text string) string {
	text = strings.ToLower(text)
	text = nonWord.ReplaceAllString(text, " ")
	text = whitespace.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// SearchTerms returns the normalized tokens of text longer than two
// characters. Short tokens carry no retrieval signal.
func SearchTerms(text string) []string {
	tokens := Normalize(text)
	terms := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if len(tok) > 2 {
			terms = append(terms, tok)
		}
	}
	return terms
}

// StripHTML removes HTML tags from text and collapses the remaining
// whitespace. Used when rendering stored content back to the user.
func StripHTML(text string) string {
	text = htmlTag.ReplaceAllString(text, " ")
	text = whitespace.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// CollapseWhitespace folds runs of whitespace in text into single spaces and
// trims the ends. Content equality after collapsing (plus lower-casing) is
// the retriever's deduplication key.
func CollapseWhitespace(text string) string {
	return strings.TrimSpace(whitespace.ReplaceAllString(text, " "))
}
