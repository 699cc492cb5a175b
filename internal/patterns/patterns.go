// Package patterns holds the ordered teaching rules that turn a user message
// into a structured fact. Rules are tried top to bottom and the first match
// wins; there is no scoring among teaching rules, so priority lives entirely
// in the slice order.
package patterns

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/hyperjump/manabu/internal/arith"
	"github.com/hyperjump/manabu/internal/models"
)

// Extraction is a structured fact draft produced by a matched teaching rule.
// The responder fills in provenance, tokens, and timestamps before persisting.
type Extraction struct {
	// Term is the canonical subject, lower-cased and trimmed.
	Term string
	// Value is the extracted answer text.
	Value string
	// Content is what gets persisted as the fact body.
	Content  string
	Category models.Category
	// Type is the fine-grained kind within the category.
	Type string
	// Path is the logical grouping key for the fact.
	Path string
	// ClaimedResult holds the asserted numeric result for arithmetic rules;
	// the responder validates it against the evaluator before persisting.
	ClaimedResult float64
	// Expression holds the left side of an arithmetic teaching, verbatim.
	Expression string
}

// Rule is one teaching pattern: a matcher, the category it implies, and an
// extractor building the structured fact from the match groups.
type Rule struct {
	Name    string
	matcher *regexp.Regexp
	extract func(msg string, groups []string) *Extraction
}

// Library is the fixed, ordered list of teaching rules.
type Library struct {
	rules []Rule
}

// NewLibrary returns the library with the required rule set in priority
// order: arithmetic, capital-of, leader-of, generic definition.
func NewLibrary() *Library {
	return &Library{rules: []Rule{
		{
			Name:    "arithmetic",
			matcher: regexp.MustCompile(`^\s*(\d+(?:\.\d+)?(?:\s*[-+*x/]\s*\d+(?:\.\d+)?)+)\s*=\s*(-?\d+(?:\.\d+)?)\s*$`),
			extract: extractArithmetic,
		},
		{
			Name:    "capital-of",
			matcher: regexp.MustCompile(`(?i)\bthe\s+capital\s+(?:city\s+)?of\s+(.+?)\s+is\s+(.+?)\s*[.!]?\s*$`),
			extract: extractCapital,
		},
		{
			Name:    "leader-of",
			matcher: regexp.MustCompile(`(?i)\bthe\s+(?:president|leader|prime\s+minister)\s+of\s+(.+?)\s+is\s+(.+?)\s*[.!]?\s*$`),
			extract: extractLeader,
		},
		{
			Name:    "definition",
			matcher: regexp.MustCompile(`(?i)^\s*(?:what\s+is\s+(?:an?\s+|the\s+)?(.+?)\??|(.+?)\s+(?:means|is\s+defined\s+as)\s+(.+?))\s*$`),
			extract: extractDefinition,
		},
	}}
}

// Rules returns the teaching rules in priority order.
func (l *Library) Rules() []Rule {
	return l.rules
}

// Match tries every rule in order and returns the first extraction, or nil
// when no structured rule matches. A nil result is not a failure: the caller
// degrades to passive logging (the raw message stored as a general record).
func (l *Library) Match(msg string) *Extraction {
	for _, r := range l.rules {
		groups := r.matcher.FindStringSubmatch(msg)
		if groups == nil {
			continue
		}
		if ex := r.extract(msg, groups); ex != nil {
			return ex
		}
	}
	return nil
}

func extractArithmetic(msg string, groups []string) *Extraction {
	claimed, err := strconv.ParseFloat(groups[2], 64)
	if err != nil || !arith.IsFinite(claimed) {
		return nil
	}
	left := strings.TrimSpace(groups[1])
	return &Extraction{
		Term:          arith.Compact(left),
		Value:         groups[2],
		Content:       strings.TrimSpace(msg),
		Category:      models.CategoryMath,
		Type:          "calculation",
		Path:          arithPath(left),
		ClaimedResult: claimed,
		Expression:    left,
	}
}

// arithPath derives the grouping key from the first operator in the
// expression.
func arithPath(expr string) string {
	for _, r := range expr {
		switch r {
		case '+':
			return "addition"
		case '-':
			return "subtraction"
		case '*', 'x':
			return "multiplication"
		case '/':
			return "division"
		}
	}
	return "arithmetic"
}

func extractCapital(msg string, groups []string) *Extraction {
	term := strings.ToLower(strings.TrimSpace(groups[1]))
	value := strings.TrimSpace(groups[2])
	if term == "" || value == "" {
		return nil
	}
	return &Extraction{
		Term:     term,
		Value:    value,
		Content:  strings.TrimSpace(msg),
		Category: models.CategoryGeography,
		Type:     "capital",
		Path:     "geography/capitals",
	}
}

func extractLeader(msg string, groups []string) *Extraction {
	term := strings.ToLower(strings.TrimSpace(groups[1]))
	value := strings.TrimSpace(groups[2])
	if term == "" || value == "" {
		return nil
	}
	return &Extraction{
		Term:     term,
		Value:    value,
		Content:  strings.TrimSpace(msg),
		Category: models.CategoryPolitics,
		Type:     "leader",
		Path:     "politics/leaders",
	}
}

func extractDefinition(msg string, groups []string) *Extraction {
	// The matcher has two alternatives: "what is X" (group 1) and
	// "X means/is defined as Y" (groups 2, 3).
	term := strings.TrimSpace(groups[1])
	if term == "" {
		term = strings.TrimSpace(groups[2])
	}
	term = strings.ToLower(strings.TrimSuffix(term, "?"))
	if term == "" {
		return nil
	}
	return &Extraction{
		Term: term,
		// The full message is the value: a definition question carries its
		// own phrasing, and a "means" statement is self-contained.
		Value:    strings.TrimSpace(msg),
		Content:  strings.TrimSpace(msg),
		Category: models.CategoryDefinition,
		Type:     "concept",
		Path:     "definitions",
	}
}
