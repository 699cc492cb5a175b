// Package models defines core data structures for facts, classifications, and answers.
package models

import "time"

// Category is a coarse topical classification for a fact or message.
type Category string

const (
	// CategoryMath covers arithmetic facts and calculations.
	CategoryMath Category = "math"
	// CategoryGeography covers geographic facts (capitals, locations).
	CategoryGeography Category = "geography"
	// CategoryPolitics covers political facts (leaders, governments).
	CategoryPolitics Category = "politics"
	// CategoryHTML covers HTML markup knowledge.
	CategoryHTML Category = "html"
	// CategoryCSS covers CSS styling knowledge.
	CategoryCSS Category = "css"
	// CategoryJavaScript covers JavaScript programming knowledge.
	CategoryJavaScript Category = "javascript"
	// CategoryDefinition covers generic "X is Y" definitions.
	CategoryDefinition Category = "definition"
	// CategoryGeneral is the fallback when no other category wins.
	CategoryGeneral Category = "general"
)

// Categories lists all known categories in a fixed order.
// Iteration order matters for deterministic tie-breaking.
var Categories = []Category{
	CategoryMath,
	CategoryGeography,
	CategoryPolitics,
	CategoryHTML,
	CategoryCSS,
	CategoryJavaScript,
	CategoryDefinition,
	CategoryGeneral,
}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Provenance tags recorded in Fact.Source.
const (
	// SourceUserTeaching marks facts extracted from an explicit teaching message.
	SourceUserTeaching = "user_teaching"
	// SourceUserInput marks raw conversational records stored as passive logging.
	SourceUserInput = "user_input"
	// SourceBasicMath marks seeded arithmetic table facts.
	SourceBasicMath = "basic_math"
	// SourceCalculated marks facts derived by the arithmetic evaluator.
	SourceCalculated = "calculated"
	// SourceFileIngest marks facts extracted from ingested files.
	SourceFileIngest = "file_ingest"
	// SourceWebScrape marks facts extracted from scraped web pages.
	SourceWebScrape = "web_scrape"
)

// Fact is a stored unit of knowledge. Facts are immutable after creation:
// learning always appends, never edits, so duplicate suppression happens at
// write time (content lookup) or read time (retrieval dedup), never by update.
type Fact struct {
	ID string `json:"id" bson:"_id,omitempty"`
	// Content is the raw learned text or a formatted "expr = result" string.
	// Always non-empty.
	Content string `json:"content" bson:"content"`
	// Term is the canonical subject, lower-cased and trimmed, used as an
	// equality lookup key. Not unique; most-recent wins on conflict.
	Term     string   `json:"term,omitempty" bson:"term,omitempty"`
	Category Category `json:"category,omitempty" bson:"category,omitempty"`
	// Type is the fine-grained kind within a category, e.g. "calculation",
	// "capital", "leader", "concept".
	Type string `json:"type,omitempty" bson:"type,omitempty"`
	// Source is the provenance tag. Always non-empty.
	Source string `json:"source" bson:"source"`
	// Path is a logical grouping key, e.g. "addition" or "html/tags".
	Path string `json:"path" bson:"path"`
	// Tokens caches the normalized tokenization of Content for co-occurrence
	// scoring by the classifier.
	Tokens []string `json:"tokens,omitempty" bson:"tokens,omitempty"`
	// Confidence is the classifier certainty at creation time, in [0,1].
	Confidence float64   `json:"confidence,omitempty" bson:"confidence,omitempty"`
	CreatedAt  time.Time `json:"created_at" bson:"created_at"`
}

// Classification is the ephemeral result of classifying a message. It is
// consumed immediately by the responder and extractor and never stored
// directly; only its effect on a Fact is persisted.
type Classification struct {
	Category Category `json:"category"`
	// Confidence is bestScore/tokenCount, clamped to [0,1].
	Confidence float64 `json:"confidence"`
	// MatchedTokens are the message tokens that contributed to the score.
	MatchedTokens []string `json:"matched_tokens,omitempty"`
}

// Answer is the responder's output for one message.
type Answer struct {
	Text       string   `json:"response"`
	Confidence float64  `json:"confidence"`
	Category   Category `json:"category,omitempty"`
	// Learned is true when the message taught the engine a new fact.
	Learned bool `json:"learned,omitempty"`
	// Suggestion holds a "did you mean" term when retrieval missed but a
	// near-match term exists in the store.
	Suggestion string `json:"suggestion,omitempty"`
}
