package retrieve

import (
	"strings"

	"github.com/hyperjump/manabu/internal/models"
	"github.com/hyperjump/manabu/internal/tokenize"
)

// noiseMarkers flag navigation and account boilerplate that leaks in from
// scraped pages; content containing any of them is never useful.
var noiseMarkers = []string{
	"sign in",
	"log in",
	"login",
	"sign up",
	"subscribe",
	"cookie",
	"navigation",
	"all rights reserved",
	"click here",
	"skip to content",
}

// definitionalMarkers and technicalMarkers identify content that actually
// states knowledge rather than merely mentioning the query words.
var (
	definitionalMarkers = []string{"is", "means", "defines", "defined"}
	technicalMarkers    = []string{"tag", "element", "attribute"}
)

// Deduplicate collapses facts whose normalized content (lower-cased,
// whitespace-collapsed) is identical, keeping the first occurrence. Since the
// store returns facts most recent first, the survivor is always the newest
// copy, so append-only writes and racing duplicate teachings get absorbed at
// read time.
func Deduplicate(facts []*models.Fact) []*models.Fact {
	seen := make(map[string]bool, len(facts))
	out := make([]*models.Fact, 0, len(facts))
	for _, fact := range facts {
		key := strings.ToLower(tokenize.CollapseWhitespace(fact.Content))
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, fact)
	}
	return out
}

// filterUseful discards candidates that fail the utility rule: useful content
// carries a definitional or technical marker, carries no noise marker, and
// has length within bounds. The length bounds are absolute: a marker never
// rescues content that is too short or too long.
func (r *Retriever) filterUseful(facts []*models.Fact) []*models.Fact {
	out := make([]*models.Fact, 0, len(facts))
	for _, fact := range facts {
		if r.isUseful(fact.Content) {
			out = append(out, fact)
		}
	}
	return out
}

func (r *Retriever) isUseful(content string) bool {
	return Useful(content, r.config.MinContentLength, r.config.MaxContentLength)
}

// Useful reports whether content passes the utility rule with the given
// length bounds. Exported so ingestion can apply the same gate before
// storing scraped or extracted statements.
func Useful(content string, minLen, maxLen int) bool {
	if len(content) < minLen || len(content) > maxLen {
		return false
	}
	lower := strings.ToLower(content)
	for _, marker := range noiseMarkers {
		if strings.Contains(lower, marker) {
			return false
		}
	}
	tokens := tokenize.Normalize(content)
	tokenSet := make(map[string]bool, len(tokens))
	for _, tok := range tokens {
		tokenSet[tok] = true
	}
	for _, marker := range definitionalMarkers {
		if tokenSet[marker] {
			return true
		}
	}
	for _, marker := range technicalMarkers {
		if tokenSet[marker] {
			return true
		}
	}
	return false
}
