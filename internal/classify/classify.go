// Package classify assigns a knowledge category to a message using fixed
// keyword tables plus a historical boost from previously stored facts. It is
// plain frequency scoring, not a trained model.
package classify

import (
	"context"

	"go.uber.org/zap"

	"github.com/hyperjump/manabu/internal/models"
	"github.com/hyperjump/manabu/internal/storage"
	"github.com/hyperjump/manabu/internal/tokenize"
)

// historyLimit bounds how many stored facts contribute co-occurrence boosts
// per classification.
const historyLimit = 200

// Store is the read-only slice of the fact store the classifier needs.
type Store interface {
	Query(ctx context.Context, f storage.Filter) ([]*models.Fact, error)
}

// keywordTables maps each category to its fixed keyword set. Scoring counts
// message tokens present in a set; the general category owns no keywords and
// wins only by tie resolution.
var keywordTables = map[models.Category]map[string]bool{
	models.CategoryMath: toSet(
		"plus", "minus", "times", "divided", "sum", "difference", "product",
		"quotient", "calculate", "equals", "math", "number", "arithmetic",
		"multiply", "subtract", "add",
	),
	models.CategoryGeography: toSet(
		"capital", "country", "city", "continent", "river", "mountain",
		"ocean", "border", "population", "located", "geography", "map",
		"island", "region",
	),
	models.CategoryPolitics: toSet(
		"president", "leader", "minister", "government", "election",
		"parliament", "congress", "senator", "policy", "politics", "party",
		"vote", "law",
	),
	models.CategoryHTML: toSet(
		"html", "tag", "element", "attribute", "div", "span", "head", "body",
		"anchor", "heading", "markup", "doctype", "paragraph", "hyperlink",
	),
	models.CategoryCSS: toSet(
		"css", "style", "selector", "margin", "padding", "color", "font",
		"layout", "flexbox", "grid", "stylesheet",
	),
	models.CategoryJavaScript: toSet(
		"javascript", "function", "variable", "array", "promise", "callback",
		"dom", "event", "script", "closure", "async",
	),
	models.CategoryDefinition: toSet(
		"what", "means", "definition", "defined", "explain", "describe",
		"concept",
	),
}

func toSet(words ...string) map[string]bool {
	set := make(map[string]bool, len(words))
	for _, w := range words {
		set[w] = true
	}
	return set
}

// Classifier scores messages against keyword tables and historical facts.
type Classifier struct {
	store  Store
	logger *zap.Logger
}

// New creates a classifier. store may be nil, in which case only the keyword
// tables contribute.
func New(store Store, logger *zap.Logger) *Classifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Classifier{store: store, logger: logger}
}

// Classify assigns a category to text. The category with the strictly
// highest combined score wins; ties resolve to general. Confidence is
// bestScore/tokenCount, clamped to [0,1], and 0 for empty input.
func (c *Classifier) Classify(ctx context.Context, text string) models.Classification {
	tokens := tokenize.Normalize(text)
	if len(tokens) == 0 {
		return models.Classification{Category: models.CategoryGeneral}
	}

	scores := make(map[models.Category]int, len(models.Categories))
	matched := make(map[models.Category][]string, len(models.Categories))
	for _, tok := range tokens {
		for cat, table := range keywordTables {
			if table[tok] {
				scores[cat]++
				matched[cat] = append(matched[cat], tok)
			}
		}
	}

	c.applyHistoryBoost(ctx, tokens, scores)

	// Only a strictly highest score wins; a shared maximum (or no score at
	// all) resolves to general.
	best := models.CategoryGeneral
	bestScore := 0
	contenders := 0
	for _, cat := range models.Categories {
		switch {
		case scores[cat] > bestScore:
			best = cat
			bestScore = scores[cat]
			contenders = 1
		case scores[cat] == bestScore && bestScore > 0:
			contenders++
		}
	}
	if bestScore == 0 || contenders > 1 {
		best = models.CategoryGeneral
		// Confidence still reflects the best observed score, so callers can
		// see how contested the classification was.
	}

	confidence := float64(bestScore) / float64(len(tokens))
	if confidence > 1 {
		confidence = 1
	}

	return models.Classification{
		Category:      best,
		Confidence:    confidence,
		MatchedTokens: matched[best],
	}
}

// applyHistoryBoost adds 1 per stored fact whose cached tokens intersect the
// message tokens and whose category is set. Store errors are logged and
// ignored: classification must keep working when the store is down.
func (c *Classifier) applyHistoryBoost(ctx context.Context, tokens []string, scores map[models.Category]int) {
	if c.store == nil {
		return
	}
	facts, err := c.store.Query(ctx, storage.Filter{
		ContentAny: tokens,
		Limit:      historyLimit,
	})
	if err != nil {
		c.logger.Debug("history boost query failed", zap.Error(err))
		return
	}
	tokenSet := make(map[string]bool, len(tokens))
	for _, tok := range tokens {
		tokenSet[tok] = true
	}
	for _, fact := range facts {
		if fact.Category == "" || !fact.Category.Valid() {
			continue
		}
		for _, ft := range fact.Tokens {
			if tokenSet[ft] {
				scores[fact.Category]++
				break
			}
		}
	}
}
