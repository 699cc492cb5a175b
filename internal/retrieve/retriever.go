// Package retrieve selects, deduplicates, filters, and ranks stored facts
// against a user query, returning the single best match or nothing.
package retrieve

import (
	"context"
	"regexp"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/hyperjump/manabu/internal/models"
	"github.com/hyperjump/manabu/internal/storage"
	"github.com/hyperjump/manabu/internal/tokenize"
)

// Store is the read-only slice of the fact store the retriever needs.
type Store interface {
	Query(ctx context.Context, f storage.Filter) ([]*models.Fact, error)
}

// Classifier assigns a category to the query for category-affinity scoring.
type Classifier interface {
	Classify(ctx context.Context, text string) models.Classification
}

// Config tunes candidate selection and the utility filter.
type Config struct {
	// MinContentLength and MaxContentLength bound useful fact content.
	MinContentLength int
	MaxContentLength int
	// TrustedSource is the provenance tag that earns a ranking bonus.
	TrustedSource string
	// CandidateLimit bounds how many facts are fetched per query.
	CandidateLimit int
}

// ApplyDefaults fills zero values with the standard tuning.
func (c *Config) ApplyDefaults() {
	if c.MinContentLength == 0 {
		c.MinContentLength = 20
	}
	if c.MaxContentLength == 0 {
		c.MaxContentLength = 500
	}
	if c.TrustedSource == "" {
		c.TrustedSource = models.SourceUserTeaching
	}
	if c.CandidateLimit == 0 {
		c.CandidateLimit = 50
	}
}

// Ranking weights. Term containment is worth less than category affinity so
// that a single on-topic fact beats an off-topic fact that happens to share
// more words.
const (
	termScore     = 2
	categoryScore = 3
	sourceScore   = 2
)

// Retriever runs the retrieval pipeline against the store.
type Retriever struct {
	store      Store
	classifier Classifier
	config     Config
	logger     *zap.Logger
}

// New creates a retriever.
func New(store Store, classifier Classifier, cfg Config, logger *zap.Logger) *Retriever {
	cfg.ApplyDefaults()
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Retriever{store: store, classifier: classifier, config: cfg, logger: logger}
}

// Retrieve returns the best stored fact for query, or (nil, nil) when nothing
// qualifies. A miss is not an error: the responder turns it into a prompt to
// teach the engine.
func (r *Retriever) Retrieve(ctx context.Context, query string) (*models.Fact, error) {
	qc := NewQueryContext(query)
	if qc.NormalizedQuery == "" {
		return nil, nil
	}

	candidates, err := r.fetchCandidates(ctx, qc)
	if err != nil {
		return nil, err
	}

	candidates = Deduplicate(candidates)
	useful := r.filterUseful(candidates)
	if len(useful) == 0 {
		return r.relaxedRetry(ctx, qc)
	}

	classification := models.Classification{Category: models.CategoryGeneral}
	if r.classifier != nil {
		classification = r.classifier.Classify(ctx, qc.RawQuery)
	}

	ranked := r.rank(qc, classification, useful)
	best := ranked[0]
	r.logger.Debug("retrieved fact",
		zap.String("query", query),
		zap.String("fact_id", best.ID),
		zap.String("category", string(best.Category)),
	)
	return best, nil
}

// NewQueryContext derives the per-request query form: the normalized query
// plus search terms longer than two characters.
func NewQueryContext(query string) *models.QueryContext {
	return &models.QueryContext{
		RawQuery:        query,
		NormalizedQuery: tokenize.NormalizeString(query),
		SearchTerms:     tokenize.SearchTerms(query),
	}
}

// fetchCandidates delegates the coarse content match to the store: the
// normalized query or any search term as a case-insensitive substring.
func (r *Retriever) fetchCandidates(ctx context.Context, qc *models.QueryContext) ([]*models.Fact, error) {
	needles := make([]string, 0, len(qc.SearchTerms)+1)
	needles = append(needles, qc.NormalizedQuery)
	needles = append(needles, qc.SearchTerms...)
	return r.store.Query(ctx, storage.Filter{
		ContentAny: needles,
		Limit:      r.config.CandidateLimit,
	})
}

// rank scores surviving candidates and returns them highest first. The sort
// is stable, so equal scores keep the store's natural most-recent-first
// order.
func (r *Retriever) rank(qc *models.QueryContext, cls models.Classification, facts []*models.Fact) []*models.Fact {
	scores := make(map[string]int, len(facts))
	for _, fact := range facts {
		content := strings.ToLower(fact.Content)
		score := 0
		for _, term := range qc.SearchTerms {
			if strings.Contains(content, term) {
				score += termScore
			}
		}
		if fact.Category != "" && fact.Category == cls.Category {
			score += categoryScore
		}
		if fact.Source == r.config.TrustedSource {
			score += sourceScore
		}
		scores[fact.ID] = score
	}
	ranked := make([]*models.Fact, len(facts))
	copy(ranked, facts)
	sort.SliceStable(ranked, func(i, j int) bool {
		return scores[ranked[i].ID] > scores[ranked[j].ID]
	})
	return ranked
}

// relaxedRetry is the single retry after the utility filter discards
// everything: term equality first, then a loosened definition pattern over
// content. Returns the first hit or nothing.
func (r *Retriever) relaxedRetry(ctx context.Context, qc *models.QueryContext) (*models.Fact, error) {
	for _, term := range qc.SearchTerms {
		facts, err := r.store.Query(ctx, storage.Filter{Term: term, Limit: 1})
		if err != nil {
			return nil, err
		}
		if len(facts) > 0 {
			return facts[0], nil
		}
	}
	if len(qc.SearchTerms) == 0 {
		return nil, nil
	}
	escaped := make([]string, 0, len(qc.SearchTerms))
	for _, term := range qc.SearchTerms {
		escaped = append(escaped, regexp.QuoteMeta(term))
	}
	pattern := `(` + strings.Join(escaped, `|`) + `)\s+(is|means|refers to)`
	facts, err := r.store.Query(ctx, storage.Filter{ContentRegex: pattern, Limit: 1})
	if err != nil {
		return nil, err
	}
	if len(facts) > 0 {
		return facts[0], nil
	}
	return nil, nil
}
