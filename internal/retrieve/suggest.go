package retrieve

import (
	"context"

	"github.com/hyperjump/manabu/internal/storage"
)

// maxSuggestDistance is the largest edit distance considered a plausible typo.
const maxSuggestDistance = 2

// Suggest returns a "did you mean" term for a query that retrieved nothing:
// the stored fact term closest to any search term within the edit-distance
// bound. Returns "" when no stored term is close enough. Ties prefer the
// more frequently stored term, then the more recent one.
func (r *Retriever) Suggest(ctx context.Context, query string) (string, error) {
	qc := NewQueryContext(query)
	if len(qc.SearchTerms) == 0 {
		return "", nil
	}
	facts, err := r.store.Query(ctx, storage.Filter{Limit: r.config.CandidateLimit * 4})
	if err != nil {
		return "", err
	}

	frequency := make(map[string]int)
	order := make([]string, 0, len(facts))
	for _, fact := range facts {
		if fact.Term == "" {
			continue
		}
		if frequency[fact.Term] == 0 {
			order = append(order, fact.Term)
		}
		frequency[fact.Term]++
	}

	best := ""
	bestDistance := maxSuggestDistance + 1
	bestFrequency := 0
	for _, term := range order {
		for _, queryTerm := range qc.SearchTerms {
			if term == queryTerm {
				continue
			}
			d := editDistance(queryTerm, term)
			if d > maxSuggestDistance {
				continue
			}
			if d < bestDistance || (d == bestDistance && frequency[term] > bestFrequency) {
				best = term
				bestDistance = d
				bestFrequency = frequency[term]
			}
		}
	}
	return best, nil
}

// editDistance is the Levenshtein distance between a and b, computed over
// runes with two rolling rows.
func editDistance(a, b string) int {
	if a == b {
		return 0
	}
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}
