package models

// QueryContext is the per-request derived form of a user query. It is built
// once by the retriever and discarded after the request.
type QueryContext struct {
	// RawQuery is the query as submitted.
	RawQuery string `json:"raw_query"`
	// NormalizedQuery is the lower-cased, punctuation-stripped,
	// whitespace-collapsed form.
	NormalizedQuery string `json:"normalized_query"`
	// SearchTerms are normalized tokens longer than two characters.
	SearchTerms []string `json:"search_terms"`
}

// HasTerm reports whether term is one of the derived search terms.
func (q *QueryContext) HasTerm(term string) bool {
	for _, t := range q.SearchTerms {
		if t == term {
			return true
		}
	}
	return false
}
