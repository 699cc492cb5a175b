// Package storage defines the append-only persistence contract for facts and
// provides SQLite and MongoDB adapters.
package storage

import (
	"context"
	"errors"

	"github.com/hyperjump/manabu/internal/models"
)

// ErrNotFound is returned when a fact lookup by ID finds nothing.
var ErrNotFound = errors.New("fact not found")

// Filter selects facts for a query. Zero-valued fields are ignored. Results
// are always ordered by creation time descending (most recent first) so that
// most-recent-wins conflict resolution falls out of the natural order.
type Filter struct {
	// ContentAny matches facts whose content contains any of these strings,
	// case-insensitively.
	ContentAny []string
	// ContentRegex matches facts whose content matches this pattern,
	// case-insensitively. Callers must escape user-derived text with
	// regexp.QuoteMeta before building a pattern.
	ContentRegex string
	// Term matches by exact term equality.
	Term string
	// Category matches by exact category equality.
	Category models.Category
	// Source matches by exact source equality.
	Source string
	// Limit bounds the result count. Zero means the adapter default.
	Limit int
}

// Empty reports whether the filter has no predicates at all.
func (f Filter) Empty() bool {
	return len(f.ContentAny) == 0 && f.ContentRegex == "" &&
		f.Term == "" && f.Category == "" && f.Source == ""
}

// Store is the persistence collaborator for facts. Inserts are append-only
// and there is no update operation: learning appends, never edits. Adapters
// apply a bounded per-operation timeout so a slow backend surfaces as an
// error instead of hanging the caller.
type Store interface {
	// Insert appends a fact and returns its ID. The adapter assigns the ID
	// and creation timestamp when unset.
	Insert(ctx context.Context, fact *models.Fact) (string, error)
	// Get returns a fact by ID, or ErrNotFound.
	Get(ctx context.Context, id string) (*models.Fact, error)
	// Query returns facts matching the filter, most recent first.
	Query(ctx context.Context, f Filter) ([]*models.Fact, error)
	// ExistsBySource reports whether any fact with the given source exists.
	// Used to guard idempotent bulk seeding.
	ExistsBySource(ctx context.Context, source string) (bool, error)
	// ExistsByContent reports whether a fact with exactly this content
	// exists. Used to skip duplicate arithmetic teachings at write time.
	ExistsByContent(ctx context.Context, content string) (bool, error)
	// Count returns the total number of stored facts.
	Count(ctx context.Context) (int64, error)

	Close() error
}

// defaultQueryLimit bounds unbounded queries at the adapter level.
const defaultQueryLimit = 100
