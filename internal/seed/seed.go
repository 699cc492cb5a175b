// Package seed loads the baseline arithmetic facts into an empty store.
package seed

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/hyperjump/manabu/internal/arith"
	"github.com/hyperjump/manabu/internal/models"
	"github.com/hyperjump/manabu/internal/tokenize"
)

// Store is the slice of the fact store the seeder needs.
type Store interface {
	Insert(ctx context.Context, fact *models.Fact) (string, error)
	ExistsBySource(ctx context.Context, source string) (bool, error)
}

// operators maps each seeded operator to its grouping path.
var operators = []struct {
	symbol string
	path   string
}{
	{"+", "addition"},
	{"-", "subtraction"},
	{"*", "multiplication"},
	{"/", "division"},
}

// compositeExpressions are multi-operator equations seeded alongside the
// tables. Their results follow the evaluator's strict left-to-right order.
var compositeExpressions = []string{
	"2 + 3 * 4",
	"10 - 4 / 2",
}

// Seeder writes the arithmetic tables for operands 0 through max across the
// four operators, plus a couple of composite expressions.
type Seeder struct {
	store  Store
	max    int
	logger *zap.Logger
}

// New creates a seeder covering operands 0 through max. A non-positive max
// falls back to 10.
func New(store Store, max int, logger *zap.Logger) *Seeder {
	if max <= 0 {
		max = 10
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Seeder{store: store, max: max, logger: logger}
}

// Run seeds the store unless any basic_math fact already exists, making the
// whole operation idempotent across restarts. Division by zero is skipped
// rather than stored.
func (s *Seeder) Run(ctx context.Context) (int, error) {
	exists, err := s.store.ExistsBySource(ctx, models.SourceBasicMath)
	if err != nil {
		return 0, fmt.Errorf("seed check failed: %w", err)
	}
	if exists {
		s.logger.Debug("arithmetic facts already seeded, skipping")
		return 0, nil
	}

	count := 0
	for _, op := range operators {
		for a := 0; a <= s.max; a++ {
			for b := 0; b <= s.max; b++ {
				if op.symbol == "/" && b == 0 {
					continue
				}
				expr := fmt.Sprintf("%d %s %d", a, op.symbol, b)
				if err := s.insert(ctx, expr, op.path); err != nil {
					return count, err
				}
				count++
			}
		}
	}
	for _, expr := range compositeExpressions {
		if err := s.insert(ctx, expr, "arithmetic"); err != nil {
			return count, err
		}
		count++
	}

	s.logger.Info("seeded arithmetic facts", zap.Int("count", count))
	return count, nil
}

func (s *Seeder) insert(ctx context.Context, expr, path string) error {
	v, err := arith.Evaluate(expr)
	if err != nil {
		return fmt.Errorf("seed expression %q: %w", expr, err)
	}
	content := fmt.Sprintf("%s = %s", arith.Compact(expr), arith.FormatResult(v))
	fact := &models.Fact{
		Content:    content,
		Term:       arith.Compact(expr),
		Category:   models.CategoryMath,
		Type:       "calculation",
		Source:     models.SourceBasicMath,
		Path:       path,
		Tokens:     tokenize.Normalize(content),
		Confidence: 1,
	}
	if _, err := s.store.Insert(ctx, fact); err != nil {
		return fmt.Errorf("seed insert %q: %w", content, err)
	}
	return nil
}
