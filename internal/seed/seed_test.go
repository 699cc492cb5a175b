package seed

import (
	"context"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/hyperjump/manabu/internal/models"
)

type memStore struct {
	facts []*models.Fact
}

func (m *memStore) Insert(_ context.Context, fact *models.Fact) (string, error) {
	m.facts = append(m.facts, fact)
	return "id", nil
}

func (m *memStore) ExistsBySource(_ context.Context, source string) (bool, error) {
	for _, f := range m.facts {
		if f.Source == source {
			return true, nil
		}
	}
	return false, nil
}

func TestSeedCount(t *testing.T) {
	store := &memStore{}
	s := New(store, 10, zap.NewNop())

	count, err := s.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	// Three full 11x11 tables, division missing the zero divisor column,
	// plus two composite expressions.
	want := 3*11*11 + 11*10 + 2
	if count != want {
		t.Errorf("seeded %d facts, want %d", count, want)
	}
	if len(store.facts) != want {
		t.Errorf("store holds %d facts, want %d", len(store.facts), want)
	}
}

func TestSeedIdempotent(t *testing.T) {
	store := &memStore{}
	s := New(store, 2, zap.NewNop())

	first, err := s.Run(context.Background())
	if err != nil {
		t.Fatalf("first Run: %v", err)
	}
	if first == 0 {
		t.Fatal("first run seeded nothing")
	}

	second, err := s.Run(context.Background())
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}
	if second != 0 {
		t.Errorf("second run seeded %d facts, want 0", second)
	}
	if len(store.facts) != first {
		t.Errorf("store grew to %d facts after reseed, want %d", len(store.facts), first)
	}
}

func TestSeedSkipsDivisionByZero(t *testing.T) {
	store := &memStore{}
	s := New(store, 3, zap.NewNop())

	if _, err := s.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	for _, f := range store.facts {
		if strings.Contains(f.Term, "/0") {
			t.Errorf("seeded a division by zero: %q", f.Content)
		}
	}
}

func TestSeedCompositeLeftToRight(t *testing.T) {
	store := &memStore{}
	s := New(store, 1, zap.NewNop())

	if _, err := s.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	found := false
	for _, f := range store.facts {
		if f.Term == "2+3*4" {
			found = true
			if f.Content != "2+3*4 = 20" {
				t.Errorf("composite content = %q, want left-to-right result 20", f.Content)
			}
		}
	}
	if !found {
		t.Error("composite expression 2+3*4 not seeded")
	}
}
