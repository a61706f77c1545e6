package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/lushlawncarepros/petersen-budget/internal/tabular"
)

// Store is an in-memory snapshot store used as the default backend and as
// the test double. Tables are deep-copied on the way in and out so callers
// can never mutate a snapshot behind the store's back.
type Store struct {
	mu     sync.Mutex
	tables map[string][][]any
}

var _ tabular.SnapshotStore = (*Store)(nil)

// New creates a store with empty transactions and categories tables
// (canonical headers only).
func New() *Store {
	return &Store{
		tables: map[string][][]any{
			tabular.TransactionsTable: tabular.HeaderGrid(tabular.TransactionHeader),
			tabular.CategoriesTable:   tabular.HeaderGrid(tabular.CategoryHeader),
		},
	}
}

// NewWithTables creates a store seeded with the given grids.
func NewWithTables(tables map[string][][]any) *Store {
	s := New()
	for name, grid := range tables {
		s.tables[name] = tabular.CloneGrid(grid)
	}
	return s
}

func (s *Store) Read(_ context.Context, table string) ([][]any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	grid, ok := s.tables[table]
	if !ok {
		return nil, fmt.Errorf("unknown table %q", table)
	}
	return tabular.CloneGrid(grid), nil
}

func (s *Store) Write(_ context.Context, table string, grid [][]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tables[table]; !ok {
		return fmt.Errorf("unknown table %q", table)
	}
	s.tables[table] = tabular.CloneGrid(grid)
	return nil
}
