package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/lushlawncarepros/petersen-budget/internal/core"
	"github.com/lushlawncarepros/petersen-budget/internal/tabular"
)

var (
	ErrDuplicateCategory = errors.New("category already exists for this kind")
	ErrRowOutOfRange     = errors.New("row does not exist")
)

// Publisher notifies interested parties (the mirror worker) that a table
// changed. A nil Publisher disables notifications.
type Publisher interface {
	PublishTableChanged(ctx context.Context, table, action, actor string) error
}

// Service owns the read and write paths over the snapshot store.
//
// The store has no row-level write primitive, so every mutation follows the
// same discipline: read the full table fresh, apply exactly one row change
// in memory, write the full table back. Skipping the fresh read would widen
// the lost-update window between two household members to the whole session
// instead of the fetch-to-write gap.
type Service struct {
	store tabular.SnapshotStore
	pub   Publisher
}

func NewService(store tabular.SnapshotStore, pub Publisher) *Service {
	return &Service{store: store, pub: pub}
}

// Load fetches both tables and normalizes them. On fetch failure it returns
// an explicitly empty ledger and index together with the error, so callers
// can render a "could not load data" state without special-casing nils.
func (s *Service) Load(ctx context.Context) (core.Ledger, core.CategoryIndex, error) {
	rawTx, err := s.store.Read(ctx, tabular.TransactionsTable)
	if err != nil {
		return core.Ledger{}, core.NewCategoryIndex(), fmt.Errorf("load transactions: %w", err)
	}
	rawCats, err := s.store.Read(ctx, tabular.CategoriesTable)
	if err != nil {
		return core.Ledger{}, core.NewCategoryIndex(), fmt.Errorf("load categories: %w", err)
	}
	l, idx := Normalize(rawTx, rawCats)
	return l, idx, nil
}

// AddTransaction appends one transaction row.
func (s *Service) AddTransaction(ctx context.Context, tx core.Transaction) error {
	if err := tx.Validate(); err != nil {
		return err
	}
	grid, err := s.store.Read(ctx, tabular.TransactionsTable)
	if err != nil {
		return fmt.Errorf("read transactions: %w", err)
	}
	if len(grid) == 0 {
		grid = tabular.HeaderGrid(tabular.TransactionHeader)
	}
	grid = append(grid, transactionRow(tx))
	if err := s.store.Write(ctx, tabular.TransactionsTable, grid); err != nil {
		return fmt.Errorf("write transactions: %w", err)
	}
	s.notify(ctx, tabular.TransactionsTable, "append", tx.Owner)
	return nil
}

// UpdateTransaction replaces the data row at the given position (0-based,
// header excluded).
func (s *Service) UpdateTransaction(ctx context.Context, row int, tx core.Transaction) error {
	if err := tx.Validate(); err != nil {
		return err
	}
	grid, err := s.store.Read(ctx, tabular.TransactionsTable)
	if err != nil {
		return fmt.Errorf("read transactions: %w", err)
	}
	if row < 0 || row+1 >= len(grid) {
		return ErrRowOutOfRange
	}
	grid[row+1] = transactionRow(tx)
	if err := s.store.Write(ctx, tabular.TransactionsTable, grid); err != nil {
		return fmt.Errorf("write transactions: %w", err)
	}
	s.notify(ctx, tabular.TransactionsTable, "update", tx.Owner)
	return nil
}

// DeleteTransaction removes the data row at the given position.
func (s *Service) DeleteTransaction(ctx context.Context, row int, actor string) error {
	grid, err := s.store.Read(ctx, tabular.TransactionsTable)
	if err != nil {
		return fmt.Errorf("read transactions: %w", err)
	}
	if row < 0 || row+1 >= len(grid) {
		return ErrRowOutOfRange
	}
	grid = append(grid[:row+1], grid[row+2:]...)
	if err := s.store.Write(ctx, tabular.TransactionsTable, grid); err != nil {
		return fmt.Errorf("write transactions: %w", err)
	}
	s.notify(ctx, tabular.TransactionsTable, "delete", actor)
	return nil
}

// AddCategory appends one category row, rejecting duplicate names within
// the same kind (case-insensitive).
func (s *Service) AddCategory(ctx context.Context, c core.Category, actor string) error {
	if err := c.Validate(); err != nil {
		return err
	}
	grid, err := s.store.Read(ctx, tabular.CategoriesTable)
	if err != nil {
		return fmt.Errorf("read categories: %w", err)
	}
	if NormalizeCategories(grid).Has(c.Kind, c.Name) {
		return ErrDuplicateCategory
	}
	if len(grid) == 0 {
		grid = tabular.HeaderGrid(tabular.CategoryHeader)
	}
	grid = append(grid, categoryRow(c))
	if err := s.store.Write(ctx, tabular.CategoriesTable, grid); err != nil {
		return fmt.Errorf("write categories: %w", err)
	}
	s.notify(ctx, tabular.CategoriesTable, "append", actor)
	return nil
}

// UpdateCategory replaces the category row at the given position, keeping
// the per-kind uniqueness policy against the other rows.
func (s *Service) UpdateCategory(ctx context.Context, row int, c core.Category, actor string) error {
	if err := c.Validate(); err != nil {
		return err
	}
	grid, err := s.store.Read(ctx, tabular.CategoriesTable)
	if err != nil {
		return fmt.Errorf("read categories: %w", err)
	}
	if row < 0 || row+1 >= len(grid) {
		return ErrRowOutOfRange
	}
	idx := NormalizeCategories(grid)
	for _, existing := range idx.ForKind(c.Kind) {
		if existing.Row != row && equalFoldTrim(existing.Name, c.Name) {
			return ErrDuplicateCategory
		}
	}
	grid[row+1] = categoryRow(c)
	if err := s.store.Write(ctx, tabular.CategoriesTable, grid); err != nil {
		return fmt.Errorf("write categories: %w", err)
	}
	s.notify(ctx, tabular.CategoriesTable, "update", actor)
	return nil
}

// DeleteCategory removes the category row at the given position. Orphaned
// transactions keep their label; the reference was always soft.
func (s *Service) DeleteCategory(ctx context.Context, row int, actor string) error {
	grid, err := s.store.Read(ctx, tabular.CategoriesTable)
	if err != nil {
		return fmt.Errorf("read categories: %w", err)
	}
	if row < 0 || row+1 >= len(grid) {
		return ErrRowOutOfRange
	}
	grid = append(grid[:row+1], grid[row+2:]...)
	if err := s.store.Write(ctx, tabular.CategoriesTable, grid); err != nil {
		return fmt.Errorf("write categories: %w", err)
	}
	s.notify(ctx, tabular.CategoriesTable, "delete", actor)
	return nil
}

func (s *Service) notify(ctx context.Context, table, action, actor string) {
	if s.pub == nil {
		return
	}
	if err := s.pub.PublishTableChanged(ctx, table, action, actor); err != nil {
		// Mirroring is best-effort; the primary write already succeeded.
		slog.ErrorContext(ctx, "Failed to publish table change",
			"table", table, "action", action, "error", err)
	}
}

func transactionRow(tx core.Transaction) []any {
	return []any{tx.Date.ISO(), string(tx.Kind), tx.Category, tx.Amount.Plain(), tx.Owner, tx.Memo}
}

func categoryRow(c core.Category) []any {
	return []any{string(c.Kind), c.Name, strconv.Itoa(c.Order), c.Color}
}

func equalFoldTrim(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
