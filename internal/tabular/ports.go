// Package tabular defines the snapshot-store boundary: a backing table that
// supports only full-table read and full-table overwrite. There are no
// row-level primitives, so every mutation is read → change one row → write.
//
// Two writers racing through that cycle can still clobber each other
// (last-writer-wins); the store offers no version stamps. Callers narrow the
// window by re-reading immediately before every write, and the optional
// mirror worker keeps an off-site copy for recovery.
package tabular

import "context"

// Table names exposed by the backing store.
const (
	TransactionsTable = "transactions"
	CategoriesTable   = "categories"
)

// Canonical headers written back to the store. Reads must not rely on them:
// the sheet is human-editable and columns get renamed and reordered.
var (
	TransactionHeader = []string{"Date", "Type", "Category", "Amount", "User", "Memo"}
	CategoryHeader    = []string{"Type", "Name", "Order", "Color"}
)

// SnapshotStore is the full-table read/overwrite contract. Grids include the
// header row first; cells are loosely typed because spreadsheet backends
// return string/number mixes.
type SnapshotStore interface {
	// Read returns the entire named table.
	Read(ctx context.Context, table string) ([][]any, error)

	// Write replaces the entire named table with the given grid.
	Write(ctx context.Context, table string, grid [][]any) error
}

// CloneGrid deep-copies a grid so snapshots never alias caller memory.
func CloneGrid(grid [][]any) [][]any {
	if grid == nil {
		return nil
	}
	out := make([][]any, len(grid))
	for i, row := range grid {
		out[i] = make([]any, len(row))
		copy(out[i], row)
	}
	return out
}

// HeaderGrid returns a grid holding only the given header row, the shape of
// a freshly initialized table.
func HeaderGrid(header []string) [][]any {
	row := make([]any, len(header))
	for i, h := range header {
		row[i] = h
	}
	return [][]any{row}
}
