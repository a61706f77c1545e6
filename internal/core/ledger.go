package core

import (
	"sort"
	"strings"
)

// CategorySubtotal is an amount aggregated by (kind, category).
type CategorySubtotal struct {
	Kind     Kind
	Category string
	Total    Money
}

// Ledger is the normalized in-memory view of the transactions table plus
// aggregates derived from it. It is valid for one render cycle only; the
// backing store is the sole source of truth between cycles.
type Ledger struct {
	Entries []Transaction

	// Dropped counts raw rows discarded because their date failed to parse.
	Dropped int

	TotalIncome  Money
	TotalExpense Money
	NetBalance   Money

	// ByCategory holds per-(kind, category) subtotals in first-seen order.
	ByCategory []CategorySubtotal
}

// CategoryIndex groups category rows per kind for form and section display.
type CategoryIndex struct {
	byKind map[Kind][]Category
}

func NewCategoryIndex() CategoryIndex {
	return CategoryIndex{byKind: make(map[Kind][]Category)}
}

func (ci *CategoryIndex) Add(c Category) {
	if ci.byKind == nil {
		ci.byKind = make(map[Kind][]Category)
	}
	ci.byKind[c.Kind] = append(ci.byKind[c.Kind], c)
}

// ForKind returns the categories of a kind sorted by Order, ties broken by
// table position. The returned slice is a copy.
func (ci CategoryIndex) ForKind(k Kind) []Category {
	src := ci.byKind[k]
	out := make([]Category, len(src))
	copy(out, src)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out
}

// Names returns just the names for a kind, in display order. An empty
// result is a valid state ("please add a category first"), not an error.
func (ci CategoryIndex) Names(k Kind) []string {
	cats := ci.ForKind(k)
	names := make([]string, 0, len(cats))
	for _, c := range cats {
		names = append(names, c.Name)
	}
	return names
}

// Has reports whether a category name already exists for the kind,
// case-insensitively. Uniqueness is a write-time policy, not a table
// constraint, so lookups must tolerate casing drift.
func (ci CategoryIndex) Has(k Kind, name string) bool {
	for _, c := range ci.byKind[k] {
		if strings.EqualFold(strings.TrimSpace(c.Name), strings.TrimSpace(name)) {
			return true
		}
	}
	return false
}

// Len counts all category rows across kinds.
func (ci CategoryIndex) Len() int {
	n := 0
	for _, cats := range ci.byKind {
		n += len(cats)
	}
	return n
}
