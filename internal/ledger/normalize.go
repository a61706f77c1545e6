// Package ledger turns raw, untyped snapshot grids into a clean in-memory
// ledger and category index, and provides the companion write operations
// against the snapshot store.
//
// Normalization is deliberately lenient: the backing sheet is edited by
// hand, so columns may be renamed, reordered or missing, amounts arrive as
// currency strings, and dates come in whatever format a human typed. The
// policy is: a bad amount coerces to zero and the row survives; a bad date
// drops the row, because an undated transaction must not silently appear as
// today or epoch zero.
package ledger

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/lushlawncarepros/petersen-budget/internal/core"
)

// Normalize converts the two raw tables into a Ledger and CategoryIndex.
// It is a pure function of its inputs: same grids in, same results out, no
// I/O, no hidden state. Rows are salvaged independently of each other.
func Normalize(rawTransactions, rawCategories [][]any) (core.Ledger, core.CategoryIndex) {
	l := normalizeTransactions(rawTransactions)
	idx := NormalizeCategories(rawCategories)
	return l, idx
}

func normalizeTransactions(grid [][]any) core.Ledger {
	var l core.Ledger
	if len(grid) < 2 {
		return l
	}

	cols := headerIndex(grid[0])
	dateCol := cols["Date"]
	kindCol := cols["Type"]
	catCol := cols["Category"]
	amtCol := cols["Amount"]
	ownerCol := cols["User"]
	memoCol := cols["Memo"]

	for i, row := range grid[1:] {
		cells := toStrings(row)

		d, ok := core.ParseDate(cellAt(cells, dateCol))
		if !ok {
			l.Dropped++
			continue
		}

		// Only a date failure is fatal; an unrecognized kind is retained
		// as an expense, mirroring the coerce-don't-drop amount policy.
		kind, ok := core.ParseKind(cellAt(cells, kindCol))
		if !ok || !kind.ValidForTransaction() {
			kind = core.Expense
		}

		l.Entries = append(l.Entries, core.Transaction{
			Row:      i,
			Date:     d,
			Kind:     kind,
			Category: cellAt(cells, catCol),
			Amount:   core.Money{Cents: core.CoerceAmountToCents(cellAt(cells, amtCol))},
			Owner:    cellAt(cells, ownerCol),
			Memo:     cellAt(cells, memoCol),
		})
	}

	aggregate(&l)
	return l
}

// aggregate computes the derived figures fresh from the retained entries.
// Subtotals keep first-seen order so repeated normalization of the same
// input is bit-identical.
func aggregate(l *core.Ledger) {
	type key struct {
		kind core.Kind
		cat  string
	}
	totals := map[key]int64{}
	var order []key

	for _, e := range l.Entries {
		switch e.Kind {
		case core.Income:
			l.TotalIncome.Cents += e.Amount.Cents
		case core.Expense:
			l.TotalExpense.Cents += e.Amount.Cents
		}
		k := key{kind: e.Kind, cat: e.Category}
		if _, seen := totals[k]; !seen {
			order = append(order, k)
		}
		totals[k] += e.Amount.Cents
	}

	l.NetBalance.Cents = l.TotalIncome.Cents - l.TotalExpense.Cents
	for _, k := range order {
		l.ByCategory = append(l.ByCategory, core.CategorySubtotal{
			Kind:     k.kind,
			Category: k.cat,
			Total:    core.Money{Cents: totals[k]},
		})
	}
}

// NormalizeCategories builds the category index from the raw categories
// grid. An empty table, or one missing its Name column, yields an empty
// index for every kind — a valid, displayable state, never an error.
func NormalizeCategories(grid [][]any) core.CategoryIndex {
	idx := core.NewCategoryIndex()
	if len(grid) < 2 {
		return idx
	}

	cols := headerIndex(grid[0])
	kindCol := cols["Type"]
	nameCol := cols["Name"]
	orderCol := cols["Order"]
	colorCol := cols["Color"]

	for i, row := range grid[1:] {
		cells := toStrings(row)

		name := cellAt(cells, nameCol)
		if name == "" {
			continue
		}
		kind, ok := core.ParseKind(cellAt(cells, kindCol))
		if !ok {
			kind = core.Expense
		}

		order := core.DefaultCategoryOrder
		if raw := cellAt(cells, orderCol); raw != "" {
			if n, err := strconv.Atoi(strings.TrimSuffix(raw, ".0")); err == nil {
				order = n
			}
		}

		idx.Add(core.Category{
			Row:   i,
			Kind:  kind,
			Name:  name,
			Order: order,
			Color: cellAt(cells, colorCol),
		})
	}
	return idx
}

// headerIndex maps canonical column names to their position in the header
// row. Header cells are trimmed and title-cased first, so "date", " DATE "
// and "Date" all reconcile. Missing columns map to -1 and synthesize empty
// values downstream.
func headerIndex(header []any) map[string]int {
	idx := map[string]int{
		"Date":     -1,
		"Type":     -1,
		"Category": -1,
		"Amount":   -1,
		"User":     -1,
		"Memo":     -1,
		"Name":     -1,
		"Order":    -1,
		"Color":    -1,
	}
	for i, cell := range header {
		name := titleCase(cellString(cell))
		if cur, known := idx[name]; known && cur == -1 {
			idx[name] = i
		}
	}
	return idx
}

// titleCase upper-cases the first letter of each word and lower-cases the
// rest, collapsing surrounding whitespace.
func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		runes := []rune(strings.ToLower(w))
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}

// cellString renders a loosely typed cell as a trimmed string. Floats that
// are whole numbers print without a trailing ".0" so "2000" and 2000.0
// normalize identically.
func cellString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(x)
	case float64:
		return strings.TrimSpace(strconv.FormatFloat(x, 'f', -1, 64))
	case float32:
		return strings.TrimSpace(strconv.FormatFloat(float64(x), 'f', -1, 32))
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}

func toStrings(row []any) []string {
	out := make([]string, len(row))
	for i, v := range row {
		out[i] = cellString(v)
	}
	return out
}

func cellAt(cells []string, idx int) string {
	if idx < 0 || idx >= len(cells) {
		return ""
	}
	return cells[idx]
}
