package ledger

import (
	"reflect"
	"testing"

	"github.com/lushlawncarepros/petersen-budget/internal/core"
)

func txGrid(rows ...[]any) [][]any {
	grid := [][]any{{"Date", "Type", "Category", "Amount", "User", "Memo"}}
	return append(grid, rows...)
}

func catGrid(rows ...[]any) [][]any {
	grid := [][]any{{"Type", "Name", "Order", "Color"}}
	return append(grid, rows...)
}

func TestNormalizeScenario(t *testing.T) {
	// One good expense, one income with an unparseable date.
	raw := txGrid(
		[]any{"2024-03-01", "Expense", "Groceries", "$45.50", "Ethan"},
		[]any{"bad", "Income", "Salary", 2000, "Alesa"},
	)
	l, _ := Normalize(raw, nil)

	if len(l.Entries) != 1 {
		t.Fatalf("expected 1 retained row, got %d", len(l.Entries))
	}
	if l.Dropped != 1 {
		t.Errorf("Dropped = %d, want 1", l.Dropped)
	}
	e := l.Entries[0]
	if e.Date.ISO() != "2024-03-01" || e.Kind != core.Expense || e.Category != "Groceries" {
		t.Errorf("unexpected entry: %+v", e)
	}
	if e.Amount.Cents != 4550 {
		t.Errorf("amount = %d cents, want 4550", e.Amount.Cents)
	}
	if e.Owner != "Ethan" {
		t.Errorf("owner = %q, want Ethan", e.Owner)
	}
	if l.TotalExpense.Cents != 4550 {
		t.Errorf("total expense = %d, want 4550", l.TotalExpense.Cents)
	}
	if l.TotalIncome.Cents != 0 {
		t.Errorf("total income = %d, want 0", l.TotalIncome.Cents)
	}
	if l.NetBalance.Cents != -4550 {
		t.Errorf("net balance = %d, want -4550", l.NetBalance.Cents)
	}
}

func TestNormalizeAmountCoercion(t *testing.T) {
	cases := []struct {
		amount any
		cents  int64
	}{
		{"$1,234.50", 123450},
		{" 1,000.00 ", 100000},
		{"1234.5", 123450},
		{2000, 200000},
		{45.5, 4550},
		{"", 0},
		{"abc", 0},
		{nil, 0},
	}
	for _, tc := range cases {
		raw := txGrid([]any{"2024-01-15", "Expense", "Misc", tc.amount, "Ethan"})
		l, _ := Normalize(raw, nil)
		if len(l.Entries) != 1 {
			t.Fatalf("amount %v: row must be retained", tc.amount)
		}
		if got := l.Entries[0].Amount.Cents; got != tc.cents {
			t.Errorf("amount %v coerced to %d cents, want %d", tc.amount, got, tc.cents)
		}
	}
}

func TestNormalizeDropsUnparseableDates(t *testing.T) {
	raw := txGrid(
		[]any{"", "Expense", "A", "1", "Ethan"},
		[]any{"garbage", "Expense", "B", "2", "Ethan"},
		[]any{"2024-06-02", "Expense", "C", "3", "Ethan"},
	)
	l, _ := Normalize(raw, nil)
	if len(l.Entries) != 1 || l.Entries[0].Category != "C" {
		t.Fatalf("expected only row C retained, got %+v", l.Entries)
	}
	if l.Dropped != 2 {
		t.Errorf("Dropped = %d, want 2", l.Dropped)
	}
}

func TestNormalizeHeaderReconciliation(t *testing.T) {
	// Lower-cased, padded and reordered columns still reconcile.
	raw := [][]any{
		{" amount ", "user", "DATE", "type", "category"},
		{"$10.00", "Alesa", "2024-02-10", "income", "Salary"},
	}
	l, _ := Normalize(raw, nil)
	if len(l.Entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(l.Entries))
	}
	e := l.Entries[0]
	if e.Kind != core.Income || e.Amount.Cents != 1000 || e.Owner != "Alesa" {
		t.Errorf("unexpected entry: %+v", e)
	}
}

func TestNormalizeMissingColumnsSynthesized(t *testing.T) {
	// No Amount, User or Memo columns: defaults, not failure.
	raw := [][]any{
		{"Date", "Type", "Category"},
		{"2024-02-10", "Expense", "Fuel"},
	}
	l, _ := Normalize(raw, nil)
	if len(l.Entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(l.Entries))
	}
	e := l.Entries[0]
	if e.Amount.Cents != 0 || e.Owner != "" || e.Memo != "" {
		t.Errorf("missing columns should default to zero values, got %+v", e)
	}
}

func TestNormalizeUnknownKindRetainedAsExpense(t *testing.T) {
	raw := txGrid([]any{"2024-02-10", "Transfer", "Misc", "5", "Ethan"})
	l, _ := Normalize(raw, nil)
	if len(l.Entries) != 1 || l.Entries[0].Kind != core.Expense {
		t.Fatalf("unknown kind should be retained as Expense, got %+v", l.Entries)
	}
}

func TestNormalizeNetBalanceInvariant(t *testing.T) {
	raw := txGrid(
		[]any{"2024-01-01", "Income", "Salary", "2500", "Alesa"},
		[]any{"2024-01-02", "Expense", "Rent", "1200", "Ethan"},
		[]any{"2024-01-03", "Expense", "Groceries", "$150.25", "Ethan"},
		[]any{"2024-01-04", "Income", "Refund", "abc", "Alesa"}, // coerces to 0
	)
	l, _ := Normalize(raw, nil)
	if l.NetBalance.Cents != l.TotalIncome.Cents-l.TotalExpense.Cents {
		t.Errorf("net %d != income %d - expense %d",
			l.NetBalance.Cents, l.TotalIncome.Cents, l.TotalExpense.Cents)
	}
	if l.TotalIncome.Cents != 250000 || l.TotalExpense.Cents != 135025 {
		t.Errorf("totals = (%d, %d)", l.TotalIncome.Cents, l.TotalExpense.Cents)
	}
}

func TestNormalizeCategorySubtotals(t *testing.T) {
	raw := txGrid(
		[]any{"2024-01-01", "Expense", "Groceries", "10", "Ethan"},
		[]any{"2024-01-02", "Expense", "Fuel", "20", "Ethan"},
		[]any{"2024-01-03", "Expense", "Groceries", "30", "Alesa"},
		[]any{"2024-01-04", "Income", "Groceries", "5", "Alesa"}, // different kind, separate bucket
	)
	l, _ := Normalize(raw, nil)

	want := []core.CategorySubtotal{
		{Kind: core.Expense, Category: "Groceries", Total: core.Money{Cents: 4000}},
		{Kind: core.Expense, Category: "Fuel", Total: core.Money{Cents: 2000}},
		{Kind: core.Income, Category: "Groceries", Total: core.Money{Cents: 500}},
	}
	if !reflect.DeepEqual(l.ByCategory, want) {
		t.Errorf("ByCategory = %+v, want %+v", l.ByCategory, want)
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	rawTx := txGrid(
		[]any{"2024-01-01", "Income", "Salary", "2500", "Alesa"},
		[]any{"nope", "Expense", "X", "1", "Ethan"},
		[]any{"2024-01-02", "Expense", "Rent", "1200", "Ethan"},
	)
	rawCats := catGrid(
		[]any{"Expense", "Rent", "5", ""},
		[]any{"Income", "Salary", "", ""},
	)
	l1, idx1 := Normalize(rawTx, rawCats)
	l2, idx2 := Normalize(rawTx, rawCats)
	if !reflect.DeepEqual(l1, l2) {
		t.Error("normalizing the same input twice must yield identical ledgers")
	}
	if !reflect.DeepEqual(idx1, idx2) {
		t.Error("normalizing the same input twice must yield identical indexes")
	}
}

func TestNormalizeCategoriesDefaulting(t *testing.T) {
	// Empty table.
	idx := NormalizeCategories(nil)
	for _, k := range []core.Kind{core.Expense, core.Income} {
		if got := idx.Names(k); len(got) != 0 {
			t.Errorf("empty table: Names(%s) = %v, want empty", k, got)
		}
	}

	// Missing Name column.
	idx = NormalizeCategories([][]any{
		{"Type", "Order"},
		{"Expense", "1"},
	})
	if idx.Len() != 0 {
		t.Errorf("missing Name column should yield empty index, got %d rows", idx.Len())
	}
}

func TestNormalizeCategories(t *testing.T) {
	idx := NormalizeCategories(catGrid(
		[]any{"Expense", "Groceries", "20", ""},
		[]any{"Expense", "Fuel", "", ""},       // order defaults to 10
		[]any{"expense header", "Home", "1", "#ff8800"},
		[]any{"Income", "Salary", 10.0, ""}, // numeric order cell
	))

	exp := idx.ForKind(core.Expense)
	if len(exp) != 2 || exp[0].Name != "Fuel" || exp[0].Order != core.DefaultCategoryOrder {
		t.Errorf("expense categories = %+v", exp)
	}
	headers := idx.ForKind(core.ExpenseHeader)
	if len(headers) != 1 || headers[0].Color != "#ff8800" {
		t.Errorf("header rows = %+v", headers)
	}
	sal := idx.ForKind(core.Income)
	if len(sal) != 1 || sal[0].Order != 10 {
		t.Errorf("income categories = %+v", sal)
	}
}

func TestNormalizeEmptyInputs(t *testing.T) {
	l, idx := Normalize(nil, nil)
	if len(l.Entries) != 0 || l.Dropped != 0 || l.NetBalance.Cents != 0 {
		t.Errorf("empty input should yield empty ledger, got %+v", l)
	}
	if idx.Len() != 0 {
		t.Errorf("empty input should yield empty index")
	}

	// Header-only grids behave the same.
	l, idx = Normalize(txGrid(), catGrid())
	if len(l.Entries) != 0 || idx.Len() != 0 {
		t.Error("header-only grids should yield empty results")
	}
}
