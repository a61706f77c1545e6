package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Expense Kind = "Expense"
	Income  Kind = "Income"

	// Header pseudo-kinds appear only in the categories table and group
	// categories visually. They are never a transaction kind.
	ExpenseHeader Kind = "Expense Header"
	IncomeHeader  Kind = "Income Header"
)

// DefaultCategoryOrder is applied when a category row has no Order value.
const DefaultCategoryOrder = 10

type (
	Kind string

	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	// Transaction is one normalized ledger entry. Row is the entry's
	// position in the raw table (header excluded) so edits and deletes can
	// address the backing row.
	Transaction struct {
		Row      int
		Date     Date
		Kind     Kind
		Category string
		Amount   Money
		Owner    string
		Memo     string
	}

	Category struct {
		Row   int
		Kind  Kind
		Name  string
		Order int
		Color string
	}
)

var (
	ErrInvalidDate    = errors.New("invalid date")
	ErrInvalidKind    = errors.New("invalid kind")
	ErrInvalidAmount  = errors.New("invalid amount")
	ErrNegativeAmount = errors.New("amount cannot be negative")
	ErrEmptyCategory  = errors.New("empty category name")
	ErrEmptyOwner     = errors.New("empty owner")
)

// ParseKind recognizes transaction and category kinds case-insensitively.
func ParseKind(s string) (Kind, bool) {
	switch strings.ToLower(strings.Join(strings.Fields(s), " ")) {
	case "expense":
		return Expense, true
	case "income":
		return Income, true
	case "expense header":
		return ExpenseHeader, true
	case "income header":
		return IncomeHeader, true
	}
	return "", false
}

// IsHeader reports whether the kind is a display-only grouping row.
func (k Kind) IsHeader() bool {
	return k == ExpenseHeader || k == IncomeHeader
}

// Base strips the Header marker, mapping a pseudo-kind to the transaction
// kind it groups.
func (k Kind) Base() Kind {
	switch k {
	case ExpenseHeader:
		return Expense
	case IncomeHeader:
		return Income
	}
	return k
}

// ValidForTransaction reports whether the kind may appear on a transaction.
func (k Kind) ValidForTransaction() bool {
	return k == Expense || k == Income
}

// ValidForCategory reports whether the kind may appear on a category row.
func (k Kind) ValidForCategory() bool {
	return k.ValidForTransaction() || k.IsHeader()
}

// NewDate creates a Date at midnight UTC.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// dateLayouts covers the formats seen in hand-edited sheets. ISO comes
// first because that is what this application writes.
var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
	"1/2/2006",
	"01-02-2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006",
	"2006-01-02 15:04:05",
}

// ParseDate parses a calendar date from the loose formats the backing sheet
// may contain. Time-of-day, if present, is discarded.
func ParseDate(s string) (Date, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}, false
	}
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, s)
		if err != nil {
			continue
		}
		return NewDate(t.Year(), int(t.Month()), t.Day()), true
	}
	return Date{}, false
}

// ISO renders the date the way it is written back to the store.
func (d Date) ISO() string {
	return d.Format("2006-01-02")
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

func (t Transaction) Validate() error {
	if err := t.Date.Validate(); err != nil {
		return err
	}
	if !t.Kind.ValidForTransaction() {
		return ErrInvalidKind
	}
	if t.Amount.Cents < 0 {
		return ErrNegativeAmount
	}
	if strings.TrimSpace(t.Owner) == "" {
		return ErrEmptyOwner
	}
	return nil
}

func (c Category) Validate() error {
	if !c.Kind.ValidForCategory() {
		return ErrInvalidKind
	}
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyCategory
	}
	return nil
}
