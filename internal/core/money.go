// Package core provides money parsing and handling utilities.
//
// Amounts are carried as integer cents. Two parsers exist on purpose: a
// strict one for form input that reports bad values, and a coercing one for
// sheet ingestion where bad values become zero instead of losing the row.
package core

import (
	"math"
	"strconv"
	"strings"
)

// ParseAmountToCents converts a dollar string to cents with half-up
// rounding. Currency symbols, thousands separators and surrounding
// whitespace are stripped first. Negative values are rejected: amounts are
// stored sign-agnostic and the Expense/Income kind supplies the sign.
//
// Examples:
//
//	ParseAmountToCents("$1,234.50") -> 123450, nil
//	ParseAmountToCents(" 1000 ")    -> 100000, nil
//	ParseAmountToCents("abc")       -> 0, ErrInvalidAmount
func ParseAmountToCents(s string) (int64, error) {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, ErrInvalidAmount
	}
	if f < 0 {
		return 0, ErrNegativeAmount
	}
	return int64(f*100.0 + 0.5), nil
}

// CoerceAmountToCents is the ingestion-side parser: anything unparseable
// becomes 0 cents and the row survives. Parseable negatives are folded to
// their magnitude because storage is sign-agnostic.
func CoerceAmountToCents(s string) int64 {
	cents, err := ParseAmountToCents(s)
	if err == nil {
		return cents
	}
	// A stray sign is still meaningful input; retry on the magnitude.
	trimmed := strings.TrimSpace(strings.ReplaceAll(strings.ReplaceAll(s, "$", ""), ",", ""))
	if strings.HasPrefix(trimmed, "-") {
		if cents, err := ParseAmountToCents(trimmed[1:]); err == nil {
			return cents
		}
	}
	return 0
}

// Dollars returns the dollar value as a float64 for display purposes.
// Use cents for calculations to avoid floating-point drift.
func (m Money) Dollars() float64 {
	return float64(m.Cents) / 100.0
}

// USD formats the amount as "$1,234.50"; negative amounts render as
// "-$1,234.50".
func (m Money) USD() string {
	cents := m.Cents
	neg := cents < 0
	if neg {
		cents = -cents
	}
	whole := cents / 100
	rem := cents % 100
	digits := strconv.FormatInt(whole, 10)
	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	b.WriteByte('$')
	lead := len(digits) % 3
	if lead == 0 {
		lead = 3
	}
	b.WriteString(digits[:lead])
	for i := lead; i < len(digits); i += 3 {
		b.WriteByte(',')
		b.WriteString(digits[i : i+3])
	}
	b.WriteByte('.')
	if rem < 10 {
		b.WriteByte('0')
	}
	b.WriteString(strconv.FormatInt(rem, 10))
	return b.String()
}

// Plain renders the amount as a bare decimal ("45.50") for writing back to
// the store, which holds numbers without currency formatting.
func (m Money) Plain() string {
	whole := m.Cents / 100
	rem := m.Cents % 100
	if rem < 0 {
		rem = -rem
	}
	s := strconv.FormatInt(whole, 10) + "."
	if rem < 10 {
		s += "0"
	}
	return s + strconv.FormatInt(rem, 10)
}
