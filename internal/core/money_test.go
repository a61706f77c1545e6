package core

import "testing"

func TestParseAmountToCents(t *testing.T) {
	cases := []struct {
		in    string
		cents int64
		ok    bool
	}{
		{"12.34", 1234, true},
		{"$45.50", 4550, true},
		{"$1,234.50", 123450, true},
		{" 1,000.00 ", 100000, true},
		{"1234.5", 123450, true},
		{"0", 0, true},
		{"2000", 200000, true},
		{"12.345", 1235, true}, // half-up on the third decimal
		{"", 0, false},
		{"abc", 0, false},
		{"$", 0, false},
		{"-5.00", 0, false},
	}
	for _, tc := range cases {
		cents, err := ParseAmountToCents(tc.in)
		if tc.ok && err != nil {
			t.Errorf("ParseAmountToCents(%q): unexpected error %v", tc.in, err)
			continue
		}
		if !tc.ok && err == nil {
			t.Errorf("ParseAmountToCents(%q): expected error", tc.in)
			continue
		}
		if tc.ok && cents != tc.cents {
			t.Errorf("ParseAmountToCents(%q) = %d, want %d", tc.in, cents, tc.cents)
		}
	}
}

func TestCoerceAmountToCents(t *testing.T) {
	cases := []struct {
		in    string
		cents int64
	}{
		{"$45.50", 4550},
		{" 1,000.00 ", 100000},
		{"abc", 0},
		{"", 0},
		{"garbage$$", 0},
		{"-12.50", 1250}, // sign-agnostic storage keeps the magnitude
	}
	for _, tc := range cases {
		if got := CoerceAmountToCents(tc.in); got != tc.cents {
			t.Errorf("CoerceAmountToCents(%q) = %d, want %d", tc.in, got, tc.cents)
		}
	}
}

func TestMoneyUSD(t *testing.T) {
	cases := []struct {
		cents int64
		want  string
	}{
		{4550, "$45.50"},
		{123450, "$1,234.50"},
		{0, "$0.00"},
		{100000000, "$1,000,000.00"},
		{-4550, "-$45.50"},
		{5, "$0.05"},
	}
	for _, tc := range cases {
		if got := (Money{Cents: tc.cents}).USD(); got != tc.want {
			t.Errorf("Money{%d}.USD() = %q, want %q", tc.cents, got, tc.want)
		}
	}
}

func TestMoneyPlain(t *testing.T) {
	if got := (Money{Cents: 4550}).Plain(); got != "45.50" {
		t.Errorf("Plain() = %q, want 45.50", got)
	}
	if got := (Money{Cents: 100000}).Plain(); got != "1000.00" {
		t.Errorf("Plain() = %q, want 1000.00", got)
	}
}
