package core

import "testing"

func TestParseDecimalToPaise(t *testing.T) {
	cases := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{"12.34", 1234, false},
		{"12,34", 1234, false},
		{"12", 1200, false},
		{"0.01", 1, false},
		{".5", 50, false},
		{"12.344", 1234, false}, // rounds down
		{"12.345", 1235, false}, // rounds up
		{"12.346", 1235, false}, // rounds up
		{"  7.5 ", 750, false},
		{"", 0, true},
		{"0", 0, true},
		{"0.00", 0, true},
		{"-5", 0, true},
		{"+5", 0, true},
		{"1.2.3", 0, true},
		{"abc", 0, true},
		{"12a", 0, true},
		{"99999999999999999999", 0, true}, // overflow
	}
	for _, tc := range cases {
		got, err := ParseDecimalToPaise(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("%q: expected error, got %d", tc.in, got)
			}
			continue
		}
		if err != nil {
			t.Fatalf("%q: unexpected error: %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("%q: got %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestFormatRupees(t *testing.T) {
	cases := []struct {
		paise int64
		want  string
	}{
		{0, "₹0.00"},
		{1, "₹0.01"},
		{123450, "₹1234.50"},
		{-250, "-₹2.50"},
	}
	for _, tc := range cases {
		if got := FormatRupees(tc.paise); got != tc.want {
			t.Fatalf("%d: got %q, want %q", tc.paise, got, tc.want)
		}
	}
}

func TestMoneyRupees(t *testing.T) {
	if got := (Money{Paise: 1250}).Rupees(); got != 12.5 {
		t.Fatalf("got %v", got)
	}
}
