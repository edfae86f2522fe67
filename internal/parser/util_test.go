package parser

import (
	"testing"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		input    string
		expected float64
		wantErr  bool
	}{
		{"25.99", 25.99, false},
		{"1,234.56", 1234.56, false},
		{"£25.99", 25.99, false},
		{"-25.99", -25.99, false},
		{"+25.99", 25.99, false},
		{"£1,234,567.89", 1234567.89, false},
		{"0.00", 0.00, false},
		{"", 0, false},
		{" 25.99 ", 25.99, false},
		{"12.345", 12.35, false},
		{"abc", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := parseAmount(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Error("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.expected {
				t.Errorf("got %f, want %f", got, tt.expected)
			}
		})
	}
}

func TestStartsWithDate(t *testing.T) {
	tests := []struct {
		input    string
		expected bool
	}{
		{"15/01/2024 CARD PAYMENT", true},
		{"1/1/24 PAYMENT", true},
		{"15 Jan 2024 CARD PAYMENT", true},
		{"15-Jan-2024 PAYMENT", true},
		{"2024-01-15 PAYMENT", true},
		{"  15/01/2024 indented", true},
		{"CARD PAYMENT 15/01/2024", false},
		{"Opening Balance", false},
		{"15 Jan CARD PAYMENT", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := startsWithDate(tt.input); got != tt.expected {
				t.Errorf("got %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestExtractDate(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"15/01/2024 CARD PAYMENT", "15/01/2024"},
		{"15 January 2024 SALARY", "15 January 2024"},
		{"03-Feb-24 DD", "03-Feb-24"},
		{"2024-03-01 Monzo", "2024-03-01"},
		{"no date here", ""},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := extractDate(tt.input); got != tt.expected {
				t.Errorf("got %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestExtractShortDate(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"4 Dec Start balance", "4 Dec"},
		{"15 Jan→Card Payment", "15 Jan"},
		{"15 Jan 2024 Card Payment", "15 Jan"},
		{"Card Payment 4 Dec", ""},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := extractShortDate(tt.input); got != tt.expected {
				t.Errorf("got %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestFindAccountNumber(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected string
	}{
		{"labelled", "Ref 99999999\nAccount Number: 12345678", "12345678"},
		{"abbreviated label", "Account No. 87654321", "87654321"},
		{"bare fallback", "Statement for 11223344", "11223344"},
		{"none", "Sort code 40-11-22", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := findAccountNumber(tt.text); got != tt.expected {
				t.Errorf("got %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestMaskAccountNumber(t *testing.T) {
	tests := map[string]string{
		"12345678": "****5678",
		"1234":     "1234",
		"":         "",
	}
	for in, want := range tests {
		if got := maskAccountNumber(in); got != want {
			t.Errorf("maskAccountNumber(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestFindSortCode(t *testing.T) {
	if got := findSortCode("Sort Code: 40-11-22 Account 12345678"); got != "40-11-22" {
		t.Errorf("got %q, want 40-11-22", got)
	}
	if got := findSortCode("no code"); got != "" {
		t.Errorf("got %q, want empty", got)
	}
}

func TestExtractPeriod(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected string
	}{
		{"slash dates", "Statement period 01/01/2024 to 31/01/2024", "01/01/2024 to 31/01/2024"},
		{"text dates", "Your statement\nPeriod: 1 Jan 2024 - 31 Jan 2024", "1 Jan 2024 to 31 Jan 2024"},
		{"only one date", "Statement period from 01/01/2024", ""},
		{"no period line", "01/01/2024 to 31/01/2024", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := extractPeriod(tt.text); got != tt.expected {
				t.Errorf("got %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestExtractOpeningBalance(t *testing.T) {
	tests := []struct {
		line   string
		want   float64
		wantOK bool
	}{
		{"Opening Balance £1,000.00", 1000, true},
		{"01 Jan 24 BALANCE BROUGHT FORWARD 1,250.50", 1250.50, true},
		{"4 Dec Start balance 250.00", 250, true},
		{"Closing Balance 900.00", 0, false},
		{"Opening Balance", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			got, ok := extractOpeningBalance(tt.line)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("got (%v, %v), want (%v, %v)", got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestKeywordDescriptions(t *testing.T) {
	tests := []struct {
		desc   string
		credit bool
		debit  bool
	}{
		{"ACME LTD SALARY", true, false},
		{"BANK CREDIT ACME", true, false},
		{"FASTER PAYMENT RECEIVED", true, true},
		{"CARD PAYMENT TO TESCO", false, true},
		{"BRITISH GAS DD", false, true},
		{"REFUND AMAZON", true, false},
		{"MYSTERY", false, false},
	}
	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			if got := isCreditDescription(tt.desc); got != tt.credit {
				t.Errorf("credit: got %v, want %v", got, tt.credit)
			}
			if got := isDebitDescription(tt.desc); got != tt.debit {
				t.Errorf("debit: got %v, want %v", got, tt.debit)
			}
		})
	}
}

func TestCleanDescription(t *testing.T) {
	if got := cleanDescription("  → CARD   PAYMENT  TO\tTESCO → "); got != "CARD PAYMENT TO TESCO" {
		t.Errorf("got %q", got)
	}
}
