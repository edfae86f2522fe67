package parser

import (
	"testing"
	"time"
)

func TestParseDateToken(t *testing.T) {
	tests := []struct {
		input  string
		want   dateToken
		wantOK bool
	}{
		{"15/01/2024", dateToken{day: 15, month: time.January, year: 2024, hasYear: true}, true},
		{"1/2/24", dateToken{day: 1, month: time.February, year: 2024, hasYear: true}, true},
		{"2024-03-09", dateToken{day: 9, month: time.March, year: 2024, hasYear: true}, true},
		{"15 Jan 2024", dateToken{day: 15, month: time.January, year: 2024, hasYear: true}, true},
		{"05-Sept-23", dateToken{day: 5, month: time.September, year: 2023, hasYear: true}, true},
		{"4 Dec", dateToken{day: 4, month: time.December}, true},
		{"15/13/2024", dateToken{}, false},
		{"15 Foo 2024", dateToken{}, false},
		{"yesterday", dateToken{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := parseDateToken(tt.input)
			if ok != tt.wantOK {
				t.Fatalf("ok: got %v, want %v", ok, tt.wantOK)
			}
			if got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestValidDate(t *testing.T) {
	tests := []struct {
		name  string
		year  int
		month time.Month
		day   int
		ok    bool
	}{
		{"regular", 2024, time.January, 31, true},
		{"leap day", 2024, time.February, 29, true},
		{"not a leap year", 2023, time.February, 29, false},
		{"31 February", 2024, time.February, 31, false},
		{"31 April", 2024, time.April, 31, false},
		{"day zero", 2024, time.March, 0, false},
		{"year out of range", 1800, time.March, 1, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := validDate(tt.year, tt.month, tt.day)
			if ok != tt.ok {
				t.Fatalf("ok: got %v, want %v", ok, tt.ok)
			}
			if ok && (got.Year() != tt.year || got.Month() != tt.month || got.Day() != tt.day) {
				t.Errorf("got %v", got)
			}
		})
	}
}

func TestYearResolver(t *testing.T) {
	r := &yearResolver{year: 2023}
	inputs := []string{"28 Nov", "15 Dec", "31 Dec", "2 Jan", "15 Feb"}
	want := []string{"2023-11-28", "2023-12-15", "2023-12-31", "2024-01-02", "2024-02-15"}

	for i, in := range inputs {
		got, ok := r.resolve(in)
		if !ok {
			t.Fatalf("resolve(%q) failed", in)
		}
		if got.Format("2006-01-02") != want[i] {
			t.Errorf("resolve(%q) = %s, want %s", in, got.Format("2006-01-02"), want[i])
		}
	}
}

func TestYearResolver_RolloverWithoutDecember(t *testing.T) {
	r := &yearResolver{year: 2023}
	inputs := []string{"20 Nov", "28 Nov", "3 Feb", "14 Feb", "2 Mar"}
	want := []string{"2023-11-20", "2023-11-28", "2024-02-03", "2024-02-14", "2024-03-02"}

	for i, in := range inputs {
		got, ok := r.resolve(in)
		if !ok {
			t.Fatalf("resolve(%q) failed", in)
		}
		if got.Format("2006-01-02") != want[i] {
			t.Errorf("resolve(%q) = %s, want %s", in, got.Format("2006-01-02"), want[i])
		}
	}
}

func TestYearResolver_FullDatesResetYear(t *testing.T) {
	r := &yearResolver{}
	if _, ok := r.resolve("4 Dec"); ok {
		t.Error("short date without a known year should not resolve")
	}
	if _, ok := r.resolve("03/12/2022"); !ok {
		t.Fatal("full date should resolve")
	}
	got, ok := r.resolve("4 Dec")
	if !ok || got.Year() != 2022 {
		t.Errorf("got %v (%v), want a 2022 date", got, ok)
	}
	if _, ok := r.resolve("31 Feb"); ok {
		t.Error("31 Feb should be rejected")
	}
}

func TestStatementYear(t *testing.T) {
	tests := []struct {
		name   string
		period string
		text   string
		want   int
	}{
		{"from period", "01/12/2023 to 31/01/2024", "Printed 2025", 2023},
		{"text period", "1 Dec 2022 to 31 Dec 2022", "", 2022},
		{"from text", "", "Statement issued March 2021\n4 Dec Coffee 3.00", 2021},
		{"none", "", "4 Dec Coffee 3.00", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := statementYear(tt.period, tt.text); got != tt.want {
				t.Errorf("got %d, want %d", got, tt.want)
			}
		})
	}
}
