package writer

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/insightdelivered/statement-intelligence/internal/models"
)

func f64(v float64) *float64 { return &v }

func day(d int) time.Time { return time.Date(2024, time.January, d, 0, 0, 0, 0, time.UTC) }

func TestCSVWriter_Write(t *testing.T) {
	info := &models.StatementInfo{
		Metadata: models.StatementMetadata{
			Bank:            models.BankMetro,
			AccountNumber:   "****5678",
			SortCode:        "23-05-80",
			StatementPeriod: "01/01/2024 to 31/01/2024",
			OpeningBalance:  f64(1260.55),
		},
		Transactions: []models.Transaction{
			{Date: day(15), Description: "CARD PAYMENT TESCO", Amount: -25.99, Balance: f64(1234.56), Hash: "abc"},
			{Date: day(16), Description: "SALARY, ACME LTD", Amount: 2500.00, Balance: f64(3734.56), Hash: "def"},
		},
	}

	var buf bytes.Buffer
	w := &CSVWriter{IncludeHeader: true}
	if err := w.Write(&buf, info); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	output := buf.String()
	t.Logf("output:\n%s", output)

	for _, want := range []string{
		"# Bank,metro",
		"# Account Number,****5678",
		"# Opening Balance,1260.55",
		"Date,Description,Reference,Type,Amount,Balance,Hash",
		"15/01/2024,CARD PAYMENT TESCO,,DEBIT,-25.99,1234.56,abc",
		`16/01/2024,"SALARY, ACME LTD",,CREDIT,2500.00,3734.56,def`,
	} {
		if !strings.Contains(output, want) {
			t.Errorf("missing %q", want)
		}
	}

	lines := strings.Split(strings.TrimSpace(output), "\n")
	// 5 metadata lines + 1 header + 2 transactions = 8
	if len(lines) != 8 {
		t.Errorf("expected 8 lines, got %d", len(lines))
	}
}

func TestCSVWriter_WriteNoHeader(t *testing.T) {
	info := &models.StatementInfo{
		Metadata: models.StatementMetadata{Bank: models.BankHSBC},
		Transactions: []models.Transaction{
			{Date: day(15), Description: "PAYMENT", Amount: -10.00},
		},
	}

	var buf bytes.Buffer
	w := &CSVWriter{IncludeHeader: false}
	if err := w.Write(&buf, info); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	output := buf.String()
	if strings.Contains(output, "# Bank") {
		t.Error("should not have bank metadata when header=false")
	}
	if !strings.HasPrefix(output, "Date,Description,Reference,Type,Amount,Balance,Hash") {
		t.Error("expected column headers even without metadata")
	}
	// no balance renders as an empty cell
	if !strings.Contains(output, "15/01/2024,PAYMENT,,DEBIT,-10.00,,") {
		t.Errorf("unexpected row in %q", output)
	}
}

func TestCSVWriter_WritePatterns(t *testing.T) {
	next := day(31).AddDate(0, 1, 0)
	patterns := []models.RecurringPattern{
		{
			Payee:               "British Gas",
			Frequency:           models.FrequencyMonthly,
			AverageAmount:       -45.10,
			MinAmount:           -45.10,
			MaxAmount:           -45.10,
			Occurrences:         3,
			Confidence:          0.9412,
			FirstSeen:           day(1),
			LastSeen:            day(31),
			NextExpected:        &next,
			Status:              models.PatternActive,
			Category:            "utility",
			Subcategory:         "gas",
			SuggestedDomain:     models.DomainProperty,
			SuggestedRecordType: models.RecordUtilityBill,
		},
		{
			Payee:     "Window Cleaner",
			Frequency: models.FrequencyIrregular,
			Category:  "general",
			Status:    models.PatternStopped,
			FirstSeen: day(2),
			LastSeen:  day(9),
		},
	}

	var buf bytes.Buffer
	w := &CSVWriter{}
	if err := w.WritePatterns(&buf, patterns); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("output is not valid CSV: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected header + 2 rows, got %d", len(records))
	}

	gas := records[1]
	tests := []struct {
		col  int
		want string
	}{
		{0, "British Gas"},
		{1, "monthly"},
		{2, "-45.10"},
		{6, "3"},
		{7, "0.94"},
		{10, "02/03/2024"},
		{11, "active"},
		{12, "utility/gas"},
		{13, "property"},
		{14, "utility_bill"},
	}
	for _, tt := range tests {
		if gas[tt.col] != tt.want {
			t.Errorf("column %s: got %q, want %q", records[0][tt.col], gas[tt.col], tt.want)
		}
	}

	if records[2][10] != "" || records[2][12] != "general" {
		t.Errorf("irregular row: %v", records[2])
	}
}

func TestCSVWriter_WriteToFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.csv")
	info := &models.StatementInfo{Transactions: []models.Transaction{{Date: day(3), Description: "X", Amount: -1}}}

	w := &CSVWriter{IncludeHeader: true}
	if err := w.WriteToFile(path, info); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "03/01/2024,X,,DEBIT,-1.00") {
		t.Errorf("unexpected file content %q", data)
	}

	if err := w.WriteToFile(filepath.Join(dir, "missing", "out.csv"), info); err == nil {
		t.Error("expected error for a missing directory")
	}
}

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		input    float64
		expected string
	}{
		{25.99, "25.99"},
		{-1234.56, "-1234.56"},
		{0, ""},
		{2500.00, "2500.00"},
	}

	for _, tt := range tests {
		got := formatAmount(tt.input)
		if got != tt.expected {
			t.Errorf("formatAmount(%f): got %q, want %q", tt.input, got, tt.expected)
		}
	}
}
