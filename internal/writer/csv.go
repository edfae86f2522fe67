package writer

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/insightdelivered/statement-intelligence/internal/models"
)

const dateLayout = "02/01/2006"

// CSVWriter writes transactions and recurring patterns to CSV format.
type CSVWriter struct {
	IncludeHeader bool
}

// WriteToFile writes transactions to a CSV file at the given path.
func (w *CSVWriter) WriteToFile(path string, info *models.StatementInfo) error {
	return writeFile(path, func(f io.Writer) error { return w.Write(f, info) })
}

// WritePatternsToFile writes recurring patterns to a CSV file at the given path.
func (w *CSVWriter) WritePatternsToFile(path string, patterns []models.RecurringPattern) error {
	return writeFile(path, func(f io.Writer) error { return w.WritePatterns(f, patterns) })
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file %q: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Write writes transactions in CSV format to the given writer.
func (w *CSVWriter) Write(out io.Writer, info *models.StatementInfo) error {
	writer := csv.NewWriter(out)

	// Write metadata as comments (CSV header rows)
	if w.IncludeHeader {
		md := info.Metadata
		meta := [][2]string{
			{"# Bank", string(md.Bank)},
			{"# Account Number", md.AccountNumber},
			{"# Sort Code", md.SortCode},
			{"# Statement Period", md.StatementPeriod},
		}
		if md.OpeningBalance != nil {
			meta = append(meta, [2]string{"# Opening Balance", strconv.FormatFloat(*md.OpeningBalance, 'f', 2, 64)})
		}
		for _, m := range meta {
			if m[1] == "" {
				continue
			}
			if err := writer.Write(m[:]); err != nil {
				return fmt.Errorf("failed to write CSV metadata: %w", err)
			}
		}
	}

	header := []string{"Date", "Description", "Reference", "Type", "Amount", "Balance", "Hash"}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, txn := range info.Transactions {
		kind := "CREDIT"
		if txn.IsDebit() {
			kind = "DEBIT"
		}
		balance := ""
		if txn.Balance != nil {
			balance = strconv.FormatFloat(*txn.Balance, 'f', 2, 64)
		}
		row := []string{
			txn.Date.Format(dateLayout),
			txn.Description,
			txn.Reference,
			kind,
			formatAmount(txn.Amount),
			balance,
			txn.Hash,
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// WritePatterns writes one row per recurring pattern.
func (w *CSVWriter) WritePatterns(out io.Writer, patterns []models.RecurringPattern) error {
	writer := csv.NewWriter(out)

	header := []string{
		"Payee", "Frequency", "Average Amount", "Min Amount", "Max Amount", "Variance",
		"Occurrences", "Confidence", "First Seen", "Last Seen", "Next Expected",
		"Status", "Category", "Domain", "Record Type",
	}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, p := range patterns {
		row := []string{
			p.Payee,
			string(p.Frequency),
			formatAmount(p.AverageAmount),
			formatAmount(p.MinAmount),
			formatAmount(p.MaxAmount),
			strconv.FormatFloat(p.AmountVariance, 'f', 4, 64),
			strconv.Itoa(p.Occurrences),
			strconv.FormatFloat(p.Confidence, 'f', 2, 64),
			p.FirstSeen.Format(dateLayout),
			p.LastSeen.Format(dateLayout),
			formatDate(p.NextExpected),
			string(p.Status),
			categoryLabel(p),
			string(p.SuggestedDomain),
			string(p.SuggestedRecordType),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

func formatAmount(amount float64) string {
	if amount == 0 {
		return ""
	}
	return strconv.FormatFloat(amount, 'f', 2, 64)
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(dateLayout)
}

// categoryLabel joins category and subcategory as "utility/gas".
func categoryLabel(p models.RecurringPattern) string {
	return strings.TrimSuffix(p.Category+"/"+p.Subcategory, "/")
}
