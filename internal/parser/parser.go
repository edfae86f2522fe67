// Package parser identifies the issuing bank of a statement and turns its
// flattened text into signed, hashed transactions.
package parser

import (
	"fmt"
	"strings"

	"github.com/insightdelivered/statement-intelligence/internal/models"
)

// Sign is the direction evidence a layout provides for one row.
type Sign int

const (
	SignUnknown Sign = 0
	SignDebit   Sign = -1
	SignCredit  Sign = 1
)

// Row is one transaction as segmented from the statement text, before dates
// and signs are resolved.
type Row struct {
	Date        string // raw date token, possibly without a year
	Description string
	Reference   string
	Amount      float64 // magnitude
	// Tag is explicit sign evidence printed next to the amount (DR/CR, O/D,
	// a leading minus or plus, a transaction type code).
	Tag Sign
	// Column is the evidence from which column the amount was printed in.
	Column  Sign
	Balance *float64
	Text    string // the source line(s)
}

// Parser segments statement lines into rows for one bank layout.
type Parser interface {
	// Rows never fails; lines it cannot interpret are skipped.
	Rows(lines []string) []Row
	// BankName returns the human-readable bank name.
	BankName() string
}

// New returns the parser for the given bank type. Banks without a dedicated
// layout get the generic parser.
func New(bankType models.BankType) (Parser, error) {
	switch bankType {
	case models.BankMetro:
		return &MetroBankParser{}, nil
	case models.BankHSBC:
		return &HSBCParser{}, nil
	case models.BankBarclays:
		return &BarclaysParser{}, nil
	case models.BankLloyds:
		return &LloydsParser{}, nil
	case models.BankNatWest, models.BankSantander, models.BankNationwide,
		models.BankMonzo, models.BankStarling, models.BankUnknown:
		return &GenericParser{Name: bankDisplayNames[bankType]}, nil
	default:
		return nil, fmt.Errorf("unsupported bank type: %q", bankType)
	}
}

// Parse identifies the bank (unless bank is set) and extracts metadata and
// transactions from text. It never fails: unreadable text, an unsupported
// bank or a panic inside a layout yields an empty transaction list.
func Parse(text string, bank models.BankType, ownerID string) *models.StatementInfo {
	if bank == "" {
		bank = Identify(text)
	}
	p, err := New(bank)
	if err != nil {
		bank = models.BankUnknown
		p = &GenericParser{}
	}

	info := &models.StatementInfo{
		Metadata:     extractMetadata(text, bank),
		Transactions: []models.Transaction{},
	}

	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	rows := safeRows(p, lines)
	if len(rows) == 0 {
		return info
	}

	info.Transactions = finalize(rows, finalizeOptions{
		OwnerID:        ownerID,
		Year:           statementYear(info.Metadata.StatementPeriod, text),
		OpeningBalance: info.Metadata.OpeningBalance,
	})
	return info
}

func safeRows(p Parser, lines []string) (rows []Row) {
	defer func() {
		if r := recover(); r != nil {
			rows = nil
		}
	}()
	return p.Rows(lines)
}

func extractMetadata(text string, bank models.BankType) models.StatementMetadata {
	md := models.StatementMetadata{
		Bank:            bank,
		AccountNumber:   maskAccountNumber(findAccountNumber(text)),
		SortCode:        findSortCode(text),
		StatementPeriod: extractPeriod(text),
	}
	for _, line := range strings.Split(text, "\n") {
		if bal, ok := extractOpeningBalance(line); ok {
			md.OpeningBalance = &bal
			break
		}
	}
	return md
}
