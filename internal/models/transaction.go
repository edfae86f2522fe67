package models

import "time"

// Transaction represents a single bank statement transaction.
//
// Amount is signed: negative values are money out, positive values money in.
// Hash is computed from the owner, amount and description and deliberately
// ignores the date, so repeated charges share a fingerprint.
type Transaction struct {
	ID           string    `json:"id"`
	Date         time.Time `json:"date"`
	Description  string    `json:"description"`
	Reference    string    `json:"reference,omitempty"`
	Amount       float64   `json:"amount"`
	Balance      *float64  `json:"balance,omitempty"`
	OriginalText string    `json:"originalText"`
	Hash         string    `json:"hash"`
}

// IsDebit reports whether the transaction takes money out of the account.
func (t Transaction) IsDebit() bool {
	return t.Amount < 0
}

// BankType represents supported bank statement formats.
type BankType string

const (
	BankMetro      BankType = "metro"
	BankHSBC       BankType = "hsbc"
	BankBarclays   BankType = "barclays"
	BankLloyds     BankType = "lloyds"
	BankNatWest    BankType = "natwest"
	BankSantander  BankType = "santander"
	BankNationwide BankType = "nationwide"
	BankMonzo      BankType = "monzo"
	BankStarling   BankType = "starling"
	BankUnknown    BankType = "unknown"
)

// StatementMetadata holds account details extracted from the statement.
type StatementMetadata struct {
	Bank            BankType `json:"bank"`
	AccountNumber   string   `json:"accountNumber,omitempty"` // masked, last four digits only
	SortCode        string   `json:"sortCode,omitempty"`
	StatementPeriod string   `json:"statementPeriod,omitempty"`
	OpeningBalance  *float64 `json:"openingBalance,omitempty"`
}

// StatementInfo is the result of parsing one statement.
type StatementInfo struct {
	Metadata     StatementMetadata
	Transactions []Transaction
}
