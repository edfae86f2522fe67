package parser

import (
	"regexp"
	"strings"
)

// MetroBankParser handles Metro Bank statements.
//
// Metro Bank statements typically have this layout:
//
//	Date | Transaction type | Description | Paid out | Paid in | Balance
//
// Date format: DD/MM/YYYY
// Example line: "15/01/2024 CARD PAYMENT TESCO STORES 25.99 1,234.56"
type MetroBankParser struct{}

func (p *MetroBankParser) BankName() string {
	return "Metro Bank"
}

// DATE  DESCRIPTION  [PAID_OUT]  [PAID_IN]  BALANCE
var metroTxnPattern = regexp.MustCompile(
	`^(\d{1,2}/\d{1,2}/\d{2,4})\s+(.+?)` +
		`\s+([\d,]+\.\d{2})?\s*([\d,]+\.\d{2})?\s+([\d,]+\.\d{2})\s*$`,
)

// Simpler pattern for lines with fewer columns
var metroTxnSimple = regexp.MustCompile(
	`^(\d{1,2}/\d{1,2}/\d{2,4})\s+(.+?)\s+([\d,]+\.\d{2})\s*$`,
)

func (p *MetroBankParser) Rows(lines []string) []Row {
	var rows []Row
	inTransactionSection := false

	for _, raw := range lines {
		line := normalizeLine(raw)

		// Opening balance is read into the metadata.
		if isBalanceLine(line) {
			continue
		}

		if containsTransactionHeader(line) {
			inTransactionSection = true
			continue
		}

		hasDate := startsWithDate(line)
		if !inTransactionSection && !hasDate {
			continue
		}
		if hasDate {
			inTransactionSection = true
		}

		if row, ok := tryColumns(metroTxnPattern, line); ok {
			rows = append(rows, row)
			continue
		}

		if m := metroTxnSimple.FindStringSubmatch(line); m != nil {
			row := Row{Date: m[1], Description: strings.TrimSpace(m[2]), Text: line}
			row.Amount, _ = parseAmount(m[3])
			rows = append(rows, row)
			continue
		}

		// Multi-line description continuation
		if len(rows) > 0 && !hasDate && line != "" && !isSummaryLine(line) {
			appendContinuation(&rows[len(rows)-1], line)
		}
	}

	return rows
}
