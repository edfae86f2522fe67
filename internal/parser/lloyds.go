package parser

import (
	"regexp"
	"strings"
)

// LloydsParser handles Lloyds Bank statements.
//
// Layout:
//
//	Date | Description | Type | Money In (£) | Money Out (£) | Balance (£)
//
// Date format: DD Mon YY. Only one of the money columns is printed per
// row, so the type code carries the sign. An overdrawn balance is suffixed
// with "O/D".
type LloydsParser struct{}

func (p *LloydsParser) BankName() string {
	return "Lloyds Bank"
}

var lloydsTxnPattern = regexp.MustCompile(
	`^(\d{1,2}\s+` + monthAlt + `\s+\d{2,4})\s+(.+?)\s+([A-Z]{2,3})\s+£?([\d,]+\.\d{2})(?:\s+£?([\d,]+\.\d{2})\s*(O/?D)?)?\s*$`,
)

// lloydsTypeCodes maps transaction type codes to the direction they imply.
// Codes missing from the map (TFR, COR) can go either way.
var lloydsTypeCodes = map[string]Sign{
	"BGC": SignCredit, // bank giro credit
	"FPI": SignCredit, // faster payment in
	"DEP": SignCredit,
	"BNS": SignCredit,
	"DD":  SignDebit,
	"SO":  SignDebit,
	"FPO": SignDebit,
	"DEB": SignDebit,
	"CPT": SignDebit, // cashpoint
	"BP":  SignDebit, // bill payment
	"CHQ": SignDebit,
	"FEE": SignDebit,
	"PAY": SignDebit,
	"CSH": SignDebit,
	"TFR": SignUnknown,
	"COR": SignUnknown,
}

func (p *LloydsParser) Rows(lines []string) []Row {
	var rows []Row
	inTransactionSection := false

	for _, raw := range lines {
		line := normalizeLine(raw)
		if line == "" || isBalanceLine(line) {
			continue
		}
		if containsTransactionHeader(line) {
			inTransactionSection = true
			continue
		}

		hasDate := startsWithDate(line)
		if hasDate {
			inTransactionSection = true
		}
		if !inTransactionSection {
			continue
		}

		if m := lloydsTxnPattern.FindStringSubmatch(line); m != nil {
			if sign, known := lloydsTypeCodes[m[3]]; known {
				row := Row{Date: m[1], Description: strings.TrimSpace(m[2]), Reference: m[3], Tag: sign, Text: line}
				row.Amount, _ = parseAmount(m[4])
				if bal := amountPtr(m[5]); bal != nil {
					if m[6] != "" {
						*bal = -*bal
					}
					row.Balance = bal
				}
				rows = append(rows, row)
				continue
			}
		}

		if hasDate {
			// A dated line in an unknown shape still holds a transaction.
			if row, ok := tryDateLine(line); ok {
				rows = append(rows, row)
			}
			continue
		}

		if len(rows) > 0 && !isSummaryLine(line) && !amountCellPattern.MatchString(line) {
			appendContinuation(&rows[len(rows)-1], line)
		}
	}

	return rows
}
