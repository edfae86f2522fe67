package parser

import (
	"regexp"
	"strings"
)

// BarclaysParser handles Barclays bank statements.
//
// Barclays statements come in two main formats:
//
// Format A (standard): Date | Description | Money out | Money in | Balance
//
//	Date format: DD/MM/YYYY or DD Mon YYYY
//	Example: "15/01/2024  CARD PAYMENT TO TESCO STORES 2602  25.99  1,234.56"
//
// Format B (business, arrow-separated): uses → as column separator and short dates "D Mon"
//
//	Example: "5 Dec → Direct Debit to Stripe → 58.80 → 9,397.88"
type BarclaysParser struct{}

func (p *BarclaysParser) BankName() string {
	return "Barclays"
}

const barclaysAmounts = `£?([\d,]+\.\d{2})?\s*£?([\d,]+\.\d{2})?\s*£?([\d,]+\.\d{2})\s*$`

var (
	barclaysTxnPattern      = regexp.MustCompile(`^(\d{1,2}/\d{1,2}/\d{2,4})\s+(.+?)\s+` + barclaysAmounts)
	barclaysTextDatePattern = regexp.MustCompile(`^(\d{1,2}\s+` + monthAlt + `\s+\d{2,4})\s+(.+?)\s+` + barclaysAmounts)
	barclaysTxnSimple       = regexp.MustCompile(`^(\d{1,2}/\d{1,2}/\d{2,4})\s+(.+?)\s+£?([\d,]+\.\d{2})\s*$`)
	// DD Mon  Description  Amount  Balance
	barclaysCompactPattern = regexp.MustCompile(
		`^(\d{1,2}\s+` + monthAlt + `)\s+(.+?)\s+£?([\d,]+\.\d{2})\s+£?([\d,]+\.\d{2})\s*$`,
	)
)

func (p *BarclaysParser) Rows(lines []string) []Row {
	for _, line := range lines {
		if strings.Contains(line, "→") {
			return p.arrowRows(lines)
		}
	}
	return p.standardRows(lines)
}

// arrowRows handles business statements that use → as column separators
// and short dates (D Mon) without year. Rows without their own date inherit
// the last date seen.
//
// Line examples:
//
//	"4 Dec Start Balance → 9,856.68"
//	"On-Line Banking Bill Payment to → 400.00 → 9,456.68"
//	"5 Dec → Direct Debit to Stripe → 58.80 → 9,397.88"
//	"Direct Credit From Antalis Limited → 10,500.00 19,749.38"
//	"Ref: Antalis Limited" (continuation)
func (p *BarclaysParser) arrowRows(lines []string) []Row {
	var rows []Row
	inTransactionSection := false
	currentDate := ""

	for _, raw := range lines {
		line := normalizeLine(raw)
		if line == "" || isBarclaysFooter(line) || isBarclaysSkipLine(line) {
			continue
		}

		if containsBarclaysHeader(line) {
			inTransactionSection = true
			continue
		}

		// Balance lines carry the date for the dateless rows that follow.
		if isBalanceLine(line) {
			if sd := extractShortDate(line); sd != "" {
				currentDate = sd
				inTransactionSection = true
			}
			continue
		}

		if isSummaryLine(line) {
			continue
		}

		// Foreign currency details belong to the previous row.
		if isBarclaysFXDetailLine(line) {
			if len(rows) > 0 {
				appendContinuation(&rows[len(rows)-1], cleanDescription(strings.ReplaceAll(line, "→", "")))
			}
			continue
		}

		shortDate := extractShortDate(line)
		if shortDate != "" {
			currentDate = shortDate
			inTransactionSection = true
		} else if d := extractDate(line); d != "" {
			currentDate = d
			inTransactionSection = true
		}
		if !inTransactionSection {
			continue
		}

		parts := strings.Split(line, "→")
		for j := range parts {
			parts[j] = strings.TrimSpace(parts[j])
		}

		if !isBarclaysTransactionLine(parts) {
			if len(rows) > 0 {
				if clean := cleanDescription(strings.ReplaceAll(line, "→", "")); clean != "" {
					appendContinuation(&rows[len(rows)-1], clean)
				}
			}
			continue
		}

		if row, ok := parseBarclaysArrowRow(parts, shortDate, currentDate); ok {
			row.Text = line
			rows = append(rows, row)
		}
	}

	return rows
}

// isBarclaysTransactionLine reports whether a column after the first holds
// nothing but amounts. Ref: lines and other continuations do not.
func isBarclaysTransactionLine(parts []string) bool {
	if len(parts) < 2 {
		return false
	}
	for _, part := range parts[1:] {
		fields := strings.Fields(part)
		if len(fields) == 0 {
			continue
		}
		allAmounts := true
		for _, f := range fields {
			if !amountPattern.MatchString(f) {
				allAmounts = false
				break
			}
		}
		if allAmounts {
			return true
		}
	}
	return false
}

func parseBarclaysArrowRow(parts []string, shortDate, currentDate string) (Row, bool) {
	desc := extractBarclaysDescription(parts, shortDate)
	if desc == "" || currentDate == "" {
		return Row{}, false
	}

	var amounts []float64
	for _, part := range parts[1:] {
		for _, f := range strings.Fields(part) {
			if !amountPattern.MatchString(f) {
				continue
			}
			if a, err := parseAmount(f); err == nil && a > 0 {
				amounts = append(amounts, a)
			}
		}
	}
	if len(amounts) == 0 {
		return Row{}, false
	}

	row := Row{Date: currentDate, Description: desc, Amount: amounts[0]}
	if len(amounts) >= 2 {
		bal := amounts[len(amounts)-1]
		row.Balance = &bal
	}

	switch {
	case isCreditDescription(desc):
		row.Column = SignCredit
	case isDebitDescription(desc):
		row.Column = SignDebit
	default:
		row.Column = inferSignFromArrowParts(parts)
	}
	return row, true
}

// extractBarclaysDescription gets the description text from arrow-separated parts.
func extractBarclaysDescription(parts []string, shortDate string) string {
	if len(parts) == 0 {
		return ""
	}

	firstPart := parts[0]
	if shortDate != "" {
		if idx := strings.Index(firstPart, shortDate); idx >= 0 {
			firstPart = strings.TrimSpace(firstPart[idx+len(shortDate):])
		}
	}

	// "5 Dec → Direct Debit to Stripe → ..." puts the description in the
	// second segment.
	if firstPart == "" && len(parts) > 1 {
		return cleanDescription(amountPattern.ReplaceAllString(parts[1], ""))
	}

	if locs := amountPattern.FindAllStringIndex(firstPart, -1); len(locs) > 0 {
		firstPart = firstPart[:locs[0][0]]
	}
	return cleanDescription(firstPart)
}

// inferSignFromArrowParts reads the sign from the layout of the last segment.
// Debits: each amount is in its own segment "→ 400.00 → 9,456.68"
// Credits: amount and balance share a segment "→ 10,500.00 19,749.38"
func inferSignFromArrowParts(parts []string) Sign {
	for i := len(parts) - 1; i >= 1; i-- {
		if p := strings.TrimSpace(parts[i]); p != "" {
			if len(amountPattern.FindAllString(p, -1)) >= 2 {
				return SignCredit
			}
			break
		}
	}
	return SignDebit
}

// isBarclaysFXDetailLine identifies foreign currency detail/continuation lines
// that contain amounts but are NOT separate transactions.
// Examples:
//
//	"19.49 On 08 Dec at VISA Exchange Rate 1.33"
//	"The Final GBP Amount Includes A Non-Sterling Transaction Fee of £ 0.40"
func isBarclaysFXDetailLine(line string) bool {
	lower := strings.ToLower(line)
	for _, kw := range []string{"exchange rate", "non-sterling transaction fee", "final gbp amount"} {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

func isBarclaysSkipLine(line string) bool {
	lower := strings.ToLower(line)
	for _, phrase := range []string{
		"at a glance", "your deposit is eligible", "compensation scheme",
		"your business current account", "issued on", "swiftbic", "iban gb", "anything wrong",
	} {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}

// standardRows handles Format A.
func (p *BarclaysParser) standardRows(lines []string) []Row {
	var rows []Row
	inTransactionSection := false

	for _, raw := range lines {
		line := normalizeLine(raw)
		if isBalanceLine(line) {
			continue
		}

		if containsBarclaysHeader(line) {
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

		if row, ok := tryColumns(barclaysTxnPattern, line); ok {
			rows = append(rows, row)
			continue
		}
		if row, ok := tryColumns(barclaysTextDatePattern, line); ok {
			rows = append(rows, row)
			continue
		}

		if m := barclaysCompactPattern.FindStringSubmatch(line); m != nil {
			row := Row{Date: m[1], Description: strings.TrimSpace(m[2]), Text: line}
			row.Amount, _ = parseAmount(m[3])
			row.Balance = amountPtr(m[4])
			rows = append(rows, row)
			continue
		}

		if m := barclaysTxnSimple.FindStringSubmatch(line); m != nil {
			row := Row{Date: m[1], Description: strings.TrimSpace(m[2]), Text: line}
			row.Amount, _ = parseAmount(m[3])
			rows = append(rows, row)
			continue
		}

		if len(rows) > 0 && !hasDate && line != "" && !isSummaryLine(line) && !isBarclaysFooter(line) {
			appendContinuation(&rows[len(rows)-1], line)
		}
	}

	return rows
}

func containsBarclaysHeader(line string) bool {
	lower := strings.ToLower(line)
	return (strings.Contains(lower, "date") &&
		(strings.Contains(lower, "money out") || strings.Contains(lower, "money in") ||
			strings.Contains(lower, "description") || strings.Contains(lower, "details"))) ||
		containsTransactionHeader(line)
}

func isBarclaysFooter(line string) bool {
	lower := strings.ToLower(line)
	for _, kw := range []string{
		"barclays bank", "registered in", "authorised by",
		"financial conduct", "please check", "if you find",
		"prudential regulation",
	} {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
