package parser

import (
	"regexp"
	"strings"
)

// HSBCParser handles HSBC bank statements.
//
// HSBC statements typically have this layout:
//
//	Date | Payment type and details | Paid out | Paid in | Balance
//
// Date format: DD Mon YY (e.g., 15 Jan 24) or DD Mon YYYY. The balance is
// often printed only on the last transaction of a day.
type HSBCParser struct{}

func (p *HSBCParser) BankName() string {
	return "HSBC"
}

// amountCellPattern matches a cell containing a single monetary amount.
var amountCellPattern = regexp.MustCompile(`^£?\s*([\d,]+\.\d{2})\s*$`)

const hsbcAmounts = `£?([\d,]+\.\d{2})?\s*£?([\d,]+\.\d{2})?\s*£?([\d,]+\.\d{2})\s*$`

// HSBC transaction line patterns (for non-tab-separated text)
var (
	hsbcTxnPattern = regexp.MustCompile(
		`^(\d{1,2}\s+` + monthAlt + `\s+\d{2,4})\s+(.+?)\s{2,}` +
			`£?([\d,]+\.\d{2})?\s+£?([\d,]+\.\d{2})?\s+£?([\d,]+\.\d{2})\s*$`,
	)
	hsbcTxnFlexible      = regexp.MustCompile(`^(\d{1,2}\s+` + monthAlt + `\s+\d{2,4})\s+(.+?)\s+` + hsbcAmounts)
	hsbcDashDatePattern  = regexp.MustCompile(`^(\d{1,2}-` + monthAlt + `-\d{2,4})\s+(.+?)\s+` + hsbcAmounts)
	hsbcSlashDatePattern = regexp.MustCompile(`^(\d{1,2}/\d{1,2}/\d{2,4})\s+(.+?)\s+` + hsbcAmounts)
	hsbcTxnSimple        = regexp.MustCompile(`^(\d{1,2}\s+` + monthAlt + `\s+\d{2,4})\s+(.+?)\s+£?([\d,]+\.\d{2})\s*$`)
)

func (p *HSBCParser) Rows(lines []string) []Row {
	var rows []Row
	inTransactionSection := false

	for i := 0; i < len(lines); i++ {
		line := normalizeLine(lines[i])
		if line == "" || isBalanceLine(line) {
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

		// Tab-separated cells come from client-side (pdf.js) extraction.
		if strings.Contains(line, "\t") {
			if row, ok := tryCells(line); ok {
				rows = append(rows, row)
				continue
			}
		}

		if row, ok := p.tryPatterns(line); ok {
			rows = append(rows, row)
			continue
		}

		if m := hsbcTxnSimple.FindStringSubmatch(line); m != nil {
			row := Row{Date: m[1], Description: strings.TrimSpace(m[2]), Text: line}
			row.Amount, _ = parseAmount(m[3])
			rows = append(rows, row)
			continue
		}

		if row, ok := tryDateLine(line); ok {
			rows = append(rows, row)
			continue
		}

		// Look-ahead: a dated line without amounts may have its amount cells
		// split onto the next line by the PDF extractor.
		if hasDate && i+1 < len(lines) {
			next := normalizeLine(lines[i+1])
			if next != "" && !startsWithDate(next) {
				if row, ok := tryCells(line + "\t" + next); ok {
					row.Text = line + "\n" + next
					rows = append(rows, row)
					i++
					continue
				}
			}
		}

		// Multi-line description continuation
		if len(rows) > 0 && !hasDate && !isSummaryLine(line) {
			cleaned := strings.TrimSpace(strings.ReplaceAll(line, "\t", " "))
			if !amountCellPattern.MatchString(cleaned) {
				appendContinuation(&rows[len(rows)-1], cleaned)
			}
		}
	}

	return rows
}

func (p *HSBCParser) tryPatterns(line string) (Row, bool) {
	for _, pat := range []*regexp.Regexp{hsbcTxnPattern, hsbcTxnFlexible, hsbcDashDatePattern, hsbcSlashDatePattern} {
		if row, ok := tryColumns(pat, line); ok {
			return row, true
		}
	}
	return Row{}, false
}

// tryCells handles tab-separated lines: the date opens the first cell,
// amounts are read from the right, everything in between is the description.
func tryCells(line string) (Row, bool) {
	parts := strings.Split(line, "\t")
	if len(parts) < 2 {
		return Row{}, false
	}
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}

	date := extractDate(parts[0])
	if date == "" {
		return Row{}, false
	}
	// Handles stray characters like "A 30 Dec 25" where "A" is a PDF artifact.
	dateIdx := strings.Index(parts[0], date)

	var amounts []float64
	rightBoundary := len(parts)
	for i := len(parts) - 1; i >= 1; i-- {
		cell := parts[i]
		if cell == "" {
			continue
		}
		m := amountCellPattern.FindStringSubmatch(cell)
		if m == nil {
			break
		}
		amt, _ := parseAmount(m[1])
		amounts = append([]float64{amt}, amounts...)
		rightBoundary = i
	}
	if len(amounts) == 0 {
		return Row{}, false
	}

	var descParts []string
	if rest := strings.TrimSpace(parts[0][dateIdx+len(date):]); rest != "" {
		descParts = append(descParts, rest)
	}
	for i := 1; i < rightBoundary; i++ {
		cell := parts[i]
		// Skip empty cells and PDF artifacts (single dots, dashes)
		if cell == "" || cell == "." || cell == "-" || cell == "–" {
			continue
		}
		descParts = append(descParts, cell)
	}

	row := Row{Date: date, Description: strings.Join(descParts, " "), Text: line}
	assignAmounts(&row, amounts)
	return row, true
}

// lineAmountPattern finds every amount on a line regardless of separators.
var lineAmountPattern = regexp.MustCompile(`£?([\d,]+\.\d{2})`)

// tryDateLine handles lines that start with a date and end with amounts,
// regardless of separator style.
func tryDateLine(line string) (Row, bool) {
	date := extractDate(line)
	if date == "" {
		return Row{}, false
	}
	rest := strings.TrimSpace(line[strings.Index(line, date)+len(date):])
	locs := lineAmountPattern.FindAllStringSubmatchIndex(rest, -1)
	if len(locs) == 0 {
		return Row{}, false
	}
	desc := strings.TrimSpace(rest[:locs[0][0]])
	if desc == "" {
		return Row{}, false
	}

	var amounts []float64
	for _, loc := range locs {
		amt, _ := parseAmount(rest[loc[2]:loc[3]])
		amounts = append(amounts, amt)
	}
	row := Row{Date: date, Description: desc, Text: line}
	assignAmounts(&row, amounts)
	return row, true
}

// assignAmounts maps the amounts found on a row onto amount and balance.
// Three amounts are read as paid out, paid in and balance.
func assignAmounts(row *Row, amounts []float64) {
	switch len(amounts) {
	case 1:
		row.Amount = amounts[0]
	case 2:
		row.Amount = amounts[0]
		row.Balance = &amounts[1]
	case 3:
		row.Balance = &amounts[2]
		switch {
		case amounts[0] > 0 && amounts[1] == 0:
			row.Amount, row.Column = amounts[0], SignDebit
		case amounts[1] > 0:
			row.Amount, row.Column = amounts[1], SignCredit
		default:
			row.Amount, row.Column = amounts[0], SignDebit
		}
	default:
		row.Balance = &amounts[len(amounts)-1]
		row.Amount = amounts[len(amounts)-2]
	}
}
