package parser

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

const monthAlt = `(?:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)[a-z]*`

// Common date patterns found in UK bank statements.
var (
	// DD/MM/YYYY or DD/MM/YY
	datePatternSlash = regexp.MustCompile(`\b(\d{1,2}/\d{1,2}/\d{2,4})\b`)
	// DD Mon YYYY or DD Mon YY (e.g., 15 Jan 2024)
	datePatternText = regexp.MustCompile(`(?i)\b(\d{1,2}\s+` + monthAlt + `\s+\d{2,4})\b`)
	// DD-Mon-YYYY or DD-Mon-YY
	datePatternDash = regexp.MustCompile(`(?i)\b(\d{1,2}-` + monthAlt + `-\d{2,4})\b`)
	// YYYY-MM-DD
	datePatternISO = regexp.MustCompile(`\b(\d{4}-\d{2}-\d{2})\b`)
	// DD Mon without year (e.g., "4 Dec", "15 Jan"), used by Barclays business statements
	datePatternShort = regexp.MustCompile(`(?i)^(\d{1,2}\s+` + monthAlt + `)(?:\s|→|$)`)

	// yearPattern finds a plausible statement year anywhere in the text.
	yearPattern = regexp.MustCompile(`\b((?:19|20)\d{2})\b`)
)

var fullDatePatterns = []*regexp.Regexp{datePatternSlash, datePatternText, datePatternDash, datePatternISO}

// amountPattern matches numbers like 1,234.56 or 25.99 with an optional pound sign.
var amountPattern = regexp.MustCompile(`£?([\d,]+\.\d{2})`)

var amountReplacer = strings.NewReplacer(
	"£", "",
	"$", "",
	"€", "",
	",", "",
	" ", "",
	"\u00A0", "",
)

// parseAmount converts a string like "1,234.56" or "-£1,234.56" to a float64
// rounded to pence.
func parseAmount(s string) (float64, error) {
	s = amountReplacer.Replace(strings.TrimSpace(s))
	s = strings.TrimPrefix(s, "+")
	if s == "" || s == "-" {
		return 0, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, err
	}
	f, _ := d.Round(2).Float64()
	return f, nil
}

// leadingMatch returns the first match of pat if it starts within the first
// few characters of line. Stray PDF artifacts sometimes precede the date.
func leadingMatch(pat *regexp.Regexp, line string) string {
	loc := pat.FindStringIndex(line)
	if loc == nil || loc[0] >= 3 {
		return ""
	}
	return line[loc[0]:loc[1]]
}

// startsWithDate checks if a line begins with a full date.
func startsWithDate(line string) bool {
	return extractDate(line) != ""
}

// extractDate returns the first full date found at the start of a line.
func extractDate(line string) string {
	line = strings.TrimSpace(line)
	for _, pat := range fullDatePatterns {
		if m := leadingMatch(pat, line); m != "" {
			return m
		}
	}
	return ""
}

// extractShortDate returns the "D Mon" date from the start of a line, or "".
func extractShortDate(line string) string {
	m := datePatternShort.FindStringSubmatch(strings.TrimSpace(line))
	if m != nil {
		return m[1]
	}
	return ""
}

// normalizeLine cleans up common PDF extraction artifacts.
func normalizeLine(line string) string {
	line = strings.ReplaceAll(line, "\u200B", "")
	line = strings.ReplaceAll(line, "\u00A0", " ")
	return strings.TrimSpace(line)
}

// accountLabelPattern finds an account number next to its label; the bare
// eight-digit pattern is the fallback.
var (
	accountLabelPattern  = regexp.MustCompile(`(?i)account\s*(?:number|no\.?)\s*:?\s*(\d{8})\b`)
	accountNumberPattern = regexp.MustCompile(`\b(\d{8})\b`)
	sortCodePattern      = regexp.MustCompile(`\b(\d{2}-\d{2}-\d{2})\b`)
)

func findAccountNumber(text string) string {
	if m := accountLabelPattern.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	return accountNumberPattern.FindString(text)
}

// maskAccountNumber keeps only the last four digits.
func maskAccountNumber(acct string) string {
	if len(acct) <= 4 {
		return acct
	}
	return "****" + acct[len(acct)-4:]
}

func findSortCode(text string) string {
	return sortCodePattern.FindString(text)
}

func extractPeriod(text string) string {
	for _, line := range strings.Split(text, "\n") {
		lower := strings.ToLower(line)
		if !strings.Contains(lower, "period") {
			continue
		}
		for _, pat := range fullDatePatterns {
			if dates := pat.FindAllString(line, 2); len(dates) == 2 {
				return dates[0] + " to " + dates[1]
			}
		}
	}
	return ""
}

// extractOpeningBalance looks for opening/brought-forward balance lines
// and returns the last amount on the line.
func extractOpeningBalance(line string) (float64, bool) {
	if !isOpeningBalanceLine(line) {
		return 0, false
	}
	amounts := amountPattern.FindAllStringSubmatch(line, -1)
	if len(amounts) == 0 {
		return 0, false
	}
	bal, err := parseAmount(amounts[len(amounts)-1][1])
	if err != nil {
		return 0, false
	}
	return bal, true
}

func isOpeningBalanceLine(line string) bool {
	lower := strings.ToLower(line)
	return strings.Contains(lower, "opening balance") ||
		strings.Contains(lower, "start balance") ||
		strings.Contains(lower, "brought forward")
}

// isBalanceLine checks if a line refers to a balance summary rather than a real transaction.
func isBalanceLine(line string) bool {
	lower := strings.ToLower(line)
	for _, kw := range []string{
		"opening balance", "closing balance", "start balance", "end balance",
		"balance brought forward", "balance carried forward", "brought forward", "carried forward",
	} {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

func containsTransactionHeader(line string) bool {
	lower := strings.ToLower(line)
	// "paid" is included in the description check because HSBC PDFs use spread
	// characters in headers (e.g. "Pay m e nt t y pe and de t ails") which makes
	// "details" undetectable, but "Paid out" column header remains intact
	return strings.Contains(lower, "date") &&
		(strings.Contains(lower, "description") || strings.Contains(lower, "transaction") ||
			strings.Contains(lower, "details") || strings.Contains(lower, "paid")) &&
		(strings.Contains(lower, "amount") || strings.Contains(lower, "paid") ||
			strings.Contains(lower, "balance") || strings.Contains(lower, "money"))
}

var debitKeywords = []string{
	"card payment", "direct debit", "debit", "payment", "withdrawal",
	"transfer out", "transfer to", "standing order", "dd ", "pos ", "atm ",
	"purchase", "fee", "charge", "bill payment",
}

var creditKeywords = []string{
	"salary", "wages", "direct credit", "credit from", "bank credit", "bgc ", "bacs ",
	"refund", "interest paid", "interest payment", "transfer from", "transfer in",
	"payment received", "faster payment received", "deposit",
}

// isCreditDescription checks if a description indicates an incoming payment.
// Callers check credit keywords before debit keywords: "PAYMENT RECEIVED"
// would otherwise hit the bare "payment" check.
func isCreditDescription(desc string) bool {
	return containsKeyword(desc, creditKeywords)
}

func isDebitDescription(desc string) bool {
	return containsKeyword(desc, debitKeywords)
}

func containsKeyword(desc string, keywords []string) bool {
	lower := strings.ToLower(desc) + " "
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

func isSummaryLine(line string) bool {
	lower := strings.ToLower(line)
	for _, kw := range []string{
		"opening balance", "closing balance", "total paid in",
		"total paid out", "total payments", "total receipts",
		"statement period", "page ", "continued",
	} {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// cleanDescription trims, strips stray arrows and collapses whitespace.
func cleanDescription(s string) string {
	s = strings.Trim(strings.TrimSpace(s), "→ ")
	return strings.Join(strings.Fields(s), " ")
}

// tryColumns matches DATE DESCRIPTION [OUT] [IN] BALANCE. A lone amount
// fills the first optional group whichever column it came from, so only a
// line with both groups set says anything about the column.
func tryColumns(pat *regexp.Regexp, line string) (Row, bool) {
	m := pat.FindStringSubmatch(line)
	if m == nil {
		return Row{}, false
	}
	row := Row{Date: m[1], Description: strings.TrimSpace(m[2]), Text: line}
	moneyOut, moneyIn := strings.TrimSpace(m[3]), strings.TrimSpace(m[4])
	last := amountPtr(m[5])
	if last == nil {
		return Row{}, false
	}

	switch {
	case moneyOut != "" && moneyIn != "":
		row.Amount, _ = parseAmount(moneyOut)
		row.Column = SignDebit
		row.Balance = last
	case moneyOut != "":
		row.Amount, _ = parseAmount(moneyOut)
		row.Balance = last
	case moneyIn != "":
		row.Amount, _ = parseAmount(moneyIn)
		row.Balance = last
	default:
		row.Amount = *last
	}
	return row, true
}

// amountPtr parses s, returning nil for empty or malformed values.
func amountPtr(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	v, err := parseAmount(s)
	if err != nil {
		return nil
	}
	return &v
}

func appendContinuation(r *Row, line string) {
	r.Description += " " + line
	r.Text += "\n" + line
}
