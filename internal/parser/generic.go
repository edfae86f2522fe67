package parser

import (
	"regexp"
	"strings"
)

// GenericParser is the fallback for banks without a dedicated layout. It
// finds a date at the start of a line, then searches a small forward window
// for the first amount; the text in between is the description. Balances
// are not extracted.
type GenericParser struct {
	Name string
}

func (p *GenericParser) BankName() string {
	if p.Name == "" {
		return "Unknown"
	}
	return p.Name
}

// genericLookahead is how many lines after a dated line may hold its amount.
const genericLookahead = 3

// genericAmountPattern captures an optional sign, the amount and an optional
// DR/CR/O/D tag.
var genericAmountPattern = regexp.MustCompile(
	`(?:^|\s)([-+])?\s?£?((?:\d{1,3}(?:,\d{3})+|\d+)\.\d{2})\s*(CR|DR|O/D)?\b`,
)

func (p *GenericParser) Rows(lines []string) []Row {
	var rows []Row

	for i := 0; i < len(lines); i++ {
		line := normalizeLine(lines[i])
		if line == "" || isBalanceLine(line) || containsTransactionHeader(line) {
			continue
		}
		date := lineDate(line)
		if date == "" {
			continue
		}

		rest := strings.TrimSpace(line[strings.Index(line, date)+len(date):])
		desc := []string{}
		text := []string{line}

		for j := 0; j <= genericLookahead && i+j < len(lines); j++ {
			cand := rest
			if j > 0 {
				cand = normalizeLine(lines[i+j])
				if lineDate(cand) != "" || isBalanceLine(cand) {
					break
				}
				if cand == "" {
					continue
				}
				text = append(text, cand)
			}

			m := genericAmountPattern.FindStringSubmatchIndex(cand)
			if m == nil {
				desc = append(desc, cand)
				continue
			}

			desc = append(desc, cand[:m[0]])
			row := Row{
				Date:        date,
				Description: strings.Join(desc, " "),
				Text:        strings.Join(text, "\n"),
			}
			row.Amount, _ = parseAmount(cand[m[4]:m[5]])
			row.Tag = genericTag(submatch(cand, m, 1), submatch(cand, m, 3))
			if cleanDescription(row.Description) != "" {
				rows = append(rows, row)
			}
			i += j
			break
		}
	}

	return rows
}

func lineDate(line string) string {
	if d := extractDate(line); d != "" {
		return d
	}
	return extractShortDate(line)
}

func submatch(s string, loc []int, n int) string {
	if loc[2*n] < 0 {
		return ""
	}
	return s[loc[2*n]:loc[2*n+1]]
}

func genericTag(sign, suffix string) Sign {
	switch {
	case sign == "-", suffix == "DR", suffix == "O/D":
		return SignDebit
	case sign == "+", suffix == "CR":
		return SignCredit
	}
	return SignUnknown
}
