package parser

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/insightdelivered/statement-intelligence/internal/models"
)

// bankAliases is searched in order; the first bank with a matching alias wins.
var bankAliases = []struct {
	bank    models.BankType
	aliases []string
}{
	{models.BankMetro, []string{"Metro Bank", "metrobankonline"}},
	{models.BankHSBC, []string{"HSBC UK", "HSBC", "hsbc.co.uk"}},
	{models.BankBarclays, []string{"Barclays Bank", "Barclays", "barclays.co.uk"}},
	{models.BankLloyds, []string{"Lloyds Bank", "Lloyds TSB", "lloydsbank"}},
	{models.BankNatWest, []string{"NatWest", "National Westminster"}},
	{models.BankSantander, []string{"Santander UK", "santander.co.uk"}},
	{models.BankNationwide, []string{"Nationwide Building Society", "nationwide.co.uk"}},
	{models.BankMonzo, []string{"Monzo Bank", "monzo.com"}},
	{models.BankStarling, []string{"Starling Bank", "starlingbank"}},
}

var bankDisplayNames = map[models.BankType]string{
	models.BankMetro:      "Metro Bank",
	models.BankHSBC:       "HSBC",
	models.BankBarclays:   "Barclays",
	models.BankLloyds:     "Lloyds Bank",
	models.BankNatWest:    "NatWest",
	models.BankSantander:  "Santander",
	models.BankNationwide: "Nationwide",
	models.BankMonzo:      "Monzo",
	models.BankStarling:   "Starling Bank",
	models.BankUnknown:    "Unknown",
}

// headerLines is how much of the statement is searched for aliases before
// falling back to the whole text. Transaction lines often name other banks.
const headerLines = 20

// lloydsSignature matches a "DD Mon YY" date and a description followed by
// a Lloyds transaction type code in its own column before the amounts.
// HSBC prints similar codes straight after the date, which this excludes.
var lloydsSignature = regexp.MustCompile(
	`^\d{2}\s+(?:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)\s+\d{2}\s+\S.*\s(?:DD|SO|FPI|FPO|DEB|BGC|CPT|TFR|BP)\s+£?[\d,]+\.\d{2}`,
)

const lloydsSignatureMin = 3

// Identify returns the bank that issued a statement, or models.BankUnknown.
// A structural signature is checked before any name search.
func Identify(text string) models.BankType {
	if hasLloydsSignature(text) {
		return models.BankLloyds
	}

	lines := strings.Split(text, "\n")
	if len(lines) > headerLines {
		if bank, ok := findAlias(strings.Join(lines[:headerLines], "\n")); ok {
			return bank
		}
	}
	if bank, ok := findAlias(text); ok {
		return bank
	}
	return models.BankUnknown
}

func hasLloydsSignature(text string) bool {
	n := 0
	for _, line := range strings.Split(text, "\n") {
		if lloydsSignature.MatchString(strings.TrimSpace(line)) {
			n++
			if n >= lloydsSignatureMin {
				return true
			}
		}
	}
	return false
}

func findAlias(text string) (models.BankType, bool) {
	lower := strings.ToLower(text)
	for _, b := range bankAliases {
		for _, alias := range b.aliases {
			if strings.Contains(lower, strings.ToLower(alias)) {
				return b.bank, true
			}
		}
	}
	return "", false
}

// ParseBankType resolves a user-supplied bank name such as "metro",
// "metrobank" or "Lloyds Bank". An empty name returns "" so the caller
// auto-detects.
func ParseBankType(name string) (models.BankType, error) {
	key := strings.ToLower(strings.Join(strings.Fields(name), ""))
	if key == "" {
		return "", nil
	}
	for bank, display := range bankDisplayNames {
		if key == string(bank) || key == strings.ToLower(strings.ReplaceAll(display, " ", "")) {
			return bank, nil
		}
	}
	switch key {
	case "lloydstsb":
		return models.BankLloyds, nil
	case "generic":
		return models.BankUnknown, nil
	}
	return "", fmt.Errorf("unknown bank %q", name)
}
