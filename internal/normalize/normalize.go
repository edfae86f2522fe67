// Package normalize canonicalises transaction descriptions and computes the
// fingerprints used to spot the same transaction across statement imports.
package normalize

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var nonAlnum = regexp.MustCompile(`[^A-Z0-9]+`)

// paymentTokens are payment-type markers and company suffixes that carry no
// payee information. They are stripped from both ends of a description.
var paymentTokens = map[string]bool{
	"DD":      true,
	"SO":      true,
	"TFR":     true,
	"CHQ":     true,
	"FPO":     true,
	"ATM":     true,
	"POS":     true,
	"VIS":     true,
	"LTD":     true,
	"LIMITED": true,
	"PLC":     true,
}

// referenceToken matches long numeric references banks append to payees.
var referenceToken = regexp.MustCompile(`^\d{6,}$`)

// Normalize returns the canonical form of a description: uppercase,
// alphanumerics separated by single spaces, with payment-type markers and
// trailing references removed. Normalize(Normalize(x)) == Normalize(x).
func Normalize(description string) string {
	s := nonAlnum.ReplaceAllString(strings.ToUpper(description), " ")
	fields := strings.Fields(s)

	for len(fields) > 0 && paymentTokens[fields[0]] {
		fields = fields[1:]
	}
	for len(fields) > 0 {
		last := fields[len(fields)-1]
		if !paymentTokens[last] && !referenceToken.MatchString(last) {
			break
		}
		fields = fields[:len(fields)-1]
	}

	return strings.Join(fields, " ")
}

// Payee returns a display name for the merchant behind a description,
// e.g. "DD BRITISH GAS LTD" becomes "British Gas".
func Payee(description string) string {
	n := Normalize(description)
	if n == "" {
		return strings.TrimSpace(description)
	}
	// Casers hold state and must not be shared between goroutines.
	return cases.Title(language.BritishEnglish).String(strings.ToLower(n))
}

// Hash returns a deterministic fingerprint over owner, amount and
// description. The date is not part of the digest.
func Hash(ownerID string, amount float64, description string) string {
	amt := decimal.NewFromFloat(amount).StringFixed(2)
	sum := sha256.Sum256([]byte(ownerID + "|" + amt + "|" + strings.TrimSpace(description)))
	return hex.EncodeToString(sum[:])
}
