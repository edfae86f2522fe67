// Package classifier maps payees to life domains and builds the typed
// record each domain produces.
package classifier

import (
	"fmt"
	"strings"

	"github.com/insightdelivered/statement-intelligence/internal/models"
	"github.com/insightdelivered/statement-intelligence/internal/normalize"
)

const (
	ProviderConfidence = 0.95
	KeywordConfidence  = 0.75
	DefaultConfidence  = 0.3
	CategoryBoost      = 0.1
	MaxConfidence      = 0.95
)

// Input describes one payee to classify. Category and Subcategory usually
// come from the rule matcher; Amount is signed.
type Input struct {
	Payee       string
	Category    string
	Subcategory string
	Amount      float64
}

// Classify returns the best domain for in. Providers are matched against
// the payee only; keywords and record type hints also see the subcategory.
func Classify(in Input) models.DomainSuggestion {
	payee := pad(normalize.Normalize(in.Payee))
	text := payee
	if sub := normalize.Normalize(strings.ReplaceAll(in.Subcategory, "_", " ")); sub != "" {
		text = pad(strings.TrimSpace(payee) + " " + sub)
	}

	best := models.DomainSuggestion{
		Domain:     models.DomainFinance,
		Confidence: DefaultConfidence,
		RecordType: models.RecordOther,
		Reasoning:  "no provider or keyword match",
	}

	for _, d := range Priority {
		t := tables[d]

		var conf float64
		var reason string
		if p, ok := firstPhrase(payee, t.providers); ok {
			conf, reason = ProviderConfidence, "provider match: "+p
		} else if k, ok := firstPhrase(text, t.keywords); ok {
			conf, reason = KeywordConfidence, "keyword match: "+k
		} else {
			continue
		}

		if in.Category != "" && contains(t.categories, in.Category) {
			conf += CategoryBoost
			if conf > MaxConfidence {
				conf = MaxConfidence
			}
			reason += fmt.Sprintf("; category %q aligns with %s", in.Category, d)
		}

		if conf > best.Confidence {
			best = models.DomainSuggestion{
				Domain:     d,
				Confidence: conf,
				RecordType: recordType(d, t, text, in.Amount),
				Reasoning:  reason,
			}
		}
	}
	return best
}

func recordType(d models.Domain, t domainTable, text string, amount float64) models.RecordType {
	for _, h := range t.hints {
		if _, ok := firstPhrase(text, h.phrases); ok {
			return h.recordType
		}
	}
	if d == models.DomainEmployment && amount < 0 {
		return models.RecordExpenses
	}
	return models.RecordTypesFor(d)[0]
}

// pad surrounds s with spaces so phrases match on token boundaries.
func pad(s string) string {
	return " " + s + " "
}

func firstPhrase(padded string, phrases []string) (string, bool) {
	if strings.TrimSpace(padded) == "" {
		return "", false
	}
	for _, p := range phrases {
		if strings.Contains(padded, pad(p)) {
			return p, true
		}
	}
	return "", false
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
