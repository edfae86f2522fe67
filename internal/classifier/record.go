package classifier

import (
	"fmt"
	"math"
	"strings"

	"github.com/insightdelivered/statement-intelligence/internal/models"
)

// BuildRecord shapes a recurring pattern into the record variant of the
// suggested domain. Every domain has exactly one case below; an unknown
// domain is an error.
func BuildRecord(s models.DomainSuggestion, p models.RecurringPattern) (models.Record, error) {
	provider := p.Provider
	if provider == "" {
		provider = p.Payee
	}
	base := models.RecordBase{
		Type:      s.RecordType,
		Provider:  provider,
		Amount:    math.Abs(p.AverageAmount),
		Frequency: p.Frequency,
		NextDue:   p.NextExpected,
	}

	switch s.Domain {
	case models.DomainProperty:
		kind := ""
		if s.RecordType == models.RecordUtilityBill {
			kind = utilityKind(p.Subcategory)
		}
		return models.NewPropertyRecord(base, kind)
	case models.DomainVehicles:
		lender := ""
		if s.RecordType == models.RecordVehicleFinance {
			lender = provider
		}
		return models.NewVehicleRecord(base, lender)
	case models.DomainFinance:
		return models.NewFinanceRecord(base, provider, p.AverageAmount > 0)
	case models.DomainInsurance:
		return models.NewInsuranceRecord(base, provider, base.Amount*paymentsPerYear(p.Frequency))
	case models.DomainGovernment:
		return models.NewGovernmentRecord(base, provider)
	case models.DomainServices:
		return models.NewServiceRecord(base, provider)
	case models.DomainEmployment:
		return models.NewEmploymentRecord(base, provider)
	case models.DomainLegal:
		return models.NewLegalRecord(base, provider)
	}
	return nil, fmt.Errorf("%w: unknown domain %q", models.ErrInvalidRecord, s.Domain)
}

func utilityKind(subcategory string) string {
	switch strings.ToLower(subcategory) {
	case "gas":
		return "gas"
	case "electricity", "electric":
		return "electricity"
	case "water":
		return "water"
	case "energy", "dual_fuel":
		return "energy"
	}
	return ""
}

// paymentsPerYear treats an irregular cadence as a single annual payment.
func paymentsPerYear(f models.Frequency) float64 {
	switch f {
	case models.FrequencyWeekly:
		return 52
	case models.FrequencyMonthly:
		return 12
	case models.FrequencyQuarterly:
		return 4
	}
	return 1
}
