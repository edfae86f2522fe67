package models

// Domain is a life-category a payment belongs to.
type Domain string

const (
	DomainProperty   Domain = "property"
	DomainVehicles   Domain = "vehicles"
	DomainFinance    Domain = "finance"
	DomainInsurance  Domain = "insurance"
	DomainGovernment Domain = "government"
	DomainServices   Domain = "services"
	DomainEmployment Domain = "employment"
	DomainLegal      Domain = "legal"
)

// Domains is the closed set of domains.
var Domains = []Domain{
	DomainProperty,
	DomainVehicles,
	DomainFinance,
	DomainInsurance,
	DomainGovernment,
	DomainServices,
	DomainEmployment,
	DomainLegal,
}

// Valid reports whether d is one of the known domains.
func (d Domain) Valid() bool {
	for _, known := range Domains {
		if d == known {
			return true
		}
	}
	return false
}

// RecordType is the kind of downstream record a payment maps to.
type RecordType string

const (
	// property
	RecordUtilityBill RecordType = "utility_bill"
	RecordCouncilTax  RecordType = "council_tax"
	RecordMortgage    RecordType = "mortgage"
	RecordRent        RecordType = "rent"

	// vehicles
	RecordVehicleFinance RecordType = "vehicle_finance"
	RecordVehicleTax     RecordType = "vehicle_tax"
	RecordFuel           RecordType = "fuel"
	RecordVehicleService RecordType = "vehicle_service"
	RecordParking        RecordType = "parking"

	// finance
	RecordSubscription RecordType = "subscription"
	RecordLoan         RecordType = "loan"
	RecordCreditCard   RecordType = "credit_card"
	RecordSavings      RecordType = "savings"
	RecordInvestment   RecordType = "investment"
	RecordBankFee      RecordType = "bank_fee"
	RecordOther        RecordType = "other"

	// insurance
	RecordHomeInsurance   RecordType = "home_insurance"
	RecordCarInsurance    RecordType = "car_insurance"
	RecordLifeInsurance   RecordType = "life_insurance"
	RecordHealthInsurance RecordType = "health_insurance"
	RecordPetInsurance    RecordType = "pet_insurance"
	RecordTravelInsurance RecordType = "travel_insurance"
	RecordInsurancePolicy RecordType = "insurance_policy"

	// government
	RecordTax       RecordType = "tax"
	RecordTVLicence RecordType = "tv_licence"
	RecordBenefit   RecordType = "benefit"
	RecordFine      RecordType = "fine"

	// services
	RecordTelecoms   RecordType = "telecoms"
	RecordBroadband  RecordType = "broadband"
	RecordStreaming  RecordType = "streaming"
	RecordMembership RecordType = "membership"
	RecordSoftware   RecordType = "software"

	// employment
	RecordSalary   RecordType = "salary"
	RecordPension  RecordType = "pension"
	RecordExpenses RecordType = "expenses"

	// legal
	RecordLegalFee     RecordType = "legal_fee"
	RecordLegalService RecordType = "legal_service"
)

// RecordTypesFor returns the record types a domain may produce. The first
// entry is the domain's fallback type.
func RecordTypesFor(d Domain) []RecordType {
	switch d {
	case DomainProperty:
		return []RecordType{RecordUtilityBill, RecordCouncilTax, RecordMortgage, RecordRent}
	case DomainVehicles:
		return []RecordType{RecordVehicleFinance, RecordVehicleTax, RecordFuel, RecordVehicleService, RecordParking}
	case DomainFinance:
		return []RecordType{RecordOther, RecordSubscription, RecordLoan, RecordCreditCard, RecordSavings, RecordInvestment, RecordBankFee}
	case DomainInsurance:
		return []RecordType{RecordInsurancePolicy, RecordHomeInsurance, RecordCarInsurance, RecordLifeInsurance, RecordHealthInsurance, RecordPetInsurance, RecordTravelInsurance}
	case DomainGovernment:
		return []RecordType{RecordTax, RecordTVLicence, RecordBenefit, RecordFine}
	case DomainServices:
		return []RecordType{RecordMembership, RecordTelecoms, RecordBroadband, RecordStreaming, RecordSoftware}
	case DomainEmployment:
		return []RecordType{RecordSalary, RecordPension, RecordExpenses}
	case DomainLegal:
		return []RecordType{RecordLegalService, RecordLegalFee}
	}
	return nil
}

// Allows reports whether rt is a valid record type for d.
func (d Domain) Allows(rt RecordType) bool {
	for _, t := range RecordTypesFor(d) {
		if t == rt {
			return true
		}
	}
	return false
}

// DomainSuggestion is the classifier's verdict for one payee.
type DomainSuggestion struct {
	Domain     Domain     `json:"domain"`
	Confidence float64    `json:"confidence"`
	RecordType RecordType `json:"recordType"`
	Reasoning  string     `json:"reasoning"`
}
