package classifier

import (
	"github.com/insightdelivered/statement-intelligence/internal/models"
	"github.com/insightdelivered/statement-intelligence/internal/normalize"
)

// Priority is the order in which domains are evaluated. A domain later in
// the list only replaces an earlier verdict when its confidence is strictly
// higher, so on equal confidence the earlier domain wins.
var Priority = [...]models.Domain{
	models.DomainProperty,
	models.DomainVehicles,
	models.DomainFinance,
	models.DomainInsurance,
	models.DomainGovernment,
	models.DomainServices,
	models.DomainEmployment,
	models.DomainLegal,
}

// typeHint resolves a record type from phrases found in the payee or
// subcategory. Hints are tried in order; the first hit wins.
type typeHint struct {
	recordType models.RecordType
	phrases    []string
}

type domainTable struct {
	providers []string
	keywords  []string
	hints     []typeHint
	// categories are the rule categories typical for the domain. An exact
	// match earns the alignment boost.
	categories []string
}

var tables = map[models.Domain]domainTable{
	models.DomainProperty: {
		providers: []string{
			"BRITISH GAS", "EDF", "EDF ENERGY", "E ON", "EON", "OCTOPUS ENERGY", "OVO", "OVO ENERGY",
			"SCOTTISH POWER", "SCOTTISHPOWER", "SHELL ENERGY", "BULB", "THAMES WATER", "SEVERN TRENT",
			"ANGLIAN WATER", "UNITED UTILITIES", "YORKSHIRE WATER", "SOUTHERN WATER",
		},
		keywords: []string{
			"GAS", "ELECTRIC", "ELECTRICITY", "ENERGY", "WATER", "COUNCIL TAX", "BOROUGH COUNCIL",
			"CITY COUNCIL", "DISTRICT COUNCIL", "MORTGAGE", "RENT", "LETTINGS", "LETTING AGENT", "LANDLORD",
		},
		hints: []typeHint{
			{models.RecordCouncilTax, []string{"COUNCIL", "COUNCIL TAX"}},
			{models.RecordMortgage, []string{"MORTGAGE"}},
			{models.RecordRent, []string{"RENT", "LETTINGS", "LETTING AGENT", "LANDLORD"}},
		},
		categories: []string{"utility", "utilities", "council_tax"},
	},
	models.DomainVehicles: {
		providers: []string{
			"DVLA", "BLACK HORSE", "MOTONOVO", "VOLKSWAGEN FINANCIAL", "BMW FINANCIAL", "CLOSE BROTHERS MOTOR",
			"ESSO", "TEXACO", "SHELL", "RINGGO", "PAYBYPHONE", "NCP", "KWIK FIT", "HALFORDS",
		},
		keywords: []string{
			"CAR FINANCE", "MOTOR FINANCE", "VEHICLE TAX", "FUEL", "PETROL", "DIESEL", "PARKING", "GARAGE", "MOT",
		},
		hints: []typeHint{
			{models.RecordVehicleTax, []string{"DVLA", "VEHICLE TAX"}},
			{models.RecordFuel, []string{"FUEL", "PETROL", "DIESEL", "ESSO", "TEXACO", "SHELL"}},
			{models.RecordParking, []string{"PARKING", "RINGGO", "PAYBYPHONE", "NCP"}},
			{models.RecordVehicleService, []string{"GARAGE", "MOT", "KWIK FIT", "HALFORDS"}},
		},
		categories: []string{"vehicle", "vehicles"},
	},
	models.DomainFinance: {
		providers: []string{
			"BARCLAYCARD", "AMERICAN EXPRESS", "AMEX", "CAPITAL ONE", "ZOPA", "KLARNA", "VANGUARD", "NUTMEG",
			"HARGREAVES LANSDOWN", "FUNDING CIRCLE", "PREMIUM BONDS", "NS I",
		},
		keywords: []string{
			"LOAN", "CREDIT CARD", "SAVINGS", "ISA", "INVESTMENT", "INTEREST", "OVERDRAFT", "ACCOUNT FEE",
			"MONTHLY FEE", "BANK CHARGE",
		},
		hints: []typeHint{
			{models.RecordLoan, []string{"LOAN", "ZOPA", "KLARNA", "FUNDING CIRCLE"}},
			{models.RecordCreditCard, []string{"CREDIT CARD", "BARCLAYCARD", "AMERICAN EXPRESS", "AMEX", "CAPITAL ONE"}},
			{models.RecordSavings, []string{"SAVINGS", "ISA", "INTEREST", "PREMIUM BONDS", "NS I"}},
			{models.RecordInvestment, []string{"INVESTMENT", "VANGUARD", "NUTMEG", "HARGREAVES LANSDOWN"}},
			{models.RecordBankFee, []string{"OVERDRAFT", "ACCOUNT FEE", "MONTHLY FEE", "BANK CHARGE"}},
			{models.RecordSubscription, []string{"SUBSCRIPTION", "MEMBERSHIP"}},
		},
		categories: []string{"finance", "banking"},
	},
	models.DomainInsurance: {
		providers: []string{
			"AVIVA", "DIRECT LINE", "ADMIRAL", "LV", "LIVERPOOL VICTORIA", "LEGAL GENERAL", "L G", "CHURCHILL",
			"VITALITY", "BUPA", "PETPLAN", "PET PLAN", "HASTINGS DIRECT", "AXA", "ZURICH", "ROYAL LONDON",
		},
		keywords: []string{"INSURANCE", "ASSURANCE", "INSURE", "PREMIUM", "POLICY"},
		hints: []typeHint{
			{models.RecordCarInsurance, []string{"CAR", "MOTOR", "ADMIRAL", "HASTINGS DIRECT"}},
			{models.RecordHomeInsurance, []string{"HOME", "BUILDINGS", "CONTENTS", "CHURCHILL"}},
			{models.RecordLifeInsurance, []string{"LIFE", "LEGAL GENERAL", "L G", "ROYAL LONDON"}},
			{models.RecordHealthInsurance, []string{"HEALTH", "BUPA", "VITALITY"}},
			{models.RecordPetInsurance, []string{"PET", "PETPLAN", "PET PLAN"}},
			{models.RecordTravelInsurance, []string{"TRAVEL"}},
		},
		categories: []string{"insurance"},
	},
	models.DomainGovernment: {
		providers: []string{"HMRC", "TV LICENCE", "TV LICENSING", "TVL", "DWP", "HM COURTS", "HM PASSPORT OFFICE"},
		keywords:  []string{"TAX", "BENEFIT", "UNIVERSAL CREDIT", "CHILD BENEFIT", "PENALTY", "FINE"},
		hints: []typeHint{
			{models.RecordTVLicence, []string{"TV LICENCE", "TV LICENSING", "TVL"}},
			{models.RecordBenefit, []string{"BENEFIT", "UNIVERSAL CREDIT", "DWP"}},
			{models.RecordFine, []string{"FINE", "PENALTY", "HM COURTS"}},
		},
		categories: []string{"government", "tax"},
	},
	models.DomainServices: {
		providers: []string{
			"NETFLIX", "SPOTIFY", "AMAZON PRIME", "PRIME VIDEO", "DISNEY", "DISNEY PLUS", "APPLE", "YOUTUBE",
			"NOW TV", "AUDIBLE", "MICROSOFT", "ADOBE", "PUREGYM", "PURE GYM", "GYM GROUP", "BT", "SKY",
			"VIRGIN MEDIA", "VODAFONE", "EE", "O2", "THREE", "TALKTALK", "PLUSNET",
		},
		keywords: []string{"BROADBAND", "MOBILE", "STREAMING", "SUBSCRIPTION", "MEMBERSHIP", "GYM", "SOFTWARE"},
		hints: []typeHint{
			{models.RecordTelecoms, []string{"MOBILE", "VODAFONE", "EE", "O2", "THREE"}},
			{models.RecordBroadband, []string{"BROADBAND", "BT", "SKY", "VIRGIN MEDIA", "TALKTALK", "PLUSNET"}},
			{models.RecordStreaming, []string{"STREAMING", "NETFLIX", "SPOTIFY", "AMAZON PRIME", "PRIME VIDEO", "DISNEY", "YOUTUBE", "NOW TV", "AUDIBLE"}},
			{models.RecordSoftware, []string{"SOFTWARE", "MICROSOFT", "ADOBE", "APPLE"}},
		},
		categories: []string{"telecoms", "subscription"},
	},
	models.DomainEmployment: {
		keywords: []string{"SALARY", "WAGES", "PAYROLL", "PENSION", "EXPENSES"},
		hints: []typeHint{
			{models.RecordSalary, []string{"SALARY", "WAGES", "PAYROLL"}},
			{models.RecordPension, []string{"PENSION"}},
			{models.RecordExpenses, []string{"EXPENSES"}},
		},
		categories: []string{"employment", "income", "salary"},
	},
	models.DomainLegal: {
		providers: []string{"SLATER GORDON", "IRWIN MITCHELL", "CO OP LEGAL"},
		keywords:  []string{"SOLICITOR", "SOLICITORS", "CONVEYANCING", "LEGAL FEES", "LAW FIRM", "BARRISTER"},
		hints: []typeHint{
			{models.RecordLegalFee, []string{"LEGAL FEES", "CONVEYANCING", "BARRISTER"}},
		},
		categories: []string{"legal"},
	},
}

// canonical runs every phrase through the description normaliser so table
// entries and payees are compared in the same form.
func canonical(phrases []string) []string {
	out := make([]string, 0, len(phrases))
	for _, p := range phrases {
		if n := normalize.Normalize(p); n != "" {
			out = append(out, n)
		}
	}
	return out
}

func init() {
	for d, t := range tables {
		t.providers = canonical(t.providers)
		t.keywords = canonical(t.keywords)
		for i := range t.hints {
			t.hints[i].phrases = canonical(t.hints[i].phrases)
		}
		tables[d] = t
	}
}
