package rules

import "github.com/insightdelivered/statement-intelligence/internal/models"

func rule(name, provider, subcategory string, boost float64, freq models.Frequency, patterns ...string) ProviderRule {
	return ProviderRule{
		Name:              name,
		Patterns:          patterns,
		Subcategory:       subcategory,
		Provider:          provider,
		ConfidenceBoost:   boost,
		MinOccurrences:    2,
		ExpectedFrequency: freq,
		Active:            true,
	}
}

const (
	monthly   = models.FrequencyMonthly
	annually  = models.FrequencyAnnually
	irregular = models.FrequencyIrregular
)

// defaultGroups is the built-in UK provider table.
var defaultGroups = map[Category][]ProviderRule{
	CategoryUtility: {
		rule("British Gas", "British Gas", "gas", 0.1, monthly, "british gas", "/\\bB\\.?GAS\\b/"),
		rule("EDF Energy", "EDF Energy", "energy", 0.1, monthly, "edf energy", "/\\bEDF\\b/"),
		rule("E.ON", "E.ON", "energy", 0.1, monthly, "e on next", "eon energy", "/\\bE\\.?ON\\b/"),
		rule("Octopus Energy", "Octopus Energy", "energy", 0.1, monthly, "octopus energy"),
		rule("OVO Energy", "OVO Energy", "energy", 0.1, monthly, "ovo energy", "/\\bOVO\\b/"),
		rule("Scottish Power", "Scottish Power", "energy", 0.1, monthly, "scottish power", "scottishpower"),
		rule("Thames Water", "Thames Water", "water", 0.1, monthly, "thames water"),
		rule("Severn Trent", "Severn Trent", "water", 0.1, monthly, "severn trent"),
		rule("Anglian Water", "Anglian Water", "water", 0.1, monthly, "anglian water"),
		rule("United Utilities", "United Utilities", "water", 0.1, monthly, "united utilities"),
	},
	CategoryCouncilTax: {
		rule("Council Tax", "", "council_tax", 0.15, monthly, "council tax", "/\\bC(OUNCIL)?\\.?\\s?TAX\\b/", "borough council", "city council", "district council"),
	},
	CategoryTelecoms: {
		rule("BT", "BT", "broadband", 0.1, monthly, "bt group", "/\\bBT\\b/"),
		rule("Sky", "Sky", "tv_broadband", 0.1, monthly, "sky digital", "sky uk", "/\\bSKY\\b/"),
		rule("Virgin Media", "Virgin Media", "tv_broadband", 0.1, monthly, "virgin media"),
		rule("Vodafone", "Vodafone", "mobile", 0.1, monthly, "vodafone"),
		rule("EE", "EE", "mobile", 0.1, monthly, "/\\bEE\\b/"),
		rule("O2", "O2", "mobile", 0.1, monthly, "o2 uk", "telefonica", "/\\bO2\\b/"),
		rule("Three", "Three", "mobile", 0.1, monthly, "three uk", "hutchison 3g"),
		rule("TalkTalk", "TalkTalk", "broadband", 0.1, monthly, "talktalk", "talk talk"),
		rule("Plusnet", "Plusnet", "broadband", 0.1, monthly, "plusnet"),
	},
	CategorySubscription: {
		rule("Netflix", "Netflix", "streaming", 0.1, monthly, "netflix"),
		rule("Spotify", "Spotify", "streaming", 0.1, monthly, "spotify"),
		rule("Amazon Prime", "Amazon", "streaming", 0.1, monthly, "amazon prime", "prime video", "amznprime"),
		rule("Disney+", "Disney", "streaming", 0.1, monthly, "disney plus", "disneyplus"),
		rule("Apple", "Apple", "software", 0.05, monthly, "apple com bill", "apple.com/bill", "itunes"),
		rule("YouTube Premium", "Google", "streaming", 0.05, monthly, "youtube premium", "google youtube"),
		rule("NOW", "NOW", "streaming", 0.05, monthly, "now tv", "nowtv"),
		rule("Audible", "Audible", "streaming", 0.05, monthly, "audible"),
		rule("Microsoft", "Microsoft", "software", 0.05, monthly, "microsoft 365", "msft"),
		rule("Adobe", "Adobe", "software", 0.05, monthly, "adobe"),
		rule("PureGym", "PureGym", "gym", 0.05, monthly, "puregym", "pure gym"),
		rule("The Gym Group", "The Gym Group", "gym", 0.05, monthly, "the gym group", "gym group"),
	},
	CategoryInsurance: {
		rule("Aviva", "Aviva", "general", 0.1, monthly, "aviva"),
		rule("Direct Line", "Direct Line", "general", 0.1, monthly, "direct line"),
		rule("Admiral", "Admiral", "car", 0.1, monthly, "admiral"),
		rule("LV=", "LV=", "general", 0.1, monthly, "liverpool victoria", "/\\bLV=?\\s/"),
		rule("Legal & General", "Legal & General", "life", 0.1, monthly, "legal and general", "legal general", "/L\\s?&\\s?G\\b/"),
		rule("Churchill", "Churchill", "home", 0.1, monthly, "churchill insurance"),
		rule("Vitality", "Vitality", "health", 0.1, monthly, "vitality"),
		rule("Bupa", "Bupa", "health", 0.1, monthly, "bupa"),
		rule("Petplan", "Petplan", "pet", 0.1, monthly, "petplan", "pet plan"),
		rule("Hastings Direct", "Hastings Direct", "car", 0.1, monthly, "hastings direct", "hastings insurance"),
	},
	CategoryGeneral: {
		rule("TV Licence", "TV Licensing", "tv_licence", 0.1, monthly, "tv licence", "tv licensing", "/\\bTVL\\b/"),
		rule("DVLA", "DVLA", "vehicle_tax", 0.1, monthly, "dvla", "vehicle tax"),
		rule("HMRC", "HMRC", "tax", 0.05, irregular, "hmrc"),
		rule("Mortgage", "", "mortgage", 0.1, monthly, "mortgage"),
		rule("Rent", "", "rent", 0.05, monthly, "rent", "letting agent", "lettings"),
		rule("Salary", "", "salary", 0.1, monthly, "salary", "wages", "payroll"),
		rule("Pension", "", "pension", 0.05, monthly, "pension"),
		rule("Annual Membership", "", "membership", 0, annually, "annual membership", "annual fee"),
	},
}

// Default returns the built-in rule set.
func Default() *RuleSet {
	rs, err := NewRuleSet(defaultGroups)
	if err != nil {
		// The table is static; a failure here is a programming error.
		panic(err)
	}
	return rs
}
