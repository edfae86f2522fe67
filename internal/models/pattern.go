package models

import "time"

// Frequency is the inferred cadence of a recurring payment.
type Frequency string

const (
	FrequencyWeekly    Frequency = "weekly"
	FrequencyMonthly   Frequency = "monthly"
	FrequencyQuarterly Frequency = "quarterly"
	FrequencyAnnually  Frequency = "annually"
	FrequencyIrregular Frequency = "irregular"
)

// Valid reports whether f is one of the known cadences.
func (f Frequency) Valid() bool {
	switch f {
	case FrequencyWeekly, FrequencyMonthly, FrequencyQuarterly, FrequencyAnnually, FrequencyIrregular:
		return true
	}
	return false
}

// IntervalDays returns the canonical number of days between payments,
// or 0 for irregular cadences.
func (f Frequency) IntervalDays() int {
	switch f {
	case FrequencyWeekly:
		return 7
	case FrequencyMonthly:
		return 30
	case FrequencyQuarterly:
		return 91
	case FrequencyAnnually:
		return 365
	default:
		return 0
	}
}

// PatternStatus tells whether a recurring payment still appears to be running.
type PatternStatus string

const (
	PatternActive  PatternStatus = "active"
	PatternStopped PatternStatus = "stopped"
)

// RecurringPattern is a cluster of transactions believed to be the same
// recurring payment. It is derived data and can be recomputed at any time.
type RecurringPattern struct {
	Payee                 string        `json:"payee"`
	NormalizedDescription string        `json:"normalizedDescription"`
	Frequency             Frequency     `json:"frequency"`
	AverageAmount         float64       `json:"averageAmount"`
	AmountVariance        float64       `json:"amountVariance"`
	MinAmount             float64       `json:"minAmount"`
	MaxAmount             float64       `json:"maxAmount"`
	Confidence            float64       `json:"confidence"`
	Occurrences           int           `json:"occurrences"`
	FirstSeen             time.Time     `json:"firstSeen"`
	LastSeen              time.Time     `json:"lastSeen"`
	NextExpected          *time.Time    `json:"nextExpected,omitempty"`
	Status                PatternStatus `json:"status"`
	Category              string        `json:"category"`
	Subcategory           string        `json:"subcategory,omitempty"`
	Provider              string        `json:"provider,omitempty"`
	SuggestedDomain       Domain        `json:"suggestedDomain"`
	SuggestedRecordType   RecordType    `json:"suggestedRecordType"`
	MemberTransactionIDs  []string      `json:"memberTransactionIds"`
}

// Statistics summarises one processed statement.
type Statistics struct {
	TotalTransactions int     `json:"totalTransactions"`
	RecurringDetected int     `json:"recurringDetected"`
	DateRangeDays     int     `json:"dateRangeDays"`
	TotalDebits       float64 `json:"totalDebits"`
	TotalCredits      float64 `json:"totalCredits"`
}
