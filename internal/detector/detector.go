// Package detector runs the transaction intelligence pipeline over one
// statement: parse, group, analyse, score and classify.
//
// Every stage is a pure function of its inputs, so a run that fails or is
// cancelled can be repeated from scratch. Cancellation is checked between
// stages only.
package detector

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/insightdelivered/statement-intelligence/internal/classifier"
	"github.com/insightdelivered/statement-intelligence/internal/confidence"
	"github.com/insightdelivered/statement-intelligence/internal/frequency"
	"github.com/insightdelivered/statement-intelligence/internal/grouper"
	"github.com/insightdelivered/statement-intelligence/internal/logger"
	"github.com/insightdelivered/statement-intelligence/internal/models"
	"github.com/insightdelivered/statement-intelligence/internal/normalize"
	"github.com/insightdelivered/statement-intelligence/internal/parser"
	"github.com/insightdelivered/statement-intelligence/internal/rules"
)

// minOccurrences is the smallest cluster that can become a pattern.
const minOccurrences = 2

// Input is one statement to process.
type Input struct {
	Text    []byte
	OwnerID string
	// Bank skips identification when set.
	Bank models.BankType
	// Rules may be nil, which behaves as an empty rule set.
	Rules *rules.RuleSet
}

// Result is everything the pipeline derives from one statement.
// DomainSuggestions and Records are index-aligned with Patterns; a nil
// record means the suggestion could not be shaped into one.
type Result struct {
	Metadata          models.StatementMetadata  `json:"metadata"`
	Transactions      []models.Transaction      `json:"transactions"`
	Patterns          []models.RecurringPattern `json:"patterns"`
	DomainSuggestions []models.DomainSuggestion `json:"domainSuggestions"`
	Records           []models.Record           `json:"records"`
	Statistics        models.Statistics         `json:"statistics"`
}

// Detector holds the injected configuration. It is safe for concurrent use.
type Detector struct {
	cfg Config
}

// New returns a detector using cfg.
func New(cfg Config) (*Detector, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid detection config: %w", err)
	}
	return &Detector{cfg: cfg}, nil
}

// Config returns the detector's configuration.
func (d *Detector) Config() Config {
	return d.cfg
}

// Process runs the full pipeline over one statement. Unparsable text is not
// an error: it yields no transactions and zero statistics.
func (d *Detector) Process(ctx context.Context, in Input) (*Result, error) {
	log := logger.FromContext(ctx)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	info := parser.Parse(string(in.Text), in.Bank, in.OwnerID)
	log.Debug().
		Str("bank", string(info.Metadata.Bank)).
		Int("transactions", len(info.Transactions)).
		Msg("statement parsed")

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	patterns, suggestions, err := d.Detect(ctx, info.Transactions, in.Rules)
	if err != nil {
		return nil, err
	}

	records := make([]models.Record, len(patterns))
	for i := range patterns {
		rec, err := classifier.BuildRecord(suggestions[i], patterns[i])
		if err != nil {
			log.Debug().Err(err).Str("payee", patterns[i].Payee).Msg("record not built")
			continue
		}
		records[i] = rec
	}

	return &Result{
		Metadata:          info.Metadata,
		Transactions:      info.Transactions,
		Patterns:          patterns,
		DomainSuggestions: suggestions,
		Records:           records,
		Statistics:        Statistics(info.Transactions, len(patterns)),
	}, nil
}

// Detect finds recurring patterns among txns and classifies each one. The
// result does not depend on the order of txns. Settings carried by rs
// override the detector's configuration.
func (d *Detector) Detect(ctx context.Context, txns []models.Transaction, rs *rules.RuleSet) ([]models.RecurringPattern, []models.DomainSuggestion, error) {
	log := logger.FromContext(ctx)
	cfg := d.cfg
	if rs != nil {
		cfg = cfg.WithSettings(rs.Settings)
		if err := cfg.Validate(); err != nil {
			return nil, nil, fmt.Errorf("invalid rule set settings: %w", err)
		}
	}

	matcher, err := rules.NewMatcher(rs, rules.DefaultMatchThreshold)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to compile rules: %w", err)
	}

	sorted := sortByDate(txns)
	clusters := group(sorted, matcher, cfg)
	log.Debug().Int("clusters", len(clusters)).Msg("transactions grouped")

	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	var end time.Time
	if len(sorted) > 0 {
		end = sorted[len(sorted)-1].Date
	}

	patterns := []models.RecurringPattern{}
	for _, c := range clusters {
		p, ok := buildPattern(c, matcher, cfg, end)
		if ok {
			patterns = append(patterns, p)
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	sort.SliceStable(patterns, func(i, j int) bool {
		a, b := patterns[i], patterns[j]
		if a.Confidence != b.Confidence {
			return a.Confidence > b.Confidence
		}
		if a.Payee != b.Payee {
			return a.Payee < b.Payee
		}
		return a.FirstSeen.Before(b.FirstSeen)
	})

	suggestions := make([]models.DomainSuggestion, len(patterns))
	for i := range patterns {
		p := &patterns[i]
		s := classifier.Classify(classifier.Input{
			Payee:       p.Payee,
			Category:    p.Category,
			Subcategory: p.Subcategory,
			Amount:      p.AverageAmount,
		})
		p.SuggestedDomain = s.Domain
		p.SuggestedRecordType = s.RecordType
		suggestions[i] = s
	}
	log.Debug().Int("patterns", len(patterns)).Msg("patterns classified")

	return patterns, suggestions, nil
}

// group clusters transactions that match the same provider rule with the
// looser rule-driven threshold, and everything else with the configured one.
// Partitions are visited in order of first appearance, so output stays a
// function of the sorted input.
func group(sorted []models.Transaction, matcher *rules.Matcher, cfg Config) []grouper.Cluster {
	general := grouper.Options{
		SimilarityThreshold: int(math.Round(cfg.FuzzyMatchThreshold * 100)),
		AmountTolerance:     cfg.AmountVarianceTolerance,
	}
	ruled := general
	if ruled.SimilarityThreshold > grouper.RuleDrivenSimilarityThreshold {
		ruled.SimilarityThreshold = grouper.RuleDrivenSimilarityThreshold
	}

	var keys []string
	byRule := make(map[string][]models.Transaction)
	var unmatched []models.Transaction
	for _, t := range sorted {
		m := matcher.Match(t.Description)
		if !m.Matched {
			unmatched = append(unmatched, t)
			continue
		}
		key := string(m.Category) + "/" + m.Rule.Name
		if _, ok := byRule[key]; !ok {
			keys = append(keys, key)
		}
		byRule[key] = append(byRule[key], t)
	}

	var clusters []grouper.Cluster
	for _, k := range keys {
		clusters = append(clusters, grouper.Group(byRule[k], ruled)...)
	}
	return append(clusters, grouper.Group(unmatched, general)...)
}

// buildPattern scores one cluster. It reports false when the cluster is too
// small for its rule or scores below the confidence threshold.
func buildPattern(c grouper.Cluster, matcher *rules.Matcher, cfg Config, end time.Time) (models.RecurringPattern, bool) {
	n := len(c.Members)
	rep := c.Representative()
	match := matcher.Match(rep.Description)

	need := minOccurrences
	if match.Matched && match.Rule.MinOccurrences > need {
		need = match.Rule.MinOccurrences
	}
	if n < need {
		return models.RecurringPattern{}, false
	}

	dates := make([]time.Time, n)
	amounts := make([]float64, n)
	ids := make([]string, n)
	for i, m := range c.Members {
		dates[i], amounts[i], ids[i] = m.Date, m.Amount, m.ID
	}
	freq := frequency.Analyze(dates, frequency.DefaultTolerance)

	matchScore := c.MeanSimilarity()
	if match.Matched {
		matchScore = match.Score
	}
	score := confidence.Score(confidence.Inputs{
		FrequencyConsistency: freq.Consistency,
		AmountConsistency:    confidence.AmountConsistency(amounts),
		PatternMatchScore:    matchScore,
		Occurrences:          n,
		RuleConfidenceBoost:  match.ConfidenceBoost,
	})
	if score < cfg.MinConfidence {
		return models.RecurringPattern{}, false
	}

	payee := normalize.Payee(rep.Description)
	if match.Matched {
		payee = match.Provider
	}
	avg, lo, hi := amountStats(amounts)

	p := models.RecurringPattern{
		Payee:                 payee,
		NormalizedDescription: c.Normalized,
		Frequency:             freq.Frequency,
		AverageAmount:         avg,
		AmountVariance:        grouper.AmountVariance(lo, hi),
		MinAmount:             lo,
		MaxAmount:             hi,
		Confidence:            score,
		Occurrences:           n,
		FirstSeen:             dates[0],
		LastSeen:              dates[n-1],
		Category:              string(match.Category),
		Subcategory:           match.Subcategory,
		MemberTransactionIDs:  ids,
	}
	if match.Matched {
		p.Provider = match.Provider
	}
	p.Status, p.NextExpected = status(p.Frequency, p.LastSeen, end, cfg.FrequencyWindowDays)
	return p, true
}

// status treats a pattern as active while its last payment is within the
// detection window (or two intervals, if longer) of the statement end.
func status(f models.Frequency, lastSeen, end time.Time, windowDays int) (models.PatternStatus, *time.Time) {
	interval := f.IntervalDays()
	window := windowDays
	if 2*interval > window {
		window = 2 * interval
	}

	st := models.PatternStopped
	if end.Sub(lastSeen) <= time.Duration(window)*24*time.Hour {
		st = models.PatternActive
	}
	if interval == 0 {
		return st, nil
	}
	next := lastSeen.AddDate(0, 0, interval)
	return st, &next
}

// sortByDate returns a copy of txns ordered by date, then by ID.
func sortByDate(txns []models.Transaction) []models.Transaction {
	out := make([]models.Transaction, len(txns))
	copy(out, txns)
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].ID < out[j].ID
	})
	return out
}
