// Package rules holds the provider rule set used to refine the category of
// recurring payments, and the matcher that evaluates it.
package rules

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/insightdelivered/statement-intelligence/internal/models"
	"github.com/insightdelivered/statement-intelligence/internal/normalize"
)

// ErrUnknownCategory is returned for rule groups outside CategoryOrder.
var ErrUnknownCategory = errors.New("unknown rule category")

// Category names a group of provider rules.
type Category string

const (
	CategoryUtility      Category = "utility"
	CategoryCouncilTax   Category = "council_tax"
	CategoryTelecoms     Category = "telecoms"
	CategorySubscription Category = "subscription"
	CategoryInsurance    Category = "insurance"
	CategoryGeneral      Category = "general"

	// CategoryOther is reported when no rule matches. It is not a rule group.
	CategoryOther Category = "other"
)

// CategoryOrder is the evaluation order of rule groups. Rules are ordered
// from most to least specific, and the first match wins.
var CategoryOrder = []Category{
	CategoryUtility,
	CategoryCouncilTax,
	CategoryTelecoms,
	CategorySubscription,
	CategoryInsurance,
	CategoryGeneral,
}

func knownCategory(c Category) bool {
	for _, k := range CategoryOrder {
		if k == c {
			return true
		}
	}
	return false
}

// ProviderRule identifies one provider by keyword or regex patterns.
// A pattern wrapped in slashes ("/B\.?GAS/") is a case-insensitive regular
// expression; anything else is a case-insensitive keyword.
type ProviderRule struct {
	Name              string
	Patterns          []string
	Category          Category
	Subcategory       string
	Provider          string
	ConfidenceBoost   float64
	MinOccurrences    int
	ExpectedFrequency models.Frequency
	Active            bool
}

// Settings are detection options a rule file may carry. Zero values mean
// "not set".
type Settings struct {
	MinConfidenceThreshold       float64 `yaml:"min_confidence_threshold"`
	FuzzyMatchThreshold          float64 `yaml:"fuzzy_match_threshold"`
	AmountVarianceTolerance      float64 `yaml:"amount_variance_tolerance"`
	FrequencyDetectionWindowDays int     `yaml:"frequency_detection_window_days"`
}

// Validate reports the first setting that is out of range. Zero values are
// unset and always valid.
func (s Settings) Validate() error {
	if s.MinConfidenceThreshold < 0 || s.MinConfidenceThreshold > 1 {
		return fmt.Errorf("min_confidence_threshold %v out of range [0,1]", s.MinConfidenceThreshold)
	}
	if s.FuzzyMatchThreshold < 0 || s.FuzzyMatchThreshold > 1 {
		return fmt.Errorf("fuzzy_match_threshold %v out of range [0,1]", s.FuzzyMatchThreshold)
	}
	if s.AmountVarianceTolerance < 0 {
		return fmt.Errorf("amount_variance_tolerance %v must not be negative", s.AmountVarianceTolerance)
	}
	if s.FrequencyDetectionWindowDays < 0 {
		return fmt.Errorf("frequency_detection_window_days %d must not be negative", s.FrequencyDetectionWindowDays)
	}
	return nil
}

// RuleSet is an immutable, validated collection of provider rules grouped by
// category. A nil *RuleSet behaves as an empty set.
type RuleSet struct {
	Settings Settings
	groups   map[Category][]ProviderRule
}

// NewRuleSet validates the groups and returns a rule set. Each rule's
// Category is set from its group.
func NewRuleSet(groups map[Category][]ProviderRule) (*RuleSet, error) {
	rs := &RuleSet{groups: make(map[Category][]ProviderRule, len(groups))}
	for cat, rules := range groups {
		if !knownCategory(cat) {
			return nil, fmt.Errorf("%w: %q", ErrUnknownCategory, cat)
		}
		out := make([]ProviderRule, 0, len(rules))
		for i, r := range rules {
			r.Category = cat
			if err := validateRule(r); err != nil {
				return nil, fmt.Errorf("rule %d in %s: %w", i, cat, err)
			}
			r.Patterns = append([]string(nil), r.Patterns...)
			out = append(out, r)
		}
		rs.groups[cat] = out
	}
	return rs, nil
}

// Empty returns a rule set with no rules.
func Empty() *RuleSet {
	return &RuleSet{groups: map[Category][]ProviderRule{}}
}

func validateRule(r ProviderRule) error {
	if strings.TrimSpace(r.Name) == "" {
		return errors.New("name is required")
	}
	if len(r.Patterns) == 0 {
		return fmt.Errorf("%s: at least one pattern is required", r.Name)
	}
	for _, p := range r.Patterns {
		if _, err := compilePattern(p); err != nil {
			return fmt.Errorf("%s: %w", r.Name, err)
		}
	}
	if r.ConfidenceBoost < -1 || r.ConfidenceBoost > 1 {
		return fmt.Errorf("%s: confidence boost %v out of range [-1,1]", r.Name, r.ConfidenceBoost)
	}
	if r.MinOccurrences < 0 {
		return fmt.Errorf("%s: min occurrences must not be negative", r.Name)
	}
	if r.ExpectedFrequency != "" && !r.ExpectedFrequency.Valid() {
		return fmt.Errorf("%s: unknown expected frequency %q", r.Name, r.ExpectedFrequency)
	}
	return nil
}

// Ordered returns every rule, in CategoryOrder and declaration order.
func (rs *RuleSet) Ordered() []ProviderRule {
	if rs == nil {
		return nil
	}
	var out []ProviderRule
	for _, cat := range CategoryOrder {
		out = append(out, rs.groups[cat]...)
	}
	return out
}

// Active returns the active rules in evaluation order.
func (rs *RuleSet) Active() []ProviderRule {
	var out []ProviderRule
	for _, r := range rs.Ordered() {
		if r.Active {
			out = append(out, r)
		}
	}
	return out
}

// Len returns the number of rules, active or not.
func (rs *RuleSet) Len() int {
	return len(rs.Ordered())
}

// pattern is a compiled rule pattern.
type pattern struct {
	raw     string
	keyword string // normalized keyword; empty for regex patterns
	re      *regexp.Regexp
}

func compilePattern(p string) (pattern, error) {
	p = strings.TrimSpace(p)
	if len(p) >= 2 && strings.HasPrefix(p, "/") && strings.HasSuffix(p, "/") {
		re, err := regexp.Compile("(?i)" + p[1:len(p)-1])
		if err != nil {
			return pattern{}, fmt.Errorf("invalid regex pattern %q: %w", p, err)
		}
		return pattern{raw: p, re: re}, nil
	}
	kw := normalize.Normalize(p)
	if kw == "" {
		return pattern{}, fmt.Errorf("pattern %q has no matchable text", p)
	}
	return pattern{raw: p, keyword: kw}, nil
}
