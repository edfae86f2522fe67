package rules

import (
	"fmt"
	"strings"

	"github.com/insightdelivered/statement-intelligence/internal/fuzzy"
	"github.com/insightdelivered/statement-intelligence/internal/normalize"
)

// DefaultMatchThreshold is the minimum fuzzy similarity (0-1) for a rule
// pattern to count as a match when no exact match exists.
const DefaultMatchThreshold = 0.75

// Match is the outcome of evaluating a description against a rule set.
type Match struct {
	Matched         bool
	Rule            *ProviderRule
	Category        Category
	Subcategory     string
	Provider        string
	ConfidenceBoost float64
	// Score is 1.0 for an exact match, otherwise the best fuzzy similarity.
	Score float64
}

// NoMatch is the neutral result returned when no rule applies.
func NoMatch() Match {
	return Match{Category: CategoryOther}
}

type compiledRule struct {
	rule     ProviderRule
	patterns []pattern
}

// Matcher evaluates descriptions against the active rules of a rule set.
// It is safe for concurrent use.
type Matcher struct {
	rules     []compiledRule
	threshold float64
}

// NewMatcher compiles the active rules of rs. A nil or empty rule set gives
// a matcher that never matches. threshold <= 0 means DefaultMatchThreshold.
func NewMatcher(rs *RuleSet, threshold float64) (*Matcher, error) {
	if threshold <= 0 {
		threshold = DefaultMatchThreshold
	}
	m := &Matcher{threshold: threshold}
	for _, r := range rs.Active() {
		cr := compiledRule{rule: r}
		for _, p := range r.Patterns {
			cp, err := compilePattern(p)
			if err != nil {
				return nil, fmt.Errorf("rule %s: %w", r.Name, err)
			}
			cr.patterns = append(cr.patterns, cp)
		}
		m.rules = append(m.rules, cr)
	}
	return m, nil
}

// Match returns the first rule, in evaluation order, whose patterns match
// the description, or NoMatch.
func (m *Matcher) Match(description string) Match {
	if m == nil {
		return NoMatch()
	}
	norm := normalize.Normalize(description)
	padded := " " + norm + " "

	for i := range m.rules {
		cr := &m.rules[i]
		best := 0.0
		for _, p := range cr.patterns {
			if p.re != nil {
				if p.re.MatchString(description) || p.re.MatchString(norm) {
					best = 1
					break
				}
				continue
			}
			if strings.Contains(padded, " "+p.keyword+" ") {
				best = 1
				break
			}
			if s := fuzzy.Similarity(norm, p.keyword); s > best {
				best = s
			}
		}
		if best >= m.threshold {
			rule := cr.rule
			provider := rule.Provider
			if provider == "" {
				provider = rule.Name
			}
			return Match{
				Matched:         true,
				Rule:            &rule,
				Category:        rule.Category,
				Subcategory:     rule.Subcategory,
				Provider:        provider,
				ConfidenceBoost: rule.ConfidenceBoost,
				Score:           best,
			}
		}
	}
	return NoMatch()
}
