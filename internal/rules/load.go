package rules

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/insightdelivered/statement-intelligence/internal/models"
)

// ruleFile is the on-disk shape of a detection rule set.
type ruleFile struct {
	Settings   Settings             `yaml:"settings"`
	Categories map[string][]ruleDoc `yaml:"categories"`
}

type ruleDoc struct {
	Name              string   `yaml:"name"`
	Patterns          []string `yaml:"patterns"`
	Subcategory       string   `yaml:"subcategory"`
	Provider          string   `yaml:"provider"`
	ConfidenceBoost   float64  `yaml:"confidence_boost"`
	MinOccurrences    int      `yaml:"min_occurrences"`
	ExpectedFrequency string   `yaml:"expected_frequency"`
	Active            *bool    `yaml:"active"`
}

// Parse decodes a YAML rule set. Empty input yields an empty rule set.
func Parse(data []byte) (*RuleSet, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return Empty(), nil
	}

	var doc ruleFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode rule set: %w", err)
	}
	if err := doc.Settings.Validate(); err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}

	groups := make(map[Category][]ProviderRule, len(doc.Categories))
	for name, docs := range doc.Categories {
		cat := Category(name)
		if !knownCategory(cat) {
			return nil, fmt.Errorf("%w: %q", ErrUnknownCategory, name)
		}
		for _, d := range docs {
			active := true
			if d.Active != nil {
				active = *d.Active
			}
			groups[cat] = append(groups[cat], ProviderRule{
				Name:              d.Name,
				Patterns:          d.Patterns,
				Subcategory:       d.Subcategory,
				Provider:          d.Provider,
				ConfidenceBoost:   d.ConfidenceBoost,
				MinOccurrences:    d.MinOccurrences,
				ExpectedFrequency: models.Frequency(d.ExpectedFrequency),
				Active:            active,
			})
		}
	}

	rs, err := NewRuleSet(groups)
	if err != nil {
		return nil, err
	}
	rs.Settings = doc.Settings
	return rs, nil
}

// Load reads a rule set from a YAML file. A missing file yields an empty
// rule set, so detection falls back to its keyword heuristics.
func Load(path string) (*RuleSet, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return Empty(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read rule set %q: %w", path, err)
	}
	return Parse(data)
}

// Marshal encodes a rule set in the file format accepted by Parse.
func Marshal(rs *RuleSet) ([]byte, error) {
	doc := ruleFile{Categories: map[string][]ruleDoc{}}
	if rs != nil {
		doc.Settings = rs.Settings
	}
	for _, r := range rs.Ordered() {
		active := r.Active
		doc.Categories[string(r.Category)] = append(doc.Categories[string(r.Category)], ruleDoc{
			Name:              r.Name,
			Patterns:          r.Patterns,
			Subcategory:       r.Subcategory,
			Provider:          r.Provider,
			ConfidenceBoost:   r.ConfidenceBoost,
			MinOccurrences:    r.MinOccurrences,
			ExpectedFrequency: string(r.ExpectedFrequency),
			Active:            &active,
		})
	}
	return yaml.Marshal(doc)
}
