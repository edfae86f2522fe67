package detector

import (
	"errors"
	"fmt"

	"github.com/insightdelivered/statement-intelligence/internal/rules"
)

// Config holds the detection options. They are always injected; nothing in
// the pipeline reads them from the environment.
type Config struct {
	MinConfidence           float64 // patterns below this are dropped
	FuzzyMatchThreshold     float64 // 0-1, scaled to the grouper's 0-100 ratio
	AmountVarianceTolerance float64 // relative, e.g. 0.1
	FrequencyWindowDays     int
}

// DefaultConfig returns the documented defaults.
func DefaultConfig() Config {
	return Config{
		MinConfidence:           0.6,
		FuzzyMatchThreshold:     0.8,
		AmountVarianceTolerance: 0.1,
		FrequencyWindowDays:     90,
	}
}

// WithSettings returns c with every non-zero value of s applied on top.
func (c Config) WithSettings(s rules.Settings) Config {
	if s.MinConfidenceThreshold != 0 {
		c.MinConfidence = s.MinConfidenceThreshold
	}
	if s.FuzzyMatchThreshold != 0 {
		c.FuzzyMatchThreshold = s.FuzzyMatchThreshold
	}
	if s.AmountVarianceTolerance != 0 {
		c.AmountVarianceTolerance = s.AmountVarianceTolerance
	}
	if s.FrequencyDetectionWindowDays != 0 {
		c.FrequencyWindowDays = s.FrequencyDetectionWindowDays
	}
	return c
}

// Validate reports the first option that is out of range.
func (c Config) Validate() error {
	if c.MinConfidence < 0 || c.MinConfidence > 1 {
		return fmt.Errorf("min confidence threshold %v out of range [0,1]", c.MinConfidence)
	}
	if c.FuzzyMatchThreshold < 0 || c.FuzzyMatchThreshold > 1 {
		return fmt.Errorf("fuzzy match threshold %v out of range [0,1]", c.FuzzyMatchThreshold)
	}
	if c.AmountVarianceTolerance < 0 {
		return errors.New("amount variance tolerance must not be negative")
	}
	if c.FrequencyWindowDays <= 0 {
		return errors.New("frequency detection window must be positive")
	}
	return nil
}
