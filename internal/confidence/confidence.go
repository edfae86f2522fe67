// Package confidence combines the weak signals gathered for a cluster into a
// single score in [0,1].
package confidence

import "math"

// Signal weights. These values are part of the scoring contract and must
// not change without updating every consumer's expectations.
const (
	WeightFrequency   = 0.3
	WeightAmount      = 0.25
	WeightPattern     = 0.35
	WeightOccurrences = 0.1

	// OccurrenceSaturation is the occurrence count at which the occurrence
	// signal stops growing.
	OccurrenceSaturation = 5
	// SmallSamplePenalty scales the score of clusters seen fewer than
	// SmallSampleSize times.
	SmallSamplePenalty = 0.8
	SmallSampleSize    = 3
)

// Inputs are the signals for one cluster.
type Inputs struct {
	FrequencyConsistency float64 // [0,1]
	AmountConsistency    float64 // [0,1]
	PatternMatchScore    float64 // [0,1]
	Occurrences          int
	RuleConfidenceBoost  float64
}

// Score computes
//
//	freq*0.3 + amount*0.25 + pattern*0.35 + min(occ/5,1)*0.1 + boost
//
// scales it by 0.8 when there are fewer than three occurrences, and clips
// the result to [0,1].
func Score(in Inputs) float64 {
	occ := math.Min(float64(in.Occurrences)/OccurrenceSaturation, 1)
	if occ < 0 {
		occ = 0
	}

	score := in.FrequencyConsistency*WeightFrequency +
		in.AmountConsistency*WeightAmount +
		in.PatternMatchScore*WeightPattern +
		occ*WeightOccurrences
	score += in.RuleConfidenceBoost
	if in.Occurrences < SmallSampleSize {
		score *= SmallSamplePenalty
	}
	return clip(score)
}

// AmountConsistency returns max(0, 1 - 2*CoV) over the absolute amounts,
// using the population standard deviation. Fewer than two amounts are
// perfectly consistent by definition.
func AmountConsistency(amounts []float64) float64 {
	if len(amounts) < 2 {
		return 1
	}
	var sum float64
	for _, a := range amounts {
		sum += math.Abs(a)
	}
	mean := sum / float64(len(amounts))
	if mean == 0 {
		return 1
	}
	var sq float64
	for _, a := range amounts {
		d := math.Abs(a) - mean
		sq += d * d
	}
	cov := math.Sqrt(sq/float64(len(amounts))) / mean
	return math.Max(0, 1-cov*2)
}

func clip(x float64) float64 {
	if math.IsNaN(x) {
		return 0
	}
	return math.Max(0, math.Min(1, x))
}
