// Package frequency infers the cadence of a recurring payment from the
// gaps between its dates.
package frequency

import (
	"math"
	"sort"
	"time"

	"github.com/insightdelivered/statement-intelligence/internal/models"
)

const (
	// DefaultTolerance is the allowed stddev/mean ratio of the gaps before
	// a series is considered irregular.
	DefaultTolerance = 0.35

	// SmallSampleScore is used when fewer than three dates are available,
	// where spread statistics mean little.
	SmallSampleScore = 0.6
	// IrregularScore is the consistency of an irregular series.
	IrregularScore = 0.3

	minSample = 3
)

// band maps a range of mean gaps onto a frequency.
type band struct {
	min, max  float64
	frequency models.Frequency
}

// bands are checked in order; gaps outside all of them are irregular.
var bands = []band{
	{5, 10, models.FrequencyWeekly},
	{25, 35, models.FrequencyMonthly},
	{85, 100, models.FrequencyQuarterly},
	{350, 400, models.FrequencyAnnually},
}

// Result is the outcome of analysing one series of dates.
type Result struct {
	Frequency   models.Frequency
	Consistency float64
	MeanGap     float64
	StdDevGap   float64
	Gaps        []float64
}

// Analyze infers the cadence of the given dates. The dates do not need to be
// sorted. A tolerance of zero or less means DefaultTolerance.
func Analyze(dates []time.Time, tolerance float64) Result {
	sorted := make([]time.Time, len(dates))
	copy(sorted, dates)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Before(sorted[j]) })

	gaps := make([]float64, 0, len(sorted))
	for i := 1; i < len(sorted); i++ {
		gaps = append(gaps, daysBetween(sorted[i-1], sorted[i]))
	}

	return AnalyzeGaps(gaps, tolerance)
}

// AnalyzeGaps classifies a series of day gaps. A series with fewer than two
// gaps (three dates) gets SmallSampleScore as its consistency.
func AnalyzeGaps(gaps []float64, tolerance float64) Result {
	if tolerance <= 0 {
		tolerance = DefaultTolerance
	}

	res := Result{Frequency: models.FrequencyIrregular, Consistency: IrregularScore, Gaps: gaps}
	if len(gaps) == 0 {
		res.Consistency = SmallSampleScore
		return res
	}

	res.MeanGap = mean(gaps)
	res.StdDevGap = stddev(gaps, res.MeanGap)

	if res.StdDevGap > res.MeanGap*tolerance {
		if len(gaps)+1 < minSample {
			res.Consistency = SmallSampleScore
		}
		return res
	}

	res.Frequency = bucket(res.MeanGap)
	switch {
	case len(gaps)+1 < minSample:
		res.Consistency = SmallSampleScore
	case res.Frequency == models.FrequencyIrregular:
		res.Consistency = IrregularScore
	default:
		res.Consistency = Consistency(gaps, res.Frequency)
	}
	return res
}

// Consistency scores how closely gaps follow the canonical interval of f:
// max(0, 1 - 2*meanAbsoluteRelativeDeviation).
func Consistency(gaps []float64, f models.Frequency) float64 {
	interval := float64(f.IntervalDays())
	if interval == 0 || len(gaps) == 0 {
		return IrregularScore
	}
	var dev float64
	for _, g := range gaps {
		dev += math.Abs(g-interval) / interval
	}
	dev /= float64(len(gaps))
	return math.Max(0, 1-dev*2)
}

func bucket(meanGap float64) models.Frequency {
	for _, b := range bands {
		if meanGap >= b.min && meanGap <= b.max {
			return b.frequency
		}
	}
	return models.FrequencyIrregular
}

// daysBetween counts calendar days, ignoring time of day and DST shifts.
func daysBetween(a, b time.Time) float64 {
	ua := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	ub := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return math.Round(ub.Sub(ua).Hours() / 24)
}

func mean(xs []float64) float64 {
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// stddev is the population standard deviation.
func stddev(xs []float64, m float64) float64 {
	var sum float64
	for _, x := range xs {
		d := x - m
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(xs)))
}
