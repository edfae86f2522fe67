// Package grouper clusters transactions that look like the same recurring
// payment.
//
// Clustering is a single greedy pass: each transaction is compared with the
// representative (first member) of every existing cluster, in creation
// order, and joins the first one it is close enough to. The result depends
// on input order and is not transitive: a transaction can match cluster A's
// representative and not cluster B's even when A and B would match each
// other. Callers that want stable output sort by date first.
package grouper

import (
	"math"

	"github.com/insightdelivered/statement-intelligence/internal/fuzzy"
	"github.com/insightdelivered/statement-intelligence/internal/models"
	"github.com/insightdelivered/statement-intelligence/internal/normalize"
)

const (
	// DefaultSimilarityThreshold is the minimum 0-100 ratio for general use.
	DefaultSimilarityThreshold = 85
	// RuleDrivenSimilarityThreshold is used when clusters are later confirmed
	// by provider rules, so a looser text match is acceptable.
	RuleDrivenSimilarityThreshold = 75
	// DefaultAmountTolerance is the maximum relative amount difference.
	DefaultAmountTolerance = 0.10
)

// Options controls when a transaction joins an existing cluster.
type Options struct {
	SimilarityThreshold int     // 0-100
	AmountTolerance     float64 // relative, e.g. 0.1 for 10%
}

// DefaultOptions returns the general-purpose thresholds.
func DefaultOptions() Options {
	return Options{
		SimilarityThreshold: DefaultSimilarityThreshold,
		AmountTolerance:     DefaultAmountTolerance,
	}
}

// Cluster is a group of transactions sharing a similar description and amount.
type Cluster struct {
	// Normalized is the canonical description of the representative.
	Normalized string
	Members    []models.Transaction
	// Similarities holds each member's 0-100 ratio against the
	// representative, index-aligned with Members.
	Similarities []int
}

// Representative returns the first member, against which others were matched.
func (c Cluster) Representative() models.Transaction {
	return c.Members[0]
}

// MeanSimilarity returns the average member similarity in [0,1].
func (c Cluster) MeanSimilarity() float64 {
	if len(c.Similarities) == 0 {
		return 0
	}
	total := 0
	for _, s := range c.Similarities {
		total += s
	}
	return float64(total) / float64(len(c.Similarities)) / 100
}

// AmountVariance returns |a1-a2| / max(|a1|,|a2|).
func AmountVariance(a1, a2 float64) float64 {
	x, y := math.Abs(a1), math.Abs(a2)
	m := math.Max(x, y)
	if m == 0 {
		return 0
	}
	return math.Abs(x-y) / m
}

// Assign runs the greedy pass and returns every cluster, singletons included.
func Assign(txns []models.Transaction, opts Options) []Cluster {
	var clusters []Cluster

	for _, txn := range txns {
		norm := normalize.Normalize(txn.Description)

		joined := false
		for i := range clusters {
			c := &clusters[i]
			rep := c.Members[0]

			// Money in and money out are never the same recurring payment.
			if (rep.Amount < 0) != (txn.Amount < 0) {
				continue
			}

			sim := fuzzy.Ratio(norm, c.Normalized)
			if sim < opts.SimilarityThreshold {
				continue
			}
			if AmountVariance(rep.Amount, txn.Amount) > opts.AmountTolerance {
				continue
			}

			c.Members = append(c.Members, txn)
			c.Similarities = append(c.Similarities, sim)
			joined = true
			break
		}

		if !joined {
			clusters = append(clusters, Cluster{
				Normalized:   norm,
				Members:      []models.Transaction{txn},
				Similarities: []int{100},
			})
		}
	}

	return clusters
}

// Group returns only the clusters with at least two members.
func Group(txns []models.Transaction, opts Options) []Cluster {
	var out []Cluster
	for _, c := range Assign(txns, opts) {
		if len(c.Members) >= 2 {
			out = append(out, c)
		}
	}
	return out
}
