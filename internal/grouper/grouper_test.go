package grouper

import (
	"testing"
	"time"

	"github.com/insightdelivered/statement-intelligence/internal/models"
)

func txn(id, date, desc string, amount float64) models.Transaction {
	d, err := time.Parse("2006-01-02", date)
	if err != nil {
		panic(err)
	}
	return models.Transaction{ID: id, Date: d, Description: desc, Amount: amount}
}

func TestGroup_RecurringCharge(t *testing.T) {
	txns := []models.Transaction{
		txn("1", "2024-01-01", "DD BRITISH GAS", -45.00),
		txn("2", "2024-01-03", "CARD PAYMENT TESCO STORES", -12.30),
		txn("3", "2024-02-01", "DD BRITISH GAS", -45.50),
		txn("4", "2024-03-01", "DD BRITISH GAS LTD", -44.80),
	}

	clusters := Group(txns, DefaultOptions())
	if len(clusters) != 1 {
		t.Fatalf("clusters: got %d, want 1", len(clusters))
	}

	c := clusters[0]
	if c.Normalized != "BRITISH GAS" {
		t.Errorf("normalized: got %q, want %q", c.Normalized, "BRITISH GAS")
	}
	if len(c.Members) != 3 {
		t.Errorf("members: got %d, want 3", len(c.Members))
	}
	if c.Representative().ID != "1" {
		t.Errorf("representative: got %q, want %q", c.Representative().ID, "1")
	}
	if c.MeanSimilarity() != 1 {
		t.Errorf("mean similarity: got %v, want 1", c.MeanSimilarity())
	}
}

func TestGroup_IdenticalTransactionsShareCluster(t *testing.T) {
	txns := []models.Transaction{
		txn("a", "2024-01-05", "NETFLIX.COM", -10.99),
		txn("b", "2024-01-06", "SPOTIFY", -9.99),
		txn("c", "2024-02-05", "NETFLIX.COM", -10.99),
		txn("d", "2024-02-06", "SPOTIFY", -9.99),
	}

	clusters := Group(txns, DefaultOptions())
	if len(clusters) != 2 {
		t.Fatalf("clusters: got %d, want 2", len(clusters))
	}
	for _, c := range clusters {
		if len(c.Members) != 2 {
			t.Errorf("cluster %q: got %d members, want 2", c.Normalized, len(c.Members))
		}
		if c.Members[0].Description != c.Members[1].Description {
			t.Errorf("cluster mixes %q and %q", c.Members[0].Description, c.Members[1].Description)
		}
	}
}

func TestGroup_AmountOutsideToleranceSplits(t *testing.T) {
	txns := []models.Transaction{
		txn("1", "2024-01-01", "GYM MEMBERSHIP", -100.00),
		txn("2", "2024-02-01", "GYM MEMBERSHIP", -130.00),
	}

	all := Assign(txns, DefaultOptions())
	if len(all) != 2 {
		t.Fatalf("clusters: got %d, want 2 (30%% variance exceeds tolerance)", len(all))
	}
	if got := Group(txns, DefaultOptions()); len(got) != 0 {
		t.Errorf("expected no multi-member clusters, got %d", len(got))
	}
}

func TestGroup_DebitsAndCreditsStaySeparate(t *testing.T) {
	txns := []models.Transaction{
		txn("1", "2024-01-01", "AMAZON", -20.00),
		txn("2", "2024-01-08", "AMAZON", 20.00),
	}
	if got := Group(txns, DefaultOptions()); len(got) != 0 {
		t.Errorf("expected refund to stay out of the debit cluster, got %d clusters", len(got))
	}
}

func TestGroup_SingleTransactionYieldsNothing(t *testing.T) {
	txns := []models.Transaction{txn("1", "2024-01-01", "UNIQUE PAYEE", -5)}
	if got := Group(txns, DefaultOptions()); len(got) != 0 {
		t.Errorf("got %d clusters, want 0", len(got))
	}
	if got := Group(nil, DefaultOptions()); len(got) != 0 {
		t.Errorf("got %d clusters for nil input, want 0", len(got))
	}
}

// Greedy assignment compares only against representatives, so the grouping
// depends on arrival order. This is documented behaviour.
func TestAssign_OrderDependence(t *testing.T) {
	opts := Options{SimilarityThreshold: 80, AmountTolerance: 0.1}

	a := txn("a", "2024-01-01", "ABCDEFGHIJ", -10)
	b := txn("b", "2024-01-02", "ABCDEFGHXY", -10)
	c := txn("c", "2024-01-03", "ABCDEFXYZW", -10)

	// b is 80 from both a and c, but a and c are only 60 apart.
	first := Assign([]models.Transaction{a, b, c}, opts)
	if len(first) != 2 {
		t.Fatalf("a,b,c: got %d clusters, want 2", len(first))
	}
	if len(first[0].Members) != 2 || first[0].Members[1].ID != "b" {
		t.Errorf("a,b,c: expected b to join a's cluster")
	}

	second := Assign([]models.Transaction{b, a, c}, opts)
	if len(second) != 1 {
		t.Fatalf("b,a,c: got %d clusters, want 1 (b represents both)", len(second))
	}
	if len(second[0].Members) != 3 {
		t.Errorf("b,a,c: got %d members, want 3", len(second[0].Members))
	}
}

func TestAmountVariance(t *testing.T) {
	tests := []struct {
		a, b float64
		want float64
	}{
		{100, 130, 30.0 / 130.0},
		{-45, -45, 0},
		{0, 0, 0},
		{-50, -25, 0.5},
	}
	for _, tt := range tests {
		if got := AmountVariance(tt.a, tt.b); got != tt.want {
			t.Errorf("AmountVariance(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}
