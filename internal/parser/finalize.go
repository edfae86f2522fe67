package parser

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/insightdelivered/statement-intelligence/internal/models"
	"github.com/insightdelivered/statement-intelligence/internal/normalize"
)

const (
	// balanceEpsilon is how far a balance may drift from prev±amount and
	// still count as consistent.
	balanceEpsilon = 0.015
	// dedupEpsilon is the largest amount difference two rows on the same
	// date may have and still be treated as one transaction.
	dedupEpsilon = 0.01
	// smallAmountLimit: untagged amounts below it default to money out.
	smallAmountLimit = 500.0
)

type finalizeOptions struct {
	OwnerID        string
	Year           int
	OpeningBalance *float64
}

// finalize resolves dates and signs, drops rows with invalid dates,
// coalesces duplicates and assigns hashes and IDs.
func finalize(rows []Row, opts finalizeOptions) []models.Transaction {
	years := &yearResolver{year: opts.Year}

	var prevBalance *float64
	if opts.OpeningBalance != nil {
		b := *opts.OpeningBalance
		prevBalance = &b
	}

	txns := make([]models.Transaction, 0, len(rows))
	for _, r := range rows {
		date, ok := years.resolve(r.Date)
		if !ok {
			continue
		}
		desc := cleanDescription(r.Description)

		sign := inferSign(r, desc, prevBalance)
		if r.Balance != nil {
			b := *r.Balance
			prevBalance = &b
		}

		amount := math.Abs(r.Amount) * float64(sign)
		if amount == 0 {
			amount = 0 // no negative zero
		}
		if isDuplicate(txns, date, amount) {
			continue
		}

		txns = append(txns, models.Transaction{
			Date:         date,
			Description:  desc,
			Reference:    strings.TrimSpace(r.Reference),
			Amount:       amount,
			Balance:      r.Balance,
			OriginalText: strings.TrimSpace(r.Text),
			Hash:         normalize.Hash(opts.OwnerID, amount, desc),
		})
	}

	for i := range txns {
		txns[i].ID = fmt.Sprintf("%s-%s-%d", txns[i].Hash[:12], txns[i].Date.Format("20060102"), i)
	}
	return txns
}

// inferSign is best effort. Evidence is taken in this order: an explicit
// tag, the amount's column, the balance progression, description keywords,
// and finally the amount itself (small amounts are assumed to be money out).
// The result is never SignUnknown.
func inferSign(r Row, desc string, prevBalance *float64) Sign {
	if r.Tag != SignUnknown {
		return r.Tag
	}
	if r.Column != SignUnknown {
		return r.Column
	}
	if s := signFromBalance(math.Abs(r.Amount), r.Balance, prevBalance); s != SignUnknown {
		return s
	}
	if isCreditDescription(desc) {
		return SignCredit
	}
	if isDebitDescription(desc) {
		return SignDebit
	}
	if math.Abs(r.Amount) < smallAmountLimit {
		return SignDebit
	}
	return SignCredit
}

// signFromBalance compares the row balance against the previous balance.
// If both prev-amount and prev+amount are consistent the closer one wins.
func signFromBalance(amt float64, bal, prev *float64) Sign {
	if bal == nil || prev == nil {
		return SignUnknown
	}
	debitDiff := math.Abs((*prev - amt) - *bal)
	creditDiff := math.Abs((*prev + amt) - *bal)

	switch {
	case debitDiff < balanceEpsilon && creditDiff >= balanceEpsilon:
		return SignDebit
	case creditDiff < balanceEpsilon && debitDiff >= balanceEpsilon:
		return SignCredit
	case debitDiff < balanceEpsilon && creditDiff < balanceEpsilon:
		if debitDiff <= creditDiff {
			return SignDebit
		}
		return SignCredit
	}
	return SignUnknown
}

// isDuplicate reports whether a transaction with the same date and a
// near-identical amount has already been kept.
func isDuplicate(kept []models.Transaction, date time.Time, amount float64) bool {
	for i := len(kept) - 1; i >= 0; i-- {
		k := kept[i]
		if k.Date.Equal(date) && math.Abs(k.Amount-amount) <= dedupEpsilon {
			return true
		}
	}
	return false
}
