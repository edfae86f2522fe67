// Package store remembers transaction fingerprints across imports so the
// same transaction is not imported twice.
package store

import (
	"context"
	"sync"

	"github.com/insightdelivered/statement-intelligence/internal/models"
)

// dateLayout is how transaction dates are keyed.
const dateLayout = "2006-01-02"

// FingerprintStore records which transactions an owner has already
// imported. A transaction is identified by (owner, hash, date): the hash
// ignores the date, so a recurring charge is only a duplicate when it is
// seen again on the same day.
type FingerprintStore interface {
	// FilterNew records txns and returns the ones not seen before, in input
	// order, along with the number of duplicates dropped.
	FilterNew(ctx context.Context, ownerID string, txns []models.Transaction) ([]models.Transaction, int, error)
	// Count returns how many fingerprints are held for ownerID.
	Count(ctx context.Context, ownerID string) (int, error)
	// Forget drops every fingerprint of ownerID and returns how many there were.
	Forget(ctx context.Context, ownerID string) (int64, error)
	Close() error
}

type fingerprint struct {
	owner, hash, date string
}

func keyOf(ownerID string, t models.Transaction) fingerprint {
	return fingerprint{owner: ownerID, hash: t.Hash, date: t.Date.Format(dateLayout)}
}

// MemoryStore is an in-process FingerprintStore. It is safe for concurrent
// use; data is lost when the process exits.
type MemoryStore struct {
	mu   sync.Mutex
	seen map[fingerprint]struct{}
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{seen: make(map[fingerprint]struct{})}
}

func (s *MemoryStore) FilterNew(ctx context.Context, ownerID string, txns []models.Transaction) ([]models.Transaction, int, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	fresh := make([]models.Transaction, 0, len(txns))
	dups := 0
	for _, t := range txns {
		k := keyOf(ownerID, t)
		if _, ok := s.seen[k]; ok {
			dups++
			continue
		}
		s.seen[k] = struct{}{}
		fresh = append(fresh, t)
	}
	return fresh, dups, nil
}

func (s *MemoryStore) Count(_ context.Context, ownerID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for k := range s.seen {
		if k.owner == ownerID {
			n++
		}
	}
	return n, nil
}

func (s *MemoryStore) Forget(_ context.Context, ownerID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for k := range s.seen {
		if k.owner == ownerID {
			delete(s.seen, k)
			n++
		}
	}
	return n, nil
}

func (s *MemoryStore) Close() error {
	return nil
}

var (
	_ FingerprintStore = (*MemoryStore)(nil)
	_ FingerprintStore = (*SQLiteStore)(nil)
)
