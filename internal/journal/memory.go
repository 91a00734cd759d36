package journal

import (
	"context"
	"fmt"
	"sync"

	"github.com/tebello-m/tenderledger/internal/ledger"
)

// MemoryJournal keeps the serialized sequence in memory. Tests and the
// scenario harness use it; because it stores bytes rather than live pointers,
// every Save/Load pair still exercises the full wire codec.
type MemoryJournal struct {
	mu   sync.Mutex
	data []byte

	// SaveErr, when set, is returned by the next Save call. Tests use it to
	// simulate a persistence failure.
	SaveErr error
}

// NewMemoryJournal creates an empty in-memory journal.
func NewMemoryJournal() *MemoryJournal {
	return &MemoryJournal{}
}

// Load implements Journal.
func (j *MemoryJournal) Load(ctx context.Context) ([]ledger.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.data == nil {
		return []ledger.Transaction{}, nil
	}
	txs, err := ledger.UnmarshalTransactions(j.data)
	if err != nil {
		return nil, fmt.Errorf("load journal: %w", err)
	}
	return txs, nil
}

// Save implements Journal.
func (j *MemoryJournal) Save(ctx context.Context, txs []ledger.Transaction) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.SaveErr != nil {
		err := j.SaveErr
		j.SaveErr = nil
		return err
	}
	data, err := ledger.MarshalTransactions(txs)
	if err != nil {
		return fmt.Errorf("save journal: %w", err)
	}
	j.data = data
	return nil
}

// Bytes returns the last saved serialized sequence, or nil if nothing was
// saved yet. The harness snapshots this for golden comparison.
func (j *MemoryJournal) Bytes() []byte {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.data
}

// Close implements Journal.
func (j *MemoryJournal) Close() error { return nil }
