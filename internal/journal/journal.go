package journal

import (
	"context"

	"github.com/tebello-m/tenderledger/internal/ledger"
)

// Journal is the durable log collaborator the engine persists through.
//
// Implementations serialize the sequence with the ledger envelope codec so
// every record stays field-tagged and self-describing on the medium.
type Journal interface {
	// Load reads the full ordered transaction sequence. A missing backing
	// resource yields an empty sequence and no error.
	Load(ctx context.Context) ([]ledger.Transaction, error)

	// Save replaces the stored sequence with the given one, wholesale.
	Save(ctx context.Context, txs []ledger.Transaction) error

	// Close releases the backing resource.
	Close() error
}
