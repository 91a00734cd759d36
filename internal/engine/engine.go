// Package engine implements the single-writer ledger state machine for the
// tender token system.
//
// The engine owns the full transaction sequence in memory, reconstructed from
// the durable journal at construction time. Every mutating operation runs to
// completion under one writer lock: validate against current state, append
// the new record (and apply the one in-place issuance mutation), then rewrite
// the journal wholesale. Validation failures surface before any mutation, so
// a failed call leaves both memory and journal untouched. Read operations
// take the lock in shared mode and never mutate.
package engine

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/tebello-m/tenderledger/internal/journal"
	"github.com/tebello-m/tenderledger/internal/ledger"
)

type issuanceKey struct {
	tender     string
	contractor string
}

// Engine is the ledger engine. Construct with New; the zero value is not
// usable. Independent engines (over independent journals) coexist freely;
// there is no process-wide state.
type Engine struct {
	mu      sync.RWMutex
	journal journal.Journal
	ids     IDGenerator
	now     func() time.Time
	logger  *slog.Logger

	// txs is the insertion-ordered transaction sequence. Append-only except
	// for the in-place TokensRemaining/Status mutation on issuances.
	txs []ledger.Transaction

	// active maps (tender, contractor) to the position of its ACTIVE
	// issuance in txs. Maintained on issue/settle, rebuilt on load.
	active map[issuanceKey]int
}

// Option configures an Engine.
type Option func(*Engine)

// WithIDGenerator overrides the transaction ID generator.
// Default: UUIDv7Generator.
func WithIDGenerator(g IDGenerator) Option {
	return func(e *Engine) { e.ids = g }
}

// WithClock overrides the wall clock used to stamp records. Tests inject a
// deterministic clock here. Default: time.Now.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithLogger sets the structured logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// New loads the full transaction sequence from the journal and builds the
// active-issuance index. An absent journal resource yields an empty ledger.
func New(ctx context.Context, j journal.Journal, opts ...Option) (*Engine, error) {
	e := &Engine{
		journal: j,
		ids:     UUIDv7Generator{},
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}

	txs, err := j.Load(ctx)
	if err != nil {
		return nil, &Error{Code: CodePersistence, Message: "load journal", Err: err}
	}
	e.txs = txs
	e.rebuildIndex()

	e.logger.Debug("ledger loaded", "transactions", len(e.txs), "active_issuances", len(e.active))
	return e, nil
}

// rebuildIndex rescans the sequence for ACTIVE issuances. First match wins
// for a given pair, mirroring the linear-scan lookup order.
func (e *Engine) rebuildIndex() {
	e.active = make(map[issuanceKey]int)
	for i, tx := range e.txs {
		iss, ok := tx.(*ledger.Issuance)
		if !ok || iss.Status != ledger.StatusActive {
			continue
		}
		key := issuanceKey{iss.TenderID, iss.ContractorID}
		if _, exists := e.active[key]; !exists {
			e.active[key] = i
		}
	}
}

// findActive returns the ACTIVE issuance for the pair, or a NOT_FOUND error.
// Caller must hold the lock.
func (e *Engine) findActive(tenderID, contractorID string) (*ledger.Issuance, error) {
	pos, ok := e.active[issuanceKey{tenderID, contractorID}]
	if !ok {
		return nil, opErr(CodeNotFound, tenderID, contractorID,
			"no active token issuance found for tender %s", tenderID)
	}
	return e.txs[pos].(*ledger.Issuance), nil
}

// persist rewrites the journal with the current sequence. Caller must hold
// the writer lock and is responsible for reverting in-memory state on error.
func (e *Engine) persist(ctx context.Context) error {
	if err := e.journal.Save(ctx, e.txs); err != nil {
		return &Error{Code: CodePersistence, Message: "save journal", Err: err}
	}
	return nil
}

// timestamp returns the record creation time in UTC. UTC keeps the
// serialized form textually sortable and strips the monotonic reading so
// reloaded records compare equal.
func (e *Engine) timestamp() time.Time {
	return e.now().UTC()
}
