// Package harness executes conformance scenarios against the real ledger
// engine.
//
// Each scenario runs on a fresh engine over an in-memory journal, with a
// deterministic clock and sequential transaction IDs, so repeated runs
// produce byte-identical journals. Golden scenarios snapshot the final
// journal and compare it against a recorded fixture.
package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/tebello-m/tenderledger/internal/engine"
	"github.com/tebello-m/tenderledger/internal/journal"
	"github.com/tebello-m/tenderledger/internal/ledger"
	"github.com/tebello-m/tenderledger/internal/testutil"
)

// Result captures a scenario execution.
type Result struct {
	Scenario *Scenario

	// Journal is the final serialized transaction sequence, exactly as the
	// durable log stores it.
	Journal []byte

	// Steps counts executed steps (all of them, on success).
	Steps int
}

// Run executes a scenario and validates every step expectation. The first
// mismatch aborts the run with an error naming the step.
func Run(s *Scenario) (*Result, error) {
	ctx := context.Background()
	j := journal.NewMemoryJournal()

	eng, err := engine.New(ctx, j,
		engine.WithIDGenerator(engine.NewSequenceGenerator("tx")),
		engine.WithClock(testutil.DefaultClock().Now),
		engine.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", s.Name, err)
	}

	for i, step := range s.Steps {
		if err := runStep(ctx, eng, step); err != nil {
			return nil, fmt.Errorf("scenario %s: step %d (%s): %w", s.Name, i+1, step.Op, err)
		}
	}

	return &Result{Scenario: s, Journal: j.Bytes(), Steps: len(s.Steps)}, nil
}

func runStep(ctx context.Context, eng *engine.Engine, step Step) error {
	if step.Op == "summary" {
		return runSummaryStep(ctx, eng, step)
	}

	var (
		tx  ledger.Transaction
		err error
	)
	switch step.Op {
	case "issue":
		tx, err = asTx(eng.IssueTokens(ctx, step.Tender, step.Contractor, step.Value, step.Scope))
	case "spend":
		tx, err = asTx(eng.SpendTokens(ctx, step.Tender, step.Contractor, step.Amount, step.Category, step.Milestone, step.Description))
	case "verify":
		tx, err = asTx(eng.VerifyMilestone(ctx, step.Tender, step.Milestone, step.Score))
	case "redeem":
		tx, err = eng.RedeemTokens(ctx, step.Tender, step.Contractor)
	case "return":
		tx, err = asTx(eng.ReturnTokensToTreasury(ctx, step.Tender, step.Contractor))
	default:
		return fmt.Errorf("unknown op %q", step.Op)
	}

	want := step.Expect
	if want == nil || want.Error == "" {
		if err != nil {
			return fmt.Errorf("unexpected failure: %w", err)
		}
	} else {
		if err == nil {
			return fmt.Errorf("expected error %s, got success", want.Error)
		}
		if got := string(engine.CodeOf(err)); got != want.Error {
			return fmt.Errorf("expected error %s, got %s (%v)", want.Error, got, err)
		}
		return nil
	}

	if want != nil && want.Kind != "" && string(tx.Kind()) != want.Kind {
		return fmt.Errorf("expected record kind %s, got %s", want.Kind, tx.Kind())
	}
	return nil
}

func runSummaryStep(ctx context.Context, eng *engine.Engine, step Step) error {
	sum, err := eng.TenderSummary(ctx, step.Tender)

	want := step.Expect
	if want != nil && want.Error != "" {
		if err == nil {
			return fmt.Errorf("expected error %s, got success", want.Error)
		}
		if got := string(engine.CodeOf(err)); got != want.Error {
			return fmt.Errorf("expected error %s, got %s (%v)", want.Error, got, err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("unexpected failure: %w", err)
	}
	if want == nil {
		return nil
	}

	if want.Remaining != nil && sum.TokensRemaining != *want.Remaining {
		return fmt.Errorf("expected remaining %v, got %v", *want.Remaining, sum.TokensRemaining)
	}
	if want.TotalSpent != nil && sum.TotalTokensSpent != *want.TotalSpent {
		return fmt.Errorf("expected total spent %v, got %v", *want.TotalSpent, sum.TotalTokensSpent)
	}
	if want.Status != "" && string(sum.Status) != want.Status {
		return fmt.Errorf("expected status %s, got %s", want.Status, sum.Status)
	}
	if want.Outcome != "" && sum.FinalOutcome != want.Outcome {
		return fmt.Errorf("expected outcome %s, got %s", want.Outcome, sum.FinalOutcome)
	}
	return nil
}

// asTx narrows a concrete record + error pair to the Transaction interface
// without turning a nil pointer into a non-nil interface.
func asTx[T ledger.Transaction](rec T, err error) (ledger.Transaction, error) {
	if err != nil {
		return nil, err
	}
	return rec, nil
}
