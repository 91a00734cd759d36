package engine

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tebello-m/tenderledger/internal/journal"
	"github.com/tebello-m/tenderledger/internal/ledger"
	"github.com/tebello-m/tenderledger/internal/testutil"
)

// newTestEngine builds an engine over a fresh in-memory journal with a
// deterministic clock and sequential IDs.
func newTestEngine(t *testing.T) (*Engine, *journal.MemoryJournal) {
	t.Helper()
	j := journal.NewMemoryJournal()
	e, err := New(context.Background(), j,
		WithIDGenerator(NewSequenceGenerator("tx")),
		WithClock(testutil.DefaultClock().Now),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	require.NoError(t, err)
	return e, j
}

func TestNew_EmptyJournal(t *testing.T) {
	e, _ := newTestEngine(t)

	_, err := e.TenderSummary(context.Background(), "T-1")
	assert.Equal(t, CodeNotFound, CodeOf(err))
}

func TestIssueTokens(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()

	iss, err := e.IssueTokens(ctx, "T-1", "C-1", 10000, []string{"materials", "labor"})
	require.NoError(t, err)

	assert.Equal(t, "tx-000001", iss.ID)
	assert.Equal(t, "T-1", iss.TenderID)
	assert.Equal(t, "C-1", iss.ContractorID)
	assert.Equal(t, float64(10000), iss.TokensIssued)
	assert.Equal(t, float64(10000), iss.TokensRemaining)
	assert.Equal(t, []string{"materials", "labor"}, iss.ProjectScope)
	assert.Equal(t, ledger.StatusActive, iss.Status)
	assert.True(t, iss.Timestamp.Location() == iss.Timestamp.UTC().Location())
}

func TestIssueTokens_InvalidInput(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()

	_, err := e.IssueTokens(ctx, "T-1", "C-1", -500, []string{"materials"})
	assert.Equal(t, CodeInvalidInput, CodeOf(err))

	_, err = e.IssueTokens(ctx, "T-1", "C-1", 500, nil)
	assert.Equal(t, CodeInvalidInput, CodeOf(err))

	// A scope of blank labels normalizes to empty.
	_, err = e.IssueTokens(ctx, "T-1", "C-1", 500, []string{"", "  "})
	assert.Equal(t, CodeInvalidInput, CodeOf(err))
}

func TestIssueTokens_Conflict(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()

	_, err := e.IssueTokens(ctx, "T-1", "C-1", 1000, []string{"materials"})
	require.NoError(t, err)

	_, err = e.IssueTokens(ctx, "T-1", "C-1", 2000, []string{"labor"})
	assert.Equal(t, CodeIssuanceConflict, CodeOf(err))

	// A different contractor on the same tender is a distinct pair.
	_, err = e.IssueTokens(ctx, "T-1", "C-2", 2000, []string{"labor"})
	assert.NoError(t, err)
}

// Balance monotonicity: after each successful spend, remaining equals issued
// minus the running total, and never goes negative.
func TestSpendTokens_BalanceMonotonicity(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()

	iss, err := e.IssueTokens(ctx, "T-1", "C-1", 1000, []string{"materials"})
	require.NoError(t, err)

	var spent float64
	for _, amount := range []float64{400, 300, 200, 100} {
		_, err := e.SpendTokens(ctx, "T-1", "C-1", amount, "materials", "M1", "x")
		require.NoError(t, err)
		spent += amount
		assert.Equal(t, 1000-spent, iss.TokensRemaining)
		assert.GreaterOrEqual(t, iss.TokensRemaining, float64(0))
	}

	// Pool exhausted exactly; one more token is too many.
	_, err = e.SpendTokens(ctx, "T-1", "C-1", 1, "materials", "M1", "x")
	assert.Equal(t, CodeInsufficientBalance, CodeOf(err))
}

func TestSpendTokens_ScopeViolation(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()

	iss, err := e.IssueTokens(ctx, "T-1", "C-1", 1000, []string{"materials"})
	require.NoError(t, err)

	_, err = e.SpendTokens(ctx, "T-1", "C-1", 100, "travel", "M1", "x")
	assert.Equal(t, CodeScopeViolation, CodeOf(err))
	assert.Equal(t, float64(1000), iss.TokensRemaining, "failed spend must not touch the balance")
}

func TestSpendTokens_Overspend(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()

	iss, err := e.IssueTokens(ctx, "T-1", "C-1", 1000, []string{"materials"})
	require.NoError(t, err)

	_, err = e.SpendTokens(ctx, "T-1", "C-1", 1001, "materials", "M1", "x")
	assert.Equal(t, CodeInsufficientBalance, CodeOf(err))
	assert.Equal(t, float64(1000), iss.TokensRemaining)
}

func TestSpendTokens_NegativeAmount(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()

	_, err := e.IssueTokens(ctx, "T-1", "C-1", 1000, []string{"materials"})
	require.NoError(t, err)

	_, err = e.SpendTokens(ctx, "T-1", "C-1", -5, "materials", "M1", "x")
	assert.Equal(t, CodeInvalidInput, CodeOf(err))
}

func TestSpendTokens_NoActiveIssuance(t *testing.T) {
	e, _ := newTestEngine(t)

	_, err := e.SpendTokens(context.Background(), "T-9", "C-9", 10, "materials", "M1", "x")
	assert.Equal(t, CodeNotFound, CodeOf(err))
}

func TestSpendTokens_NormalizesCategory(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()

	// Scope issued with the composed form of "é".
	_, err := e.IssueTokens(ctx, "T-1", "C-1", 1000, []string{"développement"})
	require.NoError(t, err)

	// Spend arrives with the decomposed form.
	spend, err := e.SpendTokens(ctx, "T-1", "C-1", 100, "développement", "M1", "x")
	require.NoError(t, err)
	assert.Equal(t, "développement", spend.Category)
}

func TestVerifyMilestone(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()

	pass, err := e.VerifyMilestone(ctx, "T-1", "M1", 80)
	require.NoError(t, err)
	assert.True(t, pass.Passed, "score at the threshold passes")

	fail, err := e.VerifyMilestone(ctx, "T-1", "M2", 79.9)
	require.NoError(t, err)
	assert.False(t, fail.Passed)

	for _, score := range []float64{-1, 100.1, 101} {
		_, err := e.VerifyMilestone(ctx, "T-1", "M3", score)
		assert.Equal(t, CodeInvalidInput, CodeOf(err), "score %v", score)
	}
}

// A failed journal write leaves in-memory state exactly as it was before the
// call; retrying the whole operation then succeeds.
func TestPersistenceFailure_LeavesStateUnchanged(t *testing.T) {
	e, j := newTestEngine(t)
	ctx := context.Background()

	iss, err := e.IssueTokens(ctx, "T-1", "C-1", 1000, []string{"materials"})
	require.NoError(t, err)

	j.SaveErr = errors.New("disk full")
	_, err = e.SpendTokens(ctx, "T-1", "C-1", 400, "materials", "M1", "x")
	require.Error(t, err)
	assert.Equal(t, CodePersistence, CodeOf(err))
	assert.Equal(t, float64(1000), iss.TokensRemaining)

	sum, err := e.TenderSummary(ctx, "T-1")
	require.NoError(t, err)
	assert.Equal(t, float64(0), sum.TotalTokensSpent)
	require.Len(t, sum.Transactions, 1)

	// Retry succeeds and the balance moves once.
	_, err = e.SpendTokens(ctx, "T-1", "C-1", 400, "materials", "M1", "x")
	require.NoError(t, err)
	assert.Equal(t, float64(600), iss.TokensRemaining)
}

func TestPersistenceFailure_IssueRevertsIndex(t *testing.T) {
	e, j := newTestEngine(t)
	ctx := context.Background()

	j.SaveErr = errors.New("disk full")
	_, err := e.IssueTokens(ctx, "T-1", "C-1", 1000, []string{"materials"})
	assert.Equal(t, CodePersistence, CodeOf(err))

	// The reverted issuance must not block a retry with a conflict.
	_, err = e.IssueTokens(ctx, "T-1", "C-1", 1000, []string{"materials"})
	require.NoError(t, err)
}

// A second engine over the same journal reconstructs the full state,
// including the active-issuance index.
func TestNew_RestoresFromJournal(t *testing.T) {
	e1, j := newTestEngine(t)
	ctx := context.Background()

	_, err := e1.IssueTokens(ctx, "T-1", "C-1", 1000, []string{"materials"})
	require.NoError(t, err)
	_, err = e1.SpendTokens(ctx, "T-1", "C-1", 250, "materials", "M1", "x")
	require.NoError(t, err)

	e2, err := New(ctx, j,
		WithIDGenerator(NewFixedGenerator("tx-restored-1")),
		WithClock(testutil.DefaultClock().Now),
	)
	require.NoError(t, err)

	// The reloaded engine picks up where the first left off.
	spend, err := e2.SpendTokens(ctx, "T-1", "C-1", 750, "materials", "M2", "y")
	require.NoError(t, err)
	assert.Equal(t, "tx-restored-1", spend.ID)

	sum, err := e2.TenderSummary(ctx, "T-1")
	require.NoError(t, err)
	assert.Equal(t, float64(1000), sum.TotalTokensSpent)
	assert.Equal(t, float64(0), sum.TokensRemaining)
}

func TestNew_SettledIssuanceNotIndexed(t *testing.T) {
	e1, j := newTestEngine(t)
	ctx := context.Background()

	_, err := e1.IssueTokens(ctx, "T-1", "C-1", 1000, []string{"materials"})
	require.NoError(t, err)
	_, err = e1.ReturnTokensToTreasury(ctx, "T-1", "C-1")
	require.NoError(t, err)

	e2, err := New(ctx, j, WithIDGenerator(NewSequenceGenerator("r")))
	require.NoError(t, err)

	_, err = e2.SpendTokens(ctx, "T-1", "C-1", 1, "materials", "M1", "x")
	assert.Equal(t, CodeNotFound, CodeOf(err))
}

func TestNew_UnreadableJournal(t *testing.T) {
	_, err := New(context.Background(), &failingJournal{})
	require.Error(t, err)
	assert.Equal(t, CodePersistence, CodeOf(err))
}

type failingJournal struct{ journal.MemoryJournal }

func (f *failingJournal) Load(ctx context.Context) ([]ledger.Transaction, error) {
	return nil, errors.New("unreadable medium")
}
