package journal

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tebello-m/tenderledger/internal/ledger"
)

func testSequence() []ledger.Transaction {
	t0 := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	return []ledger.Transaction{
		&ledger.Issuance{
			ID:              "tx-000001",
			TenderID:        "T-1",
			ContractorID:    "C-1",
			TokensIssued:    10000,
			TokensRemaining: 7000,
			ProjectScope:    []string{"materials", "labor"},
			Timestamp:       t0,
			Status:          ledger.StatusActive,
		},
		&ledger.Spending{
			ID:           "tx-000002",
			TenderID:     "T-1",
			ContractorID: "C-1",
			Amount:       3000,
			Category:     "materials",
			Milestone:    "M1",
			Description:  "Cement delivery",
			Timestamp:    t0.Add(time.Minute),
		},
		&ledger.MilestoneVerification{
			ID:           "tx-000003",
			TenderID:     "T-1",
			Milestone:    "M1",
			QualityScore: 92.5,
			Passed:       true,
			Timestamp:    t0.Add(2 * time.Minute),
		},
	}
}

// Every implementation must satisfy the same contract: load-empty before any
// save, then faithful wholesale round-trips.
func TestJournalContract(t *testing.T) {
	impls := []struct {
		name string
		open func(t *testing.T) Journal
	}{
		{"file", func(t *testing.T) Journal {
			return NewFileJournal(filepath.Join(t.TempDir(), "transactions.json"))
		}},
		{"sqlite", func(t *testing.T) Journal {
			j, err := OpenSQLite(filepath.Join(t.TempDir(), "transactions.db"))
			require.NoError(t, err)
			t.Cleanup(func() { j.Close() })
			return j
		}},
		{"memory", func(t *testing.T) Journal {
			return NewMemoryJournal()
		}},
	}

	for _, impl := range impls {
		t.Run(impl.name+"/absent resource yields empty sequence", func(t *testing.T) {
			j := impl.open(t)
			txs, err := j.Load(context.Background())
			require.NoError(t, err)
			assert.Empty(t, txs)
		})

		t.Run(impl.name+"/round trip preserves order and values", func(t *testing.T) {
			j := impl.open(t)
			ctx := context.Background()
			want := testSequence()

			require.NoError(t, j.Save(ctx, want))
			got, err := j.Load(ctx)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})

		t.Run(impl.name+"/save replaces wholesale", func(t *testing.T) {
			j := impl.open(t)
			ctx := context.Background()
			seq := testSequence()

			require.NoError(t, j.Save(ctx, seq))
			require.NoError(t, j.Save(ctx, seq[:1]))

			got, err := j.Load(ctx)
			require.NoError(t, err)
			require.Len(t, got, 1)
			assert.Equal(t, "tx-000001", got[0].TransactionID())
		})
	}
}

func TestFileJournal_WritesRenamedFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "transactions.json")
	j := NewFileJournal(path)

	require.NoError(t, j.Save(context.Background(), testSequence()))

	// Only the destination file remains; no temp litter.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "transactions.json", entries[0].Name())
}

func TestFileJournal_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "transactions.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := NewFileJournal(path).Load(context.Background())
	require.Error(t, err)
}

func TestFileJournal_MissingDirectory(t *testing.T) {
	j := NewFileJournal("/nonexistent/dir/transactions.json")
	err := j.Save(context.Background(), testSequence())
	require.Error(t, err)
}

func TestOpenSQLite_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "transactions.db")

	for i := 0; i < 3; i++ {
		j, err := OpenSQLite(path)
		require.NoError(t, err, "open iteration %d", i)
		require.NoError(t, j.Close())
	}
}

func TestSQLiteJournal_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "transactions.db")
	ctx := context.Background()

	j1, err := OpenSQLite(path)
	require.NoError(t, err)
	require.NoError(t, j1.Save(ctx, testSequence()))
	require.NoError(t, j1.Close())

	j2, err := OpenSQLite(path)
	require.NoError(t, err)
	defer j2.Close()

	got, err := j2.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, testSequence(), got)
}

func TestMemoryJournal_SaveErr(t *testing.T) {
	j := NewMemoryJournal()
	ctx := context.Background()
	boom := errors.New("disk full")

	require.NoError(t, j.Save(ctx, testSequence()))
	j.SaveErr = boom

	err := j.Save(ctx, nil)
	require.ErrorIs(t, err, boom)

	// The failed save must not clobber the previous contents.
	got, err := j.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, got, 3)

	// The injected error is one-shot.
	require.NoError(t, j.Save(ctx, nil))
}
