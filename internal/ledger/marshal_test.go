package ledger

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleSequence() []Transaction {
	t0 := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	return []Transaction{
		&Issuance{
			ID:              "tx-000001",
			TenderID:        "T-2024-001",
			ContractorID:    "C-042",
			TokensIssued:    10000,
			TokensRemaining: 5000,
			ProjectScope:    []string{"materials", "labor"},
			Timestamp:       t0,
			Status:          StatusActive,
		},
		&Spending{
			ID:           "tx-000002",
			TenderID:     "T-2024-001",
			ContractorID: "C-042",
			Amount:       3000,
			Category:     "materials",
			Milestone:    "M1",
			Description:  "Cement and rebar",
			Timestamp:    t0.Add(time.Minute),
		},
		&MilestoneVerification{
			ID:           "tx-000003",
			TenderID:     "T-2024-001",
			Milestone:    "M1",
			QualityScore: 85,
			Passed:       true,
			Timestamp:    t0.Add(2 * time.Minute),
		},
		&Redemption{
			ID:                  "tx-000004",
			TenderID:            "T-2024-001",
			ContractorID:        "C-042",
			TokensRedeemed:      5000,
			CashValue:           5250,
			BonusMultiplier:     1.05,
			AverageQualityScore: 85,
			Timestamp:           t0.Add(3 * time.Minute),
		},
		&Return{
			ID:             "tx-000005",
			TenderID:       "T-2024-002",
			ContractorID:   "C-043",
			TokensReturned: 800,
			Reason:         "Quality standards not met",
			Timestamp:      t0.Add(4 * time.Minute),
		},
	}
}

// Round-trip: serializing the full sequence and reloading reproduces an
// identical sequence: same order, same variants, same field values.
func TestMarshalTransactions_RoundTrip(t *testing.T) {
	want := sampleSequence()

	data, err := MarshalTransactions(want)
	require.NoError(t, err)

	got, err := UnmarshalTransactions(data)
	require.NoError(t, err)
	require.Len(t, got, len(want))

	for i := range want {
		assert.Equal(t, want[i].Kind(), got[i].Kind(), "variant %d", i)
		assert.Equal(t, want[i], got[i], "record %d", i)
	}
}

func TestMarshalTransactions_EmptyAndNil(t *testing.T) {
	for _, txs := range [][]Transaction{nil, {}} {
		data, err := MarshalTransactions(txs)
		require.NoError(t, err)
		assert.Equal(t, "[]\n", string(data))

		got, err := UnmarshalTransactions(data)
		require.NoError(t, err)
		assert.Empty(t, got)
	}
}

func TestMarshalTransactions_DiscriminantFirst(t *testing.T) {
	data, err := MarshalTransactions(sampleSequence()[:1])
	require.NoError(t, err)

	// The discriminant leads each object so the log stays skimmable.
	assert.Contains(t, string(data), "{\n    \"type\": \"TOKEN_ISSUANCE\"")
}

func TestUnmarshalTransactions_UnknownKind(t *testing.T) {
	_, err := UnmarshalTransactions([]byte(`[{"type":"TOKEN_AIRDROP","transaction_id":"x"}]`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TOKEN_AIRDROP")
}

func TestUnmarshalTransactions_NotAnArray(t *testing.T) {
	_, err := UnmarshalTransactions([]byte(`{"type":"TOKEN_ISSUANCE"}`))
	require.Error(t, err)
}

// Floating-point values must survive the trip without precision loss.
func TestMarshalTransactions_FloatPrecision(t *testing.T) {
	in := []Transaction{&Redemption{
		ID:                  "tx-1",
		TenderID:            "T-1",
		ContractorID:        "C-1",
		TokensRedeemed:      1234.56,
		CashValue:           1234.56 * 1.15,
		BonusMultiplier:     1.15,
		AverageQualityScore: 95.5,
		Timestamp:           time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC),
	}}

	data, err := MarshalTransactions(in)
	require.NoError(t, err)
	out, err := UnmarshalTransactions(data)
	require.NoError(t, err)

	got := out[0].(*Redemption)
	assert.Equal(t, 1234.56*1.15, got.CashValue)
	assert.Equal(t, 1.15, got.BonusMultiplier)
}

// Timestamps serialize as RFC 3339, which sorts textually for UTC times.
func TestMarshalTransactions_SortableTimestamps(t *testing.T) {
	data, err := MarshalTransactions(sampleSequence())
	require.NoError(t, err)

	var objs []map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &objs))

	prev := ""
	for _, obj := range objs[:4] { // same-tender records, issued in order
		var ts string
		require.NoError(t, json.Unmarshal(obj["timestamp"], &ts))
		assert.True(t, strings.HasSuffix(ts, "Z"), "timestamp %q not UTC", ts)
		assert.True(t, prev < ts, "timestamps not textually increasing: %q then %q", prev, ts)
		prev = ts
	}
}
