package engine

import (
	"context"

	"github.com/tebello-m/tenderledger/internal/ledger"
)

// OutcomeInProgress is the Summary outcome for a tender with no terminal
// settlement yet. The other outcomes are the terminal record kinds.
const OutcomeInProgress = "IN_PROGRESS"

// Summary is the derived per-tender view: a fold over the tender's
// transactions. It carries the shared transaction records; callers must
// treat them as read-only.
type Summary struct {
	TenderID            string                `json:"tender_id"`
	ContractorID        string                `json:"contractor_id"`
	TotalTokensIssued   float64               `json:"total_tokens_issued"`
	TotalTokensSpent    float64               `json:"total_tokens_spent"`
	TokensRemaining     float64               `json:"tokens_remaining"`
	Status              ledger.IssuanceStatus `json:"status"`
	MilestonesCompleted int                   `json:"milestones_completed"`
	AverageQualityScore float64               `json:"average_quality_score"`
	FinalOutcome        string                `json:"final_outcome"`
	Transactions        []ledger.Transaction  `json:"transactions"`
}

// TenderSummary folds over all of a tender's transactions. Pure read.
// Fails with NOT_FOUND when the tender has no issuance.
func (e *Engine) TenderSummary(ctx context.Context, tenderID string) (*Summary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	e.mu.RLock()
	defer e.mu.RUnlock()

	s := &Summary{
		TenderID:     tenderID,
		FinalOutcome: OutcomeInProgress,
	}
	var (
		issuance   *ledger.Issuance
		scoreCount int
		scoreSum   float64
	)
	for _, tx := range e.txs {
		if tx.Tender() != tenderID {
			continue
		}
		s.Transactions = append(s.Transactions, tx)

		switch rec := tx.(type) {
		case *ledger.Issuance:
			if issuance == nil {
				issuance = rec
			}
		case *ledger.Spending:
			s.TotalTokensSpent += rec.Amount
		case *ledger.MilestoneVerification:
			scoreCount++
			scoreSum += rec.QualityScore
		case *ledger.Redemption:
			if s.FinalOutcome == OutcomeInProgress {
				s.FinalOutcome = string(rec.Kind())
			}
		case *ledger.Return:
			if s.FinalOutcome == OutcomeInProgress {
				s.FinalOutcome = string(rec.Kind())
			}
		}
	}
	if issuance == nil {
		return nil, opErr(CodeNotFound, tenderID, "", "tender not found")
	}

	s.ContractorID = issuance.ContractorID
	s.TotalTokensIssued = issuance.TokensIssued
	s.TokensRemaining = issuance.TokensRemaining
	s.Status = issuance.Status
	s.MilestonesCompleted = scoreCount
	if scoreCount > 0 {
		s.AverageQualityScore = scoreSum / float64(scoreCount)
	}
	return s, nil
}

// SpendingByCategory folds the tender's spending records into per-category
// totals. Pure read; a tender with no spendings yields an empty map.
func (e *Engine) SpendingByCategory(ctx context.Context, tenderID string) (map[string]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	e.mu.RLock()
	defer e.mu.RUnlock()

	totals := make(map[string]float64)
	for _, tx := range e.txs {
		spend, ok := tx.(*ledger.Spending)
		if !ok || spend.TenderID != tenderID {
			continue
		}
		totals[spend.Category] += spend.Amount
	}
	return totals, nil
}
