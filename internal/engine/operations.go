package engine

import (
	"context"

	"github.com/tebello-m/tenderledger/internal/ledger"
)

// IssueTokens grants a contractor a token pool for a tender.
//
// Fails with INVALID_INPUT for a negative value or an empty project scope,
// and with ISSUANCE_CONFLICT if the pair already has an active issuance.
func (e *Engine) IssueTokens(ctx context.Context, tenderID, contractorID string, totalValue float64, projectScope []string) (*ledger.Issuance, error) {
	if totalValue < 0 {
		return nil, opErr(CodeInvalidInput, tenderID, contractorID,
			"total value must be non-negative, got %v", totalValue)
	}
	scope := ledger.NormalizeScope(projectScope)
	if len(scope) == 0 {
		return nil, opErr(CodeInvalidInput, tenderID, contractorID,
			"project scope must contain at least one category")
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	key := issuanceKey{tenderID, contractorID}
	if _, exists := e.active[key]; exists {
		return nil, opErr(CodeIssuanceConflict, tenderID, contractorID,
			"an active token issuance already exists for tender %s", tenderID)
	}

	iss := &ledger.Issuance{
		ID:              e.ids.Generate(),
		TenderID:        tenderID,
		ContractorID:    contractorID,
		TokensIssued:    totalValue,
		TokensRemaining: totalValue,
		ProjectScope:    scope,
		Timestamp:       e.timestamp(),
		Status:          ledger.StatusActive,
	}
	e.txs = append(e.txs, iss)
	e.active[key] = len(e.txs) - 1

	if err := e.persist(ctx); err != nil {
		e.txs = e.txs[:len(e.txs)-1]
		delete(e.active, key)
		return nil, err
	}

	e.logger.Info("tokens issued",
		"tender", tenderID, "contractor", contractorID,
		"value", totalValue, "scope", scope, "id", iss.ID)
	return iss, nil
}

// SpendTokens debits tokens from the pair's active issuance.
//
// Fails with NOT_FOUND when no active issuance exists, SCOPE_VIOLATION when
// the category is outside the project scope, INSUFFICIENT_BALANCE when the
// amount exceeds the remaining balance, and INVALID_INPUT for a negative
// amount. On success the issuance balance is decremented in place and a
// spending record appended.
func (e *Engine) SpendTokens(ctx context.Context, tenderID, contractorID string, amount float64, category, milestone, description string) (*ledger.Spending, error) {
	if amount < 0 {
		return nil, opErr(CodeInvalidInput, tenderID, contractorID,
			"amount must be non-negative, got %v", amount)
	}
	category = ledger.NormalizeCategory(category)

	e.mu.Lock()
	defer e.mu.Unlock()

	iss, err := e.findActive(tenderID, contractorID)
	if err != nil {
		return nil, err
	}
	if !iss.InScope(category) {
		return nil, opErr(CodeScopeViolation, tenderID, contractorID,
			"category %q not in project scope %v", category, iss.ProjectScope)
	}
	if amount > iss.TokensRemaining {
		return nil, opErr(CodeInsufficientBalance, tenderID, contractorID,
			"insufficient tokens: available %v, requested %v", iss.TokensRemaining, amount)
	}

	spend := &ledger.Spending{
		ID:           e.ids.Generate(),
		TenderID:     tenderID,
		ContractorID: contractorID,
		Amount:       amount,
		Category:     category,
		Milestone:    milestone,
		Description:  description,
		Timestamp:    e.timestamp(),
	}
	prevRemaining := iss.TokensRemaining
	iss.TokensRemaining -= amount
	e.txs = append(e.txs, spend)

	if err := e.persist(ctx); err != nil {
		e.txs = e.txs[:len(e.txs)-1]
		iss.TokensRemaining = prevRemaining
		return nil, err
	}

	e.logger.Info("tokens spent",
		"tender", tenderID, "contractor", contractorID,
		"amount", amount, "category", category, "milestone", milestone,
		"remaining", iss.TokensRemaining, "id", spend.ID)
	return spend, nil
}

// VerifyMilestone records a quality inspection for a milestone. A pure
// append: the token balance is unaffected. The milestone name is not
// cross-checked against spending records: inspectors may verify work that
// was never billed.
//
// Fails with INVALID_INPUT when the score is outside [0, 100].
func (e *Engine) VerifyMilestone(ctx context.Context, tenderID, milestone string, qualityScore float64) (*ledger.MilestoneVerification, error) {
	if qualityScore < 0 || qualityScore > 100 {
		return nil, opErr(CodeInvalidInput, tenderID, "",
			"quality score must be in [0, 100], got %v", qualityScore)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	ver := &ledger.MilestoneVerification{
		ID:           e.ids.Generate(),
		TenderID:     tenderID,
		Milestone:    milestone,
		QualityScore: qualityScore,
		Passed:       qualityScore >= ledger.PassingScore,
		Timestamp:    e.timestamp(),
	}
	e.txs = append(e.txs, ver)

	if err := e.persist(ctx); err != nil {
		e.txs = e.txs[:len(e.txs)-1]
		return nil, err
	}

	e.logger.Info("milestone verified",
		"tender", tenderID, "milestone", milestone,
		"score", qualityScore, "passed", ver.Passed, "id", ver.ID)
	return ver, nil
}

// RedeemTokens settles the pair's active issuance.
//
// Requires at least one milestone verification (NO_MILESTONES otherwise).
// If every verification passed, the remaining balance converts to cash with
// a quality bonus and the issuance becomes REDEEMED; the returned transaction
// is a *ledger.Redemption. If any verification failed, the settlement
// degrades to a treasury return (a branch, not an error) and the returned
// transaction is a *ledger.Return.
func (e *Engine) RedeemTokens(ctx context.Context, tenderID, contractorID string) (ledger.Transaction, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	iss, err := e.findActive(tenderID, contractorID)
	if err != nil {
		return nil, err
	}

	var (
		count    int
		sum      float64
		anyFatal bool
	)
	for _, tx := range e.txs {
		ver, ok := tx.(*ledger.MilestoneVerification)
		if !ok || ver.TenderID != tenderID {
			continue
		}
		count++
		sum += ver.QualityScore
		if !ver.Passed {
			anyFatal = true
		}
	}
	if count == 0 {
		return nil, opErr(CodeNoMilestones, tenderID, contractorID,
			"no milestones verified yet")
	}
	if anyFatal {
		return e.settleReturn(ctx, iss)
	}

	avg := sum / float64(count)
	bonus := ledger.BonusMultiplier(avg)
	remaining := iss.TokensRemaining

	red := &ledger.Redemption{
		ID:                  e.ids.Generate(),
		TenderID:            tenderID,
		ContractorID:        contractorID,
		TokensRedeemed:      remaining,
		CashValue:           remaining * bonus,
		BonusMultiplier:     bonus,
		AverageQualityScore: avg,
		Timestamp:           e.timestamp(),
	}
	iss.Status = ledger.StatusRedeemed
	iss.TokensRemaining = 0
	e.txs = append(e.txs, red)
	delete(e.active, issuanceKey{tenderID, contractorID})

	if err := e.persist(ctx); err != nil {
		e.txs = e.txs[:len(e.txs)-1]
		iss.Status = ledger.StatusActive
		iss.TokensRemaining = remaining
		e.rebuildIndex()
		return nil, err
	}

	e.logger.Info("tokens redeemed",
		"tender", tenderID, "contractor", contractorID,
		"redeemed", remaining, "cash", red.CashValue,
		"bonus", bonus, "avg_score", avg, "id", red.ID)
	return red, nil
}

// ReturnTokensToTreasury forces the pair's remaining tokens back to the
// treasury: the penalty settlement. Callable directly (administrative forced
// return) or reached through RedeemTokens when quality gates failed.
func (e *Engine) ReturnTokensToTreasury(ctx context.Context, tenderID, contractorID string) (*ledger.Return, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	iss, err := e.findActive(tenderID, contractorID)
	if err != nil {
		return nil, err
	}
	return e.settleReturn(ctx, iss)
}

// settleReturn records the penalty return for an active issuance.
// Caller must hold the writer lock.
func (e *Engine) settleReturn(ctx context.Context, iss *ledger.Issuance) (*ledger.Return, error) {
	remaining := iss.TokensRemaining
	ret := &ledger.Return{
		ID:             e.ids.Generate(),
		TenderID:       iss.TenderID,
		ContractorID:   iss.ContractorID,
		TokensReturned: remaining,
		Reason:         "Quality standards not met",
		Timestamp:      e.timestamp(),
	}
	iss.Status = ledger.StatusReturned
	iss.TokensRemaining = 0
	e.txs = append(e.txs, ret)
	delete(e.active, issuanceKey{iss.TenderID, iss.ContractorID})

	if err := e.persist(ctx); err != nil {
		e.txs = e.txs[:len(e.txs)-1]
		iss.Status = ledger.StatusActive
		iss.TokensRemaining = remaining
		e.rebuildIndex()
		return nil, err
	}

	e.logger.Info("tokens returned to treasury",
		"tender", iss.TenderID, "contractor", iss.ContractorID,
		"returned", remaining, "id", ret.ID)
	return ret, nil
}
