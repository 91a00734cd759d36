package ledger

import "time"

// Kind is the wire discriminant identifying a transaction variant.
type Kind string

// The five transaction kinds. The set is closed: the envelope codec rejects
// anything else, and folds over the ledger switch exhaustively.
const (
	KindIssuance     Kind = "TOKEN_ISSUANCE"
	KindSpending     Kind = "TOKEN_SPENDING"
	KindVerification Kind = "MILESTONE_VERIFICATION"
	KindRedemption   Kind = "TOKEN_REDEMPTION"
	KindReturn       Kind = "TOKENS_RETURNED"
)

// IssuanceStatus is the lifecycle state of an issuance.
type IssuanceStatus string

const (
	// StatusActive means tokens may still be spent against the issuance.
	StatusActive IssuanceStatus = "ACTIVE"
	// StatusRedeemed is terminal: remaining tokens were cashed out with bonus.
	StatusRedeemed IssuanceStatus = "REDEEMED"
	// StatusReturned is terminal: remaining tokens went back to treasury.
	StatusReturned IssuanceStatus = "RETURNED"
)

// Terminal reports whether the status is absorbing (no further transitions).
func (s IssuanceStatus) Terminal() bool {
	return s == StatusRedeemed || s == StatusReturned
}

// Settlement policy constants.
const (
	// PassingScore is the quality threshold for a milestone to pass.
	PassingScore = 80.0
	// MaxBonusMultiplier caps the redemption bonus at +20%.
	MaxBonusMultiplier = 1.2
	// BonusRampDivisor sets the slope of the linear bonus ramp: one
	// multiplier point per hundred score points above PassingScore.
	BonusRampDivisor = 100.0
)

// BonusMultiplier computes the redemption bonus for an average quality score:
// a linear ramp from 1.0 at PassingScore to MaxBonusMultiplier at score 100.
func BonusMultiplier(avgScore float64) float64 {
	m := 1 + (avgScore-PassingScore)/BonusRampDivisor
	if m > MaxBonusMultiplier {
		return MaxBonusMultiplier
	}
	return m
}

// Transaction is the closed sum over the five ledger record kinds.
//
// Implementations are *Issuance, *Spending, *MilestoneVerification,
// *Redemption and *Return; the unexported marker method seals the set.
type Transaction interface {
	// Kind returns the wire discriminant for this record.
	Kind() Kind
	// TransactionID returns the globally unique record identifier.
	TransactionID() string
	// Tender returns the tender this record belongs to.
	Tender() string
	// When returns the record creation time.
	When() time.Time

	transaction()
}

// Issuance grants a contractor a token pool for a tender. It is the only
// record mutated after creation: TokensRemaining decreases as tokens are
// spent, and Status flips once at settlement.
type Issuance struct {
	ID              string         `json:"transaction_id"`
	TenderID        string         `json:"tender_id"`
	ContractorID    string         `json:"contractor_id"`
	TokensIssued    float64        `json:"tokens_issued"`
	TokensRemaining float64        `json:"tokens_remaining"`
	ProjectScope    []string       `json:"project_scope"`
	Timestamp       time.Time      `json:"timestamp"`
	Status          IssuanceStatus `json:"status"`
}

func (i *Issuance) Kind() Kind            { return KindIssuance }
func (i *Issuance) TransactionID() string { return i.ID }
func (i *Issuance) Tender() string        { return i.TenderID }
func (i *Issuance) When() time.Time       { return i.Timestamp }
func (i *Issuance) transaction()          {}

// InScope reports whether the (already normalized) category belongs to the
// issuance's project scope.
func (i *Issuance) InScope(category string) bool {
	for _, c := range i.ProjectScope {
		if c == category {
			return true
		}
	}
	return false
}

// Spending debits tokens from an active issuance for work on a milestone.
type Spending struct {
	ID           string    `json:"transaction_id"`
	TenderID     string    `json:"tender_id"`
	ContractorID string    `json:"contractor_id"`
	Amount       float64   `json:"amount"`
	Category     string    `json:"category"`
	Milestone    string    `json:"milestone"`
	Description  string    `json:"description"`
	Timestamp    time.Time `json:"timestamp"`
}

func (s *Spending) Kind() Kind            { return KindSpending }
func (s *Spending) TransactionID() string { return s.ID }
func (s *Spending) Tender() string        { return s.TenderID }
func (s *Spending) When() time.Time       { return s.Timestamp }
func (s *Spending) transaction()          {}

// MilestoneVerification records a quality inspection of a milestone.
type MilestoneVerification struct {
	ID           string    `json:"transaction_id"`
	TenderID     string    `json:"tender_id"`
	Milestone    string    `json:"milestone"`
	QualityScore float64   `json:"quality_score"`
	Passed       bool      `json:"passed"`
	Timestamp    time.Time `json:"timestamp"`
}

func (v *MilestoneVerification) Kind() Kind            { return KindVerification }
func (v *MilestoneVerification) TransactionID() string { return v.ID }
func (v *MilestoneVerification) Tender() string        { return v.TenderID }
func (v *MilestoneVerification) When() time.Time       { return v.Timestamp }
func (v *MilestoneVerification) transaction()          {}

// Redemption is the terminal bonus settlement: remaining tokens converted to
// cash with a quality-based multiplier.
type Redemption struct {
	ID                  string    `json:"transaction_id"`
	TenderID            string    `json:"tender_id"`
	ContractorID        string    `json:"contractor_id"`
	TokensRedeemed      float64   `json:"tokens_redeemed"`
	CashValue           float64   `json:"cash_value"`
	BonusMultiplier     float64   `json:"bonus_multiplier"`
	AverageQualityScore float64   `json:"average_quality_score"`
	Timestamp           time.Time `json:"timestamp"`
}

func (r *Redemption) Kind() Kind            { return KindRedemption }
func (r *Redemption) TransactionID() string { return r.ID }
func (r *Redemption) Tender() string        { return r.TenderID }
func (r *Redemption) When() time.Time       { return r.Timestamp }
func (r *Redemption) transaction()          {}

// Return is the terminal penalty settlement: remaining tokens go back to the
// treasury.
type Return struct {
	ID             string    `json:"transaction_id"`
	TenderID       string    `json:"tender_id"`
	ContractorID   string    `json:"contractor_id"`
	TokensReturned float64   `json:"tokens_returned"`
	Reason         string    `json:"reason"`
	Timestamp      time.Time `json:"timestamp"`
}

func (r *Return) Kind() Kind            { return KindReturn }
func (r *Return) TransactionID() string { return r.ID }
func (r *Return) Tender() string        { return r.TenderID }
func (r *Return) When() time.Time       { return r.Timestamp }
func (r *Return) transaction()          {}
