package engine

import (
	"errors"
	"fmt"
)

// Code categorizes ledger operation failures. All are caller-recoverable;
// none is fatal to the process.
type Code string

const (
	// CodeNotFound means no active issuance matches the (tender, contractor)
	// pair, or the tender is unknown to a summary lookup.
	CodeNotFound Code = "NOT_FOUND"

	// CodeScopeViolation means the spending category is not in the
	// issuance's project scope.
	CodeScopeViolation Code = "SCOPE_VIOLATION"

	// CodeInsufficientBalance means the spend amount exceeds the remaining
	// token balance.
	CodeInsufficientBalance Code = "INSUFFICIENT_BALANCE"

	// CodeNoMilestones means redemption was attempted before any milestone
	// verification was recorded.
	CodeNoMilestones Code = "NO_MILESTONES"

	// CodeInvalidInput means a negative amount or value, an out-of-range
	// quality score, or an empty project scope.
	CodeInvalidInput Code = "INVALID_INPUT"

	// CodeIssuanceConflict means the (tender, contractor) pair already has
	// an active issuance.
	CodeIssuanceConflict Code = "ISSUANCE_CONFLICT"

	// CodePersistence means the durable log rejected the write. In-memory
	// state is unchanged from before the call; retrying the whole operation
	// is safe.
	CodePersistence Code = "PERSISTENCE"
)

// Error is a structured ledger operation failure.
type Error struct {
	Code         Code
	Message      string
	TenderID     string
	ContractorID string
	Err          error // underlying cause, if any
}

func (e *Error) Error() string {
	switch {
	case e.TenderID != "" && e.ContractorID != "":
		return fmt.Sprintf("%s: %s (tender=%s, contractor=%s)", e.Code, e.Message, e.TenderID, e.ContractorID)
	case e.TenderID != "":
		return fmt.Sprintf("%s: %s (tender=%s)", e.Code, e.Message, e.TenderID)
	default:
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// CodeOf extracts the ledger error code, or "" for foreign errors.
func CodeOf(err error) Code {
	var lerr *Error
	if errors.As(err, &lerr) {
		return lerr.Code
	}
	return ""
}

func opErr(code Code, tenderID, contractorID, format string, args ...any) *Error {
	return &Error{
		Code:         code,
		Message:      fmt.Sprintf(format, args...),
		TenderID:     tenderID,
		ContractorID: contractorID,
	}
}
