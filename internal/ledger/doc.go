// Package ledger defines the transaction record types for the tender token
// ledger.
//
// This package contains type definitions and their wire codec only. All other
// internal packages import ledger; ledger imports nothing internal. This keeps
// the record types the foundational layer with no circular dependencies.
//
// Key design constraints:
//   - Transaction is a closed sum over exactly five record kinds; code that
//     filters or folds the ledger must switch exhaustively over them
//   - Only Issuance is mutable after creation (TokensRemaining, Status),
//     and only the engine mutates it
//   - All JSON tags use snake_case; the "type" discriminant identifies the
//     record kind on the wire
//   - Timestamps serialize as RFC 3339 UTC (textually sortable)
package ledger
