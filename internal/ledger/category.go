package ledger

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Category labels are caller-supplied text. Scope membership is a string
// comparison, so labels are NFC-normalized and trimmed at the boundary:
// a decomposed "é" in a spend request must match the composed form the
// issuance was scoped with.

// NormalizeCategory returns the canonical form of a single category label.
func NormalizeCategory(category string) string {
	return norm.NFC.String(strings.TrimSpace(category))
}

// NormalizeScope canonicalizes every label in a project scope, dropping
// empties and duplicates while preserving first-occurrence order.
func NormalizeScope(scope []string) []string {
	out := make([]string, 0, len(scope))
	seen := make(map[string]bool, len(scope))
	for _, c := range scope {
		n := NormalizeCategory(c)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}
