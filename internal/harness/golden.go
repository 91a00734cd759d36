package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"
)

// AssertGolden runs a scenario and compares its final journal against the
// golden file testdata/{scenario.Name}.golden.
//
// To regenerate golden files after an intentional format change, run:
//
//	go test ./internal/harness -update
func AssertGolden(t *testing.T, s *Scenario) {
	t.Helper()

	result, err := Run(s)
	if err != nil {
		t.Fatalf("scenario failed: %v", err)
	}

	g := goldie.New(t)
	g.Assert(t, result.Scenario.Name, result.Journal)
}
