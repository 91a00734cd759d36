package cli

import (
	"context"
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"

	"github.com/tebello-m/tenderledger/internal/engine"
)

// NewSummaryCommand creates the summary command.
func NewSummaryCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "summary <tender-id>",
		Short: "Show the aggregate position of a tender",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd, rootOpts, func(ctx context.Context, eng *engine.Engine, f *OutputFormatter) error {
				s, err := eng.TenderSummary(ctx, args[0])
				if err != nil {
					return rejected(f, err)
				}
				return f.Success(s, func(w io.Writer) {
					fmt.Fprintf(w, "Tender %s (contractor %s)\n", s.TenderID, s.ContractorID)
					fmt.Fprintf(w, "  issued:     %.2f\n", s.TotalTokensIssued)
					fmt.Fprintf(w, "  spent:      %.2f\n", s.TotalTokensSpent)
					fmt.Fprintf(w, "  remaining:  %.2f\n", s.TokensRemaining)
					fmt.Fprintf(w, "  status:     %s\n", s.Status)
					fmt.Fprintf(w, "  milestones: %d (average quality %.1f)\n", s.MilestonesCompleted, s.AverageQualityScore)
					fmt.Fprintf(w, "  outcome:    %s\n", s.FinalOutcome)
					fmt.Fprintf(w, "  records:    %d\n", len(s.Transactions))
				})
			})
		},
	}

	return cmd
}

// NewCategoriesCommand creates the categories command.
func NewCategoriesCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "categories <tender-id>",
		Short: "Show spending totals per category for a tender",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd, rootOpts, func(ctx context.Context, eng *engine.Engine, f *OutputFormatter) error {
				totals, err := eng.SpendingByCategory(ctx, args[0])
				if err != nil {
					return rejected(f, err)
				}
				return f.Success(totals, func(w io.Writer) {
					if len(totals) == 0 {
						fmt.Fprintf(w, "No spending recorded for tender %s\n", args[0])
						return
					}
					names := make([]string, 0, len(totals))
					for name := range totals {
						names = append(names, name)
					}
					sort.Strings(names)
					for _, name := range names {
						fmt.Fprintf(w, "%-20s %12.2f\n", name, totals[name])
					}
				})
			})
		},
	}

	return cmd
}
