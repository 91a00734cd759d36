package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/tebello-m/tenderledger/internal/engine"
)

// NewSpendCommand creates the spend command.
func NewSpendCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		category    string
		milestone   string
		description string
	)

	cmd := &cobra.Command{
		Use:   "spend <tender-id> <contractor-id> <amount>",
		Short: "Spend tokens from an active issuance",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := strconv.ParseFloat(args[2], 64)
			if err != nil {
				return WrapExitError(ExitCommandError, fmt.Sprintf("invalid amount %q", args[2]), err)
			}
			return withEngine(cmd, rootOpts, func(ctx context.Context, eng *engine.Engine, f *OutputFormatter) error {
				sp, err := eng.SpendTokens(ctx, args[0], args[1], amount, category, milestone, description)
				if err != nil {
					return rejected(f, err)
				}
				return f.Success(sp, func(w io.Writer) {
					fmt.Fprintf(w, "Spent %.2f tokens on %s (milestone %s)\n", sp.Amount, sp.Category, sp.Milestone)
					fmt.Fprintf(w, "  transaction: %s\n", sp.ID)
				})
			})
		},
	}

	cmd.Flags().StringVar(&category, "category", "", "spending category (must be in the issuance scope)")
	cmd.Flags().StringVar(&milestone, "milestone", "", "milestone the spending is attributed to")
	cmd.Flags().StringVar(&description, "description", "", "free-form description of the spending")
	_ = cmd.MarkFlagRequired("category")
	_ = cmd.MarkFlagRequired("milestone")

	return cmd
}
