package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/tebello-m/tenderledger/internal/engine"
	"github.com/tebello-m/tenderledger/internal/ledger"
)

// NewSettleCommand creates the settle command.
func NewSettleCommand(rootOpts *RootOptions) *cobra.Command {
	var forceReturn bool

	cmd := &cobra.Command{
		Use:   "settle <tender-id> <contractor-id>",
		Short: "Settle an active issuance as a redemption or treasury return",
		Long: `settle closes out an active token issuance. By default it attempts a
redemption: remaining tokens are converted to cash with a bonus derived from
the average milestone quality score. If any milestone failed verification the
tokens are returned to the treasury instead. With --force-return the tokens
go back to the treasury unconditionally.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd, rootOpts, func(ctx context.Context, eng *engine.Engine, f *OutputFormatter) error {
				if forceReturn {
					ret, err := eng.ReturnTokensToTreasury(ctx, args[0], args[1])
					if err != nil {
						return rejected(f, err)
					}
					return f.Success(ret, func(w io.Writer) {
						printReturn(w, ret)
					})
				}

				tx, err := eng.RedeemTokens(ctx, args[0], args[1])
				if err != nil {
					return rejected(f, err)
				}
				return f.Success(tx, func(w io.Writer) {
					switch t := tx.(type) {
					case *ledger.Redemption:
						fmt.Fprintf(w, "Redeemed %.2f tokens for %.2f cash\n", t.TokensRedeemed, t.CashValue)
						fmt.Fprintf(w, "  bonus multiplier: %.2f (average quality %.1f)\n", t.BonusMultiplier, t.AverageQualityScore)
						fmt.Fprintf(w, "  transaction: %s\n", t.ID)
					case *ledger.Return:
						printReturn(w, t)
					}
				})
			})
		},
	}

	cmd.Flags().BoolVar(&forceReturn, "force-return", false, "return tokens to the treasury regardless of quality")

	return cmd
}

func printReturn(w io.Writer, ret *ledger.Return) {
	fmt.Fprintf(w, "Returned %.2f tokens to treasury\n", ret.TokensReturned)
	fmt.Fprintf(w, "  reason: %s\n", ret.Reason)
	fmt.Fprintf(w, "  transaction: %s\n", ret.ID)
}
