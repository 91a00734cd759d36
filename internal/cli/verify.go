package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/tebello-m/tenderledger/internal/engine"
)

// NewVerifyCommand creates the verify command.
func NewVerifyCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify <tender-id> <milestone> <quality-score>",
		Short: "Record a quality verification for a milestone",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			score, err := strconv.ParseFloat(args[2], 64)
			if err != nil {
				return WrapExitError(ExitCommandError, fmt.Sprintf("invalid quality score %q", args[2]), err)
			}
			return withEngine(cmd, rootOpts, func(ctx context.Context, eng *engine.Engine, f *OutputFormatter) error {
				v, err := eng.VerifyMilestone(ctx, args[0], args[1], score)
				if err != nil {
					return rejected(f, err)
				}
				return f.Success(v, func(w io.Writer) {
					verdict := "FAILED"
					if v.Passed {
						verdict = "PASSED"
					}
					fmt.Fprintf(w, "Milestone %s scored %.1f: %s\n", v.Milestone, v.QualityScore, verdict)
					fmt.Fprintf(w, "  transaction: %s\n", v.ID)
				})
			})
		},
	}

	return cmd
}
