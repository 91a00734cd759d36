package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tebello-m/tenderledger/internal/engine"
)

// NewIssueCommand creates the issue command.
func NewIssueCommand(rootOpts *RootOptions) *cobra.Command {
	var scope []string

	cmd := &cobra.Command{
		Use:   "issue <tender-id> <contractor-id> <total-value>",
		Short: "Issue a token pool to a contractor for a tender",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			value, err := strconv.ParseFloat(args[2], 64)
			if err != nil {
				return WrapExitError(ExitCommandError, fmt.Sprintf("invalid total value %q", args[2]), err)
			}
			return withEngine(cmd, rootOpts, func(ctx context.Context, eng *engine.Engine, f *OutputFormatter) error {
				iss, err := eng.IssueTokens(ctx, args[0], args[1], value, scope)
				if err != nil {
					return rejected(f, err)
				}
				return f.Success(iss, func(w io.Writer) {
					fmt.Fprintf(w, "Issued %.2f tokens to %s for tender %s\n", iss.TokensIssued, iss.ContractorID, iss.TenderID)
					fmt.Fprintf(w, "  scope: %s\n", strings.Join(iss.ProjectScope, ", "))
					fmt.Fprintf(w, "  transaction: %s\n", iss.ID)
				})
			})
		},
	}

	cmd.Flags().StringSliceVar(&scope, "scope", nil, "allowed spending categories (comma-separated)")
	_ = cmd.MarkFlagRequired("scope")

	return cmd
}
