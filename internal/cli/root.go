// Package cli implements the tenderledger command-line interface.
//
// Every subcommand loads the journal, replays it into an engine, executes a
// single ledger operation, and renders the result as text or JSON. Exit codes
// distinguish rejected operations (1) from command errors (2).
package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"github.com/spf13/cobra"

	"github.com/tebello-m/tenderledger/internal/engine"
	"github.com/tebello-m/tenderledger/internal/journal"
)

// RootOptions holds the global flags shared by all subcommands.
type RootOptions struct {
	Journal string
	Format  string
	Verbose bool
}

// envConfig supplies environment-variable defaults for the global flags.
type envConfig struct {
	Journal string `env:"TENDERLEDGER_JOURNAL" envDefault:"tenderledger.json"`
	Format  string `env:"TENDERLEDGER_FORMAT" envDefault:"text"`
}

// NewRootCommand creates the root command with all subcommands attached.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	defaults := envConfig{Journal: "tenderledger.json", Format: "text"}
	_ = env.Parse(&defaults)

	cmd := &cobra.Command{
		Use:   "tenderledger",
		Short: "Token ledger for tender procurement",
		Long: `tenderledger tracks procurement token pools through their lifecycle:
issuance to a contractor, milestone spending, quality verification, and
settlement as a redemption or a treasury return.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q (want text or json)", opts.Format))
			}
			level := slog.LevelWarn
			if opts.Verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})))
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.Journal, "journal", defaults.Journal, "journal path (.db/.sqlite for SQLite, otherwise JSON file)")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", defaults.Format, "output format: text or json")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "enable debug logging")

	cmd.AddCommand(
		NewIssueCommand(opts),
		NewSpendCommand(opts),
		NewVerifyCommand(opts),
		NewSettleCommand(opts),
		NewSummaryCommand(opts),
		NewCategoriesCommand(opts),
	)

	return cmd
}

func isValidFormat(format string) bool {
	return format == "text" || format == "json"
}

// openJournal selects the journal backend from the path extension.
func openJournal(path string) (journal.Journal, error) {
	switch filepath.Ext(path) {
	case ".db", ".sqlite", ".sqlite3":
		return journal.OpenSQLite(path)
	default:
		return journal.NewFileJournal(path), nil
	}
}

// withEngine opens the journal, replays it into an engine and hands control
// to fn together with the output formatter.
func withEngine(cmd *cobra.Command, opts *RootOptions, fn func(ctx context.Context, eng *engine.Engine, f *OutputFormatter) error) error {
	f := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}

	j, err := openJournal(opts.Journal)
	if err != nil {
		return WrapExitError(ExitCommandError, "open journal", err)
	}
	defer j.Close()

	eng, err := engine.New(cmd.Context(), j)
	if err != nil {
		return WrapExitError(ExitCommandError, "load ledger", err)
	}

	return fn(cmd.Context(), eng, f)
}

// rejected renders an engine error through the formatter and converts it to
// an exit-code-1 ExitError.
func rejected(f *OutputFormatter, err error) error {
	_ = f.Error(string(engine.CodeOf(err)), err.Error())
	return WrapExitError(ExitFailure, "operation rejected", err)
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	cmd := NewRootCommand()
	if err := cmd.Execute(); err != nil {
		var exitErr *ExitError
		if !errors.As(err, &exitErr) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return ExitCommandError
		}
		if exitErr.Code == ExitCommandError {
			fmt.Fprintf(os.Stderr, "Error: %v\n", exitErr)
		}
		return exitErr.Code
	}
	return ExitSuccess
}
