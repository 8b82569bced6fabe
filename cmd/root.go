// cmd/root.go

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/infraops/invreporter/cmd/check"
	"github.com/infraops/invreporter/cmd/creds"
	"github.com/infraops/invreporter/cmd/reportcmd"
	"github.com/infraops/invreporter/pkg/xerr"
)

// NewRoot builds the base command with all subcommands registered.
func NewRoot(log *zap.Logger) *cobra.Command {
	root := &cobra.Command{
		Use:   "invreporter",
		Short: "Inventory snapshot reporting for automation and release services",
		Long: `invreporter authenticates against the automation orchestration API and the
release console, checks connectivity, and produces a spreadsheet snapshot of
which hosts belong to which inventories for a given service package.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println("⚠️  No subcommand provided. Try `invreporter help`.")
			return cmd.Help()
		},
	}

	for _, sub := range []*cobra.Command{
		reportcmd.New(log),
		check.New(log),
		creds.New(log),
	} {
		root.AddCommand(sub)
	}
	return root
}

// Execute runs the CLI and presents failures to the operator. Unexpected
// failures get a generic message; the detail lives only in the log file.
func Execute(log *zap.Logger) error {
	err := NewRoot(log).Execute()
	if err == nil {
		return nil
	}

	if xerr.IsExpectedUserError(err) {
		fmt.Fprintln(os.Stderr, err.Error())
	} else {
		log.Error("Unexpected failure", zap.Error(err))
		fmt.Fprintln(os.Stderr,
			"An unexpected error occurred. Please try again or contact support if the issue persists.")
	}
	return err
}
