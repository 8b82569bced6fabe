// cmd/creds/creds.go

package creds

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/infraops/invreporter/pkg/cli"
	"github.com/infraops/invreporter/pkg/credstore"
	"github.com/infraops/invreporter/pkg/runctx"
	"github.com/infraops/invreporter/pkg/xerr"
)

// New builds the `creds` command group for managing the local encrypted
// credential store.
func New(log *zap.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "creds",
		Short: "Manage the local encrypted credential store",
	}
	cmd.AddCommand(newClear(log), newStatus(log))
	return cmd
}

func newClear(log *zap.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove the stored credential and failed-login marker",
		RunE: cli.Wrap(log, func(rc *runctx.RuntimeContext, cmd *cobra.Command, args []string) error {
			store := credstore.New(".", rc.Log)
			if !store.Clear(rc.Ctx) {
				return xerr.New(xerr.KindSystem, "could not clear stored credentials")
			}
			fmt.Println("✓ Stored credentials cleared")
			return nil
		}),
	}
}

func newStatus(log *zap.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show which credential store files exist",
		RunE: cli.Wrap(log, func(rc *runctx.RuntimeContext, cmd *cobra.Command, args []string) error {
			status := credstore.New(".", rc.Log).Status(rc.Ctx)

			describe := func(present bool, yes, no string) string {
				if present {
					return yes
				}
				return no
			}
			fmt.Println("Encryption key:     ", describe(status.HasKey, "present", "absent (generated on first save)"))
			fmt.Println("Stored credential:  ", describe(status.HasRecord, "present", "absent"))
			fmt.Println("Failed-login marker:", describe(status.LoginFailed, "set (next run will re-prompt)", "clear"))
			return nil
		}),
	}
}
