// pkg/cli/wrap.go

package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/infraops/invreporter/pkg/runctx"
	"github.com/infraops/invreporter/pkg/xerr"
)

// CommandFunc is the signature every command handler implements.
type CommandFunc func(rc *runctx.RuntimeContext, cmd *cobra.Command, args []string) error

// Wrap adapts a handler to cobra's RunE, providing the RuntimeContext,
// interrupt-aware cancellation, panic recovery, and end-of-command logging.
// SIGINT cancels the context so prompts and in-flight requests unwind
// through normal error returns, leaving on-disk credential state intact.
func Wrap(log *zap.Logger, fn CommandFunc) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) (err error) {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		rc := runctx.New(ctx, log, cmd.Name())
		defer rc.End(&err)
		defer rc.HandlePanic(&err)

		err = fn(rc, cmd, args)

		if err == nil && ctx.Err() != nil {
			err = xerr.New(xerr.KindUserCancelled, "interrupted by operator")
		}
		return err
	}
}
