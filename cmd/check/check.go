// cmd/check/check.go

package check

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/infraops/invreporter/pkg/authflow"
	"github.com/infraops/invreporter/pkg/cli"
	"github.com/infraops/invreporter/pkg/config"
	"github.com/infraops/invreporter/pkg/credstore"
	"github.com/infraops/invreporter/pkg/httpclient"
	"github.com/infraops/invreporter/pkg/interaction"
	"github.com/infraops/invreporter/pkg/probe"
	"github.com/infraops/invreporter/pkg/runctx"
)

// New builds the `check` command: credential resolution plus a connectivity
// probe, without generating a report.
func New(log *zap.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Resolve credentials and probe service connectivity",
		RunE:  cli.Wrap(log, run),
	}
}

func run(rc *runctx.RuntimeContext, cmd *cobra.Command, args []string) error {
	cfg := config.Load(rc.Log)
	store := credstore.New(".", rc.Log)

	resolver := authflow.New(cfg, store, interaction.NewTerminal(rc.Log))
	resolution, err := resolver.Resolve(rc)
	if err != nil {
		return err
	}
	rc.Log.Info("Credentials resolved",
		zap.String("source", resolution.Source.String()),
		zap.String("tier", string(resolution.Tier)),
	)

	client, err := httpclient.New(cfg.ProbeTimeout, cfg.CACertFile)
	if err != nil {
		return err
	}

	prober := probe.New(client, cfg, func() { store.MarkLoginFailed(rc.Ctx) })
	verdict := prober.Probe(rc, resolution.Credential, resolution.Tier)

	for service, envs := range verdict.Reachable {
		for env, ok := range envs {
			icon := "✗"
			if ok {
				icon = "✓"
			}
			fmt.Printf("%s %s %s\n", icon, service, env)
		}
	}

	if !verdict.OverallOK {
		for _, message := range probe.Diagnostics(verdict) {
			fmt.Println("\n" + message)
		}
		return probe.VerdictError(verdict)
	}

	fmt.Println("\n✓ Successfully connected to all services")
	return nil
}
