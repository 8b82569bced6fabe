// cmd/reportcmd/report.go

package reportcmd

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/infraops/invreporter/pkg/authflow"
	"github.com/infraops/invreporter/pkg/cli"
	"github.com/infraops/invreporter/pkg/config"
	"github.com/infraops/invreporter/pkg/credstore"
	"github.com/infraops/invreporter/pkg/httpclient"
	"github.com/infraops/invreporter/pkg/interaction"
	"github.com/infraops/invreporter/pkg/probe"
	"github.com/infraops/invreporter/pkg/release"
	"github.com/infraops/invreporter/pkg/report"
	"github.com/infraops/invreporter/pkg/runctx"
	"github.com/infraops/invreporter/pkg/tower"
	"github.com/infraops/invreporter/pkg/xerr"
)

// New builds the `report` command: the full authenticate, probe, fetch, and
// spreadsheet flow.
func New(log *zap.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Generate an inventory snapshot spreadsheet for a service package",
		RunE:  cli.Wrap(log, run),
	}
	cmd.Flags().String("output-dir", "", "directory for generated reports (default: reports)")
	return cmd
}

func run(rc *runctx.RuntimeContext, cmd *cobra.Command, args []string) error {
	cfg := config.Load(rc.Log)
	if dir, _ := cmd.Flags().GetString("output-dir"); dir != "" {
		cfg.OutputDir = dir
	}

	outDir, err := report.EnsureOutputDir(cfg.OutputDir)
	if err != nil {
		return xerr.Wrap(xerr.KindSystem, err, "output directory unavailable")
	}

	store := credstore.New(".", rc.Log)
	input := interaction.NewTerminal(rc.Log)

	resolver := authflow.New(cfg, store, input)
	resolution, err := resolver.Resolve(rc)
	if err != nil {
		return err
	}
	rc.Log.Info("Credentials resolved",
		zap.String("source", resolution.Source.String()),
		zap.String("tier", string(resolution.Tier)),
	)

	probeClient, err := httpclient.New(cfg.ProbeTimeout, cfg.CACertFile)
	if err != nil {
		return err
	}

	prober := probe.New(probeClient, cfg, func() { store.MarkLoginFailed(rc.Ctx) })
	verdict := prober.Probe(rc, resolution.Credential, resolution.Tier)
	if !verdict.OverallOK {
		for _, message := range probe.Diagnostics(verdict) {
			fmt.Println("\n" + message)
		}
		return probe.VerdictError(verdict)
	}
	fmt.Println("✓ Connected to all required services")

	dataClient, err := httpclient.New(cfg.RequestTimeout, cfg.CACertFile)
	if err != nil {
		return err
	}

	flow := &reportFlow{
		cfg:        cfg,
		input:      input,
		httpc:      dataClient,
		release:    release.NewClient(dataClient, resolution.Credential),
		resolution: resolution,
		outDir:     outDir,
	}

	for {
		stop, err := flow.runOnce(rc)
		if err != nil {
			return err
		}
		if stop {
			return nil
		}

		again, err := input.AskConfirm(rc.Ctx, "Would you like to generate another report?", false)
		if err != nil || !again {
			return nil
		}
	}
}

type reportFlow struct {
	cfg        *config.Settings
	input      interaction.InputProvider
	httpc      *http.Client
	release    *release.Client
	resolution *authflow.Resolution
	outDir     string
}

// runOnce handles one SPK: component lookup, inventory fetch across the
// tier's environments, and spreadsheet generation. stop=true ends the run
// without offering another report.
func (f *reportFlow) runOnce(rc *runctx.RuntimeContext) (stop bool, err error) {
	spk, err := f.askSPK(rc)
	if err != nil {
		return false, err
	}

	components := f.fetchComponents(rc)
	if len(components) == 0 {
		proceed, err := f.input.AskConfirm(rc.Ctx,
			"No components found in the release train. Continue with manual SPK search?", true)
		if err != nil {
			return false, xerr.Wrap(xerr.KindUserCancelled, err, "report cancelled")
		}
		if !proceed {
			rc.Log.Info("Operator declined manual search, ending run")
			return true, nil
		}
	}

	rows, err := f.collectRows(rc, spk, components)
	if err != nil {
		return false, err
	}

	if len(rows) == 0 {
		fmt.Printf("No inventory data found for %q in %s environments.\n",
			spk, f.resolution.Tier)
		return false, nil
	}

	filename, err := report.Write(rc, spk, rows, f.outDir)
	if err != nil {
		return false, err
	}
	fmt.Printf("✓ Report generated successfully: %s\n", filename)
	return false, nil
}

func (f *reportFlow) askSPK(rc *runctx.RuntimeContext) (string, error) {
	for {
		spk, err := f.input.AskText(rc.Ctx, "Enter the SPK name (e.g. ASAPREQ)")
		if err != nil {
			return "", xerr.Wrap(xerr.KindUserCancelled, err, "report cancelled")
		}
		if report.ValidSPK(spk) {
			return spk, nil
		}
		fmt.Println("Invalid SPK name format: use 3-50 letters, numbers, underscores, or hyphens.")
		rc.Log.Warn("Invalid SPK name entered")
	}
}

// fetchComponents asks for the train URL and scrapes its component list.
// Failures degrade to a manual SPK search rather than aborting the run.
func (f *reportFlow) fetchComponents(rc *runctx.RuntimeContext) []string {
	trainURL, err := f.input.AskText(rc.Ctx, "Enter the release train URL")
	if err != nil || trainURL == "" {
		return nil
	}

	components, err := f.release.ComponentsFromTrain(rc, trainURL)
	if err != nil {
		rc.Log.Error("Error fetching release train components", zap.Error(err))
		fmt.Println("Could not fetch components from the release train. Please verify:\n" +
			"  1. The train URL is correct\n" +
			"  2. You have access to the train\n" +
			"  3. The train contains components in the relationship view")
		return nil
	}
	return components
}

// collectRows walks every environment in the tier. With components from the
// train, each component is searched as <spk>_<component>; otherwise the SPK
// is searched as-is.
func (f *reportFlow) collectRows(rc *runctx.RuntimeContext, spk string, components []string) ([]tower.HostRow, error) {
	var rows []tower.HostRow

	for _, env := range f.cfg.Environments(f.resolution.Tier) {
		rc.Log.Info("Processing environment", zap.String("environment", env))

		client, err := tower.NewClient(f.httpc, f.cfg.TowerBaseURLs[f.resolution.Tier][env], f.resolution.Credential)
		if err != nil {
			return nil, err
		}

		searches := []string{spk}
		if len(components) > 0 {
			searches = searches[:0]
			for _, component := range components {
				searches = append(searches, spk+"_"+component)
			}
		}

		for _, search := range searches {
			envRows, err := client.InventoryReport(rc, search)
			if err != nil {
				rc.Log.Error("Error fetching inventory data",
					zap.String("environment", env),
					zap.String("search", search),
					zap.Error(err),
				)
				continue
			}
			rows = append(rows, envRows...)
		}
	}
	return rows, nil
}
