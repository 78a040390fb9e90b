package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/bobmcallan/vire-folio/internal/app"
	"github.com/bobmcallan/vire-folio/internal/common"
	"github.com/bobmcallan/vire-folio/internal/config"
	"github.com/bobmcallan/vire-folio/internal/report"
)

// cliOptions holds the persistent flags shared by every subcommand.
type cliOptions struct {
	configFiles []string
	plain       bool
	verbose     bool
}

func newRootCmd() *cobra.Command {
	opts := &cliOptions{}

	root := &cobra.Command{
		Use:           "folio",
		Short:         "Reconcile brokerage exports into holdings and income projections",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringArrayVarP(&opts.configFiles, "config", "c", nil, "configuration file (repeatable)")
	root.PersistentFlags().BoolVar(&opts.plain, "plain", false, "print raw markdown without terminal styling")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log at debug level")

	root.AddCommand(
		newImportCmd(opts),
		newHoldingsCmd(opts),
		newTransactionsCmd(opts),
		newDividendsCmd(opts),
		newIncomeCmd(opts),
		newPeriodCmd(opts),
		newSummaryCmd(opts),
		newClearCmd(opts),
		newMCPCmd(opts),
		newVersionCmd(),
	)
	return root
}

// loadConfig resolves config files the same way the server does. The CLI
// logs warnings only unless --verbose is set.
func (o *cliOptions) loadConfig() (*config.Config, error) {
	files := o.configFiles
	if len(files) == 0 {
		if path := config.FindConfigFile(); path != "" {
			files = []string{path}
		}
	}
	cfg, err := config.LoadFromFiles(files...)
	if err != nil {
		return nil, err
	}
	if o.verbose {
		cfg.Logging.Level = "debug"
	} else {
		cfg.Logging.Level = "warn"
	}
	if issues := cfg.Validate(); len(issues) > 0 {
		return nil, fmt.Errorf("invalid configuration: %v", issues)
	}
	return cfg, nil
}

// withApp opens the application for the duration of fn.
func (o *cliOptions) withApp(ctx context.Context, fn func(a *app.App) error) error {
	cfg, err := o.loadConfig()
	if err != nil {
		return err
	}
	logger := common.NewLoggerFromConfig(cfg.Logging)

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	return fn(a)
}

// print renders md to w, styled unless --plain.
func (o *cliOptions) print(w io.Writer, md string) error {
	out, err := report.Render(md, o.plain)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, out)
	return err
}
