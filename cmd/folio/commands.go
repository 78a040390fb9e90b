package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/bobmcallan/vire-folio/internal/app"
	"github.com/bobmcallan/vire-folio/internal/common"
	"github.com/bobmcallan/vire-folio/internal/importer"
	"github.com/bobmcallan/vire-folio/internal/period"
	"github.com/bobmcallan/vire-folio/internal/report"
)

func newImportCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file|dir>...",
		Short: "Import CSV exports; directories are scanned for .csv files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd.Context(), func(a *app.App) error {
				results, err := importer.ImportFiles(cmd.Context(), a.Service, a.Logger, args...)
				if len(results) > 0 {
					if perr := opts.print(cmd.OutOrStdout(), report.Imports(results)); perr != nil {
						return perr
					}
				}
				if err != nil {
					return err
				}
				for _, r := range results {
					if r.Err != nil {
						return fmt.Errorf("%d of %d files failed to import", countFailed(results), len(results))
					}
				}
				return nil
			})
		},
	}
}

func countFailed(results []importer.FileResult) int {
	n := 0
	for _, r := range results {
		if r.Err != nil {
			n++
		}
	}
	return n
}

func newHoldingsCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "holdings",
		Short: "Show current holdings with allocation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd.Context(), func(a *app.App) error {
				holdings, err := a.Service.Holdings(cmd.Context())
				if err != nil {
					return err
				}
				return opts.print(cmd.OutOrStdout(), report.Holdings(holdings, a.Config.Display.Currency))
			})
		},
	}
}

func newTransactionsCmd(opts *cliOptions) *cobra.Command {
	var symbol string
	cmd := &cobra.Command{
		Use:   "transactions",
		Short: "List imported buy and sell transactions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd.Context(), func(a *app.App) error {
				txs, err := a.Service.Transactions(cmd.Context(), symbol)
				if err != nil {
					return err
				}
				return opts.print(cmd.OutOrStdout(), report.Transactions(txs, a.Config.Display.Currency))
			})
		},
	}
	cmd.Flags().StringVarP(&symbol, "symbol", "s", "", "only show this symbol")
	return cmd
}

func newDividendsCmd(opts *cliOptions) *cobra.Command {
	var symbol string
	cmd := &cobra.Command{
		Use:   "dividends",
		Short: "List dividend payments received",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd.Context(), func(a *app.App) error {
				divs, err := a.Service.Dividends(cmd.Context(), symbol)
				if err != nil {
					return err
				}
				return opts.print(cmd.OutOrStdout(), report.Dividends(divs, a.Config.Display.Currency))
			})
		},
	}
	cmd.Flags().StringVarP(&symbol, "symbol", "s", "", "only show this symbol")
	return cmd
}

func newIncomeCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "income",
		Aliases: []string{"projection"},
		Short:   "Project dividend income for the next twelve months",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd.Context(), func(a *app.App) error {
				proj, err := a.Service.Projection(cmd.Context())
				if err != nil {
					return err
				}
				return opts.print(cmd.OutOrStdout(), report.Income(proj, a.Config.Display.Currency))
			})
		},
	}
}

func newPeriodCmd(opts *cliOptions) *cobra.Command {
	var months []string
	cmd := &cobra.Command{
		Use:   "period <mtd|qtd|ytd|prior_year|custom|all>",
		Short: "Report activity and realized gain for a period",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := ""
			if len(args) == 1 {
				name = args[0]
			}
			p, err := period.ParsePeriod(name)
			if err != nil {
				return err
			}
			if p != period.Custom && len(months) > 0 {
				return fmt.Errorf("--months only applies to the custom period")
			}
			return opts.withApp(cmd.Context(), func(a *app.App) error {
				res, err := a.Service.Period(cmd.Context(), p, months)
				if err != nil {
					return err
				}
				return opts.print(cmd.OutOrStdout(), report.Period(res, a.Config.Display.Currency))
			})
		},
	}
	cmd.Flags().StringSliceVarP(&months, "months", "m", nil, "months for the custom period, e.g. jan,feb")
	return cmd
}

func newSummaryCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Show portfolio totals, gain and income",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd.Context(), func(a *app.App) error {
				sum, err := a.Service.Summary(cmd.Context())
				if err != nil {
					return err
				}
				return opts.print(cmd.OutOrStdout(), report.Summary(sum, a.Config.Display.Currency))
			})
		},
	}
}

func newClearCmd(opts *cliOptions) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete all imported data",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				fmt.Fprint(cmd.OutOrStdout(), "Delete all imported data? [y/N] ")
				answer, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				answer = strings.ToLower(strings.TrimSpace(answer))
				if answer != "y" && answer != "yes" {
					fmt.Fprintln(cmd.OutOrStdout(), "aborted")
					return nil
				}
			}
			return opts.withApp(cmd.Context(), func(a *app.App) error {
				if err := a.Service.Clear(cmd.Context()); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "portfolio cleared")
				return nil
			})
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

func newMCPCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the portfolio tools over MCP stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd.Context(), func(a *app.App) error {
				a.Logger.Info().Msg("serving MCP over stdio")
				return server.ServeStdio(a.MCPServer)
			})
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "folio version %s\n", common.GetFullVersion())
		},
	}
}
