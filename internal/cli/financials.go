package cli

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"yfin/internal/pipeline"
	"yfin/internal/validate"
	"yfin/internal/yahoo"
)

func (a *app) financialsCommands() []*cobra.Command {
	return []*cobra.Command{
		a.statementCommand("income-stmt", "Get the income statement of a ticker", yahoo.IncomeStatement),
		a.statementCommand("balance-sheet", "Get the balance sheet of a ticker", yahoo.BalanceSheet),
		a.statementCommand("cashflow", "Get the cash flow statement of a ticker", yahoo.CashFlow),
		a.earningsDatesCommand(),
	}
}

func (a *app) statementCommand(use, short string, kind yahoo.StatementKind) *cobra.Command {
	var frequency string
	frequencies := yahoo.Frequencies(kind)

	cmd := &cobra.Command{
		Use:   use + " TICKER",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var symbol string
			return a.exec(cmd, pipeline.Job{
				Validate: func() error {
					if err := tickerArg(args[0], &symbol); err != nil {
						return err
					}
					_, err := validate.Choice(frequency, frequencies)
					return err
				},
				Fetch: func(ctx context.Context) (any, error) {
					return a.source.Statement(ctx, symbol, kind, frequency)
				},
				IndexField: "Metric",
				Format:     statementFormat,
			})
		},
	}

	cmd.Flags().StringVarP(&frequency, "frequency", "f", "yearly", "reporting frequency ("+strings.Join(frequencies, ", ")+")")
	return cmd
}

func (a *app) earningsDatesCommand() *cobra.Command {
	var limit, offset int

	cmd := &cobra.Command{
		Use:   "earnings-dates TICKER",
		Short: "Get earnings dates, estimates and reported EPS for a ticker",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var symbol string
			return a.exec(cmd, pipeline.Job{
				Validate: func() error {
					if err := tickerArg(args[0], &symbol); err != nil {
						return err
					}
					if err := validate.AtLeast("limit", limit, 1); err != nil {
						return err
					}
					return validate.AtLeast("offset", offset, 0)
				},
				Fetch: func(ctx context.Context) (any, error) {
					return a.source.EarningsDates(ctx, symbol, limit, offset)
				},
				Format: earningsDatesFormat,
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "l", 12, "number of earnings dates to show")
	cmd.Flags().IntVarP(&offset, "offset", "o", 0, "number of earnings dates to skip")
	return cmd
}
