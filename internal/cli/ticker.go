package cli

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"yfin/internal/coordinator"
	"yfin/internal/pipeline"
	"yfin/internal/validate"
	"yfin/internal/yahoo"
)

// newsTabs lists the --tab choices of news, in display order.
var newsTabs = []string{"all", "news", "press releases"}

func (a *app) tickerCommands() []*cobra.Command {
	return []*cobra.Command{
		a.historyCommand(),
		a.dividendsCommand(),
		a.fastInfoCommand(),
		a.newsCommand(),
	}
}

func (a *app) historyCommand() *cobra.Command {
	var interval, period, start, end string

	cmd := &cobra.Command{
		Use:   "history TICKER",
		Short: "Get historical market data for a ticker",
		Long: `Get historical OHLCV bars for a ticker.

At most two of --period, --start and --end can be specified together. With
none of them the last month is returned.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var symbol string
			var p yahoo.HistoryParams

			return a.exec(cmd, pipeline.Job{
				Validate: func() error {
					if err := tickerArg(args[0], &symbol); err != nil {
						return err
					}
					if err := validate.AtMost(2, []string{"period", "start", "end"}, period, start, end); err != nil {
						return err
					}
					if validate.CountSpecified(period, start, end) == 0 {
						period = "1mo"
					}

					var err error
					if p.Interval, err = validate.Choice(interval, yahoo.Intervals); err != nil {
						return err
					}
					if period != "" {
						if p.Period, err = validate.Choice(period, yahoo.Periods); err != nil {
							return err
						}
					}
					if start != "" {
						if p.Start, err = validate.Date(start); err != nil {
							return err
						}
					}
					if end != "" {
						if p.End, err = validate.Date(end); err != nil {
							return err
						}
					}
					return nil
				},
				Fetch: func(ctx context.Context) (any, error) {
					return a.source.History(ctx, symbol, p)
				},
				IndexField: "Date",
				Format:     historyFormat,
			})
		},
	}

	cmd.Flags().StringVarP(&interval, "interval", "i", "1d", "data interval ("+strings.Join(yahoo.Intervals, ", ")+")")
	cmd.Flags().StringVarP(&period, "period", "p", "", "data period ("+strings.Join(yahoo.Periods, ", ")+")")
	cmd.Flags().StringVarP(&start, "start", "s", "", "start date (YYYY-MM-DD)")
	cmd.Flags().StringVarP(&end, "end", "e", "", "end date (YYYY-MM-DD)")
	return cmd
}

func (a *app) dividendsCommand() *cobra.Command {
	var period string

	cmd := &cobra.Command{
		Use:   "dividends TICKER",
		Short: "Get the dividend history of a ticker",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var symbol string
			return a.exec(cmd, pipeline.Job{
				Validate: func() error {
					if err := tickerArg(args[0], &symbol); err != nil {
						return err
					}
					_, err := validate.Choice(period, yahoo.Periods)
					return err
				},
				Fetch: func(ctx context.Context) (any, error) {
					return a.source.Dividends(ctx, symbol, period)
				},
				IndexField: "Date",
				Format:     dividendsFormat,
			})
		},
	}

	cmd.Flags().StringVarP(&period, "period", "p", "max", "data period ("+strings.Join(yahoo.Periods, ", ")+")")
	return cmd
}

func (a *app) fastInfoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "fast-info TICKER...",
		Short: "Get a quote summary for one or more tickers",
		Long: `Get key quote metrics such as price, market cap, volume and the 52-week
range. Several tickers are looked up concurrently and listed in the order
given, each with a leading symbol field. The command fails if any ticker has
no data.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			symbols := make([]string, len(args))
			return a.exec(cmd, pipeline.Job{
				Validate: func() error {
					for i, arg := range args {
						if err := tickerArg(arg, &symbols[i]); err != nil {
							return err
						}
					}
					return nil
				},
				Fetch: func(ctx context.Context) (any, error) {
					if len(symbols) == 1 {
						return a.source.FastInfo(ctx, symbols[0])
					}
					return coordinator.New(a.source.FastInfo, a.cfg.Concurrency, "symbol").Run(ctx, symbols)
				},
				Format: fastInfoFormat,
			})
		},
	}
}

func (a *app) newsCommand() *cobra.Command {
	var count int
	var tab string

	cmd := &cobra.Command{
		Use:   "news TICKER",
		Short: "Get recent news for a ticker",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var symbol string
			return a.exec(cmd, pipeline.Job{
				Validate: func() error {
					if err := tickerArg(args[0], &symbol); err != nil {
						return err
					}
					if err := validate.AtLeast("count", count, 1); err != nil {
						return err
					}
					_, err := validate.Choice(tab, newsTabs)
					return err
				},
				Fetch: func(ctx context.Context) (any, error) {
					return a.source.News(ctx, symbol, count, tab)
				},
				Format: newsFormat,
			})
		},
	}

	cmd.Flags().IntVarP(&count, "count", "c", 5, "number of articles to fetch")
	cmd.Flags().StringVarP(&tab, "tab", "t", "all", "news tab ("+strings.Join(newsTabs, ", ")+")")
	return cmd
}
