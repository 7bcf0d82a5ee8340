package cli

import (
	"context"

	"github.com/spf13/cobra"

	"yfin/internal/format"
	"yfin/internal/pipeline"
	"yfin/internal/validate"
	"yfin/internal/yahoo"
)

func (a *app) calendarCommands() []*cobra.Command {
	return []*cobra.Command{
		a.calendarCommand("calendar-earnings", "Get the earnings calendar", yahoo.EarningsCalendar, earningsCalendarFormat),
		a.calendarCommand("calendar-ipo", "Get the IPO calendar", yahoo.IPOCalendar, ipoCalendarFormat),
		a.calendarCommand("calendar-economic-events", "Get the economic events calendar", yahoo.EconomicEventsCalendar, economicEventsFormat),
	}
}

func (a *app) calendarCommand(use, short string, kind yahoo.CalendarKind, spec *format.Spec) *cobra.Command {
	var start, end string
	var limit, offset int
	var marketCap float64

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Long: short + `.

Without --start and --end the calendar covers today and the next seven days.
When only one of them is given the other is seven days away.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p := yahoo.CalendarParams{Limit: limit, Offset: offset, MarketCap: marketCap}
			return a.exec(cmd, pipeline.Job{
				Validate: func() error {
					var err error
					if p.Start, p.End, err = validate.DateRange(start, end, a.now()); err != nil {
						return err
					}
					if err := validate.AtLeast("limit", limit, 1); err != nil {
						return err
					}
					return validate.AtLeast("offset", offset, 0)
				},
				Fetch: func(ctx context.Context) (any, error) {
					return a.source.Calendar(ctx, kind, p)
				},
				Format: spec,
			})
		},
	}

	cmd.Flags().StringVarP(&start, "start", "s", "", "start date (YYYY-MM-DD), default today or 7 days before --end")
	cmd.Flags().StringVarP(&end, "end", "e", "", "end date (YYYY-MM-DD), default 7 days after the start")
	cmd.Flags().IntVarP(&limit, "limit", "l", 12, "maximum number of events to show")
	cmd.Flags().IntVarP(&offset, "offset", "o", 0, "number of events to skip")
	if kind == yahoo.EarningsCalendar {
		cmd.Flags().Float64VarP(&marketCap, "market-cap", "m", 0, "only companies with at least this market cap")
	}
	return cmd
}
