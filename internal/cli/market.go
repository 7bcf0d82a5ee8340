package cli

import (
	"context"

	"github.com/spf13/cobra"

	"yfin/internal/pipeline"
)

func (a *app) marketCommands() []*cobra.Command {
	return []*cobra.Command{{
		Use:   "market-status",
		Short: "Get the US market status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.exec(cmd, pipeline.Job{
				Fetch: func(ctx context.Context) (any, error) {
					return a.source.MarketStatus(ctx)
				},
			})
		},
	}}
}
