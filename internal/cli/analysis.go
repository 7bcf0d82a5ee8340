package cli

import (
	"context"

	"github.com/spf13/cobra"

	"yfin/internal/format"
	"yfin/internal/pipeline"
	"yfin/internal/yahoo"
)

var analysisShort = map[yahoo.AnalysisKind]string{
	yahoo.Recommendations:      "Get analyst recommendation counts by month",
	yahoo.UpgradesDowngrades:   "Get analyst upgrades and downgrades",
	yahoo.PriceTargets:         "Get analyst price targets",
	yahoo.EarningsEstimate:     "Get analyst earnings estimates",
	yahoo.RevenueEstimate:      "Get analyst revenue estimates",
	yahoo.EarningsHistory:      "Get reported versus estimated earnings",
	yahoo.EPSTrend:             "Get the trend of EPS estimates",
	yahoo.EPSRevisions:         "Get EPS estimate revisions",
	yahoo.GrowthEstimates:      "Get growth estimates against the index",
	yahoo.InsiderPurchases:     "Get insider purchase activity over the last six months",
	yahoo.InsiderTransactions:  "Get insider transactions",
	yahoo.InsiderRosterHolders: "Get the insider roster",
	yahoo.MajorHolders:         "Get the major holders breakdown",
	yahoo.InstitutionalHolders: "Get the top institutional holders",
	yahoo.MutualFundHolders:    "Get the top mutual fund holders",
}

var analysisFormat = map[yahoo.AnalysisKind]*format.Spec{
	yahoo.InstitutionalHolders: holdersFormat,
	yahoo.MutualFundHolders:    holdersFormat,
}

func (a *app) analysisCommands() []*cobra.Command {
	kinds := yahoo.AnalysisKinds()
	cmds := make([]*cobra.Command, 0, len(kinds))
	for _, kind := range kinds {
		cmds = append(cmds, a.analysisCommand(kind))
	}
	return cmds
}

func (a *app) analysisCommand(kind yahoo.AnalysisKind) *cobra.Command {
	return &cobra.Command{
		Use:   string(kind) + " TICKER",
		Short: analysisShort[kind],
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var symbol string
			return a.exec(cmd, pipeline.Job{
				Validate: func() error { return tickerArg(args[0], &symbol) },
				Fetch: func(ctx context.Context) (any, error) {
					return a.source.Analysis(ctx, symbol, kind)
				},
				Format: analysisFormat[kind],
			})
		},
	}
}
