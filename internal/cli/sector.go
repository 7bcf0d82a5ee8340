package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"yfin/internal/pipeline"
	"yfin/internal/validate"
	"yfin/internal/yahoo"
)

var sectorViews = []struct {
	view  yahoo.SectorView
	short string
}{
	{yahoo.SectorIndustries, "Get the industries within a sector"},
	{yahoo.SectorOverview, "Get the overview of a sector"},
	{yahoo.SectorResearchReports, "Get research reports on a sector"},
	{yahoo.SectorTopCompanies, "Get the top companies of a sector"},
	{yahoo.SectorTopETFs, "Get the top ETFs of a sector"},
	{yahoo.SectorTopMutualFunds, "Get the top mutual funds of a sector"},
}

var industryViews = []struct {
	view  yahoo.IndustryView
	short string
}{
	{yahoo.IndustryOverview, "Get the overview of an industry"},
	{yahoo.IndustryResearchReports, "Get research reports on an industry"},
	{yahoo.IndustryTopCompanies, "Get the top companies of an industry"},
	{yahoo.IndustryTopGrowthCompanies, "Get the top growth companies of an industry"},
	{yahoo.IndustryTopPerformingCompanies, "Get the top performing companies of an industry"},
}

func sectorKeyArg(key string) error {
	if !yahoo.IsSectorKey(key) {
		return validate.Usage(validate.InvalidChoice,
			fmt.Sprintf("Invalid sector key '%s'. Valid keys can be found using `yfin sector-keys`.", key))
	}
	return nil
}

func industryKeyArg(key string) error {
	if !yahoo.IsIndustryKey(key) {
		return validate.Usage(validate.InvalidChoice,
			fmt.Sprintf("Invalid industry key '%s'. Valid keys can be found using `yfin industry-keys`.", key))
	}
	return nil
}

func (a *app) sectorCommands() []*cobra.Command {
	cmds := []*cobra.Command{{
		Use:   "sector-keys",
		Short: "List the sector keys",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.exec(cmd, pipeline.Job{
				Fetch: func(context.Context) (any, error) { return yahoo.SectorKeys(), nil },
			})
		},
	}}

	for _, v := range sectorViews {
		view := v.view
		cmds = append(cmds, &cobra.Command{
			Use:   "sector-" + string(view) + " KEY",
			Short: v.short,
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				key := args[0]
				return a.exec(cmd, pipeline.Job{
					Validate: func() error { return sectorKeyArg(key) },
					Fetch: func(ctx context.Context) (any, error) {
						return a.source.Sector(ctx, key, view)
					},
				})
			},
		})
	}
	return cmds
}

func (a *app) industryCommands() []*cobra.Command {
	var sector string
	keys := &cobra.Command{
		Use:   "industry-keys",
		Short: "List the industry keys, optionally of one sector",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.exec(cmd, pipeline.Job{
				Validate: func() error {
					if sector == "" {
						return nil
					}
					return sectorKeyArg(sector)
				},
				Fetch: func(context.Context) (any, error) { return yahoo.IndustryKeys(sector), nil },
			})
		},
	}
	keys.Flags().StringVar(&sector, "sector", "", "only industries of this sector key")

	cmds := []*cobra.Command{keys}
	for _, v := range industryViews {
		view := v.view
		cmds = append(cmds, &cobra.Command{
			Use:   "industry-" + string(view) + " KEY",
			Short: v.short,
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				key := args[0]
				return a.exec(cmd, pipeline.Job{
					Validate: func() error { return industryKeyArg(key) },
					Fetch: func(ctx context.Context) (any, error) {
						return a.source.Industry(ctx, key, view)
					},
				})
			},
		})
	}
	return cmds
}
