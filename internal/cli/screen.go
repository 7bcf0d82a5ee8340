package cli

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"yfin/internal/pipeline"
	"yfin/internal/record"
	"yfin/internal/screener"
	"yfin/internal/validate"
	"yfin/internal/yahoo"
)

func (a *app) screenCommands() []*cobra.Command {
	return []*cobra.Command{
		a.screenCommand(),
		listCommand(a, "screen-query-fields", "List the fields screens can filter and sort on", "field", screener.Fields),
		a.screenQueryValuesCommand(),
		listCommand(a, "screen-predefined-queries", "List the predefined screens", "query", func() []string {
			return sortedCopy(screener.PredefinedQueries)
		}),
	}
}

func (a *app) screenCommand() *cobra.Command {
	var filters []string
	var predefined, jsonQuery, sortField, sortOrder string
	var offset, limit int

	cmd := &cobra.Command{
		Use:   "screen",
		Short: "Run a stock screener",
		Long: `Run a stock screener with a predefined screen, simple filters or a JSON query.

Exactly one of --filter, --predefined and --json-query must be given.
Filters have the form '<field> <operator> <value>', for example
'sector eq Technology' or 'beta btwn 0.5,1.5', and are joined with and.
Operators are eq, gt, gte, lt, lte, btwn and is-in. A JSON query is a tree of
{"operator": "and"|"or", "queries": [filter or tree, ...]}.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			req := yahoo.ScreenRequest{Offset: offset, Limit: limit}
			return a.exec(cmd, pipeline.Job{
				Validate: func() error {
					names := []string{"filter", "predefined", "json-query"}
					if err := validate.ExactlyOne(names, lo.Ternary(len(filters) > 0, "filter", ""), predefined, jsonQuery); err != nil {
						return err
					}
					if err := validate.AtLeast("offset", offset, 0); err != nil {
						return err
					}
					if err := validate.AtLeast("limit", limit, 1); err != nil {
						return err
					}
					if limit > yahoo.MaxScreenSize {
						return validate.Usage(validate.InvalidArgument,
							fmt.Sprintf("--limit must be at most %d, got %d.", yahoo.MaxScreenSize, limit))
					}

					order, err := validate.Choice(sortOrder, screener.SortOrders)
					if err != nil {
						return err
					}
					req.SortAsc = order == "asc"
					if sortField != "" {
						if !screener.IsField(sortField) {
							return validate.Usage(validate.InvalidChoice, fmt.Sprintf(
								"Invalid field: '%s'. Valid fields can be found using `yfin screen-query-fields`.", sortField))
						}
						req.SortField = sortField
					}

					switch {
					case predefined != "":
						if !screener.IsPredefined(predefined) {
							return validate.Usage(validate.InvalidChoice, fmt.Sprintf(
								"Invalid predefined query: '%s'. Valid predefined queries can be found using `yfin screen-predefined-queries`.", predefined))
						}
						req.Predefined = predefined
					case len(filters) > 0:
						req.Query, err = screener.ParseFilters(filters)
					default:
						req.Query, err = screener.ParseJSONQuery(jsonQuery)
					}
					return err
				},
				Fetch: func(ctx context.Context) (any, error) {
					return a.source.Screen(ctx, req)
				},
			})
		},
	}

	cmd.Flags().StringArrayVarP(&filters, "filter", "f", nil, "filter '<field> <operator> <value>', repeatable")
	cmd.Flags().StringVarP(&predefined, "predefined", "p", "", "predefined screen name")
	cmd.Flags().StringVarP(&jsonQuery, "json-query", "j", "", "query tree as JSON")
	cmd.Flags().IntVarP(&offset, "offset", "o", 0, "number of results to skip")
	cmd.Flags().IntVarP(&limit, "limit", "l", 12, fmt.Sprintf("maximum number of results (at most %d)", yahoo.MaxScreenSize))
	cmd.Flags().StringVar(&sortField, "sort-field", "", "field to sort by")
	cmd.Flags().StringVar(&sortOrder, "sort-order", "desc", "sort order ("+strings.Join(screener.SortOrders, ", ")+")")
	return cmd
}

func (a *app) screenQueryValuesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "screen-query-values FIELD",
		Short: "List the accepted values of an enumerated screener field",
		Long: `List the accepted values of an enumerated screener field: region,
exchange, sector, industry or peer_group. Other fields take numbers and have
no fixed values.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			field := strings.ToLower(args[0])
			return a.exec(cmd, pipeline.Job{
				Validate: func() error {
					if !screener.IsField(field) {
						return validate.Usage(validate.InvalidChoice, fmt.Sprintf(
							"Invalid field: '%s'. Valid fields can be found using `yfin screen-query-fields`.", args[0]))
					}
					return nil
				},
				Fetch: func(context.Context) (any, error) {
					return column("value", screener.Values(field)), nil
				},
			})
		},
	}
}

// listCommand prints the static values returned by list, one record per value
// under field.
func listCommand(a *app, use, short, field string, list func() []string) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.exec(cmd, pipeline.Job{
				Fetch: func(context.Context) (any, error) { return column(field, list()), nil },
			})
		},
	}
}

func column(field string, values []string) []*record.Record {
	return lo.Map(values, func(v string, _ int) *record.Record { return record.Of(field, v) })
}

func sortedCopy(values []string) []string {
	out := append([]string(nil), values...)
	slices.Sort(out)
	return out
}
