// Package cli defines the yfin command tree. Every command validates its
// arguments, fetches from a Source and hands the raw result to the pipeline,
// which normalizes and writes it.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"yfin/internal/config"
	"yfin/internal/fetcher"
	"yfin/internal/output"
	"yfin/internal/pipeline"
	"yfin/internal/record"
	"yfin/internal/validate"
	"yfin/internal/yahoo"
)

// Source is the market data collaborator behind every command.
type Source interface {
	History(ctx context.Context, symbol string, p yahoo.HistoryParams) (*fetcher.Frame, error)
	Dividends(ctx context.Context, symbol, period string) (*fetcher.Series, error)
	FastInfo(ctx context.Context, symbol string) (*record.Record, error)
	News(ctx context.Context, symbol string, count int, tab string) ([]*record.Record, error)
	Calendar(ctx context.Context, kind yahoo.CalendarKind, p yahoo.CalendarParams) (*fetcher.Frame, error)
	EarningsDates(ctx context.Context, symbol string, limit, offset int) (*fetcher.Frame, error)
	Statement(ctx context.Context, symbol string, kind yahoo.StatementKind, freq string) (*fetcher.Frame, error)
	Analysis(ctx context.Context, symbol string, kind yahoo.AnalysisKind) (any, error)
	Sector(ctx context.Context, key string, view yahoo.SectorView) (any, error)
	Industry(ctx context.Context, key string, view yahoo.IndustryView) (any, error)
	Screen(ctx context.Context, req yahoo.ScreenRequest) ([]*record.Record, error)
	MarketStatus(ctx context.Context) (*record.Record, error)
}

// SourceFactory builds the Source for a loaded configuration. The returned
// func releases it.
type SourceFactory func(cfg *config.Config) (Source, func() error)

// YahooSource is the production SourceFactory.
func YahooSource(cfg *config.Config) (Source, func() error) {
	client := yahoo.New(yahoo.Config{
		Query1URL:         cfg.Yahoo.Query1URL,
		Query2URL:         cfg.Yahoo.Query2URL,
		RootURL:           cfg.Yahoo.RootURL,
		CookieURL:         cfg.Yahoo.CookieURL,
		UserAgent:         cfg.Yahoo.UserAgent,
		Timeout:           cfg.Yahoo.Timeout,
		RetryCount:        cfg.Yahoo.RetryCount,
		RequestsPerSecond: cfg.Yahoo.RequestsPerSecond,
	})
	return client, client.Close
}

// Execute runs yfin with args against Yahoo Finance and returns the process
// exit code.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	return newApp(stdout, stderr, YahooSource).run(ctx, args)
}

// app carries the state shared by the commands of one invocation.
type app struct {
	stdout    io.Writer
	stderr    io.Writer
	logger    *log.Logger
	newSource SourceFactory
	now       func() time.Time

	cfg         *config.Config
	mode        output.Mode
	source      Source
	closeSource func() error

	// parsed is set once cobra has accepted the command line. Errors
	// returned before that are usage errors.
	parsed bool
}

func newApp(stdout, stderr io.Writer, newSource SourceFactory) *app {
	return &app{
		stdout:    stdout,
		stderr:    stderr,
		logger:    log.NewWithOptions(stderr, log.Options{Level: log.WarnLevel}),
		newSource: newSource,
		now:       time.Now,
	}
}

func (a *app) run(ctx context.Context, args []string) int {
	slog.SetDefault(slog.New(a.logger))

	root := a.rootCommand()
	root.SetArgs(args)
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)

	err := root.ExecuteContext(ctx)
	if a.closeSource != nil {
		if cerr := a.closeSource(); cerr != nil {
			slog.Debug("closing source", "error", cerr)
		}
	}
	if err != nil && !a.parsed && !validate.IsUsage(err) {
		err = validate.Usage(validate.InvalidArgument, err.Error())
	}

	a.report(err)
	return pipeline.ExitCode(err)
}

// report logs the outcome of a failed command to stderr.
func (a *app) report(err error) {
	switch {
	case err == nil:
	case validate.IsUsage(err):
		a.logger.Error(err.Error())
	case errors.Is(err, pipeline.ErrNoData):
		a.logger.Warn(pipeline.ErrNoData.Error())
	default:
		a.logger.Error("Unexpected error: " + err.Error())
	}
}

func (a *app) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "yfin",
		Short: "Yahoo Finance market data from the command line",
		Long: `yfin fetches quotes, price history, financial statements, analyst data,
sector and industry data, calendars and screener results from Yahoo Finance
and prints them as JSON or as a table.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}

	flags := root.PersistentFlags()
	flags.String("output", string(output.JSON), "output format ("+strings.Join(output.Modes, ", ")+")")
	flags.String("config", "", "config file (default ./config.yaml or $HOME/.yfin/config.yaml)")
	flags.String("log-level", "warn", "log level (debug, info, warn, error)")

	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return validate.Usage(validate.InvalidArgument, err.Error())
	})

	root.AddCommand(a.tickerCommands()...)
	root.AddCommand(a.calendarCommands()...)
	root.AddCommand(a.financialsCommands()...)
	root.AddCommand(a.analysisCommands()...)
	root.AddCommand(a.sectorCommands()...)
	root.AddCommand(a.industryCommands()...)
	root.AddCommand(a.screenCommands()...)
	root.AddCommand(a.marketCommands()...)
	return root
}

// setup loads the configuration and builds the source once the command line
// has been parsed.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	a.parsed = true
	flags := cmd.Flags()

	if flags.Changed("output") {
		mode, _ := flags.GetString("output")
		if _, err := validate.Choice(strings.ToLower(strings.TrimSpace(mode)), output.Modes); err != nil {
			return err
		}
	}
	if flags.Changed("log-level") {
		level, _ := flags.GetString("log-level")
		if _, err := log.ParseLevel(level); err != nil {
			return validate.Usage(validate.InvalidChoice,
				fmt.Sprintf("Invalid log level '%s'. Choose from: debug, info, warn, error", level))
		}
	}

	cfg, err := config.Load(flags)
	if err != nil {
		return err
	}
	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	a.logger.SetLevel(level)

	a.cfg = cfg
	a.mode = output.Mode(cfg.Output)
	a.source, a.closeSource = a.newSource(cfg)

	slog.Debug("configuration loaded", "command", cmd.Name(), "output", cfg.Output, "concurrency", cfg.Concurrency)
	return nil
}

// exec runs job through the pipeline with the configured output mode.
func (a *app) exec(cmd *cobra.Command, job pipeline.Job) error {
	return pipeline.Run(cmd.Context(), job, a.mode, a.stdout)
}

// tickerArg normalizes the positional ticker into *symbol.
func tickerArg(arg string, symbol *string) error {
	t, err := validate.Ticker(arg)
	if err != nil {
		return err
	}
	*symbol = t
	return nil
}
