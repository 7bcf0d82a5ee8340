// Package pipeline runs one command end to end: validate the arguments, fetch
// the raw result, normalize it and write it out.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"

	"yfin/internal/fetcher"
	"yfin/internal/format"
	"yfin/internal/normalize"
	"yfin/internal/output"
	"yfin/internal/validate"
)

// Exit codes of the yfin process.
const (
	ExitOK    = 0
	ExitError = 1
	ExitUsage = 2
)

// ErrNoData is returned when the source has nothing to report.
var ErrNoData = errors.New("No data found")

// Job describes one command invocation.
type Job struct {
	// Validate checks and normalizes the arguments. It may be nil.
	Validate func() error

	Fetch fetcher.Func

	// IndexField names the field row labels are stored under. Empty uses the
	// result's own index name.
	IndexField string

	// Format selects per-field cell formatting in table mode.
	Format *format.Spec
}

// Run executes job and writes its result to w in mode. Nothing is fetched
// when validation fails, and nothing is written unless the whole result
// converts.
func Run(ctx context.Context, job Job, mode output.Mode, w io.Writer) error {
	if job.Validate != nil {
		if err := job.Validate(); err != nil {
			return err
		}
	}

	raw, err := job.Fetch(ctx)
	if err != nil {
		return err
	}

	res, err := normalize.Normalize(raw, job.IndexField)
	if err != nil {
		return fmt.Errorf("failed to normalize result: %w", err)
	}
	if _, ok := res.(normalize.NoData); ok {
		return ErrNoData
	}

	return output.NewWriter(mode, job.Format).Write(w, res)
}

// ExitCode maps the error returned by Run to the process exit code.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case validate.IsUsage(err):
		return ExitUsage
	default:
		return ExitError
	}
}
