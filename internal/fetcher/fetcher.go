// Package fetcher holds the contract between commands and the data source:
// the raw result shapes a source may return, the structured errors it reports
// and the retrying HTTP client it is built on.
package fetcher

import "context"

// Func retrieves one raw result from the data source. The returned value is one
// of *Frame, *Series, *record.Record, map[string]any, a slice of either mapping
// type, or nil when the source has nothing to report.
type Func func(ctx context.Context) (any, error)
