// Package coordinator fans a per-key lookup out over a bounded number of
// goroutines and gathers the results in key order.
package coordinator

import (
	"context"
	"errors"
	"fmt"

	"github.com/sourcegraph/conc/iter"

	"yfin/internal/record"
)

// ErrMissing is returned when a lookup succeeds without a record for its key.
var ErrMissing = errors.New("no data")

// Lookup retrieves the record of one key. A nil record means the source has
// nothing for the key.
type Lookup func(ctx context.Context, key string) (*record.Record, error)

// Coordinator runs lookups concurrently
type Coordinator struct {
	lookup         Lookup
	maxConcurrency int
	keyField       string
}

// New creates a Coordinator running at most maxConcurrency lookups at a time.
// Each result is prefixed with its key stored under keyField.
func New(lookup Lookup, maxConcurrency int, keyField string) *Coordinator {
	if maxConcurrency < 1 {
		maxConcurrency = 1
	}
	return &Coordinator{
		lookup:         lookup,
		maxConcurrency: maxConcurrency,
		keyField:       keyField,
	}
}

// Run looks up every key and returns one record per key, in the order of
// keys. It is all or nothing: the first failure cancels the lookups still
// running and is returned on its own.
func (c *Coordinator) Run(ctx context.Context, keys []string) ([]*record.Record, error) {
	if len(keys) == 0 {
		return nil, fmt.Errorf("no keys to look up")
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	results := make([]*record.Record, len(keys))
	errs := make([]error, len(keys))

	it := iter.Iterator[string]{MaxGoroutines: c.maxConcurrency}
	it.ForEachIdx(keys, func(i int, key *string) {
		if ctx.Err() != nil {
			errs[i] = ctx.Err()
			return
		}

		rec, err := c.lookup(ctx, *key)
		switch {
		case err != nil:
			errs[i] = fmt.Errorf("%s: %w", *key, err)
		case rec.Len() == 0:
			errs[i] = fmt.Errorf("%s: %w", *key, ErrMissing)
		default:
			results[i] = prefixed(c.keyField, *key, rec)
			return
		}
		cancel()
	})

	if err := firstError(errs); err != nil {
		return nil, err
	}
	return results, nil
}

// firstError returns the first error in key order that is not a cancellation
// caused by an earlier failure, falling back to the first error of any kind.
func firstError(errs []error) error {
	var first error
	for _, err := range errs {
		if err == nil {
			continue
		}
		if !errors.Is(err, context.Canceled) {
			return err
		}
		if first == nil {
			first = err
		}
	}
	return first
}

func prefixed(field, key string, rec *record.Record) *record.Record {
	out := record.New().Set(field, key)
	rec.Each(func(k string, v any) {
		if k != field {
			out.Set(k, v)
		}
	})
	return out
}
