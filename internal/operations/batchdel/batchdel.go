// Package batchdel fans object deletions out in fixed-size concurrent
// batches against the store API.
package batchdel

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/perigee-io/bucketsweep/internal/storeapi"
	"github.com/perigee-io/bucketsweep/sweeptypes"
)

const (
	// DefaultBatchSize is the number of deletions issued concurrently per
	// batch.
	DefaultBatchSize = 10

	// DefaultBatchDelay is the pause between consecutive batches.
	DefaultBatchDelay = 50 * time.Millisecond
)

// Config tunes the deleter. Zero values select the defaults above.
type Config struct {
	BatchSize int
	Delay     time.Duration
	Sleep     sweeptypes.Sleeper
}

// Deleter deletes sets of objects in concurrent batches.
type Deleter struct {
	store     storeapi.Store
	batchSize int
	delay     time.Duration
	sleep     sweeptypes.Sleeper
}

// New creates a batch deleter over the given store.
func New(store storeapi.Store, cfg Config) *Deleter {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	if cfg.Delay <= 0 {
		cfg.Delay = DefaultBatchDelay
	}
	if cfg.Sleep == nil {
		cfg.Sleep = time.Sleep
	}

	return &Deleter{
		store:     store,
		batchSize: cfg.BatchSize,
		delay:     cfg.Delay,
		sleep:     cfg.Sleep,
	}
}

// DeleteMany deletes keys in batches of the configured size, joining each
// batch before dispatching the next. Individual failures are accumulated
// per key and never abort the run; callers inspect the result to decide.
// progress, when non-nil, is invoked after every batch with cumulative
// deleted and failed counts.
func (d *Deleter) DeleteMany(
	ctx context.Context,
	bucket string,
	keys []string,
	progress sweeptypes.ProgressFunc,
) *sweeptypes.Result {
	start := time.Now()
	result := &sweeptypes.Result{}

	for offset := 0; offset < len(keys); offset += d.batchSize {
		end := offset + d.batchSize
		if end > len(keys) {
			end = len(keys)
		}
		batch := keys[offset:end]

		// Each worker writes only its own slot, so the batch needs no
		// locking; results merge after the join.
		outcomes := make([]error, len(batch))
		g := new(errgroup.Group)
		for i, key := range batch {
			i, key := i, key
			g.Go(func() error {
				outcomes[i] = d.store.DeleteObject(ctx, bucket, key)
				return nil
			})
		}
		_ = g.Wait()

		for i, err := range outcomes {
			if err != nil {
				result.AddError(batch[i], err)
				continue
			}
			result.Deleted++
		}

		if progress != nil {
			progress(result.Deleted, result.Failed)
		}
		if end < len(keys) {
			d.sleep(d.delay)
		}
	}

	result.Duration = time.Since(start)
	return result
}
