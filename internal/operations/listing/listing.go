// Package listing implements the paginated object-listing engine.
//
// Pages are fetched through a worker-pool-with-replacement: up to Window
// fetches are in flight at once, and each completed page immediately feeds
// its continuation cursor back into the pool. Rate-limited pages are retried
// in place with exponential backoff without disturbing the other in-flight
// fetches.
package listing

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	sweeperrors "github.com/perigee-io/bucketsweep/errors"
	"github.com/perigee-io/bucketsweep/internal/storeapi"
	"github.com/perigee-io/bucketsweep/sweeptypes"
)

const (
	// DefaultWindow is the number of concurrently in-flight page fetches.
	DefaultWindow = 3

	// DefaultPageLimit caps pages per walk, bounding runaway pagination from
	// a provider bug returning a cursor that never terminates.
	DefaultPageLimit = 10000

	// DefaultBackoffBase is the first rate-limit retry delay; it doubles on
	// each subsequent attempt (1s, 2s, 4s).
	DefaultBackoffBase = time.Second

	// DefaultPacing is the fixed delay between cursor-advance dispatches,
	// keeping sustained walks under provider rate limits.
	DefaultPacing = 25 * time.Millisecond

	// maxRetries is how many times a rate-limited page is retried before the
	// failure is surfaced for that page.
	maxRetries = 3
)

// Config tunes the engine. Zero values select the defaults above.
type Config struct {
	Window      int
	PageLimit   int
	BackoffBase time.Duration
	Pacing      time.Duration
	Sleep       sweeptypes.Sleeper
	Logger      zerolog.Logger
}

// Engine walks cursor-paginated listings.
type Engine struct {
	store       storeapi.Store
	window      int
	pageLimit   int
	backoffBase time.Duration
	pacing      time.Duration
	sleep       sweeptypes.Sleeper
	log         zerolog.Logger
}

// New creates a listing engine over the given store.
func New(store storeapi.Store, cfg Config) *Engine {
	if cfg.Window <= 0 {
		cfg.Window = DefaultWindow
	}
	if cfg.PageLimit <= 0 {
		cfg.PageLimit = DefaultPageLimit
	}
	if cfg.BackoffBase <= 0 {
		cfg.BackoffBase = DefaultBackoffBase
	}
	if cfg.Pacing <= 0 {
		cfg.Pacing = DefaultPacing
	}
	if cfg.Sleep == nil {
		cfg.Sleep = time.Sleep
	}

	return &Engine{
		store:       store,
		window:      cfg.Window,
		pageLimit:   cfg.PageLimit,
		backoffBase: cfg.BackoffBase,
		pacing:      cfg.Pacing,
		sleep:       cfg.Sleep,
		log:         cfg.Logger,
	}
}

// ListPage fetches a single page, retrying rate-limit signals in place.
func (e *Engine) ListPage(ctx context.Context, bucket, prefix, cursor string) (*sweeptypes.Page, error) {
	page, _, err := e.fetchWithRetry(ctx, bucket, prefix, cursor)
	return page, err
}

// ListAll walks every page under prefix and returns the union of entries.
// The walk is not restartable: it consumes to completion or fails. When the
// page ceiling is hit, the partial listing is returned together with
// ErrPageLimitExceeded.
func (e *Engine) ListAll(ctx context.Context, bucket, prefix string) (*sweeptypes.Listing, error) {
	start := time.Now()
	listing := &sweeptypes.Listing{}

	// First page is fetched synchronously to seed the cursor chain.
	page, retries, err := e.fetchWithRetry(ctx, bucket, prefix, "")
	listing.Retries += retries
	if err != nil {
		listing.Duration = time.Since(start)
		return listing, sweeperrors.NewPathError("listAll", bucket, prefix, err)
	}
	listing.Entries = append(listing.Entries, page.Entries...)
	listing.Pages = 1

	if page.Cursor == "" {
		listing.Duration = time.Since(start)
		return listing, nil
	}

	var (
		mu        sync.Mutex
		firstErr  error
		truncated atomic.Bool
		pages     = int32(1)
		pending   int32
	)

	// Buffered wide enough that producers never block: at most one new
	// cursor per in-flight fetch plus the seed.
	queue := make(chan string, e.window+1)

	enqueue := func(cursor string) {
		atomic.AddInt32(&pending, 1)
		queue <- cursor
	}
	settle := func() {
		if atomic.AddInt32(&pending, -1) == 0 {
			close(queue)
		}
	}

	enqueue(page.Cursor)

	var wg sync.WaitGroup
	sem := make(chan struct{}, e.window)

	for cursor := range queue {
		// Pace cursor-advance dispatches; the in-flight fetches themselves
		// are not throttled.
		e.sleep(e.pacing)

		if int(atomic.AddInt32(&pages, 1)) > e.pageLimit {
			truncated.Store(true)
			settle()
			continue
		}

		mu.Lock()
		stop := firstErr != nil
		mu.Unlock()
		if stop {
			settle()
			continue
		}

		sem <- struct{}{}
		wg.Add(1)
		go func(cursor string) {
			defer func() {
				<-sem
				wg.Done()
				settle()
			}()

			page, retries, err := e.fetchWithRetry(ctx, bucket, prefix, cursor)

			mu.Lock()
			listing.Retries += retries
			if err != nil {
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
				return
			}
			listing.Entries = append(listing.Entries, page.Entries...)
			listing.Pages++
			stop := firstErr != nil
			mu.Unlock()

			if page.Cursor != "" && !stop && !truncated.Load() {
				enqueue(page.Cursor)
			}
		}(cursor)
	}

	wg.Wait()
	listing.Duration = time.Since(start)

	if firstErr != nil {
		return listing, sweeperrors.NewPathError("listAll", bucket, prefix, firstErr)
	}
	if truncated.Load() {
		listing.Truncated = true
		e.log.Warn().
			Str("bucket", bucket).
			Str("prefix", prefix).
			Int("pages", listing.Pages).
			Msg("page ceiling reached, returning partial listing")
		return listing, sweeperrors.NewPathError("listAll", bucket, prefix, sweeperrors.ErrPageLimitExceeded)
	}
	return listing, nil
}

// fetchWithRetry fetches one page, retrying the same page up to maxRetries
// more times on rate-limit signals with doubling backoff. Other in-flight
// pages are unaffected; non-retryable errors surface immediately.
func (e *Engine) fetchWithRetry(
	ctx context.Context,
	bucket, prefix, cursor string,
) (*sweeptypes.Page, int, error) {
	var retries int
	delay := e.backoffBase

	for attempt := 0; ; attempt++ {
		page, err := e.store.ListPage(ctx, bucket, prefix, cursor)
		if err == nil {
			return page, retries, nil
		}
		if !sweeperrors.IsRateLimited(err) || attempt >= maxRetries {
			return nil, retries, err
		}

		retries++
		e.log.Debug().
			Str("prefix", prefix).
			Int("attempt", attempt+1).
			Dur("delay", delay).
			Msg("rate limited, backing off")
		e.sleep(delay)
		delay *= 2
	}
}
