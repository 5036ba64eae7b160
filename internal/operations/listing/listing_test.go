package listing

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sweeperrors "github.com/perigee-io/bucketsweep/errors"
	"github.com/perigee-io/bucketsweep/internal/testutil"
	"github.com/perigee-io/bucketsweep/sweeptypes"
)

func noSleep(time.Duration) {}

func newTestEngine(store *testutil.MockStore, cfg Config) *Engine {
	if cfg.Sleep == nil {
		cfg.Sleep = noSleep
	}
	return New(store, cfg)
}

// TestListAll_UnionOfAllPages verifies the listing is the exact union of
// every page's entries with no duplicates or omissions, for a range of
// window sizes.
func TestListAll_UnionOfAllPages(t *testing.T) {
	tests := []struct {
		name     string
		keys     int
		pageSize int
		window   int
	}{
		{name: "single page", keys: 5, pageSize: 10, window: 3},
		{name: "exact page boundary", keys: 20, pageSize: 10, window: 3},
		{name: "many pages window 1", keys: 95, pageSize: 10, window: 1},
		{name: "many pages window 3", keys: 95, pageSize: 10, window: 3},
		{name: "many pages window 8", keys: 95, pageSize: 10, window: 8},
		{name: "empty prefix", keys: 0, pageSize: 10, window: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			keys := testutil.Keys("media/", tt.keys)
			store, _ := testutil.PagedStore("media/", keys, tt.pageSize)
			engine := newTestEngine(store, Config{Window: tt.window})

			listing, err := engine.ListAll(context.Background(), "bkt", "media/")
			require.NoError(t, err)

			got := make([]string, 0, len(listing.Entries))
			for _, e := range listing.Entries {
				got = append(got, e.Key)
			}
			sort.Strings(got)
			assert.Equal(t, keys, got)
			assert.False(t, listing.Truncated)
		})
	}
}

// TestListAll_RateLimitRetry verifies a throttled page yields the same
// final object set as an unthrottled run, with the retry recorded.
func TestListAll_RateLimitRetry(t *testing.T) {
	keys := testutil.Keys("media/", 30)
	store, _ := testutil.PagedStore("media/", keys, 10)

	inner := store.ListPageFunc
	throttled := false
	store.ListPageFunc = func(ctx context.Context, bucket, prefix, cursor string) (*sweeptypes.Page, error) {
		if cursor == "cursor-10" && !throttled {
			throttled = true
			return nil, sweeperrors.ErrRateLimited
		}
		return inner(ctx, bucket, prefix, cursor)
	}

	sleeper := &testutil.RecordingSleeper{}
	engine := New(store, Config{Sleep: sleeper.Sleep, BackoffBase: time.Second, Pacing: time.Millisecond})

	listing, err := engine.ListAll(context.Background(), "bkt", "media/")
	require.NoError(t, err)
	assert.Len(t, listing.Entries, 30)
	assert.Equal(t, 1, listing.Retries)
	assert.Contains(t, sleeper.Slept(), time.Second)
}

// TestFetchWithRetry_BackoffDoubles verifies the retry delays are 1s, 2s,
// 4s and that the fourth failure surfaces.
func TestFetchWithRetry_BackoffDoubles(t *testing.T) {
	store := &testutil.MockStore{
		ListPageFunc: func(context.Context, string, string, string) (*sweeptypes.Page, error) {
			return nil, sweeperrors.ErrRateLimited
		},
	}
	sleeper := &testutil.RecordingSleeper{}
	engine := New(store, Config{Sleep: sleeper.Sleep, BackoffBase: time.Second})

	_, retries, err := engine.fetchWithRetry(context.Background(), "bkt", "media/", "")
	require.Error(t, err)
	assert.True(t, sweeperrors.IsRateLimited(err))
	assert.Equal(t, 3, retries)
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second, 4 * time.Second}, sleeper.Slept())
}

// TestFetchWithRetry_NonRetryableFailsFast verifies non-throttle errors
// surface without any backoff.
func TestFetchWithRetry_NonRetryableFailsFast(t *testing.T) {
	boom := errors.New("boom")
	store := &testutil.MockStore{
		ListPageFunc: func(context.Context, string, string, string) (*sweeptypes.Page, error) {
			return nil, boom
		},
	}
	sleeper := &testutil.RecordingSleeper{}
	engine := New(store, Config{Sleep: sleeper.Sleep})

	_, retries, err := engine.fetchWithRetry(context.Background(), "bkt", "media/", "")
	assert.ErrorIs(t, err, boom)
	assert.Zero(t, retries)
	assert.Empty(t, sleeper.Slept())
}

// TestListAll_PageCeiling verifies the walk stops at the configured page
// ceiling and returns the partial result with the sentinel error.
func TestListAll_PageCeiling(t *testing.T) {
	keys := testutil.Keys("media/", 100)
	store, _ := testutil.PagedStore("media/", keys, 10)
	engine := newTestEngine(store, Config{Window: 1, PageLimit: 4})

	listing, err := engine.ListAll(context.Background(), "bkt", "media/")
	require.Error(t, err)
	assert.ErrorIs(t, err, sweeperrors.ErrPageLimitExceeded)
	assert.True(t, listing.Truncated)
	assert.Equal(t, 4, listing.Pages)
	assert.Len(t, listing.Entries, 40)
}

// TestListAll_PacingBetweenDispatches verifies the fixed delay is applied
// once per cursor advance.
func TestListAll_PacingBetweenDispatches(t *testing.T) {
	keys := testutil.Keys("media/", 30)
	store, _ := testutil.PagedStore("media/", keys, 10)
	sleeper := &testutil.RecordingSleeper{}
	engine := New(store, Config{Window: 1, Sleep: sleeper.Sleep, Pacing: 25 * time.Millisecond})

	_, err := engine.ListAll(context.Background(), "bkt", "media/")
	require.NoError(t, err)

	// Two continuation cursors follow the seed page.
	assert.Equal(t, []time.Duration{25 * time.Millisecond, 25 * time.Millisecond}, sleeper.Slept())
}

// TestListAll_FirstPageError verifies a failing seed page aborts the walk.
func TestListAll_FirstPageError(t *testing.T) {
	boom := errors.New("boom")
	store := &testutil.MockStore{
		ListPageFunc: func(context.Context, string, string, string) (*sweeptypes.Page, error) {
			return nil, boom
		},
	}
	engine := newTestEngine(store, Config{})

	listing, err := engine.ListAll(context.Background(), "bkt", "media/")
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, listing.Entries)
}

// TestListPage_SinglePage verifies the single-page call passes the cursor
// through and returns the page unchanged.
func TestListPage_SinglePage(t *testing.T) {
	store := &testutil.MockStore{
		ListPageFunc: func(_ context.Context, _, _, cursor string) (*sweeptypes.Page, error) {
			assert.Equal(t, "tok", cursor)
			return &sweeptypes.Page{
				Entries: testutil.Entries([]string{"media/a.webp"}),
				Cursor:  "next",
			}, nil
		},
	}
	engine := newTestEngine(store, Config{})

	page, err := engine.ListPage(context.Background(), "bkt", "media/", "tok")
	require.NoError(t, err)
	assert.Equal(t, "next", page.Cursor)
	require.Len(t, page.Entries, 1)
	assert.Equal(t, "media/a.webp", page.Entries[0].Key)
}
