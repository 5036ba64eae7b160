package batchdel

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sweeperrors "github.com/perigee-io/bucketsweep/errors"
	"github.com/perigee-io/bucketsweep/internal/testutil"
)

// TestDeleteMany_AllKeysDeleted verifies every key is issued exactly once
// across batches.
func TestDeleteMany_AllKeysDeleted(t *testing.T) {
	store := &testutil.MockStore{}
	deleter := New(store, Config{BatchSize: 10, Sleep: func(time.Duration) {}})

	keys := testutil.Keys("media/", 37)
	result := deleter.DeleteMany(context.Background(), "bkt", keys, nil)

	assert.Equal(t, 37, result.Deleted)
	assert.Zero(t, result.Failed)

	got := store.Deleted()
	sort.Strings(got)
	assert.Equal(t, keys, got)
}

// TestDeleteMany_PerKeyFailuresAccumulate verifies one key's failure never
// aborts the run and failures count separately from successes.
func TestDeleteMany_PerKeyFailuresAccumulate(t *testing.T) {
	store := &testutil.MockStore{
		DeleteObjectFunc: func(_ context.Context, _, key string) error {
			if key == "media/obj-0003.webp" || key == "media/obj-0015.webp" {
				return sweeperrors.ErrMalformedResponse
			}
			return nil
		},
	}
	deleter := New(store, Config{BatchSize: 10, Sleep: func(time.Duration) {}})

	result := deleter.DeleteMany(context.Background(), "bkt", testutil.Keys("media/", 20), nil)

	assert.Equal(t, 18, result.Deleted)
	assert.Equal(t, 2, result.Failed)
	require.Len(t, result.Errors, 2)
	paths := []string{result.Errors[0].Path, result.Errors[1].Path}
	sort.Strings(paths)
	assert.Equal(t, []string{"media/obj-0003.webp", "media/obj-0015.webp"}, paths)
}

// TestDeleteMany_ProgressAfterEveryBatch verifies cumulative totals are
// reported once per batch.
func TestDeleteMany_ProgressAfterEveryBatch(t *testing.T) {
	store := &testutil.MockStore{}
	deleter := New(store, Config{BatchSize: 10, Sleep: func(time.Duration) {}})

	var reports [][2]int
	deleter.DeleteMany(context.Background(), "bkt", testutil.Keys("media/", 25), func(deleted, failed int) {
		reports = append(reports, [2]int{deleted, failed})
	})

	assert.Equal(t, [][2]int{{10, 0}, {20, 0}, {25, 0}}, reports)
}

// TestDeleteMany_DelayBetweenBatchesOnly verifies the throttle delay runs
// between batches, not after the last one.
func TestDeleteMany_DelayBetweenBatchesOnly(t *testing.T) {
	store := &testutil.MockStore{}
	sleeper := &testutil.RecordingSleeper{}
	deleter := New(store, Config{BatchSize: 10, Delay: 50 * time.Millisecond, Sleep: sleeper.Sleep})

	deleter.DeleteMany(context.Background(), "bkt", testutil.Keys("media/", 30), nil)

	assert.Equal(t, []time.Duration{50 * time.Millisecond, 50 * time.Millisecond}, sleeper.Slept())
}

// TestDeleteMany_NoKeys verifies an empty key set is a no-op.
func TestDeleteMany_NoKeys(t *testing.T) {
	store := &testutil.MockStore{}
	deleter := New(store, Config{})

	result := deleter.DeleteMany(context.Background(), "bkt", nil, nil)
	assert.Zero(t, result.Deleted)
	assert.Zero(t, result.Failed)
	assert.Empty(t, store.Deleted())
}
