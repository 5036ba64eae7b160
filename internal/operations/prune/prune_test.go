package prune

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/perigee-io/bucketsweep/internal/operations/batchdel"
	"github.com/perigee-io/bucketsweep/internal/operations/classify"
	"github.com/perigee-io/bucketsweep/internal/rclone"
	"github.com/perigee-io/bucketsweep/internal/testutil"
	"github.com/perigee-io/bucketsweep/sweeptypes"
)

type fakeScanner struct {
	entries map[string][]sweeptypes.ObjectEntry
}

func (s *fakeScanner) ListAll(_ context.Context, _, prefix string) (*sweeptypes.Listing, error) {
	return &sweeptypes.Listing{Entries: s.entries[prefix]}, nil
}

func newOrchestrator(store *testutil.MockStore, tool *testutil.MockSyncTool, scanner Scanner) *Orchestrator {
	return New(Config{
		Store:    store,
		Tool:     tool,
		Scanner:  scanner,
		Verifier: classify.New(tool, nil, zerolog.Nop()),
		Batch:    batchdel.New(store, batchdel.Config{Sleep: func(time.Duration) {}}),
		Bucket:   "bkt",
		Logger:   zerolog.Nop(),
	})
}

func outcomeOK(lines ...string) (rclone.Outcome, error) {
	return rclone.Outcome{Status: rclone.StatusOK, Lines: lines}, nil
}

// TestRecursive_PurgesAndCleansMarkers verifies the recursive protocol:
// purge, residual marker removal, direct marker delete, secondary delete.
func TestRecursive_PurgesAndCleansMarkers(t *testing.T) {
	store := &testutil.MockStore{}
	tool := &testutil.MockSyncTool{}
	scanner := &fakeScanner{entries: map[string][]sweeptypes.ObjectEntry{
		"presets/a/": testutil.Entries(testutil.Keys("presets/a/", 4)),
	}}
	orch := newOrchestrator(store, tool, scanner)

	result, err := orch.Run(context.Background(), sweeptypes.Target{
		Path: "presets/a",
		Mode: sweeptypes.ModeRecursive,
	})
	require.NoError(t, err)
	assert.Equal(t, 4, result.Deleted)
	assert.False(t, result.Skipped)

	assert.Equal(t, []string{
		"purge presets/a",
		"rmdirs presets/a",
		"deletefile presets/a/",
	}, tool.Mutations)
	assert.Equal(t, []string{"presets/a/"}, store.Deleted())
}

// TestRecursive_AlreadyAbsentIsSuccess verifies deleting an absent path
// reports success with nothing removed.
func TestRecursive_AlreadyAbsentIsSuccess(t *testing.T) {
	store := &testutil.MockStore{}
	tool := &testutil.MockSyncTool{
		PurgeFunc: func(_ context.Context, _ string, _ bool) (rclone.Outcome, error) {
			return rclone.Outcome{Status: rclone.StatusNotFound}, nil
		},
	}
	orch := newOrchestrator(store, tool, &fakeScanner{})

	result, err := orch.Run(context.Background(), sweeptypes.Target{
		Path: "gone",
		Mode: sweeptypes.ModeRecursive,
	})
	require.NoError(t, err)
	assert.Zero(t, result.Deleted)
}

// TestRecursive_PurgeFailureAborts verifies a hard purge failure aborts
// the target with an error.
func TestRecursive_PurgeFailureAborts(t *testing.T) {
	tool := &testutil.MockSyncTool{
		PurgeFunc: func(_ context.Context, _ string, _ bool) (rclone.Outcome, error) {
			return rclone.Outcome{Status: rclone.StatusFailed, Message: "permission denied"}, nil
		},
	}
	orch := newOrchestrator(&testutil.MockStore{}, tool, &fakeScanner{})

	_, err := orch.Run(context.Background(), sweeptypes.Target{
		Path: "presets/a",
		Mode: sweeptypes.ModeRecursive,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "permission denied")
}

// TestRecursive_DryRunMutatesNothing verifies dry-run reports the same
// counts as a live run while issuing zero mutations.
func TestRecursive_DryRunMutatesNothing(t *testing.T) {
	store := &testutil.MockStore{}
	tool := &testutil.MockSyncTool{}
	scanner := &fakeScanner{entries: map[string][]sweeptypes.ObjectEntry{
		"presets/a/": testutil.Entries(testutil.Keys("presets/a/", 4)),
	}}
	orch := newOrchestrator(store, tool, scanner)

	result, err := orch.Run(context.Background(), sweeptypes.Target{
		Path:   "presets/a",
		Mode:   sweeptypes.ModeRecursive,
		DryRun: true,
	})
	require.NoError(t, err)
	assert.Equal(t, 4, result.Deleted)
	assert.Empty(t, tool.Mutations)
	assert.Empty(t, store.Deleted())
}

// TestFilesOnly_DeletesDepthOneLeavesOnly verifies directory markers are
// never deleted and nested files are left intact.
func TestFilesOnly_DeletesDepthOneLeavesOnly(t *testing.T) {
	store := &testutil.MockStore{}
	tool := &testutil.MockSyncTool{
		ListShallowFunc: func(_ context.Context, path string) (rclone.Outcome, error) {
			assert.Equal(t, "presets/a", path)
			return outcomeOK("img1.jpg", "sub/", "img2.png")
		},
	}
	orch := newOrchestrator(store, tool, &fakeScanner{})

	result, err := orch.Run(context.Background(), sweeptypes.Target{
		Path: "presets/a/*",
		Mode: sweeptypes.ModeFilesOnly,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Deleted)
	assert.ElementsMatch(t, []string{"presets/a/img1.jpg", "presets/a/img2.png"}, store.Deleted())
	assert.Empty(t, tool.Mutations)
}

// TestFilesOnly_MissingPathIsNoOp verifies an absent path reports success.
func TestFilesOnly_MissingPathIsNoOp(t *testing.T) {
	tool := &testutil.MockSyncTool{
		ListShallowFunc: func(_ context.Context, _ string) (rclone.Outcome, error) {
			return rclone.Outcome{Status: rclone.StatusNotFound}, nil
		},
	}
	orch := newOrchestrator(&testutil.MockStore{}, tool, &fakeScanner{})

	result, err := orch.Run(context.Background(), sweeptypes.Target{
		Path: "gone/*",
		Mode: sweeptypes.ModeFilesOnly,
	})
	require.NoError(t, err)
	assert.Zero(t, result.Deleted)
}

// TestFilesOnly_DryRunCountsWithoutDeleting verifies simulation.
func TestFilesOnly_DryRunCountsWithoutDeleting(t *testing.T) {
	store := &testutil.MockStore{}
	tool := &testutil.MockSyncTool{
		ListShallowFunc: func(_ context.Context, _ string) (rclone.Outcome, error) {
			return outcomeOK("img1.jpg", "sub/")
		},
	}
	orch := newOrchestrator(store, tool, &fakeScanner{})

	result, err := orch.Run(context.Background(), sweeptypes.Target{
		Path:   "presets/a/*",
		Mode:   sweeptypes.ModeFilesOnly,
		DryRun: true,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Deleted)
	assert.Empty(t, store.Deleted())
}

// TestFoldersOnly_FileLikeTargetSkips verifies a file-like final segment
// turns the target into a no-op success.
func TestFoldersOnly_FileLikeTargetSkips(t *testing.T) {
	tool := &testutil.MockSyncTool{}
	orch := newOrchestrator(&testutil.MockStore{}, tool, &fakeScanner{})

	result, err := orch.Run(context.Background(), sweeptypes.Target{
		Path: "presets/thumb.webp",
		Mode: sweeptypes.ModeFoldersOnly,
	})
	require.NoError(t, err)
	assert.True(t, result.Skipped)
	assert.Empty(t, tool.Mutations)
}

// TestFoldersOnly_UnverifiedSkips verifies a folder without nested leaf
// objects is never deleted.
func TestFoldersOnly_UnverifiedSkips(t *testing.T) {
	tool := &testutil.MockSyncTool{
		ListShallowFunc: func(_ context.Context, _ string) (rclone.Outcome, error) {
			return outcomeOK("sub/")
		},
	}
	orch := newOrchestrator(&testutil.MockStore{}, tool, &fakeScanner{})

	result, err := orch.Run(context.Background(), sweeptypes.Target{
		Path: "presets/a",
		Mode: sweeptypes.ModeFoldersOnly,
	})
	require.NoError(t, err)
	assert.True(t, result.Skipped)
	assert.Empty(t, tool.Mutations)
}

// TestFoldersOnly_VerifiedDeletesFilesThenStructure verifies the protocol
// order: pattern delete, purge, residual marker removal.
func TestFoldersOnly_VerifiedDeletesFilesThenStructure(t *testing.T) {
	tool := &testutil.MockSyncTool{
		ListShallowFunc: func(_ context.Context, _ string) (rclone.Outcome, error) {
			return outcomeOK("img1.jpg", "sub/")
		},
	}
	scanner := &fakeScanner{entries: map[string][]sweeptypes.ObjectEntry{
		"presets/a/": testutil.Entries([]string{"presets/a/img1.jpg", "presets/a/sub/img2.jpg"}),
	}}
	orch := newOrchestrator(&testutil.MockStore{}, tool, scanner)

	result, err := orch.Run(context.Background(), sweeptypes.Target{
		Path: "presets/a",
		Mode: sweeptypes.ModeFoldersOnly,
	})
	require.NoError(t, err)
	assert.False(t, result.Skipped)
	assert.Equal(t, 2, result.Deleted)
	assert.Equal(t, []string{
		"delete presets/a",
		"purge presets/a",
		"rmdirs presets/a",
	}, tool.Mutations)
}

// TestFoldersOnly_NoMatchingObjectsIsSuccess verifies the "no matching
// objects" response from the bulk delete counts as success.
func TestFoldersOnly_NoMatchingObjectsIsSuccess(t *testing.T) {
	tool := &testutil.MockSyncTool{
		ListShallowFunc: func(_ context.Context, _ string) (rclone.Outcome, error) {
			return outcomeOK("img1.jpg")
		},
		DeleteByPatternFunc: func(_ context.Context, _, _ string, _ bool) (rclone.Outcome, error) {
			return rclone.Outcome{Status: rclone.StatusNotFound}, nil
		},
	}
	orch := newOrchestrator(&testutil.MockStore{}, tool, &fakeScanner{})

	result, err := orch.Run(context.Background(), sweeptypes.Target{
		Path: "presets/a",
		Mode: sweeptypes.ModeFoldersOnly,
	})
	require.NoError(t, err)
	assert.False(t, result.Skipped)
	assert.Zero(t, result.Deleted)
}

// TestRun_UnknownModeRejected verifies an unrecognized mode surfaces an
// invalid input error.
func TestRun_UnknownModeRejected(t *testing.T) {
	orch := newOrchestrator(&testutil.MockStore{}, &testutil.MockSyncTool{}, &fakeScanner{})

	_, err := orch.Run(context.Background(), sweeptypes.Target{Path: "x", Mode: "sideways"})
	require.Error(t, err)
}
