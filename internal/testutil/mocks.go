// Package testutil provides test mocks and fixtures shared across the
// module's test suites. It is internal and should only be imported from
// tests.
package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/perigee-io/bucketsweep/internal/rclone"
	"github.com/perigee-io/bucketsweep/sweeptypes"
)

// MockStore is a mock implementation of the store API for testing. Each
// operation is customizable through a function field; unset fields return
// success.
type MockStore struct {
	ListPageFunc     func(ctx context.Context, bucket, prefix, cursor string) (*sweeptypes.Page, error)
	DeleteObjectFunc func(ctx context.Context, bucket, key string) error

	mu      sync.Mutex
	deleted []string
}

// ListPage mocks the paginated list operation.
func (m *MockStore) ListPage(ctx context.Context, bucket, prefix, cursor string) (*sweeptypes.Page, error) {
	if m.ListPageFunc != nil {
		return m.ListPageFunc(ctx, bucket, prefix, cursor)
	}
	return &sweeptypes.Page{}, nil
}

// DeleteObject mocks the single-object delete operation and records the key.
func (m *MockStore) DeleteObject(ctx context.Context, bucket, key string) error {
	m.mu.Lock()
	m.deleted = append(m.deleted, key)
	m.mu.Unlock()
	if m.DeleteObjectFunc != nil {
		return m.DeleteObjectFunc(ctx, bucket, key)
	}
	return nil
}

// Deleted returns the keys passed to DeleteObject, in call order.
func (m *MockStore) Deleted() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.deleted))
	copy(out, m.deleted)
	return out
}

// MockRunner is a mock sync-utility process runner.
type MockRunner struct {
	RunFunc func(ctx context.Context, args ...string) (*rclone.Result, error)

	mu    sync.Mutex
	calls [][]string
}

// Run mocks a subprocess invocation and records its arguments.
func (m *MockRunner) Run(ctx context.Context, args ...string) (*rclone.Result, error) {
	m.mu.Lock()
	m.calls = append(m.calls, append([]string(nil), args...))
	m.mu.Unlock()
	if m.RunFunc != nil {
		return m.RunFunc(ctx, args...)
	}
	return &rclone.Result{ExitCode: 0}, nil
}

// Calls returns the recorded argument lists, in call order.
func (m *MockRunner) Calls() [][]string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([][]string, len(m.calls))
	copy(out, m.calls)
	return out
}

// MockSyncTool is a mock of the high-level sync utility commands used by
// the deletion orchestrator and the classification engine. Unset fields
// return an OK outcome with no lines.
type MockSyncTool struct {
	ListDirsFunc        func(ctx context.Context, path string) (rclone.Outcome, error)
	ListShallowFunc     func(ctx context.Context, path string) (rclone.Outcome, error)
	DeleteByPatternFunc func(ctx context.Context, path, pattern string, dryRun bool) (rclone.Outcome, error)
	PurgeFunc           func(ctx context.Context, path string, dryRun bool) (rclone.Outcome, error)
	RemoveEmptyDirsFunc func(ctx context.Context, path string, dryRun bool) (rclone.Outcome, error)
	DeleteFileFunc      func(ctx context.Context, path string, dryRun bool) (rclone.Outcome, error)

	mu        sync.Mutex
	Mutations []string
}

func (m *MockSyncTool) record(op, path string, dryRun bool) {
	if dryRun {
		return
	}
	m.mu.Lock()
	m.Mutations = append(m.Mutations, op+" "+path)
	m.mu.Unlock()
}

// ListDirs mocks the recursive directory listing.
func (m *MockSyncTool) ListDirs(ctx context.Context, path string) (rclone.Outcome, error) {
	if m.ListDirsFunc != nil {
		return m.ListDirsFunc(ctx, path)
	}
	return rclone.Outcome{Status: rclone.StatusOK}, nil
}

// ListShallow mocks the depth-1 listing.
func (m *MockSyncTool) ListShallow(ctx context.Context, path string) (rclone.Outcome, error) {
	if m.ListShallowFunc != nil {
		return m.ListShallowFunc(ctx, path)
	}
	return rclone.Outcome{Status: rclone.StatusOK}, nil
}

// DeleteByPattern mocks the bulk pattern delete.
func (m *MockSyncTool) DeleteByPattern(ctx context.Context, path, pattern string, dryRun bool) (rclone.Outcome, error) {
	m.record("delete", path, dryRun)
	if m.DeleteByPatternFunc != nil {
		return m.DeleteByPatternFunc(ctx, path, pattern, dryRun)
	}
	return rclone.Outcome{Status: rclone.StatusOK}, nil
}

// Purge mocks the recursive purge.
func (m *MockSyncTool) Purge(ctx context.Context, path string, dryRun bool) (rclone.Outcome, error) {
	m.record("purge", path, dryRun)
	if m.PurgeFunc != nil {
		return m.PurgeFunc(ctx, path, dryRun)
	}
	return rclone.Outcome{Status: rclone.StatusOK}, nil
}

// RemoveEmptyDirs mocks residual directory marker removal.
func (m *MockSyncTool) RemoveEmptyDirs(ctx context.Context, path string, dryRun bool) (rclone.Outcome, error) {
	m.record("rmdirs", path, dryRun)
	if m.RemoveEmptyDirsFunc != nil {
		return m.RemoveEmptyDirsFunc(ctx, path, dryRun)
	}
	return rclone.Outcome{Status: rclone.StatusOK}, nil
}

// DeleteFile mocks the exact-key delete.
func (m *MockSyncTool) DeleteFile(ctx context.Context, path string, dryRun bool) (rclone.Outcome, error) {
	m.record("deletefile", path, dryRun)
	if m.DeleteFileFunc != nil {
		return m.DeleteFileFunc(ctx, path, dryRun)
	}
	return rclone.Outcome{Status: rclone.StatusOK}, nil
}

// RecordingSleeper captures requested sleep durations without sleeping, so
// backoff and pacing behavior is assertable without wall-clock delays.
type RecordingSleeper struct {
	mu    sync.Mutex
	slept []time.Duration
}

// Sleep records the duration and returns immediately.
func (s *RecordingSleeper) Sleep(d time.Duration) {
	s.mu.Lock()
	s.slept = append(s.slept, d)
	s.mu.Unlock()
}

// Slept returns the recorded durations, in call order.
func (s *RecordingSleeper) Slept() []time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]time.Duration, len(s.slept))
	copy(out, s.slept)
	return out
}
