// Package prune implements the per-target deletion orchestrator.
//
// Each target runs one of three fixed protocols selected by mode; the mode
// never changes mid-target. Dry-run propagates into every mutating sub-step
// and produces the same scan and verification output as a live run.
package prune

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	sweeperrors "github.com/perigee-io/bucketsweep/errors"
	"github.com/perigee-io/bucketsweep/internal/rclone"
	"github.com/perigee-io/bucketsweep/sweeptypes"
)

// SyncTool is the subset of the sync utility the orchestrator drives.
type SyncTool interface {
	ListShallow(ctx context.Context, path string) (rclone.Outcome, error)
	DeleteByPattern(ctx context.Context, path, pattern string, dryRun bool) (rclone.Outcome, error)
	Purge(ctx context.Context, path string, dryRun bool) (rclone.Outcome, error)
	RemoveEmptyDirs(ctx context.Context, path string, dryRun bool) (rclone.Outcome, error)
	DeleteFile(ctx context.Context, path string, dryRun bool) (rclone.Outcome, error)
}

// MarkerStore deletes single objects through the store API; used for the
// direct folder-marker delete where the sync utility is unreliable.
type MarkerStore interface {
	DeleteObject(ctx context.Context, bucket, key string) error
}

// Scanner enumerates objects under a prefix; used to count what a target
// covers so results carry totals under both live and dry runs.
type Scanner interface {
	ListAll(ctx context.Context, bucket, prefix string) (*sweeptypes.Listing, error)
}

// Verifier gates folders-only targets the same way folder discovery does.
type Verifier interface {
	VerifyFolder(ctx context.Context, dir string) (bool, error)
	HasFileExtension(p string) bool
}

// BatchDeleter fans individual key deletions out through the store API.
type BatchDeleter interface {
	DeleteMany(ctx context.Context, bucket string, keys []string, progress sweeptypes.ProgressFunc) *sweeptypes.Result
}

// Orchestrator runs deletion targets against one bucket.
type Orchestrator struct {
	store    MarkerStore
	tool     SyncTool
	scanner  Scanner
	verifier Verifier
	batch    BatchDeleter
	bucket   string
	progress sweeptypes.ProgressFunc
	log      zerolog.Logger
}

// Config wires an orchestrator.
type Config struct {
	Store    MarkerStore
	Tool     SyncTool
	Scanner  Scanner
	Verifier Verifier
	Batch    BatchDeleter
	Bucket   string
	Progress sweeptypes.ProgressFunc
	Logger   zerolog.Logger
}

// New creates an orchestrator.
func New(cfg Config) *Orchestrator {
	return &Orchestrator{
		store:    cfg.Store,
		tool:     cfg.Tool,
		scanner:  cfg.Scanner,
		verifier: cfg.Verifier,
		batch:    cfg.Batch,
		bucket:   cfg.Bucket,
		progress: cfg.Progress,
		log:      cfg.Logger,
	}
}

// Run executes the protocol for a single target and reports what it
// removed. Hard failures abort this target only; callers running several
// targets proceed to the next one.
func (o *Orchestrator) Run(ctx context.Context, target sweeptypes.Target) (*sweeptypes.Result, error) {
	start := time.Now()

	var (
		result *sweeptypes.Result
		err    error
	)
	switch target.Mode {
	case sweeptypes.ModeFilesOnly:
		result, err = o.filesOnly(ctx, target.Path, target.DryRun)
	case sweeptypes.ModeFoldersOnly:
		result, err = o.foldersOnly(ctx, target.Path, target.DryRun)
	case sweeptypes.ModeRecursive:
		result, err = o.recursive(ctx, target.Path, target.DryRun)
	default:
		return nil, sweeperrors.NewPathError("prune", o.bucket, target.Path, sweeperrors.ErrInvalidInput)
	}
	if result != nil {
		result.Duration = time.Since(start)
	}
	return result, err
}

// recursive removes everything under path: purge first, then best-effort
// cleanup of residual markers.
func (o *Orchestrator) recursive(ctx context.Context, path string, dryRun bool) (*sweeptypes.Result, error) {
	const op = "recursive"
	path = strings.Trim(path, "/")
	result := &sweeptypes.Result{}

	// A truncated scan still yields a usable count floor; purge does not
	// depend on it.
	listing, err := o.scanner.ListAll(ctx, o.bucket, path+"/")
	if err != nil && !errors.Is(err, sweeperrors.ErrPageLimitExceeded) {
		return result, err
	}

	outcome, err := o.tool.Purge(ctx, path, dryRun)
	if err != nil {
		return result, err
	}
	switch outcome.Status {
	case rclone.StatusFailed:
		return result, rclone.FailedError(op, outcome)
	case rclone.StatusNotFound:
		// Already absent counts as success.
		return result, nil
	}
	result.Deleted += len(listing.Entries)

	if !dryRun {
		if out, err := o.tool.RemoveEmptyDirs(ctx, path, dryRun); err != nil || out.Status == rclone.StatusFailed {
			o.log.Warn().Str("path", path).Msg("residual directory marker cleanup failed")
		}
	}

	// The exact-key folder marker is not always visible to the sync
	// utility; hit it through the store API directly, then once more via
	// the utility for providers that keep empty-prefix ghosts.
	if !dryRun {
		if err := o.store.DeleteObject(ctx, o.bucket, path+"/"); err != nil && !sweeperrors.IsNotFound(err) {
			o.log.Warn().Str("path", path).Err(err).Msg("folder marker delete failed")
		}
	}
	if out, err := o.tool.DeleteFile(ctx, path+"/", dryRun); err == nil && out.Status == rclone.StatusOK {
		o.log.Debug().Str("path", path).Msg("secondary folder marker removed")
	}

	return result, nil
}

// filesOnly deletes depth-1 leaf entries under the path, leaving directory
// structure untouched. The path carries the trailing wildcard marker.
func (o *Orchestrator) filesOnly(ctx context.Context, path string, dryRun bool) (*sweeptypes.Result, error) {
	const op = "filesOnly"
	base := strings.Trim(strings.TrimSuffix(path, sweeptypes.WildcardSuffix), "/")
	result := &sweeptypes.Result{}

	outcome, err := o.tool.ListShallow(ctx, base)
	if err != nil {
		return result, err
	}
	switch outcome.Status {
	case rclone.StatusNotFound:
		return result, nil
	case rclone.StatusFailed:
		return result, rclone.FailedError(op, outcome)
	}

	var keys []string
	for _, line := range outcome.Lines {
		if strings.HasSuffix(line, "/") {
			continue
		}
		keys = append(keys, base+"/"+line)
	}
	if len(keys) == 0 {
		return result, nil
	}

	if dryRun {
		result.Deleted = len(keys)
		return result, nil
	}

	result.Merge(o.batch.DeleteMany(ctx, o.bucket, keys, o.progress))
	return result, nil
}

// foldersOnly removes a directory prefix only after the same verification
// folder discovery uses confirms it holds at least one leaf object. A
// file-like final segment or an unverified prefix skips as a no-op.
func (o *Orchestrator) foldersOnly(ctx context.Context, path string, dryRun bool) (*sweeptypes.Result, error) {
	const op = "foldersOnly"
	path = strings.Trim(path, "/")
	result := &sweeptypes.Result{}

	if o.verifier.HasFileExtension(path) {
		o.log.Info().Str("path", path).Msg("skipping file-like target")
		result.Skipped = true
		return result, nil
	}

	verified, err := o.verifier.VerifyFolder(ctx, path)
	if err != nil {
		return result, err
	}
	if !verified {
		o.log.Info().Str("path", path).Msg("skipping unverified target")
		result.Skipped = true
		return result, nil
	}

	listing, err := o.scanner.ListAll(ctx, o.bucket, path+"/")
	if err != nil && !errors.Is(err, sweeperrors.ErrPageLimitExceeded) {
		return result, err
	}

	outcome, err := o.tool.DeleteByPattern(ctx, path, "**", dryRun)
	if err != nil {
		return result, err
	}
	switch outcome.Status {
	case rclone.StatusFailed:
		return result, rclone.FailedError(op, outcome)
	case rclone.StatusOK:
		result.Deleted += len(listing.Entries)
	}

	// Content is gone; structure cleanup failures are non-fatal from here.
	if out, err := o.tool.Purge(ctx, path, dryRun); err != nil || out.Status == rclone.StatusFailed {
		o.log.Warn().Str("path", path).Msg("structure purge failed after file deletion")
	}
	if !dryRun {
		if out, err := o.tool.RemoveEmptyDirs(ctx, path, dryRun); err != nil || out.Status == rclone.StatusFailed {
			o.log.Warn().Str("path", path).Msg("residual directory marker cleanup failed")
		}
	}

	return result, nil
}
