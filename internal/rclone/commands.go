package rclone

import (
	"context"
	"errors"
	"strings"

	sweeperrors "github.com/perigee-io/bucketsweep/errors"
)

// Tool wraps the runner with the subcommands the pruning protocols use,
// scoped to one remote and bucket.
type Tool struct {
	runner     Runner
	remote     string
	bucket     string
	configPath string
}

// NewTool creates a tool bound to a remote name and bucket. configPath, when
// non-empty, points at a materialized connection profile and is passed to
// every invocation.
func NewTool(runner Runner, remote, bucket, configPath string) *Tool {
	return &Tool{
		runner:     runner,
		remote:     remote,
		bucket:     bucket,
		configPath: configPath,
	}
}

// target builds the remote:bucket/path argument.
func (t *Tool) target(path string) string {
	ref := t.remote + ":" + t.bucket
	if path != "" {
		ref += "/" + strings.TrimPrefix(path, "/")
	}
	return ref
}

// invoke runs a subcommand and classifies the result.
func (t *Tool) invoke(ctx context.Context, args []string) (Outcome, error) {
	if t.configPath != "" {
		args = append(args, "--config", t.configPath)
	}
	result, err := t.runner.Run(ctx, args...)
	if err != nil {
		return Outcome{}, err
	}
	return Classify(result), nil
}

// ListDirs returns the recursive directories-only listing under path.
// Each returned line is a directory path relative to path.
func (t *Tool) ListDirs(ctx context.Context, path string) (Outcome, error) {
	outcome, err := t.invoke(ctx, []string{"lsd", "-R", t.target(path)})
	if err != nil {
		return Outcome{}, err
	}
	if outcome.Status == StatusOK {
		outcome.Lines = parseDirListing(outcome.Lines)
	}
	return outcome, nil
}

// ListShallow returns the depth-1 listing of path. Directory entries end in
// "/", leaf objects do not.
func (t *Tool) ListShallow(ctx context.Context, path string) (Outcome, error) {
	return t.invoke(ctx, []string{"lsf", "--max-depth", "1", t.target(path)})
}

// DeleteByPattern deletes objects under path matching the include pattern.
func (t *Tool) DeleteByPattern(ctx context.Context, path, pattern string, dryRun bool) (Outcome, error) {
	args := []string{"delete", t.target(path), "--include", pattern}
	if dryRun {
		args = append(args, "--dry-run")
	}
	return t.invoke(ctx, args)
}

// Purge removes path and all of its contents, markers included.
func (t *Tool) Purge(ctx context.Context, path string, dryRun bool) (Outcome, error) {
	args := []string{"purge", t.target(path)}
	if dryRun {
		args = append(args, "--dry-run")
	}
	return t.invoke(ctx, args)
}

// RemoveEmptyDirs removes residual empty-directory markers under path.
func (t *Tool) RemoveEmptyDirs(ctx context.Context, path string, dryRun bool) (Outcome, error) {
	args := []string{"rmdirs", t.target(path)}
	if dryRun {
		args = append(args, "--dry-run")
	}
	return t.invoke(ctx, args)
}

// DeleteFile deletes a single object by exact key, used as the secondary
// best-effort marker removal.
func (t *Tool) DeleteFile(ctx context.Context, path string, dryRun bool) (Outcome, error) {
	args := []string{"deletefile", t.target(path)}
	if dryRun {
		args = append(args, "--dry-run")
	}
	return t.invoke(ctx, args)
}

// FailedError converts a failed outcome into a typed error.
func FailedError(op string, outcome Outcome) error {
	msg := outcome.Message
	if msg == "" {
		msg = "sync utility command failed"
	}
	return sweeperrors.NewError(op, errors.New(msg))
}

// parseDirListing extracts directory paths from lsd output lines. Each line
// carries size and timestamp columns before the name; names may contain
// spaces, so everything past the fixed columns is the path.
func parseDirListing(lines []string) []string {
	dirs := make([]string, 0, len(lines))
	for _, line := range lines {
		fields := strings.Fields(line)
		if len(fields) < 5 {
			continue
		}
		dirs = append(dirs, strings.Join(fields[4:], " "))
	}
	return dirs
}
