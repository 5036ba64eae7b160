package bucketsweep

import (
	"context"
	"strings"
	"time"

	"github.com/perigee-io/bucketsweep/internal/operations/classify"
	"github.com/perigee-io/bucketsweep/internal/operations/prune"
	"github.com/perigee-io/bucketsweep/internal/rclone"
	"github.com/perigee-io/bucketsweep/sweeptypes"
)

// Prune runs the deletion protocol for a single target. The sync utility
// profile backing the target is resolved fresh and any ephemeral
// credential artifact is removed when the target completes, on both
// success and failure paths.
func (c *Client) Prune(ctx context.Context, target sweeptypes.Target) (*sweeptypes.Result, error) {
	var result *sweeptypes.Result
	err := c.withTool(func(tool *rclone.Tool) error {
		orch := prune.New(prune.Config{
			Store:    c.store,
			Tool:     tool,
			Scanner:  c.lister,
			Verifier: classify.New(tool, c.cfg.FileExtensions, c.log),
			Batch:    c.batch,
			Bucket:   c.cfg.Bucket,
			Progress: c.cfg.Progress,
			Logger:   c.log,
		})
		var err error
		result, err = orch.Run(ctx, target)
		return err
	})
	return result, err
}

// PruneAll processes targets strictly sequentially, never interleaving two
// targets' protocols. A hard failure aborts only its own target; siblings
// still run, and the summary reports every outcome.
func (c *Client) PruneAll(ctx context.Context, targets []sweeptypes.Target) *sweeptypes.Summary {
	start := time.Now()
	summary := &sweeptypes.Summary{}

	for _, target := range targets {
		result, err := c.Prune(ctx, target)
		if err != nil {
			c.log.Error().Str("path", target.Path).Err(err).Msg("target failed")
		}
		summary.Targets = append(summary.Targets, sweeptypes.TargetResult{
			Target: target,
			Result: result,
			Err:    err,
		})
	}

	summary.Duration = time.Since(start)
	return summary
}

// ResolveMode picks the deletion mode for a raw target path. A trailing
// wildcard marker selects files-only; the explicit flags override the
// recursive default otherwise.
func ResolveMode(path string, filesOnly, foldersOnly bool) sweeptypes.Mode {
	if filesOnly || strings.HasSuffix(path, sweeptypes.WildcardSuffix) {
		return sweeptypes.ModeFilesOnly
	}
	if foldersOnly {
		return sweeptypes.ModeFoldersOnly
	}
	return sweeptypes.ModeRecursive
}
