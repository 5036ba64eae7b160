// Package classify discovers and verifies folder prefixes via the external
// sync utility.
//
// Directory-only listings from the sync utility can report phantom or empty
// prefixes, and its directory heuristic occasionally misreads a nested object
// key segment as a directory. Discovery therefore runs two phases: scan for
// candidates, then verify each with a shallow listing before anything is
// allowed to act on it destructively.
package classify

import (
	"context"
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/perigee-io/bucketsweep/internal/rclone"
	"github.com/perigee-io/bucketsweep/sweeptypes"
)

// DisplayLimit caps how many candidate paths FormatCandidates renders before
// collapsing the remainder into a count. Verification is never truncated.
const DisplayLimit = 20

// Lister is the subset of the sync tool the engine needs.
type Lister interface {
	ListDirs(ctx context.Context, dir string) (rclone.Outcome, error)
	ListShallow(ctx context.Context, dir string) (rclone.Outcome, error)
}

// Engine classifies folder candidates under a base prefix.
type Engine struct {
	tool       Lister
	extensions map[string]struct{}
	log        zerolog.Logger
}

// New creates a classification engine. extensions is the lowercase
// dot-less allow-list of file extensions used to reject file-like segments;
// nil selects sweeptypes.DefaultFileExtensions.
func New(tool Lister, extensions []string, log zerolog.Logger) *Engine {
	if extensions == nil {
		extensions = sweeptypes.DefaultFileExtensions()
	}
	set := make(map[string]struct{}, len(extensions))
	for _, ext := range extensions {
		set[strings.ToLower(ext)] = struct{}{}
	}
	return &Engine{tool: tool, extensions: set, log: log}
}

// DiscoverFolders lists directories recursively under baseFolder, drops
// file-like segments, verifies each survivor and returns the verified paths
// sorted. A missing base folder yields an empty result, not an error.
func (e *Engine) DiscoverFolders(ctx context.Context, baseFolder string) ([]string, error) {
	base := strings.Trim(baseFolder, "/")

	outcome, err := e.tool.ListDirs(ctx, base)
	if err != nil {
		return nil, err
	}
	switch outcome.Status {
	case rclone.StatusNotFound:
		return nil, nil
	case rclone.StatusFailed:
		return nil, rclone.FailedError("discoverFolders", outcome)
	}

	seen := make(map[string]struct{})
	var candidates []string
	for _, line := range outcome.Lines {
		candidate := e.normalize(base, line)
		if candidate == "" {
			continue
		}
		if e.HasFileExtension(candidate) {
			e.log.Debug().Str("path", candidate).Msg("rejecting file-like segment")
			continue
		}
		if _, dup := seen[candidate]; dup {
			continue
		}
		seen[candidate] = struct{}{}
		candidates = append(candidates, candidate)
	}

	var verified []string
	for _, candidate := range candidates {
		ok, err := e.VerifyFolder(ctx, candidate)
		if err != nil {
			return nil, err
		}
		if !ok {
			e.log.Debug().Str("path", candidate).Msg("skipping unverified candidate")
			continue
		}
		verified = append(verified, candidate)
	}

	sort.Strings(verified)
	return verified, nil
}

// VerifyFolder reports whether a shallow listing of dir contains at least
// one leaf object. Subdirectory markers alone do not verify: deleting a
// prefix that holds only further empty structure is handled elsewhere, and a
// phantom prefix must never look deletable.
func (e *Engine) VerifyFolder(ctx context.Context, dir string) (bool, error) {
	outcome, err := e.tool.ListShallow(ctx, dir)
	if err != nil {
		return false, err
	}
	switch outcome.Status {
	case rclone.StatusNotFound:
		return false, nil
	case rclone.StatusFailed:
		return false, rclone.FailedError("verifyFolder", outcome)
	}
	for _, line := range outcome.Lines {
		if !strings.HasSuffix(line, "/") {
			return true, nil
		}
	}
	return false, nil
}

// HasFileExtension reports whether the final segment of p ends in one of
// the configured file extensions.
func (e *Engine) HasFileExtension(p string) bool {
	ext := strings.TrimPrefix(path.Ext(path.Base(p)), ".")
	if ext == "" {
		return false
	}
	_, ok := e.extensions[strings.ToLower(ext)]
	return ok
}

// normalize resolves a listing line to a full bucket-relative path under
// base. The sync utility sometimes returns paths already carrying the base
// prefix and sometimes relative to it.
func (e *Engine) normalize(base, line string) string {
	p := strings.Trim(strings.TrimSpace(line), "/")
	if p == "" || p == base {
		return ""
	}
	if base == "" || strings.HasPrefix(p, base+"/") {
		return p
	}
	return base + "/" + p
}

// FormatCandidates renders candidate paths for operator display, showing at
// most DisplayLimit entries plus a remainder count.
func FormatCandidates(paths []string) string {
	if len(paths) <= DisplayLimit {
		return strings.Join(paths, "\n")
	}
	shown := strings.Join(paths[:DisplayLimit], "\n")
	return fmt.Sprintf("%s\n... and %d more", shown, len(paths)-DisplayLimit)
}
