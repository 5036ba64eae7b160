package bucketsweep

import (
	"context"

	"github.com/perigee-io/bucketsweep/internal/operations/classify"
	"github.com/perigee-io/bucketsweep/internal/rclone"
)

// DiscoverFolders lists folder prefixes recursively under baseFolder and
// returns only the verified ones, sorted. A candidate is verified when a
// shallow listing finds at least one leaf object under it; phantom and
// empty prefixes reported by the sync utility never survive discovery.
func (c *Client) DiscoverFolders(ctx context.Context, baseFolder string) ([]string, error) {
	var folders []string
	err := c.withTool(func(tool *rclone.Tool) error {
		engine := classify.New(tool, c.cfg.FileExtensions, c.log)
		found, err := engine.DiscoverFolders(ctx, baseFolder)
		folders = found
		return err
	})
	return folders, err
}

// FormatFolders renders discovered folder paths for display, collapsing
// large sets into the first entries plus a remainder count. Display
// truncation never affects which candidates were verified.
func FormatFolders(paths []string) string {
	return classify.FormatCandidates(paths)
}
