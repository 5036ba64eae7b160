package bucketsweep

import (
	"context"

	"github.com/perigee-io/bucketsweep/sweeptypes"
)

// DeleteMany deletes the given keys in fixed-size concurrent batches,
// pausing briefly between batches. Per-key failures accumulate in the
// result and never abort the run; deleting an already-absent key counts
// as success.
func (c *Client) DeleteMany(ctx context.Context, keys []string) *sweeptypes.Result {
	return c.batch.DeleteMany(ctx, c.cfg.Bucket, keys, c.cfg.Progress)
}
