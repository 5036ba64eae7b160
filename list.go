package bucketsweep

import (
	"context"

	"github.com/perigee-io/bucketsweep/sweeptypes"
)

// ListPage fetches a single listing page under prefix. An empty cursor
// starts the walk; the returned page's cursor continues it. Rate-limited
// fetches are retried with backoff before an error surfaces.
func (c *Client) ListPage(ctx context.Context, prefix, cursor string) (*sweeptypes.Page, error) {
	return c.lister.ListPage(ctx, c.cfg.Bucket, prefix, cursor)
}

// ListAll walks every page under prefix and returns the union of entries.
// Up to the configured page window of fetches run concurrently. When the
// page ceiling is hit the partial listing is returned together with
// errors.ErrPageLimitExceeded.
func (c *Client) ListAll(ctx context.Context, prefix string) (*sweeptypes.Listing, error) {
	return c.lister.ListAll(ctx, c.cfg.Bucket, prefix)
}
