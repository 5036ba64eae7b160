// Package storeapi defines the object-store interface the engine operates
// against, decoupling it from the wire transport (provider HTTP API or
// S3-compatible endpoint) and enabling mocking in tests.
package storeapi

import (
	"context"

	"github.com/perigee-io/bucketsweep/sweeptypes"
)

// Store is the minimal object-store surface the pruning engine needs.
//
// Implementations must translate transport-level signals into the sentinel
// errors of the errors package: rate-limit responses become ErrRateLimited,
// missing objects become ErrNotFound (DeleteObject treats those as success
// and returns nil), undecodable payloads become ErrMalformedResponse.
type Store interface {
	// ListPage fetches one page of object entries under prefix. An empty
	// cursor requests the first page. The returned page's cursor is empty
	// when the listing is exhausted.
	ListPage(ctx context.Context, bucket, prefix, cursor string) (*sweeptypes.Page, error)

	// DeleteObject deletes a single key. Deleting an absent key succeeds
	// (idempotent delete).
	DeleteObject(ctx context.Context, bucket, key string) error
}
