// Package bucketsweep provides functional options for configuring client behavior.
package bucketsweep

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/perigee-io/bucketsweep/sweeptypes"
)

// WithBucket sets the bucket all operations run against. Required.
func WithBucket(bucket string) sweeptypes.Option {
	return func(c *sweeptypes.ClientConfig) {
		c.Bucket = bucket
	}
}

// WithTransport selects the store wire protocol.
// Default is the provider HTTP JSON API.
func WithTransport(transport sweeptypes.Transport) sweeptypes.Option {
	return func(c *sweeptypes.ClientConfig) {
		c.Transport = transport
	}
}

// WithEndpoint sets the store endpoint URL. Required for the HTTP
// transport; optional for S3-compatible services on the S3 transport.
func WithEndpoint(endpoint string) sweeptypes.Option {
	return func(c *sweeptypes.ClientConfig) {
		c.Endpoint = endpoint
	}
}

// WithRegion sets the store region for the S3 transport.
func WithRegion(region string) sweeptypes.Option {
	return func(c *sweeptypes.ClientConfig) {
		c.Region = region
	}
}

// WithAPIKey sets the bearer credential for the HTTP transport.
func WithAPIKey(key string) sweeptypes.Option {
	return func(c *sweeptypes.ClientConfig) {
		c.APIKey = key
	}
}

// WithCredentials sets the access key pair used by the S3 transport and by
// ephemeral sync utility profiles.
func WithCredentials(accessKey, secretKey string) sweeptypes.Option {
	return func(c *sweeptypes.ClientConfig) {
		c.AccessKey = accessKey
		c.SecretKey = secretKey
	}
}

// WithSyncProfile names a pre-existing sync utility profile to use instead
// of generating an ephemeral one per target.
func WithSyncProfile(profile string) sweeptypes.Option {
	return func(c *sweeptypes.ClientConfig) {
		c.SyncProfile = profile
	}
}

// WithSyncBinary overrides the sync utility executable name.
func WithSyncBinary(binary string) sweeptypes.Option {
	return func(c *sweeptypes.ClientConfig) {
		c.SyncBinary = binary
	}
}

// WithForcePathStyle forces path-style URLs on the S3 transport.
// Required by most S3-compatible services.
func WithForcePathStyle(force bool) sweeptypes.Option {
	return func(c *sweeptypes.ClientConfig) {
		c.ForcePathStyle = force
	}
}

// WithTimeout bounds individual store requests. Default is no timeout.
func WithTimeout(timeout time.Duration) sweeptypes.Option {
	return func(c *sweeptypes.ClientConfig) {
		c.Timeout = timeout
	}
}

// WithHTTPClient overrides the HTTP client used by the store transport.
func WithHTTPClient(client *http.Client) sweeptypes.Option {
	return func(c *sweeptypes.ClientConfig) {
		c.HTTPClient = client
	}
}

// WithPageWindow sets the number of concurrently in-flight page fetches
// during listing walks. Default is 3.
func WithPageWindow(window int) sweeptypes.Option {
	return func(c *sweeptypes.ClientConfig) {
		if window > 0 {
			c.PageWindow = window
		}
	}
}

// WithPageLimit sets the hard ceiling on pages per listing walk. Walks
// hitting the ceiling return a partial result. Default is 10000.
func WithPageLimit(limit int) sweeptypes.Option {
	return func(c *sweeptypes.ClientConfig) {
		if limit > 0 {
			c.PageLimit = limit
		}
	}
}

// WithBatchSize sets the delete fan-out concurrency. Default is 10.
func WithBatchSize(size int) sweeptypes.Option {
	return func(c *sweeptypes.ClientConfig) {
		if size > 0 {
			c.BatchSize = size
		}
	}
}

// WithFileExtensions replaces the extension allow-list used to reject
// file-like folder candidates. A folder literally named like a file (for
// example "archive.zip") is skipped under the default list; narrowing the
// list here is the escape hatch.
func WithFileExtensions(extensions []string) sweeptypes.Option {
	return func(c *sweeptypes.ClientConfig) {
		c.FileExtensions = extensions
	}
}

// WithProgress registers a callback invoked after every completed delete
// batch with cumulative totals.
func WithProgress(fn sweeptypes.ProgressFunc) sweeptypes.Option {
	return func(c *sweeptypes.ClientConfig) {
		c.Progress = fn
	}
}

// WithLogger sets the structured logger. Default discards all logs.
func WithLogger(log zerolog.Logger) sweeptypes.Option {
	return func(c *sweeptypes.ClientConfig) {
		c.Logger = log
	}
}

// WithSleeper overrides the delay implementation used for backoff and
// pacing. Intended for tests.
func WithSleeper(sleep sweeptypes.Sleeper) sweeptypes.Option {
	return func(c *sweeptypes.ClientConfig) {
		c.Sleep = sleep
	}
}
