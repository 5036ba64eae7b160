// Package sweeptypes provides shared type definitions for the bucketsweep module.
package sweeptypes

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// Mode selects the deletion strategy applied to a target path.
type Mode string

// Deletion strategies
const (
	// ModeRecursive deletes all nested keys plus structural markers under the path
	ModeRecursive Mode = "recursive"

	// ModeFilesOnly deletes only depth-1 leaf objects, preserving folder structure
	ModeFilesOnly Mode = "files-only"

	// ModeFoldersOnly deletes files under a verified folder and purges its structure,
	// preserving leaf objects outside it
	ModeFoldersOnly Mode = "folders-only"
)

// WildcardSuffix marks a target path as a files-only request ("path/*").
const WildcardSuffix = "/*"

// ObjectEntry represents a single object in a bucket listing.
// Entries are a live snapshot taken at list time, never cached across runs.
type ObjectEntry struct {
	// Key is the object key (path), unique within a bucket
	Key string

	// Size is the object size in bytes
	Size int64

	// LastModified is when the object was last modified
	LastModified time.Time

	// ETag is the entity tag for the object
	ETag string
}

// Page is one page of a cursor-paginated listing.
// An empty Cursor means the listing is exhausted.
type Page struct {
	// Entries is the ordered sequence of objects in this page
	Entries []ObjectEntry

	// Cursor is the opaque continuation token, empty when exhausted
	Cursor string
}

// Listing is the accumulated result of walking every page under a prefix.
type Listing struct {
	// Entries is the union of all pages' entries
	Entries []ObjectEntry

	// Pages is the number of pages fetched
	Pages int

	// Retries counts page fetches that were retried after a rate-limit signal
	Retries int

	// Truncated is set when the page ceiling aborted the walk with a partial result
	Truncated bool

	// Duration is how long the full walk took
	Duration time.Duration
}

// FolderCandidate is a folder path derived from a directory listing.
// A candidate becomes verified only after at least one nested non-directory
// entry is found under it; unverified candidates are never deleted.
type FolderCandidate struct {
	// Path is the folder prefix, without a trailing slash
	Path string

	// Verified reports whether a nested leaf object was found under Path
	Verified bool
}

// Target is one deletion request. Mode is fixed for the lifetime of the
// request and never inferred mid-operation.
type Target struct {
	// Path is the object key or folder prefix to delete
	Path string

	// Mode is the deletion strategy
	Mode Mode

	// DryRun simulates the operation: identical scan/verification output,
	// zero mutations
	DryRun bool
}

// ItemError records a single failed sub-operation within a deletion.
type ItemError struct {
	// Path is the key or prefix that failed
	Path string

	// Err is the underlying error
	Err error
}

// Result aggregates the outcome of one deletion target bottom-up from its
// sub-operations. Contributing steps append, never replace.
type Result struct {
	// Deleted is the number of objects removed (or that would be, under dry-run)
	Deleted int

	// Failed is the number of objects that could not be removed
	Failed int

	// Skipped is set when a guard trip turned the target into a no-op
	Skipped bool

	// Duration is how long the target took end to end
	Duration time.Duration

	// Errors holds the per-item failures
	Errors []ItemError
}

// Merge folds another result's counters and errors into r.
func (r *Result) Merge(other *Result) {
	if other == nil {
		return
	}
	r.Deleted += other.Deleted
	r.Failed += other.Failed
	r.Errors = append(r.Errors, other.Errors...)
}

// AddError records a failed item and bumps the failure counter.
func (r *Result) AddError(path string, err error) {
	r.Failed++
	r.Errors = append(r.Errors, ItemError{Path: path, Err: err})
}

// TargetResult pairs a target with its outcome in a multi-target run.
type TargetResult struct {
	// Target is the deletion request
	Target Target

	// Result is its outcome; nil when Err is set
	Result *Result

	// Err is a hard failure that aborted this target (siblings continue)
	Err error
}

// Summary is the aggregate outcome of a multi-target run.
type Summary struct {
	// Targets holds the per-target outcomes in request order
	Targets []TargetResult

	// Duration is how long the whole run took
	Duration time.Duration
}

// Failed reports whether any target failed hard or recorded item failures.
func (s *Summary) Failed() bool {
	for _, t := range s.Targets {
		if t.Err != nil {
			return true
		}
		if t.Result != nil && t.Result.Failed > 0 {
			return true
		}
	}
	return false
}

// ProgressFunc is invoked after every completed batch with cumulative totals.
type ProgressFunc func(deleted, failed int)

// Sleeper abstracts backoff and pacing delays so tests can run without
// wall-clock sleeps.
type Sleeper func(d time.Duration)

// Transport selects the wire protocol used to reach the object store.
type Transport string

// Supported transports
const (
	// TransportHTTP speaks the provider's HTTP JSON object API
	TransportHTTP Transport = "http"

	// TransportS3 speaks the S3 wire protocol
	TransportS3 Transport = "s3"
)

// ClientConfig holds the internal configuration built from Options.
type ClientConfig struct {
	// Bucket is the bucket all operations run against
	Bucket string

	// Transport selects the store wire protocol; defaults to TransportHTTP
	Transport Transport

	// APIKey authenticates the HTTP transport
	APIKey string

	// AccessKey and SecretKey authenticate the S3 transport and the sync
	// utility's ephemeral profile
	AccessKey string
	SecretKey string

	// SyncProfile names a pre-existing sync utility profile; when empty an
	// ephemeral profile is generated per target from the credentials above
	SyncProfile string

	// SyncBinary overrides the sync utility executable name
	SyncBinary string

	// Progress is invoked after every completed delete batch
	Progress ProgressFunc

	// Region is the store region, for S3-wire transports
	Region string

	// Endpoint is a custom store endpoint URL
	Endpoint string

	// ForcePathStyle forces path-style addressing on S3-wire transports
	ForcePathStyle bool

	// Timeout bounds individual store requests (0 = none)
	Timeout time.Duration

	// HTTPClient overrides the HTTP client used by the store transport
	HTTPClient *http.Client

	// PageWindow is the number of concurrently in-flight page fetches
	PageWindow int

	// PageLimit is the hard ceiling on pages per listing walk
	PageLimit int

	// BatchSize is the batch fan-out concurrency
	BatchSize int

	// BackoffBase is the first rate-limit retry delay (doubles per attempt)
	BackoffBase time.Duration

	// PacingDelay is the fixed delay between cursor-advance dispatches
	PacingDelay time.Duration

	// BatchDelay is the fixed delay between delete batches
	BatchDelay time.Duration

	// FileExtensions is the allow-list used to reject file-like folder candidates
	FileExtensions []string

	// Logger receives structured operation logs
	Logger zerolog.Logger

	// Sleep is the delay implementation; defaults to time.Sleep
	Sleep Sleeper
}

// Option is a functional option for configuring the client.
type Option func(*ClientConfig)

// DefaultFileExtensions is the built-in allow-list of trailing extensions
// that mark a candidate path as a file rather than a folder.
func DefaultFileExtensions() []string {
	return []string{"webp", "png", "json", "jpg", "jpeg", "gif", "pdf", "txt", "zip"}
}
