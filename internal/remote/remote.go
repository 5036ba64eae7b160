// Package remote resolves connection profiles for the sync utility.
//
// A handle either names a pre-existing configured remote, or owns a freshly
// materialized temporary profile built from access keys. Ephemeral profiles
// are namespaced per invocation so concurrent engine runs never collide, and
// are removed exactly once regardless of how the operation that created them
// ends.
package remote

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"

	sweeperrors "github.com/perigee-io/bucketsweep/errors"
)

// Config holds the inputs for resolving a handle.
type Config struct {
	// Profile names a pre-existing remote; when set, no artifact is created
	Profile string

	// Endpoint, AccessKey and SecretKey materialize an ephemeral profile when
	// Profile is empty
	Endpoint  string
	AccessKey string
	SecretKey string

	// Region is optional and only meaningful for region-aware endpoints
	Region string

	// Dir is where ephemeral profiles are staged; os.TempDir() when empty
	Dir string
}

// Handle is a resolved connection profile.
type Handle struct {
	// Name is the remote name used in remote:bucket/path references
	Name string

	// ConfigPath is the materialized profile file, empty for pre-existing remotes
	ConfigPath string

	ephemeral bool
	cleanup   sync.Once
}

// Ephemeral reports whether the handle owns a temporary credential artifact.
func (h *Handle) Ephemeral() bool {
	return h.ephemeral
}

// Cleanup deletes the ephemeral credential artifact. Safe to call multiple
// times; the artifact is removed exactly once. A no-op for pre-existing
// profiles.
func (h *Handle) Cleanup() error {
	var err error
	h.cleanup.Do(func() {
		if h.ephemeral && h.ConfigPath != "" {
			if removeErr := os.Remove(h.ConfigPath); removeErr != nil && !os.IsNotExist(removeErr) {
				err = removeErr
			}
		}
	})
	return err
}

// Resolve produces a handle from the given config, reusing a pre-existing
// profile when one is named and otherwise materializing an ephemeral one.
func Resolve(cfg Config) (*Handle, error) {
	if cfg.Profile != "" {
		return &Handle{Name: cfg.Profile}, nil
	}

	if cfg.Endpoint == "" || cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, sweeperrors.NewError("resolve", sweeperrors.ErrMissingCredentials).
			WithMessage("no profile name and incomplete access keys")
	}

	dir := cfg.Dir
	if dir == "" {
		dir = os.TempDir()
	}

	// Short suffix keeps remote names readable in logs while still avoiding
	// collisions between concurrent invocations.
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	name := "sweep-" + suffix
	path := filepath.Join(dir, "bucketsweep-"+suffix+".conf")

	var b strings.Builder
	fmt.Fprintf(&b, "[%s]\n", name)
	b.WriteString("type = s3\n")
	b.WriteString("provider = Other\n")
	fmt.Fprintf(&b, "endpoint = %s\n", cfg.Endpoint)
	fmt.Fprintf(&b, "access_key_id = %s\n", cfg.AccessKey)
	fmt.Fprintf(&b, "secret_access_key = %s\n", cfg.SecretKey)
	if cfg.Region != "" {
		fmt.Fprintf(&b, "region = %s\n", cfg.Region)
	}

	if err := os.WriteFile(path, []byte(b.String()), 0o600); err != nil {
		return nil, sweeperrors.NewError("resolve", err).
			WithMessage("write ephemeral profile")
	}

	return &Handle{Name: name, ConfigPath: path, ephemeral: true}, nil
}
