// Package config loads the environment catalog the CLI sweeps against.
//
// A config file declares named environments, each binding a bucket to a
// transport and its credentials. Credential values support ${VAR}
// expansion so secrets stay in the process environment rather than on
// disk.
package config

import (
	"fmt"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"

	sweeperrors "github.com/perigee-io/bucketsweep/errors"
)

// Transport names for Environment.Transport.
const (
	TransportHTTP = "http"
	TransportS3   = "s3"
)

var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// Duration decodes YAML duration strings like "30s" or "2m".
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var raw string
	if err := node.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Config is the root of the environment catalog.
type Config struct {
	DefaultEnv   string                  `yaml:"default_env"`
	Environments map[string]*Environment `yaml:"environments"`
}

// Environment describes one bucket and how to reach it.
type Environment struct {
	Transport string `yaml:"transport"`
	Bucket    string `yaml:"bucket"`
	Endpoint  string `yaml:"endpoint"`
	Region    string `yaml:"region"`

	// APIKey authenticates the HTTP transport; AccessKey/SecretKey
	// authenticate the S3 transport and the sync utility.
	APIKey    string `yaml:"api_key"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`

	// SyncProfile names a pre-existing sync utility profile. When empty an
	// ephemeral profile is generated from the credentials above.
	SyncProfile string `yaml:"sync_profile"`

	// FileExtensions overrides the extension allow-list used to reject
	// file-like folder candidates.
	FileExtensions []string `yaml:"file_extensions"`

	// Tuning knobs; zero means the engine default.
	PageWindow int      `yaml:"page_window"`
	PageLimit  int      `yaml:"page_limit"`
	BatchSize  int      `yaml:"batch_size"`
	Timeout    Duration `yaml:"timeout"`
}

// Load reads and parses an environment catalog from path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	return Parse(data)
}

// Parse parses a catalog from raw YAML, expanding ${VAR} references from
// the process environment.
func Parse(data []byte) (*Config, error) {
	expanded := envVarPattern.ReplaceAllStringFunc(string(data), func(match string) string {
		name := envVarPattern.FindStringSubmatch(match)[1]
		return os.Getenv(name)
	})

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Env resolves an environment by name, falling back to the catalog default
// when name is empty.
func (c *Config) Env(name string) (*Environment, error) {
	if name == "" {
		name = c.DefaultEnv
	}
	if name == "" {
		return nil, fmt.Errorf("no environment selected and no default_env set: %w", sweeperrors.ErrInvalidInput)
	}
	env, ok := c.Environments[name]
	if !ok {
		return nil, fmt.Errorf("unknown environment %q: %w", name, sweeperrors.ErrInvalidInput)
	}
	return env, nil
}

func (c *Config) validate() error {
	if len(c.Environments) == 0 {
		return fmt.Errorf("config declares no environments: %w", sweeperrors.ErrInvalidInput)
	}
	if c.DefaultEnv != "" {
		if _, ok := c.Environments[c.DefaultEnv]; !ok {
			return fmt.Errorf("default_env %q is not a declared environment: %w", c.DefaultEnv, sweeperrors.ErrInvalidInput)
		}
	}
	for name, env := range c.Environments {
		if env == nil {
			return fmt.Errorf("environment %q is empty: %w", name, sweeperrors.ErrInvalidInput)
		}
		if env.Bucket == "" {
			return fmt.Errorf("environment %q: bucket is required: %w", name, sweeperrors.ErrInvalidInput)
		}
		switch env.Transport {
		case "", TransportHTTP, TransportS3:
		default:
			return fmt.Errorf("environment %q: unknown transport %q: %w", name, env.Transport, sweeperrors.ErrInvalidInput)
		}
	}
	return nil
}
