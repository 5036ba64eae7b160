// Package bucketsweep provides client initialization and configuration.
package bucketsweep

import (
	"context"
	"net/http"
	"os"

	"github.com/rs/zerolog"

	sweeperrors "github.com/perigee-io/bucketsweep/errors"
	"github.com/perigee-io/bucketsweep/internal/operations/batchdel"
	"github.com/perigee-io/bucketsweep/internal/operations/listing"
	"github.com/perigee-io/bucketsweep/internal/rclone"
	"github.com/perigee-io/bucketsweep/internal/remote"
	"github.com/perigee-io/bucketsweep/internal/store/httpstore"
	"github.com/perigee-io/bucketsweep/internal/store/s3store"
	"github.com/perigee-io/bucketsweep/internal/storeapi"
	"github.com/perigee-io/bucketsweep/sweeptypes"
)

// Client is the entry point for sweep operations against one bucket.
// It is safe for concurrent use; distinct deletion targets within one
// PruneAll call still run strictly sequentially.
type Client struct {
	cfg    *sweeptypes.ClientConfig
	store  storeapi.Store
	runner rclone.Runner
	lister *listing.Engine
	batch  *batchdel.Deleter
	log    zerolog.Logger
}

// New creates a client with the provided options.
//
// Example:
//
//	client, err := bucketsweep.New(
//	    bucketsweep.WithBucket("media"),
//	    bucketsweep.WithEndpoint("https://store.example.com"),
//	    bucketsweep.WithAPIKey(key),
//	)
func New(opts ...sweeptypes.Option) (*Client, error) {
	cfg := &sweeptypes.ClientConfig{
		Transport:   sweeptypes.TransportHTTP,
		PageWindow:  listing.DefaultWindow,
		PageLimit:   listing.DefaultPageLimit,
		BatchSize:   batchdel.DefaultBatchSize,
		BackoffBase: listing.DefaultBackoffBase,
		PacingDelay: listing.DefaultPacing,
		BatchDelay:  batchdel.DefaultBatchDelay,
		Logger:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.Bucket == "" {
		return nil, sweeperrors.NewError("client initialization", sweeperrors.ErrInvalidInput).
			WithMessage("bucket is required")
	}
	if cfg.FileExtensions == nil {
		cfg.FileExtensions = sweeptypes.DefaultFileExtensions()
	}

	store, err := buildStore(cfg)
	if err != nil {
		return nil, err
	}

	binary := cfg.SyncBinary
	if binary == "" {
		binary = rclone.DefaultBinary
	}

	return newClient(cfg, store, &rclone.ExecRunner{Binary: binary}), nil
}

// newClient wires the engines over an already-built store and runner.
func newClient(cfg *sweeptypes.ClientConfig, store storeapi.Store, runner rclone.Runner) *Client {
	return &Client{
		cfg:    cfg,
		store:  store,
		runner: runner,
		lister: listing.New(store, listing.Config{
			Window:      cfg.PageWindow,
			PageLimit:   cfg.PageLimit,
			BackoffBase: cfg.BackoffBase,
			Pacing:      cfg.PacingDelay,
			Sleep:       cfg.Sleep,
			Logger:      cfg.Logger,
		}),
		batch: batchdel.New(store, batchdel.Config{
			BatchSize: cfg.BatchSize,
			Delay:     cfg.BatchDelay,
			Sleep:     cfg.Sleep,
		}),
		log: cfg.Logger,
	}
}

func buildStore(cfg *sweeptypes.ClientConfig) (storeapi.Store, error) {
	switch cfg.Transport {
	case sweeptypes.TransportS3:
		return s3store.New(context.Background(), s3store.Config{
			Region:         cfg.Region,
			Endpoint:       cfg.Endpoint,
			AccessKey:      cfg.AccessKey,
			SecretKey:      cfg.SecretKey,
			ForcePathStyle: cfg.ForcePathStyle,
			HTTPClient:     cfg.HTTPClient,
		})
	case sweeptypes.TransportHTTP:
		if cfg.Endpoint == "" {
			return nil, sweeperrors.NewError("client initialization", sweeperrors.ErrInvalidInput).
				WithMessage("endpoint is required for the http transport")
		}
		httpClient := cfg.HTTPClient
		if httpClient == nil {
			httpClient = &http.Client{Timeout: cfg.Timeout}
		}
		return httpstore.New(cfg.Endpoint, cfg.APIKey, httpClient), nil
	default:
		return nil, sweeperrors.NewError("client initialization", sweeperrors.ErrInvalidInput).
			WithMessage("unknown transport")
	}
}

// Bucket returns the bucket this client operates on.
func (c *Client) Bucket() string {
	return c.cfg.Bucket
}

// withTool resolves a sync utility connection profile, runs fn with a tool
// bound to it, and removes any ephemeral credential artifact afterwards on
// both success and failure paths.
func (c *Client) withTool(fn func(tool *rclone.Tool) error) error {
	handle, err := remote.Resolve(remote.Config{
		Profile:   c.cfg.SyncProfile,
		Endpoint:  c.cfg.Endpoint,
		AccessKey: c.cfg.AccessKey,
		SecretKey: c.cfg.SecretKey,
		Region:    c.cfg.Region,
		Dir:       os.TempDir(),
	})
	if err != nil {
		return err
	}
	defer handle.Cleanup()

	return fn(rclone.NewTool(c.runner, handle.Name, c.cfg.Bucket, handle.ConfigPath))
}
