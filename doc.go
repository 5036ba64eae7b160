// Package bucketsweep implements bulk pruning of object-store buckets.
//
// The package walks cursor-paginated listings with a bounded concurrency
// window, discovers and verifies folder prefixes through an external sync
// utility, and deletes targets through one of three fixed protocols
// (recursive, files-only, folders-only) with full dry-run support.
//
// Basic usage:
//
//	client, err := bucketsweep.New(
//	    bucketsweep.WithBucket("media"),
//	    bucketsweep.WithEndpoint("https://store.example.com"),
//	    bucketsweep.WithAPIKey(os.Getenv("STORE_API_KEY")),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	summary := client.PruneAll(ctx, []sweeptypes.Target{
//	    {Path: "presets/old", Mode: sweeptypes.ModeRecursive, DryRun: true},
//	})
//
// Deletion is idempotent: removing an already-absent key or folder reports
// success. Folder targets are verified to contain at least one leaf object
// before anything destructive runs; unverified targets skip as no-ops.
package bucketsweep
