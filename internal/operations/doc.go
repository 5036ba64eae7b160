// Package operations contains the core pruning engine implementations.
//
// Each engine is isolated into its own subpackage: listing walks paginated
// bucket listings, classify discovers and verifies folder prefixes, prune
// runs the per-target deletion protocols, and batchdel fans individual
// deletions out in bounded batches.
package operations
