// Package internal contains private implementation details for the
// bucketsweep module. These packages are not intended for external use and
// may change without notice.
//
// The internal packages are organized as follows:
//   - operations: listing, classification, deletion and batch fan-out engines
//   - store: object-store transports behind the storeapi interface
//   - rclone: sync utility subprocess invocation and result classification
//   - remote: sync utility connection profile resolution
//   - config: environment catalog loading for the CLI
package internal
