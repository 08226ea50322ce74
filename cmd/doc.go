// Package cmd implements the command-line interface for the birch key-value
// store client. It provides a hierarchical command structure for interacting
// with a server over the wire protocol.
//
// The package is organized into several subpackages:
//
//   - kv: Commands for single key-value operations (get, set, delete, etc.)
//   - tx: Commands for atomic command batches (demo, perf)
//   - pubsub: Commands for publishing and subscribing to channels
//   - util: Shared utilities for command-line processing and configuration (internal use)
//
// See birch -help for a list of all commands.
package cmd
