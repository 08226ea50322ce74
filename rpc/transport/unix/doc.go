// Package unix implements a client transport for the key-value store's RPC
// system using Unix domain sockets. It provides optimized communication for
// processes running on the same machine.
//
// This package extends the base transport layer with a Unix socket-specific
// connector while inheriting connection pooling, request routing, push-frame
// delivery and reconnection handling from the base package.
//
// Key Components:
//
//   - clientConnector: Establishes connections using Unix domain sockets and
//     applies the configured socket buffer sizes.
package unix
