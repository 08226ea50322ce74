// Package tcp implements a TCP socket-based client transport for the
// key-value store's RPC system. It provides a concrete implementation of the
// base package's connector interface optimized for TCP connections.
//
// This package builds on the base package's transport functionality,
// inheriting connection pooling, request routing, push-frame delivery and
// reconnection handling. See the base package documentation for details on
// the underlying transport mechanisms.
//
// Key Components:
//
//   - clientConnector: TCP-specific implementation of base.IClientConnector
//     that applies socket options (buffer sizes, TCP_NODELAY, keep-alive,
//     linger) from the client configuration.
package tcp
