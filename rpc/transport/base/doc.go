// Package base provides a foundation for client transport layers, implementing
// the core RPC machinery independent of the specific network protocol (TCP,
// Unix sockets, etc.). It serves as a base layer that can be extended with
// protocol-specific connectors.
//
// The package focuses on:
//   - Protocol-agnostic client transport implementation
//   - Frame-based message protocol with requestID tracking
//   - Automatic response correlation and push-frame routing
//   - Robust error handling with retries and reconnection logic
//
// Key Components:
//
//   - IClientConnector: Interface for protocol-specific operations that allows
//     extending the base transport with different network protocols.
//
//   - clientTransport: Core client implementation that manages multiple
//     connections with round-robin load balancing. Supports multiple
//     connections per endpoint for improved throughput.
//
// Frames with requestID zero carry server pushes (pub/sub messages) and are
// routed to the transport's push handler instead of a pending request.
//
// Timeouts are never retried: a request that timed out may already have been
// applied by the server, so retrying could apply it twice. All other send
// errors are retried with jittered exponential backoff.
package base
