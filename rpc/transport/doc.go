// Package transport defines the client-side transport contract for the
// key-value store's RPC protocol. It provides a common interface that all
// transport implementations fulfill, enabling protocol-agnostic communication.
//
// The package focuses on:
//   - Defining a clear interface for client transport implementations
//   - Request/response correlation plus unsolicited server pushes on the
//     same connection (used by pub/sub)
//   - Surfacing connection loss to upper layers via a disconnect handler
//
// Key Components:
//
//   - IRPCClientTransport: Interface for client-side transport implementations
//     that handles connection management, request sending and push delivery.
//
//   - PushHandlerFunc: Callback type for frames the server sends without a
//     preceding request.
//
//   - DisconnectHandlerFunc: Callback type invoked when a connection is lost.
//     It fires even when the transport reconnects transparently, since
//     connection-scoped server state (subscriptions) does not survive.
//
//   - ErrTimeout: Sentinel error for requests that timed out. A timed-out
//     request may still have been applied by the server, so callers must not
//     blindly retry.
package transport
