// Package memory implements an in-process client transport that speaks the
// full wire protocol against a local map instead of a network connection.
// It supports single key-value commands, atomic command batches and pub/sub
// with asynchronous push delivery.
//
// The package is primarily used by tests that need a real transport without a
// server, and by the demo CLI for offline experimentation.
//
// Key Components:
//
//   - MemoryTransport: The transport implementation. Created with
//     NewMemoryTransport and the same serializer the client stacks on top.
//
//   - Failure injection: AbortNextCommit, TimeoutNextCommit and
//     FailConnection let tests exercise the error paths of the transaction
//     and pub/sub layers deterministically.
package memory
