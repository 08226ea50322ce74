// Package pubsub multiplexes many independent local consumers over a single
// raw pub/sub connection to a key-value store.
//
// The store's connection supports at most one subscription per channel and
// delivers published messages through an asynchronous callback on a
// connection-owned goroutine. This package bridges that callback into any
// number of cancellable, backpressured consumer streams: the first local
// subscriber of a channel creates a broadcast endpoint and issues the raw
// subscription; later subscribers attach to the same endpoint; the last one
// to leave tears the raw subscription down again.
//
// Key Components:
//
//   - Mux: the subscription registry and public subscribe/unsubscribe API.
//     One exclusive lock guards the channel map and is held across the raw
//     subscribe/unsubscribe calls, so registry state and server-side
//     subscription state can never disagree.
//
//   - Subscription: one consumer's view, a bounded buffered channel plus a
//     cancellation handle. Closing it runs the unsubscribe decrement exactly
//     once.
//
//   - Overflow policy: each consumer has a small fixed buffer. With
//     PolicyBlock (the default) delivery blocks until the consumer drains;
//     with PolicyDropOldest the oldest buffered message is evicted instead.
//
// Per channel, all consumers observe published messages in the same relative
// order: the delivery callback fans out sequentially. No ordering holds
// between different channels. Consumers attached after a message was
// published do not receive it.
//
// Connection failures propagate to every attached consumer (the stream ends
// and Err() reports the cause) and clear the registry, so a later Subscribe
// re-establishes the raw subscription on the recovered connection.
//
// Thread Safety:
//
//	All Mux and Subscription methods are safe for concurrent use.
package pubsub
