// Package client implements the RPC client for the key-value store. It wires
// the transaction engine (rpc/tx) and the pub/sub multiplexer (lib/pubsub)
// onto one connection and adds direct single-command access to the store.
//
// The package focuses on:
//   - Providing the wire implementations of tx.IExecutor and pubsub.IPubSubConn
//   - Integration with the transport and serialization layers
//   - Error handling and conversion between RPC and domain errors
//
// Key Components:
//
//   - NewClient: Factory function that connects a transport and returns the
//     client facade with Run (atomic batches), Subscribe/Unsubscribe/Publish
//     (pub/sub) and the single key-value commands.
//
//   - wireExecutor: tx.IExecutor implementation. The batch is queued locally
//     and shipped in one commit request, so a transaction costs exactly one
//     round trip. A commit refused by the server surfaces as
//     tx.ErrTransactionAborted, a transport timeout as tx.ErrTimeout.
//
//   - wirePubSubConn: pubsub.IPubSubConn implementation. It owns the
//     transport's push handler and dispatches decoded publish pushes to the
//     per-channel callbacks the multiplexer registers. Connection loss is
//     forwarded to the multiplexer even when the transport reconnects,
//     since the server drops subscriptions with the connection.
//
// Usage Example:
//
//	// Configure the client
//	config := common.ClientConfig{
//	  Transport: common.ClientTransportConfig{
//	    Endpoints:              []string{"localhost:5000"},
//	    RetryCount:             3,
//	    ConnectionsPerEndpoint: 1,
//	  },
//	  TimeoutSecond: 5,
//	}
//
//	// Create the client
//	c, _ := client.NewClient(config, tcp.NewTCPClientTransport(), serializer.NewBinarySerializer(), nil)
//	defer c.Close()
//
//	// Run an atomic batch
//	seq, _ := c.Run(tx.Batch{
//	  tx.Set("mykey", []byte("myvalue")),
//	  tx.Get("mykey"),
//	})
//	value, found := seq.At(0).Bytes()
//
//	// Subscribe and publish
//	sub, _ := c.Subscribe("events")
//	c.Publish("events", []byte("hello"))
//	payload := <-sub.C()
//	sub.Close()
//
// Thread Safety:
//
//	The client is thread-safe and can be used concurrently from multiple
//	goroutines without additional synchronization.
package client
