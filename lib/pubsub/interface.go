package pubsub

// --------------------------------------------------------------------------
// Raw Connection Capability
// --------------------------------------------------------------------------

// IPubSubConn is the raw asynchronous subscription capability consumed by the
// multiplexer. It is implemented by the wire client (see rpc/client) and by
// test fakes.
//
// The connection delivers published messages by invoking the onMessage
// callback registered via RawSubscribe on a connection-owned goroutine,
// independent of any subscriber goroutine. At most one callback is registered
// per channel at a time - the multiplexer guarantees it issues RawSubscribe
// only once per channel while that channel has live local subscribers.
type IPubSubConn interface {
	// RawSubscribe issues the server-side subscription for a channel and
	// registers the delivery callback.
	RawSubscribe(channel string, onMessage func(payload []byte)) error
	// RawUnsubscribe tears down the server-side subscription for a channel.
	RawUnsubscribe(channel string) error
	// OnConnError registers a handler invoked when the underlying connection
	// fails permanently. All server-side subscriptions are considered dead
	// after the handler fires.
	OnConnError(handler func(err error))
}

// --------------------------------------------------------------------------
// Multiplexer Interface
// --------------------------------------------------------------------------

// IMux is the public face of the pub/sub multiplexer. Many independent
// consumers can subscribe to the same channel over one underlying connection;
// each published message is broadcast to all consumers subscribed at the time
// of publication.
type IMux interface {
	// Subscribe attaches a new consumer to the channel and returns its view.
	// The first local consumer of a channel triggers exactly one raw
	// subscription; later consumers reuse it.
	Subscribe(channel string) (*Subscription, error)
	// Unsubscribe drops every local consumer of the channel and issues the
	// raw unsubscribe. It is an idempotent no-op if the channel has no local
	// subscribers.
	Unsubscribe(channel string) error
	// Close tears down all channels and their consumers.
	Close() error
}
