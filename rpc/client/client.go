package client

import (
	"github.com/birchkv/birch/lib/hseq"
	"github.com/birchkv/birch/lib/pubsub"
	"github.com/birchkv/birch/rpc/common"
	"github.com/birchkv/birch/rpc/serializer"
	"github.com/birchkv/birch/rpc/transport"
	"github.com/birchkv/birch/rpc/tx"
)

// Client bundles the transaction engine and the pub/sub multiplexer on one
// connection, plus direct single-command access to the store.
type Client struct {
	rpcClientAdapter

	coordinator *tx.Coordinator
	mux         *pubsub.Mux
}

// NewClient connects the transport and wires the transaction coordinator and
// the pub/sub multiplexer on top of it. The pubsub options may be nil for
// defaults.
func NewClient(
	config common.ClientConfig,
	trans transport.IRPCClientTransport,
	ser serializer.IRPCSerializer,
	opts *pubsub.Options,
) (*Client, error) {

	adapter := rpcClientAdapter{
		config:     config,
		transport:  trans,
		serializer: ser,
	}

	// The push and disconnect handlers must be on the transport before
	// Connect starts its reader goroutines, so the pub/sub connection is
	// built first.
	psConn := newWirePubSubConn(adapter)

	// Connect the transport
	if err := trans.Connect(config); err != nil {
		return nil, err
	}

	return &Client{
		rpcClientAdapter: adapter,
		coordinator:      tx.NewCoordinator(newWireExecutor(adapter)),
		mux:              pubsub.NewMux(psConn, opts),
	}, nil
}

// Close tears down the pub/sub multiplexer and the underlying transport.
func (c *Client) Close() error {
	if err := c.mux.Close(); err != nil {
		Logger.Warningf("closing pub/sub multiplexer: %v", err)
	}
	return c.transport.Close()
}

// --------------------------------------------------------------------------
// Transactions
// --------------------------------------------------------------------------

// Run commits the batch atomically and returns the filtered result sequence
// (see the tx package for the full semantics).
func (c *Client) Run(batch tx.Batch) (hseq.Seq, error) {
	return c.coordinator.Run(batch)
}

// --------------------------------------------------------------------------
// Pub/Sub
// --------------------------------------------------------------------------

// Subscribe attaches a new consumer to the channel. Consumers of the same
// channel share one server-side subscription.
func (c *Client) Subscribe(channel string) (*pubsub.Subscription, error) {
	return c.mux.Subscribe(channel)
}

// Unsubscribe drops every local consumer of the channel.
func (c *Client) Unsubscribe(channel string) error {
	return c.mux.Unsubscribe(channel)
}

// Publish sends a payload to all subscribers of the channel.
func (c *Client) Publish(channel string, payload []byte) error {
	_, err := c.invoke(common.NewPublishRequest(channel, payload))
	return err
}

// --------------------------------------------------------------------------
// Single Key-Value Commands
// --------------------------------------------------------------------------

// Set stores a key-value pair outside any transaction.
func (c *Client) Set(key string, value []byte) error {
	_, err := c.invoke(common.NewSetRequest(key, value))
	return err
}

// SetE stores a key-value pair with expire/delete deadlines in seconds.
func (c *Client) SetE(key string, value []byte, expireIn, deleteIn uint64) error {
	_, err := c.invoke(common.NewSetERequest(key, value, expireIn, deleteIn))
	return err
}

// SetEIfUnset stores a key-value pair with deadlines only if unset.
func (c *Client) SetEIfUnset(key string, value []byte, expireIn, deleteIn uint64) error {
	_, err := c.invoke(common.NewSetEIfUnsetRequest(key, value, expireIn, deleteIn))
	return err
}

// Expire marks a key as expired.
func (c *Client) Expire(key string) error {
	_, err := c.invoke(common.NewExpireRequest(key))
	return err
}

// Delete removes a key.
func (c *Client) Delete(key string) error {
	_, err := c.invoke(common.NewDeleteRequest(key))
	return err
}

// Get reads a key's value. loaded is false for absent and expired keys.
func (c *Client) Get(key string) (value []byte, loaded bool, err error) {
	resp, err := c.invoke(common.NewGetRequest(key))
	if err != nil {
		return nil, false, err
	}
	return resp.Value, resp.Ok, nil
}

// Has checks whether a key is set. Expired keys still count as set.
func (c *Client) Has(key string) (loaded bool, err error) {
	resp, err := c.invoke(common.NewHasRequest(key))
	if err != nil {
		return false, err
	}
	return resp.Ok, nil
}
