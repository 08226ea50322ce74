package client

import (
	"github.com/birchkv/birch/rpc/common"
	"github.com/puzpuzpuz/xsync/v3"
)

// wirePubSubConn implements pubsub.IPubSubConn on top of a client transport.
// It owns the transport's push handler: push frames carrying publish messages
// are decoded here and dispatched to the per-channel callback the multiplexer
// registered.
type wirePubSubConn struct {
	rpcClientAdapter

	callbacks   *xsync.MapOf[string, func(payload []byte)]
	connErrHdlr func(err error)
}

func newWirePubSubConn(adapter rpcClientAdapter) *wirePubSubConn {
	c := &wirePubSubConn{
		rpcClientAdapter: adapter,
		callbacks:        xsync.NewMapOf[string, func(payload []byte)](),
	}
	c.transport.SetPushHandler(c.handlePush)
	c.transport.SetDisconnectHandler(c.handleDisconnect)
	return c
}

// --------------------------------------------------------------------------
// Interface Methods (docu see pubsub.IPubSubConn)
// --------------------------------------------------------------------------

func (c *wirePubSubConn) RawSubscribe(channel string, onMessage func(payload []byte)) error {
	// Register before sending so a push racing the subscribe ack is not lost
	c.callbacks.Store(channel, onMessage)

	if _, err := c.invoke(common.NewSubscribeRequest(channel)); err != nil {
		c.callbacks.Delete(channel)
		return err
	}
	return nil
}

func (c *wirePubSubConn) RawUnsubscribe(channel string) error {
	c.callbacks.Delete(channel)

	_, err := c.invoke(common.NewUnsubscribeRequest(channel))
	return err
}

func (c *wirePubSubConn) OnConnError(handler func(err error)) {
	c.connErrHdlr = handler
}

// --------------------------------------------------------------------------
// Push Handling
// --------------------------------------------------------------------------

// handlePush runs on the transport's reader goroutine for every frame the
// server sends without a preceding request.
func (c *wirePubSubConn) handlePush(data []byte) {
	msg := &common.Message{}
	if err := c.serializer.Deserialize(data, msg); err != nil {
		Logger.Errorf("dropping undecodable push frame: %v", err)
		return
	}
	if msg.MsgType != common.MsgTPublish {
		Logger.Warningf("dropping push frame of unexpected type %s", msg.MsgType)
		return
	}

	if onMessage, ok := c.callbacks.Load(msg.Key); ok {
		onMessage(msg.Value)
	}
}

// handleDisconnect fires on every connection loss, including transparent
// reconnects: the server forgets subscriptions with the connection, so the
// multiplexer must tear down and consumers must resubscribe.
func (c *wirePubSubConn) handleDisconnect(err error) {
	c.callbacks.Clear()
	if c.connErrHdlr != nil {
		c.connErrHdlr(err)
	}
}
