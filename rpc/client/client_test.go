package client

import (
	"errors"
	"testing"
	"time"

	"github.com/birchkv/birch/rpc/common"
	"github.com/birchkv/birch/rpc/serializer"
	"github.com/birchkv/birch/rpc/transport"
	"github.com/birchkv/birch/rpc/transport/memory"
	"github.com/birchkv/birch/rpc/tx"
)

// newTestClient wires a client onto the in-process transport.
func newTestClient(t *testing.T) (*Client, *memory.MemoryTransport) {
	t.Helper()

	trans := memory.NewMemoryTransport(serializer.NewBinarySerializer())
	c, err := NewClient(common.ClientConfig{}, trans, serializer.NewBinarySerializer(), nil)
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c, trans
}

// recvTimeout reads one payload from the channel or fails the test.
func recvTimeout(t *testing.T, ch <-chan []byte) []byte {
	t.Helper()
	select {
	case payload, ok := <-ch:
		if !ok {
			t.Fatal("subscription channel closed unexpectedly")
		}
		return payload
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for message")
		return nil
	}
}

// --------------------------------------------------------------------------
// Transactions
// --------------------------------------------------------------------------

func TestClientRunEndToEnd(t *testing.T) {
	c, _ := newTestClient(t)

	seq, err := c.Run(tx.Batch{
		tx.Set("k1", []byte("sad")),
		tx.Set("k2", []byte("windows")),
		tx.Get("k1"),
		tx.Set("k1", []byte("nix")),
		tx.Set("k2", []byte("linux")),
		tx.Get("k1"),
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if seq.Len() != 2 {
		t.Fatalf("filtered length = %d, want 2", seq.Len())
	}
	if v, ok := seq.At(0).Bytes(); !ok || string(v) != "sad" {
		t.Errorf("first read = (%q, %t), want (sad, true)", v, ok)
	}
	if v, ok := seq.At(1).Bytes(); !ok || string(v) != "nix" {
		t.Errorf("second read = (%q, %t), want (nix, true)", v, ok)
	}

	// the batch was applied as a whole
	if v, ok, _ := c.Get("k2"); !ok || string(v) != "linux" {
		t.Errorf("k2 = (%q, %t), want (linux, true)", v, ok)
	}
}

func TestClientRunAborted(t *testing.T) {
	c, trans := newTestClient(t)
	trans.AbortNextCommit("write conflict")

	_, err := c.Run(tx.Batch{tx.Set("a", []byte("1"))})
	if !errors.Is(err, tx.ErrTransactionAborted) {
		t.Fatalf("err = %v, want ErrTransactionAborted", err)
	}

	// nothing was applied
	if ok, _ := c.Has("a"); ok {
		t.Error("aborted batch must not be applied")
	}
}

func TestClientRunTimeout(t *testing.T) {
	c, trans := newTestClient(t)
	trans.TimeoutNextCommit()

	_, err := c.Run(tx.Batch{tx.Set("a", []byte("1"))})
	if !errors.Is(err, tx.ErrTimeout) {
		t.Fatalf("err = %v, want ErrTimeout", err)
	}

	// the outcome of a timed-out commit is unknown; here the transport
	// applied it, and no retry happened that would apply it twice
	if ok, _ := c.Has("a"); !ok {
		t.Error("transport applied the batch, key should exist")
	}
}

func TestClientExpireSemantics(t *testing.T) {
	c, _ := newTestClient(t)

	seq, err := c.Run(tx.Batch{
		tx.Set("k", []byte("v")),
		tx.Expire("k"),
		tx.Get("k"),
		tx.Has("k"),
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	// expired keys have no value but still count as set
	if _, ok := seq.At(0).Bytes(); ok {
		t.Error("expired key must not return a value")
	}
	if !seq.At(1).Bool() {
		t.Error("expired key must still count as set")
	}
}

// --------------------------------------------------------------------------
// Single Commands
// --------------------------------------------------------------------------

func TestClientSingleCommands(t *testing.T) {
	c, _ := newTestClient(t)

	if err := c.Set("key", []byte("value")); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	if v, ok, err := c.Get("key"); err != nil || !ok || string(v) != "value" {
		t.Errorf("Get = (%q, %t, %v), want (value, true, nil)", v, ok, err)
	}

	if err := c.Delete("key"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if ok, _ := c.Has("key"); ok {
		t.Error("deleted key should not exist")
	}
}

// --------------------------------------------------------------------------
// Pub/Sub
// --------------------------------------------------------------------------

func TestClientPubSubFanOut(t *testing.T) {
	c, trans := newTestClient(t)

	first, err := c.Subscribe("events")
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}
	second, err := c.Subscribe("events")
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}

	if err := c.Publish("events", []byte("hello")); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	if got := recvTimeout(t, first.C()); string(got) != "hello" {
		t.Errorf("first consumer got %q, want %q", got, "hello")
	}
	if got := recvTimeout(t, second.C()); string(got) != "hello" {
		t.Errorf("second consumer got %q, want %q", got, "hello")
	}

	// one server-side subscription for both consumers
	if n := trans.SubscribedChannels(); n != 1 {
		t.Errorf("subscribed channels = %d, want 1", n)
	}

	first.Close()
	second.Close()

	// last close tears down the server-side subscription
	if n := trans.SubscribedChannels(); n != 0 {
		t.Errorf("subscribed channels after close = %d, want 0", n)
	}
}

func TestClientPubSubConnError(t *testing.T) {
	c, trans := newTestClient(t)

	sub, err := c.Subscribe("events")
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}

	connErr := errors.New("connection reset")
	trans.FailConnection(connErr)

	// the consumer channel closes and the error is observable
	select {
	case _, ok := <-sub.C():
		if ok {
			t.Fatal("expected closed channel after connection failure")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for channel close")
	}
	if !errors.Is(sub.Err(), connErr) {
		t.Errorf("Err() = %v, want %v", sub.Err(), connErr)
	}

	// a fresh subscribe re-establishes the raw subscription
	fresh, err := c.Subscribe("events")
	if err != nil {
		t.Fatalf("re-subscribe failed: %v", err)
	}
	if err := c.Publish("events", []byte("back")); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}
	if got := recvTimeout(t, fresh.C()); string(got) != "back" {
		t.Errorf("got %q, want %q", got, "back")
	}
}

func TestClientUnsubscribeDropsAllConsumers(t *testing.T) {
	c, trans := newTestClient(t)

	first, _ := c.Subscribe("events")
	second, _ := c.Subscribe("events")

	if err := c.Unsubscribe("events"); err != nil {
		t.Fatalf("Unsubscribe failed: %v", err)
	}

	for _, ch := range []<-chan []byte{first.C(), second.C()} {
		select {
		case _, ok := <-ch:
			if ok {
				t.Fatal("expected closed channel after Unsubscribe")
			}
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for channel close")
		}
	}

	if n := trans.SubscribedChannels(); n != 0 {
		t.Errorf("subscribed channels = %d, want 0", n)
	}

	// unsubscribing an unknown channel is a no-op
	if err := c.Unsubscribe("events"); err != nil {
		t.Fatalf("idempotent Unsubscribe failed: %v", err)
	}
}

// handlerOrderTransport records whether both handlers were registered by the
// time Connect starts the reader side.
type handlerOrderTransport struct {
	pushSet              bool
	disconnectSet        bool
	handlersSetAtConnect bool
}

func (f *handlerOrderTransport) Connect(config common.ClientConfig) error {
	f.handlersSetAtConnect = f.pushSet && f.disconnectSet
	return nil
}

func (f *handlerOrderTransport) Send(req []byte) ([]byte, error) {
	return nil, errors.New("not connected")
}

func (f *handlerOrderTransport) SetPushHandler(h transport.PushHandlerFunc) {
	f.pushSet = true
}

func (f *handlerOrderTransport) SetDisconnectHandler(h transport.DisconnectHandlerFunc) {
	f.disconnectSet = true
}

func (f *handlerOrderTransport) Close() error {
	return nil
}

func TestNewClientRegistersHandlersBeforeConnect(t *testing.T) {
	trans := &handlerOrderTransport{}

	c, err := NewClient(common.ClientConfig{}, trans, serializer.NewBinarySerializer(), nil)
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	defer c.Close()

	// A push or disconnect arriving right after Connect must already find
	// its handler, otherwise it is dropped or races the registration.
	if !trans.handlersSetAtConnect {
		t.Error("push/disconnect handlers were not registered before Connect")
	}
}
