package pubsub

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"
)

// fakeConn is an in-memory IPubSubConn that counts raw calls and lets tests
// drive the delivery callback directly.
type fakeConn struct {
	mu           sync.Mutex
	subscribes   map[string]int
	unsubscribes map[string]int
	callbacks    map[string]func([]byte)
	errHandler   func(error)
	subscribeErr error
}

func newFakeConn() *fakeConn {
	return &fakeConn{
		subscribes:   make(map[string]int),
		unsubscribes: make(map[string]int),
		callbacks:    make(map[string]func([]byte)),
	}
}

func (f *fakeConn) RawSubscribe(channel string, onMessage func([]byte)) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.subscribeErr != nil {
		return f.subscribeErr
	}
	f.subscribes[channel]++
	f.callbacks[channel] = onMessage
	return nil
}

func (f *fakeConn) RawUnsubscribe(channel string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.unsubscribes[channel]++
	delete(f.callbacks, channel)
	return nil
}

func (f *fakeConn) OnConnError(handler func(error)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errHandler = handler
}

// publish simulates the server delivering a message on the connection.
func (f *fakeConn) publish(channel string, payload []byte) {
	f.mu.Lock()
	cb := f.callbacks[channel]
	f.mu.Unlock()
	if cb != nil {
		cb(payload)
	}
}

// fail simulates a permanent connection failure.
func (f *fakeConn) fail(err error) {
	f.mu.Lock()
	h := f.errHandler
	f.mu.Unlock()
	if h != nil {
		h(err)
	}
}

func (f *fakeConn) subscribeCount(channel string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.subscribes[channel]
}

func (f *fakeConn) unsubscribeCount(channel string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.unsubscribes[channel]
}

// recvTimeout reads one message or fails the test after a deadline.
func recvTimeout(t *testing.T, sub *Subscription) []byte {
	t.Helper()
	select {
	case msg, ok := <-sub.C():
		if !ok {
			t.Fatal("subscription channel closed unexpectedly")
		}
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for message")
	}
	return nil
}

func TestTwoConsumersShareOneRawSubscription(t *testing.T) {
	conn := newFakeConn()
	mux := NewMux(conn, nil)

	sub1, err := mux.Subscribe("news")
	if err != nil {
		t.Fatalf("Subscribe() failed: %v", err)
	}
	sub2, err := mux.Subscribe("news")
	if err != nil {
		t.Fatalf("Subscribe() failed: %v", err)
	}

	if got := conn.subscribeCount("news"); got != 1 {
		t.Errorf("raw subscribe count = %d, want 1", got)
	}

	conn.publish("news", []byte("hello"))

	for _, sub := range []*Subscription{sub1, sub2} {
		if got := recvTimeout(t, sub); string(got) != "hello" {
			t.Errorf("received %q, want %q", got, "hello")
		}
	}
}

func TestPartialAndLastUnsubscribe(t *testing.T) {
	conn := newFakeConn()
	mux := NewMux(conn, nil)

	sub1, _ := mux.Subscribe("news")
	sub2, _ := mux.Subscribe("news")

	if err := sub1.Close(); err != nil {
		t.Fatalf("Close() failed: %v", err)
	}

	// One consumer left: the raw subscription must stay active.
	if got := conn.unsubscribeCount("news"); got != 0 {
		t.Errorf("raw unsubscribe count after partial close = %d, want 0", got)
	}

	conn.publish("news", []byte("still here"))
	if got := recvTimeout(t, sub2); string(got) != "still here" {
		t.Errorf("remaining consumer received %q, want %q", got, "still here")
	}

	if err := sub2.Close(); err != nil {
		t.Fatalf("Close() failed: %v", err)
	}
	if got := conn.unsubscribeCount("news"); got != 1 {
		t.Errorf("raw unsubscribe count after last close = %d, want 1", got)
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	conn := newFakeConn()
	mux := NewMux(conn, nil)

	sub, _ := mux.Subscribe("news")

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = sub.Close()
		}()
	}
	wg.Wait()

	if got := conn.unsubscribeCount("news"); got != 1 {
		t.Errorf("raw unsubscribe count = %d, want 1 (decrement ran more than once)", got)
	}
}

func TestConcurrentFirstSubscribers(t *testing.T) {
	conn := newFakeConn()
	mux := NewMux(conn, nil)

	const n = 16
	subs := make([]*Subscription, n)

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sub, err := mux.Subscribe("race")
			if err != nil {
				t.Errorf("Subscribe() failed: %v", err)
				return
			}
			subs[i] = sub
		}(i)
	}
	wg.Wait()

	if got := conn.subscribeCount("race"); got != 1 {
		t.Errorf("raw subscribe count = %d, want 1", got)
	}

	// Every consumer is attached and receives.
	conn.publish("race", []byte("x"))
	for _, sub := range subs {
		recvTimeout(t, sub)
	}
}

func TestUnsubscribeWithoutEntryIsNoop(t *testing.T) {
	conn := newFakeConn()
	mux := NewMux(conn, nil)

	if err := mux.Unsubscribe("ghost"); err != nil {
		t.Errorf("Unsubscribe() on unknown channel = %v, want nil", err)
	}
	if got := conn.unsubscribeCount("ghost"); got != 0 {
		t.Errorf("raw unsubscribe count = %d, want 0", got)
	}
}

func TestUnsubscribeDropsAllConsumers(t *testing.T) {
	conn := newFakeConn()
	mux := NewMux(conn, nil)

	sub1, _ := mux.Subscribe("news")
	sub2, _ := mux.Subscribe("news")

	if err := mux.Unsubscribe("news"); err != nil {
		t.Fatalf("Unsubscribe() failed: %v", err)
	}
	if got := conn.unsubscribeCount("news"); got != 1 {
		t.Errorf("raw unsubscribe count = %d, want 1", got)
	}

	for _, sub := range []*Subscription{sub1, sub2} {
		if _, ok := <-sub.C(); ok {
			t.Error("consumer channel still open after Unsubscribe")
		}
		if err := sub.Err(); err != nil {
			t.Errorf("Err() after orderly unsubscribe = %v, want nil", err)
		}
		// Late Close must not issue a second raw unsubscribe.
		_ = sub.Close()
	}
	if got := conn.unsubscribeCount("news"); got != 1 {
		t.Errorf("raw unsubscribe count after late closes = %d, want 1", got)
	}
}

func TestLateSubscriberMissesPriorMessages(t *testing.T) {
	conn := newFakeConn()
	mux := NewMux(conn, nil)

	early, _ := mux.Subscribe("news")
	conn.publish("news", []byte("before"))
	late, _ := mux.Subscribe("news")
	conn.publish("news", []byte("after"))

	if got := recvTimeout(t, early); string(got) != "before" {
		t.Errorf("early consumer first message = %q, want %q", got, "before")
	}
	if got := recvTimeout(t, early); string(got) != "after" {
		t.Errorf("early consumer second message = %q, want %q", got, "after")
	}
	if got := recvTimeout(t, late); string(got) != "after" {
		t.Errorf("late consumer message = %q, want %q", got, "after")
	}
}

func TestConnErrorPropagatesAndAllowsResubscribe(t *testing.T) {
	conn := newFakeConn()
	mux := NewMux(conn, nil)

	sub, _ := mux.Subscribe("news")

	connErr := errors.New("connection reset")
	conn.fail(connErr)

	if _, ok := <-sub.C(); ok {
		t.Error("consumer channel still open after connection error")
	}
	if err := sub.Err(); !errors.Is(err, connErr) {
		t.Errorf("Err() = %v, want %v", err, connErr)
	}

	// A fresh subscribe must issue a new raw subscription, not reuse the
	// dead endpoint.
	fresh, err := mux.Subscribe("news")
	if err != nil {
		t.Fatalf("Subscribe() after conn error failed: %v", err)
	}
	if got := conn.subscribeCount("news"); got != 2 {
		t.Errorf("raw subscribe count = %d, want 2", got)
	}

	conn.publish("news", []byte("recovered"))
	if got := recvTimeout(t, fresh); string(got) != "recovered" {
		t.Errorf("received %q, want %q", got, "recovered")
	}
}

func TestSubscribeFailureLeavesNoEntry(t *testing.T) {
	conn := newFakeConn()
	conn.subscribeErr = errors.New("dial failed")
	mux := NewMux(conn, nil)

	if _, err := mux.Subscribe("news"); err == nil {
		t.Fatal("Subscribe() succeeded despite raw subscribe failure")
	}

	// After the raw layer recovers, subscribing must work again.
	conn.subscribeErr = nil
	sub, err := mux.Subscribe("news")
	if err != nil {
		t.Fatalf("Subscribe() after recovery failed: %v", err)
	}
	conn.publish("news", []byte("ok"))
	recvTimeout(t, sub)
}

func TestConsumersObserveSameOrder(t *testing.T) {
	conn := newFakeConn()
	mux := NewMux(conn, &Options{BufferSize: 64, Policy: PolicyBlock})

	sub1, _ := mux.Subscribe("seq")
	sub2, _ := mux.Subscribe("seq")

	const n = 32
	for i := 0; i < n; i++ {
		conn.publish("seq", []byte(fmt.Sprintf("msg-%02d", i)))
	}

	for _, sub := range []*Subscription{sub1, sub2} {
		for i := 0; i < n; i++ {
			want := fmt.Sprintf("msg-%02d", i)
			if got := recvTimeout(t, sub); string(got) != want {
				t.Fatalf("message %d = %q, want %q", i, got, want)
			}
		}
	}
}

func TestMuxClose(t *testing.T) {
	conn := newFakeConn()
	mux := NewMux(conn, nil)

	sub1, _ := mux.Subscribe("a")
	sub2, _ := mux.Subscribe("b")

	if err := mux.Close(); err != nil {
		t.Fatalf("Close() failed: %v", err)
	}

	for _, sub := range []*Subscription{sub1, sub2} {
		if _, ok := <-sub.C(); ok {
			t.Error("consumer channel still open after mux close")
		}
	}
	if conn.unsubscribeCount("a") != 1 || conn.unsubscribeCount("b") != 1 {
		t.Error("mux close did not unsubscribe every channel exactly once")
	}
}
