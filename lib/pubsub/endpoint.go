package pubsub

import (
	"sync"

	"github.com/VictoriaMetrics/metrics"
	"github.com/puzpuzpuz/xsync/v3"
)

var (
	metricFanout  = metrics.NewCounter("birch_pubsub_fanout_total")
	metricDropped = metrics.NewCounter("birch_pubsub_dropped_total")
)

// --------------------------------------------------------------------------
// Broadcast Endpoint
// --------------------------------------------------------------------------

// endpoint is the per-channel broadcast point. It fans each published payload
// out to all currently attached consumer views, sequentially, so every
// consumer of one channel observes the same relative message order. It owns
// no message history - late subscribers miss prior messages.
//
// Locking: mu serializes delivery against consumer-channel closes, so a
// consumer channel is never closed while a delivery might send to it. All
// paths that close a consumer's done channel do so before acquiring mu, which
// unblocks any delivery currently waiting on that consumer.
type endpoint struct {
	channel string
	opts    Options

	mu     sync.Mutex
	subs   *xsync.MapOf[*Subscription, struct{}]
	closed bool
}

func newEndpoint(channel string, opts Options) *endpoint {
	return &endpoint{
		channel: channel,
		opts:    opts,
		subs:    xsync.NewMapOf[*Subscription, struct{}](),
	}
}

// publish is the delivery callback registered with the raw subscription. It
// is invoked on the connection's reader goroutine, one message at a time.
func (e *endpoint) publish(payload []byte) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return
	}

	e.subs.Range(func(s *Subscription, _ struct{}) bool {
		s.deliver(payload, e.opts.Policy)
		metricFanout.Inc()
		return true
	})
}

// attach adds a consumer view. Callers hold the registry lock, so attach
// cannot race a first-subscribe or last-unsubscribe on the same channel.
func (e *endpoint) attach(s *Subscription) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.subs.Store(s, struct{}{})
}

// detach removes a consumer view and closes its channel, returning the number
// of consumers left. The caller must have closed the consumer's done channel
// first and must hold the registry lock.
func (e *endpoint) detach(s *Subscription) int {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, loaded := e.subs.LoadAndDelete(s); loaded {
		close(s.ch)
	}
	return e.subs.Size()
}

// shutdown terminates every attached consumer, recording err (which may be
// nil for an orderly unsubscribe) so consumers can distinguish connection
// failures from deliberate teardown. Safe to call while a delivery is in
// flight: consumers are cancelled first, which unblocks the delivery path.
func (e *endpoint) shutdown(err error) {
	// Unblock any delivery waiting on a full consumer buffer.
	e.subs.Range(func(s *Subscription, _ struct{}) bool {
		s.cancel()
		return true
	})

	e.mu.Lock()
	defer e.mu.Unlock()

	e.closed = true
	e.subs.Range(func(s *Subscription, _ struct{}) bool {
		if _, loaded := e.subs.LoadAndDelete(s); loaded {
			s.err = err
			close(s.ch)
		}
		return true
	})
}

// --------------------------------------------------------------------------
// Subscription (consumer view)
// --------------------------------------------------------------------------

// Subscription is one consumer's cancellable view onto a channel's broadcast
// endpoint. Messages are received via C(), which is closed when the consumer
// detaches, the channel is unsubscribed, or the connection fails. After C()
// is closed, Err() reports why (nil for an orderly close).
type Subscription struct {
	channel string
	ch      chan []byte
	done    chan struct{}

	mux *Mux
	ep  *endpoint

	cancelOnce  sync.Once
	releaseOnce sync.Once
	closeErr    error

	// err is written under ep.mu before ch is closed.
	err error
}

// C returns the message channel of this consumer view. It carries every
// payload published to the channel from the moment of subscription onward,
// in publication order, and is closed when the subscription ends.
func (s *Subscription) C() <-chan []byte {
	return s.ch
}

// Channel returns the name of the subscribed channel.
func (s *Subscription) Channel() string {
	return s.channel
}

// Err reports why C() was closed: nil after Close or Unsubscribe, the
// connection error after a connection failure. Only meaningful once C() is
// closed.
func (s *Subscription) Err() error {
	s.ep.mu.Lock()
	defer s.ep.mu.Unlock()
	return s.err
}

// Close detaches this consumer from the channel. The unsubscribe decrement
// runs exactly once, even when Close races the subscription's natural end.
// Closing the last consumer of a channel issues the raw unsubscribe.
func (s *Subscription) Close() error {
	s.releaseOnce.Do(func() {
		s.closeErr = s.mux.release(s)
	})
	return s.closeErr
}

// cancel unblocks any delivery currently waiting on this consumer's buffer.
func (s *Subscription) cancel() {
	s.cancelOnce.Do(func() {
		close(s.done)
	})
}

// deliver hands one payload to this consumer according to the overflow
// policy. Called with the endpoint lock held.
func (s *Subscription) deliver(payload []byte, policy OverflowPolicy) {
	switch policy {
	case PolicyDropOldest:
		for {
			select {
			case s.ch <- payload:
				return
			case <-s.done:
				return
			default:
			}
			// Buffer full: evict the oldest buffered message and retry.
			select {
			case <-s.ch:
				metricDropped.Inc()
			default:
			}
		}
	default: // PolicyBlock
		select {
		case s.ch <- payload:
		case <-s.done:
		}
	}
}
