package pubsub

import (
	"sync"

	"github.com/lni/dragonboat/v4/logger"
)

var Logger = logger.GetLogger("pubsub")

// --------------------------------------------------------------------------
// Options
// --------------------------------------------------------------------------

// OverflowPolicy selects what happens when a consumer's buffer is full while
// a new message arrives.
type OverflowPolicy uint8

const (
	// PolicyBlock blocks the delivery callback until the consumer drains its
	// buffer or detaches. This is the default: no message is ever dropped,
	// at the cost of a slow consumer briefly stalling delivery on its channel.
	PolicyBlock OverflowPolicy = iota
	// PolicyDropOldest evicts the oldest buffered message to make room, so
	// a slow consumer loses old messages instead of stalling delivery.
	PolicyDropOldest
)

// defaultBufferSize is the per-consumer buffer capacity used when none is
// configured. Kept small: the buffer only absorbs short consumer stalls.
const defaultBufferSize = 16

// Options configures the multiplexer.
type Options struct {
	// BufferSize is the per-consumer bounded buffer capacity (0 = default).
	BufferSize int
	// Policy is the per-consumer overflow policy.
	Policy OverflowPolicy
}

// DefaultOptions returns the default multiplexer options.
func DefaultOptions() *Options {
	return &Options{
		BufferSize: defaultBufferSize,
		Policy:     PolicyBlock,
	}
}

// --------------------------------------------------------------------------
// Multiplexer / Subscription Registry
// --------------------------------------------------------------------------

// Mux multiplexes many local consumers over one raw pub/sub connection. It
// owns the subscription registry: a map from channel name to that channel's
// broadcast endpoint. A registry entry exists exactly while the channel has
// at least one live local consumer.
//
// All registry mutations happen under one exclusive lock, held across the
// corresponding raw subscribe/unsubscribe call. This makes entry creation
// atomic with the raw subscription (two racing first-subscribers can never
// issue a duplicate raw subscribe) and keeps a subscribe from attaching to an
// endpoint that a racing last-unsubscribe is tearing down.
type Mux struct {
	conn IPubSubConn
	opts Options

	mu       sync.Mutex
	channels map[string]*endpoint
}

// NewMux creates a multiplexer over the given raw connection. Pass nil opts
// for defaults.
func NewMux(conn IPubSubConn, opts *Options) *Mux {
	if opts == nil {
		opts = DefaultOptions()
	}
	if opts.BufferSize <= 0 {
		opts.BufferSize = defaultBufferSize
	}

	m := &Mux{
		conn:     conn,
		opts:     *opts,
		channels: make(map[string]*endpoint),
	}

	// A dead connection invalidates every server-side subscription; tear the
	// registry down so a fresh Subscribe re-establishes the raw subscription
	// instead of reusing a dead endpoint.
	conn.OnConnError(m.handleConnError)

	return m
}

// --------------------------------------------------------------------------
// Interface Methods (docu see pubsub.IMux)
// --------------------------------------------------------------------------

func (m *Mux) Subscribe(channel string) (*Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ep, ok := m.channels[channel]
	if !ok {
		// First local consumer: create the endpoint and issue the raw
		// subscription, atomically with respect to the registry.
		ep = newEndpoint(channel, m.opts)
		m.channels[channel] = ep

		if err := m.conn.RawSubscribe(channel, ep.publish); err != nil {
			delete(m.channels, channel)
			return nil, err
		}
		Logger.Debugf("channel %q: raw subscription established", channel)
	}

	sub := &Subscription{
		channel: channel,
		ch:      make(chan []byte, m.opts.BufferSize),
		done:    make(chan struct{}),
		mux:     m,
		ep:      ep,
	}
	ep.attach(sub)

	return sub, nil
}

func (m *Mux) Unsubscribe(channel string) error {
	m.mu.Lock()
	ep, ok := m.channels[channel]
	if !ok {
		m.mu.Unlock()
		return nil
	}
	delete(m.channels, channel)
	err := m.conn.RawUnsubscribe(channel)
	m.mu.Unlock()

	// Terminate local consumers outside the registry lock; their later
	// Close() calls find no registry entry and become no-ops.
	ep.shutdown(nil)

	Logger.Debugf("channel %q: raw subscription dropped", channel)
	return err
}

func (m *Mux) Close() error {
	m.mu.Lock()
	eps := m.channels
	m.channels = make(map[string]*endpoint)
	var firstErr error
	for channel := range eps {
		if err := m.conn.RawUnsubscribe(channel); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	m.mu.Unlock()

	for _, ep := range eps {
		ep.shutdown(nil)
	}
	return firstErr
}

// --------------------------------------------------------------------------
// Internal
// --------------------------------------------------------------------------

// release runs the unsubscribe decrement path for one departing consumer.
// Called exactly once per subscription (guarded by the subscription's own
// sync.Once).
func (m *Mux) release(s *Subscription) error {
	// Unblock a delivery possibly waiting on this consumer before taking any
	// lock the delivery path holds.
	s.cancel()

	m.mu.Lock()
	defer m.mu.Unlock()

	remaining := s.ep.detach(s)

	// Tear the entry down only if it is still this endpoint - a connection
	// error or explicit Unsubscribe may already have replaced or removed it.
	if remaining == 0 && m.channels[s.channel] == s.ep {
		delete(m.channels, s.channel)
		if err := m.conn.RawUnsubscribe(s.channel); err != nil {
			return err
		}
		Logger.Debugf("channel %q: last consumer left, raw subscription dropped", s.channel)
	}
	return nil
}

// handleConnError tears down every channel after a connection failure,
// propagating the error to all attached consumers.
func (m *Mux) handleConnError(err error) {
	m.mu.Lock()
	eps := m.channels
	m.channels = make(map[string]*endpoint)
	m.mu.Unlock()

	if len(eps) > 0 {
		Logger.Warningf("connection error, dropping %d channel(s): %v", len(eps), err)
	}
	for _, ep := range eps {
		ep.shutdown(err)
	}
}
