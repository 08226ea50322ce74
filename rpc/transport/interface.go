package transport

import (
	"errors"

	"github.com/birchkv/birch/rpc/common"
)

// ErrTimeout is returned by Send when no response arrives within the
// configured deadline. The request may or may not have been applied by the
// server - transports never retry after a timeout for exactly that reason.
var ErrTimeout = errors.New("request timed out")

// --------------------------------------------------------------------------
// Client Transport
// --------------------------------------------------------------------------

// PushHandlerFunc is invoked for every server-initiated frame (a frame that
// is not a response to a pending request, e.g. a published pub/sub message).
// It is called on a connection-owned goroutine.
type PushHandlerFunc func(data []byte)

// DisconnectHandlerFunc is invoked when a connection fails. It fires even
// when the transport manages to reconnect transparently: any server-side
// state tied to the old connection (such as pub/sub subscriptions) is lost
// either way and must be re-established by the caller.
type DisconnectHandlerFunc func(err error)

// IRPCClientTransport is the interface for the RPC client transport
type IRPCClientTransport interface {
	// Connect initializes the transport with the given configuration
	Connect(config common.ClientConfig) error
	// Send sends a request to the server and returns the response
	Send(req []byte) (resp []byte, err error)
	// SetPushHandler registers the handler for server-initiated frames.
	// Must be called before Connect.
	SetPushHandler(handler PushHandlerFunc)
	// SetDisconnectHandler registers the handler for permanent connection
	// failures. Must be called before Connect.
	SetDisconnectHandler(handler DisconnectHandlerFunc)
	// Close closes the transport connection
	Close() error
}
