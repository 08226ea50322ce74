package memory

import (
	"fmt"
	"sync"

	"github.com/birchkv/birch/rpc/common"
	"github.com/birchkv/birch/rpc/serializer"
	"github.com/birchkv/birch/rpc/transport"
)

// entry is one stored key-value pair. An expired entry is still visible to
// Has but no longer returns its value.
type entry struct {
	value   []byte
	expired bool
}

// MemoryTransport implements IRPCClientTransport against an in-process store
// with the full wire semantics: single commands, atomic command batches and
// pub/sub with asynchronous push delivery. It needs no server and is used by
// tests and as a standalone backend for the demo CLI.
type MemoryTransport struct {
	serializer serializer.IRPCSerializer

	mu         sync.Mutex
	connected  bool
	data       map[string]entry
	subscribed map[string]bool

	// failure injection for transaction tests
	abortNext   bool
	abortReason string
	timeoutNext bool

	pushHandler       transport.PushHandlerFunc
	disconnectHandler transport.DisconnectHandlerFunc

	// Pushes are queued here and handed to the handler by a single drain
	// goroutine, so deliveries keep publication order like a real reader
	// goroutine would.
	pushMu      sync.Mutex
	pushCond    *sync.Cond
	pushQueue   [][]byte
	pushStop    bool
	pushRunning bool
	pushWG      sync.WaitGroup
}

// NewMemoryTransport creates an in-process transport. The serializer must be
// the same one the client uses on top of the transport.
func NewMemoryTransport(s serializer.IRPCSerializer) *MemoryTransport {
	t := &MemoryTransport{
		serializer: s,
		data:       make(map[string]entry),
		subscribed: make(map[string]bool),
	}
	t.pushCond = sync.NewCond(&t.pushMu)
	return t
}

// --------------------------------------------------------------------------
// Interface Methods (docu see transport.IRPCClientTransport)
// --------------------------------------------------------------------------

func (t *MemoryTransport) Connect(config common.ClientConfig) error {
	t.mu.Lock()
	t.connected = true
	t.mu.Unlock()

	t.pushMu.Lock()
	defer t.pushMu.Unlock()
	t.pushStop = false
	if !t.pushRunning {
		t.pushRunning = true
		t.pushWG.Add(1)
		go t.drainPushes()
	}
	return nil
}

func (t *MemoryTransport) Send(req []byte) ([]byte, error) {
	var msg common.Message
	if err := t.serializer.Deserialize(req, &msg); err != nil {
		return nil, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.connected {
		return nil, fmt.Errorf("memory transport not connected")
	}

	if msg.MsgType == common.MsgTTxCommit && t.timeoutNext {
		// The batch may or may not have been applied by the time a real
		// connection times out. Apply it here so tests can observe the
		// worst case: a timeout on a committed transaction.
		t.timeoutNext = false
		t.handleCommit(&msg)
		return nil, fmt.Errorf("commit: %w", transport.ErrTimeout)
	}

	resp := t.handle(&msg)

	out, err := t.serializer.Serialize(*resp)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (t *MemoryTransport) SetPushHandler(handler transport.PushHandlerFunc) {
	t.pushHandler = handler
}

func (t *MemoryTransport) SetDisconnectHandler(handler transport.DisconnectHandlerFunc) {
	t.disconnectHandler = handler
}

func (t *MemoryTransport) Close() error {
	t.mu.Lock()
	t.connected = false
	t.subscribed = make(map[string]bool)
	t.mu.Unlock()

	// Stop the push drain goroutine and wait for in-flight deliveries.
	t.pushMu.Lock()
	t.pushStop = true
	t.pushCond.Broadcast()
	t.pushMu.Unlock()
	t.pushWG.Wait()
	return nil
}

// --------------------------------------------------------------------------
// Failure Injection
// --------------------------------------------------------------------------

// AbortNextCommit makes the next commit fail as refused/rolled back.
func (t *MemoryTransport) AbortNextCommit(reason string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.abortNext = true
	t.abortReason = reason
}

// TimeoutNextCommit makes the next commit fail with a transport timeout.
// Whether the batch was applied stays deliberately unknown to the caller.
func (t *MemoryTransport) TimeoutNextCommit() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.timeoutNext = true
}

// SubscribedChannels returns the number of channels with a live server-side
// subscription. Tests use it to verify subscribe/unsubscribe bookkeeping.
func (t *MemoryTransport) SubscribedChannels() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.subscribed)
}

// FailConnection simulates a permanent connection failure: all server-side
// subscriptions are dropped and the disconnect handler fires.
func (t *MemoryTransport) FailConnection(err error) {
	t.mu.Lock()
	t.subscribed = make(map[string]bool)
	h := t.disconnectHandler
	t.mu.Unlock()

	if h != nil {
		h(err)
	}
}

// --------------------------------------------------------------------------
// Request Handling (the server side of the wire protocol)
// --------------------------------------------------------------------------

// handle executes one request. Called with t.mu held, which is what makes a
// commit batch atomic: no other request interleaves with its commands.
func (t *MemoryTransport) handle(msg *common.Message) *common.Message {
	switch msg.MsgType {
	case common.MsgTKVSet:
		t.data[msg.Key] = entry{value: msg.Value}
		return common.NewSetResponse(nil)

	case common.MsgTKVSetE:
		t.data[msg.Key] = entry{value: msg.Value}
		return common.NewSetEResponse(nil)

	case common.MsgTKVSetEIfUnset:
		if _, ok := t.data[msg.Key]; !ok {
			t.data[msg.Key] = entry{value: msg.Value}
		}
		return common.NewSetEIfUnsetResponse(nil)

	case common.MsgTKVExpire:
		if e, ok := t.data[msg.Key]; ok {
			e.expired = true
			e.value = nil
			t.data[msg.Key] = e
		}
		return common.NewExpireResponse(nil)

	case common.MsgTKVDelete:
		delete(t.data, msg.Key)
		return common.NewDeleteResponse(nil)

	case common.MsgTKVGet:
		e, ok := t.data[msg.Key]
		if !ok || e.expired {
			return common.NewGetResponse(nil, false, nil)
		}
		return common.NewGetResponse(e.value, true, nil)

	case common.MsgTKVHas:
		_, ok := t.data[msg.Key]
		return common.NewHasResponse(ok, nil)

	case common.MsgTTxCommit:
		return t.handleCommit(msg)

	case common.MsgTSubscribe:
		t.subscribed[msg.Key] = true
		return common.NewSubscribeResponse(nil)

	case common.MsgTUnsubscribe:
		delete(t.subscribed, msg.Key)
		return common.NewUnsubscribeResponse(nil)

	case common.MsgTPublish:
		if t.subscribed[msg.Key] {
			t.deliverPush(msg.Key, msg.Value)
		}
		return common.NewPublishResponse(nil)

	default:
		return common.NewErrorResponse(fmt.Sprintf("unsupported message type: %s", msg.MsgType))
	}
}

// handleCommit applies a batch atomically and returns positional replies.
func (t *MemoryTransport) handleCommit(msg *common.Message) *common.Message {
	if t.abortNext {
		t.abortNext = false
		return common.NewAbortedResponse(t.abortReason)
	}

	replies := make([]common.Message, len(msg.Batch))
	for i := range msg.Batch {
		replies[i] = *t.handle(&msg.Batch[i])
	}
	return common.NewCommitResponse(replies)
}

// deliverPush queues a published payload for the drain goroutine. Pushes are
// delivered one at a time in enqueue order, the way a real connection delivers
// pushes on its reader goroutine.
func (t *MemoryTransport) deliverPush(channel string, payload []byte) {
	if t.pushHandler == nil {
		return
	}

	push, err := t.serializer.Serialize(*common.NewPublishRequest(channel, payload))
	if err != nil {
		return
	}

	t.pushMu.Lock()
	t.pushQueue = append(t.pushQueue, push)
	t.pushCond.Signal()
	t.pushMu.Unlock()
}

// drainPushes hands queued pushes to the handler one by one. The handler runs
// without pushMu held so it may call back into the transport.
func (t *MemoryTransport) drainPushes() {
	defer t.pushWG.Done()

	for {
		t.pushMu.Lock()
		for len(t.pushQueue) == 0 && !t.pushStop {
			t.pushCond.Wait()
		}
		if t.pushStop && len(t.pushQueue) == 0 {
			t.pushRunning = false
			t.pushMu.Unlock()
			return
		}
		push := t.pushQueue[0]
		t.pushQueue = t.pushQueue[1:]
		t.pushMu.Unlock()

		h := t.pushHandler
		if h != nil {
			h(push)
		}
	}
}
