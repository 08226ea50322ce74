package client

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/birchkv/birch/rpc/common"
	"github.com/birchkv/birch/rpc/transport"
	"github.com/birchkv/birch/rpc/tx"
	"github.com/puzpuzpuz/xsync/v3"
)

// wireExecutor implements tx.IExecutor on top of a client transport. The
// batch is collected locally and shipped in a single commit request, so one
// transaction costs exactly one round trip.
type wireExecutor struct {
	rpcClientAdapter

	nextHandle atomic.Uint64
	pending    *xsync.MapOf[tx.Handle, *pendingTx]
}

// pendingTx is the locally queued batch of one open transaction.
type pendingTx struct {
	mu    sync.Mutex
	batch []common.Message
}

func newWireExecutor(adapter rpcClientAdapter) *wireExecutor {
	return &wireExecutor{
		rpcClientAdapter: adapter,
		pending:          xsync.NewMapOf[tx.Handle, *pendingTx](),
	}
}

// --------------------------------------------------------------------------
// Interface Methods (docu see tx.IExecutor)
// --------------------------------------------------------------------------

func (e *wireExecutor) BeginTransaction() (tx.Handle, error) {
	handle := tx.Handle(e.nextHandle.Add(1))
	e.pending.Store(handle, &pendingTx{})
	return handle, nil
}

func (e *wireExecutor) Enqueue(handle tx.Handle, req *common.Message) error {
	p, ok := e.pending.Load(handle)
	if !ok {
		return fmt.Errorf("unknown transaction handle %d", handle)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.batch = append(p.batch, *req)
	return nil
}

func (e *wireExecutor) Commit(handle tx.Handle) ([]common.Message, error) {
	p, ok := e.pending.LoadAndDelete(handle)
	if !ok {
		return nil, fmt.Errorf("unknown transaction handle %d", handle)
	}

	p.mu.Lock()
	batch := p.batch
	p.mu.Unlock()

	resp, err := e.roundTrip(common.NewCommitRequest(batch))
	if err != nil {
		if errors.Is(err, transport.ErrTimeout) {
			return nil, fmt.Errorf("%w: %v", tx.ErrTimeout, err)
		}
		return nil, err
	}

	switch resp.MsgType {
	case common.MsgTTxCommit:
		return resp.Batch, nil
	case common.MsgTTxAborted:
		return nil, fmt.Errorf("%w: %s", tx.ErrTransactionAborted, resp.Err)
	default:
		return nil, fmt.Errorf("rpc client - unexpected commit response type: %s", resp.MsgType)
	}
}
